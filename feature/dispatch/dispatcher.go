package dispatch

import (
	"context"
	"errors"
	"fmt"

	"event-reconciler/core/metrics"
	"event-reconciler/core/reconcile"

	"go.uber.org/zap"
)

// Reader lists work items waiting for downstream processing. Both work item stores
// implement it.
type Reader interface {
	ListActive(ctx context.Context, venue string, limit int) ([]reconcile.WorkItem, error)
}

// Result counts one dispatch pass.
type Result struct {
	Read      int `json:"read"`
	Published int `json:"published"`
	Failed    int `json:"failed"`
}

// Dispatcher moves active, unlisted work items onto the queue. It never writes to the
// work item table; marking rows listed belongs to the consumer.
type Dispatcher struct {
	reader    Reader
	producer  Producer
	batchSize int
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(reader Reader, producer Producer, batchSize int, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{reader: reader, producer: producer, batchSize: batchSize, logger: logger}
}

// Run publishes one batch, optionally for a single venue. A failed publish is counted
// and the rest of the batch still goes out.
func (d *Dispatcher) Run(ctx context.Context, venue string) (Result, error) {
	var res Result
	items, err := d.reader.ListActive(ctx, venue, d.batchSize)
	if err != nil {
		return res, fmt.Errorf("read active work items: %w", err)
	}
	res.Read = len(items)

	var errs []error
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		id, err := d.producer.Publish(ctx, it)
		if err != nil {
			res.Failed++
			errs = append(errs, err)
			d.logger.Warn("Failed to publish work item", zap.String("event_unique_id", it.EventUniqueID), zap.Error(err))
			continue
		}
		res.Published++
		metrics.Dispatched.Inc()
		d.logger.Debug("Work item published", zap.String("event_unique_id", it.EventUniqueID), zap.String("entry", id))
	}

	d.logger.Info("Dispatch finished",
		zap.String("venue", venue),
		zap.Int("read", res.Read),
		zap.Int("published", res.Published),
		zap.Int("failed", res.Failed))
	return res, errors.Join(errs...)
}
