package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"event-reconciler/core/reconcile"

	"github.com/redis/go-redis/v9"
)

// Producer publishes one work item downstream and returns the entry id.
type Producer interface {
	Publish(ctx context.Context, item reconcile.WorkItem) (string, error)
}

type redisProducer struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewRedisProducer publishes to a redis stream with XADD.
func NewRedisProducer(client redis.Cmdable, stream string, maxLen int64) Producer {
	return &redisProducer{client: client, stream: stream, maxLen: maxLen}
}

func (p *redisProducer) Publish(ctx context.Context, item reconcile.WorkItem) (string, error) {
	payload, err := json.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("encode work item: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event_unique_id": item.EventUniqueID,
			"event_id":        item.EventID,
			"venue_name":      item.VenueName,
			"payload":         string(payload),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("enqueue work item %s: %w", item.EventUniqueID, err)
	}
	return id, nil
}

// NewClient connects to redis and pings it.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
