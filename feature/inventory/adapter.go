package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"event-reconciler/core/fetch"
	"event-reconciler/core/normalize"
	"event-reconciler/core/utils"

	"go.uber.org/zap"
)

// ErrMissingRows is returned when the payload has no rows key at all.
var ErrMissingRows = errors.New("inventory payload has no rows")

// RawEvent is one row of the get-events response.
type RawEvent struct {
	ID       any    `json:"id"`
	Name     string `json:"name"`
	Date     string `json:"date"`
	Keywords string `json:"keywords"`
	Notes    string `json:"notes"`
	Venue    struct {
		ID   any    `json:"id"`
		Name string `json:"name"`
	} `json:"venue"`
}

type payload struct {
	Rows []RawEvent `json:"rows"`
}

// Adapter lists a venue's events from the inventory API.
type Adapter struct {
	cfg        Config
	venue      string
	fetcher    *fetch.Fetcher
	normalizer normalize.Normalizer
	logger     *zap.Logger
}

// New builds an adapter for venue. fetchCfg supplies retry and transport settings.
func New(cfg Config, fetchCfg fetch.Config, venue string, normalizer normalize.Normalizer, logger *zap.Logger) (*Adapter, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("inventory endpoint is not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := fetchCfg.Options(string(normalize.Inventory), logger)
	opts.Auth = fetch.HeaderAuth{Headers: cfg.headers()}
	opts.Headers = http.Header{"Content-Type": {"application/json"}}
	f, err := fetch.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory fetcher: %w", err)
	}

	return &Adapter{
		cfg:        cfg,
		venue:      venue,
		fetcher:    f,
		normalizer: normalizer,
		logger:     logger,
	}, nil
}

// ListEvents fetches the venue's events whose date falls in [from, to].
func (a *Adapter) ListEvents(ctx context.Context, from, to time.Time) (normalize.Result, error) {
	loc := a.normalizer.Location
	if loc == nil {
		loc = time.UTC
	}
	query := url.Values{
		"venue":                  {a.venue},
		"excludeParking":         {"true"},
		"excludeActiveInventory": {strconv.FormatBool(a.cfg.ExcludeActiveInventory)},
		"eventDateFrom":          {from.In(loc).Format(time.DateOnly)},
		"eventDateTo":            {to.In(loc).Format(time.DateOnly)},
	}

	resp, err := a.fetcher.Do(ctx, fetch.Request{
		Method:  http.MethodGet,
		URL:     a.cfg.Endpoint,
		Query:   query,
		Timeout: a.cfg.Timeout,
	})
	if err != nil {
		return normalize.Result{}, fmt.Errorf("fetch inventory for %s: %w", a.venue, err)
	}

	rows, err := decode(resp.Body)
	if err != nil {
		return normalize.Result{}, err
	}

	var res normalize.Result
	for _, row := range rows {
		id := utils.ToString(row.ID)
		if id == "" {
			res.Diagnostics = append(res.Diagnostics, normalize.Diagnostic{
				Kind:   normalize.ParseFailure,
				Source: normalize.Inventory,
				Detail: fmt.Sprintf("row %q has no id", row.Name),
			})
			continue
		}
		res.Add(a.normalizer, normalize.Input{
			Source:     normalize.Inventory,
			ExternalID: id,
			Title:      row.Name,
			Start:      row.Date,
			VenueID:    utils.ToString(row.Venue.ID),
			Status:     []string{row.Keywords, row.Notes},
		})
	}

	a.logger.Debug("Inventory fetched",
		zap.String("venue", a.venue),
		zap.Int("rows", len(rows)),
		zap.Int("events", len(res.Events)),
		zap.Int("attempts", resp.Attempts))
	return res, nil
}

func decode(body []byte) ([]RawEvent, error) {
	var p payload
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode inventory payload: %w", err)
	}
	if p.Rows == nil {
		return nil, ErrMissingRows
	}
	return p.Rows, nil
}
