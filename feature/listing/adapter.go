package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"event-reconciler/core/fetch"
	"event-reconciler/core/normalize"
	"event-reconciler/core/utils"

	"go.uber.org/zap"
)

// ErrTooManyPages is returned when pagination does not end within MaxPages.
var ErrTooManyPages = errors.New("listing pagination did not terminate")

// RawPerformance is one showtime of a listing item.
type RawPerformance struct {
	ID                 any    `json:"id"`
	StartDate          string `json:"start_date"`
	Access             string `json:"access"`
	AvailabilityStatus string `json:"availability_status"`
	Cancelled          any    `json:"cancelled"`
	SoldOut            any    `json:"sold_out"`
}

// RawItem is one show of the listing feed. Performances are decoded one by one so a
// malformed entry only drops itself.
type RawItem struct {
	ID                      any               `json:"id"`
	PostTitle               string            `json:"post_title"`
	TicketLink              string            `json:"ticket_link"`
	HasUpcomingPerformances any               `json:"has_upcoming_performances"`
	UpcomingPerformances    []json.RawMessage `json:"upcoming_performances"`
}

type page struct {
	Items     []RawItem `json:"items"`
	PageCount any       `json:"page_count"`
}

// Adapter lists a venue's public performances.
type Adapter struct {
	cfg        Config
	fetcher    *fetch.Fetcher
	normalizer normalize.Normalizer
	logger     *zap.Logger
}

// New builds an adapter for cfg.Endpoint.
func New(cfg Config, fetchCfg fetch.Config, normalizer normalize.Normalizer, logger *zap.Logger) (*Adapter, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("listing endpoint is not configured")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := fetchCfg.Options(string(normalize.Listing), logger)
	if cfg.Timeout > 0 {
		opts.Timeout = cfg.Timeout
	}
	f, err := fetch.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing fetcher: %w", err)
	}
	return &Adapter{cfg: cfg, fetcher: f, normalizer: normalizer, logger: logger}, nil
}

// ListEvents walks every page and returns performances dated within [from, to].
// A failed page fails the whole listing.
func (a *Adapter) ListEvents(ctx context.Context, from, to time.Time) (normalize.Result, error) {
	var (
		res        normalize.Result
		outOfRange int
	)
	for n := 1; ; n++ {
		if n > a.cfg.MaxPages {
			return normalize.Result{}, fmt.Errorf("%w after %d pages", ErrTooManyPages, a.cfg.MaxPages)
		}

		var p page
		if _, err := a.fetcher.GetJSON(ctx, a.cfg.Endpoint, url.Values{
			"page":  {strconv.Itoa(n)},
			"limit": {strconv.Itoa(a.cfg.PageSize)},
		}, &p); err != nil {
			return normalize.Result{}, fmt.Errorf("fetch listing page %d: %w", n, err)
		}
		if len(p.Items) == 0 {
			break
		}

		for _, item := range p.Items {
			outOfRange += a.addItem(&res, item, from, to)
		}

		pageCount := utils.ToInt(p.PageCount)
		if pageCount <= 0 {
			pageCount = 1
		}
		if n >= pageCount {
			break
		}
	}

	a.logger.Debug("Listing fetched",
		zap.String("endpoint", a.cfg.Endpoint),
		zap.Int("events", len(res.Events)),
		zap.Int("out_of_range", outOfRange))
	return res, nil
}

// addItem appends the item's performances and returns how many fell outside the window.
func (a *Adapter) addItem(res *normalize.Result, item RawItem, from, to time.Time) int {
	if item.HasUpcomingPerformances != nil && !utils.ToBool(item.HasUpcomingPerformances) {
		return 0
	}

	skipped := 0
	for _, raw := range item.UpcomingPerformances {
		var perf RawPerformance
		if err := json.Unmarshal(raw, &perf); err != nil {
			res.Diagnostics = append(res.Diagnostics, normalize.Diagnostic{
				Kind:       normalize.ParseFailure,
				Source:     normalize.Listing,
				ExternalID: utils.ToString(item.ID),
				Detail:     fmt.Sprintf("malformed performance: %v", err),
			})
			continue
		}

		itemID := utils.ToString(item.ID)
		id := utils.ToString(perf.ID)
		if id == "" && itemID == "" {
			res.Diagnostics = append(res.Diagnostics, normalize.Diagnostic{
				Kind:   normalize.ParseFailure,
				Source: normalize.Listing,
				Detail: fmt.Sprintf("performance %q has no id", perf.StartDate),
			})
			continue
		}
		diagID := id
		if diagID == "" {
			diagID = itemID
		}
		ev, err := a.normalizer.Normalize(normalize.Input{
			Source:        normalize.Listing,
			ExternalID:    id,
			Title:         item.PostTitle,
			Start:         perf.StartDate,
			BookingURL:    item.TicketLink,
			InstanceID:    id,
			ExcludeReason: excludeReason(perf),
		})
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, normalize.Diagnostic{
				Kind:       normalize.ParseFailure,
				Source:     normalize.Listing,
				ExternalID: diagID,
				Detail:     err.Error(),
			})
			continue
		}
		if id == "" {
			id = performanceID(itemID, ev.StartAt)
			ev.ExternalID, ev.InstanceID = id, id
		}
		if !a.inRange(ev.StartAt, from, to) {
			skipped++
			continue
		}
		res.Events = append(res.Events, ev)
	}
	return skipped
}

// performanceID stands in for a missing performance id: the item id plus the local start.
func performanceID(itemID string, start time.Time) string {
	return itemID + "@" + start.Format("2006-01-02T15:04")
}

// inRange compares calendar dates in the venue location, both ends inclusive.
func (a *Adapter) inRange(t, from, to time.Time) bool {
	loc := a.normalizer.Location
	if loc == nil {
		loc = time.UTC
	}
	day := t.In(loc).Format(time.DateOnly)
	return day >= from.In(loc).Format(time.DateOnly) && day <= to.In(loc).Format(time.DateOnly)
}

func excludeReason(p RawPerformance) string {
	if access := strings.ToLower(strings.TrimSpace(p.Access)); access != "public" {
		return fmt.Sprintf("access %q", access)
	}
	switch strings.ToLower(strings.TrimSpace(p.AvailabilityStatus)) {
	case "s":
		return "availability sold out"
	case "u":
		return "availability unavailable"
	}
	if utils.ToBool(p.Cancelled) {
		return "cancelled"
	}
	if utils.ToBool(p.SoldOut) {
		return "sold out"
	}
	return ""
}
