package crawl

import (
	"context"
	"errors"
	"time"

	"event-reconciler/core/logger"
	"event-reconciler/core/reconcile"
	"event-reconciler/feature/venues"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler exposes crawl runs over HTTP.
type Handler struct {
	service *Service
	timeout time.Duration
}

// NewHandler creates a handler; timeout bounds a single request's runs.
func NewHandler(service *Service, timeout time.Duration) *Handler {
	return &Handler{service: service, timeout: timeout}
}

// RegisterRoutes registers the crawl routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/crawl", h.HandleCrawlAll)
	app.Post("/crawl/:venue", h.HandleCrawl)
	app.Get("/venues", h.HandleVenues)
}

func runOptions(c *fiber.Ctx) RunOptions {
	return RunOptions{
		DryRun: c.QueryBool("dry_run", false),
		Days:   c.QueryInt("days", 0),
	}
}

func (h *Handler) context(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Context())
	}
	return context.WithTimeout(c.Context(), h.timeout)
}

// HandleCrawl runs one venue and returns its report.
// Unknown venue: 404. Source failure: 502. Persistence failure: 500.
func (h *Handler) HandleCrawl(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	venue := c.Params("venue")
	opts := runOptions(c)
	l.Info("Crawl requested", zap.String("venue", venue), zap.Bool("dry_run", opts.DryRun))

	ctx, cancel := h.context(c)
	defer cancel()

	report, err := h.service.Crawl(ctx, venue, opts)
	switch {
	case errors.Is(err, venues.ErrUnknownVenue):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case report == nil && err != nil:
		l.Error("Crawl could not start", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(statusFor(report)).JSON(report)
}

// HandleCrawlAll runs every active venue.
func (h *Handler) HandleCrawlAll(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	ctx, cancel := h.context(c)
	defer cancel()

	reports, err := h.service.CrawlAll(ctx, runOptions(c))
	body := fiber.Map{"reports": reports}
	if err != nil {
		l.Warn("Some venue runs failed", zap.Error(err))
		body["error"] = err.Error()
		if reports == nil {
			return c.Status(fiber.StatusInternalServerError).JSON(body)
		}
		return c.Status(partialStatus(reports)).JSON(body)
	}
	return c.JSON(body)
}

// HandleVenues lists the active venues.
func (h *Handler) HandleVenues(c *fiber.Ctx) error {
	catalog, err := h.service.catalog.Catalog(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	active := catalog.Active()
	if active == nil {
		active = []venues.Profile{}
	}
	return c.JSON(active)
}

func statusFor(r *reconcile.Report) int {
	if r.Status == reconcile.StatusDone {
		return fiber.StatusOK
	}
	if r.ErrorKind == reconcile.SourceUnavailable {
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// partialStatus is 207 when some venues finished, 502 when every venue lost a feed and 500 otherwise.
func partialStatus(reports []*reconcile.Report) int {
	unavailable := 0
	for _, r := range reports {
		switch {
		case r == nil:
		case r.Status == reconcile.StatusDone:
			return fiber.StatusMultiStatus
		case r.ErrorKind == reconcile.SourceUnavailable:
			unavailable++
		}
	}
	if unavailable == len(reports) {
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}
