package cmd

import (
	"fmt"

	"event-reconciler/core/loader"
	"event-reconciler/core/logger"
	"event-reconciler/core/metrics"
	"event-reconciler/core/middleware/auth"
	"event-reconciler/core/middleware/rayid"
	"event-reconciler/feature/crawl"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the crawl trigger server",
	Long:  `Starts the HTTP server exposing crawl runs, venue listing, health and metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.log.Sync()
		zap.ReplaceGlobals(a.log)

		store, closeStore, err := a.openStore(ctx, false)
		if err != nil {
			return fmt.Errorf("failed to open work item store: %w", err)
		}
		defer closeStore()

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager(a.log)
		mgr.Register(crawl.NewFeature(a.crawlService(store), a.cfg.Server.CrawlTimeout()))

		// RayID first so everything after it is traceable
		app.Use(rayid.New())
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(a.log, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/healthz", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})
		app.Get("/metrics", metrics.Handler())

		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))
		if !a.cfg.Server.AuthEnabled() {
			a.log.Warn("server.api_key is empty, crawl endpoints are unprotected")
		}

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		errc := make(chan error, 1)
		go func() {
			a.log.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			errc <- app.Listen(":" + a.cfg.Server.Port)
		}()

		select {
		case err := <-errc:
			return fmt.Errorf("server failed: %w", err)
		case <-ctx.Done():
		}
		a.log.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
