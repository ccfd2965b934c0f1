package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seakeeper/seakeeper/internal/analytics"
	"github.com/seakeeper/seakeeper/internal/config"
	"github.com/seakeeper/seakeeper/internal/model"
	"github.com/seakeeper/seakeeper/internal/registry"
	"github.com/seakeeper/seakeeper/internal/server"
	"github.com/seakeeper/seakeeper/internal/server/handlers"
	"github.com/seakeeper/seakeeper/internal/store/telemetry"
)

// NewAnalyticsCmd creates the analytics command: the read-only statistics,
// CII, and optimization API over the telemetry file.
func NewAnalyticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Start the analytics API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalytics()
		},
	}
}

func runAnalytics() error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := newLogger()
	ctx := context.Background()

	db, err := telemetry.OpenReadOnly(ctx, cfg.TelemetryPath, logger)
	if err != nil {
		return fmt.Errorf("opening telemetry store: %w", err)
	}
	defer db.Close()

	vessels := registry.New(cfg.VesselServiceURL, cfg.MetaServiceURL, logger)
	models := model.NewDir(cfg.ModelsDir)
	svc := analytics.New(db, vessels, models, logger)

	h := handlers.NewAnalytics(svc, db, logger)
	srv := server.New(cfg.Analytics.Listen, cfg.APIKey, 1<<20, logger, server.AnalyticsRoutes(h))

	return serveLoop(srv)
}
