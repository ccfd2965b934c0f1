package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seakeeper/seakeeper/internal/config"
	"github.com/seakeeper/seakeeper/internal/ingest"
	"github.com/seakeeper/seakeeper/internal/server"
	"github.com/seakeeper/seakeeper/internal/server/handlers"
	"github.com/seakeeper/seakeeper/internal/store/jobs"
	"github.com/seakeeper/seakeeper/internal/store/telemetry"
)

// NewIngestCmd creates the ingest command: the upload API plus the
// background ingestion workers. This process is the only writer of the
// telemetry file.
func NewIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Start the telemetry ingestion API and workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest()
		},
	}
}

func runIngest() error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := newLogger()
	ctx := context.Background()

	jobStore, err := jobs.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connecting to Postgres: %w", err)
	}
	defer jobStore.Close()
	if err := jobStore.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating Postgres: %w", err)
	}

	telemetryStore, err := telemetry.Open(ctx, cfg.TelemetryPath, logger)
	if err != nil {
		return fmt.Errorf("opening telemetry store: %w", err)
	}
	defer telemetryStore.Close()

	worker := ingest.New(jobStore, telemetryStore, logger, cfg.Ingest.Workers, cfg.Ingest.QueueDepth)
	worker.Start(ctx)

	sweeper := ingest.NewSweeper(jobStore, logger, 0, 0)
	sweeper.Start(ctx)

	h := handlers.NewIngest(jobStore, worker, telemetryStore,
		cfg.Ingest.UploadsDir, cfg.Ingest.MaxUploadBytes, logger)

	// multipart framing needs headroom beyond the file cap
	maxBody := cfg.Ingest.MaxUploadBytes + (1 << 20)
	srv := server.New(cfg.Ingest.Listen, cfg.APIKey, maxBody, logger, server.IngestRoutes(h))

	return serveLoop(srv, worker, sweeper)
}
