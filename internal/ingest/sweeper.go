package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/seakeeper/seakeeper/internal/metrics"
	"github.com/seakeeper/seakeeper/pkg/types"
)

const (
	defaultSweepInterval  = 5 * time.Minute
	defaultStaleThreshold = 30 * time.Minute
)

// StaleLister is the slice of the job store the sweeper needs.
type StaleLister interface {
	ListStaleProcessing(ctx context.Context, olderThan time.Duration) ([]types.UploadJob, error)
	MarkFailed(ctx context.Context, id, message string) error
}

// Sweeper fails upload jobs abandoned in the processing state. A worker that
// dies mid-job never records an outcome; without the sweeper such jobs would
// show as processing forever.
type Sweeper struct {
	jobs      StaleLister
	logger    *slog.Logger
	interval  time.Duration
	threshold time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates a Sweeper. Zero interval and threshold pick the defaults.
func NewSweeper(jobs StaleLister, logger *slog.Logger, interval, threshold time.Duration) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if threshold <= 0 {
		threshold = defaultStaleThreshold
	}
	return &Sweeper{
		jobs:      jobs,
		logger:    logger,
		interval:  interval,
		threshold: threshold,
	}
}

// Start begins the periodic sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)
	s.logger.Info("stale job sweeper started", "interval", s.interval, "threshold", s.threshold)
}

// Stop signals the sweeper to stop and waits for the loop to exit.
func (s *Sweeper) Stop(_ context.Context) {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("stale job sweeper stopped")
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run once immediately on start.
	s.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one scan pass and returns how many jobs it failed.
func (s *Sweeper) Sweep(ctx context.Context) int {
	stale, err := s.jobs.ListStaleProcessing(ctx, s.threshold)
	if err != nil {
		s.logger.Error("failed to list stale jobs", "error", err)
		return 0
	}

	swept := 0
	for _, job := range stale {
		if ctx.Err() != nil {
			return swept
		}
		if err := s.jobs.MarkFailed(ctx, job.ID, "processing timed out"); err != nil {
			s.logger.Error("failed to fail stale job", "job_id", job.ID, "error", err)
			continue
		}
		metrics.JobsSwept.Add(1)
		s.logger.Warn("stale job failed by sweeper",
			"job_id", job.ID, "vessel_id", job.VesselID,
			"age", time.Since(job.CreatedAt).Truncate(time.Second))
		swept++
	}
	return swept
}
