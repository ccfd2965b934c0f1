// Package ingest runs the background processing of uploaded telemetry CSVs.
// Uploads are acknowledged immediately over HTTP; the worker pool here does
// the actual parse, clean, and aggregate work and records the outcome on the
// upload job.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/seakeeper/seakeeper/internal/cleaning"
	"github.com/seakeeper/seakeeper/internal/mapper"
	"github.com/seakeeper/seakeeper/internal/metrics"
	"github.com/seakeeper/seakeeper/internal/tabular"
	"github.com/seakeeper/seakeeper/pkg/types"
)

// ErrQueueFull is returned by Enqueue when the job queue has no room. The
// HTTP layer translates it into a retryable 503.
var ErrQueueFull = errors.New("ingest: job queue full")

// JobStore is the slice of the upload job store the worker needs.
type JobStore interface {
	MarkProcessing(ctx context.Context, id string) error
	MarkDone(ctx context.Context, id string, dateStart, dateEnd *time.Time) error
	MarkFailed(ctx context.Context, id, message string) error
}

// TelemetryWriter is the slice of the telemetry store the worker needs.
type TelemetryWriter interface {
	InsertRaw(ctx context.Context, vesselID int, f *tabular.Frame) (int, error)
	InsertClean(ctx context.Context, vesselID int, f *tabular.Frame) (int, error)
	UpsertDaily(ctx context.Context, vesselID int, dateStart, dateEnd string) error
	ApplyCIIComponent(ctx context.Context, vesselID int, capacity float64) error
	RecomputeCII(ctx context.Context, vesselID int) error
}

// Task is one enqueued unit of ingestion work. Pitch feeds the slip ratio
// derivation; Capacity enables the regulatory intensity update when positive.
type Task struct {
	Job      types.UploadJob
	Pitch    float64
	Capacity float64
}

// Worker is a fixed pool of goroutines draining a buffered task queue.
type Worker struct {
	jobs      JobStore
	telemetry TelemetryWriter
	logger    *slog.Logger
	queue     chan Task
	workers   int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Worker with the given pool size and queue depth.
func New(jobs JobStore, telemetry TelemetryWriter, logger *slog.Logger, workers, queueDepth int) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 2
	}
	if queueDepth <= 0 {
		queueDepth = 32
	}
	return &Worker{
		jobs:      jobs,
		telemetry: telemetry,
		logger:    logger,
		queue:     make(chan Task, queueDepth),
		workers:   workers,
	}
}

// Enqueue hands a task to the pool without blocking.
func (w *Worker) Enqueue(task Task) error {
	select {
	case w.queue <- task:
		return nil
	default:
		metrics.QueueRejections.Add(1)
		return ErrQueueFull
	}
}

// Start launches the worker goroutines.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.logger.Info("ingest worker started", "worker", id)
			for {
				select {
				case <-ctx.Done():
					w.logger.Info("ingest worker stopping", "worker", id)
					return
				case task := <-w.queue:
					w.run(ctx, task)
				}
			}
		}(i)
	}
}

// Stop gracefully shuts down the pool. Tasks still queued are abandoned;
// their jobs stay pending and reappear in history as such.
func (w *Worker) Stop(ctx context.Context) {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("ingest workers stopped")
	case <-ctx.Done():
		w.logger.Warn("ingest worker stop timed out")
	}
}

// run processes one task and records its outcome. The job's raw rows stay in
// the store even when a later step fails, as an audit trail of what arrived.
func (w *Worker) run(ctx context.Context, task Task) {
	log := w.logger.With("job_id", task.Job.ID, "vessel_id", task.Job.VesselID)

	if err := w.jobs.MarkProcessing(ctx, task.Job.ID); err != nil {
		log.Error("failed to mark job processing", "error", err)
		return
	}

	start, end, err := w.process(ctx, task, log)
	if err != nil {
		metrics.JobsFailed.Add(1)
		log.Error("ingestion failed", "error", err)
		if markErr := w.jobs.MarkFailed(ctx, task.Job.ID, err.Error()); markErr != nil {
			log.Error("failed to mark job failed", "error", markErr)
		}
		return
	}

	metrics.JobsProcessed.Add(1)
	if err := w.jobs.MarkDone(ctx, task.Job.ID, start, end); err != nil {
		log.Error("failed to mark job done", "error", err)
	}
}

func (w *Worker) process(ctx context.Context, task Task, log *slog.Logger) (dateStart, dateEnd *time.Time, err error) {
	file, err := os.Open(task.Job.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	frame, err := tabular.ReadCSV(file)
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	mapper.Canonicalize(frame)

	rawRows, err := w.telemetry.InsertRaw(ctx, task.Job.VesselID, frame)
	if err != nil {
		return nil, nil, fmt.Errorf("store raw rows: %w", err)
	}
	metrics.RowsIngested.Add(int64(rawRows))

	cleaned := cleaning.Prepare(frame, task.Pitch)
	cleanRows, err := w.telemetry.InsertClean(ctx, task.Job.VesselID, cleaned)
	if err != nil {
		return nil, nil, fmt.Errorf("store clean rows: %w", err)
	}
	metrics.RowsCleaned.Add(int64(cleanRows))

	log.Info("upload cleaned", "raw_rows", rawRows, "clean_rows", cleanRows)

	minDate, maxDate, ok := cleaned.DateBounds("date")
	if !ok {
		// Everything was filtered out. The job still completes; there is
		// just nothing to aggregate.
		log.Warn("no usable rows after cleaning")
		return nil, nil, nil
	}

	startStr := minDate.Format("2006-01-02")
	endStr := maxDate.Format("2006-01-02")
	if err := w.telemetry.UpsertDaily(ctx, task.Job.VesselID, startStr, endStr); err != nil {
		return nil, nil, fmt.Errorf("aggregate daily: %w", err)
	}

	if task.Capacity > 0 {
		if err := w.telemetry.ApplyCIIComponent(ctx, task.Job.VesselID, task.Capacity); err != nil {
			return nil, nil, fmt.Errorf("apply cii component: %w", err)
		}
		if err := w.telemetry.RecomputeCII(ctx, task.Job.VesselID); err != nil {
			return nil, nil, fmt.Errorf("recompute cii: %w", err)
		}
		metrics.CIIRecomputations.Add(1)
	} else {
		log.Info("capacity not supplied, skipping cii update")
	}

	return &minDate, &maxDate, nil
}
