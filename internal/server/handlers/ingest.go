package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seakeeper/seakeeper/internal/ingest"
	"github.com/seakeeper/seakeeper/internal/metrics"
	"github.com/seakeeper/seakeeper/pkg/types"
)

// JobStore is the slice of the upload job store the ingestion API needs.
type JobStore interface {
	Create(ctx context.Context, vesselID int, filePath string) (*types.UploadJob, error)
	Get(ctx context.Context, id string) (*types.UploadJob, error)
	ListByVessel(ctx context.Context, vesselID, offset, limit int) ([]types.UploadJob, error)
	MarkFailed(ctx context.Context, id, message string) error
	Ping(ctx context.Context) error
}

// Enqueuer hands accepted uploads to the background worker pool.
type Enqueuer interface {
	Enqueue(task ingest.Task) error
}

// DailyReader serves the daily aggregate view from the telemetry store.
type DailyReader interface {
	Daily(ctx context.Context, vesselID, offset, limit int) ([]types.DailyAggregate, error)
	Ping(ctx context.Context) error
}

// Ingest contains the ingestion API handlers.
type Ingest struct {
	jobs       JobStore
	queue      Enqueuer
	telemetry  DailyReader
	uploadsDir string
	maxUpload  int64
	logger     *slog.Logger
}

// NewIngest creates the ingestion handlers.
func NewIngest(jobs JobStore, queue Enqueuer, telemetry DailyReader, uploadsDir string, maxUpload int64, logger *slog.Logger) *Ingest {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingest{
		jobs:       jobs,
		queue:      queue,
		telemetry:  telemetry,
		uploadsDir: uploadsDir,
		maxUpload:  maxUpload,
		logger:     logger,
	}
}

// Upload accepts a telemetry CSV, creates a pending job, and enqueues it.
// Only cheap sanity checks run synchronously; everything else happens in the
// worker and is observable through the job status endpoint.
func (h *Ingest) Upload(w http.ResponseWriter, r *http.Request) {
	vesselID, err := vesselIDParam(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}

	pitch := types.DefaultPitch
	if raw := r.URL.Query().Get("pitch"); raw != "" {
		pitch, err = strconv.ParseFloat(raw, 64)
		if err != nil || pitch <= 0 {
			writeError(w, h.logger, http.StatusBadRequest, "pitch must be a positive number", nil)
			return
		}
	}
	var capacity float64
	if raw := r.URL.Query().Get("capacity"); raw != "" {
		capacity, err = strconv.ParseFloat(raw, 64)
		if err != nil || capacity <= 0 {
			writeError(w, h.logger, http.StatusBadRequest, "capacity must be a positive number", nil)
			return
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		metrics.UploadsRejected.Add(1)
		writeError(w, h.logger, http.StatusBadRequest, "multipart field 'file' is required", err)
		return
	}
	defer file.Close()

	switch {
	case header.Size == 0:
		metrics.UploadsRejected.Add(1)
		writeError(w, h.logger, http.StatusBadRequest, "uploaded file is empty", nil)
		return
	case h.maxUpload > 0 && header.Size > h.maxUpload:
		metrics.UploadsRejected.Add(1)
		writeError(w, h.logger, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds %d bytes", h.maxUpload), nil)
		return
	case !strings.EqualFold(filepath.Ext(header.Filename), ".csv"):
		metrics.UploadsRejected.Add(1)
		writeError(w, h.logger, http.StatusBadRequest, "only .csv uploads are accepted", nil)
		return
	}

	path, err := h.saveUpload(vesselID, file)
	if err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "failed to store upload", err)
		return
	}

	job, err := h.jobs.Create(r.Context(), vesselID, path)
	if err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "failed to create job", err)
		return
	}

	if err := h.queue.Enqueue(ingest.Task{Job: *job, Pitch: pitch, Capacity: capacity}); err != nil {
		metrics.UploadsRejected.Add(1)
		if markErr := h.jobs.MarkFailed(r.Context(), job.ID, "ingestion queue full"); markErr != nil {
			h.logger.Error("failed to fail queued-out job", "job_id", job.ID, "error", markErr)
		}
		writeError(w, h.logger, statusFor(err), "ingestion busy, try again later", err)
		return
	}

	metrics.UploadsAccepted.Add(1)
	h.logger.Info("upload accepted", "job_id", job.ID, "vessel_id", vesselID, "bytes", header.Size)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(job.Status),
	})
}

// saveUpload writes the file under uploads/{date}/vessel_{id}-{ts}.csv. The
// job owns this artifact from here on.
func (h *Ingest) saveUpload(vesselID int, src io.Reader) (string, error) {
	now := time.Now().UTC()
	dir := filepath.Join(h.uploadsDir, now.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("vessel_%d-%d.csv", vesselID, now.UnixNano()))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path, nil
}

// JobStatus returns one upload job by id.
func (h *Ingest) JobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, statusFor(err), "job not found", err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// History returns a page of a vessel's upload jobs, newest first.
func (h *Ingest) History(w http.ResponseWriter, r *http.Request) {
	vesselID, err := vesselIDParam(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	offset, limit := pageParams(r)
	list, err := h.jobs.ListByVessel(r.Context(), vesselID, offset, limit)
	if err != nil {
		writeError(w, h.logger, statusFor(err), "failed to list jobs", err)
		return
	}
	if list == nil {
		list = []types.UploadJob{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Daily returns a page of the vessel's daily aggregates.
func (h *Ingest) Daily(w http.ResponseWriter, r *http.Request) {
	vesselID, err := vesselIDParam(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	offset, limit := pageParams(r)
	rows, err := h.telemetry.Daily(r.Context(), vesselID, offset, limit)
	if err != nil {
		writeError(w, h.logger, statusFor(err), "failed to query daily data", err)
		return
	}
	if rows == nil {
		rows = []types.DailyAggregate{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// Health pings both stores.
func (h *Ingest) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.jobs.Ping(r.Context()); err != nil {
		writeError(w, h.logger, http.StatusServiceUnavailable, "job store unavailable", err)
		return
	}
	if err := h.telemetry.Ping(r.Context()); err != nil {
		writeError(w, h.logger, http.StatusServiceUnavailable, "telemetry store unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
