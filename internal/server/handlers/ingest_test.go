package handlers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seakeeper/seakeeper/internal/ingest"
	"github.com/seakeeper/seakeeper/internal/store/jobs"
	"github.com/seakeeper/seakeeper/pkg/types"
)

type mockJobs struct {
	created  *types.UploadJob
	getJob   *types.UploadJob
	getErr   error
	failed   map[string]string
	history  []types.UploadJob
	pingErr  error
	createID string
}

func newMockJobs() *mockJobs {
	return &mockJobs{failed: make(map[string]string), createID: "01JTEST"}
}

func (m *mockJobs) Create(_ context.Context, vesselID int, filePath string) (*types.UploadJob, error) {
	m.created = &types.UploadJob{ID: m.createID, VesselID: vesselID, FilePath: filePath, Status: types.JobPending}
	return m.created, nil
}

func (m *mockJobs) Get(context.Context, string) (*types.UploadJob, error) {
	return m.getJob, m.getErr
}

func (m *mockJobs) ListByVessel(context.Context, int, int, int) ([]types.UploadJob, error) {
	return m.history, nil
}

func (m *mockJobs) MarkFailed(_ context.Context, id, message string) error {
	m.failed[id] = message
	return nil
}

func (m *mockJobs) Ping(context.Context) error { return m.pingErr }

type mockQueue struct {
	task Task
	err  error
}

type Task = ingest.Task

func (m *mockQueue) Enqueue(task ingest.Task) error {
	if m.err != nil {
		return m.err
	}
	m.task = task
	return nil
}

type mockDaily struct {
	rows    []types.DailyAggregate
	pingErr error
}

func (m *mockDaily) Daily(context.Context, int, int, int) ([]types.DailyAggregate, error) {
	return m.rows, nil
}

func (m *mockDaily) Ping(context.Context) error { return m.pingErr }

func ingestRouter(h *Ingest) http.Handler {
	r := chi.NewRouter()
	r.Post("/upload/vessel/{vesselID}", h.Upload)
	r.Get("/upload/{jobID}/status", h.JobStatus)
	r.Get("/upload/vessel/{vesselID}/history", h.History)
	r.Get("/daily/vessel/{vesselID}", h.Daily)
	r.Get("/health", h.Health)
	return r
}

func newIngest(t *testing.T, j *mockJobs, q *mockQueue, d *mockDaily) *Ingest {
	t.Helper()
	return NewIngest(j, q, d, t.TempDir(), 1<<20, slog.New(slog.DiscardHandler))
}

func multipartCSV(t *testing.T, field, filename, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUpload_Accepted(t *testing.T) {
	j, q := newMockJobs(), &mockQueue{}
	h := newIngest(t, j, q, &mockDaily{})

	body, ct := multipartCSV(t, "file", "batch.csv", "PCDate,ShipSpdToWater\n2024-01-01,12\n")
	req := httptest.NewRequest(http.MethodPost, "/upload/vessel/7?pitch=6.5&capacity=52000", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	ingestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"job_id":"01JTEST"`)
	require.NotNil(t, j.created)
	assert.Equal(t, 7, j.created.VesselID)
	assert.FileExists(t, j.created.FilePath, "upload saved before the job is enqueued")
	assert.Equal(t, 6.5, q.task.Pitch)
	assert.Equal(t, 52000.0, q.task.Capacity)
}

func TestUpload_DefaultPitch(t *testing.T) {
	j, q := newMockJobs(), &mockQueue{}
	h := newIngest(t, j, q, &mockDaily{})

	body, ct := multipartCSV(t, "file", "batch.csv", "data\n1\n")
	req := httptest.NewRequest(http.MethodPost, "/upload/vessel/7", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	ingestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, types.DefaultPitch, q.task.Pitch)
	assert.Zero(t, q.task.Capacity, "capacity stays unset unless supplied")
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		filename string
		content  string
		want     int
	}{
		{"not a csv", "/upload/vessel/7", "batch.txt", "data\n1\n", http.StatusBadRequest},
		{"empty file", "/upload/vessel/7", "batch.csv", "", http.StatusBadRequest},
		{"bad vessel id", "/upload/vessel/zero", "batch.csv", "data\n1\n", http.StatusBadRequest},
		{"bad pitch", "/upload/vessel/7?pitch=-1", "batch.csv", "data\n1\n", http.StatusBadRequest},
		{"bad capacity", "/upload/vessel/7?capacity=abc", "batch.csv", "data\n1\n", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := newMockJobs()
			h := newIngest(t, j, &mockQueue{}, &mockDaily{})

			body, ct := multipartCSV(t, "file", tt.filename, tt.content)
			req := httptest.NewRequest(http.MethodPost, tt.url, body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			ingestRouter(h).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Nil(t, j.created, "rejected upload must not create a job")
		})
	}
}

func TestUpload_TooLarge(t *testing.T) {
	j := newMockJobs()
	h := NewIngest(j, &mockQueue{}, &mockDaily{}, t.TempDir(), 10, slog.New(slog.DiscardHandler))

	body, ct := multipartCSV(t, "file", "batch.csv", "0123456789abcdef")
	req := httptest.NewRequest(http.MethodPost, "/upload/vessel/7", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	ingestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUpload_QueueFull(t *testing.T) {
	j := newMockJobs()
	q := &mockQueue{err: ingest.ErrQueueFull}
	h := newIngest(t, j, q, &mockDaily{})

	body, ct := multipartCSV(t, "file", "batch.csv", "data\n1\n")
	req := httptest.NewRequest(http.MethodPost, "/upload/vessel/7", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	ingestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, j.failed, "01JTEST", "queued-out job is failed, not left pending")
}

func TestJobStatus(t *testing.T) {
	j := newMockJobs()
	j.getJob = &types.UploadJob{ID: "01JTEST", Status: types.JobDone}
	h := newIngest(t, j, &mockQueue{}, &mockDaily{})

	req := httptest.NewRequest(http.MethodGet, "/upload/01JTEST/status", nil)
	rec := httptest.NewRecorder()
	ingestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"done"`)
}

func TestJobStatus_NotFound(t *testing.T) {
	j := newMockJobs()
	j.getErr = jobs.ErrJobNotFound
	h := newIngest(t, j, &mockQueue{}, &mockDaily{})

	req := httptest.NewRequest(http.MethodGet, "/upload/unknown/status", nil)
	rec := httptest.NewRecorder()
	ingestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistory_EmptyIsJSONArray(t *testing.T) {
	h := newIngest(t, newMockJobs(), &mockQueue{}, &mockDaily{})

	req := httptest.NewRequest(http.MethodGet, "/upload/vessel/7/history", nil)
	rec := httptest.NewRecorder()
	ingestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestDaily_NullCIIRendering(t *testing.T) {
	d := &mockDaily{rows: []types.DailyAggregate{{VesselID: 7, Date: "2024-01-01"}}}
	h := newIngest(t, newMockJobs(), &mockQueue{}, d)

	req := httptest.NewRequest(http.MethodGet, "/daily/vessel/7", nil)
	rec := httptest.NewRecorder()
	ingestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cii":null`)
}

func TestHealth_StoreDown(t *testing.T) {
	d := &mockDaily{pingErr: context.DeadlineExceeded}
	h := newIngest(t, newMockJobs(), &mockQueue{}, d)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ingestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
