package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/seakeeper/seakeeper/internal/tabular"
	"github.com/seakeeper/seakeeper/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeJobs struct {
	mu         sync.Mutex
	processing []string
	done       map[string][2]*time.Time
	failed     map[string]string
	signal     chan struct{}
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{
		done:   make(map[string][2]*time.Time),
		failed: make(map[string]string),
		signal: make(chan struct{}, 16),
	}
}

func (f *fakeJobs) MarkProcessing(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processing = append(f.processing, id)
	return nil
}

func (f *fakeJobs) MarkDone(_ context.Context, id string, start, end *time.Time) error {
	f.mu.Lock()
	f.done[id] = [2]*time.Time{start, end}
	f.mu.Unlock()
	f.signal <- struct{}{}
	return nil
}

func (f *fakeJobs) MarkFailed(_ context.Context, id, message string) error {
	f.mu.Lock()
	f.failed[id] = message
	f.mu.Unlock()
	f.signal <- struct{}{}
	return nil
}

func (f *fakeJobs) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.signal:
	case <-time.After(5 * time.Second):
		t.Fatal("job never reached a terminal state")
	}
}

type fakeTelemetry struct {
	mu          sync.Mutex
	rawRows     int
	cleanRows   int
	dailyRange  [2]string
	ciiCapacity float64
	recomputed  bool
	insertErr   error
}

func (f *fakeTelemetry) InsertRaw(_ context.Context, _ int, fr *tabular.Frame) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.rawRows = fr.Len()
	return fr.Len(), nil
}

func (f *fakeTelemetry) InsertClean(_ context.Context, _ int, fr *tabular.Frame) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanRows = fr.Len()
	return fr.Len(), nil
}

func (f *fakeTelemetry) UpsertDaily(_ context.Context, _ int, start, end string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dailyRange = [2]string{start, end}
	return nil
}

func (f *fakeTelemetry) ApplyCIIComponent(_ context.Context, _ int, capacity float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ciiCapacity = capacity
	return nil
}

func (f *fakeTelemetry) RecomputeCII(_ context.Context, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recomputed = true
	return nil
}

const uploadCSV = `PCDate,PCTime,ShipSpdToWater,MERpm,ShipDraughtAstern,ShipDraughtBow,MEHFOActCons
2024-03-01,00:00:00,12,80,8.2,7.8,1.5
2024-03-02,00:00:00,13,82,8.2,7.8,1.6
2024-03-03,00:00:00,,82,8.2,7.8,1.6
`

func writeUpload(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func startWorker(t *testing.T, jobs JobStore, tel TelemetryWriter) *Worker {
	t.Helper()
	w := New(jobs, tel, slog.New(slog.DiscardHandler), 1, 4)
	w.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		w.Stop(ctx)
	})
	return w
}

func TestWorker_ProcessesUpload(t *testing.T) {
	jobs := newFakeJobs()
	tel := &fakeTelemetry{}
	w := startWorker(t, jobs, tel)

	job := types.UploadJob{ID: "job-1", VesselID: 5, FilePath: writeUpload(t, uploadCSV)}
	require.NoError(t, w.Enqueue(Task{Job: job, Pitch: types.DefaultPitch, Capacity: 50000}))
	jobs.wait(t)

	jobs.mu.Lock()
	defer jobs.mu.Unlock()
	assert.Equal(t, []string{"job-1"}, jobs.processing)
	bounds, ok := jobs.done["job-1"]
	require.True(t, ok, "job should complete: %v", jobs.failed)
	require.NotNil(t, bounds[0])
	assert.Equal(t, "2024-03-01", bounds[0].Format("2006-01-02"))
	assert.Equal(t, "2024-03-02", bounds[1].Format("2006-01-02"))

	tel.mu.Lock()
	defer tel.mu.Unlock()
	assert.Equal(t, 3, tel.rawRows, "raw keeps all parsed rows")
	assert.Equal(t, 2, tel.cleanRows, "row with a null cell is cleaned away")
	assert.Equal(t, [2]string{"2024-03-01", "2024-03-02"}, tel.dailyRange)
	assert.Equal(t, 50000.0, tel.ciiCapacity)
	assert.True(t, tel.recomputed)
}

func TestWorker_SkipsCIIWithoutCapacity(t *testing.T) {
	jobs := newFakeJobs()
	tel := &fakeTelemetry{}
	w := startWorker(t, jobs, tel)

	job := types.UploadJob{ID: "job-2", VesselID: 5, FilePath: writeUpload(t, uploadCSV)}
	require.NoError(t, w.Enqueue(Task{Job: job, Pitch: types.DefaultPitch}))
	jobs.wait(t)

	tel.mu.Lock()
	defer tel.mu.Unlock()
	assert.Zero(t, tel.ciiCapacity)
	assert.False(t, tel.recomputed)
}

func TestWorker_EmptyCleanBatchStillCompletes(t *testing.T) {
	jobs := newFakeJobs()
	tel := &fakeTelemetry{}
	w := startWorker(t, jobs, tel)

	// rpm below the underway threshold, every row filtered
	csv := `PCDate,ShipSpdToWater,MERpm,ShipDraughtAstern,ShipDraughtBow
2024-03-01,12,10,8.2,7.8
`
	job := types.UploadJob{ID: "job-3", VesselID: 5, FilePath: writeUpload(t, csv)}
	require.NoError(t, w.Enqueue(Task{Job: job, Pitch: types.DefaultPitch, Capacity: 50000}))
	jobs.wait(t)

	jobs.mu.Lock()
	defer jobs.mu.Unlock()
	bounds, ok := jobs.done["job-3"]
	require.True(t, ok, "empty cleaned batch is not a failure: %v", jobs.failed)
	assert.Nil(t, bounds[0])
	assert.Nil(t, bounds[1])
}

func TestWorker_FailureMarksJobFailed(t *testing.T) {
	jobs := newFakeJobs()
	tel := &fakeTelemetry{insertErr: errors.New("disk full")}
	w := startWorker(t, jobs, tel)

	job := types.UploadJob{ID: "job-4", VesselID: 5, FilePath: writeUpload(t, uploadCSV)}
	require.NoError(t, w.Enqueue(Task{Job: job, Pitch: types.DefaultPitch}))
	jobs.wait(t)

	jobs.mu.Lock()
	defer jobs.mu.Unlock()
	assert.Contains(t, jobs.failed["job-4"], "disk full")
	assert.Empty(t, jobs.done)
}

func TestWorker_MissingFileMarksJobFailed(t *testing.T) {
	jobs := newFakeJobs()
	tel := &fakeTelemetry{}
	w := startWorker(t, jobs, tel)

	job := types.UploadJob{ID: "job-5", VesselID: 5, FilePath: "/nonexistent.csv"}
	require.NoError(t, w.Enqueue(Task{Job: job}))
	jobs.wait(t)

	jobs.mu.Lock()
	defer jobs.mu.Unlock()
	assert.Contains(t, jobs.failed["job-5"], "open upload")
}

func TestWorker_QueueFull(t *testing.T) {
	// never started, so the queue only drains by capacity
	w := New(newFakeJobs(), &fakeTelemetry{}, slog.New(slog.DiscardHandler), 1, 1)

	require.NoError(t, w.Enqueue(Task{}))
	assert.ErrorIs(t, w.Enqueue(Task{}), ErrQueueFull)
}
