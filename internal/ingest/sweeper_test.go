package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seakeeper/seakeeper/pkg/types"
)

type fakeStaleLister struct {
	mu      sync.Mutex
	stale   []types.UploadJob
	listErr error
	failed  map[string]string
}

func newFakeStaleLister(stale ...types.UploadJob) *fakeStaleLister {
	return &fakeStaleLister{stale: stale, failed: make(map[string]string)}
}

func (f *fakeStaleLister) ListStaleProcessing(_ context.Context, _ time.Duration) ([]types.UploadJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.stale, nil
}

func (f *fakeStaleLister) MarkFailed(_ context.Context, id, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == "01JBAD" {
		return errors.New("connection reset")
	}
	f.failed[id] = message
	return nil
}

func staleJob(id string) types.UploadJob {
	return types.UploadJob{
		ID:        id,
		VesselID:  9,
		Status:    types.JobProcessing,
		CreatedAt: time.Now().Add(-time.Hour),
	}
}

func TestSweepFailsStaleJobs(t *testing.T) {
	store := newFakeStaleLister(staleJob("01JAAA"), staleJob("01JBBB"))
	s := NewSweeper(store, slog.New(slog.DiscardHandler), 0, 0)

	swept := s.Sweep(context.Background())
	require.Equal(t, 2, swept)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, "processing timed out", store.failed["01JAAA"])
	assert.Equal(t, "processing timed out", store.failed["01JBBB"])
}

func TestSweepContinuesPastMarkFailure(t *testing.T) {
	store := newFakeStaleLister(staleJob("01JBAD"), staleJob("01JGOOD"))
	s := NewSweeper(store, slog.New(slog.DiscardHandler), 0, 0)

	swept := s.Sweep(context.Background())
	require.Equal(t, 1, swept)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NotContains(t, store.failed, "01JBAD")
	assert.Contains(t, store.failed, "01JGOOD")
}

func TestSweepListErrorIsNonFatal(t *testing.T) {
	store := newFakeStaleLister()
	store.listErr = errors.New("pool closed")
	s := NewSweeper(store, slog.New(slog.DiscardHandler), 0, 0)

	assert.Equal(t, 0, s.Sweep(context.Background()))
}

func TestSweeperStartStop(t *testing.T) {
	store := newFakeStaleLister(staleJob("01JAAA"))
	s := NewSweeper(store, slog.New(slog.DiscardHandler), time.Hour, time.Minute)

	s.Start(context.Background())
	// The loop sweeps once on start before waiting on the ticker.
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.failed) == 1
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop(context.Background())
}
