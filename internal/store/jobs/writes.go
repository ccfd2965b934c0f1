package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/seakeeper/seakeeper/pkg/types"
)

// maxErrorMessage caps stored failure messages so a pathological CSV cannot
// bloat the jobs table.
const maxErrorMessage = 1000

// Create inserts a new pending job for the given upload and returns it. The
// id is a fresh ULID, so ids sort by creation time.
func (s *Store) Create(ctx context.Context, vesselID int, filePath string) (*types.UploadJob, error) {
	job := &types.UploadJob{
		ID:        ulid.Make().String(),
		VesselID:  vesselID,
		FilePath:  filePath,
		Status:    types.JobPending,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO upload_jobs (id, vessel_id, file_path, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, job.ID, job.VesselID, job.FilePath, string(job.Status), job.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create upload job: %w", err)
	}
	return job, nil
}

// MarkProcessing moves a pending job to processing.
func (s *Store) MarkProcessing(ctx context.Context, id string) error {
	return s.transition(ctx, id, types.JobProcessing, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE upload_jobs SET status = $2 WHERE id = $1
		`, id, string(types.JobProcessing))
		return err
	})
}

// MarkDone completes a job, recording the date range actually covered by
// the cleaned batch. Both dates are nil when cleaning removed every row.
func (s *Store) MarkDone(ctx context.Context, id string, dateStart, dateEnd *time.Time) error {
	return s.transition(ctx, id, types.JobDone, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE upload_jobs
			SET status = $2, date_start = $3, date_end = $4, completed_at = NOW()
			WHERE id = $1
		`, id, string(types.JobDone), dateStart, dateEnd)
		return err
	})
}

// MarkFailed fails a job with a truncated error message.
func (s *Store) MarkFailed(ctx context.Context, id, message string) error {
	if len(message) > maxErrorMessage {
		message = message[:maxErrorMessage]
	}
	return s.transition(ctx, id, types.JobFailed, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE upload_jobs
			SET status = $2, error_message = $3, completed_at = NOW()
			WHERE id = $1
		`, id, string(types.JobFailed), message)
		return err
	})
}

// transition applies a status update under a row lock after validating the
// lifecycle rule, so a terminal job can never be revived by a late writer.
func (s *Store) transition(ctx context.Context, id string, to types.JobStatus, update func(context.Context, pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx, `
		SELECT status FROM upload_jobs WHERE id = $1 FOR UPDATE
	`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrJobNotFound
	}
	if err != nil {
		return fmt.Errorf("lock job %s: %w", id, err)
	}
	if !types.CanTransition(types.JobStatus(current), to) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, current, to)
	}
	if err := update(ctx, tx); err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}
