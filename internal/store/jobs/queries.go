package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/seakeeper/seakeeper/pkg/types"
)

const jobColumns = `id, vessel_id, file_path, status,
		date_start, date_end, COALESCE(error_message, ''), created_at, completed_at`

func scanJob(row pgx.Row) (*types.UploadJob, error) {
	var (
		j      types.UploadJob
		status string
	)
	err := row.Scan(&j.ID, &j.VesselID, &j.FilePath, &status,
		&j.DateStart, &j.DateEnd, &j.ErrorMessage, &j.CreatedAt, &j.CompletedAt)
	if err != nil {
		return nil, err
	}
	j.Status = types.JobStatus(status)
	return &j, nil
}

// Get returns one job by id.
func (s *Store) Get(ctx context.Context, id string) (*types.UploadJob, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+jobColumns+` FROM upload_jobs WHERE id = $1
	`, id)
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query job %s: %w", id, err)
	}
	return j, nil
}

// ListStaleProcessing returns jobs still marked processing that were created
// more than olderThan ago. A job in that state outlived its worker, usually
// because the process died mid-ingestion.
func (s *Store) ListStaleProcessing(ctx context.Context, olderThan time.Duration) ([]types.UploadJob, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM upload_jobs
		WHERE status = $1 AND created_at < NOW() - $2::interval
		ORDER BY created_at
	`, string(types.JobProcessing), olderThan)
	if err != nil {
		return nil, fmt.Errorf("query stale jobs: %w", err)
	}
	defer rows.Close()

	var out []types.UploadJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// ListByVessel returns a page of a vessel's jobs, newest first.
func (s *Store) ListByVessel(ctx context.Context, vesselID, offset, limit int) ([]types.UploadJob, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM upload_jobs
		WHERE vessel_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, vesselID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query vessel %d jobs: %w", vesselID, err)
	}
	defer rows.Close()

	var out []types.UploadJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}
