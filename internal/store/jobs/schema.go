// Package jobs implements the durable Postgres store for upload job
// bookkeeping. Telemetry itself never touches Postgres; only the job
// lifecycle lives here.
package jobs

const schemaDDL = `
CREATE TABLE IF NOT EXISTS upload_jobs (
    id            TEXT PRIMARY KEY,
    vessel_id     INTEGER NOT NULL,
    file_path     TEXT NOT NULL,
    status        TEXT NOT NULL,
    date_start    DATE,
    date_end      DATE,
    error_message TEXT,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    completed_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_upload_jobs_vessel ON upload_jobs (vessel_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_upload_jobs_status ON upload_jobs (status);
`
