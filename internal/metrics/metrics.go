// Package metrics exposes runtime counters via expvar.
package metrics

import "expvar"

var (
	UploadsAccepted    = expvar.NewInt("uploads_accepted")
	UploadsRejected    = expvar.NewInt("uploads_rejected")
	JobsProcessed      = expvar.NewInt("jobs_processed")
	JobsFailed         = expvar.NewInt("jobs_failed")
	JobsSwept          = expvar.NewInt("jobs_swept")
	RowsIngested       = expvar.NewInt("rows_ingested")
	RowsCleaned        = expvar.NewInt("rows_cleaned")
	QueueRejections    = expvar.NewInt("queue_rejections")
	CIIRecomputations  = expvar.NewInt("cii_recomputations")
	UpstreamFailures   = expvar.NewInt("upstream_failures")
	PredictionFailures = expvar.NewInt("prediction_failures")
)
