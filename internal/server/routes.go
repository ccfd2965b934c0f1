package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/seakeeper/seakeeper/internal/server/handlers"
)

// IngestRoutes mounts the ingestion API.
func IngestRoutes(h *handlers.Ingest) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Post("/upload/vessel/{vesselID}", h.Upload)
		r.Get("/upload/{jobID}/status", h.JobStatus)
		r.Get("/upload/vessel/{vesselID}/history", h.History)

		r.Get("/daily/vessel/{vesselID}", h.Daily)
	}
}

// AnalyticsRoutes mounts the analytics API.
func AnalyticsRoutes(h *handlers.Analytics) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Get("/statistics/frequencies", h.Frequencies)
		r.Get("/statistics/values", h.Values)
		r.Get("/statistics/relation", h.Relation)
		r.Get("/statistics/completeness", h.Completeness)
		r.Get("/statistics/datainfo", h.DataInfo)
		r.Get("/statistics/consumption/nmile", h.ConsumptionNmile)
		r.Get("/statistics/consumption/total", h.ConsumptionTotal)

		r.Get("/cii/vessel/{vesselID}", h.CII)

		r.Get("/optimization/values", h.OperatingPoint)
		r.Get("/optimization/trim", h.TrimData)
		r.Get("/optimization/speed-scenarios", h.SpeedScenarios)
		r.Get("/optimization/trim-scenarios", h.TrimScenarios)
	}
}
