// Package handlers implements HTTP request handlers for the Seakeeper APIs.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seakeeper/seakeeper/internal/analytics"
	"github.com/seakeeper/seakeeper/internal/ingest"
	"github.com/seakeeper/seakeeper/internal/model"
	"github.com/seakeeper/seakeeper/internal/registry"
	"github.com/seakeeper/seakeeper/internal/store/jobs"
	"github.com/seakeeper/seakeeper/internal/store/telemetry"
)

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError logs the internal error and returns a sanitized JSON error to
// the client.
func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string, err error) {
	if err != nil {
		logger.Error(msg, "error", err, "status", status)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps the domain error taxonomy onto HTTP statuses. Unrecognized
// errors are internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, telemetry.ErrBadAttribute):
		return http.StatusBadRequest
	case errors.Is(err, jobs.ErrJobNotFound),
		errors.Is(err, registry.ErrVesselNotFound),
		errors.Is(err, model.ErrModelNotFound),
		errors.Is(err, analytics.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, ingest.ErrQueueFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, registry.ErrUpstreamUnavailable),
		errors.Is(err, registry.ErrUpstreamRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// vesselIDParam parses the {vesselID} URL parameter.
func vesselIDParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "vesselID"))
	if err != nil || id <= 0 {
		return 0, errors.New("vessel id must be a positive integer")
	}
	return id, nil
}

// vesselQuery parses the vessel_id query parameter.
func vesselQuery(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.URL.Query().Get("vessel_id"))
	if err != nil || id <= 0 {
		return 0, errors.New("vessel_id must be a positive integer")
	}
	return id, nil
}

// pageParams parses offset/limit with sane bounds.
func pageParams(r *http.Request) (offset, limit int) {
	q := r.URL.Query()
	offset, _ = strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(q.Get("limit"))
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return offset, limit
}

// dateRange parses the required date_start/date_end query parameters.
func dateRange(r *http.Request) (start, end string, err error) {
	q := r.URL.Query()
	start, err = parseDateParam(q.Get("date_start"))
	if err != nil {
		return "", "", errors.New("date_start must be a YYYY-MM-DD date")
	}
	end, err = parseDateParam(q.Get("date_end"))
	if err != nil {
		return "", "", errors.New("date_end must be a YYYY-MM-DD date")
	}
	if end < start {
		return "", "", errors.New("date_end must not precede date_start")
	}
	return start, end, nil
}

func parseDateParam(s string) (string, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02"), nil
}
