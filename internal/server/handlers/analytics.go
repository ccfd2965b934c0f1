package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/seakeeper/seakeeper/pkg/types"
)

// AnalyticsService is the analytics orchestration surface the API exposes.
type AnalyticsService interface {
	Frequencies(ctx context.Context, vesselID int, attr, dateStart, dateEnd string) ([]types.AttributeFrequency, error)
	Values(ctx context.Context, vesselID int, attr, dateStart, dateEnd string) ([]types.AttributeValue, error)
	Relation(ctx context.Context, vesselID int, attr1, attr2, dateStart, dateEnd string) ([]types.AttributeRelation, error)
	Completeness(ctx context.Context, vesselID int) ([]types.CompletenessBucket, error)
	Consumption(ctx context.Context, vesselID int, fuel, dateStart, dateEnd string, perNmile bool) (*types.ConsumptionStatistic, error)
	DataInfo(ctx context.Context, vesselID int, dateStart, dateEnd string, interval int) ([]types.CleanSample, error)
	CIISeries(ctx context.Context, vesselID int) ([]types.CIIPoint, error)
	OperatingPoint(ctx context.Context, vesselID int) (*types.OperatingPoint, error)
	TrimData(ctx context.Context, vesselID int, dateStart, dateEnd string) (*types.TrimData, error)
	SpeedScenarios(ctx context.Context, vesselID int, dateStart, dateEnd string) ([]types.Scenario, error)
	TrimScenarios(ctx context.Context, vesselID int, dateStart, dateEnd string) ([]types.Scenario, error)
}

// Pinger reports telemetry store liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Analytics contains the analytics API handlers.
type Analytics struct {
	svc       AnalyticsService
	telemetry Pinger
	logger    *slog.Logger
}

// NewAnalytics creates the analytics handlers.
func NewAnalytics(svc AnalyticsService, telemetry Pinger, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{svc: svc, telemetry: telemetry, logger: logger}
}

// Frequencies serves the attribute histogram view.
func (h *Analytics) Frequencies(w http.ResponseWriter, r *http.Request) {
	vesselID, err := vesselQuery(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	start, end, err := dateRange(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	out, err := h.svc.Frequencies(r.Context(), vesselID, r.URL.Query().Get("attribute"), start, end)
	if err != nil {
		writeError(w, h.logger, statusFor(err), "failed to compute frequencies", err)
		return
	}
	if out == nil {
		out = []types.AttributeFrequency{}
	}
	writeJSON(w, http.StatusOK, out)
}

// Values serves the dated attribute series view.
func (h *Analytics) Values(w http.ResponseWriter, r *http.Request) {
	vesselID, err := vesselQuery(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	start, end, err := dateRange(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	out, err := h.svc.Values(r.Context(), vesselID, r.URL.Query().Get("attribute"), start, end)
	if err != nil {
		writeError(w, h.logger, statusFor(err), "failed to query values", err)
		return
	}
	if out == nil {
		out = []types.AttributeValue{}
	}
	writeJSON(w, http.StatusOK, out)
}

// Relation serves the two-attribute scatter view.
func (h *Analytics) Relation(w http.ResponseWriter, r *http.Request) {
	vesselID, err := vesselQuery(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	start, end, err := dateRange(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	q := r.URL.Query()
	out, err := h.svc.Relation(r.Context(), vesselID, q.Get("attribute1"), q.Get("attribute2"), start, end)
	if err != nil {
		writeError(w, h.logger, statusFor(err), "failed to query relation", err)
		return
	}
	if out == nil {
		out = []types.AttributeRelation{}
	}
	writeJSON(w, http.StatusOK, out)
}

// Completeness serves the monthly coverage view.
func (h *Analytics) Completeness(w http.ResponseWriter, r *http.Request) {
	vesselID, err := vesselQuery(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	out, err := h.svc.Completeness(r.Context(), vesselID)
	if err != nil {
		writeError(w, h.logger, statusFor(err), "failed to query completeness", err)
		return
	}
	if out == nil {
		out = []types.CompletenessBucket{}
	}
	writeJSON(w, http.StatusOK, out)
}

// DataInfo serves sampled cleaned rows.
func (h *Analytics) DataInfo(w http.ResponseWriter, r *http.Request) {
	vesselID, err := vesselQuery(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	start, end, err := dateRange(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	interval, _ := strconv.Atoi(r.URL.Query().Get("sample_interval"))
	if interval < 1 {
		interval = 1
	}
	out, err := h.svc.DataInfo(r.Context(), vesselID, start, end, interval)
	if err != nil {
		writeError(w, h.logger, statusFor(err), "failed to query clean data", err)
		return
	}
	if out == nil {
		out = []types.CleanSample{}
	}
	writeJSON(w, http.StatusOK, out)
}

// ConsumptionNmile serves per-nautical-mile consumption statistics.
func (h *Analytics) ConsumptionNmile(w http.ResponseWriter, r *http.Request) {
	h.consumption(w, r, true)
}

// ConsumptionTotal serves total consumption statistics.
func (h *Analytics) ConsumptionTotal(w http.ResponseWriter, r *http.Request) {
	h.consumption(w, r, false)
}

func (h *Analytics) consumption(w http.ResponseWriter, r *http.Request, perNmile bool) {
	vesselID, err := vesselQuery(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	start, end, err := dateRange(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	out, err := h.svc.Consumption(r.Context(), vesselID, r.URL.Query().Get("fuel"), start, end, perNmile)
	if err != nil {
		writeError(w, h.logger, statusFor(err), "failed to compute consumption", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CII serves the trailing-year regulatory intensity series.
func (h *Analytics) CII(w http.ResponseWriter, r *http.Request) {
	vesselID, err := vesselIDParam(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	out, err := h.svc.CIISeries(r.Context(), vesselID)
	if err != nil {
		writeError(w, h.logger, statusFor(err), "failed to compute cii series", err)
		return
	}
	if out == nil {
		out = []types.CIIPoint{}
	}
	writeJSON(w, http.StatusOK, out)
}

// OperatingPoint serves the vessel's baseline operating state.
func (h *Analytics) OperatingPoint(w http.ResponseWriter, r *http.Request) {
	vesselID, err := vesselQuery(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	out, err := h.svc.OperatingPoint(r.Context(), vesselID)
	if err != nil {
		writeError(w, h.logger, statusFor(err), "failed to compute operating point", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// TrimData serves the trim series and period averages.
func (h *Analytics) TrimData(w http.ResponseWriter, r *http.Request) {
	vesselID, err := vesselQuery(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	start, end, err := dateRange(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	out, err := h.svc.TrimData(r.Context(), vesselID, start, end)
	if err != nil {
		writeError(w, h.logger, statusFor(err), "failed to compute trim data", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// SpeedScenarios serves the speed what-if table.
func (h *Analytics) SpeedScenarios(w http.ResponseWriter, r *http.Request) {
	h.scenarios(w, r, h.svc.SpeedScenarios)
}

// TrimScenarios serves the trim what-if table.
func (h *Analytics) TrimScenarios(w http.ResponseWriter, r *http.Request) {
	h.scenarios(w, r, h.svc.TrimScenarios)
}

func (h *Analytics) scenarios(w http.ResponseWriter, r *http.Request, fn func(context.Context, int, string, string) ([]types.Scenario, error)) {
	vesselID, err := vesselQuery(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	start, end, err := dateRange(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	out, err := fn(r.Context(), vesselID, start, end)
	if err != nil {
		writeError(w, h.logger, statusFor(err), "failed to compute scenarios", err)
		return
	}
	if out == nil {
		out = []types.Scenario{}
	}
	writeJSON(w, http.StatusOK, out)
}

// Health pings the telemetry store.
func (h *Analytics) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.telemetry.Ping(r.Context()); err != nil {
		writeError(w, h.logger, http.StatusServiceUnavailable, "telemetry store unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
