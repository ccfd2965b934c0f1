// Package analytics orchestrates the read-only analytical views: statistics
// over the telemetry store, the regulatory intensity series, and the what-if
// optimization scenarios. It owns no state and never writes.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/seakeeper/seakeeper/internal/cii"
	"github.com/seakeeper/seakeeper/internal/metrics"
	"github.com/seakeeper/seakeeper/internal/model"
	"github.com/seakeeper/seakeeper/pkg/types"
)

// ErrNoData is returned when a vessel has no aggregated telemetry at all.
var ErrNoData = errors.New("analytics: no data for vessel")

// TelemetryReader is the slice of the telemetry store the service reads.
type TelemetryReader interface {
	Daily(ctx context.Context, vesselID, offset, limit int) ([]types.DailyAggregate, error)
	Frequencies(ctx context.Context, vesselID int, attr, dateStart, dateEnd string) ([]types.AttributeFrequency, error)
	Values(ctx context.Context, vesselID int, attr, dateStart, dateEnd string) ([]types.AttributeValue, error)
	Relation(ctx context.Context, vesselID int, attr1, attr2, dateStart, dateEnd string) ([]types.AttributeRelation, error)
	Completeness(ctx context.Context, vesselID int) ([]types.CompletenessBucket, error)
	Consumption(ctx context.Context, vesselID int, fuel, dateStart, dateEnd string, perNmile bool) (*types.ConsumptionStatistic, error)
	PeriodAverages(ctx context.Context, vesselID int, dateStart, dateEnd string) (types.TrimAverages, error)
	DataInfo(ctx context.Context, vesselID int, dateStart, dateEnd string, interval int) ([]types.CleanSample, error)
	CIISeries(ctx context.Context, vesselID int) ([]types.CIIPoint, error)
	TrimSeries(ctx context.Context, vesselID int, dateStart, dateEnd string) ([]types.TrimPoint, error)
	OperatingAverages(ctx context.Context, vesselID int) (speedWater, attained float64, ok bool, err error)
}

// VesselResolver resolves vessel particulars from the registry.
type VesselResolver interface {
	Vessel(ctx context.Context, vesselID int) (*types.VesselInfo, error)
}

// Models resolves predictive model artifacts.
type Models interface {
	Speed(vesselID int, featureSet string) (*model.Artifact, error)
	Trim(vesselID int) (*model.Artifact, error)
}

// Service wires the three collaborators behind the analytics API.
type Service struct {
	reader  TelemetryReader
	vessels VesselResolver
	models  Models
	logger  *slog.Logger
	now     func() time.Time
}

// New creates an analytics Service.
func New(reader TelemetryReader, vessels VesselResolver, models Models, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{reader: reader, vessels: vessels, models: models, logger: logger, now: time.Now}
}

// Frequencies returns the rounded-value histogram of a cleaned attribute.
func (s *Service) Frequencies(ctx context.Context, vesselID int, attr, dateStart, dateEnd string) ([]types.AttributeFrequency, error) {
	return s.reader.Frequencies(ctx, vesselID, attr, dateStart, dateEnd)
}

// Values returns the per-day series of a daily attribute.
func (s *Service) Values(ctx context.Context, vesselID int, attr, dateStart, dateEnd string) ([]types.AttributeValue, error) {
	return s.reader.Values(ctx, vesselID, attr, dateStart, dateEnd)
}

// Relation returns paired daily observations of two attributes.
func (s *Service) Relation(ctx context.Context, vesselID int, attr1, attr2, dateStart, dateEnd string) ([]types.AttributeRelation, error) {
	return s.reader.Relation(ctx, vesselID, attr1, attr2, dateStart, dateEnd)
}

// Completeness returns per-month aggregated day counts.
func (s *Service) Completeness(ctx context.Context, vesselID int) ([]types.CompletenessBucket, error) {
	return s.reader.Completeness(ctx, vesselID)
}

// Consumption returns the per-equipment fuel breakdown for one fuel kind.
func (s *Service) Consumption(ctx context.Context, vesselID int, fuel, dateStart, dateEnd string, perNmile bool) (*types.ConsumptionStatistic, error) {
	return s.reader.Consumption(ctx, vesselID, fuel, dateStart, dateEnd, perNmile)
}

// DataInfo returns sampled cleaned rows for the inspection view.
func (s *Service) DataInfo(ctx context.Context, vesselID int, dateStart, dateEnd string, interval int) ([]types.CleanSample, error) {
	return s.reader.DataInfo(ctx, vesselID, dateStart, dateEnd, interval)
}

// CIISeries returns the trailing year of attained CII with ratings and
// boundary bands. Registry failure degrades the series to bare values with
// N/A ratings rather than failing the request.
func (s *Service) CIISeries(ctx context.Context, vesselID int) ([]types.CIIPoint, error) {
	points, err := s.reader.CIISeries(ctx, vesselID)
	if err != nil {
		return nil, err
	}

	info, err := s.vessels.Vessel(ctx, vesselID)
	if err != nil {
		metrics.UpstreamFailures.Add(1)
		s.logger.Warn("cii series without ratings, vessel lookup failed",
			"vessel_id", vesselID, "error", err)
		for i := range points {
			points[i].Rating = cii.RatingNotApplicable
		}
		return points, nil
	}

	for i := range points {
		year := pointYear(points[i].Date, s.now().Year())
		points[i].CIIBoundaries = cii.Boundaries(year, info.ShipTypeCode, info.DeadWeight, info.GrossTonnage)
		if points[i].CII != nil {
			points[i].Rating = cii.Rating(*points[i].CII, year, info.ShipTypeCode, info.DeadWeight, info.GrossTonnage)
		} else {
			points[i].Rating = cii.RatingNotApplicable
		}
	}
	return points, nil
}

func pointYear(date string, fallback int) int {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fallback
	}
	return t.Year()
}

// rate grades an attained value against the current year's boundaries.
func (s *Service) rate(attained float64, info *types.VesselInfo) string {
	if attained <= 0 {
		return cii.RatingNotApplicable
	}
	return cii.Rating(attained, s.now().Year(), info.ShipTypeCode, info.DeadWeight, info.GrossTonnage)
}

// vessel resolves particulars, wrapping the failure counter. Optimization
// views cannot work without them.
func (s *Service) vessel(ctx context.Context, vesselID int) (*types.VesselInfo, error) {
	info, err := s.vessels.Vessel(ctx, vesselID)
	if err != nil {
		metrics.UpstreamFailures.Add(1)
		return nil, fmt.Errorf("resolve vessel %d: %w", vesselID, err)
	}
	return info, nil
}
