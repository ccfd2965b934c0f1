package analytics

import (
	"context"
	"errors"
	"math"

	"github.com/seakeeper/seakeeper/internal/metrics"
	"github.com/seakeeper/seakeeper/internal/model"
	"github.com/seakeeper/seakeeper/pkg/types"
)

// Speed what-if grid: every 2.5% from -25% to +25%, the unchanged point
// excluded, 20 scenarios.
const (
	speedStep  = 0.025
	speedSpan  = 0.25
	trimStep   = 0.5
	trimOffset = 2.0
)

// OperatingPoint returns the vessel's historical average operating state.
func (s *Service) OperatingPoint(ctx context.Context, vesselID int) (*types.OperatingPoint, error) {
	info, err := s.vessel(ctx, vesselID)
	if err != nil {
		return nil, err
	}
	speed, attained, ok, err := s.reader.OperatingAverages(ctx, vesselID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoData
	}
	return &types.OperatingPoint{
		GrossTonnage: info.GrossTonnage,
		SpeedWater:   speed,
		CII:          attained,
		Rating:       s.rate(attained, info),
	}, nil
}

// TrimData returns the trim series plus period averages with a rating.
func (s *Service) TrimData(ctx context.Context, vesselID int, dateStart, dateEnd string) (*types.TrimData, error) {
	info, err := s.vessel(ctx, vesselID)
	if err != nil {
		return nil, err
	}
	series, err := s.reader.TrimSeries(ctx, vesselID, dateStart, dateEnd)
	if err != nil {
		return nil, err
	}
	avg, err := s.reader.PeriodAverages(ctx, vesselID, dateStart, dateEnd)
	if err != nil {
		return nil, err
	}
	avg.Rating = s.rate(avg.CII, info)
	return &types.TrimData{Values: series, Averages: avg}, nil
}

// SpeedScenarios predicts the consumption impact of sailing faster or slower
// than the period average. It prefers the full-feature speed model and falls
// back to the reduced one when the vessel has no full-feature artifact.
func (s *Service) SpeedScenarios(ctx context.Context, vesselID int, dateStart, dateEnd string) ([]types.Scenario, error) {
	info, err := s.vessel(ctx, vesselID)
	if err != nil {
		return nil, err
	}
	avg, err := s.reader.PeriodAverages(ctx, vesselID, dateStart, dateEnd)
	if err != nil {
		return nil, err
	}
	if avg.SpeedWater <= 0 {
		return nil, ErrNoData
	}

	artifact, err := s.models.Speed(vesselID, model.FeatureSetAll)
	if errors.Is(err, model.ErrModelNotFound) {
		artifact, err = s.models.Speed(vesselID, model.FeatureSetLess)
	}
	if err != nil {
		return nil, err
	}

	var out []types.Scenario
	for delta := -speedSpan; delta <= speedSpan+1e-9; delta += speedStep {
		if math.Abs(delta) < 1e-9 {
			continue
		}
		adjusted := avg.SpeedWater * (1 + delta)
		predicted := artifact.Predict(map[string]float64{
			"speed_water": adjusted,
			"draft":       avg.Draft,
			"trim":        avg.Trim,
		})
		out = append(out, s.scenario(adjusted, delta*100, predicted, avg, info, artifact.Name))
	}
	return out, nil
}

// TrimScenarios predicts the consumption impact of retrimming the vessel:
// offsets from -2.0 to +2.0 meters in 0.5 steps, the unchanged point
// included as the baseline row.
func (s *Service) TrimScenarios(ctx context.Context, vesselID int, dateStart, dateEnd string) ([]types.Scenario, error) {
	info, err := s.vessel(ctx, vesselID)
	if err != nil {
		return nil, err
	}
	avg, err := s.reader.PeriodAverages(ctx, vesselID, dateStart, dateEnd)
	if err != nil {
		return nil, err
	}

	artifact, err := s.models.Trim(vesselID)
	if err != nil {
		return nil, err
	}

	var out []types.Scenario
	for offset := -trimOffset; offset <= trimOffset+1e-9; offset += trimStep {
		adjusted := avg.Trim + offset
		predicted := artifact.Predict(map[string]float64{
			"trim":        adjusted,
			"speed_water": avg.SpeedWater,
			"draft":       avg.Draft,
		})
		if !isUsablePrediction(predicted) {
			metrics.PredictionFailures.Add(1)
			predicted = avg.FuelConsumptionNmile
		}
		out = append(out, s.scenario(adjusted, offset, predicted, avg, info, artifact.Name))
	}
	return out, nil
}

// scenario assembles one what-if row. The predicted CII scales the attained
// average proportionally with consumption; the rating grades that scaled
// value against the current year.
func (s *Service) scenario(adjusted, delta, predicted float64, avg types.TrimAverages, info *types.VesselInfo, modelName string) types.Scenario {
	predictedCII := 0.0
	if avg.FuelConsumptionNmile > 0 && avg.CII > 0 {
		predictedCII = avg.CII * predicted / avg.FuelConsumptionNmile
	}
	return types.Scenario{
		Adjusted:             adjusted,
		Delta:                delta,
		PredictedConsumption: predicted,
		FuelSaved:            avg.FuelConsumptionNmile - predicted,
		PredictedCII:         predictedCII,
		Rating:               s.rate(predictedCII, info),
		ModelName:            modelName,
	}
}

func isUsablePrediction(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
