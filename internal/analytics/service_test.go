package analytics

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seakeeper/seakeeper/internal/model"
	"github.com/seakeeper/seakeeper/internal/registry"
	"github.com/seakeeper/seakeeper/pkg/types"
)

type fakeReader struct {
	TelemetryReader

	ciiSeries []types.CIIPoint
	averages  types.TrimAverages
	trimRows  []types.TrimPoint
	avgSpeed  float64
	avgCII    float64
	hasData   bool
}

func (f *fakeReader) CIISeries(context.Context, int) ([]types.CIIPoint, error) {
	return f.ciiSeries, nil
}

func (f *fakeReader) PeriodAverages(context.Context, int, string, string) (types.TrimAverages, error) {
	return f.averages, nil
}

func (f *fakeReader) TrimSeries(context.Context, int, string, string) ([]types.TrimPoint, error) {
	return f.trimRows, nil
}

func (f *fakeReader) OperatingAverages(context.Context, int) (float64, float64, bool, error) {
	return f.avgSpeed, f.avgCII, f.hasData, nil
}

type fakeVessels struct {
	info *types.VesselInfo
	err  error
}

func (f *fakeVessels) Vessel(context.Context, int) (*types.VesselInfo, error) {
	return f.info, f.err
}

type fakeModels struct {
	speedAll  *model.Artifact
	speedLess *model.Artifact
	trim      *model.Artifact
}

func (f *fakeModels) Speed(_ int, featureSet string) (*model.Artifact, error) {
	if featureSet == model.FeatureSetAll && f.speedAll != nil {
		return f.speedAll, nil
	}
	if featureSet == model.FeatureSetLess && f.speedLess != nil {
		return f.speedLess, nil
	}
	return nil, model.ErrModelNotFound
}

func (f *fakeModels) Trim(int) (*model.Artifact, error) {
	if f.trim == nil {
		return nil, model.ErrModelNotFound
	}
	return f.trim, nil
}

var bulker = &types.VesselInfo{
	VesselID:     5,
	DeadWeight:   52000,
	GrossTonnage: 31000,
	ShipTypeCode: "I001",
}

func newService(r *fakeReader, v *fakeVessels, m *fakeModels) *Service {
	return New(r, v, m, slog.New(slog.DiscardHandler))
}

func fptr(v float64) *float64 { return &v }

func TestCIISeries_RatesEachPoint(t *testing.T) {
	reader := &fakeReader{ciiSeries: []types.CIIPoint{
		{Date: "2026-02-01", CII: fptr(2.0)},
		{Date: "2026-02-02", CII: nil},
	}}
	svc := newService(reader, &fakeVessels{info: bulker}, &fakeModels{})

	points, err := svc.CIISeries(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.NotEqual(t, "N/A", points[0].Rating)
	assert.Greater(t, points[0].Superior, 0.0, "boundaries filled in")
	assert.Greater(t, points[0].Inferior, points[0].Superior)
	assert.Equal(t, "N/A", points[1].Rating, "days without a value stay unrated")
}

func TestCIISeries_DegradesWithoutRegistry(t *testing.T) {
	reader := &fakeReader{ciiSeries: []types.CIIPoint{{Date: "2026-02-01", CII: fptr(2.0)}}}
	svc := newService(reader, &fakeVessels{err: registry.ErrUpstreamUnavailable}, &fakeModels{})

	points, err := svc.CIISeries(context.Background(), 5)
	require.NoError(t, err, "registry outage must not break the series")
	require.Len(t, points, 1)
	assert.Equal(t, "N/A", points[0].Rating)
	assert.Zero(t, points[0].Superior)
}

func TestOperatingPoint(t *testing.T) {
	reader := &fakeReader{avgSpeed: 12.5, avgCII: 3.1, hasData: true}
	svc := newService(reader, &fakeVessels{info: bulker}, &fakeModels{})

	op, err := svc.OperatingPoint(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 31000.0, op.GrossTonnage)
	assert.Equal(t, 12.5, op.SpeedWater)
	assert.NotEmpty(t, op.Rating)
}

func TestOperatingPoint_NoData(t *testing.T) {
	svc := newService(&fakeReader{}, &fakeVessels{info: bulker}, &fakeModels{})

	_, err := svc.OperatingPoint(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestOperatingPoint_RegistryFailureIsFatal(t *testing.T) {
	svc := newService(&fakeReader{hasData: true}, &fakeVessels{err: registry.ErrUpstreamUnavailable}, &fakeModels{})

	_, err := svc.OperatingPoint(context.Background(), 5)
	assert.ErrorIs(t, err, registry.ErrUpstreamUnavailable)
}

func TestSpeedScenarios_TwentyPointsZeroExcluded(t *testing.T) {
	reader := &fakeReader{averages: types.TrimAverages{
		SpeedWater: 12, Draft: 8, Trim: 0.5, FuelConsumptionNmile: 0.2, CII: 3,
	}}
	models := &fakeModels{speedAll: &model.Artifact{
		Name:         "5_speed_v2_all.json",
		Intercept:    0.05,
		Coefficients: map[string]float64{"speed_water": 0.01},
	}}
	svc := newService(reader, &fakeVessels{info: bulker}, models)

	scenarios, err := svc.SpeedScenarios(context.Background(), 5, "2026-01-01", "2026-01-31")
	require.NoError(t, err)
	require.Len(t, scenarios, 20)

	for _, sc := range scenarios {
		assert.NotZero(t, sc.Delta)
		assert.Equal(t, "5_speed_v2_all.json", sc.ModelName)
	}
	assert.InDelta(t, 12*0.75, scenarios[0].Adjusted, 1e-9)
	assert.InDelta(t, -25, scenarios[0].Delta, 1e-9)
	assert.InDelta(t, 12*1.25, scenarios[19].Adjusted, 1e-9)

	slow := scenarios[0]
	assert.InDelta(t, 0.05+0.01*9, slow.PredictedConsumption, 1e-9)
	assert.InDelta(t, 0.2-slow.PredictedConsumption, slow.FuelSaved, 1e-9)
	assert.InDelta(t, 3*slow.PredictedConsumption/0.2, slow.PredictedCII, 1e-9)
}

func TestSpeedScenarios_FallsBackToReducedModel(t *testing.T) {
	reader := &fakeReader{averages: types.TrimAverages{SpeedWater: 12, FuelConsumptionNmile: 0.2}}
	models := &fakeModels{speedLess: &model.Artifact{
		Name:         "5_speed_v1_less.json",
		Intercept:    0.1,
		Coefficients: map[string]float64{"speed_water": 0.02},
	}}
	svc := newService(reader, &fakeVessels{info: bulker}, models)

	scenarios, err := svc.SpeedScenarios(context.Background(), 5, "", "")
	require.NoError(t, err)
	assert.Equal(t, "5_speed_v1_less.json", scenarios[0].ModelName)
}

func TestSpeedScenarios_NoModel(t *testing.T) {
	reader := &fakeReader{averages: types.TrimAverages{SpeedWater: 12}}
	svc := newService(reader, &fakeVessels{info: bulker}, &fakeModels{})

	_, err := svc.SpeedScenarios(context.Background(), 5, "", "")
	assert.ErrorIs(t, err, model.ErrModelNotFound)
}

func TestTrimScenarios_NinePointsWithFallback(t *testing.T) {
	reader := &fakeReader{averages: types.TrimAverages{
		SpeedWater: 12, Draft: 8, Trim: 0.5, FuelConsumptionNmile: 0.2, CII: 3,
	}}
	// negative intercept makes low-trim predictions unusable
	models := &fakeModels{trim: &model.Artifact{
		Name:         "5_trim_v1.json",
		Intercept:    -0.1,
		Coefficients: map[string]float64{"trim": 0.1},
	}}
	svc := newService(reader, &fakeVessels{info: bulker}, models)

	scenarios, err := svc.TrimScenarios(context.Background(), 5, "", "")
	require.NoError(t, err)
	require.Len(t, scenarios, 9)

	assert.InDelta(t, -1.5, scenarios[0].Adjusted, 1e-9, "base trim 0.5 minus 2.0")
	assert.InDelta(t, 2.5, scenarios[8].Adjusted, 1e-9)

	// trim -1.5 predicts -0.25, unusable, falls back to base consumption
	assert.InDelta(t, 0.2, scenarios[0].PredictedConsumption, 1e-9)
	assert.InDelta(t, 0.0, scenarios[0].FuelSaved, 1e-9)

	// trim 2.5 predicts 0.15, usable
	assert.InDelta(t, 0.15, scenarios[8].PredictedConsumption, 1e-9)
}

func TestTrimData(t *testing.T) {
	reader := &fakeReader{
		trimRows: []types.TrimPoint{{Date: "2026-01-01", Trim: 0.4}},
		averages: types.TrimAverages{Trim: 0.4, CII: 2.5},
	}
	svc := newService(reader, &fakeVessels{info: bulker}, &fakeModels{})

	td, err := svc.TrimData(context.Background(), 5, "2026-01-01", "2026-01-31")
	require.NoError(t, err)
	require.Len(t, td.Values, 1)
	assert.NotEmpty(t, td.Averages.Rating)
}

func TestRate_ZeroIsNotApplicable(t *testing.T) {
	svc := newService(&fakeReader{}, &fakeVessels{info: bulker}, &fakeModels{})
	assert.Equal(t, "N/A", svc.rate(0, bulker))
}
