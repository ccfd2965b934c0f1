// Package types defines the public domain types for the Seakeeper vessel
// telemetry platform.
package types

import "time"

// DefaultPitch is the propeller pitch assumed when a caller supplies none.
const DefaultPitch = 6.058

// JobStatus represents the lifecycle state of an upload job.
type JobStatus string

// JobStatus values enumerate the upload job lifecycle states.
const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)

// UploadJob is the durable bookkeeping record for one CSV upload. A job
// exclusively owns its file artifact. VesselID is a cross-service reference
// held without foreign-key enforcement; it may be stale or dangling.
type UploadJob struct {
	ID           string     `json:"id"`
	VesselID     int        `json:"vessel_id"`
	FilePath     string     `json:"file_path"`
	Status       JobStatus  `json:"status"`
	DateStart    *time.Time `json:"date_start,omitempty"`
	DateEnd      *time.Time `json:"date_end,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// VesselInfo is the subset of vessel-registry fields the analytics layer
// needs. ShipTypeCode is resolved through the meta service's id-to-code map.
type VesselInfo struct {
	VesselID     int
	DeadWeight   float64
	GrossTonnage float64
	ShipTypeCode string
	Pitch        float64
}

// DailyAggregate is one vessel-day of mean telemetry plus the regulatory
// fields. CII and CIIComponent are nil when the stored value is 0, which
// downstream consumers must read as "unknown", never as a true zero.
type DailyAggregate struct {
	VesselID                int      `json:"vessel_id"`
	Date                    string   `json:"date"`
	SpeedGround             *float64 `json:"speed_ground"`
	SpeedWater              *float64 `json:"speed_water"`
	ShaftPower              *float64 `json:"me_shaft_power"`
	RPM                     *float64 `json:"me_rpm"`
	FuelConsumptionNmile    *float64 `json:"me_fuel_consumption_nmile"`
	MainHFOConsumption      *float64 `json:"me_hfo_act_cons"`
	MainMGOConsumption      *float64 `json:"me_mgo_act_cons"`
	BoilerHFOConsumption    *float64 `json:"blr_hfo_act_cons"`
	BoilerMGOConsumption    *float64 `json:"blr_mgo_act_cons"`
	DieselGenHFOConsumption *float64 `json:"dg_hfo_act_cons"`
	DieselGenMGOConsumption *float64 `json:"dg_mgo_act_cons"`
	SlipRatio               *float64 `json:"slip_ratio"`
	Draft                   *float64 `json:"draft"`
	WindSpeed               *float64 `json:"wind_speed"`
	CIIComponent            *float64 `json:"cii_component"`
	CII                     *float64 `json:"cii"`
	Rating                  string   `json:"cii_rating,omitempty"`
}

// AttributeFrequency is one bucket of a frequency histogram.
type AttributeFrequency struct {
	Value      float64 `json:"attribute_value"`
	Count      int     `json:"frequency"`
	Percentage float64 `json:"percentage"`
}

// AttributeValue is one dated point of a per-day attribute series.
type AttributeValue struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// AttributeRelation is one scatter point relating two attributes.
type AttributeRelation struct {
	Value1 *float64 `json:"value1"`
	Value2 *float64 `json:"value2"`
}

// CompletenessBucket counts aggregated days in one calendar month.
type CompletenessBucket struct {
	Month string `json:"month"` // "2006-01"
	Days  int    `json:"days"`
}

// ConsumptionStatistic breaks fuel consumption down by equipment type for
// a single fuel kind. RealStartDate/RealEndDate are the actual data bounds
// inside the requested range.
type ConsumptionStatistic struct {
	MainEngine    float64 `json:"me"`
	DieselGen     float64 `json:"dg"`
	Boiler        float64 `json:"blr"`
	Total         float64 `json:"total"`
	RealStartDate string  `json:"real_start_date"`
	RealEndDate   string  `json:"real_end_date"`
}

// CIIBoundaries are the rating cut-point values for one vessel and year.
type CIIBoundaries struct {
	Superior float64 `json:"superior"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Inferior float64 `json:"inferior"`
}

// CIIPoint is one day of the CII series with its rating and boundary band.
type CIIPoint struct {
	Date         string   `json:"date"`
	CII          *float64 `json:"cii"`
	CIIComponent *float64 `json:"cii_component"`
	Rating       string   `json:"rating"`
	CIIBoundaries
}

// OperatingPoint is a vessel's historical average operating state, used as
// the baseline for what-if scenarios.
type OperatingPoint struct {
	GrossTonnage float64 `json:"gross_ton"`
	SpeedWater   float64 `json:"speed_water"`
	CII          float64 `json:"cii"`
	Rating       string  `json:"cii_rating"`
}

// TrimPoint is one dated trim observation.
type TrimPoint struct {
	Date string  `json:"date"`
	Trim float64 `json:"trim"`
}

// TrimAverages are the period means backing the trim view.
type TrimAverages struct {
	Trim                 float64 `json:"trim"`
	Draft                float64 `json:"draft"`
	SpeedWater           float64 `json:"speed_water"`
	FuelConsumptionNmile float64 `json:"me_fuel_consumption_nmile"`
	CII                  float64 `json:"cii"`
	Rating               string  `json:"cii_rating"`
}

// TrimData is the full trim series plus period averages.
type TrimData struct {
	Values   []TrimPoint  `json:"trim_values"`
	Averages TrimAverages `json:"averages"`
}

// Scenario is one row of a what-if table: an adjusted speed or trim value,
// its delta from the baseline, and the model's predicted outcome.
type Scenario struct {
	Adjusted             float64 `json:"adjusted"`
	Delta                float64 `json:"delta"`
	PredictedConsumption float64 `json:"predicted_consumption"`
	FuelSaved            float64 `json:"fuel_saved"`
	PredictedCII         float64 `json:"predicted_cii"`
	Rating               string  `json:"cii_rating"`
	ModelName            string  `json:"model_name"`
}

// CleanSample is one sampled row of cleaned telemetry returned by the
// data-info query.
type CleanSample struct {
	SpeedGround          *float64 `json:"speed_ground"`
	SpeedWater           *float64 `json:"speed_water"`
	Draft                *float64 `json:"draft"`
	Heel                 *float64 `json:"heel"`
	Trim                 *float64 `json:"trim"`
	DraughtAstern        *float64 `json:"draught_astern"`
	DraughtBow           *float64 `json:"draught_bow"`
	RPM                  *float64 `json:"me_rpm"`
	WindSpeed            *float64 `json:"wind_speed"`
	WindDirection        *float64 `json:"wind_direction"`
	SlipRatio            *float64 `json:"slip_ratio"`
	FuelConsumptionNmile *float64 `json:"me_fuel_consumption_nmile"`
	ShaftPower           *float64 `json:"me_shaft_power"`
	Latitude             string   `json:"latitude"`
	Longitude            string   `json:"longitude"`
	Date                 string   `json:"date"`
	Time                 string   `json:"time"`
	ShipNmile            *float64 `json:"ship_nmile"`
}
