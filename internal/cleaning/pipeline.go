// Package cleaning implements the multi-stage cleaning pipeline that turns a
// raw telemetry batch into the cleaned batch persisted for analytics. Every
// stage is a pure function over a Frame: running the pipeline twice over the
// same input yields the same output.
package cleaning

import (
	"math"
	"strings"

	"github.com/seakeeper/seakeeper/internal/tabular"
)

// Operational-state thresholds. A row below these describes a vessel that is
// maneuvering or idle, not underway, and carries no signal for the derived
// metrics. Treated as global constants across the fleet.
const (
	minUnderwayRPM   = 35.0
	minUnderwaySpeed = 3.0 // knots
	minSlipRatio     = -20.0
	maxSlipRatio     = 100.0
)

// invalidReading is the data-logger sentinel for a sensor that produced no
// valid measurement.
const invalidReading = 88888.0

// metersPerNauticalMile converts the knots-based water speed into the same
// distance unit as rpm * pitch * 60 (meters per hour).
const metersPerNauticalMile = 1852.0

// numericColumns are coerced to numbers before the derived stages run.
// Malformed text becomes NaN, never an error.
var numericColumns = []string{
	"speed_water",
	"me_rpm",
	"me_hfo_act_cons",
	"dg_hfo_act_cons",
	"blr_hfo_act_cons",
	"draught_astern",
	"draught_bow",
	"wind_speed",
	"me_fuel_consumption_nmile",
	"me_fuel_consumption_kwh",
	"me_shaft_power",
}

// Prepare runs the full pipeline: null removal, numeric coercion, derived
// attributes, abnormal-value rejection, operational-state filtering. The
// input Frame is not modified beyond gaining derived columns; the returned
// Frame may be empty.
func Prepare(f *tabular.Frame, pitch float64) *tabular.Frame {
	f = DropNulls(f)
	CoerceNumeric(f)
	ComputeDraft(f)
	ComputeSlipRatio(f, pitch)
	ComputeShipNmile(f)
	f = RemoveAbnormal(f)
	if f.Len() == 0 {
		return f
	}
	return FilterOperational(f)
}

// DropNulls removes rows with an empty cell in any column.
func DropNulls(f *tabular.Frame) *tabular.Frame {
	cols := f.Columns()
	return f.Filter(func(i int) bool {
		for _, c := range cols {
			if strings.TrimSpace(f.Cell(i, c)) == "" {
				return false
			}
		}
		return true
	})
}

// CoerceNumeric rewrites the declared numeric columns in place so that
// malformed cells read back as NaN.
func CoerceNumeric(f *tabular.Frame) {
	for _, col := range numericColumns {
		if !f.Has(col) {
			continue
		}
		for i := 0; i < f.Len(); i++ {
			f.SetCell(i, col, tabular.FormatFloat(f.Float(i, col)))
		}
	}
}

// ComputeDraft derives mean draft from the astern and bow draughts. Absent
// draught columns default to zero, so minimal batches still get a draft.
func ComputeDraft(f *tabular.Frame) {
	ensureNumeric(f, "draught_astern")
	ensureNumeric(f, "draught_bow")

	vals := make([]float64, f.Len())
	for i := range vals {
		vals[i] = 0.5 * (zeroIfNaN(f.Float(i, "draught_astern")) + zeroIfNaN(f.Float(i, "draught_bow")))
	}
	_ = f.AddFloatColumn("draft", vals)
}

// ComputeSlipRatio derives the propeller slip ratio in percent:
//
//	slip = (1 - (speed_water * 1852) / (me_rpm * pitch * 60)) * 100
//
// Rows where rpm or water speed is zero or NaN get slip 0: the ratio is
// undefined there and 0 is the documented sentinel. Never panics, never
// produces an infinity.
func ComputeSlipRatio(f *tabular.Frame, pitch float64) {
	ensureNumeric(f, "me_rpm")
	ensureNumeric(f, "speed_water")

	vals := make([]float64, f.Len())
	for i := range vals {
		rpm := f.Float(i, "me_rpm")
		speed := f.Float(i, "speed_water")
		if rpm == 0 || speed == 0 || math.IsNaN(rpm) || math.IsNaN(speed) || pitch == 0 {
			vals[i] = 0
			continue
		}
		vals[i] = (1 - (speed*metersPerNauticalMile)/(rpm*pitch*60)) * 100
	}
	_ = f.AddFloatColumn("slip_ratio", vals)
}

// ComputeShipNmile derives whole-ship fuel consumption per nautical mile:
// main engine + diesel generator + boiler HFO consumption over water speed.
func ComputeShipNmile(f *tabular.Frame) {
	for _, col := range []string{"me_hfo_act_cons", "dg_hfo_act_cons", "blr_hfo_act_cons", "speed_water"} {
		ensureNumeric(f, col)
	}

	vals := make([]float64, f.Len())
	for i := range vals {
		speed := f.Float(i, "speed_water")
		if speed == 0 || math.IsNaN(speed) {
			vals[i] = 0
			continue
		}
		total := zeroIfNaN(f.Float(i, "me_hfo_act_cons")) +
			zeroIfNaN(f.Float(i, "dg_hfo_act_cons")) +
			zeroIfNaN(f.Float(i, "blr_hfo_act_cons"))
		vals[i] = total / speed
	}
	_ = f.AddFloatColumn("ship_nmile", vals)
}

// rangeCheck rejects a row when the named column exists and its value falls
// outside the valid range. NaN always fails a check.
type rangeCheck struct {
	col   string
	valid func(v float64) bool
}

// abnormalChecks are the physically-impossible sensor value bounds. Each is
// evaluated independently; any violation drops the row.
var abnormalChecks = []rangeCheck{
	{"me_fuel_consumption_nmile", func(v float64) bool { return v > 0 && v < 250 }},
	{"me_shaft_power", func(v float64) bool { return v > 0 && v < 8000 }},
	{"me_rpm", func(v float64) bool { return v < 2000 && v != 0 }},
	{"draft", func(v float64) bool { return v > 0 }},
	{"speed_ground", func(v float64) bool { return v != invalidReading && v >= 3 }},
	{"speed_water", func(v float64) bool { return v != invalidReading }},
	{"slip_ratio", func(v float64) bool { return v != invalidReading }},
	{"wind_direction", func(v float64) bool { return v != invalidReading }},
	{"wind_speed", func(v float64) bool { return v < 60 }},
	{"me_fuel_consumption_kwh", func(v float64) bool { return v >= 0 }},
}

// RemoveAbnormal drops rows with out-of-range sensor values, and rows with
// embedded newlines in any cell (a corruption indicator in these exports).
func RemoveAbnormal(f *tabular.Frame) *tabular.Frame {
	cols := f.Columns()
	return f.Filter(func(i int) bool {
		for _, chk := range abnormalChecks {
			if !f.Has(chk.col) {
				continue
			}
			v := f.Float(i, chk.col)
			if math.IsNaN(v) || !chk.valid(v) {
				return false
			}
		}
		for _, c := range cols {
			if strings.ContainsRune(f.Cell(i, c), '\n') {
				return false
			}
		}
		return true
	})
}

// FilterOperational keeps only rows describing a vessel actually underway.
func FilterOperational(f *tabular.Frame) *tabular.Frame {
	return f.Filter(func(i int) bool {
		rpm := f.Float(i, "me_rpm")
		speed := f.Float(i, "speed_water")
		slip := f.Float(i, "slip_ratio")
		return rpm >= minUnderwayRPM &&
			speed >= minUnderwaySpeed &&
			slip >= minSlipRatio && slip <= maxSlipRatio
	})
}

func ensureNumeric(f *tabular.Frame, col string) {
	if f.Has(col) {
		return
	}
	_ = f.AddFloatColumn(col, make([]float64, f.Len()))
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
