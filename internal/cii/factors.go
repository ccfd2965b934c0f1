// Package cii implements the IMO Carbon Intensity Indicator computations:
// the fuel emission-factor table, the required-CII reference lines, and the
// A-E rating boundaries. Everything here is a pure function of its inputs;
// no storage access.
package cii

import "strings"

// FactorFor returns the CO2 emission factor (tonnes CO2 per tonne fuel) for
// a fuel-bearing column name, per the IMO guidelines table. Unrecognized
// fuel kinds return 0, which excludes the column from index computation.
func FactorFor(fuelColumn string) float64 {
	name := strings.ToLower(fuelColumn)
	switch {
	case strings.Contains(name, "hfo"):
		return 3.114
	case strings.Contains(name, "lfo"):
		return 3.151
	case strings.Contains(name, "mgo"), strings.Contains(name, "mdo"):
		return 3.206
	case strings.Contains(name, "lng"):
		return 2.75
	case strings.Contains(name, "lpg_p"):
		return 3.0
	case strings.Contains(name, "lpg_b"):
		return 3.03
	case strings.Contains(name, "methanol"):
		return 1.375
	case strings.Contains(name, "ethanol"):
		return 1.913
	case strings.Contains(name, "ethane"):
		return 2.927
	default:
		return 0.0
	}
}

// ConsumptionColumns are the per-reading actual-consumption columns that
// feed the daily index numerator. Accumulated counters are excluded.
var ConsumptionColumns = []string{
	"me_hfo_act_cons",
	"me_mgo_act_cons",
	"blr_hfo_act_cons",
	"blr_mgo_act_cons",
	"dg_hfo_act_cons",
	"dg_mgo_act_cons",
}
