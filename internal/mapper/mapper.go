// Package mapper translates the legacy mixed-case sensor column vocabulary
// into the canonical snake_case attribute names used everywhere downstream.
// The lookup is fixed and bidirectional; headers it does not know pass
// through untouched (the storage whitelist drops them later, not here).
package mapper

import "github.com/seakeeper/seakeeper/internal/tabular"

// legacyToCanonical is the fixed sensor-export vocabulary. Keys follow the
// shipboard data-logger naming (including its historical misspelling of
// "Ground"); values are the canonical attribute names.
var legacyToCanonical = map[string]string{
	"PCDate":            "date",
	"PCTime":            "time",
	"ShipSpdToGroud":    "speed_ground",
	"ShipSpdToWater":    "speed_water",
	"ShipDraft":         "draft",
	"ShipHeel":          "heel",
	"ShipTrim":          "trim",
	"ShipDraughtAstern": "draught_astern",
	"ShipDraughtBow":    "draught_bow",
	"ShipDraughtMidLft": "draught_mid_left",
	"ShipDraughtMidRgt": "draught_mid_right",
	"MERpm":             "me_rpm",
	"WindSpd":           "wind_speed",
	"WindDir":           "wind_direction",
	"slipRatio":         "slip_ratio",
	"MESFOC_nmile":      "me_fuel_consumption_nmile",
	"MESFOC_kwh":        "me_fuel_consumption_kwh",
	"MEShaftPow":        "me_shaft_power",
	"METorque":          "me_torque",
	"Latitude":          "latitude",
	"Longitude":         "longitude",
	"MEHFOActCons":      "me_hfo_act_cons",
	"MEMGOActCons":      "me_mgo_act_cons",
	"MEHFOAccCons":      "me_hfo_acc_cons",
	"BLRHFOActCons":     "blr_hfo_act_cons",
	"BLRMGOActCons":     "blr_mgo_act_cons",
	"DGHFOActCons":      "dg_hfo_act_cons",
	"DGMGOActCons":      "dg_mgo_act_cons",
	"DGHFOAccCons":      "dg_hfo_acc_cons",
	"DGMGOAccCons":      "dg_mgo_acc_cons",
	"FCMFODensity":      "fcm_fo_density",
	"BLRFODensity":      "blr_fo_density",
	"BLRMGODensity":     "blr_mgo_density",
	"DGFODensity":       "dg_fo_density",
	"DGMGODensity":      "dg_mgo_density",
	"MEFOInTemp":        "me_fo_in_temp",
	"BLRFOInTemp":       "blr_fo_in_temp",
	"BLRMGOInTemp":      "blr_mgo_in_temp",
	"DGFOInTemp":        "dg_fo_in_temp",
	"DGMGOInTemp":       "dg_mgo_in_temp",
	"DG1Power":          "dg1_power",
	"DG2Power":          "dg2_power",
	"DG3Power":          "dg3_power",
	"Ship_nmile":        "ship_nmile",
	"TrueHeading":       "true_h",
	"TotalDistance":     "total_distance",
	"WaterDepth":        "water_depth",
	"RudderAngle":       "rudder_angle",
	"WaterTemp":         "water_temp",
	"SwellHeight":       "swell_height",
}

var canonicalToLegacy = func() map[string]string {
	m := make(map[string]string, len(legacyToCanonical))
	for legacy, canonical := range legacyToCanonical {
		m[canonical] = legacy
	}
	return m
}()

// Canonical returns the canonical name for a header, or the header itself
// when it is unknown or already canonical.
func Canonical(header string) string {
	if c, ok := legacyToCanonical[header]; ok {
		return c
	}
	return header
}

// Legacy returns the legacy sensor name for a canonical attribute, or the
// attribute itself when no legacy form exists.
func Legacy(attribute string) string {
	if l, ok := canonicalToLegacy[attribute]; ok {
		return l
	}
	return attribute
}

// Canonicalize rewrites a Frame's headers in place. Purely a function of
// the header set: row content never changes the result.
func Canonicalize(f *tabular.Frame) {
	f.RenameColumns(legacyToCanonical)
}
