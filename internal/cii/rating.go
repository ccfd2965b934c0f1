package cii

import (
	"math"

	"github.com/seakeeper/seakeeper/pkg/types"
)

// RatingNotApplicable is returned when no rating can be derived: unknown
// ship type, missing capacity, or a non-positive index value.
const RatingNotApplicable = "N/A"

// capacityParams returns the capacity figure and the (a, c) reference-line
// parameters for a ship-type code. Capacity is deadweight for most types
// and gross tonnage for I009-I012, with the regulation's caps applied.
func capacityParams(shipTypeCode string, dwt, gt float64) (capacity, a, c float64) {
	capacity = dwt
	switch shipTypeCode {
	case "I001": // bulk carrier
		capacity = math.Min(dwt, 279000)
		a, c = 4745, 0.622
	case "I002": // gas carrier
		if dwt >= 65000 {
			a, c = 14405e7, 2.071
		} else {
			a, c = 8104, 0.639
		}
	case "I003": // tanker
		a, c = 5247, 0.610
	case "I004": // container ship
		a, c = 1984, 0.489
	case "I005": // general cargo ship
		if dwt >= 20000 {
			a, c = 31948, 0.792
		} else {
			a, c = 588, 0.3885
		}
	case "I006": // refrigerated cargo carrier
		a, c = 4600, 0.557
	case "I007": // combination carrier
		a, c = 5119, 0.622
	case "I008": // LNG carrier
		if dwt >= 100000 {
			a, c = 9.827, 0.000
		} else if dwt >= 65000 {
			a, c = 14479e10, 2.673
		} else {
			capacity = 65000
			a, c = 14779e10, 2.673
		}
	case "I009": // ro-ro cargo ship (vehicle carrier)
		if gt >= 30000 {
			capacity = math.Min(gt, 57700)
		} else {
			capacity = gt
		}
		a, c = 3627, 0.590
	case "I010": // ro-ro cargo ship
		capacity = gt
		a, c = 1967, 0.485
	case "I011": // ro-ro passenger ship
		capacity = gt
		a, c = 2023, 0.460
	case "I011.1": // high-speed ro-ro passenger craft
		capacity = gt
		a, c = 4196, 0.460
	case "I012": // cruise passenger ship
		capacity = gt
		a, c = 930, 0.383
	}
	return capacity, a, c
}

// reductionFactor is the annual efficiency-ratio reduction factor Z.
var reductionFactor = map[int]float64{
	2019: 0.00,
	2020: 0.01,
	2021: 0.02,
	2022: 0.03,
	2023: 0.05,
	2024: 0.07,
	2025: 0.09,
	2026: 0.11,
	2027: 0.13625,
	2028: 0.16250,
	2029: 0.18875,
	2030: 0.21500,
}

// RequiredCII returns the required index value for a vessel in a given
// year, or 0 when the ship type is unknown.
func RequiredCII(year int, shipTypeCode string, dwt, gt float64) float64 {
	capacity, a, c := capacityParams(shipTypeCode, dwt, gt)
	if a == 0 || capacity == 0 {
		return 0.0
	}
	reference := a * math.Pow(capacity, -c)
	return reference * (1 - reductionFactor[year])
}

// ddVectors returns the (superior, lower, upper, inferior) boundary
// multipliers for a ship type.
func ddVectors(shipTypeCode string, dwt float64) (d1, d2, d3, d4 float64) {
	d1, d2, d3, d4 = 0.86, 0.94, 1.06, 1.18
	switch shipTypeCode {
	case "I001":
		d1, d2, d3, d4 = 0.86, 0.94, 1.06, 1.18
	case "I002":
		if dwt >= 65000 {
			d1, d2, d3, d4 = 0.81, 0.91, 1.12, 1.44
		} else {
			d1, d2, d3, d4 = 0.85, 0.95, 1.06, 1.25
		}
	case "I003":
		d1, d2, d3, d4 = 0.82, 0.93, 1.08, 1.28
	case "I004":
		d1, d2, d3, d4 = 0.83, 0.94, 1.07, 1.19
	case "I005":
		d1, d2, d3, d4 = 0.83, 0.94, 1.06, 1.19
	case "I006":
		d1, d2, d3, d4 = 0.78, 0.91, 1.07, 1.20
	case "I007":
		d1, d2, d3, d4 = 0.87, 0.96, 1.06, 1.14
	case "I008":
		if dwt >= 100000 {
			d1, d2, d3, d4 = 0.89, 0.98, 1.06, 1.13
		} else {
			d1, d2, d3, d4 = 0.78, 0.92, 1.10, 1.37
		}
	case "I009":
		d1, d2, d3, d4 = 0.86, 0.94, 1.06, 1.16
	case "I010":
		d1, d2, d3, d4 = 0.76, 0.89, 1.08, 1.27
	case "I011", "I011.1":
		d1, d2, d3, d4 = 0.76, 0.92, 1.14, 1.30
	case "I012":
		d1, d2, d3, d4 = 0.87, 0.95, 1.06, 1.16
	}
	return d1, d2, d3, d4
}

// Boundaries returns the rating cut-point values for a vessel and year.
func Boundaries(year int, shipTypeCode string, dwt, gt float64) types.CIIBoundaries {
	required := RequiredCII(year, shipTypeCode, dwt, gt)
	d1, d2, d3, d4 := ddVectors(shipTypeCode, dwt)
	return types.CIIBoundaries{
		Superior: required * d1,
		Lower:    required * d2,
		Upper:    required * d3,
		Inferior: required * d4,
	}
}

// Rating grades an index value A-E by ascending threshold comparison:
// values at or below the superior boundary grade best. Unknown ship types
// grade as RatingNotApplicable rather than failing.
func Rating(cii float64, year int, shipTypeCode string, dwt, gt float64) string {
	required := RequiredCII(year, shipTypeCode, dwt, gt)
	if required <= 0 {
		return RatingNotApplicable
	}
	b := Boundaries(year, shipTypeCode, dwt, gt)
	switch {
	case cii <= b.Superior:
		return "A"
	case cii <= b.Lower:
		return "B"
	case cii <= b.Upper:
		return "C"
	case cii <= b.Inferior:
		return "D"
	default:
		return "E"
	}
}
