package cii

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactorFor(t *testing.T) {
	tests := []struct {
		col  string
		want float64
	}{
		{"me_hfo_act_cons", 3.114},
		{"blr_hfo_act_cons", 3.114},
		{"me_mgo_act_cons", 3.206},
		{"mdo_cons", 3.206},
		{"lfo_cons", 3.151},
		{"lng_cons", 2.75},
		{"lpg_p_cons", 3.0},
		{"lpg_b_cons", 3.03},
		{"methanol_cons", 1.375},
		{"ethanol_cons", 1.913},
		{"ethane_cons", 2.927},
		{"water_temp", 0.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FactorFor(tt.col), tt.col)
	}
}

func TestRequiredCII(t *testing.T) {
	// Bulk carrier, 50000 DWT, 2023: 4745 * 50000^-0.622 * (1 - 0.05).
	got := RequiredCII(2023, "I001", 50000, 0)
	assert.Greater(t, got, 0.0)

	// Reduction factor tightens the line year over year.
	assert.Greater(t, RequiredCII(2023, "I001", 50000, 0), RequiredCII(2024, "I001", 50000, 0))
	assert.Greater(t, RequiredCII(2029, "I001", 50000, 0), RequiredCII(2030, "I001", 50000, 0))

	// Unknown ship type has no reference line.
	assert.Equal(t, 0.0, RequiredCII(2023, "I999", 50000, 0))
}

func TestRequiredCIICapacityCap(t *testing.T) {
	// Bulk carrier capacity is capped at 279000 DWT.
	assert.Equal(t,
		RequiredCII(2023, "I001", 279000, 0),
		RequiredCII(2023, "I001", 400000, 0))
}

func TestRequiredCIIGrossTonnageTypes(t *testing.T) {
	// I012 (cruise) is GT-based: DWT must not influence the result.
	assert.Equal(t,
		RequiredCII(2023, "I012", 10000, 80000),
		RequiredCII(2023, "I012", 99999, 80000))
}

func TestRatingOrdering(t *testing.T) {
	b := Boundaries(2023, "I001", 50000, 0)
	require.Greater(t, b.Superior, 0.0)
	require.Less(t, b.Superior, b.Lower)
	require.Less(t, b.Lower, b.Upper)
	require.Less(t, b.Upper, b.Inferior)

	assert.Equal(t, "A", Rating(b.Superior, 2023, "I001", 50000, 0))
	assert.Equal(t, "B", Rating(b.Lower, 2023, "I001", 50000, 0))
	assert.Equal(t, "C", Rating(b.Upper, 2023, "I001", 50000, 0))
	assert.Equal(t, "D", Rating(b.Inferior, 2023, "I001", 50000, 0))
	assert.Equal(t, "E", Rating(b.Inferior+0.001, 2023, "I001", 50000, 0))
}

// A worse (higher) index value must never yield a strictly better grade.
func TestRatingMonotonic(t *testing.T) {
	grade := map[string]int{"A": 0, "B": 1, "C": 2, "D": 3, "E": 4}
	for year := 2023; year <= 2030; year++ {
		prev := -1
		for v := 0.5; v <= 20; v += 0.25 {
			r := Rating(v, year, "I003", 80000, 0)
			require.Contains(t, grade, r)
			assert.GreaterOrEqual(t, grade[r], prev, "year %d value %f", year, v)
			prev = grade[r]
		}
	}
}

func TestRatingUnknownShipType(t *testing.T) {
	assert.Equal(t, RatingNotApplicable, Rating(5.0, 2023, "I999", 50000, 0))
	assert.Equal(t, RatingNotApplicable, Rating(5.0, 2023, "", 50000, 0))
}

func TestRatingZeroCapacity(t *testing.T) {
	assert.Equal(t, RatingNotApplicable, Rating(5.0, 2023, "I001", 0, 0))
}
