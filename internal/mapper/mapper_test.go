package mapper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seakeeper/seakeeper/internal/tabular"
)

func TestCanonical(t *testing.T) {
	assert.Equal(t, "me_rpm", Canonical("MERpm"))
	assert.Equal(t, "speed_ground", Canonical("ShipSpdToGroud"))
	assert.Equal(t, "me_rpm", Canonical("me_rpm"), "canonical names pass through")
	assert.Equal(t, "TotallyUnknown", Canonical("TotallyUnknown"), "unknown headers pass through")
}

func TestLegacyRoundTrip(t *testing.T) {
	for _, attr := range []string{"me_rpm", "speed_water", "wind_speed", "slip_ratio", "ship_nmile"} {
		assert.Equal(t, attr, Canonical(Legacy(attr)), attr)
	}
	assert.Equal(t, "unmapped", Legacy("unmapped"))
}

func TestCanonicalize(t *testing.T) {
	f, err := tabular.ReadCSV(strings.NewReader(
		"MERpm,ShipSpdToWater,speed_ground,SensorXYZ\n80,11.5,12.0,1\n"))
	require.NoError(t, err)

	Canonicalize(f)
	assert.Equal(t, []string{"me_rpm", "speed_water", "speed_ground", "SensorXYZ"}, f.Columns())
	assert.Equal(t, "80", f.Cell(0, "me_rpm"))
	assert.Equal(t, "1", f.Cell(0, "SensorXYZ"))

	// Idempotent: a second pass changes nothing.
	Canonicalize(f)
	assert.Equal(t, []string{"me_rpm", "speed_water", "speed_ground", "SensorXYZ"}, f.Columns())
}

func TestCanonicalizeOrderIndependent(t *testing.T) {
	f1, err := tabular.ReadCSV(strings.NewReader("MERpm,WindSpd\n1,2\n"))
	require.NoError(t, err)
	f2, err := tabular.ReadCSV(strings.NewReader("WindSpd,MERpm\n2,1\n"))
	require.NoError(t, err)

	Canonicalize(f1)
	Canonicalize(f2)
	assert.ElementsMatch(t, f1.Columns(), f2.Columns())
}
