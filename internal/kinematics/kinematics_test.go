package kinematics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sitstand.report/internal/config"
	"github.com/banshee-data/sitstand.report/internal/segment"
	"github.com/banshee-data/sitstand.report/internal/testutil"
)

var subject = Profile{MassKg: 70, HeightM: 1.7}

func defaultParams() Params {
	return ParamsFromConfig(config.EmptyTuningConfig())
}

func TestCompute_Triangle(t *testing.T) {
	ts, x := testutil.ThreeCycles.Pitch()
	c := segment.Cycle{Valley1: 15, Peak1: 188, Valley2: 361, Peak2: 534, Valley3: 707}

	m := Compute(c, ts, x, subject, defaultParams())

	assert.InDelta(t, 692.0/60, m.Total, 1e-9)
	assert.InDelta(t, 346.0/60, m.Rise, 1e-9)
	assert.InDelta(t, 346.0/60, m.Sit, 1e-9)
	assert.InDelta(t, 173.0/60, m.StandTransition, 1e-9)
	assert.InDelta(t, 173.0/60, m.SitTransition, 1e-9)

	rate := 30.0 / 173 * 60
	assert.InDelta(t, rate, m.RiseFlexion, 1e-6)
	assert.InDelta(t, -rate, m.RiseExtension, 1e-6)
	assert.InDelta(t, rate, m.SitFlexion, 1e-6)
	assert.InDelta(t, -rate, m.SitExtension, 1e-6)

	assert.InDelta(t, 618.7167/(692.0/60), m.Power, 1e-6)
}

func TestComputeAll_NumbersCycles(t *testing.T) {
	ts, x := testutil.ThreeCycles.Pitch()
	cycles := []segment.Cycle{
		{Valley1: 15, Peak1: 188, Valley2: 361, Peak2: 534, Valley3: 707},
		{Valley1: 707, Peak1: 880, Valley2: 1053, Peak2: 1226, Valley3: 1399},
	}
	ms := ComputeAll(cycles, ts, x, subject, defaultParams())
	require.Len(t, ms, 2)
	assert.Equal(t, 1, ms[0].Cycle)
	assert.Equal(t, 2, ms[1].Cycle)
	assert.InDelta(t, ms[0].Total, ms[1].Total, 1e-9)

	assert.Empty(t, ComputeAll(nil, ts, x, subject, defaultParams()))
}

func TestCompute_ZeroDurationHasZeroPower(t *testing.T) {
	ts := []float64{0, 0, 0, 0, 0}
	x := []float64{-10, 10, -10, 10, -10}
	m := Compute(segment.Cycle{Valley1: 0, Peak1: 1, Valley2: 2, Peak2: 3, Valley3: 4}, ts, x, subject, defaultParams())
	assert.Equal(t, 0.0, m.Total)
	assert.Equal(t, 0.0, m.Power)
	assert.Equal(t, 0.0, m.RiseFlexion, "no time spread means no slope")
}

func TestSubSegment(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	lo, hi := SubSegment(x, 0, 10, 0.3)
	assert.Equal(t, 2, lo)
	assert.Equal(t, 8, hi)

	// Falling swing: lower-bound match comes later in time.
	y := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	lo, hi = SubSegment(y, 0, 10, 0.3)
	assert.Equal(t, 8, lo)
	assert.Equal(t, 2, hi)

	// Arguments in either order search the same range.
	lo2, hi2 := SubSegment(y, 10, 0, 0.3)
	assert.Equal(t, lo, lo2)
	assert.Equal(t, hi, hi2)

	lo, hi = SubSegment(x, 4, 4, 0.3)
	assert.Equal(t, 4, lo)
	assert.Equal(t, 4, hi)
}

func TestSlope(t *testing.T) {
	ts := []float64{0, 1, 2, 3, 4}
	x := []float64{1, 3, 5, 7, 9}

	tests := []struct {
		name string
		i, j int
		want float64
	}{
		{"full", 0, 4, 2},
		{"reversed indices", 4, 1, 2},
		{"two samples", 1, 2, 2},
		{"single sample", 2, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Slope(ts, x, tt.i, tt.j), 1e-12)
		})
	}
}

func TestSlope_Falling(t *testing.T) {
	ts := []float64{0, 0.5, 1.0, 1.5}
	x := []float64{6, 4, 2, 0}
	assert.InDelta(t, -4, Slope(ts, x, 3, 0), 1e-12)
}

func TestRounded(t *testing.T) {
	m := CycleMetrics{
		Cycle:       3,
		Total:       11.533333,
		RiseFlexion: -10.404624,
		Power:       53.645956,
	}
	r := m.Rounded()

	assert.Equal(t, 3, r.Cycle)
	assert.Equal(t, 11.53, r.Total)
	assert.Equal(t, -10.4, r.RiseFlexion)
	assert.Equal(t, 53.65, r.Power)
	assert.Equal(t, 11.533333, m.Total, "original untouched")
}

func TestCycleMetrics_JSONKeys(t *testing.T) {
	b, err := json.Marshal(CycleMetrics{Cycle: 1})
	require.NoError(t, err)

	var keys map[string]any
	require.NoError(t, json.Unmarshal(b, &keys))
	for _, k := range []string{
		"ciclo", "tempo_total", "tempo_levantar", "tempo_sentar",
		"transicao_levantar", "transicao_sentar",
		"vel_flexao_levantar", "vel_extensao_levantar",
		"vel_flexao_sentar", "vel_extensao_sentar", "potencia",
	} {
		assert.Contains(t, keys, k)
	}
	assert.Len(t, keys, 11)
}

func TestEnergyPerRep(t *testing.T) {
	assert.InDelta(t, 618.7167, defaultParams().EnergyPerRep(subject), 1e-9)
}
