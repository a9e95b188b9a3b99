// Package kinematics derives timing, angular velocity and mechanical power
// for each stand-sit cycle found by the segmenter.
package kinematics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/sitstand.report/internal/config"
	"github.com/banshee-data/sitstand.report/internal/segment"
)

// Profile is the part of the subject needed for mechanical work.
type Profile struct {
	MassKg  float64
	HeightM float64
}

// Params are the physical constants of the calculation.
type Params struct {
	Gravity            float64 // m/s²
	ChairHeightRatio   float64 // seat height as a fraction of stature
	SubSegmentFraction float64 // half-width of the slope window, fraction of amplitude
}

// ParamsFromConfig reads Params from cfg.
func ParamsFromConfig(cfg *config.TuningConfig) Params {
	return Params{
		Gravity:            cfg.GetGravity(),
		ChairHeightRatio:   cfg.GetChairHeightRatio(),
		SubSegmentFraction: cfg.GetSubSegmentFraction(),
	}
}

// EnergyPerRep is the work of lifting the body to chair height once, in J.
func (p Params) EnergyPerRep(prof Profile) float64 {
	return prof.MassKg * p.Gravity * p.ChairHeightRatio * prof.HeightM
}

// CycleMetrics holds the derived values for one cycle. Times are seconds,
// velocities deg/s (signed, rising tilt positive) and power W.
type CycleMetrics struct {
	Cycle int `json:"ciclo"` // 1-based

	Total           float64 `json:"tempo_total"`
	Rise            float64 `json:"tempo_levantar"`
	Sit             float64 `json:"tempo_sentar"`
	StandTransition float64 `json:"transicao_levantar"`
	SitTransition   float64 `json:"transicao_sentar"`

	RiseFlexion   float64 `json:"vel_flexao_levantar"`
	RiseExtension float64 `json:"vel_extensao_levantar"`
	SitFlexion    float64 `json:"vel_flexao_sentar"`
	SitExtension  float64 `json:"vel_extensao_sentar"`

	Power float64 `json:"potencia"`
}

// Compute measures cycle c over the aligned time and tilt arrays.
func Compute(c segment.Cycle, t, x []float64, prof Profile, p Params) CycleMetrics {
	m := CycleMetrics{
		Total:           t[c.Valley3] - t[c.Valley1],
		Rise:            t[c.Valley2] - t[c.Valley1],
		Sit:             t[c.Valley3] - t[c.Valley2],
		StandTransition: t[c.Peak1] - t[c.Valley1],
		SitTransition:   t[c.Peak2] - t[c.Valley2],
	}

	velocity := func(i1, i2 int) float64 {
		lo, hi := SubSegment(x, i1, i2, p.SubSegmentFraction)
		return Slope(t, x, lo, hi)
	}
	m.RiseFlexion = velocity(c.Valley1, c.Peak1)
	m.RiseExtension = velocity(c.Peak1, c.Valley2)
	m.SitFlexion = velocity(c.Valley2, c.Peak2)
	m.SitExtension = velocity(c.Peak2, c.Valley3)

	if m.Total > 0 {
		m.Power = p.EnergyPerRep(prof) / m.Total
	}
	return m
}

// SubSegment locates the central part of the swing between idx1 and idx2:
// the samples nearest to mid-fraction*amp and mid+fraction*amp, where mid
// and amp are the midpoint and absolute difference of x[idx1] and x[idx2].
// The search covers [min(idx1,idx2), max(idx1,idx2)]. lo is the index
// matched to the lower bound, hi the one matched to the upper bound.
func SubSegment(x []float64, idx1, idx2 int, fraction float64) (lo, hi int) {
	a, b := min(idx1, idx2), max(idx1, idx2)
	mid := (x[idx1] + x[idx2]) / 2
	amp := math.Abs(x[idx2] - x[idx1])
	lower, upper := mid-fraction*amp, mid+fraction*amp

	lo, hi = a, a
	bestLo, bestHi := math.Inf(1), math.Inf(1)
	for i := a; i <= b; i++ {
		if d := math.Abs(x[i] - lower); d < bestLo {
			bestLo, lo = d, i
		}
		if d := math.Abs(x[i] - upper); d < bestHi {
			bestHi, hi = d, i
		}
	}
	return lo, hi
}

// Slope is the least-squares slope of x against t over the samples between
// i and j inclusive, in either order. Fewer than two samples, or no spread
// in time, give 0.
func Slope(t, x []float64, i, j int) float64 {
	a, b := min(i, j), max(i, j)
	if b-a+1 < 2 {
		return 0
	}
	ts, xs := t[a:b+1], x[a:b+1]
	if stat.Variance(ts, nil) == 0 {
		return 0
	}
	_, beta := stat.LinearRegression(ts, xs, nil, false)
	return beta
}

// Rounded returns a copy with every value rounded to two decimals for
// display. Aggregation must use the unrounded values.
func (m CycleMetrics) Rounded() CycleMetrics {
	r := m
	for _, f := range []*float64{
		&r.Total, &r.Rise, &r.Sit, &r.StandTransition, &r.SitTransition,
		&r.RiseFlexion, &r.RiseExtension, &r.SitFlexion, &r.SitExtension,
		&r.Power,
	} {
		*f = Round2(*f)
	}
	return r
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeAll measures every cycle and numbers them from 1.
func ComputeAll(cycles []segment.Cycle, t, x []float64, prof Profile, p Params) []CycleMetrics {
	out := make([]CycleMetrics, len(cycles))
	for i, c := range cycles {
		out[i] = Compute(c, t, x, prof, p)
		out[i].Cycle = i + 1
	}
	return out
}
