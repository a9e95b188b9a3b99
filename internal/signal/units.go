// Package signal conditions a canonical IMU series for orientation
// estimation: unit inference, axis convention, time cleanup, uniform
// resampling and zero-phase low-pass filtering.
//
// Every transform here returns new slices; inputs are never modified.
package signal

import (
	"math"

	"github.com/banshee-data/sitstand.report/internal/monitoring"
)

// Units identifies the accelerometer units detected in the source.
type Units string

const (
	UnitsG      Units = "g"
	UnitsMPerS2 Units = "m/s2"
)

// InferAccelUnits guesses the accelerometer units from the mean vector norm
// and returns the samples expressed in m/s². A mean norm above threshold is
// taken as m/s² already; anything else is treated as g.
//
// The guess is a heuristic: a recording in g with large drift, or one in
// m/s² taken in free fall, will be misread.
func InferAccelUnits(accel [][3]float64, threshold, gravity float64) ([][3]float64, Units) {
	out := make([][3]float64, len(accel))
	if len(accel) == 0 {
		return out, UnitsG
	}

	var sum float64
	for _, v := range accel {
		sum += math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	}
	meanNorm := sum / float64(len(accel))

	units := UnitsG
	toG := 1.0
	if meanNorm > threshold {
		units = UnitsMPerS2
		toG = 1 / gravity
		monitoring.Logf("unit inference: mean norm %.2f > %.2f, treating accelerometer as m/s2", meanNorm, threshold)
	}
	for i, v := range accel {
		for axis := 0; axis < 3; axis++ {
			out[i][axis] = v[axis] * toG * gravity
		}
	}
	return out, units
}

// FlipVertical returns a copy of v with the third axis sign-inverted.
func FlipVertical(v [][3]float64) [][3]float64 {
	out := make([][3]float64, len(v))
	for i, s := range v {
		out[i] = [3]float64{s[0], s[1], -s[2]}
	}
	return out
}
