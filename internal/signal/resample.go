package signal

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Resample evaluates a per-axis cubic spline through (t, v) at every grid
// point. Four or more knots use a not-a-knot cubic; two or three knots fall
// back to piecewise-linear. Fewer than two knots yield an empty result.
// t must be strictly increasing.
func Resample(t []float64, v [][3]float64, grid []float64) ([][3]float64, error) {
	if len(t) != len(v) {
		return nil, fmt.Errorf("resample: %d times for %d samples", len(t), len(v))
	}
	if len(t) < 2 {
		return [][3]float64{}, nil
	}

	out := make([][3]float64, len(grid))
	ys := make([]float64, len(t))
	for axis := 0; axis < 3; axis++ {
		for i := range v {
			ys[i] = v[i][axis]
		}
		var fp interp.FittablePredictor
		if len(t) >= 4 {
			fp = &interp.NotAKnotCubic{}
		} else {
			fp = &interp.PiecewiseLinear{}
		}
		if err := fp.Fit(t, ys); err != nil {
			return nil, fmt.Errorf("resample axis %d: %w", axis, err)
		}
		for i, x := range grid {
			out[i][axis] = fp.Predict(x)
		}
	}
	return out, nil
}
