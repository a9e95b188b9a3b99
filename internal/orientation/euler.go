package orientation

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/num/quat"
)

// Sanitize replaces non-finite components with zero.
func Sanitize(q quat.Number) quat.Number {
	fix := func(v float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	}
	return quat.Number{Real: fix(q.Real), Imag: fix(q.Imag), Jmag: fix(q.Jmag), Kmag: fix(q.Kmag)}
}

// ToEuler converts q to roll, pitch and yaw in radians (ZYX order).
// The zero quaternion maps to zero angles.
func ToEuler(q quat.Number) (roll, pitch, yaw float64) {
	n := quat.Abs(q)
	if n == 0 {
		return 0, 0, 0
	}
	w, x, y, z := q.Real/n, q.Imag/n, q.Jmag/n, q.Kmag/n

	roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	pitch = math.Asin(math.Max(-1, math.Min(1, 2*(w*y-z*x))))
	yaw = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return roll, pitch, yaw
}

// SagittalAngle returns Euler component axis (0 roll, 1 pitch, 2 yaw) of
// every quaternion in degrees with the sequence mean removed. Non-finite
// quaternion components are zeroed first.
func SagittalAngle(qs []quat.Number, axis int) []float64 {
	out := make([]float64, len(qs))
	if len(qs) == 0 {
		return out
	}
	if axis < 0 || axis > 2 {
		axis = 0
	}
	for i, q := range qs {
		var e [3]float64
		e[0], e[1], e[2] = ToEuler(Sanitize(q))
		out[i] = e[axis] * 180 / math.Pi
	}
	floats.AddConst(-floats.Sum(out)/float64(len(out)), out)
	return out
}
