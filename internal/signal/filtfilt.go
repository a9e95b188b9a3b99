package signal

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LFilter runs x through the IIR filter (b, a) in direct form II
// transposed, starting from state zi (len max(len(a),len(b))-1, nil for
// rest). a[0] must be non-zero.
func LFilter(b, a, x, zi []float64) []float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	bn := normalized(b, a[0], n)
	an := normalized(a, a[0], n)

	z := make([]float64, n-1)
	copy(z, zi)
	y := make([]float64, len(x))
	for i, xi := range x {
		yi := bn[0]*xi
		if n > 1 {
			yi += z[0]
		}
		for k := 0; k < n-2; k++ {
			z[k] = bn[k+1]*xi + z[k+1] - an[k+1]*yi
		}
		if n > 1 {
			z[n-2] = bn[n-1]*xi - an[n-1]*yi
		}
		y[i] = yi
	}
	return y
}

func normalized(c []float64, a0 float64, n int) []float64 {
	out := make([]float64, n)
	for i, v := range c {
		out[i] = v / a0
	}
	return out
}

// LFilterZI returns the initial state of LFilter for a unit step response
// in steady state. Scale it by the first input sample to start a filter
// without a transient.
func LFilterZI(b, a []float64) ([]float64, error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	if n < 2 {
		return []float64{}, nil
	}
	bn := normalized(b, a[0], n)
	an := normalized(a, a[0], n)

	// (I - companion(a)^T) zi = b[1:] - a[1:]*b[0]
	m := n - 1
	lhs := mat.NewDense(m, m, nil)
	rhs := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		lhs.Set(i, i, 1)
		lhs.Set(i, 0, lhs.At(i, 0)+an[i+1])
		if i+1 < m {
			lhs.Set(i, i+1, -1)
		}
		rhs.SetVec(i, bn[i+1]-an[i+1]*bn[0])
	}

	var zi mat.VecDense
	if err := zi.SolveVec(lhs, rhs); err != nil {
		return nil, fmt.Errorf("lfilter_zi: %w", err)
	}
	out := make([]float64, m)
	for i := range out {
		out[i] = zi.AtVec(i)
	}
	return out, nil
}

// FiltFilt applies (b, a) forward and backward so the output has zero phase
// relative to x. The ends are extended by odd reflection over
// 3*max(len(a), len(b)) samples, shortened to len(x)-1 for short inputs.
func FiltFilt(b, a, x []float64) ([]float64, error) {
	if len(x) == 0 {
		return []float64{}, nil
	}
	zi, err := LFilterZI(b, a)
	if err != nil {
		return nil, err
	}

	padlen := 3 * max(len(a), len(b))
	if padlen > len(x)-1 {
		padlen = len(x) - 1
	}
	ext := oddExtend(x, padlen)

	y := LFilter(b, a, ext, scaled(zi, ext[0]))
	reverse(y)
	y = LFilter(b, a, y, scaled(zi, y[0]))
	reverse(y)

	out := make([]float64, len(x))
	copy(out, y[padlen:padlen+len(x)])
	return out, nil
}

func oddExtend(x []float64, padlen int) []float64 {
	n := len(x)
	ext := make([]float64, 0, n+2*padlen)
	for i := padlen; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := 1; i <= padlen; i++ {
		ext = append(ext, 2*x[n-1]-x[n-1-i])
	}
	return ext
}

func scaled(v []float64, k float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * k
	}
	return out
}

func reverse(v []float64) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}
