package signal

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Butterworth designs a digital low-pass Butterworth filter of the given
// order and returns its transfer function coefficients (b, a), a[0] == 1.
//
// The analog prototype poles are frequency-prewarped and mapped through the
// bilinear transform, which places all N zeros at z = -1.
func Butterworth(order int, cutoffHz, fs float64) (b, a []float64, err error) {
	if order < 1 {
		return nil, nil, fmt.Errorf("butterworth: order must be positive, got %d", order)
	}
	wn := cutoffHz / (fs / 2)
	if !(wn > 0 && wn < 1) {
		return nil, nil, fmt.Errorf("butterworth: cutoff %g Hz outside (0, %g) Hz", cutoffHz, fs/2)
	}

	// Prewarp against a unit sample rate doubled, as the bilinear map uses 2*fs = 4.
	const fs2 = 4.0
	warped := fs2 * math.Tan(math.Pi*wn/2)

	poles := make([]complex128, order)
	for k := range poles {
		m := float64(-order + 1 + 2*k)
		p := -cmplx.Exp(complex(0, math.Pi*m/float64(2*order)))
		poles[k] = p * complex(warped, 0)
	}
	gain := math.Pow(warped, float64(order))

	zPoles := make([]complex128, order)
	denom := complex(1, 0)
	for k, p := range poles {
		zPoles[k] = (fs2 + p) / (fs2 - p)
		denom *= fs2 - p
	}
	gain = gain * real(1/denom)

	b = binomial(order)
	for i := range b {
		b[i] *= gain
	}
	ac := poly(zPoles)
	a = make([]float64, len(ac))
	for i, c := range ac {
		a[i] = real(c)
	}
	return b, a, nil
}

// binomial returns the coefficients of (z+1)^n, highest power first.
func binomial(n int) []float64 {
	c := make([]float64, n+1)
	c[0] = 1
	for k := 1; k <= n; k++ {
		c[k] = c[k-1] * float64(n-k+1) / float64(k)
	}
	return c
}

// poly expands prod(z - r) into coefficients, highest power first.
func poly(roots []complex128) []complex128 {
	c := make([]complex128, len(roots)+1)
	c[0] = 1
	for k, r := range roots {
		for i := k + 1; i >= 1; i-- {
			c[i] -= r * c[i-1]
		}
	}
	return c
}
