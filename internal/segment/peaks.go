// Package segment finds stand-sit repetitions in a mean-removed sagittal
// tilt signal. Peaks mark the upright apex, valleys the seated apex, and a
// repetition is anchored by a valley-peak-valley-peak-valley quintuple.
package segment

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FindPeaks returns the indices of local maxima of x, ascending. Flat tops
// report their middle sample (rounded down). When distance > 1, peaks
// closer than distance samples to a higher peak are discarded, higher
// peaks winning; equal heights keep the later peak.
func FindPeaks(x []float64, distance int) []int {
	peaks := localMaxima(x)
	if distance <= 1 || len(peaks) < 2 {
		return peaks
	}

	heights := make([]float64, len(peaks))
	for i, p := range peaks {
		heights[i] = x[p]
	}
	order := make([]int, len(peaks))
	floats.ArgsortStable(heights, order)

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}
	for i := len(order) - 1; i >= 0; i-- {
		j := order[i]
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < distance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(peaks) && peaks[k]-peaks[j] < distance; k++ {
			keep[k] = false
		}
	}

	out := peaks[:0]
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// localMaxima finds samples strictly above their left neighbour and above
// the first differing right neighbour. The array ends never qualify.
func localMaxima(x []float64) []int {
	var peaks []int
	last := len(x) - 1
	for i := 1; i < last; i++ {
		if x[i-1] >= x[i] {
			continue
		}
		ahead := i + 1
		for ahead < last && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			peaks = append(peaks, (i+ahead-1)/2)
			i = ahead - 1
		}
	}
	return peaks
}

// Extrema detects gated peaks and valleys of x. Peaks must rise above
// mean+gate and valleys fall below mean-gate, with at least distance
// samples between extrema of the same kind. A valley on the last sample
// is dropped.
func Extrema(x []float64, distance int, gate float64) (peaks, valleys []int) {
	if len(x) == 0 {
		return nil, nil
	}
	mean := stat.Mean(x, nil)

	for _, p := range FindPeaks(x, distance) {
		if x[p] > mean+gate {
			peaks = append(peaks, p)
		}
	}

	neg := make([]float64, len(x))
	for i, v := range x {
		neg[i] = -v
	}
	for _, v := range FindPeaks(neg, distance) {
		if x[v] < mean-gate && v < len(x)-1 {
			valleys = append(valleys, v)
		}
	}
	return peaks, valleys
}
