package segment

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/sitstand.report/internal/config"
)

// Segmenter holds the detection parameters for one analysis.
type Segmenter struct {
	Distance      int     // minimum samples between extrema of one kind
	GateDeg       float64 // amplitude gate around the mean
	WindowSeconds float64 // analysis window after the movement start
}

// NewSegmenter reads the segmentation knobs from cfg.
func NewSegmenter(cfg *config.TuningConfig) *Segmenter {
	return &Segmenter{
		Distance:      cfg.GetPeakDistance(),
		GateDeg:       cfg.GetAmplitudeGateDeg(),
		WindowSeconds: cfg.GetTestWindowSeconds(),
	}
}

// Result is the outcome of segmenting one recording. Index fields other
// than Start and End refer to the cropped Time and Pitch slices.
type Result struct {
	Start int // first sample of the window in the input
	End   int // last sample of the window in the input, inclusive

	Time  []float64 // seconds from the window start
	Pitch []float64 // degrees, window mean removed

	Peaks   []int
	Valleys []int
	Cycles  []Cycle
}

// Segment locates the test window in (t, pitch) and splits it into cycles.
// An empty or featureless signal yields a Result with no cycles.
func (s *Segmenter) Segment(t, pitch []float64) Result {
	n := min(len(t), len(pitch))
	if n == 0 {
		return Result{}
	}
	t, pitch = t[:n], pitch[:n]

	peaks, valleys := Extrema(pitch, s.Distance, s.GateDeg)
	start := MovementStart(peaks, valleys)
	tc, xc, end := Crop(t, pitch, start, s.WindowSeconds)

	peaks, valleys = Extrema(xc, s.Distance, s.GateDeg)
	if len(peaks) > 0 && (len(valleys) == 0 || valleys[0] > peaks[0]) {
		valleys = append([]int{0}, valleys...)
	}
	valleys = Reconcile(xc, peaks, valleys)

	return Result{
		Start:   start,
		End:     end,
		Time:    tc,
		Pitch:   xc,
		Peaks:   peaks,
		Valleys: valleys,
		Cycles:  Stitch(peaks, valleys),
	}
}

// MovementStart returns the first valley that is followed by a peak before
// the next valley, or 0 when no such pattern exists.
func MovementStart(peaks, valleys []int) int {
	for i := 0; i+1 < len(valleys); i++ {
		v1, v2 := valleys[i], valleys[i+1]
		for _, p := range peaks {
			if v1 < p && p < v2 {
				return v1
			}
		}
	}
	return 0
}

// Crop cuts [start, end] from (t, x) where t[end] is the sample nearest to
// t[start]+windowSeconds. The returned time starts at zero and the signal
// has its own mean removed.
func Crop(t, x []float64, start int, windowSeconds float64) (tc, xc []float64, end int) {
	if len(t) == 0 {
		return []float64{}, []float64{}, 0
	}
	if start < 0 || start >= len(t) {
		start = 0
	}

	target := t[start] + windowSeconds
	best := math.Inf(1)
	for i, v := range t {
		if d := math.Abs(v - target); d < best {
			best, end = d, i
		}
	}
	if end < start {
		end = start
	}

	tc = make([]float64, end-start+1)
	xc = make([]float64, end-start+1)
	copy(tc, t[start:end+1])
	copy(xc, x[start:end+1])
	floats.AddConst(-tc[0], tc)
	floats.AddConst(-stat.Mean(xc, nil), xc)
	return tc, xc, end
}

// Reconcile rebuilds the valley list from the peaks: the first detected
// valley, then the true minimum strictly between each pair of consecutive
// peaks, then a trailing minimum after the last peak if it is a strict
// local minimum away from both array ends.
func Reconcile(x []float64, peaks, valleys []int) []int {
	var out []int
	if len(valleys) > 0 {
		out = append(out, valleys[0])
	}
	for i := 0; i+1 < len(peaks); i++ {
		lo, hi := peaks[i], peaks[i+1]
		if hi <= lo+1 {
			continue
		}
		idx := lo + 1 + floats.MinIdx(x[lo+1:hi])
		if len(out) == 0 || idx > out[len(out)-1] {
			out = append(out, idx)
		}
	}

	if len(peaks) == 0 {
		return out
	}
	last := peaks[len(peaks)-1]
	if last+1 >= len(x)-1 {
		return out
	}
	idx := last + 1 + floats.MinIdx(x[last+1:])
	if idx > 0 && idx < len(x)-1 && x[idx] < x[idx-1] && x[idx] < x[idx+1] {
		if len(out) == 0 || idx > out[len(out)-1] {
			out = append(out, idx)
		}
	}
	return out
}
