package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/sitstand.report/internal/config"
	"github.com/banshee-data/sitstand.report/internal/testutil"
)

func TestMovementStart(t *testing.T) {
	tests := []struct {
		name    string
		peaks   []int
		valleys []int
		want    int
	}{
		{"first valley", []int{50, 150}, []int{10, 100, 200}, 10},
		{"skips valley without peak", []int{70}, []int{10, 40, 100}, 40},
		{"peak on valley boundary does not count", []int{40, 70}, []int{10, 40, 100}, 40},
		{"no pattern", []int{5}, []int{10, 40}, 0},
		{"single valley", []int{50}, []int{10}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MovementStart(tt.peaks, tt.valleys))
		})
	}
}

func TestCrop(t *testing.T) {
	ts := make([]float64, 100)
	x := make([]float64, 100)
	for i := range ts {
		ts[i] = float64(i) * 0.1
		x[i] = float64(i)
	}

	tc, xc, end := Crop(ts, x, 10, 2.04)
	assert.Equal(t, 30, end)
	require.Len(t, tc, 21)
	require.Len(t, xc, 21)
	assert.Equal(t, 0.0, tc[0])
	assert.InDelta(t, 2.0, tc[20], 1e-9)
	assert.InDelta(t, 0, floats.Sum(xc), 1e-9)
	assert.Equal(t, -10.0, xc[0])

	_, _, end = Crop(ts, x, 10, 100)
	assert.Equal(t, 99, end, "window past the end clamps to the last sample")

	tc, xc, end = Crop(nil, nil, 0, 30.5)
	assert.Empty(t, tc)
	assert.Empty(t, xc)
	assert.Equal(t, 0, end)

	tc, _, _ = Crop(ts, x, 500, 1)
	assert.Len(t, tc, 11, "out of range start falls back to 0")
}

func TestReconcile(t *testing.T) {
	//                 0  1  2  3  4  5  6  7  8  9 10 11 12
	x := []float64{-5, 0, 5, -1, -3, -2, 6, 0, -4, 7, -2, -6, -1}
	peaks := []int{2, 6, 9}

	t.Run("finds minima between peaks", func(t *testing.T) {
		got := Reconcile(x, peaks, []int{0})
		assert.Equal(t, []int{0, 4, 8, 11}, got)
	})

	t.Run("detected valleys after the first are replaced", func(t *testing.T) {
		got := Reconcile(x, peaks, []int{0, 3, 7})
		assert.Equal(t, []int{0, 4, 8, 11}, got)
	})

	t.Run("trailing minimum at boundary rejected", func(t *testing.T) {
		y := []float64{-5, 0, 5, -1, -3, -2, 6, -1, -2}
		got := Reconcile(y, []int{2, 6}, []int{0})
		assert.Equal(t, []int{0, 4}, got)
	})

	t.Run("adjacent peaks have nothing between", func(t *testing.T) {
		y := []float64{0, 3, 4, 0}
		got := Reconcile(y, []int{1, 2}, []int{0})
		assert.Equal(t, []int{0}, got)
	})

	t.Run("no valleys and no peaks", func(t *testing.T) {
		assert.Empty(t, Reconcile(x, nil, nil))
	})
}

func defaultSegmenter() *Segmenter {
	return NewSegmenter(config.EmptyTuningConfig())
}

func TestSegment_ThreeCycleTriangle(t *testing.T) {
	ts, x := testutil.ThreeCycles.Pitch()
	seg := defaultSegmenter()
	seg.WindowSeconds = 35

	res := seg.Segment(ts, x)

	assert.Equal(t, 15, res.Start)
	assert.Equal(t, 2099, res.End)
	assert.Equal(t, []int{173, 519, 865, 1211, 1557, 1903}, res.Peaks)
	assert.Equal(t, []int{0, 346, 692, 1038, 1384, 1730, 2076}, res.Valleys)
	require.Len(t, res.Cycles, 3)
	for i, c := range res.Cycles {
		assert.True(t, c.Ordered())
		total := res.Time[c.Valley3] - res.Time[c.Valley1]
		assert.InDelta(t, 11.5, total, 0.1, "cycle %d", i)
	}
	assert.Equal(t, res.Cycles[0].Valley3, res.Cycles[1].Valley1)
}

func TestSegment_DefaultWindowCutsThirdCycle(t *testing.T) {
	ts, x := testutil.ThreeCycles.Pitch()
	res := defaultSegmenter().Segment(ts, x)

	assert.Equal(t, 1845, res.End)
	assert.Len(t, res.Time, 1831)
	assert.Len(t, res.Cycles, 2)
}

func TestSegment_AlignedSeries(t *testing.T) {
	ts, x := testutil.ThreeCycles.Pitch()
	res := defaultSegmenter().Segment(ts, x)

	require.Equal(t, len(res.Time), len(res.Pitch))
	assert.Equal(t, 0.0, res.Time[0])
	assert.InDelta(t, 0, floats.Sum(res.Pitch)/float64(len(res.Pitch)), 1e-9)
}

func TestSegment_Degenerate(t *testing.T) {
	seg := defaultSegmenter()

	tests := []struct {
		name string
		t, x []float64
	}{
		{"empty", nil, nil},
		{"single", []float64{0}, []float64{1}},
		{"flat", []float64{0, 1, 2, 3}, []float64{0, 0, 0, 0}},
		{"small wobble", []float64{0, 0.1, 0.2, 0.3, 0.4}, []float64{0, 1, 0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := seg.Segment(tt.t, tt.x)
			assert.Empty(t, res.Cycles)
		})
	}
}

func TestSegment_Deterministic(t *testing.T) {
	ts, x := testutil.ThreeCycles.Pitch()
	seg := defaultSegmenter()
	assert.Equal(t, seg.Segment(ts, x), seg.Segment(ts, x))
}
