package imu

import (
	"math"
	"strings"
	"time"

	"github.com/banshee-data/sitstand.report/internal/monitoring"
)

// Report describes how Normalize interpreted its input.
type Report struct {
	Samples       int    `json:"samples"`
	TimeSource    string `json:"time_source"`
	MissingFields int    `json:"missing_fields"` // motion axes defaulted to 0
}

type timeValue struct {
	raw     any
	index   bool // 1-based sample counter rather than seconds
	present bool
}

// Normalize resolves field synonyms and timestamp encodings for records
// sampled at fs Hz and returns the canonical series with time relative to
// the first sample.
func Normalize(records []Record, fs float64) (Series, Report) {
	n := len(records)
	s := Series{
		Time:  make([]float64, n),
		Accel: make([][3]float64, n),
		Gyro:  make([][3]float64, n),
	}
	rep := Report{Samples: n}
	times := make([]timeValue, n)

	for i, r := range records {
		m := r.fold()
		for axis := 0; axis < 3; axis++ {
			var ok bool
			if s.Accel[i][axis], ok = motion(m, accelKeys[axis]); !ok {
				rep.MissingFields++
			}
			if s.Gyro[i][axis], ok = motion(m, gyroKeys[axis]); !ok {
				rep.MissingFields++
			}
		}
		if _, v, ok := first(m, timeSecondsKeys); ok {
			times[i] = timeValue{raw: v, present: true}
		} else if _, v, ok := first(m, timeIndexKeys); ok {
			times[i] = timeValue{raw: v, index: true, present: true}
		}
	}
	if rep.MissingFields > 0 {
		monitoring.Logf("imu: %d motion values missing or unreadable, defaulted to 0", rep.MissingFields)
	}

	t, source, reason := decodeTime(times, fs)
	if source == TimeSynthetic {
		t = syntheticTime(n, fs)
		if n > 0 {
			monitoring.Logf("imu: %s, using synthetic %g Hz time grid", reason, fs)
		}
	}
	s.Time = t
	rep.TimeSource = source
	return s, rep
}

func motion(m map[string]any, keys []string) (float64, bool) {
	_, v, ok := first(m, keys)
	if !ok {
		return 0, false
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// decodeTime returns relative seconds and the source used, or
// TimeSynthetic with a reason when the column cannot be trusted.
func decodeTime(times []timeValue, fs float64) ([]float64, string, string) {
	n := len(times)
	if n == 0 {
		return nil, TimeSynthetic, "no samples"
	}

	numeric := make([]float64, n)
	var nNumeric, nIndex, nText int
	for i, tv := range times {
		if !tv.present {
			return nil, TimeSynthetic, "time field absent"
		}
		if f, ok := toFloat(tv.raw); ok {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, TimeSynthetic, "non-finite timestamp"
			}
			numeric[i] = f
			nNumeric++
			if tv.index {
				nIndex++
			}
			continue
		}
		if _, ok := tv.raw.(string); ok && !tv.index {
			nText++
			continue
		}
		return nil, TimeSynthetic, "unreadable timestamp"
	}

	switch {
	case nNumeric == n && nIndex == n:
		out := make([]float64, n)
		for i, v := range numeric {
			out[i] = (v - 1) / fs
		}
		return relative(out), TimeSampleIndex, ""
	case nNumeric == n && nIndex == 0:
		out := relative(numeric)
		if n > 1 && spanIsZero(out) {
			return nil, TimeSynthetic, "timestamps do not advance"
		}
		return out, TimeNumeric, ""
	case nText == n:
		out, err := parseInstants(times)
		if err != nil {
			return nil, TimeSynthetic, "timestamp parse failed: " + err.Error()
		}
		return out, TimeISO8601, ""
	}
	return nil, TimeSynthetic, "mixed timestamp encodings"
}

func relative(t []float64) []float64 {
	if len(t) == 0 {
		return t
	}
	t0 := t[0]
	for i := range t {
		t[i] -= t0
	}
	return t
}

func spanIsZero(t []float64) bool {
	lo, hi := t[0], t[0]
	for _, v := range t[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi == lo
}

func syntheticTime(n int, fs float64) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) / fs
	}
	return t
}

// Layouts seen in phone logger exports and JavaScript clients.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999 -0700",
	"2006-01-02 15:04:05.999999999",
}

func parseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range instantLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func parseInstants(times []timeValue) ([]float64, error) {
	out := make([]float64, len(times))
	var t0 time.Time
	for i, tv := range times {
		t, err := parseInstant(tv.raw.(string))
		if err != nil {
			return nil, err
		}
		if i == 0 {
			t0 = t
		}
		out[i] = t.Sub(t0).Seconds()
	}
	return out, nil
}
