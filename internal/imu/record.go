// Package imu maps heterogeneous IMU sample records onto the canonical
// time series consumed by the conditioning stage.
//
// Records arrive from JSON request bodies or CSV exports written by phone
// logging apps, so field names and timestamp encodings vary between
// sources. Normalize never fails: anything it cannot decode degrades to a
// documented fallback and is reported through monitoring.Logf.
package imu

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one sample as decoded from a request body or a CSV row.
// Values may be float64, json.Number, integers, or strings.
type Record map[string]any

// Series is the canonical time series. Time is in seconds relative to the
// first sample, Accel is in the source units and Gyro in rad/s.
// len(Time) == len(Accel) == len(Gyro) always holds.
type Series struct {
	Time  []float64
	Accel [][3]float64
	Gyro  [][3]float64
}

// Len returns the number of samples in the series.
func (s Series) Len() int { return len(s.Time) }

// Time sources reported by Normalize.
const (
	TimeNumeric     = "numeric"
	TimeSampleIndex = "sample_index"
	TimeISO8601     = "iso8601"
	TimeSynthetic   = "synthetic"
)

// Accepted field names, matched case-insensitively. Order is priority.
var (
	timeSecondsKeys = []string{"timestamp", "time", "t", "time_offset", "elapsed", "loggingtime(txt)"}
	timeIndexKeys   = []string{"loggingsample(n)", "sample", "index"}

	accelKeys = [3][]string{
		{"accel_x", "accx", "ax", "acc_x", "accelerometeraccelerationx(g)"},
		{"accel_y", "accy", "ay", "acc_y", "accelerometeraccelerationy(g)"},
		{"accel_z", "accz", "az", "acc_z", "accelerometeraccelerationz(g)"},
	}
	gyroKeys = [3][]string{
		{"gyro_x", "gyrox", "gx", "gyr_x", "gyrorotationx(rad/s)"},
		{"gyro_y", "gyroy", "gy", "gyr_y", "gyrorotationy(rad/s)"},
		{"gyro_z", "gyroz", "gz", "gyr_z", "gyrorotationz(rad/s)"},
	}
)

// fold returns a copy of r keyed by lower-cased, trimmed field names.
func (r Record) fold() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		key := strings.ToLower(strings.TrimSpace(k))
		if _, dup := out[key]; dup {
			continue
		}
		out[key] = v
	}
	return out
}

func first(m map[string]any, keys []string) (string, any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return k, v, true
		}
	}
	return "", nil, false
}

// toFloat converts a decoded JSON or CSV value into a float64.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case bool:
		return 0, false
	}
	return 0, false
}
