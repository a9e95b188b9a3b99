package imu

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sitstand.report/internal/monitoring"
)

const fs = 60.0

func TestNormalize_CanonicalFields(t *testing.T) {
	records := []Record{
		{"timestamp": 10.0, "accel_x": 0.1, "accel_y": 0.2, "accel_z": 1.0, "gyro_x": 0.01, "gyro_y": 0.02, "gyro_z": 0.03},
		{"timestamp": 10.5, "accel_x": 0.2, "accel_y": 0.3, "accel_z": 0.9, "gyro_x": 0.04, "gyro_y": 0.05, "gyro_z": 0.06},
	}

	s, rep := Normalize(records, fs)

	assert.Equal(t, TimeNumeric, rep.TimeSource)
	assert.Equal(t, 0, rep.MissingFields)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []float64{0, 0.5}, s.Time)
	assert.Equal(t, [3]float64{0.2, 0.3, 0.9}, s.Accel[1])
	assert.Equal(t, [3]float64{0.04, 0.05, 0.06}, s.Gyro[1])
}

func TestNormalize_Synonyms(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"short", Record{"ax": 1.0, "ay": 2.0, "az": 3.0, "gx": 4.0, "gy": 5.0, "gz": 6.0}},
		{"camel", Record{"accX": 1.0, "accY": 2.0, "accZ": 3.0, "gyroX": 4.0, "gyroY": 5.0, "gyroZ": 6.0}},
		{"sensorlog", Record{
			"accelerometerAccelerationX(G)": 1.0, "accelerometerAccelerationY(G)": 2.0, "accelerometerAccelerationZ(G)": 3.0,
			"gyroRotationX(rad/s)": 4.0, "gyroRotationY(rad/s)": 5.0, "gyroRotationZ(rad/s)": 6.0,
		}},
		{"upper case keys", Record{"ACC_X": 1.0, "ACC_Y": 2.0, "ACC_Z": 3.0, "GYR_X": 4.0, "GYR_Y": 5.0, "GYR_Z": 6.0}},
		{"strings", Record{"accel_x": "1", "accel_y": "2", "accel_z": "3", "gyro_x": "4", "gyro_y": "5", "gyro_z": "6"}},
		{"json numbers", Record{"accel_x": json.Number("1"), "accel_y": json.Number("2"), "accel_z": json.Number("3"),
			"gyro_x": json.Number("4"), "gyro_y": json.Number("5"), "gyro_z": json.Number("6")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rep := Normalize([]Record{tt.rec}, fs)
			require.Equal(t, 1, s.Len())
			assert.Equal(t, 0, rep.MissingFields)
			assert.Equal(t, [3]float64{1, 2, 3}, s.Accel[0])
			assert.Equal(t, [3]float64{4, 5, 6}, s.Gyro[0])
		})
	}
}

func TestNormalize_MissingMotionDefaultsToZero(t *testing.T) {
	lines, restore := monitoring.Capture()
	defer restore()

	s, rep := Normalize([]Record{{"accel_x": 1.0, "gyro_z": "abc"}}, fs)

	assert.Equal(t, 5, rep.MissingFields)
	assert.Equal(t, [3]float64{1, 0, 0}, s.Accel[0])
	assert.Equal(t, [3]float64{}, s.Gyro[0])
	require.NotEmpty(t, *lines)
	assert.Contains(t, (*lines)[0], "motion values missing")
}

func TestNormalize_SampleIndex(t *testing.T) {
	records := []Record{
		{"loggingSample(N)": 1.0},
		{"loggingSample(N)": 2.0},
		{"loggingSample(N)": 4.0},
	}
	s, rep := Normalize(records, fs)

	assert.Equal(t, TimeSampleIndex, rep.TimeSource)
	if diff := cmp.Diff([]float64{0, 1.0 / 60, 3.0 / 60}, s.Time, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("time mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_ISO8601(t *testing.T) {
	tests := []struct {
		name   string
		stamps []string
	}{
		{"rfc3339", []string{"2025-12-22T19:12:21Z", "2025-12-22T19:12:21.5Z", "2025-12-22T19:12:22.25Z"}},
		{"offset", []string{"2025-12-22T19:12:21-03:00", "2025-12-22T19:12:21.5-03:00", "2025-12-22T19:12:22.25-03:00"}},
		{"no zone", []string{"2025-12-22T19:12:21.000", "2025-12-22T19:12:21.500", "2025-12-22T19:12:22.250"}},
		{"space separator", []string{"2025-12-22 19:12:21.000", "2025-12-22 19:12:21.500", "2025-12-22 19:12:22.250"}},
		{"space and offset", []string{"2025-12-22 19:12:21.000 -0300", "2025-12-22 19:12:21.500 -0300", "2025-12-22 19:12:22.250 -0300"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]Record, len(tt.stamps))
			for i, ts := range tt.stamps {
				records[i] = Record{"timestamp": ts}
			}
			s, rep := Normalize(records, fs)
			assert.Equal(t, TimeISO8601, rep.TimeSource)
			assert.InDeltaSlice(t, []float64{0, 0.5, 1.25}, s.Time, 1e-9)
		})
	}
}

func TestNormalize_SyntheticFallback(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		reason  string
	}{
		{"absent", []Record{{"accel_x": 1.0}, {"accel_x": 1.0}, {"accel_x": 1.0}}, "time field absent"},
		{"partly absent", []Record{{"t": 0.0}, {"accel_x": 1.0}, {"t": 0.2}}, "time field absent"},
		{"bad text", []Record{{"timestamp": "yesterday"}, {"timestamp": "today"}, {"timestamp": "now"}}, "parse failed"},
		{"mixed", []Record{{"timestamp": 0.0}, {"timestamp": "2025-12-22T19:12:21Z"}, {"timestamp": 0.2}}, "mixed"},
		{"all zero", []Record{{"timestamp": 0.0}, {"timestamp": 0.0}, {"timestamp": 0.0}}, "do not advance"},
		{"boolean", []Record{{"timestamp": true}, {"timestamp": false}, {"timestamp": true}}, "unreadable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, restore := monitoring.Capture()
			defer restore()

			s, rep := Normalize(tt.records, fs)
			assert.Equal(t, TimeSynthetic, rep.TimeSource)
			assert.InDeltaSlice(t, []float64{0, 1.0 / 60, 2.0 / 60}, s.Time, 1e-12)

			joined := strings.Join(*lines, "\n")
			assert.Contains(t, joined, tt.reason)
		})
	}
}

func TestNormalize_SingleZeroTimestampIsNumeric(t *testing.T) {
	s, rep := Normalize([]Record{{"timestamp": 0.0}}, fs)
	assert.Equal(t, TimeNumeric, rep.TimeSource)
	assert.Equal(t, []float64{0}, s.Time)
}

func TestNormalize_Empty(t *testing.T) {
	s, rep := Normalize(nil, fs)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, TimeSynthetic, rep.TimeSource)
	assert.Empty(t, s.Accel)
	assert.Empty(t, s.Gyro)
}

func TestNormalize_LengthsAgree(t *testing.T) {
	records := make([]Record, 50)
	for i := range records {
		records[i] = Record{"time_offset": float64(i) * 0.02, "accel_z": 1.0}
	}
	s, _ := Normalize(records, fs)
	assert.Len(t, s.Time, 50)
	assert.Len(t, s.Accel, 50)
	assert.Len(t, s.Gyro, 50)
}
