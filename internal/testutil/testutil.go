// Package testutil provides shared test utilities and fixtures.
//
// The fixtures describe a subject rising and sitting at a steady cadence:
// a triangle wave in the sagittal tilt, and the phone accelerometer and
// gyroscope readings that tilt produces.
package testutil

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/banshee-data/sitstand.report/internal/imu"
)

// SampleRate is the rate the fixtures are generated at.
const SampleRate = 60.0

// Triangle describes a sit-stand tilt pattern in samples. Valleys (seated)
// sit at Offset + k*Period, peaks (upright) half a period later.
type Triangle struct {
	Samples   int
	Offset    int
	Period    int // must be even
	Amplitude float64
}

// ThreeCycles is three full stand-sit cycles (six tilt periods) over 35 s
// with a ±15° swing, each cycle lasting 692 samples (11.53 s).
var ThreeCycles = Triangle{Samples: 2100, Offset: 15, Period: 346, Amplitude: 15}

// At returns the tilt in degrees at sample i.
func (tr Triangle) At(i int) float64 {
	half := tr.Period / 2
	ph := ((i-tr.Offset)%tr.Period + tr.Period) % tr.Period
	if ph <= half {
		return -tr.Amplitude + 2*tr.Amplitude*float64(ph)/float64(half)
	}
	return tr.Amplitude - 2*tr.Amplitude*float64(ph-half)/float64(half)
}

// rate returns the tilt rate in deg/s at sample i.
func (tr Triangle) rate(i int) float64 {
	half := tr.Period / 2
	ph := ((i-tr.Offset)%tr.Period + tr.Period) % tr.Period
	r := 2 * tr.Amplitude / float64(half) * SampleRate
	if ph < half {
		return r
	}
	return -r
}

// Pitch returns the sample times and tilt signal.
func (tr Triangle) Pitch() (t, x []float64) {
	t = make([]float64, tr.Samples)
	x = make([]float64, tr.Samples)
	for i := range t {
		t[i] = float64(i) / SampleRate
		x[i] = tr.At(i)
	}
	return t, x
}

// Records returns the IMU readings of a phone tilting about its x axis by
// the triangle, in g and rad/s, as a logging app would export them. The
// screen faces down so the vertical axis reads -1 g at rest.
func (tr Triangle) Records() []imu.Record {
	records := make([]imu.Record, tr.Samples)
	for i := range records {
		theta := tr.At(i) * math.Pi / 180
		records[i] = imu.Record{
			"timestamp": float64(i) / SampleRate,
			"accel_x":   0.0,
			"accel_y":   math.Sin(theta),
			"accel_z":   -math.Cos(theta),
			"gyro_x":    tr.rate(i) * math.Pi / 180,
			"gyro_y":    0.0,
			"gyro_z":    0.0,
		}
	}
	return records
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// NewJSONRequest creates a test HTTP request with body encoded as JSON.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode request body: %v", err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}
