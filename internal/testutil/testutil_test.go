package testutil

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertStatusCode(t *testing.T) {
	t.Parallel()

	fakeT := &testing.T{}
	AssertStatusCode(fakeT, http.StatusOK, http.StatusOK)
	assert.False(t, fakeT.Failed())
}

func TestTriangle(t *testing.T) {
	tr := ThreeCycles

	assert.Equal(t, -15.0, tr.At(15))
	assert.Equal(t, 15.0, tr.At(15+173))
	assert.Equal(t, -15.0, tr.At(15+346))
	assert.Less(t, tr.At(14), tr.At(13), "descending into the first valley")

	ts, x := tr.Pitch()
	require.Len(t, ts, 2100)
	require.Len(t, x, 2100)
	assert.InDelta(t, 34.983, ts[len(ts)-1], 1e-3)
	for _, v := range x {
		assert.LessOrEqual(t, v, 15.0)
		assert.GreaterOrEqual(t, v, -15.0)
	}
}

func TestTriangleRecords(t *testing.T) {
	records := Triangle{Samples: 400, Offset: 0, Period: 200, Amplitude: 10}.Records()
	require.Len(t, records, 400)

	assert.InDelta(t, -1.0*0.98480775, records[0]["accel_z"], 1e-6)
	assert.Greater(t, records[10]["gyro_x"], 0.0)
	assert.Less(t, records[110]["gyro_x"], 0.0)

	// Integrating the gyro reproduces the swing.
	var angle float64
	for i := 0; i < 100; i++ {
		angle += records[i]["gyro_x"].(float64) / SampleRate
	}
	assert.InDelta(t, 20*3.14159265/180, angle, 1e-6)
}

func TestNewJSONRequest(t *testing.T) {
	req := NewJSONRequest(t, http.MethodPost, "/processar", map[string]any{"peso": 70})
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
	assert.Equal(t, 70.0, body["peso"])
}

func TestNewTestRecorder(t *testing.T) {
	rec := NewTestRecorder()
	assert.Equal(t, http.StatusOK, rec.Code)
}
