package signal

import (
	"fmt"

	"github.com/banshee-data/sitstand.report/internal/config"
	"github.com/banshee-data/sitstand.report/internal/imu"
	"github.com/banshee-data/sitstand.report/internal/monitoring"
)

// Resampled is the conditioned series on a uniform grid. Accel is in m/s²
// and low-passed at the accel cutoff, Gyro in rad/s low-passed at the gyro
// cutoff.
type Resampled struct {
	Time  []float64
	Accel [][3]float64
	Gyro  [][3]float64

	Units   Units // accelerometer units detected in the source
	Dropped int   // samples removed by deduplication
}

// Len returns the number of grid samples.
func (r Resampled) Len() int { return len(r.Time) }

// Condition runs the full conditioning chain on s. Fewer than two distinct
// samples produce an empty Resampled and no error.
func Condition(s imu.Series, cfg *config.TuningConfig) (Resampled, error) {
	fs := cfg.GetSampleRateHz()

	accel, units := InferAccelUnits(s.Accel, cfg.GetUnitNormThreshold(), cfg.GetGravity())
	flipped := imu.Series{
		Time:  s.Time,
		Accel: FlipVertical(accel),
		Gyro:  FlipVertical(s.Gyro),
	}
	ds := Deduplicate(flipped)
	out := Resampled{Units: units, Dropped: s.Len() - ds.Len()}
	if out.Dropped > 0 {
		monitoring.Logf("signal: dropped %d samples with repeated or reordered timestamps", out.Dropped)
	}
	if ds.Len() < 2 {
		out.Time = []float64{}
		out.Accel = [][3]float64{}
		out.Gyro = [][3]float64{}
		return out, nil
	}

	grid := UniformGrid(ds.Time[0], ds.Time[ds.Len()-1], 1/fs)
	accR, err := Resample(ds.Time, ds.Accel, grid)
	if err != nil {
		return Resampled{}, fmt.Errorf("resample accel: %w", err)
	}
	gyrR, err := Resample(ds.Time, ds.Gyro, grid)
	if err != nil {
		return Resampled{}, fmt.Errorf("resample gyro: %w", err)
	}

	order := cfg.GetFilterOrder()
	if out.Accel, err = lowPass(accR, order, cfg.GetAccelCutoffHz(), fs); err != nil {
		return Resampled{}, fmt.Errorf("filter accel: %w", err)
	}
	if out.Gyro, err = lowPass(gyrR, order, cfg.GetGyroCutoffHz(), fs); err != nil {
		return Resampled{}, fmt.Errorf("filter gyro: %w", err)
	}

	n := min(len(out.Accel), len(out.Gyro), len(grid))
	out.Time = grid[:n]
	out.Accel = out.Accel[:n]
	out.Gyro = out.Gyro[:n]
	return out, nil
}

func lowPass(v [][3]float64, order int, cutoffHz, fs float64) ([][3]float64, error) {
	b, a, err := Butterworth(order, cutoffHz, fs)
	if err != nil {
		return nil, err
	}
	out := make([][3]float64, len(v))
	col := make([]float64, len(v))
	for axis := 0; axis < 3; axis++ {
		for i := range v {
			col[i] = v[i][axis]
		}
		filtered, err := FiltFilt(b, a, col)
		if err != nil {
			return nil, err
		}
		for i, f := range filtered {
			out[i][axis] = f
		}
	}
	return out, nil
}
