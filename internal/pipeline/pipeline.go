// Package pipeline runs one sit-to-stand recording through conditioning,
// orientation, segmentation, kinematics and classification.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/sitstand.report/internal/config"
	"github.com/banshee-data/sitstand.report/internal/imu"
	"github.com/banshee-data/sitstand.report/internal/kinematics"
	"github.com/banshee-data/sitstand.report/internal/monitoring"
	"github.com/banshee-data/sitstand.report/internal/norms"
	"github.com/banshee-data/sitstand.report/internal/orientation"
	"github.com/banshee-data/sitstand.report/internal/segment"
	"github.com/banshee-data/sitstand.report/internal/signal"
)

// ErrNoSamples is returned when a request carries no samples at all.
var ErrNoSamples = errors.New("pipeline: no samples")

// minDistinctSamples is the smallest recording that is analysed. Shorter
// ones produce a zero-repetition summary.
const minDistinctSamples = 4

// Request is one recording plus the subject it belongs to.
type Request struct {
	Samples []imu.Record
	MassKg  float64
	HeightM float64
	Age     int
	Sex     norms.Sex
}

func (r Request) profile() kinematics.Profile {
	return kinematics.Profile{MassKg: r.MassKg, HeightM: r.HeightM}
}

// Totals are the global metrics of a run.
type Totals struct {
	Repetitions int     `json:"repeticoes"`
	MeanPower   float64 `json:"potencia_media_global"` // W
	Energy      float64 `json:"energia_total"`         // J
	TotalTime   float64 `json:"tempo_total_acumulado"` // s
}

// Aggregate sums the cycle metrics. Mean power is the lifting work of all
// repetitions over the summed cycle time, or 0 when either is zero.
func Aggregate(cycles []kinematics.CycleMetrics, prof kinematics.Profile, p kinematics.Params) Totals {
	out := Totals{Repetitions: len(cycles)}
	for _, c := range cycles {
		out.TotalTime += c.Total
	}
	out.Energy = p.EnergyPerRep(prof) * float64(out.Repetitions)
	if out.Repetitions > 0 && out.TotalTime > 0 {
		out.MeanPower = out.Energy / out.TotalTime
	}
	return out
}

// Rounded returns the display copy of t.
func (t Totals) Rounded() Totals {
	t.MeanPower = kinematics.Round2(t.MeanPower)
	t.Energy = kinematics.Round2(t.Energy)
	t.TotalTime = kinematics.Round2(t.TotalTime)
	return t
}

// ResultSummary is everything a run produces.
type ResultSummary struct {
	ID             uuid.UUID
	Totals         Totals
	Classification string
	Cycles         []kinematics.CycleMetrics // unrounded

	Input    imu.Report
	Filtered signal.Resampled
	Segments segment.Result // aligned pitch, extrema and cycles
}

// Run analyses req with cfg. Only an empty sample set and internal faults
// are errors; short or featureless recordings give a zero summary.
func Run(ctx context.Context, req Request, cfg *config.TuningConfig) (*ResultSummary, error) {
	if len(req.Samples) == 0 {
		return nil, ErrNoSamples
	}
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	fs := cfg.GetSampleRateHz()

	series, rep := imu.Normalize(req.Samples, fs)
	cond, err := signal.Condition(series, cfg)
	if err != nil {
		return nil, fmt.Errorf("condition signal: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &ResultSummary{
		ID:       uuid.New(),
		Input:    rep,
		Filtered: cond,
	}
	if series.Len()-cond.Dropped >= minDistinctSamples {
		res.Segments = AnalyzePitch(cond, cfg)
	} else {
		monitoring.Logf("pipeline: %d distinct samples, skipping segmentation", series.Len()-cond.Dropped)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := kinematics.ParamsFromConfig(cfg)
	seg := res.Segments
	res.Cycles = kinematics.ComputeAll(seg.Cycles, seg.Time, seg.Pitch, req.profile(), params)
	if res.Cycles == nil {
		res.Cycles = []kinematics.CycleMetrics{}
	}
	res.Totals = Aggregate(res.Cycles, req.profile(), params)
	res.Classification = norms.Classify(req.Sex, req.Age, res.Totals.Repetitions)
	return res, nil
}

// AnalyzePitch estimates orientation over the conditioned series and
// segments the sagittal tilt.
func AnalyzePitch(cond signal.Resampled, cfg *config.TuningConfig) segment.Result {
	if cond.Len() == 0 {
		return segment.Result{}
	}
	filter := orientation.NewMadgwick(cfg.GetMadgwickGain(), cfg.GetSampleRateHz())
	qs := filter.Run(cond.Accel, cond.Gyro)
	pitch := orientation.SagittalAngle(qs, cfg.GetSagittalAxis())
	return segment.NewSegmenter(cfg).Segment(cond.Time, pitch)
}
