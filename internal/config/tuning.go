package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the numeric knobs of the 30STS analysis pipeline.
// Every field is optional; the Get* accessors fall back to the values the
// clinical protocol was validated with, so partial files are safe.
type TuningConfig struct {
	// Input and conditioning
	SampleRateHz      *float64 `json:"sample_rate_hz,omitempty"`
	UnitNormThreshold *float64 `json:"unit_norm_threshold,omitempty"` // mean |acc| above this => m/s²
	Gravity           *float64 `json:"gravity,omitempty"`
	FilterOrder       *int     `json:"filter_order,omitempty"`
	AccelCutoffHz     *float64 `json:"accel_cutoff_hz,omitempty"`
	GyroCutoffHz      *float64 `json:"gyro_cutoff_hz,omitempty"`

	// Orientation
	MadgwickGain *float64 `json:"madgwick_gain,omitempty"`
	SagittalAxis *int     `json:"sagittal_axis,omitempty"` // Euler component: 0 roll, 1 pitch, 2 yaw

	// Segmentation
	PeakDistance      *int     `json:"peak_distance,omitempty"` // samples
	AmplitudeGateDeg  *float64 `json:"amplitude_gate_deg,omitempty"`
	TestWindowSeconds *float64 `json:"test_window_seconds,omitempty"`

	// Kinematics
	SubSegmentFraction *float64 `json:"sub_segment_fraction,omitempty"`
	ChairHeightRatio   *float64 `json:"chair_height_ratio,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a config with every field populated from the
// accessor defaults. It matches config/tuning.defaults.json.
func DefaultTuningConfig() *TuningConfig {
	return EmptyTuningConfig().Effective()
}

// Effective returns a copy of c with every unset field filled from its
// accessor default.
func (c *TuningConfig) Effective() *TuningConfig {
	return &TuningConfig{
		SampleRateHz:       ptrFloat64(c.GetSampleRateHz()),
		UnitNormThreshold:  ptrFloat64(c.GetUnitNormThreshold()),
		Gravity:            ptrFloat64(c.GetGravity()),
		FilterOrder:        ptrInt(c.GetFilterOrder()),
		AccelCutoffHz:      ptrFloat64(c.GetAccelCutoffHz()),
		GyroCutoffHz:       ptrFloat64(c.GetGyroCutoffHz()),
		MadgwickGain:       ptrFloat64(c.GetMadgwickGain()),
		SagittalAxis:       ptrInt(c.GetSagittalAxis()),
		PeakDistance:       ptrInt(c.GetPeakDistance()),
		AmplitudeGateDeg:   ptrFloat64(c.GetAmplitudeGateDeg()),
		TestWindowSeconds:  ptrFloat64(c.GetTestWindowSeconds()),
		SubSegmentFraction: ptrFloat64(c.GetSubSegmentFraction()),
		ChairHeightRatio:   ptrFloat64(c.GetChairHeightRatio()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,       // from cmd/<tool>/
		"../../" + DefaultConfigPath,    // from internal/<pkg>/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.SampleRateHz != nil && *c.SampleRateHz <= 0 {
		return fmt.Errorf("sample_rate_hz must be positive, got %f", *c.SampleRateHz)
	}
	if c.UnitNormThreshold != nil && *c.UnitNormThreshold <= 0 {
		return fmt.Errorf("unit_norm_threshold must be positive, got %f", *c.UnitNormThreshold)
	}
	if c.Gravity != nil && *c.Gravity <= 0 {
		return fmt.Errorf("gravity must be positive, got %f", *c.Gravity)
	}
	if c.FilterOrder != nil && (*c.FilterOrder < 1 || *c.FilterOrder > 8) {
		return fmt.Errorf("filter_order must be between 1 and 8, got %d", *c.FilterOrder)
	}

	// Cutoffs must sit below Nyquist of the resampled grid.
	nyquist := c.GetSampleRateHz() / 2
	if c.AccelCutoffHz != nil && (*c.AccelCutoffHz <= 0 || *c.AccelCutoffHz >= nyquist) {
		return fmt.Errorf("accel_cutoff_hz must be in (0, %g), got %f", nyquist, *c.AccelCutoffHz)
	}
	if c.GyroCutoffHz != nil && (*c.GyroCutoffHz <= 0 || *c.GyroCutoffHz >= nyquist) {
		return fmt.Errorf("gyro_cutoff_hz must be in (0, %g), got %f", nyquist, *c.GyroCutoffHz)
	}

	if c.MadgwickGain != nil && *c.MadgwickGain < 0 {
		return fmt.Errorf("madgwick_gain must be non-negative, got %f", *c.MadgwickGain)
	}
	if c.SagittalAxis != nil && (*c.SagittalAxis < 0 || *c.SagittalAxis > 2) {
		return fmt.Errorf("sagittal_axis must be 0, 1 or 2, got %d", *c.SagittalAxis)
	}
	if c.PeakDistance != nil && *c.PeakDistance < 1 {
		return fmt.Errorf("peak_distance must be at least 1, got %d", *c.PeakDistance)
	}
	if c.AmplitudeGateDeg != nil && *c.AmplitudeGateDeg < 0 {
		return fmt.Errorf("amplitude_gate_deg must be non-negative, got %f", *c.AmplitudeGateDeg)
	}
	if c.TestWindowSeconds != nil && *c.TestWindowSeconds <= 0 {
		return fmt.Errorf("test_window_seconds must be positive, got %f", *c.TestWindowSeconds)
	}
	if c.SubSegmentFraction != nil && (*c.SubSegmentFraction <= 0 || *c.SubSegmentFraction >= 0.5) {
		return fmt.Errorf("sub_segment_fraction must be in (0, 0.5), got %f", *c.SubSegmentFraction)
	}
	if c.ChairHeightRatio != nil && (*c.ChairHeightRatio <= 0 || *c.ChairHeightRatio > 1) {
		return fmt.Errorf("chair_height_ratio must be in (0, 1], got %f", *c.ChairHeightRatio)
	}

	return nil
}

// GetSampleRateHz returns the sample_rate_hz value or the default.
func (c *TuningConfig) GetSampleRateHz() float64 {
	if c.SampleRateHz == nil {
		return 60.0
	}
	return *c.SampleRateHz
}

// GetUnitNormThreshold returns the unit_norm_threshold value or the default.
func (c *TuningConfig) GetUnitNormThreshold() float64 {
	if c.UnitNormThreshold == nil {
		return 4.0
	}
	return *c.UnitNormThreshold
}

// GetGravity returns the gravity value or the default.
func (c *TuningConfig) GetGravity() float64 {
	if c.Gravity == nil {
		return 9.81
	}
	return *c.Gravity
}

// GetFilterOrder returns the filter_order value or the default.
func (c *TuningConfig) GetFilterOrder() int {
	if c.FilterOrder == nil {
		return 4
	}
	return *c.FilterOrder
}

// GetAccelCutoffHz returns the accel_cutoff_hz value or the default.
func (c *TuningConfig) GetAccelCutoffHz() float64 {
	if c.AccelCutoffHz == nil {
		return 1.3
	}
	return *c.AccelCutoffHz
}

// GetGyroCutoffHz returns the gyro_cutoff_hz value or the default.
func (c *TuningConfig) GetGyroCutoffHz() float64 {
	if c.GyroCutoffHz == nil {
		return 10.0
	}
	return *c.GyroCutoffHz
}

// GetMadgwickGain returns the madgwick_gain value or the default.
func (c *TuningConfig) GetMadgwickGain() float64 {
	if c.MadgwickGain == nil {
		return 0.033 // IMU-only gain
	}
	return *c.MadgwickGain
}

// GetSagittalAxis returns the sagittal_axis value or the default.
func (c *TuningConfig) GetSagittalAxis() int {
	if c.SagittalAxis == nil {
		return 0
	}
	return *c.SagittalAxis
}

// GetPeakDistance returns the peak_distance value or the default.
func (c *TuningConfig) GetPeakDistance() int {
	if c.PeakDistance == nil {
		return 30
	}
	return *c.PeakDistance
}

// GetAmplitudeGateDeg returns the amplitude_gate_deg value or the default.
func (c *TuningConfig) GetAmplitudeGateDeg() float64 {
	if c.AmplitudeGateDeg == nil {
		return 5.0
	}
	return *c.AmplitudeGateDeg
}

// GetTestWindowSeconds returns the test_window_seconds value or the default.
func (c *TuningConfig) GetTestWindowSeconds() float64 {
	if c.TestWindowSeconds == nil {
		return 30.50
	}
	return *c.TestWindowSeconds
}

// GetSubSegmentFraction returns the sub_segment_fraction value or the default.
func (c *TuningConfig) GetSubSegmentFraction() float64 {
	if c.SubSegmentFraction == nil {
		return 0.30
	}
	return *c.SubSegmentFraction
}

// GetChairHeightRatio returns the chair_height_ratio value or the default.
func (c *TuningConfig) GetChairHeightRatio() float64 {
	if c.ChairHeightRatio == nil {
		return 0.53
	}
	return *c.ChairHeightRatio
}
