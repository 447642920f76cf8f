package main

import (
	"github.com/pthm-cable/shoal/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable force constants.
// max_speed and separation_radius stay fixed so runs remain comparable.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "cohesion", Path: "forces.cohesion", Min: 0, Max: 3},
			{Name: "alignment", Path: "forces.alignment", Min: 0, Max: 2},
			{Name: "wander", Path: "forces.wander", Min: 0, Max: 40},
			{Name: "separation_strength", Path: "forces.separation_strength", Min: 0, Max: 200},
			{Name: "friction", Path: "forces.friction", Min: 0, Max: 0.5},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and clears the
// preset so the explicit values survive Prepare.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	cfg.Forces.Preset = ""
	cfg.Forces.Cohesion = clamped[0]
	cfg.Forces.Alignment = clamped[1]
	cfg.Forces.Wander = clamped[2]
	cfg.Forces.SeparationStrength = clamped[3]
	cfg.Forces.Friction = clamped[4]

	return cfg.Prepare()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Forces.Cohesion,
		cfg.Forces.Alignment,
		cfg.Forces.Wander,
		cfg.Forces.SeparationStrength,
		cfg.Forces.Friction,
	}
}
