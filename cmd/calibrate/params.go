// Package main provides CMA-ES calibration for finding solver parameters
// that hold the fluid near its rest density without blowing up.
package main

import (
	"github.com/calebhd03/SPH/config"
)

// ParamSpec defines a single calibratable parameter and where it lives
// in the config.
type ParamSpec struct {
	Name string
	Min  float64
	Max  float64
	Bind func(*config.Config) *float64
}

// toUnit maps a raw value into [0,1] across the parameter's range.
func (s ParamSpec) toUnit(v float64) float64 {
	return (v - s.Min) / (s.Max - s.Min)
}

// fromUnit maps a [0,1] value back to the parameter's range.
func (s ParamSpec) fromUnit(u float64) float64 {
	return s.Min + u*(s.Max-s.Min)
}

func (s ParamSpec) clip(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// ParamVector holds the set of all calibratable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of calibratable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{
				Name: "gas_constant", Min: 200, Max: 8000,
				Bind: func(c *config.Config) *float64 { return &c.Fluid.GasConstant },
			},
			{
				Name: "viscosity", Min: 0.05, Max: 5.0,
				Bind: func(c *config.Config) *float64 { return &c.Fluid.Viscosity },
			},
			{
				Name: "damping", Min: 0.90, Max: 1.0,
				Bind: func(c *config.Config) *float64 { return &c.Fluid.Damping },
			},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.toUnit(raw[i])
	}
	return out
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(unit []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.fromUnit(unit[i])
	}
	return out
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.clip(v[i])
	}
	return out
}

// ApplyToConfig applies clamped parameter values to a Config struct and
// rebuilds its derived solver parameters.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	for i, spec := range pv.Specs {
		*spec.Bind(cfg) = spec.clip(values[i])
	}
	return cfg.Rebuild()
}

// ExtractFromConfig reads the current parameter values out of a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = *spec.Bind(cfg)
	}
	return out
}
