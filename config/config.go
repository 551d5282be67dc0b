// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/calebhd03/SPH/fluid"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Fluid     FluidConfig     `yaml:"fluid"`
	Bounds    BoundsConfig    `yaml:"bounds"`
	Grid      GridConfig      `yaml:"grid"`
	Emitter   EmitterConfig   `yaml:"emitter"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// VecConfig is a three-component vector in YAML form.
type VecConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Vec converts to the solver's vector type.
func (v VecConfig) Vec() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// FluidConfig holds the solver's physical parameters.
type FluidConfig struct {
	SmoothingRadius float64   `yaml:"smoothing_radius"` // Kernel support radius; also the grid cell size
	RestDensity     float64   `yaml:"rest_density"`
	GasConstant     float64   `yaml:"gas_constant"` // Pressure stiffness in the state equation
	Viscosity       float64   `yaml:"viscosity"`
	ParticleMass    float64   `yaml:"particle_mass"`
	Gravity         VecConfig `yaml:"gravity"`
	DT              float64   `yaml:"dt"`
	Damping         float64   `yaml:"damping"`       // Per-step velocity scale
	Restitution     float64   `yaml:"restitution"`   // Velocity kept on a wall bounce
	MaxParticles    int       `yaml:"max_particles"` // Fixed particle capacity
	Workers         int       `yaml:"workers"`       // Worker pool size (0 = all cores)
}

// BoundsConfig holds the simulation domain box.
type BoundsConfig struct {
	Min VecConfig `yaml:"min"`
	Max VecConfig `yaml:"max"`
}

// GridConfig holds spatial partition options.
type GridConfig struct {
	Addressing     string `yaml:"addressing"`      // dense or hashed
	WrapNeighbors  bool   `yaml:"wrap_neighbors"`  // Wrap neighbor lookups at the domain edges
	BruteForce     bool   `yaml:"brute_force"`     // Bypass the grid; O(N^2) reference path
	CountOccupancy bool   `yaml:"count_occupancy"` // Maintain per-bucket diagnostic counters
}

// EmitterConfig holds the startup particle block.
type EmitterConfig struct {
	Origin   VecConfig `yaml:"origin"`
	CountX   int       `yaml:"count_x"`
	CountY   int       `yaml:"count_y"`
	CountZ   int       `yaml:"count_z"`
	Spacing  float64   `yaml:"spacing"` // Lattice pitch (0 = rest spacing from mass and density)
	Jitter   float64   `yaml:"jitter"`  // Displacement amplitude as a fraction of spacing
	Velocity VecConfig `yaml:"velocity"`
	Seed     int64     `yaml:"seed"`
}

// RenderConfig holds particle rendering parameters.
type RenderConfig struct {
	ParticleRadius float64 `yaml:"particle_radius"`
	ColorBy        string  `yaml:"color_by"` // speed, density or pressure
	GradientSteps  int     `yaml:"gradient_steps"`
	ShowBounds     bool    `yaml:"show_bounds"`
	ShowGrid       bool    `yaml:"show_grid"` // Occupied grid cells as wireframes
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	Enabled             bool    `yaml:"enabled"`
	OutputDir           string  `yaml:"output_dir"`
	StatsWindow         float64 `yaml:"stats_window"` // Seconds of simulated time per stats row
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32         float32 // Fluid.DT as float32
	ScreenW32    float32 // Screen.Width as float32
	ScreenH32    float32 // Screen.Height as float32
	DomainCenter VecConfig
	DomainExtent float64      // Largest bounds edge, for camera framing
	EmitterTotal int          // Particles the startup block spawns
	Params       fluid.Params // Validated solver parameters
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.buildParams(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// buildParams assembles and validates the solver parameter set.
func (c *Config) buildParams() error {
	addressing, err := fluid.ParseAddressing(c.Grid.Addressing)
	if err != nil {
		return err
	}
	p := fluid.Params{
		SmoothingRadius:     c.Fluid.SmoothingRadius,
		RestDensity:         c.Fluid.RestDensity,
		GasConstant:         c.Fluid.GasConstant,
		Viscosity:           c.Fluid.Viscosity,
		ParticleMass:        c.Fluid.ParticleMass,
		Gravity:             c.Fluid.Gravity.Vec(),
		DT:                  c.Fluid.DT,
		Damping:             c.Fluid.Damping,
		Restitution:         c.Fluid.Restitution,
		BoundsMin:           c.Bounds.Min.Vec(),
		BoundsMax:           c.Bounds.Max.Vec(),
		Addressing:          addressing,
		WrapNeighbors:       c.Grid.WrapNeighbors,
		BruteForceNeighbors: c.Grid.BruteForce,
		CountOccupancy:      c.Grid.CountOccupancy,
		Workers:             c.Fluid.Workers,
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if c.Fluid.MaxParticles <= 0 {
		return fmt.Errorf("%w: max_particles %d (must be positive)", fluid.ErrInvalidParams, c.Fluid.MaxParticles)
	}
	c.Derived.Params = p
	return nil
}

// Rebuild revalidates and recomputes derived values after direct field
// edits. Tools that mutate a loaded config must call this before use.
func (c *Config) Rebuild() error {
	if err := c.buildParams(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// Params returns the validated solver parameters.
func (c *Config) Params() fluid.Params {
	return c.Derived.Params
}

// BlockEmitter assembles the startup emitter from the emitter section.
func (c *Config) BlockEmitter() fluid.BlockEmitter {
	return fluid.BlockEmitter{
		Origin:   c.Emitter.Origin.Vec(),
		Count:    [3]int{c.Emitter.CountX, c.Emitter.CountY, c.Emitter.CountZ},
		Spacing:  c.Emitter.Spacing,
		Jitter:   c.Emitter.Jitter,
		Velocity: c.Emitter.Velocity.Vec(),
		Seed:     c.Emitter.Seed,
	}
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Fluid.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	min, max := c.Bounds.Min, c.Bounds.Max
	c.Derived.DomainCenter = VecConfig{
		X: (min.X + max.X) / 2,
		Y: (min.Y + max.Y) / 2,
		Z: (min.Z + max.Z) / 2,
	}
	extent := max.X - min.X
	if e := max.Y - min.Y; e > extent {
		extent = e
	}
	if e := max.Z - min.Z; e > extent {
		extent = e
	}
	c.Derived.DomainExtent = extent

	c.Derived.EmitterTotal = c.Emitter.CountX * c.Emitter.CountY * c.Emitter.CountZ
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
