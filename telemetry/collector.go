package telemetry

import "github.com/calebhd03/SPH/fluid"

// Collector accumulates solver state over time windows and produces
// WindowStats. Event counts (bounces, resets) are cumulative on the
// solver; the collector reports per-window deltas.
type Collector struct {
	windowDurationSec   float64
	windowDurationSteps int32
	dt                  float32

	windowStartStep int32
	lastBounces     int64
	lastResets      int64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per step (used for step-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	stepsPerWindow := int32(windowDurationSec / float64(dt))
	if stepsPerWindow < 1 {
		stepsPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationSteps: stepsPerWindow,
		dt:                  dt,
	}
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(currentStep int32) bool {
	return currentStep-c.windowStartStep >= c.windowDurationSteps
}

// Flush samples the solver into a WindowStats and starts the next window.
func (c *Collector) Flush(currentStep int32, s *fluid.Solver) WindowStats {
	ps := s.Particles()

	densMean, densStd, densP5, densP50, densP95 := ComputeFieldStats(ps.Density)
	pressMean, _, _, _, _ := ComputeFieldStats(ps.Pressure)

	bounces := s.Bounces()
	resets := s.Resets()

	grid := s.Grid()
	occupied := grid.OccupiedBuckets()
	meanOcc := 0.0
	if occupied > 0 {
		meanOcc = float64(ps.N()) / float64(occupied)
	}

	stats := WindowStats{
		WindowStartStep: c.windowStartStep,
		WindowEndStep:   currentStep,
		SimTimeSec:      float64(currentStep) * float64(c.dt),

		Particles:     ps.N(),
		KineticEnergy: s.KineticEnergy(),
		MaxSpeed:      s.MaxSpeed(),

		DensityMean: densMean,
		DensityStd:  densStd,
		DensityP5:   densP5,
		DensityP50:  densP50,
		DensityP95:  densP95,

		PressureMean: pressMean,
		PressureMax:  MaxValue(ps.Pressure),

		Bounces: bounces - c.lastBounces,
		Resets:  resets - c.lastResets,

		OccupiedBuckets: occupied,
		MaxOccupancy:    grid.MaxOccupancy(),
		MeanOccupancy:   meanOcc,
	}

	// Reset for next window
	c.windowStartStep = currentStep
	c.lastBounces = bounces
	c.lastResets = resets

	return stats
}

// WindowDurationSteps returns the number of steps per window.
func (c *Collector) WindowDurationSteps() int32 {
	return c.windowDurationSteps
}
