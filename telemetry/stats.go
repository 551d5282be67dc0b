package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartStep int32   `csv:"-"`
	WindowEndStep   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Particle state at window end
	Particles     int     `csv:"particles"`
	KineticEnergy float64 `csv:"kinetic_energy"`
	MaxSpeed      float64 `csv:"max_speed"`

	// Density field distribution
	DensityMean float64 `csv:"density_mean"`
	DensityStd  float64 `csv:"density_std"`
	DensityP5   float64 `csv:"density_p5"`
	DensityP50  float64 `csv:"density_p50"`
	DensityP95  float64 `csv:"density_p95"`

	// Pressure field
	PressureMean float64 `csv:"pressure_mean"`
	PressureMax  float64 `csv:"pressure_max"`

	// Events during window
	Bounces int64 `csv:"bounces"` // boundary collisions
	Resets  int64 `csv:"resets"`  // non-finite state repairs

	// Spatial partition shape at window end
	OccupiedBuckets int     `csv:"occupied_buckets"`
	MaxOccupancy    int     `csv:"max_occupancy"`
	MeanOccupancy   float64 `csv:"mean_occupancy"`
}

// ComputeFieldStats calculates mean, standard deviation and percentiles
// over one particle field.
func ComputeFieldStats(values []float64) (mean, std, p5, p50, p95 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if n > 1 {
		std = stat.StdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p5 = stat.Quantile(0.05, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)

	return mean, std, p5, p50, p95
}

// MaxValue returns the largest value in the slice, 0 when empty.
func MaxValue(values []float64) float64 {
	most := 0.0
	for i, v := range values {
		if i == 0 || v > most {
			most = v
		}
	}
	return most
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartStep)),
		slog.Int("window_end", int(s.WindowEndStep)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_std", s.DensityStd),
		slog.Float64("density_p5", s.DensityP5),
		slog.Float64("density_p50", s.DensityP50),
		slog.Float64("density_p95", s.DensityP95),
		slog.Float64("pressure_mean", s.PressureMean),
		slog.Float64("pressure_max", s.PressureMax),
		slog.Int64("bounces", s.Bounces),
		slog.Int64("resets", s.Resets),
		slog.Int("occupied_buckets", s.OccupiedBuckets),
		slog.Int("max_occupancy", s.MaxOccupancy),
		slog.Float64("mean_occupancy", s.MeanOccupancy),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndStep,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"kinetic_energy", s.KineticEnergy,
		"max_speed", s.MaxSpeed,
		"density_mean", s.DensityMean,
		"density_p50", s.DensityP50,
		"pressure_max", s.PressureMax,
		"bounces", s.Bounces,
		"resets", s.Resets,
		"occupied_buckets", s.OccupiedBuckets,
		"max_occupancy", s.MaxOccupancy,
	)
}
