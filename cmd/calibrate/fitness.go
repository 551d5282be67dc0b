package main

import (
	"math"
	"sync"

	"github.com/calebhd03/SPH/config"
	"github.com/calebhd03/SPH/sim"
	"github.com/calebhd03/SPH/telemetry"
)

// Scoring knobs.
const (
	// Windows skipped before scoring; the dam break needs time to settle.
	warmupWindows = 2

	// Cost per non-finite particle repair inside a scored window.
	resetPenalty = 10.0

	// Added when a run errors out or is too short to score.
	divergedPenalty = 100.0

	// Weight of the density spread term relative to the mean error.
	spreadWeight = 0.5
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxSteps    int
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestWindows    []telemetry.WindowStats
	lastDensityErr float64 // mean relative density error of the latest Evaluate
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxSteps int, seeds []int64, baseCfg *config.Config, statsWindow float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxSteps:    maxSteps,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: statsWindow,
		bestFitness: math.Inf(1),
	}
}

// BestWindows returns the stats series from the best evaluation.
func (fe *FitnessEvaluator) BestWindows() []telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// LastDensityError returns the density error from the most recent evaluation.
func (fe *FitnessEvaluator) LastDensityError() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastDensityErr
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness    float64
	densityErr float64
	windows    []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the mean density tracking error plus instability penalties,
// averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	var totalFitness, totalDensityErr float64
	bestSeedFitness := math.Inf(1)
	var bestSeedWindows []telemetry.WindowStats
	for _, r := range results {
		totalFitness += r.fitness
		totalDensityErr += r.densityErr
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedWindows = r.windows
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	// Update best tracking
	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestWindows = bestSeedWindows
	}
	fe.lastDensityErr = totalDensityErr / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless run and scores it.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) seedResult {
	cfg := fe.copyConfig()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return seedResult{fitness: divergedPenalty, densityErr: math.Inf(1)}
	}

	var windows []telemetry.WindowStats
	s, err := sim.New(sim.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return seedResult{fitness: divergedPenalty, densityErr: math.Inf(1)}
	}
	defer s.Unload()

	for int(s.StepCount()) < fe.maxSteps {
		if err := s.UpdateHeadless(); err != nil {
			fitness, densityErr := fe.score(cfg, windows)
			return seedResult{fitness: fitness + divergedPenalty, densityErr: densityErr, windows: windows}
		}
	}

	fitness, densityErr := fe.score(cfg, windows)
	return seedResult{fitness: fitness, densityErr: densityErr, windows: windows}
}

// copyConfig clones the base config. All config sections are value types,
// so a shallow copy is a full copy.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// score turns a window series into a scalar (lower = better) plus the
// bare density error for progress reporting.
func (fe *FitnessEvaluator) score(cfg *config.Config, windows []telemetry.WindowStats) (fitness, densityErr float64) {
	if len(windows) <= warmupWindows {
		return divergedPenalty, math.Inf(1)
	}
	valid := windows[warmupWindows:]

	rest := cfg.Fluid.RestDensity
	speedLimit := runawaySpeed(cfg)

	var errSum, spreadSum, speedSum float64
	var resets int64
	for _, w := range valid {
		errSum += math.Abs(w.DensityMean-rest) / rest
		spreadSum += w.DensityStd / rest
		resets += w.Resets
		if w.MaxSpeed > speedLimit {
			speedSum += (w.MaxSpeed - speedLimit) / speedLimit
		}
	}

	n := float64(len(valid))
	densityErr = errSum / n
	fitness = densityErr + spreadWeight*spreadSum/n + speedSum/n + resetPenalty*float64(resets)
	return fitness, densityErr
}

// runawaySpeed returns the particle speed above which a run counts as
// unstable: three times the free-fall speed across the domain height,
// or one cell per step when gravity is off.
func runawaySpeed(cfg *config.Config) float64 {
	g := math.Abs(cfg.Fluid.Gravity.Y)
	height := cfg.Bounds.Max.Y - cfg.Bounds.Min.Y
	if g > 0 && height > 0 {
		return 3 * math.Sqrt(2*g*height)
	}
	return cfg.Fluid.SmoothingRadius / cfg.Fluid.DT
}
