// Package main benchmarks the solver pipeline across a particle-count
// ladder and reports per-phase timings.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/calebhd03/SPH/config"
	"github.com/calebhd03/SPH/fluid"
	"github.com/calebhd03/SPH/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	counts := flag.String("counts", "1000,2000,4000,8000,16000", "Comma-separated particle counts")
	steps := flag.Int("steps", 200, "Measured steps per rung")
	warmup := flag.Int("warmup", 20, "Unmeasured steps before each rung")
	csvPath := flag.String("csv", "", "Optional CSV output path")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	ladder, err := parseCounts(*counts)
	if err != nil {
		log.Fatalf("bad -counts: %v", err)
	}

	var csvWriter *csv.Writer
	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			log.Fatalf("failed to create CSV file: %v", err)
		}
		defer f.Close()
		csvWriter = csv.NewWriter(f)
		defer csvWriter.Flush()
		csvWriter.Write([]string{
			"particles", "avg_step_us", "steps_per_sec",
			"grid_pct", "density_pct", "forces_pct", "integrate_pct",
		})
	}

	fmt.Printf("%-10s %-12s %-9s %6s %9s %8s %11s\n",
		"particles", "avg_step", "steps/s", "grid%", "density%", "forces%", "integrate%")

	for _, want := range ladder {
		n, stats, err := benchOne(cfg, want, *warmup, *steps)
		if err != nil {
			log.Fatalf("rung %d failed: %v", want, err)
		}

		fmt.Printf("%-10d %-12s %-9.0f %6.1f %9.1f %8.1f %11.1f\n",
			n,
			stats.AvgStepDuration.Round(time.Microsecond),
			stats.StepsPerSecond,
			stats.PhasePct[telemetry.PhaseGrid],
			stats.PhasePct[telemetry.PhaseDensity],
			stats.PhasePct[telemetry.PhaseForces],
			stats.PhasePct[telemetry.PhaseIntegrate],
		)

		if csvWriter != nil {
			csvWriter.Write([]string{
				strconv.Itoa(n),
				strconv.FormatInt(stats.AvgStepDuration.Microseconds(), 10),
				fmt.Sprintf("%.1f", stats.StepsPerSecond),
				fmt.Sprintf("%.2f", stats.PhasePct[telemetry.PhaseGrid]),
				fmt.Sprintf("%.2f", stats.PhasePct[telemetry.PhaseDensity]),
				fmt.Sprintf("%.2f", stats.PhasePct[telemetry.PhaseForces]),
				fmt.Sprintf("%.2f", stats.PhasePct[telemetry.PhaseIntegrate]),
			})
			csvWriter.Flush()
		}
	}
}

// benchOne runs one ladder rung: emit a cube of about want particles,
// warm up, then measure per-phase timings over the requested steps.
func benchOne(base *config.Config, want, warmup, steps int) (int, telemetry.PerfStats, error) {
	cfg := *base

	side := int(math.Round(math.Cbrt(float64(want))))
	if side < 1 {
		side = 1
	}
	cfg.Emitter.CountX = side
	cfg.Emitter.CountY = side
	cfg.Emitter.CountZ = side

	capacity := cfg.Fluid.MaxParticles
	if total := side * side * side; capacity < total {
		capacity = total
	}

	solver, err := fluid.New(cfg.Params(), capacity)
	if err != nil {
		return 0, telemetry.PerfStats{}, err
	}
	defer solver.Close()

	n, err := cfg.BlockEmitter().Emit(solver)
	if err != nil {
		return 0, telemetry.PerfStats{}, err
	}

	for i := 0; i < warmup; i++ {
		if err := solver.Step(); err != nil {
			return 0, telemetry.PerfStats{}, err
		}
	}

	perf := telemetry.NewPerfCollector(steps)
	for i := 0; i < steps; i++ {
		perf.StartStep()
		if err := solver.StepPhased(perf.StartPhase); err != nil {
			return 0, telemetry.PerfStats{}, err
		}
		perf.EndStep()
	}

	return n, perf.Stats(), nil
}

// parseCounts parses the comma-separated ladder.
func parseCounts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	counts := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("count %q: %w", p, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("count %d must be positive", n)
		}
		counts = append(counts, n)
	}
	return counts, nil
}
