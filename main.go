package main

import (
	"flag"
	"log/slog"
	"math"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/calebhd03/SPH/config"
	"github.com/calebhd03/SPH/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window in sim-seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "Emitter jitter seed (0 = use config)")
	maxSteps := flag.Int("max-steps", 0, "Stop after N solver steps (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Solver steps per update call (higher = faster headless runs)")
	particles := flag.Int("particles", 0, "Replace the configured emitter block with a cube of about N particles")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *particles > 0 {
		if err := overrideEmitter(cfg, *particles); err != nil {
			slog.Error("failed to override emitter", "error", err)
			os.Exit(1)
		}
	}

	opts := sim.Options{
		Seed:           *seed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *headless {
		runHeadless(opts, *maxSteps)
		return
	}

	// Graphical mode
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "SPH Fluid")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	s, err := sim.New(opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer s.Unload()

	for !rl.WindowShouldClose() {
		s.Update()
		s.Draw()

		if *maxSteps > 0 && int(s.StepCount()) >= *maxSteps {
			break
		}
	}
}

// runHeadless runs the pure CPU loop, no window needed.
func runHeadless(opts sim.Options, maxSteps int) {
	s, err := sim.New(opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer s.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_steps", maxSteps,
		"steps_per_update", opts.StepsPerUpdate,
	)

	for {
		if err := s.UpdateHeadless(); err != nil {
			slog.Error("simulation failed", "error", err)
			return
		}

		if maxSteps > 0 && int(s.StepCount()) >= maxSteps {
			slog.Info("max steps reached", "step", s.StepCount())
			return
		}
	}
}

// overrideEmitter replaces the configured block with a cube of about n
// particles, growing the solver capacity when needed.
func overrideEmitter(cfg *config.Config, n int) error {
	side := int(math.Round(math.Cbrt(float64(n))))
	if side < 1 {
		side = 1
	}
	cfg.Emitter.CountX = side
	cfg.Emitter.CountY = side
	cfg.Emitter.CountZ = side

	total := side * side * side
	if cfg.Fluid.MaxParticles < total {
		cfg.Fluid.MaxParticles = total
	}
	slog.Info("emitter override", "requested", n, "side", side, "total", total)
	return cfg.Rebuild()
}
