// Package sim wires the solver, telemetry, and viewer into a runnable
// simulation.
package sim

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/calebhd03/SPH/camera"
	"github.com/calebhd03/SPH/config"
	"github.com/calebhd03/SPH/fluid"
	"github.com/calebhd03/SPH/renderer"
	"github.com/calebhd03/SPH/telemetry"
	"github.com/calebhd03/SPH/ui"
)

// Options configures simulation creation.
type Options struct {
	Seed           int64   // Emitter jitter seed (0 = use config seed)
	LogStats       bool    // Log window stats via slog
	StatsWindowSec float64 // Stats window in sim-seconds (0 = use config)
	OutputDir      string  // CSV output directory (empty = config, or disabled)
	Headless       bool    // Skip all viewer state
	StepsPerUpdate int     // Solver steps per Update call

	// Config overrides the global config when non-nil. Used by tools
	// that evaluate many parameter sets in one process.
	Config *config.Config

	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Sim holds the complete simulation state.
type Sim struct {
	cfg     *config.Config
	solver  *fluid.Solver
	emitter fluid.BlockEmitter

	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.WindowStats)
	logStats      bool

	// Viewer state (nil in headless mode)
	cam       *camera.Camera
	view      *renderer.Renderer
	panel     *ui.Panel
	hud       *ui.HUD
	perfPanel *ui.PerfPanel

	headless       bool
	paused         bool
	showPerf       bool
	stepsPerUpdate int

	// Last flushed window, shown in the HUD
	lastStats telemetry.WindowStats
	hasStats  bool
}

// New creates a simulation from the given options, emits the startup
// particle block, and opens CSV outputs if configured.
func New(opts Options) (*Sim, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	solver, err := fluid.New(cfg.Params(), cfg.Fluid.MaxParticles)
	if err != nil {
		return nil, fmt.Errorf("creating solver: %w", err)
	}

	emitter := cfg.BlockEmitter()
	if opts.Seed != 0 {
		emitter.Seed = opts.Seed
	}
	emitted, err := emitter.Emit(solver)
	if err != nil {
		solver.Close()
		return nil, fmt.Errorf("emitting start block: %w", err)
	}

	window := opts.StatsWindowSec
	if window <= 0 {
		window = cfg.Telemetry.StatsWindow
	}

	outputDir := opts.OutputDir
	if outputDir == "" && cfg.Telemetry.Enabled {
		outputDir = cfg.Telemetry.OutputDir
	}
	outputManager, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		solver.Close()
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	s := &Sim{
		cfg:            cfg,
		solver:         solver,
		emitter:        emitter,
		collector:      telemetry.NewCollector(window, cfg.Derived.DT32),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		outputManager:  outputManager,
		statsCallback:  opts.StatsCallback,
		logStats:       opts.LogStats,
		headless:       opts.Headless,
		stepsPerUpdate: stepsPerUpdate,
	}

	if !opts.Headless {
		if err := s.initViewer(); err != nil {
			solver.Close()
			return nil, err
		}
	}

	slog.Info("simulation ready",
		"particles", emitted,
		"capacity", solver.Cap(),
		"dt", cfg.Fluid.DT,
		"window_steps", s.collector.WindowDurationSteps(),
		"output_dir", outputManager.Dir(),
	)

	return s, nil
}

// initViewer builds the camera, renderer, and UI widgets.
func (s *Sim) initViewer() error {
	mode, err := renderer.ParseColorMode(s.cfg.Render.ColorBy)
	if err != nil {
		return err
	}

	s.cam = camera.New(s.cfg.Derived.DomainCenter.Vec(), s.cfg.Derived.DomainExtent*1.8)
	s.view = renderer.New(renderer.Options{
		ParticleRadius: float32(s.cfg.Render.ParticleRadius),
		Mode:           mode,
		GradientSteps:  s.cfg.Render.GradientSteps,
		ShowBounds:     s.cfg.Render.ShowBounds,
		ShowGrid:       s.cfg.Render.ShowGrid,
	})
	s.panel = ui.NewPanel(int32(s.cfg.Screen.Width))
	s.hud = ui.NewHUD()
	s.perfPanel = ui.NewPerfPanel(10, 130)
	return nil
}

// Update handles input and advances the simulation. A failed step pauses
// the simulation instead of crashing the viewer.
func (s *Sim) Update() {
	s.handleInput()

	if s.paused {
		return
	}

	for i := 0; i < s.stepsPerUpdate; i++ {
		if err := s.step(); err != nil {
			slog.Error("simulation step failed", "step", s.solver.StepCount(), "error", err)
			s.paused = true
			return
		}
	}
}

// UpdateHeadless advances the simulation without input handling.
func (s *Sim) UpdateHeadless() error {
	for i := 0; i < s.stepsPerUpdate; i++ {
		if err := s.step(); err != nil {
			return fmt.Errorf("step %d: %w", s.solver.StepCount(), err)
		}
	}
	return nil
}

// step runs one solver tick with phase timing and the telemetry flush.
func (s *Sim) step() error {
	s.perfCollector.StartStep()
	if err := s.solver.StepPhased(s.perfCollector.StartPhase); err != nil {
		return err
	}
	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()
	s.perfCollector.EndStep()
	return nil
}

// Draw renders one frame.
func (s *Sim) Draw() {
	s.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	rl.BeginMode3D(s.raylibCamera())
	s.view.DrawWorld(s.solver)
	rl.EndMode3D()

	s.drawHUD()

	if s.showPerf {
		s.perfPanel.Draw(s.perfPanelData())
	}

	act := s.panel.Draw(s.panelState())
	s.applyPanel(act)

	s.hud.DrawControls(int32(s.cfg.Screen.Height),
		"space pause | , . speed | r respawn | c color | tab panel | p perf | home camera | drag orbit | wheel zoom | arrows pan")

	rl.EndDrawing()
}

// raylibCamera converts the orbital camera to raylib's camera type.
func (s *Sim) raylibCamera() rl.Camera3D {
	pos := s.cam.Position()
	target := s.cam.Target
	return rl.Camera3D{
		Position:   rl.Vector3{X: float32(pos.X), Y: float32(pos.Y), Z: float32(pos.Z)},
		Target:     rl.Vector3{X: float32(target.X), Y: float32(target.Y), Z: float32(target.Z)},
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       float32(s.cam.FovY),
		Projection: rl.CameraPerspective,
	}
}

// drawHUD renders the stats text block.
func (s *Sim) drawHUD() {
	data := ui.HUDData{
		Title:          "SPH Fluid",
		Step:           s.solver.StepCount(),
		Particles:      s.solver.N(),
		Capacity:       s.solver.Cap(),
		StepsPerUpdate: s.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         s.paused,
		KineticEnergy:  s.solver.KineticEnergy(),
		MaxSpeed:       s.solver.MaxSpeed(),
		Bounces:        s.solver.Bounces(),
		Resets:         s.solver.Resets(),
	}
	if s.hasStats {
		data.DensityMean = s.lastStats.DensityMean
	}
	s.hud.Draw(data)
}

// perfPanelData assembles the timing panel rows in pipeline order.
func (s *Sim) perfPanelData() ui.PerfPanelData {
	stats := s.perfCollector.Stats()
	data := ui.PerfPanelData{
		AvgStep:        stats.AvgStepDuration,
		StepsPerSecond: stats.StepsPerSecond,
	}
	for _, phase := range telemetry.Phases() {
		data.Phases = append(data.Phases, ui.PhaseTime{Name: phase, Pct: stats.PhasePct[phase]})
	}
	return data
}

// panelState snapshots the adjustable values for the control panel.
func (s *Sim) panelState() ui.PanelState {
	p := s.solver.Params()
	return ui.PanelState{
		Paused:      s.paused,
		Gravity:     float32(p.Gravity.Y),
		Viscosity:   float32(p.Viscosity),
		GasConstant: float32(p.GasConstant),
		Restitution: float32(p.Restitution),
		ColorMode:   s.view.Mode().String(),
	}
}

// applyPanel applies the edits the control panel reported.
func (s *Sim) applyPanel(act ui.PanelActions) {
	if act.TogglePause {
		s.paused = !s.paused
	}
	if act.Respawn {
		s.Respawn()
	}
	if act.CycleColorMode {
		s.view.CycleMode()
	}
	if act.ParamsChanged {
		p := s.solver.Params()
		p.Gravity.Y = float64(act.State.Gravity)
		p.Viscosity = float64(act.State.Viscosity)
		p.GasConstant = float64(act.State.GasConstant)
		p.Restitution = float64(act.State.Restitution)
		if err := s.solver.SetParams(p); err != nil {
			slog.Error("rejected parameter change", "error", err)
		}
	}
}

// Respawn clears all particles and re-emits the startup block.
func (s *Sim) Respawn() {
	s.solver.Particles().Reset()
	emitted, err := s.emitter.Emit(s.solver)
	if err != nil {
		slog.Error("respawn failed", "error", err)
		return
	}
	slog.Info("respawned", "particles", emitted, "step", s.solver.StepCount())
}

// StepCount returns the number of completed solver steps.
func (s *Sim) StepCount() int64 {
	return s.solver.StepCount()
}

// Solver exposes the underlying solver for tools.
func (s *Sim) Solver() *fluid.Solver {
	return s.solver
}

// Paused reports whether the simulation is paused.
func (s *Sim) Paused() bool {
	return s.paused
}

// Unload closes outputs and releases solver resources.
func (s *Sim) Unload() {
	if err := s.outputManager.Close(); err != nil {
		slog.Error("failed to close output manager", "error", err)
	}
	s.solver.Close()
}
