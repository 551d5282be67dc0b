package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/calebhd03/SPH/config"
)

func TestOutputManager_NilIsDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if om != nil {
		t.Fatal("expected a nil manager for an empty directory")
	}

	// Every method must be a safe no-op on the nil manager.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("unexpected telemetry error: %v", err)
	}
	if err := om.WritePerf(PerfStats{}, 0); err != nil {
		t.Errorf("unexpected perf error: %v", err)
	}
	if err := om.WriteConfig(nil); err != nil {
		t.Errorf("unexpected config error: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("expected empty dir, got %q", om.Dir())
	}
	if err := om.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
}

func TestOutputManager_WritesTelemetryCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run1")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if om == nil {
		t.Fatal("expected a live manager")
	}
	if om.Dir() != dir {
		t.Errorf("expected dir %q, got %q", dir, om.Dir())
	}

	first := WindowStats{WindowEndStep: 100, Particles: 64, DensityMean: 987.5}
	second := WindowStats{WindowEndStep: 200, Particles: 64, DensityMean: 991.2}
	if err := om.WriteTelemetry(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := om.WriteTelemetry(second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "window_end") || !strings.Contains(lines[0], "density_mean") {
		t.Errorf("header missing expected columns: %q", lines[0])
	}
	if strings.Contains(lines[1], "window_end") {
		t.Error("second write repeated the header")
	}
	if !strings.Contains(lines[2], "200") {
		t.Errorf("expected second row to carry step 200: %q", lines[2])
	}
}

func TestOutputManager_WritesPerfCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer om.Close()

	stats := PerfStats{
		AvgStepDuration: 2 * time.Millisecond,
		StepsPerSecond:  500,
		PhasePct: map[string]float64{
			PhaseGrid:      20,
			PhaseDensity:   30,
			PhaseForces:    35,
			PhaseIntegrate: 10,
			PhaseTelemetry: 5,
		},
	}
	if err := om.WritePerf(stats, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := om.WritePerf(stats, 200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	om.Close()

	data, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatalf("reading perf.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "avg_step_us") {
		t.Errorf("header missing expected columns: %q", lines[0])
	}
}

func TestOutputManager_WriteConfig(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer om.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("reading config.yaml: %v", err)
	}
	if !strings.Contains(string(data), "rest_density") {
		t.Error("expected the saved config to carry fluid parameters")
	}
}
