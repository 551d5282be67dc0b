package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Step           int64
	Particles      int
	Capacity       int
	StepsPerUpdate int
	FPS            int32
	Paused         bool

	KineticEnergy float64
	MaxSpeed      float64
	DensityMean   float64
	Bounces       int64
	Resets        int64
}

// HUD renders the main heads-up display.
type HUD struct{}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d / %d | Step: %d", data.Particles, data.Capacity, data.Step),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("KE: %.1f | max speed: %.2f | mean density: %.0f", data.KineticEnergy, data.MaxSpeed, data.DensityMean),
		10, 55, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Speed: %dx | FPS: %d | bounces: %d | resets: %d", data.StepsPerUpdate, data.FPS, data.Bounces, data.Resets),
		10, 75, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 95, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PhaseTime is one row of the performance panel.
type PhaseTime struct {
	Name string
	Pct  float64
}

// PerfPanelData holds step timing metrics for display.
type PerfPanelData struct {
	AvgStep        time.Duration
	StepsPerSecond float64
	Phases         []PhaseTime
}

// PerfPanel renders the step timing panel.
type PerfPanel struct {
	x, y int32
}

// NewPerfPanel creates a performance panel at the given position.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{x: x, y: y}
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data PerfPanelData) {
	x := p.x
	y := p.y

	rl.DrawText("Step Timing", x, y, 16, rl.White)
	y += 20

	rl.DrawText(
		fmt.Sprintf("avg %s | %.0f steps/s", data.AvgStep.Round(time.Microsecond), data.StepsPerSecond),
		x, y, 14, rl.Yellow,
	)
	y += 18

	for _, ph := range data.Phases {
		color := rl.LightGray
		if ph.Pct > 40 {
			color = rl.Red
		} else if ph.Pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(fmt.Sprintf("%-10s %5.1f%%", ph.Name, ph.Pct), x, y, 14, color)
		y += 16
	}
}
