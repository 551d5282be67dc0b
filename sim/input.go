package sim

import rl "github.com/gen2brain/raylib-go/raylib"

// Mouse orbit sensitivity in radians per pixel.
const orbitSpeed = 0.005

// handleInput processes keyboard input.
func (s *Sim) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		s.paused = !s.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && s.stepsPerUpdate > 1 {
		s.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && s.stepsPerUpdate < 10 {
		s.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyR) {
		s.Respawn()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		s.view.CycleMode()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		s.panel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		s.showPerf = !s.showPerf
	}

	s.handleCameraInput()
}

// handleCameraInput processes camera orbit/zoom/pan controls.
func (s *Sim) handleCameraInput() {
	// Mouse drag orbits, unless the drag started over the control panel
	mouse := rl.GetMousePosition()
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) && !s.panel.Contains(mouse.X, mouse.Y) {
		delta := rl.GetMouseDelta()
		s.cam.Orbit(-float64(delta.X)*orbitSpeed, float64(delta.Y)*orbitSpeed)
	}

	// Mouse wheel dollies toward/away from the target
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		s.cam.Dolly(1.0 - float64(wheel)*0.1)
	}

	// Arrow key panning scales with distance for a constant screen rate
	panSpeed := s.cam.Distance * 0.02
	if rl.IsKeyDown(rl.KeyRight) {
		s.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		s.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		s.cam.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		s.cam.Pan(0, -panSpeed)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		s.cam.Reset()
	}
}
