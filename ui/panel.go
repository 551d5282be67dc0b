// Package ui draws the control panel and HUD for the viewer.
package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Panel styling.
var (
	panelBg     = rl.Color{R: 20, G: 25, B: 30, A: 240}
	panelBorder = rl.Color{R: 60, G: 70, B: 80, A: 255}
	labelColor  = rl.Gray
	valueColor  = rl.LightGray
	headerColor = rl.RayWhite
)

// PanelState mirrors the adjustable simulation values. Draw reads the
// current values and returns the (possibly edited) copy in the actions.
type PanelState struct {
	Paused      bool
	Gravity     float32 // vertical component
	Viscosity   float32
	GasConstant float32
	Restitution float32
	ColorMode   string
}

// PanelActions reports what the user changed during a Draw.
type PanelActions struct {
	State          PanelState
	ParamsChanged  bool
	TogglePause    bool
	Respawn        bool
	CycleColorMode bool
}

// panelHeight is the drawn panel body height, including both margins.
const panelHeight = 330

// Panel draws the parameter controls with raygui. Widgets are immediate
// mode: each Draw both renders and handles input for one frame.
type Panel struct {
	X, Y, Width float32
	Visible     bool
}

// NewPanel anchors the panel to the top-right corner of the screen.
func NewPanel(screenW int32) *Panel {
	w := float32(250)
	return &Panel{
		X:       float32(screenW) - w - 20,
		Y:       20,
		Width:   w,
		Visible: true,
	}
}

// Toggle flips panel visibility.
func (p *Panel) Toggle() {
	p.Visible = !p.Visible
}

// Contains reports whether the point lies inside the drawn panel
// rectangle. Input handlers use it to keep clicks on the panel from
// reaching the world underneath; a hidden panel contains nothing.
func (p *Panel) Contains(x, y float32) bool {
	if !p.Visible {
		return false
	}
	return x >= p.X-10 && x <= p.X+p.Width+10 &&
		y >= p.Y-10 && y <= p.Y-10+panelHeight
}

// Draw renders the panel and returns the edits made this frame.
func (p *Panel) Draw(st PanelState) PanelActions {
	act := PanelActions{State: st}
	if !p.Visible {
		return act
	}

	x := p.X
	y := p.Y
	w := p.Width

	rl.DrawRectangle(int32(x-10), int32(y-10), int32(w+20), panelHeight, panelBg)
	rl.DrawRectangleLines(int32(x-10), int32(y-10), int32(w+20), panelHeight, panelBorder)

	rl.DrawText("Fluid Controls", int32(x), int32(y), 18, headerColor)
	y += 30

	newGravity := p.slider(&y, x, w, "Gravity Y", "-20", "0", st.Gravity, -20, 0, "%.1f")
	if newGravity != st.Gravity {
		act.State.Gravity = newGravity
		act.ParamsChanged = true
	}

	newViscosity := p.slider(&y, x, w, "Viscosity", "0", "5", st.Viscosity, 0, 5, "%.2f")
	if newViscosity != st.Viscosity {
		act.State.Viscosity = newViscosity
		act.ParamsChanged = true
	}

	newStiffness := p.slider(&y, x, w, "Gas constant", "0", "8000", st.GasConstant, 0, 8000, "%.0f")
	if newStiffness != st.GasConstant {
		act.State.GasConstant = newStiffness
		act.ParamsChanged = true
	}

	newRestitution := p.slider(&y, x, w, "Restitution", "0", "1", st.Restitution, 0, 1, "%.2f")
	if newRestitution != st.Restitution {
		act.State.Restitution = newRestitution
		act.ParamsChanged = true
	}

	y += 10
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 115, Height: 30}, toggleText(st.Paused, "Resume", "Pause")) {
		act.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + 125, Y: y, Width: 115, Height: 30}, "Respawn") {
		act.Respawn = true
	}
	y += 40

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 240, Height: 30}, "Color: "+st.ColorMode) {
		act.CycleColorMode = true
	}

	return act
}

// slider draws one labeled SliderBar row and advances the y cursor.
func (p *Panel) slider(y *float32, x, w float32, label, lo, hi string, value, min, max float32, format string) float32 {
	rl.DrawText(label, int32(x), int32(*y), 13, labelColor)
	*y += 17
	got := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: w - 55, Height: 18},
		lo, hi,
		value, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, got), int32(x+w-48), int32(*y+2), 14, valueColor)
	*y += 30
	return got
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
