// Package renderer draws the fluid state with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/calebhd03/SPH/fluid"
)

// Options configures the renderer.
type Options struct {
	ParticleRadius float32
	Mode           ColorMode
	GradientSteps  int
	ShowBounds     bool
	ShowGrid       bool
}

// Renderer draws particles as shaded spheres inside the domain box.
// All draw methods must run between BeginMode3D and EndMode3D.
type Renderer struct {
	palette []rl.Color
	opts    Options

	// Decaying per-mode peaks so the color ramp tracks the live range
	// of the field without flickering frame to frame.
	peak [numColorModes]float64
}

// New creates a renderer with a fixed color lookup table.
func New(opts Options) *Renderer {
	if opts.ParticleRadius <= 0 {
		opts.ParticleRadius = 0.05
	}
	return &Renderer{
		palette: buildPalette(opts.GradientSteps),
		opts:    opts,
	}
}

// Mode returns the active color mode.
func (r *Renderer) Mode() ColorMode { return r.opts.Mode }

// SetMode switches the field driving the color ramp.
func (r *Renderer) SetMode(m ColorMode) {
	if m >= 0 && m < numColorModes {
		r.opts.Mode = m
	}
}

// CycleMode advances to the next color mode.
func (r *Renderer) CycleMode() {
	r.opts.Mode = r.opts.Mode.Next()
}

// DrawWorld renders the domain box, the floor grid, and every particle.
func (r *Renderer) DrawWorld(s *fluid.Solver) {
	p := s.Params()
	if r.opts.ShowGrid {
		r.drawFloorGrid(p)
	}
	if r.opts.ShowBounds {
		r.drawBounds(p)
	}
	r.drawParticles(s)
}

// drawBounds outlines the simulation domain.
func (r *Renderer) drawBounds(p fluid.Params) {
	center := r3.Scale(0.5, r3.Add(p.BoundsMin, p.BoundsMax))
	size := r3.Sub(p.BoundsMax, p.BoundsMin)
	rl.DrawCubeWiresV(vec3(center), vec3(size), rl.Gray)
}

// drawFloorGrid draws the partition cell boundaries on the domain floor.
func (r *Renderer) drawFloorGrid(p fluid.Params) {
	cell := p.CellSize()
	y := p.BoundsMin.Y
	col := rl.Color{R: 60, G: 70, B: 80, A: 255}

	for x := p.BoundsMin.X; x <= p.BoundsMax.X+1e-9; x += cell {
		a := rl.Vector3{X: float32(x), Y: float32(y), Z: float32(p.BoundsMin.Z)}
		b := rl.Vector3{X: float32(x), Y: float32(y), Z: float32(p.BoundsMax.Z)}
		rl.DrawLine3D(a, b, col)
	}
	for z := p.BoundsMin.Z; z <= p.BoundsMax.Z+1e-9; z += cell {
		a := rl.Vector3{X: float32(p.BoundsMin.X), Y: float32(y), Z: float32(z)}
		b := rl.Vector3{X: float32(p.BoundsMax.X), Y: float32(y), Z: float32(z)}
		rl.DrawLine3D(a, b, col)
	}
}

// drawParticles renders the particle store, colored by the active mode.
func (r *Renderer) drawParticles(s *fluid.Solver) {
	ps := s.Particles()
	mode := r.opts.Mode

	// Peaks decay a little every frame so the ramp re-stretches after
	// the field settles down.
	r.peak[mode] *= 0.995

	for i := 0; i < ps.N(); i++ {
		v := r.fieldValue(ps, i, mode)
		if v > r.peak[mode] {
			r.peak[mode] = v
		}
	}

	scale := r.peak[mode]
	for i := 0; i < ps.N(); i++ {
		t := 0.0
		if scale > 0 {
			t = r.fieldValue(ps, i, mode) / scale
		}
		rl.DrawSphereEx(vec3(ps.Pos[i]), r.opts.ParticleRadius, 8, 8, shade(r.palette, t))
	}
}

func (r *Renderer) fieldValue(ps *fluid.Particles, i int, mode ColorMode) float64 {
	switch mode {
	case ColorByDensity:
		return ps.Density[i]
	case ColorByPressure:
		return ps.Pressure[i]
	}
	return math.Sqrt(r3.Norm2(ps.Vel[i]))
}

func vec3(v r3.Vec) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
