package fluid

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Particles is the structure-of-arrays particle store. A particle's
// identity is its index: every slice holds the value for particle i at
// position i, and indices stay stable for the life of the store.
type Particles struct {
	Pos      []r3.Vec
	Vel      []r3.Vec
	Force    []r3.Vec
	Density  []float64
	Pressure []float64

	capacity int
}

// NewParticles allocates an empty store with a fixed capacity. No slice
// ever reallocates, so pointers into the arrays stay valid.
func NewParticles(capacity int) *Particles {
	return &Particles{
		Pos:      make([]r3.Vec, 0, capacity),
		Vel:      make([]r3.Vec, 0, capacity),
		Force:    make([]r3.Vec, 0, capacity),
		Density:  make([]float64, 0, capacity),
		Pressure: make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// N returns the live particle count.
func (p *Particles) N() int { return len(p.Pos) }

// Cap returns the fixed capacity.
func (p *Particles) Cap() int { return p.capacity }

// Add appends a particle and returns its index. A full store fails with
// ErrCapacityExceeded before mutating anything.
func (p *Particles) Add(pos, vel r3.Vec) (int, error) {
	if len(p.Pos) >= p.capacity {
		return -1, fmt.Errorf("adding particle %d of %d: %w", len(p.Pos)+1, p.capacity, ErrCapacityExceeded)
	}
	p.Pos = append(p.Pos, pos)
	p.Vel = append(p.Vel, vel)
	p.Force = append(p.Force, r3.Vec{})
	p.Density = append(p.Density, 0)
	p.Pressure = append(p.Pressure, 0)
	return len(p.Pos) - 1, nil
}

// Reset drops all particles, keeping capacity.
func (p *Particles) Reset() {
	p.Pos = p.Pos[:0]
	p.Vel = p.Vel[:0]
	p.Force = p.Force[:0]
	p.Density = p.Density[:0]
	p.Pressure = p.Pressure[:0]
}
