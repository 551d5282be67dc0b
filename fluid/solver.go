// Package fluid implements a smoothed-particle-hydrodynamics solver.
// Each step rebuilds a uniform-grid spatial partition, evaluates
// kernel-weighted densities and pressures, accumulates pairwise forces,
// and integrates with boundary collisions. Stages run one after another,
// each internally parallel on a shared worker pool.
package fluid

import (
	"fmt"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"
)

// Solver owns the particle store, the spatial grid, and the worker pool,
// and advances the simulation one fixed time step at a time. Methods are
// not safe for concurrent use; drive a solver from one goroutine.
type Solver struct {
	params    Params
	kernels   Kernels
	particles *Particles
	grid      *Grid
	pool      *workerPool
	scratch   []scratchBuf

	step    int64
	resets  int64
	bounces int64
}

// scratchBuf holds per-worker reusable buffers.
type scratchBuf struct {
	neighbors []Neighbor
}

// New builds a solver with a fixed particle capacity. Parameters are
// validated before anything is allocated.
func New(p Params, capacity int) (*Solver, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d (must be positive)", ErrInvalidParams, capacity)
	}

	pool := newWorkerPool(p.Workers)
	scratch := make([]scratchBuf, pool.numWorkers)
	for i := range scratch {
		scratch[i].neighbors = make([]Neighbor, 0, 64)
	}

	return &Solver{
		params:    p,
		kernels:   NewKernels(p.SmoothingRadius),
		particles: NewParticles(capacity),
		grid:      NewGrid(p, capacity),
		pool:      pool,
		scratch:   scratch,
	}, nil
}

// Step advances the simulation one tick: partition, densities, forces,
// integration. Each stage completes for every particle before the next
// starts. Validation runs first; on error no state is touched.
func (s *Solver) Step() error {
	return s.StepPhased(nil)
}

// StepPhased advances one tick like Step, reporting each stage name
// ("grid", "density", "forces", "integrate") to begin just before the
// stage runs. The telemetry layer uses the names to attribute time per
// stage; a nil begin skips reporting.
func (s *Solver) StepPhased(begin func(stage string)) error {
	if err := s.params.Validate(); err != nil {
		return fmt.Errorf("step %d: %w", s.step, err)
	}
	if begin == nil {
		begin = func(string) {}
	}
	begin("grid")
	s.BuildGrid()
	begin("density")
	s.ComputeDensities()
	begin("forces")
	s.ComputeForces()
	begin("integrate")
	s.Integrate()
	s.step++
	return nil
}

// BuildGrid rebuilds the spatial partition for the current positions.
func (s *Solver) BuildGrid() {
	s.grid.Build(s.particles.Pos, s.pool)
}

// Close stops the worker pool. The solver must not be used afterwards.
func (s *Solver) Close() {
	s.pool.stop()
}

// Add inserts a particle and returns its index. Fails with
// ErrCapacityExceeded once the store is full.
func (s *Solver) Add(pos, vel r3.Vec) (int, error) {
	return s.particles.Add(pos, vel)
}

// N returns the live particle count.
func (s *Solver) N() int { return s.particles.N() }

// Cap returns the particle capacity.
func (s *Solver) Cap() int { return s.particles.Cap() }

// StepCount returns how many steps have completed.
func (s *Solver) StepCount() int64 { return s.step }

// Params returns the active parameter set.
func (s *Solver) Params() Params { return s.params }

// SetParams swaps the active parameters. The kernel table follows the
// smoothing radius and the grid is rebuilt when its geometry or
// addressing changed. Workers is fixed at construction and ignored here.
// Invalid parameters are rejected and the old set stays active.
func (s *Solver) SetParams(p Params) error {
	p.Workers = s.params.Workers
	if err := p.Validate(); err != nil {
		return err
	}
	old := s.params
	s.params = p
	if p.SmoothingRadius != old.SmoothingRadius {
		s.kernels = NewKernels(p.SmoothingRadius)
	}
	if gridChanged(old, p) {
		s.grid = NewGrid(p, s.particles.Cap())
	}
	return nil
}

func gridChanged(a, b Params) bool {
	return a.SmoothingRadius != b.SmoothingRadius ||
		a.BoundsMin != b.BoundsMin ||
		a.BoundsMax != b.BoundsMax ||
		a.Addressing != b.Addressing ||
		a.WrapNeighbors != b.WrapNeighbors ||
		a.CountOccupancy != b.CountOccupancy
}

// Particles exposes the particle arrays. Read them between steps only;
// stages overwrite them in place.
func (s *Solver) Particles() *Particles { return s.particles }

// Grid exposes the spatial partition for diagnostics.
func (s *Solver) Grid() *Grid { return s.grid }

// KineticEnergy returns the total kinetic energy, 1/2 m sum |v|^2.
func (s *Solver) KineticEnergy() float64 {
	total := 0.0
	for _, v := range s.particles.Vel {
		total += r3.Norm2(v)
	}
	return 0.5 * s.params.ParticleMass * total
}

// MaxSpeed returns the largest particle speed.
func (s *Solver) MaxSpeed() float64 {
	most := 0.0
	for _, v := range s.particles.Vel {
		if n2 := r3.Norm2(v); n2 > most {
			most = n2
		}
	}
	return math.Sqrt(most)
}

// Resets returns the cumulative count of non-finite state repairs.
func (s *Solver) Resets() int64 { return atomic.LoadInt64(&s.resets) }

// Bounces returns the cumulative count of boundary collisions, one per
// clamped axis.
func (s *Solver) Bounces() int64 { return atomic.LoadInt64(&s.bounces) }
