package fluid

import (
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"
)

// Integrate runs the semi-implicit Euler stage: accelerate, damp, move,
// collide with the bounds, and repair non-finite state. Forces must be
// current.
func (s *Solver) Integrate() {
	s.pool.run(s.particles.N(), s.integrateChunk)
}

func (s *Solver) integrateChunk(worker, start, end int) {
	ps := s.particles
	p := s.params
	safe := p.SafeDefault()

	var resets, bounces int64
	for i := start; i < end; i++ {
		pos := ps.Pos[i]
		vel := ps.Vel[i]

		// A corrupt position is parked at the safe default and sits the
		// step out; it rejoins the simulation next step. A corrupt
		// velocity alone is zeroed in place, keeping the position.
		if !finiteVec(pos) {
			ps.Pos[i] = safe
			ps.Vel[i] = r3.Vec{}
			resets++
			continue
		}
		if !finiteVec(vel) {
			vel = r3.Vec{}
			resets++
		}

		acc := r3.Scale(1/ps.Density[i], ps.Force[i])
		vel = r3.Add(vel, r3.Scale(p.DT, acc))
		vel = r3.Scale(p.Damping, vel)
		pos = r3.Add(pos, r3.Scale(p.DT, vel))

		if pos.X < p.BoundsMin.X {
			pos.X = p.BoundsMin.X
			vel.X *= -p.Restitution
			bounces++
		} else if pos.X > p.BoundsMax.X {
			pos.X = p.BoundsMax.X
			vel.X *= -p.Restitution
			bounces++
		}
		if pos.Y < p.BoundsMin.Y {
			pos.Y = p.BoundsMin.Y
			vel.Y *= -p.Restitution
			bounces++
		} else if pos.Y > p.BoundsMax.Y {
			pos.Y = p.BoundsMax.Y
			vel.Y *= -p.Restitution
			bounces++
		}
		if pos.Z < p.BoundsMin.Z {
			pos.Z = p.BoundsMin.Z
			vel.Z *= -p.Restitution
			bounces++
		} else if pos.Z > p.BoundsMax.Z {
			pos.Z = p.BoundsMax.Z
			vel.Z *= -p.Restitution
			bounces++
		}

		// Pathological forces can still blow up within one step.
		if !finiteVec(pos) {
			pos = safe
			vel = r3.Vec{}
			resets++
		} else if !finiteVec(vel) {
			vel = r3.Vec{}
			resets++
		}

		ps.Pos[i] = pos
		ps.Vel[i] = vel
	}

	if resets > 0 {
		atomic.AddInt64(&s.resets, resets)
	}
	if bounces > 0 {
		atomic.AddInt64(&s.bounces, bounces)
	}
}
