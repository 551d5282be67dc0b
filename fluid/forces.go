package fluid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// pairEpsilon is the minimum pair distance for force terms. Closer pairs
// contribute nothing, so near-coincident particles cannot produce
// unbounded gradients.
const pairEpsilon = 1e-5

// ComputeForces runs the force accumulation stage: pairwise pressure and
// viscosity plus gravity. Densities and pressures must be current.
func (s *Solver) ComputeForces() {
	s.pool.run(s.particles.N(), s.forceChunk)
}

func (s *Solver) forceChunk(worker, start, end int) {
	ps := s.particles
	p := s.params
	k := s.kernels

	scratch := &s.scratch[worker]
	for i := start; i < end; i++ {
		scratch.neighbors = s.neighborsInto(scratch.neighbors[:0], i)

		// Gravity scales with density so the integrator's division by
		// density hands back plain g.
		force := r3.Scale(ps.Density[i], p.Gravity)

		for _, nb := range scratch.neighbors {
			r := math.Sqrt(nb.DistSq)
			if r <= pairEpsilon {
				continue
			}
			j := int(nb.Index)

			rij := r3.Sub(ps.Pos[i], ps.Pos[j])
			grad := k.SpikyGrad(rij, r)
			pressureTerm := -p.ParticleMass * (ps.Pressure[i] + ps.Pressure[j]) / (2 * ps.Density[j])
			force = r3.Add(force, r3.Scale(pressureTerm, grad))

			dv := r3.Sub(ps.Vel[j], ps.Vel[i])
			force = r3.Add(force, r3.Scale(p.Viscosity*p.ParticleMass*k.ViscLap(r)/ps.Density[j], dv))
		}
		ps.Force[i] = force
	}
}
