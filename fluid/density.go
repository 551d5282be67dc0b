package fluid

// densityFloorFactor, times the rest density, is the minimum density ever
// written. The floor keeps downstream divisions by density bounded.
const densityFloorFactor = 0.1

// ComputeDensities runs the density and pressure stage over all
// particles. The spatial partition must be current unless brute-force
// neighbor mode is on.
func (s *Solver) ComputeDensities() {
	s.pool.run(s.particles.N(), s.densityChunk)
}

func (s *Solver) densityChunk(worker, start, end int) {
	ps := s.particles
	p := s.params
	k := s.kernels
	floor := densityFloorFactor * p.RestDensity
	selfDensity := p.ParticleMass * k.Poly6(0)

	scratch := &s.scratch[worker]
	for i := start; i < end; i++ {
		scratch.neighbors = s.neighborsInto(scratch.neighbors[:0], i)

		rho := selfDensity
		for _, nb := range scratch.neighbors {
			rho += p.ParticleMass * k.Poly6(nb.DistSq)
		}
		if rho < floor {
			rho = floor
		}
		ps.Density[i] = rho

		// Clipped equation of state: no tensile pressure.
		press := p.GasConstant * (rho - p.RestDensity)
		if press < 0 {
			press = 0
		}
		ps.Pressure[i] = press
	}
}

// neighborsInto fills dst with particle i's candidates inside the support
// radius, through bucket ranges or the brute-force scan.
func (s *Solver) neighborsInto(dst []Neighbor, i int) []Neighbor {
	pos := s.particles.Pos
	if s.params.BruteForceNeighbors {
		return ScanRadiusInto(dst, pos, pos[i], s.params.SmoothingRadius, i)
	}
	return s.grid.QueryRadiusInto(dst, pos, pos[i], s.params.SmoothingRadius, i)
}
