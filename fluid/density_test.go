package fluid

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func newTestSolver(t *testing.T, p Params, capacity int) *Solver {
	s, err := New(p, capacity)
	if err != nil {
		t.Fatalf("unexpected solver error: %v", err)
	}
	return s
}

// poly6At recomputes the poly6 kernel from the formula, independent of
// the precomputed tables.
func poly6At(h, r2 float64) float64 {
	if r2 >= h*h {
		return 0
	}
	return 315.0 / (64.0 * math.Pi * math.Pow(h, 9)) * math.Pow(h*h-r2, 3)
}

func relClose(a, b, tol float64) bool {
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale < 1 {
		return diff <= tol
	}
	return diff <= tol*scale
}

func TestSolver_DensityLoneParticle(t *testing.T) {
	p := DefaultParams()
	s := newTestSolver(t, p, 4)
	defer s.Close()
	s.Add(r3.Vec{X: 2, Y: 2, Z: 2}, r3.Vec{})

	s.BuildGrid()
	s.ComputeDensities()

	want := p.ParticleMass * poly6At(p.SmoothingRadius, 0)
	got := s.Particles().Density[0]
	if !relClose(got, want, 1e-9) {
		t.Errorf("expected self density %g, got %g", want, got)
	}
	// Below rest density the clipped state equation gives zero pressure.
	if press := s.Particles().Pressure[0]; press != 0 {
		t.Errorf("expected zero pressure below rest density, got %g", press)
	}
}

func TestSolver_DensityFloorApplied(t *testing.T) {
	p := DefaultParams()
	p.ParticleMass = 0.01
	s := newTestSolver(t, p, 4)
	defer s.Close()
	s.Add(r3.Vec{X: 2, Y: 2, Z: 2}, r3.Vec{})

	s.BuildGrid()
	s.ComputeDensities()

	floor := densityFloorFactor * p.RestDensity
	if got := s.Particles().Density[0]; got != floor {
		t.Errorf("expected floored density %g, got %g", floor, got)
	}
	if press := s.Particles().Pressure[0]; press != 0 {
		t.Errorf("expected zero pressure at the floor, got %g", press)
	}
}

func TestSolver_DensityPairAtSupportRadius(t *testing.T) {
	p := DefaultParams()
	s := newTestSolver(t, p, 4)
	defer s.Close()
	s.Add(r3.Vec{X: 2, Y: 2, Z: 2}, r3.Vec{})
	s.Add(r3.Vec{X: 2 + p.SmoothingRadius, Y: 2, Z: 2}, r3.Vec{})

	s.BuildGrid()
	s.ComputeDensities()

	// At exactly the support radius the pair does not interact; both
	// particles keep their self density.
	want := p.ParticleMass * poly6At(p.SmoothingRadius, 0)
	ps := s.Particles()
	for i := 0; i < 2; i++ {
		if !relClose(ps.Density[i], want, 1e-9) {
			t.Errorf("expected self density %g for particle %d, got %g", want, i, ps.Density[i])
		}
	}
}

func TestSolver_DensityPairOverlap(t *testing.T) {
	p := DefaultParams()
	h := p.SmoothingRadius
	s := newTestSolver(t, p, 4)
	defer s.Close()
	s.Add(r3.Vec{X: 2, Y: 2, Z: 2}, r3.Vec{})
	s.Add(r3.Vec{X: 2 + h/2, Y: 2, Z: 2}, r3.Vec{})

	s.BuildGrid()
	s.ComputeDensities()

	want := p.ParticleMass * (poly6At(h, 0) + poly6At(h, h*h/4))
	ps := s.Particles()
	if !relClose(ps.Density[0], want, 1e-9) {
		t.Errorf("expected pair density %g, got %g", want, ps.Density[0])
	}
	if ps.Density[0] != ps.Density[1] {
		t.Errorf("expected symmetric densities, got %g and %g", ps.Density[0], ps.Density[1])
	}
}

func TestSolver_DensePressurePositive(t *testing.T) {
	p := DefaultParams()
	s := newTestSolver(t, p, 256)
	defer s.Close()

	// Pack a tight block, far denser than rest.
	for ix := 0; ix < 5; ix++ {
		for iy := 0; iy < 5; iy++ {
			for iz := 0; iz < 5; iz++ {
				s.Add(r3.Vec{
					X: 2 + 0.04*float64(ix),
					Y: 2 + 0.04*float64(iy),
					Z: 2 + 0.04*float64(iz),
				}, r3.Vec{})
			}
		}
	}

	s.BuildGrid()
	s.ComputeDensities()

	ps := s.Particles()
	most := 0.0
	for i := 0; i < ps.N(); i++ {
		if ps.Pressure[i] < 0 {
			t.Fatalf("expected non-negative pressure, got %g for particle %d", ps.Pressure[i], i)
		}
		if ps.Pressure[i] > most {
			most = ps.Pressure[i]
		}
	}
	if most == 0 {
		t.Error("expected positive pressure somewhere in a compressed block")
	}
}

func TestSolver_DensityBruteForceMatchesGrid(t *testing.T) {
	base := DefaultParams()
	rng := rand.New(rand.NewSource(13))
	pos := randomPositions(rng, base, 200)

	grid := newTestSolver(t, base, len(pos))
	defer grid.Close()
	brute := newTestSolver(t, withBruteForce(base), len(pos))
	defer brute.Close()
	for _, q := range pos {
		grid.Add(q, r3.Vec{})
		brute.Add(q, r3.Vec{})
	}

	grid.BuildGrid()
	grid.ComputeDensities()
	brute.BuildGrid()
	brute.ComputeDensities()

	for i := 0; i < len(pos); i++ {
		a := grid.Particles().Density[i]
		b := brute.Particles().Density[i]
		if !relClose(a, b, 1e-9) {
			t.Fatalf("expected matching densities for particle %d, got %g and %g", i, a, b)
		}
		pa := grid.Particles().Pressure[i]
		pb := brute.Particles().Pressure[i]
		if !relClose(pa, pb, 1e-9) {
			t.Fatalf("expected matching pressures for particle %d, got %g and %g", i, pa, pb)
		}
	}
}

func withBruteForce(p Params) Params {
	p.BruteForceNeighbors = true
	return p
}
