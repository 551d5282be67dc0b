package fluid

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestParticles_AddAssignsSequentialIndices(t *testing.T) {
	ps := NewParticles(4)
	for want := 0; want < 4; want++ {
		got, err := ps.Add(r3.Vec{X: float64(want)}, r3.Vec{})
		if err != nil {
			t.Fatalf("unexpected error adding particle %d: %v", want, err)
		}
		if got != want {
			t.Errorf("expected index %d, got %d", want, got)
		}
	}
	if ps.N() != 4 {
		t.Errorf("expected 4 particles, got %d", ps.N())
	}
	if ps.Pos[2].X != 2 {
		t.Errorf("expected position 2 at index 2, got %g", ps.Pos[2].X)
	}
}

func TestParticles_AddFailsAtCapacity(t *testing.T) {
	ps := NewParticles(2)
	ps.Add(r3.Vec{}, r3.Vec{})
	ps.Add(r3.Vec{}, r3.Vec{})

	idx, err := ps.Add(r3.Vec{X: 1}, r3.Vec{})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if idx != -1 {
		t.Errorf("expected index -1 on failure, got %d", idx)
	}
	if ps.N() != 2 {
		t.Errorf("expected the store unchanged at 2 particles, got %d", ps.N())
	}
}

func TestParticles_SlicesStayAligned(t *testing.T) {
	ps := NewParticles(8)
	ps.Add(r3.Vec{X: 1}, r3.Vec{Y: 2})
	ps.Add(r3.Vec{X: 3}, r3.Vec{Y: 4})

	n := ps.N()
	if len(ps.Vel) != n || len(ps.Force) != n || len(ps.Density) != n || len(ps.Pressure) != n {
		t.Errorf("expected all arrays at length %d, got vel %d force %d density %d pressure %d",
			n, len(ps.Vel), len(ps.Force), len(ps.Density), len(ps.Pressure))
	}
	if ps.Vel[1].Y != 4 {
		t.Errorf("expected velocity 4 at index 1, got %g", ps.Vel[1].Y)
	}
}

func TestParticles_ResetKeepsCapacity(t *testing.T) {
	ps := NewParticles(3)
	ps.Add(r3.Vec{}, r3.Vec{})
	ps.Add(r3.Vec{}, r3.Vec{})
	ps.Reset()

	if ps.N() != 0 {
		t.Errorf("expected an empty store after reset, got %d", ps.N())
	}
	if ps.Cap() != 3 {
		t.Errorf("expected capacity 3 after reset, got %d", ps.Cap())
	}
	if _, err := ps.Add(r3.Vec{}, r3.Vec{}); err != nil {
		t.Errorf("unexpected error adding after reset: %v", err)
	}
}
