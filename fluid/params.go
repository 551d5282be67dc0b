package fluid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Addressing selects how grid cells map to bucket ids.
type Addressing int

const (
	// AddressDense numbers buckets linearly as cx + cy*dimsX + cz*dimsX*dimsY.
	// Collision-free; the table covers every cell of the bounded domain.
	AddressDense Addressing = iota

	// AddressHashed folds cells into a fixed-size table with a prime-XOR
	// spatial hash. Distinct cells may share a bucket; candidates are
	// distance-filtered, so collisions cost time but never correctness.
	AddressHashed
)

func (a Addressing) String() string {
	switch a {
	case AddressDense:
		return "dense"
	case AddressHashed:
		return "hashed"
	}
	return fmt.Sprintf("Addressing(%d)", int(a))
}

// ParseAddressing maps a config string to an Addressing value.
func ParseAddressing(s string) (Addressing, error) {
	switch s {
	case "dense", "":
		return AddressDense, nil
	case "hashed":
		return AddressHashed, nil
	}
	return 0, fmt.Errorf("%w: addressing %q (want dense or hashed)", ErrInvalidParams, s)
}

// Params holds every tunable of the solver. The zero value is not usable;
// start from DefaultParams.
type Params struct {
	// SmoothingRadius is the kernel support radius h. It is also the grid
	// cell size, so all kernel-relevant neighbors of a particle lie in the
	// 27-cell block around its own cell.
	SmoothingRadius float64

	RestDensity  float64
	GasConstant  float64
	Viscosity    float64
	ParticleMass float64

	Gravity r3.Vec
	DT      float64

	// Damping scales velocity once per step, after acceleration is applied
	// and before the position update.
	Damping float64

	// Restitution scales the reflected velocity component on boundary hits.
	Restitution float64

	BoundsMin r3.Vec
	BoundsMax r3.Vec

	Addressing Addressing

	// WrapNeighbors wraps neighbor cell lookups around the grid edges
	// instead of skipping cells outside it.
	WrapNeighbors bool

	// BruteForceNeighbors bypasses the grid and scans every particle as a
	// neighbor candidate. Correctness fallback; O(N^2).
	BruteForceNeighbors bool

	// CountOccupancy maintains per-bucket particle counters during the
	// grid build, using atomic increments.
	CountOccupancy bool

	// Workers is the worker pool size. 0 means GOMAXPROCS. Fixed at
	// solver construction.
	Workers int
}

// DefaultParams returns a water-like parameter set for a small interactive
// box: rest lattice spacing 0.1 (half the smoothing radius) in a 4x4x4
// domain.
func DefaultParams() Params {
	return Params{
		SmoothingRadius: 0.2,
		RestDensity:     1000,
		GasConstant:     2000,
		Viscosity:       0.5,
		ParticleMass:    1.0,
		Gravity:         r3.Vec{Y: -9.81},
		DT:              0.001,
		Damping:         0.98,
		Restitution:     0.5,
		BoundsMin:       r3.Vec{},
		BoundsMax:       r3.Vec{X: 4, Y: 4, Z: 4},
	}
}

// Validate reports the first invalid parameter, wrapping ErrInvalidParams.
// It never mutates anything, so callers can check before committing.
func (p Params) Validate() error {
	if p.SmoothingRadius <= 0 || !isFinite(p.SmoothingRadius) {
		return fmt.Errorf("%w: smoothing_radius %v (must be positive and finite)", ErrInvalidParams, p.SmoothingRadius)
	}
	if p.RestDensity <= 0 || !isFinite(p.RestDensity) {
		return fmt.Errorf("%w: rest_density %v (must be positive and finite)", ErrInvalidParams, p.RestDensity)
	}
	if p.ParticleMass <= 0 || !isFinite(p.ParticleMass) {
		return fmt.Errorf("%w: particle_mass %v (must be positive and finite)", ErrInvalidParams, p.ParticleMass)
	}
	if p.DT <= 0 || !isFinite(p.DT) {
		return fmt.Errorf("%w: dt %v (must be positive and finite)", ErrInvalidParams, p.DT)
	}
	if p.GasConstant < 0 || !isFinite(p.GasConstant) {
		return fmt.Errorf("%w: gas_constant %v (must be non-negative and finite)", ErrInvalidParams, p.GasConstant)
	}
	if p.Viscosity < 0 || !isFinite(p.Viscosity) {
		return fmt.Errorf("%w: viscosity %v (must be non-negative and finite)", ErrInvalidParams, p.Viscosity)
	}
	if p.Damping < 0 || p.Damping > 1 || !isFinite(p.Damping) {
		return fmt.Errorf("%w: damping %v (must be in [0, 1])", ErrInvalidParams, p.Damping)
	}
	if p.Restitution < 0 || p.Restitution > 1 || !isFinite(p.Restitution) {
		return fmt.Errorf("%w: restitution %v (must be in [0, 1])", ErrInvalidParams, p.Restitution)
	}
	if !finiteVec(p.Gravity) {
		return fmt.Errorf("%w: gravity %v (must be finite)", ErrInvalidParams, p.Gravity)
	}
	if !finiteVec(p.BoundsMin) || !finiteVec(p.BoundsMax) {
		return fmt.Errorf("%w: bounds [%v, %v] (must be finite)", ErrInvalidParams, p.BoundsMin, p.BoundsMax)
	}
	if p.BoundsMax.X <= p.BoundsMin.X || p.BoundsMax.Y <= p.BoundsMin.Y || p.BoundsMax.Z <= p.BoundsMin.Z {
		return fmt.Errorf("%w: bounds [%v, %v] (max must exceed min on every axis)", ErrInvalidParams, p.BoundsMin, p.BoundsMax)
	}
	if p.Workers < 0 {
		return fmt.Errorf("%w: workers %d (must be non-negative)", ErrInvalidParams, p.Workers)
	}
	if p.Addressing != AddressDense && p.Addressing != AddressHashed {
		return fmt.Errorf("%w: addressing %d (want dense or hashed)", ErrInvalidParams, int(p.Addressing))
	}
	return nil
}

// CellSize returns the grid cell edge length, one smoothing radius.
func (p Params) CellSize() float64 { return p.SmoothingRadius }

// GridDims returns the cell counts per axis covering the bounds. Every
// axis has at least one cell.
func (p Params) GridDims() [3]int {
	span := r3.Sub(p.BoundsMax, p.BoundsMin)
	return [3]int{
		axisCellCount(span.X, p.SmoothingRadius),
		axisCellCount(span.Y, p.SmoothingRadius),
		axisCellCount(span.Z, p.SmoothingRadius),
	}
}

func axisCellCount(span, cellSize float64) int {
	n := int(math.Ceil(span / cellSize))
	if n < 1 {
		n = 1
	}
	return n
}

// SafeDefault is where the integrator parks particles whose state went
// non-finite: the center of the bounds.
func (p Params) SafeDefault() r3.Vec {
	return r3.Scale(0.5, r3.Add(p.BoundsMin, p.BoundsMax))
}

// Spacing returns the rest lattice spacing implied by mass and rest
// density, cbrt(mass / restDensity).
func (p Params) Spacing() float64 {
	return math.Cbrt(p.ParticleMass / p.RestDensity)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteVec(v r3.Vec) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}
