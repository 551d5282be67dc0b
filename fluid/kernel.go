package fluid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kernels evaluates the poly6, spiky, and viscosity smoothing kernels for
// a fixed support radius. Coefficients are precomputed once from h.
type Kernels struct {
	h  float64
	h2 float64

	poly6Coeff float64 // 315 / (64 pi h^9)
	spikyCoeff float64 // -45 / (pi h^6)
	viscCoeff  float64 // 45 / (pi h^6)
}

// NewKernels precomputes kernel coefficients for support radius h.
func NewKernels(h float64) Kernels {
	h3 := h * h * h
	h6 := h3 * h3
	h9 := h6 * h3
	return Kernels{
		h:          h,
		h2:         h * h,
		poly6Coeff: 315.0 / (64.0 * math.Pi * h9),
		spikyCoeff: -45.0 / (math.Pi * h6),
		viscCoeff:  45.0 / (math.Pi * h6),
	}
}

// Poly6 evaluates the density kernel for a squared distance. Zero at and
// beyond the support radius.
func (k Kernels) Poly6(r2 float64) float64 {
	if r2 >= k.h2 {
		return 0
	}
	d := k.h2 - r2
	return k.poly6Coeff * d * d * d
}

// SpikyGrad evaluates the pressure kernel gradient along rij, the vector
// from particle j to particle i, with r = |rij|. The result points from i
// toward j; pair terms scale it by a negative pressure factor so positive
// pressure repels.
func (k Kernels) SpikyGrad(rij r3.Vec, r float64) r3.Vec {
	if r <= 0 || r >= k.h {
		return r3.Vec{}
	}
	d := k.h - r
	return r3.Scale(k.spikyCoeff*d*d/r, rij)
}

// ViscLap evaluates the viscosity kernel Laplacian at distance r.
func (k Kernels) ViscLap(r float64) float64 {
	if r >= k.h {
		return 0
	}
	return k.viscCoeff * (k.h - r)
}

// SupportRadius returns h.
func (k Kernels) SupportRadius() float64 { return k.h }
