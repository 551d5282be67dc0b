package fluid

import (
	"math"
	"sort"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"
)

// HashTableSize is the bucket table size in hashed addressing mode.
const HashTableSize = 262144

// Prime multipliers for the XOR spatial hash.
const (
	hashPrimeX = 73856093
	hashPrimeY = 19349663
	hashPrimeZ = 83492791
)

// noBucket marks a bucket that received no particle in the last build.
const noBucket = -1

// Neighbor is one candidate from a radius query.
type Neighbor struct {
	Index  int32
	DistSq float64
}

// Grid buckets particles into uniform cells and groups their indices so
// each bucket's members form a contiguous run of sortedIndices. Build
// overwrites every table from scratch; nothing is maintained
// incrementally between steps.
type Grid struct {
	origin     r3.Vec
	cellSize   float64
	dims       [3]int
	addressing Addressing
	wrap       bool
	countOcc   bool

	buckets int

	cellKeys      []uint32 // bucket id per particle
	sortedIndices []int32  // particle indices grouped by bucket
	bucketStart   []int32  // first slot per bucket, noBucket when empty
	bucketEnd     []int32  // one past the last slot, valid only when start >= 0
	occupancy     []int32  // per-bucket counters, only with CountOccupancy

	occupied int
}

// NewGrid sizes a grid for the given parameters and particle capacity.
func NewGrid(p Params, capacity int) *Grid {
	dims := p.GridDims()
	buckets := dims[0] * dims[1] * dims[2]
	if p.Addressing == AddressHashed {
		buckets = HashTableSize
	}
	g := &Grid{
		origin:        p.BoundsMin,
		cellSize:      p.CellSize(),
		dims:          dims,
		addressing:    p.Addressing,
		wrap:          p.WrapNeighbors,
		countOcc:      p.CountOccupancy,
		buckets:       buckets,
		cellKeys:      make([]uint32, 0, capacity),
		sortedIndices: make([]int32, 0, capacity),
		bucketStart:   make([]int32, buckets),
		bucketEnd:     make([]int32, buckets),
	}
	if g.countOcc {
		g.occupancy = make([]int32, buckets)
	}
	for i := range g.bucketStart {
		g.bucketStart[i] = noBucket
	}
	return g
}

// Dims returns the cell counts per axis.
func (g *Grid) Dims() [3]int { return g.dims }

// Buckets returns the bucket table size.
func (g *Grid) Buckets() int { return g.buckets }

// CellOf maps a position to integer cell coordinates, clamped to the
// grid, so positions outside the bounds land in the nearest boundary
// cell. Total: it never fails, whatever the input.
func (g *Grid) CellOf(pos r3.Vec) (cx, cy, cz int) {
	cx = clampCell(int(math.Floor((pos.X-g.origin.X)/g.cellSize)), g.dims[0])
	cy = clampCell(int(math.Floor((pos.Y-g.origin.Y)/g.cellSize)), g.dims[1])
	cz = clampCell(int(math.Floor((pos.Z-g.origin.Z)/g.cellSize)), g.dims[2])
	return cx, cy, cz
}

func clampCell(c, dim int) int {
	if c < 0 {
		return 0
	}
	if c >= dim {
		return dim - 1
	}
	return c
}

// BucketOf maps cell coordinates to a bucket id under the grid's
// addressing scheme. Every stage shares this one mapping.
func (g *Grid) BucketOf(cx, cy, cz int) uint32 {
	if g.addressing == AddressHashed {
		return (uint32(cx)*hashPrimeX ^ uint32(cy)*hashPrimeY ^ uint32(cz)*hashPrimeZ) % HashTableSize
	}
	return uint32(cx + cy*g.dims[0] + cz*g.dims[0]*g.dims[1])
}

// Build rebuilds every table for the current positions: assign bucket
// ids, seed the identity permutation, group it by bucket, and record the
// per-bucket ranges. A nil pool runs the assignment inline.
func (g *Grid) Build(pos []r3.Vec, pool *workerPool) {
	n := len(pos)
	g.cellKeys = g.cellKeys[:n]
	g.sortedIndices = g.sortedIndices[:n]

	if g.countOcc {
		for i := range g.occupancy {
			g.occupancy[i] = 0
		}
	}

	assign := func(_, start, end int) {
		for i := start; i < end; i++ {
			b := g.BucketOf(g.CellOf(pos[i]))
			g.cellKeys[i] = b
			if g.countOcc {
				atomic.AddInt32(&g.occupancy[b], 1)
			}
		}
	}
	if pool != nil {
		pool.run(n, assign)
	} else {
		assign(0, 0, n)
	}

	// Identity permutation, then group by bucket id. Ties break on the
	// index so the layout is deterministic.
	idx := g.sortedIndices
	for i := range idx {
		idx[i] = int32(i)
	}
	keys := g.cellKeys
	sort.Slice(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if keys[ia] != keys[ib] {
			return keys[ia] < keys[ib]
		}
		return ia < ib
	})

	// Reset all ranges, then record them at bucket transitions. Buckets
	// left at noBucket must not be dereferenced.
	for i := range g.bucketStart {
		g.bucketStart[i] = noBucket
	}
	g.occupied = 0
	for i := 0; i < n; i++ {
		b := keys[idx[i]]
		if i == 0 || b != keys[idx[i-1]] {
			g.bucketStart[b] = int32(i)
			g.occupied++
		}
		if i == n-1 || b != keys[idx[i+1]] {
			g.bucketEnd[b] = int32(i + 1)
		}
	}
}

// QueryRadiusInto appends every particle strictly within radius of center
// to dst and returns it. The self index is excluded; pass a negative self
// to keep everything. Candidates come from the 27-cell block around
// center's cell; cells outside the grid are skipped, or wrapped when the
// grid was built with WrapNeighbors.
func (g *Grid) QueryRadiusInto(dst []Neighbor, pos []r3.Vec, center r3.Vec, radius float64, self int) []Neighbor {
	r2max := radius * radius
	cx, cy, cz := g.CellOf(center)

	var xs, ys, zs [3]int
	nx := axisCells(cx, g.dims[0], g.wrap, &xs)
	ny := axisCells(cy, g.dims[1], g.wrap, &ys)
	nz := axisCells(cz, g.dims[2], g.wrap, &zs)

	// Hashed addressing can fold distinct cells into one bucket; dedupe
	// so no candidate is visited twice.
	var buckets [27]uint32
	nb := 0
	for ix := 0; ix < nx; ix++ {
		for iy := 0; iy < ny; iy++ {
			for iz := 0; iz < nz; iz++ {
				b := g.BucketOf(xs[ix], ys[iy], zs[iz])
				dup := false
				for k := 0; k < nb; k++ {
					if buckets[k] == b {
						dup = true
						break
					}
				}
				if !dup {
					buckets[nb] = b
					nb++
				}
			}
		}
	}

	for k := 0; k < nb; k++ {
		start := g.bucketStart[buckets[k]]
		if start == noBucket {
			continue
		}
		end := g.bucketEnd[buckets[k]]
		for s := start; s < end; s++ {
			j := int(g.sortedIndices[s])
			if j == self {
				continue
			}
			r2 := r3.Norm2(r3.Sub(pos[j], center))
			if r2 < r2max {
				dst = append(dst, Neighbor{Index: int32(j), DistSq: r2})
			}
		}
	}
	return dst
}

// axisCells collects the distinct cell coordinates at offsets -1..+1 from
// c on one axis of size dim. Out-of-range coordinates are dropped, or
// wrapped when wrap is set; coordinates that alias (axes one or two cells
// wide) appear once.
func axisCells(c, dim int, wrap bool, out *[3]int) int {
	n := 0
	for off := -1; off <= 1; off++ {
		cc := c + off
		if wrap {
			cc = ((cc % dim) + dim) % dim
		} else if cc < 0 || cc >= dim {
			continue
		}
		dup := false
		for k := 0; k < n; k++ {
			if out[k] == cc {
				dup = true
				break
			}
		}
		if !dup {
			out[n] = cc
			n++
		}
	}
	return n
}

// ScanRadiusInto is the brute-force counterpart of QueryRadiusInto: every
// particle is a candidate. Identical distance filtering, no grid access.
func ScanRadiusInto(dst []Neighbor, pos []r3.Vec, center r3.Vec, radius float64, self int) []Neighbor {
	r2max := radius * radius
	for j := range pos {
		if j == self {
			continue
		}
		r2 := r3.Norm2(r3.Sub(pos[j], center))
		if r2 < r2max {
			dst = append(dst, Neighbor{Index: int32(j), DistSq: r2})
		}
	}
	return dst
}

// OccupiedBuckets returns the number of distinct buckets holding
// particles after the last build.
func (g *Grid) OccupiedBuckets() int { return g.occupied }

// MaxOccupancy returns the largest bucket population after the last
// build, from the recorded ranges.
func (g *Grid) MaxOccupancy() int {
	most := 0
	for b := 0; b < g.buckets; b++ {
		if g.bucketStart[b] == noBucket {
			continue
		}
		if n := int(g.bucketEnd[b] - g.bucketStart[b]); n > most {
			most = n
		}
	}
	return most
}

// Occupancy returns the diagnostic per-bucket counters, nil unless the
// grid was built with CountOccupancy.
func (g *Grid) Occupancy() []int32 { return g.occupancy }
