// Package voxelgrid downsamples a point cloud onto a uniform cubic grid,
// propagating each output point's view list from the union of its members'
// view lists and back-filling every referenced view's point list.
//
// The default voxel-id formula is a non-injective linear index: two
// distinct cells in different rows can collide onto the same id and get
// merged together (see CollidingKey below). Aggregation uses a
// map[key]*bucket sparse grid with parallel per-thread accumulation merged
// serially.
package voxelgrid

import (
	"math"
	"sort"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/mdaiter/domsetLibrary/geom"
	"github.com/mdaiter/domsetLibrary/internal/parallel"
)

// Sentinel errors for the two ways voxel filtering can be misconfigured.
var (
	ErrEmptyInput       = errors.New("voxelgrid: no points to filter")
	ErrInvalidVoxelSize = errors.New("voxelgrid: voxel size must be > 0")
)

// KeyFunc flattens integer lattice coordinates (x, y, z) with grid extents
// (nx, ny, nz) into a single voxel id.
type KeyFunc func(x, y, z, nx, ny, nz int64) int64

// CollidingKey reproduces the source's linear index (z*Nz)+(y*Ny)+x. It is
// not an injective encoding of the lattice: two distinct cells in different
// rows can hash to the same id and get merged together. This is the
// default, for behavioral parity with the original C++ source.
func CollidingKey(x, y, z, _, ny, nz int64) int64 {
	return z*nz + y*ny + x
}

// StridedKey is the corrected, injective linear index (z*Ny+y)*Nx+x. Pass
// it to Filter to opt out of the source's voxel-id collision bug.
func StridedKey(x, y, z, nx, ny, _ int64) int64 {
	return (z*ny+y)*nx + x
}

type bucket struct {
	sum      r3.Vector
	count    int
	viewList []int
}

func (b *bucket) merge(other *bucket) {
	b.sum = b.sum.Add(other.sum)
	b.count += other.count
	b.viewList = append(b.viewList, other.viewList...)
}

// Filter downsamples points into voxelSize-cubed cells keyed by key
// (CollidingKey if nil). Each occupied cell collapses to one output point
// at the mean position of its members, with a view list that is the sorted
// union of its members' view lists. Every view referenced by an output
// point has that point's new index appended to its ViewPoints, which ends
// up sorted ascending.
//
// points and its Point values are not mutated; views is mutated in place
// (its ViewPoints are reset and rebuilt).
func Filter(points []geom.Point, views []geom.View, voxelSize float64, key KeyFunc) ([]geom.Point, error) {
	if len(points) == 0 {
		return nil, ErrEmptyInput
	}
	if voxelSize <= 0 {
		return nil, ErrInvalidVoxelSize
	}
	if key == nil {
		key = CollidingKey
	}

	minPt, maxPt := boundingBox(points)
	nx := gridExtent(maxPt.X, minPt.X, voxelSize)
	ny := gridExtent(maxPt.Y, minPt.Y, voxelSize)
	nz := gridExtent(maxPt.Z, minPt.Z, voxelSize)

	buckets := make(map[int64]*bucket)
	var mu sync.Mutex
	parallel.Rows(len(points), func(from, to int) {
		local := make(map[int64]*bucket)
		for i := from; i < to; i++ {
			p := points[i]
			id := voxelID(p.Pos, minPt, voxelSize, nx, ny, nz, key)
			b, ok := local[id]
			if !ok {
				b = &bucket{}
				local[id] = b
			}
			b.sum = b.sum.Add(p.Pos)
			b.count++
			b.viewList = append(b.viewList, p.ViewList...)
		}
		mu.Lock()
		defer mu.Unlock()
		for id, lb := range local {
			if existing, ok := buckets[id]; ok {
				existing.merge(lb)
			} else {
				buckets[id] = lb
			}
		}
	})

	ids := make([]int64, 0, len(buckets))
	for id := range buckets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for i := range views {
		views[i].ViewPoints = views[i].ViewPoints[:0]
	}

	filtered := make([]geom.Point, len(ids))
	for newIdx, id := range ids {
		b := buckets[id]
		center := b.sum.Mul(1.0 / float64(b.count))
		viewList := geom.DedupeSortedInts(b.viewList)
		filtered[newIdx] = geom.Point{Pos: center, ViewList: viewList}
		for _, v := range viewList {
			views[v].ViewPoints = append(views[v].ViewPoints, newIdx)
		}
	}
	for i := range views {
		sort.Ints(views[i].ViewPoints)
	}

	return filtered, nil
}

func gridExtent(max, min, size float64) int64 {
	n := int64(math.Ceil((max - min) / size))
	if n < 1 {
		return 1
	}
	return n
}

func voxelID(p, min r3.Vector, size float64, nx, ny, nz int64, key KeyFunc) int64 {
	x := int64(math.Floor((p.X - min.X) / size))
	y := int64(math.Floor((p.Y - min.Y) / size))
	z := int64(math.Floor((p.Z - min.Z) / size))
	return key(x, y, z, nx, ny, nz)
}

func boundingBox(points []geom.Point) (r3.Vector, r3.Vector) {
	min := r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max := r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range points {
		min.X = math.Min(min.X, p.Pos.X)
		min.Y = math.Min(min.Y, p.Pos.Y)
		min.Z = math.Min(min.Z, p.Pos.Z)
		max.X = math.Max(max.X, p.Pos.X)
		max.Y = math.Max(max.Y, p.Pos.Y)
		max.Z = math.Max(max.Z, p.Pos.Z)
	}
	return min, max
}
