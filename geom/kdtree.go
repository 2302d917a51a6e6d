package geom

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
)

// kdNode is one payload entry of a KDTree: a position plus the index of the
// point it originated from, so a caller can map a search result back to its
// owning Point.
type kdNode struct {
	Pos   r3.Vector
	Index int
}

// KDTree is a static, pointerless 3D k-d tree built by recursively
// resorting a slice of nodes in place, one axis per depth level (x, y, z,
// x, y, z, ...). There is no incremental insertion; the whole point set is
// known up front, which is all the normalizer needs.
//
// Adapted from the classic pointerless-array construction (sort on the
// current axis, recurse on each half with the next axis).
type KDTree []kdNode

// NewKDTree builds a static k-d tree over points. The returned tree's
// NearestExcluding queries report indices into the original points slice.
func NewKDTree(points []r3.Vector) KDTree {
	t := make(KDTree, len(points))
	for i, p := range points {
		t[i] = kdNode{Pos: p, Index: i}
	}
	t.build(0)
	return t
}

func axisValue(p r3.Vector, axis int) float64 {
	switch axis % 3 {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

func (t KDTree) build(axis int) {
	l := len(t)
	if l <= 1 {
		return
	}
	sort.Slice(t, func(i, j int) bool {
		return axisValue(t[i].Pos, axis) < axisValue(t[j].Pos, axis)
	})
	next := (axis + 1) % 3
	mid := l / 2
	t[:mid].build(next)
	if l > 2 {
		t[mid+1:].build(next)
	}
}

// NearestExcluding returns the node in t closest to query whose Index is not
// excludeIndex, along with its distance. found is false if t has no node
// other than excludeIndex (e.g. a single-point tree querying its own
// point).
func (t KDTree) NearestExcluding(query r3.Vector, excludeIndex int) (index int, dist float64, found bool) {
	best, bestDist, ok := t.search(query, excludeIndex, 0, -1, math.Inf(1), false)
	return best, bestDist, ok
}

func (t KDTree) search(
	query r3.Vector,
	excludeIndex, axis int,
	best int,
	bestDist float64,
	found bool,
) (int, float64, bool) {
	if len(t) == 0 {
		return best, bestDist, found
	}
	mid := len(t) / 2
	node := t[mid]

	if node.Index != excludeIndex {
		d := node.Pos.Sub(query).Norm()
		if !found || d < bestDist {
			best, bestDist, found = node.Index, d, true
		}
	}

	next := (axis + 1) % 3
	diff := axisValue(query, axis) - axisValue(node.Pos, axis)

	var near, far KDTree
	if diff <= 0 {
		near, far = t[:mid], t[mid+1:]
	} else {
		near, far = t[mid+1:], t[:mid]
	}

	best, bestDist, found = near.search(query, excludeIndex, next, best, bestDist, found)
	// Only the far side can hold a closer point if the splitting plane
	// itself is within the current best distance.
	if !found || diff*diff <= bestDist*bestDist {
		best, bestDist, found = far.search(query, excludeIndex, next, best, bestDist, found)
	}
	return best, bestDist, found
}
