// Package geom holds the plain data types and vector/spatial-index helpers
// shared by every stage of the view-clustering pipeline: points, views, and
// a static nearest-neighbour index over 3D positions.
package geom

import (
	"sort"

	"github.com/golang/geo/r3"
)

// Point is a single 3D scene point together with the views that observed it.
type Point struct {
	Pos r3.Vector

	// ViewList holds the indices (into the owning Cloud's Views slice) of
	// every view that observed this point. Kept sorted and deduplicated.
	ViewList []int
}

// NewPoint returns a Point with a defensively copied, sorted, deduplicated
// view list.
func NewPoint(pos r3.Vector, viewList []int) Point {
	return Point{Pos: pos, ViewList: dedupeSortedInts(viewList)}
}

// View is a calibrated camera: its index, its center position, and the
// indices (into the owning Cloud's Points slice) of every point it observed.
// ViewPoints is populated by the voxel filter and kept sorted ascending.
type View struct {
	Index      int
	Center     r3.Vector
	ViewPoints []int
}

// NewView returns a View with a defensively copied view-points list.
func NewView(index int, center r3.Vector, viewPoints []int) View {
	vp := make([]int, len(viewPoints))
	copy(vp, viewPoints)
	sort.Ints(vp)
	return View{Index: index, Center: center, ViewPoints: vp}
}

// dedupeSortedInts returns a sorted slice with duplicate values removed. The
// input is not mutated.
func dedupeSortedInts(in []int) []int {
	if len(in) == 0 {
		return nil
	}
	out := make([]int, len(in))
	copy(out, in)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i == 0 || out[n-1] != v {
			out[n] = v
			n++
		}
	}
	return out[:n]
}

// DedupeSortedInts is the exported form of dedupeSortedInts, used by
// packages (voxelgrid, viewcluster) that need to merge several view lists
// into one sorted, deduplicated slice.
func DedupeSortedInts(in []int) []int {
	return dedupeSortedInts(in)
}

// Mean returns the arithmetic mean of vs. The zero vector is returned for
// an empty slice.
func Mean(vs []r3.Vector) r3.Vector {
	if len(vs) == 0 {
		return r3.Vector{}
	}
	var sum r3.Vector
	for _, v := range vs {
		sum = sum.Add(v)
	}
	return sum.Mul(1.0 / float64(len(vs)))
}

// SortedIntersection returns the sorted intersection of two already-sorted
// int slices.
func SortedIntersection(a, b []int) []int {
	out := make([]int, 0, minInt(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
