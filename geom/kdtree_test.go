package geom

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestKDTreeNearestExcluding(t *testing.T) {
	pts := []r3.Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 5, Y: 0, Z: 0},
		{X: 5, Y: 1, Z: 0},
	}
	tree := NewKDTree(pts)

	idx, dist, found := tree.NearestExcluding(pts[0], 0)
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, idx, test.ShouldEqual, 1)
	test.That(t, dist, test.ShouldAlmostEqual, 1.0)

	idx, dist, found = tree.NearestExcluding(pts[2], 2)
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, idx, test.ShouldEqual, 3)
	test.That(t, dist, test.ShouldAlmostEqual, 1.0)
}

func TestKDTreeSingletonExcludesSelf(t *testing.T) {
	pts := []r3.Vector{{X: 0, Y: 0, Z: 0}}
	tree := NewKDTree(pts)
	_, _, found := tree.NearestExcluding(pts[0], 0)
	test.That(t, found, test.ShouldBeFalse)
}

func TestDedupeSortedInts(t *testing.T) {
	out := DedupeSortedInts([]int{3, 1, 2, 1, 3, 0})
	test.That(t, out, test.ShouldResemble, []int{0, 1, 2, 3})
}

func TestSortedIntersection(t *testing.T) {
	out := SortedIntersection([]int{1, 2, 3, 5}, []int{2, 3, 4})
	test.That(t, out, test.ShouldResemble, []int{2, 3})
}
