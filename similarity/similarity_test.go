package similarity

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"github.com/mdaiter/domsetLibrary/geom"
)

func TestViewCoverageAngleKernel(t *testing.T) {
	const sigma2 = 0.5

	point := geom.Point{Pos: r3.Vector{X: 0, Y: 0, Z: 0}, ViewList: []int{0, 1}}
	points := []geom.Point{point}

	// Coincident rays: both cameras on the same ray from the point.
	coincident := ViewCoverage(
		points,
		geom.View{Center: r3.Vector{X: 1, Y: 0, Z: 0}, ViewPoints: []int{0}},
		geom.View{Center: r3.Vector{X: 2, Y: 0, Z: 0}, ViewPoints: []int{0}},
		sigma2,
	)
	test.That(t, coincident, test.ShouldAlmostEqual, 1.0, 1e-9)

	// 90 degrees apart.
	ninety := ViewCoverage(
		points,
		geom.View{Center: r3.Vector{X: 1, Y: 0, Z: 0}, ViewPoints: []int{0}},
		geom.View{Center: r3.Vector{X: 0, Y: 1, Z: 0}, ViewPoints: []int{0}},
		sigma2,
	)
	expectedNinety := math.Exp(-(math.Pi / 2) * (math.Pi / 2) / sigma2)
	test.That(t, ninety, test.ShouldAlmostEqual, expectedNinety, 1e-9)

	// 180 degrees apart.
	oneEighty := ViewCoverage(
		points,
		geom.View{Center: r3.Vector{X: 1, Y: 0, Z: 0}, ViewPoints: []int{0}},
		geom.View{Center: r3.Vector{X: -1, Y: 0, Z: 0}, ViewPoints: []int{0}},
		sigma2,
	)
	expectedOneEighty := math.Exp(-math.Pi * math.Pi / sigma2)
	test.That(t, oneEighty, test.ShouldAlmostEqual, expectedOneEighty, 1e-9)
}

func TestViewCoverageNoCommonPoints(t *testing.T) {
	cov := ViewCoverage(nil,
		geom.View{ViewPoints: []int{0}},
		geom.View{ViewPoints: []int{1}},
		1.0)
	test.That(t, cov, test.ShouldEqual, 0.0)
}

func TestDistanceMedianLowerMedian(t *testing.T) {
	// 3x3 distance matrix with known off-diagonal values.
	vd := mat.NewDense(3, 3, []float64{
		0, 1, 5,
		1, 0, 9,
		5, 9, 0,
	})
	median := DistanceMedian(vd, []int{0, 1, 2})
	// off-diagonals sorted: 1,1,5,5,9,9 -> index 3 -> 5
	test.That(t, median, test.ShouldEqual, 5.0)
}

func TestBuildMatrixPreferenceMedianSetsDiagonal(t *testing.T) {
	points := []geom.Point{
		{Pos: r3.Vector{X: 0, Y: 0, Z: 1}, ViewList: []int{0, 1, 2}},
	}
	views := []geom.View{
		{Center: r3.Vector{X: 0, Y: 0, Z: 0}, ViewPoints: []int{0}},
		{Center: r3.Vector{X: 1, Y: 0, Z: 0}, ViewPoints: []int{0}},
		{Center: r3.Vector{X: 0, Y: 1, Z: 0}, ViewPoints: []int{0}},
	}
	viewDists := mat.NewDense(3, 3, []float64{
		0, 1, 1,
		1, 0, 1.5,
		1, 1.5, 0,
	})

	s := BuildMatrix(points, views, viewDists, []int{0, 1, 2}, Config{
		AngleSigma2:        1.0,
		DiagonalPreference: PreferenceMedian,
	})

	var offDiag []float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i != j {
				offDiag = append(offDiag, s.At(i, j))
			}
		}
	}
	test.That(t, s.At(0, 0), test.ShouldEqual, s.At(1, 1))
	test.That(t, s.At(1, 1), test.ShouldEqual, s.At(2, 2))
	// the diagonal value must itself be one of the off-diagonal entries
	// (it's their median, not a synthesized value).
	found := false
	for _, v := range offDiag {
		if v == s.At(0, 0) {
			found = true
		}
	}
	test.That(t, found, test.ShouldBeTrue)
}

func TestBuildMatrixDiagonalZeroAndBounded(t *testing.T) {
	points := []geom.Point{
		{Pos: r3.Vector{X: 0, Y: 0, Z: 1}, ViewList: []int{0, 1}},
	}
	views := []geom.View{
		{Center: r3.Vector{X: 0, Y: 0, Z: 0}, ViewPoints: []int{0}},
		{Center: r3.Vector{X: 1, Y: 0, Z: 0}, ViewPoints: []int{0}},
	}
	viewDists := mat.NewDense(2, 2, []float64{0, 1, 1, 0})

	s := BuildMatrix(points, views, viewDists, []int{0, 1}, Config{AngleSigma2: 1.0})
	test.That(t, s.At(0, 0), test.ShouldEqual, 0.0)
	test.That(t, s.At(1, 1), test.ShouldEqual, 0.0)
	test.That(t, s.At(0, 1) >= 0 && s.At(0, 1) <= 1, test.ShouldBeTrue)
	test.That(t, s.At(0, 1), test.ShouldAlmostEqual, s.At(1, 0), 1e-9)
}
