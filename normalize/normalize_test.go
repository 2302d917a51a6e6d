package normalize

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/mdaiter/domsetLibrary/geom"
	"github.com/mdaiter/domsetLibrary/internal/parallel"
)

func TestNormalizeEmptyInput(t *testing.T) {
	_, _, err := Normalize([]geom.Point{{Pos: r3.Vector{}}}, nil)
	test.That(t, err, test.ShouldEqual, ErrEmptyInput)
}

func TestNormalizeDenormalizeRoundTrip(t *testing.T) {
	prevFactor := parallel.Factor
	parallel.Factor = 1
	defer func() { parallel.Factor = prevFactor }()

	points := []geom.Point{
		geom.NewPoint(r3.Vector{X: 0, Y: 0, Z: 0}, []int{0}),
		geom.NewPoint(r3.Vector{X: 2, Y: 0, Z: 0}, []int{0}),
		geom.NewPoint(r3.Vector{X: 2, Y: 4, Z: 0}, []int{1}),
	}
	views := []geom.View{
		geom.NewView(0, r3.Vector{X: 1, Y: -1, Z: 0}, nil),
		geom.NewView(1, r3.Vector{X: -3, Y: 2, Z: 5}, nil),
	}

	origPoints := make([]r3.Vector, len(points))
	for i, p := range points {
		origPoints[i] = p.Pos
	}
	origViews := make([]r3.Vector, len(views))
	for i, v := range views {
		origViews[i] = v.Center
	}

	centroid, scale, err := Normalize(points, views)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scale, test.ShouldBeGreaterThan, 0)

	Denormalize(points, views, centroid, scale)

	for i, p := range points {
		test.That(t, p.Pos.X, test.ShouldAlmostEqual, origPoints[i].X, 1e-4)
		test.That(t, p.Pos.Y, test.ShouldAlmostEqual, origPoints[i].Y, 1e-4)
		test.That(t, p.Pos.Z, test.ShouldAlmostEqual, origPoints[i].Z, 1e-4)
	}
	for i, v := range views {
		test.That(t, v.Center.X, test.ShouldAlmostEqual, origViews[i].X, 1e-4)
		test.That(t, v.Center.Y, test.ShouldAlmostEqual, origViews[i].Y, 1e-4)
		test.That(t, v.Center.Z, test.ShouldAlmostEqual, origViews[i].Z, 1e-4)
	}
}

func TestNormalizeDegenerateCloud(t *testing.T) {
	points := []geom.Point{
		geom.NewPoint(r3.Vector{X: 1, Y: 1, Z: 1}, []int{0}),
		geom.NewPoint(r3.Vector{X: 1, Y: 1, Z: 1}, []int{0}),
	}
	_, _, err := Normalize(points, nil)
	test.That(t, err, test.ShouldNotBeNil)
}
