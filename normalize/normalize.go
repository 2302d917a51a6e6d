// Package normalize translates and scales a point cloud and its observing
// views so that the cloud is centered near the origin and its mean nearest-
// neighbour spacing is approximately 1, then provides the inverse transform
// for returning results in the caller's original coordinate frame.
//
// Translate-then-scale on the way in, scale-then-translate-inverse on the
// way out, with the scale derived from the mean distance to each point's
// nearest other point.
package normalize

import (
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/mdaiter/domsetLibrary/geom"
	"github.com/mdaiter/domsetLibrary/internal/parallel"
)

// ErrEmptyInput is returned when fewer than two points are supplied; a
// nearest-neighbour distance is undefined with zero or one point.
var ErrEmptyInput = errors.New("normalize: at least two points are required")

// Normalize computes the centroid of points and a scale factor such that
// the mean nearest-neighbour distance becomes 1, then mutates points and
// views in place: p ← (p − centroid) · scale for every position. The
// returned centroid and scale must be passed to Denormalize to invert the
// transform.
func Normalize(points []geom.Point, views []geom.View) (r3.Vector, float64, error) {
	if len(points) < 2 {
		return r3.Vector{}, 0, ErrEmptyInput
	}

	positions := make([]r3.Vector, len(points))
	for i, p := range points {
		positions[i] = p.Pos
	}
	centroid := geom.Mean(positions)
	tree := geom.NewKDTree(positions)

	var mu sync.Mutex
	var totalDist float64
	var counted int
	parallel.Rows(len(points), func(from, to int) {
		var localSum float64
		var localN int
		for i := from; i < to; i++ {
			_, dist, found := tree.NearestExcluding(positions[i], i)
			if found {
				localSum += dist
				localN++
			}
		}
		mu.Lock()
		totalDist += localSum
		counted += localN
		mu.Unlock()
	})
	if counted == 0 || totalDist == 0 {
		return r3.Vector{}, 0, errors.New("normalize: degenerate point cloud, all points coincide")
	}

	// scale = |P| / Σdist, equivalently 1 / mean(dist).
	scale := float64(counted) / totalDist

	parallel.Rows(len(points), func(from, to int) {
		for i := from; i < to; i++ {
			points[i].Pos = points[i].Pos.Sub(centroid).Mul(scale)
		}
	})
	parallel.Rows(len(views), func(from, to int) {
		for i := from; i < to; i++ {
			views[i].Center = views[i].Center.Sub(centroid).Mul(scale)
		}
	})

	return centroid, scale, nil
}

// Denormalize inverts Normalize given the centroid and scale it returned,
// mutating points and views back to their original coordinate frame:
// p ← (p / scale) + centroid.
func Denormalize(points []geom.Point, views []geom.View, centroid r3.Vector, scale float64) {
	if scale == 0 {
		return
	}
	inv := 1 / scale
	parallel.Rows(len(points), func(from, to int) {
		for i := from; i < to; i++ {
			points[i].Pos = points[i].Pos.Mul(inv).Add(centroid)
		}
	})
	parallel.Rows(len(views), func(from, to int) {
		for i := from; i < to; i++ {
			views[i].Center = views[i].Center.Mul(inv).Add(centroid)
		}
	})
}
