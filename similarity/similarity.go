// Package similarity builds the dense view-to-view similarity matrix that
// Affinity Propagation clusters over: a geometric view-coverage term times
// a distance kernel, with the diagonal forced to zero.
//
// The angle kernel's denominator is the raw AngleSigma2, not 2·AngleSigma2:
// w_p = exp(-θ²/AngleSigma2).
package similarity

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/mdaiter/domsetLibrary/geom"
	"github.com/mdaiter/domsetLibrary/internal/parallel"
)

// DiagonalMode selects what BuildMatrix writes onto S's diagonal.
type DiagonalMode int

const (
	// PreferenceZero forces S(x,x) = 0: AP's self-preference is implicit
	// rather than an explicit diagonal value, which biases clustering
	// toward fewer, non-trivial exemplars.
	PreferenceZero DiagonalMode = iota
	// PreferenceMedian sets S(x,x) to the median of the subset's
	// off-diagonal similarities S(x1,x2), giving AP a real self-preference
	// instead of an implicit one.
	PreferenceMedian
)

// Config holds the tunable parameters of the similarity builder.
type Config struct {
	// AngleSigma2 is the kernel's denominator: w_p = exp(-θ²/AngleSigma2).
	AngleSigma2 float64
	// DiagonalPreference selects the diagonal policy; zero value is
	// PreferenceZero.
	DiagonalPreference DiagonalMode
}

// BuildMatrix computes the dense |xID2vID| × |xID2vID| similarity matrix S
// over the view subset named by xID2vID (xID2vID[x] is the view id for
// subset index x). S(x1,x2) for x1≠x2 is ViewCoverage times DistanceTerm,
// the latter evaluated against the subset's distance median; S(x,x) is set per
// cfg.DiagonalPreference (0 by default).
func BuildMatrix(points []geom.Point, views []geom.View, viewDists *mat.Dense, xID2vID []int, cfg Config) *mat.Dense {
	n := len(xID2vID)
	if n == 0 {
		return mat.NewDense(0, 0, nil)
	}
	s := mat.NewDense(n, n, nil)
	median := DistanceMedian(viewDists, xID2vID)

	parallel.Rows(n, func(from, to int) {
		for x1 := from; x1 < to; x1++ {
			v1 := xID2vID[x1]
			for x2 := 0; x2 < n; x2++ {
				if x1 == x2 {
					continue
				}
				v2 := xID2vID[x2]
				sv := ViewCoverage(points, views[v1], views[v2], cfg.AngleSigma2)
				sd := DistanceTerm(viewDists.At(v1, v2), median)
				s.Set(x1, x2, sv*sd)
			}
		}
	})

	if cfg.DiagonalPreference == PreferenceMedian {
		diag := medianOffDiagonal(s, n)
		for i := 0; i < n; i++ {
			s.Set(i, i, diag)
		}
	}
	return s
}

// medianOffDiagonal returns the lower median of every off-diagonal entry of
// the n×n matrix s.
func medianOffDiagonal(s *mat.Dense, n int) float64 {
	if n < 2 {
		return 0
	}
	vals := make([]float64, 0, n*n-n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			vals = append(vals, s.At(i, j))
		}
	}
	sort.Float64s(vals)
	return vals[len(vals)/2]
}

// ViewCoverage is the S_view term for a pair of views: the mean, over
// points both views observed, of an angle kernel between the two
// camera-to-point unit vectors. Returns 0 if the views share no observed
// points or the result is non-finite.
func ViewCoverage(points []geom.Point, v1, v2 geom.View, angleSigma2 float64) float64 {
	common := geom.SortedIntersection(v1.ViewPoints, v2.ViewPoints)
	if len(common) == 0 {
		return 0
	}
	var sum float64
	for _, pIdx := range common {
		p := points[pIdx].Pos
		u1 := v1.Center.Sub(p).Normalize()
		u2 := v2.Center.Sub(p).Normalize()
		cos := u1.Dot(u2)
		if cos > 1 {
			cos = 1
		} else if cos < -1 {
			cos = -1
		}
		theta := math.Acos(cos)
		sum += math.Exp(-(theta * theta) / angleSigma2)
	}
	result := sum / float64(len(common))
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0
	}
	return result
}

// DistanceTerm is the S_dist term: a logistic in d that is monotonically
// increasing, so that views farther apart (relative to the subset's median
// separation) score higher. Rewarding spread rather than proximity is
// unusual for a similarity term but is common in view-clustering, where
// cameras need to disagree in viewpoint to be useful together.
func DistanceTerm(d, median float64) float64 {
	if median == 0 {
		return 0.5
	}
	return 1 / (1 + math.Exp(-(d-median)/median))
}

// DistanceMedian returns the lower median of all off-diagonal entries of
// viewDists restricted to the subset named by xID2vID (duplicates from
// symmetry included).
func DistanceMedian(viewDists *mat.Dense, xID2vID []int) float64 {
	n := len(xID2vID)
	if n < 2 {
		return 0
	}
	dists := make([]float64, 0, n*n-n)
	for i := 0; i < n; i++ {
		v1 := xID2vID[i]
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			v2 := xID2vID[j]
			dists = append(dists, viewDists.At(v1, v2))
		}
	}
	sort.Float64s(dists)
	return dists[len(dists)/2]
}

