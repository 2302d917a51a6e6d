// Package affinityprop implements damped Affinity Propagation over a dense
// similarity matrix: alternating responsibility and availability updates,
// plus the once-only self-availability update.
//
// The max-over-empty-set sentinel is -∞. Self-availability is updated once
// after all R/A iterations have completed, a deliberate departure from the
// standard Frey-Dueck formulation where it updates every round.
package affinityprop

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mdaiter/domsetLibrary/internal/parallel"
)

// Config controls the damped recurrence.
type Config struct {
	NumIter int     // number of R/A update rounds
	Lambda  float64 // damping factor in [0,1)
}

// Result holds the converged responsibility and availability matrices.
type Result struct {
	R *mat.Dense
	A *mat.Dense
}

// Run executes cfg.NumIter damped responsibility/availability rounds over
// the N×N similarity matrix s and returns the resulting R and A.
func Run(s *mat.Dense, cfg Config) Result {
	n, _ := s.Dims()
	r := mat.NewDense(n, n, nil)
	a := mat.NewDense(n, n, nil)

	for iter := 0; iter < cfg.NumIter; iter++ {
		updateResponsibility(s, r, a, cfg.Lambda)
		updateAvailability(r, a, cfg.Lambda)
	}
	updateSelfAvailability(r, a, cfg.Lambda)

	return Result{R: r, A: a}
}

// updateResponsibility applies R(i,k) ← (1-λ)(S(i,k) - max_{k'≠k}(S(i,k')+A(i,k'))) + λR(i,k)
// for every (i,k), reading only s and the availabilities from the previous
// round (A-update for this round hasn't run yet).
func updateResponsibility(s, r, a *mat.Dense, lambda float64) {
	n, _ := s.Dims()
	parallel.Rows(n, func(from, to int) {
		for i := from; i < to; i++ {
			for k := 0; k < n; k++ {
				max := math.Inf(-1)
				for kk := 0; kk < n; kk++ {
					if kk == k {
						continue
					}
					if v := s.At(i, kk) + a.At(i, kk); v > max {
						max = v
					}
				}
				r.Set(i, k, (1-lambda)*(s.At(i, k)-max)+lambda*r.At(i, k))
			}
		}
	})
}

// updateAvailability applies, for i≠k:
// A(i,k) ← (1-λ)min(0, R(k,k) + Σ_{i'∉{i,k}} max(0,R(i',k))) + λA(i,k).
func updateAvailability(r, a *mat.Dense, lambda float64) {
	n, _ := r.Dims()
	parallel.Rows(n, func(from, to int) {
		for i := from; i < to; i++ {
			for k := 0; k < n; k++ {
				if i == k {
					continue
				}
				var sum float64
				for ii := 0; ii < n; ii++ {
					if ii == i || ii == k {
						continue
					}
					if v := r.At(ii, k); v > 0 {
						sum += v
					}
				}
				total := r.At(k, k) + sum
				a.Set(i, k, (1-lambda)*math.Min(0, total)+lambda*a.At(i, k))
			}
		}
	})
}

// updateSelfAvailability applies A(k,k) ← (1-λ)Σ_{i'≠k} max(0,R(i',k)) + λA(k,k),
// once, after every R/A iteration has completed.
func updateSelfAvailability(r, a *mat.Dense, lambda float64) {
	n, _ := r.Dims()
	parallel.Rows(n, func(from, to int) {
		for k := from; k < to; k++ {
			var sum float64
			for ii := 0; ii < n; ii++ {
				if ii == k {
					continue
				}
				if v := r.At(ii, k); v > 0 {
					sum += v
				}
			}
			a.Set(k, k, (1-lambda)*sum+lambda*a.At(k, k))
		}
	})
}
