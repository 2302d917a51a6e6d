// Package parallel provides the data-parallel row-range helper used by the
// dense numeric stages of the clustering pipeline: voxel aggregation, the
// view-distance and similarity matrix fills, and the affinity-propagation
// R/A updates. Every one of those stages is "loop over N independent rows,
// merge at the end" with no ordering guarantee between rows.
//
// Adapted from the group/member work-splitting idiom of
// utils.GroupWorkParallel: split [0, n) into contiguous ranges, one
// goroutine per range, barrier on completion.
package parallel

import (
	"math"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// Factor controls how many goroutines Rows spawns. Tests that require a
// fixed floating-point reduction order should set this to 1 for the
// duration of the test.
var Factor = runtime.GOMAXPROCS(0)

func init() {
	if Factor <= 0 {
		Factor = 1
	}
}

// RowFunc processes the half-open row range [from, to).
type RowFunc func(from, to int)

// Rows splits [0, n) into at most Factor contiguous, roughly equal ranges
// and runs fn over each range concurrently, returning once every range has
// completed. A panic inside fn is recovered per-goroutine and re-panicked
// in the caller after all goroutines finish, so one bad row range can't
// leave the others' results half-written without the caller ever finding
// out.
func Rows(n int, fn RowFunc) {
	if n <= 0 {
		return
	}
	factor := Factor
	if factor > n {
		factor = n
	}
	groupSize := int(math.Floor(float64(n) / float64(factor)))
	extra := n - groupSize*factor

	var wg sync.WaitGroup
	var mu sync.Mutex
	var panicked error

	wg.Add(factor)
	for g := 0; g < factor; g++ {
		from := g * groupSize
		to := from + groupSize
		if g == factor-1 {
			to += extra
		}
		utils.PanicCapturingGo(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					panicked = multierr.Append(panicked, errors.Errorf("panic in row range [%d,%d): %v", from, to, r))
					mu.Unlock()
				}
			}()
			fn(from, to)
		})
	}
	wg.Wait()
	if panicked != nil {
		panic(panicked)
	}
}
