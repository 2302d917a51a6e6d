// Package cluster turns Affinity Propagation's R/A matrices into the final
// list of view clusters: exemplar extraction, initial assignment, min-size
// merging, and max-size splitting.
//
// The initial-assignment loop assigns each i to argmax_c S(i,c) directly,
// never overwriting that assignment by i's own index; merge/split policy
// drops clusters that cannot be merged without exceeding maxSize.
package cluster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ExtractExemplars returns, for each row i of E=R+A, the column that
// maximizes E(i,j) (exemplarOf[i]), and the sorted set of distinct
// exemplar indices (the cluster centers).
func ExtractExemplars(r, a *mat.Dense) (exemplarOf []int, centers []int) {
	n, _ := r.Dims()
	exemplarOf = make([]int, n)
	seen := make(map[int]bool)
	for i := 0; i < n; i++ {
		best := 0
		bestVal := math.Inf(-1)
		for j := 0; j < n; j++ {
			if v := r.At(i, j) + a.At(i, j); v > bestVal {
				bestVal = v
				best = j
			}
		}
		exemplarOf[i] = best
		seen[best] = true
	}
	for c := range seen {
		centers = append(centers, c)
	}
	sort.Ints(centers)
	return exemplarOf, centers
}

// AssignInitial assigns every x-index to the center in centers that
// maximizes S(i, center).
func AssignInitial(s *mat.Dense, centers []int) map[int][]int {
	clusters := make(map[int][]int, len(centers))
	for _, c := range centers {
		clusters[c] = nil
	}
	n, _ := s.Dims()
	for i := 0; i < n; i++ {
		best := centers[0]
		bestSim := math.Inf(-1)
		for _, c := range centers {
			if v := s.At(i, c); v > bestSim {
				bestSim = v
				best = c
			}
		}
		clusters[best] = append(clusters[best], i)
	}
	return clusters
}

func sortedKeys(m map[int][]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// MergeSmall repeatedly scans clusters in ascending-center order and, for
// each whose size is below minSize, merges it into the view-distance-
// nearest other cluster whose combined size stays within maxSize. A
// cluster with no eligible merge target is dropped; its member x-indices
// are returned in dropped. The scan repeats until a full pass makes no
// change.
func MergeSmall(clusters map[int][]int, viewDists *mat.Dense, xID2vID []int, minSize, maxSize int) (map[int][]int, []int) {
	work := make(map[int][]int, len(clusters))
	for k, v := range clusters {
		work[k] = append([]int(nil), v...)
	}

	var dropped []int
	for {
		changed := false
		for _, center := range sortedKeys(work) {
			members, ok := work[center]
			if !ok {
				continue // merged away earlier in this pass
			}
			if len(members) >= minSize {
				continue
			}
			v1 := xID2vID[center]
			bestOther := -1
			bestDist := math.Inf(1)
			for _, otherCenter := range sortedKeys(work) {
				if otherCenter == center {
					continue
				}
				if len(members)+len(work[otherCenter]) > maxSize {
					continue
				}
				v2 := xID2vID[otherCenter]
				if d := viewDists.At(v1, v2); d < bestDist {
					bestDist = d
					bestOther = otherCenter
				}
			}
			if bestOther >= 0 {
				work[bestOther] = append(work[bestOther], members...)
			} else {
				dropped = append(dropped, members...)
			}
			delete(work, center)
			changed = true
		}
		if !changed {
			break
		}
	}
	return work, dropped
}

// SplitLarge slices members (already sorted or not) into consecutive
// chunks of at most maxSize, the last chunk taking the remainder, each
// chunk independently sorted ascending.
func SplitLarge(members []int, maxSize int) [][]int {
	if len(members) <= maxSize {
		chunk := append([]int(nil), members...)
		sort.Ints(chunk)
		return [][]int{chunk}
	}
	var out [][]int
	for start := 0; start < len(members); start += maxSize {
		end := start + maxSize
		if end > len(members) {
			end = len(members)
		}
		chunk := append([]int(nil), members[start:end]...)
		sort.Ints(chunk)
		out = append(out, chunk)
	}
	return out
}

// Finalize runs exemplar extraction, initial assignment, min-size merge and
// max-size split, translating x-indices to view ids along the way. Each
// returned cluster is a sorted, distinct list of view ids; droppedViews
// lists the view ids excluded by an unmergeable below-minimum cluster.
func Finalize(s, r, a, viewDists *mat.Dense, xID2vID []int, minSize, maxSize int) (clusters [][]int, droppedViews []int) {
	_, centers := ExtractExemplars(r, a)
	if len(centers) == 0 {
		return nil, nil
	}
	assigned := AssignInitial(s, centers)
	merged, droppedX := MergeSmall(assigned, viewDists, xID2vID, minSize, maxSize)

	for _, center := range sortedKeys(merged) {
		members := merged[center]
		vIDs := make([]int, len(members))
		for i, x := range members {
			vIDs[i] = xID2vID[x]
		}
		clusters = append(clusters, SplitLarge(vIDs, maxSize)...)
	}
	for _, x := range droppedX {
		droppedViews = append(droppedViews, xID2vID[x])
	}
	return clusters, droppedViews
}
