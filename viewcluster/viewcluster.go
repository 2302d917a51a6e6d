// Package viewcluster is the top-level pipeline: it owns the point/view
// population through normalization, voxel downsampling, the view-distance
// matrix, similarity, Affinity Propagation, and cluster finalization, and
// denormalizes before handing results back.
//
// Stages run in a fixed order: normalize, voxel-filter, compute view
// distances, build similarity, run Affinity Propagation, finalize
// clusters, denormalize — split into one package per pipeline concern.
package viewcluster

import (
	"sort"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/mdaiter/domsetLibrary/affinityprop"
	"github.com/mdaiter/domsetLibrary/cluster"
	"github.com/mdaiter/domsetLibrary/geom"
	"github.com/mdaiter/domsetLibrary/internal/parallel"
	"github.com/mdaiter/domsetLibrary/normalize"
	"github.com/mdaiter/domsetLibrary/similarity"
	"github.com/mdaiter/domsetLibrary/voxelgrid"
)

// Cloud owns the point/view population and derived state for one
// clustering invocation.
type Cloud struct {
	Points     []geom.Point
	Views      []geom.View
	OrigPoints []geom.Point
	Centroid   r3.Vector
	Scale      float64
	ViewDists  *mat.Dense

	clusters     [][]int
	droppedViews []int

	cfg    Config
	logger *zap.SugaredLogger
}

// NewCloud returns an empty Cloud with DefaultConfig() and the given
// logger. A nil logger is replaced with a no-op one.
func NewCloud(logger *zap.SugaredLogger) *Cloud {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Cloud{cfg: DefaultConfig(), logger: logger}
}

// WithConfig replaces the Cloud's Config and returns the Cloud for
// chaining.
func (c *Cloud) WithConfig(cfg Config) *Cloud {
	c.cfg = cfg
	return c
}

// Load ingests points and views: validates every ViewList entry references
// an in-range view, deduplicates/sorts each point's ViewList, and copies
// both slices defensively so the caller's originals are never mutated by
// the pipeline.
func (c *Cloud) Load(points []geom.Point, views []geom.View) error {
	if len(points) == 0 || len(views) == 0 {
		return ErrEmptyInput
	}
	c.logger.Debugw("loading points and views", "points", len(points), "views", len(views))

	ptsCopy := make([]geom.Point, len(points))
	for i, p := range points {
		vl := geom.DedupeSortedInts(p.ViewList)
		for _, v := range vl {
			if v < 0 || v >= len(views) {
				return errors.Errorf("viewcluster: point %d references out-of-range view %d", i, v)
			}
		}
		ptsCopy[i] = geom.Point{Pos: p.Pos, ViewList: vl}
	}
	viewsCopy := make([]geom.View, len(views))
	for i, v := range views {
		viewsCopy[i] = geom.NewView(i, v.Center, v.ViewPoints)
	}

	c.Points = ptsCopy
	c.Views = viewsCopy
	c.OrigPoints = nil
	c.ViewDists = nil
	c.clusters = nil
	c.droppedViews = nil
	return nil
}

// ComputeInformation runs normalization, voxel-grid downsampling, and the
// view-distance matrix, in that order. It is a precondition for
// ClusterViews/ClusterViewsSubset.
func (c *Cloud) ComputeInformation() error {
	if len(c.Points) == 0 || len(c.Views) == 0 {
		return ErrEmptyInput
	}
	if c.cfg.VoxelSize <= 0 {
		return ErrInvalidVoxelSize
	}
	start := time.Now()
	c.logger.Debugw("computing information", "points", len(c.Points), "views", len(c.Views))

	centroid, scale, err := normalize.Normalize(c.Points, c.Views)
	if err != nil {
		return errors.Wrap(err, "viewcluster: normalize")
	}
	c.Centroid = centroid
	c.Scale = scale

	key := voxelgrid.KeyFunc(voxelgrid.CollidingKey)
	if c.cfg.VoxelKeyFix {
		key = voxelgrid.StridedKey
	}
	filtered, err := voxelgrid.Filter(c.Points, c.Views, c.cfg.VoxelSize, key)
	if err != nil {
		return errors.Wrap(err, "viewcluster: voxel filter")
	}
	c.OrigPoints = c.Points
	c.Points = filtered

	c.ViewDists = computeViewDists(c.Views)

	c.logger.Debugw("computed information",
		"filteredPoints", len(c.Points), "elapsed", time.Since(start))
	return nil
}

// computeViewDists fills the dense symmetric N×N matrix of Euclidean
// distances between view centers. The diagonal is left at its zero value.
func computeViewDists(views []geom.View) *mat.Dense {
	n := len(views)
	d := mat.NewDense(n, n, nil)
	parallel.Rows(n, func(from, to int) {
		for i := from; i < to; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				d.Set(i, j, views[i].Center.Distance(views[j].Center))
			}
		}
	})
	return d
}

// identityRemap returns the bijection xId→vId over every view, in order.
func identityRemap(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

// ClusterViews clusters the entire view set. minSize/maxSize of 0 fall back
// to the Cloud's Config.
func (c *Cloud) ClusterViews(minSize, maxSize int) error {
	return c.ClusterViewsSubset(identityRemap(len(c.Views)), minSize, maxSize)
}

// ClusterViewsSubset clusters the view subset named by xID2vID (xID2vID[x]
// is the view id for subset index x), building the similarity matrix,
// running Affinity Propagation, and finalizing clusters against the
// min/max size bounds. minSize/maxSize of 0 fall back to the Cloud's
// Config. Results are available afterward from FinalClusters and
// ClusterStats.
func (c *Cloud) ClusterViewsSubset(xID2vID []int, minSize, maxSize int) error {
	if c.ViewDists == nil {
		return errors.New("viewcluster: ComputeInformation must run before clustering")
	}
	minSize, maxSize = clusterBounds(c.cfg, minSize, maxSize)
	if minSize <= 0 || maxSize == 0 || minSize > maxSize {
		return ErrInvalidClusterBounds
	}
	if len(xID2vID) == 0 {
		return ErrEmptyInput
	}
	start := time.Now()
	c.logger.Debugw("clustering views", "subset", len(xID2vID), "minSize", minSize, "maxSize", maxSize)

	s := similarity.BuildMatrix(c.Points, c.Views, c.ViewDists, xID2vID, similarity.Config{
		AngleSigma2:        c.cfg.AngleSigma2,
		DiagonalPreference: c.cfg.DiagonalPreference,
	})
	apResult := affinityprop.Run(s, affinityprop.Config{NumIter: c.cfg.NumIter, Lambda: c.cfg.Lambda})

	clusters, dropped := cluster.Finalize(s, apResult.R, apResult.A, c.ViewDists, xID2vID, minSize, maxSize)
	c.clusters = clusters
	c.droppedViews = dropped

	c.logger.Debugw("clustered views",
		"clusters", len(clusters), "droppedViews", len(dropped), "elapsed", time.Since(start))
	return nil
}

// FinalClusters returns the clusters produced by the most recent
// ClusterViews/ClusterViewsSubset call: each a sorted, distinct list of
// view ids, in arbitrary cluster order. Denormalize must have already run
// (via ComputeInformation's inverse, see Denormalize) for positions to be
// in the caller's original coordinate frame; cluster membership itself is
// coordinate-independent.
func (c *Cloud) FinalClusters() [][]int {
	out := make([][]int, len(c.clusters))
	for i, cl := range c.clusters {
		out[i] = append([]int(nil), cl...)
	}
	return out
}

// DroppedViews returns the view ids excluded from every cluster because
// their below-minimum-size cluster could not be merged without exceeding
// the maximum.
func (c *Cloud) DroppedViews() []int {
	return append([]int(nil), c.droppedViews...)
}

// Denormalize restores Points, OrigPoints, and Views to the caller's
// original coordinate frame using the centroid/scale recorded by
// ComputeInformation. It is not idempotent: calling it twice applies the
// inverse transform twice; call it exactly once after clustering.
func (c *Cloud) Denormalize() {
	normalize.Denormalize(c.Points, c.Views, c.Centroid, c.Scale)
	normalize.Denormalize(c.OrigPoints, nil, c.Centroid, c.Scale)
}

// ClusterStats summarizes the most recent FinalClusters() result: count,
// per-cluster sizes sorted ascending, and the min/max/median size. This is
// an observability aid for the CLI driver and adds no clustering semantics.
type ClusterStats struct {
	Count      int
	Sizes      []int
	MinSize    int
	MaxSize    int
	MedianSize float64
	Dropped    int
}

// ClusterStats computes a ClusterStats summary over the current clusters.
func (c *Cloud) ClusterStats() ClusterStats {
	stats := ClusterStats{Count: len(c.clusters), Dropped: len(c.droppedViews)}
	if len(c.clusters) == 0 {
		return stats
	}
	sizes := make([]int, len(c.clusters))
	for i, cl := range c.clusters {
		sizes[i] = len(cl)
	}
	sort.Ints(sizes)
	stats.Sizes = sizes
	stats.MinSize = sizes[0]
	stats.MaxSize = sizes[len(sizes)-1]
	mid := len(sizes) / 2
	if len(sizes)%2 == 0 {
		stats.MedianSize = float64(sizes[mid-1]+sizes[mid]) / 2
	} else {
		stats.MedianSize = float64(sizes[mid])
	}
	return stats
}
