package viewcluster

import (
	"go.uber.org/multierr"

	"github.com/mdaiter/domsetLibrary/similarity"
)

// Default parameter values, named rather than left as call-site magic
// numbers.
const (
	DefaultVoxelSize      = 0.1
	DefaultAngleSigma2    = 0.3
	DefaultNumIter        = 100
	DefaultLambda         = 0.5
	DefaultMinClusterSize = 1
	DefaultMaxClusterSize = 20
)

// Config bundles every tunable recognized by the pipeline.
type Config struct {
	VoxelSize      float64 // cubic voxel edge, applied after normalization
	AngleSigma2    float64 // denominator of the view-coverage angle kernel
	NumIter        int     // AP responsibility/availability rounds
	Lambda         float64 // AP damping factor, in [0,1)
	MinClusterSize int
	MaxClusterSize int

	// VoxelKeyFix switches the voxel filter from the source's colliding
	// linear index to the corrected strided one (see voxelgrid.StridedKey).
	// Default false reproduces the source.
	VoxelKeyFix bool
	// DiagonalPreference selects what the similarity matrix's diagonal
	// holds; default PreferenceZero matches the source.
	DiagonalPreference similarity.DiagonalMode
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		VoxelSize:      DefaultVoxelSize,
		AngleSigma2:    DefaultAngleSigma2,
		NumIter:        DefaultNumIter,
		Lambda:         DefaultLambda,
		MinClusterSize: DefaultMinClusterSize,
		MaxClusterSize: DefaultMaxClusterSize,
	}
}

// Validate checks every field independently, combining all violations with
// multierr rather than stopping at the first.
func (c Config) Validate() error {
	var errs error
	if c.VoxelSize <= 0 {
		errs = multierr.Append(errs, ErrInvalidVoxelSize)
	}
	if c.MinClusterSize <= 0 || c.MaxClusterSize == 0 || c.MinClusterSize > c.MaxClusterSize {
		errs = multierr.Append(errs, ErrInvalidClusterBounds)
	}
	if c.Lambda < 0 || c.Lambda >= 1 {
		errs = multierr.Append(errs, ErrInvalidLambda)
	}
	return errs
}

// clusterBounds resolves the min/max cluster size to use for a
// ClusterViews call: explicit non-zero arguments win, otherwise the
// Cloud's Config supplies the default.
func clusterBounds(cfg Config, minSize, maxSize int) (int, int) {
	if minSize <= 0 {
		minSize = cfg.MinClusterSize
	}
	if maxSize <= 0 {
		maxSize = cfg.MaxClusterSize
	}
	return minSize, maxSize
}
