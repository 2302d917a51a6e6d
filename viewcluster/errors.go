package viewcluster

import "github.com/pkg/errors"

// Sentinel errors, checked by kind with errors.Is, recast here as
// recoverable failures rather than process termination.
var (
	ErrEmptyInput           = errors.New("viewcluster: zero points or zero views")
	ErrInvalidVoxelSize     = errors.New("viewcluster: voxel size must be > 0")
	ErrInvalidClusterBounds = errors.New("viewcluster: invalid cluster bounds (min>max or max=0)")
	ErrInvalidLambda        = errors.New("viewcluster: lambda must be in [0,1)")
)
