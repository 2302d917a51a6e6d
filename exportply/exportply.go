// Package exportply writes the color-coded PLY visualization of a
// clustering result: one vertex per view center, colored per cluster, plus
// an optional dump of the original (pre-voxelization) points in white.
//
// The per-cluster color is cosmetic, chosen independently of the
// clustering algorithm itself, so math/rand is used directly rather than
// anything seeded for reproducibility.
package exportply

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/pkg/errors"

	"github.com/mdaiter/domsetLibrary/geom"
)

// WriteViewClusters writes an ASCII PLY to w: a header declaring the total
// vertex count, then one line per view in each cluster (that view's camera
// center, colored with a random RGB triple shared by the whole cluster),
// then — if includePoints — one white line per point in points.
func WriteViewClusters(w io.Writer, clusters [][]int, views []geom.View, points []geom.Point, includePoints bool) error {
	totalViews := 0
	for _, cl := range clusters {
		totalViews += len(cl)
	}
	total := totalViews
	if includePoints {
		total += len(points)
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprint(bw, "ply\nformat ascii 1.0\n"); err != nil {
		return errors.Wrap(err, "exportply: write header")
	}
	fmt.Fprintf(bw, "element vertex %d\n", total)
	fmt.Fprint(bw, "property float x\nproperty float y\nproperty float z\n")
	fmt.Fprint(bw, "property uchar red\nproperty uchar green\nproperty uchar blue\n")
	fmt.Fprint(bw, "end_header\n")

	for _, cl := range clusters {
		red, green, blue := rand.Intn(255), rand.Intn(255), rand.Intn(255) //nolint:gosec
		for _, id := range cl {
			if id < 0 || id >= len(views) {
				return errors.Errorf("exportply: cluster references out-of-range view %d", id)
			}
			pos := views[id].Center
			fmt.Fprintf(bw, "%g %g %g %d %d %d\n", pos.X, pos.Y, pos.Z, red, green, blue)
		}
	}

	if includePoints {
		for _, p := range points {
			fmt.Fprintf(bw, "%g %g %g 255 255 255\n", p.Pos.X, p.Pos.Y, p.Pos.Z)
		}
	}

	return bw.Flush()
}

// WriteViewClustersFile is WriteViewClusters against a path, creating (or
// truncating) the file at path.
func WriteViewClustersFile(path string, clusters [][]int, views []geom.View, points []geom.Point, includePoints bool) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "exportply: create %s", path)
	}
	defer f.Close()
	return WriteViewClusters(f, clusters, views, points, includePoints)
}
