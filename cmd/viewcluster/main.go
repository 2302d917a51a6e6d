// Package main is a command that clusters the views of a point cloud and
// writes a color-coded PLY of the result.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mdaiter/domsetLibrary/exportply"
	"github.com/mdaiter/domsetLibrary/geom"
	"github.com/mdaiter/domsetLibrary/viewcluster"
)

func main() {
	inPath := flag.String("in", "", "input PLY point cloud")
	outPath := flag.String("out", "clusters.ply", "output color-coded PLY")
	numViews := flag.Int("views", 8, "number of synthetic cameras ringed around the cloud (camera calibration is out of scope)")
	voxelSize := flag.Float64("voxel", viewcluster.DefaultVoxelSize, "voxel size, applied after normalization")
	minSize := flag.Int("min", viewcluster.DefaultMinClusterSize, "minimum cluster size")
	maxSize := flag.Int("max", viewcluster.DefaultMaxClusterSize, "maximum cluster size")
	includePoints := flag.Bool("include-points", true, "include white point vertices in the export")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: viewcluster -in <input.ply> [-out <output.ply>]")
		os.Exit(1)
	}

	zapLogger := zap.Must(zap.NewProduction())
	defer zapLogger.Sync() //nolint:errcheck
	logger := zapLogger.Sugar().With("run", uuid.New().String())

	points, err := loadPoints(*inPath)
	if err != nil {
		logger.Fatalw("failed to read input cloud", "error", err)
	}
	views := ringViews(points, *numViews)
	for i := range points {
		points[i].ViewList = allIndices(len(views))
	}

	cloud := viewcluster.NewCloud(logger).WithConfig(viewcluster.Config{
		VoxelSize:      *voxelSize,
		AngleSigma2:    viewcluster.DefaultAngleSigma2,
		NumIter:        viewcluster.DefaultNumIter,
		Lambda:         viewcluster.DefaultLambda,
		MinClusterSize: *minSize,
		MaxClusterSize: *maxSize,
	})

	if err := cloud.Load(points, views); err != nil {
		logger.Fatalw("load failed", "error", err)
	}
	if err := cloud.ComputeInformation(); err != nil {
		logger.Fatalw("computeInformation failed", "error", err)
	}
	if err := cloud.ClusterViews(0, 0); err != nil {
		logger.Fatalw("clustering failed", "error", err)
	}
	cloud.Denormalize()

	stats := cloud.ClusterStats()
	logger.Infow("clustering complete",
		"clusters", stats.Count, "dropped", stats.Dropped,
		"minSize", stats.MinSize, "maxSize", stats.MaxSize, "medianSize", stats.MedianSize)

	if err := exportply.WriteViewClustersFile(*outPath, cloud.FinalClusters(), cloud.Views, cloud.OrigPoints, *includePoints); err != nil {
		logger.Fatalw("export failed", "error", err)
	}
	logger.Infow("wrote export", "path", *outPath)
}

// loadPoints reads the vertex element of an ASCII PLY file into plain 3D
// positions. ViewList is left empty; the caller assigns views. Only the
// x/y/z vertex properties are read; any trailing properties (normals,
// color) are ignored. Binary PLY is out of scope.
func loadPoints(path string) ([]geom.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cmd/viewcluster: open %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var vertexCount int
	var props []string
	inVertexElement := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "end_header":
			goto headerDone
		case strings.HasPrefix(line, "element vertex "):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "element vertex "))
			if err != nil {
				return nil, errors.Wrapf(err, "cmd/viewcluster: parse vertex count %q", line)
			}
			vertexCount = n
			inVertexElement = true
		case strings.HasPrefix(line, "element "):
			inVertexElement = false
		case inVertexElement && strings.HasPrefix(line, "property "):
			fields := strings.Fields(line)
			props = append(props, fields[len(fields)-1])
		}
	}
headerDone:
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cmd/viewcluster: read header")
	}
	xi, yi, zi := indexOf(props, "x"), indexOf(props, "y"), indexOf(props, "z")
	if xi < 0 || yi < 0 || zi < 0 {
		return nil, errors.Errorf("cmd/viewcluster: %s: vertex element missing x/y/z properties", path)
	}

	points := make([]geom.Point, 0, vertexCount)
	for i := 0; i < vertexCount && scanner.Scan(); i++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) <= maxInt(xi, maxInt(yi, zi)) {
			return nil, errors.Errorf("cmd/viewcluster: %s: short vertex line %d", path, i)
		}
		x, err1 := strconv.ParseFloat(fields[xi], 64)
		y, err2 := strconv.ParseFloat(fields[yi], 64)
		z, err3 := strconv.ParseFloat(fields[zi], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, errors.Errorf("cmd/viewcluster: %s: non-numeric vertex line %d", path, i)
		}
		points = append(points, geom.Point{Pos: r3.Vector{X: x, Y: y, Z: z}})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cmd/viewcluster: read vertices")
	}
	return points, nil
}

func indexOf(ss []string, target string) int {
	for i, s := range ss {
		if s == target {
			return i
		}
	}
	return -1
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ringViews synthesizes numViews cameras evenly spaced on a circle around
// the cloud's bounding-box center, at 1.5x the box's largest extent.
// Camera calibration is out of scope; this gives the pipeline a view set
// to cluster when the input PLY carries points only.
func ringViews(points []geom.Point, numViews int) []geom.View {
	if numViews < 1 {
		numViews = 1
	}
	min := r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max := r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range points {
		min.X, max.X = math.Min(min.X, p.Pos.X), math.Max(max.X, p.Pos.X)
		min.Y, max.Y = math.Min(min.Y, p.Pos.Y), math.Max(max.Y, p.Pos.Y)
		min.Z, max.Z = math.Min(min.Z, p.Pos.Z), math.Max(max.Z, p.Pos.Z)
	}
	center := r3.Vector{X: (min.X + max.X) / 2, Y: (min.Y + max.Y) / 2, Z: (min.Z + max.Z) / 2}
	radius := math.Max(max.X-min.X, math.Max(max.Y-min.Y, max.Z-min.Z))
	if radius <= 0 {
		radius = 1
	}
	radius *= 1.5

	views := make([]geom.View, numViews)
	for i := range views {
		theta := 2 * math.Pi * float64(i) / float64(numViews)
		views[i] = geom.View{
			Index: i,
			Center: r3.Vector{
				X: center.X + radius*math.Cos(theta),
				Y: center.Y + radius*math.Sin(theta),
				Z: center.Z,
			},
		}
	}
	return views
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
