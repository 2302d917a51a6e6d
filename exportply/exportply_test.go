package exportply

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/mdaiter/domsetLibrary/geom"
)

func TestWriteViewClustersHeaderAndVertexCount(t *testing.T) {
	views := []geom.View{
		{Center: r3.Vector{X: 0, Y: 0, Z: 0}},
		{Center: r3.Vector{X: 1, Y: 0, Z: 0}},
		{Center: r3.Vector{X: 2, Y: 0, Z: 0}},
	}
	clusters := [][]int{{0, 1}, {2}}
	points := []geom.Point{
		{Pos: r3.Vector{X: 0, Y: 0, Z: 0}},
		{Pos: r3.Vector{X: 1, Y: 1, Z: 1}},
	}

	var buf bytes.Buffer
	err := WriteViewClusters(&buf, clusters, views, points, true)
	test.That(t, err, test.ShouldBeNil)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	test.That(t, lines[0], test.ShouldEqual, "ply")
	test.That(t, lines[1], test.ShouldEqual, "format ascii 1.0")
	test.That(t, lines[2], test.ShouldEqual, "element vertex 5") // 3 view verts + 2 points
	test.That(t, lines[len(lines)-1], test.ShouldEqual, "1 1 1 255 255 255")

	headerEnd := -1
	for i, l := range lines {
		if l == "end_header" {
			headerEnd = i
			break
		}
	}
	test.That(t, headerEnd >= 0, test.ShouldBeTrue)
	bodyLines := lines[headerEnd+1:]
	test.That(t, len(bodyLines), test.ShouldEqual, 5)
}

func TestWriteViewClustersRejectsOutOfRangeView(t *testing.T) {
	var buf bytes.Buffer
	err := WriteViewClusters(&buf, [][]int{{5}}, nil, nil, false)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestWriteViewClustersOmitsPointsWhenNotIncluded(t *testing.T) {
	views := []geom.View{{Center: r3.Vector{}}}
	var buf bytes.Buffer
	err := WriteViewClusters(&buf, [][]int{{0}}, views, []geom.Point{{}}, false)
	test.That(t, err, test.ShouldBeNil)

	scanner := bufio.NewScanner(&buf)
	var count int
	for scanner.Scan() {
		count++
	}
	// 10 header lines + 1 vertex line, no point line.
	test.That(t, count, test.ShouldEqual, 11)
}
