package scene

import (
	"math"

	"github.com/decker502/cmdscene/pkg/linear"
)

// GeometryKind 几何体类型
type GeometryKind string

const (
	// GeometryBox 立方体/长方体
	GeometryBox GeometryKind = "box"
	// GeometryTorus 圆环
	GeometryTorus GeometryKind = "torus"
)

// Edge joins two vertices of a Geometry by index.
type Edge [2]int

// Geometry is a wireframe mesh in object space: vertices plus the
// edges that connect them.
type Geometry struct {
	Kind     GeometryKind
	Vertices []linear.V3
	Edges    []Edge
}

// NewBoxGeometry builds an axis-aligned box centered at the origin.
//
// Parameters:
//   - width, height, depth: extents along x, y and z
func NewBoxGeometry(width, height, depth float64) Geometry {
	hx, hy, hz := width/2, height/2, depth/2
	vertices := []linear.V3{
		{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {-hx, hy, -hz},
		{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz},
	}
	edges := []Edge{
		// back face
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		// front face
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		// connecting edges
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	return Geometry{Kind: GeometryBox, Vertices: vertices, Edges: edges}
}

// NewTorusGeometry builds a torus lying in the xy plane.
//
// Parameters:
//   - radius: distance from the torus center to the tube center
//   - tube: radius of the tube
//   - radialSegments: segments around the tube cross-section (min 3)
//   - tubularSegments: segments along the ring (min 3)
func NewTorusGeometry(radius, tube float64, radialSegments, tubularSegments int) Geometry {
	if radialSegments < 3 {
		radialSegments = 3
	}
	if tubularSegments < 3 {
		tubularSegments = 3
	}

	vertices := make([]linear.V3, 0, radialSegments*tubularSegments)
	for j := 0; j < radialSegments; j++ {
		v := float64(j) / float64(radialSegments) * 2 * math.Pi
		for i := 0; i < tubularSegments; i++ {
			u := float64(i) / float64(tubularSegments) * 2 * math.Pi
			vertices = append(vertices, linear.V3{
				(radius + tube*math.Cos(v)) * math.Cos(u),
				(radius + tube*math.Cos(v)) * math.Sin(u),
				tube * math.Sin(v),
			})
		}
	}

	index := func(j, i int) int {
		return (j%radialSegments)*tubularSegments + i%tubularSegments
	}
	edges := make([]Edge, 0, 2*radialSegments*tubularSegments)
	for j := 0; j < radialSegments; j++ {
		for i := 0; i < tubularSegments; i++ {
			// 沿圆环方向
			edges = append(edges, Edge{index(j, i), index(j, i+1)})
			// 沿管截面方向
			edges = append(edges, Edge{index(j, i), index(j+1, i)})
		}
	}
	return Geometry{Kind: GeometryTorus, Vertices: vertices, Edges: edges}
}
