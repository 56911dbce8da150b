package render

import (
	"image/color"

	"github.com/decker502/cmdscene/pkg/linear"
	"github.com/decker502/cmdscene/pkg/scene"
)

// Segment is a projected edge in surface pixel coordinates.
type Segment struct {
	X0, Y0 float64
	X1, Y1 float64
	Color  color.RGBA
}

// ProjectObject projects obj's wireframe onto a width×height surface.
// Edges with an endpoint behind the near plane are dropped.
func ProjectObject(obj *scene.Object, cam *Camera, width, height int) []Segment {
	if obj == nil || width <= 0 || height <= 0 {
		return nil
	}

	var model, mvp linear.M4
	model.Model(obj.Position(), obj.Rotation())
	proj := cam.Projection()
	mvp.Mul(&proj, &model)

	geometry := obj.Geometry()
	type point struct {
		x, y    float64
		visible bool
	}
	points := make([]point, len(geometry.Vertices))
	w, h := float64(width), float64(height)
	near := cam.Near()
	for i, v := range geometry.Vertices {
		clip := mvp.Transform(v)
		// clip.w 等于观察空间深度
		if clip[3] < near {
			continue
		}
		ndcX, ndcY := clip[0]/clip[3], clip[1]/clip[3]
		points[i] = point{
			x:       (ndcX + 1) / 2 * w,
			y:       (1 - ndcY) / 2 * h,
			visible: true,
		}
	}

	segments := make([]Segment, 0, len(geometry.Edges))
	clr := obj.Color()
	for _, e := range geometry.Edges {
		a, b := points[e[0]], points[e[1]]
		if !a.visible || !b.visible {
			continue
		}
		segments = append(segments, Segment{X0: a.x, Y0: a.y, X1: b.x, Y1: b.y, Color: clr})
	}
	return segments
}

// ProjectScene projects every object in s, in scene order.
func ProjectScene(s *scene.Scene, cam *Camera, width, height int) []Segment {
	var segments []Segment
	for _, obj := range s.Objects() {
		segments = append(segments, ProjectObject(obj, cam, width, height)...)
	}
	return segments
}
