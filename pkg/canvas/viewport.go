// Package canvas supplies the pure coordinate transform between screen space
// and graph space. The interactive canvas pans and zooms the graph; dropping
// a palette item at a pointer position needs the equivalent graph-space
// position for node insertion.
package canvas

import "github.com/guidely/automator/pkg/models"

// Point is a position in screen (pixel) space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScreenToGraph maps a pointer position to graph space under the given
// viewport. Inverse of GraphToScreen for any viewport with a positive zoom;
// a non-positive zoom is treated as 1:1.
func ScreenToGraph(p Point, vp models.Viewport) models.Position {
	zoom := vp.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	return models.Position{
		X: (p.X - vp.X) / zoom,
		Y: (p.Y - vp.Y) / zoom,
	}
}

// GraphToScreen maps a graph-space position to screen space under the given
// viewport.
func GraphToScreen(pos models.Position, vp models.Viewport) Point {
	zoom := vp.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	return Point{
		X: pos.X*zoom + vp.X,
		Y: pos.Y*zoom + vp.Y,
	}
}
