package engine

import (
	"github.com/matzehuels/mapwright/pkg/event"
	"github.com/matzehuels/mapwright/pkg/viewport"
)

// Viewport returns the current zoom and pan offset.
func (e *Engine) Viewport() viewport.Viewport { return e.canvas.Viewport }

// Zoom multiplies the zoom by factor, clamped to the zoom limits, keeping
// the pan offset. It reports whether the zoom changed.
func (e *Engine) Zoom(factor float64) bool {
	return e.zoom(factor, nil)
}

// ZoomAt zooms like Zoom but keeps the screen point (cx, cy) fixed.
// (0, 0) is a valid anchor.
func (e *Engine) ZoomAt(factor, cx, cy float64) bool {
	return e.zoom(factor, &viewport.Point{X: cx, Y: cy})
}

func (e *Engine) zoom(factor float64, center *viewport.Point) bool {
	if !e.canvas.Viewport.ZoomBy(factor, center, e.limits) {
		return false
	}
	e.publish(event.CanvasZoom, e.canvas.Viewport)
	return true
}

// SetZoom sets the zoom level directly, clamped to the zoom limits.
func (e *Engine) SetZoom(z float64) {
	e.canvas.Viewport.SetZoom(z, e.limits)
	e.publish(event.CanvasZoom, e.canvas.Viewport)
}

// Pan moves the view by (dx, dy) screen units.
func (e *Engine) Pan(dx, dy float64) {
	e.canvas.Viewport.Pan(dx, dy)
	e.publish(event.CanvasPan, e.canvas.Viewport)
}

// FitToScreen zooms out and centers so every node fits a width×height
// screen with padding on each side. It never zooms in past 1:1 and does
// nothing on an empty canvas.
func (e *Engine) FitToScreen(width, height, padding float64) bool {
	nodes := e.doc.Nodes()
	rects := make([]viewport.Rect, len(nodes))
	for i := range nodes {
		rects[i] = nodes[i].Rect()
	}
	if !e.canvas.Viewport.Fit(rects, width, height, padding, e.limits) {
		return false
	}
	e.publish(event.CanvasZoom, e.canvas.Viewport)
	e.publish(event.CanvasPan, e.canvas.Viewport)
	return true
}

// ScreenToCanvas converts a screen point, such as a pointer position, into
// canvas coordinates under the current viewport.
func (e *Engine) ScreenToCanvas(x, y float64) viewport.Point {
	return e.canvas.Viewport.ScreenToCanvas(viewport.Point{X: x, Y: y})
}
