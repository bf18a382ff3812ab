// Package viewport implements the zoom/pan transform that maps canvas
// coordinates to screen coordinates.
//
// All functions are pure geometry over a [Viewport] value. They never touch
// the node collections or the undo history; the engine wraps them and
// publishes the resulting zoom and pan events.
//
// # Transform
//
// A canvas point p maps to the screen point:
//
//	screen = p*Zoom + Offset
//
// # Zooming About a Point
//
// [Viewport.ZoomBy] keeps a screen point fixed while the zoom changes by
// shifting the offset:
//
//	offset -= center * (newZoom - oldZoom) / oldZoom
//
// A nil center means "no anchor". A center of (0, 0) is a real anchor.
package viewport

import "math"

// Default zoom limits.
const (
	DefaultMinZoom = 0.1
	DefaultMaxZoom = 5.0
)

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the rectangle's center point.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Bounds returns the smallest rectangle containing every rect.
// The zero Rect is returned for empty input.
func Bounds(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, r := range rects {
		minX = min(minX, r.X)
		minY = min(minY, r.Y)
		maxX = max(maxX, r.Right())
		maxY = max(maxY, r.Bottom())
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Limits bounds the zoom factor.
type Limits struct {
	Min float64 `json:"min" toml:"min_zoom"`
	Max float64 `json:"max" toml:"max_zoom"`
}

// DefaultLimits returns the default [DefaultMinZoom, DefaultMaxZoom] range.
func DefaultLimits() Limits {
	return Limits{Min: DefaultMinZoom, Max: DefaultMaxZoom}
}

// Clamp restricts z to [Min, Max].
func (l Limits) Clamp(z float64) float64 {
	return max(l.Min, min(l.Max, z))
}

// Valid reports whether the limits describe a usable, non-empty range.
func (l Limits) Valid() bool {
	return l.Min > 0 && l.Max >= l.Min && !math.IsInf(l.Max, 0)
}

// Viewport is the zoom factor and pan offset of a canvas.
// The zero value is not usable; use [New].
type Viewport struct {
	Zoom    float64 `json:"zoom"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// New returns the identity viewport: zoom 1, no offset.
func New() Viewport {
	return Viewport{Zoom: 1}
}

// ZoomBy multiplies the zoom by factor and clamps it to lim.
//
// If center is non-nil the offset is adjusted so the given screen point stays
// fixed. Non-positive or non-finite factors are ignored. ZoomBy reports
// whether the zoom changed.
func (v *Viewport) ZoomBy(factor float64, center *Point, lim Limits) bool {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return false
	}

	oldZoom := v.Zoom
	newZoom := lim.Clamp(oldZoom * factor)
	if newZoom == oldZoom {
		return false
	}

	if center != nil && oldZoom != 0 {
		ratio := (newZoom - oldZoom) / oldZoom
		v.OffsetX -= center.X * ratio
		v.OffsetY -= center.Y * ratio
	}
	v.Zoom = newZoom
	return true
}

// SetZoom sets the zoom directly, clamped to lim, without moving the offset.
func (v *Viewport) SetZoom(z float64, lim Limits) {
	v.Zoom = lim.Clamp(z)
}

// Pan adds the deltas to the offset.
func (v *Viewport) Pan(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// Fit zooms and pans so that every rect fits inside a width×height screen
// with padding on each side.
//
// The zoom is min(scaleX, scaleY, 1): content is only ever zoomed out to
// fit, never magnified past 1:1. The result is clamped to lim and the
// content is centered. Fit is a no-op returning false for empty input.
func (v *Viewport) Fit(rects []Rect, width, height, padding float64, lim Limits) bool {
	if len(rects) == 0 {
		return false
	}

	b := Bounds(rects)
	contentW := b.Width + 2*padding
	contentH := b.Height + 2*padding

	zoom := min(width/contentW, height/contentH, 1)
	zoom = lim.Clamp(zoom)

	v.Zoom = zoom
	v.OffsetX = (width-b.Width*zoom)/2 - b.X*zoom
	v.OffsetY = (height-b.Height*zoom)/2 - b.Y*zoom
	return true
}

// CanvasToScreen maps a canvas point to screen coordinates.
func (v Viewport) CanvasToScreen(p Point) Point {
	return Point{X: p.X*v.Zoom + v.OffsetX, Y: p.Y*v.Zoom + v.OffsetY}
}

// ScreenToCanvas maps a screen point back to canvas coordinates.
func (v Viewport) ScreenToCanvas(p Point) Point {
	if v.Zoom == 0 {
		return p
	}
	return Point{X: (p.X - v.OffsetX) / v.Zoom, Y: (p.Y - v.OffsetY) / v.Zoom}
}
