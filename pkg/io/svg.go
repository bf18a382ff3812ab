package io

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/mapwright/pkg/graph"
)

// Default SVG dimensions used by [Export] when Options leaves them unset.
const (
	DefaultSVGWidth  = 800.0
	DefaultSVGHeight = 600.0
)

const (
	arrowLength    = 10.0
	arrowSpread    = math.Pi / 6
	defaultFont    = 14.0
	svgFontFamily  = "sans-serif"
	svgBackground  = "#ffffff"
	svgNodeFill    = "#ffffff"
	svgNodeBorder  = "#333333"
	svgEdgeColor   = "#666666"
	svgLabelColor  = "#333333"
	svgCornerRound = 6.0
)

// ExportSVG draws snap as a static SVG of the given size using only rect,
// line, polygon and text elements.
//
// Positions are translated by the viewport pan offset but not scaled by its
// zoom. Edges run between node centers; the arrowhead tip sits on the
// border of the target node.
func ExportSVG(snap graph.Snapshot, width, height float64) string {
	dx, dy := snap.Viewport.OffsetX, snap.Viewport.OffsetY
	nodes := snap.NodeIndex()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(width), num(height), num(width), num(height))
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n",
		num(width), num(height), attr(or(snap.Background, svgBackground)))

	for _, e := range snap.Edges {
		from, to := nodes[e.From], nodes[e.To]
		if from == nil || to == nil {
			continue
		}
		writeSVGEdge(&buf, e, from, to, dx, dy)
	}
	for _, n := range snap.Nodes {
		writeSVGNode(&buf, n, dx, dy)
	}

	buf.WriteString("</svg>\n")
	return buf.String()
}

func writeSVGEdge(buf *bytes.Buffer, e graph.Edge, from, to *graph.Node, dx, dy float64) {
	a, b := from.Center(), to.Center()
	x1, y1 := a.X+dx, a.Y+dy
	x2, y2 := b.X+dx, b.Y+dy
	color := or(e.Style.Color, svgEdgeColor)
	width := e.Style.Width
	if width <= 0 {
		width = 1
	}

	fmt.Fprintf(buf, `  <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"/>`+"\n",
		num(x1), num(y1), num(x2), num(y2), attr(color), num(width))

	if !e.Arrow.Visible || e.Arrow.Kind == graph.ArrowNone {
		return
	}
	if x1 == x2 && y1 == y2 {
		return
	}

	angle := math.Atan2(y2-y1, x2-x1)
	tx, ty := clipToRect(x1, y1, x2, y2, to.Size.Width/2, to.Size.Height/2)
	var pts []string
	pts = append(pts, num(tx)+","+num(ty))
	for _, side := range []float64{-1, 1} {
		wing := angle + math.Pi + side*arrowSpread
		pts = append(pts, num(tx+arrowLength*math.Cos(wing))+","+num(ty+arrowLength*math.Sin(wing)))
	}
	fmt.Fprintf(buf, `  <polygon points="%s" fill="%s"/>`+"\n", strings.Join(pts, " "), attr(color))
}

// clipToRect moves the segment end (x2, y2), the center of a box with the
// given half extents, back along the segment onto the box border.
func clipToRect(x1, y1, x2, y2, hw, hh float64) (float64, float64) {
	ddx, ddy := x2-x1, y2-y1
	if hw <= 0 || hh <= 0 {
		return x2, y2
	}
	t := math.Inf(1)
	if ddx != 0 {
		t = math.Min(t, hw/math.Abs(ddx))
	}
	if ddy != 0 {
		t = math.Min(t, hh/math.Abs(ddy))
	}
	if t >= 1 {
		return x2, y2
	}
	return x2 - ddx*t, y2 - ddy*t
}

func writeSVGNode(buf *bytes.Buffer, n graph.Node, dx, dy float64) {
	x, y := n.Position.X+dx, n.Position.Y+dy
	bw := n.Style.BorderWidth
	if bw <= 0 {
		bw = 1
	}
	fmt.Fprintf(buf, `  <rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
		num(x), num(y), num(n.Size.Width), num(n.Size.Height), num(svgCornerRound),
		attr(or(n.Style.Fill, svgNodeFill)), attr(or(n.Style.Border, svgNodeBorder)), num(bw))

	font := n.FontSize
	if font <= 0 {
		font = defaultFont
	}
	c := n.Center()
	fmt.Fprintf(buf, `  <text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="%s" fill="%s">`,
		num(c.X+dx), num(c.Y+dy), svgFontFamily, num(font), svgLabelColor)
	xml.EscapeText(buf, []byte(oneLine(n.DisplayLabel())))
	buf.WriteString("</text>\n")
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100+0, 'f', -1, 64)
}

func attr(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
