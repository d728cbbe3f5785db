// Package draw provides rendering functions for visualization.
package draw

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/mapf-reach/internal/core"
	"github.com/elektrokombinacija/mapf-reach/internal/vis/interact"
	"github.com/elektrokombinacija/mapf-reach/internal/vis/state"
)

// NodeRadius is the world radius of a drawn node.
const NodeRadius = 8

var (
	ColorNodeDefault   = color.NRGBA{R: 100, G: 120, B: 140, A: 255}
	ColorNodeReachable = color.NRGBA{R: 100, G: 200, B: 255, A: 255}
	ColorEdgeDefault   = color.NRGBA{R: 80, G: 90, B: 100, A: 180}
	ColorStart         = color.NRGBA{R: 80, G: 180, B: 100, A: 255}
	ColorGoal          = color.NRGBA{R: 255, G: 150, B: 100, A: 255}
	ColorSelected      = color.NRGBA{R: 255, G: 220, B: 80, A: 255}
)

// DrawGraph renders edges, then nodes, highlighting the reachable ones.
func DrawGraph(gtx layout.Context, g *core.Graph, pos map[core.Node]state.Pos, camera *interact.Camera, reachable map[core.Node]bool) {
	for _, e := range g.Edges() {
		DrawEdge(gtx, pos[e[0]], pos[e[1]], camera, ColorEdgeDefault)
	}
	for _, n := range g.Nodes() {
		col := ColorNodeDefault
		r := float32(NodeRadius) * 0.6
		if reachable[n] {
			col = ColorNodeReachable
			r = NodeRadius
		}
		x, y := camera.WorldToScreen(pos[n].X, pos[n].Y)
		drawFilledCircle(gtx, x, y, r*camera.Zoom, col)
	}
}

// DrawEdge draws an edge as a line between two positions.
func DrawEdge(gtx layout.Context, p1, p2 state.Pos, camera *interact.Camera, col color.NRGBA) {
	x1, y1 := camera.WorldToScreen(p1.X, p1.Y)
	x2, y2 := camera.WorldToScreen(p2.X, p2.Y)
	drawLine(gtx, x1, y1, x2, y2, 2*camera.Zoom, col)
}

// FindNodeAt returns the node drawn under the screen point.
func FindNodeAt(screenX, screenY float32, pos map[core.Node]state.Pos, camera *interact.Camera) (core.Node, bool) {
	r := float32(NodeRadius) * camera.Zoom
	best, bestD := core.Node(""), r*r
	found := false
	for n, p := range pos {
		x, y := camera.WorldToScreen(p.X, p.Y)
		dx, dy := screenX-x, screenY-y
		if d := dx*dx + dy*dy; d <= bestD {
			best, bestD, found = n, d, true
		}
	}
	return best, found
}

func drawLine(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 0.1 {
		return
	}

	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x1+px, y1+py))
	path.LineTo(f32.Pt(x2+px, y2+py))
	path.LineTo(f32.Pt(x2-px, y2-py))
	path.LineTo(f32.Pt(x1-px, y1-py))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawFilledCircle(gtx layout.Context, cx, cy, radius float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(cx+radius, cy))

	segments := 16
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		path.LineTo(f32.Pt(cx+radius*float32(math.Cos(angle)), cy+radius*float32(math.Sin(angle))))
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}
