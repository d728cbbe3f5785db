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

// DrawAgent marks the agent's start with a square and its goal with a ring.
func DrawAgent(gtx layout.Context, a *core.Agent, pos map[core.Node]state.Pos, camera *interact.Camera) {
	sx, sy := camera.WorldToScreen(pos[a.Start].X, pos[a.Start].Y)
	drawSquareOutline(gtx, sx, sy, 2.4*NodeRadius*camera.Zoom, 2*camera.Zoom, ColorStart)

	gx, gy := camera.WorldToScreen(pos[a.Goal].X, pos[a.Goal].Y)
	DrawRing(gtx, gx, gy, 1.4*NodeRadius*camera.Zoom, 2*camera.Zoom, ColorGoal)
}

// DrawSelection rings the inspected node.
func DrawSelection(gtx layout.Context, n core.Node, pos map[core.Node]state.Pos, camera *interact.Camera) {
	x, y := camera.WorldToScreen(pos[n].X, pos[n].Y)
	DrawRing(gtx, x, y, 1.8*NodeRadius*camera.Zoom, 1.5*camera.Zoom, ColorSelected)
}

// DrawRing draws a circle outline.
func DrawRing(gtx layout.Context, cx, cy, radius, stroke float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	circle(&path, cx, cy, radius)
	// The inner circle is wound the other way to cut the hole.
	inner := max(radius-stroke, 0)
	path.MoveTo(f32.Pt(cx+inner, cy))
	const segments = 24
	for i := segments - 1; i >= 0; i-- {
		angle := float64(i) * 2 * math.Pi / segments
		path.LineTo(f32.Pt(cx+inner*float32(math.Cos(angle)), cy+inner*float32(math.Sin(angle))))
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func circle(path *clip.Path, cx, cy, radius float32) {
	const segments = 24
	path.MoveTo(f32.Pt(cx+radius, cy))
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / segments
		path.LineTo(f32.Pt(cx+radius*float32(math.Cos(angle)), cy+radius*float32(math.Sin(angle))))
	}
	path.Close()
}

func drawSquareOutline(gtx layout.Context, cx, cy, size, stroke float32, col color.NRGBA) {
	h := size / 2
	drawLine(gtx, cx-h, cy-h, cx+h, cy-h, stroke, col)
	drawLine(gtx, cx+h, cy-h, cx+h, cy+h, stroke, col)
	drawLine(gtx, cx+h, cy+h, cx-h, cy+h, stroke, col)
	drawLine(gtx, cx-h, cy+h, cx-h, cy-h, stroke, col)
}
