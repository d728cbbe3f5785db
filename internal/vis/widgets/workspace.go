// Package widgets provides Gio UI widgets for the visualizer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/mapf-reach/internal/vis/draw"
	"github.com/elektrokombinacija/mapf-reach/internal/vis/interact"
	"github.com/elektrokombinacija/mapf-reach/internal/vis/state"
)

// Workspace draws the graph with the selected agent's reachable nodes.
type Workspace struct {
	state  *state.State
	camera *interact.Camera
}

// NewWorkspace creates a new workspace widget.
func NewWorkspace(st *state.State, camera *interact.Camera) *Workspace {
	return &Workspace{
		state:  st,
		camera: camera,
	}
}

// Layout renders the workspace.
func (w *Workspace) Layout(gtx layout.Context) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()

	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	minX, minY, maxX, maxY := w.state.Bounds()
	w.camera.Fit(minX, minY, maxX, maxY, float32(bounds.X), float32(bounds.Y))

	w.handlePointerEvents(gtx)

	s := w.state
	draw.DrawGraph(gtx, s.Instance.Graph, s.Layout, w.camera, s.Reachable())
	if a := s.Agent(); a != nil {
		draw.DrawAgent(gtx, a, s.Layout, w.camera)
	}
	if s.HasSelected {
		draw.DrawSelection(gtx, s.Selected, s.Layout, w.camera)
	}

	return layout.Dimensions{Size: bounds}
}

func (w *Workspace) handlePointerEvents(gtx layout.Context) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -10, Max: 10},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		w.camera.HandleEvent(pe)
		if pe.Kind == pointer.Press && pe.Buttons.Contain(pointer.ButtonPrimary) {
			w.handleClick(pe.Position.X, pe.Position.Y)
		}
	}
}

func (w *Workspace) handleClick(screenX, screenY float32) {
	if n, ok := draw.FindNodeAt(screenX, screenY, w.state.Layout, w.camera); ok {
		w.state.Select(n)
		return
	}
	w.state.ClearSelection()
}
