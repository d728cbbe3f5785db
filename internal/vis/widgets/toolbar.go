package widgets

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/mapf-reach/internal/vis/state"
)

// Toolbar provides playback and agent controls plus a status line.
type Toolbar struct {
	state *state.State

	playBtn      widget.Clickable
	resetBtn     widget.Clickable
	stepFwdBtn   widget.Clickable
	stepBackBtn  widget.Clickable
	speedUpBtn   widget.Clickable
	speedDownBtn widget.Clickable
	prevAgentBtn widget.Clickable
	nextAgentBtn widget.Clickable
}

// NewToolbar creates a new toolbar.
func NewToolbar(st *state.State) *Toolbar {
	return &Toolbar{
		state: st,
	}
}

// Layout renders the toolbar.
func (t *Toolbar) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	const height = 48
	paint.FillShape(gtx.Ops, color.NRGBA{R: 40, G: 43, B: 48, A: 255},
		clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, height)).Op())

	t.handleClicks(gtx)

	play := ">"
	if t.state.Playback.Playing {
		play = "||"
	}
	return layout.Inset{Left: unit.Dp(10), Right: unit.Dp(10), Top: unit.Dp(8), Bottom: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			t.button(th, &t.stepBackBtn, "|<"),
			spacer(4),
			t.button(th, &t.playBtn, play),
			spacer(4),
			t.button(th, &t.stepFwdBtn, ">|"),
			spacer(4),
			t.button(th, &t.resetBtn, "[]"),
			spacer(12),
			t.button(th, &t.speedDownBtn, "-"),
			spacer(4),
			t.button(th, &t.speedUpBtn, "+"),
			spacer(12),
			t.button(th, &t.prevAgentBtn, "<A"),
			spacer(4),
			t.button(th, &t.nextAgentBtn, "A>"),
			spacer(16),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				l := material.Label(th, 13, Status(t.state))
				l.Color = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
				return l.Layout(gtx)
			}),
		)
	})
}

// Status describes the selected agent, the budget and the inspected node.
func Status(s *state.State) string {
	var sb strings.Builder
	if s.Reach != nil {
		fmt.Fprintf(&sb, "%s  ", s.Reach.Budget)
	}
	a := s.Agent()
	if a == nil {
		sb.WriteString("no agents")
		return sb.String()
	}
	fmt.Fprintf(&sb, "agent %s: %s -> %s  t=%d  reachable %d", a.ID, a.Start, a.Goal, s.Playback.Step(), len(s.Reachable()))
	if s.HasSelected {
		times := s.ReachTimes(s.Selected)
		ts := make([]string, len(times))
		for i, t := range times {
			ts[i] = fmt.Sprint(t)
		}
		fmt.Fprintf(&sb, "  node %s at t={%s}", s.Selected, strings.Join(ts, ","))
	}
	return sb.String()
}

func spacer(dp unit.Dp) layout.FlexChild {
	return layout.Rigid(layout.Spacer{Width: dp}.Layout)
}

func (t *Toolbar) button(th *material.Theme, btn *widget.Clickable, text string) layout.FlexChild {
	return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
		bg := color.NRGBA{R: 55, G: 58, B: 65, A: 255}
		if btn.Hovered() {
			bg = color.NRGBA{R: 70, G: 73, B: 80, A: 255}
		}
		return btn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Background{}.Layout(gtx,
				func(gtx layout.Context) layout.Dimensions {
					sz := image.Point{X: max(gtx.Constraints.Min.X, 32), Y: max(gtx.Constraints.Min.Y, 28)}
					paint.FillShape(gtx.Ops, bg, clip.Rect(image.Rectangle{Max: sz}).Op())
					return layout.Dimensions{Size: sz}
				},
				func(gtx layout.Context) layout.Dimensions {
					gtx.Constraints.Min = image.Point{X: 32, Y: 28}
					return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						l := material.Label(th, 12, text)
						l.Color = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
						return l.Layout(gtx)
					})
				},
			)
		})
	})
}

func (t *Toolbar) handleClicks(gtx layout.Context) {
	pb := t.state.Playback
	for t.playBtn.Clicked(gtx) {
		pb.TogglePlay()
	}
	for t.resetBtn.Clicked(gtx) {
		pb.Reset()
	}
	for t.stepFwdBtn.Clicked(gtx) {
		pb.StepForward()
	}
	for t.stepBackBtn.Clicked(gtx) {
		pb.StepBack()
	}
	for t.speedUpBtn.Clicked(gtx) {
		pb.SetSpeed(pb.Speed * 1.5)
	}
	for t.speedDownBtn.Clicked(gtx) {
		pb.SetSpeed(pb.Speed / 1.5)
	}
	for t.prevAgentBtn.Clicked(gtx) {
		t.state.PrevAgent()
	}
	for t.nextAgentBtn.Clicked(gtx) {
		t.state.NextAgent()
	}
}
