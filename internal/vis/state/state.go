// Package state manages the visualization state.
package state

import (
	"math"

	"github.com/elektrokombinacija/mapf-reach/internal/core"
)

// GridSpacing is the world distance between neighbouring grid cells.
const GridSpacing = 50.0

// Pos is a world position.
type Pos struct {
	X, Y float64
}

// State holds all visualization state.
type State struct {
	Instance *core.Instance
	Reach    *core.ReachSet
	Layout   map[core.Node]Pos
	Playback *PlaybackState

	agents []core.AgentID
	agent  int

	// byTime[agent][t] is the set of nodes the agent may occupy at t.
	byTime map[core.AgentID][]map[core.Node]bool

	Selected    core.Node
	HasSelected bool
}

// NewState indexes rs for playback over inst.
func NewState(inst *core.Instance, rs *core.ReachSet) *State {
	maxT := 0
	if rs != nil && rs.MaxTime() > 0 {
		maxT = rs.MaxTime()
	}
	s := &State{
		Instance: inst,
		Reach:    rs,
		Layout:   LayoutNodes(inst.Graph),
		Playback: NewPlaybackState(maxT),
		agents:   inst.Agents.IDs(),
		byTime:   make(map[core.AgentID][]map[core.Node]bool),
	}
	if rs == nil {
		return s
	}
	for _, e := range rs.Entries {
		steps := s.byTime[e.Agent]
		for len(steps) <= e.Time {
			steps = append(steps, make(map[core.Node]bool))
		}
		steps[e.Time][e.Node] = true
		s.byTime[e.Agent] = steps
	}
	return s
}

// LayoutNodes places "(x,y)" nodes on a grid. Graphs with any other node
// shape are laid out on a circle in insertion order.
func LayoutNodes(g *core.Graph) map[core.Node]Pos {
	nodes := g.Nodes()
	out := make(map[core.Node]Pos, len(nodes))

	grid := true
	for _, n := range nodes {
		x, y, ok := n.Coords()
		if !ok {
			grid = false
			break
		}
		out[n] = Pos{X: float64(x) * GridSpacing, Y: float64(y) * GridSpacing}
	}
	if grid {
		return out
	}

	// Keep neighbours on the circle about GridSpacing apart.
	radius := math.Max(2*GridSpacing, float64(len(nodes))*GridSpacing/(2*math.Pi))
	for i, n := range nodes {
		angle := 2 * math.Pi * float64(i) / float64(len(nodes))
		out[n] = Pos{X: radius + radius*math.Cos(angle), Y: radius + radius*math.Sin(angle)}
	}
	return out
}

// Bounds returns the world rectangle covering every node.
func (s *State) Bounds() (minX, minY, maxX, maxY float64) {
	first := true
	for _, p := range s.Layout {
		if first {
			minX, minY, maxX, maxY = p.X, p.Y, p.X, p.Y
			first = false
			continue
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}

// Agent returns the selected agent, or nil when the instance has none.
func (s *State) Agent() *core.Agent {
	if len(s.agents) == 0 {
		return nil
	}
	a, _ := s.Instance.Agents.ByID(s.agents[s.agent])
	return a
}

// NextAgent selects the next agent, wrapping around.
func (s *State) NextAgent() {
	if len(s.agents) > 0 {
		s.agent = (s.agent + 1) % len(s.agents)
	}
}

// PrevAgent selects the previous agent, wrapping around.
func (s *State) PrevAgent() {
	if len(s.agents) > 0 {
		s.agent = (s.agent + len(s.agents) - 1) % len(s.agents)
	}
}

// Reachable returns the nodes the selected agent may occupy at the current step.
func (s *State) Reachable() map[core.Node]bool {
	a := s.Agent()
	if a == nil {
		return nil
	}
	steps := s.byTime[a.ID]
	t := s.Playback.Step()
	if t >= len(steps) {
		return nil
	}
	return steps[t]
}

// ReachTimes returns the steps at which the selected agent may occupy n.
func (s *State) ReachTimes(n core.Node) []int {
	a := s.Agent()
	if a == nil {
		return nil
	}
	var times []int
	for t, nodes := range s.byTime[a.ID] {
		if nodes[n] {
			times = append(times, t)
		}
	}
	return times
}

// Select marks n as the inspected node.
func (s *State) Select(n core.Node) {
	s.Selected = n
	s.HasSelected = true
}

// ClearSelection drops the inspected node.
func (s *State) ClearSelection() {
	s.Selected = ""
	s.HasSelected = false
}
