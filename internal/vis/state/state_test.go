package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-reach/internal/core"
)

func lineState(t *testing.T) *State {
	t.Helper()
	b := core.NewBuilder()
	n0, n1, n2 := core.GridNode(0, 0), core.GridNode(1, 0), core.GridNode(2, 0)
	b.AddEdge(n0, n1)
	b.AddEdge(n1, n2)
	b.SetStart("1", n0)
	b.SetGoal("1", n2)
	b.SetStart("2", n2)
	b.SetGoal("2", n1)
	inst, err := b.Build()
	require.NoError(t, err)

	rs := core.NewReachSet(core.Budget{Objective: core.Makespan, Value: 2}, []core.Entry{
		{Agent: "1", Node: n0, Time: 0}, {Agent: "1", Node: n1, Time: 1}, {Agent: "1", Node: n2, Time: 2},
		{Agent: "2", Node: n2, Time: 0}, {Agent: "2", Node: n1, Time: 1},
		{Agent: "2", Node: n2, Time: 1}, {Agent: "2", Node: n1, Time: 2},
	})
	return NewState(inst, rs)
}

func TestLayoutGrid(t *testing.T) {
	s := lineState(t)
	assert.Equal(t, Pos{X: 2 * GridSpacing, Y: 0}, s.Layout[core.GridNode(2, 0)])

	minX, minY, maxX, maxY := s.Bounds()
	assert.Equal(t, [4]float64{0, 0, 2 * GridSpacing, 0}, [4]float64{minX, minY, maxX, maxY})
}

func TestLayoutCircle(t *testing.T) {
	g := core.NewGraph()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "(1,1)")

	layout := LayoutNodes(g)
	require.Len(t, layout, 4)
	seen := make(map[Pos]bool)
	for _, p := range layout {
		assert.False(t, seen[p], "nodes share position %v", p)
		seen[p] = true
	}
}

func TestReachableFollowsPlayback(t *testing.T) {
	s := lineState(t)
	assert.Equal(t, 2.0, s.Playback.MaxTime)
	assert.Equal(t, core.AgentID("1"), s.Agent().ID)
	assert.Equal(t, map[core.Node]bool{core.GridNode(0, 0): true}, s.Reachable())

	s.Playback.StepForward()
	assert.Equal(t, map[core.Node]bool{core.GridNode(1, 0): true}, s.Reachable())

	s.NextAgent()
	assert.Equal(t, core.AgentID("2"), s.Agent().ID)
	assert.Len(t, s.Reachable(), 2)
	assert.Equal(t, []int{1, 2}, s.ReachTimes(core.GridNode(1, 0)))

	s.NextAgent()
	assert.Equal(t, core.AgentID("1"), s.Agent().ID)
	s.PrevAgent()
	assert.Equal(t, core.AgentID("2"), s.Agent().ID)
}

func TestSelection(t *testing.T) {
	s := lineState(t)
	s.Select(core.GridNode(1, 0))
	assert.True(t, s.HasSelected)
	assert.Equal(t, []int{1}, s.ReachTimes(s.Selected))
	s.ClearSelection()
	assert.False(t, s.HasSelected)
}

func TestPlaybackSteps(t *testing.T) {
	p := NewPlaybackState(3)
	p.StepBack()
	assert.Equal(t, 0, p.Step())

	p.StepForward()
	p.StepForward()
	assert.Equal(t, 2, p.Step())

	p.SetTime(1.5)
	p.StepBack()
	assert.Equal(t, 1, p.Step())
	p.SetTime(1.5)
	p.StepForward()
	assert.Equal(t, 2, p.Step())

	p.SetTime(10)
	assert.Equal(t, 3, p.Step())
	assert.Equal(t, 1.0, p.Progress())
}

func TestPlaybackAdvance(t *testing.T) {
	p := NewPlaybackState(4)
	clock := time.Unix(0, 0)
	p.now = func() time.Time { return clock }

	p.TogglePlay()
	clock = clock.Add(time.Second)
	p.Advance()
	assert.Equal(t, 2, p.Step())
	assert.True(t, p.Playing)

	clock = clock.Add(5 * time.Second)
	p.Advance()
	assert.Equal(t, 4, p.Step())
	assert.False(t, p.Playing)

	p.TogglePlay()
	assert.Equal(t, 0, p.Step())

	p.SetSpeed(100)
	assert.Equal(t, 20.0, p.Speed)
}
