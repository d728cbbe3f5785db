package widgets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-reach/internal/core"
	"github.com/elektrokombinacija/mapf-reach/internal/vis/state"
)

func TestStatus(t *testing.T) {
	b := core.NewBuilder()
	b.AddEdge("x", "y")
	b.SetStart("a", "x")
	b.SetGoal("a", "y")
	inst, err := b.Build()
	require.NoError(t, err)
	rs := core.NewReachSet(core.Budget{Objective: core.SumOfCosts, Value: 0}, []core.Entry{
		{Agent: "a", Node: "x", Time: 0},
		{Agent: "a", Node: "y", Time: 1},
	})

	s := state.NewState(inst, rs)
	assert.Equal(t, "delta=0  agent a: x -> y  t=0  reachable 1", Status(s))

	s.Select("y")
	s.Playback.StepForward()
	assert.Equal(t, "delta=0  agent a: x -> y  t=1  reachable 1  node y at t={1}", Status(s))
}
