package algo

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-reach/internal/core"
)

func TestMinBudget(t *testing.T) {
	inst := buildInstance(t, createGrid(4, 4),
		agentSpec{"1", cell(0, 0), cell(3, 3)},
		agentSpec{"2", cell(0, 3), cell(1, 3)},
	)
	sp := map[core.AgentID]int{"1": 6, "2": 1}

	tests := []struct {
		name string
		obj  core.Objective
		want core.Budget
	}{
		{name: "sum of costs", obj: core.SumOfCosts, want: core.Budget{Objective: core.SumOfCosts, Value: 0}},
		{name: "makespan", obj: core.Makespan, want: core.Budget{Objective: core.Makespan, Value: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MinBudget(context.Background(), inst, sp, tt.obj, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Delta 0 is reported for every individually feasible instance. No parity
// argument is applied: on a bipartite grid two agents may still need slack
// to avoid each other, which is left to the downstream solver.
func TestMinDeltaIgnoresParity(t *testing.T) {
	inst := buildInstance(t, createGrid(2, 2),
		agentSpec{"1", cell(0, 0), cell(1, 1)},
		agentSpec{"2", cell(1, 1), cell(0, 0)},
	)
	sp, err := ShortestPathLengths(context.Background(), inst, 1)
	require.NoError(t, err)

	b, err := MinBudget(context.Background(), inst, sp, core.SumOfCosts, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, b.Value)
}

func TestMinBudgetInfeasible(t *testing.T) {
	edges := [][2]string{{"a", "b"}, {"c", "d"}}
	inst := buildInstance(t, edges, agentSpec{"1", "a", "d"})
	sp := map[core.AgentID]int{"1": core.Inf}

	for _, obj := range []core.Objective{core.SumOfCosts, core.Makespan} {
		_, err := MinBudget(context.Background(), inst, sp, obj, Options{})
		assert.ErrorIs(t, err, core.ErrInfeasible, obj.String())
		assert.NotErrorIs(t, err, core.ErrBudgetTooSmall, obj.String())
	}
}

func TestMinBudgetMissingLength(t *testing.T) {
	inst := buildInstance(t, pathEdges, agentSpec{"a", "0", "3"})

	_, err := MinBudget(context.Background(), inst, map[core.AgentID]int{}, core.Makespan, Options{})
	assert.ErrorIs(t, err, core.ErrUnknownAgent)
}

func TestMinBudgetGoalBlocking(t *testing.T) {
	// Agent b settles on node 1 at t=1+delta, which agent a must cross at t=1.
	inst := buildInstance(t, pathEdges,
		agentSpec{"a", "0", "3"},
		agentSpec{"b", "2", "1"},
	)
	sp := map[core.AgentID]int{"a": 3, "b": 1}

	plain, err := MinBudget(context.Background(), inst, sp, core.SumOfCosts, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, plain.Value)

	blocked, err := MinBudget(context.Background(), inst, sp, core.SumOfCosts, Options{GoalBlocking: true, Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, blocked.Value)

	horizon, err := MinBudget(context.Background(), inst, sp, core.Makespan, Options{GoalBlocking: true})
	require.NoError(t, err)
	assert.Equal(t, 3, horizon.Value)
}

func TestMinBudgetGoalBlockingSwap(t *testing.T) {
	// Each goal closes only after its owner's budget, so swapping ends fits delta 0.
	inst := buildInstance(t, [][2]string{{"x", "y"}},
		agentSpec{"a", "x", "y"},
		agentSpec{"b", "y", "x"},
	)
	sp := map[core.AgentID]int{"a": 1, "b": 1}

	b, err := MinBudget(context.Background(), inst, sp, core.SumOfCosts, Options{GoalBlocking: true})
	require.NoError(t, err)
	assert.Equal(t, 0, b.Value)
}

func TestCheckBudget(t *testing.T) {
	inst := buildInstance(t, pathEdges,
		agentSpec{"a", "0", "3"},
		agentSpec{"b", "1", "2"},
	)
	sp := map[core.AgentID]int{"a": 3, "b": 1}

	tests := []struct {
		name    string
		budget  core.Budget
		wantErr error
	}{
		{name: "delta zero", budget: core.Budget{Objective: core.SumOfCosts}},
		{name: "delta large", budget: core.Budget{Objective: core.SumOfCosts, Value: 9}},
		{name: "negative delta", budget: core.Budget{Objective: core.SumOfCosts, Value: -1}, wantErr: core.ErrInvalidBudget},
		{name: "horizon exact", budget: core.Budget{Objective: core.Makespan, Value: 3}},
		{name: "horizon short", budget: core.Budget{Objective: core.Makespan, Value: 2}, wantErr: core.ErrBudgetTooSmall},
		{name: "negative horizon", budget: core.Budget{Objective: core.Makespan, Value: -4}, wantErr: core.ErrInvalidBudget},
		{name: "delta overflows", budget: core.Budget{Objective: core.SumOfCosts, Value: math.MaxInt}, wantErr: core.ErrInvalidBudget},
		{name: "delta at limit", budget: core.Budget{Objective: core.SumOfCosts, Value: core.Inf - 3}},
		{name: "horizon max", budget: core.Budget{Objective: core.Makespan, Value: math.MaxInt}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBudget(inst, sp, tt.budget)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantErr == core.ErrInvalidBudget {
				assert.NotErrorIs(t, err, core.ErrInfeasible)
			}
		})
	}
}

func TestCheckBudgetTooSmallDetails(t *testing.T) {
	inst := buildInstance(t, pathEdges, agentSpec{"a", "0", "3"})

	err := CheckBudget(inst, map[core.AgentID]int{"a": 3}, core.Budget{Objective: core.Makespan, Value: 1})
	require.ErrorIs(t, err, core.ErrInfeasible)

	var inf *core.InfeasibleError
	require.ErrorAs(t, err, &inf)
	assert.True(t, inf.TooSmall())
	assert.Equal(t, 1, inf.Budget)
	assert.Equal(t, 3, inf.Required)
}
