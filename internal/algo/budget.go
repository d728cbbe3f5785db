package algo

import (
	"context"
	"fmt"

	"github.com/elektrokombinacija/mapf-reach/internal/core"
)

// lengthOf looks up an agent's shortest path length, rejecting missing and
// infinite entries.
func lengthOf(sp map[core.AgentID]int, a *core.Agent) (int, error) {
	l, ok := sp[a.ID]
	if !ok {
		return 0, fmt.Errorf("%w: no shortest path length for agent %s", core.ErrUnknownAgent, a.ID)
	}
	if l == core.Inf {
		return 0, core.NoPath(a.ID)
	}
	return l, nil
}

// MinBudget returns the smallest delta or horizon below which the instance
// is trivially infeasible.
//
// Under SumOfCosts the answer is 0: every agent can follow its own shortest
// path. With GoalBlocking the smallest delta is searched for which every
// agent still reaches its goal before the goals of the others close.
// Under Makespan the answer is the longest shortest path.
func MinBudget(ctx context.Context, inst *core.Instance, sp map[core.AgentID]int, obj core.Objective, opts Options) (core.Budget, error) {
	maxLen := 0
	for _, a := range inst.Agents.All() {
		l, err := lengthOf(sp, a)
		if err != nil {
			return core.Budget{}, err
		}
		if l > maxLen {
			maxLen = l
		}
	}

	switch obj {
	case core.Makespan:
		return core.Budget{Objective: core.Makespan, Value: maxLen}, nil
	case core.SumOfCosts:
		if !opts.GoalBlocking {
			return core.Budget{Objective: core.SumOfCosts}, nil
		}
		return minBlockedDelta(ctx, inst, sp, opts)
	default:
		return core.Budget{}, fmt.Errorf("unknown objective %v", obj)
	}
}

// minBlockedDelta tries delta = 0, 1, ... until every agent reaches its goal
// under goal blocking. Every earliest arrival is below the node count, so a
// delta of that size always succeeds on a feasible instance.
func minBlockedDelta(ctx context.Context, inst *core.Instance, sp map[core.AgentID]int, opts Options) (core.Budget, error) {
	agents := inst.Agents.All()
	limit := inst.Graph.Len()

	var lastErr error
	for delta := 0; delta <= limit; delta++ {
		if err := ctx.Err(); err != nil {
			return core.Budget{}, err
		}
		b := core.Budget{Objective: core.SumOfCosts, Value: delta}
		err := forEachAgent(ctx, agents, opts.workers(len(agents)), func(_ int, a *core.Agent) error {
			horizon := b.PerAgent(sp[a.ID])
			block := goalBlocks(inst, sp, b, a)
			src, _ := inst.Graph.Index(a.Start)
			dst, _ := inst.Graph.Index(a.Goal)
			if forwardBlocked(inst.Graph, src, horizon, block)[dst] == core.Inf {
				return core.GoalBlocked(a.ID, horizon)
			}
			return nil
		})
		if err == nil {
			return b, nil
		}
		if _, ok := err.(*core.InfeasibleError); !ok {
			return core.Budget{}, err
		}
		lastErr = err
	}
	return core.Budget{}, fmt.Errorf("no delta up to %d: %w", limit, lastErr)
}

// CheckBudget validates a caller-supplied budget against the shortest path
// lengths. A horizon below some agent's shortest path fails with an error
// matching core.ErrBudgetTooSmall. A delta whose per-agent budget would not
// fit in an int matches core.ErrInvalidBudget.
func CheckBudget(inst *core.Instance, sp map[core.AgentID]int, b core.Budget) error {
	if b.Value < 0 {
		return fmt.Errorf("%w: %s", core.ErrInvalidBudget, b)
	}
	for _, a := range inst.Agents.All() {
		l, err := lengthOf(sp, a)
		if err != nil {
			return err
		}
		if b.Objective == core.SumOfCosts && b.Value > core.Inf-l {
			return fmt.Errorf("%w: %s overflows for agent %s", core.ErrInvalidBudget, b, a.ID)
		}
		if per := b.PerAgent(l); per < l {
			return core.BudgetTooSmall(a.ID, per, l)
		}
	}
	return nil
}
