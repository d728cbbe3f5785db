package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInstance reports inconsistent agent or node facts.
	ErrMalformedInstance = errors.New("malformed instance")
	// ErrInfeasible reports an instance that cannot be solved under any plan.
	ErrInfeasible = errors.New("infeasible")
	// ErrBudgetTooSmall reports a fixed budget below an agent's own shortest path.
	// Errors matching it also match ErrInfeasible.
	ErrBudgetTooSmall = errors.New("budget too small")
	// ErrInvalidBudget reports a negative delta or horizon, or a delta that
	// overflows when added to a shortest path length.
	ErrInvalidBudget = errors.New("invalid budget")
	// ErrUnknownNode reports a node that is not part of the graph.
	ErrUnknownNode = errors.New("unknown node")
	// ErrUnknownAgent reports an agent that is not part of the instance.
	ErrUnknownAgent = errors.New("unknown agent")
)

// InfeasibleError describes why an agent cannot reach its goal.
type InfeasibleError struct {
	Agent AgentID
	// Reason is a short human-readable cause.
	Reason string
	// Budget and Required are set when the budget was too small.
	Budget   int
	Required int
	tooSmall bool
}

// NoPath returns the error for an agent whose goal lies in another component.
func NoPath(agent AgentID) *InfeasibleError {
	return &InfeasibleError{Agent: agent, Reason: "goal not reachable from start"}
}

// BudgetTooSmall returns the error for an agent whose budget is below required.
func BudgetTooSmall(agent AgentID, budget, required int) *InfeasibleError {
	return &InfeasibleError{
		Agent:    agent,
		Reason:   "budget below shortest path length",
		Budget:   budget,
		Required: required,
		tooSmall: true,
	}
}

// GoalBlocked returns the error for an agent whose goal cannot be reached
// before other agents settle on their goals within the budget.
func GoalBlocked(agent AgentID, budget int) *InfeasibleError {
	return &InfeasibleError{
		Agent:    agent,
		Reason:   "goal cut off by other agents' goals",
		Budget:   budget,
		tooSmall: true,
	}
}

func (e *InfeasibleError) Error() string {
	if e.tooSmall && e.Required == 0 {
		return fmt.Sprintf("agent %s: %s (budget %d)", e.Agent, e.Reason, e.Budget)
	}
	if e.tooSmall {
		return fmt.Sprintf("agent %s: %s (%d < %d)", e.Agent, e.Reason, e.Budget, e.Required)
	}
	return fmt.Sprintf("agent %s: %s", e.Agent, e.Reason)
}

// Is matches ErrInfeasible, and ErrBudgetTooSmall for budget failures.
func (e *InfeasibleError) Is(target error) bool {
	switch target {
	case ErrInfeasible:
		return true
	case ErrBudgetTooSmall:
		return e.tooSmall
	default:
		return false
	}
}

// TooSmall reports whether a larger budget could make the agent feasible.
func (e *InfeasibleError) TooSmall() bool {
	return e.tooSmall
}
