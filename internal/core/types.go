// Package core defines domain models for MAPF reachability.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Inf marks an unreachable node in a distance table.
const Inf = math.MaxInt

// Node is an opaque position identifier, the canonical text of a ground term.
type Node string

// Coords returns the integer pair of a "(x,y)" node.
// ok is false for any other node shape.
func (n Node) Coords() (x, y int, ok bool) {
	s := string(n)
	if len(s) < 5 || s[0] != '(' || s[len(s)-1] != ')' {
		return 0, 0, false
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	x, errX := strconv.Atoi(parts[0])
	y, errY := strconv.Atoi(parts[1])
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return x, y, true
}

// GridNode returns the node for grid cell (x,y).
func GridNode(x, y int) Node {
	return Node(fmt.Sprintf("(%d,%d)", x, y))
}

// AgentID is a unique agent identifier.
type AgentID string

// Less orders agent ids: integers numerically, integers before symbols,
// symbols lexicographically.
func (a AgentID) Less(b AgentID) bool {
	na, errA := strconv.Atoi(string(a))
	nb, errB := strconv.Atoi(string(b))
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// Objective selects how the global budget is applied to agents.
type Objective int

const (
	SumOfCosts Objective = iota // Per-agent budget: shortest path + delta
	Makespan                    // Shared absolute horizon
)

func (o Objective) String() string {
	switch o {
	case SumOfCosts:
		return "sum-of-costs"
	case Makespan:
		return "makespan"
	default:
		return fmt.Sprintf("Objective(%d)", int(o))
	}
}

// ParseObjective accepts "soc", "sum-of-costs", "delta", "makespan" and "horizon".
func ParseObjective(s string) (Objective, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "soc", "sum-of-costs", "sum_of_costs", "delta":
		return SumOfCosts, nil
	case "makespan", "horizon":
		return Makespan, nil
	default:
		return 0, fmt.Errorf("unknown objective %q", s)
	}
}

// BudgetName is the name of the value an objective is measured in.
func (o Objective) BudgetName() string {
	if o == Makespan {
		return "horizon"
	}
	return "delta"
}

// Budget is a resolved global budget: a delta under SumOfCosts, a horizon
// under Makespan.
type Budget struct {
	Objective Objective
	Value     int
}

// PerAgent returns the time budget of an agent with the given shortest path length.
func (b Budget) PerAgent(spLength int) int {
	if b.Objective == Makespan {
		return b.Value
	}
	return spLength + b.Value
}

func (b Budget) String() string {
	return fmt.Sprintf("%s=%d", b.Objective.BudgetName(), b.Value)
}

// Distances maps every node of a graph to its hop count from a source.
// Unreachable nodes hold Inf; a missing key means the node is not in the graph.
type Distances map[Node]int

// Reachable reports whether n has a finite distance.
func (d Distances) Reachable(n Node) bool {
	v, ok := d[n]
	return ok && v != Inf
}
