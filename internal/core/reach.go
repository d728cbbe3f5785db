package core

import "sort"

// Entry is a space-time position an agent may occupy.
type Entry struct {
	Agent AgentID
	Node  Node
	Time  int
}

// ReachSet is the reachability result for one budget.
// Entries are sorted by agent, time and node.
type ReachSet struct {
	Budget  Budget
	Entries []Entry
}

// NewReachSet sorts entries and wraps them.
func NewReachSet(b Budget, entries []Entry) *ReachSet {
	SortEntries(entries)
	return &ReachSet{Budget: b, Entries: entries}
}

// SortEntries orders entries by agent, time and node.
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Agent != b.Agent {
			return a.Agent.Less(b.Agent)
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.Node < b.Node
	})
}

// Len returns the number of entries.
func (r *ReachSet) Len() int {
	return len(r.Entries)
}

// Contains reports whether the entry is in the set.
func (r *ReachSet) Contains(e Entry) bool {
	i := sort.Search(len(r.Entries), func(i int) bool {
		x := r.Entries[i]
		if x.Agent != e.Agent {
			return !x.Agent.Less(e.Agent)
		}
		if x.Time != e.Time {
			return x.Time >= e.Time
		}
		return x.Node >= e.Node
	})
	return i < len(r.Entries) && r.Entries[i] == e
}

// CountByAgent returns the number of entries per agent.
func (r *ReachSet) CountByAgent() map[AgentID]int {
	counts := make(map[AgentID]int)
	for _, e := range r.Entries {
		counts[e.Agent]++
	}
	return counts
}

// At returns the nodes an agent may occupy at time t.
func (r *ReachSet) At(agent AgentID, t int) []Node {
	var nodes []Node
	for _, e := range r.Entries {
		if e.Agent == agent && e.Time == t {
			nodes = append(nodes, e.Node)
		}
	}
	return nodes
}

// MaxTime returns the largest time step in the set, or -1 when empty.
func (r *ReachSet) MaxTime() int {
	maxT := -1
	for _, e := range r.Entries {
		if e.Time > maxT {
			maxT = e.Time
		}
	}
	return maxT
}
