package core

import "sort"

// Agent is an entity moving from Start to Goal.
type Agent struct {
	ID    AgentID
	Start Node
	Goal  Node
}

// Trivial returns true if the agent already stands on its goal.
func (a *Agent) Trivial() bool {
	return a.Start == a.Goal
}

// AgentSet holds agents ordered by id.
type AgentSet struct {
	agents []*Agent
	byID   map[AgentID]*Agent
}

func newAgentSet(agents []*Agent) *AgentSet {
	sorted := make([]*Agent, len(agents))
	copy(sorted, agents)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.Less(sorted[j].ID)
	})
	byID := make(map[AgentID]*Agent, len(sorted))
	for _, a := range sorted {
		byID[a.ID] = a
	}
	return &AgentSet{agents: sorted, byID: byID}
}

// All returns the agents in id order. The slice must not be modified.
func (s *AgentSet) All() []*Agent {
	return s.agents
}

// Len returns the number of agents.
func (s *AgentSet) Len() int {
	return len(s.agents)
}

// ByID finds an agent by id.
func (s *AgentSet) ByID(id AgentID) (*Agent, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// IDs returns the agent ids in order.
func (s *AgentSet) IDs() []AgentID {
	ids := make([]AgentID, len(s.agents))
	for i, a := range s.agents {
		ids[i] = a.ID
	}
	return ids
}
