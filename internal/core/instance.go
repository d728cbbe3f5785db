package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
)

// Instance is an immutable MAPF problem: a graph and the agents moving on it.
type Instance struct {
	Graph  *Graph
	Agents *AgentSet
}

// Digest returns a content hash that ignores fact order and edge orientation.
func (inst *Instance) Digest() string {
	nodes := make([]string, 0, inst.Graph.Len())
	for _, n := range inst.Graph.Nodes() {
		nodes = append(nodes, string(n))
	}
	sort.Strings(nodes)

	edges := make([][2]string, 0, inst.Graph.EdgeCount())
	for _, e := range inst.Graph.Edges() {
		u, v := string(e[0]), string(e[1])
		if v < u {
			u, v = v, u
		}
		edges = append(edges, [2]string{u, v})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})

	h := sha256.New()
	fmt.Fprintf(h, "nodes:%d\n", len(nodes))
	for _, n := range nodes {
		writeField(h, n)
	}
	fmt.Fprintf(h, "edges:%d\n", len(edges))
	for _, e := range edges {
		writeField(h, string(e[0]))
		writeField(h, string(e[1]))
	}
	fmt.Fprintf(h, "agents:%d\n", inst.Agents.Len())
	for _, a := range inst.Agents.All() {
		writeField(h, string(a.ID))
		writeField(h, string(a.Start))
		writeField(h, string(a.Goal))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeField writes s length-prefixed so no separator inside a name can
// make two different inputs hash alike.
func writeField(w io.Writer, s string) {
	fmt.Fprintf(w, "%d:%s", len(s), s)
}

// Builder collects instance facts in any order and validates them on Build.
type Builder struct {
	graph    *Graph
	declared map[AgentID]bool
	starts   map[AgentID][]Node
	goals    map[AgentID][]Node
	order    []AgentID
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		graph:    NewGraph(),
		declared: make(map[AgentID]bool),
		starts:   make(map[AgentID][]Node),
		goals:    make(map[AgentID][]Node),
	}
}

// AddVertex adds a node, which may stay isolated.
func (b *Builder) AddVertex(n Node) {
	b.graph.AddNode(n)
}

// AddEdge adds an undirected edge between two nodes.
func (b *Builder) AddEdge(u, v Node) {
	b.graph.AddEdge(u, v)
}

// DeclareAgent records an agent that must receive a start and a goal.
func (b *Builder) DeclareAgent(id AgentID) {
	b.touch(id)
}

// SetStart records the start node of an agent.
func (b *Builder) SetStart(id AgentID, n Node) {
	b.touch(id)
	b.starts[id] = appendUnique(b.starts[id], n)
}

// SetGoal records the goal node of an agent.
func (b *Builder) SetGoal(id AgentID, n Node) {
	b.touch(id)
	b.goals[id] = appendUnique(b.goals[id], n)
}

func (b *Builder) touch(id AgentID) {
	if !b.declared[id] {
		b.declared[id] = true
		b.order = append(b.order, id)
	}
}

func appendUnique(ns []Node, n Node) []Node {
	for _, m := range ns {
		if m == n {
			return ns
		}
	}
	return append(ns, n)
}

// Build validates the collected facts and returns the instance.
// Every failure wraps ErrMalformedInstance.
func (b *Builder) Build() (*Instance, error) {
	agents := make([]*Agent, 0, len(b.order))
	for _, id := range b.order {
		starts, goals := b.starts[id], b.goals[id]
		switch {
		case len(starts) == 0 && len(goals) == 0:
			return nil, fmt.Errorf("%w: agent %s has neither start nor goal", ErrMalformedInstance, id)
		case len(starts) == 0:
			return nil, fmt.Errorf("%w: agent %s has no start", ErrMalformedInstance, id)
		case len(goals) == 0:
			return nil, fmt.Errorf("%w: agent %s has no goal", ErrMalformedInstance, id)
		case len(starts) > 1:
			return nil, fmt.Errorf("%w: agent %s has %d starts", ErrMalformedInstance, id, len(starts))
		case len(goals) > 1:
			return nil, fmt.Errorf("%w: agent %s has %d goals", ErrMalformedInstance, id, len(goals))
		}
		if !b.graph.HasNode(starts[0]) {
			return nil, fmt.Errorf("%w: start %s of agent %s is not a node", ErrMalformedInstance, starts[0], id)
		}
		if !b.graph.HasNode(goals[0]) {
			return nil, fmt.Errorf("%w: goal %s of agent %s is not a node", ErrMalformedInstance, goals[0], id)
		}
		agents = append(agents, &Agent{ID: id, Start: starts[0], Goal: goals[0]})
	}

	inst := &Instance{
		Graph:  b.graph,
		Agents: newAgentSet(agents),
	}
	// The builder must not mutate a published graph.
	b.graph = NewGraph()
	return inst, nil
}
