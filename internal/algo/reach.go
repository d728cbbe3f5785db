package algo

import (
	"context"

	"github.com/elektrokombinacija/mapf-reach/internal/core"
)

// Synthesizer computes space-time reachability for every agent.
type Synthesizer struct {
	opts Options
}

// NewSynthesizer creates a synthesizer with the given options.
func NewSynthesizer(opts Options) *Synthesizer {
	return &Synthesizer{opts: opts}
}

// Options returns the synthesizer's options.
func (s *Synthesizer) Options() Options {
	return s.opts
}

// Synthesize returns every (agent, node, time) an agent may occupy on some
// walk from start to goal within its per-agent budget.
//
// In Exact mode a node is listed once, at its earliest arrival time, when
// earliest arrival plus remaining distance fits the budget. Window mode adds
// every later time step until the agent must leave to still make its goal.
//
// sp must hold the shortest path length of every agent. A budget below some
// agent's shortest path fails with core.ErrBudgetTooSmall before any work.
func (s *Synthesizer) Synthesize(ctx context.Context, inst *core.Instance, sp map[core.AgentID]int, b core.Budget) (*core.ReachSet, error) {
	if err := CheckBudget(inst, sp, b); err != nil {
		return nil, err
	}

	agents := inst.Agents.All()
	perAgent := make([][]core.Entry, len(agents))
	err := forEachAgent(ctx, agents, s.opts.workers(len(agents)), func(i int, a *core.Agent) error {
		entries, err := s.agentReach(inst, sp, b, a)
		if err != nil {
			return err
		}
		perAgent[i] = entries
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, es := range perAgent {
		total += len(es)
	}
	entries := make([]core.Entry, 0, total)
	for _, es := range perAgent {
		entries = append(entries, es...)
	}
	return core.NewReachSet(b, entries), nil
}

// agentReach computes the entries of one agent.
func (s *Synthesizer) agentReach(inst *core.Instance, sp map[core.AgentID]int, b core.Budget, a *core.Agent) ([]core.Entry, error) {
	g := inst.Graph
	src, _ := g.Index(a.Start)
	dst, _ := g.Index(a.Goal)
	horizon := b.PerAgent(sp[a.ID])

	var fwd, latest []int
	if s.opts.GoalBlocking {
		block := goalBlocks(inst, sp, b, a)
		fwd = forwardBlocked(g, src, horizon, block)
		latest = latestBlocked(g, dst, horizon, block, fwd)
		if fwd[dst] == core.Inf || fwd[dst] > latest[dst] {
			return nil, core.GoalBlocked(a.ID, horizon)
		}
	} else {
		fwd = bfs(g, src)
		bwd := bfs(g, dst)
		latest = make([]int, len(bwd))
		for i, d := range bwd {
			if d == core.Inf {
				latest[i] = -1
			} else {
				latest[i] = horizon - d
			}
		}
	}

	var entries []core.Entry
	for i := range fwd {
		if fwd[i] == core.Inf || fwd[i] > latest[i] {
			continue
		}
		n := g.NodeAt(i)
		last := fwd[i]
		if s.opts.Mode == Window {
			last = latest[i]
		}
		for t := fwd[i]; t <= last; t++ {
			entries = append(entries, core.Entry{Agent: a.ID, Node: n, Time: t})
		}
	}
	return entries, nil
}
