package algo

import (
	"context"
	"fmt"

	"github.com/elektrokombinacija/mapf-reach/internal/core"
)

// DistancesFrom returns the hop count from source to every node of g.
// Unreachable nodes are reported as core.Inf.
func DistancesFrom(g *core.Graph, source core.Node) (core.Distances, error) {
	src, ok := g.Index(source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownNode, source)
	}
	dist := bfs(g, src)
	out := make(core.Distances, len(dist))
	for i, d := range dist {
		out[g.NodeAt(i)] = d
	}
	return out, nil
}

// bfs computes distances by node index. Unit weights make FIFO layer
// order the distance order.
func bfs(g *core.Graph, src int) []int {
	dist := make([]int, g.Len())
	for i := range dist {
		dist[i] = core.Inf
	}
	dist[src] = 0

	queue := make([]int, 0, g.Len())
	queue = append(queue, src)
	for head := 0; head < len(queue); head++ {
		u := queue[head]
		for _, v := range g.Adjacent(u) {
			if dist[v] == core.Inf {
				dist[v] = dist[u] + 1
				queue = append(queue, v)
			}
		}
	}
	return dist
}

// ShortestPathLengths returns every agent's start-to-goal length ignoring
// other agents. An agent without any path makes the whole instance
// infeasible; the first such agent in id order is reported.
func ShortestPathLengths(ctx context.Context, inst *core.Instance, workers int) (map[core.AgentID]int, error) {
	agents := inst.Agents.All()
	lengths := make([]int, len(agents))

	err := forEachAgent(ctx, agents, Options{Workers: workers}.workers(len(agents)), func(i int, a *core.Agent) error {
		src, _ := inst.Graph.Index(a.Start)
		dst, _ := inst.Graph.Index(a.Goal)
		d := bfs(inst.Graph, src)[dst]
		if d == core.Inf {
			return core.NoPath(a.ID)
		}
		lengths[i] = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	sp := make(map[core.AgentID]int, len(agents))
	for i, a := range agents {
		sp[a.ID] = lengths[i]
	}
	return sp, nil
}
