package algo

import (
	"container/heap"

	"github.com/elektrokombinacija/mapf-reach/internal/core"
)

// goalBlocks returns, per node index, the first time step at which agent a
// may no longer occupy the node. Another agent's goal closes once that agent
// has spent its whole budget and must be standing on it. Nodes that never
// close hold core.Inf, and so does a's own goal.
func goalBlocks(inst *core.Instance, sp map[core.AgentID]int, b core.Budget, a *core.Agent) []int {
	block := make([]int, inst.Graph.Len())
	for i := range block {
		block[i] = core.Inf
	}
	for _, o := range inst.Agents.All() {
		if o.ID == a.ID {
			continue
		}
		gi, _ := inst.Graph.Index(o.Goal)
		if t := b.PerAgent(sp[o.ID]); t < block[gi] {
			block[gi] = t
		}
	}
	own, _ := inst.Graph.Index(a.Goal)
	block[own] = core.Inf
	return block
}

// forwardBlocked is a breadth-first search that never enters a node at or
// after its block time and never expands past horizon. A node stays
// core.Inf when it cannot be reached in time.
func forwardBlocked(g *core.Graph, src, horizon int, block []int) []int {
	dist := make([]int, g.Len())
	for i := range dist {
		dist[i] = core.Inf
	}
	if block[src] <= 0 {
		return dist
	}
	dist[src] = 0

	queue := make([]int, 0, g.Len())
	queue = append(queue, src)
	for head := 0; head < len(queue); head++ {
		u := queue[head]
		t := dist[u] + 1
		if t > horizon {
			continue
		}
		for _, v := range g.Adjacent(u) {
			if dist[v] == core.Inf && t < block[v] {
				dist[v] = t
				queue = append(queue, v)
			}
		}
	}
	return dist
}

// latestItem is a node with a candidate latest time for the max-heap.
type latestItem struct {
	node int
	t    int
}

// latestHeap implements heap.Interface, largest time first.
type latestHeap []latestItem

func (h latestHeap) Len() int           { return len(h) }
func (h latestHeap) Less(i, j int) bool { return h[i].t > h[j].t }
func (h latestHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *latestHeap) Push(x any)        { *h = append(*h, x.(latestItem)) }
func (h *latestHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// latestBlocked computes, per node, the latest time the agent can stand on
// it and still be at goal by horizon without touching a closed node. Nodes
// that cannot lie on such a walk hold -1. fwd prunes nodes whose earliest
// arrival is already too late.
func latestBlocked(g *core.Graph, goal, horizon int, block, fwd []int) []int {
	latest := make([]int, g.Len())
	for i := range latest {
		latest[i] = -1
	}
	start := horizon
	if block[goal] != core.Inf && block[goal]-1 < start {
		start = block[goal] - 1
	}
	if start < 0 {
		return latest
	}
	latest[goal] = start

	h := &latestHeap{{node: goal, t: start}}
	for h.Len() > 0 {
		cur := heap.Pop(h).(latestItem)
		if cur.t < latest[cur.node] {
			continue // stale
		}
		if fwd[cur.node] > latest[cur.node] {
			continue
		}
		for _, in := range g.Adjacent(cur.node) {
			cand := cur.t - 1
			if block[in] != core.Inf && block[in]-1 < cand {
				cand = block[in] - 1
			}
			if cand > latest[in] {
				latest[in] = cand
				heap.Push(h, latestItem{node: in, t: cand})
			}
		}
	}
	return latest
}
