package core

// Graph is an undirected unit-weight graph over nodes.
// Nodes keep their insertion order; adjacency is de-duplicated.
type Graph struct {
	nodes []Node
	index map[Node]int
	adj   [][]int
	edges int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		index: make(map[Node]int),
	}
}

// AddNode adds a node and returns its index. Adding a node twice is a no-op.
func (g *Graph) AddNode(n Node) int {
	if i, ok := g.index[n]; ok {
		return i
	}
	i := len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.index[n] = i
	g.adj = append(g.adj, nil)
	return i
}

// AddEdge adds an undirected edge, creating missing nodes.
// Self-loops and edges already present in either orientation are ignored.
// Returns true if a new edge was added.
func (g *Graph) AddEdge(u, v Node) bool {
	iu := g.AddNode(u)
	iv := g.AddNode(v)
	if iu == iv || g.adjacent(iu, iv) {
		return false
	}
	g.adj[iu] = append(g.adj[iu], iv)
	g.adj[iv] = append(g.adj[iv], iu)
	g.edges++
	return true
}

func (g *Graph) adjacent(iu, iv int) bool {
	// Scan the shorter list; grid degrees are tiny.
	a, b := g.adj[iu], iv
	if len(g.adj[iv]) < len(a) {
		a, b = g.adj[iv], iu
	}
	for _, w := range a {
		if w == b {
			return true
		}
	}
	return false
}

// HasNode reports whether n is in the graph.
func (g *Graph) HasNode(n Node) bool {
	_, ok := g.index[n]
	return ok
}

// Index returns the dense index of n.
func (g *Graph) Index(n Node) (int, bool) {
	i, ok := g.index[n]
	return i, ok
}

// NodeAt returns the node with dense index i.
func (g *Graph) NodeAt(i int) Node {
	return g.nodes[i]
}

// Nodes returns the nodes in insertion order. The slice must not be modified.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Adjacent returns the neighbour indices of node index i. The slice must not be modified.
func (g *Graph) Adjacent(i int) []int {
	return g.adj[i]
}

// Neighbors returns adjacent nodes.
func (g *Graph) Neighbors(n Node) []Node {
	i, ok := g.index[n]
	if !ok {
		return nil
	}
	neighbors := make([]Node, len(g.adj[i]))
	for k, j := range g.adj[i] {
		neighbors[k] = g.nodes[j]
	}
	return neighbors
}

// HasEdge reports whether u and v are adjacent.
func (g *Graph) HasEdge(u, v Node) bool {
	iu, ok := g.index[u]
	if !ok {
		return false
	}
	iv, ok := g.index[v]
	if !ok {
		return false
	}
	return g.adjacent(iu, iv)
}

// Edges returns every edge once, as (lower index, higher index) node pairs.
func (g *Graph) Edges() [][2]Node {
	out := make([][2]Node, 0, g.edges)
	for i, ns := range g.adj {
		for _, j := range ns {
			if i < j {
				out = append(out, [2]Node{g.nodes[i], g.nodes[j]})
			}
		}
	}
	return out
}
