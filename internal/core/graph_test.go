package core

import "testing"

func TestGraphDeduplicatesEdges(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "c") // self-loop dropped

	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	if got := g.Neighbors("a"); len(got) != 1 || got[0] != "b" {
		t.Errorf("Neighbors(a) = %v, want [b]", got)
	}
	if got := g.Neighbors("c"); len(got) != 1 || got[0] != "b" {
		t.Errorf("Neighbors(c) = %v, want [b]", got)
	}
}

func TestGraphSymmetric(t *testing.T) {
	g := NewGraph()
	g.AddEdge("0", "1")
	g.AddEdge("2", "1")

	for _, e := range [][2]Node{{"0", "1"}, {"1", "2"}} {
		if !g.HasEdge(e[0], e[1]) || !g.HasEdge(e[1], e[0]) {
			t.Errorf("edge %v should be present in both orientations", e)
		}
	}
	if g.HasEdge("0", "2") {
		t.Error("unexpected edge 0-2")
	}
	if g.HasEdge("0", "missing") {
		t.Error("unexpected edge to missing node")
	}
}

func TestGraphInsertionOrder(t *testing.T) {
	g := NewGraph()
	g.AddNode("z")
	g.AddEdge("y", "z")
	g.AddNode("x")

	want := []Node{"z", "y", "x"}
	got := g.Nodes()
	if len(got) != len(want) {
		t.Fatalf("Nodes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Nodes()[%d] = %s, want %s", i, got[i], want[i])
		}
		if idx, _ := g.Index(want[i]); idx != i || g.NodeAt(i) != want[i] {
			t.Errorf("Index(%s) = %d, want %d", want[i], idx, i)
		}
	}
	if len(g.Edges()) != 1 {
		t.Errorf("Edges() = %v, want one edge", g.Edges())
	}
}
