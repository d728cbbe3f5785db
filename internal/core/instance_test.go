package core

import (
	"errors"
	"testing"
)

func lineBuilder() *Builder {
	b := NewBuilder()
	b.AddEdge("0", "1")
	b.AddEdge("1", "2")
	b.AddEdge("2", "3")
	return b
}

func TestBuildValid(t *testing.T) {
	b := lineBuilder()
	b.SetStart("2", "3")
	b.SetGoal("2", "0")
	b.SetStart("10", "0")
	b.SetGoal("10", "0")
	b.SetStart("1", "0")
	b.SetGoal("1", "3")

	inst, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	ids := inst.Agents.IDs()
	want := []AgentID{"1", "2", "10"}
	if len(ids) != len(want) {
		t.Fatalf("IDs() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %s, want %s", i, ids[i], want[i])
		}
	}

	a, ok := inst.Agents.ByID("10")
	if !ok || !a.Trivial() {
		t.Errorf("agent 10 should exist and be trivial, got %+v", a)
	}
}

func TestBuildMalformed(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *Builder)
	}{
		{"declared only", func(b *Builder) { b.DeclareAgent("a") }},
		{"missing goal", func(b *Builder) { b.SetStart("a", "0") }},
		{"missing start", func(b *Builder) { b.SetGoal("a", "0") }},
		{"unknown start", func(b *Builder) { b.SetStart("a", "9"); b.SetGoal("a", "0") }},
		{"unknown goal", func(b *Builder) { b.SetStart("a", "0"); b.SetGoal("a", "9") }},
		{"two starts", func(b *Builder) {
			b.SetStart("a", "0")
			b.SetStart("a", "1")
			b.SetGoal("a", "3")
		}},
		{"two goals", func(b *Builder) {
			b.SetStart("a", "0")
			b.SetGoal("a", "2")
			b.SetGoal("a", "3")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := lineBuilder()
			tt.setup(b)
			inst, err := b.Build()
			if !errors.Is(err, ErrMalformedInstance) {
				t.Errorf("Build() error = %v, want ErrMalformedInstance", err)
			}
			if inst != nil {
				t.Error("Build() returned a partial instance")
			}
		})
	}
}

func TestBuildRepeatedIdenticalFacts(t *testing.T) {
	b := lineBuilder()
	b.SetStart("a", "0")
	b.SetStart("a", "0")
	b.SetGoal("a", "3")

	if _, err := b.Build(); err != nil {
		t.Errorf("repeated identical start should be accepted, got %v", err)
	}
}

func TestDigestIgnoresOrder(t *testing.T) {
	b1 := NewBuilder()
	b1.AddEdge("0", "1")
	b1.AddEdge("1", "2")
	b1.SetStart("a", "0")
	b1.SetGoal("a", "2")

	b2 := NewBuilder()
	b2.SetGoal("a", "2")
	b2.AddEdge("2", "1")
	b2.AddEdge("1", "0")
	b2.SetStart("a", "0")

	i1, err := b1.Build()
	if err != nil {
		t.Fatal(err)
	}
	i2, err := b2.Build()
	if err != nil {
		t.Fatal(err)
	}
	if i1.Digest() != i2.Digest() {
		t.Error("digests differ for equivalent instances")
	}

	b3 := NewBuilder()
	b3.AddEdge("0", "1")
	b3.AddEdge("1", "2")
	b3.SetStart("a", "2")
	b3.SetGoal("a", "0")
	i3, err := b3.Build()
	if err != nil {
		t.Fatal(err)
	}
	if i1.Digest() == i3.Digest() {
		t.Error("digests equal for different agents")
	}
}

func TestDigestSeparatorsInNames(t *testing.T) {
	build := func(u, v Node) *Instance {
		b := NewBuilder()
		for _, n := range []Node{"a", "a-b", "b-c", "c"} {
			b.AddVertex(n)
		}
		b.AddEdge(u, v)
		b.SetStart("x", "a")
		b.SetGoal("x", "a")
		inst, err := b.Build()
		if err != nil {
			t.Fatal(err)
		}
		return inst
	}

	left := build("a-b", "c")
	right := build("a", "b-c")
	if left.Digest() == right.Digest() {
		t.Error("digests equal for edge(a-b,c) and edge(a,b-c)")
	}
}
