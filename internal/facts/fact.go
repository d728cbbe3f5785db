package facts

import (
	"fmt"
	"strconv"
	"strings"
)

// Signature identifies a predicate by name and arity, as in reach/3.
type Signature struct {
	Name  string
	Arity int
}

func (s Signature) String() string {
	return fmt.Sprintf("%s/%d", s.Name, s.Arity)
}

// ParseSignature parses "name/arity".
func ParseSignature(s string) (Signature, error) {
	name, arity, ok := strings.Cut(s, "/")
	if !ok || name == "" {
		return Signature{}, fmt.Errorf("invalid signature %q", s)
	}
	n, err := strconv.Atoi(arity)
	if err != nil || n < 0 {
		return Signature{}, fmt.Errorf("invalid signature %q", s)
	}
	return Signature{Name: name, Arity: n}, nil
}

// Domain predicates.
var (
	SigVertex   = Signature{Name: "vertex", Arity: 1}
	SigEdge     = Signature{Name: "edge", Arity: 2}
	SigAgent    = Signature{Name: "agent", Arity: 1}
	SigStart    = Signature{Name: "start", Arity: 2}
	SigGoal     = Signature{Name: "goal", Arity: 2}
	SigSPLength = Signature{Name: "sp_length", Arity: 2}
	SigReach    = Signature{Name: "reach", Arity: 3}
)

// Fact is a ground atom.
type Fact struct {
	Pred string
	Args []Term
}

// NewFact returns pred(args...).
func NewFact(pred string, args ...Term) Fact {
	return Fact{Pred: pred, Args: args}
}

// Signature returns the predicate signature.
func (f Fact) Signature() Signature {
	return Signature{Name: f.Pred, Arity: len(f.Args)}
}

// Term returns the fact as a function term.
func (f Fact) Term() Term {
	return Function(f.Pred, f.Args...)
}

// String renders the fact with its terminating period.
func (f Fact) String() string {
	return f.Term().String() + "."
}

// Compare orders facts by signature, then arguments.
func (f Fact) Compare(g Fact) int {
	if f.Pred != g.Pred {
		return strings.Compare(f.Pred, g.Pred)
	}
	return f.Term().Compare(g.Term())
}

func Vertex(u Term) Fact          { return NewFact(SigVertex.Name, u) }
func Edge(u, v Term) Fact         { return NewFact(SigEdge.Name, u, v) }
func Agent(a Term) Fact           { return NewFact(SigAgent.Name, a) }
func Start(a, u Term) Fact        { return NewFact(SigStart.Name, a, u) }
func Goal(a, u Term) Fact         { return NewFact(SigGoal.Name, a, u) }
func SPLength(a Term, l int) Fact { return NewFact(SigSPLength.Name, a, Number(l)) }

// Reach returns reach(a,u,t).
func Reach(a, u Term, t int) Fact {
	return NewFact(SigReach.Name, a, u, Number(t))
}

// Source yields facts.
type Source interface {
	Each(fn func(Fact) error) error
}

// Sink accepts facts.
type Sink interface {
	Add(f Fact) error
}
