// Package facts reads and writes ground logic-program facts such as
// edge((0,0),(0,1)). and holds them in memory.
package facts

import (
	"cmp"
	"strconv"
	"strings"
)

// Kind classifies a ground term.
type Kind int

const (
	KindNumber Kind = iota
	KindFunction
	KindString
)

// Term is a ground term. A symbol is a function without arguments and a
// tuple is a function with an empty name.
type Term struct {
	Kind Kind
	Num  int
	Name string
	Args []Term
}

// Number returns an integer term.
func Number(n int) Term {
	return Term{Kind: KindNumber, Num: n}
}

// Symbol returns a constant such as a or agent1.
func Symbol(name string) Term {
	return Term{Kind: KindFunction, Name: name}
}

// String returns a quoted string term.
func String(s string) Term {
	return Term{Kind: KindString, Name: s}
}

// Function returns name(args...).
func Function(name string, args ...Term) Term {
	return Term{Kind: KindFunction, Name: name, Args: args}
}

// Tuple returns (args...).
func Tuple(args ...Term) Term {
	return Term{Kind: KindFunction, Args: args}
}

// IsTuple reports whether the term is an unnamed function.
func (t Term) IsTuple() bool {
	return t.Kind == KindFunction && t.Name == ""
}

// IsSymbol reports whether the term is a constant.
func (t Term) IsSymbol() bool {
	return t.Kind == KindFunction && t.Name != "" && len(t.Args) == 0
}

// Int returns the value of a number term.
func (t Term) Int() (int, bool) {
	return t.Num, t.Kind == KindNumber
}

func (t Term) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t Term) write(sb *strings.Builder) {
	switch t.Kind {
	case KindNumber:
		sb.WriteString(strconv.Itoa(t.Num))
	case KindString:
		sb.WriteByte('"')
		sb.WriteString(escape(t.Name))
		sb.WriteByte('"')
	default:
		sb.WriteString(t.Name)
		if len(t.Args) == 0 && t.Name != "" {
			return
		}
		sb.WriteByte('(')
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteByte(',')
			}
			a.write(sb)
		}
		// A one-element tuple needs a trailing comma to stay a tuple.
		if t.Name == "" && len(t.Args) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	}
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escape(s string) string {
	return escaper.Replace(s)
}

// Compare orders terms: numbers, then functions, then strings. Functions
// compare by arity, then name, then arguments.
func (t Term) Compare(u Term) int {
	if c := cmp.Compare(t.Kind, u.Kind); c != 0 {
		return c
	}
	switch t.Kind {
	case KindNumber:
		return cmp.Compare(t.Num, u.Num)
	case KindString:
		return cmp.Compare(t.Name, u.Name)
	}
	if c := cmp.Compare(len(t.Args), len(u.Args)); c != 0 {
		return c
	}
	if c := cmp.Compare(t.Name, u.Name); c != 0 {
		return c
	}
	for i := range t.Args {
		if c := t.Args[i].Compare(u.Args[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Equal reports structural equality.
func (t Term) Equal(u Term) bool {
	return t.Compare(u) == 0
}
