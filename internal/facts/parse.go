package facts

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// SyntaxError locates a problem in a fact file.
type SyntaxError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

// Stats counts the statements of a parsed input.
type Stats struct {
	Facts      int
	Rules      int
	Directives int
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Facts += o.Facts
	s.Rules += o.Rules
	s.Directives += o.Directives
}

// Parser reads ground facts from logic-program text. Directives such as
// #show are skipped. Statements that are not facts (rules, constraints,
// choices, pools) are skipped and counted unless Strict is set.
type Parser struct {
	Strict bool
}

// Parse reads every statement of r into sink. name is used in errors.
func (p Parser) Parse(name string, r io.Reader, sink Sink) (Stats, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return Stats{}, fmt.Errorf("read %s: %w", name, err)
	}
	s := newScanner(name, src)

	var st Stats
	for {
		if err := s.skipSpace(); err != nil {
			return st, err
		}
		if s.pos >= len(s.src) {
			return st, nil
		}

		look := *s
		kind, dot, err := look.scanStatement()
		if err != nil {
			return st, err
		}
		switch kind {
		case stmtDirective:
			st.Directives++
			*s = look
			s.next()
			continue
		case stmtRule:
			if p.Strict {
				return st, s.errorf("rule not allowed in fact input")
			}
			st.Rules++
			*s = look
			s.next()
			continue
		}

		f, err := s.parseFact(dot)
		if err != nil {
			return st, err
		}
		if err := sink.Add(f); err != nil {
			return st, err
		}
		st.Facts++
	}
}

// ReadFiles parses every path into sink. "-" reads stdin.
func (p Parser) ReadFiles(paths []string, stdin io.Reader, sink Sink) (Stats, error) {
	var total Stats
	for _, path := range paths {
		var (
			st  Stats
			err error
		)
		if path == "-" {
			st, err = p.Parse("<stdin>", stdin, sink)
		} else {
			st, err = p.parseFile(path, sink)
		}
		total.Add(st)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (p Parser) parseFile(path string, sink Sink) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, err
	}
	defer f.Close()
	return p.Parse(path, f, sink)
}

// ParseTerm parses a single ground term such as (1,2) or f(a,"b").
func ParseTerm(text string) (Term, error) {
	s := newScanner("<term>", []byte(text))
	t, err := s.parseTerm()
	if err != nil {
		return Term{}, err
	}
	if err := s.skipSpace(); err != nil {
		return Term{}, err
	}
	if s.pos < len(s.src) {
		return Term{}, s.errorf("unexpected %q after term", s.peek())
	}
	return t, nil
}

type stmtKind int

const (
	stmtFact stmtKind = iota
	stmtRule
	stmtDirective
)

type scanner struct {
	name string
	src  []byte
	pos  int
	end  int
	line int
	col  int
}

func newScanner(name string, src []byte) *scanner {
	return &scanner{name: name, src: src, end: len(src), line: 1, col: 1}
}

func (s *scanner) peek() byte {
	return s.peekAt(0)
}

func (s *scanner) peekAt(k int) byte {
	if s.pos+k >= s.end {
		return 0
	}
	return s.src[s.pos+k]
}

func (s *scanner) next() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func (s *scanner) errorf(format string, args ...any) error {
	return &SyntaxError{File: s.name, Line: s.line, Col: s.col, Msg: fmt.Sprintf(format, args...)}
}

// skipSpace skips whitespace, % line comments and %* *% block comments.
func (s *scanner) skipSpace() error {
	for s.pos < s.end {
		c := s.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.next()
		case c == '%' && s.peekAt(1) == '*':
			line, col := s.line, s.col
			s.next()
			s.next()
			for {
				if s.pos >= s.end {
					return &SyntaxError{File: s.name, Line: line, Col: col, Msg: "unterminated block comment"}
				}
				if s.peek() == '*' && s.peekAt(1) == '%' {
					s.next()
					s.next()
					break
				}
				s.next()
			}
		case c == '%':
			for s.pos < s.end && s.peek() != '\n' {
				s.next()
			}
		default:
			return nil
		}
	}
	return nil
}

// scanStatement classifies the statement at the cursor and stops on its
// terminating period.
func (s *scanner) scanStatement() (stmtKind, int, error) {
	line, col := s.line, s.col
	kind := stmtFact
	if s.peek() == '#' {
		kind = stmtDirective
	}
	for {
		if err := s.skipSpace(); err != nil {
			return kind, 0, err
		}
		if s.pos >= s.end {
			return kind, 0, &SyntaxError{File: s.name, Line: line, Col: col, Msg: "statement not terminated by '.'"}
		}
		c := s.peek()
		switch {
		case c == '"':
			if _, err := s.parseString(); err != nil {
				return kind, 0, err
			}
		case c == '.' && s.peekAt(1) == '.':
			s.next()
			s.next()
			if kind == stmtFact {
				kind = stmtRule
			}
		case c == '.':
			return kind, s.pos, nil
		case c == ':' || c == ';' || c == '|' || c == '{':
			if kind == stmtFact {
				kind = stmtRule
			}
			s.next()
		default:
			s.next()
		}
	}
}

// parseFact parses the atom ending at dot and consumes the period.
func (s *scanner) parseFact(dot int) (Fact, error) {
	s.end = dot
	defer func() { s.end = len(s.src) }()

	line, col := s.line, s.col
	t, err := s.parseTerm()
	if err != nil {
		return Fact{}, err
	}
	if err := s.skipSpace(); err != nil {
		return Fact{}, err
	}
	if s.pos < dot {
		return Fact{}, s.errorf("unexpected %q in fact", s.peek())
	}
	if t.Kind != KindFunction || t.IsTuple() {
		return Fact{}, &SyntaxError{File: s.name, Line: line, Col: col, Msg: fmt.Sprintf("fact %s is not an atom", t)}
	}
	s.end = len(s.src)
	s.next()
	return Fact{Pred: t.Name, Args: t.Args}, nil
}

func (s *scanner) parseTerm() (Term, error) {
	if err := s.skipSpace(); err != nil {
		return Term{}, err
	}
	c := s.peek()
	switch {
	case s.pos >= s.end:
		return Term{}, s.errorf("unexpected end of statement")
	case c == '-' || isDigit(c):
		return s.parseNumber()
	case c == '"':
		return s.parseString()
	case c == '(':
		s.next()
		args, trailing, err := s.parseArgs()
		if err != nil {
			return Term{}, err
		}
		if len(args) == 1 && !trailing {
			return args[0], nil
		}
		return Tuple(args...), nil
	case c == '_' || isLetter(c):
		return s.parseIdent()
	default:
		return Term{}, s.errorf("unexpected %q", c)
	}
}

func (s *scanner) parseNumber() (Term, error) {
	start := s.pos
	if s.peek() == '-' {
		s.next()
	}
	if !isDigit(s.peek()) {
		return Term{}, s.errorf("expected digit")
	}
	for isDigit(s.peek()) {
		s.next()
	}
	n, err := strconv.Atoi(string(s.src[start:s.pos]))
	if err != nil {
		return Term{}, s.errorf("invalid number %s", s.src[start:s.pos])
	}
	return Number(n), nil
}

func (s *scanner) parseString() (Term, error) {
	line, col := s.line, s.col
	s.next()
	var sb strings.Builder
	for {
		if s.pos >= s.end {
			return Term{}, &SyntaxError{File: s.name, Line: line, Col: col, Msg: "unterminated string"}
		}
		c := s.next()
		switch c {
		case '"':
			return String(sb.String()), nil
		case '\\':
			if s.pos >= s.end {
				continue
			}
			switch e := s.next(); e {
			case 'n':
				sb.WriteByte('\n')
			default:
				sb.WriteByte(e)
			}
		default:
			sb.WriteByte(c)
		}
	}
}

func (s *scanner) parseIdent() (Term, error) {
	start := s.pos
	for s.peek() == '_' {
		s.next()
	}
	if !isLower(s.peek()) {
		for isIdentChar(s.peek()) {
			s.next()
		}
		return Term{}, s.errorf("variable %s in fact", s.src[start:s.pos])
	}
	for isIdentChar(s.peek()) {
		s.next()
	}
	name := string(s.src[start:s.pos])

	if err := s.skipSpace(); err != nil {
		return Term{}, err
	}
	if s.peek() != '(' {
		return Symbol(name), nil
	}
	s.next()
	args, _, err := s.parseArgs()
	if err != nil {
		return Term{}, err
	}
	return Function(name, args...), nil
}

// parseArgs parses a comma separated list after '(' up to and including ')'.
// trailing reports a comma before the closing parenthesis.
func (s *scanner) parseArgs() ([]Term, bool, error) {
	if err := s.skipSpace(); err != nil {
		return nil, false, err
	}
	if s.peek() == ')' {
		s.next()
		return nil, false, nil
	}
	var args []Term
	for {
		t, err := s.parseTerm()
		if err != nil {
			return nil, false, err
		}
		args = append(args, t)
		if err := s.skipSpace(); err != nil {
			return nil, false, err
		}
		switch s.peek() {
		case ',':
			s.next()
			if err := s.skipSpace(); err != nil {
				return nil, false, err
			}
			if s.peek() == ')' {
				s.next()
				return args, true, nil
			}
		case ')':
			s.next()
			return args, false, nil
		default:
			if s.pos >= s.end {
				return nil, false, s.errorf("missing ')'")
			}
			return nil, false, s.errorf("expected ',' or ')', got %q", s.peek())
		}
	}
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLower(c byte) bool  { return c >= 'a' && c <= 'z' }
func isLetter(c byte) bool { return isLower(c) || (c >= 'A' && c <= 'Z') }
func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_' || c == '\''
}
