package facts

import (
	"bufio"
	"io"
)

// Writer is a Sink that prints one fact per line.
type Writer struct {
	w   *bufio.Writer
	err error
	n   int
}

// NewWriter wraps w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Add writes f followed by a newline. After the first write error every
// call returns that error.
func (w *Writer) Add(f Fact) error {
	if w.err != nil {
		return w.err
	}
	if _, err := w.w.WriteString(f.String()); err != nil {
		w.err = err
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		w.err = err
		return err
	}
	w.n++
	return nil
}

// Comment writes a % line comment.
func (w *Writer) Comment(text string) error {
	if w.err != nil {
		return w.err
	}
	if _, err := w.w.WriteString("% " + text + "\n"); err != nil {
		w.err = err
	}
	return w.err
}

// Count returns the number of facts written.
func (w *Writer) Count() int {
	return w.n
}

// Flush writes any buffered data.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

// WriteAll writes facts in sorted order.
func WriteAll(w io.Writer, fs []Fact) error {
	sorted := make([]Fact, len(fs))
	copy(sorted, fs)
	SortFacts(sorted)

	fw := NewWriter(w)
	for _, f := range sorted {
		if err := fw.Add(f); err != nil {
			return err
		}
	}
	return fw.Flush()
}

// UnsatConstraint is the integrity constraint that makes any program
// containing it unsatisfiable.
const UnsatConstraint = ":- #true."

// Unsat writes UnsatConstraint.
func Unsat(w io.Writer) error {
	_, err := io.WriteString(w, UnsatConstraint+"\n")
	return err
}
