package facts

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreDedupAndCount(t *testing.T) {
	s := NewStore(
		Edge(Number(1), Number(2)),
		Edge(Number(1), Number(2)),
		Edge(Number(2), Number(3)),
		Agent(Number(1)),
	)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.Count(SigEdge))
	assert.Equal(t, 1, s.Count(SigAgent))
	assert.Equal(t, 0, s.Count(SigReach))
	assert.Len(t, s.Select(SigEdge), 2)
}

func TestStoreConcurrentAdd(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = s.Add(Vertex(Number(i)))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, s.Len())
}

func TestStoreEachStops(t *testing.T) {
	s := NewStore(Vertex(Number(1)), Vertex(Number(2)), Vertex(Number(3)))
	stop := errors.New("stop")
	n := 0
	err := s.Each(func(Fact) error {
		n++
		if n == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, n)
}

func TestSortedOrder(t *testing.T) {
	s := NewStore(
		Reach(Symbol("b"), Number(1), 0),
		Reach(Number(10), Number(1), 0),
		Reach(Number(2), Number(1), 0),
		SPLength(Number(1), 3),
		Reach(String("s"), Number(1), 0),
		Reach(Number(2), Number(1), 1),
	)
	var sb strings.Builder
	require.NoError(t, WriteAll(&sb, s.Facts()))
	want := `reach(2,1,0).
reach(2,1,1).
reach(10,1,0).
reach(b,1,0).
reach("s",1,0).
sp_length(1,3).
`
	assert.Equal(t, want, sb.String())
}

func TestCounter(t *testing.T) {
	c := Counter{}
	_ = c.Add(Edge(Number(1), Number(2)))
	_ = c.Add(Edge(Number(1), Number(3)))
	_ = c.Add(Goal(Number(1), Number(3)))
	assert.Equal(t, 2, c[SigEdge])
	assert.Equal(t, 1, c[SigGoal])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriterStickyError(t *testing.T) {
	w := NewWriter(failingWriter{})
	for i := 0; i < 10000; i++ {
		if err := w.Add(Vertex(Number(i))); err != nil {
			break
		}
	}
	assert.EqualError(t, w.Flush(), "disk full")
	assert.EqualError(t, w.Add(Vertex(Number(0))), "disk full")
}

func TestUnsat(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Unsat(&sb))
	assert.Equal(t, ":- #true.\n", sb.String())

	store, st, err := parse(t, Parser{}, sb.String())
	require.NoError(t, err)
	assert.Equal(t, 1, st.Rules)
	assert.Equal(t, 0, store.Len())
}

func TestTermString(t *testing.T) {
	tests := []struct {
		term Term
		want string
	}{
		{Number(-2), "-2"},
		{Symbol("a"), "a"},
		{String(`x"y`), `"x\"y"`},
		{Tuple(Number(1), Number(2)), "(1,2)"},
		{Tuple(Number(1)), "(1,)"},
		{Tuple(), "()"},
		{Function("f", Symbol("a"), Tuple()), "f(a,())"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.term.String())
	}
}
