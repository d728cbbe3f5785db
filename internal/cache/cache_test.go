package cache

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-reach/internal/core"
)

func openTest(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleSet(b core.Budget) *core.ReachSet {
	return core.NewReachSet(b, []core.Entry{
		{Agent: "1", Node: "(0,0)", Time: 0},
		{Agent: "1", Node: "(1,0)", Time: 1},
		{Agent: "b", Node: "x", Time: 0},
	})
}

func TestPutGet(t *testing.T) {
	c := openTest(t)
	ctx := context.Background()
	b := core.Budget{Objective: core.SumOfCosts, Value: 2}
	k := Key{Digest: "abc", Budget: b, Mode: "exact"}

	_, ok, err := c.Get(ctx, k)
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleSet(b)
	require.NoError(t, c.Put(ctx, k, want))

	got, ok, err := c.Get(ctx, k)
	require.NoError(t, err)
	require.True(t, ok)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cached set mismatch (-want +got):\n%s", diff)
	}
}

func TestKeysSeparateParameters(t *testing.T) {
	c := openTest(t)
	ctx := context.Background()
	base := Key{Digest: "abc", Budget: core.Budget{Objective: core.SumOfCosts, Value: 1}, Mode: "exact"}
	require.NoError(t, c.Put(ctx, base, sampleSet(base.Budget)))

	variants := []Key{
		{Digest: "abd", Budget: base.Budget, Mode: "exact"},
		{Digest: "abc", Budget: core.Budget{Objective: core.Makespan, Value: 1}, Mode: "exact"},
		{Digest: "abc", Budget: core.Budget{Objective: core.SumOfCosts, Value: 2}, Mode: "exact"},
		{Digest: "abc", Budget: base.Budget, Mode: "window"},
		{Digest: "abc", Budget: base.Budget, Mode: "exact", GoalBlocking: true},
	}
	for _, k := range variants {
		_, ok, err := c.Get(ctx, k)
		require.NoError(t, err)
		assert.False(t, ok, "%+v", k)
	}

	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPersistentReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	b := core.Budget{Objective: core.Makespan, Value: 5}
	k := Key{Digest: "d", Budget: b, Mode: "window"}

	c, err := Open(Config{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, k, sampleSet(b)))
	require.NoError(t, c.Close())

	c, err = Open(Config{Dir: dir})
	require.NoError(t, err)
	defer c.Close()
	got, ok, err := c.Get(ctx, k)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.Len())
}

func TestOpenRequiresDir(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestCancelledContext(t *testing.T) {
	c := openTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.Get(ctx, Key{Digest: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, c.Put(ctx, Key{Digest: "x"}, sampleSet(core.Budget{})), context.Canceled)
}
