package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-reach/internal/facts"
	"github.com/elektrokombinacija/mapf-reach/internal/logging"
	"github.com/elektrokombinacija/mapf-reach/internal/problem"
)

func TestGenerateDeterministic(t *testing.T) {
	p := Params{Seed: 7, Agents: 4, Width: 8, Height: 6, Obstacles: 0.25}
	m1, t1, err := generate(p)
	require.NoError(t, err)
	m2, t2, err := generate(p)
	require.NoError(t, err)
	assert.Equal(t, m1, m2)
	assert.Equal(t, t1, t2)

	starts := make(map[[2]int]bool)
	goals := make(map[[2]int]bool)
	for _, task := range t1 {
		assert.True(t, m1.Passable(task.StartX, task.StartY))
		assert.True(t, m1.Passable(task.GoalX, task.GoalY))
		starts[[2]int{task.StartX, task.StartY}] = true
		goals[[2]int{task.GoalX, task.GoalY}] = true
	}
	assert.Len(t, starts, 4)
	assert.Len(t, goals, 4)
}

func TestGenerateErrors(t *testing.T) {
	_, _, err := generate(Params{Seed: 1, Agents: 1, Width: 0, Height: 3})
	assert.Error(t, err)
	_, _, err = generate(Params{Seed: 1, Agents: 1, Width: 3, Height: 3, Obstacles: 1})
	assert.Error(t, err)
	_, _, err = generate(Params{Seed: 1, Agents: 10, Width: 2, Height: 2})
	assert.ErrorContains(t, err, "need 10")
}

func TestWriteInstanceLoads(t *testing.T) {
	dir := t.TempDir()
	p := Params{Seed: 3, Agents: 3, Width: 6, Height: 6, Obstacles: 0.1}
	entry, err := writeInstance(dir, p)
	require.NoError(t, err)
	assert.Equal(t, p.Name()+".lp", entry.File)

	f, err := os.Open(filepath.Join(dir, entry.File))
	require.NoError(t, err)
	defer f.Close()
	store := facts.NewStore()
	_, err = facts.Parser{Strict: true}.Parse(entry.File, f, store)
	require.NoError(t, err)

	prob, err := problem.New(context.Background(), store, problem.WithLogger(logging.Discard()))
	require.NoError(t, err)
	sp, err := prob.ShortestPathLengths(context.Background())
	require.NoError(t, err)

	sum, makespan := 0, 0
	for _, l := range sp {
		sum += l
		makespan = max(makespan, l)
	}
	assert.Equal(t, entry.SumOfCosts, sum)
	assert.Equal(t, entry.Makespan, makespan)
	assert.Equal(t, 3, prob.Instance().Agents.Len())
}
