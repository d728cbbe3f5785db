package stats

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/mapf-reach/internal/core"
)

func TestRecorderOrderAndAccumulation(t *testing.T) {
	r := NewRecorder(nil)
	r.Observe(PhaseLoad, 2*time.Millisecond)
	r.Observe(PhaseShortestPath, time.Millisecond)
	r.Observe(PhaseLoad, 3*time.Millisecond)
	r.Set(ValueMinCost, 9)
	r.Set(ValueDelta, 1)
	r.Set(ValueMinCost, 10)

	s := r.Snapshot()
	require.Len(t, s.Timings, 2)
	assert.Equal(t, PhaseLoad, s.Timings[0].Name)
	d, ok := s.Timing(PhaseLoad)
	assert.True(t, ok)
	assert.Equal(t, 5*time.Millisecond, d)

	assert.Equal(t, []Value{{ValueMinCost, 10}, {ValueDelta, 1}}, s.Values)
	_, ok = s.Value(ValueHorizon)
	assert.False(t, ok)
}

func TestRecorderTime(t *testing.T) {
	r := NewRecorder(nil)
	stop := r.Time(PhaseReachable)
	time.Sleep(time.Millisecond)
	stop()

	d, ok := r.Snapshot().Timing(PhaseReachable)
	require.True(t, ok)
	assert.GreaterOrEqual(t, d, time.Millisecond)
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.Time(PhaseLoad)()
	r.Set(ValueDelta, 1)
	r.ReachEntries(4)
	r.Infeasible(core.NoPath("a"))
	r.Resolved(core.Budget{}, true)
	r.CacheLookup(true)
	assert.Equal(t, Snapshot{}, r.Snapshot())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := NewRecorder(m)

	r.ReachEntries(12)
	r.ReachEntries(3)
	r.Infeasible(core.NoPath("a"))
	r.Infeasible(core.BudgetTooSmall("a", 1, 3))
	r.Infeasible(core.BudgetTooSmall("b", 2, 3))
	r.Resolved(core.Budget{Objective: core.Makespan, Value: 4}, true)
	r.CacheLookup(false)
	r.Observe(PhaseLoad, time.Millisecond)

	assert.Equal(t, float64(15), testutil.ToFloat64(m.ReachEntries))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Infeasible.WithLabelValues("no_path")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Infeasible.WithLabelValues("budget_too_small")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Resolutions.WithLabelValues("makespan", "auto")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PhaseSeconds))

	v, ok := r.Snapshot().Value(ValueHorizon)
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestSnapshotYAML(t *testing.T) {
	r := NewRecorder(nil)
	r.Observe(PhaseLoad, 1500*time.Millisecond)
	r.Set(ValueDelta, 0)
	r.Set(ValueReachable, 42)

	out, err := yaml.Marshal(r.Snapshot())
	require.NoError(t, err)
	want := `Time:
    Load: 1.500s
Values:
    Delta: 0
    Reachable: 42
`
	assert.Equal(t, want, string(out))
}
