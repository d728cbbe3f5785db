// Package stats records phase timings and result values of a run and
// mirrors them into Prometheus collectors.
package stats

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/mapf-reach/internal/core"
)

// Phase names.
const (
	PhaseLoad         = "Load"
	PhaseExtract      = "Extract Problem"
	PhaseMinDelta     = "Min Delta"
	PhaseMinHorizon   = "Min Horizon"
	PhaseShortestPath = "Shortest Path"
	PhaseReachable    = "Reachable"
)

// Value names.
const (
	ValueDelta      = "Delta"
	ValueHorizon    = "Horizon"
	ValueReachable  = "Reachable"
	ValueMinCost    = "Min Cost"
	ValueMinHorizon = "Min Horizon"
	ValueAgents     = "Agents"
	ValueNodes      = "Nodes"
)

// Timing is the accumulated duration of a phase.
type Timing struct {
	Name     string
	Duration time.Duration
}

// Value is a named integer result.
type Value struct {
	Name  string
	Value int
}

// Recorder collects timings and values in first-seen order. A nil
// *Recorder ignores every call. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	timings []Timing
	values  []Value
	metrics *Metrics
}

// NewRecorder creates a recorder. m may be nil.
func NewRecorder(m *Metrics) *Recorder {
	return &Recorder{metrics: m}
}

// Time starts timing a phase; call the returned func to stop.
func (r *Recorder) Time(phase string) func() {
	if r == nil {
		return func() {}
	}
	start := time.Now()
	return func() { r.Observe(phase, time.Since(start)) }
}

// Observe adds d to the phase total.
func (r *Recorder) Observe(phase string, d time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	found := false
	for i := range r.timings {
		if r.timings[i].Name == phase {
			r.timings[i].Duration += d
			found = true
			break
		}
	}
	if !found {
		r.timings = append(r.timings, Timing{Name: phase, Duration: d})
	}
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.PhaseSeconds.WithLabelValues(phase).Observe(d.Seconds())
	}
}

// Set stores a value, replacing an earlier one of the same name.
func (r *Recorder) Set(name string, v int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.values {
		if r.values[i].Name == name {
			r.values[i].Value = v
			return
		}
	}
	r.values = append(r.values, Value{Name: name, Value: v})
}

// ReachEntries counts produced reach entries.
func (r *Recorder) ReachEntries(n int) {
	if r == nil {
		return
	}
	r.Set(ValueReachable, n)
	if r.metrics != nil {
		r.metrics.ReachEntries.Add(float64(n))
	}
}

// Infeasible counts an infeasible outcome.
func (r *Recorder) Infeasible(err error) {
	if r == nil || r.metrics == nil {
		return
	}
	reason := "no_path"
	if errors.Is(err, core.ErrBudgetTooSmall) {
		reason = "budget_too_small"
	}
	r.metrics.Infeasible.WithLabelValues(reason).Inc()
}

// Resolved counts a budget resolution.
func (r *Recorder) Resolved(b core.Budget, auto bool) {
	if r == nil {
		return
	}
	if b.Objective == core.Makespan {
		r.Set(ValueHorizon, b.Value)
	} else {
		r.Set(ValueDelta, b.Value)
	}
	if r.metrics != nil {
		kind := "fixed"
		if auto {
			kind = "auto"
		}
		r.metrics.Resolutions.WithLabelValues(b.Objective.String(), kind).Inc()
	}
}

// CacheLookup counts a cache hit or miss.
func (r *Recorder) CacheLookup(hit bool) {
	if r == nil || r.metrics == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.metrics.CacheLookups.WithLabelValues(result).Inc()
}

// Snapshot is a copy of the recorded data.
type Snapshot struct {
	Timings []Timing
	Values  []Value
}

// Snapshot copies the recorded data.
func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		Timings: append([]Timing(nil), r.timings...),
		Values:  append([]Value(nil), r.values...),
	}
}

// Timing returns the duration of a phase.
func (s Snapshot) Timing(phase string) (time.Duration, bool) {
	for _, t := range s.Timings {
		if t.Name == phase {
			return t.Duration, true
		}
	}
	return 0, false
}

// Value returns a recorded value.
func (s Snapshot) Value(name string) (int, bool) {
	for _, v := range s.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

// MarshalYAML keeps recording order:
//
//	Time:
//	  Load: 0.001s
//	Values:
//	  Delta: 0
func (s Snapshot) MarshalYAML() (any, error) {
	timings := &yaml.Node{Kind: yaml.MappingNode}
	for _, t := range s.Timings {
		timings.Content = append(timings.Content,
			scalar(t.Name),
			scalar(strconv.FormatFloat(t.Duration.Seconds(), 'f', 3, 64)+"s"),
		)
	}
	values := &yaml.Node{Kind: yaml.MappingNode}
	for _, v := range s.Values {
		values.Content = append(values.Content, scalar(v.Name), scalar(strconv.Itoa(v.Value)))
	}
	return &yaml.Node{
		Kind:    yaml.MappingNode,
		Content: []*yaml.Node{scalar("Time"), timings, scalar("Values"), values},
	}, nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: s}
}
