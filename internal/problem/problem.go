// Package problem extracts a MAPF instance from facts and answers budget
// and reachability queries on it.
package problem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/elektrokombinacija/mapf-reach/internal/algo"
	"github.com/elektrokombinacija/mapf-reach/internal/cache"
	"github.com/elektrokombinacija/mapf-reach/internal/core"
	"github.com/elektrokombinacija/mapf-reach/internal/facts"
	"github.com/elektrokombinacija/mapf-reach/internal/logging"
	"github.com/elektrokombinacija/mapf-reach/internal/stats"
)

var tracer = otel.Tracer("mapfreach.problem")

type options struct {
	algo   algo.Options
	logger *slog.Logger
	cache  *cache.Cache
	stats  *stats.Recorder
}

// Option configures a Problem.
type Option func(*options)

// WithWorkers bounds concurrent per-agent work. n <= 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.algo.Workers = n }
}

// WithMode selects exact or window reachability.
func WithMode(m algo.Mode) Option {
	return func(o *options) { o.algo.Mode = m }
}

// WithGoalBlocking enables goal blocking.
func WithGoalBlocking(on bool) Option {
	return func(o *options) { o.algo.GoalBlocking = on }
}

// WithAlgoOptions replaces all algorithm options at once.
func WithAlgoOptions(a algo.Options) Option {
	return func(o *options) { o.algo = a }
}

// WithLogger sets the logger. Without it the context logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCache stores and reuses reach sets.
func WithCache(c *cache.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithStats records phase timings and values.
func WithStats(r *stats.Recorder) Option {
	return func(o *options) { o.stats = r }
}

// BudgetRequest asks for the minimal budget of an objective or checks a
// fixed one.
type BudgetRequest struct {
	Objective core.Objective
	Auto      bool
	Value     int
}

// Auto requests the minimal budget.
func Auto(obj core.Objective) BudgetRequest {
	return BudgetRequest{Objective: obj, Auto: true}
}

// Fixed requests a fixed delta or horizon.
func Fixed(obj core.Objective, v int) BudgetRequest {
	return BudgetRequest{Objective: obj, Value: v}
}

func (r BudgetRequest) String() string {
	if r.Auto {
		return r.Objective.BudgetName() + "=auto"
	}
	return core.Budget{Objective: r.Objective, Value: r.Value}.String()
}

// Problem is an extracted instance plus the lazily computed shortest path
// table. Queries with different budgets are independent of each other.
type Problem struct {
	inst   *core.Instance
	nodes  map[core.Node]facts.Term
	agents map[core.AgentID]facts.Term
	opts   options
	log    *slog.Logger

	digestOnce sync.Once
	digest     string

	spMu  sync.Mutex
	sp    map[core.AgentID]int
	spErr error
}

// New extracts the instance from vertex/1, edge/2, agent/1, start/2 and
// goal/2 facts. Other predicates are ignored.
func New(ctx context.Context, src facts.Source, opts ...Option) (*Problem, error) {
	p := &Problem{
		nodes:  make(map[core.Node]facts.Term),
		agents: make(map[core.AgentID]facts.Term),
	}
	for _, opt := range opts {
		opt(&p.opts)
	}
	p.log = p.opts.logger
	if p.log == nil {
		p.log = logging.FromContext(ctx)
	}

	ctx, span := tracer.Start(ctx, "problem.Extract")
	defer span.End()
	defer p.opts.stats.Time(stats.PhaseExtract)()
	start := time.Now()

	b := core.NewBuilder()
	err := src.Each(func(f facts.Fact) error {
		switch f.Signature() {
		case facts.SigVertex:
			b.AddVertex(p.node(f.Args[0]))
		case facts.SigEdge:
			b.AddEdge(p.node(f.Args[0]), p.node(f.Args[1]))
		case facts.SigAgent:
			b.DeclareAgent(p.agent(f.Args[0]))
		case facts.SigStart:
			b.SetStart(p.agent(f.Args[0]), p.node(f.Args[1]))
		case facts.SigGoal:
			b.SetGoal(p.agent(f.Args[0]), p.node(f.Args[1]))
		}
		return ctx.Err()
	})
	if err == nil {
		p.inst, err = b.Build()
	}
	if err != nil {
		fail(span, err)
		return nil, err
	}

	p.opts.stats.Set(stats.ValueAgents, p.inst.Agents.Len())
	p.opts.stats.Set(stats.ValueNodes, p.inst.Graph.Len())
	span.SetAttributes(
		attribute.Int("problem.agents", p.inst.Agents.Len()),
		attribute.Int("problem.nodes", p.inst.Graph.Len()),
		attribute.Int("problem.edges", p.inst.Graph.EdgeCount()),
	)
	p.log.Debug("problem extracted",
		slog.Int("agents", p.inst.Agents.Len()),
		slog.Int("nodes", p.inst.Graph.Len()),
		slog.Int("edges", p.inst.Graph.EdgeCount()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return p, nil
}

func (p *Problem) node(t facts.Term) core.Node {
	n := core.Node(t.String())
	if _, ok := p.nodes[n]; !ok {
		p.nodes[n] = t
	}
	return n
}

func (p *Problem) agent(t facts.Term) core.AgentID {
	id := core.AgentID(t.String())
	if _, ok := p.agents[id]; !ok {
		p.agents[id] = t
	}
	return id
}

// Instance returns the extracted instance.
func (p *Problem) Instance() *core.Instance {
	return p.inst
}

// Options returns the algorithm options in effect.
func (p *Problem) Options() algo.Options {
	return p.opts.algo
}

// Digest returns the instance content hash.
func (p *Problem) Digest() string {
	p.digestOnce.Do(func() { p.digest = p.inst.Digest() })
	return p.digest
}

// NodeTerm returns the term a node was read from.
func (p *Problem) NodeTerm(n core.Node) facts.Term {
	if t, ok := p.nodes[n]; ok {
		return t
	}
	return facts.Symbol(string(n))
}

// AgentTerm returns the term an agent id was read from.
func (p *Problem) AgentTerm(a core.AgentID) facts.Term {
	if t, ok := p.agents[a]; ok {
		return t
	}
	return facts.Symbol(string(a))
}

// ShortestPathLengths returns every agent's shortest path length. The
// table is kept after the first successful call; an agent without a path
// yields an error matching core.ErrInfeasible on every call. Other errors,
// such as a cancelled context, are returned without being kept.
func (p *Problem) ShortestPathLengths(ctx context.Context) (map[core.AgentID]int, error) {
	p.spMu.Lock()
	defer p.spMu.Unlock()
	if p.sp != nil || p.spErr != nil {
		return p.sp, p.spErr
	}

	ctx, span := tracer.Start(ctx, "problem.ShortestPath")
	defer span.End()
	stop := p.opts.stats.Time(stats.PhaseShortestPath)
	start := time.Now()

	sp, err := algo.ShortestPathLengths(ctx, p.inst, p.opts.algo.Workers)
	stop()
	if err != nil {
		fail(span, err)
		var infeasible *core.InfeasibleError
		if errors.As(err, &infeasible) {
			p.spErr = err
			p.opts.stats.Infeasible(err)
		}
		return nil, err
	}
	p.sp = sp

	sum, maxLen := 0, 0
	for _, l := range sp {
		sum += l
		maxLen = max(maxLen, l)
	}
	p.opts.stats.Set(stats.ValueMinCost, sum)
	p.opts.stats.Set(stats.ValueMinHorizon, maxLen)
	span.SetAttributes(attribute.Int("problem.min_cost", sum))
	p.log.Debug("shortest paths computed",
		slog.Int("agents", len(sp)),
		slog.Int("min_cost", sum),
		slog.Int("min_horizon", maxLen),
		slog.Duration("elapsed", time.Since(start)),
	)
	return sp, nil
}

// ResolveBudget returns the minimal budget for an automatic request, or
// the validated fixed budget.
func (p *Problem) ResolveBudget(ctx context.Context, req BudgetRequest) (core.Budget, error) {
	sp, err := p.ShortestPathLengths(ctx)
	if err != nil {
		return core.Budget{}, err
	}

	ctx, span := tracer.Start(ctx, "problem.ResolveBudget", trace.WithAttributes(
		attribute.String("budget.objective", req.Objective.String()),
		attribute.Bool("budget.auto", req.Auto),
	))
	defer span.End()

	var b core.Budget
	if req.Auto {
		phase := stats.PhaseMinDelta
		if req.Objective == core.Makespan {
			phase = stats.PhaseMinHorizon
		}
		stop := p.opts.stats.Time(phase)
		b, err = algo.MinBudget(ctx, p.inst, sp, req.Objective, p.opts.algo)
		stop()
	} else {
		b = core.Budget{Objective: req.Objective, Value: req.Value}
		err = algo.CheckBudget(p.inst, sp, b)
	}
	if err != nil {
		fail(span, err)
		if errors.Is(err, core.ErrInfeasible) {
			p.opts.stats.Infeasible(err)
		}
		return core.Budget{}, err
	}

	p.opts.stats.Resolved(b, req.Auto)
	span.SetAttributes(attribute.Int("budget.value", b.Value))
	p.log.Debug("budget resolved",
		slog.String("objective", b.Objective.String()),
		slog.String("budget", b.String()),
		slog.Bool("auto", req.Auto),
	)
	return b, nil
}

// Synthesize returns the reach set for b. Results are read from and
// written to the cache when one is configured.
func (p *Problem) Synthesize(ctx context.Context, b core.Budget) (*core.ReachSet, error) {
	sp, err := p.ShortestPathLengths(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "problem.Synthesize", trace.WithAttributes(
		attribute.String("budget.objective", b.Objective.String()),
		attribute.Int("budget.value", b.Value),
		attribute.String("reach.mode", p.opts.algo.Mode.String()),
	))
	defer span.End()

	key := cache.Key{
		Digest:       p.Digest(),
		Budget:       b,
		Mode:         p.opts.algo.Mode.String(),
		GoalBlocking: p.opts.algo.GoalBlocking,
	}
	if p.opts.cache != nil {
		rs, ok, err := p.opts.cache.Get(ctx, key)
		p.opts.stats.CacheLookup(ok)
		switch {
		case err != nil:
			p.log.Warn("reach cache read failed", slog.Any("error", err))
		case ok:
			span.SetAttributes(attribute.Bool("reach.cached", true))
			p.opts.stats.ReachEntries(rs.Len())
			return rs, nil
		}
	}

	stop := p.opts.stats.Time(stats.PhaseReachable)
	start := time.Now()
	rs, err := algo.NewSynthesizer(p.opts.algo).Synthesize(ctx, p.inst, sp, b)
	stop()
	if err != nil {
		fail(span, err)
		if errors.Is(err, core.ErrInfeasible) {
			p.opts.stats.Infeasible(err)
		}
		return nil, err
	}

	p.opts.stats.ReachEntries(rs.Len())
	span.SetAttributes(attribute.Int("reach.entries", rs.Len()))
	p.log.Debug("reachability synthesized",
		slog.String("budget", b.String()),
		slog.Int("entries", rs.Len()),
		slog.Duration("elapsed", time.Since(start)),
	)

	if p.opts.cache != nil {
		if err := p.opts.cache.Put(ctx, key, rs); err != nil {
			p.log.Warn("reach cache write failed", slog.Any("error", err))
		}
	}
	return rs, nil
}

// AddShortestPaths emits sp_length(A,L) for every agent. Nothing is
// emitted when some agent has no path.
func (p *Problem) AddShortestPaths(ctx context.Context, sink facts.Sink) error {
	sp, err := p.ShortestPathLengths(ctx)
	if err != nil {
		return err
	}
	for _, a := range p.inst.Agents.All() {
		if err := sink.Add(facts.SPLength(p.AgentTerm(a.ID), sp[a.ID])); err != nil {
			return fmt.Errorf("emit sp_length: %w", err)
		}
	}
	return nil
}

// AddReachable emits reach(A,U,T) for budget b, preceded by sp_length/2
// for every agent. Nothing is emitted when the budget is infeasible.
func (p *Problem) AddReachable(ctx context.Context, sink facts.Sink, b core.Budget) error {
	rs, err := p.Synthesize(ctx, b)
	if err != nil {
		return err
	}
	if err := p.AddShortestPaths(ctx, sink); err != nil {
		return err
	}
	for _, e := range rs.Entries {
		if err := sink.Add(facts.Reach(p.AgentTerm(e.Agent), p.NodeTerm(e.Node), e.Time)); err != nil {
			return fmt.Errorf("emit reach: %w", err)
		}
	}
	return nil
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
