package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/mapf-reach/internal/cache"
	"github.com/elektrokombinacija/mapf-reach/internal/config"
	"github.com/elektrokombinacija/mapf-reach/internal/core"
	"github.com/elektrokombinacija/mapf-reach/internal/facts"
	"github.com/elektrokombinacija/mapf-reach/internal/logging"
	"github.com/elektrokombinacija/mapf-reach/internal/problem"
	"github.com/elektrokombinacija/mapf-reach/internal/stats"
)

// Exit codes. 20 is what ASP solvers report for UNSATISFIABLE.
const (
	exitOK         = 0
	exitError      = 1
	exitInfeasible = 20
)

type globalFlags struct {
	config       string
	logLevel     string
	logJSON      bool
	workers      int
	mode         string
	goalBlocking bool
	cacheDir     string
	stats        bool
	metricsFile  string
	traceFile    string
	strict       bool
}

// app carries what every subcommand shares.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	flags globalFlags
	cfg   *config.Config
	log   *slog.Logger
	runID string

	rec      *stats.Recorder
	registry *prometheus.Registry
	cache    *cache.Cache

	tp       *sdktrace.TracerProvider
	traceOut io.Closer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, log: logging.Discard()}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.finish(ctx)

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, core.ErrInfeasible):
		return exitInfeasible
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mapfreach",
		Short: "Reachability preprocessing for multi-agent path finding",
		Long: `mapfreach reads a MAPF instance as edge/2, start/2 and goal/2 facts and emits
sp_length/2 and reach/3 facts that bound where each agent can be at each time
step under a sum-of-costs delta or a makespan horizon.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.config, "config", "", "YAML run configuration")
	pf.StringVar(&a.flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.BoolVar(&a.flags.logJSON, "log-json", false, "log as JSON")
	pf.IntVar(&a.flags.workers, "workers", 0, "concurrent per-agent workers (0 = GOMAXPROCS)")
	pf.StringVar(&a.flags.mode, "mode", "exact", "reach mode: exact or window")
	pf.BoolVar(&a.flags.goalBlocking, "goal-blocking", false, "block other agents' goals once they must have arrived")
	pf.StringVar(&a.flags.cacheDir, "cache-dir", "", "reuse reach sets from this BadgerDB directory")
	pf.BoolVar(&a.flags.stats, "stats", false, "print timings and values to stderr")
	pf.StringVar(&a.flags.metricsFile, "metrics", "", "write Prometheus metrics to this file")
	pf.StringVar(&a.flags.traceFile, "trace", "", "write OpenTelemetry spans as JSON to this file")
	pf.BoolVar(&a.flags.strict, "strict", false, "reject rules in fact input")

	root.AddCommand(
		a.spCmd(),
		a.budgetCmd(),
		a.reachCmd(),
		a.sweepCmd(),
		a.convertCmd(),
	)
	return root
}

// setup loads the configuration, applies flag overrides and opens the
// optional cache, metrics and tracing outputs.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.flags.config != "" {
		var err error
		if cfg, err = config.Load(a.flags.config); err != nil {
			return err
		}
	}
	fs := cmd.Flags()
	if fs.Changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	if fs.Changed("log-json") {
		cfg.Log.JSON = a.flags.logJSON
	}
	if fs.Changed("workers") {
		cfg.Workers = a.flags.workers
	}
	if fs.Changed("mode") {
		cfg.Mode = a.flags.mode
	}
	if fs.Changed("goal-blocking") {
		cfg.GoalBlocking = a.flags.goalBlocking
	}
	if fs.Changed("cache-dir") {
		cfg.Cache.Dir = a.flags.cacheDir
	}
	if a.flags.metricsFile != "" {
		cfg.Metrics.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	lc := cfg.Logging()
	lc.Writer = a.stderr
	a.runID = uuid.NewString()
	a.log = logging.New(lc).With(slog.String("run_id", a.runID), slog.String("command", cmd.Name()))
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.log))

	var m *stats.Metrics
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		m = stats.NewMetrics(a.registry)
	}
	a.rec = stats.NewRecorder(m)

	if cfg.Cache.Dir != "" {
		c, err := cache.Open(cache.Config{Dir: cfg.Cache.Dir, Logger: a.log.With(slog.String("component", "cache"))})
		if err != nil {
			return err
		}
		a.cache = c
	}

	if a.flags.traceFile != "" {
		f, err := os.Create(a.flags.traceFile)
		if err != nil {
			return err
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(f))
		if err != nil {
			f.Close()
			return err
		}
		a.tp = sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
		a.traceOut = f
		otel.SetTracerProvider(a.tp)
	}

	a.log.Debug("configured",
		slog.String("objective", cfg.Objective),
		slog.String("budget", cfg.Budget.String()),
		slog.String("mode", cfg.Mode),
		slog.Bool("goal_blocking", cfg.GoalBlocking),
		slog.Int("workers", cfg.Workers),
	)
	return nil
}

// finish flushes stats, metrics and spans and closes the cache.
func (a *app) finish(ctx context.Context) {
	if a.flags.stats && a.rec != nil {
		out, err := yaml.Marshal(a.rec.Snapshot())
		if err == nil {
			_, _ = a.stderr.Write(out)
		}
	}
	if a.registry != nil {
		if err := a.writeMetrics(); err != nil {
			a.log.Warn("write metrics failed", slog.Any("error", err))
		}
	}
	if a.tp != nil {
		if err := a.tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			a.log.Warn("trace shutdown failed", slog.Any("error", err))
		}
		a.traceOut.Close()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close failed", slog.Any("error", err))
		}
	}
}

func (a *app) writeMetrics() error {
	mfs, err := a.registry.Gather()
	if err != nil {
		return err
	}
	var w io.Writer = a.stderr
	if a.flags.metricsFile != "" {
		f, err := os.Create(a.flags.metricsFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// loadProblem reads fact files ("-" or none for stdin) and extracts the instance.
func (a *app) loadProblem(ctx context.Context, paths []string) (*problem.Problem, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	store := facts.NewStore()
	stop := a.rec.Time(stats.PhaseLoad)
	st, err := facts.Parser{Strict: a.flags.strict}.ReadFiles(paths, a.stdin, store)
	stop()
	if err != nil {
		return nil, err
	}
	a.log.Debug("facts loaded",
		slog.Int("files", len(paths)),
		slog.Int("facts", st.Facts),
		slog.Int("rules_skipped", st.Rules),
		slog.Int("directives_skipped", st.Directives),
	)

	opts := []problem.Option{
		problem.WithAlgoOptions(a.cfg.Options()),
		problem.WithLogger(a.log),
		problem.WithStats(a.rec),
	}
	if a.cache != nil {
		opts = append(opts, problem.WithCache(a.cache))
	}
	return problem.New(ctx, store, opts...)
}

// output opens path for writing; "" and "-" mean stdout.
func (a *app) output(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return a.stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// infeasible writes the unsatisfiable constraint and returns err so the
// process exits with exitInfeasible.
func (a *app) infeasible(w io.Writer, err error) error {
	a.log.Warn("instance infeasible", slog.Any("error", err))
	if werr := facts.Unsat(w); werr != nil {
		return werr
	}
	return err
}
