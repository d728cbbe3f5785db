// Command run_benchmarks runs reachability synthesis in-process over a
// directory of fact files and records one row per instance and objective.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/elektrokombinacija/mapf-reach/internal/algo"
	"github.com/elektrokombinacija/mapf-reach/internal/core"
	"github.com/elektrokombinacija/mapf-reach/internal/facts"
	"github.com/elektrokombinacija/mapf-reach/internal/logging"
	"github.com/elektrokombinacija/mapf-reach/internal/problem"
)

// Result is one benchmark row.
type Result struct {
	Timestamp string  `json:"timestamp"`
	GoVersion string  `json:"go_version"`
	OS        string  `json:"os"`
	Arch      string  `json:"arch"`
	Instance  string  `json:"instance"`
	Agents    int     `json:"agents"`
	Nodes     int     `json:"nodes"`
	Objective string  `json:"objective"`
	Mode      string  `json:"mode"`
	Budget    int     `json:"budget"`
	SPSum     int     `json:"sp_sum"`
	Reach     int     `json:"reach"`
	RuntimeMs float64 `json:"runtime_ms"`
	Feasible  bool    `json:"feasible"`
	Error     string  `json:"error,omitempty"`
}

// runOne resolves the minimal budget for obj and synthesizes its reach set.
// Infeasible instances produce a row with Feasible=false; other failures
// are returned.
func runOne(ctx context.Context, path string, obj core.Objective, opts algo.Options) (*Result, error) {
	r := &Result{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Instance:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Objective: obj.String(),
		Mode:      opts.Mode.String(),
	}

	store := facts.NewStore()
	if _, err := (facts.Parser{}).ReadFiles([]string{path}, nil, store); err != nil {
		return nil, err
	}
	p, err := problem.New(ctx, store, problem.WithAlgoOptions(opts), problem.WithLogger(logging.Discard()))
	if err != nil {
		return nil, err
	}
	r.Agents = p.Instance().Agents.Len()
	r.Nodes = p.Instance().Graph.Len()

	start := time.Now()
	err = func() error {
		sp, err := p.ShortestPathLengths(ctx)
		if err != nil {
			return err
		}
		for _, l := range sp {
			r.SPSum += l
		}
		b, err := p.ResolveBudget(ctx, problem.Auto(obj))
		if err != nil {
			return err
		}
		r.Budget = b.Value
		rs, err := p.Synthesize(ctx, b)
		if err != nil {
			return err
		}
		r.Reach = rs.Len()
		return nil
	}()
	r.RuntimeMs = float64(time.Since(start).Microseconds()) / 1000.0

	switch {
	case err == nil:
		r.Feasible = true
	case errors.Is(err, core.ErrInfeasible):
		r.Error = err.Error()
	default:
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

var csvHeader = []string{
	"timestamp", "go_version", "os", "arch",
	"instance", "agents", "nodes", "objective", "mode",
	"budget", "sp_sum", "reach", "runtime_ms", "feasible", "error",
}

func writeCSV(w io.Writer, results []*Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Timestamp, r.GoVersion, r.OS, r.Arch,
			r.Instance, strconv.Itoa(r.Agents), strconv.Itoa(r.Nodes), r.Objective, r.Mode,
			strconv.Itoa(r.Budget), strconv.Itoa(r.SPSum), strconv.Itoa(r.Reach),
			strconv.FormatFloat(r.RuntimeMs, 'f', 3, 64), strconv.FormatBool(r.Feasible), r.Error,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeResults(path string, results []*Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(results)
	} else {
		err = writeCSV(f, results)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

func printSummary(w io.Writer, results []*Result) error {
	type agg struct {
		runs, feasible int
		ms             float64
		reach          int
	}
	byObj := make(map[string]*agg)
	for _, r := range results {
		a := byObj[r.Objective]
		if a == nil {
			a = &agg{}
			byObj[r.Objective] = a
		}
		a.runs++
		if r.Feasible {
			a.feasible++
			a.ms += r.RuntimeMs
			a.reach += r.Reach
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "OBJECTIVE\tRUNS\tFEASIBLE\tAVG MS\tAVG REACH\t")
	names := make([]string, 0, len(byObj))
	for name := range byObj {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		a := byObj[name]
		avgMs, avgReach := 0.0, 0.0
		if a.feasible > 0 {
			avgMs = a.ms / float64(a.feasible)
			avgReach = float64(a.reach) / float64(a.feasible)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%.1f\t\n", name, a.runs, a.feasible, avgMs, avgReach)
	}
	return tw.Flush()
}

func main() {
	inputDir := flag.String("input", "testdata", "Directory containing .lp instance files")
	output := flag.String("output", "evidence/benchmark_results.csv", "Output file (.csv or .json)")
	timeout := flag.Duration("timeout", 5*time.Minute, "Timeout per run")
	objectives := flag.String("objectives", "sum-of-costs,makespan", "Comma separated objectives")
	mode := flag.String("mode", "exact", "Reach mode: exact or window")
	goalBlocking := flag.Bool("goal-blocking", false, "Block other agents' goals")
	workers := flag.Int("workers", 0, "Per-agent workers (0 = GOMAXPROCS)")
	flag.Parse()

	log := logging.New(logging.Config{Level: slog.LevelInfo})
	fail := func(msg string, err error) {
		log.Error(msg, slog.Any("error", err))
		os.Exit(1)
	}

	m, ok := algo.ParseMode(*mode)
	if !ok {
		fail("parse flags", fmt.Errorf("unknown mode %q", *mode))
	}
	opts := algo.Options{Workers: *workers, Mode: m, GoalBlocking: *goalBlocking}

	var objs []core.Objective
	for _, s := range strings.Split(*objectives, ",") {
		o, err := core.ParseObjective(s)
		if err != nil {
			fail("parse flags", err)
		}
		objs = append(objs, o)
	}

	files, err := filepath.Glob(filepath.Join(*inputDir, "*.lp"))
	if err != nil {
		fail("find instances", err)
	}
	if len(files) == 0 {
		fail("find instances", fmt.Errorf("no .lp files in %s; run gen_instances first", *inputDir))
	}
	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		fail("create output directory", err)
	}

	var results []*Result
	for _, file := range files {
		for _, obj := range objs {
			ctx, cancel := context.WithTimeout(context.Background(), *timeout)
			r, err := runOne(ctx, file, obj, opts)
			cancel()
			if err != nil {
				log.Warn("run failed", slog.String("instance", file), slog.String("objective", obj.String()), slog.Any("error", err))
				continue
			}
			results = append(results, r)
			log.Info("run finished",
				slog.String("instance", r.Instance),
				slog.String("objective", r.Objective),
				slog.Bool("feasible", r.Feasible),
				slog.Int("budget", r.Budget),
				slog.Int("reach", r.Reach),
				slog.Float64("runtime_ms", r.RuntimeMs),
			)
		}
	}

	if err := writeResults(*output, results); err != nil {
		fail("write results", err)
	}
	log.Info("results written", slog.String("path", *output), slog.Int("rows", len(results)))
	if err := printSummary(os.Stdout, results); err != nil {
		fail("print summary", err)
	}
}
