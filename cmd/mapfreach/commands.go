package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/mapf-reach/internal/config"
	"github.com/elektrokombinacija/mapf-reach/internal/core"
	"github.com/elektrokombinacija/mapf-reach/internal/facts"
	"github.com/elektrokombinacija/mapf-reach/internal/movingai"
	"github.com/elektrokombinacija/mapf-reach/internal/problem"
)

func (a *app) spCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "sp [FILE...]",
		Short: "Emit sp_length/2 for every agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.loadProblem(ctx, args)
			if err != nil {
				return err
			}
			w, closeOut, err := a.output(out)
			if err != nil {
				return err
			}
			defer closeOut()

			fw := facts.NewWriter(w)
			if err := p.AddShortestPaths(ctx, fw); err != nil {
				if errors.Is(err, core.ErrInfeasible) {
					return a.infeasible(w, err)
				}
				return err
			}
			return fw.Flush()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "-", "output file")
	return cmd
}

func (a *app) budgetCmd() *cobra.Command {
	var objective string
	cmd := &cobra.Command{
		Use:   "budget [FILE...]",
		Short: "Print the minimal delta or horizon",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			obj, err := a.objective(cmd, objective)
			if err != nil {
				return err
			}
			p, err := a.loadProblem(ctx, args)
			if err != nil {
				return err
			}
			b, err := p.ResolveBudget(ctx, problem.Auto(obj))
			if errors.Is(err, core.ErrInfeasible) {
				a.log.Warn("instance infeasible", slog.Any("error", err))
				fmt.Fprintln(a.stdout, "UNSATISFIABLE")
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, b)
			return nil
		},
	}
	cmd.Flags().StringVar(&objective, "objective", "", "soc or makespan (default from config)")
	return cmd
}

func (a *app) reachCmd() *cobra.Command {
	var (
		delta, horizon, out string
		reach               bool
	)
	cmd := &cobra.Command{
		Use:   "reach [FILE...]",
		Short: "Emit sp_length/2 and reach/3 for a delta or horizon",
		Long: `reach resolves the budget (auto picks the minimal one), then emits
sp_length/2 and reach/3 facts for every agent under either objective.
If the instance cannot be solved within the budget the integrity constraint
":- #true." is written instead and the exit code is 20.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := a.budgetRequest(cmd, delta, horizon)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("reach") {
				reach = a.cfg.Reach
			}
			p, err := a.loadProblem(ctx, args)
			if err != nil {
				return err
			}
			w, closeOut, err := a.output(out)
			if err != nil {
				return err
			}
			defer closeOut()

			fw := facts.NewWriter(w)
			b, err := p.ResolveBudget(ctx, req)
			if err == nil {
				if reach {
					err = p.AddReachable(ctx, fw, b)
				} else {
					err = p.AddShortestPaths(ctx, fw)
				}
			}
			if errors.Is(err, core.ErrInfeasible) {
				return a.infeasible(w, err)
			}
			if err != nil {
				return err
			}
			if err := fw.Flush(); err != nil {
				return err
			}
			a.log.Info("reach facts written",
				slog.String("budget", b.String()),
				slog.Int("facts", fw.Count()),
			)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&delta, "delta", "", "sum-of-costs delta: auto or N")
	fs.StringVar(&horizon, "horizon", "", "makespan horizon: auto or N")
	fs.BoolVar(&reach, "reach", true, "emit reach/3; false emits only sp_length/2")
	fs.StringVarP(&out, "output", "o", "-", "output file")
	cmd.MarkFlagsMutuallyExclusive("delta", "horizon")
	return cmd
}

func (a *app) sweepCmd() *cobra.Command {
	var (
		objective string
		steps     int
	)
	cmd := &cobra.Command{
		Use:   "sweep [FILE...]",
		Short: "Report reach set sizes for the minimal budget and the next ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if steps < 1 {
				return fmt.Errorf("steps must be >= 1, got %d", steps)
			}
			obj, err := a.objective(cmd, objective)
			if err != nil {
				return err
			}
			p, err := a.loadProblem(ctx, args)
			if err != nil {
				return err
			}
			minB, err := p.ResolveBudget(ctx, problem.Auto(obj))
			if errors.Is(err, core.ErrInfeasible) {
				a.log.Warn("instance infeasible", slog.Any("error", err))
				fmt.Fprintln(a.stdout, "UNSATISFIABLE")
				return err
			}
			if err != nil {
				return err
			}

			sizes := make([]int, steps)
			g, gctx := errgroup.WithContext(ctx)
			workers := a.cfg.Workers
			if workers <= 0 {
				workers = runtime.GOMAXPROCS(0)
			}
			g.SetLimit(workers)
			for i := range sizes {
				b := core.Budget{Objective: minB.Objective, Value: minB.Value + i}
				g.Go(func() error {
					rs, err := p.Synthesize(gctx, b)
					if err != nil {
						return fmt.Errorf("%s: %w", b, err)
					}
					sizes[i] = rs.Len()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BUDGET\tENTRIES")
			for i, n := range sizes {
				fmt.Fprintf(tw, "%s\t%d\n", core.Budget{Objective: minB.Objective, Value: minB.Value + i}, n)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&objective, "objective", "", "soc or makespan (default from config)")
	cmd.Flags().IntVar(&steps, "steps", 3, "number of budgets starting at the minimal one")
	return cmd
}

func (a *app) convertCmd() *cobra.Command {
	var (
		agents int
		out    string
	)
	cmd := &cobra.Command{
		Use:   "convert MAP SCEN",
		Short: "Convert a MovingAI map and scenario to instance facts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readWith(args[0], movingai.ReadMap)
			if err != nil {
				return err
			}
			tasks, err := readWith(args[1], movingai.ReadScenario)
			if err != nil {
				return err
			}

			w, closeOut, err := a.output(out)
			if err != nil {
				return err
			}
			defer closeOut()
			fw := facts.NewWriter(w)
			if err := fw.Comment(fmt.Sprintf("converted from %s and %s", args[0], args[1])); err != nil {
				return err
			}
			if err := movingai.Convert(m, tasks, agents, fw); err != nil {
				return err
			}
			if err := fw.Flush(); err != nil {
				return err
			}
			a.log.Info("instance converted",
				slog.Int("width", m.Width),
				slog.Int("height", m.Height),
				slog.Int("facts", fw.Count()),
			)
			return nil
		},
	}
	cmd.Flags().IntVar(&agents, "agents", 0, "use only the first N agents (0 = all)")
	cmd.Flags().StringVarP(&out, "output", "o", "-", "output file")
	return cmd
}

func readWith[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	v, err := read(f)
	if err != nil {
		return v, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// objective returns the --objective flag or the configured objective.
func (a *app) objective(cmd *cobra.Command, flag string) (core.Objective, error) {
	if cmd.Flags().Changed("objective") {
		return core.ParseObjective(flag)
	}
	return a.cfg.ObjectiveValue(), nil
}

// budgetRequest combines --delta/--horizon with the configuration.
func (a *app) budgetRequest(cmd *cobra.Command, delta, horizon string) (problem.BudgetRequest, error) {
	obj, b := a.cfg.ObjectiveValue(), a.cfg.Budget
	var err error
	switch {
	case cmd.Flags().Changed("delta"):
		obj = core.SumOfCosts
		b, err = config.ParseBudget(delta)
	case cmd.Flags().Changed("horizon"):
		obj = core.Makespan
		b, err = config.ParseBudget(horizon)
	}
	if err != nil {
		return problem.BudgetRequest{}, err
	}
	return problem.BudgetRequest{Objective: obj, Auto: b.Auto, Value: b.Value}, nil
}
