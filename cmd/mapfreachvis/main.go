// Command mapfreachvis shows where each agent may be at each time step.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gioui.org/app"
	"gioui.org/unit"
	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/mapf-reach/internal/algo"
	"github.com/elektrokombinacija/mapf-reach/internal/config"
	"github.com/elektrokombinacija/mapf-reach/internal/core"
	"github.com/elektrokombinacija/mapf-reach/internal/facts"
	"github.com/elektrokombinacija/mapf-reach/internal/logging"
	"github.com/elektrokombinacija/mapf-reach/internal/problem"
	"github.com/elektrokombinacija/mapf-reach/internal/vis"
)

type options struct {
	delta, horizon string
	mode           string
	goalBlocking   bool
}

func main() {
	var opts options
	cmd := &cobra.Command{
		Use:           "mapfreachvis [FILE...]",
		Short:         "View reach sets of a MAPF instance",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return view(cmd.Context(), opts, args)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.delta, "delta", "", "sum-of-costs delta: auto or N (default auto)")
	fs.StringVar(&opts.horizon, "horizon", "", "makespan horizon: auto or N")
	fs.StringVar(&opts.mode, "mode", "exact", "reach mode: exact or window")
	fs.BoolVar(&opts.goalBlocking, "goal-blocking", false, "block other agents' goals once they must have arrived")
	cmd.MarkFlagsMutuallyExclusive("delta", "horizon")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, core.ErrInfeasible) {
			os.Exit(20)
		}
		os.Exit(1)
	}
}

func view(ctx context.Context, opts options, paths []string) error {
	log := logging.New(logging.Config{Level: slog.LevelInfo, Writer: os.Stderr})
	mode, ok := algo.ParseMode(opts.mode)
	if !ok {
		return fmt.Errorf("unknown mode %q", opts.mode)
	}

	req := problem.Auto(core.SumOfCosts)
	raw := opts.delta
	if opts.horizon != "" {
		req.Objective, raw = core.Makespan, opts.horizon
	}
	b, err := config.ParseBudget(raw)
	if err != nil {
		return err
	}
	req.Auto, req.Value = b.Auto, b.Value

	if len(paths) == 0 {
		paths = []string{"-"}
	}
	store := facts.NewStore()
	if _, err := (facts.Parser{}).ReadFiles(paths, os.Stdin, store); err != nil {
		return err
	}
	p, err := problem.New(ctx, store,
		problem.WithMode(mode),
		problem.WithGoalBlocking(opts.goalBlocking),
		problem.WithLogger(log),
	)
	if err != nil {
		return err
	}
	budget, err := p.ResolveBudget(ctx, req)
	if err != nil {
		return err
	}
	rs, err := p.Synthesize(ctx, budget)
	if err != nil {
		return err
	}
	log.Info("reach set ready", slog.String("budget", budget.String()), slog.Int("entries", rs.Len()))

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("MAPF Reach Viewer"),
			app.Size(unit.Dp(1400), unit.Dp(900)),
		)
		if err := vis.NewApp(p.Instance(), rs).Run(window); err != nil {
			log.Error("viewer failed", slog.Any("error", err))
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
	return nil
}
