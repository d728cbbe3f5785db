// Package algo implements shortest paths, budget resolution and
// space-time reachability for MAPF instances.
package algo

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/mapf-reach/internal/core"
)

// Mode selects which time steps are emitted for a reachable node.
type Mode int

const (
	// Exact emits a node only at its earliest arrival time.
	Exact Mode = iota
	// Window emits every time step from earliest arrival to the latest
	// departure that still reaches the goal; agents may wait.
	Window
)

func (m Mode) String() string {
	switch m {
	case Exact:
		return "exact"
	case Window:
		return "window"
	default:
		return "unknown"
	}
}

// ParseMode parses "exact" or "window".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "exact", "":
		return Exact, true
	case "window":
		return Window, true
	default:
		return Exact, false
	}
}

// Options tune budget resolution and synthesis.
type Options struct {
	// Workers bounds concurrent per-agent computations. <= 0 uses GOMAXPROCS.
	Workers int
	Mode    Mode
	// GoalBlocking forbids entering another agent's goal once that agent
	// has used up its own budget and settled there.
	GoalBlocking bool
}

func (o Options) workers(n int) int {
	w := o.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// forEachAgent runs fn for every agent on a bounded pool. Each call owns
// slot i; the first error in agent order is returned so results do not
// depend on scheduling.
func forEachAgent(ctx context.Context, agents []*core.Agent, workers int, fn func(i int, a *core.Agent) error) error {
	errs := make([]error, len(agents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, a := range agents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			errs[i] = fn(i, a)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
