// Command gen_instances writes seeded random grid instances as fact files
// together with a JSON manifest of the parameters used.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/elektrokombinacija/mapf-reach/internal/algo"
	"github.com/elektrokombinacija/mapf-reach/internal/core"
	"github.com/elektrokombinacija/mapf-reach/internal/facts"
	"github.com/elektrokombinacija/mapf-reach/internal/logging"
	"github.com/elektrokombinacija/mapf-reach/internal/movingai"
)

// Params defines one generated instance.
type Params struct {
	Seed      int64   `json:"seed"`
	Agents    int     `json:"agents"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Obstacles float64 `json:"obstacles"` // Fraction of blocked cells
}

// Name is the file stem of the instance.
func (p Params) Name() string {
	return fmt.Sprintf("grid_%dx%d_a%d_o%02d_s%d", p.Width, p.Height, p.Agents, int(p.Obstacles*100), p.Seed)
}

// ManifestEntry records one written instance.
type ManifestEntry struct {
	Name       string `json:"name"`
	File       string `json:"file"`
	Params     Params `json:"params"`
	SumOfCosts int    `json:"sum_of_costs"`
	Makespan   int    `json:"makespan"`
}

// Manifest lists the instances of one run.
type Manifest struct {
	Generated string          `json:"generated"`
	Instances []ManifestEntry `json:"instances"`
}

// generate draws obstacles, keeps the largest open component and places
// agents on distinct starts and distinct goals inside it.
func generate(p Params) (*movingai.Map, []movingai.Task, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, nil, fmt.Errorf("grid %dx%d is empty", p.Width, p.Height)
	}
	if p.Obstacles < 0 || p.Obstacles >= 1 {
		return nil, nil, fmt.Errorf("obstacle density %.2f not in [0,1)", p.Obstacles)
	}
	rng := rand.New(rand.NewSource(p.Seed))

	m := &movingai.Map{Type: "octile", Width: p.Width, Height: p.Height, Cells: make([][]byte, p.Height)}
	g := core.NewGraph()
	for y := range m.Cells {
		m.Cells[y] = make([]byte, p.Width)
		for x := range m.Cells[y] {
			m.Cells[y][x] = '.'
			if rng.Float64() < p.Obstacles {
				m.Cells[y][x] = '@'
			}
		}
	}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if !m.Passable(x, y) {
				continue
			}
			g.AddNode(core.GridNode(x, y))
			if m.Passable(x+1, y) {
				g.AddEdge(core.GridNode(x, y), core.GridNode(x+1, y))
			}
			if m.Passable(x, y+1) {
				g.AddEdge(core.GridNode(x, y), core.GridNode(x, y+1))
			}
		}
	}

	comp, err := largestComponent(g)
	if err != nil {
		return nil, nil, err
	}
	if len(comp) < p.Agents {
		return nil, nil, fmt.Errorf("largest open component has %d cells, need %d", len(comp), p.Agents)
	}

	starts, goals := rng.Perm(len(comp)), rng.Perm(len(comp))
	tasks := make([]movingai.Task, p.Agents)
	for i := range tasks {
		s, gl := comp[starts[i]], comp[goals[i]]
		dist, err := algo.DistancesFrom(g, s)
		if err != nil {
			return nil, nil, err
		}
		sx, sy, _ := s.Coords()
		gx, gy, _ := gl.Coords()
		tasks[i] = movingai.Task{
			Width: p.Width, Height: p.Height,
			StartX: sx, StartY: sy, GoalX: gx, GoalY: gy,
			Optimal: float64(dist[gl]),
		}
	}
	return m, tasks, nil
}

func largestComponent(g *core.Graph) ([]core.Node, error) {
	seen := make(map[core.Node]bool, g.Len())
	var best []core.Node
	for _, n := range g.Nodes() {
		if seen[n] {
			continue
		}
		dist, err := algo.DistancesFrom(g, n)
		if err != nil {
			return nil, err
		}
		var comp []core.Node
		for _, m := range g.Nodes() {
			if dist.Reachable(m) {
				seen[m] = true
				comp = append(comp, m)
			}
		}
		if len(comp) > len(best) {
			best = comp
		}
	}
	return best, nil
}

// writeInstance writes the fact file for p into dir.
func writeInstance(dir string, p Params) (ManifestEntry, error) {
	m, tasks, err := generate(p)
	if err != nil {
		return ManifestEntry{}, fmt.Errorf("%s: %w", p.Name(), err)
	}
	entry := ManifestEntry{Name: p.Name(), File: p.Name() + ".lp", Params: p}
	for _, t := range tasks {
		entry.SumOfCosts += int(t.Optimal)
		entry.Makespan = max(entry.Makespan, int(t.Optimal))
	}

	f, err := os.Create(filepath.Join(dir, entry.File))
	if err != nil {
		return ManifestEntry{}, err
	}
	defer f.Close()
	w := facts.NewWriter(f)
	if err := w.Comment(fmt.Sprintf("seed=%d agents=%d grid=%dx%d obstacles=%.2f", p.Seed, p.Agents, p.Width, p.Height, p.Obstacles)); err != nil {
		return ManifestEntry{}, err
	}
	if err := movingai.Convert(m, tasks, 0, w); err != nil {
		return ManifestEntry{}, err
	}
	if err := w.Flush(); err != nil {
		return ManifestEntry{}, err
	}
	return entry, f.Close()
}

func main() {
	seed := flag.Int64("seed", 42, "Seed of the first instance")
	count := flag.Int("count", 5, "Number of instances; seeds increase by one")
	agents := flag.Int("agents", 10, "Number of agents")
	width := flag.Int("width", 16, "Grid width")
	height := flag.Int("height", 16, "Grid height")
	obstacles := flag.Float64("obstacles", 0.2, "Fraction of blocked cells")
	outputDir := flag.String("output", "testdata", "Output directory")
	flag.Parse()

	log := logging.New(logging.Config{Level: slog.LevelInfo})
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Error("create output directory", slog.Any("error", err))
		os.Exit(1)
	}

	manifest := Manifest{Generated: time.Now().UTC().Format(time.RFC3339)}
	for i := 0; i < *count; i++ {
		p := Params{Seed: *seed + int64(i), Agents: *agents, Width: *width, Height: *height, Obstacles: *obstacles}
		entry, err := writeInstance(*outputDir, p)
		if err != nil {
			log.Error("generate instance", slog.Any("error", err))
			os.Exit(1)
		}
		manifest.Instances = append(manifest.Instances, entry)
		log.Info("instance written",
			slog.String("name", entry.Name),
			slog.Int("sum_of_costs", entry.SumOfCosts),
			slog.Int("makespan", entry.Makespan),
		)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		log.Error("marshal manifest", slog.Any("error", err))
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(*outputDir, "manifest.json"), data, 0o644); err != nil {
		log.Error("write manifest", slog.Any("error", err))
		os.Exit(1)
	}
}
