// Package movingai reads MovingAI grid benchmarks (.map and .scen files)
// and converts them to instance facts.
package movingai

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elektrokombinacija/mapf-reach/internal/facts"
)

// Map is a grid map. Cells[y][x] holds the terrain character.
type Map struct {
	Type   string
	Width  int
	Height int
	Cells  [][]byte
}

// Passable reports whether (x,y) lies on the map and is open ground.
func (m *Map) Passable(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	switch m.Cells[y][x] {
	case '.', 'G', 'S':
		return true
	default:
		return false
	}
}

// ReadMap parses a .map file.
func ReadMap(r io.Reader) (*Map, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	m := &Map{}
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if text == "map" {
			break
		}
		key, val, _ := strings.Cut(text, " ")
		val = strings.TrimSpace(val)
		switch key {
		case "type":
			m.Type = val
		case "height", "width":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("map line %d: invalid %s %q", line, key, val)
			}
			if key == "height" {
				m.Height = n
			} else {
				m.Width = n
			}
		default:
			return nil, fmt.Errorf("map line %d: unexpected header %q", line, text)
		}
	}
	if m.Width == 0 || m.Height == 0 {
		return nil, fmt.Errorf("map header lacks width or height")
	}

	for sc.Scan() {
		line++
		row := strings.TrimRight(sc.Text(), "\r")
		if row == "" && len(m.Cells) == m.Height {
			continue
		}
		if len(row) != m.Width {
			return nil, fmt.Errorf("map line %d: row has %d cells, want %d", line, len(row), m.Width)
		}
		if len(m.Cells) == m.Height {
			return nil, fmt.Errorf("map line %d: more than %d rows", line, m.Height)
		}
		m.Cells = append(m.Cells, []byte(row))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(m.Cells) != m.Height {
		return nil, fmt.Errorf("map has %d rows, want %d", len(m.Cells), m.Height)
	}
	return m, nil
}

// Task is one scenario line.
type Task struct {
	Bucket         int
	Map            string
	Width, Height  int
	StartX, StartY int
	GoalX, GoalY   int
	Optimal        float64
}

// ReadScenario parses a .scen file.
func ReadScenario(r io.Reader) ([]Task, error) {
	sc := bufio.NewScanner(r)
	var tasks []Task
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || (line == 1 && strings.HasPrefix(text, "version")) {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 9 {
			return nil, fmt.Errorf("scen line %d: %d fields, want 9", line, len(fields))
		}
		var ints [7]int
		for i, idx := range []int{0, 2, 3, 4, 5, 6, 7} {
			n, err := strconv.Atoi(fields[idx])
			if err != nil {
				return nil, fmt.Errorf("scen line %d: field %d: %w", line, idx+1, err)
			}
			ints[i] = n
		}
		opt, err := strconv.ParseFloat(fields[8], 64)
		if err != nil {
			return nil, fmt.Errorf("scen line %d: optimal length: %w", line, err)
		}
		tasks = append(tasks, Task{
			Bucket: ints[0],
			Map:    fields[1],
			Width:  ints[1], Height: ints[2],
			StartX: ints[3], StartY: ints[4],
			GoalX: ints[5], GoalY: ints[6],
			Optimal: opt,
		})
	}
	return tasks, sc.Err()
}

func cell(x, y int) facts.Term {
	return facts.Tuple(facts.Number(x), facts.Number(y))
}

// Convert writes vertex/1 and edge/2 facts for every open cell and its
// right and lower open neighbours, then agent/1, start/2 and goal/2 facts
// for the first limit tasks (all when limit <= 0). Agents are numbered
// from 1.
func Convert(m *Map, tasks []Task, limit int, sink facts.Sink) error {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Passable(x, y) {
				if err := sink.Add(facts.Vertex(cell(x, y))); err != nil {
					return err
				}
			}
		}
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.Passable(x, y) {
				continue
			}
			for _, d := range [][2]int{{1, 0}, {0, 1}} {
				if nx, ny := x+d[0], y+d[1]; m.Passable(nx, ny) {
					if err := sink.Add(facts.Edge(cell(x, y), cell(nx, ny))); err != nil {
						return err
					}
				}
			}
		}
	}

	if limit <= 0 || limit > len(tasks) {
		limit = len(tasks)
	}
	for i, t := range tasks[:limit] {
		if !m.Passable(t.StartX, t.StartY) {
			return fmt.Errorf("task %d: start (%d,%d) is blocked", i+1, t.StartX, t.StartY)
		}
		if !m.Passable(t.GoalX, t.GoalY) {
			return fmt.Errorf("task %d: goal (%d,%d) is blocked", i+1, t.GoalX, t.GoalY)
		}
		id := facts.Number(i + 1)
		for _, f := range []facts.Fact{
			facts.Agent(id),
			facts.Start(id, cell(t.StartX, t.StartY)),
			facts.Goal(id, cell(t.GoalX, t.GoalY)),
		} {
			if err := sink.Add(f); err != nil {
				return err
			}
		}
	}
	return nil
}
