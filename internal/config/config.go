// Package config loads the YAML run configuration of mapfreach.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/mapf-reach/internal/algo"
	"github.com/elektrokombinacija/mapf-reach/internal/core"
	"github.com/elektrokombinacija/mapf-reach/internal/logging"
)

// Version is the only supported config file version.
const Version = 1

// Budget is either automatic or a fixed non-negative value.
type Budget struct {
	Auto  bool
	Value int
}

// ParseBudget parses "auto" or an integer.
func ParseBudget(s string) (Budget, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "auto") {
		return Budget{Auto: true}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Budget{}, fmt.Errorf("budget must be auto or an integer, got %q", s)
	}
	if n < 0 {
		return Budget{}, fmt.Errorf("%w: %d", core.ErrInvalidBudget, n)
	}
	return Budget{Value: n}, nil
}

func (b Budget) String() string {
	if b.Auto {
		return "auto"
	}
	return strconv.Itoa(b.Value)
}

// UnmarshalYAML accepts a scalar "auto" or integer.
func (b *Budget) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: budget must be a scalar", node.Line)
	}
	v, err := ParseBudget(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*b = v
	return nil
}

// MarshalYAML writes auto or the integer.
func (b Budget) MarshalYAML() (any, error) {
	if b.Auto {
		return "auto", nil
	}
	return b.Value, nil
}

// Config is a run configuration.
type Config struct {
	Version      int    `yaml:"version"`
	Objective    string `yaml:"objective"`
	Budget       Budget `yaml:"budget"`
	Reach        bool   `yaml:"reach"`
	Mode         string `yaml:"mode"`
	GoalBlocking bool   `yaml:"goal_blocking"`
	Workers      int    `yaml:"workers"`
	Log          struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
	Cache struct {
		Dir string `yaml:"dir"`
	} `yaml:"cache"`
	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

// Default returns the configuration used without a file.
func Default() *Config {
	cfg := &Config{
		Version:   Version,
		Objective: "sum-of-costs",
		Budget:    Budget{Auto: true},
		Reach:     true,
		Mode:      algo.Exact.String(),
	}
	cfg.Log.Level = "info"
	return cfg
}

// Load reads path on top of Default and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(b []byte) (*Config, error) {
	cfg := Default()
	cfg.Version = 0
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	if cfg.Version != Version {
		return nil, fmt.Errorf("unsupported config version: %d", cfg.Version)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	var errs []error
	if _, err := core.ParseObjective(c.Objective); err != nil {
		errs = append(errs, err)
	}
	if !c.Budget.Auto && c.Budget.Value < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", core.ErrInvalidBudget, c.Budget.Value))
	}
	if _, ok := algo.ParseMode(c.Mode); !ok {
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ObjectiveValue returns the parsed objective. Call Validate first.
func (c *Config) ObjectiveValue() core.Objective {
	o, _ := core.ParseObjective(c.Objective)
	return o
}

// Options returns the algorithm options.
func (c *Config) Options() algo.Options {
	m, _ := algo.ParseMode(c.Mode)
	return algo.Options{Workers: c.Workers, Mode: m, GoalBlocking: c.GoalBlocking}
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	level, _ := logging.ParseLevel(c.Log.Level)
	return logging.Config{Level: level, JSON: c.Log.JSON}
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
