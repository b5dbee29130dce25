// Package config loads advisor and simulator settings from HCL files:
// table stakes, equity budgets, policy timeouts, and named personas.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/jeffeharris/my-poker-face-sub006/internal/betting"
	"github.com/jeffeharris/my-poker-face-sub006/internal/evaluator"
	"github.com/jeffeharris/my-poker-face-sub006/internal/profile"
)

// Config is the complete configuration
type Config struct {
	Game     GameSettings   `hcl:"game,block"`
	Equity   EquitySettings `hcl:"equity,block"`
	Policy   PolicySettings `hcl:"policy,block"`
	Personas []Persona      `hcl:"persona,block"`
}

// GameSettings defines the table stakes and structure
type GameSettings struct {
	SmallBlind    int `hcl:"small_blind,optional"`
	BigBlind      int `hcl:"big_blind,optional"`
	StartingStack int `hcl:"starting_stack,optional"`
	Seats         int `hcl:"seats,optional"`
	RaiseCap      int `hcl:"raise_cap,optional"`
}

// EquitySettings bounds the Monte Carlo estimator
type EquitySettings struct {
	Samples    int `hcl:"samples,optional"`
	DeadlineMS int `hcl:"deadline_ms,optional"`
	Workers    int `hcl:"workers,optional"`
}

// EstimatorConfig converts the settings into an estimator budget
func (e EquitySettings) EstimatorConfig() evaluator.EstimatorConfig {
	return evaluator.EstimatorConfig{
		Samples:  e.Samples,
		Deadline: time.Duration(e.DeadlineMS) * time.Millisecond,
		Workers:  e.Workers,
	}
}

// PolicySettings controls the external policy source
type PolicySettings struct {
	TimeoutMS int    `hcl:"timeout_ms,optional"`
	Listen    string `hcl:"listen,optional"` // websocket bridge address
}

// Timeout returns the policy budget as a duration
func (p PolicySettings) Timeout() time.Duration {
	return time.Duration(p.TimeoutMS) * time.Millisecond
}

// Persona is a named static playing personality
type Persona struct {
	Name       string  `hcl:"name,label"`
	Looseness  float64 `hcl:"looseness"`
	Aggression float64 `hcl:"aggression"`
}

// Profile classifies the persona's configured parameters
func (p Persona) Profile() profile.Profile {
	return profile.ClassifyStatic(p.Looseness, p.Aggression)
}

// Default returns the standard configuration
func Default() *Config {
	return &Config{
		Game: GameSettings{
			SmallBlind:    1,
			BigBlind:      2,
			StartingStack: 200,
			Seats:         6,
			RaiseCap:      betting.DefaultRaiseCap,
		},
		Equity: EquitySettings{
			Samples:    5000,
			DeadlineMS: 150,
		},
		Policy: PolicySettings{
			TimeoutMS: 30000,
			Listen:    "localhost:8090",
		},
		Personas: []Persona{
			{Name: "rock", Looseness: 0.2, Aggression: 0.3},
			{Name: "maniac", Looseness: 0.8, Aggression: 0.9},
			{Name: "station", Looseness: 0.7, Aggression: 0.2},
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults; a present but malformed file is an error.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Game.SmallBlind == 0 {
		cfg.Game.SmallBlind = def.Game.SmallBlind
	}
	if cfg.Game.BigBlind == 0 {
		cfg.Game.BigBlind = def.Game.BigBlind
	}
	if cfg.Game.StartingStack == 0 {
		cfg.Game.StartingStack = def.Game.StartingStack
	}
	if cfg.Game.Seats == 0 {
		cfg.Game.Seats = def.Game.Seats
	}
	if cfg.Game.RaiseCap == 0 {
		cfg.Game.RaiseCap = def.Game.RaiseCap
	}
	if cfg.Equity.Samples == 0 {
		cfg.Equity.Samples = def.Equity.Samples
	}
	if cfg.Equity.DeadlineMS == 0 {
		cfg.Equity.DeadlineMS = def.Equity.DeadlineMS
	}
	if cfg.Policy.TimeoutMS == 0 {
		cfg.Policy.TimeoutMS = def.Policy.TimeoutMS
	}
	if cfg.Policy.Listen == "" {
		cfg.Policy.Listen = def.Policy.Listen
	}
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	if c.Game.SmallBlind >= c.Game.BigBlind {
		return fmt.Errorf("small blind %d must be below big blind %d",
			c.Game.SmallBlind, c.Game.BigBlind)
	}
	if c.Game.Seats < 2 || c.Game.Seats > 10 {
		return fmt.Errorf("seats must be 2-10, got %d", c.Game.Seats)
	}
	if c.Game.StartingStack < c.Game.BigBlind*2 {
		return fmt.Errorf("starting stack %d too small for big blind %d",
			c.Game.StartingStack, c.Game.BigBlind)
	}
	seen := map[string]bool{}
	for _, p := range c.Personas {
		if seen[p.Name] {
			return fmt.Errorf("duplicate persona %q", p.Name)
		}
		seen[p.Name] = true
		if p.Looseness < 0 || p.Looseness > 1 {
			return fmt.Errorf("persona %q looseness %v outside [0,1]", p.Name, p.Looseness)
		}
		if p.Aggression < 0 || p.Aggression > 1 {
			return fmt.Errorf("persona %q aggression %v outside [0,1]", p.Name, p.Aggression)
		}
	}
	return nil
}

// PersonaByName finds a configured persona
func (c *Config) PersonaByName(name string) (Persona, bool) {
	for _, p := range c.Personas {
		if p.Name == name {
			return p, true
		}
	}
	return Persona{}, false
}
