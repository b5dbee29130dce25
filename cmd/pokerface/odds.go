package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jeffeharris/my-poker-face-sub006/internal/analysis"
	"github.com/jeffeharris/my-poker-face-sub006/internal/config"
	"github.com/jeffeharris/my-poker-face-sub006/internal/deck"
	"github.com/jeffeharris/my-poker-face-sub006/internal/evaluator"
)

// OddsCmd estimates equity for a hand against derived opponent ranges
type OddsCmd struct {
	Hole      string  `arg:"" help:"Hole cards, e.g. AsKd"`
	Board     string  `help:"Board cards, e.g. Qh7c2s"`
	Opponents int     `default:"1" help:"Number of opponents"`
	Looseness float64 `default:"0.5" help:"Opponent looseness in [0,1]"`
	Samples   int     `help:"Monte Carlo samples (default from config)"`
	Seed      *int64  `help:"Deterministic RNG seed"`
}

func (c *OddsCmd) Run(cli *CLI) error {
	logger := setupLogger(cli.Debug)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	hole, err := deck.ParseCards(c.Hole)
	if err != nil {
		return fmt.Errorf("hole cards: %w", err)
	}
	if len(hole) != 2 {
		return fmt.Errorf("expected 2 hole cards, got %d", len(hole))
	}
	var board []deck.Card
	if c.Board != "" {
		if board, err = deck.ParseCards(c.Board); err != nil {
			return fmt.Errorf("board cards: %w", err)
		}
	}
	if c.Opponents < 1 {
		return fmt.Errorf("need at least one opponent")
	}

	estCfg := cfg.Equity.EstimatorConfig()
	if c.Samples > 0 {
		estCfg.Samples = c.Samples
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	rng := rand.New(rand.NewSource(seed))
	logger.Debug("estimating", "seed", seed, "samples", estCfg.Samples)

	opponents := make([]evaluator.Range, c.Opponents)
	for i := range opponents {
		r, derr := analysis.Derive(c.Looseness, analysis.Middle, nil)
		if derr != nil {
			logger.Warn("opponent range widened to default", "error", derr)
		}
		opponents[i] = r
	}

	eq, err := evaluator.NewEstimator(estCfg).Estimate(hole, board, opponents, rng)
	if err != nil {
		logger.Warn("estimate is partial", "error", err, "samples", eq.Samples)
	}

	fmt.Printf("%s", deck.FormatCards(hole))
	if len(board) > 0 {
		fmt.Printf("  on  %s", deck.FormatCards(board))
	}
	fmt.Printf("  vs %d opponent(s)\n", c.Opponents)
	fmt.Printf("win %.1f%%  tie %.1f%%  lose %.1f%%", eq.Win*100, eq.Tie*100, eq.Lose*100)
	if eq.Exact {
		fmt.Printf("  (exact)\n")
	} else {
		fmt.Printf("  (%d samples)\n", eq.Samples)
	}
	return nil
}
