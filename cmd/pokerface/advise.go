package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeffeharris/my-poker-face-sub006/internal/config"
	"github.com/jeffeharris/my-poker-face-sub006/internal/simulator"
	"github.com/jeffeharris/my-poker-face-sub006/internal/tui"
)

// AdviseCmd plays one interactive table with the hero seat driven through
// the terminal decision menu
type AdviseCmd struct {
	Hands int   `default:"20" help:"Hands to play"`
	Seats int   `help:"Seats at the table (default from config)"`
	Seed  int64 `help:"Deterministic RNG seed (0 means time-based)"`
}

func (c *AdviseCmd) Run(cli *CLI) error {
	logger := setupLogger(cli.Debug)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	seats := cfg.Game.Seats
	if c.Seats > 0 {
		seats = c.Seats
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := simulator.New(simulator.Config{
		Tables:        1,
		Hands:         c.Hands,
		Seats:         seats,
		StartingStack: cfg.Game.StartingStack,
		SmallBlind:    cfg.Game.SmallBlind,
		BigBlind:      cfg.Game.BigBlind,
		RaiseCap:      cfg.Game.RaiseCap,
		Samples:       cfg.Equity.Samples,
		Seed:          c.Seed,
		Personas:      cfg.Personas,
		Logger:        logger,
		HeroPolicy:    &tui.Source{},
		PolicyTimeout: cfg.Policy.Timeout(),
	})

	sess, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Println(sess.Summary())
	return nil
}
