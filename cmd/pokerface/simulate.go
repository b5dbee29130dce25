package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeffeharris/my-poker-face-sub006/internal/config"
	"github.com/jeffeharris/my-poker-face-sub006/internal/simulator"
)

// SimulateCmd runs self-play tables and prints session statistics
type SimulateCmd struct {
	Tables int   `default:"4" help:"Number of concurrent tables"`
	Hands  int   `default:"100" help:"Hands per table"`
	Seats  int   `help:"Seats per table (default from config)"`
	Seed   int64 `help:"Deterministic RNG seed (0 means time-based)"`
}

func (c *SimulateCmd) Run(cli *CLI) error {
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
		Tables:        c.Tables,
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
	})

	sess, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Println(sess.Summary())
	return nil
}
