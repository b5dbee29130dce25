package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jeffeharris/my-poker-face-sub006/internal/config"
	"github.com/jeffeharris/my-poker-face-sub006/internal/remote"
	"github.com/jeffeharris/my-poker-face-sub006/internal/simulator"
)

// ServeCmd runs one table with the hero seat driven by an external policy
// process connected over websocket
type ServeCmd struct {
	Listen string `help:"Websocket listen address (default from config)"`
	Hands  int    `default:"100" help:"Hands to play"`
	Seats  int    `help:"Seats at the table (default from config)"`
	Seed   int64  `help:"Deterministic RNG seed (0 means time-based)"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	logger := setupLogger(cli.Debug)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	addr := cfg.Policy.Listen
	if c.Listen != "" {
		addr = c.Listen
	}
	seats := cfg.Game.Seats
	if c.Seats > 0 {
		seats = c.Seats
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridge := remote.New(remote.Config{
		Logger:  logger,
		Timeout: cfg.Policy.Timeout(),
	})

	logger.Info("waiting for a policy connection", "addr", addr, "path", "/policy")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bridge.ListenAndServe(ctx, addr)
	})
	g.Go(func() error {
		if err := waitConnected(ctx, bridge); err != nil {
			return err
		}
		logger.Info("policy connected, starting table")

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
			HeroPolicy:    bridge,
			PolicyTimeout: cfg.Policy.Timeout(),
		})

		sess, err := sim.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Println(sess.Summary())
		stop() // shuts down the listener
		return nil
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func waitConnected(ctx context.Context, bridge *remote.Bridge) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for !bridge.Connected() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
