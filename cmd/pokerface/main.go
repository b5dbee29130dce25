package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Config  string           `short:"c" default:"pokerface.hcl" help:"HCL config file"`
	Debug   bool             `help:"Enable debug logging"`

	Odds     OddsCmd     `cmd:"" help:"Estimate hand equity against opponent ranges"`
	Simulate SimulateCmd `cmd:"" help:"Run multi-table tournament simulations"`
	Advise   AdviseCmd   `cmd:"" help:"Play interactively with the decision menu"`
	Serve    ServeCmd    `cmd:"" help:"Bridge decisions to an external policy over websocket"`
}

func setupLogger(debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{Level: level})
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokerface"),
		kong.Description("Poker decision support: equity, option menus, and simulated tables"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
