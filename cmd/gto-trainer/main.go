package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version    kong.VersionFlag `short:"v" help:"Show version"`
	Drill      DrillCmd         `cmd:"" default:"withargs" help:"Play training hands in the terminal"`
	Resolve    ResolveCmd       `cmd:"" help:"Show the optimal play and EV ranking for a spot"`
	Stats      StatsCmd         `cmd:"" help:"Show all-time stats from stored sessions"`
	History    HistoryCmd       `cmd:"" help:"List, replay and export recorded decisions"`
	Tendencies TendenciesCmd    `cmd:"" help:"Inspect and validate opponent tendency tables"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("gto-trainer"),
		kong.Description("Drill poker decisions against GTO strategy tables"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
