package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lox/gtotrainer/cmd/gto-trainer/shared"
	"github.com/lox/gtotrainer/internal/drill"
	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/tracker"
	"github.com/lox/gtotrainer/internal/trainer"
)

// DrillCmd plays training hands against stdin/stdout.
type DrillCmd struct {
	Hands int    `help:"Number of hands to play (0 = until quit)" default:"0"`
	Stage string `help:"Street to drill" default:"any" enum:"any,preflop,flop,turn,river"`
}

func (cmd *DrillCmd) Run(g *Globals) error {
	a, err := g.load()
	if err != nil {
		return err
	}
	ctx := shared.SetupSignalHandler(a.logger)

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	past, err := st.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("loading past sessions: %w", err)
	}
	engine := a.engine(
		trainer.WithSink(st),
		trainer.WithArchive(tracker.NewArchive(a.cfg.TrackerOptions(), past...)),
	)

	var stages []game.Stage
	if cmd.Stage != "any" {
		stage, err := game.ParseStage(cmd.Stage)
		if err != nil {
			return err
		}
		stages = []game.Stage{stage}
	}

	session := engine.StartSession()
	runErr := drill.NewRunner(session, os.Stdin, os.Stdout, stages, a.logger).Run(ctx, cmd.Hands)

	// Close the session even when interrupted so the hands played count.
	sum, err := engine.EndSession(context.WithoutCancel(ctx), session.ID())
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(drill.RenderSummary(sum))
	fmt.Print(drill.RenderAllTime(engine.AllTimeStats()))

	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}
