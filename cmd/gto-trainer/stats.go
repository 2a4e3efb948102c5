package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lox/gtotrainer/internal/drill"
	"github.com/lox/gtotrainer/internal/tracker"
)

// StatsCmd aggregates stored sessions.
type StatsCmd struct {
	Sessions bool `help:"Also list each session"`
	JSON     bool `help:"Print stats as JSON"`
}

func (cmd *StatsCmd) Run(g *Globals) error {
	a, err := g.load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	sums, err := st.Sessions(ctx)
	if err != nil {
		return err
	}
	stats := tracker.AllTime(sums, a.cfg.TrackerOptions())

	if cmd.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	fmt.Print(drill.RenderAllTime(stats))
	if cmd.Sessions {
		for _, s := range sums {
			fmt.Print(drill.RenderSummary(s))
		}
	}
	return nil
}
