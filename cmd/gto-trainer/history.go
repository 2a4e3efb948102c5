package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/handid"
	"github.com/lox/gtotrainer/internal/history"
)

// HistoryCmd is the root command for recorded decisions.
type HistoryCmd struct {
	List   HistoryListCmd   `cmd:"" help:"List recorded decisions"`
	Replay HistoryReplayCmd `cmd:"" help:"Review every decision of one hand"`
	Export HistoryExportCmd `cmd:"" help:"Export decisions to a TOML file"`
}

// FilterFlags select which records a history command reads.
type FilterFlags struct {
	Session string `help:"Only this session"`
	Hand    string `help:"Only this hand"`
	Stage   string `help:"Only this street" enum:"any,preflop,flop,turn,river" default:"any"`
}

func (f FilterFlags) filter() (history.Filter, error) {
	var out history.Filter
	for _, id := range []struct {
		flag  string
		value string
		dst   *string
	}{{"--session", f.Session, &out.SessionID}, {"--hand", f.Hand, &out.HandID}} {
		if id.value == "" {
			continue
		}
		if err := handid.Validate(id.value); err != nil {
			return out, fmt.Errorf("%s: %w", id.flag, err)
		}
		*id.dst = strings.ToLower(id.value)
	}
	if f.Stage != "any" {
		stage, err := game.ParseStage(f.Stage)
		if err != nil {
			return out, err
		}
		out.Stage = &stage
	}
	return out, nil
}

func readRecords(g *Globals, flags FilterFlags) ([]history.DecisionRecord, error) {
	f, err := flags.filter()
	if err != nil {
		return nil, err
	}
	a, err := g.load()
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	st, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Decisions(ctx, f)
}

// HistoryListCmd prints one line per decision.
type HistoryListCmd struct {
	FilterFlags `embed:""`
	Limit       int `help:"Show only the most recent N decisions (0 = all)"`
}

func (cmd *HistoryListCmd) Run(g *Globals) error {
	recs, err := readRecords(g, cmd.FilterFlags)
	if err != nil {
		return err
	}
	if cmd.Limit > 0 && len(recs) > cmd.Limit {
		recs = recs[len(recs)-cmd.Limit:]
	}
	for _, r := range recs {
		fmt.Printf("%s  %s\n", r.HandID, r.Line())
	}
	return nil
}

// HistoryReplayCmd walks one hand decision by decision.
type HistoryReplayCmd struct {
	Hand string `arg:"" help:"Hand id"`
}

func (cmd *HistoryReplayCmd) Run(g *Globals) error {
	recs, err := readRecords(g, FilterFlags{Hand: cmd.Hand, Stage: "any"})
	if err != nil {
		return err
	}
	ds := history.NewDataset()
	for _, r := range recs {
		if err := ds.Append(r); err != nil {
			return err
		}
	}
	lines, err := ds.Replay(strings.ToLower(cmd.Hand))
	if err != nil {
		return err
	}
	dealt, err := handid.Time(cmd.Hand)
	if err != nil {
		return err
	}
	fmt.Printf("Hand %s, dealt %s\n", strings.ToLower(cmd.Hand), dealt.Format(time.RFC3339))
	for _, l := range lines {
		fmt.Println(l)
	}
	return nil
}

// HistoryExportCmd writes decisions to a TOML file.
type HistoryExportCmd struct {
	FilterFlags `embed:""`
	File        string `arg:"" help:"Output path" type:"path"`
}

func (cmd *HistoryExportCmd) Run(g *Globals) error {
	recs, err := readRecords(g, cmd.FilterFlags)
	if err != nil {
		return err
	}
	if err := history.WriteFile(cmd.File, time.Now().UTC(), recs); err != nil {
		return err
	}
	fmt.Printf("Exported %d decisions to %s\n", len(recs), cmd.File)
	return nil
}
