package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lox/gtotrainer/internal/drill"
	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/tendency"
)

// TendenciesCmd is the root command for tendency tables.
type TendenciesCmd struct {
	Validate TendenciesValidateCmd `cmd:"" help:"Check a tendency JSON file against the schema"`
	Show     TendenciesShowCmd     `cmd:"" help:"Print the configured tendency table"`
}

// TendenciesValidateCmd validates one file without loading any config.
type TendenciesValidateCmd struct {
	File string `arg:"" help:"Tendency JSON file" type:"existingfile"`
}

func (cmd *TendenciesValidateCmd) Run() error {
	data, err := os.ReadFile(cmd.File)
	if err != nil {
		return err
	}
	if _, err := tendency.Parse(data); err != nil {
		fmt.Println(drill.MistakeStyle.Render("invalid: " + err.Error()))
		return err
	}
	fmt.Println(drill.CorrectStyle.Render(cmd.File + " is valid"))
	return nil
}

// TendenciesShowCmd prints fold and aggression rates per stage and
// position, or the raw table as JSON.
type TendenciesShowCmd struct {
	JSON bool `help:"Print the table as JSON"`
}

func (cmd *TendenciesShowCmd) Run(g *Globals) error {
	a, err := g.load()
	if err != nil {
		return err
	}
	if cmd.JSON {
		out, err := json.MarshalIndent(a.tendencies, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	for _, stage := range game.BettingRounds {
		fmt.Println(drill.HeaderStyle.Render(" " + stage.String() + " "))
		for _, pos := range game.AllPositions {
			if _, ok := a.tendencies.Frequencies(stage, pos); !ok {
				continue
			}
			fmt.Printf("  %-6s fold %3.0f%%  aggression %3.0f%%\n", pos,
				100*a.tendencies.FoldFrequency(stage, pos), 100*a.tendencies.Aggression(stage, pos))
		}
	}
	pre, post := a.table.Rows()
	fmt.Println(drill.InfoStyle.Render(fmt.Sprintf("strategy table: %d preflop rows, %d postflop rows", pre, post)))
	return nil
}
