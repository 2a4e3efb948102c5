package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/lox/gtotrainer/internal/drill"
	"github.com/lox/gtotrainer/internal/equity"
	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/strategy"
	"github.com/lox/gtotrainer/poker"
)

// ResolveCmd looks up a single spot.
type ResolveCmd struct {
	Hand      string  `arg:"" help:"Hole cards, e.g. AhKd"`
	Position  string  `short:"p" help:"Hero position" default:"BTN"`
	Players   int     `help:"Players dealt in" default:"6"`
	Board     string  `short:"b" help:"Board cards, e.g. Ks7c2d (sets the street)"`
	Pot       float64 `help:"Pot in BB including all committed chips" default:"1.5"`
	Bet       float64 `help:"Highest total bet on this street in BB" default:"1"`
	PlayerBet float64 `help:"Hero's chips already in on this street"`
	Stack     float64 `help:"Hero's remaining stack in BB" default:"100"`
	Facing    string  `help:"Aggression faced" default:"none" enum:"none,bet,raise"`
	JSON      bool    `help:"Print the verdict and ranking as JSON"`
}

func (cmd *ResolveCmd) situation() (game.Situation, error) {
	hand, err := poker.ParseStartingHand(cmd.Hand)
	if err != nil {
		return game.Situation{}, err
	}
	board, err := poker.ParseHand(cmd.Board)
	if err != nil {
		return game.Situation{}, err
	}
	pos, err := game.ParsePosition(cmd.Position)
	if err != nil {
		return game.Situation{}, err
	}
	facing, err := game.ParseFacing(cmd.Facing)
	if err != nil {
		return game.Situation{}, err
	}
	var stage game.Stage
	switch board.CountCards() {
	case 0:
		stage = game.Preflop
	case 3:
		stage = game.Flop
	case 4:
		stage = game.Turn
	case 5:
		stage = game.River
	default:
		return game.Situation{}, fmt.Errorf("board must have 0, 3, 4 or 5 cards, got %d", board.CountCards())
	}
	s := game.Situation{
		Position:   pos,
		NumPlayers: cmd.Players,
		Stage:      stage,
		Pot:        cmd.Pot,
		CurrentBet: cmd.Bet,
		PlayerBet:  cmd.PlayerBet,
		Stack:      cmd.Stack,
		Hand:       hand,
		Board:      board,
		Facing:     facing,
	}
	return s, s.Validate()
}

func (cmd *ResolveCmd) Run(g *Globals) error {
	a, err := g.load()
	if err != nil {
		return err
	}
	s, err := cmd.situation()
	if err != nil {
		return err
	}

	verdict, err := strategy.NewResolver(a.table).Resolve(s)
	if err != nil && !errors.Is(err, strategy.ErrNoData) {
		return err
	}
	ranking := a.calculator().Rank(context.Background(), s, equity.Candidates(s, a.cfg.SizeMenu))
	for _, c := range ranking.Failed {
		a.logger.Warn().Err(c.Err).Str("action", c.Action.String()).Msg("Could not score candidate")
	}

	if cmd.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		type scored struct {
			Action game.Action `json:"action"`
			EV     float64     `json:"ev"`
		}
		out := struct {
			Verdict strategy.Verdict `json:"verdict"`
			EV      []scored         `json:"ev"`
		}{Verdict: verdict}
		for _, c := range ranking.Candidates {
			out.EV = append(out.EV, scored{c.Action, c.EV})
		}
		return enc.Encode(out)
	}

	fmt.Println(drill.SpotStyle.Render(s.Describe()))
	fmt.Println(drill.ActionsStyle.Render("Legal: " + drill.RenderAvailable(game.AvailableActions(s))))
	fmt.Printf("Strategy: %s\n", verdict.Summary())
	if verdict.SizeRange != nil {
		fmt.Printf("Size: %s\n", verdict.SizeRange)
	}
	if verdict.Explanation != "" {
		fmt.Println(drill.InfoStyle.Render(verdict.Explanation))
	}
	fmt.Println("EV ranking:")
	for _, c := range ranking.Candidates {
		fmt.Printf("  %-16s %+.2fBB\n", c.Action, c.EV)
	}
	return nil
}
