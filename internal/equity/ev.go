package equity

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/tendency"
	"github.com/lox/gtotrainer/poker"
)

// EVInput is everything the EV formulas need. Amounts are big blinds; Size
// is the raise-to total for bets and raises.
type EVInput struct {
	Hand       poker.StartingHand
	Board      poker.Hand
	Stage      game.Stage
	Position   game.Position
	Pot        float64
	CurrentBet float64
	PlayerBet  float64
	Action     game.ActionKind
	Size       float64
	NumPlayers int
}

// InputFor builds the EV input for taking a in s.
func InputFor(s game.Situation, a game.Action) EVInput {
	in := EVInput{
		Hand:       s.Hand,
		Board:      s.Board,
		Stage:      s.Stage,
		Position:   s.Position,
		Pot:        s.Pot,
		CurrentBet: s.CurrentBet,
		PlayerBet:  s.PlayerBet,
		Action:     a.Kind,
		Size:       a.Size,
		NumPlayers: s.NumPlayers,
	}
	if a.Kind == game.AllIn {
		in.Size = s.MaxCommit()
	}
	return in
}

// Calculator scores actions using equity from an Engine and fold rates
// from an opponent tendency table.
type Calculator struct {
	engine     *Engine
	tendencies *tendency.Table
}

// NewCalculator creates a calculator.
func NewCalculator(engine *Engine, tendencies *tendency.Table) *Calculator {
	return &Calculator{engine: engine, tendencies: tendencies}
}

// CalculateEV returns the expected value of the action relative to
// folding:
//
//	fold        0
//	check/call  eq×(pot+toCall) − (1−eq)×toCall
//	bet/raise   eq×(pot+risk) − (1−eq)×risk + P(all fold)×pot
//
// where risk is the new money the bet adds. Every action is scored
// against the opponents expected to still contest the pot after it:
// nobody folds to a check or call, so those face the whole field, while a
// bet faces the expected number of callers given that not everyone folds.
// P(all fold) is the per-opponent fold rate raised to the field size.
func (c *Calculator) CalculateEV(ctx context.Context, in EVInput) (float64, error) {
	if in.Action == game.Fold {
		return 0, nil
	}
	opponents := in.opponents()
	toCall := math.Max(0, in.CurrentBet-in.PlayerBet)

	switch in.Action {
	case game.Check, game.Call:
		eq, err := c.engine.Equity(ctx, in.Hand, in.Board, opponents)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", in.Action, err)
		}
		if in.Action == game.Check {
			toCall = 0
		}
		return eq*(in.Pot+toCall) - (1-eq)*toCall, nil

	case game.Bet, game.Raise, game.AllIn:
		risk := in.Size - in.PlayerBet
		if math.IsNaN(risk) || risk <= 0 {
			return 0, &game.ValidationError{Field: "size", Reason: fmt.Sprintf("%s of %.2fBB adds no chips", in.Action, in.Size)}
		}
		f := c.tendencies.FoldFrequency(in.Stage, in.Position)
		allFold := math.Pow(f, float64(opponents))
		eq, err := c.engine.Equity(ctx, in.Hand, in.Board, Callers(opponents, f))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", in.Action, err)
		}
		return eq*(in.Pot+risk) - (1-eq)*risk + allFold*in.Pot, nil
	}
	return 0, &game.ValidationError{Field: "action", Reason: fmt.Sprintf("unknown action %d", int(in.Action))}
}

// Callers is the expected number of opponents who continue against a bet
// when each folds with probability fold, given that at least one calls.
// It is rounded to a whole player and kept within [1, opponents].
func Callers(opponents int, fold float64) int {
	if opponents <= 1 {
		return 1
	}
	cont := 1 - math.Pow(fold, float64(opponents))
	if cont <= 0 {
		return 1
	}
	n := int(math.Round(float64(opponents) * (1 - fold) / cont))
	return min(max(n, 1), opponents)
}

func (in EVInput) opponents() int {
	return game.Situation{NumPlayers: in.NumPlayers}.Opponents()
}

// EV scores taking a in s.
func (c *Calculator) EV(ctx context.Context, s game.Situation, a game.Action) (float64, error) {
	return c.CalculateEV(ctx, InputFor(s, a))
}

// Candidate is one scored action. Err is set when it could not be scored.
type Candidate struct {
	Action game.Action
	EV     float64
	Err    error
}

// Ranking is a set of scored candidates, best first. Candidates whose EV
// could not be computed are kept apart in Failed and never ranked.
type Ranking struct {
	Candidates []Candidate
	Failed     []Candidate
}

// Best returns the highest-EV candidate.
func (r Ranking) Best() (Candidate, bool) {
	if len(r.Candidates) == 0 {
		return Candidate{}, false
	}
	return r.Candidates[0], true
}

// Find returns the scored candidate for a.
func (r Ranking) Find(a game.Action) (Candidate, bool) {
	for _, c := range r.Candidates {
		if c.Action == a {
			return c, true
		}
	}
	return Candidate{}, false
}

// Rank scores every candidate in s.
func (c *Calculator) Rank(ctx context.Context, s game.Situation, candidates []game.Action) Ranking {
	var r Ranking
	for _, a := range candidates {
		ev, err := c.EV(ctx, s, a)
		if err != nil {
			r.Failed = append(r.Failed, Candidate{Action: a, Err: err})
			continue
		}
		r.Candidates = append(r.Candidates, Candidate{Action: a, EV: ev})
	}
	slices.SortStableFunc(r.Candidates, func(a, b Candidate) int {
		switch {
		case a.EV > b.EV:
			return -1
		case a.EV < b.EV:
			return 1
		}
		return 0
	})
	return r
}

// EVLoss is how much worse the chosen EV is than the best, never negative.
func EVLoss(best, chosen float64) float64 {
	return math.Max(0, best-chosen)
}

// Candidates lists the legal actions in s, with bets and raises at each
// size of the menu.
func Candidates(s game.Situation, menu game.SizeMenu) []game.Action {
	avail := game.AvailableActions(s)
	var out []game.Action
	for _, kind := range []game.ActionKind{game.Fold, game.Check, game.Call} {
		if avail.Allows(kind) {
			out = append(out, game.Action{Kind: kind})
		}
	}
	for _, size := range game.RaiseSizes(s, menu) {
		switch {
		case size == avail.AllInSize:
			out = append(out, game.Action{Kind: game.AllIn, Size: size})
		case avail.CanRaise:
			out = append(out, game.Action{Kind: game.Raise, Size: size})
		case avail.CanBet:
			out = append(out, game.Action{Kind: game.Bet, Size: size})
		}
	}
	return out
}
