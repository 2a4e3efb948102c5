// Package strategy holds the precomputed strategy tables and the resolver
// that answers "what is optimal here" from them. Nothing is solved live:
// preflop spots are range lookups, postflop spots are bucketed rows.
package strategy

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/lox/gtotrainer/internal/classification"
	"github.com/lox/gtotrainer/internal/game"
)

// ErrNoData is returned when the table has no entry for a situation.
var ErrNoData = errors.New("no strategy data for this situation")

// Resolver answers situations from a Table. It holds no mutable state, so
// the same Situation always yields the same Verdict.
type Resolver struct {
	table *Table
}

// NewResolver creates a resolver over t.
func NewResolver(t *Table) *Resolver {
	return &Resolver{table: t}
}

// Resolve returns the optimal actions for s. Malformed situations return
// a *game.ValidationError; table misses return a NoData verdict together
// with an error wrapping ErrNoData.
func (r *Resolver) Resolve(s game.Situation) (Verdict, error) {
	if err := s.Validate(); err != nil {
		return Verdict{}, err
	}
	if s.Stage == game.Preflop {
		return r.resolvePreflop(s)
	}
	return r.resolvePostflop(s)
}

func (r *Resolver) resolvePreflop(s game.Situation) (Verdict, error) {
	key := PreflopKeyOf(s)
	row, ok := r.table.findPreflop(key)
	if !ok {
		return noData(key.String()), fmt.Errorf("%w: %s", ErrNoData, key)
	}

	avail := game.AvailableActions(s)
	raise, call := row.raise.Weight(s.Hand), row.call.Weight(s.Hand)
	rest := math.Max(0, 1-raise-call)

	plan := []plannedAction{
		{kind: game.Raise, weight: raise, sizeMin: row.sizeMin, sizeMax: row.sizeMax},
		{kind: game.Call, weight: call},
		{kind: game.Fold, weight: rest},
	}
	v := build(s, avail, plan)
	v.Source = row.source

	cat := s.Hand.Categorize()
	v.Explanation = fmt.Sprintf("%s is a %s. From %s with %.0fBB %s: %s.",
		s.Hand.Encode(), cat.Rationale(), s.Position, s.MaxCommit(), preflopSpot(key), v.Summary())
	if v.SizeRange != nil {
		v.Explanation += fmt.Sprintf(" Size it %s.", v.SizeRange)
	}
	if row.note != "" {
		v.Explanation += " " + row.note
	}
	return v, nil
}

func (r *Resolver) resolvePostflop(s game.Situation) (Verdict, error) {
	key := PostflopKeyOf(s)
	row, ok := r.table.findPostflop(key)
	if !ok {
		return noData(key.String()), fmt.Errorf("%w: %s", ErrNoData, key)
	}

	v := build(s, game.AvailableActions(s), row.actions)
	v.Source = row.source
	v.Explanation = fmt.Sprintf("%s (%s) on a %s %s, %s with SPR %.1f: %s.",
		classification.Describe(s.Hand, s.Board), key.Hand, key.Texture, s.Stage,
		sideName(key.Side), s.SPR(), v.Summary())
	if v.SizeRange != nil {
		v.Explanation += fmt.Sprintf(" Size it %s.", v.SizeRange)
	}
	if row.note != "" {
		v.Explanation += " " + row.note
	}
	return v, nil
}

func noData(key string) Verdict {
	return Verdict{NoData: true, Explanation: "no strategy data for " + key, Source: key}
}

// build maps planned actions onto the legal set, merges duplicates and
// works out the size range of the most frequent sized action.
func build(s game.Situation, avail game.Available, plan []plannedAction) Verdict {
	merged := make(map[game.ActionKind]float64)
	var sized *plannedAction
	var sizeRange *SizeRange

	for _, p := range plan {
		if p.weight <= 0 {
			continue
		}
		kind := legalize(p.kind, avail)
		if kind.Sized() {
			rng, shove := sizeFor(s, avail, kind, p)
			if shove {
				kind = game.AllIn
			} else if sized == nil || p.weight > sized.weight {
				sized = &p
				sizeRange = &rng
			}
		}
		merged[kind] += p.weight
	}

	v := Verdict{SizeRange: sizeRange}
	for kind, w := range merged {
		v.Actions = append(v.Actions, Frequency{Kind: kind, Weight: w})
	}
	slices.SortFunc(v.Actions, func(a, b Frequency) int {
		if a.Weight != b.Weight {
			if a.Weight > b.Weight {
				return -1
			}
			return 1
		}
		return int(a.Kind) - int(b.Kind)
	})
	return v
}

// legalize swaps a planned action that is not legal here for the closest
// one that is.
func legalize(kind game.ActionKind, avail game.Available) game.ActionKind {
	if avail.Allows(kind) {
		return kind
	}
	switch kind {
	case game.Fold:
		return game.Check
	case game.Check:
		return game.Fold
	case game.Call:
		if avail.CanCheck {
			return game.Check
		}
		return game.AllIn
	case game.Bet:
		if avail.CanRaise {
			return game.Raise
		}
		return game.AllIn
	case game.Raise:
		if avail.CanBet {
			return game.Bet
		}
		return game.AllIn
	}
	return kind
}

// sizeFor converts a planned size window into big blinds, clamped to the
// legal minimum and the stack. Raises are multiples of the bet faced and
// bets are fractions of the pot. shove reports that the whole window is at
// or beyond the stack.
func sizeFor(s game.Situation, avail game.Available, kind game.ActionKind, p plannedAction) (SizeRange, bool) {
	var lo, hi, floor float64
	if kind == game.Raise {
		lo, hi = p.sizeMin*s.CurrentBet, p.sizeMax*s.CurrentBet
		floor = avail.MinRaise
	} else {
		lo, hi = p.sizeMin*s.Pot, p.sizeMax*s.Pot
		floor = game.MinBet
	}
	lo = round1(math.Max(lo, floor))
	hi = round1(math.Max(hi, lo))
	if lo >= avail.AllInSize {
		return SizeRange{}, true
	}
	hi = math.Min(hi, avail.AllInSize)
	return SizeRange{
		MinBB:     lo,
		MaxBB:     hi,
		MinPotPct: potPct(lo, s.Pot),
		MaxPotPct: potPct(hi, s.Pot),
	}, false
}

func potPct(size, pot float64) float64 {
	if pot <= 0 {
		return 0
	}
	return math.Round(size/pot*1000) / 10
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func preflopSpot(k PreflopKey) string {
	if k.Facing == "raise" {
		return "facing a raise"
	}
	return "with the action folded to you"
}

func sideName(side string) string {
	if side == "ip" {
		return "in position"
	}
	return "out of position"
}
