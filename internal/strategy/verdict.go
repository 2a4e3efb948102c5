package strategy

import (
	"fmt"
	"math"
	"strings"

	"github.com/lox/gtotrainer/internal/game"
)

// Frequency is one action of a verdict with how often it is played.
type Frequency struct {
	Kind   game.ActionKind `json:"kind" toml:"kind"`
	Weight float64         `json:"weight" toml:"weight"`
}

// SizeRange is the optimal sizing window for a bet or raise, as raise-to
// totals in big blinds and as a percentage of the pot.
type SizeRange struct {
	MinBB     float64 `json:"min_bb" toml:"min_bb"`
	MaxBB     float64 `json:"max_bb" toml:"max_bb"`
	MinPotPct float64 `json:"min_pot_pct" toml:"min_pot_pct"`
	MaxPotPct float64 `json:"max_pot_pct" toml:"max_pot_pct"`
}

func (r SizeRange) String() string {
	if r.MinBB == r.MaxBB {
		return fmt.Sprintf("%.1fBB (%.0f%% pot)", r.MinBB, r.MinPotPct)
	}
	return fmt.Sprintf("%.1f-%.1fBB (%.0f-%.0f%% pot)", r.MinBB, r.MaxBB, r.MinPotPct, r.MaxPotPct)
}

// Contains reports whether size falls inside the range, bounds included.
func (r SizeRange) Contains(size float64) bool {
	return size >= r.MinBB-sizeTolerance && size <= r.MaxBB+sizeTolerance
}

const sizeTolerance = 1e-9

// Verdict is the resolver's answer for one situation. A NoData verdict
// carries no actions and must not be read as "fold".
type Verdict struct {
	Actions     []Frequency `json:"actions" toml:"actions"`
	SizeRange   *SizeRange  `json:"size_range,omitempty" toml:"size_range,omitempty"`
	Explanation string      `json:"explanation" toml:"explanation"`
	Source      string      `json:"source" toml:"source"`
	NoData      bool        `json:"no_data,omitempty" toml:"no_data,omitempty"`
}

// Kinds lists the optimal action kinds, most frequent first.
func (v Verdict) Kinds() []game.ActionKind {
	out := make([]game.ActionKind, len(v.Actions))
	for i, f := range v.Actions {
		out[i] = f.Kind
	}
	return out
}

// Contains reports whether kind is one of the optimal actions.
func (v Verdict) Contains(kind game.ActionKind) bool {
	for _, f := range v.Actions {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// Accepts reports whether a matches an optimal action. Shoving counts as
// the recommended bet or raise when the shove lies inside the size range.
func (v Verdict) Accepts(a game.Action) bool {
	if v.Contains(a.Kind) {
		return true
	}
	if a.Kind == game.AllIn && v.SizeRange != nil && (v.Contains(game.Bet) || v.Contains(game.Raise)) {
		return v.SizeRange.Contains(a.Size)
	}
	return false
}

// Primary is the most frequent optimal action.
func (v Verdict) Primary() (game.ActionKind, bool) {
	if len(v.Actions) == 0 {
		return 0, false
	}
	return v.Actions[0].Kind, true
}

// Summary renders the actions, e.g. "raise 70%, call 30%".
func (v Verdict) Summary() string {
	if v.NoData {
		return "no data"
	}
	parts := make([]string, len(v.Actions))
	for i, f := range v.Actions {
		parts[i] = fmt.Sprintf("%s %.0f%%", f.Kind, math.Round(f.Weight*100))
	}
	return strings.Join(parts, ", ")
}
