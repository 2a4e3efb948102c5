// Package history keeps the append-only record of graded decisions.
package history

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/sizing"
	"github.com/lox/gtotrainer/poker"
)

// DecisionRecord is one graded decision. Records are never modified once
// appended; corrections are new records.
type DecisionRecord struct {
	SessionID string    `json:"session_id" toml:"session_id"`
	HandID    string    `json:"hand_id" toml:"hand"`
	Seq       int       `json:"seq" toml:"seq"`
	Timestamp time.Time `json:"timestamp" toml:"time"`

	Situation game.Situation `json:"situation" toml:"situation"`
	HoleCards string         `json:"hole_cards" toml:"hole_cards"`
	Board     string         `json:"board,omitempty" toml:"board,omitempty"`

	Action         game.Action       `json:"action" toml:"action"`
	OptimalActions []game.ActionKind `json:"optimal_actions" toml:"optimal_actions"`
	IsCorrect      bool              `json:"is_correct" toml:"is_correct"`

	// EV is the value of the chosen action and EVLoss its distance from
	// the best candidate. Both are zero and EVKnown false when equity
	// could not be computed for the chosen action.
	EV      float64 `json:"ev" toml:"ev"`
	EVLoss  float64 `json:"ev_loss" toml:"ev_loss"`
	EVKnown bool    `json:"ev_known" toml:"ev_known"`

	Size     *sizing.Verdict `json:"size,omitempty" toml:"size,omitempty"`
	Feedback string          `json:"feedback" toml:"feedback"`
}

// Stage is the street the decision was made on.
func (r DecisionRecord) Stage() game.Stage {
	return r.Situation.Stage
}

// Clone returns a copy sharing no memory with r.
func (r DecisionRecord) Clone() DecisionRecord {
	out := r
	out.OptimalActions = slices.Clone(r.OptimalActions)
	if r.Size != nil {
		size := *r.Size
		out.Size = &size
	}
	return out
}

// RestoreCards rebuilds the situation's hole cards and board from their
// text form after decoding, since the bitsets are not serialized.
func (r *DecisionRecord) RestoreCards() error {
	hole, err := poker.ParseStartingHand(r.HoleCards)
	if err != nil {
		return err
	}
	board, err := poker.ParseHand(r.Board)
	if err != nil {
		return err
	}
	r.Situation.Hand = hole
	r.Situation.Board = board
	return nil
}

// NetEV is the record's contribution to a session's net EV: the chosen
// action's EV floored at 0 when correct, minus the EV given up when not.
func (r DecisionRecord) NetEV() float64 {
	if !r.EVKnown {
		return 0
	}
	if r.IsCorrect {
		return math.Max(0, r.EV)
	}
	return -r.EVLoss
}

// Line renders the record as one line of a hand review.
func (r DecisionRecord) Line() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s %s %s", r.Seq, r.Situation.Stage, r.Situation.Position, r.HoleCards)
	if r.Board != "" {
		fmt.Fprintf(&sb, " on %s", r.Board)
	}
	fmt.Fprintf(&sb, ": %s", r.Action)

	optimal := make([]string, len(r.OptimalActions))
	for i, k := range r.OptimalActions {
		optimal[i] = k.String()
	}
	if len(optimal) == 0 {
		sb.WriteString(" (no strategy data)")
	} else {
		fmt.Fprintf(&sb, " (optimal %s)", strings.Join(optimal, "/"))
	}

	if r.IsCorrect {
		sb.WriteString(" correct")
	} else {
		sb.WriteString(" mistake")
	}
	if r.EVKnown {
		fmt.Fprintf(&sb, ", EV %+.2fBB", r.EV)
		if r.EVLoss > 0 {
			fmt.Fprintf(&sb, ", lost %.2fBB", r.EVLoss)
		}
	}
	if r.Size != nil && !r.Size.IsOptimal {
		fmt.Fprintf(&sb, ", %s sized", r.Size.Direction)
	}
	return sb.String()
}
