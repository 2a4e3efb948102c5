package strategy

import (
	"github.com/lox/gtotrainer/internal/classification"
	"github.com/lox/gtotrainer/internal/game"
)

// Any matches every value of a key field.
const Any = "any"

// TableClass buckets the number of players dealt in.
func TableClass(numPlayers int) string {
	if numPlayers <= 5 {
		return "short"
	}
	return "full"
}

// StackBucket buckets the effective stack, in big blinds, at the start of
// the street.
func StackBucket(stack float64) string {
	switch {
	case stack <= 25:
		return "short"
	case stack <= 60:
		return "mid"
	}
	return "deep"
}

// SPRBucket buckets the stack-to-pot ratio.
func SPRBucket(spr float64) string {
	switch {
	case spr <= 3:
		return "low"
	case spr <= 8:
		return "mid"
	}
	return "high"
}

// PreflopKey is the preflop table lookup key.
type PreflopKey struct {
	Position game.Position
	Table    string
	Stack    string
	Facing   string
	Hand     string
}

// PreflopKeyOf derives the preflop key for s.
func PreflopKeyOf(s game.Situation) PreflopKey {
	facing := "none"
	if s.Facing != game.FacingNone {
		facing = "raise"
	}
	return PreflopKey{
		Position: s.Position,
		Table:    TableClass(s.NumPlayers),
		Stack:    StackBucket(s.MaxCommit()),
		Facing:   facing,
		Hand:     s.Hand.Encode(),
	}
}

func (k PreflopKey) fields() []string {
	return []string{k.Position.String(), k.Table, k.Stack, k.Facing}
}

func (k PreflopKey) String() string {
	return "preflop/" + k.Position.String() + "/" + k.Table + "/" + k.Stack + "/" + k.Facing + "/" + k.Hand
}

// PostflopKey is the postflop table lookup key.
type PostflopKey struct {
	Stage   game.Stage
	Texture classification.Texture
	Side    string // "ip" or "oop"
	SPR     string
	Facing  string
	Hand    classification.MadeHand
}

// PostflopKeyOf derives the postflop key for s.
func PostflopKeyOf(s game.Situation) PostflopKey {
	side := "oop"
	if s.InPosition() {
		side = "ip"
	}
	facing := "none"
	if s.Facing != game.FacingNone {
		facing = "bet"
	}
	return PostflopKey{
		Stage:   s.Stage,
		Texture: classification.AnalyzeBoardTexture(s.Board),
		Side:    side,
		SPR:     SPRBucket(s.SPR()),
		Facing:  facing,
		Hand:    classification.ClassifyMadeHand(s.Hand, s.Board),
	}
}

func (k PostflopKey) fields() []string {
	return []string{k.Hand.String(), k.Stage.String(), k.Texture.String(), k.Side, k.SPR, k.Facing}
}

func (k PostflopKey) String() string {
	out := "postflop"
	for _, f := range k.fields() {
		out += "/" + f
	}
	return out
}
