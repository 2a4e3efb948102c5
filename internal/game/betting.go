package game

import (
	"math"
	"slices"
)

const (
	// MinRaiseMultiple is the smallest legal raise as a multiple of the bet faced.
	MinRaiseMultiple = 2.0
	// MinBet is the smallest opening bet postflop, one big blind.
	MinBet = 1.0

	sizeEpsilon = 1e-9
)

// Available is the legal action set for a situation.
type Available struct {
	CanFold  bool
	CanCheck bool
	CanCall  bool
	CanBet   bool
	CanRaise bool
	CanAllIn bool

	// MinRaise is the smallest legal raise-to total, 2x the bet faced.
	MinRaise float64
	// AllInSize is the raise-to total of shoving the whole stack.
	AllInSize float64
}

// Allows reports whether kind is in the legal set.
func (a Available) Allows(kind ActionKind) bool {
	switch kind {
	case Fold:
		return a.CanFold
	case Check:
		return a.CanCheck
	case Call:
		return a.CanCall
	case Bet:
		return a.CanBet
	case Raise:
		return a.CanRaise
	case AllIn:
		return a.CanAllIn
	}
	return false
}

// Kinds lists the legal kinds in declaration order.
func (a Available) Kinds() []ActionKind {
	var out []ActionKind
	for _, k := range AllActionKinds {
		if a.Allows(k) {
			out = append(out, k)
		}
	}
	return out
}

// AvailableActions returns the legal actions for s.
//
// Preflop the blind is always a bet to act on, so check and bet are only
// reachable postflop when nothing is owed; the one preflop exception is the
// big blind's option when nobody raised. Check and call are never both legal.
func AvailableActions(s Situation) Available {
	owed := s.ToCall()
	preflop := s.Stage == Preflop
	facing := s.Facing != FacingNone || (preflop && owed > 0)

	a := Available{
		MinRaise:  MinRaiseMultiple * s.CurrentBet,
		AllInSize: s.MaxCommit(),
	}
	a.CanCheck = !facing && owed == 0
	a.CanBet = !facing && !preflop && s.Stack > 0
	a.CanCall = facing && owed > 0 && s.Stack > owed
	a.CanRaise = (facing || preflop) && s.Stack > owed
	a.CanFold = !a.CanCheck
	a.CanAllIn = s.Stack > 0
	return a
}

// ValidateAction checks a against the legal set and size rules, returning
// the normalized action (all-in sized to the full stack). A bet or raise
// below the minimum is accepted only when it commits the whole stack.
func ValidateAction(s Situation, a Action) (Action, error) {
	avail := AvailableActions(s)
	if a.Kind == AllIn && a.Size != 0 && math.Abs(a.Size-avail.AllInSize) > sizeEpsilon {
		return Action{}, invalid("size", "all-in is %.2fBB, got %.2fBB", avail.AllInSize, a.Size)
	}
	if !avail.Allows(a.Kind) {
		return Action{}, invalid("action", "%s is not legal here (legal: %v)", a.Kind, avail.Kinds())
	}

	switch a.Kind {
	case Fold, Check, Call:
		if a.Size != 0 {
			return Action{}, invalid("size", "%s takes no size", a.Kind)
		}
		return a, nil
	case AllIn:
		return Action{Kind: AllIn, Size: avail.AllInSize}, nil
	}

	if math.IsNaN(a.Size) || a.Size <= 0 {
		return Action{}, invalid("size", "%s needs a positive size, got %v", a.Kind, a.Size)
	}
	if a.Size > avail.AllInSize+sizeEpsilon {
		return Action{}, invalid("size", "%.2fBB exceeds the %.2fBB stack", a.Size, avail.AllInSize)
	}
	allIn := math.Abs(a.Size-avail.AllInSize) <= sizeEpsilon
	if allIn {
		return Action{Kind: a.Kind, Size: avail.AllInSize}, nil
	}
	switch a.Kind {
	case Bet:
		if a.Size < MinBet {
			return Action{}, invalid("size", "minimum bet is %.2fBB, got %.2fBB", MinBet, a.Size)
		}
	case Raise:
		if a.Size < avail.MinRaise-sizeEpsilon {
			return Action{}, invalid("size", "minimum raise is %.2fBB, got %.2fBB", avail.MinRaise, a.Size)
		}
	}
	return a, nil
}

// SizeMenu is the set of sizes offered to the player: raises as multiples
// of the bet faced, bets as fractions of the pot.
type SizeMenu struct {
	RaiseMultiples []float64 `hcl:"raise_multiples,optional"`
	BetFractions   []float64 `hcl:"bet_fractions,optional"`
}

// DefaultSizeMenu is offered when no menu is configured.
var DefaultSizeMenu = SizeMenu{
	RaiseMultiples: []float64{2, 2.5, 3, 4},
	BetFractions:   []float64{0.33, 0.5, 0.75, 1},
}

// RaiseSizes lists the bet or raise totals to offer for s, rounded to a
// tenth of a big blind. Every raise offered is at least the minimum raise;
// the full stack is always appended as the all-in option.
func RaiseSizes(s Situation, menu SizeMenu) []float64 {
	avail := AvailableActions(s)
	var sizes []float64
	switch {
	case avail.CanRaise:
		for _, m := range menu.RaiseMultiples {
			size := math.Ceil(m*s.CurrentBet*10) / 10
			if size >= avail.MinRaise && size < avail.AllInSize {
				sizes = append(sizes, size)
			}
		}
	case avail.CanBet:
		for _, f := range menu.BetFractions {
			size := math.Max(MinBet, math.Round(f*s.Pot*10)/10)
			if size < avail.AllInSize {
				sizes = append(sizes, size)
			}
		}
	}
	if avail.CanAllIn {
		sizes = append(sizes, avail.AllInSize)
	}
	slices.Sort(sizes)
	return slices.Compact(sizes)
}
