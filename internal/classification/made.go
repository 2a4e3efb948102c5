package classification

import (
	"fmt"
	"math/bits"

	"github.com/lox/gtotrainer/poker"
)

// MadeHand buckets postflop hand strength relative to the board.
type MadeHand int

const (
	Air MadeHand = iota
	Drawing
	WeakPair
	TopPair
	Strong  // two pair or trips using a hole card
	Monster // straight or better using a hole card
)

var madeNames = [...]string{"air", "draw", "weak-pair", "top-pair", "strong", "monster"}

func (m MadeHand) String() string {
	if m < 0 || int(m) >= len(madeNames) {
		return "unknown"
	}
	return madeNames[m]
}

// ParseMadeHand converts a bucket name into a MadeHand.
func ParseMadeHand(name string) (MadeHand, error) {
	for i, n := range madeNames {
		if n == name {
			return MadeHand(i), nil
		}
	}
	return 0, fmt.Errorf("unknown made-hand class %q", name)
}

// ClassifyMadeHand buckets hole against board. Strength the board alone
// provides does not count: a straight on the board is air for everyone
// who cannot improve it.
func ClassifyMadeHand(hole poker.StartingHand, board poker.Hand) MadeHand {
	if board.CountCards() < 3 {
		return Air
	}
	all := hole.Hand() | board
	mine, shared := poker.Classify(all), poker.Classify(board)

	if mine >= poker.Straight && mine > shared {
		return Monster
	}

	boardRanks := board.GetRankMask()
	top := uint8(bits.Len16(boardRanks) - 1)
	hi, lo := hole.High().Rank(), hole.Low().Rank()
	hits := 0
	for _, r := range []uint8{hi, lo} {
		if boardRanks&(1<<r) != 0 {
			hits++
		}
	}

	switch {
	case hole.Pair() && boardRanks&(1<<hi) != 0:
		return Strong // set
	case hits == 2 && hi != lo:
		return Strong
	case hits >= 1 && mine >= poker.ThreeOfAKind && mine > shared:
		return Strong // trips with a paired board
	case hole.Pair() && hi > top:
		return TopPair // overpair
	case hits == 1 && (hi == top || lo == top):
		return TopPair
	case hole.Pair(), hits == 1:
		return WeakPair
	}
	if DetectDraws(hole, board).HasStrongDraw() {
		return Drawing
	}
	return Air
}

// Describe names the player's made hand, e.g. "Pair of Kings".
func Describe(hole poker.StartingHand, board poker.Hand) string {
	all := hole.Hand() | board
	if all.CountCards() >= 5 {
		if desc, err := poker.Describe(all); err == nil {
			return desc
		}
	}
	return poker.Classify(all).String()
}
