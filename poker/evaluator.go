package poker

import (
	"fmt"
	"math/bits"

	ph "github.com/paulhankin/poker"
)

// HandRank is the strength of a seven-card hand. Higher values are stronger.
type HandRank int16

// HandType enumerates the categories of poker hands from weakest to strongest.
type HandType uint8

const (
	HighCard HandType = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

func (t HandType) String() string {
	switch t {
	case HighCard:
		return "high card"
	case Pair:
		return "pair"
	case TwoPair:
		return "two pair"
	case ThreeOfAKind:
		return "three of a kind"
	case Straight:
		return "straight"
	case Flush:
		return "flush"
	case FullHouse:
		return "full house"
	case FourOfAKind:
		return "four of a kind"
	case StraightFlush:
		return "straight flush"
	default:
		return "unknown"
	}
}

// libCards maps our bit index (suit*13+rank) to the evaluator library's card.
var libCards = func() [52]ph.Card {
	var out [52]ph.Card
	suits := [4]ph.Suit{ph.Club, ph.Diamond, ph.Heart, ph.Spade}
	for suit := uint8(0); suit < 4; suit++ {
		for rank := uint8(0); rank < 13; rank++ {
			// The library numbers ranks 1-13 with the ace as 1.
			libRank := ph.Rank(rank + 2)
			if rank == Ace {
				libRank = ph.Rank(1)
			}
			c, err := ph.MakeCard(suits[suit], libRank)
			if err != nil {
				panic(fmt.Sprintf("poker: building card table: %v", err))
			}
			out[suit*13+rank] = c
		}
	}
	return out
}()

func toLib(h Hand) []ph.Card {
	out := make([]ph.Card, 0, h.CountCards())
	for _, c := range h.Cards() {
		out = append(out, libCards[c.Index()])
	}
	return out
}

// Evaluate7 scores a seven-card hand. It panics if h does not hold exactly
// seven cards; callers in hot loops build the hand themselves.
func Evaluate7(h Hand) HandRank {
	if h.CountCards() != 7 {
		panic(fmt.Sprintf("poker: Evaluate7 needs 7 cards, got %d", h.CountCards()))
	}
	var arr [7]ph.Card
	copy(arr[:], toLib(h))
	return HandRank(ph.Eval7(&arr))
}

// CompareHands returns 1 if a wins, -1 if b wins, 0 for a tie.
func CompareHands(a, b HandRank) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

// Describe returns a readable description of the best hand in h (5-7 cards).
func Describe(h Hand) (string, error) {
	n := h.CountCards()
	if n < 5 || n > 7 {
		return "", fmt.Errorf("describe needs 5-7 cards, got %d", n)
	}
	return ph.Describe(toLib(h))
}

// Classify returns the category of the best hand made from h, for any
// number of cards. Fewer than five cards can still be a pair, two pair,
// trips or quads.
func Classify(h Hand) HandType {
	var suitMasks [4]uint16
	var rankMask uint16
	for suit := uint8(0); suit < 4; suit++ {
		suitMasks[suit] = h.GetSuitMask(suit)
		rankMask |= suitMasks[suit]
	}

	flush := false
	for _, m := range suitMasks {
		if bits.OnesCount16(m) >= 5 {
			if straightHigh(m) >= 0 {
				return StraightFlush
			}
			flush = true
		}
	}

	s0, s1, s2, s3 := suitMasks[0], suitMasks[1], suitMasks[2], suitMasks[3]
	quads := s0 & s1 & s2 & s3
	trips := ((s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)) &^ quads
	pairs := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ (trips | quads)

	switch {
	case quads != 0:
		return FourOfAKind
	case trips != 0 && (pairs != 0 || bits.OnesCount16(trips) >= 2):
		return FullHouse
	case flush:
		return Flush
	case straightHigh(rankMask) >= 0:
		return Straight
	case trips != 0:
		return ThreeOfAKind
	case bits.OnesCount16(pairs) >= 2:
		return TwoPair
	case pairs != 0:
		return Pair
	}
	return HighCard
}

// PairedRanks returns the ranks appearing at least twice in h.
func PairedRanks(h Hand) uint16 {
	s0, s1, s2, s3 := h.GetSuitMask(0), h.GetSuitMask(1), h.GetSuitMask(2), h.GetSuitMask(3)
	return (s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)
}

// straightHigh returns the high rank of the best straight in a 13-bit rank
// mask, 3 for the wheel, or -1 when there is none.
func straightHigh(mask uint16) int {
	const wheel = 0x100F // A-2-3-4-5
	mask &= 0x1FFF
	seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4)
	if seq != 0 {
		return bits.Len16(seq) - 1 + 4
	}
	if mask&wheel == wheel {
		return 3
	}
	return -1
}
