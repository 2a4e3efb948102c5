package poker

import (
	"fmt"
)

// StartingHand is a player's two hole cards.
type StartingHand struct {
	A, B Card
}

// NewStartingHand builds a starting hand from two distinct valid cards.
func NewStartingHand(a, b Card) (StartingHand, error) {
	if !a.Valid() || !b.Valid() {
		return StartingHand{}, fmt.Errorf("starting hand needs two valid cards")
	}
	if a == b {
		return StartingHand{}, fmt.Errorf("starting hand cards must differ, got %s twice", a)
	}
	return StartingHand{A: a, B: b}, nil
}

// ParseStartingHand parses "AhKd" style hole cards.
func ParseStartingHand(s string) (StartingHand, error) {
	cards, err := ParseCards(s)
	if err != nil {
		return StartingHand{}, err
	}
	if len(cards) != 2 {
		return StartingHand{}, fmt.Errorf("starting hand needs 2 cards, got %d", len(cards))
	}
	return NewStartingHand(cards[0], cards[1])
}

// Valid reports whether the hand holds two distinct cards.
func (h StartingHand) Valid() bool {
	return h.A.Valid() && h.B.Valid() && h.A != h.B
}

// Hand returns the hole cards as a bitset.
func (h StartingHand) Hand() Hand {
	return NewHand(h.A, h.B)
}

// High returns the higher-ranked card.
func (h StartingHand) High() Card {
	if h.B.Rank() > h.A.Rank() {
		return h.B
	}
	return h.A
}

// Low returns the lower-ranked card.
func (h StartingHand) Low() Card {
	if h.B.Rank() > h.A.Rank() {
		return h.A
	}
	return h.B
}

// Pair reports whether both cards share a rank.
func (h StartingHand) Pair() bool {
	return h.A.Rank() == h.B.Rank()
}

// Suited reports whether both cards share a suit.
func (h StartingHand) Suited() bool {
	return h.A.Suit() == h.B.Suit()
}

// Encode returns the canonical range key: "QQ", "AKs" or "AKo".
// The result does not depend on card order.
func (h StartingHand) Encode() string {
	hi, lo := h.High().Rank(), h.Low().Rank()
	if hi == lo {
		return string([]byte{RankChar(hi), RankChar(lo)})
	}
	suffix := byte('o')
	if h.Suited() {
		suffix = 's'
	}
	return string([]byte{RankChar(hi), RankChar(lo), suffix})
}

func (h StartingHand) String() string {
	return h.High().String() + h.Low().String()
}

// StartingHandCount is the number of distinct two-card combinations.
const StartingHandCount = 1326

// AllStartingHands enumerates every two-card combination exactly once.
func AllStartingHands() []StartingHand {
	out := make([]StartingHand, 0, StartingHandCount)
	for i := uint8(0); i < 52; i++ {
		for j := i + 1; j < 52; j++ {
			out = append(out, StartingHand{A: Card(1) << i, B: Card(1) << j})
		}
	}
	return out
}

// ComboCount returns how many concrete combinations a canonical key covers:
// 6 for pairs, 4 for suited and 12 for offsuit hands.
func ComboCount(key string) int {
	switch {
	case len(key) == 2 && key[0] == key[1]:
		return 6
	case len(key) == 3 && key[2] == 's':
		return 4
	case len(key) == 3 && key[2] == 'o':
		return 12
	}
	return 0
}

// MustParseStartingHand is ParseStartingHand for literals; it panics on error.
func MustParseStartingHand(s string) StartingHand {
	h, err := ParseStartingHand(s)
	if err != nil {
		panic(err)
	}
	return h
}
