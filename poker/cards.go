// Package poker provides the card primitives shared by the trainer: a
// bit-packed Card and Hand, a deck driven by an explicit random source,
// starting-hand encoding and hand strength evaluation.
package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Card is a single card stored as one bit of a uint64.
// Layout: [13 clubs][13 diamonds][13 hearts][13 spades], rank-major inside a suit.
type Card uint64

// Hand is a set of cards; each set bit is one card. Order never matters.
type Hand uint64

// Suits
const (
	Clubs    uint8 = 0
	Diamonds uint8 = 1
	Hearts   uint8 = 2
	Spades   uint8 = 3
)

// Ranks, 0-12 for deuce through ace.
const (
	Two   uint8 = 0
	Three uint8 = 1
	Four  uint8 = 2
	Five  uint8 = 3
	Six   uint8 = 4
	Seven uint8 = 5
	Eight uint8 = 6
	Nine  uint8 = 7
	Ten   uint8 = 8
	Jack  uint8 = 9
	Queen uint8 = 10
	King  uint8 = 11
	Ace   uint8 = 12
)

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"
)

// NewCard creates a card from rank (0-12) and suit (0-3).
func NewCard(rank, suit uint8) Card {
	return Card(1) << (suit*13 + rank)
}

// Index returns the bit position (0-51), or 255 for the zero card.
func (c Card) Index() uint8 {
	if c == 0 {
		return 255
	}
	return uint8(bits.TrailingZeros64(uint64(c)))
}

// Rank returns the card rank (0-12).
func (c Card) Rank() uint8 {
	idx := c.Index()
	if idx == 255 {
		return 255
	}
	return idx % 13
}

// Suit returns the card suit (0-3).
func (c Card) Suit() uint8 {
	idx := c.Index()
	if idx == 255 {
		return 255
	}
	return idx / 13
}

// Valid reports whether c is exactly one of the 52 cards.
func (c Card) Valid() bool {
	return c != 0 && bits.OnesCount64(uint64(c)) == 1 && c.Index() < 52
}

// String returns the two character form, e.g. "As".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string(rankChars[c.Rank()]) + string(suitChars[c.Suit()])
}

// RankChar returns the rank character for a 0-12 rank.
func RankChar(rank uint8) byte {
	if rank > Ace {
		return '?'
	}
	return rankChars[rank]
}

// ParseRank converts a rank character to 0-12.
func ParseRank(b byte) (uint8, error) {
	switch b {
	case 't':
		b = 'T'
	case 'j':
		b = 'J'
	case 'q':
		b = 'Q'
	case 'k':
		b = 'K'
	case 'a':
		b = 'A'
	}
	idx := strings.IndexByte(rankChars, b)
	if idx < 0 {
		return 0, fmt.Errorf("invalid rank: %c", b)
	}
	return uint8(idx), nil
}

// ParseCard parses a string like "As" into a Card.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card string: %q", s)
	}
	rank, err := ParseRank(s[0])
	if err != nil {
		return 0, err
	}
	suit := strings.IndexByte(suitChars, s[1]|0x20)
	if suit < 0 {
		return 0, fmt.Errorf("invalid suit: %c", s[1])
	}
	return NewCard(rank, uint8(suit)), nil
}

// ParseCards parses a run of cards, with or without separators:
// "AhKd", "Ah Kd" and "Ah,Kd" are all accepted. Duplicates are rejected.
func ParseCards(s string) ([]Card, error) {
	cleaned := strings.NewReplacer(" ", "", ",", "", "\t", "").Replace(s)
	if len(cleaned)%2 != 0 {
		return nil, fmt.Errorf("invalid card list: %q", s)
	}
	cards := make([]Card, 0, len(cleaned)/2)
	var seen Hand
	for i := 0; i < len(cleaned); i += 2 {
		c, err := ParseCard(cleaned[i : i+2])
		if err != nil {
			return nil, err
		}
		if seen.HasCard(c) {
			return nil, fmt.Errorf("duplicate card %s", c)
		}
		seen.AddCard(c)
		cards = append(cards, c)
	}
	return cards, nil
}

// NewHand creates a hand from multiple cards.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// AddCard adds a card to the hand.
func (h *Hand) AddCard(c Card) {
	*h |= Hand(c)
}

// HasCard checks if the hand contains a specific card.
func (h Hand) HasCard(c Card) bool {
	return h&Hand(c) != 0
}

// CountCards returns the number of cards in the hand.
func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// GetSuitMask returns the ranks held in one suit as a 13-bit mask.
func (h Hand) GetSuitMask(suit uint8) uint16 {
	return uint16((h >> (suit * 13)) & 0x1FFF)
}

// GetRankMask returns the ranks present in any suit as a 13-bit mask.
func (h Hand) GetRankMask() uint16 {
	var mask uint16
	for suit := uint8(0); suit < 4; suit++ {
		mask |= h.GetSuitMask(suit)
	}
	return mask
}

// StraightMask returns the rank mask shifted up one bit with the ace also
// at bit 0, so wheel runs scan like any other run of consecutive bits.
func (h Hand) StraightMask() uint16 {
	ranks := h.GetRankMask()
	mask := ranks << 1
	if ranks&(1<<Ace) != 0 {
		mask |= 1
	}
	return mask
}

// Cards returns the cards in ascending bit order.
func (h Hand) Cards() []Card {
	out := make([]Card, 0, h.CountCards())
	for rest := uint64(h); rest != 0; rest &= rest - 1 {
		out = append(out, Card(rest&-rest))
	}
	return out
}

// String renders the cards in ascending bit order, e.g. "2cAsKs".
func (h Hand) String() string {
	var sb strings.Builder
	for _, c := range h.Cards() {
		sb.WriteString(c.String())
	}
	return sb.String()
}

// ParseHand parses a run of cards into a bitset. The empty string is the
// empty hand.
func ParseHand(s string) (Hand, error) {
	cards, err := ParseCards(s)
	if err != nil {
		return 0, err
	}
	return NewHand(cards...), nil
}

// MustParseHand is ParseHand for literals; it panics on error.
func MustParseHand(s string) Hand {
	h, err := ParseHand(s)
	if err != nil {
		panic(err)
	}
	return h
}
