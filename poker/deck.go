package poker

import (
	rand "math/rand/v2"
)

// Deck is a standard 52-card deck shuffled from an explicit random source.
type Deck struct {
	cards [52]Card
	next  int
	rng   *rand.Rand
}

// NewDeck creates a shuffled deck. The rng must not be nil.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	i := 0
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}
	d.Shuffle()
	return d
}

// Shuffle shuffles the deck using Fisher-Yates and resets the deal position.
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal deals n cards, or nil if fewer remain.
func (d *Deck) Deal(n int) []Card {
	if d.next+n > len(d.cards) {
		return nil
	}
	cards := d.cards[d.next : d.next+n]
	d.next += n
	return cards
}

// DealExcluding deals n cards skipping any already in used.
func (d *Deck) DealExcluding(n int, used Hand) []Card {
	out := make([]Card, 0, n)
	for len(out) < n && d.next < len(d.cards) {
		c := d.cards[d.next]
		d.next++
		if used.HasCard(c) {
			continue
		}
		out = append(out, c)
	}
	if len(out) < n {
		return nil
	}
	return out
}

// Reset reshuffles the deck.
func (d *Deck) Reset() {
	d.Shuffle()
}

// CardsRemaining returns the number of cards left.
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}

// FullDeck returns all 52 cards as a Hand.
func FullDeck() Hand {
	return Hand(1<<52 - 1)
}
