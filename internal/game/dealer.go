package game

import (
	"fmt"
	"math"
	rand "math/rand/v2"

	"github.com/lox/gtotrainer/poker"
)

// Deal is a freshly dealt training hand.
type Deal struct {
	Hand       poker.StartingHand
	NumPlayers int
	Seat       int
	Position   Position
}

// Stack depths in big blinds that drills draw from.
var StackDepths = []float64{15, 25, 40, 60, 100, 150}

var (
	openSizes    = []float64{2, 2.5, 3}
	postflopPots = []float64{4, 6, 8, 12, 20, 30}
	betFractions = []float64{0.33, 0.5, 0.75, 1}
)

// Dealer generates training hands. All randomness comes from rng, so a
// seeded Dealer replays the same sequence of deals.
type Dealer struct {
	rng  *rand.Rand
	deck *poker.Deck
}

// NewDealer creates a dealer drawing from rng.
func NewDealer(rng *rand.Rand) *Dealer {
	return &Dealer{rng: rng, deck: poker.NewDeck(rng)}
}

// Deal draws a table size, a seat at that table and a starting hand.
func (d *Dealer) Deal() Deal {
	n := MinPlayers + d.rng.IntN(MaxPlayers-MinPlayers+1)
	seat := d.rng.IntN(n)
	pos, err := PositionOf(seat, n)
	if err != nil {
		panic(err) // n and seat are always in range
	}

	d.deck.Shuffle()
	cards := d.deck.Deal(2)
	return Deal{
		Hand:       poker.StartingHand{A: cards[0], B: cards[1]},
		NumPlayers: n,
		Seat:       seat,
		Position:   pos,
	}
}

// DealSituation deals a hand and builds a complete decision point for
// stage around it. facingProb is the chance that an opponent has already
// opened the action; the big blind always faces a preflop raise and the
// first player to act never does.
func (d *Dealer) DealSituation(stage Stage, facingProb float64) (Deal, Situation, error) {
	if !stage.IsBettingRound() {
		return Deal{}, Situation{}, invalid("stage", "cannot deal a decision at %s", stage)
	}

	deal := d.Deal()
	total := StackDepths[d.rng.IntN(len(StackDepths))]
	s := Situation{
		Position:   deal.Position,
		NumPlayers: deal.NumPlayers,
		Stage:      stage,
		Hand:       deal.Hand,
	}

	if stage == Preflop {
		d.preflop(&s, deal.Seat, total, facingProb)
	} else {
		board := d.deck.DealExcluding(stage.BoardSize(), deal.Hand.Hand())
		s.Board = poker.NewHand(board...)
		d.postflop(&s, total, facingProb)
	}

	if err := s.Validate(); err != nil {
		return Deal{}, Situation{}, fmt.Errorf("dealt an invalid situation %s: %w", s.Key(), err)
	}
	return deal, s, nil
}

func (d *Dealer) preflop(s *Situation, seat int, total, facingProb float64) {
	switch {
	case s.Position == BB:
		s.PlayerBet = 1
	case s.Position == SB, s.NumPlayers == 2 && s.Position == BTN:
		s.PlayerBet = 0.5
	}
	s.Pot = 1.5
	s.CurrentBet = 1
	s.Stack = total - s.PlayerBet

	facing := s.Position == BB || (seat != firstToAct(s.NumPlayers) && d.rng.Float64() < facingProb)
	if facing {
		open := openSizes[d.rng.IntN(len(openSizes))]
		s.CurrentBet = open
		s.Pot += open
		s.Facing = FacingRaise
	}
}

func (d *Dealer) postflop(s *Situation, total, facingProb float64) {
	pots := make([]float64, 0, len(postflopPots))
	for _, p := range postflopPots {
		if p/2 < total-1 {
			pots = append(pots, p)
		}
	}
	pot := pots[d.rng.IntN(len(pots))]
	s.Pot = pot
	s.Stack = total - pot/2

	d.facingBet(s, facingProb)
}

func (d *Dealer) facingBet(s *Situation, facingProb float64) {
	if d.rng.Float64() >= facingProb {
		return
	}
	frac := betFractions[d.rng.IntN(len(betFractions))]
	bet := math.Min(s.Stack, math.Max(MinBet, math.Round(frac*s.Pot*10)/10))
	s.CurrentBet = bet
	s.Pot += bet
	s.Facing = FacingBet
}

// NextStreet carries the hand past prev once the player has taken a: one
// opponent matches any bet, the next community cards are dealt and a new
// decision point is built. It reports false when the hand has no further
// decision because the player folded, the river is done or the player is
// all-in.
func (d *Dealer) NextStreet(prev Situation, a Action, facingProb float64) (Situation, bool, error) {
	a, err := ValidateAction(prev, a)
	if err != nil {
		return Situation{}, false, err
	}
	if a.Kind == Fold || prev.Stage >= River {
		return Situation{}, false, nil
	}

	final := prev.PlayerBet
	switch a.Kind {
	case Call:
		final = prev.CurrentBet
	case Bet, Raise, AllIn:
		final = a.Size
	}
	added := final - prev.PlayerBet
	if prev.Stack-added <= sizeEpsilon {
		return Situation{}, false, nil
	}

	next := Situation{
		Position:   prev.Position,
		NumPlayers: prev.NumPlayers,
		Stage:      prev.Stage.Next(),
		Pot:        prev.Pot + added + math.Max(0, final-prev.CurrentBet),
		Stack:      prev.Stack - added,
		Hand:       prev.Hand,
		Board:      prev.Board,
	}
	d.deck.Shuffle()
	cards := d.deck.DealExcluding(next.Stage.BoardSize()-prev.Stage.BoardSize(), prev.Hand.Hand()|prev.Board)
	for _, c := range cards {
		next.Board.AddCard(c)
	}
	d.facingBet(&next, facingProb)

	if err := next.Validate(); err != nil {
		return Situation{}, false, fmt.Errorf("continued to an invalid situation %s: %w", next.Key(), err)
	}
	return next, true, nil
}

// firstToAct returns the seat that opens preflop action. Heads-up the
// button acts first; otherwise it is the seat after the big blind.
func firstToAct(numPlayers int) int {
	if numPlayers <= 3 {
		return 0
	}
	return 3
}
