package game

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lox/gtotrainer/poker"
)

// Situation is everything a verdict depends on. It is a plain value with no
// references into live game state, so the same Situation always resolves
// and scores the same way.
//
// Amounts are in big blinds. Pot includes every chip committed so far,
// including CurrentBet and the player's own PlayerBet on this street.
type Situation struct {
	Position   Position           `json:"position" toml:"position"`
	NumPlayers int                `json:"num_players" toml:"num_players"`
	Stage      Stage              `json:"stage" toml:"stage"`
	Pot        float64            `json:"pot" toml:"pot"`
	CurrentBet float64            `json:"current_bet" toml:"current_bet"`
	PlayerBet  float64            `json:"player_bet" toml:"player_bet"`
	Stack      float64            `json:"stack" toml:"stack"`
	Hand       poker.StartingHand `json:"-" toml:"-"`
	Board      poker.Hand         `json:"-" toml:"-"`
	Facing     Facing             `json:"facing" toml:"facing"`
}

// ToCall is the amount still owed to continue.
func (s Situation) ToCall() float64 {
	return math.Max(0, s.CurrentBet-s.PlayerBet)
}

// MaxCommit is the largest total the player can have in on this street.
func (s Situation) MaxCommit() float64 {
	return s.Stack + s.PlayerBet
}

// SPR is the stack-to-pot ratio; zero pots report +Inf.
func (s Situation) SPR() float64 {
	if s.Pot <= 0 {
		return math.Inf(1)
	}
	return s.Stack / s.Pot
}

// Opponents is the number of other players dealt in.
func (s Situation) Opponents() int {
	return max(1, s.NumPlayers-1)
}

// InPosition reports whether the player acts last postflop. Only the
// cutoff and button are treated as in position.
func (s Situation) InPosition() bool {
	if s.NumPlayers == 2 {
		return s.Position == BTN
	}
	return s.Position.Late()
}

// Validate checks every field and returns the first *ValidationError.
func (s Situation) Validate() error {
	if s.NumPlayers < MinPlayers || s.NumPlayers > MaxPlayers {
		return invalid("numPlayers", "must be between %d and %d, got %d", MinPlayers, MaxPlayers, s.NumPlayers)
	}
	if s.Position < UTG || s.Position > BB {
		return invalid("position", "unknown position %d", int(s.Position))
	}
	if !s.Position.SeatedAt(s.NumPlayers) {
		return invalid("position", "%s does not exist at a %d-handed table", s.Position, s.NumPlayers)
	}
	if !s.Stage.IsBettingRound() {
		return invalid("stage", "decisions happen preflop through river, got %s", s.Stage)
	}
	if !s.Hand.Valid() {
		return invalid("hand", "need two distinct cards")
	}
	if got, want := s.Board.CountCards(), s.Stage.BoardSize(); got != want {
		return invalid("communityCards", "%s needs %d cards, got %d", s.Stage, want, got)
	}
	if s.Board&s.Hand.Hand() != 0 {
		return invalid("communityCards", "board shares a card with the hand")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"pot", s.Pot}, {"currentBet", s.CurrentBet}, {"playerBet", s.PlayerBet}, {"stack", s.Stack}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return invalid(f.name, "must be a finite non-negative number, got %v", f.v)
		}
	}
	if s.Stack == 0 {
		return invalid("stack", "player has no chips behind")
	}
	if s.PlayerBet > s.CurrentBet {
		return invalid("playerBet", "%.2f exceeds the current bet %.2f", s.PlayerBet, s.CurrentBet)
	}
	if s.Pot < s.CurrentBet {
		return invalid("pot", "%.2f is smaller than the bet faced %.2f", s.Pot, s.CurrentBet)
	}
	if s.Facing < FacingNone || s.Facing > FacingRaise {
		return invalid("actionToFace", "unknown value %d", int(s.Facing))
	}
	if s.Facing != FacingNone && s.ToCall() == 0 {
		return invalid("actionToFace", "facing a %s but nothing is owed", s.Facing)
	}
	if s.Stage != Preflop && s.Facing == FacingNone && s.ToCall() > 0 {
		return invalid("actionToFace", "%.2f owed with no bet to face", s.ToCall())
	}
	return nil
}

// Key is a stable fingerprint of the situation, used for memoization and
// logging. Board order never affects it.
func (s Situation) Key() string {
	var sb strings.Builder
	sb.WriteString(s.Position.String())
	sb.WriteByte('/')
	sb.WriteString(strconv.Itoa(s.NumPlayers))
	sb.WriteByte('/')
	sb.WriteString(s.Stage.String())
	sb.WriteByte('/')
	sb.WriteString(s.Hand.Encode())
	sb.WriteByte('/')
	sb.WriteString(strconv.FormatUint(uint64(s.Hand.Hand()), 16))
	sb.WriteByte('/')
	sb.WriteString(strconv.FormatUint(uint64(s.Board), 16))
	fmt.Fprintf(&sb, "/%g/%g/%g/%g/%s", s.Pot, s.CurrentBet, s.PlayerBet, s.Stack, s.Facing)
	return sb.String()
}

// BoardCards returns the community cards in a canonical order.
func (s Situation) BoardCards() []poker.Card {
	return s.Board.Cards()
}

// Describe renders a one-line summary for prompts and logs.
func (s Situation) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s, %d-handed, %s", s.Stage, s.Position, s.NumPlayers, s.Hand)
	if s.Board != 0 {
		fmt.Fprintf(&sb, " on %s", s.Board)
	}
	fmt.Fprintf(&sb, ", pot %.1fBB, stack %.1fBB", s.Pot, s.Stack)
	if owed := s.ToCall(); owed > 0 {
		fmt.Fprintf(&sb, ", %.1fBB to call", owed)
	}
	return sb.String()
}
