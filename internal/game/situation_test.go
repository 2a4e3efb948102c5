package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/gtotrainer/poker"
)

func TestSituationValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Situation)
		field  string
	}{
		{"valid", func(*Situation) {}, ""},
		{"one player", func(s *Situation) { s.NumPlayers = 1 }, "numPlayers"},
		{"ten players", func(s *Situation) { s.NumPlayers = 10 }, "numPlayers"},
		{"position absent heads-up", func(s *Situation) { s.NumPlayers = 2; s.Position = CO }, "position"},
		{"terminal stage", func(s *Situation) { s.Stage = Showdown }, "stage"},
		{"short board", func(s *Situation) { s.Board = poker.MustParseHand("Ks7c") }, "communityCards"},
		{"board overlaps hand", func(s *Situation) { s.Board = poker.MustParseHand("Ah7c2d") }, "communityCards"},
		{"NaN pot", func(s *Situation) { s.Pot = math.NaN() }, "pot"},
		{"negative stack", func(s *Situation) { s.Stack = -1 }, "stack"},
		{"busted", func(s *Situation) { s.Stack = 0 }, "stack"},
		{"player bet above current", func(s *Situation) { s.PlayerBet = 2 }, "playerBet"},
		{"facing nothing owed", func(s *Situation) { s.Facing = FacingBet }, "actionToFace"},
		{"owed without facing", func(s *Situation) { s.CurrentBet = 2; s.Pot = 8 }, "actionToFace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := flopSituation(t)
			tt.mutate(&s)
			err := s.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestSituationKeyIgnoresBoardOrder(t *testing.T) {
	a := flopSituation(t)
	b := a
	b.Board = poker.MustParseHand("2dKs7c")
	assert.Equal(t, a.Key(), b.Key())

	c := a
	c.Stack = 50
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestSituationInPosition(t *testing.T) {
	s := flopSituation(t)
	assert.True(t, s.InPosition())
	s.Position = UTG
	assert.False(t, s.InPosition())
	s.NumPlayers, s.Position = 2, BTN
	assert.True(t, s.InPosition())
	s.Position = BB
	assert.False(t, s.InPosition())
}

func TestSituationAccessors(t *testing.T) {
	s := flopSituation(t)
	s.CurrentBet, s.PlayerBet, s.Pot, s.Facing = 9, 3, 18, FacingRaise
	assert.Equal(t, 6.0, s.ToCall())
	assert.Equal(t, 100.0, s.MaxCommit())
	assert.InDelta(t, 97.0/18, s.SPR(), 1e-9)
	assert.Equal(t, 5, s.Opponents())
}

func TestStreetsLeft(t *testing.T) {
	assert.Equal(t, 4, Preflop.StreetsLeft())
	assert.Equal(t, 3, Flop.StreetsLeft())
	assert.Equal(t, 1, River.StreetsLeft())
	assert.Zero(t, Showdown.StreetsLeft())
}
