package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/history"
	"github.com/lox/gtotrainer/internal/sizing"
	"github.com/lox/gtotrainer/internal/tracker"
	"github.com/lox/gtotrainer/poker"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *SQL {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "trainer.db")
	s, err := OpenSQL(context.Background(), DriverSQLite, path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(hand string, seq int, stage game.Stage, at time.Duration) history.DecisionRecord {
	hole := poker.MustParseStartingHand("QsQd")
	board := poker.Hand(0)
	if stage != game.Preflop {
		board = poker.MustParseHand("Ks7c2d")
	}
	return history.DecisionRecord{
		SessionID: "s1",
		HandID:    hand,
		Seq:       seq,
		Timestamp: epoch.Add(at),
		Situation: game.Situation{
			Position: game.HJ, NumPlayers: 9, Stage: stage,
			Pot: 6, Stack: 60, Hand: hole, Board: board,
		},
		HoleCards:      hole.String(),
		Board:          board.String(),
		Action:         game.Action{Kind: game.Bet, Size: 3},
		OptimalActions: []game.ActionKind{game.Bet},
		IsCorrect:      true,
		EV:             2.25,
		EVKnown:        true,
		Size:           &sizing.Verdict{ChosenBB: 3, IsOptimal: false, Direction: sizing.Over},
		Feedback:       "Bet smaller.",
	}
}

func TestSQLiteDecisions(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.AppendDecision(ctx, testRecord("h1", 2, game.Flop, 2*time.Second)))
	require.NoError(t, s.AppendDecision(ctx, testRecord("h1", 1, game.Preflop, time.Second)))
	require.NoError(t, s.AppendDecision(ctx, testRecord("h2", 1, game.Preflop, 0)))

	err := s.AppendDecision(ctx, testRecord("h1", 1, game.Preflop, 3*time.Second))
	assert.True(t, errors.Is(err, history.ErrDuplicateRecord))

	got, err := s.Decisions(ctx, history.Filter{HandID: "h1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Seq)
	assert.Equal(t, 2, got[1].Seq)

	rec := got[1]
	assert.Equal(t, game.Flop, rec.Situation.Stage)
	assert.Equal(t, game.HJ, rec.Situation.Position)
	assert.Equal(t, poker.MustParseHand("Ks7c2d"), rec.Situation.Board)
	assert.Equal(t, "QQ", rec.Situation.Hand.Encode())
	assert.Equal(t, game.Action{Kind: game.Bet, Size: 3}, rec.Action)
	require.NotNil(t, rec.Size)
	assert.Equal(t, sizing.Over, rec.Size.Direction)
	assert.True(t, epoch.Add(2*time.Second).Equal(rec.Timestamp))

	preflop := game.Preflop
	pre, err := s.Decisions(ctx, history.Filter{Stage: &preflop})
	require.NoError(t, err)
	require.Len(t, pre, 2)
	assert.Equal(t, "h2", pre[0].HandID)

	all, err := s.Decisions(ctx, history.Filter{SessionID: "s1"})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteSessions(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	live := tracker.NewSession("s1", epoch)
	require.NoError(t, live.Add(testRecord("h1", 1, game.Flop, 0)))

	assert.Error(t, s.AppendSession(ctx, live.Snapshot()), "open sessions are not stored")

	sum, err := live.Close(epoch.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, s.AppendSession(ctx, sum))
	assert.True(t, errors.Is(s.AppendSession(ctx, sum), ErrSessionExists))

	got, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].SessionID)
	assert.True(t, got[0].Closed)
	assert.Equal(t, tracker.Tally{Total: 1, Correct: 1}, got[0].Stages[game.Flop])
	assert.Equal(t, tracker.Tally{Total: 1, Correct: 1}, got[0].Positions[game.HJ])
	assert.InDelta(t, 2.25, got[0].NetEV, 1e-9)
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trainer.db")

	s, err := OpenSQL(ctx, DriverSQLite, path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.AppendDecision(ctx, testRecord("h1", 1, game.Flop, 0)))
	require.NoError(t, s.Close())

	s, err = OpenSQL(ctx, DriverSQLite, path, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Decisions(ctx, history.Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestOpenSQLErrors(t *testing.T) {
	ctx := context.Background()
	_, err := OpenSQL(ctx, "oracle", "dsn", zerolog.Nop())
	assert.Error(t, err)

	_, err = OpenSQL(ctx, DriverSQLite, "  ", zerolog.Nop())
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := &SQL{driver: DriverPgx}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))

	lite := &SQL{driver: DriverSQLite}
	assert.Equal(t, "a = ? AND b = ?", lite.rebind("a = ? AND b = ?"))
}

func TestNoop(t *testing.T) {
	var s Store = Noop{}
	require.NoError(t, s.AppendDecision(context.Background(), testRecord("h1", 1, game.Flop, 0)))
	got, err := s.Decisions(context.Background(), history.Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, s.Close())
}
