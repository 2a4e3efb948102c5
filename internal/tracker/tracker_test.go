package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/history"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func decision(session, hand string, stage game.Stage, correct bool, ev, loss float64) history.DecisionRecord {
	return history.DecisionRecord{
		SessionID: session,
		HandID:    hand,
		Seq:       1,
		Timestamp: epoch,
		Situation: game.Situation{Position: game.CO, NumPlayers: 6, Stage: stage},
		IsCorrect: correct,
		EV:        ev,
		EVLoss:    loss,
		EVKnown:   true,
	}
}

func TestSessionAccuracy(t *testing.T) {
	s := NewSession("s1", epoch)
	stages := []game.Stage{game.Preflop, game.Preflop, game.Flop, game.Flop, game.Turn,
		game.River, game.Preflop, game.Flop, game.Turn, game.River}
	for i, stage := range stages {
		correct := i < 7
		hand := fmt.Sprintf("h%d", i/2)
		require.NoError(t, s.Add(decision("s1", hand, stage, correct, 1, 0.5)))
	}

	sum := s.Snapshot()
	assert.Equal(t, 10, sum.TotalDecisions)
	assert.Equal(t, 7, sum.CorrectCount)
	assert.InDelta(t, 0.7, sum.Accuracy(), 1e-12)
	assert.Equal(t, 5, sum.TotalHands)

	total := 0
	for _, tally := range sum.Stages {
		total += tally.Total
	}
	assert.Equal(t, 10, total)
	assert.Equal(t, Tally{Total: 3, Correct: 3}, sum.Stages[game.Preflop])
	assert.Equal(t, Tally{Total: 10, Correct: 7}, sum.Positions[game.CO])

	// Seven correct at +1 and three mistakes at -0.5.
	assert.InDelta(t, 5.5, sum.NetEV, 1e-9)
	assert.InDelta(t, 5.0, sum.EVLoss, 1e-9)
	assert.Equal(t, 10, sum.EV.N)
}

func TestSessionUnknownEVNotCounted(t *testing.T) {
	s := NewSession("s1", epoch)
	rec := decision("s1", "h1", game.Flop, false, 0, 0)
	rec.EVKnown = false
	require.NoError(t, s.Add(rec))

	sum := s.Snapshot()
	assert.Equal(t, 1, sum.TotalDecisions)
	assert.Zero(t, sum.NetEV)
	assert.Zero(t, sum.EV.N)
}

func TestSessionRejectsForeignRecord(t *testing.T) {
	s := NewSession("s1", epoch)
	err := s.Add(decision("s2", "h1", game.Flop, true, 1, 0))
	assert.True(t, game.IsValidation(err))
	assert.Zero(t, s.Snapshot().TotalDecisions)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := NewSession("s1", epoch)
	require.NoError(t, s.Add(decision("s1", "h1", game.Flop, true, 1, 0)))

	snap := s.Snapshot()
	snap.Stages[game.Flop] = Tally{Total: 99}
	snap.TotalDecisions = 99

	again := s.Snapshot()
	assert.Equal(t, 1, again.TotalDecisions)
	assert.Equal(t, Tally{Total: 1, Correct: 1}, again.Stages[game.Flop])
}

func TestClose(t *testing.T) {
	s := NewSession("s1", epoch)
	require.NoError(t, s.Add(decision("s1", "h1", game.Flop, true, 1, 0)))

	end := epoch.Add(time.Hour)
	sum, err := s.Close(end)
	require.NoError(t, err)
	assert.True(t, sum.Closed)
	assert.Equal(t, end, sum.EndedAt)

	err = s.Add(decision("s1", "h2", game.Flop, true, 1, 0))
	assert.True(t, errors.Is(err, ErrSessionClosed))
	_, err = s.Close(end)
	assert.True(t, errors.Is(err, ErrSessionClosed))
	assert.Equal(t, 1, s.Snapshot().TotalDecisions)
}

func closedSummary(id string, start int, decisions, correct, hands int, net float64) SessionSummary {
	return SessionSummary{
		SessionID:      id,
		StartedAt:      epoch.Add(time.Duration(start) * time.Hour),
		EndedAt:        epoch.Add(time.Duration(start)*time.Hour + time.Minute),
		TotalHands:     hands,
		TotalDecisions: decisions,
		CorrectCount:   correct,
		NetEV:          net,
		Stages:         map[game.Stage]Tally{game.Preflop: {Total: decisions, Correct: correct}},
		Closed:         true,
	}
}

func TestAllTime(t *testing.T) {
	sessions := []SessionSummary{
		closedSummary("b", 2, 40, 30, 20, 3),
		closedSummary("a", 1, 20, 10, 10, -2),
		closedSummary("tiny", 3, 2, 2, 1, 1),
	}
	open := closedSummary("open", 4, 50, 50, 25, 10)
	open.Closed = false
	sessions = append(sessions, open)

	stats := AllTime(sessions, Options{})
	assert.Equal(t, 3, stats.Sessions)
	assert.Equal(t, 62, stats.TotalDecisions)
	assert.Equal(t, 42, stats.CorrectCount)
	assert.InDelta(t, 42.0/62.0, stats.Accuracy, 1e-12)
	assert.InDelta(t, 2, stats.NetEV, 1e-9)
	assert.Equal(t, Tally{Total: 62, Correct: 42}, stats.Stages[game.Preflop])

	// The 100% session is below the floor.
	require.NotNil(t, stats.Best)
	assert.Equal(t, "b", stats.Best.SessionID)

	assert.Equal(t, []float64{0.5, 0.75, 1}, stats.AccuracyTrend)
	assert.Equal(t, []float64{-2, 3, 1}, stats.EVTrend)
}

func TestAllTimeBestTieBreak(t *testing.T) {
	stats := AllTime([]SessionSummary{
		closedSummary("fewer", 1, 20, 15, 8, 0),
		closedSummary("more", 2, 40, 30, 12, 0),
	}, Options{MinDecisions: 20})
	require.NotNil(t, stats.Best)
	assert.Equal(t, "more", stats.Best.SessionID)
}

func TestAllTimeNoQualifyingSession(t *testing.T) {
	stats := AllTime([]SessionSummary{closedSummary("tiny", 1, 3, 3, 1, 1)}, Options{})
	assert.Nil(t, stats.Best)

	empty := AllTime(nil, Options{})
	assert.Zero(t, empty.Accuracy)
	assert.Empty(t, empty.AccuracyTrend)
}

func TestAllTimeTrendWindow(t *testing.T) {
	var sessions []SessionSummary
	for i := range 15 {
		sessions = append(sessions, closedSummary(fmt.Sprintf("s%02d", i), 15-i, 20, i, 10, float64(i)))
	}
	stats := AllTime(sessions, Options{})
	require.Len(t, stats.EVTrend, 10)

	// Session i started at hour 15-i, so chronological order reverses ids.
	assert.Equal(t, []float64{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}, stats.EVTrend)

	short := AllTime(sessions, Options{TrendWindow: 3})
	assert.Equal(t, []float64{2, 1, 0}, short.EVTrend)
}

func TestArchive(t *testing.T) {
	a := NewArchive(Options{}, closedSummary("a", 1, 20, 10, 10, 1))

	open := closedSummary("b", 2, 20, 20, 10, 1)
	open.Closed = false
	assert.Error(t, a.Add(open))

	require.NoError(t, a.Add(closedSummary("c", 3, 20, 15, 10, 1)))
	assert.Len(t, a.Sessions(), 2)
	assert.Equal(t, "c", a.AllTime().Best.SessionID)
}

func TestMoments(t *testing.T) {
	var m Moments
	assert.Zero(t, m.Mean())
	assert.Zero(t, m.StdError())

	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		m.Add(v)
	}
	assert.InDelta(t, 5, m.Mean(), 1e-12)
	assert.InDelta(t, 32.0/7.0, m.Variance(), 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0)/math.Sqrt(8), m.StdError(), 1e-12)

	lo, hi := m.ConfidenceInterval95()
	assert.Less(t, lo, 5.0)
	assert.Greater(t, hi, 5.0)

	var other Moments
	other.Add(5)
	m.Merge(other)
	assert.Equal(t, 9, m.N)
	assert.InDelta(t, 5, m.Mean(), 1e-12)
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	s := NewSession("s1", epoch)
	snaps := make(chan SessionSummary, 4)

	watchCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- Watch(watchCtx, clock, 2*time.Second, s, func(sum SessionSummary) {
			snaps <- sum
		})
	}()

	first := <-snaps
	assert.Zero(t, first.TotalDecisions)

	require.NoError(t, s.Add(decision("s1", "h1", game.Flop, true, 1, 0)))
	clock.Advance(2 * time.Second).MustWait(ctx)

	select {
	case second := <-snaps:
		assert.Equal(t, 1, second.TotalDecisions)
	case <-ctx.Done():
		t.Fatal("no snapshot after tick")
	}

	stop()
	assert.ErrorIs(t, <-done, context.Canceled)
}
