package trainer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/gtotrainer/internal/equity"
	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/history"
	"github.com/lox/gtotrainer/internal/sizing"
	"github.com/lox/gtotrainer/internal/strategy"
	"github.com/lox/gtotrainer/internal/tendency"
	"github.com/lox/gtotrainer/internal/tracker"
	"github.com/lox/gtotrainer/poker"
)

type memorySink struct {
	mu        sync.Mutex
	decisions []history.DecisionRecord
	sessions  []tracker.SessionSummary
}

func (m *memorySink) AppendDecision(_ context.Context, rec history.DecisionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, rec)
	return nil
}

func (m *memorySink) AppendSession(_ context.Context, sum tracker.SessionSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, sum)
	return nil
}

func (m *memorySink) Close() error { return nil }

func newTestEngine(t *testing.T, table *strategy.Table, opts ...Option) (*Engine, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	if table == nil {
		table = strategy.DefaultTable()
	}
	eq := equity.NewEngine(zerolog.Nop(), equity.WithSimulations(600), equity.WithSeed(1))
	tend := tendency.Default()
	opts = append([]Option{WithClock(clock), WithSeed(42)}, opts...)
	return NewEngine(strategy.NewResolver(table), equity.NewCalculator(eq, tend), tend, zerolog.Nop(), opts...), clock
}

func btnOpen(hand string) game.Situation {
	return game.Situation{
		Position:   game.BTN,
		NumPlayers: 6,
		Stage:      game.Preflop,
		Pot:        1.5,
		CurrentBet: 1,
		Stack:      100,
		Hand:       poker.MustParseStartingHand(hand),
	}
}

func TestFoldingAKoOnTheButtonIsAMistake(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	s := e.StartSession()

	spot, err := s.Begin(btnOpen("AsKd"))
	require.NoError(t, err)

	res, err := s.Decide(context.Background(), spot, game.Action{Kind: game.Fold})
	require.NoError(t, err)

	rec := res.Record
	assert.Contains(t, rec.OptimalActions, game.Raise)
	require.NotNil(t, res.Verdict.SizeRange)
	assert.False(t, rec.IsCorrect)
	assert.True(t, rec.EVKnown)
	assert.Zero(t, rec.EV)
	assert.Greater(t, rec.EVLoss, 0.0)
	assert.Contains(t, rec.Feedback, "Mistake")
	assert.Nil(t, res.Next, "folding ends the hand")

	_, inFlight := s.Current()
	assert.False(t, inFlight)
}

func TestRaiseInsideRangeIsCorrectAndSized(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	s := e.StartSession()

	spot, err := s.Begin(btnOpen("AsKd"))
	require.NoError(t, err)
	res, err := s.Decide(context.Background(), spot, game.Action{Kind: game.Raise, Size: 2.5})
	require.NoError(t, err)

	rec := res.Record
	assert.True(t, rec.IsCorrect)
	require.NotNil(t, rec.Size)
	assert.True(t, rec.Size.IsOptimal)
	assert.Equal(t, sizing.Within, rec.Size.Direction)

	require.NotNil(t, res.Next, "an unanswered open carries on to the flop")
	assert.Equal(t, spot.HandID, res.Next.HandID)
	assert.Equal(t, 2, res.Next.Seq)
	assert.Equal(t, game.Flop, res.Next.Situation.Stage)
}

func TestOversizedRaiseKeepsKindButFlagsSize(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	s := e.StartSession()

	spot, err := s.Begin(btnOpen("AsKd"))
	require.NoError(t, err)
	res, err := s.Decide(context.Background(), spot, game.Action{Kind: game.Raise, Size: 6})
	require.NoError(t, err)

	assert.True(t, res.Record.IsCorrect)
	require.NotNil(t, res.Record.Size)
	assert.False(t, res.Record.Size.IsOptimal)
	assert.Equal(t, sizing.Over, res.Record.Size.Direction)
	assert.Contains(t, res.Record.Feedback, "Oversized")
	assert.Contains(t, res.Record.Feedback, "on each of the 4 streets left")
	assert.Contains(t, res.Record.Feedback, res.Record.Size.Reasoning)
}

func TestIllegalActionLeavesSpotInFlight(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	s := e.StartSession()

	sit := btnOpen("AsKd")
	sit.CurrentBet, sit.Pot, sit.Stack, sit.Facing = 3, 4.5, 10, game.FacingRaise
	spot, err := s.Begin(sit)
	require.NoError(t, err)

	_, err = s.Decide(context.Background(), spot, game.Action{Kind: game.Raise, Size: 4})
	require.Error(t, err)
	var ve *game.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "size", ve.Field)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, spot.HandID, cur.HandID)
	assert.Zero(t, s.Summary().TotalDecisions)

	_, err = s.Decide(context.Background(), spot, game.Action{Kind: game.Raise, Size: 6})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Summary().TotalDecisions)
}

func TestDecideRequiresSpotInFlight(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	s := e.StartSession()

	_, err := s.Decide(context.Background(), Spot{HandID: "nope", Seq: 1}, game.Action{Kind: game.Fold})
	assert.True(t, IsInconsistentState(err))

	spot, err := s.Begin(btnOpen("AsKd"))
	require.NoError(t, err)
	_, err = s.Decide(context.Background(), spot, game.Action{Kind: game.Fold})
	require.NoError(t, err)

	_, err = s.Decide(context.Background(), spot, game.Action{Kind: game.Fold})
	assert.True(t, IsInconsistentState(err), "the same spot cannot be answered twice")
}

func TestRecordDecisionRejectsInconsistentRecords(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	s := e.StartSession()
	ctx := context.Background()

	rec := history.DecisionRecord{
		SessionID: s.ID(),
		HandID:    "h1",
		Seq:       1,
		Timestamp: time.Now(),
		Situation: btnOpen("AsKd"),
		Action:    game.Action{Kind: game.Check},
	}
	err := s.RecordDecision(ctx, rec)
	require.True(t, IsInconsistentState(err), "check is illegal facing the blind")
	assert.True(t, game.IsValidation(err))

	rec.Action = game.Action{Kind: game.Fold}
	rec.SessionID = "someone-else"
	assert.True(t, IsInconsistentState(s.RecordDecision(ctx, rec)))

	rec.SessionID = s.ID()
	rec.Situation.NumPlayers = 12
	assert.True(t, IsInconsistentState(s.RecordDecision(ctx, rec)))

	assert.Zero(t, s.Summary().TotalDecisions)
	assert.Empty(t, e.Records(history.Filter{}))
}

func TestSessionAccuracyAfterTenDecisions(t *testing.T) {
	e, clock := newTestEngine(t, nil)
	s := e.StartSession()
	ctx := context.Background()

	stages := []game.Stage{game.Preflop, game.Flop, game.Turn, game.River}
	for i := range 10 {
		clock.Advance(time.Second)
		sit := btnOpen("AsKd")
		sit.Stage = stages[i%len(stages)]
		if sit.Stage != game.Preflop {
			sit.Board = poker.MustParseHand("2c7d9h4s3c")
			for sit.Board.CountCards() > sit.Stage.BoardSize() {
				cards := sit.Board.Cards()
				sit.Board = poker.NewHand(cards[:len(cards)-1]...)
			}
			sit.CurrentBet, sit.Pot = 0, 6
		}
		action := game.Action{Kind: game.Fold}
		if sit.Stage != game.Preflop {
			action = game.Action{Kind: game.Check}
		}
		require.NoError(t, s.RecordDecision(ctx, history.DecisionRecord{
			SessionID: s.ID(),
			HandID:    fmt.Sprintf("h%d", i),
			Seq:       1,
			Timestamp: clock.Now(),
			Situation: sit,
			Action:    action,
			IsCorrect: i < 7,
		}))
	}

	sum := s.Summary()
	assert.Equal(t, 10, sum.TotalDecisions)
	assert.InDelta(t, 0.7, sum.Accuracy(), 1e-12)
	total := 0
	for _, tally := range sum.Stages {
		total += tally.Total
	}
	assert.Equal(t, 10, total)
}

func TestRecordsByHandAreSortedAndIsolated(t *testing.T) {
	e, clock := newTestEngine(t, nil)
	s := e.StartSession()
	ctx := context.Background()

	spot, err := s.Begin(btnOpen("AsKd"))
	require.NoError(t, err)
	res, err := s.Decide(ctx, spot, game.Action{Kind: game.Raise, Size: 2.5})
	require.NoError(t, err)
	require.NotNil(t, res.Next)

	// Another hand in another session lands between the two decisions.
	other := e.StartSession()
	otherSpot, err := other.Begin(btnOpen("QhQd"))
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = other.Decide(ctx, otherSpot, game.Action{Kind: game.Fold})
	require.NoError(t, err)

	clock.Advance(time.Second)
	next := *res.Next
	action := game.Action{Kind: game.Check}
	if !next.Available.CanCheck {
		action = game.Action{Kind: game.Call}
	}
	_, err = s.Decide(ctx, next, action)
	require.NoError(t, err)

	recs := e.Records(history.Filter{HandID: spot.HandID})
	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0].Seq)
	assert.Equal(t, 2, recs[1].Seq)
	assert.True(t, recs[0].Timestamp.Before(recs[1].Timestamp))
	for _, r := range recs {
		assert.Equal(t, spot.HandID, r.HandID)
		assert.Equal(t, s.ID(), r.SessionID)
	}

	lines, err := e.Replay(spot.HandID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	assert.Equal(t, 2, s.Summary().TotalDecisions)
	assert.Equal(t, 1, s.Summary().TotalHands)
	assert.Equal(t, 1, other.Summary().TotalDecisions)
}

func TestNoDataGradesOnEV(t *testing.T) {
	table, err := strategy.ParseTable([]byte(`
preflop "UTG" {
  raise    = "AA"
  size_min = 2
  size_max = 2.5
}
`), "tiny.hcl")
	require.NoError(t, err)
	e, _ := newTestEngine(t, table)
	s := e.StartSession()

	spot, err := s.Begin(btnOpen("AsKd"))
	require.NoError(t, err)
	res, err := s.Decide(context.Background(), spot, game.Action{Kind: game.Fold})
	require.NoError(t, err)

	assert.True(t, res.Verdict.NoData)
	assert.True(t, res.Record.EVKnown)
	assert.False(t, res.Record.IsCorrect, "folding AKo gives up EV")
	require.Len(t, res.Record.OptimalActions, 1)
	assert.NotEqual(t, game.Fold, res.Record.OptimalActions[0])
	assert.Contains(t, res.Record.Feedback, "No strategy data")
}

func TestMultiwayOptionCheckLosesNoEV(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	s := e.StartSession()

	sit := btnOpen("7c2d")
	sit.Position, sit.NumPlayers, sit.PlayerBet = game.BB, 9, 1
	spot, err := s.Begin(sit)
	require.NoError(t, err)
	res, err := s.Decide(context.Background(), spot, game.Action{Kind: game.Check})
	require.NoError(t, err)

	rec := res.Record
	assert.Equal(t, []game.ActionKind{game.Check}, rec.OptimalActions)
	assert.True(t, rec.IsCorrect)
	assert.True(t, rec.EVKnown)
	assert.Zero(t, rec.EVLoss)
	assert.NotContains(t, rec.Feedback, "gives up")
}

func TestBeginSeatsThePlayerByPosition(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	s := e.StartSession()

	tests := []struct {
		pos        game.Position
		numPlayers int
		seat       int
	}{
		{game.BTN, 6, 0},
		{game.BB, 6, 2},
		{game.UTG, 6, 3},
		{game.CO, 9, 8},
		{game.BB, 2, 1},
	}
	for _, tt := range tests {
		sit := btnOpen("AsKd")
		sit.Position, sit.NumPlayers = tt.pos, tt.numPlayers
		spot, err := s.Begin(sit)
		require.NoError(t, err)
		assert.Equal(t, tt.seat, spot.Deal.Seat, "%s at %d-handed", tt.pos, tt.numPlayers)
		pos, err := game.PositionOf(spot.Deal.Seat, tt.numPlayers)
		require.NoError(t, err)
		assert.Equal(t, tt.pos, pos)
	}
}

func TestNewHandDealsValidSpots(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	s := e.StartSession()
	for _, stage := range game.BettingRounds {
		spot, err := s.NewHand(stage)
		require.NoError(t, err)
		require.NoError(t, spot.Situation.Validate())
		assert.Equal(t, stage, spot.Situation.Stage)
		assert.Equal(t, 1, spot.Seq)
		assert.NotEmpty(t, spot.HandID)

		cur, ok := s.Current()
		require.True(t, ok)
		assert.Equal(t, spot.HandID, cur.HandID)
	}
}

func TestSeededEnginesDealAlike(t *testing.T) {
	a, _ := newTestEngine(t, nil)
	b, _ := newTestEngine(t, nil)

	sa, sb := a.StartSession(), b.StartSession()
	for range 5 {
		x, err := sa.NewHand(game.Flop)
		require.NoError(t, err)
		y, err := sb.NewHand(game.Flop)
		require.NoError(t, err)
		assert.Equal(t, x.Situation, y.Situation)
		assert.Equal(t, x.HandID, y.HandID)
	}
}

func TestEndSession(t *testing.T) {
	sink := &memorySink{}
	e, clock := newTestEngine(t, nil, WithSink(sink))
	s := e.StartSession()
	ctx := context.Background()

	spot, err := s.Begin(btnOpen("AsKd"))
	require.NoError(t, err)
	_, err = s.Decide(ctx, spot, game.Action{Kind: game.Fold})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	sum, err := e.EndSession(ctx, s.ID())
	require.NoError(t, err)
	assert.True(t, sum.Closed)
	assert.Equal(t, 1, sum.TotalDecisions)

	_, err = e.Session(s.ID())
	assert.True(t, errors.Is(err, ErrUnknownSession))
	_, err = e.EndSession(ctx, s.ID())
	assert.True(t, errors.Is(err, ErrUnknownSession))

	_, err = s.NewHand(game.Flop)
	assert.True(t, errors.Is(err, tracker.ErrSessionClosed))

	stats := e.AllTimeStats()
	assert.Equal(t, 1, stats.Sessions)
	assert.Nil(t, stats.Best, "one decision is below the best-session floor")

	require.Len(t, sink.decisions, 1)
	require.Len(t, sink.sessions, 1)
	assert.Equal(t, s.ID(), sink.sessions[0].SessionID)
}

func TestSessionsAreIsolated(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	sessions := make([]*Session, 4)
	for i := range sessions {
		sessions[i] = e.StartSession()
	}
	assert.Equal(t, 4, e.Registry().Len())
	assert.Len(t, e.Registry().IDs(), 4)

	for i, s := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range i + 1 {
				spot, err := s.Begin(btnOpen("7c2d"))
				if !assert.NoError(t, err) {
					return
				}
				_, err = s.Decide(ctx, spot, game.Action{Kind: game.Fold})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	for i, s := range sessions {
		assert.Equal(t, i+1, s.Summary().TotalDecisions)
		assert.Len(t, e.Records(history.Filter{SessionID: s.ID()}), i+1)
	}
}

func TestSurfaceHelpers(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	avail, err := e.AvailableActions(btnOpen("AsKd"))
	require.NoError(t, err)
	assert.True(t, avail.CanRaise)
	assert.False(t, avail.CanCheck)

	bad := btnOpen("AsKd")
	bad.NumPlayers = 1
	_, err = e.AvailableActions(bad)
	assert.True(t, game.IsValidation(err))

	v, err := e.OptimalActions(btnOpen("AsKd"))
	require.NoError(t, err)
	assert.True(t, v.Contains(game.Raise))

	ev, err := e.CalculateEV(context.Background(), equity.InputFor(btnOpen("AsKd"), game.Action{Kind: game.Fold}))
	require.NoError(t, err)
	assert.Zero(t, ev)

	size := e.AnalyzeBetSize(2.2, *v.SizeRange, 1.5)
	assert.True(t, size.IsOptimal)

	s := e.StartSession()
	deal := s.DealHand()
	assert.True(t, deal.Hand.Valid())

	sum, err := e.SessionSummary(s.ID())
	require.NoError(t, err)
	assert.Equal(t, s.ID(), sum.SessionID)
	assert.Zero(t, sum.TotalDecisions)

	_, err = e.SessionSummary("missing")
	assert.ErrorIs(t, err, ErrUnknownSession)
	err = e.RecordDecision(context.Background(), history.DecisionRecord{SessionID: "missing"})
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestWatchSessionSummary(t *testing.T) {
	e, clock := newTestEngine(t, nil)
	s := e.StartSession()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snaps := make(chan tracker.SessionSummary, 2)
	watchCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- tracker.Watch(watchCtx, clock, time.Second, s.Tracker(), func(sum tracker.SessionSummary) {
			snaps <- sum
		})
	}()
	<-snaps

	spot, err := s.Begin(btnOpen("7c2d"))
	require.NoError(t, err)
	_, err = s.Decide(ctx, spot, game.Action{Kind: game.Fold})
	require.NoError(t, err)

	clock.Advance(time.Second).MustWait(ctx)
	select {
	case sum := <-snaps:
		assert.Equal(t, 1, sum.TotalDecisions)
	case <-ctx.Done():
		t.Fatal("watcher did not tick")
	}
	stop()
	<-done
}
