package trainer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/lox/gtotrainer/internal/equity"
	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/history"
	"github.com/lox/gtotrainer/internal/sizing"
	"github.com/lox/gtotrainer/internal/strategy"
	"github.com/lox/gtotrainer/internal/tracker"
)

// Without table data a decision counts as correct when it gives up no
// more than this much EV against the best candidate.
const noDataTolerance = 0.1

// Spot is one decision point of the hand in flight.
type Spot struct {
	HandID    string
	Seq       int
	Deal      game.Deal
	Situation game.Situation
	Available game.Available
}

// Result is a graded answer.
type Result struct {
	Record  history.DecisionRecord
	Verdict strategy.Verdict
	Ranking equity.Ranking
	// Next is the follow-up decision on the next street, nil once the
	// hand is over.
	Next *Spot
}

// Session is one player's drill. Only one hand is in flight at a time and
// decisions are graded strictly in order.
type Session struct {
	mu      sync.Mutex
	id      string
	engine  *Engine
	dealer  *game.Dealer
	tracker *tracker.Session
	current *Spot
}

func newSession(e *Engine, id string, dealer *game.Dealer) *Session {
	return &Session{
		id:      id,
		engine:  e,
		dealer:  dealer,
		tracker: tracker.NewSession(id, e.clock.Now()),
	}
}

func (s *Session) ID() string {
	return s.id
}

// DealHand draws a table size, seat and starting hand.
func (s *Session) DealHand() game.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dealer.Deal()
}

// NewHand deals a fresh decision at stage and puts it in flight. An
// unfinished hand is abandoned.
func (s *Session) NewHand(stage game.Stage) (Spot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tracker.Closed() {
		return Spot{}, tracker.ErrSessionClosed
	}
	deal, sit, err := s.dealer.DealSituation(stage, s.engine.facingProb(stage))
	if err != nil {
		return Spot{}, err
	}
	spot := Spot{
		HandID:    s.engine.ids.Generate(),
		Seq:       1,
		Deal:      deal,
		Situation: sit,
		Available: game.AvailableActions(sit),
	}
	s.current = &spot
	return spot, nil
}

// Begin puts a caller-built situation in flight as a new hand.
func (s *Session) Begin(sit game.Situation) (Spot, error) {
	if err := sit.Validate(); err != nil {
		return Spot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tracker.Closed() {
		return Spot{}, tracker.ErrSessionClosed
	}
	deal := game.Deal{
		Hand:       sit.Hand,
		NumPlayers: sit.NumPlayers,
		Seat:       slices.Index(game.TablePositions(sit.NumPlayers), sit.Position),
		Position:   sit.Position,
	}
	spot := Spot{
		HandID:    s.engine.ids.Generate(),
		Seq:       1,
		Deal:      deal,
		Situation: sit,
		Available: game.AvailableActions(sit),
	}
	s.current = &spot
	return spot, nil
}

// Current returns the decision in flight.
func (s *Session) Current() (Spot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Spot{}, false
	}
	return *s.current, true
}

// Decide grades action as the answer to spot, records it and advances the
// hand. An illegal action returns a *game.ValidationError and leaves the
// spot in flight so the player can try again.
func (s *Session) Decide(ctx context.Context, spot Spot, action game.Action) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current
	if cur == nil || cur.HandID != spot.HandID || cur.Seq != spot.Seq {
		return Result{}, &InconsistentStateError{
			Op:     "decide",
			Reason: fmt.Sprintf("hand %s #%d is not in flight", spot.HandID, spot.Seq),
		}
	}
	sit := cur.Situation
	action, err := game.ValidateAction(sit, action)
	if err != nil {
		return Result{}, err
	}

	res, err := s.engine.grade(ctx, s.id, *cur, action)
	if err != nil {
		return Result{}, err
	}
	if err := s.record(ctx, res.Record); err != nil {
		return Result{}, err
	}

	s.current = nil
	next, ok, err := s.dealer.NextStreet(sit, action, s.engine.facingProb(sit.Stage.Next()))
	if err != nil {
		s.engine.logger.Warn().Err(err).Str("hand_id", cur.HandID).Msg("Could not continue hand")
		return res, nil
	}
	if ok {
		n := Spot{
			HandID:    cur.HandID,
			Seq:       cur.Seq + 1,
			Deal:      cur.Deal,
			Situation: next,
			Available: game.AvailableActions(next),
		}
		s.current = &n
		res.Next = &n
	}
	return res, nil
}

// RecordDecision folds an already graded record into the session.
func (s *Session) RecordDecision(ctx context.Context, rec history.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record(ctx, rec)
}

func (s *Session) record(ctx context.Context, rec history.DecisionRecord) error {
	if rec.SessionID != s.id {
		return &InconsistentStateError{Op: "record", Reason: fmt.Sprintf("record belongs to session %q", rec.SessionID)}
	}
	if err := rec.Situation.Validate(); err != nil {
		return &InconsistentStateError{Op: "record", Reason: "recorded situation is malformed", Err: err}
	}
	if _, err := game.ValidateAction(rec.Situation, rec.Action); err != nil {
		return &InconsistentStateError{Op: "record", Reason: "validator rejects the recorded action", Err: err}
	}
	if s.tracker.Closed() {
		return tracker.ErrSessionClosed
	}
	if err := s.engine.dataset.Append(rec); err != nil {
		return err
	}
	if err := s.tracker.Add(rec); err != nil {
		return err
	}
	if err := s.engine.sink.AppendDecision(ctx, rec); err != nil {
		s.engine.logger.Warn().Err(err).Str("hand_id", rec.HandID).Msg("Failed to persist decision")
	}

	s.engine.logger.Debug().
		Str("session_id", s.id).
		Str("hand_id", rec.HandID).
		Int("seq", rec.Seq).
		Str("stage", rec.Stage().String()).
		Str("action", rec.Action.String()).
		Bool("correct", rec.IsCorrect).
		Float64("ev_loss", rec.EVLoss).
		Msg("Decision recorded")
	return nil
}

// Summary is a snapshot of the session's scorecard.
func (s *Session) Summary() tracker.SessionSummary {
	return s.tracker.Snapshot()
}

// Tracker exposes the session's running summary for watchers.
func (s *Session) Tracker() tracker.Snapshotter {
	return s.tracker
}

func (s *Session) close() (tracker.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	return s.tracker.Close(s.engine.clock.Now())
}

// grade resolves, scores and builds the record for an already validated
// action. It reads no session state.
func (e *Engine) grade(ctx context.Context, sessionID string, spot Spot, action game.Action) (Result, error) {
	sit := spot.Situation
	verdict, err := e.resolver.Resolve(sit)
	if err != nil && !errors.Is(err, strategy.ErrNoData) {
		return Result{}, err
	}

	candidates := equity.Candidates(sit, e.menu)
	if !slices.Contains(candidates, action) {
		candidates = append(candidates, action)
	}
	ranking := e.calc.Rank(ctx, sit, candidates)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	for _, f := range ranking.Failed {
		e.logger.Debug().Err(f.Err).Str("hand_id", spot.HandID).Str("action", f.Action.String()).Msg("Candidate excluded from ranking")
	}

	rec := history.DecisionRecord{
		SessionID: sessionID,
		HandID:    spot.HandID,
		Seq:       spot.Seq,
		Timestamp: e.clock.Now(),
		Situation: sit,
		HoleCards: sit.Hand.String(),
		Board:     sit.Board.String(),
		Action:    action,
	}

	best, hasBest := ranking.Best()
	if chosen, ok := ranking.Find(action); ok && hasBest {
		rec.EV = chosen.EV
		rec.EVLoss = equity.EVLoss(best.EV, chosen.EV)
		rec.EVKnown = true
	}

	if verdict.NoData {
		if hasBest {
			rec.OptimalActions = []game.ActionKind{best.Action.Kind}
		}
		rec.IsCorrect = rec.EVKnown && rec.EVLoss <= noDataTolerance
	} else {
		rec.OptimalActions = verdict.Kinds()
		rec.IsCorrect = verdict.Accepts(action)
	}
	rec.Size = analyzeSize(verdict, action, sit)
	rec.Feedback = feedback(verdict, rec, best, hasBest)

	return Result{Record: rec, Verdict: verdict, Ranking: ranking}, nil
}

// analyzeSize grades the size only when the table recommends the same
// kind of aggression the player chose.
func analyzeSize(v strategy.Verdict, a game.Action, s game.Situation) *sizing.Verdict {
	if v.SizeRange == nil {
		return nil
	}
	switch {
	case (a.Kind == game.Bet || a.Kind == game.Raise) && v.Contains(a.Kind):
	case a.Kind == game.AllIn && (v.Contains(game.Bet) || v.Contains(game.Raise)):
	default:
		return nil
	}
	out := sizing.AnalyzeSpot(a.Size, *v.SizeRange, sizing.Spot{
		Pot:     s.Pot,
		Stack:   s.Stack,
		Streets: s.Stage.StreetsLeft(),
	})
	return &out
}

func feedback(v strategy.Verdict, rec history.DecisionRecord, best equity.Candidate, hasBest bool) string {
	var sb strings.Builder
	switch {
	case v.NoData && hasBest:
		fmt.Fprintf(&sb, "No strategy data for this spot; graded on EV, where %s is best (%+.2fBB).", best.Action, best.EV)
	case v.NoData:
		sb.WriteString("No strategy data for this spot and EV could not be computed.")
	case rec.IsCorrect:
		fmt.Fprintf(&sb, "Correct: %s. Optimal: %s.", rec.Action, v.Summary())
	default:
		fmt.Fprintf(&sb, "Mistake: you chose %s, optimal is %s.", rec.Action, v.Summary())
	}
	if v.Explanation != "" {
		sb.WriteString(" ")
		sb.WriteString(v.Explanation)
	}
	if rec.EVKnown && rec.EVLoss >= 0.01 {
		fmt.Fprintf(&sb, " This gives up %.2fBB of EV.", rec.EVLoss)
	}
	if rec.Size != nil {
		sb.WriteString(" ")
		sb.WriteString(rec.Size.Feedback)
		if !rec.Size.IsOptimal {
			sb.WriteString(" ")
			sb.WriteString(rec.Size.Reasoning)
		}
	}
	return sb.String()
}
