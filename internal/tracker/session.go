// Package tracker folds graded decisions into per-session summaries and
// aggregates closed sessions into all-time statistics.
package tracker

import (
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/history"
)

// ErrSessionClosed is returned when adding to or closing a finished session.
var ErrSessionClosed = errors.New("session is closed")

// Tally counts decisions and how many were correct.
type Tally struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// Accuracy is Correct/Total, zero when empty.
func (t Tally) Accuracy() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Total)
}

func (t *Tally) add(correct bool) {
	t.Total++
	if correct {
		t.Correct++
	}
}

// SessionSummary is the running scorecard of one session. Summaries
// handed out by Snapshot and Close are copies.
type SessionSummary struct {
	SessionID      string                  `json:"session_id"`
	StartedAt      time.Time               `json:"started_at"`
	EndedAt        time.Time               `json:"ended_at,omitzero"`
	TotalHands     int                     `json:"total_hands"`
	TotalDecisions int                     `json:"total_decisions"`
	CorrectCount   int                     `json:"correct_count"`
	NetEV          float64                 `json:"net_ev"`
	EVLoss         float64                 `json:"ev_loss"`
	EV             Moments                 `json:"ev"`
	Stages         map[game.Stage]Tally    `json:"stages"`
	Positions      map[game.Position]Tally `json:"positions"`
	Closed         bool                    `json:"closed"`
}

// Accuracy is CorrectCount/TotalDecisions, zero before the first decision.
func (s SessionSummary) Accuracy() float64 {
	if s.TotalDecisions == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.TotalDecisions)
}

// Clone returns a deep copy.
func (s SessionSummary) Clone() SessionSummary {
	out := s
	out.Stages = maps.Clone(s.Stages)
	out.Positions = maps.Clone(s.Positions)
	return out
}

// Session accumulates one session's decisions. It is safe for concurrent
// use; readers take snapshots.
type Session struct {
	mu      sync.RWMutex
	summary SessionSummary
	hands   map[string]struct{}
}

// NewSession starts an empty session.
func NewSession(id string, startedAt time.Time) *Session {
	return &Session{
		summary: SessionSummary{
			SessionID: id,
			StartedAt: startedAt,
			Stages:    make(map[game.Stage]Tally),
			Positions: make(map[game.Position]Tally),
		},
		hands: make(map[string]struct{}),
	}
}

// ID is the session id.
func (s *Session) ID() string {
	return s.summary.SessionID
}

// Add folds rec into the summary.
func (s *Session) Add(rec history.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.summary.Closed {
		return ErrSessionClosed
	}
	if rec.SessionID != "" && rec.SessionID != s.summary.SessionID {
		return &game.ValidationError{Field: "sessionId", Reason: "record belongs to session " + rec.SessionID}
	}

	sum := &s.summary
	sum.TotalDecisions++
	if rec.IsCorrect {
		sum.CorrectCount++
	}
	if _, ok := s.hands[rec.HandID]; !ok {
		s.hands[rec.HandID] = struct{}{}
		sum.TotalHands++
	}

	stage := sum.Stages[rec.Stage()]
	stage.add(rec.IsCorrect)
	sum.Stages[rec.Stage()] = stage

	pos := sum.Positions[rec.Situation.Position]
	pos.add(rec.IsCorrect)
	sum.Positions[rec.Situation.Position] = pos

	if rec.EVKnown {
		sum.NetEV += rec.NetEV()
		sum.EVLoss += rec.EVLoss
		sum.EV.Add(rec.NetEV())
	}
	return nil
}

// Snapshot returns a consistent copy of the summary.
func (s *Session) Snapshot() SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary.Clone()
}

// Close finalizes the session. The returned summary is immutable history.
func (s *Session) Close(at time.Time) (SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.summary.Closed {
		return SessionSummary{}, ErrSessionClosed
	}
	s.summary.Closed = true
	s.summary.EndedAt = at
	return s.summary.Clone(), nil
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary.Closed
}
