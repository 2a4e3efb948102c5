// Package store persists decision records and closed session summaries.
// The core never blocks on it: the trainer hands records to a Sink after
// they are already in the in-memory dataset.
package store

import (
	"context"

	"github.com/lox/gtotrainer/internal/history"
	"github.com/lox/gtotrainer/internal/tracker"
)

// Sink accepts append-only decision records and session summaries.
type Sink interface {
	AppendDecision(ctx context.Context, rec history.DecisionRecord) error
	AppendSession(ctx context.Context, sum tracker.SessionSummary) error
	Close() error
}

// Reader loads what a Sink persisted, for stats and exports.
type Reader interface {
	Decisions(ctx context.Context, f history.Filter) ([]history.DecisionRecord, error)
	Sessions(ctx context.Context) ([]tracker.SessionSummary, error)
}

// Store is a Sink that can be read back.
type Store interface {
	Sink
	Reader
}

// Noop discards everything.
type Noop struct{}

var _ Store = Noop{}

func (Noop) AppendDecision(context.Context, history.DecisionRecord) error { return nil }
func (Noop) AppendSession(context.Context, tracker.SessionSummary) error  { return nil }
func (Noop) Close() error                                                 { return nil }

func (Noop) Decisions(context.Context, history.Filter) ([]history.DecisionRecord, error) {
	return nil, nil
}

func (Noop) Sessions(context.Context) ([]tracker.SessionSummary, error) {
	return nil, nil
}
