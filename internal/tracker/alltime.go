package tracker

import (
	"fmt"
	"slices"
	"sync"

	"github.com/lox/gtotrainer/internal/game"
)

const (
	// DefaultMinDecisions keeps tiny sessions from winning best session
	// with a lucky handful of answers.
	DefaultMinDecisions = 20
	DefaultTrendWindow  = 10
)

// Options tune the all-time aggregation.
type Options struct {
	MinDecisions int
	TrendWindow  int
}

func (o Options) withDefaults() Options {
	if o.MinDecisions <= 0 {
		o.MinDecisions = DefaultMinDecisions
	}
	if o.TrendWindow <= 0 {
		o.TrendWindow = DefaultTrendWindow
	}
	return o
}

// AllTimeStats aggregates every closed session.
type AllTimeStats struct {
	Sessions       int                  `json:"sessions"`
	TotalHands     int                  `json:"total_hands"`
	TotalDecisions int                  `json:"total_decisions"`
	CorrectCount   int                  `json:"correct_count"`
	Accuracy       float64              `json:"accuracy"`
	NetEV          float64              `json:"net_ev"`
	EV             Moments              `json:"ev"`
	Stages         map[game.Stage]Tally `json:"stages"`
	Best           *SessionSummary      `json:"best,omitempty"`
	AccuracyTrend  []float64            `json:"accuracy_trend"`
	EVTrend        []float64            `json:"ev_trend"`
}

// AllTime aggregates the closed sessions in summaries; open ones are
// skipped. Trends hold the most recent sessions oldest first.
func AllTime(summaries []SessionSummary, opts Options) AllTimeStats {
	opts = opts.withDefaults()

	closed := make([]SessionSummary, 0, len(summaries))
	for _, s := range summaries {
		if s.Closed {
			closed = append(closed, s)
		}
	}
	slices.SortStableFunc(closed, func(a, b SessionSummary) int {
		return a.StartedAt.Compare(b.StartedAt)
	})

	stats := AllTimeStats{
		Sessions:      len(closed),
		Stages:        make(map[game.Stage]Tally),
		AccuracyTrend: []float64{},
		EVTrend:       []float64{},
	}
	var best *SessionSummary
	for i := range closed {
		s := &closed[i]
		stats.TotalHands += s.TotalHands
		stats.TotalDecisions += s.TotalDecisions
		stats.CorrectCount += s.CorrectCount
		stats.NetEV += s.NetEV
		stats.EV.Merge(s.EV)
		for stage, t := range s.Stages {
			agg := stats.Stages[stage]
			agg.Total += t.Total
			agg.Correct += t.Correct
			stats.Stages[stage] = agg
		}

		if s.TotalDecisions < opts.MinDecisions {
			continue
		}
		if best == nil || s.Accuracy() > best.Accuracy() ||
			(s.Accuracy() == best.Accuracy() && s.TotalHands > best.TotalHands) {
			best = s
		}
	}
	if stats.TotalDecisions > 0 {
		stats.Accuracy = float64(stats.CorrectCount) / float64(stats.TotalDecisions)
	}
	if best != nil {
		b := best.Clone()
		stats.Best = &b
	}

	recent := closed[max(0, len(closed)-opts.TrendWindow):]
	for _, s := range recent {
		stats.AccuracyTrend = append(stats.AccuracyTrend, s.Accuracy())
		stats.EVTrend = append(stats.EVTrend, s.NetEV)
	}
	return stats
}

// Archive holds finished sessions in memory for all-time reporting.
type Archive struct {
	mu       sync.RWMutex
	opts     Options
	sessions []SessionSummary
}

// NewArchive returns an archive seeded with previously closed sessions,
// for example ones loaded from a store.
func NewArchive(opts Options, past ...SessionSummary) *Archive {
	a := &Archive{opts: opts.withDefaults()}
	for _, s := range past {
		if s.Closed {
			a.sessions = append(a.sessions, s.Clone())
		}
	}
	return a
}

// Add stores a closed session summary.
func (a *Archive) Add(s SessionSummary) error {
	if !s.Closed {
		return fmt.Errorf("session %s: only closed sessions can be archived", s.SessionID)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions = append(a.sessions, s.Clone())
	return nil
}

// Sessions returns copies of the archived summaries.
func (a *Archive) Sessions() []SessionSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]SessionSummary, len(a.sessions))
	for i, s := range a.sessions {
		out[i] = s.Clone()
	}
	return out
}

// AllTime aggregates the archive.
func (a *Archive) AllTime() AllTimeStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return AllTime(a.sessions, a.opts)
}
