// Package trainer drives drills: it deals decision points, grades the
// player's answer against the strategy table and EV model, and records the
// result. Each session is isolated behind its own lock; the Engine only
// holds read-only collaborators plus the shared dataset and archive.
package trainer

import (
	"context"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/gtotrainer/internal/equity"
	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/handid"
	"github.com/lox/gtotrainer/internal/history"
	"github.com/lox/gtotrainer/internal/randutil"
	"github.com/lox/gtotrainer/internal/sizing"
	"github.com/lox/gtotrainer/internal/store"
	"github.com/lox/gtotrainer/internal/strategy"
	"github.com/lox/gtotrainer/internal/tendency"
	"github.com/lox/gtotrainer/internal/tracker"
)

// Engine wires the grading pipeline together.
type Engine struct {
	resolver   *strategy.Resolver
	calc       *equity.Calculator
	tendencies *tendency.Table
	menu       game.SizeMenu

	dataset *history.Dataset
	archive *tracker.Archive
	sink    store.Sink

	clock    quartz.Clock
	ids      *handid.Generator
	seed     int64
	registry *Registry
	logger   zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink persists records and closed sessions.
func WithSink(sink store.Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithClock sets the clock used for timestamps and ids.
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithSeed makes dealing reproducible. Session n of an engine always
// deals the same hands for the same seed.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithSizeMenu sets the bet and raise sizes scored as EV candidates.
func WithSizeMenu(menu game.SizeMenu) Option {
	return func(e *Engine) { e.menu = menu }
}

// WithArchive seeds all-time stats with previously closed sessions.
func WithArchive(archive *tracker.Archive) Option {
	return func(e *Engine) { e.archive = archive }
}

// NewEngine creates an engine. Tendencies drive both the EV calculator's
// fold equity and how often dealt spots face a bet.
func NewEngine(resolver *strategy.Resolver, calc *equity.Calculator, tendencies *tendency.Table, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		resolver:   resolver,
		calc:       calc,
		tendencies: tendencies,
		menu:       game.DefaultSizeMenu,
		dataset:    history.NewDataset(),
		sink:       store.Noop{},
		clock:      quartz.NewReal(),
		seed:       time.Now().UnixNano(),
		logger:     logger.With().Str("component", "trainer").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.archive == nil {
		e.archive = tracker.NewArchive(tracker.Options{})
	}
	e.ids = handid.NewGenerator(e.clock, randutil.Reader(randutil.New(randutil.Derive(uint64(e.seed), 0x1d))))
	e.registry = NewRegistry()
	return e
}

// Registry returns the live sessions.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// AvailableActions lists the legal actions in s.
func (e *Engine) AvailableActions(s game.Situation) (game.Available, error) {
	if err := s.Validate(); err != nil {
		return game.Available{}, err
	}
	return game.AvailableActions(s), nil
}

// OptimalActions resolves s against the strategy table. A miss returns a
// NoData verdict and an error wrapping strategy.ErrNoData.
func (e *Engine) OptimalActions(s game.Situation) (strategy.Verdict, error) {
	return e.resolver.Resolve(s)
}

// CalculateEV scores a single action.
func (e *Engine) CalculateEV(ctx context.Context, in equity.EVInput) (float64, error) {
	return e.calc.CalculateEV(ctx, in)
}

// AnalyzeBetSize grades a size against an optimal window.
func (e *Engine) AnalyzeBetSize(chosenBB float64, r strategy.SizeRange, potBB float64) sizing.Verdict {
	return sizing.Analyze(chosenBB, r, potBB)
}

// Records returns recorded decisions across all sessions.
func (e *Engine) Records(f history.Filter) []history.DecisionRecord {
	return e.dataset.Records(f)
}

// Replay renders the review of one hand.
func (e *Engine) Replay(handID string) ([]string, error) {
	return e.dataset.Replay(handID)
}

// AllTimeStats aggregates every closed session.
func (e *Engine) AllTimeStats() tracker.AllTimeStats {
	return e.archive.AllTime()
}

// StartSession opens a new isolated session.
func (e *Engine) StartSession() *Session {
	id := e.ids.Generate()
	n := e.registry.next()
	s := newSession(e, id, game.NewDealer(randutil.Stream(e.seed, n)))
	e.registry.add(s)
	e.logger.Info().Str("session_id", id).Msg("Session started")
	return s
}

// Session looks up a live session.
func (e *Engine) Session(id string) (*Session, error) {
	return e.registry.Get(id)
}

// SessionSummary snapshots a live session's scorecard.
func (e *Engine) SessionSummary(id string) (tracker.SessionSummary, error) {
	s, err := e.registry.Get(id)
	if err != nil {
		return tracker.SessionSummary{}, err
	}
	return s.Summary(), nil
}

// RecordDecision routes an already graded record to its session.
func (e *Engine) RecordDecision(ctx context.Context, rec history.DecisionRecord) error {
	s, err := e.registry.Get(rec.SessionID)
	if err != nil {
		return err
	}
	return s.RecordDecision(ctx, rec)
}

// EndSession closes a session, archives its summary and removes it from
// the registry.
func (e *Engine) EndSession(ctx context.Context, id string) (tracker.SessionSummary, error) {
	s, err := e.registry.Get(id)
	if err != nil {
		return tracker.SessionSummary{}, err
	}
	sum, err := s.close()
	if err != nil {
		return tracker.SessionSummary{}, err
	}
	e.registry.remove(id)

	if err := e.archive.Add(sum); err != nil {
		return sum, err
	}
	if err := e.sink.AppendSession(ctx, sum); err != nil {
		e.logger.Warn().Err(err).Str("session_id", id).Msg("Failed to persist session")
	}
	e.logger.Info().
		Str("session_id", id).
		Int("decisions", sum.TotalDecisions).
		Float64("accuracy", sum.Accuracy()).
		Float64("net_ev", sum.NetEV).
		Msg("Session ended")
	return sum, nil
}

// facingProb is how likely a dealt spot is to already face aggression,
// averaged over positions for the stage.
func (e *Engine) facingProb(stage game.Stage) float64 {
	var sum float64
	for _, pos := range game.AllPositions {
		sum += e.tendencies.Aggression(stage, pos)
	}
	return sum / float64(len(game.AllPositions))
}
