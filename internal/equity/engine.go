// Package equity estimates hand equity and scores candidate actions in
// big blinds of expected value.
package equity

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/randutil"
	"github.com/lox/gtotrainer/poker"
)

const (
	DefaultSimulations = 4000
	DefaultWorkers     = 4
	maxCacheEntries    = 1 << 14
)

// Engine runs Monte Carlo equity against random opponent hands. Results
// are a pure function of the inputs and the engine seed: every query is
// seeded from its own cards, and each worker owns a fixed slice of the
// samples, so scheduling never changes the answer.
type Engine struct {
	simulations int
	workers     int
	seed        int64
	logger      zerolog.Logger

	mu    sync.Mutex
	cache map[cacheKey]float64
}

type cacheKey struct {
	hand, board poker.Hand
	opponents   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithSimulations sets the number of Monte Carlo samples per query.
func WithSimulations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.simulations = n
		}
	}
}

// WithWorkers sets how many goroutines share the samples.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithSeed offsets every query's seed.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// NewEngine creates an equity engine.
func NewEngine(logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		simulations: DefaultSimulations,
		workers:     DefaultWorkers,
		logger:      logger.With().Str("component", "equity").Logger(),
		cache:       make(map[cacheKey]float64),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Equity returns the probability, ties split, that hand beats opponents
// random hands by showdown on board. Reordering board never changes the
// result.
func (e *Engine) Equity(ctx context.Context, hand poker.StartingHand, board poker.Hand, opponents int) (float64, error) {
	if err := checkInputs(hand, board, opponents); err != nil {
		return 0, err
	}

	key := cacheKey{hand: hand.Hand(), board: board, opponents: opponents}
	e.mu.Lock()
	eq, ok := e.cache[key]
	e.mu.Unlock()
	if ok {
		return eq, nil
	}

	var err error
	if board.CountCards() == 5 && opponents == 1 {
		eq = exactRiver(key.hand, board)
	} else {
		eq, err = e.simulate(ctx, key)
		if err != nil {
			return 0, err
		}
	}

	e.mu.Lock()
	if len(e.cache) >= maxCacheEntries {
		clear(e.cache)
	}
	e.cache[key] = eq
	e.mu.Unlock()

	e.logger.Debug().
		Str("hand", hand.String()).
		Str("board", board.String()).
		Int("opponents", opponents).
		Float64("equity", eq).
		Msg("Computed equity")
	return eq, nil
}

func checkInputs(hand poker.StartingHand, board poker.Hand, opponents int) error {
	if !hand.Valid() {
		return &game.ValidationError{Field: "hand", Reason: "need two distinct cards"}
	}
	switch board.CountCards() {
	case 0, 3, 4, 5:
	default:
		return &game.ValidationError{Field: "communityCards", Reason: fmt.Sprintf("board must hold 0, 3, 4 or 5 cards, got %d", board.CountCards())}
	}
	if board&hand.Hand() != 0 {
		return &game.ValidationError{Field: "communityCards", Reason: "board shares a card with the hand"}
	}
	if opponents < 1 || opponents > game.MaxPlayers-1 {
		return &game.ValidationError{Field: "opponents", Reason: fmt.Sprintf("must be between 1 and %d, got %d", game.MaxPlayers-1, opponents)}
	}
	return nil
}

type tally struct {
	won     float64
	samples int
}

func (e *Engine) simulate(ctx context.Context, key cacheKey) (float64, error) {
	seed := randutil.Derive(uint64(key.hand), uint64(key.board), uint64(key.opponents), uint64(e.seed))
	remaining := (poker.FullDeck() &^ (key.hand | key.board)).Cards()

	results := make([]tally, e.workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range e.workers {
		n := e.simulations / e.workers
		if w < e.simulations%e.workers {
			n++
		}
		g.Go(func() error {
			rng := randutil.Stream(seed, w)
			deck := make([]poker.Card, len(remaining))
			copy(deck, remaining)
			results[w] = runWorker(ctx, key, deck, n, rng)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("equity simulation: %w", err)
	}

	var total tally
	for _, r := range results {
		total.won += r.won
		total.samples += r.samples
	}
	if total.samples == 0 {
		return 0, fmt.Errorf("equity simulation produced no samples")
	}
	return total.won / float64(total.samples), nil
}

func runWorker(ctx context.Context, key cacheKey, deck []poker.Card, n int, rng *rand.Rand) tally {
	missing := 5 - key.board.CountCards()
	need := missing + 2*key.opponents

	var t tally
	for i := range n {
		if i&255 == 0 && ctx.Err() != nil {
			return t
		}
		// Partial Fisher-Yates: the first need cards become the sample.
		for j := range need {
			k := j + rng.IntN(len(deck)-j)
			deck[j], deck[k] = deck[k], deck[j]
		}
		board := key.board
		for _, c := range deck[:missing] {
			board |= poker.Hand(c)
		}
		hero := poker.Evaluate7(key.hand | board)

		best, winners := hero, 1
		heroBest := true
		for o := range key.opponents {
			opp := poker.Evaluate7(board | poker.Hand(deck[missing+2*o]) | poker.Hand(deck[missing+2*o+1]))
			switch poker.CompareHands(opp, best) {
			case 1:
				best, winners, heroBest = opp, 1, false
			case 0:
				winners++
			}
		}
		if heroBest {
			t.won += 1 / float64(winners)
		}
		t.samples++
	}
	return t
}

// exactRiver enumerates every opponent holding on a complete board.
func exactRiver(hand, board poker.Hand) float64 {
	hero := poker.Evaluate7(hand | board)
	rest := (poker.FullDeck() &^ (hand | board)).Cards()
	var won float64
	var n int
	for i := range rest {
		for j := i + 1; j < len(rest); j++ {
			opp := poker.Evaluate7(board | poker.Hand(rest[i]) | poker.Hand(rest[j]))
			switch poker.CompareHands(hero, opp) {
			case 1:
				won++
			case 0:
				won += 0.5
			}
			n++
		}
	}
	return won / float64(n)
}
