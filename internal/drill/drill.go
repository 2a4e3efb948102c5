// Package drill runs a line-based training loop over a trainer session:
// deal a spot, read an answer, show the grade, repeat.
package drill

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/trainer"
)

// ErrQuit is returned by Run when the player types quit.
var ErrQuit = errors.New("drill: quit")

const helpText = `Answer with an action: fold, check, call, bet <BB>, raise <BB>, all-in.
Short forms work too: f, x, c, b 3, r 7.5, a.
Sizes are the total you put in on this street. Type quit to stop.`

// Runner plays hands from one session against a terminal.
type Runner struct {
	session *trainer.Session
	in      io.Reader
	out     io.Writer
	stages  []game.Stage
	logger  zerolog.Logger

	readOnce sync.Once
	lines    chan string
	readErr  error
}

// NewRunner creates a runner. Hands rotate through stages; an empty list
// means every betting round.
func NewRunner(session *trainer.Session, in io.Reader, out io.Writer, stages []game.Stage, logger zerolog.Logger) *Runner {
	if len(stages) == 0 {
		stages = game.BettingRounds
	}
	return &Runner{
		session: session,
		in:      in,
		lines:   make(chan string),
		out:     out,
		stages:  stages,
		logger:  logger.With().Str("component", "drill").Logger(),
	}
}

// Run plays up to hands hands (0 means until input ends or the player
// quits). End of input and quitting both return nil.
func (r *Runner) Run(ctx context.Context, hands int) error {
	r.readOnce.Do(func() { go r.readLines() })
	fmt.Fprintln(r.out, InfoStyle.Render(helpText))
	for i := 0; hands == 0 || i < hands; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		spot, err := r.session.NewHand(r.stages[i%len(r.stages)])
		if err != nil {
			return fmt.Errorf("dealing hand: %w", err)
		}
		err = r.playHand(ctx, spot)
		switch {
		case errors.Is(err, ErrQuit), errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
	}
	return nil
}

func (r *Runner) playHand(ctx context.Context, spot trainer.Spot) error {
	for {
		fmt.Fprint(r.out, "\n"+RenderSpot(spot))
		action, err := r.readAction(ctx)
		if err != nil {
			return err
		}

		res, err := r.session.Decide(ctx, spot, action)
		if game.IsValidation(err) {
			fmt.Fprintln(r.out, WarningStyle.Render(err.Error()))
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprint(r.out, RenderResult(res))
		if res.Next == nil {
			return nil
		}
		spot = *res.Next
	}
}

// readLines feeds input lines to readAction until the reader ends. A read
// blocked on a terminal cannot be interrupted, so it runs apart from the
// loop that watches for cancellation.
func (r *Runner) readLines() {
	defer close(r.lines)
	scanner := bufio.NewScanner(r.in)
	for scanner.Scan() {
		r.lines <- scanner.Text()
	}
	r.readErr = scanner.Err()
}

// readAction prompts until a parseable action or a quit command arrives,
// or ctx is cancelled.
func (r *Runner) readAction(ctx context.Context) (game.Action, error) {
	for {
		fmt.Fprint(r.out, "> ")
		var line string
		select {
		case <-ctx.Done():
			return game.Action{}, ctx.Err()
		case text, ok := <-r.lines:
			if !ok {
				if r.readErr != nil {
					return game.Action{}, r.readErr
				}
				return game.Action{}, io.EOF
			}
			line = strings.TrimSpace(text)
		}
		switch strings.ToLower(line) {
		case "":
			continue
		case "q", "quit", "exit":
			return game.Action{}, ErrQuit
		case "?", "h", "help":
			fmt.Fprintln(r.out, InfoStyle.Render(helpText))
			continue
		}
		action, err := game.ParseAction(line)
		if err != nil {
			r.logger.Debug().Err(err).Str("input", line).Msg("Unparseable action")
			fmt.Fprintln(r.out, WarningStyle.Render(err.Error()))
			continue
		}
		return action, nil
	}
}
