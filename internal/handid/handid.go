// Package handid mints sortable identifiers for training hands and sessions.
package handid

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/oklog/ulid/v2"
)

// Generator produces lower-case ULIDs. IDs from one generator are strictly
// increasing, even within the same millisecond.
type Generator struct {
	mu      sync.Mutex
	clock   quartz.Clock
	entropy io.Reader
}

// NewGenerator returns a generator reading time from clock. A nil entropy
// source falls back to crypto/rand; pass a seeded reader for reproducible ids.
func NewGenerator(clock quartz.Clock, entropy io.Reader) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if entropy == nil {
		entropy = rand.Reader
	}
	return &Generator{clock: clock, entropy: ulid.Monotonic(entropy, 0)}
}

// Generate returns the next id.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.clock.Now()), g.entropy)
	if err != nil {
		// Monotonic entropy only fails once a millisecond's random
		// space is exhausted, which would take 2^80 ids.
		panic("handid: " + err.Error())
	}
	return strings.ToLower(id.String())
}

// Validate checks that id is a well-formed 26-character ULID.
func Validate(id string) error {
	if len(id) != ulid.EncodedSize {
		return fmt.Errorf("id must be exactly %d characters, got %d", ulid.EncodedSize, len(id))
	}
	if _, err := ulid.ParseStrict(id); err != nil {
		return fmt.Errorf("invalid id %q: %w", id, err)
	}
	return nil
}

// Time extracts the creation time embedded in id.
func Time(id string) (time.Time, error) {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid id %q: %w", id, err)
	}
	return ulid.Time(u.Time()).UTC(), nil
}
