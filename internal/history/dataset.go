package history

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/lox/gtotrainer/internal/game"
)

// ErrDuplicateRecord is returned when a record with the same hand id and
// sequence number was already appended.
var ErrDuplicateRecord = errors.New("decision already recorded")

// Filter selects records. Zero fields match everything.
type Filter struct {
	HandID    string
	SessionID string
	Stage     *game.Stage
}

func (f Filter) match(r *DecisionRecord) bool {
	if f.HandID != "" && r.HandID != f.HandID {
		return false
	}
	if f.SessionID != "" && r.SessionID != f.SessionID {
		return false
	}
	if f.Stage != nil && r.Situation.Stage != *f.Stage {
		return false
	}
	return true
}

type recordKey struct {
	hand string
	seq  int
}

// Dataset is an in-memory append-only store of decision records. It is
// safe for concurrent use.
type Dataset struct {
	mu      sync.RWMutex
	records []DecisionRecord
	byHand  map[string][]int
	seen    map[recordKey]struct{}
	hands   []string
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		byHand: make(map[string][]int),
		seen:   make(map[recordKey]struct{}),
	}
}

// Append stores a copy of rec.
func (d *Dataset) Append(rec DecisionRecord) error {
	if rec.HandID == "" {
		return &game.ValidationError{Field: "handId", Reason: "must not be empty"}
	}
	if rec.Timestamp.IsZero() {
		return &game.ValidationError{Field: "timestamp", Reason: "must be set"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := recordKey{rec.HandID, rec.Seq}
	if _, ok := d.seen[key]; ok {
		return fmt.Errorf("hand %s seq %d: %w", rec.HandID, rec.Seq, ErrDuplicateRecord)
	}
	d.seen[key] = struct{}{}

	if _, ok := d.byHand[rec.HandID]; !ok {
		d.hands = append(d.hands, rec.HandID)
	}
	d.byHand[rec.HandID] = append(d.byHand[rec.HandID], len(d.records))
	d.records = append(d.records, rec.Clone())
	return nil
}

// Len is the number of records stored.
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

// Records returns copies of the matching records ordered by timestamp,
// then sequence number.
func (d *Dataset) Records(f Filter) []DecisionRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []DecisionRecord
	if f.HandID != "" {
		for _, i := range d.byHand[f.HandID] {
			if f.match(&d.records[i]) {
				out = append(out, d.records[i].Clone())
			}
		}
	} else {
		for i := range d.records {
			if f.match(&d.records[i]) {
				out = append(out, d.records[i].Clone())
			}
		}
	}
	SortRecords(out)
	return out
}

// Hands lists the distinct hand ids in the order they were first seen.
func (d *Dataset) Hands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.hands)
}

// Export returns a copy of every record, in timestamp order.
func (d *Dataset) Export() []DecisionRecord {
	return d.Records(Filter{})
}

// Replay renders the review of one hand, one line per decision.
func (d *Dataset) Replay(handID string) ([]string, error) {
	recs := d.Records(Filter{HandID: handID})
	if len(recs) == 0 {
		return nil, fmt.Errorf("no decisions recorded for hand %s", handID)
	}
	lines := make([]string, len(recs))
	for i, r := range recs {
		lines[i] = r.Line()
	}
	return lines, nil
}

// SortRecords orders records by timestamp, then hand id and sequence.
func SortRecords(recs []DecisionRecord) {
	slices.SortStableFunc(recs, func(a, b DecisionRecord) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		if c := cmp.Compare(a.HandID, b.HandID); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
}
