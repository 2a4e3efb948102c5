package strategy

import (
	"fmt"
	"math"
	"slices"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/gtotrainer/internal/classification"
	"github.com/lox/gtotrainer/internal/game"
)

// tableFile is the HCL layout of a strategy table.
type tableFile struct {
	Preflop  []preflopBlock  `hcl:"preflop,block"`
	Postflop []postflopBlock `hcl:"postflop,block"`
}

type preflopBlock struct {
	Position string  `hcl:"position,label"`
	Players  string  `hcl:"players,optional"`
	Stack    string  `hcl:"stack,optional"`
	Facing   string  `hcl:"facing,optional"`
	Raise    string  `hcl:"raise,optional"`
	Call     string  `hcl:"call,optional"`
	SizeMin  float64 `hcl:"size_min,optional"`
	SizeMax  float64 `hcl:"size_max,optional"`
	Note     string  `hcl:"note,optional"`
}

type postflopBlock struct {
	Hand     string        `hcl:"hand,label"`
	Stage    string        `hcl:"stage,optional"`
	Texture  string        `hcl:"texture,optional"`
	Position string        `hcl:"position,optional"`
	SPR      string        `hcl:"spr,optional"`
	Facing   string        `hcl:"facing,optional"`
	Note     string        `hcl:"note,optional"`
	Actions  []actionBlock `hcl:"action,block"`
}

type actionBlock struct {
	Kind      string  `hcl:"kind,label"`
	Frequency float64 `hcl:"frequency"`
	SizeMin   float64 `hcl:"size_min,optional"`
	SizeMax   float64 `hcl:"size_max,optional"`
}

// Table is a compiled, read-only strategy table. It is safe for
// concurrent use.
type Table struct {
	preflop  []preflopRow
	postflop []postflopRow
}

type criteria []string

// matches reports whether every non-wildcard field equals the key's.
func (c criteria) matches(key []string) bool {
	for i, v := range c {
		if v != Any && v != key[i] {
			return false
		}
	}
	return true
}

func (c criteria) specificity() int {
	n := 0
	for _, v := range c {
		if v != Any {
			n++
		}
	}
	return n
}

type preflopRow struct {
	match            criteria
	raise, call      Range
	sizeMin, sizeMax float64 // multiples of the bet faced
	note             string
	source           string
}

type plannedAction struct {
	kind             game.ActionKind
	weight           float64
	sizeMin, sizeMax float64 // pot fraction for bets, multiple of the bet faced for raises
}

type postflopRow struct {
	match   criteria
	actions []plannedAction
	note    string
	source  string
}

var fieldValues = map[string][]string{
	"players": {"short", "full"},
	"stack":   {"short", "mid", "deep"},
	"preflop": {"none", "raise"},
	"side":    {"ip", "oop"},
	"spr":     {"low", "mid", "high"},
	"facing":  {"none", "bet"},
}

func field(name, value string) (string, error) {
	if value == "" || value == Any {
		return Any, nil
	}
	if !slices.Contains(fieldValues[name], value) {
		return "", fmt.Errorf("invalid %s %q, want one of %v or %q", name, value, fieldValues[name], Any)
	}
	return value, nil
}

// ParseTable parses and compiles an HCL strategy table. filename is used
// in diagnostics only.
func ParseTable(src []byte, filename string) (*Table, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse strategy table: %s", diags.Error())
	}

	var raw tableFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode strategy table: %s", diags.Error())
	}

	t := &Table{}
	for i, b := range raw.Preflop {
		row, err := compilePreflop(b)
		if err != nil {
			return nil, fmt.Errorf("%s: preflop %q (#%d): %w", filename, b.Position, i+1, err)
		}
		row.source = fmt.Sprintf("%s preflop #%d (%s)", filename, i+1, b.Position)
		t.preflop = append(t.preflop, row)
	}
	for i, b := range raw.Postflop {
		row, err := compilePostflop(b)
		if err != nil {
			return nil, fmt.Errorf("%s: postflop %q (#%d): %w", filename, b.Hand, i+1, err)
		}
		row.source = fmt.Sprintf("%s postflop #%d (%s)", filename, i+1, b.Hand)
		t.postflop = append(t.postflop, row)
	}
	return t, nil
}

func compilePreflop(b preflopBlock) (preflopRow, error) {
	pos := Any
	if b.Position != Any {
		p, err := game.ParsePosition(b.Position)
		if err != nil {
			return preflopRow{}, err
		}
		pos = p.String()
	}
	players, err := field("players", b.Players)
	if err != nil {
		return preflopRow{}, err
	}
	stack, err := field("stack", b.Stack)
	if err != nil {
		return preflopRow{}, err
	}
	facing, err := field("preflop", b.Facing)
	if err != nil {
		return preflopRow{}, err
	}

	row := preflopRow{
		match:   criteria{pos, players, stack, facing},
		sizeMin: b.SizeMin,
		sizeMax: b.SizeMax,
		note:    b.Note,
	}
	if row.raise, err = ParseRange(b.Raise); err != nil {
		return preflopRow{}, fmt.Errorf("raise: %w", err)
	}
	if row.call, err = ParseRange(b.Call); err != nil {
		return preflopRow{}, fmt.Errorf("call: %w", err)
	}
	for key, w := range row.raise {
		if w+row.call[key] > 1+1e-9 {
			return preflopRow{}, fmt.Errorf("%s is raised and called more than 100%% of the time", key)
		}
	}
	if len(row.raise) > 0 {
		if row.sizeMin <= 1 || row.sizeMax < row.sizeMin {
			return preflopRow{}, fmt.Errorf("raise sizes need 1 < size_min <= size_max, got %g..%g", row.sizeMin, row.sizeMax)
		}
	}
	return row, nil
}

func compilePostflop(b postflopBlock) (postflopRow, error) {
	hand := Any
	if b.Hand != Any {
		m, err := classification.ParseMadeHand(b.Hand)
		if err != nil {
			return postflopRow{}, err
		}
		hand = m.String()
	}
	stage := Any
	if b.Stage != "" && b.Stage != Any {
		st, err := game.ParseStage(b.Stage)
		if err != nil {
			return postflopRow{}, err
		}
		if !st.IsBettingRound() || st == game.Preflop {
			return postflopRow{}, fmt.Errorf("postflop rows need flop, turn or river, got %s", st)
		}
		stage = st.String()
	}
	texture := Any
	if b.Texture != "" && b.Texture != Any {
		tx, err := classification.ParseTexture(b.Texture)
		if err != nil {
			return postflopRow{}, err
		}
		texture = tx.String()
	}
	side, err := field("side", b.Position)
	if err != nil {
		return postflopRow{}, err
	}
	spr, err := field("spr", b.SPR)
	if err != nil {
		return postflopRow{}, err
	}
	facing, err := field("facing", b.Facing)
	if err != nil {
		return postflopRow{}, err
	}

	row := postflopRow{
		match: criteria{hand, stage, texture, side, spr, facing},
		note:  b.Note,
	}
	if len(b.Actions) == 0 {
		return postflopRow{}, fmt.Errorf("no actions")
	}
	total := 0.0
	for _, a := range b.Actions {
		kind, err := game.ParseActionKind(a.Kind)
		if err != nil {
			return postflopRow{}, err
		}
		if a.Frequency <= 0 || a.Frequency > 1 || math.IsNaN(a.Frequency) {
			return postflopRow{}, fmt.Errorf("%s frequency %g outside (0,1]", kind, a.Frequency)
		}
		if kind.Sized() && (a.SizeMin <= 0 || a.SizeMax < a.SizeMin) {
			return postflopRow{}, fmt.Errorf("%s needs 0 < size_min <= size_max, got %g..%g", kind, a.SizeMin, a.SizeMax)
		}
		total += a.Frequency
		row.actions = append(row.actions, plannedAction{kind: kind, weight: a.Frequency, sizeMin: a.SizeMin, sizeMax: a.SizeMax})
	}
	if math.Abs(total-1) > 1e-6 {
		return postflopRow{}, fmt.Errorf("action frequencies sum to %g, want 1", total)
	}
	return row, nil
}

// Rows reports how many preflop and postflop rows the table holds.
func (t *Table) Rows() (preflop, postflop int) {
	return len(t.preflop), len(t.postflop)
}

// findPreflop returns the most specific matching row. Ties go to the row
// declared first.
func (t *Table) findPreflop(key PreflopKey) (preflopRow, bool) {
	fields := key.fields()
	best, bestScore := -1, -1
	for i, row := range t.preflop {
		if row.match.matches(fields) && row.match.specificity() > bestScore {
			best, bestScore = i, row.match.specificity()
		}
	}
	if best < 0 {
		return preflopRow{}, false
	}
	return t.preflop[best], true
}

func (t *Table) findPostflop(key PostflopKey) (postflopRow, bool) {
	fields := key.fields()
	best, bestScore := -1, -1
	for i, row := range t.postflop {
		if row.match.matches(fields) && row.match.specificity() > bestScore {
			best, bestScore = i, row.match.specificity()
		}
	}
	if best < 0 {
		return postflopRow{}, false
	}
	return t.postflop[best], true
}
