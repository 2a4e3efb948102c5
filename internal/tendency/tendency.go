// Package tendency models how often opponents take each action. Tables are
// supplied as JSON, validated against an embedded schema and checked for
// normalized frequencies; malformed input is rejected, never repaired.
package tendency

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lox/gtotrainer/internal/game"
)

//go:embed schemas/tendencies.json
var schemaJSON []byte

//go:embed default.json
var defaultJSON []byte

const (
	schemaURL    = "https://gtotrainer.dev/schemas/tendencies.json"
	sumTolerance = 1e-6
)

var schema = func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("tendency: adding schema: %v", err))
	}
	s, err := compiler.Compile(schemaURL)
	if err != nil {
		panic(fmt.Sprintf("tendency: compiling schema: %v", err))
	}
	return s
}()

// Frequencies maps each action kind to how often it is taken.
type Frequencies map[game.ActionKind]float64

// Table holds opponent frequencies by stage and by the hero's position.
// A parsed Table is never mutated.
type Table struct {
	freqs map[game.Stage]map[game.Position]Frequencies
}

// Parse validates and decodes a JSON tendency table of the form
// {stage: {position: {actionKind: frequency}}}. Every failure is a
// *game.ValidationError naming the offending path.
func Parse(data []byte) (*Table, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &game.ValidationError{Field: "tendencies", Reason: "invalid JSON: " + err.Error()}
	}
	if err := schema.Validate(doc); err != nil {
		return nil, &game.ValidationError{Field: "tendencies", Reason: schemaReason(err)}
	}

	var raw map[string]map[string]map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &game.ValidationError{Field: "tendencies", Reason: err.Error()}
	}

	t := &Table{freqs: make(map[game.Stage]map[game.Position]Frequencies, len(raw))}
	for stageName, positions := range raw {
		stage, err := game.ParseStage(stageName)
		if err != nil {
			return nil, &game.ValidationError{Field: "tendencies." + stageName, Reason: err.Error()}
		}
		byPos := make(map[game.Position]Frequencies, len(positions))
		for posName, kinds := range positions {
			pos, err := game.ParsePosition(posName)
			if err != nil {
				return nil, &game.ValidationError{Field: "tendencies." + stageName, Reason: err.Error()}
			}
			path := "tendencies." + stageName + "." + posName
			freqs := make(Frequencies, len(kinds))
			sum := 0.0
			for kindName, f := range kinds {
				kind, err := game.ParseActionKind(kindName)
				if err != nil {
					return nil, &game.ValidationError{Field: path, Reason: err.Error()}
				}
				freqs[kind] = f
				sum += f
			}
			if math.Abs(sum-1) > sumTolerance {
				return nil, &game.ValidationError{Field: path, Reason: fmt.Sprintf("frequencies sum to %.6f, want 1", sum)}
			}
			byPos[pos] = freqs
		}
		t.freqs[stage] = byPos
	}
	return t, nil
}

// schemaReason flattens a schema error into one line listing each leaf
// failure with its JSON pointer.
func schemaReason(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	var leaves []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			leaves = append(leaves, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	sort.Strings(leaves)
	return strings.Join(slices.Compact(leaves), "; ")
}

// Default returns the embedded tendency table.
func Default() *Table {
	t, err := Parse(defaultJSON)
	if err != nil {
		panic(fmt.Sprintf("tendency: embedded table: %v", err))
	}
	return t
}

// Frequencies returns a copy of the frequencies for a stage and position.
func (t *Table) Frequencies(stage game.Stage, pos game.Position) (Frequencies, bool) {
	f, ok := t.freqs[stage][pos]
	if !ok {
		return nil, false
	}
	out := make(Frequencies, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out, true
}

// FoldFrequency is how often a single opponent folds to aggression.
func (t *Table) FoldFrequency(stage game.Stage, pos game.Position) float64 {
	return t.freqs[stage][pos][game.Fold]
}

// Aggression is how often an opponent bets, raises or shoves.
func (t *Table) Aggression(stage game.Stage, pos game.Position) float64 {
	f := t.freqs[stage][pos]
	return f[game.Bet] + f[game.Raise] + f[game.AllIn]
}

// MarshalJSON writes the table back in its input form.
func (t *Table) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]map[string]float64, len(t.freqs))
	for stage, byPos := range t.freqs {
		s := make(map[string]map[string]float64, len(byPos))
		for pos, freqs := range byPos {
			k := make(map[string]float64, len(freqs))
			for kind, f := range freqs {
				k[kind.String()] = f
			}
			s[pos.String()] = k
		}
		out[stage.String()] = s
	}
	return json.Marshal(out)
}
