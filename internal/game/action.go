package game

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind is the type of a player action.
type ActionKind int

const (
	Fold ActionKind = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

var actionNames = [...]string{"fold", "check", "call", "bet", "raise", "all-in"}

// AllActionKinds lists every kind in declaration order.
var AllActionKinds = []ActionKind{Fold, Check, Call, Bet, Raise, AllIn}

func (k ActionKind) String() string {
	if k < 0 || int(k) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[k]
}

// Sized reports whether the kind carries a bet size.
func (k ActionKind) Sized() bool {
	return k == Bet || k == Raise
}

// Aggressive reports whether the kind puts new money in beyond a call.
func (k ActionKind) Aggressive() bool {
	return k == Bet || k == Raise || k == AllIn
}

// ParseActionKind converts a name into an ActionKind.
func ParseActionKind(name string) (ActionKind, error) {
	switch strings.ToLower(name) {
	case "fold", "f":
		return Fold, nil
	case "check", "x", "k":
		return Check, nil
	case "call", "c":
		return Call, nil
	case "bet", "b":
		return Bet, nil
	case "raise", "r":
		return Raise, nil
	case "all-in", "allin", "a":
		return AllIn, nil
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ActionKind) UnmarshalText(b []byte) error {
	v, err := ParseActionKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Action is a player's choice. Size is the total amount in big blinds the
// player commits on this street and is only meaningful for bet and raise;
// for all-in it is filled in with the full stack by Normalize.
type Action struct {
	Kind ActionKind `json:"kind" toml:"kind"`
	Size float64    `json:"size,omitempty" toml:"size,omitempty"`
}

func (a Action) String() string {
	if a.Kind.Sized() || (a.Kind == AllIn && a.Size > 0) {
		return fmt.Sprintf("%s %sBB", a.Kind, strconv.FormatFloat(a.Size, 'f', -1, 64))
	}
	return a.Kind.String()
}

// ParseAction parses "fold", "call", "raise 6" or "b 3.5".
func ParseAction(s string) (Action, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Action{}, fmt.Errorf("empty action")
	}
	kind, err := ParseActionKind(fields[0])
	if err != nil {
		return Action{}, err
	}
	a := Action{Kind: kind}
	if len(fields) > 1 {
		size, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(fields[1]), "bb"), 64)
		if err != nil {
			return Action{}, fmt.Errorf("invalid size %q: %w", fields[1], err)
		}
		a.Size = size
	}
	if len(fields) > 2 {
		return Action{}, fmt.Errorf("unexpected trailing input %q", strings.Join(fields[2:], " "))
	}
	return a, nil
}
