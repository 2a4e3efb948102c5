package game

import "fmt"

// Stage is a betting round, plus the two terminal outcomes.
type Stage int

const (
	Preflop Stage = iota
	Flop
	Turn
	River
	StageFold
	Showdown
)

var stageNames = [...]string{"preflop", "flop", "turn", "river", "fold", "showdown"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// BettingRounds lists the streets a decision can be made on, in order.
var BettingRounds = []Stage{Preflop, Flop, Turn, River}

// IsBettingRound reports whether decisions can be made on s.
func (s Stage) IsBettingRound() bool {
	return s >= Preflop && s <= River
}

// Terminal reports whether s ends the hand.
func (s Stage) Terminal() bool {
	return s == StageFold || s == Showdown
}

// Next returns the following street; the river advances to showdown.
func (s Stage) Next() Stage {
	if s.Terminal() {
		return s
	}
	return s + 1
}

// BoardSize is the number of community cards visible on s.
func (s Stage) BoardSize() int {
	switch s {
	case Flop:
		return 3
	case Turn:
		return 4
	case River, Showdown:
		return 5
	}
	return 0
}

// StreetsLeft counts the betting rounds from s through the river.
func (s Stage) StreetsLeft() int {
	if !s.IsBettingRound() {
		return 0
	}
	return int(River-s) + 1
}

// ParseStage converts a name like "flop" into a Stage.
func ParseStage(name string) (Stage, error) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(b []byte) error {
	v, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Facing is the action the player must respond to on the current street.
type Facing int

const (
	FacingNone Facing = iota
	FacingBet
	FacingRaise
)

var facingNames = [...]string{"none", "bet", "raise"}

func (f Facing) String() string {
	if f < 0 || int(f) >= len(facingNames) {
		return "unknown"
	}
	return facingNames[f]
}

// ParseFacing accepts "none", "check", "bet" and "raise". An empty string
// or "check" means nothing is owed.
func ParseFacing(name string) (Facing, error) {
	switch name {
	case "", "none", "check":
		return FacingNone, nil
	case "bet":
		return FacingBet, nil
	case "raise":
		return FacingRaise, nil
	}
	return 0, fmt.Errorf("unknown facing action %q", name)
}

func (f Facing) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Facing) UnmarshalText(b []byte) error {
	v, err := ParseFacing(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
