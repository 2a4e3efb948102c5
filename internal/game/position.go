package game

import "fmt"

// Position is a seat's acting order relative to the dealer button.
type Position int

const (
	UTG Position = iota
	UTG1
	UTG2
	MP
	HJ
	CO
	BTN
	SB
	BB
)

var positionNames = [...]string{"UTG", "UTG+1", "UTG+2", "MP", "HJ", "CO", "BTN", "SB", "BB"}

// AllPositions lists every position in preflop acting order.
var AllPositions = []Position{UTG, UTG1, UTG2, MP, HJ, CO, BTN, SB, BB}

func (p Position) String() string {
	if p < 0 || int(p) >= len(positionNames) {
		return "unknown"
	}
	return positionNames[p]
}

// ParsePosition converts "BTN", "UTG+1" and friends into a Position.
func ParsePosition(name string) (Position, error) {
	for i, n := range positionNames {
		if n == name {
			return Position(i), nil
		}
	}
	switch name {
	case "UTG1":
		return UTG1, nil
	case "UTG2":
		return UTG2, nil
	case "LJ":
		return MP, nil
	}
	return 0, fmt.Errorf("unknown position %q", name)
}

func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(b []byte) error {
	v, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// IsBlind reports whether p posts a blind.
func (p Position) IsBlind() bool {
	return p == SB || p == BB
}

// Late reports whether p acts after most of the table postflop.
func (p Position) Late() bool {
	return p == CO || p == BTN
}

const (
	MinPlayers = 2
	MaxPlayers = 9
)

// seatPositions maps table size to positions by seat, clockwise from the
// button at seat 0. Smaller tables drop early positions first.
var seatPositions = map[int][]Position{
	2: {BTN, BB},
	3: {BTN, SB, BB},
	4: {BTN, SB, BB, CO},
	5: {BTN, SB, BB, UTG, CO},
	6: {BTN, SB, BB, UTG, MP, CO},
	7: {BTN, SB, BB, UTG, UTG1, MP, CO},
	8: {BTN, SB, BB, UTG, UTG1, MP, HJ, CO},
	9: {BTN, SB, BB, UTG, UTG1, UTG2, MP, HJ, CO},
}

// PositionOf returns the position of seat at a table of numPlayers.
func PositionOf(seat, numPlayers int) (Position, error) {
	table, ok := seatPositions[numPlayers]
	if !ok {
		return 0, &ValidationError{Field: "numPlayers", Reason: fmt.Sprintf("must be between %d and %d, got %d", MinPlayers, MaxPlayers, numPlayers)}
	}
	if seat < 0 || seat >= numPlayers {
		return 0, &ValidationError{Field: "seat", Reason: fmt.Sprintf("must be in [0,%d), got %d", numPlayers, seat)}
	}
	return table[seat], nil
}

// TablePositions returns the positions present at a table of numPlayers,
// by seat. The returned slice is a copy.
func TablePositions(numPlayers int) []Position {
	return append([]Position(nil), seatPositions[numPlayers]...)
}

// SeatedAt reports whether p exists at a table of numPlayers.
func (p Position) SeatedAt(numPlayers int) bool {
	for _, q := range seatPositions[numPlayers] {
		if q == p {
			return true
		}
	}
	return false
}
