// Package sizing grades a chosen bet or raise size against the optimal
// window from the strategy table.
package sizing

import (
	"fmt"
	"math"

	"github.com/lox/gtotrainer/internal/strategy"
)

// Direction says which side of the optimal window a size fell.
type Direction int

const (
	Within Direction = iota
	Under
	Over
)

func (d Direction) String() string {
	switch d {
	case Under:
		return "under"
	case Over:
		return "over"
	}
	return "within"
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "within":
		*d = Within
	case "under":
		*d = Under
	case "over":
		*d = Over
	default:
		return fmt.Errorf("unknown size direction %q", b)
	}
	return nil
}

// Verdict grades one size.
type Verdict struct {
	ChosenBB    float64    `json:"chosen_bb" toml:"chosen_bb"`
	ChosenPct   float64    `json:"chosen_pot_pct" toml:"chosen_pot_pct"`
	IsOptimal   bool       `json:"is_optimal" toml:"is_optimal"`
	Direction   Direction  `json:"direction" toml:"direction"`
	RangeBB     [2]float64 `json:"range_bb" toml:"range_bb"`
	RangePotPct [2]float64 `json:"range_pot_pct" toml:"range_pot_pct"`
	Feedback    string     `json:"feedback" toml:"feedback"`
	Reasoning   string     `json:"reasoning" toml:"reasoning"`
}

// Analyze grades chosenBB against r, bounds inclusive. pot is the pot
// before the bet and is used to express sizes as a percentage of it.
func Analyze(chosenBB float64, r strategy.SizeRange, pot float64) Verdict {
	return AnalyzeSpot(chosenBB, r, Spot{Pot: pot})
}

// Spot is what the analyzer knows about the hand a size was chosen in.
// Stack and Streets are optional; with both set the reasoning includes
// the geometric size that gets the stack in by the river.
type Spot struct {
	Pot     float64
	Stack   float64
	Streets int
}

// AnalyzeSpot is Analyze with the stack and streets remaining in view.
func AnalyzeSpot(chosenBB float64, r strategy.SizeRange, spot Spot) Verdict {
	v := Verdict{
		ChosenBB:    chosenBB,
		ChosenPct:   PotPercent(chosenBB, spot.Pot),
		RangeBB:     [2]float64{r.MinBB, r.MaxBB},
		RangePotPct: [2]float64{r.MinPotPct, r.MaxPotPct},
	}
	switch {
	case r.Contains(chosenBB):
		v.IsOptimal = true
		v.Direction = Within
		v.Feedback = fmt.Sprintf("Good size: %.1fBB (%.0f%% pot) is inside the optimal %s.", chosenBB, v.ChosenPct, r)
	case chosenBB < r.MinBB:
		v.Direction = Under
		v.Feedback = fmt.Sprintf("Undersized: %.1fBB is %.0f%% pot, the optimal range is %s.", chosenBB, v.ChosenPct, r)
	default:
		v.Direction = Over
		v.Feedback = fmt.Sprintf("Oversized: %.1fBB is %.0f%% pot, the optimal range is %s.", chosenBB, v.ChosenPct, r)
	}
	v.Reasoning = reasoning(v.Direction, r, spot)
	return v
}

func reasoning(d Direction, r strategy.SizeRange, spot Spot) string {
	mid := (r.MinPotPct + r.MaxPotPct) / 2
	var why string
	switch {
	case mid <= 40:
		why = "Small sizes keep worse hands in and risk little when the board favours you."
	case mid <= 80:
		why = "Medium sizes charge draws while still getting called by worse made hands."
	default:
		why = "Large sizes polarise: strong value and bluffs, pricing out draws."
	}
	switch d {
	case Under:
		why += " Going smaller gives opponents too good a price."
	case Over:
		why += " Going bigger folds out the hands you want calls from."
	}
	if f := GeometricFraction(spot.Pot, spot.Stack, spot.Streets); f > 0 {
		pct := math.Round(f * 100)
		why += fmt.Sprintf(" Betting %.0f%% pot (%.1fBB) on each of the %d streets left gets the stack in by the river.",
			pct, FromPotPercent(pct, spot.Pot), spot.Streets)
	}
	return why
}

// PotPercent expresses size as a percentage of pot, to one decimal place.
func PotPercent(size, pot float64) float64 {
	if pot <= 0 {
		return 0
	}
	return math.Round(size/pot*1000) / 10
}

// FromPotPercent converts a pot percentage back into big blinds.
func FromPotPercent(pct, pot float64) float64 {
	return pct / 100 * pot
}

// GeometricFraction is the pot fraction that, bet on each of streets
// streets, gets stack all-in by the river:
//
//	f = ((1 + 2·stack/pot)^(1/streets) − 1) / 2
func GeometricFraction(pot, stack float64, streets int) float64 {
	if pot <= 0 || stack <= 0 || streets <= 0 {
		return 0
	}
	return (math.Pow(1+2*stack/pot, 1/float64(streets)) - 1) / 2
}
