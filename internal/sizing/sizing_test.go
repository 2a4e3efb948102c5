package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/gtotrainer/internal/strategy"
)

func openRange() strategy.SizeRange {
	return strategy.SizeRange{MinBB: 2.0, MaxBB: 2.5, MinPotPct: 133, MaxPotPct: 167}
}

func TestAnalyzeBoundsInclusive(t *testing.T) {
	r := openRange()
	for _, size := range []float64{2.0, 2.2, 2.5} {
		v := Analyze(size, r, 1.5)
		assert.True(t, v.IsOptimal, "size %.1f", size)
		assert.Equal(t, Within, v.Direction)
		assert.Contains(t, v.Feedback, "Good size")
	}
}

func TestAnalyzeDirection(t *testing.T) {
	r := openRange()

	under := Analyze(1.9, r, 1.5)
	assert.False(t, under.IsOptimal)
	assert.Equal(t, Under, under.Direction)
	assert.Contains(t, under.Feedback, "Undersized")

	over := Analyze(4, r, 1.5)
	assert.False(t, over.IsOptimal)
	assert.Equal(t, Over, over.Direction)
	assert.Contains(t, over.Feedback, "Oversized")
	assert.Contains(t, over.Feedback, r.String())
}

func TestAnalyzeMonotone(t *testing.T) {
	r := strategy.SizeRange{MinBB: 3, MaxBB: 4.5, MinPotPct: 50, MaxPotPct: 75}
	seenOptimal, leftOptimal := false, false
	for size := 0.5; size <= 10; size += 0.1 {
		v := Analyze(size, r, 6)
		if v.IsOptimal {
			require.False(t, leftOptimal, "optimal again at %.1f after leaving the window", size)
			seenOptimal = true
		} else if seenOptimal {
			leftOptimal = true
		}
	}
	assert.True(t, seenOptimal)
	assert.True(t, leftOptimal)
}

func TestAnalyzeReportsRange(t *testing.T) {
	v := Analyze(3, strategy.SizeRange{MinBB: 2, MaxBB: 4, MinPotPct: 33, MaxPotPct: 67}, 6)
	assert.Equal(t, [2]float64{2, 4}, v.RangeBB)
	assert.Equal(t, [2]float64{33, 67}, v.RangePotPct)
	assert.InDelta(t, 50, v.ChosenPct, 1e-9)
	assert.NotEmpty(t, v.Reasoning)
}

func TestAnalyzeSpotAddsGeometricSize(t *testing.T) {
	r := strategy.SizeRange{MinBB: 3, MaxBB: 7, MinPotPct: 30, MaxPotPct: 70}

	v := AnalyzeSpot(12, r, Spot{Pot: 10, Stack: 40, Streets: 2})
	assert.Equal(t, Over, v.Direction)
	assert.Contains(t, v.Reasoning, "Betting 100% pot (10.0BB) on each of the 2 streets left")

	plain := Analyze(12, r, 10)
	assert.Equal(t, v.Feedback, plain.Feedback)
	assert.NotContains(t, plain.Reasoning, "streets left")
}

func TestPotPercent(t *testing.T) {
	assert.InDelta(t, 33.3, PotPercent(2, 6), 1e-9)
	assert.Zero(t, PotPercent(2, 0))
	assert.InDelta(t, 3, FromPotPercent(50, 6), 1e-9)
}

func TestGeometricFraction(t *testing.T) {
	// One street: the bet is the whole stack.
	assert.InDelta(t, 2.0, GeometricFraction(10, 20, 1), 1e-9)

	// Pot 10, stack 40 over two streets: f = (3-1)/2 = 1.
	assert.InDelta(t, 1.0, GeometricFraction(10, 40, 2), 1e-9)

	// Betting f each street with calls must land exactly on the stack.
	pot, stack := 6.0, 97.0
	f := GeometricFraction(pot, stack, 3)
	left := stack
	for range 3 {
		bet := f * pot
		left -= bet
		pot += 2 * bet
	}
	assert.InDelta(t, 0, left, 1e-9)

	assert.Zero(t, GeometricFraction(0, 10, 2))
	assert.Zero(t, GeometricFraction(10, 10, 0))
}
