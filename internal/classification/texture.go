// Package classification buckets postflop spots: how coordinated the board
// is, which draws a hand holds and how strong the made hand is. The buckets
// are the postflop strategy table's keys.
package classification

import (
	"fmt"
	"math/bits"

	"github.com/lox/gtotrainer/poker"
)

// Texture is the "wetness" of a board from dry to very wet.
type Texture int

const (
	Dry Texture = iota
	SemiWet
	Wet
	VeryWet
)

var textureNames = [...]string{"dry", "semi-wet", "wet", "very-wet"}

func (t Texture) String() string {
	if t < 0 || int(t) >= len(textureNames) {
		return "unknown"
	}
	return textureNames[t]
}

// ParseTexture converts a texture name into a Texture.
func ParseTexture(name string) (Texture, error) {
	for i, n := range textureNames {
		if n == name {
			return Texture(i), nil
		}
	}
	if name == "very wet" {
		return VeryWet, nil
	}
	return 0, fmt.Errorf("unknown board texture %q", name)
}

// BoardInfo summarises the features of a board the texture score uses.
type BoardInfo struct {
	Cards     int
	MaxSuit   int  // most cards sharing a suit
	Monotone  bool // one suit only
	Rainbow   bool // no two cards share a suit
	Connected int  // longest run of consecutive ranks, ace playing low too
	Paired    bool
	Broadway  int // cards ten or higher
	TopRank   uint8
}

// Analyze inspects a board of any size.
func Analyze(board poker.Hand) BoardInfo {
	info := BoardInfo{Cards: board.CountCards()}
	if info.Cards == 0 {
		return info
	}

	suits := 0
	for suit := range uint8(4) {
		n := bits.OnesCount16(board.GetSuitMask(suit))
		if n > 0 {
			suits++
		}
		info.MaxSuit = max(info.MaxSuit, n)
	}
	info.Monotone = suits == 1 && info.Cards >= 3
	info.Rainbow = suits == info.Cards && info.Cards >= 3

	ranks := board.GetRankMask()
	info.Connected = longestRun(board.StraightMask())
	info.Paired = poker.PairedRanks(board) != 0
	info.Broadway = bits.OnesCount16(ranks & 0x1F00)
	info.TopRank = uint8(bits.Len16(ranks) - 1)
	return info
}

func longestRun(mask uint16) int {
	run := 0
	for mask != 0 {
		mask &= mask << 1
		run++
	}
	return run
}

// AnalyzeBoardTexture scores how coordinated a board is. Flush and
// straight potential dominate; pairing and a high-card-heavy board each
// add a point.
func AnalyzeBoardTexture(board poker.Hand) Texture {
	info := Analyze(board)
	if info.Cards < 3 {
		return Dry
	}

	score := 0
	switch {
	case info.Monotone, info.MaxSuit >= 4:
		score += 4
	case info.MaxSuit == 3:
		score += 3
	case info.MaxSuit == 2:
		score++
	}
	switch {
	case info.Connected >= 4:
		score += 4
	case info.Connected == 3:
		score += 3
	case info.Connected == 2:
		score++
	}
	if info.Paired {
		score++
	}
	if info.Broadway >= 3 {
		score++
	}

	switch {
	case score <= 0:
		return Dry
	case score <= 3:
		return SemiWet
	case score <= 5:
		return Wet
	}
	return VeryWet
}
