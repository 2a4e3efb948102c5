package classification

import (
	"math/bits"

	"github.com/lox/gtotrainer/poker"
)

// DrawType is one kind of draw a hand can hold.
type DrawType int

const (
	FlushDraw DrawType = iota
	NutFlushDraw
	OpenEndedStraightDraw
	Gutshot
	DoubleGutshot
	ComboDraw
	BackdoorFlush
	Overcards
)

var drawNames = [...]string{
	"flush draw", "nut flush draw", "open-ended straight draw", "gutshot",
	"double gutshot", "combo draw", "backdoor flush", "overcards",
}

func (d DrawType) String() string {
	if d < 0 || int(d) >= len(drawNames) {
		return "unknown"
	}
	return drawNames[d]
}

// DrawInfo lists the draws a hand holds and its approximate clean outs.
type DrawInfo struct {
	Draws []DrawType
	Outs  int
}

// Has reports whether d is among the draws.
func (d DrawInfo) Has(t DrawType) bool {
	for _, x := range d.Draws {
		if x == t {
			return true
		}
	}
	return false
}

// HasStrongDraw reports an eight-plus out draw.
func (d DrawInfo) HasStrongDraw() bool {
	return d.Outs >= 8
}

// DetectDraws finds the draws hole makes with board. Nothing is a draw on
// the river or before the flop.
func DetectDraws(hole poker.StartingHand, board poker.Hand) DrawInfo {
	n := board.CountCards()
	if n < 3 || n > 4 {
		return DrawInfo{}
	}
	h := hole.Hand()
	all := h | board

	var info DrawInfo
	flushOuts := 0
	for suit := range uint8(4) {
		mine := h.GetSuitMask(suit)
		if mine == 0 {
			continue
		}
		switch bits.OnesCount16(all.GetSuitMask(suit)) {
		case 4:
			flushOuts = 9
			if nutFlush(mine, all.GetSuitMask(suit)) {
				info.Draws = append(info.Draws, NutFlushDraw)
			} else {
				info.Draws = append(info.Draws, FlushDraw)
			}
		case 3:
			if n == 3 {
				info.Draws = append(info.Draws, BackdoorFlush)
			}
		}
	}

	straightOuts := 0
	if poker.Classify(all) < poker.Straight {
		missing := straightMisses(all.StraightMask()) &^ straightMisses(board.StraightMask())
		switch {
		case openEnded(all.StraightMask(), missing):
			info.Draws = append(info.Draws, OpenEndedStraightDraw)
			straightOuts = 8
		case bits.OnesCount16(missing) >= 2:
			info.Draws = append(info.Draws, DoubleGutshot)
			straightOuts = 8
		case missing != 0:
			info.Draws = append(info.Draws, Gutshot)
			straightOuts = 4
		}
	}

	info.Outs = flushOuts + straightOuts
	if flushOuts > 0 && straightOuts > 0 {
		info.Draws = append(info.Draws, ComboDraw)
		info.Outs -= 2 // straight cards of the flush suit counted twice
	}

	top := board.GetRankMask()
	if hole.Low().Rank() > uint8(bits.Len16(top)-1) && poker.PairedRanks(all) == 0 {
		info.Draws = append(info.Draws, Overcards)
		if info.Outs == 0 {
			info.Outs = 6
		}
	}
	return info
}

// straightMisses returns, in StraightMask layout, each rank that would
// complete a five-card run in mask.
func straightMisses(mask uint16) uint16 {
	var out uint16
	for lo := 0; lo <= 9; lo++ {
		window := uint16(0x1F) << lo
		if bits.OnesCount16(mask&window) == 4 {
			out |= window &^ mask
		}
	}
	// The ace occupies bits 0 and 13; report it once.
	if out&1 != 0 {
		out = out&^1 | 1<<13
	}
	return out
}

// openEnded reports four consecutive ranks that either end completes.
func openEnded(mask, missing uint16) bool {
	run := mask & (mask >> 1) & (mask >> 2) & (mask >> 3)
	for lo := 0; lo <= 9; lo++ {
		if run&(1<<lo) == 0 || lo == 0 {
			continue
		}
		below, above := uint16(1)<<(lo-1), uint16(1)<<(lo+4)
		if lo-1 == 0 {
			below = 1 << 13
		}
		if missing&below != 0 && missing&above != 0 {
			return true
		}
	}
	return false
}

func nutFlush(mine, suited uint16) bool {
	for rank := int(poker.Ace); rank >= 0; rank-- {
		bit := uint16(1) << rank
		if suited&bit == 0 {
			return false
		}
		if mine&bit != 0 {
			return true
		}
	}
	return false
}
