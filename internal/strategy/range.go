package strategy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/gtotrainer/poker"
)

// Range maps canonical hand keys ("AKs", "QQ") to a weight in (0, 1].
// Keys absent from the map have weight zero.
type Range map[string]float64

// ParseRange reads standard range notation. Parts are comma separated and
// may carry a weight suffix for mixed hands:
//
//	"TT+, AQs+, KQo, 22-66, A5s-A2s, A9o:0.5"
//
// Bare unpaired hands ("AK") cover both the suited and offsuit versions.
func ParseRange(notation string) (Range, error) {
	r := make(Range)
	for part := range strings.SplitSeq(notation, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		weight := 1.0
		if body, w, ok := strings.Cut(part, ":"); ok {
			v, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
			if err != nil || v <= 0 || v > 1 {
				return nil, fmt.Errorf("invalid weight in %q: want a number in (0,1]", part)
			}
			part, weight = strings.TrimSpace(body), v
		}
		keys, err := expand(part)
		if err != nil {
			return nil, fmt.Errorf("invalid range part %q: %w", part, err)
		}
		for _, k := range keys {
			r[k] = weight
		}
	}
	return r, nil
}

// MustParseRange is ParseRange for literals; it panics on error.
func MustParseRange(notation string) Range {
	r, err := ParseRange(notation)
	if err != nil {
		panic(err)
	}
	return r
}

// Weight returns how often the hand is in the range.
func (r Range) Weight(h poker.StartingHand) float64 {
	return r[h.Encode()]
}

// Combos counts the concrete two-card combinations in the range, weighted.
func (r Range) Combos() float64 {
	var n float64
	for k, w := range r {
		n += float64(poker.ComboCount(k)) * w
	}
	return n
}

// handPattern is one of "QQ", "AKs", "AKo" or "AK".
type handPattern struct {
	hi, lo uint8
	kind   byte // 0 for both, 's' or 'o'
}

func parsePattern(s string) (handPattern, error) {
	if len(s) < 2 || len(s) > 3 {
		return handPattern{}, fmt.Errorf("expected a hand like AKs, got %q", s)
	}
	a, err := poker.ParseRank(s[0])
	if err != nil {
		return handPattern{}, err
	}
	b, err := poker.ParseRank(s[1])
	if err != nil {
		return handPattern{}, err
	}
	p := handPattern{hi: max(a, b), lo: min(a, b)}
	if len(s) == 3 {
		p.kind = s[2] | 0x20
		if p.kind != 's' && p.kind != 'o' {
			return handPattern{}, fmt.Errorf("invalid suffix %q", s[2])
		}
		if p.hi == p.lo {
			return handPattern{}, fmt.Errorf("pairs cannot be suited or offsuit")
		}
	}
	return p, nil
}

func (p handPattern) keys() []string {
	hi, lo := string(poker.RankChar(p.hi)), string(poker.RankChar(p.lo))
	switch {
	case p.hi == p.lo:
		return []string{hi + lo}
	case p.kind == 0:
		return []string{hi + lo + "s", hi + lo + "o"}
	}
	return []string{hi + lo + string(p.kind)}
}

func expand(part string) ([]string, error) {
	if base, ok := strings.CutSuffix(part, "+"); ok {
		p, err := parsePattern(base)
		if err != nil {
			return nil, err
		}
		var out []string
		if p.hi == p.lo {
			for r := p.lo; r <= poker.Ace; r++ {
				out = append(out, handPattern{hi: r, lo: r}.keys()...)
			}
			return out, nil
		}
		for r := p.lo; r < p.hi; r++ {
			out = append(out, handPattern{hi: p.hi, lo: r, kind: p.kind}.keys()...)
		}
		return out, nil
	}

	if from, to, ok := strings.Cut(part, "-"); ok {
		a, err := parsePattern(strings.TrimSpace(from))
		if err != nil {
			return nil, err
		}
		b, err := parsePattern(strings.TrimSpace(to))
		if err != nil {
			return nil, err
		}
		var out []string
		switch {
		case a.hi == a.lo && b.hi == b.lo:
			for r := min(a.lo, b.lo); r <= max(a.lo, b.lo); r++ {
				out = append(out, handPattern{hi: r, lo: r}.keys()...)
			}
		case a.hi == b.hi && a.kind == b.kind && a.hi != a.lo && b.hi != b.lo:
			for r := min(a.lo, b.lo); r <= max(a.lo, b.lo); r++ {
				out = append(out, handPattern{hi: a.hi, lo: r, kind: a.kind}.keys()...)
			}
		default:
			return nil, fmt.Errorf("range ends must share a high card and suffix")
		}
		return out, nil
	}

	p, err := parsePattern(part)
	if err != nil {
		return nil, err
	}
	return p.keys(), nil
}
