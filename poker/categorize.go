package poker

// HoleCardCategory is a coarse preflop strength bucket.
type HoleCardCategory string

const (
	CategoryPremium HoleCardCategory = "Premium"
	CategoryStrong  HoleCardCategory = "Strong"
	CategoryMedium  HoleCardCategory = "Medium"
	CategoryWeak    HoleCardCategory = "Weak"
	CategoryTrash   HoleCardCategory = "Trash"
	CategoryUnknown HoleCardCategory = "Unknown"
)

// Categorize buckets a starting hand.
// Premium: JJ+, AK. Strong: TT, AQ, AJ. Medium: 77-99, suited broadway.
// Weak: 22-66, suited connectors and one-gappers. Trash: the rest.
func (h StartingHand) Categorize() HoleCardCategory {
	if !h.Valid() {
		return CategoryUnknown
	}
	big := rankValue(h.High().Rank())
	small := rankValue(h.Low().Rank())
	suited := h.Suited()
	pair := small == big

	switch {
	case pair && small >= 11, small == 13 && big == 14:
		return CategoryPremium
	case pair && small == 10, big == 14 && (small == 12 || small == 11):
		return CategoryStrong
	case pair && small >= 7, suited && small >= 10:
		return CategoryMedium
	case pair, suited && big-small <= 2:
		return CategoryWeak
	}
	return CategoryTrash
}

// Rationale is a short sentence describing how a category plays preflop.
func (c HoleCardCategory) Rationale() string {
	switch c {
	case CategoryPremium:
		return "premium holding that plays for stacks and wants to build the pot"
	case CategoryStrong:
		return "strong holding that dominates most opening ranges"
	case CategoryMedium:
		return "medium-strength holding whose value depends on position"
	case CategoryWeak:
		return "speculative holding that needs position and implied odds"
	case CategoryTrash:
		return "weak holding that loses money out of position"
	default:
		return "unclassified holding"
	}
}

func rankValue(rank uint8) int {
	return int(rank) + 2
}
