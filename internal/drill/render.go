package drill

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lox/gtotrainer/internal/game"
	"github.com/lox/gtotrainer/internal/tracker"
	"github.com/lox/gtotrainer/internal/trainer"
)

// RenderSpot describes a decision point and the legal answers.
func RenderSpot(spot trainer.Spot) string {
	s := spot.Situation
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", HeaderStyle.Render(fmt.Sprintf(" Hand %s #%d ", shortID(spot.HandID), spot.Seq)))
	fmt.Fprintf(&sb, "%s %s, %d-handed, holding %s", SpotStyle.Render(s.Stage.String()), s.Position, s.NumPlayers, Cards(s.Hand.String()))
	if s.Board != 0 {
		fmt.Fprintf(&sb, " on %s", Cards(s.Board.String()))
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Pot %.1fBB, stack %.1fBB", s.Pot, s.Stack)
	if owed := s.ToCall(); owed > 0 {
		fmt.Fprintf(&sb, ", facing %s to %.1fBB (%.1fBB to call)", s.Facing, s.CurrentBet, owed)
	}
	sb.WriteString("\n")
	sb.WriteString(ActionsStyle.Render("Actions: " + RenderAvailable(spot.Available)))
	sb.WriteString("\n")
	return sb.String()
}

// RenderAvailable lists legal kinds with their size bounds.
func RenderAvailable(a game.Available) string {
	parts := make([]string, 0, 6)
	for _, k := range a.Kinds() {
		switch k {
		case game.Bet:
			parts = append(parts, fmt.Sprintf("bet <%.1f-%.1f>", game.MinBet, a.AllInSize))
		case game.Raise:
			parts = append(parts, fmt.Sprintf("raise <%.1f-%.1f>", a.MinRaise, a.AllInSize))
		case game.AllIn:
			parts = append(parts, fmt.Sprintf("all-in (%.1f)", a.AllInSize))
		default:
			parts = append(parts, k.String())
		}
	}
	return strings.Join(parts, ", ")
}

// RenderResult shows the grade of one answer.
func RenderResult(res trainer.Result) string {
	rec := res.Record
	var sb strings.Builder
	if rec.IsCorrect {
		sb.WriteString(CorrectStyle.Render("✓ Correct"))
	} else {
		sb.WriteString(MistakeStyle.Render("✗ Mistake"))
	}
	if rec.EVKnown {
		fmt.Fprintf(&sb, "  EV %+.2fBB", rec.EV)
		if rec.EVLoss > 0 {
			fmt.Fprintf(&sb, ", lost %.2fBB", rec.EVLoss)
		}
	}
	sb.WriteString("\n")
	sb.WriteString(rec.Feedback)
	sb.WriteString("\n")
	if len(res.Ranking.Candidates) > 0 {
		sb.WriteString(InfoStyle.Render(renderRanking(res)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderRanking(res trainer.Result) string {
	const show = 4
	var parts []string
	for i, c := range res.Ranking.Candidates {
		if i == show {
			break
		}
		parts = append(parts, fmt.Sprintf("%s %+.2f", c.Action, c.EV))
	}
	return "EV: " + strings.Join(parts, " | ")
}

// RenderSummary shows one session.
func RenderSummary(sum tracker.SessionSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", HeaderStyle.Render(" Session "+shortID(sum.SessionID)+" "))
	fmt.Fprintf(&sb, "Hands %d, decisions %d, correct %d (%.1f%%)\n",
		sum.TotalHands, sum.TotalDecisions, sum.CorrectCount, 100*sum.Accuracy())
	fmt.Fprintf(&sb, "Net EV %+.2fBB, EV given up %.2fBB\n", sum.NetEV, sum.EVLoss)
	for _, stage := range game.BettingRounds {
		if t, ok := sum.Stages[stage]; ok && t.Total > 0 {
			fmt.Fprintf(&sb, "  %-8s %d/%d (%.0f%%)\n", stage, t.Correct, t.Total, 100*t.Accuracy())
		}
	}
	return sb.String()
}

// RenderAllTime shows aggregate stats across sessions.
func RenderAllTime(stats tracker.AllTimeStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", HeaderStyle.Render(" All time "))
	if stats.Sessions == 0 {
		sb.WriteString(InfoStyle.Render("No completed sessions yet."))
		sb.WriteString("\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Sessions %d, hands %d, decisions %d, accuracy %.1f%%\n",
		stats.Sessions, stats.TotalHands, stats.TotalDecisions, 100*stats.Accuracy)
	lo, hi := stats.EV.ConfidenceInterval95()
	fmt.Fprintf(&sb, "Net EV %+.2fBB (per decision %+.3f, 95%% CI %+.3f..%+.3f)\n", stats.NetEV, stats.EV.Mean(), lo, hi)

	stages := make([]game.Stage, 0, len(stats.Stages))
	for stage := range stats.Stages {
		stages = append(stages, stage)
	}
	slices.Sort(stages)
	for _, stage := range stages {
		t := stats.Stages[stage]
		fmt.Fprintf(&sb, "  %-8s %d/%d (%.0f%%)\n", stage, t.Correct, t.Total, 100*t.Accuracy())
	}
	if stats.Best != nil {
		fmt.Fprintf(&sb, "Best session %s: %.1f%% over %d decisions\n",
			shortID(stats.Best.SessionID), 100*stats.Best.Accuracy(), stats.Best.TotalDecisions)
	}
	if len(stats.AccuracyTrend) > 0 {
		trend := make([]string, len(stats.AccuracyTrend))
		for i, a := range stats.AccuracyTrend {
			trend[i] = fmt.Sprintf("%.0f", 100*a)
		}
		fmt.Fprintf(&sb, "Accuracy trend: %s\n", strings.Join(trend, " → "))
	}
	return sb.String()
}

func shortID(id string) string {
	if len(id) > 10 {
		return id[len(id)-10:]
	}
	return id
}
