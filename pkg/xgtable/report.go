package xgtable

import (
	"fmt"
	"strings"
)

// RenderLeagueTable renders the ranked table as a human readable text table,
// one row per team. The expected-points and expected-goals totals are
// coerced to integers for display; the full precision values live in the
// TeamRow and the database snapshot.
func RenderLeagueTable(rows []*TeamRow) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%4s %-20s %3s %4s %4s %4s %4s %4s %5s %4s %4s %5s\n",
		"Rank", "Team", "Pld", "Pts", "xPp", "xPxg", "GF", "GA", "GD", "xGF", "xGA", "Form"))

	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%4d %-20s %3d %4d %4d %4d %4d %4d %+5d %4d %4d %5d\n",
			row.Rank,
			row.Team,
			row.Matches,
			row.Points,
			int(row.XpProb),
			int(row.XpXg),
			row.GoalsFor,
			row.GoalsAgainst,
			row.GoalDifference,
			int(row.XgScored),
			int(row.XgConceded),
			row.Form))
	}

	return b.String()
}

// RenderPrediction renders a fixture prediction with its suggested results
func RenderPrediction(p *Prediction) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Predicted result: %s %.1f - %.1f %s\n",
		p.HomeTeam, p.PredictedHomeGoals, p.PredictedAwayGoals, p.AwayTeam))
	b.WriteString(fmt.Sprintf("Outcome probabilities: home %.1f%% draw %.1f%% away %.1f%%\n",
		p.HomeWinProbability*100, p.DrawProbability*100, p.AwayWinProbability*100))

	b.WriteString("Most likely results:\n")
	for _, s := range p.Suggestions {
		b.WriteString(fmt.Sprintf("  %d-%d (%.2f%% chance)\n", s.HomeGoals, s.AwayGoals, s.Probability))
	}

	return b.String()
}
