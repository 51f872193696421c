package xgtable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLeagueTable(t *testing.T) {
	matches := twoTeamSeason(t)
	table := AggregateTeamStats(matches, "2425")

	out := RenderLeagueTable(table)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3, "header plus one line per team")

	assert.Contains(t, lines[0], "Rank")
	assert.Contains(t, lines[0], "Form")
	assert.Contains(t, lines[1], "Arsenal")
	assert.Contains(t, lines[2], "Wolves")
}

func TestRenderLeagueTableEmpty(t *testing.T) {
	out := RenderLeagueTable([]*TeamRow{})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 1, "an empty table is just the header")
}

func TestRenderPrediction(t *testing.T) {
	p := &Prediction{
		HomeTeam:           "Arsenal",
		AwayTeam:           "Wolves",
		PredictedHomeGoals: 2.1,
		PredictedAwayGoals: 0.9,
		HomeWinProbability: 0.6,
		DrawProbability:    0.25,
		AwayWinProbability: 0.15,
		Suggestions: []Suggestion{
			{HomeGoals: 2, AwayGoals: 1, Probability: 12.34},
		},
	}

	out := RenderPrediction(p)
	assert.Contains(t, out, "Arsenal 2.1 - 0.9 Wolves")
	assert.Contains(t, out, "home 60.0%")
	assert.Contains(t, out, "2-1 (12.34% chance)")
}
