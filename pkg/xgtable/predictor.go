package xgtable

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/richard-senior/xgtable/internal/logger"
)

// ErrTeamNotFound is returned when a prediction is requested for a team
// identifier absent from the aggregated table. There is no safe default
// prediction for an unknown team, so this is always surfaced to the caller.
var ErrTeamNotFound = errors.New("team not found in league table")

// Suggestion is one candidate exact scoreline with its probability
// expressed as a percentage
type Suggestion struct {
	HomeGoals   int     `json:"homeGoals"`
	AwayGoals   int     `json:"awayGoals"`
	Probability float64 `json:"probability"`
}

// Prediction holds the predicted scoreline for a hypothetical fixture plus
// the most likely exact results. Ephemeral: produced and consumed within a
// single PredictFixture invocation.
type Prediction struct {
	HomeTeam string `json:"homeTeam"`
	AwayTeam string `json:"awayTeam"`

	// Probability-weighted average goal counts, rounded to one decimal
	// for display. The suggestion ranking never uses these rounded values
	// as probabilities; it recomputes from the full-precision matrix.
	PredictedHomeGoals float64 `json:"predictedHomeGoals"`
	PredictedAwayGoals float64 `json:"predictedAwayGoals"`

	HomeWinProbability float64 `json:"homeWinProbability"`
	DrawProbability    float64 `json:"drawProbability"`
	AwayWinProbability float64 `json:"awayWinProbability"`

	Suggestions []Suggestion `json:"suggestions"`
}

// PredictFixture predicts the scoreline distribution of a hypothetical match
// between two teams in the aggregated table.
//
// The matchup rates combine each side's per-match xG scored with what the
// opposition concedes per match, shifted by the configured home and away
// adjustments. The adjustments are empirical constants; the resulting rates
// are floored before they reach the Poisson engine because a non-positive
// rate is statistically invalid input.
func PredictFixture(table []*TeamRow, homeTeam, awayTeam string) (*Prediction, error) {
	homeRow := FindTeamRow(table, homeTeam)
	if homeRow == nil {
		return nil, fmt.Errorf("home team %q: %w", homeTeam, ErrTeamNotFound)
	}
	awayRow := FindTeamRow(table, awayTeam)
	if awayRow == nil {
		return nil, fmt.Errorf("away team %q: %w", awayTeam, ErrTeamNotFound)
	}
	if homeRow.Matches == 0 || awayRow.Matches == 0 {
		return nil, fmt.Errorf("cannot predict %s vs %s: a side has no played matches", homeTeam, awayTeam)
	}

	homeRate := homeRow.XgScored/float64(homeRow.Matches) + awayRow.XgConceded/float64(awayRow.Matches) + Config.HomeRateAdjustment
	awayRate := awayRow.XgScored/float64(awayRow.Matches) + homeRow.XgConceded/float64(homeRow.Matches) + Config.AwayRateAdjustment

	homeRate = clampRate(homeRate)
	awayRate = clampRate(awayRate)
	logger.Debug("Matchup rates", homeTeam, homeRate, awayTeam, awayRate)

	homeWin, draw, awayWin, matrix := OutcomeProbabilities(homeRate, awayRate, Config.MaxGoals)

	predictedHome := roundTo(expectedCount(matrix.HomeMarginals()), 1)
	predictedAway := roundTo(expectedCount(matrix.AwayMarginals()), 1)

	return &Prediction{
		HomeTeam:           homeTeam,
		AwayTeam:           awayTeam,
		PredictedHomeGoals: predictedHome,
		PredictedAwayGoals: predictedAway,
		HomeWinProbability: homeWin,
		DrawProbability:    draw,
		AwayWinProbability: awayWin,
		Suggestions:        SuggestResults(matrix, predictedHome, predictedAway, Config.SuggestionCount),
	}, nil
}

// SuggestResults ranks every cell of the goal matrix as a candidate exact
// scoreline: by probability descending, ties broken by ascending Manhattan
// distance from the rounded predicted scoreline. The top n are reported with
// probabilities as percentages rounded to two decimals.
func SuggestResults(matrix GoalMatrix, predictedHome, predictedAway float64, n int) []Suggestion {
	type candidate struct {
		home     int
		away     int
		prob     float64
		distance float64
	}

	var candidates []candidate
	for h := range matrix {
		for a := range matrix[h] {
			candidates = append(candidates, candidate{
				home:     h,
				away:     a,
				prob:     matrix[h][a],
				distance: math.Abs(predictedHome-float64(h)) + math.Abs(predictedAway-float64(a)),
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].prob != candidates[j].prob {
			return candidates[i].prob > candidates[j].prob
		}
		return candidates[i].distance < candidates[j].distance
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}

	suggestions := make([]Suggestion, 0, len(candidates))
	for _, c := range candidates {
		suggestions = append(suggestions, Suggestion{
			HomeGoals:   c.home,
			AwayGoals:   c.away,
			Probability: roundTo(c.prob*100, 2),
		})
	}
	return suggestions
}

// roundTo rounds a value to the given number of decimal places
func roundTo(value float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(value*shift) / shift
}
