package xgtable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeProbabilitiesKnownValues(t *testing.T) {
	// With a large goal range the truncation is negligible, so the 0-0 cell
	// of the normalized matrix is e^-(h+a) for rates h and a
	_, _, _, matrix := OutcomeProbabilities(1.5, 1.0, 20)
	assert.InDelta(t, math.Exp(-2.5), matrix[0][0], 1e-6)

	// The home marginal mean recovers the home rate
	assert.InDelta(t, 1.5, expectedCount(matrix.HomeMarginals()), 1e-6)
	assert.InDelta(t, 1.0, expectedCount(matrix.AwayMarginals()), 1e-6)
}

func TestOutcomeProbabilitiesSumToOne(t *testing.T) {
	homeWin, draw, awayWin, matrix := OutcomeProbabilities(1.5, 1.0, Config.MaxGoals)

	assert.InDelta(t, 1.0, matrix.Total(), 1e-9, "normalized matrix should sum to 1")
	assert.InDelta(t, 1.0, homeWin+draw+awayWin, 1e-9, "outcome classes should partition the matrix")

	assert.Greater(t, homeWin, awayWin, "the side with the higher rate should be favourite")
}

func TestOutcomeProbabilitiesMatrixShape(t *testing.T) {
	_, _, _, matrix := OutcomeProbabilities(1.2, 0.9, Config.MaxGoals)

	if len(matrix) != Config.MaxGoals {
		t.Fatalf("expected %d rows, got %d", Config.MaxGoals, len(matrix))
	}
	for h := range matrix {
		if len(matrix[h]) != Config.MaxGoals {
			t.Fatalf("expected %d columns in row %d, got %d", Config.MaxGoals, h, len(matrix[h]))
		}
		for a := range matrix[h] {
			assert.GreaterOrEqual(t, matrix[h][a], 0.0)
			assert.LessOrEqual(t, matrix[h][a], 1.0)
		}
	}
}

func TestOutcomeProbabilitiesClampsDegenerateRates(t *testing.T) {
	// Zero and negative rates must not panic or produce NaNs
	for _, rate := range []float64{0.0, -1.0, -100.0} {
		homeWin, draw, awayWin, matrix := OutcomeProbabilities(rate, rate, Config.MaxGoals)
		assert.InDelta(t, 1.0, matrix.Total(), 1e-9)
		assert.InDelta(t, 1.0, homeWin+draw+awayWin, 1e-9)
		// With both rates clamped to the same tiny floor, 0-0 dominates
		assert.Greater(t, draw, 0.9)
	}
}

func TestOutcomeProbabilitiesSymmetry(t *testing.T) {
	homeWin, draw, awayWin, _ := OutcomeProbabilities(1.3, 1.3, Config.MaxGoals)
	assert.InDelta(t, homeWin, awayWin, 1e-9, "equal rates should give equal win probabilities")
	assert.Greater(t, draw, 0.0)
}

func TestMarginals(t *testing.T) {
	_, _, _, matrix := OutcomeProbabilities(1.8, 0.7, Config.MaxGoals)

	home := matrix.HomeMarginals()
	away := matrix.AwayMarginals()

	assert.Len(t, home, Config.MaxGoals)
	assert.Len(t, away, Config.MaxGoals)

	sumHome, sumAway := 0.0, 0.0
	for i := range home {
		sumHome += home[i]
		sumAway += away[i]
	}
	assert.InDelta(t, 1.0, sumHome, 1e-9)
	assert.InDelta(t, 1.0, sumAway, 1e-9)

	// The higher-rate side should expect more goals
	assert.Greater(t, expectedCount(home), expectedCount(away))
}

func TestClampRate(t *testing.T) {
	assert.Equal(t, Config.MinGoalRate, clampRate(0.0))
	assert.Equal(t, Config.MinGoalRate, clampRate(-5.0))
	assert.Equal(t, 1.5, clampRate(1.5))
}

func TestExpectedCountEmpty(t *testing.T) {
	assert.Equal(t, 0.0, expectedCount(nil))
	assert.Equal(t, 0.0, expectedCount([]float64{0, 0, 0}))
}
