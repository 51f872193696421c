package xgtable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedPointsFromProbabilities(t *testing.T) {
	homeXp, awayXp := ExpectedPointsFromProbabilities(0.5, 0.3, 0.2)
	assert.InDelta(t, 1.8, homeXp, 1e-9)
	assert.InDelta(t, 0.9, awayXp, 1e-9)

	// Certain home win
	homeXp, awayXp = ExpectedPointsFromProbabilities(1.0, 0.0, 0.0)
	assert.Equal(t, 3.0, homeXp)
	assert.Equal(t, 0.0, awayXp)

	// Certain draw
	homeXp, awayXp = ExpectedPointsFromProbabilities(0.0, 1.0, 0.0)
	assert.Equal(t, 1.0, homeXp)
	assert.Equal(t, 1.0, awayXp)
}

func TestExpectedPointsFromXgBounds(t *testing.T) {
	cases := []struct {
		name                                           string
		homeScored, awayScored, homeConceded, awayConceded float64
	}{
		{"balanced", 1.2, 1.2, 1.2, 1.2},
		{"home dominant", 2.5, 0.4, 0.4, 2.5},
		{"away dominant", 0.4, 2.5, 2.5, 0.4},
		{"all zero", 0, 0, 0, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			homeXp, awayXp := ExpectedPointsFromXg(c.homeScored, c.awayScored, c.homeConceded, c.awayConceded)
			assert.GreaterOrEqual(t, homeXp, 0.0)
			assert.LessOrEqual(t, homeXp, 3.0)
			assert.GreaterOrEqual(t, awayXp, 0.0)
			assert.LessOrEqual(t, awayXp, 3.0)
		})
	}
}

func TestPoissonCdfKnownValues(t *testing.T) {
	// P(X <= 0) for mean 1 is e^-1; P(X <= 1) adds the pmf at 1, also e^-1
	assert.InDelta(t, math.Exp(-1), poissonCdf(0, 1.0), 1e-9)
	assert.InDelta(t, 2*math.Exp(-1), poissonCdf(1, 1.0), 1e-9)
	assert.InDelta(t, math.Exp(-2.5), poissonCdf(0, 2.5), 1e-9)
}

func TestPoissonCdfBelowSupport(t *testing.T) {
	// xG below one evaluates the cdf at a negative point, which is zero mass
	assert.Equal(t, 0.0, poissonCdf(-1, 1.5))
	assert.Equal(t, 0.0, poissonCdf(-0.5, 0.37))
}

func TestPoissonCdfMonotonic(t *testing.T) {
	prev := 0.0
	for x := 0.0; x < 5; x++ {
		v := poissonCdf(x, 1.5)
		assert.GreaterOrEqual(t, v, prev)
		assert.LessOrEqual(t, v, 1.0)
		prev = v
	}
}

func TestExpectedPointsFromXgZeroScoredSide(t *testing.T) {
	// A side with zero xG scored has zero win probability from this estimator
	homeXp, awayXp := ExpectedPointsFromXg(0, 2.0, 2.0, 0)
	// homeWin is 0 so home expected points are exactly the draw mass
	awayWin := poissonCdf(1, 0)
	draw := 1 - awayWin
	assert.InDelta(t, draw, homeXp, 1e-9)
	assert.InDelta(t, 3*awayWin+draw, awayXp, 1e-9)
}
