package xgtable

import (
	"github.com/atgjack/prob"
)

// ExpectedPointsFromProbabilities converts win/draw/loss probabilities into
// expected points for each side: 3 per win plus 1 per draw. Always in [0,3].
func ExpectedPointsFromProbabilities(homeWin, draw, awayWin float64) (homeXp, awayXp float64) {
	homeXp = 3*homeWin + draw
	awayXp = 3*awayWin + draw
	return homeXp, awayXp
}

// ExpectedPointsFromXg is the second, independent expected-points estimator.
// Each side's win probability is the cumulative Poisson probability of
// scoring at least one more goal than the opponent would be expected to
// concede: the distribution with the conceded rate as mean, evaluated at
// scored-1. The draw probability is whatever mass remains.
func ExpectedPointsFromXg(homeScored, awayScored, homeConceded, awayConceded float64) (homeXp, awayXp float64) {
	homeWin := poissonCdf(homeScored-1, homeConceded)
	awayWin := poissonCdf(awayScored-1, awayConceded)
	draw := 1 - homeWin - awayWin

	homeXp = 3*homeWin + draw
	awayXp = 3*awayWin + draw
	return homeXp, awayXp
}

// poissonCdf evaluates the Poisson cumulative distribution with the given
// mean at x. A cdf evaluated below its support is zero by definition; the
// x < 0 case is handled here explicitly rather than trusting the library,
// because it is reached whenever a side's xG is below one.
func poissonCdf(x, mean float64) float64 {
	if x < 0 {
		return 0
	}
	dist := prob.Poisson{Mu: clampRate(mean)}
	return dist.Cdf(x)
}
