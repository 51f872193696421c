package xgtable

import (
	"github.com/atgjack/prob"
)

// GoalMatrix is a square grid of joint scoreline probabilities indexed as
// [homeGoals][awayGoals] over 0..MaxGoals-1. After construction the cells
// are normalized to sum to 1, compensating for the truncated Poisson tail.
type GoalMatrix [][]float64

// OutcomeProbabilities computes the joint goal-count distribution for a match
// between two sides with the given Poisson goal rates, together with the
// aggregate home-win, draw and away-win probabilities.
//
// Rates at or below zero are clamped to the configured floor before use; a
// zero rate collapses the Poisson distribution to a point mass at zero goals
// which then breaks downstream division, and a negative rate is not a
// distribution at all.
//
// The matrix is normalized before the three outcome classes are summed, so
// homeWin+draw+awayWin is always 1 regardless of how much tail mass the
// truncation at maxGoals discards.
func OutcomeProbabilities(homeRate, awayRate float64, maxGoals int) (homeWin, draw, awayWin float64, matrix GoalMatrix) {
	homeRate = clampRate(homeRate)
	awayRate = clampRate(awayRate)

	homeDist := prob.Poisson{Mu: homeRate}
	awayDist := prob.Poisson{Mu: awayRate}

	matrix = make(GoalMatrix, maxGoals)
	total := 0.0
	for h := 0; h < maxGoals; h++ {
		matrix[h] = make([]float64, maxGoals)
		ph := homeDist.Pdf(float64(h))
		for a := 0; a < maxGoals; a++ {
			cell := ph * awayDist.Pdf(float64(a))
			matrix[h][a] = cell
			total += cell
		}
	}

	if total > 0 {
		for h := range matrix {
			for a := range matrix[h] {
				matrix[h][a] /= total
			}
		}
	}

	// Classify the normalized cells: lower triangle is a home win, the
	// diagonal a draw, the upper triangle an away win
	for h := range matrix {
		for a := range matrix[h] {
			switch {
			case h > a:
				homeWin += matrix[h][a]
			case h == a:
				draw += matrix[h][a]
			default:
				awayWin += matrix[h][a]
			}
		}
	}

	return homeWin, draw, awayWin, matrix
}

// clampRate floors a Poisson rate at the configured minimum
func clampRate(rate float64) float64 {
	if rate < Config.MinGoalRate {
		return Config.MinGoalRate
	}
	return rate
}

// HomeMarginals returns the per-goal-count probabilities for the home side,
// summing each row of the matrix
func (m GoalMatrix) HomeMarginals() []float64 {
	marginals := make([]float64, len(m))
	for h := range m {
		for a := range m[h] {
			marginals[h] += m[h][a]
		}
	}
	return marginals
}

// AwayMarginals returns the per-goal-count probabilities for the away side,
// summing each column of the matrix
func (m GoalMatrix) AwayMarginals() []float64 {
	if len(m) == 0 {
		return nil
	}
	marginals := make([]float64, len(m[0]))
	for h := range m {
		for a := range m[h] {
			marginals[a] += m[h][a]
		}
	}
	return marginals
}

// Total returns the summed probability mass of the matrix
func (m GoalMatrix) Total() float64 {
	total := 0.0
	for h := range m {
		for a := range m[h] {
			total += m[h][a]
		}
	}
	return total
}

// expectedCount collapses a marginal distribution into its probability
// weighted average goal count
func expectedCount(marginals []float64) float64 {
	sum := 0.0
	mass := 0.0
	for goals, p := range marginals {
		sum += float64(goals) * p
		mass += p
	}
	if mass == 0 {
		return 0
	}
	return sum / mass
}
