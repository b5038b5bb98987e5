package app

import "time"

// Scoring for quiz slides: a correct answer earns a base amount plus a
// bonus proportional to the fraction of the time limit still remaining
// at submission. Remaining time is measured server-side from the slide's
// activation stamp, so a manipulated client countdown cannot inflate the
// bonus.
const (
	scoreBase  = 500
	scoreBonus = 500
)

func scoreAnswer(correct bool, remaining, limit time.Duration) int {
	if !correct {
		return 0
	}
	if limit <= 0 {
		return scoreBase
	}
	frac := float64(remaining) / float64(limit)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return scoreBase + int(float64(scoreBonus)*frac)
}
