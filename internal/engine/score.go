package engine

// Award computes the points for one resolved word: the base award, plus the
// fast-resolution bonus when more than the threshold remained on the clock.
func Award(rules Rules, remainingSeconds int) int {
	points := rules.BasePoints
	if remainingSeconds > rules.BonusThresholdSeconds {
		points += rules.BonusPoints
	}
	return points
}
