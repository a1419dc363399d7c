package badges

// BaseThreshold is the first streak length that awards a badge. Each later
// tier needs another BaseThreshold correct answers.
const BaseThreshold = 5

// Thresholds returns the streak lengths that award a badge, in order.
func Thresholds() []int {
	tiers := AllTiers()
	out := make([]int, len(tiers))
	for i, t := range tiers {
		out[i] = t.Threshold()
	}
	return out
}

// TierForStreak returns the tier awarded when a streak lands exactly on
// length. Lengths between thresholds, and beyond the last one, award nothing.
func TierForStreak(length int) (Tier, bool) {
	for _, t := range AllTiers() {
		if t.Threshold() == length {
			return t, true
		}
	}
	return "", false
}

// NextThreshold returns the next badge threshold above the current streak,
// or 0 once every tier has been passed.
func NextThreshold(current int) int {
	for _, th := range Thresholds() {
		if th > current {
			return th
		}
	}
	return 0
}
