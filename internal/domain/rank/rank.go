// Package rank turns a score into the user-facing rank label.
package rank

const Baseline = "Chulbul Pandey"

type tier struct {
	above float64
	label string
}

// Highest tier first. A score must strictly exceed the percentage to earn a tier.
var tiers = []tier{
	{95, "Bahubali"},
	{80, "Rocky Bhai"},
	{60, "Pushpa Bahu"},
	{40, "Mass"},
	{20, "Singham"},
}

// Calculate returns the label for score as a percentage of maxScore.
func Calculate(score, maxScore int) string {
	if maxScore <= 0 {
		return Baseline
	}
	pct := float64(score) / float64(maxScore) * 100
	for _, t := range tiers {
		if pct > t.above {
			return t.label
		}
	}
	return Baseline
}
