package ledger

import "math"

// FiveSenRound rounds a monetary amount to the nearest 5 sen, following the
// Malaysian cash rounding convention: a final cent digit of 0-2 rounds down
// to the multiple of 10, 3-7 rounds to 5, and 8-9 rounds up to the next
// multiple of 10. Amounts already ending in 0 or 5 sen are unchanged.
func FiveSenRound(amount float64) float64 {
	cents := int64(math.Round(amount * 100))
	last := cents % 10
	switch {
	case last <= 2:
		cents -= last
	case last <= 7:
		cents += 5 - last
	default:
		cents += 10 - last
	}
	return float64(cents) / 100
}

// RoundingAdjustment returns the signed adjustment the 5-sen rule applies to
// the given amount. Zero when the amount already sits on a 5-sen boundary.
func RoundingAdjustment(amount float64) float64 {
	return FiveSenRound(amount) - amount
}

// round2 rounds to two decimal places (whole sen).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
