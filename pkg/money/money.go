// Package money pins down the rounding rules for monetary amounts and
// ratings. Amounts are float64 throughout the system; every fee-boundary
// computation must pass through Round2 so two call sites can never disagree
// on the cents.
package money

import "math"

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to 1 decimal place, half away from zero. Used for rating
// averages.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// PercentOf returns pct percent of amount, rounded to 2 decimals.
func PercentOf(amount, pct float64) float64 {
	return Round2(amount * pct / 100)
}
