package utils

import "math"

// ToMinorUnits converts a major-unit amount to minor currency units
// (e.g. dollars to cents), rounding half up. The gateway only accepts
// integer minor units.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Floor(amount*100 + 0.5))
}

// SplitAmount computes the platform-commission split of a gross amount in
// minor units. The fee is rounded half up and the instructor payout is the
// remainder by subtraction, so the two parts always sum exactly to gross.
func SplitAmount(gross int64, commissionRate float64) (platformFee, instructorPayout int64) {
	platformFee = int64(math.Floor(float64(gross)*commissionRate + 0.5))
	instructorPayout = gross - platformFee
	return platformFee, instructorPayout
}
