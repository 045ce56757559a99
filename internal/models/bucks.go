package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AwardAmount converts finalized hours into whole ʻĀina Bucks at the event's
// rate. Rounding is pinned to half-up: 2.5h at 15 bucks/hour yields 38.
func AwardAmount(hoursWorked float64, bucksPerHour int64) int64 {
	return decimal.NewFromFloat(hoursWorked).
		Mul(decimal.NewFromInt(bucksPerHour)).
		Round(0).
		IntPart()
}

// EstimatedHours is the advisory elapsed-hours figure returned at check-out,
// rounded to one decimal place. The admin sets the authoritative hours at
// award time, which may differ.
func EstimatedHours(checkIn, checkOut time.Time) float64 {
	hours := decimal.NewFromFloat(checkOut.Sub(checkIn).Hours()).Round(1)
	f, _ := hours.Float64()
	return f
}
