package parking

import "time"

const (
	HoursInHalfDay = 12
	FeePerHalfDay  = 2000
	HourlyFee      = 300
)

// ComputeFee charges FeePerHalfDay for every completed 12-hour block and
// HourlyFee for each remaining hour, with the remainder capped at one
// half-day charge.
func ComputeFee(hours int) int {
	if hours <= 0 {
		return 0
	}
	halfDays := hours / HoursInHalfDay
	remainder := hours % HoursInHalfDay
	return halfDays*FeePerHalfDay + min(HourlyFee*remainder, FeePerHalfDay)
}

// BillableHours rounds the stay up to whole hours at millisecond precision.
// A departure before arrival bills zero hours.
func BillableHours(arrival, departure time.Time) int {
	elapsed := departure.Sub(arrival).Milliseconds()
	if elapsed <= 0 {
		return 0
	}
	hourMs := time.Hour.Milliseconds()
	return int((elapsed + hourMs - 1) / hourMs)
}
