package service

import (
	"time"

	"buybizz/internal/repository"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// GrowthPercent is (this-last)/last*100 rounded to two places. With nothing
// last month it is 100 if anything sold this month and 0 otherwise.
func GrowthPercent(thisMonth, lastMonth decimal.Decimal) float64 {
	if lastMonth.IsZero() {
		if thisMonth.IsPositive() {
			return 100
		}
		return 0
	}
	return thisMonth.Sub(lastMonth).Div(lastMonth).Mul(hundred).Round(2).InexactFloat64()
}

// monthRanges returns the calendar month containing now and the one before,
// in UTC.
func monthRanges(now time.Time) (current, previous repository.TimeRange) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	current = repository.TimeRange{From: start, To: start.AddDate(0, 1, 0)}
	previous = repository.TimeRange{From: start.AddDate(0, -1, 0), To: start}
	return current, previous
}
