package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculateInstallmentAmount splits total evenly over count installments.
// Formula: Total / Count, rounded to 2 decimal places with no correction
// of the remainder across the set.
func CalculateInstallmentAmount(total decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}

// IsValidAmount reports whether amount is positive and fits in two decimal places.
func IsValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Round(2))
}

// CalculateDueDate returns the due date of the n-th installment (1-based).
// Installment 1 is due on the start date itself.
func CalculateDueDate(startDate time.Time, installmentNumber, daysBetween int) time.Time {
	return startDate.AddDate(0, 0, daysBetween*(installmentNumber-1))
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Monday of t's week at midnight.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// StartOfMonth returns the first day of t's month at midnight.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// IsDateOverdue reports whether dueDate falls before the day of now.
func IsDateOverdue(dueDate, now time.Time) bool {
	return dueDate.Before(StartOfDay(now))
}
