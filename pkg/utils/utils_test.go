package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateInstallmentAmount(t *testing.T) {
	tests := []struct {
		name     string
		total    decimal.Decimal
		count    int
		expected decimal.Decimal
	}{
		{
			name:     "even split",
			total:    decimal.NewFromInt(300),
			count:    3,
			expected: decimal.NewFromInt(100),
		},
		{
			name:     "uneven split is rounded to cents",
			total:    decimal.NewFromInt(100),
			count:    3,
			expected: decimal.RequireFromString("33.33"),
		},
		{
			name:     "single installment",
			total:    decimal.RequireFromString("1250.50"),
			count:    1,
			expected: decimal.RequireFromString("1250.50"),
		},
		{
			name:     "zero count",
			total:    decimal.NewFromInt(100),
			count:    0,
			expected: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInstallmentAmount(tt.total, tt.count)
			assert.True(t, result.Equal(tt.expected),
				"Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestCalculateDueDate(t *testing.T) {
	baseDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		number      int
		daysBetween int
		expected    time.Time
	}{
		{
			name:        "first installment is due on start date",
			number:      1,
			daysBetween: 30,
			expected:    baseDate,
		},
		{
			name:        "second installment",
			number:      2,
			daysBetween: 30,
			expected:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "third installment crosses leap february",
			number:      3,
			daysBetween: 30,
			expected:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "zero spacing",
			number:      5,
			daysBetween: 0,
			expected:    baseDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateDueDate(baseDate, tt.number, tt.daysBetween)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestPeriodStarts(t *testing.T) {
	// Thursday
	now := time.Date(2024, 5, 16, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC), StartOfDay(now))
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), StartOfWeek(now))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(now))

	sunday := time.Date(2024, 5, 19, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), StartOfWeek(sunday))
}

func TestIsDateOverdue(t *testing.T) {
	now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsDateOverdue(time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC), now))
	assert.False(t, IsDateOverdue(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), now), "due today is not overdue")
	assert.False(t, IsDateOverdue(time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC), now))
}

func TestIsValidAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected bool
	}{
		{name: "whole amount", amount: "1500", expected: true},
		{name: "cents", amount: "1250.50", expected: true},
		{name: "trailing zeros past cents", amount: "10.500", expected: true},
		{name: "sub-cent fraction", amount: "0.004", expected: false},
		{name: "three decimals", amount: "100.125", expected: false},
		{name: "zero", amount: "0", expected: false},
		{name: "negative", amount: "-5", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidAmount(decimal.RequireFromString(tt.amount)))
		})
	}
}
