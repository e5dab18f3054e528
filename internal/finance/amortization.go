// Package finance holds the pure calculation helpers used by loan,
// receivable and income views: amortized payments, frequency normalization
// and due-date classification. Everything here is deterministic and
// stateless; amounts are not rounded unless a function says so.
package finance

import (
	"math"
	"time"
)

// MonthlyPayment computes the fixed monthly payment that fully repays
// principal plus accrued interest over termMonths, using the standard
// amortizing-loan formula
//
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)
//
// where r is the monthly rate and n the term in months.
//
// A non-positive principal or term yields 0: no payment obligation is
// computable. A zero rate falls back to a straight-line split. The result is
// not rounded; callers round for display only.
func MonthlyPayment(principal, annualRatePercent float64, termMonths int) float64 {
	if principal <= 0 || termMonths <= 0 {
		return 0
	}

	r := annualRatePercent / 100 / 12
	if r == 0 {
		return principal / float64(termMonths)
	}

	factor := math.Pow(1+r, float64(termMonths))
	return principal * r * factor / (factor - 1)
}

// TotalInterest is the interest paid over the whole term.
func TotalInterest(principal, annualRatePercent float64, termMonths int) float64 {
	payment := MonthlyPayment(principal, annualRatePercent, termMonths)
	if payment == 0 {
		return 0
	}
	return payment*float64(termMonths) - principal
}

// SchedulePeriod is one row of a generated amortization schedule.
// Monetary fields are rounded to cents.
type SchedulePeriod struct {
	Period           int
	DueDate          time.Time
	Principal        float64
	Interest         float64
	Total            float64
	RemainingBalance float64
}

// Schedule generates the full per-period breakdown for a fixed-payment loan.
// The first payment falls one month after start. The last period absorbs the
// accumulated rounding drift so the balance lands on exactly zero.
func Schedule(principal, annualRatePercent float64, termMonths int, start time.Time) []SchedulePeriod {
	payment := MonthlyPayment(principal, annualRatePercent, termMonths)
	if payment == 0 {
		return nil
	}

	r := annualRatePercent / 100 / 12
	remaining := principal

	periods := make([]SchedulePeriod, 0, termMonths)
	for period := 1; period <= termMonths; period++ {
		interest := roundCents(remaining * r)
		principalPart := roundCents(payment - interest)

		if period == termMonths {
			principalPart = roundCents(remaining)
		}

		remaining = roundCents(remaining - principalPart)
		if remaining < 0 {
			remaining = 0
		}

		periods = append(periods, SchedulePeriod{
			Period:           period,
			DueDate:          start.AddDate(0, period, 0),
			Principal:        principalPart,
			Interest:         interest,
			Total:            roundCents(principalPart + interest),
			RemainingBalance: remaining,
		})
	}

	return periods
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
