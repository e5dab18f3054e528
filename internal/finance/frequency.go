package finance

import "github.com/centsible/centsible-go/internal/domain"

// Payment frequencies accepted by the backend.
const (
	FrequencyWeekly    = "weekly"
	FrequencyBiWeekly  = "bi-weekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyYearly    = "yearly"
)

// ToMonthlyEquivalent converts an amount tagged with a payment frequency into
// its monthly-equivalent figure. An unrecognized frequency is treated as
// already monthly — an explicit fallback, not a silent bug.
func ToMonthlyEquivalent(amount float64, frequency string) float64 {
	switch frequency {
	case FrequencyWeekly:
		return amount * 4.33
	case FrequencyBiWeekly:
		return amount * 2.17
	case FrequencyMonthly:
		return amount
	case FrequencyQuarterly:
		return amount / 3
	case FrequencyYearly:
		return amount / 12
	default:
		return amount
	}
}

// TotalMonthlyIncome sums the monthly-equivalent amount of every source.
func TotalMonthlyIncome(sources []domain.IncomeSource) float64 {
	total := 0.0
	for _, s := range sources {
		total += ToMonthlyEquivalent(s.Amount, s.Frequency)
	}
	return total
}
