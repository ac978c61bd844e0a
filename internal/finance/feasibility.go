package finance

import (
	"fmt"
	"math"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
)

// Feasibility compares the monthly amount needed to close the savings gap
// within the horizon against the available monthly capacity. A target already
// covered by current savings is FEASIBLE with nothing required.
func (e Engine) Feasibility(targetDeposit int64, currentSavings float64, horizonYears float64, monthlyCapacity float64) (domain.Feasibility, error) {
	if horizonYears <= 0 {
		return domain.Feasibility{}, fmt.Errorf("horizon must be positive, got %g years: %w", horizonYears, ErrInvalidInput)
	}
	if monthlyCapacity < 0 {
		return domain.Feasibility{}, fmt.Errorf("monthly capacity must not be negative, got %g: %w", monthlyCapacity, ErrInvalidInput)
	}

	remaining := math.Max(0, float64(targetDeposit)-currentSavings)
	if remaining == 0 {
		return domain.Feasibility{
			Verdict:         domain.VerdictFeasible,
			RequiredMonthly: 0,
			MonthlyCapacity: monthlyCapacity,
			Shortfall:       0,
		}, nil
	}

	required := remaining / (horizonYears * 12)
	verdict := domain.VerdictInfeasible
	switch {
	case required <= e.policy.FeasibleHeadroom*monthlyCapacity:
		verdict = domain.VerdictFeasible
	case required <= monthlyCapacity:
		verdict = domain.VerdictTight
	}

	return domain.Feasibility{
		Verdict:         verdict,
		RequiredMonthly: required,
		MonthlyCapacity: monthlyCapacity,
		Shortfall:       math.Max(0, required-monthlyCapacity),
	}, nil
}
