package finance

import (
	"fmt"
	"math"
	"sort"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
)

type monthlyTotals struct {
	credits float64
	debits  float64
}

func groupByMonth(txs []domain.Transaction) map[string]*monthlyTotals {
	months := make(map[string]*monthlyTotals)
	for _, tx := range txs {
		key := tx.Date.MonthKey()
		agg, ok := months[key]
		if !ok {
			agg = &monthlyTotals{}
			months[key] = agg
		}
		agg.credits += tx.Credit
		agg.debits += tx.Debit
	}
	return months
}

func sortedKeys(months map[string]*monthlyTotals) []string {
	keys := make([]string, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Affordability estimates monthly saving capacity from a statement window.
// Transactions are grouped by calendar month; each month's surplus is credits
// minus debits. The suggested investment is the buffered minimum of mean and
// median surplus, which keeps one unusually good month from inflating the
// recommendation.
func (e Engine) Affordability(txs []domain.Transaction) (domain.FinancialProfile, error) {
	months := groupByMonth(txs)
	if len(months) < e.policy.MinMonths {
		return domain.FinancialProfile{}, fmt.Errorf(
			"need at least %d distinct statement months, got %d: %w",
			e.policy.MinMonths, len(months), ErrInsufficientData)
	}

	keys := sortedKeys(months)
	surpluses := make([]float64, len(keys))
	for i, key := range keys {
		surpluses[i] = months[key].credits - months[key].debits
	}

	avg := mean(surpluses)
	med := median(surpluses)
	suggested := int64(math.Round(e.policy.SurplusBuffer * math.Min(avg, med)))

	return domain.FinancialProfile{
		AvgSurplus:          avg,
		MedianSurplus:       med,
		SuggestedInvestment: suggested,
		MonthsObserved:      keys,
	}, nil
}

// IncomeStats returns the rounded mean and median of monthly credit totals
// over the same statement window Affordability uses.
func (e Engine) IncomeStats(txs []domain.Transaction) (avgIncome, medianIncome int64, err error) {
	months := groupByMonth(txs)
	if len(months) < e.policy.MinMonths {
		return 0, 0, fmt.Errorf(
			"need at least %d distinct statement months, got %d: %w",
			e.policy.MinMonths, len(months), ErrInsufficientData)
	}

	incomes := make([]float64, 0, len(months))
	for _, agg := range months {
		incomes = append(incomes, agg.credits)
	}
	return int64(math.Round(mean(incomes))), int64(math.Round(median(incomes))), nil
}

// AffordabilityCeiling approximates the maximum purchase a lender would
// consider, as a multiple of median monthly income.
func (e Engine) AffordabilityCeiling(medianIncome int64) int64 {
	if medianIncome <= 0 {
		return 0
	}
	return medianIncome * e.policy.AffordabilityMultiplier
}
