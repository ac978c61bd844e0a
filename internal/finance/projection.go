package finance

import (
	"math"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
)

func monthlyRate(annual float64) float64 {
	return math.Pow(1+annual, 1.0/12) - 1
}

// futureValue is the standard annuity formula for a fixed monthly payment
// compounding at a monthly rate over the horizon.
func futureValue(monthly, rate, years float64) float64 {
	if rate == 0 {
		return monthly * 12 * years
	}
	return monthly * (math.Pow(1+rate, 12*years) - 1) / rate
}

func yearsToTarget(monthly, target, rate float64) float64 {
	if monthly <= 0 || target <= 0 || rate <= 0 {
		return 0
	}
	months := math.Log(1+target*rate/monthly) / math.Log(1+rate)
	return math.Ceil(months / 12)
}

// ProjectGrowth bounds the future value of the monthly amount between the
// band's pessimistic and optimistic growth rates. Band 1 assumes cash-like
// growth, band 4 the full equity assumption; years-to-target uses the band's
// upper rate.
func (e Engine) ProjectGrowth(monthlyAmount float64, horizonYears float64, band int, depositTarget int64) domain.GrowthProjection {
	if monthlyAmount <= 0 || horizonYears <= 0 {
		return domain.GrowthProjection{}
	}

	base := monthlyRate(e.policy.BaseGrowthRate)
	low := monthlyRate(e.policy.LowGrowthRate)
	moderate := monthlyRate(e.policy.ModerateGrowthRate)
	high := monthlyRate(e.policy.HighGrowthRate)
	target := float64(depositTarget)

	var lowValue, highValue, years float64
	switch {
	case band <= 1:
		lowValue = monthlyAmount * 12 * horizonYears
		highValue = futureValue(monthlyAmount, base, horizonYears)
		years = yearsToTarget(monthlyAmount, target, base)
	case band == 2:
		lowValue = futureValue(monthlyAmount, base, horizonYears)
		highValue = futureValue(monthlyAmount, low, horizonYears)
		years = yearsToTarget(monthlyAmount, target, low)
	case band == 3:
		lowValue = futureValue(monthlyAmount, low, horizonYears)
		highValue = futureValue(monthlyAmount, moderate, horizonYears)
		years = yearsToTarget(monthlyAmount, target, moderate)
	default:
		lowValue = futureValue(monthlyAmount, moderate, horizonYears)
		highValue = futureValue(monthlyAmount, high, horizonYears)
		years = yearsToTarget(monthlyAmount, target, high)
	}

	return domain.GrowthProjection{
		LowValue:      math.Round(lowValue),
		HighValue:     math.Round(highValue),
		YearsToTarget: years,
	}
}
