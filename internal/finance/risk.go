package finance

import (
	"fmt"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
)

// Band thresholds are closed-open: a score of exactly 0.30 falls in band 2.
var riskBands = []struct {
	upperBound     float64
	band           int
	label          string
	maxEquityShare float64
}{
	{0.30, 1, domain.BandConservative, 0.20},
	{0.50, 2, domain.BandModerateConservative, 0.35},
	{0.70, 3, domain.BandModerate, 0.50},
	{0, 4, domain.BandAggressive, 0.70},
}

// ClassifyRisk derives a risk band from the three questionnaire answers.
// The weighted score is monotone in every answer, so improving any single
// answer can never lower the band.
func (e Engine) ClassifyRisk(incomeStability int, timeHorizonYears float64, lossReaction float64) (domain.RiskAssessment, error) {
	if incomeStability < 1 || incomeStability > 5 {
		return domain.RiskAssessment{}, fmt.Errorf("income stability must be 1-5, got %d: %w", incomeStability, ErrInvalidInput)
	}
	if timeHorizonYears < 0 {
		return domain.RiskAssessment{}, fmt.Errorf("time horizon must not be negative, got %g: %w", timeHorizonYears, ErrInvalidInput)
	}
	if lossReaction < 0 || lossReaction > 1 {
		return domain.RiskAssessment{}, fmt.Errorf("loss reaction must be in [0, 1], got %g: %w", lossReaction, ErrInvalidInput)
	}

	horizonWeight := timeHorizonYears / 10
	if horizonWeight > 1 {
		horizonWeight = 1
	}
	score := float64(incomeStability)/5*0.3 + horizonWeight*0.3 + lossReaction*0.4

	selected := riskBands[len(riskBands)-1]
	for _, band := range riskBands[:len(riskBands)-1] {
		if score < band.upperBound {
			selected = band
			break
		}
	}

	return domain.RiskAssessment{
		Status:          domain.StatusSuccess,
		IncomeStability: incomeStability,
		TimeHorizon:     timeHorizonYears,
		LossReaction:    lossReaction,
		Score:           score,
		Band:            selected.band,
		BandLabel:       selected.label,
		MaxEquityShare:  selected.maxEquityShare,
	}, nil
}
