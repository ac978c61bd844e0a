package finance

import (
	"fmt"
	"math"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
)

// ComposePlan turns the confirmed deposit target, the capacity estimate and
// the risk cap into a monthly savings/investment split. The full suggested
// capacity is committed even when less would do; when the required amount
// exceeds capacity the plan totals the required amount and the verdict carries
// the shortfall. An INFEASIBLE plan always includes at least one alternative.
func (e Engine) ComposePlan(depositTarget int64, currentSavings float64, horizonYears float64, suggestedInvestment int64, maxEquityShare float64) (domain.Plan, error) {
	if maxEquityShare < 0 || maxEquityShare > 1 {
		return domain.Plan{}, fmt.Errorf("max equity share must be in [0, 1], got %g: %w", maxEquityShare, ErrInvalidInput)
	}

	capacity := float64(suggestedInvestment)
	feas, err := e.Feasibility(depositTarget, currentSavings, horizonYears, capacity)
	if err != nil {
		return domain.Plan{}, err
	}

	monthlyInvestment := int64(math.Round(math.Min(capacity, feas.RequiredMonthly) * maxEquityShare))
	totalMonthly := capacity
	if feas.RequiredMonthly > totalMonthly {
		totalMonthly = feas.RequiredMonthly
	}
	monthlySavings := totalMonthly - float64(monthlyInvestment)

	plan := domain.Plan{
		Status:            domain.StatusSuccess,
		MonthlySavings:    monthlySavings,
		MonthlyInvestment: monthlyInvestment,
		TotalMonthly:      totalMonthly,
		Feasibility:       feas,
		SplitDescription:  splitDescription(totalMonthly, monthlyInvestment, feas, maxEquityShare),
	}

	if feas.Verdict == domain.VerdictInfeasible {
		plan.Alternatives = e.alternatives(depositTarget, currentSavings, horizonYears, capacity, feas)
	}
	return plan, nil
}

func splitDescription(totalMonthly float64, monthlyInvestment int64, feas domain.Feasibility, maxEquityShare float64) string {
	if feas.RequiredMonthly == 0 {
		return "deposit target already covered by current savings"
	}
	if totalMonthly <= 0 {
		return "no monthly capacity available"
	}
	investPct := float64(monthlyInvestment) / totalMonthly * 100
	return fmt.Sprintf("%.0f%% cash savings, %.0f%% growth investments (equity capped at %.0f%%)",
		100-investPct, investPct, maxEquityShare*100)
}

// alternatives proposes adjustments that lift an INFEASIBLE verdict: the
// shortest whole-year horizons reaching TIGHT and FEASIBLE, and a higher
// monthly contribution at the unchanged horizon.
func (e Engine) alternatives(depositTarget int64, currentSavings float64, horizonYears float64, capacity float64, feas domain.Feasibility) []domain.PlanAlternative {
	remaining := math.Max(0, float64(depositTarget)-currentSavings)

	if capacity <= 0 {
		return []domain.PlanAlternative{{
			Kind:            domain.AlternativeRaiseContribution,
			HorizonYears:    horizonYears,
			RequiredMonthly: feas.RequiredMonthly,
			Verdict:         domain.VerdictTight,
			Description:     fmt.Sprintf("set aside at least %.0f per month to reach the target in %g years", feas.RequiredMonthly, horizonYears),
		}}
	}

	var alts []domain.PlanAlternative

	tightYears := math.Ceil(remaining / (capacity * 12))
	if tightFeas, err := e.Feasibility(depositTarget, currentSavings, tightYears, capacity); err == nil {
		alts = append(alts, domain.PlanAlternative{
			Kind:            domain.AlternativeExtendHorizon,
			HorizonYears:    tightYears,
			RequiredMonthly: tightFeas.RequiredMonthly,
			Verdict:         tightFeas.Verdict,
			Description:     fmt.Sprintf("extend the horizon to %.0f years (about %.0f per month)", tightYears, tightFeas.RequiredMonthly),
		})
	}

	feasibleYears := math.Ceil(remaining / (capacity * 12 * e.policy.FeasibleHeadroom))
	if feasibleYears > tightYears {
		if feasibleFeas, err := e.Feasibility(depositTarget, currentSavings, feasibleYears, capacity); err == nil {
			alts = append(alts, domain.PlanAlternative{
				Kind:            domain.AlternativeExtendHorizon,
				HorizonYears:    feasibleYears,
				RequiredMonthly: feasibleFeas.RequiredMonthly,
				Verdict:         feasibleFeas.Verdict,
				Description:     fmt.Sprintf("extend the horizon to %.0f years for a comfortable margin", feasibleYears),
			})
		}
	}

	alts = append(alts, domain.PlanAlternative{
		Kind:            domain.AlternativeRaiseContribution,
		HorizonYears:    horizonYears,
		RequiredMonthly: feas.RequiredMonthly,
		Verdict:         domain.VerdictTight,
		Description:     fmt.Sprintf("raise the monthly commitment to %.0f to keep the %g-year horizon", feas.RequiredMonthly, horizonYears),
	})
	return alts
}
