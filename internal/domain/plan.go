package domain

import (
	"time"
)

// Verdict classifies how reachable a deposit target is within capacity.
type Verdict string

const (
	VerdictFeasible   Verdict = "FEASIBLE"
	VerdictTight      Verdict = "TIGHT"
	VerdictInfeasible Verdict = "INFEASIBLE"
)

// Feasibility is the numeric outcome of comparing a savings requirement
// against monthly capacity.
type Feasibility struct {
	Verdict         Verdict `json:"verdict"`
	RequiredMonthly float64 `json:"required_monthly"`
	MonthlyCapacity float64 `json:"monthly_capacity"`
	Shortfall       float64 `json:"shortfall"`
}

// Alternative kinds attached to an infeasible plan.
const (
	AlternativeExtendHorizon     = "extend_horizon"
	AlternativeRaiseContribution = "raise_contribution"
)

// PlanAlternative suggests one adjustment that improves an infeasible plan.
type PlanAlternative struct {
	Kind            string  `json:"kind"`
	HorizonYears    float64 `json:"horizon_years"`
	RequiredMonthly float64 `json:"required_monthly"`
	Verdict         Verdict `json:"verdict"`
	Description     string  `json:"description"`
}

// GrowthProjection bounds the invested amount's future value between the
// band's low and high growth rates.
type GrowthProjection struct {
	LowValue      float64 `json:"low_value"`
	HighValue     float64 `json:"high_value"`
	YearsToTarget float64 `json:"years_to_target"`
}

// Plan is the composed monthly savings/investment recommendation. An
// infeasible verdict is still a success-status plan; it simply carries
// alternatives the user can act on.
type Plan struct {
	Status            Status            `json:"status"`
	ErrorCode         ErrorCode         `json:"error_code,omitempty"`
	ErrorMessage      string            `json:"error_message,omitempty"`
	MonthlySavings    float64           `json:"monthly_savings"`
	MonthlyInvestment int64             `json:"monthly_investment"`
	TotalMonthly      float64           `json:"total_monthly"`
	Feasibility       Feasibility       `json:"feasibility"`
	SplitDescription  string            `json:"split_description"`
	Alternatives      []PlanAlternative `json:"alternatives,omitempty"`
	Projection        *GrowthProjection `json:"projection,omitempty"`
	ComposedAt        time.Time         `json:"composed_at"`
}

// Complete reports whether the plan record can gate its stage.
func (p *Plan) Complete() bool {
	return p != nil && p.Status == StatusSuccess
}
