// Package planner orchestrates planning sessions: it owns session state,
// consults the price cache before the external lookup, runs the rules engine,
// and re-evaluates the workflow after every update.
package planner

import (
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/workflow"
)

// ProposeGoalRequest asks for price options at a location.
type ProposeGoalRequest struct {
	Postcode     string `json:"postcode"`
	PropertyType string `json:"property_type"`
}

// ConfirmGoalRequest locks in one of the proposed options. All fields are
// optional: property type defaults to the proposal's first option, price to
// the selection heuristic, deposit percent to the policy default.
type ConfirmGoalRequest struct {
	PropertyType   string  `json:"property_type,omitempty"`
	Price          int64   `json:"price,omitempty"`
	DepositPercent float64 `json:"deposit_percent,omitempty"`
}

// CapacityRequest carries an already-parsed transaction list. CurrentSavings
// is a pointer so an absent field does not clobber the stored value.
type CapacityRequest struct {
	Transactions   []domain.Transaction `json:"transactions"`
	CurrentSavings *float64             `json:"current_savings,omitempty"`
}

// RiskRequest carries the three risk questionnaire answers.
type RiskRequest struct {
	IncomeStability  int     `json:"income_stability"`
	TimeHorizonYears float64 `json:"time_horizon_years"`
	LossReaction     float64 `json:"loss_reaction"`
}

// PlanRequest composes the final plan. CurrentSavings overrides the session
// value when present.
type PlanRequest struct {
	CurrentSavings *float64 `json:"current_savings,omitempty"`
}

// HousingGoalState is the boundary record for both goal operations. Propose
// fills PriceOptions; confirm fills the selected price fields.
type HousingGoalState struct {
	Status        domain.Status        `json:"status"`
	ErrorCode     domain.ErrorCode     `json:"error_code,omitempty"`
	ErrorMessage  string               `json:"error_message,omitempty"`
	Postcode      string               `json:"postcode,omitempty"`
	PropertyType  string               `json:"property_type,omitempty"`
	MinPrice      int64                `json:"min_price,omitempty"`
	MaxPrice      int64                `json:"max_price,omitempty"`
	DepositTarget int64                `json:"deposit_target,omitempty"`
	PriceOptions  []domain.PriceOption `json:"price_options,omitempty"`
}

// CapacityState is the boundary record for the capacity assessment.
type CapacityState struct {
	Status              domain.Status    `json:"status"`
	ErrorCode           domain.ErrorCode `json:"error_code,omitempty"`
	ErrorMessage        string           `json:"error_message,omitempty"`
	SuggestedInvestment int64            `json:"suggested_investment"`
	AvgSurplus          float64          `json:"avg_surplus"`
	MedianSurplus       float64          `json:"median_surplus"`
}

// RiskProfileOutput is the boundary record for the risk assessment.
type RiskProfileOutput struct {
	Status         domain.Status    `json:"status"`
	ErrorCode      domain.ErrorCode `json:"error_code,omitempty"`
	ErrorMessage   string           `json:"error_message,omitempty"`
	RiskBand       int              `json:"risk_band"`
	RiskBandText   string           `json:"risk_band_text"`
	MaxEquityShare float64          `json:"max_equity_share"`
}

// PlanOutput is the boundary record for plan composition. An INFEASIBLE
// verdict is still a success status; the alternatives say what would fix it.
type PlanOutput struct {
	Status            domain.Status            `json:"status"`
	ErrorCode         domain.ErrorCode         `json:"error_code,omitempty"`
	ErrorMessage      string                   `json:"error_message,omitempty"`
	MonthlySavings    float64                  `json:"monthly_savings"`
	MonthlyInvestment int64                    `json:"monthly_investment"`
	TotalMonthly      float64                  `json:"total_monthly"`
	Feasibility       domain.Feasibility       `json:"feasibility"`
	Alternatives      []domain.PlanAlternative `json:"alternatives,omitempty"`
}

// SessionSummary is the full session view returned by Get.
type SessionSummary struct {
	SessionID      string                 `json:"session_id"`
	CurrentSavings float64                `json:"current_savings"`
	HousingGoal    *domain.HousingGoal    `json:"housing_goal,omitempty"`
	Capacity       *domain.Capacity       `json:"capacity,omitempty"`
	RiskProfile    *domain.RiskAssessment `json:"risk_profile,omitempty"`
	Plan           *domain.Plan           `json:"plan,omitempty"`
	Workflow       workflow.State         `json:"workflow"`
	CreatedAt      int64                  `json:"created_at"`
	UpdatedAt      int64                  `json:"updated_at"`
}

func housingError(code domain.ErrorCode, msg string) HousingGoalState {
	return HousingGoalState{Status: domain.StatusError, ErrorCode: code, ErrorMessage: msg}
}

func capacityError(code domain.ErrorCode, msg string) CapacityState {
	return CapacityState{Status: domain.StatusError, ErrorCode: code, ErrorMessage: msg}
}

func riskError(code domain.ErrorCode, msg string) RiskProfileOutput {
	return RiskProfileOutput{Status: domain.StatusError, ErrorCode: code, ErrorMessage: msg}
}

func planError(code domain.ErrorCode, msg string) PlanOutput {
	return PlanOutput{Status: domain.StatusError, ErrorCode: code, ErrorMessage: msg}
}

func housingStateFromGoal(goal *domain.HousingGoal) HousingGoalState {
	return HousingGoalState{
		Status:        goal.Status,
		ErrorCode:     goal.ErrorCode,
		ErrorMessage:  goal.ErrorMessage,
		Postcode:      goal.Postcode,
		PropertyType:  goal.PropertyType,
		MinPrice:      goal.MinPrice,
		MaxPrice:      goal.MaxPrice,
		DepositTarget: goal.DepositTarget,
	}
}

func capacityStateFrom(c *domain.Capacity) CapacityState {
	return CapacityState{
		Status:              c.Status,
		SuggestedInvestment: c.SuggestedInvestment,
		AvgSurplus:          c.AvgSurplus,
		MedianSurplus:       c.MedianSurplus,
	}
}

func riskOutputFrom(r *domain.RiskAssessment) RiskProfileOutput {
	return RiskProfileOutput{
		Status:         r.Status,
		RiskBand:       r.Band,
		RiskBandText:   r.BandLabel,
		MaxEquityShare: r.MaxEquityShare,
	}
}

func planOutputFrom(p *domain.Plan) PlanOutput {
	return PlanOutput{
		Status:            p.Status,
		MonthlySavings:    p.MonthlySavings,
		MonthlyInvestment: p.MonthlyInvestment,
		TotalMonthly:      p.TotalMonthly,
		Feasibility:       p.Feasibility,
		Alternatives:      p.Alternatives,
	}
}

func summarize(s *domain.Session) SessionSummary {
	return SessionSummary{
		SessionID:      s.ID,
		CurrentSavings: s.CurrentSavings,
		HousingGoal:    s.HousingGoal,
		Capacity:       s.Capacity,
		RiskProfile:    s.RiskProfile,
		Plan:           s.Plan,
		Workflow:       workflow.Evaluate(s),
		CreatedAt:      s.CreatedAt.Unix(),
		UpdatedAt:      s.UpdatedAt.Unix(),
	}
}
