package domain

import (
	"time"
)

// Risk band labels in ascending tolerance order.
const (
	BandConservative         = "conservative"
	BandModerateConservative = "moderate-conservative"
	BandModerate             = "moderate"
	BandAggressive           = "aggressive"
)

// RiskAssessment keeps the user's three raw risk answers together with the
// derived band so the classification can be recomputed and audited.
type RiskAssessment struct {
	Status          Status    `json:"status"`
	ErrorCode       ErrorCode `json:"error_code,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	IncomeStability int       `json:"income_stability"`
	TimeHorizon     float64   `json:"time_horizon_years"`
	LossReaction    float64   `json:"loss_reaction"`
	Score           float64   `json:"score"`
	Band            int       `json:"risk_band"`
	BandLabel       string    `json:"risk_band_text"`
	MaxEquityShare  float64   `json:"max_equity_share"`
	AssessedAt      time.Time `json:"assessed_at"`
}

// Complete reports whether the risk record can gate its stage.
func (r *RiskAssessment) Complete() bool {
	return r != nil && r.Status == StatusSuccess
}
