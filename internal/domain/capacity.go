package domain

import (
	"time"
)

// FinancialProfile is the derived monthly-surplus summary for a statement
// window. Recomputing it from the same transactions yields the same values.
type FinancialProfile struct {
	AvgSurplus          float64  `json:"avg_surplus"`
	MedianSurplus       float64  `json:"median_surplus"`
	SuggestedInvestment int64    `json:"suggested_investment"`
	MonthsObserved      []string `json:"months_observed"`
}

// Capacity is the session sub-record for saving capacity, combining the
// surplus profile with income statistics and the lender affordability ceiling.
type Capacity struct {
	Status       Status    `json:"status"`
	ErrorCode    ErrorCode `json:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	FinancialProfile
	AvgIncome        int64     `json:"avg_income"`
	MedianIncome     int64     `json:"median_income"`
	MaxAffordability int64     `json:"max_affordability"`
	AssessedAt       time.Time `json:"assessed_at"`
}

// Complete reports whether the capacity record can gate its stage.
func (c *Capacity) Complete() bool {
	return c != nil && c.Status == StatusSuccess
}
