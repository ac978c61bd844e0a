// Package finance implements the deterministic rules engine behind deposit
// planning: deposit sizing, affordability estimation, feasibility verdicts,
// risk classification and plan composition. Every function is pure and does
// no I/O, so identical inputs always produce identical results.
package finance

import (
	"errors"
)

// Sentinel errors callers branch on with errors.Is.
var (
	// ErrInvalidInput marks malformed numeric arguments: non-positive
	// prices, out-of-range percentages, non-positive horizons.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData marks a transaction window too short to
	// estimate capacity from.
	ErrInsufficientData = errors.New("insufficient data")
)

// Policy holds the adjustable constants of the engine. The values are
// deliberate policy choices, not laws: the surplus buffer damps month-to-month
// volatility and the headroom factor keeps FEASIBLE verdicts comfortably
// inside capacity.
type Policy struct {
	// DepositPercent is the default deposit percentage when the caller
	// does not supply one.
	DepositPercent float64

	// MinMonths is the minimum count of distinct calendar months a
	// statement must span before capacity is estimated.
	MinMonths int

	// SurplusBuffer scales down the observed surplus before it becomes a
	// suggested monthly investment.
	SurplusBuffer float64

	// FeasibleHeadroom is the fraction of capacity a required monthly
	// amount must stay under to be called FEASIBLE rather than TIGHT.
	FeasibleHeadroom float64

	// AffordabilityMultiplier converts median monthly income into a rough
	// lender borrowing ceiling.
	AffordabilityMultiplier int64

	// Annual growth-rate assumptions per projection band.
	BaseGrowthRate     float64
	LowGrowthRate      float64
	ModerateGrowthRate float64
	HighGrowthRate     float64
}

// DefaultPolicy returns the reference policy values.
func DefaultPolicy() Policy {
	return Policy{
		DepositPercent:          10,
		MinMonths:               3,
		SurplusBuffer:           0.8,
		FeasibleHeadroom:        0.8,
		AffordabilityMultiplier: 80,
		BaseGrowthRate:          0.03,
		LowGrowthRate:           0.04,
		ModerateGrowthRate:      0.06,
		HighGrowthRate:          0.08,
	}
}

// Engine evaluates the financial rules under one fixed policy. The zero value
// is not usable; construct with NewEngine.
type Engine struct {
	policy Policy
}

// NewEngine returns an engine bound to the given policy.
func NewEngine(policy Policy) Engine {
	return Engine{policy: policy}
}

// Policy returns the engine's policy values.
func (e Engine) Policy() Policy {
	return e.policy
}
