package domain

import (
	"time"
)

// PriceOption is one priced property choice returned by a lookup.
type PriceOption struct {
	PropertyType string `json:"property_type"`
	MinPrice     int64  `json:"min_price"`
	MaxPrice     int64  `json:"max_price"`
	Source       string `json:"source"`
}

// HousingGoal is the confirmed purchase target for a session. Once written it
// is never mutated; a revised choice replaces the whole value.
type HousingGoal struct {
	Status         Status    `json:"status"`
	ErrorCode      ErrorCode `json:"error_code,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	Postcode       string    `json:"postcode"`
	PropertyType   string    `json:"property_type"`
	MinPrice       int64     `json:"min_price"`
	MaxPrice       int64     `json:"max_price"`
	Price          int64     `json:"price"`
	DepositPercent float64   `json:"deposit_percent"`
	DepositTarget  int64     `json:"deposit_target"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}

// Complete reports whether the goal can gate the housing stage.
func (g *HousingGoal) Complete() bool {
	return g != nil && g.Status == StatusSuccess
}
