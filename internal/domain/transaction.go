package domain

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date that accepts both "2006-01-02" and RFC 3339 JSON
// input, since statement exports disagree on the format.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		return nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", raw, err)
	}
	d.Time = t
	return nil
}

// MonthKey returns the calendar-month bucket ("2025-03") for grouping.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// Transaction is one parsed statement row. Credit and debit are summed
// independently, so a row carrying both is accepted rather than rejected.
type Transaction struct {
	Date   Date    `json:"date"`
	Credit float64 `json:"credit"`
	Debit  float64 `json:"debit"`
}
