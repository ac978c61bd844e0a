package domain

import (
	"time"
)

// StageCompletion is one entry in the session's ordered completion log.
type StageCompletion struct {
	Stage       Stage     `json:"stage"`
	CompletedAt time.Time `json:"completed_at"`
}

// Proposal holds price options presented to the user but not yet confirmed.
// It is replaced wholesale by a new propose call and cleared on confirmation.
type Proposal struct {
	Postcode     string        `json:"postcode"`
	PropertyType string        `json:"property_type"`
	Options      []PriceOption `json:"options"`
	ProposedAt   time.Time     `json:"proposed_at"`
}

// Session accumulates one user's planning state across the workflow stages.
// It is mutated only by the planner, which serializes writers per session.
type Session struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	CurrentSavings float64           `json:"current_savings"`
	PendingGoal    *Proposal         `json:"pending_goal,omitempty"`
	HousingGoal    *HousingGoal      `json:"housing_goal,omitempty"`
	Capacity       *Capacity         `json:"capacity,omitempty"`
	RiskProfile    *RiskAssessment   `json:"risk_profile,omitempty"`
	Plan           *Plan             `json:"plan,omitempty"`
	Completions    []StageCompletion `json:"completions,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// RecordCompletion appends a stage completion to the ordered log.
// Revising a stage appends a fresh entry rather than rewriting history.
func (s *Session) RecordCompletion(stage Stage) {
	s.Completions = append(s.Completions, StageCompletion{
		Stage:       stage,
		CompletedAt: time.Now().UTC(),
	})
}

// Touch bumps the session's last-activity timestamp.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// IdleExpired reports whether the session has been inactive longer than ttl.
func (s *Session) IdleExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.UpdatedAt) > ttl
}

// RecentCompletions returns the last n entries from the completion log.
func (s *Session) RecentCompletions(n int) []StageCompletion {
	if n >= len(s.Completions) {
		return s.Completions
	}
	return s.Completions[len(s.Completions)-n:]
}
