// Package workflow derives the current planning stage from a session
// snapshot. It performs no calculation and never mutates the session; the
// planner decides what to do with the answer.
package workflow

import (
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
)

// State reports where a session sits in the fixed stage order and what data
// would complete the current stage.
type State struct {
	CurrentStage    domain.Stage   `json:"current_stage"`
	NextStage       domain.Stage   `json:"next_stage"`
	CompletedStages []domain.Stage `json:"completed_stages"`
	MissingData     []string       `json:"missing_data"`
}

func stageComplete(s *domain.Session, stage domain.Stage) bool {
	switch stage {
	case domain.StageHousing:
		return s.HousingGoal.Complete()
	case domain.StageCapacity:
		return s.Capacity.Complete()
	case domain.StageRisk:
		return s.RiskProfile.Complete()
	case domain.StagePlanning:
		return s.Plan.Complete()
	}
	return false
}

// missingForHousing lists the goal fields still unset, falling back to the
// two user inputs when no goal exists at all.
func missingForHousing(goal *domain.HousingGoal) []string {
	if goal == nil {
		return []string{"postcode", "property_type"}
	}
	var missing []string
	if goal.Postcode == "" {
		missing = append(missing, "postcode")
	}
	if goal.PropertyType == "" {
		missing = append(missing, "property_type")
	}
	if goal.Price == 0 {
		missing = append(missing, "house_price")
	}
	if goal.DepositTarget == 0 {
		missing = append(missing, "deposit_target")
	}
	return missing
}

func missingData(s *domain.Session, stage domain.Stage) []string {
	switch stage {
	case domain.StageHousing:
		return missingForHousing(s.HousingGoal)
	case domain.StageCapacity:
		return []string{"transactions"}
	case domain.StageRisk:
		return []string{"risk_profile"}
	case domain.StagePlanning:
		return []string{"plan"}
	}
	return []string{}
}

func nextStage(current domain.Stage) domain.Stage {
	for i, stage := range domain.StageOrder {
		if stage == current {
			if i+1 < len(domain.StageOrder) {
				return domain.StageOrder[i+1]
			}
			return domain.StageDone
		}
	}
	return domain.StageDone
}

// Evaluate is pure and total: a nil or empty session yields the first
// actionable stage with its inputs missing, and a fully planned session
// yields done. Stage order is never skipped here; the planner may choose to
// accept data out of order, and Evaluate simply reports the earliest gap.
func Evaluate(s *domain.Session) State {
	if s == nil {
		s = &domain.Session{}
	}

	completed := make([]domain.Stage, 0, len(domain.StageOrder))
	current := domain.StageDone
	for _, stage := range domain.StageOrder {
		if stageComplete(s, stage) {
			completed = append(completed, stage)
			continue
		}
		if current == domain.StageDone {
			current = stage
		}
	}

	if current == domain.StageDone {
		return State{
			CurrentStage:    domain.StageDone,
			NextStage:       domain.StageDone,
			CompletedStages: completed,
			MissingData:     []string{},
		}
	}

	return State{
		CurrentStage:    current,
		NextStage:       nextStage(current),
		CompletedStages: completed,
		MissingData:     missingData(s, current),
	}
}
