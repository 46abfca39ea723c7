package plan

import (
	"fmt"
)

// validStageTransitions defines the map of allowed stage state changes.
// pending -> completed is allowed only because the final safety pass marks
// every remaining stage completed when the plan finishes.
var validStageTransitions = map[StageStatus]map[StageStatus]bool{
	StagePending: {
		StageInProgress: true,
		StageCompleted:  true,
	},
	StageInProgress: {
		StageCompleted: true,
	},
	StageCompleted: {}, // Terminal state
}

// validPlanTransitions defines the map of allowed plan state changes.
var validPlanTransitions = map[PlanStatus]map[PlanStatus]bool{
	PlanDraft: {
		PlanActive: true,
	},
	PlanActive: {
		PlanCompleted: true,
	},
	PlanCompleted: {}, // Terminal state
}

// CanTransitionStage checks if a stage transition is valid.
func CanTransitionStage(from, to StageStatus) bool {
	if allowed, exists := validStageTransitions[from]; exists {
		return allowed[to]
	}
	return false
}

// TransitionStage attempts to change the stage's status. A transition to
// the current status is a no-op, which keeps the completion safety pass
// idempotent.
func TransitionStage(s *Stage, to StageStatus) error {
	if s.Status == to {
		return nil
	}
	if !validStageTransitions[s.Status][to] {
		return fmt.Errorf("invalid stage transition from %s to %s", s.Status, to)
	}
	s.Status = to
	return nil
}

// TransitionPlan attempts to change the plan's status, no-op on same state.
func TransitionPlan(p *QuitPlan, to PlanStatus) error {
	if p.Status == to {
		return nil
	}
	if !validPlanTransitions[p.Status][to] {
		return fmt.Errorf("invalid plan transition from %s to %s", p.Status, to)
	}
	p.Status = to
	return nil
}
