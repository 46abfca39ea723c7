package plan

import (
	"errors"
)

var (
	ErrTaskLocked     = errors.New("task is locked")
	ErrNoCurrentStage = errors.New("no current stage")
	ErrNoNextStage    = errors.New("no next stage")
)

// CompletionOutcome is what a successful task completion triggered beyond
// recording the completion itself.
type CompletionOutcome struct {
	StageCompleted     bool `json:"stageCompleted"`
	HasNextStage       bool `json:"hasNextStage"`
	AllStagesCompleted bool `json:"allStagesCompleted"`
	PlanCompleted      bool `json:"planCompleted"`
}

// AllTasksDone reports whether every task in the list has a completion.
func AllTasksDone(tasks []Task, done map[uint]bool) bool {
	for _, t := range tasks {
		if !done[t.ID] {
			return false
		}
	}
	return len(tasks) > 0
}

// ResolveCompletion decides the stage/plan consequences of a task
// completion. done must already include the task just completed. stages is
// the plan's full stage list. The caller persists the indicated
// transitions; the next stage is never auto-activated here, activation is
// a distinct user action.
func ResolveCompletion(stage Stage, tasks []Task, done map[uint]bool, stages []Stage) CompletionOutcome {
	var out CompletionOutcome
	if !AllTasksDone(tasks, done) {
		return out
	}
	out.StageCompleted = true
	if NextStage(stages, stage.StageNumber) != nil {
		out.HasNextStage = true
		return out
	}
	out.AllStagesCompleted = true
	out.PlanCompleted = true
	return out
}

// Advance describes the transitions moveToNextStage must persist: Close is
// the in_progress stage to mark completed (nil when completion already
// happened via the last task), Activate is the stage to mark in_progress.
type Advance struct {
	Close    *Stage
	Activate *Stage
}

// ResolveAdvance decides which stage becomes in_progress. This is the only
// path that activates a stage, including the very first one.
func ResolveAdvance(stages []Stage) (Advance, error) {
	cur := DetermineCurrentStage(stages)
	if cur == nil {
		return Advance{}, ErrNoCurrentStage
	}
	if cur.Status == StageInProgress {
		next := NextStage(stages, cur.StageNumber)
		if next == nil {
			return Advance{}, ErrNoNextStage
		}
		return Advance{Close: cur, Activate: next}, nil
	}
	// Current stage is pending: its predecessor was closed by task
	// completion (or it is the first stage), so it is itself the one to
	// activate.
	return Advance{Activate: cur}, nil
}
