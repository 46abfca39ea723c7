package plan

import (
	"errors"
	"sort"
)

var (
	ErrInvalidRange      = errors.New("stage end date must be after start date")
	ErrSequenceViolation = errors.New("stage must start after the latest existing stage ends")
	ErrOverlap           = errors.New("stage dates overlap an existing stage")
)

// byNumber returns a copy of stages sorted by StageNumber. Callers' slices
// are never reordered in place.
func byNumber(stages []Stage) []Stage {
	sorted := make([]Stage, len(stages))
	copy(sorted, stages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StageNumber < sorted[j].StageNumber
	})
	return sorted
}

// DetermineCurrentStage picks the single stage the user is working on:
// the in_progress stage if one exists, otherwise the first stage (by
// number) that is not completed. Returns nil when the list is empty or
// every stage is completed, which signals plan completion.
func DetermineCurrentStage(stages []Stage) *Stage {
	sorted := byNumber(stages)
	for i := range sorted {
		if sorted[i].Status == StageInProgress {
			return &sorted[i]
		}
	}
	for i := range sorted {
		if sorted[i].Status != StageCompleted {
			return &sorted[i]
		}
	}
	return nil
}

// NextStage returns the stage following the given stage number, or nil.
func NextStage(stages []Stage, stageNumber int) *Stage {
	for i := range stages {
		if stages[i].StageNumber == stageNumber+1 {
			return &stages[i]
		}
	}
	return nil
}

// effectiveEnd treats a stage without an end date as a degenerate interval
// ending on its own start date.
func effectiveEnd(s Stage) (start, end int64) {
	start = dateOnly(s.StartDate).Unix()
	end = start
	if s.EndDate != nil {
		end = dateOnly(*s.EndDate).Unix()
	}
	return
}

// ValidateNewStage checks a candidate stage window against the plan's
// existing stages. Runs at stage-creation time, not during progression.
// Failure order: range, sequence, overlap.
func ValidateNewStage(candidate StageWindow, existing []Stage) error {
	if !dateOnly(candidate.EndDate).After(dateOnly(candidate.StartDate)) {
		return ErrInvalidRange
	}
	candStart := dateOnly(candidate.StartDate).Unix()
	candEnd := dateOnly(candidate.EndDate).Unix()

	var latestEnd int64
	hasExisting := false
	for _, s := range existing {
		_, end := effectiveEnd(s)
		if !hasExisting || end > latestEnd {
			latestEnd = end
		}
		hasExisting = true
	}
	if hasExisting && candStart <= latestEnd {
		return ErrSequenceViolation
	}
	for _, s := range existing {
		start, end := effectiveEnd(s)
		if candStart <= end && start <= candEnd {
			return ErrOverlap
		}
	}
	return nil
}
