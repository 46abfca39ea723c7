package plan

import (
	"time"
)

// dateOnly strips the time-of-day component so the gate compares calendar
// days, not instants. Both sides are normalized to UTC first: stored dates
// are UTC while time.Now() carries the server zone, and mixing midnights
// from different zones would shift the comparison by the zone offset.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.In(time.UTC).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsLastTask reports whether index addresses the final task of the stage's
// ordered task list.
func IsLastTask(index int, tasks []Task) bool {
	return len(tasks) > 0 && index == len(tasks)-1
}

// CanComplete decides whether the task at index may be marked complete
// right now. done maps task ID to the acting user's completion state.
//
// A completed task is never re-completable. A non-last task with no
// completion is always completable. The last task is additionally locked
// until today reaches the stage's end date, so the stage's nominal
// duration must elapse before the plan can advance. A stage without an
// end date never locks its last task.
func CanComplete(task Task, index int, tasks []Task, done map[uint]bool, stage Stage, today time.Time) bool {
	if done[task.ID] {
		return false
	}
	if !IsLastTask(index, tasks) {
		return true
	}
	if stage.EndDate == nil {
		return true
	}
	return !dateOnly(today).Before(dateOnly(*stage.EndDate))
}
