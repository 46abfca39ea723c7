package plan

import (
	"log"
)

// ProgressionLogger provides consistent, parseable output for progression
// events. It wraps the standard log package.
type ProgressionLogger struct{}

func NewProgressionLogger() *ProgressionLogger {
	return &ProgressionLogger{}
}

func (l *ProgressionLogger) log(level, category, format string, args ...interface{}) {
	prefix := "[Progression][" + level + "][" + category + "] "
	log.Printf(prefix+format, args...)
}

// LogStageTransition logs a change in stage status.
func (l *ProgressionLogger) LogStageTransition(planID, stageID uint, from, to StageStatus) {
	l.log("INFO", "STAGE", "Plan %d stage %d: %s -> %s", planID, stageID, from, to)
}

// LogPlanTransition logs a change in plan status.
func (l *ProgressionLogger) LogPlanTransition(planID uint, from, to PlanStatus) {
	l.log("INFO", "PLAN", "Plan %d: %s -> %s", planID, from, to)
}

// LogTaskCompletion logs a recorded completion.
func (l *ProgressionLogger) LogTaskCompletion(userID, taskID uint, duplicate bool) {
	if duplicate {
		l.log("INFO", "TASK", "User %d task %d: duplicate completion ignored", userID, taskID)
		return
	}
	l.log("INFO", "TASK", "User %d task %d: completed", userID, taskID)
}

// LogGateRejection logs a completion attempt the gate refused.
func (l *ProgressionLogger) LogGateRejection(userID, taskID uint, reason string) {
	l.log("WARN", "GATE", "User %d task %d: rejected (%s)", userID, taskID, reason)
}
