package plan

import (
	"time"
)

// PlanStatus defines the lifecycle state of a quit plan
type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
)

// StageStatus defines the lifecycle state of a stage within a plan
type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
)

// RequestStatus defines the state of a coaching request
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// PlanRequest is a user's ask for a coached quit plan. Approval by the
// coach is what creates the QuitPlan.
type PlanRequest struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	UserID    uint          `gorm:"index;not null" json:"user_id"`
	CoachID   uint          `gorm:"index;not null" json:"coach_id"`
	Reason    string        `gorm:"type:text" json:"reason"`
	Status    RequestStatus `gorm:"type:varchar(10);not null;default:'pending'" json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// QuitPlan is a user's overall quitting program, divided into ordered stages.
type QuitPlan struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"index;not null" json:"user_id"`
	CoachID        *uint      `gorm:"index" json:"coach_id"`
	Reason         string     `gorm:"type:text" json:"reason"`
	StartDate      time.Time  `json:"start_date"`
	TargetQuitDate time.Time  `json:"target_quit_date"`
	Status         PlanStatus `gorm:"type:varchar(10);not null;default:'draft'" json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Stages         []Stage    `gorm:"foreignKey:PlanID" json:"stages,omitempty"`
}

// Stage is a time-boxed phase of a plan. StageNumber is 1-based and
// strictly increasing within a plan; at most one stage per plan is
// in_progress at any time.
type Stage struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	PlanID      uint        `gorm:"not null;uniqueIndex:idx_plan_stage_number" json:"plan_id"`
	StageNumber int         `gorm:"not null;uniqueIndex:idx_plan_stage_number" json:"stage_number"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     *time.Time  `json:"end_date"`
	Status      StageStatus `gorm:"type:varchar(15);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Tasks       []Task      `gorm:"foreignKey:StageID" json:"tasks,omitempty"`
}

// Task is a template for an actionable item within a stage. Completion is
// per-user state recorded separately in TaskCompletion, never on the task.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	StageID     uint       `gorm:"index;not null" json:"stage_id"`
	OrderIndex  int        `gorm:"not null" json:"order_index"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Deadline    *time.Time `json:"deadline"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskCompletion records that a user completed a task. Immutable once
// created; the unique (user_id, task_id) index is what makes a duplicate
// complete-task request a no-op instead of a double completion.
type TaskCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_task" json:"user_id"`
	TaskID      uint      `gorm:"not null;uniqueIndex:idx_user_task" json:"task_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// StageWindow is the date interval of a candidate stage, validated before
// the stage is created.
type StageWindow struct {
	StartDate time.Time
	EndDate   time.Time
}

func (Stage) TableName() string { return "stages" }

func (QuitPlan) TableName() string { return "quit_plans" }
