package api

import (
	"errors"
	"net/http"
	"time"

	"quitcoach/internal/db"
	"quitcoach/internal/plan"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateTaskBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"` // optional, YYYY-MM-DD
}

// TaskView is a task annotated with the requesting user's completion state.
type TaskView struct {
	plan.Task
	Completed bool `json:"completed"`
}

func loadStage(c *gin.Context) (*plan.Stage, *plan.QuitPlan, bool) {
	var stage plan.Stage
	if err := db.DB.First(&stage, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Stage not found"}})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
		}
		return nil, nil, false
	}
	var p plan.QuitPlan
	if err := db.DB.First(&p, stage.PlanID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
		return nil, nil, false
	}
	if !canAccessPlan(c, &p) {
		c.JSON(http.StatusForbidden, gin.H{"error": gin.H{"message": "Forbidden"}})
		return nil, nil, false
	}
	return &stage, &p, true
}

// stageTasks returns the stage's tasks in gate order.
func stageTasks(stageID uint) ([]plan.Task, error) {
	var tasks []plan.Task
	err := db.DB.Where("stage_id = ?", stageID).Order("order_index asc").Find(&tasks).Error
	return tasks, err
}

// completionSet maps task ID to completed for one user over the given tasks.
func completionSet(userID uint, tasks []plan.Task) (map[uint]bool, error) {
	ids := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	done := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return done, nil
	}
	var completions []plan.TaskCompletion
	if err := db.DB.Where("user_id = ? AND task_id IN ?", userID, ids).Find(&completions).Error; err != nil {
		return nil, err
	}
	for _, tc := range completions {
		done[tc.TaskID] = true
	}
	return done, nil
}

func annotateTasks(tasks []plan.Task, done map[uint]bool) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, TaskView{Task: t, Completed: done[t.ID]})
	}
	return views
}

// POST /stages/:id/tasks  [coach]
func CreateTaskHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		stage, _, ok := loadStage(c)
		if !ok {
			return
		}
		var body CreateTaskBody
		if err := c.ShouldBindJSON(&body); err != nil || body.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "title required"}})
			return
		}
		var deadline *time.Time
		if body.Deadline != "" {
			d, err := time.Parse("2006-01-02", body.Deadline)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "deadline must be YYYY-MM-DD"}})
				return
			}
			deadline = &d
		}

		var maxIndex int
		row := db.DB.Model(&plan.Task{}).Where("stage_id = ?", stage.ID).Select("COALESCE(MAX(order_index), -1)").Row()
		if err := row.Scan(&maxIndex); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		task := plan.Task{
			StageID:     stage.ID,
			OrderIndex:  maxIndex + 1,
			Title:       body.Title,
			Description: body.Description,
			Deadline:    deadline,
		}
		if err := db.DB.Create(&task).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusCreated, task)
	}
}

// GET /stages/:id/tasks
func ListStageTasksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		stage, _, ok := loadStage(c)
		if !ok {
			return
		}
		userID, _ := getUserIDFromContext(c)
		tasks, err := stageTasks(stage.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		done, err := completionSet(userID, tasks)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusOK, annotateTasks(tasks, done))
	}
}

// POST /tasks/:id/complete
//
// The unique (user_id, task_id) index makes a concurrent duplicate
// collapse into a no-op rather than a second completion. Stage and plan
// closure run on every call, duplicate or not, so a retry after a failed
// closure converges to the same final state.
func CompleteTaskHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Not authenticated"}})
			return
		}
		var task plan.Task
		if err := db.DB.First(&task, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Task not found"}})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			}
			return
		}
		var stage plan.Stage
		if err := db.DB.First(&stage, task.StageID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		var p plan.QuitPlan
		if err := db.DB.First(&p, stage.PlanID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		if !canAccessPlan(c, &p) {
			c.JSON(http.StatusForbidden, gin.H{"error": gin.H{"message": "Forbidden"}})
			return
		}

		tasks, err := stageTasks(stage.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		done, err := completionSet(userID, tasks)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		index := -1
		for i, t := range tasks {
			if t.ID == task.ID {
				index = i
				break
			}
		}
		if index < 0 {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Task not in stage"}})
			return
		}

		// A duplicate still runs stage resolution below: if closing the
		// stage failed after the completion row was written, the retry is
		// what finishes the job.
		duplicate := done[task.ID]
		if !duplicate {
			if !plan.CanComplete(task, index, tasks, done, stage, time.Now()) {
				progressionLog.LogGateRejection(userID, task.ID, "stage end date not reached")
				c.JSON(http.StatusConflict, gin.H{"error": gin.H{"message": plan.ErrTaskLocked.Error()}})
				return
			}
			completion := plan.TaskCompletion{UserID: userID, TaskID: task.ID, CompletedAt: time.Now()}
			res := db.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&completion)
			if res.Error != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
				return
			}
			duplicate = res.RowsAffected == 0
			done[task.ID] = true
		}
		progressionLog.LogTaskCompletion(userID, task.ID, duplicate)

		var stages []plan.Stage
		if err := db.DB.Where("plan_id = ?", p.ID).Find(&stages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		outcome := plan.ResolveCompletion(stage, tasks, done, stages)
		if outcome.StageCompleted {
			err = db.DB.Transaction(func(tx *gorm.DB) error {
				if stage.Status != plan.StageCompleted {
					from := stage.Status
					if err := plan.TransitionStage(&stage, plan.StageCompleted); err != nil {
						return err
					}
					if err := tx.Save(&stage).Error; err != nil {
						return err
					}
					progressionLog.LogStageTransition(p.ID, stage.ID, from, plan.StageCompleted)
				}
				if outcome.PlanCompleted {
					// Safety pass: close any stage left behind so the
					// finished plan has no dangling pending stages.
					for i := range stages {
						if stages[i].ID == stage.ID || stages[i].Status == plan.StageCompleted {
							continue
						}
						from := stages[i].Status
						if err := plan.TransitionStage(&stages[i], plan.StageCompleted); err != nil {
							return err
						}
						if err := tx.Save(&stages[i]).Error; err != nil {
							return err
						}
						progressionLog.LogStageTransition(p.ID, stages[i].ID, from, plan.StageCompleted)
					}
				}
				if outcome.PlanCompleted && p.Status != plan.PlanCompleted {
					from := p.Status
					if err := plan.TransitionPlan(&p, plan.PlanCompleted); err != nil {
						return err
					}
					if err := tx.Save(&p).Error; err != nil {
						return err
					}
					progressionLog.LogPlanTransition(p.ID, from, plan.PlanCompleted)
				}
				return nil
			})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Progression error"}})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"completed": true, "duplicate": duplicate, "outcome": outcome})
	}
}

// POST /plans/:id/advance
//
// The sole path that puts a stage in_progress: closes the active stage if
// one exists and activates the next pending one. Never triggered
// implicitly by task completion.
func AdvanceStageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := loadPlan(c)
		if !ok {
			return
		}
		userID, _ := getUserIDFromContext(c)
		var stages []plan.Stage
		if err := db.DB.Where("plan_id = ?", p.ID).Find(&stages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		adv, err := plan.ResolveAdvance(stages)
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": gin.H{"message": err.Error()}})
			return
		}
		err = db.DB.Transaction(func(tx *gorm.DB) error {
			if adv.Close != nil {
				from := adv.Close.Status
				if err := plan.TransitionStage(adv.Close, plan.StageCompleted); err != nil {
					return err
				}
				if err := tx.Save(adv.Close).Error; err != nil {
					return err
				}
				progressionLog.LogStageTransition(p.ID, adv.Close.ID, from, plan.StageCompleted)
			}
			from := adv.Activate.Status
			if err := plan.TransitionStage(adv.Activate, plan.StageInProgress); err != nil {
				return err
			}
			if err := tx.Save(adv.Activate).Error; err != nil {
				return err
			}
			progressionLog.LogStageTransition(p.ID, adv.Activate.ID, from, plan.StageInProgress)
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Progression error"}})
			return
		}

		tasks, err := stageTasks(adv.Activate.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		done, err := completionSet(userID, tasks)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stage": adv.Activate, "tasks": annotateTasks(tasks, done)})
	}
}
