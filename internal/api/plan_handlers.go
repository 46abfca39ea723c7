package api

import (
	"errors"
	"net/http"
	"time"

	"quitcoach/internal/db"
	"quitcoach/internal/plan"
	"quitcoach/internal/user"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var progressionLog = plan.NewProgressionLogger()

type PlanRequestBody struct {
	CoachID uint   `json:"coach_id"`
	Reason  string `json:"reason"`
}

// POST /plan-requests
func CreatePlanRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Not authenticated"}})
			return
		}
		var req PlanRequestBody
		if err := c.ShouldBindJSON(&req); err != nil || req.CoachID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "coach_id required"}})
			return
		}
		var coach user.User
		if err := db.DB.First(&coach, req.CoachID).Error; err != nil || (coach.Role != user.RoleCoach && coach.Role != user.RoleAdmin) {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "No such coach"}})
			return
		}
		pr := plan.PlanRequest{
			UserID:  userID,
			CoachID: req.CoachID,
			Reason:  req.Reason,
			Status:  plan.RequestPending,
		}
		if err := db.DB.Create(&pr).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusCreated, pr)
	}
}

// GET /plan-requests  [coach]
func ListPlanRequestsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		coachID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Not authenticated"}})
			return
		}
		var requests []plan.PlanRequest
		if err := db.DB.Where("coach_id = ?", coachID).Order("created_at desc").Find(&requests).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "List error"}})
			return
		}
		c.JSON(http.StatusOK, requests)
	}
}

// loadPendingRequestForCoach fetches the request and checks it belongs to
// the acting coach (admins may act on any request).
func loadPendingRequestForCoach(c *gin.Context) (*plan.PlanRequest, bool) {
	coachID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Not authenticated"}})
		return nil, false
	}
	var pr plan.PlanRequest
	if err := db.DB.First(&pr, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Request not found"}})
		return nil, false
	}
	role, _ := c.Get("userRole")
	if pr.CoachID != coachID && role != string(user.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": gin.H{"message": "Not your request"}})
		return nil, false
	}
	if pr.Status != plan.RequestPending {
		c.JSON(http.StatusConflict, gin.H{"error": gin.H{"message": "Request already resolved"}})
		return nil, false
	}
	return &pr, true
}

type ApproveRequestBody struct {
	StartDate      string `json:"start_date"`       // YYYY-MM-DD, defaults to today
	TargetQuitDate string `json:"target_quit_date"` // YYYY-MM-DD
}

// POST /plan-requests/:id/approve  [coach]
// Approval is what creates the plan; it starts active with no stages.
func ApprovePlanRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		pr, ok := loadPendingRequestForCoach(c)
		if !ok {
			return
		}
		var body ApproveRequestBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		target, err := time.Parse("2006-01-02", body.TargetQuitDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "target_quit_date must be YYYY-MM-DD"}})
			return
		}
		start := time.Now()
		if body.StartDate != "" {
			start, err = time.Parse("2006-01-02", body.StartDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "start_date must be YYYY-MM-DD"}})
				return
			}
		}

		newPlan := plan.QuitPlan{
			UserID:         pr.UserID,
			CoachID:        &pr.CoachID,
			Reason:         pr.Reason,
			StartDate:      start,
			TargetQuitDate: target,
			Status:         plan.PlanDraft,
		}
		if err := plan.TransitionPlan(&newPlan, plan.PlanActive); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Plan activation failed"}})
			return
		}
		err = db.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&newPlan).Error; err != nil {
				return err
			}
			pr.Status = plan.RequestApproved
			return tx.Save(pr).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		progressionLog.LogPlanTransition(newPlan.ID, plan.PlanDraft, plan.PlanActive)
		c.JSON(http.StatusCreated, newPlan)
	}
}

// POST /plan-requests/:id/reject  [coach]
func RejectPlanRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		pr, ok := loadPendingRequestForCoach(c)
		if !ok {
			return
		}
		pr.Status = plan.RequestRejected
		if err := db.DB.Save(pr).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusOK, pr)
	}
}

// canAccessPlan allows the plan owner, its coach, and admins.
func canAccessPlan(c *gin.Context, p *plan.QuitPlan) bool {
	userID, _ := getUserIDFromContext(c)
	role, _ := c.Get("userRole")
	if p.UserID == userID || role == string(user.RoleAdmin) {
		return true
	}
	return p.CoachID != nil && *p.CoachID == userID
}

func loadPlan(c *gin.Context) (*plan.QuitPlan, bool) {
	var p plan.QuitPlan
	if err := db.DB.First(&p, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Plan not found"}})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
		}
		return nil, false
	}
	if !canAccessPlan(c, &p) {
		c.JSON(http.StatusForbidden, gin.H{"error": gin.H{"message": "Forbidden"}})
		return nil, false
	}
	return &p, true
}

// GET /plans
func ListPlansHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Not authenticated"}})
			return
		}
		var plans []plan.QuitPlan
		if err := db.DB.Where("user_id = ? OR coach_id = ?", userID, userID).Order("created_at desc").Find(&plans).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "List error"}})
			return
		}
		c.JSON(http.StatusOK, plans)
	}
}

// GET /plans/:id
func GetPlanHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := loadPlan(c)
		if !ok {
			return
		}
		var stages []plan.Stage
		if err := db.DB.Where("plan_id = ?", p.ID).Order("stage_number asc").Find(&stages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		p.Stages = stages
		c.JSON(http.StatusOK, p)
	}
}

// GET /plans/:id/current-stage
func CurrentStageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := loadPlan(c)
		if !ok {
			return
		}
		var stages []plan.Stage
		if err := db.DB.Where("plan_id = ?", p.ID).Find(&stages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		current := plan.DetermineCurrentStage(stages)
		if current == nil {
			c.JSON(http.StatusOK, gin.H{"currentStage": nil, "planCompleted": p.Status == plan.PlanCompleted})
			return
		}
		c.JSON(http.StatusOK, gin.H{"currentStage": current})
	}
}

type CreateStageBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
	EndDate     string `json:"end_date"`   // YYYY-MM-DD
}

// POST /plans/:id/stages  [coach]
// New stages are validated against the existing sequence before creation;
// a rejected write leaves no partial state.
func CreateStageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := loadPlan(c)
		if !ok {
			return
		}
		var body CreateStageBody
		if err := c.ShouldBindJSON(&body); err != nil || body.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "title, start_date and end_date required"}})
			return
		}
		start, err := time.Parse("2006-01-02", body.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "start_date must be YYYY-MM-DD"}})
			return
		}
		end, err := time.Parse("2006-01-02", body.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "end_date must be YYYY-MM-DD"}})
			return
		}

		var existing []plan.Stage
		if err := db.DB.Where("plan_id = ?", p.ID).Find(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		if err := plan.ValidateNewStage(plan.StageWindow{StartDate: start, EndDate: end}, existing); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, plan.ErrOverlap) {
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"error": gin.H{"message": err.Error()}})
			return
		}

		number := 1
		for _, s := range existing {
			if s.StageNumber >= number {
				number = s.StageNumber + 1
			}
		}
		stage := plan.Stage{
			PlanID:      p.ID,
			StageNumber: number,
			Title:       body.Title,
			Description: body.Description,
			StartDate:   start,
			EndDate:     &end,
			Status:      plan.StagePending,
		}
		if err := db.DB.Create(&stage).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusCreated, stage)
	}
}
