package api

import (
	"net/http"
	"time"

	"quitcoach/internal/db"
	"quitcoach/internal/user"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

type ProfileRequest struct {
	QuitDate          string  `json:"quit_date"` // YYYY-MM-DD
	CigarettesPerDay  int     `json:"cigarettes_per_day"`
	PricePerPack      float64 `json:"price_per_pack"`
	CigarettesPerPack int     `json:"cigarettes_per_pack"`
}

// PUT /profile
func UpsertProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Not authenticated"}})
			return
		}
		var req ProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		quitDate, err := time.Parse("2006-01-02", req.QuitDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "quit_date must be YYYY-MM-DD"}})
			return
		}
		if req.CigarettesPerDay <= 0 || req.CigarettesPerPack <= 0 || req.PricePerPack < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Baseline values must be positive"}})
			return
		}
		profile := user.SmokerProfile{
			UserID:            userID,
			QuitDate:          quitDate,
			CigarettesPerDay:  req.CigarettesPerDay,
			PricePerPack:      req.PricePerPack,
			CigarettesPerPack: req.CigarettesPerPack,
		}
		err = db.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"quit_date", "cigarettes_per_day", "price_per_pack", "cigarettes_per_pack", "updated_at",
			}),
		}).Create(&profile).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// GET /profile
func GetProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Not authenticated"}})
			return
		}
		var profile user.SmokerProfile
		if err := db.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Profile not found"}})
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}
