package api

import (
	"errors"
	"net/http"
	"time"

	"quitcoach/internal/db"
	"quitcoach/internal/progress"
	"quitcoach/internal/user"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProgressEntryBody struct {
	Date             string  `json:"date"` // YYYY-MM-DD, defaults to today
	StageID          *uint   `json:"stage_id"`
	CigarettesSmoked int     `json:"cigarettes_smoked"`
	MoneySaved       float64 `json:"money_saved"`
	HealthStatus     string  `json:"health_status"`
}

// PUT /progress
// One row per user per day; a second write for the same day overwrites
// the logged values instead of adding a row.
func UpsertProgressHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Not authenticated"}})
			return
		}
		var body ProgressEntryBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if body.CigarettesSmoked < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "cigarettes_smoked must not be negative"}})
			return
		}
		date := time.Now()
		if body.Date != "" {
			var err error
			date, err = time.Parse("2006-01-02", body.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "date must be YYYY-MM-DD"}})
				return
			}
		}
		entry := progress.Entry{
			UserID:           userID,
			Date:             datatypes.Date(date),
			StageID:          body.StageID,
			CigarettesSmoked: body.CigarettesSmoked,
			MoneySaved:       body.MoneySaved,
			HealthStatus:     body.HealthStatus,
		}
		if err := progress.Upsert(db.DB, &entry); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}

// GET /progress?from=YYYY-MM-DD&to=YYYY-MM-DD
func ListProgressHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Not authenticated"}})
			return
		}
		to := time.Now()
		from := to.AddDate(0, -1, 0)
		if v := c.Query("from"); v != "" {
			parsed, err := time.Parse("2006-01-02", v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "from must be YYYY-MM-DD"}})
				return
			}
			from = parsed
		}
		if v := c.Query("to"); v != "" {
			parsed, err := time.Parse("2006-01-02", v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "to must be YYYY-MM-DD"}})
				return
			}
			to = parsed
		}
		entries, err := progress.EntriesInRange(db.DB, userID, from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "List error"}})
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

// GET /stats
// Derives the summary from the smoker profile and the daily log since the
// quit date.
func StatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Not authenticated"}})
			return
		}
		var profile user.SmokerProfile
		if err := db.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Smoker profile not set"}})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			}
			return
		}
		now := time.Now()
		entries, err := progress.EntriesInRange(db.DB, userID, profile.QuitDate, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		baseline := progress.Baseline{
			QuitDate:          profile.QuitDate,
			CigarettesPerDay:  profile.CigarettesPerDay,
			PricePerPack:      profile.PricePerPack,
			CigarettesPerPack: profile.CigarettesPerPack,
		}
		c.JSON(http.StatusOK, progress.ComputeStats(baseline, entries, now))
	}
}
