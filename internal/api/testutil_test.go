package api

import (
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"quitcoach/internal/db"
	"quitcoach/internal/plan"
	"quitcoach/internal/progress"
	"quitcoach/internal/user"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dbConn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = dbConn.AutoMigrate(
		&user.User{},
		&user.SmokerProfile{},
		&plan.PlanRequest{},
		&plan.QuitPlan{},
		&plan.Stage{},
		&plan.Task{},
		&plan.TaskCompletion{},
		&progress.Entry{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.DB = dbConn
	for _, table := range []string{
		"task_completions", "tasks", "stages", "quit_plans",
		"plan_requests", "progress_entries", "smoker_profiles", "users",
	} {
		if err := dbConn.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("failed to reset table %s: %v", table, err)
		}
	}
	return dbConn
}

// Simulate middleware that sets userId and userRole
func withUser(id uint, role user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", id)
		c.Set("username", "test")
		c.Set("userRole", string(role))
		c.Next()
	}
}

func seedUser(t *testing.T, username string, role user.Role) user.User {
	t.Helper()
	u := user.User{Username: username, PasswordHash: "hash", Role: role}
	if err := db.DB.Create(&u).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return u
}

func doJSON(t *testing.T, r *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func toStrUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}
