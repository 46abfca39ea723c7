package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quitcoach/internal/config"
	"quitcoach/internal/user"

	"github.com/gin-gonic/gin"
)

func middlewareConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.JWTSecret = "secret"
	cfg.Session.IdleMinutes = 30
	return cfg
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	cfg := middlewareConfig()
	rdb := testRedis(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(cfg, rdb, ""))
	r.GET("/test", func(c *gin.Context) {
		c.String(200, "OK")
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	cfg := middlewareConfig()
	rdb := testRedis(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(cfg, rdb, ""))
	r.GET("/test", func(c *gin.Context) {
		c.String(200, "OK")
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer not.a.valid.jwt")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for invalid JWT, got %d", w.Code)
	}
}

func TestAuthMiddleware_SessionInvalid(t *testing.T) {
	cfg := middlewareConfig()
	rdb := testRedis(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(cfg, rdb, ""))
	r.GET("/test", func(c *gin.Context) {
		c.String(200, "OK")
	})
	token, _ := GenerateJWT(cfg.Server.JWTSecret, 123, "user", "user", time.Minute)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	// No session in Redis, should be rejected
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for missing session, got %d", w.Code)
	}
}

func TestAuthMiddleware_RoleForbidden(t *testing.T) {
	cfg := middlewareConfig()
	rdb := testRedis(t)
	userId := uint(123)
	token, _ := GenerateJWT(cfg.Server.JWTSecret, userId, "plainuser", "user", time.Minute)
	_ = SetSession(rdb, userId, token, time.Minute)
	defer DeleteSession(rdb, userId)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(cfg, rdb, user.RoleCoach))
	r.GET("/test", func(c *gin.Context) {
		c.String(200, "OK")
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-coach, got %d", w.Code)
	}
}

func TestAuthMiddleware_AdminPassesRoleCheck(t *testing.T) {
	cfg := middlewareConfig()
	rdb := testRedis(t)
	userId := uint(222)
	token, _ := GenerateJWT(cfg.Server.JWTSecret, userId, "adminuser", string(user.RoleAdmin), time.Minute)
	_ = SetSession(rdb, userId, token, time.Minute)
	defer DeleteSession(rdb, userId)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(cfg, rdb, user.RoleCoach))
	r.GET("/test", func(c *gin.Context) {
		c.String(200, "OK")
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", w.Code)
	}
}
