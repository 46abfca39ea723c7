package api

import (
	"path"

	"quitcoach/internal/auth"
	"quitcoach/internal/config"
	"quitcoach/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RequestIDMiddleware tags every request with an id for log correlation.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, rdb *redis.Client) *gin.Engine {
	r := gin.Default()
	r.Use(RequestIDMiddleware())
	subpath := cfg.Server.Subpath // e.g. "/quitcoach" or any custom path, always starts with '/'

	anyUser := auth.AuthMiddleware(cfg, rdb, "")
	coachOnly := auth.AuthMiddleware(cfg, rdb, user.RoleCoach)
	adminOnly := auth.AuthMiddleware(cfg, rdb, user.RoleAdmin)

	group := r.Group(path.Join("/", subpath))
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg))

		// Setup: only if no users
		group.POST("/setup", SetupHandler())

		// Auth
		group.POST("/auth/login", LoginHandler(cfg, rdb))
		group.POST("/auth/logout", anyUser, LogoutHandler(rdb))
		group.GET("/auth/me", anyUser, MeHandler())

		// Admin: users
		group.GET("/users", adminOnly, ListUsersHandler())
		group.POST("/users", adminOnly, CreateUserHandler())
		group.GET("/users/:id", adminOnly, GetUserByIdHandler())
		group.PUT("/users/:id", adminOnly, UpdateUserByIdHandler())
		group.DELETE("/users/:id", adminOnly, DeleteUserByIdHandler())

		// Smoker baseline profile
		group.GET("/profile", anyUser, GetProfileHandler())
		group.PUT("/profile", anyUser, UpsertProfileHandler())

		// Coaching requests
		group.POST("/plan-requests", anyUser, CreatePlanRequestHandler())
		group.GET("/plan-requests", coachOnly, ListPlanRequestsHandler())
		group.POST("/plan-requests/:id/approve", coachOnly, ApprovePlanRequestHandler())
		group.POST("/plan-requests/:id/reject", coachOnly, RejectPlanRequestHandler())

		// Plans and stages
		group.GET("/plans", anyUser, ListPlansHandler())
		group.GET("/plans/:id", anyUser, GetPlanHandler())
		group.GET("/plans/:id/current-stage", anyUser, CurrentStageHandler())
		group.POST("/plans/:id/stages", coachOnly, CreateStageHandler())
		group.POST("/plans/:id/advance", anyUser, AdvanceStageHandler())

		// Tasks and completion
		group.POST("/stages/:id/tasks", coachOnly, CreateTaskHandler())
		group.GET("/stages/:id/tasks", anyUser, ListStageTasksHandler())
		group.POST("/tasks/:id/complete", anyUser, CompleteTaskHandler())

		// Daily ledger and statistics
		group.PUT("/progress", anyUser, UpsertProgressHandler())
		group.GET("/progress", anyUser, ListProgressHandler())
		group.GET("/stats", anyUser, StatsHandler())
	}
	return r
}
