package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/asanalab/yogaflow-backend/internal/handlers"
	"github.com/asanalab/yogaflow-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName     string
	TracingEnabled  bool
	AvatarDir       string
	AuthHandler     *handlers.AuthHandler
	AuthMiddleware  *middleware.AuthMiddleware
	UserHandler     *handlers.UserHandler
	ProfileHandler  *handlers.ProfileHandler
	PracticeHandler *handlers.PracticeHandler
	StatsHandler    *handlers.StatsHandler
	PlanHandler     *handlers.PlanHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.Static("/avatars", cfg.AvatarDir)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.PUT("/user/avatar", cfg.UserHandler.UpdateAvatar)
	// Onboarding profile
	protected.GET("/profile", cfg.ProfileHandler.GetProfile)
	protected.PUT("/profile", cfg.ProfileHandler.SaveProfile)
	// Practice session lifecycle
	protected.POST("/practice/start", cfg.PracticeHandler.StartSession)
	protected.POST("/practice/pose", cfg.PracticeHandler.StartPose)
	protected.POST("/practice/pose/end", cfg.PracticeHandler.EndPose)
	protected.POST("/practice/detections", cfg.PracticeHandler.IngestDetections)
	protected.GET("/practice/live", cfg.PracticeHandler.LiveStats)
	protected.POST("/practice/end", cfg.PracticeHandler.EndSession)
	protected.POST("/practice/cancel", cfg.PracticeHandler.CancelSession)
	// Stats and history
	protected.GET("/stats/dashboard", cfg.StatsHandler.GetDashboard)
	protected.GET("/stats/achievements", cfg.StatsHandler.GetAchievements)
	protected.GET("/sessions", cfg.StatsHandler.GetHistory)
	protected.GET("/sessions/:id", cfg.StatsHandler.GetSession)
	// Plans
	protected.POST("/plans/generate", cfg.PlanHandler.GeneratePlan)
	protected.GET("/plans", cfg.PlanHandler.GetPlans)
	protected.GET("/plans/daily-challenge", cfg.PlanHandler.DailyChallenge)

	return router
}
