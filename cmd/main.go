package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/asanalab/yogaflow-backend/internal/clients/gemini"
	rediscache "github.com/asanalab/yogaflow-backend/internal/clients/redis"
	"github.com/asanalab/yogaflow-backend/internal/db"
	"github.com/asanalab/yogaflow-backend/internal/handlers"
	"github.com/asanalab/yogaflow-backend/internal/logger"
	"github.com/asanalab/yogaflow-backend/internal/middleware"
	"github.com/asanalab/yogaflow-backend/internal/observability"
	"github.com/asanalab/yogaflow-backend/internal/repos"
	"github.com/asanalab/yogaflow-backend/internal/server"
	"github.com/asanalab/yogaflow-backend/internal/services"
	"github.com/asanalab/yogaflow-backend/internal/tracking"
	"github.com/asanalab/yogaflow-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Tracing
	ctx := context.Background()
	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "yogaflow-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownOtel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOtel(shutdownCtx)
		}()
	}

	// Database
	databaseService, err := db.NewDatabaseService(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err = databaseService.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration failed", "error", err)
	}
	theDB := databaseService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(theDB, log)
	userTokenRepo := repos.NewUserTokenRepo(theDB, log)
	profileRepo := repos.NewProfileRepo(theDB, log)
	sessionRepo := repos.NewSessionRepo(theDB, log)
	userStatsRepo := repos.NewUserStatsRepo(theDB, log)
	achievementRepo := repos.NewAchievementRepo(theDB, log)
	planRepo := repos.NewPlanRepo(theDB, log)

	// Clients
	log.Info("Setting up clients from main...")
	cache, err := rediscache.NewCache(log)
	if err != nil {
		log.Warn("Redis cache unavailable, continuing without it", "error", err)
		cache = nil
	}
	geminiClient, err := gemini.NewClient(log)
	if err != nil {
		log.Warn("Gemini unavailable, plans will use fallbacks", "error", err)
		geminiClient = nil
	}

	// Services
	log.Info("Setting up Services from main...")
	avatarService, err := services.NewAvatarService(theDB, log, userRepo)
	if err != nil {
		log.Error("Could not init AvatarService", "error", err)
		os.Exit(1)
	}
	authService := services.NewAuthService(theDB, log, userRepo, userTokenRepo, avatarService, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(theDB, log, userRepo, avatarService)
	profileService := services.NewProfileService(theDB, log, profileRepo)
	sessionService := services.NewSessionService(theDB, log, sessionRepo, userStatsRepo, achievementRepo, planRepo, profileRepo, cache)
	registry := tracking.NewRegistry()
	practiceService := services.NewPracticeService(log, registry, sessionService, cache)
	practiceService.RunLiveMirror(ctx)
	statsService := services.NewStatsService(theDB, log, sessionRepo, userStatsRepo, achievementRepo, profileRepo)
	planService := services.NewPlanService(theDB, log, planRepo, profileRepo, geminiClient)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	profileHandler := handlers.NewProfileHandler(profileService)
	practiceHandler := handlers.NewPracticeHandler(practiceService)
	statsHandler := handlers.NewStatsHandler(statsService, sessionService)
	planHandler := handlers.NewPlanHandler(planService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:     "yogaflow-backend",
		TracingEnabled:  observability.Enabled(),
		AvatarDir:       utils.GetEnv("AVATAR_DIR", "data/avatars", log),
		AuthHandler:     authHandler,
		AuthMiddleware:  authMiddleware,
		UserHandler:     userHandler,
		ProfileHandler:  profileHandler,
		PracticeHandler: practiceHandler,
		StatsHandler:    statsHandler,
		PlanHandler:     planHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
