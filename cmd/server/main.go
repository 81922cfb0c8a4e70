package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"smartspeak/internal/audio"
	"smartspeak/internal/cache"
	"smartspeak/internal/config"
	"smartspeak/internal/content"
	"smartspeak/internal/database"
	"smartspeak/internal/dialogue"
	"smartspeak/internal/handlers"
	"smartspeak/internal/logger"
	"smartspeak/internal/repository"
	"smartspeak/internal/security"
	"smartspeak/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startup := handlers.NewStartupStatus(
		handlers.StepDatabase,
		handlers.StepMigrations,
		handlers.StepAdmin,
		handlers.StepRepair,
		handlers.StepServices,
	)

	// Initialize database with config (supports sqlite, postgres, mysql)
	startup.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close()
	log.Info("Database connection established", "type", cfg.DatabaseType)
	startup.CompleteStep(handlers.StepDatabase)
	startup.SetHealthCheck(db.Healthy)

	startup.SetCurrentStep(handlers.StepMigrations)
	applied, err := db.RunMigrations(cfg.MigrationsPath)
	if err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}
	log.Info("Migrations completed", "applied", len(applied))
	startup.CompleteStep(handlers.StepMigrations)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	convRepo := repository.NewConversationRepository(db)

	email, err := service.NewEmailService(ctx, service.EmailConfig{
		AWSRegion:  cfg.AWSRegion,
		FromEmail:  cfg.SESFromEmail,
		FromName:   cfg.SESFromName,
		AdminEmail: cfg.AdminNotifyEmail,
		AppBaseURL: cfg.AppBaseURL,
		Debug:      cfg.EmailDebug,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize email service", "error", err)
	}

	gamification := service.NewGamificationService(userRepo, log)
	authService := service.NewAuthService(userRepo, teacherRepo, adminRepo, gamification, email, log)

	startup.SetCurrentStep(handlers.StepAdmin)
	created, rehashed, err := authService.EnsureDefaultAdmin(cfg.DefaultAdminUsername, cfg.DefaultAdminPassword)
	if err != nil {
		log.Fatal("Failed to ensure default admin", "error", err)
	}
	if created {
		log.Warn("Default admin created, change its password", "username", cfg.DefaultAdminUsername)
	}
	if rehashed > 0 {
		log.Info("Admin passwords upgraded to bcrypt", "count", rehashed)
	}
	startup.CompleteStep(handlers.StepAdmin)

	startup.SetCurrentStep(handlers.StepRepair)
	gamification.MigrateLevelsAndBadges()
	if _, err := gamification.BackfillWeeklyXP(); err != nil {
		log.Warn("Weekly XP backfill failed", "error", err)
	}
	startup.CompleteStep(handlers.StepRepair)

	startup.SetCurrentStep(handlers.StepServices)
	contextCache := newContextCache(cfg, log)
	defer contextCache.Close()

	generator := newGenerator(ctx, cfg, log)

	// Initialize TTS service with audio directory
	tts := audio.NewTTSService(filepath.Join(cfg.StaticFilesPath, "audio"), "/static/audio", log)
	go tts.RunPruner(ctx, time.Hour, 24*time.Hour)

	contexts := service.NewContextService(convRepo, contextCache, log)
	coach := service.NewCoachService(contexts, generator, tts, gamification, log)
	practice := service.NewPracticeService(content.MustLoad(), generator, tts, gamification, log)

	limiter := security.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	go limiter.Run(ctx, 10*time.Minute)
	tokens := security.NewTokenService(cfg.SessionSecret, "smartspeak", cfg.SessionDuration)
	csrf := security.NewCSRFGenerator(cfg.SessionSecret)

	router := &handlers.Router{
		Middleware: handlers.NewMiddleware(tokens, csrf, limiter, log),
		Auth:       handlers.NewAuthHandler(authService, contexts, tokens, csrf, log),
		Practice:   handlers.NewPracticeHandler(practice, coach, log),
		Progress:   handlers.NewProgressHandler(gamification, log),
		Teacher:    handlers.NewTeacherHandler(service.NewTeacherService(userRepo, log), log),
		Admin:      handlers.NewAdminHandler(service.NewAdminService(userRepo, teacherRepo, email, log), service.NewBackupService(db, log), log),
		Startup:    startup,
		StaticDir:  cfg.StaticFilesPath,
	}
	startup.CompleteStep(handlers.StepServices)
	startup.MarkReady()

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", "http://localhost"+addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			stop()
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	log.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}

// newContextCache uses Redis when an address is configured and falls back to
// the in-process LRU otherwise
func newContextCache(cfg *config.Config, log *logger.Logger) cache.ContextCache {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache(cfg.ContextCacheSize, cfg.ContextCacheTTL)
	}
	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.ContextCacheTTL,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory context cache", "addr", cfg.RedisAddr, "error", err)
		return cache.NewMemoryCache(cfg.ContextCacheSize, cfg.ContextCacheTTL)
	}
	log.Info("Context cache connected to Redis", "addr", cfg.RedisAddr)
	return redisCache
}

// newGenerator returns the Gemini generator, or one that always fails so
// every caller takes its canned fallback
func newGenerator(ctx context.Context, cfg *config.Config, log *logger.Logger) dialogue.Generator {
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set, coach replies will use fallbacks")
		return dialogue.Unavailable{}
	}
	generator, err := dialogue.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Error("Failed to create Gemini client, coach replies will use fallbacks", "error", err)
		return dialogue.Unavailable{}
	}
	return generator
}
