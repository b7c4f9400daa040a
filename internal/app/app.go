package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"jobtracker_backend/database"
	"jobtracker_backend/internal/ai"
	"jobtracker_backend/internal/auth"
	"jobtracker_backend/internal/config"
	"jobtracker_backend/internal/email"
	"jobtracker_backend/internal/gmail"
	"jobtracker_backend/internal/handlers"
	"jobtracker_backend/internal/imageprocessor"
	"jobtracker_backend/internal/logger"
	"jobtracker_backend/internal/middleware"
	"jobtracker_backend/internal/oauth"
	"jobtracker_backend/internal/pdf"
	"jobtracker_backend/internal/ratelimit"
	"jobtracker_backend/internal/repositories"
	"jobtracker_backend/internal/routes"
	"jobtracker_backend/internal/services"
	"jobtracker_backend/internal/storage"
	"jobtracker_backend/internal/validator"
	"jobtracker_backend/internal/workers"
	"jobtracker_backend/pkg/apperrors"
)

const (
	appName         = "Job Tracker"
	shutdownTimeout = 15 * time.Second
	avatarQuality   = 85
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Connecting to database...")
	gormDB, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}
	logger.Info("Database connected")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := NewDependencies(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies", "error", err)
	}
	application, err := SetupRouter(cfg, gormDB, deps)
	if err != nil {
		logger.Fatal("Failed to set up router", "error", err)
	}
	if cfg.Workers.Enabled {
		application.StartWorkers(ctx, cfg, gormDB)
	}

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	application.Close()

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server stopped")
}

// Dependencies are the external collaborators of the services.
// Nil Scanner disables the Gmail import; nil Redis selects in-memory rate limits.
type Dependencies struct {
	Store     storage.Storage
	Sender    email.Sender
	Generator ai.Generator
	Renderer  pdf.Renderer
	Providers *oauth.Providers
	Scanner   gmail.Scanner
	Redis     *redis.Client
}

// NewDependencies builds the production collaborators from cfg. Optional
// integrations that are not configured fall back to disabled implementations.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	store, err := storage.NewStorage(storage.ConfigFrom(cfg))
	if err != nil {
		return nil, err
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	var sender email.Sender = email.LogSender{}
	if cfg.Email.SMTPHost != "" {
		smtp, err := email.NewSMTPSender(email.SMTPConfigFrom(cfg))
		if err != nil {
			return nil, err
		}
		sender = smtp
	} else {
		logger.Warn("SMTP host is empty, emails will only be logged")
	}

	generator, err := ai.NewGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	providers := oauth.NewProviders(cfg)
	var scanner gmail.Scanner
	if providers.Google != nil {
		scanner = gmail.NewScanner(providers.Google.Config())
	} else {
		logger.Warn("Google OAuth is not configured, Gmail import disabled")
	}

	return &Dependencies{
		Store:     store,
		Sender:    sender,
		Generator: generator,
		Renderer:  pdf.NewPlaywrightRenderer(0),
		Providers: providers,
		Scanner:   scanner,
		Redis:     connectRedis(ctx, cfg),
	}, nil
}

func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		logger.Warn("Redis address is empty, rate limits are kept in memory")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable, rate limits are kept in memory", "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info("Redis connected", "addr", cfg.Redis.Addr)
	return client
}

// Application is a wired router plus the resources it owns.
type Application struct {
	Router   *gin.Engine
	Services *services.ServiceContainer

	deps          *Dependencies
	localLimiters []workers.Sweeper
	stoppers      []interface{ Wait() }
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB, deps *Dependencies) (*Application, error) {
	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, auth.TokenTTLs{
		Access:  cfg.JWT.AccessTTL,
		Refresh: cfg.JWT.RefreshTTL,
	})
	if err != nil {
		return nil, err
	}

	serviceContainer, err := initializeServices(cfg, gormDB, tokens, deps)
	if err != nil {
		return nil, err
	}

	application := &Application{Services: serviceContainer, deps: deps}
	guards, err := application.initializeGuards(cfg, tokens)
	if err != nil {
		return nil, err
	}

	appHandlers := handlers.NewAppHandlers(serviceContainer, validator.New(), guards, !cfg.IsDevelopment())
	application.Router = initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(application.Router, appHandlers, gormDB, cfg.IsDevelopment())
	return application, nil
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB, tokens *auth.TokenManager, deps *Dependencies) (*services.ServiceContainer, error) {
	templates, err := email.NewTemplateManager()
	if err != nil {
		return nil, err
	}
	notifier := email.NewNotifier(deps.Sender, templates, appName, cfg.Email.FrontendURL)

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	userRepo := repositories.NewUserRepository()
	refreshTokenRepo := repositories.NewRefreshTokenRepository()
	jobRepo := repositories.NewJobRepository()
	resumeRepo := repositories.NewResumeRepository()
	reminderRepo := repositories.NewReminderRepository()
	analyticsRepo := repositories.NewAnalyticsRepository()
	statsRepo := repositories.NewStatsRepository(sqlDB)

	authService := services.NewAuthService(userRepo, refreshTokenRepo, tokens, notifier, deps.Providers, services.TokenLifetimes{
		Reset:  cfg.JWT.ResetTTL,
		Verify: cfg.JWT.VerifyTTL,
	})
	jobService := services.NewJobService(jobRepo, reminderRepo, resumeRepo, userRepo, statsRepo, analyticsRepo, notifier, deps.Generator, deps.Scanner)
	userService := services.NewUserService(userRepo, jobRepo, resumeRepo, reminderRepo, analyticsRepo, refreshTokenRepo,
		deps.Store, imageprocessor.NewProcessor(avatarQuality), jobService)
	resumeService := services.NewResumeService(resumeRepo, jobRepo, userRepo, analyticsRepo, deps.Generator, deps.Renderer, deps.Store, cfg.Email.FrontendURL)
	reminderService := services.NewReminderService(reminderRepo, jobRepo, userRepo, analyticsRepo, notifier)
	analyticsService := services.NewAnalyticsService(jobRepo, resumeRepo, reminderRepo, analyticsRepo)

	return &services.ServiceContainer{
		AuthService:      authService,
		UserService:      userService,
		JobService:       jobService,
		ResumeService:    resumeService,
		ReminderService:  reminderService,
		AnalyticsService: analyticsService,
	}, nil
}

// initializeGuards builds the auth middleware and one limiter per scope.
func (a *Application) initializeGuards(cfg *config.Config, tokens *auth.TokenManager) (handlers.Guards, error) {
	authLimit, err := a.newLimiter("auth", cfg.RateLimit.Auth)
	if err != nil {
		return handlers.Guards{}, err
	}
	apiLimit, err := a.newLimiter("api", cfg.RateLimit.API)
	if err != nil {
		return handlers.Guards{}, err
	}
	aiLimit, err := a.newLimiter("ai", cfg.RateLimit.AI)
	if err != nil {
		return handlers.Guards{}, err
	}

	return handlers.Guards{
		Auth:      middleware.AuthMiddleware(tokens),
		AuthLimit: middleware.RateLimitMiddleware(authLimit, "auth"),
		APILimit:  middleware.RateLimitMiddleware(apiLimit, "api"),
		AILimit:   middleware.RateLimitMiddleware(aiLimit, "ai"),
	}, nil
}

func (a *Application) newLimiter(scope string, rule config.RateRule) (ratelimit.Limiter, error) {
	if a.deps.Redis != nil {
		return ratelimit.NewFixedWindowLimiter(a.deps.Redis, "ratelimit:"+scope, ratelimit.RuleFrom(rule))
	}
	local, err := ratelimit.NewLocalLimiter(ratelimit.RuleFrom(rule))
	if err != nil {
		return nil, err
	}
	a.localLimiters = append(a.localLimiters, local)
	return local, nil
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	router.MaxMultipartMemory = imageprocessor.MaxUploadBytes

	// local uploads (avatars, resume PDFs) are served from the same process
	if cfg.Storage.Type == "local" && cfg.Storage.BaseURL != "" && cfg.Storage.BasePath != "" {
		router.Static(cfg.Storage.BaseURL, cfg.Storage.BasePath)
	}
	return router
}

// StartWorkers launches the background jobs; they stop when ctx is cancelled.
func (a *Application) StartWorkers(ctx context.Context, cfg *config.Config, db *gorm.DB) {
	reminders := workers.NewReminderWorker(db, a.Services.ReminderService, cfg.Workers.ReminderInterval)
	snapshots := workers.NewAnalyticsWorker(db, a.Services.AnalyticsService, cfg.Workers.AnalyticsInterval)
	limiters := workers.NewLimiterWorker(0, 0, a.localLimiters...)

	reminders.Start(ctx)
	snapshots.Start(ctx)
	limiters.Start(ctx)
	a.stoppers = append(a.stoppers, reminders, snapshots, limiters)
	logger.Info("Background workers started",
		"reminder_interval", cfg.Workers.ReminderInterval,
		"analytics_interval", cfg.Workers.AnalyticsInterval,
	)
}

// Close waits for the workers and releases the browser and Redis client.
func (a *Application) Close() {
	for _, w := range a.stoppers {
		w.Wait()
	}
	if a.deps.Renderer != nil {
		if err := a.deps.Renderer.Close(); err != nil {
			logger.Warn("PDF renderer close failed", "error", err)
		}
	}
	if a.deps.Redis != nil {
		if err := a.deps.Redis.Close(); err != nil {
			logger.Warn("Redis close failed", "error", err)
		}
	}
}
