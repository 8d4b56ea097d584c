package app

import (
	"context"
	"exam_portal_backend/internal/config"
	"exam_portal_backend/internal/controller"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/service"
	"exam_portal_backend/pkg/database"
	"exam_portal_backend/pkg/logger"
	"exam_portal_backend/pkg/monitoring"
	"exam_portal_backend/pkg/security"
	"exam_portal_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services

	stopBackground chan struct{}
}

type repositories struct {
	user         *repository.UserRepository
	question     *repository.QuestionRepository
	exam         *repository.ExamRepository
	attempt      *repository.AttemptRepository
	notification *repository.NotificationRepository
	outbox       *repository.OutboxRepository
}

type services struct {
	auth         *service.AuthService
	user         *service.UserService
	question     *service.QuestionService
	exam         *service.ExamService
	attempt      *service.AttemptService
	notification *service.NotificationService
	analytics    *service.AnalyticsService
	dispatcher   *service.OutboxDispatcher
	policy       *service.AccessPolicy
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	question     *controller.QuestionController
	exam         *controller.ExamController
	attempt      *controller.AttemptController
	notification *controller.NotificationController
	analytics    *controller.AnalyticsController
	health       *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	cacheTTL := time.Duration(cfg.Exam.CacheTTLSeconds) * time.Second
	return &repositories{
		user:         repository.NewUserRepository(db),
		question:     repository.NewQuestionRepository(db),
		exam:         repository.NewExamRepository(db, rdb, cacheTTL),
		attempt:      repository.NewAttemptRepository(db),
		notification: repository.NewNotificationRepository(db),
		outbox:       repository.NewOutboxRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.policy = service.NewAccessPolicy()
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.question = service.NewQuestionService(repos.question)
	s.exam = service.NewExamService(repos.exam, repos.question, db)
	s.attempt = service.NewAttemptService(repos.exam, repos.question, repos.attempt, nil)
	s.notification = service.NewNotificationService(repos.notification, repos.exam)
	s.analytics = service.NewAnalyticsService(db)
	s.dispatcher = service.NewOutboxDispatcher(repos.outbox, s.notification, logger.Log)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth, s.user),
		user:         controller.NewUserController(s.user),
		question:     controller.NewQuestionController(s.question),
		exam:         controller.NewExamController(s.exam, s.user, s.policy),
		attempt:      controller.NewAttemptController(s.attempt, s.exam, s.user, s.policy),
		notification: controller.NewNotificationController(s.notification),
		analytics:    controller.NewAnalyticsController(s.analytics, s.user),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the outbox dispatcher and the abandoned-attempt
// sweep on a shared interval until shutdown.
func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	interval := time.Duration(cfg.Exam.SweepIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	grace := time.Duration(cfg.Exam.AbandonGraceMinutes) * time.Minute

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-a.stopBackground:
				return
			case <-ticker.C:
				s.dispatcher.DispatchPending()

				n, err := s.attempt.SweepAbandoned(grace)
				if err != nil {
					logger.Log.Error("abandon sweep failed", zap.Error(err))
				} else if n > 0 {
					logger.Log.Info("swept expired attempts", zap.Int64("count", n))
				}
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.Server.Mode != "release" || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config:         cfg,
		DB:             db,
		Redis:          rdb,
		stopBackground: make(chan struct{}),
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg, db)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("exam-portal", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	app.startBackgroundTasks(services, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	close(a.stopBackground)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
