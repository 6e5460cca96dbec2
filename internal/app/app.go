package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"course_market_backend/internal/config"
	"course_market_backend/internal/controller"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/service"
	"course_market_backend/pkg/configwatcher"
	"course_market_backend/pkg/database"
	"course_market_backend/pkg/logger"
	"course_market_backend/pkg/monitoring"
	"course_market_backend/pkg/payment"
	"course_market_backend/pkg/security"
	"course_market_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	verifier        *payment.Verifier
	configCallbacks []func(*config.Config)
}

type repositories struct {
	student    *repository.StudentRepository
	course     *repository.CourseRepository
	enrollment *repository.EnrollmentRepository
	completion *repository.CompletionRepository
}

type services struct {
	student    *service.StudentService
	catalog    *service.CatalogService
	storage    *service.StorageService
	enrollment *service.EnrollmentService
	progress   *service.ProgressService
	access     *service.AccessService
}

type controllers struct {
	webhook    *controller.WebhookController
	course     *controller.CourseController
	progress   *controller.ProgressController
	enrollment *controller.EnrollmentController
	student    *controller.StudentController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		student:    repository.NewStudentRepository(db),
		course:     repository.NewCourseRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		completion: repository.NewCompletionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) (*services, error) {
	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	s := &services{}
	s.storage = storage
	s.student = service.NewStudentService(repos.student)
	s.catalog = service.NewCatalogService(repos.course, rdb)
	s.enrollment = service.NewEnrollmentService(repos.student, repos.enrollment, cfg.Payment.MinorUnitFactor)
	s.progress = service.NewProgressService(s.catalog, repos.completion, repos.enrollment)
	s.access = service.NewAccessService(repos.student, repos.enrollment)
	return s, nil
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		webhook:    controller.NewWebhookController(a.verifier, s.enrollment),
		course:     controller.NewCourseController(s.catalog, s.access, s.student, s.storage),
		progress:   controller.NewProgressController(s.progress, s.student),
		enrollment: controller.NewEnrollmentController(repos.enrollment, s.student),
		student:    controller.NewStudentController(s.student),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
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

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		verifier: payment.NewVerifier(cfg.Payment.WebhookSecret, cfg.Payment.Tolerance()),
	}

	// Webhook secret rotation without a restart.
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.verifier.UpdateSecret(newCfg.Payment.WebhookSecret)
		logger.Log.Info("Webhook verifier secret reloaded")
	})

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	controllers := app.initControllers(services, repos, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("course-market", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	// Lesson media served straight from disk in dev.
	if cfg.Storage.Type == "local" || cfg.Storage.Type == "" {
		if cfg.Storage.LocalPath != "" {
			router.Static("/media", cfg.Storage.LocalPath)
		}
	}

	return app
}

func (a *App) Run() {
	go configwatcher.WatchConfig("configs/config.yaml", func(cfg *config.Config) {
		for _, callback := range a.configCallbacks {
			callback(cfg)
		}
	})

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

	// In-flight webhook deliveries get a grace window; an insert already
	// issued must be allowed to complete so the provider's retry reconciles
	// against a durable row.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
