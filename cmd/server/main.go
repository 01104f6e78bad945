package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/school-portal/internal/access"
	"github.com/segyhp/school-portal/internal/cache"
	"github.com/segyhp/school-portal/internal/config"
	"github.com/segyhp/school-portal/internal/handler"
	"github.com/segyhp/school-portal/internal/metrics"
	"github.com/segyhp/school-portal/internal/repository"
	"github.com/segyhp/school-portal/internal/service"
	"github.com/segyhp/school-portal/internal/storage"
	"github.com/segyhp/school-portal/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init("school-portal", cfg.Logging.Level, cfg.Logging.Format)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(context.Background(), db); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to apply schema")
		}
		logger.Logger.Info().Msg("Database schema applied")
	}

	// Initialize Redis; the cache degrades to a no-op without it
	redisClient := initRedis(cfg)
	var appCache cache.Cache = cache.Noop{}
	if redisClient != nil {
		defer redisClient.Close()
		appCache = cache.New(redisClient, cfg.GetCacheTTL())
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	store := storage.NewOSFileStore(cfg.Storage.Root, cfg.Storage.MaxUploadBytes, cfg.GetAllowedExtensions())
	routes := buildRoutes(cfg, db, appCache, store)

	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())
	auth := handler.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if cfg.Auth.JWTSecret == "" {
		logger.Logger.Warn().Str("header", handler.DevUserHeader).Msg("JWT_SECRET is empty; callers are taken from the dev header")
	}

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler.NewRouter(routes, healthHandler, auth, cfg.GetCORSOrigins()),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	go func() {
		logger.Logger.Info().Str("addr", server.Addr).Str("env", cfg.Server.Env).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Logger.Info().Msg("Server exited")
}

func buildRoutes(cfg *config.Config, db *sqlx.DB, appCache cache.Cache, store *storage.FileStore) handler.Routes {
	opts := service.NewOptions(cfg)
	tx := repository.NewTransactor(db)

	// Repositories
	students := repository.NewStudentRepository(db)
	teachers := repository.NewTeacherRepository(db)
	parents := repository.NewParentRepository(db)
	advisors := repository.NewAdvisorRepository(db)
	templates := repository.NewPaymentPlanRepository(db)
	studentPlans := repository.NewStudentPaymentPlanRepository(db)
	installments := repository.NewInstallmentRepository(db)
	payments := repository.NewPaymentRepository(db)
	terms := repository.NewAcademicTermRepository(db)
	courses := repository.NewCourseRepository(db)
	classrooms := repository.NewClassroomRepository(db)
	schedules := repository.NewScheduleRepository(db)
	assignments := repository.NewAssignmentRepository(db)

	resolver := access.NewResolver(repository.NewIdentityProvider(db), teachers, parents, advisors, appCache, cfg.Access.DefaultAllow)

	routes := handler.Routes{
		Payments: handler.NewPaymentHandler(
			service.NewPaymentPlanService(templates, opts),
			service.NewStudentPaymentPlanService(tx, templates, studentPlans, installments, students, opts),
			service.NewPaymentInstallmentService(tx, installments, studentPlans, payments, appCache, opts),
			service.NewPaymentService(tx, payments, installments, studentPlans, students, appCache, opts),
			resolver,
		),
		Academic: handler.NewAcademicHandler(
			service.NewAcademicTermService(tx, terms, appCache, opts),
			service.NewCourseService(courses, opts),
			service.NewClassroomService(classrooms, schedules, opts),
			service.NewScheduleService(schedules, terms, courses, teachers, classrooms, opts),
			service.NewStudentClassAssignmentService(assignments, students, terms, classrooms, opts),
			resolver,
		),
		Community: handler.NewCommunityHandler(
			service.NewAnnouncementService(repository.NewAnnouncementRepository(db), opts),
			service.NewCalendarEventService(repository.NewCalendarEventRepository(db), terms, opts),
			service.NewClubService(tx, repository.NewClubRepository(db), students, teachers, opts),
			service.NewNotificationService(repository.NewNotificationRepository(db), installments, parents, students, cfg.Business.Currency, opts),
			resolver,
		),
		People: handler.NewPeopleHandler(
			service.NewParentService(parents, students, resolver, opts),
			service.NewCoachingSessionService(repository.NewCoachingSessionRepository(db), teachers, students, opts),
			access.NewAdvisorAccessService(resolver, teachers, students, advisors),
			access.NewParentAccessService(resolver),
			resolver,
		),
		Documents: handler.NewDocumentHandler(
			service.NewStudentDocumentService(repository.NewDocumentRepository(db), students, store, opts),
			service.NewCertificateService(repository.NewCertificateRepository(db), students, store, opts),
			cfg.Storage.MaxUploadBytes,
			resolver,
		),
	}
	return routes
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		logger.Logger.Info().Msg("Redis disabled; caching is off")
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
