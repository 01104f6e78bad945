package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/segyhp/school-portal/internal/config"
	"github.com/segyhp/school-portal/internal/repository"
	"github.com/segyhp/school-portal/internal/service"
	"github.com/segyhp/school-portal/pkg/logger"
)

// jobTimeout bounds a single run of any job.
const jobTimeout = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init("school-portal-scheduler", cfg.Logging.Level, cfg.Logging.Format)
	logger.Logger.Info().Msg("Starting payment scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	opts := service.NewOptions(cfg)
	installmentRepo := repository.NewInstallmentRepository(db)
	studentPlans := repository.NewStudentPaymentPlanRepository(db)
	payments := repository.NewPaymentRepository(db)

	// The sweep does not read statistics, so it runs without a cache
	installments := service.NewPaymentInstallmentService(repository.NewTransactor(db), installmentRepo, studentPlans, payments, nil, opts)
	notifications := service.NewNotificationService(
		repository.NewNotificationRepository(db),
		installmentRepo,
		repository.NewParentRepository(db),
		repository.NewStudentRepository(db),
		cfg.Business.Currency,
		opts,
	)

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.GetSchedulerLocation()),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	setupCronJobs(c, cfg, installments, notifications)

	c.Start()
	logger.Logger.Info().Str("timezone", cfg.GetSchedulerLocation().String()).Msg("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down scheduler...")
	<-c.Stop().Done()
	logger.Logger.Info().Msg("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, installments *service.PaymentInstallmentService, notifications *service.NotificationService) {
	_, err := c.AddFunc(cfg.Scheduler.OverdueSpec, func() {
		runJob("overdue_sweep", func(ctx context.Context) (int, error) {
			return installments.SweepOverdue(ctx)
		})
	})
	if err != nil {
		logger.Logger.Fatal().Err(err).Str("spec", cfg.Scheduler.OverdueSpec).Msg("Error scheduling overdue sweep")
	}

	days := cfg.Scheduler.ReminderDays
	_, err = c.AddFunc(cfg.Scheduler.ReminderSpec, func() {
		runJob("payment_reminders", func(ctx context.Context) (int, error) {
			return notifications.SendPaymentReminders(ctx, days)
		})
	})
	if err != nil {
		logger.Logger.Fatal().Err(err).Str("spec", cfg.Scheduler.ReminderSpec).Msg("Error scheduling payment reminders")
	}

	logger.Logger.Info().
		Str("overdue_spec", cfg.Scheduler.OverdueSpec).
		Str("reminder_spec", cfg.Scheduler.ReminderSpec).
		Int("reminder_days", days).
		Msg("Cron jobs scheduled successfully")
}

func runJob(name string, fn func(ctx context.Context) (int, error)) {
	l := logger.Logger.With().Str("job", name).Logger()
	ctx, cancel := context.WithTimeout(logger.WithContext(context.Background(), l), jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := fn(ctx)
	if err != nil {
		l.Error().Err(err).Dur("duration", time.Since(start)).Msg("Job failed")
		return
	}
	l.Info().Int("affected", n).Dur("duration", time.Since(start)).Msg("Job finished")
}
