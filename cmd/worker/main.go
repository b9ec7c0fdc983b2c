// Package main - точка входа фоновых процессов (Worker) SkillForge Learning Hub.
//
// Worker отвечает за периодические задачи:
// - Сверка денормализованных счётчиков записей на курсы
// - Перестроение кешированного рейтинга студентов
// - Очистка прочитанных уведомлений
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skillforge/skillforge-learning-hub/config"
	"github.com/skillforge/skillforge-learning-hub/internal/infrastructure/messaging"
	"github.com/skillforge/skillforge-learning-hub/internal/infrastructure/persistence/postgres"
	"github.com/skillforge/skillforge-learning-hub/internal/infrastructure/persistence/redis"
	"github.com/skillforge/skillforge-learning-hub/internal/infrastructure/scheduler"
	"github.com/skillforge/skillforge-learning-hub/internal/infrastructure/scheduler/jobs"
	"github.com/skillforge/skillforge-learning-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})
	log.Info("starting worker",
		logger.String("app", cfg.App.Name),
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// Worker мигрирует схему наравне с сервером: кто первый стартует.
	// ─────────────────────────────────────────────────────────────────────────
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS
	// ─────────────────────────────────────────────────────────────────────────
	var leaderboardCache *redis.LeaderboardCache

	if !cfg.Redis.Disabled {
		redisCfg := redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}

		cache, err := redis.NewCache(ctx, redisCfg)
		if err != nil {
			log.Warn("failed to connect to redis, leaderboard rebuild disabled", logger.Err(err))
		} else {
			defer cache.Close()
			leaderboardCache = redis.NewLeaderboardCache(cache, cfg.Redis.LeaderboardTTL)
			log.Info("redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ И EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	studentRepo := postgres.NewStudentRepository(dbConn)
	courseRepo := postgres.NewCourseRepository(dbConn)
	enrollmentRepo := postgres.NewEnrollmentRepository(dbConn)
	notificationRepo := postgres.NewNotificationRepository(dbConn)

	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busCfg)
	defer eventBus.Close()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ПЛАНИРОВЩИК И ЗАДАЧИ
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.NewScheduler(scheduler.Config{
		Logger:            log,
		Timezone:          cfg.App.Location,
		MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
		JobTimeout:        cfg.Scheduler.JobTimeout,
	})

	reconcile := jobs.NewReconcileEnrollmentsJob(enrollmentRepo, courseRepo, eventBus, log)
	if err := sched.Register(reconcile, scheduler.Every(cfg.Scheduler.ReconcileCountsInterval)); err != nil {
		return fmt.Errorf("failed to register job: %w", err)
	}

	if leaderboardCache != nil {
		rebuild := jobs.NewRebuildLeaderboardJob(studentRepo, leaderboardCache, eventBus, log)
		if err := sched.Register(rebuild, scheduler.Every(cfg.Scheduler.RebuildLeaderboardInterval)); err != nil {
			return fmt.Errorf("failed to register job: %w", err)
		}
	}

	cleanup := jobs.NewCleanupNotificationsJob(notificationRepo, jobs.DefaultNotificationRetention, log)
	if err := sched.Register(cleanup, scheduler.Every(cfg.Scheduler.CleanupInterval)); err != nil {
		return fmt.Errorf("failed to register job: %w", err)
	}

	if !cfg.Scheduler.Enabled {
		log.Warn("scheduler disabled by configuration, worker will idle")
	} else {
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ОЖИДАНИЕ СИГНАЛА ЗАВЕРШЕНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case <-ctx.Done():
	}

	if sched.IsRunning() {
		if err := sched.Stop(); err != nil {
			log.Error("failed to stop scheduler", logger.Err(err))
		}
	}

	log.Info("worker stopped")
	return nil
}
