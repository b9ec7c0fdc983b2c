// Package main - точка входа основного сервиса SkillForge Learning Hub.
//
// Сервис собирает ядро обучения: регистрацию и запись студентов,
// учёт прогресса с начислением баллов, контроль premium-доступа,
// оценку квизов, рекомендации и рейтинг. Наружу он отдаёт только
// health-эндпоинты; транспортный слой (HTTP API) живёт отдельно и
// вызывает обработчики команд и запросов напрямую.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge-learning-hub/config"
	"github.com/skillforge/skillforge-learning-hub/internal/application/command"
	"github.com/skillforge/skillforge-learning-hub/internal/application/query"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/notification"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/student"
	"github.com/skillforge/skillforge-learning-hub/internal/infrastructure/external/ai"
	"github.com/skillforge/skillforge-learning-hub/internal/infrastructure/messaging"
	"github.com/skillforge/skillforge-learning-hub/internal/infrastructure/persistence/postgres"
	"github.com/skillforge/skillforge-learning-hub/internal/infrastructure/persistence/redis"
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

// Application собирает все обработчики команд и запросов.
// Транспортный слой получает этот набор целиком.
type Application struct {
	// Команды
	RegisterStudent  *command.RegisterStudentHandler
	EnrollStudent    *command.EnrollStudentHandler
	UnenrollStudent  *command.UnenrollStudentHandler
	RecordProgress   *command.RecordProgressHandler
	UpdateLessons    *command.UpdateLessonProgressHandler
	GradeQuiz        *command.GradeQuizHandler
	ProcessPayment   *command.ProcessPaymentHandler
	AdjustPoints     *command.AdjustPointsHandler
	CreateContent    *command.CreateContentHandler
	CreateQuiz       *command.CreateQuizHandler
	MarkNotification *command.MarkNotificationReadHandler

	// Запросы
	GetProfile         *query.GetStudentProfileHandler
	GetLeaderboard     *query.GetLeaderboardHandler
	GetProgressSummary *query.GetProgressSummaryHandler
	GetCourseTree      *query.GetCourseTreeHandler
	CheckAccess        *query.CheckAccessHandler
	ListEnrollments    *query.ListEnrollmentsHandler
	ListNotifications  *query.ListNotificationsHandler
	GetRecommendations *query.GetRecommendationsHandler
	AskTutor           *query.AskTutorHandler
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})
	log.Info("starting server",
		logger.String("app", cfg.App.Name),
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. POSTGRESQL И МИГРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS (кеш рейтинга)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisCache       *redis.Cache
		leaderboardCache *redis.LeaderboardCache
	)

	if !cfg.Redis.Disabled {
		redisCache, err = redis.NewCache(ctx, redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn("failed to connect to redis, leaderboard cache disabled", logger.Err(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
			leaderboardCache = redis.NewLeaderboardCache(redisCache, cfg.Redis.LeaderboardTTL)
			log.Info("redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ВНЕШНИЕ КЛИЕНТЫ
	// ─────────────────────────────────────────────────────────────────────────
	var aiClient *ai.Client
	if !cfg.AI.Disabled {
		aiClient = ai.NewClient(ai.Config{
			BaseURL: cfg.AI.BaseURL,
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.RequestTimeout,
			RateLimiter: ai.RateLimiterConfig{
				RequestsPerMinute: cfg.AI.RateLimit,
				BurstSize:         cfg.AI.RateLimitBurst,
			},
			Logger: log,
		})
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busCfg)
	defer eventBus.Close()

	dispatcher := messaging.NewDispatcher(eventBus, log)
	if err := registerSubscribers(dispatcher, dbConn, leaderboardCache); err != nil {
		return fmt.Errorf("failed to register event subscribers: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. СБОРКА ПРИЛОЖЕНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	app := buildApplication(dbConn, leaderboardCache, aiClient, eventBus, cfg.Features)
	_ = app // обработчики отдаются транспортному слою

	log.Info("application wired",
		logger.Bool("leaderboard_cache", leaderboardCache != nil),
		logger.Bool("ai_client", aiClient != nil),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HEALTH HTTP-СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	healthSrv := newHealthServer(cfg.App.ListenAddr, dbConn, redisCache)
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health server failed", logger.Err(err))
		}
	}()
	log.Info("health server listening", logger.String("addr", cfg.App.ListenAddr))

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("health server shutdown failed", logger.Err(err))
	}

	log.Info("server stopped")
	return nil
}

// registerSubscribers подписывает побочные реакции на доменные события:
// сброс кеша рейтинга при изменении баллов и приветственное уведомление
// новым студентам. Команды этих забот не знают.
func registerSubscribers(
	dispatcher *messaging.Dispatcher,
	dbConn *postgres.Connection,
	leaderboardCache *redis.LeaderboardCache,
) error {
	notificationRepo := postgres.NewNotificationRepository(dbConn)

	regs := []messaging.Registration{
		{
			Name:      "welcome_notification",
			EventType: shared.EventStudentRegistered,
			Handler: func(event shared.Event) error {
				reg, ok := event.(shared.StudentRegisteredEvent)
				if !ok {
					return nil
				}
				n, err := notification.NewNotification(notification.NewNotificationParams{
					ID:        uuid.NewString(),
					StudentID: reg.AggregateID(),
					Title:     "Welcome to SkillForge!",
					Message:   fmt.Sprintf("Hi %s, pick a course and start earning points.", reg.DisplayName),
					Type:      notification.TypeSystem,
				})
				if err != nil {
					return err
				}
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return notificationRepo.Create(ctx, n)
			},
			MaxRetries: 2,
		},
	}

	if leaderboardCache != nil {
		regs = append(regs, messaging.Registration{
			Name:      "leaderboard_invalidation",
			EventType: shared.EventPointsAwarded,
			Handler: func(event shared.Event) error {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				return leaderboardCache.Invalidate(ctx)
			},
			MaxRetries: 1,
		})
	}

	return dispatcher.RegisterAll(regs...)
}

// buildApplication связывает репозитории, кеши и внешние клиенты
// с обработчиками команд и запросов.
func buildApplication(
	dbConn *postgres.Connection,
	leaderboardCache *redis.LeaderboardCache,
	aiClient *ai.Client,
	eventBus *messaging.InMemoryEventBus,
	flags *config.FeatureFlags,
) *Application {
	studentRepo := postgres.NewStudentRepository(dbConn)
	courseRepo := postgres.NewCourseRepository(dbConn)
	enrollmentRepo := postgres.NewEnrollmentRepository(dbConn)
	progressRepo := postgres.NewProgressRepository(dbConn)
	paymentRepo := postgres.NewPaymentRepository(dbConn)
	notificationRepo := postgres.NewNotificationRepository(dbConn)
	quizRepo := postgres.NewQuizRepository(dbConn)

	notifyOnEnroll := flags.IsEnabled(config.FeatureNotifyOnEnroll, nil)
	notifyOnComplete := flags.IsEnabled(config.FeatureNotifyOnComplete, nil)
	notifyOnPayment := flags.IsEnabled(config.FeatureNotifyOnPayment, nil)
	cacheEnabled := leaderboardCache != nil && flags.IsEnabled(config.FeatureLeaderboardCache, nil)
	aiFeedback := aiClient != nil && flags.IsEnabled(config.FeatureQuizAIFeedback, nil)
	aiRecommend := aiClient != nil && flags.IsEnabled(config.FeatureRecommendationsAI, nil)
	aiTutor := aiClient != nil && flags.IsEnabled(config.FeatureTutorChat, nil)

	// Интерфейсы кеша и AI принимают nil только за ненулевым типом,
	// поэтому отключённые зависимости передаются явно.
	var cache student.LeaderboardCache
	if leaderboardCache != nil {
		cache = leaderboardCache
	}
	var evaluator command.AnswerEvaluator
	var generator query.ExplanationGenerator
	var tutor query.TutorResponder
	if aiClient != nil {
		evaluator = aiClient
		generator = aiClient
		tutor = aiClient
	}

	return &Application{
		RegisterStudent:  command.NewRegisterStudentHandler(studentRepo, eventBus),
		EnrollStudent:    command.NewEnrollStudentHandler(enrollmentRepo, courseRepo, notificationRepo, eventBus, notifyOnEnroll),
		UnenrollStudent:  command.NewUnenrollStudentHandler(enrollmentRepo),
		RecordProgress:   command.NewRecordProgressHandler(progressRepo, enrollmentRepo, notificationRepo, eventBus, notifyOnComplete),
		UpdateLessons:    command.NewUpdateLessonProgressHandler(enrollmentRepo),
		GradeQuiz:        command.NewGradeQuizHandler(quizRepo, enrollmentRepo, evaluator, eventBus, aiFeedback),
		ProcessPayment:   command.NewProcessPaymentHandler(paymentRepo, studentRepo, notificationRepo, eventBus, notifyOnPayment),
		AdjustPoints:     command.NewAdjustPointsHandler(studentRepo, eventBus),
		CreateContent:    command.NewCreateContentHandler(courseRepo),
		CreateQuiz:       command.NewCreateQuizHandler(quizRepo, courseRepo),
		MarkNotification: command.NewMarkNotificationReadHandler(notificationRepo),

		GetProfile:         query.NewGetStudentProfileHandler(studentRepo),
		GetLeaderboard:     query.NewGetLeaderboardHandler(studentRepo, cache, cacheEnabled),
		GetProgressSummary: query.NewGetProgressSummaryHandler(progressRepo, courseRepo),
		GetCourseTree:      query.NewGetCourseTreeHandler(courseRepo),
		CheckAccess:        query.NewCheckAccessHandler(courseRepo, studentRepo),
		ListEnrollments:    query.NewListEnrollmentsHandler(enrollmentRepo, courseRepo),
		ListNotifications:  query.NewListNotificationsHandler(notificationRepo),
		GetRecommendations: query.NewGetRecommendationsHandler(courseRepo, enrollmentRepo, generator, aiRecommend),
		AskTutor:           query.NewAskTutorHandler(courseRepo, tutor, aiTutor),
	}
}

// newHealthServer поднимает /healthz и /readyz.
func newHealthServer(addr string, dbConn *postgres.Connection, cache *redis.Cache) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{"postgres": "ok"}
		status := http.StatusOK

		if err := dbConn.Ping(ctx); err != nil {
			checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if cache != nil {
			checks["redis"] = "ok"
			if err := cache.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}

		writeJSON(w, status, checks)
	})

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
