// Package main - точка входа REST API сервера TestMancer.
//
// API отвечает за весь пользовательский трафик:
// - Регистрация, вход и сессии
// - Каталог курсов, квизов и ресурсов с фильтрацией по аудитории
// - Прохождение контента и начисление камней через журнал наград
// - Рейтинг по предметам и таймфреймам
//
// Философия: "Учёба как игра" - подготовка к WAEC и JAMB держится на
// ежедневных наградах, сериях и прозрачном рейтинге.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/RoyalPrince700/testmancernew-sub000/config"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/application/command"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/application/eventhandler"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/application/query"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/access"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/content"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/leaderboard"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/progress"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/reward"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/infrastructure/messaging"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/infrastructure/persistence/memory"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/infrastructure/persistence/postgres"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/infrastructure/persistence/redis"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/infrastructure/scheduler"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/infrastructure/scheduler/jobs"
	apihttp "github.com/RoyalPrince700/testmancernew-sub000/internal/interface/http"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/interface/http/handlers"
	"github.com/RoyalPrince700/testmancernew-sub000/pkg/logger"
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
	// .env опционален: в production конфигурация приходит из окружения.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting TestMancer API",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"timezone", cfg.App.Timezone,
	)

	appLog := logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ХРАНИЛИЩЕ: POSTGRESQL ИЛИ IN-MEMORY
	// ─────────────────────────────────────────────────────────────────────────
	// Без DATABASE_URL сервер поднимается целиком на памяти. Этого
	// достаточно для локальной разработки, но каждое состояние живёт
	// до рестарта.
	var (
		users     user.Repository
		courses   content.CourseRepository
		quizzes   content.QuizRepository
		resources content.ResourceRepository
		ledger    reward.Ledger
		scores    reward.ScoreAggregator
		activity  progress.ActivityLog
		lbRepo    leaderboard.Repository
	)

	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)

	if cfg.Database.URL != "" {
		log.Info("connecting to database...")
		dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			dbConn.Close()
		}()

		log.Info("checking database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")

		users = postgres.NewUserRepository(dbConn)
		courses = postgres.NewCourseRepository(dbConn)
		quizzes = postgres.NewQuizRepository(dbConn)
		resources = postgres.NewResourceRepository(dbConn)
		activity = postgres.NewActivityRepository(dbConn)
		lbRepo = postgres.NewLeaderboardRepository(dbConn)

		ledgerRepo := postgres.NewLedgerRepository(dbConn)
		ledger = ledgerRepo
		scores = ledgerRepo

		healthChecker.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	} else {
		if cfg.IsProduction() {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
		log.Warn("DATABASE_URL is not set, using in-memory storage")

		users = memory.NewUserRepository()
		courses = memory.NewCourseRepository()
		quizzes = memory.NewQuizRepository()
		resources = memory.NewResourceRepository()
		activity = memory.NewActivityLog()
		lbRepo = memory.NewLeaderboardRepository()

		memLedger := memory.NewLedger()
		ledger = memLedger
		scores = memLedger
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS: СЕССИИ И КЕШ РЕЙТИНГА
	// ─────────────────────────────────────────────────────────────────────────
	var (
		lbCache  leaderboard.Cache
		sessions command.SessionWriter
		resolver handlers.SessionResolver
	)

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err := redis.NewCache(redisCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer func() {
			log.Info("closing Redis connection...")
			_ = redisCache.Close()
		}()
		log.Info("Redis connection established")

		lbCache = redis.NewLeaderboardCache(redisCache)

		sessionStore := redis.NewSessionStore(redisCache, cfg.Auth.SessionTTL)
		sessions = sessionStore
		resolver = func(ctx context.Context, token string) (handlers.Identity, error) {
			sess, err := sessionStore.Get(ctx, token)
			if err != nil {
				return handlers.Identity{}, err
			}
			return handlers.Identity{UserID: sess.UserID, Role: sess.Role}, nil
		}

		healthChecker.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	} else {
		log.Warn("Redis is disabled, sessions and the leaderboard cache are in-memory")

		lbCache = memory.NewLeaderboardCache()

		sessionStore := memory.NewSessionStore(cfg.Auth.SessionTTL)
		sessions = sessionStore
		resolver = func(ctx context.Context, token string) (handlers.Identity, error) {
			sess, err := sessionStore.Get(ctx, token)
			if err != nil {
				return handlers.Identity{}, err
			}
			return handlers.Identity{UserID: sess.UserID, Role: sess.Role}, nil
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ДОМЕННЫЕ СЕРВИСЫ
	// ─────────────────────────────────────────────────────────────────────────
	rewards := reward.NewService(ledger)
	policy := access.Policy{
		RestrictCategoryAdmins: cfg.Features.RestrictCategoryAdmins(),
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. EVENT BUS И DISPATCHER
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	dispatcherCfg := messaging.DefaultDispatcherConfig(eventBus)
	dispatcherCfg.Logger = log
	dispatcher := messaging.NewDispatcher(dispatcherCfg)
	dispatcher.Use(messaging.RecoveryMiddleware(log))
	dispatcher.Use(messaging.LoggingMiddleware(log))

	rebuildCfg := eventhandler.DefaultRebuildConfig()
	rebuildCfg.CacheTTL = cfg.Leaderboard.CacheTTL
	gemsHandler := eventhandler.NewOnGemsAwardedHandler(
		scores, lbRepo, lbCache, eventBus, log, rebuildCfg,
	)
	if err := dispatcher.Register(gemsHandler.EventType(), "on_gems_awarded", gemsHandler.Handle); err != nil {
		return fmt.Errorf("failed to register event handler: %w", err)
	}
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start dispatcher: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ПЛАНИРОВЩИК: ПЕРИОДИЧЕСКИЙ ПЕРЕСЧЁТ РЕЙТИНГА
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(log, cfg.App.Location)
	refreshJob := jobs.NewRefreshLeaderboardJob(gemsHandler, 5*time.Minute, log)
	if err := sched.Register(refreshJob, scheduler.Every(cfg.Leaderboard.RebuildInterval)); err != nil {
		return fmt.Errorf("failed to register job: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. APPLICATION LAYER: КОМАНДЫ И ЗАПРОСЫ
	// ─────────────────────────────────────────────────────────────────────────
	deps := apihttp.Dependencies{
		Auth:         command.NewAuthHandler(users, sessions, cfg.Auth.BcryptCost, eventBus),
		Users:        command.NewUserHandler(users, eventBus),
		SubmitQuiz:   command.NewSubmitQuizHandler(users, quizzes, rewards, activity, policy, eventBus),
		CompleteUnit: command.NewCompleteUnitHandler(users, courses, rewards, activity, policy, eventBus),
		CompletePage: command.NewCompletePageHandler(users, courses, rewards, activity, policy, eventBus),
		Content:      command.NewContentHandler(users, courses, quizzes, resources, policy, eventBus),

		Leaderboard: query.NewGetLeaderboardHandler(lbRepo, lbCache, cfg.Leaderboard.CacheTTL),
		Subjects:    query.NewListSubjectsHandler(lbRepo),
		Progress:    query.NewProgressHandler(users, courses, rewards, activity, policy),
		Catalog:     query.NewContentQueryHandler(users, courses, quizzes, resources, policy),

		Rewards:    rewards,
		UserReader: users,

		SessionAuth:   handlers.NewSessionAuth(resolver),
		Logger:        appLog,
		HealthChecker: healthChecker,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HTTP СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	httpCfg := apihttp.DefaultConfig()
	httpCfg.Host = cfg.HTTP.Host
	httpCfg.Port = cfg.HTTP.Port
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	httpCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	httpCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins

	server := apihttp.NewServer(httpCfg, deps)

	errCh := server.StartAsync()
	log.Info("TestMancer API is running", "addr", httpCfg.Address())

	// ─────────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
