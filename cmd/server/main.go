// Command server runs the farming weight API: player weight and contest
// lookups backed by the Hypixel API, plus guild leaderboards with
// background refresh.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/elitefarmers/farmhand/config"
	"github.com/elitefarmers/farmhand/internal/application/command"
	"github.com/elitefarmers/farmhand/internal/application/identity"
	"github.com/elitefarmers/farmhand/internal/application/query"
	"github.com/elitefarmers/farmhand/internal/application/snapshot"
	"github.com/elitefarmers/farmhand/internal/infrastructure/cache"
	"github.com/elitefarmers/farmhand/internal/infrastructure/external/hypixel"
	"github.com/elitefarmers/farmhand/internal/infrastructure/external/mojang"
	"github.com/elitefarmers/farmhand/internal/infrastructure/persistence/postgres"
	"github.com/elitefarmers/farmhand/internal/infrastructure/persistence/redis"
	"github.com/elitefarmers/farmhand/internal/infrastructure/scheduler"
	"github.com/elitefarmers/farmhand/internal/infrastructure/scheduler/jobs"
	httpiface "github.com/elitefarmers/farmhand/internal/interface/http"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Logger
	// ─────────────────────────────────────────────────────────────────────────
	logLevel := slog.LevelInfo
	if cfg.App.Debug {
		logLevel = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	log := slog.New(handler)
	slog.SetDefault(log)

	log.Info("starting",
		"app", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", string(cfg.App.Environment),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Database
	// ─────────────────────────────────────────────────────────────────────────
	dbConfig := postgres.DefaultConfig(cfg.Database.URL)
	dbConfig.MaxConns = int32(cfg.Database.MaxConns)
	dbConfig.MinConns = int32(cfg.Database.MinConns)
	dbConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	dbConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
	dbConfig.QueryTimeout = cfg.Database.QueryTimeout

	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer conn.Close()
	log.Info("database connected")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Migrations
	// ─────────────────────────────────────────────────────────────────────────
	migrator := postgres.NewMigrator(conn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("migrations applied")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Redis (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisCache    *redis.Cache
		identityStore identity.Store
		boardViews    query.BoardViewCache
		boardInval    command.BoardInvalidator
		cacheHealth   httpiface.HealthChecker
	)

	if cfg.Redis.Disabled {
		log.Warn("redis disabled, running without shared caches")
	} else {
		redisConfig := redis.DefaultConfig()
		redisConfig.Host = cfg.Redis.Host
		redisConfig.Port = cfg.Redis.Port
		redisConfig.Password = cfg.Redis.Password
		redisConfig.DB = cfg.Redis.DB
		redisConfig.PoolSize = cfg.Redis.PoolSize
		redisConfig.MinIdleConns = cfg.Redis.MinIdleConns
		redisConfig.DialTimeout = cfg.Redis.DialTimeout
		redisConfig.ReadTimeout = cfg.Redis.ReadTimeout
		redisConfig.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisConfig)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisCache.Close()

		identityStore = redis.NewIdentityCache(redisCache)
		boardCache := redis.NewBoardCache(redisCache)
		boardViews = boardCache
		boardInval = boardCache
		cacheHealth = redisCache
		log.Info("redis connected")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. Repositories
	// ─────────────────────────────────────────────────────────────────────────
	snapshotRepo := postgres.NewSnapshotRepository(conn)
	recordRepo := postgres.NewRecordRepository(conn)
	guildRepo := postgres.NewLeaderboardRepository(conn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. External clients
	// ─────────────────────────────────────────────────────────────────────────
	clientConfig := hypixel.DefaultClientConfig(cfg.Hypixel.BaseURL, cfg.Hypixel.APIKey)
	clientConfig.Timeout = cfg.Hypixel.RequestTimeout
	clientConfig.RateLimiterConfig.RequestsPerSecond = cfg.Hypixel.RequestsPerSecond
	clientConfig.RateLimiterConfig.BurstSize = cfg.Hypixel.Burst
	clientConfig.CircuitBreakerConfig.FailureThreshold = cfg.Hypixel.CircuitBreakerThreshold
	clientConfig.CircuitBreakerConfig.Timeout = cfg.Hypixel.CircuitBreakerCooldown
	clientConfig.RetryConfig.MaxRetries = cfg.Hypixel.MaxRetries
	clientConfig.Logger = log
	clientConfig.Debug = cfg.App.Debug

	hypixelClient := hypixel.NewClient(clientConfig)
	mojangClient := mojang.NewClient(cfg.Mojang.BaseURL, cfg.Mojang.RequestTimeout, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. Application layer
	// ─────────────────────────────────────────────────────────────────────────
	resolver := identity.NewResolver(mojangClient, identityStore, snapshotRepo, log)
	snapshots := snapshot.NewService(hypixelClient, snapshotRepo, hypixel.IsTransient, log)

	weightResults := cache.New[*query.GetWeightResult](cfg.Cache.ResultTTL)
	contestResults := cache.New[*query.GetContestsResult](cfg.Cache.ResultTTL)

	getWeight := query.NewGetWeightHandler(resolver, snapshots, weightResults)
	getContests := query.NewGetContestsHandler(resolver, snapshots, recordRepo, contestResults, log)
	getLeaderboard := query.NewGetLeaderboardHandler(guildRepo, boardViews, log)

	submitLeaderboard := command.NewSubmitLeaderboardHandler(resolver, snapshots, recordRepo, guildRepo, boardInval, log)
	configureGuild := command.NewConfigureGuildHandler(guildRepo)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. Scheduler
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(log)

		sweepJob := jobs.NewSweepCachesJob(log, weightResults, contestResults)
		if err := sched.Register(sweepJob, scheduler.NewIntervalSchedule(cfg.Scheduler.SweepInterval)); err != nil {
			return fmt.Errorf("register sweep job: %w", err)
		}

		refreshJob := jobs.NewRefreshBoardsJob(guildRepo, submitLeaderboard, log)
		if err := sched.Register(refreshJob, scheduler.NewIntervalSchedule(cfg.Scheduler.BoardRefreshInterval)); err != nil {
			return fmt.Errorf("register refresh job: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		log.Info("scheduler started",
			"sweep_interval", cfg.Scheduler.SweepInterval.String(),
			"board_refresh_interval", cfg.Scheduler.BoardRefreshInterval.String(),
		)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	serverConfig := httpiface.DefaultConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	serverConfig.ReadTimeout = cfg.Server.ReadTimeout
	serverConfig.WriteTimeout = cfg.Server.WriteTimeout

	server := httpiface.NewServer(serverConfig, httpiface.Dependencies{
		GetWeightHandler:         getWeight,
		GetContestsHandler:       getContests,
		GetLeaderboardHandler:    getLeaderboard,
		SubmitLeaderboardHandler: submitLeaderboard,
		ConfigureGuildHandler:    configureGuild,
		Provider:                 hypixelClient,
		Database:                 conn,
		Cache:                    cacheHealth,
		Logger:                   log,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 11. Shutdown
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(); err != nil {
			log.Warn("scheduler stop", "error", err.Error())
		}
	}

	if err := server.Stop(shutdownCtx); err != nil {
		log.Warn("http server shutdown", "error", err.Error())
	}

	log.Info("shutdown complete")
	return nil
}
