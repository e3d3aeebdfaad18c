package main

import (
	"context"
	"fmt"

	"github.com/jonathan/career-portal/internal/activity"
	"github.com/jonathan/career-portal/internal/assessment"
	"github.com/jonathan/career-portal/internal/catalog"
	"github.com/jonathan/career-portal/internal/config"
	"github.com/jonathan/career-portal/internal/db"
	"github.com/jonathan/career-portal/internal/logger"
	"github.com/jonathan/career-portal/internal/server"
	"github.com/jonathan/career-portal/internal/server/ratelimit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the assessment, user, activity, roadmap
and Q&A endpoints.

Requires DATABASE_URL and JWT_SECRET. REDIS_ADDR switches the recent-activity
feed from the in-process cache to Redis.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, v, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to load JWT config: %w", err)
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to load password config: %w", err)
	}

	cat, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("failed to load role catalog: %w", err)
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	cache, closeCache, err := newRecentCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	recorder := activity.NewRecorder(database, cache, activity.Policy(cfg.ActivityPolicy), log)
	engine := assessment.NewEngine(database, database, database, recorder, cat, log)

	srv, err := server.New(server.Config{Port: cfg.Port}, server.Deps{
		DB:        database,
		Engine:    engine,
		Activity:  recorder,
		Catalog:   cat,
		JWT:       jwtConfig,
		Password:  passwordConfig,
		RateLimit: ratelimit.LoadConfig(v),
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Info("career portal configured",
		zap.Int("port", cfg.Port),
		zap.Int("roles", len(cat.Roles())),
		zap.String("activity_policy", cfg.ActivityPolicy),
		zap.Bool("redis", cfg.RedisAddr != ""),
	)
	return srv.Start()
}

// newRecentCache picks the recent-activity cache: Redis when an address is
// configured, otherwise an in-process LRU.
func newRecentCache(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (activity.RecentCache, func(), error) {
	if cfg.RedisAddr == "" {
		return activity.NewMemoryCache(cfg.ActivityCacheSize), func() {}, nil
	}

	cache, err := activity.NewRedisCache(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return cache, func() {
		if err := cache.Close(); err != nil {
			log.Warn("failed to close redis", zap.Error(err))
		}
	}, nil
}
