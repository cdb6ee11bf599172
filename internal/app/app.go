// Package app wires configuration, stores, repositories and services for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/segyhp/gym-membership/internal/auth"
	"github.com/segyhp/gym-membership/internal/cache"
	"github.com/segyhp/gym-membership/internal/config"
	"github.com/segyhp/gym-membership/internal/repository"
	"github.com/segyhp/gym-membership/internal/service"
)

const cachePrefix = "gym:"

type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client
	Store  *cache.RedisStore

	Auth      *service.AuthService
	Members   *service.MemberService
	Payments  *service.PaymentService
	Alerts    *service.AlertService
	Dashboard *service.DashboardService
	Sweeper   *service.AlertSweeper
}

// New connects to Postgres and Redis and builds every service. Redis being down is
// logged, not fatal: the sweep then runs without a lock and the dashboard uncached.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate schema: %w", err)
		}
		logger.Info("Database schema applied")
	}

	redisClient := initRedis(cfg)
	store := cache.NewRedisStore(redisClient, cachePrefix)
	if err := store.Ping(ctx); err != nil {
		logger.Warn("Redis unreachable, continuing without lock and cache", zap.String("addr", cfg.RedisAddr()), zap.Error(err))
	}

	memberRepo := repository.NewMemberRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	tx := repository.NewTransactor(db)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)

	return &Container{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Redis:     redisClient,
		Store:     store,
		Auth:      service.NewAuthService(adminRepo, tokens, logger),
		Members:   service.NewMemberService(memberRepo, paymentRepo, alertRepo, tx, store, cfg, logger),
		Payments:  service.NewPaymentService(paymentRepo, memberRepo, tx, store, cfg, logger),
		Alerts:    service.NewAlertService(alertRepo, logger),
		Dashboard: service.NewDashboardService(statsRepo, memberRepo, paymentRepo, alertRepo, store, cfg, logger),
		Sweeper:   service.NewAlertSweeper(memberRepo, alertRepo, tx, store, cfg, logger),
	}, nil
}

func (c *Container) Close() error {
	return errors.Join(c.Redis.Close(), c.DB.Close())
}

// OpenDB connects to Postgres with the configured pool limits
func OpenDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
