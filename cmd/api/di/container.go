package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-crud-service/cmd/api/infrastructure"
	"user-crud-service/internal/adapter/cache"
	ginhandler "user-crud-service/internal/adapter/gin/handler"
	"user-crud-service/internal/adapter/gin/middleware"
	"user-crud-service/internal/adapter/repository/cached"
	"user-crud-service/internal/adapter/repository/gormrepo"
	"user-crud-service/internal/config"
	"user-crud-service/internal/usecase/user"
	"user-crud-service/internal/validation"
	redisclient "user-crud-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client // nil when Redis is disabled
	UserUC      user.Usecase
	Validator   *validation.Engine
	RateLimiter *middleware.RateLimiter // nil when rate limiting is disabled
	GinHandler  *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	c := &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
	}

	var repo user.Repository = gormrepo.NewUserRepo(db, l.Named("repository"))
	if rdb != nil && cfg.Redis.CacheTTL > 0 {
		userCache := cache.NewRedisUserCache(rdb.Client, time.Duration(cfg.Redis.CacheTTL)*time.Second, l)
		repo = cached.NewUserRepository(repo, userCache, l.Named("repository"))
		l.Info("user cache enabled", zap.Int("ttl_seconds", cfg.Redis.CacheTTL))
	}

	if rdb != nil && cfg.RateLimit.Enabled {
		c.RateLimiter = middleware.NewRateLimiter(
			rdb.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
			},
			l.Named("ratelimit"),
		)
	}

	c.Validator = validation.New(repo, l.Named("validation"))
	c.UserUC = user.New(repo, l.Named("usecase"))
	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l.Named("handler"))

	return c, nil
}

// Ping checks every backing store the service needs to answer requests.
func (c *Container) Ping(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Check(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
