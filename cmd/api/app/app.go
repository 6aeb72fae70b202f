package app

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-crud-service/cmd/api/di"
	"user-crud-service/cmd/api/infrastructure"
	"user-crud-service/cmd/api/server"
	"user-crud-service/internal/config"
	"user-crud-service/pkg/logger"
)

// App represents the application
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	RequestLog *zap.Logger
	Server     *server.Server
	Container  *di.Container
}

// New creates a new application instance from the app.env in configPath.
func New(configPath string) (*App, error) {
	cfg, loggerCfg, l, err := bootstrap(configPath)
	if err != nil {
		return nil, err
	}
	requestLog := logger.NewChannel(l, loggerCfg, "requests", cfg.Logger.RequestLogOutputPath)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	container, err := di.NewContainer(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	return &App{
		Config:     cfg,
		Logger:     l,
		RequestLog: requestLog,
		Server:     server.New(container, requestLog, l),
		Container:  container,
	}, nil
}

// Run starts the application and blocks until ctx is canceled or the server fails.
func (a *App) Run(ctx context.Context) error {
	a.Logger.Info("starting application",
		zap.String("service", a.Config.Logger.ServiceName),
		zap.String("version", a.Config.Logger.ServiceVersion),
		zap.String("environment", a.Config.Env),
		zap.String("db_driver", a.Config.DB.Driver),
	)

	errChan := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errChan <- fmt.Errorf("server panic: %v", r)
			}
		}()

		if err := a.Server.Start(); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.Logger.Info("shutting down application...")
		return a.shutdown()
	case err := <-errChan:
		return errors.Join(err, a.shutdown())
	}
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	timeout := time.Duration(a.Config.App.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.Logger.Info("starting graceful shutdown",
		zap.Int("timeout_seconds", a.Config.App.ShutdownTimeoutSeconds),
	)

	var errs []error

	if a.Server.HTTP != nil {
		a.Logger.Info("shutting down HTTP server...")
		if err := a.Server.HTTP.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("failed to shutdown HTTP server", zap.Error(err))
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
	}

	if a.Container != nil {
		a.Logger.Info("closing container resources...")
		if err := a.Container.Close(); err != nil {
			a.Logger.Error("failed to close container", zap.Error(err))
			errs = append(errs, fmt.Errorf("container close: %w", err))
		}
	}

	a.Logger.Info("application shutdown complete")

	for _, l := range []*zap.Logger{a.RequestLog, a.Logger} {
		// stdout and stderr cannot be synced on most platforms
		if err := l.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) && !errors.Is(err, syscall.ENOTTY) {
			errs = append(errs, fmt.Errorf("logger sync: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Migrate creates or updates the schema whatever DB_AUTO_MIGRATE says.
func Migrate(configPath string) error {
	cfg, _, l, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	cfg.DB.AutoMigrate = true
	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return infrastructure.CloseDatabase(db)
}

func bootstrap(configPath string) (*config.Config, logger.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, logger.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerCfg := newLoggerConfig(cfg)
	l, err := logger.NewWithConfig(loggerCfg)
	if err != nil {
		return nil, logger.Config{}, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, loggerCfg, l, nil
}

func newLoggerConfig(cfg *config.Config) logger.Config {
	return logger.Config{
		Level:          cfg.Logger.Level,
		Format:         cfg.Logger.Format,
		OutputPath:     cfg.Logger.OutputPath,
		EnableSampling: cfg.Logger.EnableSampling,
		ServiceName:    cfg.Logger.ServiceName,
		ServiceVersion: cfg.Logger.ServiceVersion,
		Environment:    cfg.Env,
		Rotation: logger.Rotation{
			MaxSizeMB:  cfg.Logger.MaxSizeMB,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAgeDays: cfg.Logger.MaxAgeDays,
		},
	}
}
