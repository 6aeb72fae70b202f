package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"user-crud-service/cmd/api/di"
	ginrouter "user-crud-service/internal/adapter/gin/router"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(c *di.Container, requestLog *zap.Logger, addr string, l *zap.Logger) *http.Server {
	cfg := c.Config

	opts := ginrouter.Options{
		ServiceName:      cfg.Logger.ServiceName,
		RequestLog:       requestLog,
		MaxLoggedContent: cfg.Logger.RequestLogMaxContent,
		RateLimiter:      c.RateLimiter,
		Ping:             c.Ping,
	}
	if cfg.App.SwaggerEnabled {
		opts.SwaggerSpecPath = cfg.App.SwaggerSpecPath
		l.Info("Swagger UI available at", zap.String("url", "http://localhost"+addr+"/swagger/index.html"))
	}

	router := ginrouter.SetupRouter(c.GinHandler, c.Validator, opts, l)

	l.Info("Gin REST API configured", zap.String("address", addr))

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
