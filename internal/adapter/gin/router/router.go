// Package router wires the user routes and the global middleware chain.
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"user-crud-service/internal/adapter/gin/handler"
	"user-crud-service/internal/adapter/gin/middleware"
	"user-crud-service/internal/adapter/gin/response"
	"user-crud-service/internal/validation"
	"user-crud-service/pkg/logger"
)

const swaggerDocPath = "/user.swagger.json"

// Options carries the optional parts of the router.
type Options struct {
	ServiceName      string
	RequestLog       *zap.Logger                     // requests channel; defaults to the main logger
	MaxLoggedContent int                             // response content cap for the request log
	RateLimiter      *middleware.RateLimiter         // nil disables rate limiting
	SwaggerSpecPath  string                          // empty disables /swagger
	Ping             func(ctx context.Context) error // health probe; nil always reports healthy
}

// SetupRouter configures and returns a Gin router with all routes and middleware.
// Order: request id, request log, panic recovery, rate limit, then per-route validation.
func SetupRouter(userHandler *handler.UserHandler, v middleware.PayloadValidator, opts Options, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	requestLog := opts.RequestLog
	if requestLog == nil {
		requestLog = log.Named("requests")
	}

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(requestLog, opts.MaxLoggedContent))
	router.Use(middleware.Recovery(log))
	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Middleware())
	}

	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Not found")
	})
	router.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.GET("/health", func(c *gin.Context) {
		if opts.Ping != nil {
			if err := opts.Ping(c.Request.Context()); err != nil {
				logger.WithContext(c.Request.Context(), log).Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "service": opts.ServiceName})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": opts.ServiceName})
	})

	users := router.Group("/users")
	{
		users.GET("", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.POST("", middleware.Validate(v, validation.UserCreate, log), userHandler.CreateUser)
		users.PUT("/:id", middleware.Validate(v, validation.UserUpdate, log), userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	if opts.SwaggerSpecPath != "" {
		ui := gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger" + swaggerDocPath)))
		router.GET("/swagger/*any", func(c *gin.Context) {
			if c.Param("any") == swaggerDocPath {
				c.File(opts.SwaggerSpecPath)
				return
			}
			ui(c)
		})
	}

	return router
}
