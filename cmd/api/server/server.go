package server

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"user-crud-service/cmd/api/di"
)

// Server struct holds all server dependencies
type Server struct {
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates a new server instance serving the container's routes.
func New(c *di.Container, requestLog *zap.Logger, l *zap.Logger) *Server {
	return &Server{
		Logger: l,
		HTTP:   SetupGinServer(c, requestLog, ":"+c.Config.App.HTTPPort, l),
	}
}

// Start serves HTTP until the server is shut down.
func (s *Server) Start() error {
	s.Logger.Info("REST API running", zap.String("address", s.HTTP.Addr))

	if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}
