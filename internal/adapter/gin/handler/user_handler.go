// Package handler translates HTTP requests into user usecase calls and shapes
// their results into JSON responses.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-crud-service/internal/adapter/gin/middleware"
	"user-crud-service/internal/adapter/gin/response"
	domain "user-crud-service/internal/domain/user"
	"user-crud-service/internal/usecase/user"
	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// UserResponse is the projected user returned by list and get.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

// UserDetailResponse is the full user returned after a write.
type UserDetailResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

func project(u *user.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Age: u.Age}
}

func detail(u *user.User) UserDetailResponse {
	return UserDetailResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, "ListUsers", err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i := range resp.Users {
		users[i] = project(&resp.Users[i])
	}

	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	u, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		h.handleError(c, "GetUser", err)
		return
	}

	c.JSON(http.StatusOK, project(u))
}

// CreateUser handles POST /users. The payload has already been validated.
func (h *UserHandler) CreateUser(c *gin.Context) {
	fields, ok := h.validated(c)
	if !ok {
		return
	}

	u, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{Fields: fields})
	if err != nil {
		h.handleError(c, "CreateUser", err)
		return
	}

	c.JSON(http.StatusCreated, detail(u))
}

// UpdateUser handles PUT /users/:id. The payload has already been validated.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	fields, ok := h.validated(c)
	if !ok {
		return
	}

	u, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{ID: id, Fields: fields})
	if err != nil {
		h.handleError(c, "UpdateUser", err)
		return
	}

	c.JSON(http.StatusOK, detail(u))
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	resp, err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: id})
	if err != nil {
		h.handleError(c, "DeleteUser", err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: resp.Message})
}

// userID parses the :id parameter. Anything that is not a positive integer
// cannot name a stored user and is answered with 404.
func (h *UserHandler) userID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		logger.WithContext(c.Request.Context(), h.log).Debug("unparseable user id", zap.String("id", idStr))
		response.FromError(c, apperrors.ErrUserNotFound)
		return 0, false
	}
	return id, true
}

func (h *UserHandler) validated(c *gin.Context) (domain.Fields, bool) {
	fields, ok := middleware.ValidatedFields(c)
	if !ok {
		logger.WithContext(c.Request.Context(), h.log).Error("write route reached without validation",
			zap.String("path", c.FullPath()))
		response.Error(c, http.StatusInternalServerError, response.InternalServerError)
		return fields, false
	}
	return fields, true
}

// handleError converts usecase errors to appropriate HTTP responses
func (h *UserHandler) handleError(c *gin.Context, op string, err error) {
	status := apperrors.StatusOf(err)
	log := logger.WithContext(c.Request.Context(), h.log)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("op", op), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	}
	response.FromError(c, err)
}
