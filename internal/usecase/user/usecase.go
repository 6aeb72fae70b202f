package user

import (
	"context"
	"errors"

	"go.uber.org/zap"

	domain "user-crud-service/internal/domain/user"
	"user-crud-service/internal/validation"
	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

// Repository defines the interface for user data access operations.
// An absent row is reported as a nil result, never as an error;
// errors are reserved for store failures.
type Repository interface {
	List(ctx context.Context) ([]domain.User, error)                             // List all users
	GetByID(ctx context.Context, id int64) (*domain.User, error)                 // Retrieve user by ID
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)  // Check email ownership
	Create(ctx context.Context, f domain.Fields) (*domain.User, error)           // Insert a new user
	Update(ctx context.Context, id int64, f domain.Fields) (*domain.User, error) // Apply supplied fields
	Delete(ctx context.Context, id int64) (bool, error)                          // Delete user by ID
}

// DeletedMessage is returned after a successful delete.
const DeletedMessage = "User deleted successfully"

// Service implements the business logic for user management operations.
// Payloads reaching it have already passed the validation engine.
type Service struct {
	repo Repository  // Repository for data access
	log  *zap.Logger // Logger for structured logging
}

var _ Usecase = (*Service)(nil)

// New creates a new instance of Service with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log}
}

// ListUsers returns every user.
func (s *Service) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, s.log)

	domainUsers, err := s.repo.List(ctx)
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to list users", err)
	}

	users := make([]User, len(domainUsers))
	for i := range domainUsers {
		users[i] = *toDTO(&domainUsers[i])
	}

	log.Debug("listed users", zap.Int("count", len(users)))
	return &ListUsersResponse{Users: users}, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, in GetUserRequest) (*User, error) {
	log := logger.WithContext(ctx, s.log)

	if in.ID <= 0 {
		log.Debug("get user with non-positive id", zap.Int64("id", in.ID))
		return nil, apperrors.ErrUserNotFound
	}

	u, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		log.Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to get user", err)
	}
	if u == nil {
		log.Info("user not found", zap.Int64("id", in.ID))
		return nil, apperrors.ErrUserNotFound
	}

	return toDTO(u), nil
}

// CreateUser inserts a new user.
// A unique-index rejection is reported the same way the validator reports a taken email.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, s.log)

	if in.Fields.Name == nil || in.Fields.Email == nil || in.Fields.Age == nil {
		log.Error("create user called with incomplete fields")
		return nil, apperrors.NewInternalError("incomplete user fields", nil)
	}

	log.Info("creating user", zap.String("name", *in.Fields.Name), zap.String("email", *in.Fields.Email))

	u, err := s.repo.Create(ctx, in.Fields)
	if err != nil {
		return nil, s.writeError(log, "failed to create user", err, zap.String("email", *in.Fields.Email))
	}

	log.Info("user created", zap.Int64("id", u.ID))
	return toDTO(u), nil
}

// UpdateUser applies the supplied fields to an existing user.
func (s *Service) UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, s.log)

	if in.ID <= 0 {
		log.Debug("update user with non-positive id", zap.Int64("id", in.ID))
		return nil, apperrors.ErrUserNotFound
	}

	log.Info("updating user", zap.Int64("id", in.ID), zap.Any("fields", in.Fields.Columns()))

	u, err := s.repo.Update(ctx, in.ID, in.Fields)
	if err != nil {
		return nil, s.writeError(log, "failed to update user", err, zap.Int64("id", in.ID))
	}
	if u == nil {
		log.Info("user not found", zap.Int64("id", in.ID))
		return nil, apperrors.ErrUserNotFound
	}

	return toDTO(u), nil
}

// DeleteUser removes a user by ID.
func (s *Service) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	log := logger.WithContext(ctx, s.log)

	if in.ID <= 0 {
		log.Debug("delete user with non-positive id", zap.Int64("id", in.ID))
		return nil, apperrors.ErrUserNotFound
	}

	deleted, err := s.repo.Delete(ctx, in.ID)
	if err != nil {
		log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to delete user", err)
	}
	if !deleted {
		log.Info("user not found", zap.Int64("id", in.ID))
		return nil, apperrors.ErrUserNotFound
	}

	log.Info("user deleted", zap.Int64("id", in.ID))
	return &DeleteUserResponse{ID: in.ID, Message: DeletedMessage}, nil
}

// writeError maps a failed store write onto the error taxonomy.
func (s *Service) writeError(log *zap.Logger, msg string, err error, fields ...zap.Field) error {
	var exists *apperrors.AlreadyExistsError
	if errors.As(err, &exists) {
		log.Warn("email already exists", append(fields, zap.Error(err))...)
		return validation.EmailTakenError()
	}

	log.Error(msg, append(fields, zap.Error(err))...)
	return apperrors.NewInternalError(msg, err)
}
