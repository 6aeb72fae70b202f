// Package gormrepo implements the user store on top of gorm.
// The same code serves Postgres in production and SQLite locally and in tests.
package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

// UserRepo implements the user Repository interface using GORM.
type UserRepo struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`               // Unique identifier with auto-increment
	Name      string    `gorm:"type:varchar(255);not null"`             // User's full name (required)
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex"` // User's unique email address
	Age       int       `gorm:"not null"`                               // User's age in years
	CreatedAt time.Time `gorm:"autoCreateTime"`                         // Set on insert
	UpdatedAt time.Time `gorm:"autoUpdateTime"`                         // Refreshed on every write
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// Migrate creates or updates the users table and its unique email index.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

func (m *UserSchema) toDomain() *user.User {
	return &user.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Age:       m.Age,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// List returns every user ordered by ID.
func (r *UserRepo) List(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		r.withCtx(ctx).Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i := range models {
		users[i] = *models[i].toDomain()
	}
	return users, nil
}

// GetByID retrieves a user by ID. It returns nil, nil when no row matches.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.withCtx(ctx).Debug("user not found", zap.Int64("id", id))
			return nil, nil
		}
		r.withCtx(ctx).Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// EmailTaken reports whether a user other than exceptID already owns email.
// Pass exceptID 0 to check against every user.
func (r *UserRepo) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&UserSchema{}).Where("email = ?", email)
	if exceptID > 0 {
		q = q.Where("id <> ?", exceptID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		r.withCtx(ctx).Error("failed to check email in db", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new user built from the allow-listed fields.
func (r *UserRepo) Create(ctx context.Context, f user.Fields) (*user.User, error) {
	if f.Name == nil || f.Email == nil || f.Age == nil {
		return nil, errors.New("name, email and age are required")
	}

	model := UserSchema{
		Name:  *f.Name,
		Email: *f.Email,
		Age:   *f.Age,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.NewAlreadyExistsError("user", "email", err)
		}
		r.withCtx(ctx).Error("failed to create user in db", zap.Error(err), zap.String("email", *f.Email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.withCtx(ctx).Info("user created in db", zap.Int64("id", model.ID))
	return model.toDomain(), nil
}

// Update applies the supplied fields to the user with the given ID inside a
// transaction and returns the stored row. It returns nil, nil when no row matches.
func (r *UserRepo) Update(ctx context.Context, id int64, f user.Fields) (*user.User, error) {
	var model UserSchema

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, id).Error; err != nil {
			return err
		}
		if f.Empty() {
			return nil
		}
		if err := tx.Model(&model).Updates(f.Columns()).Error; err != nil {
			return err
		}
		return tx.First(&model, id).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			r.withCtx(ctx).Debug("user not found for update", zap.Int64("id", id))
			return nil, nil
		case isDuplicateKey(err):
			return nil, apperrors.NewAlreadyExistsError("user", "email", err)
		}
		r.withCtx(ctx).Error("failed to update user in db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	r.withCtx(ctx).Info("user updated in db", zap.Int64("id", id))
	return model.toDomain(), nil
}

// Delete removes a user by ID and reports whether a row was removed.
func (r *UserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if res.Error != nil {
		r.withCtx(ctx).Error("failed to delete user in db", zap.Error(res.Error), zap.Int64("id", id))
		return false, fmt.Errorf("failed to delete user: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return false, nil
	}

	r.withCtx(ctx).Info("user deleted in db", zap.Int64("id", id))
	return true, nil
}

func (r *UserRepo) withCtx(ctx context.Context) *zap.Logger {
	return logger.WithContext(ctx, r.log)
}

// isDuplicateKey recognises unique index violations. gorm translates them to
// ErrDuplicatedKey when TranslateError is on; the message checks cover
// connections opened without it.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// postgres, then sqlite
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
