// Package cached decorates a user repository with a Redis read-through cache.
package cached

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-crud-service/internal/adapter/cache"
	domain "user-crud-service/internal/domain/user"
	"user-crud-service/internal/usecase/user"
	"user-crud-service/pkg/logger"
)

// UserRepository implements user.Repository with caching support.
// Single user reads go through the cache; every write that changes or removes
// a row invalidates its key.
type UserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(dbRepo user.Repository, c cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		dbRepo: dbRepo,
		cache:  c,
		log:    log,
	}
}

// List delegates to the DB repository.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.dbRepo.List(ctx)
}

// EmailTaken delegates to the DB repository. Uniqueness is never answered from cache.
func (r *UserRepository) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	return r.dbRepo.EmailTaken(ctx, email, exceptID)
}

// Create delegates to the DB repository.
func (r *UserRepository) Create(ctx context.Context, f domain.Fields) (*domain.User, error) {
	return r.dbRepo.Create(ctx, f)
}

// GetByID retrieves a user by ID using the cache-aside pattern.
// Absent users are not cached.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.WithContext(ctx, r.log)

	cachedUser, err := r.cache.Get(ctx, id)
	if err != nil {
		log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	// Cache miss: use single-flight to prevent a stampede on the same key
	result, err, _ := r.group.Do(cache.Key(id), func() (any, error) {
		if cachedUser, err := r.cache.Get(ctx, id); err == nil && cachedUser != nil {
			log.Debug("user retrieved from cache after single-flight wait", zap.Int64("id", id))
			return cachedUser, nil
		}

		u, err := r.dbRepo.GetByID(ctx, id)
		if err != nil || u == nil {
			return u, err
		}

		if err := r.cache.Set(ctx, u); err != nil {
			log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
			return u, nil
		}

		// A write that committed between the read and Set has already
		// invalidated the key, so the entry just stored may be stale.
		if r.changedSince(ctx, u) {
			log.Debug("row changed while caching, dropping entry", zap.Int64("id", id))
			r.invalidate(ctx, id, "stale read")
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	u, _ := result.(*domain.User)
	return u, nil
}

// Update updates the user in DB and invalidates the cache.
func (r *UserRepository) Update(ctx context.Context, id int64, f domain.Fields) (*domain.User, error) {
	u, err := r.dbRepo.Update(ctx, id, f)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, id, "update")
	return u, nil
}

// Delete deletes the user from DB and invalidates the cache.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := r.dbRepo.Delete(ctx, id)
	if err != nil {
		return false, err
	}

	r.invalidate(ctx, id, "delete")
	return deleted, nil
}

// changedSince reports whether the stored row no longer matches u.
// Lookup failures count as changed.
func (r *UserRepository) changedSince(ctx context.Context, u *domain.User) bool {
	fresh, err := r.dbRepo.GetByID(ctx, u.ID)
	if err != nil || fresh == nil {
		return true
	}
	return fresh.Name != u.Name ||
		fresh.Email != u.Email ||
		fresh.Age != u.Age ||
		!fresh.UpdatedAt.Equal(u.UpdatedAt)
}

func (r *UserRepository) invalidate(ctx context.Context, id int64, op string) {
	if err := r.cache.Delete(ctx, id); err != nil {
		logger.WithContext(ctx, r.log).Warn("failed to invalidate cache",
			zap.String("op", op), zap.Int64("id", id), zap.Error(err))
	}
}
