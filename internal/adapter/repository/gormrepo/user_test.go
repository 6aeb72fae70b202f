package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// every pooled connection to :memory: would otherwise see its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func setupTestRepo(t *testing.T) *UserRepo {
	return NewUserRepo(setupTestDB(t), zaptest.NewLogger(t))
}

func ptr[T any](v T) *T { return &v }

func fields(name, email string, age int) user.Fields {
	return user.Fields{Name: ptr(name), Email: ptr(email), Age: ptr(age)}
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, fields("Ann", "ann@example.com", 30))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "ann@example.com", got.Email)
	assert.Equal(t, 30, got.Age)
}

func TestUserRepo_GetByID_Absent(t *testing.T) {
	repo := setupTestRepo(t)

	got, err := repo.GetByID(context.Background(), 12345)

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepo_Create_Incomplete(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Create(context.Background(), user.Fields{Name: ptr("Ann")})

	assert.Error(t, err)
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, fields("Ann", "ann@example.com", 30))
	require.NoError(t, err)

	_, err = repo.Create(ctx, fields("Other Ann", "ann@example.com", 31))

	var exists *apperrors.AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "email", exists.Field)
}

func TestUserRepo_List(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	for _, f := range []user.Fields{
		fields("Ann", "ann@example.com", 30),
		fields("Bob", "bob@example.com", 41),
		fields("Cid", "cid@example.com", 0),
	} {
		_, err := repo.Create(ctx, f)
		require.NoError(t, err)
	}

	users, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Ann", users[0].Name)
	assert.Equal(t, "Cid", users[2].Name)
	assert.Equal(t, 0, users[2].Age)
}

func TestUserRepo_EmailTaken(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	ann, err := repo.Create(ctx, fields("Ann", "ann@example.com", 30))
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		exceptID int64
		expected bool
	}{
		{"existing email", "ann@example.com", 0, true},
		{"unknown email", "bob@example.com", 0, false},
		{"own email excluded", "ann@example.com", ann.ID, false},
		{"other user excluded", "ann@example.com", ann.ID + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken, err := repo.EmailTaken(ctx, tt.email, tt.exceptID)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, taken)
		})
	}
}

func TestUserRepo_Update_Partial(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	ann, err := repo.Create(ctx, fields("Ann", "ann@example.com", 30))
	require.NoError(t, err)

	updated, err := repo.Update(ctx, ann.ID, user.Fields{Name: ptr("Updated Name"), Age: ptr(31)})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, ann.ID, updated.ID)
	assert.Equal(t, "Updated Name", updated.Name)
	assert.Equal(t, "ann@example.com", updated.Email)
	assert.Equal(t, 31, updated.Age)

	stored, err := repo.GetByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Name", stored.Name)
	assert.Equal(t, "ann@example.com", stored.Email)
}

func TestUserRepo_Update_ZeroAge(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	ann, err := repo.Create(ctx, fields("Ann", "ann@example.com", 30))
	require.NoError(t, err)

	updated, err := repo.Update(ctx, ann.ID, user.Fields{Age: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Age)
}

func TestUserRepo_Update_NoFields(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	ann, err := repo.Create(ctx, fields("Ann", "ann@example.com", 30))
	require.NoError(t, err)

	updated, err := repo.Update(ctx, ann.ID, user.Fields{})
	require.NoError(t, err)
	assert.Equal(t, "Ann", updated.Name)
}

func TestUserRepo_Update_Absent(t *testing.T) {
	repo := setupTestRepo(t)

	updated, err := repo.Update(context.Background(), 999, user.Fields{Name: ptr("Ghost")})

	assert.NoError(t, err)
	assert.Nil(t, updated)
}

func TestUserRepo_Update_DuplicateEmail(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, fields("Ann", "ann@example.com", 30))
	require.NoError(t, err)
	bob, err := repo.Create(ctx, fields("Bob", "bob@example.com", 41))
	require.NoError(t, err)

	_, err = repo.Update(ctx, bob.ID, user.Fields{Email: ptr("ann@example.com")})

	var exists *apperrors.AlreadyExistsError
	require.ErrorAs(t, err, &exists)

	stored, err := repo.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", stored.Email)
}

func TestUserRepo_Delete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	ann, err := repo.Create(ctx, fields("Ann", "ann@example.com", 30))
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, ann.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, ann.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err := repo.GetByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepo_StoreFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db, zaptest.NewLogger(t))
	require.NoError(t, db.Migrator().DropTable(&UserSchema{}))

	_, err := repo.List(context.Background())
	assert.Error(t, err)

	_, err = repo.GetByID(context.Background(), 1)
	assert.Error(t, err)

	_, err = repo.EmailTaken(context.Background(), "a@example.com", 0)
	assert.Error(t, err)
}

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"translated", gorm.ErrDuplicatedKey, true},
		{"wrapped translated", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"postgres message", errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`), true},
		{"sqlite message", errors.New("UNIQUE constraint failed: users.email"), true},
		{"unrelated", assert.AnError, false},
		{"not found", gorm.ErrRecordNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isDuplicateKey(tt.err))
		})
	}
}
