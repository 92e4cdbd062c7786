package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliiiBenn/mini-auth/internal/application/user"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	domerrors "github.com/AliiiBenn/mini-auth/internal/domain/errors"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/memory"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/security"
)

func newHasher() *security.Argon2Hasher {
	return security.NewArgon2Hasher(security.Argon2Params{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
}

func seedUser(t *testing.T, users *memory.UserRepository, email, password string) *domain.User {
	t.Helper()
	hash, err := newHasher().Hash(password)
	require.NoError(t, err)
	u := &domain.User{
		ID:           domain.NewUserID(uuid.New()),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestUpdateProfile(t *testing.T) {
	users := memory.NewUserRepository()
	uc := user.NewUpdateProfile(users)
	ctx := context.Background()

	alice := seedUser(t, users, "alice@example.com", "Password1")
	seedUser(t, users, "bob@example.com", "Password1")

	t.Run("updates name and email", func(t *testing.T) {
		name := "Alice A."
		email := "alice.a@example.com"
		updated, err := uc.Execute(ctx, user.UpdateProfileInput{
			UserID: alice.ID, FullName: &name, Email: &email,
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice A.", updated.FullName)
		assert.Equal(t, "alice.a@example.com", updated.Email)
		assert.NotNil(t, updated.UpdatedAt)
	})
	t.Run("rejects an email already used in the scope", func(t *testing.T) {
		email := "bob@example.com"
		_, err := uc.Execute(ctx, user.UpdateProfileInput{UserID: alice.ID, Email: &email})
		assert.ErrorIs(t, err, domerrors.ErrEmailTaken)
	})
	t.Run("setting the same email is a no-op, not a conflict", func(t *testing.T) {
		email := "alice.a@example.com"
		_, err := uc.Execute(ctx, user.UpdateProfileInput{UserID: alice.ID, Email: &email})
		require.NoError(t, err)
	})
	t.Run("unknown user", func(t *testing.T) {
		name := "ghost"
		_, err := uc.Execute(ctx, user.UpdateProfileInput{
			UserID: domain.NewUserID(uuid.New()), FullName: &name,
		})
		assert.ErrorIs(t, err, domerrors.ErrUserNotFound)
	})
}

func TestChangePassword(t *testing.T) {
	users := memory.NewUserRepository()
	hasher := newHasher()
	uc := user.NewChangePassword(users, hasher)
	ctx := context.Background()

	alice := seedUser(t, users, "alice@example.com", "Password1")

	t.Run("rejects wrong current password", func(t *testing.T) {
		err := uc.Execute(ctx, user.ChangePasswordInput{
			UserID: alice.ID, CurrentPassword: "Nope1aaaa", NewPassword: "Password2",
		})
		assert.ErrorIs(t, err, domerrors.ErrInvalidCredentials)
	})
	t.Run("rejects reusing the current password", func(t *testing.T) {
		err := uc.Execute(ctx, user.ChangePasswordInput{
			UserID: alice.ID, CurrentPassword: "Password1", NewPassword: "Password1",
		})
		assert.ErrorIs(t, err, domerrors.ErrSamePassword)
	})
	t.Run("rejects a weak replacement", func(t *testing.T) {
		err := uc.Execute(ctx, user.ChangePasswordInput{
			UserID: alice.ID, CurrentPassword: "Password1", NewPassword: "weakweak",
		})
		assert.ErrorIs(t, err, domerrors.ErrWeakPassword)
	})
	t.Run("stores the new hash", func(t *testing.T) {
		err := uc.Execute(ctx, user.ChangePasswordInput{
			UserID: alice.ID, CurrentPassword: "Password1", NewPassword: "Password2",
		})
		require.NoError(t, err)
		stored, err := users.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.True(t, hasher.Verify("Password2", stored.PasswordHash))
		assert.False(t, hasher.Verify("Password1", stored.PasswordHash))
	})
}
