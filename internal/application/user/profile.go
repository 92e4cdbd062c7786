package user

import (
	"context"
	"time"

	"github.com/AliiiBenn/mini-auth/internal/application/auth"
	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	domerrors "github.com/AliiiBenn/mini-auth/internal/domain/errors"
)

type UpdateProfileInput struct {
	UserID   domain.UserID
	FullName *string
	Email    *string
}

// UpdateProfile mutates the caller's own profile fields. An email change is
// re-checked for uniqueness in the user's scope before persisting.
type UpdateProfile struct {
	users ports.UserRepository
}

func NewUpdateProfile(users ports.UserRepository) *UpdateProfile {
	return &UpdateProfile{users: users}
}

func (uc *UpdateProfile) Execute(ctx context.Context, input UpdateProfileInput) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Email != nil && *input.Email != user.Email {
		existing, err := uc.users.GetByEmail(ctx, user.ProjectID, *input.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domerrors.ErrEmailTaken
		}
		user.Email = *input.Email
	}
	now := time.Now()
	user.UpdatedAt = &now
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type ChangePasswordInput struct {
	UserID          domain.UserID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword replaces the caller's password after checking the current
// one. The new password must differ and pass the strength policy.
type ChangePassword struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

func NewChangePassword(users ports.UserRepository, hasher ports.PasswordHasher) *ChangePassword {
	return &ChangePassword{users: users, hasher: hasher}
}

func (uc *ChangePassword) Execute(ctx context.Context, input ChangePasswordInput) error {
	user, err := uc.users.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return domerrors.ErrUserNotFound
	}
	if !uc.hasher.Verify(input.CurrentPassword, user.PasswordHash) {
		return domerrors.ErrInvalidCredentials
	}
	if input.CurrentPassword == input.NewPassword {
		return domerrors.ErrSamePassword
	}
	if !auth.IsPasswordStrong(input.NewPassword) {
		return domerrors.ErrWeakPassword
	}
	hash, err := uc.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	return uc.users.UpdatePassword(ctx, user.ID, hash)
}
