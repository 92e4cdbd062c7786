package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	domerrors "github.com/AliiiBenn/mini-auth/internal/domain/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type RegisterInput struct {
	ProjectID       *domain.ProjectID // nil = platform registration
	Email           string
	FullName        string
	Password        string
	PasswordConfirm string
}

type RegisterResult struct {
	User *domain.User
}

// Register creates a user in the given scope. The duplicate pre-check is
// best effort; the unique constraint on (project_id, email) is the real
// guard, and the repository surfaces its violation as ErrEmailTaken.
type Register struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

func NewRegister(users ports.UserRepository, hasher ports.PasswordHasher) *Register {
	return &Register{users: users, hasher: hasher}
}

func (uc *Register) Execute(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if !emailRegex.MatchString(input.Email) {
		return nil, domerrors.ErrInvalidCredentials
	}
	if input.Password != input.PasswordConfirm {
		return nil, domerrors.ErrPasswordMismatch
	}
	if !IsPasswordStrong(input.Password) {
		return nil, domerrors.ErrWeakPassword
	}
	existing, err := uc.users.GetByEmail(ctx, input.ProjectID, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrEmailTaken
	}
	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           domain.NewUserID(uuid.New()),
		ProjectID:    input.ProjectID,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return &RegisterResult{User: user}, nil
}
