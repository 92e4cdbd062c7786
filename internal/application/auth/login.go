package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	domerrors "github.com/AliiiBenn/mini-auth/internal/domain/errors"
)

const (
	DefaultAccessTokenTTL  = 30 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

type LoginInput struct {
	ProjectID *domain.ProjectID // nil = platform login
	Email     string
	Password  string
	UserAgent string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	User         *domain.User
}

// Login verifies credentials in the given scope and mints an access/refresh
// token pair. The refresh token is recorded in the ledger so it can be
// revoked later; the access token stays stateless until natural expiry.
type Login struct {
	users      ports.UserRepository
	hasher     ports.PasswordHasher
	issuer     ports.TokenIssuer
	ledger     ports.TokenLedger
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewLogin(users ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, ledger ports.TokenLedger, accessTTL, refreshTTL time.Duration) *Login {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &Login{
		users:      users,
		hasher:     hasher,
		issuer:     issuer,
		ledger:     ledger,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (uc *Login) Execute(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := uc.users.GetByEmail(ctx, input.ProjectID, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !uc.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, domerrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domerrors.ErrInactiveUser
	}
	accessToken, err := uc.issuer.Issue(user.ID.String(), ports.TokenTypeAccess, uc.accessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := uc.issuer.Issue(user.ID.String(), ports.TokenTypeRefresh, uc.refreshTTL)
	if err != nil {
		return nil, err
	}
	row := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(uc.refreshTTL),
		CreatedAt: time.Now(),
		UserAgent: input.UserAgent,
	}
	if err := uc.ledger.Create(ctx, row); err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(uc.accessTTL.Seconds()),
		User:         user,
	}, nil
}
