package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	domerrors "github.com/AliiiBenn/mini-auth/internal/domain/errors"
)

type RefreshInput struct {
	RefreshToken string
	// ProjectID, when set, requires the token's user to belong to that
	// project. Client refreshes pass the project resolved from the API key
	// so scope is re-checked against the live records, not the token.
	ProjectID *domain.ProjectID
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	User         *domain.User
}

// Refresh mints a new access token against a ledger-backed refresh token.
// The refresh token is not rotated; the same token is returned until it
// expires or is revoked.
type Refresh struct {
	users     ports.UserRepository
	issuer    ports.TokenIssuer
	ledger    ports.TokenLedger
	accessTTL time.Duration
}

func NewRefresh(users ports.UserRepository, issuer ports.TokenIssuer, ledger ports.TokenLedger, accessTTL time.Duration) *Refresh {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	return &Refresh{users: users, issuer: issuer, ledger: ledger, accessTTL: accessTTL}
}

func (uc *Refresh) Execute(ctx context.Context, input RefreshInput) (*RefreshResult, error) {
	if input.RefreshToken == "" {
		return nil, domerrors.ErrInvalidToken
	}
	row, err := uc.ledger.GetValid(ctx, input.RefreshToken)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domerrors.ErrInvalidToken
	}
	subject, err := uc.issuer.Validate(input.RefreshToken, ports.TokenTypeRefresh)
	if err != nil {
		// The ledger row is live but the token itself no longer decodes;
		// drop the row so it cannot be retried.
		_, _ = uc.ledger.Revoke(ctx, input.RefreshToken)
		return nil, err
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, domerrors.ErrInvalidToken
	}
	user, err := uc.users.GetByID(ctx, domain.NewUserID(userID))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domerrors.ErrInactiveUser
	}
	if input.ProjectID != nil && !user.InProject(*input.ProjectID) {
		return nil, domerrors.ErrTokenScopeMismatch
	}
	accessToken, err := uc.issuer.Issue(user.ID.String(), ports.TokenTypeAccess, uc.accessTTL)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{
		AccessToken:  accessToken,
		RefreshToken: input.RefreshToken,
		ExpiresIn:    int64(uc.accessTTL.Seconds()),
		User:         user,
	}, nil
}
