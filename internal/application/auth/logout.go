package auth

import (
	"context"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
)

// Logout revokes a single refresh token. Revoking an absent token is not an
// error: the session is gone either way. Already-issued access tokens stay
// valid until natural expiry.
type Logout struct {
	ledger ports.TokenLedger
}

func NewLogout(ledger ports.TokenLedger) *Logout {
	return &Logout{ledger: ledger}
}

func (uc *Logout) Execute(ctx context.Context, refreshToken string) (bool, error) {
	if refreshToken == "" {
		return false, nil
	}
	return uc.ledger.Revoke(ctx, refreshToken)
}

// LogoutAll revokes every live refresh token for a user, ending all their
// sessions at once.
type LogoutAll struct {
	ledger ports.TokenLedger
}

func NewLogoutAll(ledger ports.TokenLedger) *LogoutAll {
	return &LogoutAll{ledger: ledger}
}

func (uc *LogoutAll) Execute(ctx context.Context, userID domain.UserID) (int64, error) {
	return uc.ledger.RevokeAllForUser(ctx, userID, "")
}
