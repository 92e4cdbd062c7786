package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
)

const (
	insertTokenSQL = `
INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, user_agent, is_revoked)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`

	// The ledger, not the JWT expiry claim, is the source of truth for
	// whether a refresh token is still usable.
	getValidTokenSQL = `
SELECT id, user_id, token, expires_at, created_at, COALESCE(user_agent, ''), is_revoked
FROM refresh_tokens
WHERE token = $1 AND NOT is_revoked AND expires_at > NOW()`

	revokeTokenSQL = `UPDATE refresh_tokens SET is_revoked = TRUE WHERE token = $1 AND NOT is_revoked`

	revokeAllForUserSQL = `
UPDATE refresh_tokens SET is_revoked = TRUE
WHERE user_id = $1 AND NOT is_revoked AND token <> $2`

	purgeExpiredTokensSQL = `DELETE FROM refresh_tokens WHERE is_revoked OR expires_at <= NOW()`
)

type TokenLedger struct {
	db DB
}

func NewTokenLedger(db DB) *TokenLedger {
	return &TokenLedger{db: db}
}

func (l *TokenLedger) Create(ctx context.Context, token *domain.RefreshToken) error {
	_, err := l.db.Exec(ctx, insertTokenSQL,
		token.ID, token.UserID.UUID, token.Token, token.ExpiresAt,
		token.CreatedAt, token.UserAgent, token.IsRevoked)
	return err
}

func (l *TokenLedger) GetValid(ctx context.Context, token string) (*domain.RefreshToken, error) {
	var (
		userID uuid.UUID
		t      domain.RefreshToken
	)
	err := l.db.QueryRow(ctx, getValidTokenSQL, token).
		Scan(&t.ID, &userID, &t.Token, &t.ExpiresAt, &t.CreatedAt, &t.UserAgent, &t.IsRevoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	t.UserID = domain.NewUserID(userID)
	return &t, nil
}

func (l *TokenLedger) Revoke(ctx context.Context, token string) (bool, error) {
	tag, err := l.db.Exec(ctx, revokeTokenSQL, token)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (l *TokenLedger) RevokeAllForUser(ctx context.Context, userID domain.UserID, excludeToken string) (int64, error) {
	tag, err := l.db.Exec(ctx, revokeAllForUserSQL, userID.UUID, excludeToken)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (l *TokenLedger) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := l.db.Exec(ctx, purgeExpiredTokensSQL)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ ports.TokenLedger = (*TokenLedger)(nil)
