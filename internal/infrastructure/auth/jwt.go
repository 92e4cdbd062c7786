package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	domerrors "github.com/AliiiBenn/mini-auth/internal/domain/errors"
)

// TokenIssuer implements ports.TokenIssuer with HS256 over a shared secret.
type TokenIssuer struct {
	secret []byte
	issuer string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

func NewTokenIssuer(secret []byte, issuer string) *TokenIssuer {
	return &TokenIssuer{secret: secret, issuer: issuer}
}

func (t *TokenIssuer) Issue(subject, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			// Claims serialize at second precision, so without a jti two
			// tokens minted back to back would be byte-identical.
			ID: uuid.NewString(),
		},
		TokenType: tokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Validate decodes the token (signature, expiry, structure) and then checks
// the type claim. The type check is deliberately separate from decoding so a
// well-signed refresh token presented as an access token is caught as a
// wrong-type use, not a decode failure.
func (t *TokenIssuer) Validate(tokenString, expectedType string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", domerrors.ErrInvalidToken
	}
	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return "", domerrors.ErrInvalidToken
	}
	if claims.TokenType != expectedType {
		return "", domerrors.ErrWrongTokenType
	}
	return claims.Subject, nil
}

var _ ports.TokenIssuer = (*TokenIssuer)(nil)
