package ports

import (
	"context"

	"github.com/AliiiBenn/mini-auth/internal/domain"
)

// UserRepository defines persistence for users. Email lookups are always
// scoped: a nil projectID addresses the platform pool, a non-nil one the
// project's end-user pool.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, projectID *domain.ProjectID, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, userID domain.UserID, passwordHash string) error
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

// ProjectRepository defines persistence for projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, projectID domain.ProjectID) (*domain.Project, error)
	ListByOwner(ctx context.Context, ownerID domain.UserID, limit, offset int) ([]*domain.Project, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, projectID domain.ProjectID) (bool, error)
}

// APIKeyRepository defines persistence for project API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.ProjectAPIKey) error
	GetByKey(ctx context.Context, key string) (*domain.ProjectAPIKey, error)
	ListByProject(ctx context.Context, projectID domain.ProjectID, includeInactive bool) ([]*domain.ProjectAPIKey, error)
	Deactivate(ctx context.Context, keyID domain.APIKeyID) (bool, error)
	TouchLastUsed(ctx context.Context, key string) error
}

// MemberRepository defines persistence for project memberships.
type MemberRepository interface {
	Add(ctx context.Context, member *domain.ProjectMember) error
	Get(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (*domain.ProjectMember, error)
	List(ctx context.Context, projectID domain.ProjectID) ([]*domain.ProjectMember, error)
	Remove(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (bool, error)
	UpdateRole(ctx context.Context, projectID domain.ProjectID, userID domain.UserID, role string) (bool, error)
}

// TokenLedger is the persisted refresh-token store. Revocation is idempotent
// at this level: revoking an absent or already-revoked token reports false
// rather than an error.
type TokenLedger interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	// GetValid returns the ledger row only while it is unrevoked and
	// unexpired; otherwise nil with a nil error.
	GetValid(ctx context.Context, token string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, token string) (bool, error)
	// RevokeAllForUser revokes every live token for the user, optionally
	// sparing excludeToken, and returns the number revoked.
	RevokeAllForUser(ctx context.Context, userID domain.UserID, excludeToken string) (int64, error)
	// PurgeExpired deletes rows that are expired or revoked and returns the
	// number deleted.
	PurgeExpired(ctx context.Context) (int64, error)
}
