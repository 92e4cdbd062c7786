package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProjectID is a value object for project identity.
type ProjectID struct{ uuid.UUID }

// NewProjectID creates a new ProjectID from uuid.
func NewProjectID(id uuid.UUID) ProjectID { return ProjectID{UUID: id} }

// String returns the canonical string form.
func (p ProjectID) String() string { return p.UUID.String() }

// Project is a resource owned by a platform user. Each project scopes its
// own pool of end-users, reached through the project's API keys.
type Project struct {
	ID          ProjectID
	Name        string
	Description string
	OwnerID     UserID
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// IsOwnedBy reports whether the given platform user owns the project.
func (p *Project) IsOwnedBy(userID UserID) bool { return p.OwnerID.UUID == userID.UUID }

// APIKeyID is a value object for API key identity.
type APIKeyID struct{ uuid.UUID }

// NewAPIKeyID creates a new APIKeyID from uuid.
func NewAPIKeyID(id uuid.UUID) APIKeyID { return APIKeyID{UUID: id} }

// String returns the canonical string form.
func (k APIKeyID) String() string { return k.UUID.String() }

// ProjectAPIKey is a credential that scopes client-facing auth calls to one
// project. A key authenticates only while both the key and its parent
// project are active.
type ProjectAPIKey struct {
	ID         APIKeyID
	ProjectID  ProjectID
	Key        string
	Name       string
	CreatedAt  time.Time
	LastUsedAt *time.Time
	IsActive   bool
}

// Member roles within a project. The owner is not a member row; ownership is
// carried on the project itself.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// ValidRole reports whether role is one of the accepted member roles.
func ValidRole(role string) bool { return role == RoleMember || role == RoleAdmin }

// ProjectMember grants a platform user a role inside a project they do not
// own. Unique per (project_id, user_id).
type ProjectMember struct {
	ProjectID ProjectID
	UserID    UserID
	Role      string
	CreatedAt time.Time
}
