package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserID is a value object for user identity.
type UserID struct{ uuid.UUID }

// NewUserID creates a new UserID from uuid.
func NewUserID(id uuid.UUID) UserID { return UserID{UUID: id} }

// String returns the canonical string form.
func (u UserID) String() string { return u.UUID.String() }

// User is an identity record. ProjectID nil means a platform user; a set
// ProjectID scopes the user to that project's end-user pool. The
// (project_id, email) pair is unique, so the same email can exist once per
// project plus once at platform scope.
type User struct {
	ID           UserID
	ProjectID    *ProjectID // nil = platform user
	Email        string
	FullName     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// InProject reports whether the user belongs to the given project.
func (u *User) InProject(projectID ProjectID) bool {
	return u.ProjectID != nil && u.ProjectID.UUID == projectID.UUID
}
