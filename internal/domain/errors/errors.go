package errors

import "errors"

// Sentinel errors for handlers to map to HTTP status.
var (
	// Conflicts.
	ErrEmailTaken   = errors.New("email already registered in this scope")
	ErrMemberExists = errors.New("user is already a member of this project")

	// Authentication.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWrongTokenType     = errors.New("token type does not match expected use")
	ErrInvalidAPIKey      = errors.New("invalid or inactive project API key")

	// Authorization.
	ErrNotProjectOwner    = errors.New("only the project owner may perform this action")
	ErrNotProjectMember   = errors.New("not a member of this project")
	ErrTokenScopeMismatch = errors.New("token does not belong to this project")
	ErrOwnerImmutable     = errors.New("the project owner cannot be added, removed or reassigned as a member")

	// Not found.
	ErrUserNotFound    = errors.New("user not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrAPIKeyNotFound  = errors.New("API key not found")

	// Validation.
	ErrInvalidRole      = errors.New("role must be member or admin")
	ErrWeakPassword     = errors.New("password is not strong enough")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrSamePassword     = errors.New("new password must be different from current password")
)
