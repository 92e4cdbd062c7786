package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	domerrors "github.com/AliiiBenn/mini-auth/internal/domain/errors"
)

const (
	insertUserSQL = `
INSERT INTO users (id, project_id, email, full_name, password_hash, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	selectUserColumns = `id, project_id, email, COALESCE(full_name, ''), password_hash, is_active, created_at, updated_at`

	// IS NOT DISTINCT FROM makes the nil scope (platform users) addressable
	// with the same query as project scopes.
	getUserByEmailSQL = `
SELECT ` + selectUserColumns + ` FROM users
WHERE project_id IS NOT DISTINCT FROM $1 AND email = $2`

	getUserByIDSQL = `SELECT ` + selectUserColumns + ` FROM users WHERE id = $1`

	updateUserSQL = `
UPDATE users SET email = $1, full_name = NULLIF($2, ''), is_active = $3, updated_at = NOW()
WHERE id = $4`

	updateUserPasswordSQL = `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`

	listUsersSQL = `SELECT ` + selectUserColumns + ` FROM users ORDER BY created_at LIMIT $1 OFFSET $2`
)

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	var fullName *string
	if user.FullName != "" {
		fullName = &user.FullName
	}
	_, err := r.db.Exec(ctx, insertUserSQL,
		user.ID.UUID, projectUUID(user.ProjectID), user.Email, fullName,
		user.PasswordHash, user.IsActive, user.CreatedAt)
	if isUniqueViolation(err) {
		return domerrors.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, projectID *domain.ProjectID, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, getUserByEmailSQL, projectUUID(projectID), email)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	row := r.db.QueryRow(ctx, getUserByIDSQL, userID.UUID)
	return scanUser(row)
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, updateUserSQL, user.Email, user.FullName, user.IsActive, user.ID.UUID)
	if isUniqueViolation(err) {
		return domerrors.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID domain.UserID, passwordHash string) error {
	_, err := r.db.Exec(ctx, updateUserPasswordSQL, passwordHash, userID.UUID)
	return err
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, listUsersSQL, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func projectUUID(projectID *domain.ProjectID) *uuid.UUID {
	if projectID == nil {
		return nil
	}
	id := projectID.UUID
	return &id
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		id        uuid.UUID
		projectID *uuid.UUID
		u         domain.User
		updatedAt *time.Time
	)
	err := row.Scan(&id, &projectID, &u.Email, &u.FullName, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.ID = domain.NewUserID(id)
	if projectID != nil {
		pid := domain.NewProjectID(*projectID)
		u.ProjectID = &pid
	}
	u.UpdatedAt = updatedAt
	return &u, nil
}

// Ensure UserRepository implements ports.UserRepository.
var _ ports.UserRepository = (*UserRepository)(nil)
