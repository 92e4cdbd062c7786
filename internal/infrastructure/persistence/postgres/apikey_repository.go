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
	insertAPIKeySQL = `
INSERT INTO project_api_keys (id, project_id, key, name, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	selectAPIKeyColumns = `id, project_id, key, name, created_at, last_used_at, is_active`

	getAPIKeyByKeySQL = `SELECT ` + selectAPIKeyColumns + ` FROM project_api_keys WHERE key = $1`

	listAPIKeysByProjectSQL = `
SELECT ` + selectAPIKeyColumns + ` FROM project_api_keys
WHERE project_id = $1 AND (is_active OR $2) ORDER BY created_at`

	deactivateAPIKeySQL = `UPDATE project_api_keys SET is_active = FALSE WHERE id = $1 AND is_active`

	touchAPIKeySQL = `UPDATE project_api_keys SET last_used_at = NOW() WHERE key = $1`
)

type APIKeyRepository struct {
	db DB
}

func NewAPIKeyRepository(db DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(ctx context.Context, key *domain.ProjectAPIKey) error {
	_, err := r.db.Exec(ctx, insertAPIKeySQL,
		key.ID.UUID, key.ProjectID.UUID, key.Key, key.Name, key.IsActive, key.CreatedAt)
	return err
}

func (r *APIKeyRepository) GetByKey(ctx context.Context, key string) (*domain.ProjectAPIKey, error) {
	row := r.db.QueryRow(ctx, getAPIKeyByKeySQL, key)
	return scanAPIKey(row)
}

func (r *APIKeyRepository) ListByProject(ctx context.Context, projectID domain.ProjectID, includeInactive bool) ([]*domain.ProjectAPIKey, error) {
	rows, err := r.db.Query(ctx, listAPIKeysByProjectSQL, projectID.UUID, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []*domain.ProjectAPIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *APIKeyRepository) Deactivate(ctx context.Context, keyID domain.APIKeyID) (bool, error) {
	tag, err := r.db.Exec(ctx, deactivateAPIKeySQL, keyID.UUID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, key string) error {
	_, err := r.db.Exec(ctx, touchAPIKeySQL, key)
	return err
}

func scanAPIKey(row pgx.Row) (*domain.ProjectAPIKey, error) {
	var (
		id        uuid.UUID
		projectID uuid.UUID
		k         domain.ProjectAPIKey
	)
	err := row.Scan(&id, &projectID, &k.Key, &k.Name, &k.CreatedAt, &k.LastUsedAt, &k.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	k.ID = domain.NewAPIKeyID(id)
	k.ProjectID = domain.NewProjectID(projectID)
	return &k, nil
}

var _ ports.APIKeyRepository = (*APIKeyRepository)(nil)
