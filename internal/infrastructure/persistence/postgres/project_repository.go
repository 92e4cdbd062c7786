package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
)

const (
	insertProjectSQL = `
INSERT INTO projects (id, name, description, owner_id, is_active, created_at)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)`

	selectProjectColumns = `id, name, COALESCE(description, ''), owner_id, is_active, created_at, updated_at`

	getProjectByIDSQL = `SELECT ` + selectProjectColumns + ` FROM projects WHERE id = $1`

	listProjectsByOwnerSQL = `
SELECT ` + selectProjectColumns + ` FROM projects
WHERE owner_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3`

	listProjectsSQL = `SELECT ` + selectProjectColumns + ` FROM projects ORDER BY created_at LIMIT $1 OFFSET $2`

	updateProjectSQL = `
UPDATE projects SET name = $1, description = NULLIF($2, ''), is_active = $3, updated_at = NOW()
WHERE id = $4`

	// Members, API keys and scoped users go with the project via ON DELETE CASCADE.
	deleteProjectSQL = `DELETE FROM projects WHERE id = $1`
)

type ProjectRepository struct {
	db DB
}

func NewProjectRepository(db DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	_, err := r.db.Exec(ctx, insertProjectSQL,
		project.ID.UUID, project.Name, project.Description,
		project.OwnerID.UUID, project.IsActive, project.CreatedAt)
	return err
}

func (r *ProjectRepository) GetByID(ctx context.Context, projectID domain.ProjectID) (*domain.Project, error) {
	row := r.db.QueryRow(ctx, getProjectByIDSQL, projectID.UUID)
	return scanProject(row)
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID domain.UserID, limit, offset int) ([]*domain.Project, error) {
	rows, err := r.db.Query(ctx, listProjectsByOwnerSQL, ownerID.UUID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectProjects(rows)
}

func (r *ProjectRepository) List(ctx context.Context, limit, offset int) ([]*domain.Project, error) {
	rows, err := r.db.Query(ctx, listProjectsSQL, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectProjects(rows)
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	_, err := r.db.Exec(ctx, updateProjectSQL,
		project.Name, project.Description, project.IsActive, project.ID.UUID)
	return err
}

func (r *ProjectRepository) Delete(ctx context.Context, projectID domain.ProjectID) (bool, error) {
	tag, err := r.db.Exec(ctx, deleteProjectSQL, projectID.UUID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var (
		id      uuid.UUID
		ownerID uuid.UUID
		p       domain.Project
	)
	var updatedAt *time.Time
	err := row.Scan(&id, &p.Name, &p.Description, &ownerID, &p.IsActive, &p.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.ID = domain.NewProjectID(id)
	p.OwnerID = domain.NewUserID(ownerID)
	p.UpdatedAt = updatedAt
	return &p, nil
}

func collectProjects(rows pgx.Rows) ([]*domain.Project, error) {
	defer rows.Close()
	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)
