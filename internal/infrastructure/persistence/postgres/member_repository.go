package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	domerrors "github.com/AliiiBenn/mini-auth/internal/domain/errors"
)

const (
	insertMemberSQL = `
INSERT INTO project_members (project_id, user_id, role, created_at)
VALUES ($1, $2, $3, $4)`

	getMemberSQL = `
SELECT project_id, user_id, role, created_at FROM project_members
WHERE project_id = $1 AND user_id = $2`

	listMembersSQL = `
SELECT project_id, user_id, role, created_at FROM project_members
WHERE project_id = $1 ORDER BY created_at`

	removeMemberSQL = `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`

	updateMemberRoleSQL = `
UPDATE project_members SET role = $1 WHERE project_id = $2 AND user_id = $3`
)

type MemberRepository struct {
	db DB
}

func NewMemberRepository(db DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Add(ctx context.Context, member *domain.ProjectMember) error {
	_, err := r.db.Exec(ctx, insertMemberSQL,
		member.ProjectID.UUID, member.UserID.UUID, member.Role, member.CreatedAt)
	if isUniqueViolation(err) {
		return domerrors.ErrMemberExists
	}
	return err
}

func (r *MemberRepository) Get(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (*domain.ProjectMember, error) {
	row := r.db.QueryRow(ctx, getMemberSQL, projectID.UUID, userID.UUID)
	return scanMember(row)
}

func (r *MemberRepository) List(ctx context.Context, projectID domain.ProjectID) ([]*domain.ProjectMember, error) {
	rows, err := r.db.Query(ctx, listMembersSQL, projectID.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []*domain.ProjectMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *MemberRepository) Remove(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (bool, error) {
	tag, err := r.db.Exec(ctx, removeMemberSQL, projectID.UUID, userID.UUID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *MemberRepository) UpdateRole(ctx context.Context, projectID domain.ProjectID, userID domain.UserID, role string) (bool, error) {
	tag, err := r.db.Exec(ctx, updateMemberRoleSQL, role, projectID.UUID, userID.UUID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanMember(row pgx.Row) (*domain.ProjectMember, error) {
	var (
		projectID uuid.UUID
		userID    uuid.UUID
		m         domain.ProjectMember
	)
	err := row.Scan(&projectID, &userID, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m.ProjectID = domain.NewProjectID(projectID)
	m.UserID = domain.NewUserID(userID)
	return &m, nil
}

var _ ports.MemberRepository = (*MemberRepository)(nil)
