package project

import (
	"context"
	"time"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	domerrors "github.com/AliiiBenn/mini-auth/internal/domain/errors"
)

type AddMemberInput struct {
	ProjectID domain.ProjectID
	ActorID   domain.UserID
	UserID    domain.UserID
	Role      string
}

// Members groups membership management. Mutations are owner-only; listing is
// open to the owner and existing members. The owner never appears as a
// member row, so they cannot be added, removed or reassigned.
type Members struct {
	projects ports.ProjectRepository
	members  ports.MemberRepository
	users    ports.UserRepository
}

func NewMembers(projects ports.ProjectRepository, members ports.MemberRepository, users ports.UserRepository) *Members {
	return &Members{projects: projects, members: members, users: users}
}

func (uc *Members) Add(ctx context.Context, input AddMemberInput) (*domain.ProjectMember, error) {
	project, err := requireOwned(ctx, uc.projects, input.ProjectID, input.ActorID)
	if err != nil {
		return nil, err
	}
	if input.Role == "" {
		input.Role = domain.RoleMember
	}
	if !domain.ValidRole(input.Role) {
		return nil, domerrors.ErrInvalidRole
	}
	if project.IsOwnedBy(input.UserID) {
		return nil, domerrors.ErrOwnerImmutable
	}
	user, err := uc.users.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.ProjectID != nil {
		// Memberships are for platform users only; end-users of some
		// project cannot collaborate on dashboards.
		return nil, domerrors.ErrUserNotFound
	}
	existing, err := uc.members.Get(ctx, input.ProjectID, input.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrMemberExists
	}
	member := &domain.ProjectMember{
		ProjectID: input.ProjectID,
		UserID:    input.UserID,
		Role:      input.Role,
		CreatedAt: time.Now(),
	}
	if err := uc.members.Add(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (uc *Members) List(ctx context.Context, projectID domain.ProjectID, actorID domain.UserID) ([]*domain.ProjectMember, error) {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domerrors.ErrProjectNotFound
	}
	if !project.IsOwnedBy(actorID) {
		member, err := uc.members.Get(ctx, projectID, actorID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			return nil, domerrors.ErrNotProjectMember
		}
	}
	return uc.members.List(ctx, projectID)
}

func (uc *Members) Remove(ctx context.Context, projectID domain.ProjectID, actorID, userID domain.UserID) error {
	project, err := requireOwned(ctx, uc.projects, projectID, actorID)
	if err != nil {
		return err
	}
	if project.IsOwnedBy(userID) {
		return domerrors.ErrOwnerImmutable
	}
	removed, err := uc.members.Remove(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return domerrors.ErrMemberNotFound
	}
	return nil
}

func (uc *Members) UpdateRole(ctx context.Context, projectID domain.ProjectID, actorID, userID domain.UserID, role string) (*domain.ProjectMember, error) {
	project, err := requireOwned(ctx, uc.projects, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if project.IsOwnedBy(userID) {
		return nil, domerrors.ErrOwnerImmutable
	}
	if !domain.ValidRole(role) {
		return nil, domerrors.ErrInvalidRole
	}
	updated, err := uc.members.UpdateRole(ctx, projectID, userID, role)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domerrors.ErrMemberNotFound
	}
	return uc.members.Get(ctx, projectID, userID)
}
