package project

import (
	"context"
	"time"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	domerrors "github.com/AliiiBenn/mini-auth/internal/domain/errors"
)

type UpdateInput struct {
	ProjectID   domain.ProjectID
	ActorID     domain.UserID
	Name        *string
	Description *string
	IsActive    *bool
}

// Update mutates a project. Owner only.
type Update struct {
	projects ports.ProjectRepository
}

func NewUpdate(projects ports.ProjectRepository) *Update {
	return &Update{projects: projects}
}

func (uc *Update) Execute(ctx context.Context, input UpdateInput) (*domain.Project, error) {
	project, err := requireOwned(ctx, uc.projects, input.ProjectID, input.ActorID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.IsActive != nil {
		project.IsActive = *input.IsActive
	}
	now := time.Now()
	project.UpdatedAt = &now
	if err := uc.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes a project and, through the store's cascades, its end-users,
// API keys and memberships. Owner only.
type Delete struct {
	projects ports.ProjectRepository
}

func NewDelete(projects ports.ProjectRepository) *Delete {
	return &Delete{projects: projects}
}

func (uc *Delete) Execute(ctx context.Context, projectID domain.ProjectID, actorID domain.UserID) error {
	if _, err := requireOwned(ctx, uc.projects, projectID, actorID); err != nil {
		return err
	}
	deleted, err := uc.projects.Delete(ctx, projectID)
	if err != nil {
		return err
	}
	if !deleted {
		return domerrors.ErrProjectNotFound
	}
	return nil
}

// requireOwned loads the project and enforces the ownership check shared by
// every project mutation.
func requireOwned(ctx context.Context, projects ports.ProjectRepository, projectID domain.ProjectID, actorID domain.UserID) (*domain.Project, error) {
	project, err := projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domerrors.ErrProjectNotFound
	}
	if !project.IsOwnedBy(actorID) {
		return nil, domerrors.ErrNotProjectOwner
	}
	return project, nil
}
