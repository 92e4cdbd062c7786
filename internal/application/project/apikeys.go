package project

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	domerrors "github.com/AliiiBenn/mini-auth/internal/domain/errors"
)

type CreateAPIKeyInput struct {
	ProjectID domain.ProjectID
	ActorID   domain.UserID
	Name      string
}

// APIKeys groups API-key management for a project. Every operation requires
// the acting platform user to own the project.
type APIKeys struct {
	projects ports.ProjectRepository
	apiKeys  ports.APIKeyRepository
}

func NewAPIKeys(projects ports.ProjectRepository, apiKeys ports.APIKeyRepository) *APIKeys {
	return &APIKeys{projects: projects, apiKeys: apiKeys}
}

func (uc *APIKeys) Create(ctx context.Context, input CreateAPIKeyInput) (*domain.ProjectAPIKey, error) {
	if _, err := requireOwned(ctx, uc.projects, input.ProjectID, input.ActorID); err != nil {
		return nil, err
	}
	key, err := GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	apiKey := &domain.ProjectAPIKey{
		ID:        domain.NewAPIKeyID(uuid.New()),
		ProjectID: input.ProjectID,
		Key:       key,
		Name:      input.Name,
		CreatedAt: time.Now(),
		IsActive:  true,
	}
	if err := uc.apiKeys.Create(ctx, apiKey); err != nil {
		return nil, err
	}
	return apiKey, nil
}

func (uc *APIKeys) List(ctx context.Context, projectID domain.ProjectID, actorID domain.UserID, includeInactive bool) ([]*domain.ProjectAPIKey, error) {
	if _, err := requireOwned(ctx, uc.projects, projectID, actorID); err != nil {
		return nil, err
	}
	return uc.apiKeys.ListByProject(ctx, projectID, includeInactive)
}

// Deactivate disables a key. The row is kept so last_used_at history
// survives; an inactive key simply stops resolving.
func (uc *APIKeys) Deactivate(ctx context.Context, projectID domain.ProjectID, actorID domain.UserID, keyID domain.APIKeyID) error {
	if _, err := requireOwned(ctx, uc.projects, projectID, actorID); err != nil {
		return err
	}
	ok, err := uc.apiKeys.Deactivate(ctx, keyID)
	if err != nil {
		return err
	}
	if !ok {
		return domerrors.ErrAPIKeyNotFound
	}
	return nil
}
