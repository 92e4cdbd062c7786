package project

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
)

// InitialAPIKeyName is the name of the key created alongside a new project.
const InitialAPIKeyName = "Default"

type CreateInput struct {
	OwnerID     domain.UserID
	Name        string
	Description string
}

// CreateResult returns the project together with its first API key so the
// caller can start using client auth immediately.
type CreateResult struct {
	Project *domain.Project
	APIKey  *domain.ProjectAPIKey
}

// Create creates a project owned by a platform user, plus a default API key.
type Create struct {
	projects ports.ProjectRepository
	apiKeys  ports.APIKeyRepository
}

func NewCreate(projects ports.ProjectRepository, apiKeys ports.APIKeyRepository) *Create {
	return &Create{projects: projects, apiKeys: apiKeys}
}

func (uc *Create) Execute(ctx context.Context, input CreateInput) (*CreateResult, error) {
	now := time.Now()
	project := &domain.Project{
		ID:          domain.NewProjectID(uuid.New()),
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     input.OwnerID,
		IsActive:    true,
		CreatedAt:   now,
	}
	if err := uc.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	key, err := GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	apiKey := &domain.ProjectAPIKey{
		ID:        domain.NewAPIKeyID(uuid.New()),
		ProjectID: project.ID,
		Key:       key,
		Name:      InitialAPIKeyName,
		CreatedAt: now,
		IsActive:  true,
	}
	if err := uc.apiKeys.Create(ctx, apiKey); err != nil {
		return nil, err
	}
	return &CreateResult{Project: project, APIKey: apiKey}, nil
}

// GenerateAPIKey returns a fresh key of the form ma_<unix>_<random>, unique
// by construction of the random part.
func GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("ma_%d_%s", time.Now().Unix(), base64.RawURLEncoding.EncodeToString(b)), nil
}
