package project_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliiiBenn/mini-auth/internal/application/project"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	domerrors "github.com/AliiiBenn/mini-auth/internal/domain/errors"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/memory"
)

type projectStack struct {
	users    *memory.UserRepository
	projects *memory.ProjectRepository
	apiKeys  *memory.APIKeyRepository
	members  *memory.MemberRepository

	create   *project.Create
	update   *project.Update
	delete   *project.Delete
	keys     *project.APIKeys
	memberUC *project.Members
}

func newProjectStack(t *testing.T) *projectStack {
	t.Helper()
	users := memory.NewUserRepository()
	projects := memory.NewProjectRepository()
	apiKeys := memory.NewAPIKeyRepository()
	members := memory.NewMemberRepository()
	return &projectStack{
		users:    users,
		projects: projects,
		apiKeys:  apiKeys,
		members:  members,
		create:   project.NewCreate(projects, apiKeys),
		update:   project.NewUpdate(projects),
		delete:   project.NewDelete(projects),
		keys:     project.NewAPIKeys(projects, apiKeys),
		memberUC: project.NewMembers(projects, members, users),
	}
}

func (s *projectStack) platformUser(t *testing.T, email string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:        domain.NewUserID(uuid.New()),
		Email:     email,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.users.Create(context.Background(), u))
	return u
}

func (s *projectStack) endUser(t *testing.T, projectID domain.ProjectID, email string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:        domain.NewUserID(uuid.New()),
		ProjectID: &projectID,
		Email:     email,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.users.Create(context.Background(), u))
	return u
}

func TestCreateProject(t *testing.T) {
	s := newProjectStack(t)
	ctx := context.Background()
	owner := s.platformUser(t, "owner@example.com")

	result, err := s.create.Execute(ctx, project.CreateInput{
		OwnerID: owner.ID, Name: "My App", Description: "demo",
	})
	require.NoError(t, err)
	assert.True(t, result.Project.IsOwnedBy(owner.ID))
	assert.True(t, result.Project.IsActive)

	require.NotNil(t, result.APIKey)
	assert.Equal(t, project.InitialAPIKeyName, result.APIKey.Name)
	assert.True(t, result.APIKey.IsActive)
	assert.True(t, strings.HasPrefix(result.APIKey.Key, "ma_"))

	keys, err := s.keys.List(ctx, result.Project.ID, owner.ID, false)
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestGenerateAPIKeyUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := project.GenerateAPIKey()
		require.NoError(t, err)
		assert.False(t, seen[key])
		seen[key] = true
	}
}

func TestUpdateProjectOwnership(t *testing.T) {
	s := newProjectStack(t)
	ctx := context.Background()
	owner := s.platformUser(t, "owner@example.com")
	other := s.platformUser(t, "other@example.com")

	created, err := s.create.Execute(ctx, project.CreateInput{OwnerID: owner.ID, Name: "App"})
	require.NoError(t, err)

	t.Run("non-owner cannot update", func(t *testing.T) {
		name := "Stolen"
		_, err := s.update.Execute(ctx, project.UpdateInput{
			ProjectID: created.Project.ID, ActorID: other.ID, Name: &name,
		})
		assert.ErrorIs(t, err, domerrors.ErrNotProjectOwner)
	})
	t.Run("owner updates fields", func(t *testing.T) {
		name := "Renamed"
		inactive := false
		updated, err := s.update.Execute(ctx, project.UpdateInput{
			ProjectID: created.Project.ID, ActorID: owner.ID, Name: &name, IsActive: &inactive,
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.False(t, updated.IsActive)
		assert.NotNil(t, updated.UpdatedAt)
	})
	t.Run("unknown project", func(t *testing.T) {
		name := "x"
		_, err := s.update.Execute(ctx, project.UpdateInput{
			ProjectID: domain.NewProjectID(uuid.New()), ActorID: owner.ID, Name: &name,
		})
		assert.ErrorIs(t, err, domerrors.ErrProjectNotFound)
	})
}

func TestDeleteProject(t *testing.T) {
	s := newProjectStack(t)
	ctx := context.Background()
	owner := s.platformUser(t, "owner@example.com")
	other := s.platformUser(t, "other@example.com")

	created, err := s.create.Execute(ctx, project.CreateInput{OwnerID: owner.ID, Name: "App"})
	require.NoError(t, err)

	err = s.delete.Execute(ctx, created.Project.ID, other.ID)
	assert.ErrorIs(t, err, domerrors.ErrNotProjectOwner)

	require.NoError(t, s.delete.Execute(ctx, created.Project.ID, owner.ID))

	p, err := s.projects.GetByID(ctx, created.Project.ID)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestAPIKeyLifecycle(t *testing.T) {
	s := newProjectStack(t)
	ctx := context.Background()
	owner := s.platformUser(t, "owner@example.com")
	other := s.platformUser(t, "other@example.com")

	created, err := s.create.Execute(ctx, project.CreateInput{OwnerID: owner.ID, Name: "App"})
	require.NoError(t, err)
	projectID := created.Project.ID

	t.Run("non-owner cannot mint keys", func(t *testing.T) {
		_, err := s.keys.Create(ctx, project.CreateAPIKeyInput{
			ProjectID: projectID, ActorID: other.ID, Name: "CI",
		})
		assert.ErrorIs(t, err, domerrors.ErrNotProjectOwner)
	})

	key, err := s.keys.Create(ctx, project.CreateAPIKeyInput{
		ProjectID: projectID, ActorID: owner.ID, Name: "CI",
	})
	require.NoError(t, err)

	t.Run("deactivated keys drop out of the default listing", func(t *testing.T) {
		require.NoError(t, s.keys.Deactivate(ctx, projectID, owner.ID, key.ID))

		active, err := s.keys.List(ctx, projectID, owner.ID, false)
		require.NoError(t, err)
		assert.Len(t, active, 1) // just the initial key

		all, err := s.keys.List(ctx, projectID, owner.ID, true)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
	t.Run("deactivating an unknown key", func(t *testing.T) {
		err := s.keys.Deactivate(ctx, projectID, owner.ID, domain.NewAPIKeyID(uuid.New()))
		assert.ErrorIs(t, err, domerrors.ErrAPIKeyNotFound)
	})
}

func TestMembers(t *testing.T) {
	s := newProjectStack(t)
	ctx := context.Background()
	owner := s.platformUser(t, "owner@example.com")
	collaborator := s.platformUser(t, "collab@example.com")
	stranger := s.platformUser(t, "stranger@example.com")

	created, err := s.create.Execute(ctx, project.CreateInput{OwnerID: owner.ID, Name: "App"})
	require.NoError(t, err)
	projectID := created.Project.ID
	endUser := s.endUser(t, projectID, "client@example.com")

	t.Run("add defaults to member role", func(t *testing.T) {
		m, err := s.memberUC.Add(ctx, project.AddMemberInput{
			ProjectID: projectID, ActorID: owner.ID, UserID: collaborator.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleMember, m.Role)
	})
	t.Run("duplicate add conflicts", func(t *testing.T) {
		_, err := s.memberUC.Add(ctx, project.AddMemberInput{
			ProjectID: projectID, ActorID: owner.ID, UserID: collaborator.ID,
		})
		assert.ErrorIs(t, err, domerrors.ErrMemberExists)
	})
	t.Run("owner cannot be added as member", func(t *testing.T) {
		_, err := s.memberUC.Add(ctx, project.AddMemberInput{
			ProjectID: projectID, ActorID: owner.ID, UserID: owner.ID,
		})
		assert.ErrorIs(t, err, domerrors.ErrOwnerImmutable)
	})
	t.Run("end-users cannot become members", func(t *testing.T) {
		_, err := s.memberUC.Add(ctx, project.AddMemberInput{
			ProjectID: projectID, ActorID: owner.ID, UserID: endUser.ID,
		})
		assert.ErrorIs(t, err, domerrors.ErrUserNotFound)
	})
	t.Run("invalid role is rejected", func(t *testing.T) {
		_, err := s.memberUC.Add(ctx, project.AddMemberInput{
			ProjectID: projectID, ActorID: owner.ID, UserID: stranger.ID, Role: "overlord",
		})
		assert.ErrorIs(t, err, domerrors.ErrInvalidRole)
	})
	t.Run("only owner mutates membership", func(t *testing.T) {
		_, err := s.memberUC.Add(ctx, project.AddMemberInput{
			ProjectID: projectID, ActorID: collaborator.ID, UserID: stranger.ID,
		})
		assert.ErrorIs(t, err, domerrors.ErrNotProjectOwner)
	})
	t.Run("listing is open to owner and members only", func(t *testing.T) {
		members, err := s.memberUC.List(ctx, projectID, owner.ID)
		require.NoError(t, err)
		assert.Len(t, members, 1)

		members, err = s.memberUC.List(ctx, projectID, collaborator.ID)
		require.NoError(t, err)
		assert.Len(t, members, 1)

		_, err = s.memberUC.List(ctx, projectID, stranger.ID)
		assert.ErrorIs(t, err, domerrors.ErrNotProjectMember)
	})
	t.Run("role update round-trips", func(t *testing.T) {
		m, err := s.memberUC.UpdateRole(ctx, projectID, owner.ID, collaborator.ID, domain.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, m.Role)
	})
	t.Run("removing a non-member", func(t *testing.T) {
		err := s.memberUC.Remove(ctx, projectID, owner.ID, stranger.ID)
		assert.ErrorIs(t, err, domerrors.ErrMemberNotFound)
	})
	t.Run("remove ends access", func(t *testing.T) {
		require.NoError(t, s.memberUC.Remove(ctx, projectID, owner.ID, collaborator.ID))
		_, err := s.memberUC.List(ctx, projectID, collaborator.ID)
		assert.ErrorIs(t, err, domerrors.ErrNotProjectMember)
	})
}
