// Package memory provides in-memory implementations of the persistence
// ports, used by tests and available for local development without Postgres.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	domerrors "github.com/AliiiBenn/mini-auth/internal/domain/errors"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[domain.UserID]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[domain.UserID]*domain.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email && sameScope(u.ProjectID, user.ProjectID) {
			// Mirrors the Postgres unique constraint on (project_id, email).
			return domerrors.ErrEmailTaken
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, projectID *domain.ProjectID, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email && sameScope(u.ProjectID, projectID) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID domain.UserID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.PasswordHash = passwordHash
		now := time.Now()
		u.UpdatedAt = &now
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		all = append(all, &cp)
	}
	return page(all, limit, offset), nil
}

func sameScope(a, b *domain.ProjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.UUID == b.UUID
}

type ProjectRepository struct {
	mu       sync.RWMutex
	projects map[domain.ProjectID]*domain.Project
}

func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{projects: make(map[domain.ProjectID]*domain.Project)}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *project
	r.projects[project.ID] = &cp
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, projectID domain.ProjectID) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[projectID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID domain.UserID, limit, offset int) ([]*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var owned []*domain.Project
	for _, p := range r.projects {
		if p.IsOwnedBy(ownerID) {
			cp := *p
			owned = append(owned, &cp)
		}
	}
	return page(owned, limit, offset), nil
}

func (r *ProjectRepository) List(ctx context.Context, limit, offset int) ([]*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*domain.Project, 0, len(r.projects))
	for _, p := range r.projects {
		cp := *p
		all = append(all, &cp)
	}
	return page(all, limit, offset), nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *project
	r.projects[project.ID] = &cp
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, projectID domain.ProjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[projectID]; !ok {
		return false, nil
	}
	delete(r.projects, projectID)
	return true, nil
}

type APIKeyRepository struct {
	mu   sync.RWMutex
	keys map[domain.APIKeyID]*domain.ProjectAPIKey
}

func NewAPIKeyRepository() *APIKeyRepository {
	return &APIKeyRepository{keys: make(map[domain.APIKeyID]*domain.ProjectAPIKey)}
}

func (r *APIKeyRepository) Create(ctx context.Context, key *domain.ProjectAPIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *key
	r.keys[key.ID] = &cp
	return nil
}

func (r *APIKeyRepository) GetByKey(ctx context.Context, key string) (*domain.ProjectAPIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, k := range r.keys {
		if k.Key == key {
			cp := *k
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *APIKeyRepository) ListByProject(ctx context.Context, projectID domain.ProjectID, includeInactive bool) ([]*domain.ProjectAPIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.ProjectAPIKey
	for _, k := range r.keys {
		if k.ProjectID.UUID != projectID.UUID {
			continue
		}
		if !includeInactive && !k.IsActive {
			continue
		}
		cp := *k
		out = append(out, &cp)
	}
	return out, nil
}

func (r *APIKeyRepository) Deactivate(ctx context.Context, keyID domain.APIKeyID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[keyID]
	if !ok {
		return false, nil
	}
	k.IsActive = false
	return true, nil
}

func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.keys {
		if k.Key == key {
			now := time.Now()
			k.LastUsedAt = &now
		}
	}
	return nil
}

type MemberRepository struct {
	mu      sync.RWMutex
	members map[domain.ProjectID]map[domain.UserID]*domain.ProjectMember
}

func NewMemberRepository() *MemberRepository {
	return &MemberRepository{members: make(map[domain.ProjectID]map[domain.UserID]*domain.ProjectMember)}
}

func (r *MemberRepository) Add(ctx context.Context, member *domain.ProjectMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byUser, ok := r.members[member.ProjectID]
	if !ok {
		byUser = make(map[domain.UserID]*domain.ProjectMember)
		r.members[member.ProjectID] = byUser
	}
	if _, exists := byUser[member.UserID]; exists {
		return domerrors.ErrMemberExists
	}
	cp := *member
	byUser[member.UserID] = &cp
	return nil
}

func (r *MemberRepository) Get(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (*domain.ProjectMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.members[projectID][userID]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *MemberRepository) List(ctx context.Context, projectID domain.ProjectID) ([]*domain.ProjectMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.ProjectMember
	for _, m := range r.members[projectID] {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemberRepository) Remove(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[projectID][userID]; !ok {
		return false, nil
	}
	delete(r.members[projectID], userID)
	return true, nil
}

func (r *MemberRepository) UpdateRole(ctx context.Context, projectID domain.ProjectID, userID domain.UserID, role string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[projectID][userID]
	if !ok {
		return false, nil
	}
	m.Role = role
	return true, nil
}

type TokenLedger struct {
	mu     sync.RWMutex
	tokens map[string]*domain.RefreshToken
}

func NewTokenLedger() *TokenLedger {
	return &TokenLedger{tokens: make(map[string]*domain.RefreshToken)}
}

func (l *TokenLedger) Create(ctx context.Context, token *domain.RefreshToken) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *token
	l.tokens[token.Token] = &cp
	return nil
}

func (l *TokenLedger) GetValid(ctx context.Context, token string) (*domain.RefreshToken, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.tokens[token]
	if !ok || !t.Valid(time.Now()) {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (l *TokenLedger) Revoke(ctx context.Context, token string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.tokens[token]
	if !ok || t.IsRevoked {
		return false, nil
	}
	t.IsRevoked = true
	return true, nil
}

func (l *TokenLedger) RevokeAllForUser(ctx context.Context, userID domain.UserID, excludeToken string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for _, t := range l.tokens {
		if t.UserID.UUID != userID.UUID || t.IsRevoked || t.Token == excludeToken {
			continue
		}
		t.IsRevoked = true
		n++
	}
	return n, nil
}

func (l *TokenLedger) PurgeExpired(ctx context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	var n int64
	for k, t := range l.tokens {
		if t.IsRevoked || !now.Before(t.ExpiresAt) {
			delete(l.tokens, k)
			n++
		}
	}
	return n, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var (
	_ ports.UserRepository    = (*UserRepository)(nil)
	_ ports.ProjectRepository = (*ProjectRepository)(nil)
	_ ports.APIKeyRepository  = (*APIKeyRepository)(nil)
	_ ports.MemberRepository  = (*MemberRepository)(nil)
	_ ports.TokenLedger       = (*TokenLedger)(nil)
)
