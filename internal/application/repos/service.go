package repos

import (
	"context"

	"github.com/google/uuid"

	"github.com/vinay9977/CodeCritic/internal/application"
	domain "github.com/vinay9977/CodeCritic/internal/domain/repos"
	"github.com/vinay9977/CodeCritic/internal/domain/users"
)

// Service implements repository sync and listing use-cases.
type Service struct {
	Store    domain.Store
	Provider domain.Provider
	Users    users.Repository
	Clock    application.Clock
}

type SyncResult struct {
	Synced int   `json:"synced"`
	Total  int64 `json:"total"`
}

// Sync pulls the user's repositories from GitHub and upserts them. Rows keep
// their original id across syncs; only metadata and last_synced_at move.
func (s *Service) Sync(ctx context.Context, userID string) (*SyncResult, error) {
	u, err := s.Users.Get(ctx, users.UserID(userID))
	if err != nil {
		return nil, err
	}

	remote, err := s.Provider.ListForUser(ctx, u.AccessToken)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now().UTC()
	for _, rep := range remote {
		rep.ID = domain.RepoID(uuid.New().String())
		rep.UserID = userID
		rep.LastSyncedAt = now
		if err := s.Store.Upsert(ctx, rep); err != nil {
			return nil, err
		}
	}

	total, err := s.Store.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SyncResult{Synced: len(remote), Total: total}, nil
}

// List returns the user's synced repositories, most recently synced first.
func (s *Service) List(ctx context.Context, userID string, skip, limit int) ([]*domain.Repository, error) {
	return s.Store.ListByUser(ctx, userID, skip, limit)
}

// Get returns one repository, enforcing ownership.
func (s *Service) Get(ctx context.Context, userID, repositoryID string) (*domain.Repository, error) {
	rep, err := s.Store.Get(ctx, domain.RepoID(repositoryID))
	if err != nil {
		return nil, err
	}
	if rep.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return rep, nil
}
