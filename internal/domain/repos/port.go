package repos

import (
	"context"
	"errors"
)

// ErrNotFound indicates the repository row does not exist.
var ErrNotFound = errors.New("repository not found")

// Store port for persistence. Named Store because the entity itself is a
// repository.
type Store interface {
	Get(ctx context.Context, id RepoID) (*Repository, error)
	GetByGithubID(ctx context.Context, githubID int64) (*Repository, error)
	ListByUser(ctx context.Context, userID string, skip, limit int) ([]*Repository, error)
	Upsert(ctx context.Context, r *Repository) error
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// Provider port: lists the user's repositories from the hosting API.
type Provider interface {
	ListForUser(ctx context.Context, accessToken string) ([]*Repository, error)
}
