package users

import (
	"context"
	"errors"
)

// ErrNotFound indicates the user row does not exist.
var ErrNotFound = errors.New("user not found")

// Repository port (interface untuk persistence)
type Repository interface {
	Get(ctx context.Context, id UserID) (*User, error)
	GetByGithubID(ctx context.Context, githubID int64) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
}

// OAuthProvider port: the two-call OAuth handshake plus the profile lookup.
type OAuthProvider interface {
	AuthorizationURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}
