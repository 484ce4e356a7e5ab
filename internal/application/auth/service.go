package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vinay9977/CodeCritic/internal/application"
	"github.com/vinay9977/CodeCritic/internal/domain/users"
)

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string) (token string, expiresAt time.Time, err error)
}

// Service implements the GitHub OAuth login flow.
type Service struct {
	Users  users.Repository
	OAuth  users.OAuthProvider
	Tokens TokenIssuer
	Clock  application.Clock
}

type LoginResult struct {
	Token     string      `json:"access_token"`
	TokenType string      `json:"token_type"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *users.User `json:"user"`
}

// LoginURL builds the GitHub authorization redirect for the given state.
func (s *Service) LoginURL(state string) string {
	return s.OAuth.AuthorizationURL(state)
}

// HandleCallback exchanges the OAuth code, upserts the user row and issues a
// session token. An existing user gets profile and access token refreshed.
func (s *Service) HandleCallback(ctx context.Context, code string) (*LoginResult, error) {
	accessToken, err := s.OAuth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	profile, err := s.OAuth.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	u, err := s.Users.GetByGithubID(ctx, profile.GithubID)
	switch {
	case err == nil:
		u.Username = profile.Username
		u.Name = profile.Name
		u.Email = profile.Email
		u.AvatarURL = profile.AvatarURL
		u.GithubURL = profile.GithubURL
		u.AccessToken = accessToken
		u.IsActive = true
		if err := s.Users.Update(ctx, u); err != nil {
			return nil, err
		}
	case errors.Is(err, users.ErrNotFound):
		u = &users.User{
			ID:          users.UserID(uuid.New().String()),
			GithubID:    profile.GithubID,
			Username:    profile.Username,
			Name:        profile.Name,
			Email:       profile.Email,
			AvatarURL:   profile.AvatarURL,
			GithubURL:   profile.GithubURL,
			AccessToken: accessToken,
			IsActive:    true,
			CreatedAt:   s.Clock.Now().UTC(),
		}
		if err := s.Users.Create(ctx, u); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	token, expires, err := s.Tokens.Issue(string(u.ID))
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     token,
		TokenType: "bearer",
		ExpiresAt: expires,
		User:      u,
	}, nil
}

// Me returns the profile of the authenticated user.
func (s *Service) Me(ctx context.Context, userID string) (*users.User, error) {
	return s.Users.Get(ctx, users.UserID(userID))
}
