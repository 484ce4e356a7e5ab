package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"github.com/vinay9977/CodeCritic/internal/domain/users"
)

// OAuth implements the GitHub OAuth web-application flow.
type OAuth struct {
	cfg     *oauth2.Config
	baseURL string
}

func NewOAuth(clientID, clientSecret, redirectURI string) *OAuth {
	return &OAuth{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"user:email", "repo"},
			Endpoint:     oauthgithub.Endpoint,
		},
	}
}

func (o *OAuth) AuthorizationURL(state string) string {
	return o.cfg.AuthCodeURL(state)
}

// Exchange trades the authorization code for an access token.
func (o *OAuth) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code for token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("no access token received from GitHub")
	}
	return tok.AccessToken, nil
}

// FetchProfile looks up the authenticated user and their primary email. The
// email lookup is best effort; a missing email is not an error.
func (o *OAuth) FetchProfile(ctx context.Context, accessToken string) (*users.Profile, error) {
	client := newClient(accessToken, o.baseURL)

	u, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}

	email := ""
	if emails, _, err := client.Users.ListEmails(ctx, &gh.ListOptions{PerPage: 100}); err == nil {
		for _, e := range emails {
			if e.GetPrimary() {
				email = e.GetEmail()
				break
			}
		}
		if email == "" && len(emails) > 0 {
			email = emails[0].GetEmail()
		}
	}

	return &users.Profile{
		GithubID:  u.GetID(),
		Username:  u.GetLogin(),
		Name:      u.GetName(),
		Email:     email,
		AvatarURL: u.GetAvatarURL(),
		GithubURL: u.GetHTMLURL(),
	}, nil
}
