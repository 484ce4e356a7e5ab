package github

import (
	"net/url"

	gh "github.com/google/go-github/v57/github"
)

// newClient builds an authenticated GitHub API client. baseURL overrides the
// endpoint (used by tests) and must end with a slash.
func newClient(token, baseURL string) *gh.Client {
	c := gh.NewClient(nil)
	if token != "" {
		c = c.WithAuthToken(token)
	}
	if baseURL != "" {
		if u, err := url.Parse(baseURL); err == nil {
			c.BaseURL = u
		}
	}
	return c
}
