package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func userAPIServer(t *testing.T, emails []map[string]any) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			json.NewEncoder(w).Encode(map[string]any{
				"id":         int64(4242),
				"login":      "alice",
				"name":       "Alice",
				"avatar_url": "https://avatars/u/4242",
				"html_url":   "https://github.test/alice",
			})
		case "/user/emails":
			json.NewEncoder(w).Encode(emails)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestFetchProfile_PicksPrimaryEmail(t *testing.T) {
	srv := userAPIServer(t, []map[string]any{
		{"email": "alt@example.com", "primary": false},
		{"email": "alice@example.com", "primary": true},
	})
	defer srv.Close()

	o := &OAuth{baseURL: srv.URL + "/"}
	p, err := o.FetchProfile(context.Background(), "tok")
	require.NoError(t, err)

	assert.Equal(t, int64(4242), p.GithubID)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "alice@example.com", p.Email)
	assert.Equal(t, "https://github.test/alice", p.GithubURL)
}

func TestFetchProfile_FallsBackToFirstEmail(t *testing.T) {
	srv := userAPIServer(t, []map[string]any{
		{"email": "first@example.com", "primary": false},
		{"email": "second@example.com", "primary": false},
	})
	defer srv.Close()

	o := &OAuth{baseURL: srv.URL + "/"}
	p, err := o.FetchProfile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "first@example.com", p.Email)
}

func TestExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"access_token": "gho_abc", "token_type": "bearer"})
	}))
	defer srv.Close()

	o := NewOAuth("id", "secret", "http://localhost/callback")
	o.cfg.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token"}

	tok, err := o.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "gho_abc", tok)
}

func TestExchange_MissingTokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"token_type": "bearer"})
	}))
	defer srv.Close()

	o := NewOAuth("id", "secret", "http://localhost/callback")
	o.cfg.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token"}

	_, err := o.Exchange(context.Background(), "code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchange code for token")
}
