package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinay9977/CodeCritic/internal/domain/users"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeUserRepo struct {
	rows map[users.UserID]*users.User
}

func (f *fakeUserRepo) Get(_ context.Context, id users.UserID) (*users.User, error) {
	u, ok := f.rows[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByGithubID(_ context.Context, githubID int64) (*users.User, error) {
	for _, u := range f.rows {
		if u.GithubID == githubID {
			return u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, u *users.User) error {
	f.rows[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *users.User) error {
	if _, ok := f.rows[u.ID]; !ok {
		return users.ErrNotFound
	}
	f.rows[u.ID] = u
	return nil
}

type fakeOAuth struct {
	exchangeErr error
	profile     *users.Profile
}

func (f *fakeOAuth) AuthorizationURL(state string) string {
	return "https://github.com/login/oauth/authorize?state=" + state
}

func (f *fakeOAuth) Exchange(context.Context, string) (string, error) {
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	return "gho_token", nil
}

func (f *fakeOAuth) FetchProfile(context.Context, string) (*users.Profile, error) {
	return f.profile, nil
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(userID string) (string, time.Time, error) {
	return "jwt-for-" + userID, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), nil
}

func newTestService() (*Service, *fakeUserRepo) {
	repo := &fakeUserRepo{rows: make(map[users.UserID]*users.User)}
	svc := &Service{
		Users: repo,
		OAuth: &fakeOAuth{profile: &users.Profile{
			GithubID:  42,
			Username:  "alice",
			Name:      "Alice",
			Email:     "alice@example.com",
			AvatarURL: "https://avatars.example/42",
			GithubURL: "https://github.com/alice",
		}},
		Tokens: fakeIssuer{},
		Clock:  fixedClock{t: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	return svc, repo
}

func TestHandleCallback_CreatesNewUser(t *testing.T) {
	svc, repo := newTestService()

	res, err := svc.HandleCallback(context.Background(), "code")
	require.NoError(t, err)

	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, "jwt-for-"+string(res.User.ID), res.Token)
	assert.Equal(t, "alice", res.User.Username)
	assert.True(t, res.User.IsActive)

	stored, err := repo.GetByGithubID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "gho_token", stored.AccessToken)
}

func TestHandleCallback_RefreshesExistingUser(t *testing.T) {
	svc, repo := newTestService()

	existing := &users.User{
		ID:          users.UserID("existing-id"),
		GithubID:    42,
		Username:    "old-name",
		AccessToken: "stale",
		IsActive:    false,
	}
	repo.rows[existing.ID] = existing

	res, err := svc.HandleCallback(context.Background(), "code")
	require.NoError(t, err)

	assert.Equal(t, users.UserID("existing-id"), res.User.ID, "row id is stable across logins")
	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, "gho_token", res.User.AccessToken)
	assert.True(t, res.User.IsActive)
	assert.Len(t, repo.rows, 1)
}

func TestHandleCallback_ExchangeFailure(t *testing.T) {
	svc, _ := newTestService()
	svc.OAuth = &fakeOAuth{exchangeErr: errors.New("bad code")}

	_, err := svc.HandleCallback(context.Background(), "code")
	assert.Error(t, err)
}

func TestMe(t *testing.T) {
	svc, repo := newTestService()
	repo.rows["u1"] = &users.User{ID: "u1", Username: "alice"}

	u, err := svc.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = svc.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, users.ErrNotFound)
}
