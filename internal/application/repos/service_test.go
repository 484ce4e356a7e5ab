package repos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/vinay9977/CodeCritic/internal/domain/repos"
	"github.com/vinay9977/CodeCritic/internal/domain/users"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeStore struct {
	byGithubID map[int64]*domain.Repository
}

func (f *fakeStore) Get(_ context.Context, id domain.RepoID) (*domain.Repository, error) {
	for _, r := range f.byGithubID {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) GetByGithubID(_ context.Context, githubID int64) (*domain.Repository, error) {
	r, ok := f.byGithubID[githubID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID string, _, _ int) ([]*domain.Repository, error) {
	var out []*domain.Repository
	for _, r := range f.byGithubID {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Upsert mimics the github_id unique key: an existing row keeps its id.
func (f *fakeStore) Upsert(_ context.Context, r *domain.Repository) error {
	if existing, ok := f.byGithubID[r.GithubID]; ok {
		r.ID = existing.ID
	}
	f.byGithubID[r.GithubID] = r
	return nil
}

func (f *fakeStore) CountByUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, r := range f.byGithubID {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeProvider struct {
	remote []*domain.Repository
	err    error
}

func (f *fakeProvider) ListForUser(context.Context, string) ([]*domain.Repository, error) {
	return f.remote, f.err
}

type fakeUserRepo struct{ u *users.User }

func (f *fakeUserRepo) Get(_ context.Context, id users.UserID) (*users.User, error) {
	if f.u == nil || f.u.ID != id {
		return nil, users.ErrNotFound
	}
	return f.u, nil
}

func (f *fakeUserRepo) GetByGithubID(context.Context, int64) (*users.User, error) {
	return nil, users.ErrNotFound
}
func (f *fakeUserRepo) Create(context.Context, *users.User) error { return nil }
func (f *fakeUserRepo) Update(context.Context, *users.User) error { return nil }

func newTestService(remote []*domain.Repository) (*Service, *fakeStore) {
	store := &fakeStore{byGithubID: make(map[int64]*domain.Repository)}
	svc := &Service{
		Store:    store,
		Provider: &fakeProvider{remote: remote},
		Users:    &fakeUserRepo{u: &users.User{ID: "u1", AccessToken: "tok"}},
		Clock:    fixedClock{t: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	return svc, store
}

func TestSync_UpsertsRemoteRepositories(t *testing.T) {
	remote := []*domain.Repository{
		{GithubID: 100, Name: "demo", FullName: "alice/demo", Language: "Python"},
		{GithubID: 101, Name: "tool", FullName: "alice/tool", Language: "Go"},
	}
	svc, store := newTestService(remote)

	res, err := svc.Sync(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Synced)
	assert.Equal(t, int64(2), res.Total)

	stored, err := store.GetByGithubID(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UserID)
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.LastSyncedAt.IsZero())
}

func TestSync_KeepsRowIDAcrossSyncs(t *testing.T) {
	remote := []*domain.Repository{{GithubID: 100, Name: "demo", FullName: "alice/demo"}}
	svc, store := newTestService(remote)

	_, err := svc.Sync(context.Background(), "u1")
	require.NoError(t, err)
	first, _ := store.GetByGithubID(context.Background(), 100)
	firstID := first.ID

	// second sync with refreshed metadata
	remote[0] = &domain.Repository{GithubID: 100, Name: "demo", FullName: "alice/demo", StarsCount: 7}
	svc.Provider = &fakeProvider{remote: remote}

	_, err = svc.Sync(context.Background(), "u1")
	require.NoError(t, err)
	second, _ := store.GetByGithubID(context.Background(), 100)
	assert.Equal(t, firstID, second.ID)
	assert.Equal(t, 7, second.StarsCount)
}

func TestSync_UnknownUser(t *testing.T) {
	svc, _ := newTestService(nil)
	_, err := svc.Sync(context.Background(), "nobody")
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestGet_OwnershipHidesForeignRows(t *testing.T) {
	svc, store := newTestService(nil)
	store.byGithubID[100] = &domain.Repository{ID: "r1", UserID: "someone-else", GithubID: 100}

	_, err := svc.Get(context.Background(), "u1", "r1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
