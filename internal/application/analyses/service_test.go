package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinay9977/CodeCritic/internal/domain/ai"
	domain "github.com/vinay9977/CodeCritic/internal/domain/analyses"
	"github.com/vinay9977/CodeCritic/internal/domain/repos"
	"github.com/vinay9977/CodeCritic/internal/domain/users"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeAnalysisRepo struct {
	rows      map[domain.AnalysisID]*domain.Analysis
	issues    []*domain.CodeIssue
	issuesErr error
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{rows: make(map[domain.AnalysisID]*domain.Analysis)}
}

func (f *fakeAnalysisRepo) Save(_ context.Context, a *domain.Analysis) error {
	cp := *a
	f.rows[a.ID] = &cp
	return nil
}

func (f *fakeAnalysisRepo) Get(_ context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	a, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAnalysisRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]*domain.Analysis, error) {
	var out []*domain.Analysis
	for _, a := range f.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAnalysisRepo) ListByRepository(_ context.Context, repositoryID string, _, _ int) ([]*domain.Analysis, error) {
	var out []*domain.Analysis
	for _, a := range f.rows {
		if a.RepositoryID == repositoryID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAnalysisRepo) LatestCompleted(_ context.Context, repositoryID string) (*domain.Analysis, error) {
	for _, a := range f.rows {
		if a.RepositoryID == repositoryID && a.Status == domain.StatusCompleted {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAnalysisRepo) Delete(_ context.Context, id domain.AnalysisID) error {
	if _, ok := f.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rows, id)
	kept := f.issues[:0]
	for _, is := range f.issues {
		if is.AnalysisID != id {
			kept = append(kept, is)
		}
	}
	f.issues = kept
	return nil
}

func (f *fakeAnalysisRepo) SaveIssues(_ context.Context, issues []*domain.CodeIssue) error {
	if f.issuesErr != nil {
		return f.issuesErr
	}
	f.issues = append(f.issues, issues...)
	return nil
}

func (f *fakeAnalysisRepo) Issues(_ context.Context, id domain.AnalysisID, severity domain.Severity) ([]*domain.CodeIssue, error) {
	var out []*domain.CodeIssue
	for _, is := range f.issues {
		if is.AnalysisID == id && (severity == "" || is.Severity == severity) {
			out = append(out, is)
		}
	}
	return out, nil
}

type fakeRepoStore struct {
	rows map[repos.RepoID]*repos.Repository
}

func (f *fakeRepoStore) Get(_ context.Context, id repos.RepoID) (*repos.Repository, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, repos.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepoStore) GetByGithubID(context.Context, int64) (*repos.Repository, error) {
	return nil, repos.ErrNotFound
}

func (f *fakeRepoStore) ListByUser(context.Context, string, int, int) ([]*repos.Repository, error) {
	return nil, nil
}

func (f *fakeRepoStore) Upsert(_ context.Context, r *repos.Repository) error {
	f.rows[r.ID] = r
	return nil
}

func (f *fakeRepoStore) CountByUser(context.Context, string) (int64, error) {
	return int64(len(f.rows)), nil
}

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

func (f *fakeUserRepo) GetByGithubID(context.Context, int64) (*users.User, error) {
	return nil, users.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, u *users.User) error {
	f.rows[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *users.User) error {
	f.rows[u.ID] = u
	return nil
}

type fakeFetcher struct {
	sample *domain.CodeSample
	err    error
	calls  int
}

func (f *fakeFetcher) FetchCode(context.Context, string, string, string, string) (*domain.CodeSample, error) {
	f.calls++
	return f.sample, f.err
}

type fakeAnalyzer struct {
	report *ai.Report
	err    error
	calls  int
}

func (f *fakeAnalyzer) AnalyzeCode(context.Context, []domain.SourceFile, string) (*ai.Report, error) {
	f.calls++
	return f.report, f.err
}

func (f *fakeAnalyzer) QuickScore(context.Context, string, string) int { return 50 }

type fakeArchive struct {
	key string
	url string
	err error
}

func (f *fakeArchive) Archive(_ context.Context, key string, _ []byte) (string, error) {
	f.key = key
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

const (
	testUserID = "11111111-1111-1111-1111-111111111111"
	testRepoID = "22222222-2222-2222-2222-222222222222"
)

func newTestService(t *testing.T) (*Service, *fakeAnalysisRepo, *fakeFetcher, *fakeAnalyzer, *fakeArchive) {
	t.Helper()

	repo := newFakeAnalysisRepo()
	line := 7
	analyzer := &fakeAnalyzer{report: &ai.Report{
		OverallScore:  68,
		Summary:       "Two findings.",
		TotalLines:    120,
		TokensUsed:    900,
		EstimatedCost: 0.0011,
		Raw:           json.RawMessage(`{"overall_score":68}`),
		Issues: []ai.ReportIssue{
			{Severity: "critical", Category: "security", File: "main.py", Line: &line,
				Title: "SQL injection", Description: "d", Suggestion: "s"},
			{Severity: "wat", Category: "", File: "", Title: ""},
		},
	}}
	fetcher := &fakeFetcher{sample: &domain.CodeSample{
		Files:      []domain.SourceFile{{Path: "main.py", Content: "x", Lines: 80}},
		Language:   "python",
		TotalFiles: 1,
		TotalLines: 80,
	}}
	archive := &fakeArchive{url: "http://minio/bucket/key.json"}

	svc := &Service{
		Repo: repo,
		Repos: &fakeRepoStore{rows: map[repos.RepoID]*repos.Repository{
			repos.RepoID(testRepoID): {
				ID: repos.RepoID(testRepoID), UserID: testUserID,
				FullName: "alice/demo", Language: "python",
			},
		}},
		Users: &fakeUserRepo{rows: map[users.UserID]*users.User{
			users.UserID(testUserID): {ID: users.UserID(testUserID), AccessToken: "tok"},
		}},
		Fetcher:  fetcher,
		Analyzer: analyzer,
		Archive:  archive,
		Clock:    fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	return svc, repo, fetcher, analyzer, archive
}

func TestStartAnalysis_CreatesProcessingRow(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)

	a, err := svc.StartAnalysis(context.Background(), testUserID, testRepoID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusProcessing, a.Status)
	assert.Equal(t, testRepoID, a.RepositoryID)
	assert.NotEmpty(t, a.ID)
	_, ok := repo.rows[a.ID]
	assert.True(t, ok)
}

func TestStartAnalysis_ForeignRepositoryDenied(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.StartAnalysis(context.Background(), "someone-else", testRepoID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestRun_CompletesAndPersistsIssues(t *testing.T) {
	svc, repo, _, _, archive := newTestService(t)
	ctx := context.Background()

	a, err := svc.StartAnalysis(ctx, testUserID, testRepoID)
	require.NoError(t, err)
	require.NoError(t, svc.Run(ctx, a.ID))

	got := repo.rows[a.ID]
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.OverallScore)
	assert.Equal(t, 68.0, *got.OverallScore)
	assert.Equal(t, "Two findings.", got.Summary)
	assert.Equal(t, 1, got.FilesAnalyzed)
	assert.Equal(t, 80, got.LinesAnalyzed)
	assert.Equal(t, 900, got.TokensUsed)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, "http://minio/bucket/key.json", got.PayloadURL)
	assert.Contains(t, archive.key, string(a.ID))

	// tally matches the stored rows
	assert.Equal(t, 1, got.Counts.Critical)
	assert.Equal(t, 1, got.Counts.Low) // unknown severity normalizes to low
	assert.Equal(t, 2, got.Counts.Total)

	issues, err := repo.Issues(ctx, a.ID, "")
	require.NoError(t, err)
	require.Len(t, issues, 2)

	// sparse model output gets defaults
	var sparse *domain.CodeIssue
	for _, is := range issues {
		if is.Severity == domain.SeverityLow {
			sparse = is
		}
	}
	require.NotNil(t, sparse)
	assert.Equal(t, "Code issue", sparse.Title)
	assert.Equal(t, "quality", sparse.Category)
	assert.Equal(t, "unknown", sparse.FilePath)
	assert.Nil(t, sparse.LineNumber)
}

func TestRun_NoFilesShortCircuits(t *testing.T) {
	svc, repo, fetcher, analyzer, _ := newTestService(t)
	fetcher.sample = &domain.CodeSample{Language: "python"}
	ctx := context.Background()

	a, err := svc.StartAnalysis(ctx, testUserID, testRepoID)
	require.NoError(t, err)
	require.NoError(t, svc.Run(ctx, a.ID))

	got := repo.rows[a.ID]
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.OverallScore)
	assert.Equal(t, 0.0, *got.OverallScore)
	assert.Contains(t, got.Summary, "No analyzable code files")
	assert.Equal(t, 0, analyzer.calls, "model must not be called for an empty sample")
}

func TestRun_FetchFailureMarksFailed(t *testing.T) {
	svc, repo, fetcher, _, _ := newTestService(t)
	fetcher.sample = nil
	fetcher.err = errors.New("boom: contents api")
	ctx := context.Background()

	a, err := svc.StartAnalysis(ctx, testUserID, testRepoID)
	require.NoError(t, err)

	err = svc.Run(ctx, a.ID)
	require.Error(t, err)

	got := repo.rows[a.ID]
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, "boom: contents api", got.ErrorMessage)
	require.NotNil(t, got.CompletedAt)
}

func TestRunUntilDone_ReportsOutcome(t *testing.T) {
	svc, _, fetcher, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.StartAnalysis(ctx, testUserID, testRepoID)
	require.NoError(t, err)
	assert.NoError(t, svc.RunUntilDone(a.ID))

	fetcher.sample = nil
	fetcher.err = errors.New("boom")
	b, err := svc.StartAnalysis(ctx, testUserID, testRepoID)
	require.NoError(t, err)
	assert.Error(t, svc.RunUntilDone(b.ID))
}

func TestRun_IssuePersistFailureMarksFailed(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)
	repo.issuesErr = errors.New("code_issues insert failed")
	ctx := context.Background()

	a, err := svc.StartAnalysis(ctx, testUserID, testRepoID)
	require.NoError(t, err)

	err = svc.Run(ctx, a.ID)
	require.Error(t, err)

	// the row must never claim completion for issues that were not stored
	got := repo.rows[a.ID]
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "persist issues")
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, 0, got.Counts.Total)
	assert.Empty(t, repo.issues)
}

func TestRun_AnalyzerFailureMarksFailed(t *testing.T) {
	svc, repo, _, analyzer, _ := newTestService(t)
	analyzer.report = nil
	analyzer.err = ai.ErrQuotaExceeded
	ctx := context.Background()

	a, err := svc.StartAnalysis(ctx, testUserID, testRepoID)
	require.NoError(t, err)

	err = svc.Run(ctx, a.ID)
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
	assert.Equal(t, domain.StatusFailed, repo.rows[a.ID].Status)
}

func TestRun_ArchiveFailureDoesNotFailRun(t *testing.T) {
	svc, repo, _, _, archive := newTestService(t)
	archive.err = errors.New("bucket offline")
	ctx := context.Background()

	a, err := svc.StartAnalysis(ctx, testUserID, testRepoID)
	require.NoError(t, err)
	require.NoError(t, svc.Run(ctx, a.ID))

	got := repo.rows[a.ID]
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Empty(t, got.PayloadURL)
}

func TestGet_OwnershipEnforced(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.StartAnalysis(ctx, testUserID, testRepoID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, "intruder", string(a.ID))
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	got, err := svc.Get(ctx, testUserID, string(a.ID))
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestDelete_RemovesAnalysisAndIssues(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.StartAnalysis(ctx, testUserID, testRepoID)
	require.NoError(t, err)
	require.NoError(t, svc.Run(ctx, a.ID))
	require.NotEmpty(t, repo.issues)

	assert.ErrorIs(t, svc.Delete(ctx, "intruder", string(a.ID)), domain.ErrAccessDenied)

	require.NoError(t, svc.Delete(ctx, testUserID, string(a.ID)))
	_, err = repo.Get(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, repo.issues)
}

func TestIssues_SeverityFilter(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.StartAnalysis(ctx, testUserID, testRepoID)
	require.NoError(t, err)
	require.NoError(t, svc.Run(ctx, a.ID))

	critical, err := svc.Issues(ctx, testUserID, string(a.ID), domain.SeverityCritical)
	require.NoError(t, err)
	require.Len(t, critical, 1)
	assert.Equal(t, "SQL injection", critical[0].Title)
}
