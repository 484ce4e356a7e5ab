package analyses

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, id AnalysisID) (*Analysis, error)
	ListByUser(ctx context.Context, userID string, skip, limit int) ([]*Analysis, error)
	ListByRepository(ctx context.Context, repositoryID string, skip, limit int) ([]*Analysis, error)
	LatestCompleted(ctx context.Context, repositoryID string) (*Analysis, error)
	Delete(ctx context.Context, id AnalysisID) error

	SaveIssues(ctx context.Context, issues []*CodeIssue) error
	Issues(ctx context.Context, id AnalysisID, severity Severity) ([]*CodeIssue, error)
}

// CodeFetcher port: pulls a cost-bounded sample of source files from the hosting API.
// languageHint may be empty; the fetcher then detects the dominant language itself.
type CodeFetcher interface {
	FetchCode(ctx context.Context, accessToken, owner, repo, languageHint string) (*CodeSample, error)
}

// PayloadArchive port: stores the raw model output for audit/debug.
type PayloadArchive interface {
	Archive(ctx context.Context, key string, payload []byte) (string, error)
}
