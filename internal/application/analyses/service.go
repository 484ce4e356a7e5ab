package analyses

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vinay9977/CodeCritic/internal/application"
	"github.com/vinay9977/CodeCritic/internal/domain/ai"
	domain "github.com/vinay9977/CodeCritic/internal/domain/analyses"
	"github.com/vinay9977/CodeCritic/internal/domain/repos"
	"github.com/vinay9977/CodeCritic/internal/domain/users"
)

// Service implements the analysis pipeline use-cases.
// Service is designed to be used concurrently and is thread-safe.
type Service struct {
	Repo     domain.Repository
	Repos    repos.Store
	Users    users.Repository
	Fetcher  domain.CodeFetcher
	Analyzer ai.Analyzer
	Archive  domain.PayloadArchive // optional, may be nil
	Clock    application.Clock
}

// StartAnalysis creates the processing row for a run after checking that the
// repository belongs to the caller. The pipeline itself runs via Run.
func (s *Service) StartAnalysis(ctx context.Context, userID, repositoryID string) (*domain.Analysis, error) {
	rep, err := s.Repos.Get(ctx, repos.RepoID(repositoryID))
	if err != nil {
		return nil, err
	}
	if rep.UserID != userID {
		return nil, domain.ErrAccessDenied
	}

	a := &domain.Analysis{
		ID:           domain.AnalysisID(uuid.New().String()),
		RepositoryID: repositoryID,
		UserID:       userID,
		Status:       domain.StatusProcessing,
		CreatedAt:    s.Clock.Now().UTC(),
	}
	if err := s.Repo.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// RunUntilDone executes the pipeline with context.Background(); meant to be
// called from a goroutine so a client disconnect does not cancel the run.
// The returned error mirrors the run outcome for the caller's bookkeeping.
func (s *Service) RunUntilDone(id domain.AnalysisID) error {
	if err := s.Run(context.Background(), id); err != nil {
		log.Printf("analysis run failed id=%s err=%v", id, err)
		return err
	}
	return nil
}

// Run drives one analysis from processing to completed or failed:
// fetch the code sample, call the analyzer, persist the report and its issues.
func (s *Service) Run(ctx context.Context, id domain.AnalysisID) error {
	a, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	rep, err := s.Repos.Get(ctx, repos.RepoID(a.RepositoryID))
	if err != nil {
		return s.fail(ctx, a, err)
	}
	u, err := s.Users.Get(ctx, users.UserID(a.UserID))
	if err != nil {
		return s.fail(ctx, a, err)
	}

	owner, name, err := splitFullName(rep.FullName)
	if err != nil {
		return s.fail(ctx, a, err)
	}

	sample, err := s.Fetcher.FetchCode(ctx, u.AccessToken, owner, name, rep.Language)
	if err != nil {
		return s.fail(ctx, a, err)
	}

	now := s.Clock.Now().UTC()

	// Nothing worth sending to the model: complete immediately with a zero
	// score instead of burning an API call.
	if len(sample.Files) == 0 {
		zero := 0.0
		a.Status = domain.StatusCompleted
		a.OverallScore = &zero
		a.Summary = "No analyzable code files found in this repository."
		a.CompletedAt = &now
		return s.Repo.Save(ctx, a)
	}

	report, err := s.Analyzer.AnalyzeCode(ctx, sample.Files, sample.Language)
	if err != nil {
		return s.fail(ctx, a, err)
	}

	issues := buildIssues(a.ID, report, now)
	var counts domain.SeverityCounts
	for _, is := range issues {
		counts.Add(is.Severity)
	}

	// Issues go in first so a completed row never reports counts that have
	// no matching code_issues rows behind them.
	if err := s.Repo.SaveIssues(ctx, issues); err != nil {
		return s.fail(ctx, a, fmt.Errorf("persist issues: %w", err))
	}

	a.Status = domain.StatusCompleted
	score := report.OverallScore
	a.OverallScore = &score
	a.Counts = counts
	a.Summary = report.Summary
	a.FilesAnalyzed = sample.TotalFiles
	a.LinesAnalyzed = sample.TotalLines
	a.TokensUsed = report.TokensUsed
	a.EstimatedCost = report.EstimatedCost
	a.CompletedAt = &now
	if len(report.Raw) > 0 {
		a.PayloadJSON = string(report.Raw)
	}

	// Payload archive is best-effort: a storage hiccup must not fail the run.
	if s.Archive != nil && len(report.Raw) > 0 {
		key := fmt.Sprintf("analyses/%s/%s.json", a.UserID, a.ID)
		if url, aerr := s.Archive.Archive(ctx, key, report.Raw); aerr != nil {
			log.Printf("payload archive failed id=%s err=%v", a.ID, aerr)
		} else {
			a.PayloadURL = url
		}
	}

	return s.Repo.Save(ctx, a)
}

// fail marks the analysis failed with the cause, then re-raises it.
func (s *Service) fail(ctx context.Context, a *domain.Analysis, cause error) error {
	now := s.Clock.Now().UTC()
	a.Status = domain.StatusFailed
	a.ErrorMessage = cause.Error()
	a.CompletedAt = &now
	if err := s.Repo.Save(ctx, a); err != nil {
		log.Printf("mark failed id=%s err=%v", a.ID, err)
	}
	return cause
}

// Get returns one analysis, enforcing ownership.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (*domain.Analysis, error) {
	a, err := s.Repo.Get(ctx, domain.AnalysisID(analysisID))
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, domain.ErrAccessDenied
	}
	return a, nil
}

// ListForUser returns the caller's analyses, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string, skip, limit int) ([]*domain.Analysis, error) {
	return s.Repo.ListByUser(ctx, userID, skip, limit)
}

// ListForRepository returns a repository's analyses after an ownership check.
func (s *Service) ListForRepository(ctx context.Context, userID, repositoryID string, skip, limit int) ([]*domain.Analysis, error) {
	if _, err := s.ownedRepo(ctx, userID, repositoryID); err != nil {
		return nil, err
	}
	return s.Repo.ListByRepository(ctx, repositoryID, skip, limit)
}

// LatestForRepository returns the newest completed analysis for a repository.
func (s *Service) LatestForRepository(ctx context.Context, userID, repositoryID string) (*domain.Analysis, error) {
	if _, err := s.ownedRepo(ctx, userID, repositoryID); err != nil {
		return nil, err
	}
	return s.Repo.LatestCompleted(ctx, repositoryID)
}

// Issues returns an analysis' issues, optionally filtered by severity.
func (s *Service) Issues(ctx context.Context, userID, analysisID string, severity domain.Severity) ([]*domain.CodeIssue, error) {
	if _, err := s.Get(ctx, userID, analysisID); err != nil {
		return nil, err
	}
	return s.Repo.Issues(ctx, domain.AnalysisID(analysisID), severity)
}

// Delete removes an analysis and its issues, enforcing ownership.
func (s *Service) Delete(ctx context.Context, userID, analysisID string) error {
	if _, err := s.Get(ctx, userID, analysisID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, domain.AnalysisID(analysisID))
}

func (s *Service) ownedRepo(ctx context.Context, userID, repositoryID string) (*repos.Repository, error) {
	rep, err := s.Repos.Get(ctx, repos.RepoID(repositoryID))
	if err != nil {
		return nil, err
	}
	if rep.UserID != userID {
		return nil, domain.ErrAccessDenied
	}
	return rep, nil
}

// buildIssues converts report issues to rows, filling the fields the model
// tends to leave out.
func buildIssues(analysisID domain.AnalysisID, report *ai.Report, now time.Time) []*domain.CodeIssue {
	out := make([]*domain.CodeIssue, 0, len(report.Issues))
	for _, ri := range report.Issues {
		title := strings.TrimSpace(ri.Title)
		if title == "" {
			title = "Code issue"
		}
		category := strings.TrimSpace(ri.Category)
		if category == "" {
			category = "quality"
		}
		file := strings.TrimSpace(ri.File)
		if file == "" {
			file = "unknown"
		}
		out = append(out, &domain.CodeIssue{
			ID:          domain.IssueID(uuid.New().String()),
			AnalysisID:  analysisID,
			Severity:    domain.NormalizeSeverity(ri.Severity),
			Category:    category,
			FilePath:    file,
			LineNumber:  ri.Line,
			Title:       title,
			Description: ri.Description,
			Suggestion:  ri.Suggestion,
			CreatedAt:   now,
		})
	}
	return out
}

// splitFullName splits "owner/name"; anything else is unusable.
func splitFullName(fullName string) (string, string, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("malformed repository full name %q", fullName)
	}
	return owner, name, nil
}
