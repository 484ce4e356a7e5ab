package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/vinay9977/CodeCritic/internal/domain/analyses"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const analysisColumns = `id, repository_id, user_id, status,
       overall_score, critical_issues, high_issues, medium_issues, low_issues, total_issues,
       summary, files_analyzed, lines_analyzed, tokens_used, estimated_cost,
       error_message, payload_json, payload_url, created_at, completed_at`

// Save insert/update Analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO analyses
(id, repository_id, user_id, status,
 overall_score, critical_issues, high_issues, medium_issues, low_issues, total_issues,
 summary, files_analyzed, lines_analyzed, tokens_used, estimated_cost,
 error_message, payload_json, payload_url, created_at, completed_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 overall_score=VALUES(overall_score),
 critical_issues=VALUES(critical_issues), high_issues=VALUES(high_issues),
 medium_issues=VALUES(medium_issues), low_issues=VALUES(low_issues),
 total_issues=VALUES(total_issues),
 summary=VALUES(summary),
 files_analyzed=VALUES(files_analyzed), lines_analyzed=VALUES(lines_analyzed),
 tokens_used=VALUES(tokens_used), estimated_cost=VALUES(estimated_cost),
 error_message=VALUES(error_message),
 payload_json=VALUES(payload_json), payload_url=VALUES(payload_url),
 completed_at=VALUES(completed_at);
`
	status := string(a.Status)
	if strings.TrimSpace(status) == "" {
		status = string(domain.StatusProcessing)
	}
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	payload := a.PayloadJSON
	if payload == "" {
		payload = "{}"
	}

	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.RepositoryID, a.UserID, status,
		a.OverallScore, a.Counts.Critical, a.Counts.High, a.Counts.Medium, a.Counts.Low, a.Counts.Total,
		a.Summary, a.FilesAnalyzed, a.LinesAnalyzed, a.TokensUsed, a.EstimatedCost,
		a.ErrorMessage, payload, a.PayloadURL, created, a.CompletedAt,
	)
	return err
}

// Get by ID
func (r *AnalysisRepository) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	q := `SELECT ` + analysisColumns + ` FROM analyses WHERE id=? LIMIT 1;`
	a, err := scanAnalysis(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return a, err
}

// ListByUser returns the user's analyses, most recent first.
func (r *AnalysisRepository) ListByUser(ctx context.Context, userID string, skip, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 50
	}
	if skip < 0 {
		skip = 0
	}
	q := `SELECT ` + analysisColumns + `
FROM analyses
WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?;`
	return r.list(ctx, q, userID, limit, skip)
}

// ListByRepository returns a repository's analyses, most recent first.
func (r *AnalysisRepository) ListByRepository(ctx context.Context, repositoryID string, skip, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}
	q := `SELECT ` + analysisColumns + `
FROM analyses
WHERE repository_id=? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?;`
	return r.list(ctx, q, repositoryID, limit, skip)
}

// LatestCompleted returns the most recent completed analysis for a repository.
func (r *AnalysisRepository) LatestCompleted(ctx context.Context, repositoryID string) (*domain.Analysis, error) {
	q := `SELECT ` + analysisColumns + `
FROM analyses
WHERE repository_id=? AND status='completed'
ORDER BY created_at DESC, id DESC LIMIT 1;`
	a, err := scanAnalysis(r.db.QueryRowContext(ctx, q, repositoryID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return a, err
}

// Delete removes an analysis and its issues in one transaction (no orphans).
func (r *AnalysisRepository) Delete(ctx context.Context, id domain.AnalysisID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM code_issues WHERE analysis_id=?;`, id); err != nil {
		return fmt.Errorf("delete issues: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM analyses WHERE id=?;`, id)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

// SaveIssues inserts issue rows for one analysis in a single transaction.
func (r *AnalysisRepository) SaveIssues(ctx context.Context, issues []*domain.CodeIssue) error {
	if len(issues) == 0 {
		return nil
	}
	const q = `
INSERT INTO code_issues
(id, analysis_id, severity, category, file_path, line_number, title, description, suggestion, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?);
`
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, is := range issues {
		created := is.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, q,
			is.ID, is.AnalysisID, is.Severity, is.Category, is.FilePath,
			is.LineNumber, is.Title, is.Description, is.Suggestion, created,
		); err != nil {
			return fmt.Errorf("insert issue: %w", err)
		}
	}
	return tx.Commit()
}

// Issues lists an analysis's issues, highest severity first then by line.
// severity filters to one bucket when non-empty.
func (r *AnalysisRepository) Issues(ctx context.Context, id domain.AnalysisID, severity domain.Severity) ([]*domain.CodeIssue, error) {
	q := `
SELECT id, analysis_id, severity, category, file_path, line_number, title, description, suggestion, created_at
FROM code_issues
WHERE analysis_id=?`
	args := []any{id}
	if severity != "" {
		q += ` AND severity=?`
		args = append(args, severity)
	}
	q += `
ORDER BY FIELD(severity,'critical','high','medium','low'), line_number IS NULL, line_number ASC, id ASC;`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.CodeIssue
	for rows.Next() {
		var is domain.CodeIssue
		var line sql.NullInt64
		if err := rows.Scan(
			&is.ID, &is.AnalysisID, &is.Severity, &is.Category, &is.FilePath,
			&line, &is.Title, &is.Description, &is.Suggestion, &is.CreatedAt,
		); err != nil {
			return nil, err
		}
		if line.Valid {
			n := int(line.Int64)
			is.LineNumber = &n
		}
		out = append(out, &is)
	}
	return out, rows.Err()
}

func (r *AnalysisRepository) list(ctx context.Context, q string, args ...any) ([]*domain.Analysis, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*domain.Analysis, error) {
	var a domain.Analysis
	var score sql.NullFloat64
	var completed sql.NullTime
	if err := row.Scan(
		&a.ID, &a.RepositoryID, &a.UserID, &a.Status,
		&score, &a.Counts.Critical, &a.Counts.High, &a.Counts.Medium, &a.Counts.Low, &a.Counts.Total,
		&a.Summary, &a.FilesAnalyzed, &a.LinesAnalyzed, &a.TokensUsed, &a.EstimatedCost,
		&a.ErrorMessage, &a.PayloadJSON, &a.PayloadURL, &a.CreatedAt, &completed,
	); err != nil {
		return nil, err
	}
	if score.Valid {
		v := score.Float64
		a.OverallScore = &v
	}
	if completed.Valid {
		t := completed.Time
		a.CompletedAt = &t
	}
	return &a, nil
}
