package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/vinay9977/CodeCritic/internal/domain/repos"
)

type RepoRepository struct {
	db *sql.DB
}

func NewRepoRepository(db *sql.DB) *RepoRepository {
	return &RepoRepository{db: db}
}

const repoColumns = `id, user_id, github_id, name, full_name, description, url, html_url,
       default_branch, language, is_private, is_fork, stars_count, forks_count,
       open_issues_count, size, last_synced_at`

func (r *RepoRepository) Get(ctx context.Context, id domain.RepoID) (*domain.Repository, error) {
	q := `SELECT ` + repoColumns + ` FROM repositories WHERE id=? LIMIT 1;`
	return r.one(ctx, q, id)
}

func (r *RepoRepository) GetByGithubID(ctx context.Context, githubID int64) (*domain.Repository, error) {
	q := `SELECT ` + repoColumns + ` FROM repositories WHERE github_id=? LIMIT 1;`
	return r.one(ctx, q, githubID)
}

func (r *RepoRepository) ListByUser(ctx context.Context, userID string, skip, limit int) ([]*domain.Repository, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	q := `SELECT ` + repoColumns + `
FROM repositories
WHERE user_id=? ORDER BY last_synced_at DESC, id DESC LIMIT ? OFFSET ?;`
	rows, err := r.db.QueryContext(ctx, q, userID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Repository
	for rows.Next() {
		rep, err := scanRepo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// Upsert inserts the repository or, keyed on github_id, refreshes its metadata
// and last_synced_at while keeping the original row id.
func (r *RepoRepository) Upsert(ctx context.Context, rep *domain.Repository) error {
	const q = `
INSERT INTO repositories
(id, user_id, github_id, name, full_name, description, url, html_url,
 default_branch, language, is_private, is_fork, stars_count, forks_count,
 open_issues_count, size, last_synced_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 user_id=VALUES(user_id),
 name=VALUES(name), full_name=VALUES(full_name), description=VALUES(description),
 url=VALUES(url), html_url=VALUES(html_url), default_branch=VALUES(default_branch),
 language=VALUES(language), is_private=VALUES(is_private), is_fork=VALUES(is_fork),
 stars_count=VALUES(stars_count), forks_count=VALUES(forks_count),
 open_issues_count=VALUES(open_issues_count), size=VALUES(size),
 last_synced_at=VALUES(last_synced_at);
`
	synced := rep.LastSyncedAt
	if synced.IsZero() {
		synced = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		rep.ID, rep.UserID, rep.GithubID, stringOrDash(rep.Name), stringOrDash(rep.FullName),
		rep.Description, rep.URL, rep.HTMLURL, rep.DefaultBranch, rep.Language,
		rep.IsPrivate, rep.IsFork, rep.StarsCount, rep.ForksCount,
		rep.OpenIssues, rep.Size, synced,
	)
	return err
}

func (r *RepoRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM repositories WHERE user_id=?;`, userID).Scan(&n)
	return n, err
}

func (r *RepoRepository) one(ctx context.Context, q string, arg any) (*domain.Repository, error) {
	rep, err := scanRepo(r.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return rep, err
}

func scanRepo(row rowScanner) (*domain.Repository, error) {
	var rep domain.Repository
	if err := row.Scan(
		&rep.ID, &rep.UserID, &rep.GithubID, &rep.Name, &rep.FullName,
		&rep.Description, &rep.URL, &rep.HTMLURL, &rep.DefaultBranch, &rep.Language,
		&rep.IsPrivate, &rep.IsFork, &rep.StarsCount, &rep.ForksCount,
		&rep.OpenIssues, &rep.Size, &rep.LastSyncedAt,
	); err != nil {
		return nil, err
	}
	return &rep, nil
}
