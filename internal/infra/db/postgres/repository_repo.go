package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vinay9977/CodeCritic/internal/domain/repos"
)

type RepoRepository struct{ db *sql.DB }

func NewRepoRepository(db *sql.DB) *RepoRepository { return &RepoRepository{db: db} }

const repoColumns = `id, user_id, github_id, name, full_name, description, url, html_url,
       default_branch, language, is_private, is_fork, stars_count, forks_count,
       open_issues_count, size, last_synced_at`

func (r *RepoRepository) Get(ctx context.Context, id repos.RepoID) (*repos.Repository, error) {
	q := `SELECT ` + repoColumns + ` FROM repositories WHERE id=$1 LIMIT 1;`
	return r.one(ctx, q, id)
}

func (r *RepoRepository) GetByGithubID(ctx context.Context, githubID int64) (*repos.Repository, error) {
	q := `SELECT ` + repoColumns + ` FROM repositories WHERE github_id=$1 LIMIT 1;`
	return r.one(ctx, q, githubID)
}

func (r *RepoRepository) ListByUser(ctx context.Context, userID string, skip, limit int) ([]*repos.Repository, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	q := `SELECT ` + repoColumns + `
FROM repositories
WHERE user_id=$1 ORDER BY last_synced_at DESC, id DESC LIMIT $2 OFFSET $3;`

	rows, err := r.db.QueryContext(ctx, q, userID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*repos.Repository
	for rows.Next() {
		rep, err := scanRepo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// Upsert keeps the original row id when the repository is already known,
// refreshing metadata and last_synced_at.
func (r *RepoRepository) Upsert(ctx context.Context, rep *repos.Repository) error {
	const q = `
INSERT INTO repositories
(id, user_id, github_id, name, full_name, description, url, html_url,
 default_branch, language, is_private, is_fork, stars_count, forks_count,
 open_issues_count, size, last_synced_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
ON CONFLICT (github_id) DO UPDATE SET
 user_id = EXCLUDED.user_id,
 name = EXCLUDED.name, full_name = EXCLUDED.full_name,
 description = EXCLUDED.description, url = EXCLUDED.url, html_url = EXCLUDED.html_url,
 default_branch = EXCLUDED.default_branch, language = EXCLUDED.language,
 is_private = EXCLUDED.is_private, is_fork = EXCLUDED.is_fork,
 stars_count = EXCLUDED.stars_count, forks_count = EXCLUDED.forks_count,
 open_issues_count = EXCLUDED.open_issues_count, size = EXCLUDED.size,
 last_synced_at = EXCLUDED.last_synced_at;`

	synced := rep.LastSyncedAt
	if synced.IsZero() {
		synced = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		rep.ID, rep.UserID, rep.GithubID, rep.Name, rep.FullName, rep.Description,
		rep.URL, rep.HTMLURL, rep.DefaultBranch, rep.Language, rep.IsPrivate, rep.IsFork,
		rep.StarsCount, rep.ForksCount, rep.OpenIssues, rep.Size, synced,
	)
	return err
}

func (r *RepoRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM repositories WHERE user_id=$1;`, userID).Scan(&n)
	return n, err
}

func (r *RepoRepository) one(ctx context.Context, q string, arg any) (*repos.Repository, error) {
	rep, err := scanRepo(r.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repos.ErrNotFound
	}
	return rep, err
}

func scanRepo(row rowScanner) (*repos.Repository, error) {
	var rep repos.Repository
	if err := row.Scan(
		&rep.ID, &rep.UserID, &rep.GithubID, &rep.Name, &rep.FullName, &rep.Description,
		&rep.URL, &rep.HTMLURL, &rep.DefaultBranch, &rep.Language, &rep.IsPrivate, &rep.IsFork,
		&rep.StarsCount, &rep.ForksCount, &rep.OpenIssues, &rep.Size, &rep.LastSyncedAt,
	); err != nil {
		return nil, err
	}
	return &rep, nil
}
