package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/vinay9977/CodeCritic/internal/domain/users"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, github_id, username, name, email, avatar_url, github_url, access_token, is_active, created_at`

func (r *UserRepository) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=? LIMIT 1;`
	return r.one(ctx, q, id)
}

func (r *UserRepository) GetByGithubID(ctx context.Context, githubID int64) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE github_id=? LIMIT 1;`
	return r.one(ctx, q, githubID)
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	const q = `
INSERT INTO users
(id, github_id, username, name, email, avatar_url, github_url, access_token, is_active, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?);
`
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.GithubID, stringOrDash(u.Username), u.Name, u.Email,
		u.AvatarURL, u.GithubURL, u.AccessToken, u.IsActive, created,
	)
	return err
}

// Update refreshes profile fields and the stored access token.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	const q = `
UPDATE users
SET username=?, name=?, email=?, avatar_url=?, github_url=?, access_token=?, is_active=?
WHERE id=?;
`
	_, err := r.db.ExecContext(ctx, q,
		stringOrDash(u.Username), u.Name, u.Email, u.AvatarURL, u.GithubURL,
		u.AccessToken, u.IsActive, u.ID,
	)
	return err
}

func (r *UserRepository) one(ctx context.Context, q string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.GithubID, &u.Username, &u.Name, &u.Email,
		&u.AvatarURL, &u.GithubURL, &u.AccessToken, &u.IsActive, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
