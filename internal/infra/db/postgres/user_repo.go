package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vinay9977/CodeCritic/internal/domain/users"
)

type UserRepository struct{ db *sql.DB }

func NewUserRepository(db *sql.DB) *UserRepository { return &UserRepository{db: db} }

const userColumns = `id, github_id, username, name, email, avatar_url, github_url, access_token, is_active, created_at`

func (r *UserRepository) Get(ctx context.Context, id users.UserID) (*users.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1 LIMIT 1;`
	return r.one(ctx, q, id)
}

func (r *UserRepository) GetByGithubID(ctx context.Context, githubID int64) (*users.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE github_id=$1 LIMIT 1;`
	return r.one(ctx, q, githubID)
}

func (r *UserRepository) Create(ctx context.Context, u *users.User) error {
	const q = `
INSERT INTO users
(id, github_id, username, name, email, avatar_url, github_url, access_token, is_active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.GithubID, u.Username, u.Name, u.Email,
		u.AvatarURL, u.GithubURL, u.AccessToken, u.IsActive, u.CreatedAt,
	)
	return err
}

func (r *UserRepository) Update(ctx context.Context, u *users.User) error {
	const q = `
UPDATE users SET
 username=$1, name=$2, email=$3, avatar_url=$4, github_url=$5, access_token=$6, is_active=$7
WHERE id=$8;`
	res, err := r.db.ExecContext(ctx, q,
		u.Username, u.Name, u.Email, u.AvatarURL, u.GithubURL, u.AccessToken, u.IsActive, u.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UserRepository) one(ctx context.Context, q string, arg any) (*users.User, error) {
	var u users.User
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.GithubID, &u.Username, &u.Name, &u.Email,
		&u.AvatarURL, &u.GithubURL, &u.AccessToken, &u.IsActive, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
