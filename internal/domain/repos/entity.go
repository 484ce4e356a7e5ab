package repos

import "time"

// RepoID identifier type
type RepoID string

// Repository is a synced GitHub repository belonging to one user.
type Repository struct {
	ID            RepoID    `json:"id"`
	UserID        string    `json:"user_id"`
	GithubID      int64     `json:"github_id"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description,omitempty"`
	URL           string    `json:"url"`
	HTMLURL       string    `json:"html_url"`
	DefaultBranch string    `json:"default_branch"`
	Language      string    `json:"language,omitempty"`
	IsPrivate     bool      `json:"is_private"`
	IsFork        bool      `json:"is_fork"`
	StarsCount    int       `json:"stars_count"`
	ForksCount    int       `json:"forks_count"`
	OpenIssues    int       `json:"open_issues_count"`
	Size          int       `json:"size"`
	LastSyncedAt  time.Time `json:"last_synced_at"`
}
