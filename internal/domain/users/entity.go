package users

import "time"

// UserID identifier type
type UserID string

// User is a GitHub-connected account. AccessToken is the stored OAuth token
// used for repository and code fetches on the user's behalf.
type User struct {
	ID          UserID    `json:"id"`
	GithubID    int64     `json:"github_id"`
	Username    string    `json:"username"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	GithubURL   string    `json:"github_url,omitempty"`
	AccessToken string    `json:"-"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile is what the hosting API reports about the authenticated user.
type Profile struct {
	GithubID  int64
	Username  string
	Name      string
	Email     string
	AvatarURL string
	GithubURL string
}
