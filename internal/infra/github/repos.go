package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v57/github"

	"github.com/vinay9977/CodeCritic/internal/domain/repos"
)

// RepoProvider lists the authenticated user's repositories.
type RepoProvider struct {
	baseURL string
}

func NewRepoProvider() *RepoProvider {
	return &RepoProvider{}
}

// ListForUser fetches every repository the user can access, 100 per page.
func (p *RepoProvider) ListForUser(ctx context.Context, accessToken string) ([]*repos.Repository, error) {
	client := newClient(accessToken, p.baseURL)

	opts := &gh.RepositoryListOptions{
		Sort:        "updated",
		Affiliation: "owner,collaborator,organization_member",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var out []*repos.Repository
	for {
		page, resp, err := client.Repositories.List(ctx, "", opts)
		if err != nil {
			return nil, fmt.Errorf("list user repositories: %w", err)
		}
		for _, r := range page {
			out = append(out, mapRepository(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func mapRepository(r *gh.Repository) *repos.Repository {
	branch := r.GetDefaultBranch()
	if branch == "" {
		branch = "main"
	}
	return &repos.Repository{
		GithubID:      r.GetID(),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		URL:           r.GetURL(),
		HTMLURL:       r.GetHTMLURL(),
		DefaultBranch: branch,
		Language:      r.GetLanguage(),
		IsPrivate:     r.GetPrivate(),
		IsFork:        r.GetFork(),
		StarsCount:    r.GetStargazersCount(),
		ForksCount:    r.GetForksCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
		Size:          r.GetSize(),
	}
}
