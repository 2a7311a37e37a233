// Package github implements the CatalogClient port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/kjsb25/kjsb25.github.io/internal/domain/model"
	"github.com/kjsb25/kjsb25.github.io/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CatalogClient = (*Client)(nil)

// Client implements the driven.CatalogClient port using the go-github library.
type Client struct {
	gh           *gh.Client
	username     string
	includeForks bool
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client, optional PAT auth)
//
// An empty token leaves the client unauthenticated, which caps the API
// quota at 60 requests per hour instead of 5000.
func NewClient(token, username string, includeForks bool) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	client.UserAgent = username + "-site-builder"

	return &Client{
		gh:           client,
		username:     username,
		includeForks: includeForks,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, username string, includeForks bool) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{
		gh:           client,
		username:     username,
		includeForks: includeForks,
	}, nil
}

// ListRepositories retrieves every repository visible for the configured
// account. It handles pagination automatically and filters out archived
// repositories; forks are filtered unless the client was created with
// includeForks set.
func (c *Client) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	opts := &gh.RepositoryListByUserOptions{
		Type: "owner",
		ListOptions: gh.ListOptions{
			PerPage: 100,
		},
	}

	var all []model.Repository

	for {
		repos, resp, err := c.gh.Repositories.ListByUser(ctx, c.username, opts)
		if err != nil {
			return nil, fmt.Errorf("listing repositories for %s (page %d): %w", c.username, opts.Page, err)
		}

		logRateLimit(resp, "repos", opts.Page, len(repos))

		for _, r := range repos {
			if r.GetArchived() {
				continue
			}
			if r.GetFork() && !c.includeForks {
				continue
			}
			all = append(all, mapRepository(r))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if all == nil {
		all = []model.Repository{}
	}

	return all, nil
}

// Languages retrieves raw byte counts per language for a repository.
// Percentage conversion is the caller's concern.
func (c *Client) Languages(ctx context.Context, repoName string) (map[string]int, error) {
	langs, resp, err := c.gh.Repositories.ListLanguages(ctx, c.username, repoName)
	if err != nil {
		return nil, fmt.Errorf("listing languages for %s: %w", repoName, err)
	}

	logRateLimit(resp, repoName+"/languages", 0, len(langs))

	return langs, nil
}

// FileTree retrieves the full recursive list of blob paths at the given
// branch tip. GitHub caps recursive tree listings; when the cap is hit the
// API sets a truncated flag, which is passed through so callers can warn.
func (c *Client) FileTree(ctx context.Context, repoName, branch string) ([]string, bool, error) {
	tree, resp, err := c.gh.Git.GetTree(ctx, c.username, repoName, branch, true)
	if err != nil {
		return nil, false, fmt.Errorf("fetching tree for %s@%s: %w", repoName, branch, err)
	}

	logRateLimit(resp, repoName+"/tree", 0, len(tree.Entries))

	paths := make([]string, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		paths = append(paths, entry.GetPath())
	}

	return paths, tree.GetTruncated(), nil
}

// FileContent fetches one file's decoded contents at the given branch.
// A 404 means the path does not exist there and is reported as ok=false
// rather than an error; decode failures are errors.
func (c *Client) FileContent(ctx context.Context, repoName, branch, path string) (string, bool, error) {
	file, _, resp, err := c.gh.Repositories.GetContents(ctx, c.username, repoName, path, &gh.RepositoryContentGetOptions{Ref: branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("fetching %s:%s@%s: %w", repoName, path, branch, err)
	}
	if file == nil {
		// The path resolved to a directory listing, not a file.
		return "", false, nil
	}

	logRateLimit(resp, repoName+"/"+path, 0, 1)

	content, err := file.GetContent()
	if err != nil {
		return "", false, fmt.Errorf("decoding %s:%s@%s: %w", repoName, path, branch, err)
	}

	return content, true, nil
}

// mapRepository converts a go-github Repository to the domain model type.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapRepository(r *gh.Repository) model.Repository {
	topics := make([]string, 0, len(r.Topics))
	topics = append(topics, r.Topics...)

	return model.Repository{
		Name:          r.GetName(),
		Description:   r.GetDescription(),
		HTMLURL:       r.GetHTMLURL(),
		Homepage:      r.GetHomepage(),
		Language:      r.GetLanguage(),
		DefaultBranch: r.GetDefaultBranch(),
		Stars:         r.GetStargazersCount(),
		Topics:        topics,
		License:       r.GetLicense().GetSPDXID(),
		Archived:      r.GetArchived(),
		Fork:          r.GetFork(),
	}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
