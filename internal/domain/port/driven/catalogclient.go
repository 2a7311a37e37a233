package driven

import (
	"context"

	"github.com/kjsb25/kjsb25.github.io/internal/domain/model"
)

// CatalogClient defines the driven port for the remote hosting API.
// All methods are read-only; the pipeline never mutates anything remotely.
type CatalogClient interface {
	// ListRepositories returns every repository visible for the configured
	// account, excluding archived ones. Fork handling is a client policy.
	ListRepositories(ctx context.Context) ([]model.Repository, error)
	// Languages returns raw byte counts per language for one repository.
	Languages(ctx context.Context, repoName string) (map[string]int, error)
	// FileTree returns every blob path reachable from the branch tip,
	// plus whether the API reported the listing as truncated. Truncated
	// results are returned as-is, not retried.
	FileTree(ctx context.Context, repoName, branch string) (paths []string, truncated bool, err error)
	// FileContent fetches and decodes a single text file. ok is false when
	// the file does not exist at that path on that branch.
	FileContent(ctx context.Context, repoName, branch, path string) (content string, ok bool, err error)
}
