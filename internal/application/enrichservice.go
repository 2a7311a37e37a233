package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kjsb25/kjsb25.github.io/internal/domain/model"
	"github.com/kjsb25/kjsb25.github.io/internal/domain/port/driven"
)

// maxImportScanFiles caps how many root-level Python sources get fetched
// for the import-based detector. Each file is one API call.
const maxImportScanFiles = 5

// EnrichService orchestrates discovery and per-repository enrichment.
// Every remote call is sequential; a sub-fetch failure degrades that
// repository's record instead of aborting the run.
type EnrichService struct {
	catalog driven.CatalogClient
}

// NewEnrichService creates an EnrichService backed by the given catalog client.
func NewEnrichService(catalog driven.CatalogClient) *EnrichService {
	return &EnrichService{catalog: catalog}
}

// Discover fetches the full catalog snapshot keyed by repository name.
// This is the only fatal-tier remote call: without a listing there is
// nothing to reconcile or enrich, so the error propagates to the caller.
func (s *EnrichService) Discover(ctx context.Context) (map[string]model.Repository, error) {
	repos, err := s.catalog.ListRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovering repositories: %w", err)
	}

	snapshot := make(map[string]model.Repository, len(repos))
	for _, r := range repos {
		snapshot[r.Name] = r
	}

	return snapshot, nil
}

// Enrich builds one record per included repository. Names are processed
// in alphabetical order; a name missing from the snapshot is skipped with
// a warning. The final list is sorted by descending star count, ties
// broken alphabetically by name.
func (s *EnrichService) Enrich(ctx context.Context, include map[string]bool, snapshot map[string]model.Repository) []model.RepoRecord {
	names := make([]string, 0, len(include))
	for name := range include {
		names = append(names, name)
	}
	sort.Strings(names)

	records := []model.RepoRecord{}
	for _, name := range names {
		repo, ok := snapshot[name]
		if !ok {
			slog.Warn("included repo missing from catalog, skipping", "repo", name)
			continue
		}

		start := time.Now()
		record := s.enrichOne(ctx, repo)
		records = append(records, record)

		slog.Info("repo enriched",
			"repo", name,
			"languages", len(record.Languages),
			"technologies", len(record.Technologies),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Stars != records[j].Stars {
			return records[i].Stars > records[j].Stars
		}
		return records[i].Name < records[j].Name
	})

	return records
}

// enrichOne runs the per-repository sub-fetches and assembles a record.
// Each failed sub-fetch is logged and treated as an empty result.
func (s *EnrichService) enrichOne(ctx context.Context, repo model.Repository) model.RepoRecord {
	bytesByLang, err := s.catalog.Languages(ctx, repo.Name)
	if err != nil {
		slog.Error("fetch languages failed", "repo", repo.Name, "error", err)
		bytesByLang = nil
	}
	shares := languageShares(bytesByLang)

	paths, truncated, err := s.catalog.FileTree(ctx, repo.Name, repo.DefaultBranch)
	if err != nil {
		slog.Error("fetch file tree failed", "repo", repo.Name, "branch", repo.DefaultBranch, "error", err)
		paths = nil
	}
	if truncated {
		slog.Warn("file tree truncated, detection runs on partial listing", "repo", repo.Name)
	}

	labels := DetectFrameworks(paths)

	if repo.Language == "Python" {
		imports := s.collectImports(ctx, repo, paths)
		labels = mergeLabels(labels, DetectImportLabels(imports))
	}

	if containsPath(paths, manifestFilename) {
		if deps := s.fetchManifest(ctx, repo); deps != nil {
			labels = mergeLabels(labels, DetectManifestLabels(deps))
		}
	}

	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}

	return model.RepoRecord{
		Name:         repo.Name,
		Description:  repo.Description,
		HTMLURL:      repo.HTMLURL,
		Homepage:     repo.Homepage,
		Language:     repo.Language,
		Languages:    shares,
		Technologies: labels,
		Topics:       topics,
		Stars:        repo.Stars,
		License:      repo.License,
		HasSite:      repo.Homepage != "",
	}
}

// collectImports fetches up to maxImportScanFiles root-level Python files
// in tree order and extracts their top-level import identifiers. The cap
// counts attempts, so failed fetches still spend the call budget.
func (s *EnrichService) collectImports(ctx context.Context, repo model.Repository, paths []string) []string {
	identifiers := []string{}
	seen := map[string]bool{}
	attempted := 0

	for _, p := range paths {
		if attempted >= maxImportScanFiles {
			break
		}
		if strings.ContainsRune(p, '/') || !strings.HasSuffix(p, ".py") {
			continue
		}
		attempted++

		content, ok, err := s.catalog.FileContent(ctx, repo.Name, repo.DefaultBranch, p)
		if err != nil {
			slog.Error("fetch source file failed", "repo", repo.Name, "path", p, "error", err)
			continue
		}
		if !ok {
			continue
		}

		for _, ident := range ExtractImports(content) {
			if !seen[ident] {
				identifiers = append(identifiers, ident)
				seen[ident] = true
			}
		}
	}

	return identifiers
}

// fetchManifest fetches and parses the root dependency manifest. Any
// fetch or parse failure is logged and reported as absence.
func (s *EnrichService) fetchManifest(ctx context.Context, repo model.Repository) map[string]string {
	content, ok, err := s.catalog.FileContent(ctx, repo.Name, repo.DefaultBranch, manifestFilename)
	if err != nil {
		slog.Error("fetch manifest failed", "repo", repo.Name, "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	deps, err := ParseManifest(content)
	if err != nil {
		slog.Error("parse manifest failed", "repo", repo.Name, "error", err)
		return nil
	}

	return deps
}

// languageShares converts raw byte counts into a percentage breakdown,
// rounded to one decimal. Entries whose share rounds below 1.0 are
// dropped. Per-entry rounding can push the total past 100, so any excess
// is taken back from the largest share, keeping the sum at most 100. A
// zero total yields an empty (non-nil) breakdown.
func languageShares(bytesByLang map[string]int) []model.LanguageShare {
	shares := []model.LanguageShare{}

	var total int
	for _, b := range bytesByLang {
		total += b
	}
	if total == 0 {
		return shares
	}

	for name, b := range bytesByLang {
		pct := math.Round(float64(b)/float64(total)*1000) / 10
		if pct < 1.0 {
			continue
		}
		shares = append(shares, model.LanguageShare{Name: name, Percent: pct})
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Percent != shares[j].Percent {
			return shares[i].Percent > shares[j].Percent
		}
		return shares[i].Name < shares[j].Name
	})

	var sum float64
	for _, share := range shares {
		sum += share.Percent
	}
	if sum > 100 {
		shares[0].Percent = math.Round((shares[0].Percent-(sum-100))*10) / 10
	}

	return shares
}

// containsPath reports whether the exact path appears in the tree listing.
func containsPath(paths []string, want string) bool {
	for _, p := range paths {
		if p == want {
			return true
		}
	}
	return false
}
