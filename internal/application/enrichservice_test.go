package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjsb25/kjsb25.github.io/internal/application"
	"github.com/kjsb25/kjsb25.github.io/internal/domain/model"
)

// --- Mock catalog client ---

type mockCatalog struct {
	repos   []model.Repository
	listErr error

	languages map[string]map[string]int
	langErr   error

	trees     map[string][]string
	truncated bool
	treeErr   error

	files     map[string]string // "repo/path" -> content
	fileErr   error
	fileCalls []string
}

func (m *mockCatalog) ListRepositories(_ context.Context) ([]model.Repository, error) {
	return m.repos, m.listErr
}

func (m *mockCatalog) Languages(_ context.Context, repoName string) (map[string]int, error) {
	if m.langErr != nil {
		return nil, m.langErr
	}
	return m.languages[repoName], nil
}

func (m *mockCatalog) FileTree(_ context.Context, repoName, _ string) ([]string, bool, error) {
	if m.treeErr != nil {
		return nil, false, m.treeErr
	}
	return m.trees[repoName], m.truncated, nil
}

func (m *mockCatalog) FileContent(_ context.Context, repoName, _, path string) (string, bool, error) {
	key := repoName + "/" + path
	m.fileCalls = append(m.fileCalls, key)
	if m.fileErr != nil {
		return "", false, m.fileErr
	}
	content, ok := m.files[key]
	return content, ok, nil
}

func include(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// --- Tests ---

func TestDiscover_KeysSnapshotByName(t *testing.T) {
	catalog := &mockCatalog{
		repos: []model.Repository{
			{Name: "alpha", Stars: 3},
			{Name: "beta", Stars: 1},
		},
	}
	svc := application.NewEnrichService(catalog)

	snapshot, err := svc.Discover(context.Background())

	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.Equal(t, 3, snapshot["alpha"].Stars)
}

func TestDiscover_ListFailureIsFatal(t *testing.T) {
	catalog := &mockCatalog{listErr: errors.New("api down")}
	svc := application.NewEnrichService(catalog)

	_, err := svc.Discover(context.Background())

	assert.Error(t, err)
}

func TestEnrich_EmptyIncludeYieldsEmptyList(t *testing.T) {
	svc := application.NewEnrichService(&mockCatalog{})

	records := svc.Enrich(context.Background(), map[string]bool{}, map[string]model.Repository{})

	require.NotNil(t, records)
	assert.Empty(t, records)
}

func TestEnrich_SkipsNamesMissingFromSnapshot(t *testing.T) {
	catalog := &mockCatalog{}
	svc := application.NewEnrichService(catalog)
	snapshot := map[string]model.Repository{
		"alpha": {Name: "alpha"},
	}

	records := svc.Enrich(context.Background(), include("alpha", "ghost"), snapshot)

	require.Len(t, records, 1)
	assert.Equal(t, "alpha", records[0].Name)
}

func TestEnrich_LanguagePercentages(t *testing.T) {
	catalog := &mockCatalog{
		languages: map[string]map[string]int{
			"alpha": {"Go": 9550, "Shell": 450, "Makefile": 40},
		},
	}
	svc := application.NewEnrichService(catalog)
	snapshot := map[string]model.Repository{"alpha": {Name: "alpha"}}

	records := svc.Enrich(context.Background(), include("alpha"), snapshot)

	require.Len(t, records, 1)
	// Makefile rounds to 0.4% and is dropped; the rest sums under 100.
	require.Len(t, records[0].Languages, 2)
	assert.Equal(t, model.LanguageShare{Name: "Go", Percent: 95.1}, records[0].Languages[0])
	assert.Equal(t, model.LanguageShare{Name: "Shell", Percent: 4.5}, records[0].Languages[1])

	var sum float64
	for _, share := range records[0].Languages {
		sum += share.Percent
	}
	assert.LessOrEqual(t, sum, 100.0)
}

func TestEnrich_LanguagePercentagesNeverSumPast100(t *testing.T) {
	// Per-entry rounding pushes both shares up: 99.05 -> 99.1 and
	// 0.95 -> 1.0 would total 100.1. The excess comes out of the
	// largest share.
	catalog := &mockCatalog{
		languages: map[string]map[string]int{
			"edge": {"B": 9905, "A": 95},
		},
	}
	svc := application.NewEnrichService(catalog)
	snapshot := map[string]model.Repository{"edge": {Name: "edge"}}

	records := svc.Enrich(context.Background(), include("edge"), snapshot)

	require.Len(t, records, 1)
	require.Len(t, records[0].Languages, 2)
	assert.Equal(t, model.LanguageShare{Name: "B", Percent: 99.0}, records[0].Languages[0])
	assert.Equal(t, model.LanguageShare{Name: "A", Percent: 1.0}, records[0].Languages[1])

	var sum float64
	for _, share := range records[0].Languages {
		sum += share.Percent
	}
	assert.LessOrEqual(t, sum, 100.0)
}

func TestEnrich_ZeroBytesMeansEmptyBreakdown(t *testing.T) {
	catalog := &mockCatalog{}
	svc := application.NewEnrichService(catalog)
	snapshot := map[string]model.Repository{"alpha": {Name: "alpha"}}

	records := svc.Enrich(context.Background(), include("alpha"), snapshot)

	require.Len(t, records, 1)
	require.NotNil(t, records[0].Languages)
	assert.Empty(t, records[0].Languages)
}

func TestEnrich_DegradesOnLanguageFetchFailure(t *testing.T) {
	catalog := &mockCatalog{
		langErr: errors.New("boom"),
		trees:   map[string][]string{"alpha": {"Cargo.toml"}},
	}
	svc := application.NewEnrichService(catalog)
	snapshot := map[string]model.Repository{"alpha": {Name: "alpha", Stars: 2}}

	records := svc.Enrich(context.Background(), include("alpha"), snapshot)

	// The record is still produced, just without a language breakdown.
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Languages)
	assert.Equal(t, []string{"Rust"}, records[0].Technologies)
}

func TestEnrich_SortsByStarsDescThenName(t *testing.T) {
	catalog := &mockCatalog{}
	svc := application.NewEnrichService(catalog)
	snapshot := map[string]model.Repository{
		"zeta":  {Name: "zeta", Stars: 5},
		"alpha": {Name: "alpha", Stars: 1},
		"beta":  {Name: "beta", Stars: 5},
	}

	records := svc.Enrich(context.Background(), include("zeta", "alpha", "beta"), snapshot)

	require.Len(t, records, 3)
	assert.Equal(t, "beta", records[0].Name)
	assert.Equal(t, "zeta", records[1].Name)
	assert.Equal(t, "alpha", records[2].Name)
}

func TestEnrich_PythonImportDetection(t *testing.T) {
	catalog := &mockCatalog{
		trees: map[string][]string{
			"mltool": {"train.py", "utils/helpers.py", "README.md"},
		},
		files: map[string]string{
			"mltool/train.py": "import numpy as np\nimport os\nfrom torch import nn\n",
		},
	}
	svc := application.NewEnrichService(catalog)
	snapshot := map[string]model.Repository{
		"mltool": {Name: "mltool", Language: "Python", DefaultBranch: "main"},
	}

	records := svc.Enrich(context.Background(), include("mltool"), snapshot)

	require.Len(t, records, 1)
	assert.Equal(t, []string{"NumPy", "PyTorch"}, records[0].Technologies)
	// Nested sources are never fetched for import scanning.
	assert.NotContains(t, catalog.fileCalls, "mltool/utils/helpers.py")
}

func TestEnrich_PythonImportScanCapped(t *testing.T) {
	tree := []string{"a.py", "b.py", "c.py", "d.py", "e.py", "f.py", "g.py"}
	catalog := &mockCatalog{
		trees: map[string][]string{"pyrepo": tree},
		files: map[string]string{},
	}
	svc := application.NewEnrichService(catalog)
	snapshot := map[string]model.Repository{
		"pyrepo": {Name: "pyrepo", Language: "Python"},
	}

	svc.Enrich(context.Background(), include("pyrepo"), snapshot)

	assert.Len(t, catalog.fileCalls, 5)
}

func TestEnrich_PythonImportScanCapHoldsWhenFetchesFail(t *testing.T) {
	// Failed fetches spend the call budget too; the cap bounds attempts,
	// not successes.
	tree := []string{"a.py", "b.py", "c.py", "d.py", "e.py", "f.py", "g.py"}
	catalog := &mockCatalog{
		trees:   map[string][]string{"pyrepo": tree},
		fileErr: errors.New("boom"),
	}
	svc := application.NewEnrichService(catalog)
	snapshot := map[string]model.Repository{
		"pyrepo": {Name: "pyrepo", Language: "Python"},
	}

	records := svc.Enrich(context.Background(), include("pyrepo"), snapshot)

	assert.Len(t, catalog.fileCalls, 5)
	// The record still comes out, just without import-derived labels.
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Technologies)
}

func TestEnrich_ImportDetectorSkippedForOtherLanguages(t *testing.T) {
	catalog := &mockCatalog{
		trees: map[string][]string{"gotool": {"main.py", "go.mod"}},
	}
	svc := application.NewEnrichService(catalog)
	snapshot := map[string]model.Repository{
		"gotool": {Name: "gotool", Language: "Go"},
	}

	svc.Enrich(context.Background(), include("gotool"), snapshot)

	assert.Empty(t, catalog.fileCalls)
}

func TestEnrich_ManifestDetectionMergesNewLabelsOnly(t *testing.T) {
	catalog := &mockCatalog{
		trees: map[string][]string{
			"webapp": {"package.json", "src/index.jsx"},
		},
		files: map[string]string{
			"webapp/package.json": `{"dependencies": {"react": "^18.0.0", "react-dom": "^18.0.0"}}`,
		},
	}
	svc := application.NewEnrichService(catalog)
	snapshot := map[string]model.Repository{
		"webapp": {Name: "webapp", Language: "JavaScript", DefaultBranch: "main"},
	}

	records := svc.Enrich(context.Background(), include("webapp"), snapshot)

	require.Len(t, records, 1)
	// Node.js comes from the framework table; React appears exactly once.
	assert.Equal(t, []string{"Node.js", "React"}, records[0].Technologies)
}

func TestEnrich_HasSiteFollowsHomepage(t *testing.T) {
	catalog := &mockCatalog{}
	svc := application.NewEnrichService(catalog)
	snapshot := map[string]model.Repository{
		"withsite": {Name: "withsite", Homepage: "https://example.com"},
		"plain":    {Name: "plain"},
	}

	records := svc.Enrich(context.Background(), include("withsite", "plain"), snapshot)

	require.Len(t, records, 2)
	byName := map[string]model.RepoRecord{}
	for _, r := range records {
		byName[r.Name] = r
	}
	assert.True(t, byName["withsite"].HasSite)
	assert.False(t, byName["plain"].HasSite)
}
