// Package configfile implements the VisibilityStore port on top of a
// small two-list YAML file (repo_config.yaml in the original site repo).
package configfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kjsb25/kjsb25.github.io/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.VisibilityStore = (*Store)(nil)

// header is written verbatim at the top of the file on every save. Edits
// to the file survive only inside the two lists; everything else is
// regenerated.
const header = `# Repository visibility for the generated project list.
# Repos under "include" are shown and enriched; repos under "exclude" are
# known but hidden. Newly discovered repos land in "exclude" until moved.
# This file is rewritten on every fetch run.
`

// Store reads and writes the include/exclude classification file.
type Store struct {
	path string
}

// NewStore creates a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load parses the two-section list format. Parsing is tolerant: comments
// and blank lines are skipped, and any unrecognized line outside a list
// entry resets the active section instead of failing. A missing file
// yields two empty sets.
func (s *Store) Load() (map[string]bool, map[string]bool, error) {
	include := map[string]bool{}
	exclude := map[string]bool{}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return include, exclude, nil
		}
		return nil, nil, fmt.Errorf("opening config %s: %w", s.path, err)
	}
	defer f.Close()

	var active map[string]bool

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			// Comments and blanks do not disturb the active section.
		case strings.HasPrefix(line, "include:"):
			active = include
		case strings.HasPrefix(line, "exclude:"):
			active = exclude
		case strings.HasPrefix(line, "- ") && active != nil:
			name := strings.TrimSpace(strings.TrimPrefix(line, "- "))
			if name != "" {
				active[name] = true
			}
		default:
			active = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading config %s: %w", s.path, err)
	}

	return include, exclude, nil
}

// Save rewrites the file in full: the fixed header followed by both lists,
// each sorted alphabetically. The write is a total replacement every run,
// so saving unchanged sets is idempotent byte-for-byte.
func (s *Store) Save(include, exclude map[string]bool) error {
	doc := struct {
		Include []string `yaml:"include"`
		Exclude []string `yaml:"exclude"`
	}{
		Include: sortedNames(include),
		Exclude: sortedNames(exclude),
	}

	body, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	buf.Write(body)

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", s.path, err)
	}

	return nil
}

// Reconcile classifies every name against the current catalog. Names the
// config has never seen default to exclude (hide unknown repos), and names
// no longer present in the catalog are pruned from both sets. The inputs
// are not mutated.
func Reconcile(known, include, exclude map[string]bool) (map[string]bool, map[string]bool) {
	newInclude := map[string]bool{}
	newExclude := map[string]bool{}

	for name := range known {
		switch {
		case include[name]:
			newInclude[name] = true
		default:
			// Covers both names already excluded and names never seen.
			newExclude[name] = true
		}
	}

	return newInclude, newExclude
}

// sortedNames returns the set's members in alphabetical order. A non-nil
// empty slice keeps yaml output stable ("[]" rather than "null").
func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
