// Package artifact writes the enriched repository list consumed by the site.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kjsb25/kjsb25.github.io/internal/domain/model"
)

// Write serializes records as a pretty-printed JSON array and replaces the
// file at path in full. Zero records produce "[]", not null, so the site
// renders an empty project list instead of erroring.
func Write(path string, records []model.RepoRecord) error {
	if records == nil {
		records = []model.RepoRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating artifact dir %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing artifact %s: %w", path, err)
	}

	return nil
}
