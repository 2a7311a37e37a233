package application

import (
	"encoding/json"
	"fmt"
)

// manifestFilename is the dependency manifest recognized at the tree root.
const manifestFilename = "package.json"

// packageJSON is the subset of the npm manifest the pipeline reads.
type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ParseManifest decodes a package.json document and merges regular and
// development dependencies into one name to version-spec map.
func ParseManifest(content string) (map[string]string, error) {
	var m packageJSON
	if err := json.Unmarshal([]byte(content), &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", manifestFilename, err)
	}

	deps := make(map[string]string, len(m.Dependencies)+len(m.DevDependencies))
	for name, spec := range m.Dependencies {
		deps[name] = spec
	}
	for name, spec := range m.DevDependencies {
		deps[name] = spec
	}

	return deps, nil
}
