// Package model contains the domain types shared across the pipeline.
package model

// Repository is a single entry of the catalog snapshot fetched during
// discovery. It carries the base metadata the enrichment pipeline needs
// before any per-repo sub-fetches happen.
type Repository struct {
	Name          string
	Description   string
	HTMLURL       string
	Homepage      string
	Language      string
	DefaultBranch string
	Stars         int
	Topics        []string
	License       string // SPDX identifier, empty when GitHub reports none.
	Archived      bool
	Fork          bool
}
