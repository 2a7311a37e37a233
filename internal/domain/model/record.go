package model

// LanguageShare is one entry of a repository's language breakdown,
// computed from raw byte counts and rounded to one decimal place.
type LanguageShare struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// RepoRecord is the fully enriched output row written to the artifact.
// Field names and JSON tags match what the site's project list renders.
type RepoRecord struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	HTMLURL      string          `json:"html_url"`
	Homepage     string          `json:"homepage,omitempty"`
	Language     string          `json:"language"`
	Languages    []LanguageShare `json:"languages"`
	Technologies []string        `json:"technologies"`
	Topics       []string        `json:"topics"`
	Stars        int             `json:"stargazers_count"`
	License      string          `json:"license,omitempty"`
	HasSite      bool            `json:"has_site"`
}
