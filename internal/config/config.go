// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the pipeline configuration loaded from environment variables.
type Config struct {
	GitHubToken    string
	GitHubUsername string
	ConfigPath     string
	OutputPath     string
	IncludeForks   bool
}

// Load reads configuration from environment variables and returns a
// validated Config. The token (REPOFETCH_GITHUB_TOKEN, falling back to
// GITHUB_TOKEN) is optional; without it the API quota drops from 5000 to
// 60 requests per hour. Optional variables with defaults:
// REPOFETCH_GITHUB_USERNAME (kjsb25), REPOFETCH_CONFIG_PATH
// (repo_config.yaml), REPOFETCH_OUTPUT_PATH (data/github_repos.json),
// REPOFETCH_INCLUDE_FORKS (true).
func Load() (*Config, error) {
	token := os.Getenv("REPOFETCH_GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	username := "kjsb25"
	if v, ok := os.LookupEnv("REPOFETCH_GITHUB_USERNAME"); ok && v != "" {
		username = v
	}

	configPath := "repo_config.yaml"
	if v, ok := os.LookupEnv("REPOFETCH_CONFIG_PATH"); ok {
		configPath = v
	}

	outputPath := "data/github_repos.json"
	if v, ok := os.LookupEnv("REPOFETCH_OUTPUT_PATH"); ok {
		outputPath = v
	}

	// Earlier revisions of the fetch script dropped forks from discovery;
	// the current default keeps them, overridable per run.
	includeForks := true
	if v, ok := os.LookupEnv("REPOFETCH_INCLUDE_FORKS"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("REPOFETCH_INCLUDE_FORKS has invalid boolean %q: %w", v, err)
		}
		includeForks = parsed
	}

	return &Config{
		GitHubToken:    token,
		GitHubUsername: username,
		ConfigPath:     configPath,
		OutputPath:     outputPath,
		IncludeForks:   includeForks,
	}, nil
}
