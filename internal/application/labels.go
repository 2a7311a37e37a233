// Package application contains the enrichment pipeline and label resolvers.
package application

import (
	"path"
	"sort"
	"strings"
)

// frameworkRule maps a file indicator to a marketable technology label.
// A pattern starting with "." matches as a file suffix anywhere in the
// tree; anything else matches as an exact basename.
type frameworkRule struct {
	pattern string
	label   string
}

// frameworkRules is ordered by precedence: specific framework configs sit
// ahead of the generic ecosystem files they usually accompany, so the
// first-seen short-circuit in DetectFrameworks settles ties in favor of
// the more specific indicator.
var frameworkRules = []frameworkRule{
	{"next.config.js", "Next.js"},
	{"next.config.mjs", "Next.js"},
	{"next.config.ts", "Next.js"},
	{"nuxt.config.ts", "Nuxt"},
	{"svelte.config.js", "Svelte"},
	{"astro.config.mjs", "Astro"},
	{"vite.config.js", "Vite"},
	{"vite.config.ts", "Vite"},
	{"tailwind.config.js", "Tailwind CSS"},
	{"tailwind.config.ts", "Tailwind CSS"},
	{"tsconfig.json", "TypeScript"},
	{"package.json", "Node.js"},
	{"Cargo.toml", "Rust"},
	{"go.mod", "Go"},
	{"pyproject.toml", "Python"},
	{"requirements.txt", "Python"},
	{"Pipfile", "Python"},
	{"pom.xml", "Java"},
	{"build.gradle.kts", "Kotlin"},
	{"build.gradle", "Java"},
	{"Gemfile", "Ruby"},
	{"composer.json", "PHP"},
	{"CMakeLists.txt", "CMake"},
	{"Dockerfile", "Docker"},
	{"docker-compose.yml", "Docker"},
	{"docker-compose.yaml", "Docker"},
	{".tf", "Terraform"},
	{".ipynb", "Jupyter"},
	{".proto", "Protocol Buffers"},
	{".sol", "Solidity"},
}

// DetectFrameworks tests the ordered indicator table against the file
// tree. Each label is added at most once; rule order is the precedence.
// The result is never nil so records serialize as [] rather than null.
func DetectFrameworks(paths []string) []string {
	basenames := make(map[string]bool, len(paths))
	for _, p := range paths {
		basenames[path.Base(p)] = true
	}

	labels := []string{}
	seen := map[string]bool{}

	for _, rule := range frameworkRules {
		if seen[rule.label] {
			continue
		}
		if strings.HasPrefix(rule.pattern, ".") {
			if !anySuffix(paths, rule.pattern) {
				continue
			}
		} else if !basenames[rule.pattern] {
			continue
		}
		labels = append(labels, rule.label)
		seen[rule.label] = true
	}

	return labels
}

// anySuffix reports whether any path carries the given file suffix.
func anySuffix(paths []string, suffix string) bool {
	for _, p := range paths {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}

// importLabels maps top-level Python import identifiers to labels. An
// empty label is an explicit suppression marker: stdlib modules and
// common aliases are known but never surface as tags.
var importLabels = map[string]string{
	"numpy":      "NumPy",
	"pandas":     "pandas",
	"scipy":      "SciPy",
	"sklearn":    "scikit-learn",
	"matplotlib": "Matplotlib",
	"seaborn":    "Seaborn",
	"torch":      "PyTorch",
	"tensorflow": "TensorFlow",
	"keras":      "Keras",
	"flask":      "Flask",
	"django":     "Django",
	"fastapi":    "FastAPI",
	"pydantic":   "Pydantic",
	"sqlalchemy": "SQLAlchemy",
	"requests":   "Requests",
	"httpx":      "HTTPX",
	"aiohttp":    "aiohttp",
	"click":      "Click",
	"typer":      "Typer",
	"pytest":     "pytest",
	"boto3":      "AWS SDK",
	"openai":     "OpenAI API",

	// Aliases seen on import lines that never identify a library.
	"np":  "",
	"pd":  "",
	"plt": "",

	// Stdlib and glue modules, suppressed.
	"os":          "",
	"sys":         "",
	"io":          "",
	"re":          "",
	"json":        "",
	"csv":         "",
	"math":        "",
	"time":        "",
	"datetime":    "",
	"typing":      "",
	"pathlib":     "",
	"collections": "",
	"itertools":   "",
	"functools":   "",
	"dataclasses": "",
	"abc":         "",
	"enum":        "",
	"logging":     "",
	"argparse":    "",
	"subprocess":  "",
	"shutil":      "",
	"random":      "",
	"string":      "",
	"unittest":    "",
	"urllib":      "",
	"asyncio":     "",
}

// ExtractImports pulls top-level import identifiers out of Python source
// via line-prefix scanning. "import a.b as c, d" yields a and d; "from x.y
// import z" yields x. Identifiers keep first-seen order, deduplicated.
func ExtractImports(src string) []string {
	identifiers := []string{}
	seen := map[string]bool{}

	add := func(ident string) {
		// First token only: drops "as alias" and trailing noise.
		fields := strings.Fields(ident)
		if len(fields) == 0 {
			return
		}
		ident = fields[0]
		if i := strings.IndexByte(ident, '.'); i >= 0 {
			ident = ident[:i]
		}
		if ident != "" && !seen[ident] {
			identifiers = append(identifiers, ident)
			seen[ident] = true
		}
	}

	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "import "):
			for _, part := range strings.Split(strings.TrimPrefix(line, "import "), ",") {
				add(part)
			}
		case strings.HasPrefix(line, "from "):
			rest := strings.TrimPrefix(line, "from ")
			if i := strings.Index(rest, " import"); i >= 0 {
				add(rest[:i])
			}
		}
	}

	return identifiers
}

// DetectImportLabels maps extracted import identifiers through the static
// table. Deduplication is by label, not identifier: numpy and a hypothetical
// second numpy-family module both collapse to one NumPy tag. Unknown
// identifiers are skipped.
func DetectImportLabels(imports []string) []string {
	labels := []string{}
	seen := map[string]bool{}

	for _, ident := range imports {
		label, ok := importLabels[strings.ToLower(ident)]
		if !ok || label == "" || seen[label] {
			continue
		}
		labels = append(labels, label)
		seen[label] = true
	}

	return labels
}

// manifestLabels maps package.json dependency names to labels, with the
// same empty-string suppression convention as importLabels. Tooling
// packages every JS project drags in are suppressed rather than tagged.
var manifestLabels = map[string]string{
	"react":             "React",
	"react-dom":         "React",
	"next":              "Next.js",
	"vue":               "Vue.js",
	"nuxt":              "Nuxt",
	"svelte":            "Svelte",
	"@angular/core":     "Angular",
	"express":           "Express",
	"fastify":           "Fastify",
	"typescript":        "TypeScript",
	"tailwindcss":       "Tailwind CSS",
	"vite":              "Vite",
	"d3":                "D3.js",
	"three":             "Three.js",
	"electron":          "Electron",
	"graphql":           "GraphQL",
	"mongoose":          "MongoDB",
	"prisma":            "Prisma",
	"@prisma/client":    "Prisma",
	"socket.io":         "Socket.IO",
	"jest":              "Jest",
	"styled-components": "styled-components",

	// Build and lint plumbing, suppressed.
	"webpack":  "",
	"rollup":   "",
	"esbuild":  "",
	"eslint":   "",
	"prettier": "",
	"vitest":   "",
	"nodemon":  "",
	"husky":    "",
}

// DetectManifestLabels maps declared dependency names through the static
// table, deduplicated by label. Dependency names are visited in sorted
// order so the result is deterministic regardless of map iteration.
func DetectManifestLabels(deps map[string]string) []string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	labels := []string{}
	seen := map[string]bool{}

	for _, name := range names {
		label, ok := manifestLabels[name]
		if !ok || label == "" || seen[label] {
			continue
		}
		labels = append(labels, label)
		seen[label] = true
	}

	return labels
}

// mergeLabels appends the genuinely new labels from extra onto existing,
// preserving first-seen order across detectors.
func mergeLabels(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, l := range existing {
		seen[l] = true
	}
	for _, l := range extra {
		if seen[l] {
			continue
		}
		existing = append(existing, l)
		seen[l] = true
	}
	return existing
}
