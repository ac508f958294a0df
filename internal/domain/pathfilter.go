// Package domain contains the selection pipeline and submission state
// machine for the revu CLI.
package domain

import "strings"

// DefaultSkipFolders is the built-in list of directory names whose files
// are never submitted for review. It can be replaced wholesale via
// configuration or by the server's scan-config endpoint.
var DefaultSkipFolders = []string{
	// Virtual environments
	"venv",
	".venv",
	"env",
	".env",
	"virtualenv",
	"conda-env",

	// Python internals / build artefacts
	"__pycache__",
	".eggs",
	"egg-info",
	"dist",
	"build",
	"sdist",
	"site-packages",
	"lib",
	"lib64",
	"scripts",
	"include",
	"share",

	// Package managers
	"node_modules",

	// Version control & editors
	".git",
	".svn",
	".hg",
	".idea",
	".vscode",

	// Testing / linting caches
	".tox",
	".nox",
	".mypy_cache",
	".pytest_cache",
	".ruff_cache",
	"htmlcov",
	".coverage",

	// Misc
	"migrations",
	".terraform",
}

// IsExcluded reports whether any directory component of relPath matches a
// token in skip. Matching is case-insensitive; the final component is the
// file name and is never tested. Tokens containing a hyphen or a dot also
// match as suffixes, so "egg-info" catches "foo.egg-info".
func IsExcluded(relPath string, skip []string) bool {
	normalized := strings.ReplaceAll(relPath, "\\", "/")
	parts := strings.Split(normalized, "/")

	if len(parts) < 2 {
		return false
	}

	for _, part := range parts[:len(parts)-1] {
		lower := strings.ToLower(part)

		for _, token := range skip {
			if lower == token {
				return true
			}

			if suffixToken(token) && strings.HasSuffix(lower, token) {
				return true
			}
		}
	}

	return false
}

// suffixToken reports whether a token is matched as a suffix rather than
// by exact equality.
func suffixToken(token string) bool {
	return strings.ContainsAny(token, "-.")
}

// NormalizeSkipFolders lowercases and trims tokens, dropping empties, so
// every source of a skip list (defaults, config, server) feeds the filter
// in the same shape.
func NormalizeSkipFolders(tokens []string) []string {
	out := make([]string, 0, len(tokens))

	for _, token := range tokens {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}

		out = append(out, token)
	}

	return out
}
