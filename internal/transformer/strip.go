package transformer

import (
	"regexp"
	"strings"
)

var (
	reCommentLine = regexp.MustCompile(`^[ \t]*#`)
	reBlankLine   = regexp.MustCompile(`^[ \t]*$`)
	// Simple import calls: `import string`, `import fmt`. Only a bare word
	// may follow; array elements like `    import import::clear)` and
	// dynamic targets like `import "${_lib}"` must survive.
	reImportCall = regexp.MustCompile(`^[ \t]*import\s+\w+\s*$`)
	// Complete single-line import function definitions: `import() { ... }`.
	// Multi-line definitions are kept intact to avoid orphaning their body.
	reImportDef   = regexp.MustCompile(`^[ \t]*import\(\)\s*\{.+\}\s*$`)
	reSetPipefail = regexp.MustCompile(`^[ \t]*set -euo pipefail`)
	// A shebang that appears mid-line (after a non-newline char), produced
	// by `cat` concatenation of files without trailing newlines, e.g.
	// `}#!/usr/bin/env bash`.
	reMidlineShebang = regexp.MustCompile(`(.)#!/`)
)

// ShouldStrip reports whether a line contributes nothing to runtime
// behavior and should be removed entirely: full-line comments (including
// shebangs), blank lines, bare import calls, single-line import function
// definitions, and `set -euo pipefail`.
func ShouldStrip(line string) bool {
	return reCommentLine.MatchString(line) ||
		reBlankLine.MatchString(line) ||
		reImportCall.MatchString(line) ||
		reImportDef.MatchString(line) ||
		reSetPipefail.MatchString(line)
}

// StripLines removes strippable lines from input, returning the survivors.
//
// Mid-line shebangs are first split onto their own lines so the shebang
// half can still be stripped. Heredoc bodies are emitted verbatim:
// comments, imports, and blank lines inside a heredoc are kept.
func StripLines(input string) []string {
	normalized := reMidlineShebang.ReplaceAllString(input, "$1\n#!/")

	var result []string
	heredoc := ""
	for _, line := range strings.Split(normalized, "\n") {
		if heredoc != "" {
			result = append(result, line)
			if strings.TrimSpace(line) == heredoc {
				heredoc = ""
			}
			continue
		}
		// Heredoc detection happens before stripping, and only when the
		// << sits outside quotes.
		if delim := HeredocDelimiter(line); delim != "" {
			heredoc = delim
		}
		if !ShouldStrip(line) {
			result = append(result, line)
		}
	}
	return result
}
