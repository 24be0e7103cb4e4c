// Package bundle resolves `import`, `source`, and `.` statements in bash
// scripts, recursively inlining the referenced files to produce a single
// self-contained script.
//
// Bundling runs before the strip phase so import lines are still visible
// for resolution.
//
// Dedup rules:
//
//	Top level (brace depth == 0)        skip targets already inlined
//	Inside a function body (depth > 0)  always inline
//	`# minifier force source`           always inline the next import
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/whit3rabbit/shmixer/internal/logging"
	"github.com/whit3rabbit/shmixer/internal/transformer"
)

// MaxDepth caps import recursion so cyclic graphs always terminate.
const MaxDepth = 64

// ErrMaxDepth is returned when import recursion exceeds MaxDepth.
var ErrMaxDepth = fmt.Errorf("maximum recursion depth (%d) exceeded", MaxDepth)

var (
	// `import <target>`: a static word only, not dynamic, not array elements.
	reImport = regexp.MustCompile(`^[ \t]*import\s+([^\s;#]+)\s*$`)
	// `source <path>` with optional quotes.
	reSource = regexp.MustCompile(`^[ \t]*source\s+["']?([^"'\s;#]+)["']?`)
	// `. <path>` (dot-source) with optional quotes.
	reDot = regexp.MustCompile(`^[ \t]*\.\s+["']?([^"'\s;#]+)["']?`)
)

// Config holds the bundle phase settings.
type Config struct {
	// SearchPaths are the directories probed for imports, in order,
	// after the importing file's own directory.
	SearchPaths []string
}

// Bundle inlines every resolvable import in source. inputPath locates the
// script on disk so relative imports resolve against its directory.
// Unresolvable targets are left in place for the strip phase to handle.
func Bundle(source, inputPath string, cfg *Config) (string, error) {
	currentDir := filepath.Dir(inputPath)
	seen := make(map[string]struct{})
	lines, err := bundleRecursive(source, currentDir, cfg, seen, 0)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// stripImportPrefix removes an optional `@` or `~` target prefix.
func stripImportPrefix(target string) string {
	if strings.HasPrefix(target, "@") || strings.HasPrefix(target, "~") {
		return target[1:]
	}
	return target
}

// resolvePath resolves an import target to a file on disk, or "" when the
// target cannot be resolved. Absolute targets and path traversal are
// rejected. Candidate directories are the current file's directory
// followed by each search path; each is probed with the bare name and the
// `.sh` and `.bash` extensions.
func resolvePath(target, currentDir string, cfg *Config) string {
	stripped := stripImportPrefix(target)
	if filepath.IsAbs(stripped) {
		return ""
	}
	for _, elem := range strings.Split(filepath.ToSlash(stripped), "/") {
		if elem == ".." {
			return ""
		}
	}

	dirs := append([]string{currentDir}, cfg.SearchPaths...)
	for _, dir := range dirs {
		for _, ext := range []string{"", ".sh", ".bash"} {
			candidate := filepath.Join(dir, stripped+ext)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				return candidate
			}
		}
	}
	return ""
}

// braceDepthDelta counts the net block-brace change for a line, excluding
// `${...}` parameter expansions (tracked with their own counter so their
// closing braces never affect the block count) and anything quoted.
func braceDepthDelta(line string) int {
	delta := 0
	paramDepth := 0
	inSingle := false
	inDouble := false
	chars := []rune(line)

	for i, ch := range chars {
		var prev rune
		if i > 0 {
			prev = chars[i-1]
		}
		switch ch {
		case '\'':
			if !inDouble && prev != '\\' {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle && prev != '\\' {
				inDouble = !inDouble
			}
		case '{':
			if inSingle {
				continue
			}
			if prev == '$' {
				paramDepth++
			} else if paramDepth == 0 && !inDouble {
				delta++
			}
		case '}':
			if inSingle {
				continue
			}
			if paramDepth > 0 {
				paramDepth--
			} else if !inDouble {
				delta--
			}
		}
	}
	return delta
}

// extractTarget returns the import target of a line, or "" when the line
// is not an import directive or the target contains a `$` expansion
// (dynamic paths cannot be resolved statically).
func extractTarget(line string) string {
	for _, re := range []*regexp.Regexp{reImport, reSource, reDot} {
		if m := re.FindStringSubmatch(line); m != nil {
			if strings.Contains(m[1], "$") {
				return ""
			}
			return m[1]
		}
	}
	return ""
}

// canonicalize produces the dedup key for a resolved path: symlinks
// resolved and made absolute where possible.
func canonicalize(path string) string {
	resolved := path
	if c, err := filepath.EvalSymlinks(path); err == nil {
		resolved = c
	}
	if abs, err := filepath.Abs(resolved); err == nil {
		return abs
	}
	return resolved
}

func bundleRecursive(source, currentDir string, cfg *Config, seen map[string]struct{}, depth int) ([]string, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("bundle: %w", ErrMaxDepth)
	}
	log := logging.GetLogger("bundle")

	var output []string
	braceDepth := 0
	forceNext := false
	var openQuote byte
	heredoc := ""

	for _, line := range transformer.SplitLines(source) {
		// Inside a multi-line quoted string: emit verbatim until the
		// closing quote character shows up.
		if openQuote != 0 {
			output = append(output, line)
			if strings.IndexByte(line, openQuote) >= 0 {
				openQuote = 0
			}
			continue
		}

		// Heredoc bodies pass through untouched, so import-like text in
		// a heredoc is never mistaken for a directive.
		if heredoc != "" {
			output = append(output, line)
			if strings.TrimSpace(line) == heredoc {
				heredoc = ""
			}
			continue
		}

		if strings.TrimSpace(line) == "# minifier force source" {
			forceNext = true
			// The annotation itself is not emitted.
			continue
		}

		if target := extractTarget(line); target != "" {
			if resolved := resolvePath(target, currentDir, cfg); resolved != "" {
				canonical := canonicalize(resolved)
				topLevel := braceDepth == 0

				if topLevel && !forceNext {
					if _, ok := seen[canonical]; ok {
						log.Debug().Str("target", target).Msg("skipping already inlined import")
						forceNext = false
						continue
					}
				}

				seen[canonical] = struct{}{}
				content, err := os.ReadFile(resolved)
				if err != nil {
					return nil, fmt.Errorf("reading import %s: %w", resolved, err)
				}
				log.Debug().Str("target", target).Str("path", resolved).Int("depth", depth).Msg("inlining import")
				inlined, err := bundleRecursive(string(content), filepath.Dir(resolved), cfg, seen, depth+1)
				if err != nil {
					return nil, err
				}
				output = append(output, inlined...)
				forceNext = false
				continue
			}
			// Not found: keep the line; strip removes static bare
			// imports later.
		}

		output = append(output, line)
		forceNext = false

		braceDepth += braceDepthDelta(line)
		if braceDepth < 0 {
			braceDepth = 0
		}

		sq, dq := transformer.LineHasOpenQuote(line)
		switch {
		case sq:
			openQuote = '\''
		case dq:
			openQuote = '"'
		default:
			if delim := transformer.HeredocDelimiter(line); delim != "" {
				heredoc = delim
			}
		}
	}

	return output, nil
}
