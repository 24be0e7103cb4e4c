// Package scrambler discovers local variable binding sites in bash source
// and renames them to short generated identifiers. Discovery and renaming
// are regex-driven: no bash grammar is parsed, so every rule is scoped by
// quoting context and word boundaries to avoid corrupting unrelated text.
package scrambler

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	reAssignment = regexp.MustCompile(`^[ \t]*([a-z][a-z0-9_]*)=`)
	reLocal      = regexp.MustCompile(`(?:^|[ \t]+)(?:local|declare)\s(?:[ \t]|-\w)*([a-z][a-z0-9_]*)(?:=|\s|$)`)
	reRead       = regexp.MustCompile(`read\s+(?:-\w\s+)*([a-z][a-z0-9_]*)`)
	reFor        = regexp.MustCompile(`^[ \t]*for\s+([a-z][a-z0-9_]*)\s`)
	reArrayWrite = regexp.MustCompile(`^[ \t]*([a-z][a-z0-9_]*)\[.+\]=`)
	rePreIncr    = regexp.MustCompile(`^[ \t]*\(\(\s*[-+]{2}([a-z][a-z0-9_]*)\s*\)\)`)
	rePostIncr   = regexp.MustCompile(`^[ \t]*\(\(\s*([a-z][a-z0-9_]*)[-+]{2}\s*\)\)`)

	reIgnoreAnnotation = regexp.MustCompile(`^[ \t]*# obfus ignore variable`)
	reCommentOnly      = regexp.MustCompile(`^[ \t]*#`)
	reBlankOnly        = regexp.MustCompile(`^[ \t]*$`)

	// Helpers for extracting the bare names out of a local/declare
	// declaration: strip the keyword prefix, any parenthesized or quoted
	// values, and inline `=value` assignments before splitting on spaces.
	reLocalStripPrefix = regexp.MustCompile(`^.*(?:local|declare)\s(?:[ \t]|-\w)*`)
	reParens           = regexp.MustCompile(`[({].*?[)}]`)
	reQuoted           = regexp.MustCompile(`(?:"[^"]*"|'[^']*')`)
	reEqualsVal        = regexp.MustCompile(`=\S*`)
	reVarName          = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// splitOutsideQuotes splits a line on semicolons that sit outside single
// and double quotes, so `a=1; b=2` splits but `msg="a; b"` does not.
func splitOutsideQuotes(line string) []string {
	var segments []string
	start := 0
	inSingle := false
	inDouble := false
	for i, ch := range line {
		switch ch {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case ';':
			if !inSingle && !inDouble {
				segments = append(segments, line[start:i])
				start = i + 1
			}
		}
	}
	return append(segments, line[start:])
}

// DiscoverVariables scans bash source for every local variable binding
// site and returns the deduplicated names, sorted by length descending
// then alphabetically (longer names must be renamed first so a shorter
// name never matches inside an already-renamed longer one).
//
// Binding forms: plain assignment (`name=`), local/declare declarations
// (multiple names per line), `read`, `for ... in`, array-subscript writes
// (`name[...]=`), and arithmetic pre/post increment and decrement.
//
// `IFS` is always excluded, as are comment lines, blank lines, and any
// line directly following a `# obfus ignore variable` annotation. Names
// matching an ignore pattern are removed after collection.
func DiscoverVariables(source string, ignorePatterns []*regexp.Regexp) []string {
	vars := make(map[string]struct{})
	skipNext := 0

	for _, line := range strings.Split(source, "\n") {
		if reIgnoreAnnotation.MatchString(line) {
			skipNext++
			continue
		}
		if skipNext > 0 {
			skipNext--
			continue
		}
		if reCommentOnly.MatchString(line) || reBlankOnly.MatchString(line) {
			continue
		}

		for _, segment := range splitOutsideQuotes(line) {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}
			discoverSegment(segment, vars)
		}
	}

	result := make([]string, 0, len(vars))
	for name := range vars {
		ignored := false
		for _, re := range ignorePatterns {
			if re.MatchString(name) {
				ignored = true
				break
			}
		}
		if !ignored {
			result = append(result, name)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if len(result[i]) != len(result[j]) {
			return len(result[i]) > len(result[j])
		}
		return result[i] < result[j]
	})
	return result
}

// discoverSegment tests one semicolon-separated segment against the
// binding patterns in priority order; the first match wins.
func discoverSegment(segment string, vars map[string]struct{}) {
	record := func(name string) {
		if name != "IFS" {
			vars[name] = struct{}{}
		}
	}

	if m := reAssignment.FindStringSubmatch(segment); m != nil {
		record(m[1])
		return
	}

	if reLocal.MatchString(segment) {
		stripped := reLocalStripPrefix.ReplaceAllString(segment, "")
		stripped = reParens.ReplaceAllString(stripped, "")
		stripped = reQuoted.ReplaceAllString(stripped, "")
		stripped = reEqualsVal.ReplaceAllString(stripped, "")
		for _, word := range strings.Fields(stripped) {
			if reVarName.MatchString(word) {
				record(word)
			}
		}
		return
	}

	if m := reRead.FindStringSubmatch(segment); m != nil {
		record(m[1])
		return
	}

	if m := reFor.FindStringSubmatch(segment); m != nil {
		record(m[1])
		return
	}

	if m := reArrayWrite.FindStringSubmatch(segment); m != nil {
		record(m[1])
		return
	}

	if m := rePreIncr.FindStringSubmatch(segment); m != nil {
		record(m[1])
		return
	}

	if m := rePostIncr.FindStringSubmatch(segment); m != nil {
		record(m[1])
	}
}

// ParseIgnorePatterns compiles a comma-separated ignore pattern string.
//
// Each pattern is anchored with `^(?:...)$` so it matches the whole
// variable name (`usage` only matches `usage`, never `usage_count`)
// unless the user already supplied an anchor. The special pattern `*`
// ignores every variable.
func ParseIgnorePatterns(patterns string) ([]*regexp.Regexp, error) {
	if patterns == "*" {
		return []*regexp.Regexp{regexp.MustCompile(`.*`)}, nil
	}
	var compiled []*regexp.Regexp
	for _, pat := range strings.Split(patterns, ",") {
		if pat == "" {
			continue
		}
		expr := pat
		if !strings.HasPrefix(pat, "^") && !strings.HasSuffix(pat, "$") {
			expr = fmt.Sprintf("^(?:%s)$", pat)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pat, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}
