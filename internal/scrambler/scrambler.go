package scrambler

import (
	"fmt"
	"regexp"
	"strings"
)

// fixedPointLimit bounds the repeated application of looped rules. One
// pass can miss adjacent or overlapping occurrences, so looped rules run
// until the line stops changing.
const fixedPointLimit = 100

// BuildRenameMap maps each discovered variable to its generated name
// `{prefix}{index}`, where index is the variable's position in the
// length-descending sorted list.
func BuildRenameMap(sortedVars []string, prefix string) map[string]string {
	renames := make(map[string]string, len(sortedVars))
	for i, name := range sortedVars {
		renames[name] = fmt.Sprintf("%s%d", prefix, i)
	}
	return renames
}

// rule is one substitution: a compiled pattern, its replacement template,
// and whether it repeats until the line reaches a fixed point.
type rule struct {
	re     *regexp.Regexp
	repl   string
	looped bool
}

// varRules is the precompiled rule set for one variable.
type varRules struct {
	rules []rule
}

// compileRules builds the ordered substitution rules renaming one
// variable to its replacement. Patterns carry a word-boundary guard so
// `path` never matches inside `_path`, and every quoted-context rule
// excludes single-quoted spans.
func compileRules(name, replacement string) varRules {
	v := regexp.QuoteMeta(name)
	r := replacement
	// In replacement templates `$$` is a literal `$` and `${N}` is a
	// capture group, so `$var` contexts substitute "$$" + r.
	dollarR := "$$" + r

	var rules []rule
	add := func(pattern, repl string, looped bool) {
		// A rule that fails to compile is omitted rather than aborting
		// the run. Names are QuoteMeta-escaped, so this never triggers
		// for a valid discovered variable.
		re, err := regexp.Compile(pattern)
		if err != nil {
			return
		}
		rules = append(rules, rule{re: re, repl: repl, looped: looped})
	}

	// Assignment: `var=`
	add(`([ \t]*)\b`+v+`=`, "${1}"+r+"=", true)

	// local/declare: `local [-x] ... var[= ]`
	add(`([ \t]*(?:local|declare)(?:[ \t]|-\w)*[^;]*\s)`+v+`(\s|=|$)`, "${1}"+r+"${2}", true)

	// Assignment in a non-quoted context.
	add(`^([^']*(?:(?:'[^']*')*(?:"[^"]*")*)*"[^"]*|[^'"]*)\b`+v+`([+\-]?=)`, "${1}"+r+"${2}", true)

	// Assignment after a pipe: `| var+=`
	add(`([|]\s+)`+v+`([+\-]?=)`, "${1}"+r+"${2}", false)

	// read statement. The \b keeps combined flag strings like `-ra`
	// intact when a single-letter variable is renamed.
	add("^(.*read\\s.*)\\b"+v+"([ ;}'\"\\n])", "${1}"+r+"${2}", true)

	// printf -v / mapfile -t
	add(`^(printf\s+-v\s+|mapfile\s+-t\s+)`+v+`([^\w])`, "${1}"+r+"${2}", false)

	// for loop
	add(`^([ \t]*for\s+)`+v+`\b`, "${1}"+r, false)

	// Array write: `var[...]=`. No ^ anchor; array writes appear
	// mid-line too (e.g. `do prev[j]=`).
	add(`([ \t]*)\b`+v+`(\[.+?\]=)`, "${1}"+r+"${2}", true)

	// Array read: `${var[`
	add(`^(.*\$\{)`+v+`(\[)`, "${1}"+r+"${2}", true)

	// unset: `unset 'var[` or `unset "var[`
	add(`^(.*unset\s+['"])`+v+`(\[)`, "${1}"+r+"${2}", false)

	// Pre-increment: `(( ++var`
	add(`^([ \t]*\(\(\s*[-+]{2})`+v+`\b`, "${1}"+r, false)

	// Post-increment: `(( var++`
	add(`^([ \t]*\(\(\s*)`+v+`([-+]{2})`, "${1}"+r+"${2}", false)

	// Parameter expansion modifiers: `:-`, `:+`, etc.
	add(`([:+\- ]+)`+v+`([:}+])`, "${1}"+r+"${2}", true)

	// Array index arithmetic: `${arr[i]}`, `${arr[i+1]}`, `${arr[i-1]}`
	add(`(\$\{[^}]+[\[+\-])`+v+`([\]+\-][^}]*\})`, "${1}"+r+"${2}", true)

	// Substring offset at the start: `${str:i-1:1}`. Modifiers (`:-`,
	// `:+`, `:=`, `:?`) begin with a non-word char, so they never match.
	add(`(\$\{[^}:]+:)`+v+`\b([^}]*\})`, "${1}"+r+"${2}", true)

	// Substring offset/length mid-expression: `${str:0:i}`, `${str:i+j:1}`
	add(`(\$\{[^}:]+:\w[^}]*?)\b`+v+`\b([^}]*\})`, "${1}"+r+"${2}", true)

	// General $var outside single quotes.
	add(`^((?:[^']*(?:'[^']*')*[^']*)*)\$`+v+`(\W)`, "${1}"+dollarR+"${2}", true)

	// $var inside "" that sits in a '' context.
	add(`^([^']*(?:(?:'[^']*')*(?:"[^"]*")*)*"[^"]*)\$`+v+`(\W)`, "${1}"+dollarR+"${2}", true)

	// ${var} outside single quotes.
	add(`^((?:[^']*(?:'[^']*')*[^']*)*\$\{[!#]?)`+v+`(\W)`, "${1}"+r+"${2}", true)

	// ${var} inside "" within a '' context.
	add(`^([^']*(?:(?:'[^']*')*(?:"[^"]*")*)*"[^"]*\$\{#?)`+v+`(\W)`, "${1}"+r+"${2}", true)

	// [[ / (( ${#var}
	add(`([(\[]{2}[^)]*\$\{#?)`+v+`([\[:}])`, "${1}"+r+"${2}", true)

	// Arithmetic context, spaces and comparison operators.
	add(`(\(\([^)]*[\s;<>])`+v+`([;\s<>])`, "${1}"+r+"${2}", true)

	// Arithmetic context, assignment and math operators.
	add(`(\(\([^)]*[=+\-\s])`+v+`([=+\-\s);\[])`, "${1}"+r+"${2}", true)

	return varRules{rules: rules}
}

// apply runs the full rule set over one line. Looped rules repeat until
// the line stops changing, bounded by fixedPointLimit.
func (p varRules) apply(line string) string {
	s := line
	for _, ru := range p.rules {
		if ru.looped {
			for iter := 0; iter < fixedPointLimit; iter++ {
				next := ru.re.ReplaceAllString(s, ru.repl)
				if next == s {
					break
				}
				s = next
			}
		} else {
			s = replaceFirst(ru.re, s, ru.repl)
		}
	}
	return s
}

// replaceFirst substitutes only the first match, expanding `${N}` capture
// references in repl. Non-looped rules fire once per line, not across
// every occurrence.
func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + string(re.ExpandString(nil, repl, s, loc)) + s[loc[1]:]
}

// Obfuscator holds the precompiled rename rules for every discovered
// variable, in length-descending variable order. Each variable's full
// rule set is applied to a line before the next variable's patterns run,
// so a longer variable is fully renamed before any shorter one and
// renamed output is never re-matched.
type Obfuscator struct {
	patterns []varRules
}

// NewObfuscator precompiles the rule sets for all variables. sortedVars
// must be in length-descending order (as produced by DiscoverVariables)
// and renames must map each of them to its generated name.
func NewObfuscator(sortedVars []string, renames map[string]string) *Obfuscator {
	patterns := make([]varRules, 0, len(sortedVars))
	for _, name := range sortedVars {
		patterns = append(patterns, compileRules(name, renames[name]))
	}
	return &Obfuscator{patterns: patterns}
}

// ObfuscateLine renames every variable reference on one line. A newline
// sentinel is appended so end-of-line `\W` patterns can match, then
// stripped again.
func (o *Obfuscator) ObfuscateLine(line string) string {
	s := line + "\n"
	for _, p := range o.patterns {
		s = p.apply(s)
	}
	return strings.TrimSuffix(s, "\n")
}

// ObfuscateLines renames variables on every line.
func (o *Obfuscator) ObfuscateLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = o.ObfuscateLine(line)
	}
	return out
}
