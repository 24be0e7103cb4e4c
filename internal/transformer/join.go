package transformer

import (
	"regexp"
	"strings"
)

var (
	reCaseStart   = regexp.MustCompile(`^\s*case\b`)
	reEsac        = regexp.MustCompile(`esac(\s|\t|;|$)`)
	reCasePattern = regexp.MustCompile(`^([^()]+\))(?:\s|\t)*(.*)`)
	reDoubleSemi  = regexp.MustCompile(`(?:\s|\t)*;;(?:\s|\t|\n)*$`)
	// Array literal opened but not closed on the same line: `name=(`.
	reArrayOpen  = regexp.MustCompile(`=\([^)]*$`)
	reArrayClose = regexp.MustCompile(`\)(?:\s|\t)*$`)
	// Trailing binary operator: `||`, `&&`, `|`, `{`, `(`, `;`.
	reTrailingOperator = regexp.MustCompile(`([|&{(]{1,2}|;)\s*$`)
	reLeadingClose     = regexp.MustCompile(`^(?:\s|\t)*[)]`)
	reThenDoElse       = regexp.MustCompile(`(?:\s|\t)*(then|do|else)\s*$`)
	reKeywordSemi      = regexp.MustCompile(`\b(then|do|else);`)
)

// JoinNewlines aggressively joins bash source into minimal output.
//
// Heredoc content is preserved verbatim between `<<DELIM` and the
// delimiter line. Case statements keep the newline bash requires after
// `in` and after each `;;`, with every pattern body joined onto one line.
// Everything else (arrays, continuations, multi-line quoted strings) is
// collapsed, and a final pass fixes any `then;`/`do;`/`else;` into
// `then `/`do `/`else `.
func JoinNewlines(input string) string {
	var out strings.Builder
	out.Grow(len(input))
	lines := SplitLines(input)

	i := 0
	for i < len(lines) {
		// Flatten already ran, but be robust about indentation.
		line := strings.TrimLeft(lines[i], " \t")
		i++

		// Heredoc content must stay verbatim.
		if delim := HeredocDelimiter(line); delim != "" {
			out.WriteString(trimTrailingSpace(line))
			out.WriteByte('\n')
			for i < len(lines) {
				inner := lines[i]
				i++
				out.WriteString(inner)
				out.WriteByte('\n')
				if strings.TrimSpace(inner) == delim {
					break
				}
			}
			continue
		}

		// Case statement: one line per pattern body.
		if reCaseStart.MatchString(line) {
			i = processCase(line, lines, i, &out)
			continue
		}

		// Array spanning multiple lines: `=(` without closing `)`.
		if reArrayOpen.MatchString(line) {
			out.WriteString(trimTrailingSpace(line))
			for i < len(lines) {
				inner := lines[i]
				i++
				out.WriteByte(' ')
				out.WriteString(strings.TrimSpace(inner))
				if reArrayClose.MatchString(inner) {
					break
				}
			}
			out.WriteByte(';')
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		// Backslash continuation: remove the backslash, no separator.
		if strings.HasSuffix(line, `\`) {
			out.WriteString(line[:len(line)-1])
			continue
		}

		// Trailing operator gets a space instead of a terminator.
		if reTrailingOperator.MatchString(line) {
			out.WriteString(trimTrailingSpace(line))
			out.WriteByte(' ')
			continue
		}

		// Lone closing paren at line start.
		if reLeadingClose.MatchString(line) {
			out.WriteString(trimTrailingSpace(line))
			out.WriteByte(';')
			continue
		}

		// `then`, `do`, `else` at end of line need a space, not a `;`.
		if m := reThenDoElse.FindStringSubmatch(line); m != nil {
			out.WriteString(reThenDoElse.ReplaceAllString(line, ""))
			out.WriteString(m[1])
			out.WriteByte(' ')
			continue
		}

		// Open quote: a multi-line string. Rejoin with bash's $'\n'
		// concatenation so the embedded newlines survive at runtime.
		sqOpen, dqOpen := LineHasOpenQuote(line)
		if sqOpen || dqOpen {
			quote := byte('"')
			if sqOpen {
				quote = '\''
			}
			out.WriteString(line)
			out.WriteByte(quote)
			out.WriteString(`$'\n'`)
			out.WriteByte(quote)
			for i < len(lines) {
				inner := lines[i]
				i++
				out.WriteString(inner)
				// Close only when we find the matching quote character;
				// middle lines of a 3+ line string have none.
				if strings.IndexByte(inner, quote) >= 0 {
					break
				}
				out.WriteByte(quote)
				out.WriteString(`$'\n'`)
				out.WriteByte(quote)
			}
			out.WriteByte(';')
			continue
		}

		out.WriteString(trimTrailingSpace(line))
		out.WriteByte(';')
	}

	return reKeywordSemi.ReplaceAllString(out.String(), "$1 ")
}

// processCase joins one `case ... in` block: the opener keeps its newline
// (bash requires one after `in`), each pattern body is recursively joined
// and terminated with `;;` plus the newline required before the next
// pattern, and `esac` ends the block.
func processCase(first string, lines []string, i int, out *strings.Builder) int {
	out.WriteString(trimTrailingSpace(first))
	out.WriteByte('\n')

	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		i++
		if line == "" {
			continue
		}

		if reEsac.MatchString(line) {
			out.WriteString(trimTrailingSpace(line))
			out.WriteByte(';')
			break
		}

		m := reCasePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		pattern := m[1]
		body := m[2]

		// Collect body lines until `;;`.
		if !strings.Contains(body, ";;") {
			for i < len(lines) {
				inner := strings.TrimSpace(lines[i])
				i++
				body += "\n" + inner
				if strings.Contains(inner, ";;") {
					break
				}
			}
		}

		out.WriteString(pattern)
		body = reDoubleSemi.ReplaceAllString(body, "")
		joined := strings.TrimRight(JoinNewlines(body), ";")
		out.WriteString(joined)
		out.WriteString(";;\n")
	}
	return i
}

func trimTrailingSpace(s string) string {
	return strings.TrimRight(s, " \t\r\n\f")
}
