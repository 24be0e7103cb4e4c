package transformer

import (
	"regexp"
	"strings"
)

var (
	reLeadingWS = regexp.MustCompile(`^[ \t]+`)
	// A single trailing semicolon, never the second half of a `;;`
	// case terminator.
	reTrailingSemi = regexp.MustCompile(`([^;]);$`)
)

// FlattenLine normalizes one line:
//  1. Remove leading whitespace.
//  2. Remove a trailing standalone semicolon (`;` at end, but not `;;`).
//  3. Remove an end-of-line comment when the `#` sits outside any quoted
//     string and has whitespace on both sides.
func FlattenLine(line string) string {
	s := reLeadingWS.ReplaceAllString(line, "")
	s = reTrailingSemi.ReplaceAllString(s, "$1")
	return stripEOLComment(s)
}

// stripEOLComment drops ` # text` from the end of a line. The `#` must be
// outside single and double quotes and be both preceded and followed by
// whitespace, so `"# x"` inside a string or a `#` glued to text survives.
func stripEOLComment(line string) string {
	return stripEOLCommentFrom(line, false, false)
}

// stripEOLCommentFrom is stripEOLComment with the quote state seeded from
// the previous line, for lines that continue a multi-line string.
func stripEOLCommentFrom(line string, inSingle, inDouble bool) string {
	chars := []rune(line)

	for i, ch := range chars {
		switch ch {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '#':
			if inSingle || inDouble || i == 0 || i+1 >= len(chars) {
				continue
			}
			if isLineSpace(chars[i-1]) && isLineSpace(chars[i+1]) {
				cut := i
				for cut > 0 && isLineSpace(chars[cut-1]) {
					cut--
				}
				return string(chars[:cut]) + " "
			}
		}
	}
	return line
}

func isLineSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

// FlattenLines flattens all lines, passing heredoc bodies through
// unchanged. Quote state is carried across lines: a line that continues
// a multi-line quoted string is string content, so its leading
// whitespace stays, and only a comment or semicolon after the closing
// quote may be removed.
func FlattenLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	heredoc := ""
	inSingle := false
	inDouble := false
	for _, line := range lines {
		if heredoc != "" {
			out = append(out, line)
			if strings.TrimSpace(line) == heredoc {
				heredoc = ""
			}
			continue
		}
		var flat string
		if inSingle || inDouble {
			flat = stripEOLCommentFrom(line, inSingle, inDouble)
			if s, d := ScanQuotes(flat, inSingle, inDouble); !s && !d {
				flat = reTrailingSemi.ReplaceAllString(flat, "$1")
			}
		} else {
			flat = FlattenLine(line)
			if delim := HeredocDelimiter(flat); delim != "" {
				heredoc = delim
			}
		}
		inSingle, inDouble = ScanQuotes(flat, inSingle, inDouble)
		out = append(out, flat)
	}
	return out
}
