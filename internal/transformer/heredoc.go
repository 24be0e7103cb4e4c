package transformer

import (
	"regexp"
	"strings"
)

// Matches a heredoc opener and captures its delimiter: <<EOF, <<-EOF,
// <<'EOF', << "EOF". Known limitation: a herestring with a bare-word
// operand (`cmd <<< word`) also matches, so the rest of the input passes
// through unjoined. Herestrings normally carry a quoted or `$`-prefixed
// operand, which do not match.
var reHeredoc = regexp.MustCompile(`<<-?\s*['"]?(\w+)['"]?`)

// HeredocDelimiter returns the delimiter of a heredoc opened outside any
// quoted string on the line, or "" when the line opens none. A << that
// only appears inside quotes (e.g. `echo "not a <<EOF"`) is never treated
// as a real heredoc opener.
func HeredocDelimiter(line string) string {
	inSingle := false
	inDouble := false
	chars := []rune(line)

	for i := 0; i+1 < len(chars); i++ {
		switch chars[i] {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '<':
			if !inSingle && !inDouble && chars[i+1] == '<' {
				// Found << outside quotes; apply the regex from here.
				bytePos := len(string(chars[:i]))
				if m := reHeredoc.FindStringSubmatch(line[bytePos:]); m != nil {
					return m[1]
				}
			}
		}
	}
	return ""
}

// SplitLines splits input the way a line reader would: on newlines, with
// no trailing empty line for newline-terminated input and no carriage
// returns left on the lines.
func SplitLines(input string) []string {
	if input == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(input, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
