// Package transformer implements the line-level bash transformations used
// by the minifier: quote tracking, stripping, flattening, and newline
// joining. All transformations are text-to-text; no bash is ever parsed
// into a syntax tree or executed.
package transformer

// LineHasOpenQuote reports whether a line leaves an unbalanced single or
// double quote open at end of line, respecting escapes and nesting.
//
// A quote toggles its open flag only when it is not inside the other quote
// type and, outside single quotes, not escaped. Escaping is decided by
// the run of consecutive preceding backslashes: an odd count means escaped.
// Inside single quotes backslash is literal (bash semantics), so quote
// toggling there is unconditional.
func LineHasOpenQuote(line string) (singleOpen, doubleOpen bool) {
	return ScanQuotes(line, false, false)
}

// ScanQuotes advances quote state across one line, starting from the
// given open flags. Callers that span multi-line strings (Flatten) seed
// it with the previous line's end state.
func ScanQuotes(line string, inSingle, inDouble bool) (singleOpen, doubleOpen bool) {
	chars := []rune(line)

	for i, ch := range chars {
		escaped := false
		if !inSingle {
			backslashes := 0
			for j := i; j > 0 && chars[j-1] == '\\'; j-- {
				backslashes++
			}
			escaped = backslashes%2 == 1
		}

		switch ch {
		case '\'':
			if !inDouble && (inSingle || !escaped) {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle && !escaped {
				inDouble = !inDouble
			}
		}
	}
	return inSingle, inDouble
}
