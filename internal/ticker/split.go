package ticker

import (
	"strings"
	"unicode/utf8"
)

const tabReplacement = "     "

// SplitBody turns an entry body into display lines. A trailing newline does
// not produce an extra empty line.
func SplitBody(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = CleanText(line)
	}
	return lines
}

// CleanText makes text safe to write to a terminal: tabs become five spaces,
// carriage returns are dropped and every other C0, DEL or C1 control rune is
// replaced with U+FFFD so escape sequences are shown rather than executed.
func CleanText(text string) string {
	if !hasControl(text) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t':
			b.WriteString(tabReplacement)
		case r == '\r':
		case isControl(r):
			b.WriteRune(utf8.RuneError)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasControl(text string) bool {
	for _, r := range text {
		if isControl(r) {
			return true
		}
	}
	return false
}

func isControl(r rune) bool {
	return r < 0x20 || (r >= 0x7f && r <= 0x9f)
}
