package dispatch

import (
	"strings"
	"unicode"
)

// Tokenize splits raw text into tokens on runs of whitespace. A substring
// delimited by matching single or double quotes becomes one token with the
// quote characters removed, so `calculate "1 2" 3` tokenizes to
// ["calculate", "1 2", "3"]. Quoting is not nestable; an unterminated
// quote consumes the rest of the string.
func Tokenize(s string) []string {
	var tokens []string
	var b strings.Builder
	var quote rune // 0 while unquoted
	inToken := false

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				b.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, b.String())
				b.Reset()
				inToken = false
			}
		default:
			b.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		tokens = append(tokens, b.String())
	}
	return tokens
}
