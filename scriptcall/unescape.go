package scriptcall

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Unescape converts the body of a JS string literal back to the literal text
// it represents. Recognized escapes are \" \' \/ \n, the octal pair \076 (>)
// and \074 (<), and \uXXXX with four hex digits. Anything else after a
// backslash passes through unchanged. A single pass guarantees that the
// output of one substitution can never re-trigger another.
func Unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case '"', '\'', '/':
			b.WriteByte(s[i+1])
			i++
		case 'n':
			b.WriteByte('\n')
			i++
		case '0':
			switch {
			case hasAt(s, i+2, "76"):
				b.WriteByte('>')
				i += 3
			case hasAt(s, i+2, "74"):
				b.WriteByte('<')
				i += 3
			default:
				b.WriteByte(c)
			}
		case 'u':
			r, ok := hex4(s[i+2:])
			if !ok {
				b.WriteByte(c)
				continue
			}
			b.WriteRune(r)
			i += 5
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func hex4(s string) (rune, bool) {
	if len(s) < 4 {
		return 0, false
	}
	n, err := strconv.ParseUint(s[:4], 16, 32)
	if err != nil {
		return 0, false
	}
	r := rune(n)
	if !utf8.ValidRune(r) {
		r = utf8.RuneError
	}
	return r, true
}
