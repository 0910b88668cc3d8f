package scriptcall

// The scanner is a small hand-rolled state machine instead of a set of
// overlapping regular expressions. It walks the body once, left to right, and
// yields every syntactically complete call in order of appearance. Anything
// that starts like a call but does not complete one (an unterminated string,
// a non-string receiver, a missing method) is skipped without aborting the
// scan.

const jqueryPrefix = "jQuery("

// Scan returns every recognizable scripting call in text, in order.
func Scan(text string) []Call {
	var calls []Call
	for i := 0; i < len(text); {
		start, after := nextPrefix(text, i)
		if start < 0 {
			break
		}
		call, end, ok := parseCall(text, start, after)
		if !ok {
			i = start + 1
			continue
		}
		calls = append(calls, call)
		i = end
	}
	return calls
}

// nextPrefix finds the next `$(` or `jQuery(` at or after i. It returns the
// prefix offset and the offset just past the opening parenthesis, or -1 when
// no prefix remains.
func nextPrefix(text string, i int) (start, after int) {
	for ; i < len(text); i++ {
		if text[i] == '$' && i+1 < len(text) && text[i+1] == '(' {
			return i, i + 2
		}
		if text[i] == 'j' && hasAt(text, i, jqueryPrefix) {
			return i, i + len(jqueryPrefix)
		}
	}
	return -1, -1
}

func hasAt(text string, i int, prefix string) bool {
	return len(text)-i >= len(prefix) && text[i:i+len(prefix)] == prefix
}

func parseCall(text string, start, i int) (Call, int, bool) {
	call := Call{Pos: start}

	i = skipSpace(text, i)
	recv, i, ok := parseString(text, i)
	if !ok {
		return Call{}, 0, false
	}
	call.Receiver = recv

	i = skipSpace(text, i)
	if i >= len(text) || text[i] != ')' {
		return Call{}, 0, false
	}
	i = skipSpace(text, i+1)
	if i >= len(text) || text[i] != '.' {
		return Call{}, 0, false
	}
	method, i, ok := parseIdent(text, i+1)
	if !ok {
		return Call{}, 0, false
	}
	call.Method = method

	if i >= len(text) || text[i] != '(' {
		return Call{}, 0, false
	}
	args, i, ok := parseArgs(text, i+1)
	if !ok {
		return Call{}, 0, false
	}
	call.Args = args
	return call, i, true
}

func parseArgs(text string, i int) ([]Arg, int, bool) {
	var args []Arg
	i = skipSpace(text, i)
	if i < len(text) && text[i] == ')' {
		return args, i + 1, true
	}
	for {
		arg, j, ok := parseArg(text, i)
		if !ok {
			return nil, 0, false
		}
		args = append(args, arg)
		i = skipSpace(text, j)
		if i >= len(text) {
			return nil, 0, false
		}
		switch text[i] {
		case ',':
			i = skipSpace(text, i+1)
		case ')':
			return args, i + 1, true
		default:
			return nil, 0, false
		}
	}
}

func parseArg(text string, i int) (Arg, int, bool) {
	if i < len(text) && (text[i] == '"' || text[i] == '\'') {
		return parseString(text, i)
	}
	return parseRaw(text, i)
}

// parseString consumes a quoted string literal starting at i. The returned
// Arg keeps the literal body with its escape sequences intact.
func parseString(text string, i int) (Arg, int, bool) {
	if i >= len(text) || (text[i] != '"' && text[i] != '\'') {
		return Arg{}, 0, false
	}
	quote := text[i]
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++ // escape consumes the next byte
		case quote:
			return Arg{Raw: text[i+1 : j], Quote: quote}, j + 1, true
		}
	}
	return Arg{}, 0, false
}

// parseRaw consumes a non-string argument: everything up to the next comma or
// closing parenthesis at nesting depth zero. Parentheses, brackets, braces and
// embedded string literals all nest.
func parseRaw(text string, i int) (Arg, int, bool) {
	depth := 0
	for j := i; j < len(text); j++ {
		switch text[j] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				if j == i {
					return Arg{}, 0, false
				}
				return Arg{Raw: trimRight(text[i:j])}, j, true
			}
			depth--
		case ',':
			if depth == 0 {
				return Arg{Raw: trimRight(text[i:j])}, j, true
			}
		case '"', '\'':
			if _, k, ok := parseString(text, j); ok {
				j = k - 1
			}
		}
	}
	return Arg{}, 0, false
}

func parseIdent(text string, i int) (string, int, bool) {
	j := i
	for ; j < len(text); j++ {
		c := text[j]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			continue
		}
		break
	}
	if j == i {
		return "", 0, false
	}
	return text[i:j], j, true
}

func skipSpace(text string, i int) int {
	for i < len(text) {
		switch text[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			return i
		}
	}
	return i
}

func trimRight(s string) string {
	for len(s) > 0 {
		switch s[len(s)-1] {
		case ' ', '\t', '\r', '\n':
			s = s[:len(s)-1]
		default:
			return s
		}
	}
	return s
}
