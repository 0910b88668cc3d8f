// Package scriptcall locates jQuery-style scripting calls embedded in the
// text of an HTTP response body and classifies them against a caller-supplied
// shape. It does not parse JavaScript; it recognizes exactly the call forms
// `$("recv").method(args...)` and `jQuery("recv").method(args...)`.
package scriptcall

import "strings"

// Call is a single scripting call found in a scanned body.
type Call struct {
	// Pos is the byte offset of the receiver prefix within the scanned text.
	Pos int

	// Receiver is the quoted argument of the `$(...)` receiver.
	Receiver Arg

	// Method is the invoked method name.
	Method string

	// Args are the method arguments in source order.
	Args []Arg
}

// Arg is one textual argument of a call. String literals keep their raw,
// still-escaped body; any other argument is carried verbatim in Raw.
type Arg struct {
	Raw   string
	Quote byte // '"', '\'' or 0 for non-string arguments
}

// IsString reports whether the argument was a quoted string literal.
func (a Arg) IsString() bool { return a.Quote != 0 }

// IsHTML reports whether the argument has the escaped-HTML literal shape:
// a double-quoted string, optionally containing backslash-escaped quotes.
func (a Arg) IsHTML() bool { return a.Quote == '"' }

// IsSelector reports whether the argument can stand in for a selector token.
// Markup content is excluded so that a payload in the same position is not
// mistaken for a selector.
func (a Arg) IsSelector() bool {
	return a.IsString() && a.Raw != "" && !strings.ContainsAny(a.Raw, "<>")
}

func (a Arg) String() string {
	switch a.Quote {
	case 0:
		return a.Raw
	default:
		return string(a.Quote) + a.Raw + string(a.Quote)
	}
}
