package scriptcall

import (
	"fmt"

	"gopkg.in/guregu/null.v3"
)

// RemoveMethod is the fixed method name of the removal call shape.
const RemoveMethod = "remove"

// Shape narrows which calls count as matching. Every field is optional; an
// unset field matches any value in that slot, so a broader shape always
// matches a superset of the calls a narrower one does.
type Shape struct {
	// Method restricts matching to calls invoking this method.
	Method null.String `json:"method" yaml:"method" envconfig:"JQCHECK_METHOD"`

	// Option, when set, requires the method's first argument to be this
	// token as a quoted literal. A payload, if any, follows it.
	Option null.String `json:"option" yaml:"option" envconfig:"JQCHECK_OPTION"`

	// Identifier restricts matching to calls whose selector argument equals
	// this token.
	Identifier null.String `json:"identifier" yaml:"identifier" envconfig:"JQCHECK_IDENTIFIER"`
}

// Kind is the call shape a call matched as.
type Kind int

const (
	KindNone Kind = iota
	KindLeading
	KindTrailing
	KindRemoval
)

// Args renders the narrowing arguments that were supplied, for diagnostics.
func (s Shape) Args() []string {
	var out []string
	if s.Method.Valid {
		out = append(out, fmt.Sprintf("method=%s", s.Method.String))
	}
	if s.Option.Valid {
		out = append(out, fmt.Sprintf("option=%s", s.Option.String))
	}
	if s.Identifier.Valid {
		out = append(out, fmt.Sprintf("identifier=%s", s.Identifier.String))
	}
	return out
}

func (s Shape) methodMatches(name string) bool {
	return !s.Method.Valid || s.Method.String == name
}

func (s Shape) identifierMatches(a Arg) bool {
	if s.Identifier.Valid {
		return a.IsString() && a.Raw == s.Identifier.String
	}
	return a.IsSelector()
}

// payloadSlot returns the argument that can carry an escaped HTML payload:
// the first argument, or the one after the option token when an option is
// required. The bool is false when the option requirement is not met or the
// slot is absent.
func (s Shape) payloadSlot(c Call) (Arg, bool) {
	args := c.Args
	if s.Option.Valid {
		if len(args) == 0 || !args[0].IsString() || args[0].Raw != s.Option.String {
			return Arg{}, false
		}
		args = args[1:]
	}
	if len(args) == 0 {
		return Arg{}, false
	}
	return args[0], true
}

// MatchKind classifies a call against the shape. A call that fits more than
// one shape reports the leading-identifier one, so payload extraction prefers
// the argument position over the receiver position.
func (s Shape) MatchKind(c Call) Kind {
	if !s.methodMatches(c.Method) {
		return KindNone
	}
	if slot, ok := s.payloadSlot(c); ok {
		if s.identifierMatches(c.Receiver) && slot.IsHTML() {
			return KindLeading
		}
		if c.Receiver.IsHTML() && s.identifierMatches(slot) {
			return KindTrailing
		}
	}
	// The removal shape has a fixed method and no arguments, so it only
	// participates when the method slot is unset or names it explicitly.
	if c.Method == RemoveMethod && len(c.Args) == 0 && !s.Option.Valid &&
		s.identifierMatches(c.Receiver) {
		return KindRemoval
	}
	return KindNone
}

// Matches reports whether the call fits any of the three shapes.
func (s Shape) Matches(c Call) bool { return s.MatchKind(c) != KindNone }

// Payload returns the raw escaped-HTML payload of a matching call: the
// payload argument for a leading-identifier match, the receiver for a
// trailing-identifier match. Removal matches carry none.
func (s Shape) Payload(c Call) (string, bool) {
	switch s.MatchKind(c) {
	case KindLeading:
		slot, _ := s.payloadSlot(c)
		return slot.Raw, true
	case KindTrailing:
		return c.Receiver.Raw, true
	default:
		return "", false
	}
}

// MatchAny reports whether any call fits the shape.
func MatchAny(calls []Call, s Shape) bool {
	for _, c := range calls {
		if s.Matches(c) {
			return true
		}
	}
	return false
}

// Payloads collects the still-escaped HTML payloads of every matching call,
// preserving the calls' order of appearance.
func Payloads(calls []Call, s Shape) []string {
	var out []string
	for _, c := range calls {
		if p, ok := s.Payload(c); ok {
			out = append(out, p)
		}
	}
	return out
}
