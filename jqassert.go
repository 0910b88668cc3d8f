// Package jqassert asserts on jQuery-style scripting calls embedded in HTTP
// response bodies: statements of the form `$("selector").method("escaped
// html");` produced by server-rendered script responses. A matched call's
// escaped HTML payloads can be parsed into fragments and used as the scope
// for nested structural assertions.
package jqassert

import (
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/domtest/jqassert/htmlsel"
	"github.com/domtest/jqassert/scriptcall"
)

// Shape names the optional narrowing arguments of an assertion; see
// scriptcall.Shape.
type Shape = scriptcall.Shape

// TB is the subset of the host test framework's failure surface the
// assertions need. *testing.T satisfies it. Fatalf must abort the current
// assertion (testing does so via runtime.Goexit, which still runs deferred
// scope restoration).
type TB interface {
	Helper()
	Logf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// Block runs nested assertions against the selection scope established for
// it. The scope is also installed as the Asserter's current scope for the
// duration of the call.
type Block func(scope htmlsel.Selection)

// Asserter runs scripting-call and structural assertions against one
// response. It is not safe for concurrent use; give each test case its own.
type Asserter struct {
	tb  TB
	log logrus.FieldLogger
	res *Response

	doc    htmlsel.Selection
	docErr error
	parsed bool

	scope  htmlsel.Selection
	scoped bool
}

// New returns an Asserter for the given response.
func New(tb TB, res *Response) *Asserter {
	return &Asserter{tb: tb, log: logrus.StandardLogger(), res: res}
}

// NewFromBody is a convenience for asserting on a bare body string.
func NewFromBody(tb TB, body string) *Asserter {
	return New(tb, NewResponse(0, body))
}

// WithLogger replaces the logger used for debug tracing.
func (a *Asserter) WithLogger(log logrus.FieldLogger) *Asserter {
	a.log = log
	return a
}

// Response returns the response under assertion.
func (a *Asserter) Response() *Response { return a.res }

// SelectJQuery asserts that the response body contains at least one scripting
// call matching the shape: the identifier used as the receiver selector with
// an escaped HTML payload argument, the payload used as the receiver with the
// identifier as plain argument, or a bare `remove()` on the identifier.
//
// With blocks, the escaped HTML payloads of every matching call are
// unescaped, parsed, and their top-level element nodes become the selection
// scope for the blocks, in the calls' order of appearance. Zero extracted
// fragments is then a failure. The previous scope is restored on every exit
// path, including failures raised inside a block.
func (a *Asserter) SelectJQuery(shape Shape, blocks ...Block) {
	a.tb.Helper()

	calls := scriptcall.Scan(a.res.Body)
	if !scriptcall.MatchAny(calls, shape) {
		a.failNoMatch(shape)
		return
	}

	if len(blocks) == 0 {
		a.log.WithFields(logrus.Fields{"calls": len(calls)}).
			Debug("jquery call shape matched")
		return
	}

	payloads := scriptcall.Payloads(calls, shape)
	unescaped := make([]string, len(payloads))
	for i, p := range payloads {
		unescaped[i] = scriptcall.Unescape(p)
	}
	fragments, err := htmlsel.ParseFragments(unescaped...)
	if err != nil {
		a.tb.Fatalf("cannot parse extracted fragments: %v", err)
		return
	}
	if fragments.Size() == 0 {
		a.failNoMatch(shape)
		return
	}
	a.log.WithFields(logrus.Fields{
		"calls":     len(calls),
		"payloads":  len(payloads),
		"fragments": fragments.Size(),
	}).Debug("jquery fragments extracted")

	a.Within(fragments, func() {
		for _, block := range blocks {
			block(fragments)
		}
	})
}

// Within runs block with sel installed as the current selection scope and
// restores the previous scope afterwards, no matter how block exits.
func (a *Asserter) Within(sel htmlsel.Selection, block func()) {
	prevScope, prevScoped := a.scope, a.scoped
	a.scope, a.scoped = sel, true
	defer func() {
		a.scope, a.scoped = prevScope, prevScoped
	}()
	block()
}

// Scope returns the current selection scope: the innermost block's fragments,
// or the whole parsed document when no block is active.
func (a *Asserter) Scope() htmlsel.Selection {
	if a.scoped {
		return a.scope
	}
	return a.document()
}

// Select runs a CSS selector against the current scope and applies the
// checks; with none given it asserts at least one match. It returns the
// matched selection so callers can chain or re-scope with Within.
func (a *Asserter) Select(selector string, checks ...Check) htmlsel.Selection {
	a.tb.Helper()

	root := a.Scope()
	if root.IsZero() {
		// Document parsing failed earlier; the diagnostic was already
		// raised, but guard against a non-terminating Fatalf.
		return root
	}
	matched := root.Find(selector)
	if len(checks) == 0 {
		checks = []Check{MinCount(1)}
	}
	for _, check := range checks {
		check(a.tb, matched, selector)
	}
	return matched
}

func (a *Asserter) document() htmlsel.Selection {
	if !a.parsed {
		a.doc, a.docErr = htmlsel.ParseHTML(a.res.Body)
		a.parsed = true
	}
	if a.docErr != nil {
		a.tb.Fatalf("cannot parse response body: %v", a.docErr)
	}
	return a.doc
}

func (a *Asserter) failNoMatch(shape Shape) {
	a.tb.Helper()
	a.tb.Fatalf("no jQuery call matches [%s] in response body: %s",
		strings.Join(shape.Args(), ", "), truncateBody(a.res.Body))
}

// Bodies longer than this render as head...tail in diagnostics.
const truncateBodyAt = 87

func truncateBody(body string) string {
	if len(body) <= truncateBodyAt {
		return body
	}
	// Back off to rune boundaries so the rendering stays valid UTF-8.
	head, tail := 40, len(body)-40
	for head > 0 && !utf8.RuneStart(body[head]) {
		head--
	}
	for tail < len(body) && !utf8.RuneStart(body[tail]) {
		tail++
	}
	return body[:head] + "..." + body[tail:]
}
