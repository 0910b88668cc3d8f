package jqassert

import (
	"strings"

	"github.com/domtest/jqassert/htmlsel"
)

// Check inspects the selection matched by Select and fails the assertion via
// tb when it does not hold.
type Check func(tb TB, sel htmlsel.Selection, selector string)

// MinCount asserts that at least n nodes matched.
func MinCount(n int) Check {
	return func(tb TB, sel htmlsel.Selection, selector string) {
		tb.Helper()
		if sel.Size() < n {
			tb.Fatalf("expected at least %d matches for %q, got %d", n, selector, sel.Size())
		}
	}
}

// Count asserts that exactly n nodes matched.
func Count(n int) Check {
	return func(tb TB, sel htmlsel.Selection, selector string) {
		tb.Helper()
		if sel.Size() != n {
			tb.Fatalf("expected exactly %d matches for %q, got %d", n, selector, sel.Size())
		}
	}
}

// TextEquals asserts that the combined text of the matched nodes equals want.
func TextEquals(want string) Check {
	return func(tb TB, sel htmlsel.Selection, selector string) {
		tb.Helper()
		if got := sel.Text(); got != want {
			tb.Fatalf("expected text %q for %q, got %q", want, selector, got)
		}
	}
}

// TextContains asserts that the combined text of the matched nodes contains
// want.
func TextContains(want string) Check {
	return func(tb TB, sel htmlsel.Selection, selector string) {
		tb.Helper()
		if got := sel.Text(); !strings.Contains(got, want) {
			tb.Fatalf("expected text containing %q for %q, got %q", want, selector, got)
		}
	}
}

// AttrEquals asserts that the first matched node carries the attribute with
// the given value.
func AttrEquals(name, want string) Check {
	return func(tb TB, sel htmlsel.Selection, selector string) {
		tb.Helper()
		got, ok := sel.Attr(name)
		if !ok {
			tb.Fatalf("expected attribute %q on %q, none present", name, selector)
			return
		}
		if got != want {
			tb.Fatalf("expected attribute %s=%q on %q, got %q", name, want, selector, got)
		}
	}
}
