package jqassert

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/domtest/jqassert/htmlsel"
)

// recordingTB captures failures instead of ending the test, so failure paths
// can be asserted on. With abort set it panics from Fatalf the way testing
// ends a goroutine on FailNow, exercising the deferred scope restoration.
type recordingTB struct {
	failures []string
	abort    bool
}

type tbAbort struct{}

func (tb *recordingTB) Helper() {}

func (tb *recordingTB) Logf(string, ...interface{}) {}

func (tb *recordingTB) Fatalf(format string, args ...interface{}) {
	tb.failures = append(tb.failures, fmt.Sprintf(format, args...))
	if tb.abort {
		panic(tbAbort{})
	}
}

// run executes fn, swallowing only the abort sentinel.
func (tb *recordingTB) run(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			if _, ok := rec.(tbAbort); !ok {
				panic(rec)
			}
		}
	}()
	fn()
}

func TestSelectJQuery(t *testing.T) {
	t.Parallel()

	t.Run("MatchWithoutNarrowing", func(t *testing.T) {
		t.Parallel()
		tb := &recordingTB{}
		a := NewFromBody(tb, `$("#cart").show("\"<div>ok</div>\"");`)
		a.SelectJQuery(Shape{})
		assert.Empty(t, tb.failures)
	})

	t.Run("BlockExtractsSingleFragment", func(t *testing.T) {
		t.Parallel()
		tb := &recordingTB{}
		a := NewFromBody(tb, `$("#cart").show("\"<div>ok</div>\"");`)
		var got htmlsel.Selection
		a.SelectJQuery(Shape{}, func(scope htmlsel.Selection) {
			got = scope
		})
		require.Empty(t, tb.failures)
		require.Equal(t, 1, got.Size())
		assert.Equal(t, "div", got.NodeName())
		assert.Equal(t, "ok", got.Text())
	})

	t.Run("RemovalShape", func(t *testing.T) {
		t.Parallel()
		body := `$("#cart").remove();`
		shape := Shape{Identifier: null.StringFrom("#cart")}

		tb := &recordingTB{}
		NewFromBody(tb, body).SelectJQuery(shape)
		assert.Empty(t, tb.failures)

		// The removal call carries no payload, so the block form must fail.
		tb = &recordingTB{}
		NewFromBody(tb, body).SelectJQuery(shape, func(htmlsel.Selection) {
			t.Error("block must not run without fragments")
		})
		require.Len(t, tb.failures, 1)
		assert.Contains(t, tb.failures[0], "identifier=#cart")
	})

	t.Run("MethodNarrowing", func(t *testing.T) {
		t.Parallel()
		body := `$("#cart").replaceWith("<p>new</p>");`

		tb := &recordingTB{}
		NewFromBody(tb, body).SelectJQuery(Shape{Method: null.StringFrom("replaceWith")})
		assert.Empty(t, tb.failures)

		tb = &recordingTB{}
		NewFromBody(tb, body).SelectJQuery(Shape{Method: null.StringFrom("append")})
		require.Len(t, tb.failures, 1)
		assert.Contains(t, tb.failures[0], "method=append")
		assert.Contains(t, tb.failures[0], body)
	})

	t.Run("ExtractionPreservesOrder", func(t *testing.T) {
		t.Parallel()
		body := `
			$("#one").html("<p id=\"a\">1</p>");
			$("<p id=\"b\">2</p>").appendTo("#two");
			$("#three").append("<p id=\"c\">3</p>");
		`
		tb := &recordingTB{}
		var ids []string
		NewFromBody(tb, body).SelectJQuery(Shape{}, func(scope htmlsel.Selection) {
			scope.Each(func(_ int, p htmlsel.Selection) {
				ids = append(ids, p.AttrOr("id", ""))
			})
		})
		require.Empty(t, tb.failures)
		assert.Equal(t, []string{"a", "b", "c"}, ids)
	})

	t.Run("MultipleBlocksShareScope", func(t *testing.T) {
		t.Parallel()
		tb := &recordingTB{}
		a := NewFromBody(tb, `$("#x").html("<b>hi</b>");`)
		ran := 0
		block := func(scope htmlsel.Selection) {
			ran++
			assert.Equal(t, 1, scope.Size())
			assert.Equal(t, scope.Size(), a.Scope().Size())
		}
		a.SelectJQuery(Shape{}, block, block)
		assert.Equal(t, 2, ran)
		assert.Empty(t, tb.failures)
	})
}

func TestSelectJQueryDiagnostics(t *testing.T) {
	t.Parallel()

	t.Run("ShortBodyRendersWhole", func(t *testing.T) {
		t.Parallel()
		body := `<p>no script calls here</p>`
		tb := &recordingTB{}
		NewFromBody(tb, body).SelectJQuery(Shape{})
		require.Len(t, tb.failures, 1)
		assert.Contains(t, tb.failures[0], body)
	})

	t.Run("LongBodyTruncates", func(t *testing.T) {
		t.Parallel()
		body := strings.Repeat("a", 50) + strings.Repeat("z", 50)
		tb := &recordingTB{}
		NewFromBody(tb, body).SelectJQuery(Shape{})
		require.Len(t, tb.failures, 1)
		want := strings.Repeat("a", 40) + "..." + strings.Repeat("z", 40)
		assert.Contains(t, tb.failures[0], want)
		assert.NotContains(t, tb.failures[0], body)
	})

	t.Run("TruncationBoundary", func(t *testing.T) {
		t.Parallel()
		at := strings.Repeat("x", 87)
		over := strings.Repeat("x", 88)
		assert.Equal(t, at, truncateBody(at))
		assert.Equal(t, strings.Repeat("x", 40)+"..."+strings.Repeat("x", 40), truncateBody(over))
	})

	t.Run("TruncationKeepsRunesWhole", func(t *testing.T) {
		t.Parallel()
		// é straddles bytes 39-40, right on the head cut.
		headSplit := strings.Repeat("a", 39) + "é" + strings.Repeat("b", 60)
		got := truncateBody(headSplit)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, strings.Repeat("a", 39)+"..."+strings.Repeat("b", 40), got)

		// Here the é straddles the tail cut at len-40 instead.
		tailSplit := strings.Repeat("a", 60) + "é" + strings.Repeat("b", 39)
		got = truncateBody(tailSplit)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, strings.Repeat("a", 40)+"..."+strings.Repeat("b", 39), got)
	})
}

func TestScopeRestoration(t *testing.T) {
	t.Parallel()

	const body = `$("#root").html("<div id=\"lvl1\"><div id=\"lvl2\"><div id=\"lvl3\">deep</div></div></div>");`

	t.Run("RestoresAfterSuccess", func(t *testing.T) {
		t.Parallel()
		tb := &recordingTB{}
		a := NewFromBody(tb, body)
		require.False(t, a.scoped)
		a.SelectJQuery(Shape{}, func(htmlsel.Selection) {
			require.True(t, a.scoped)
			a.Within(a.Select("#lvl2"), func() {
				a.Within(a.Select("#lvl3"), func() {
					assert.Equal(t, "deep", a.Scope().Text())
				})
				assert.Equal(t, 1, a.Scope().Filter("#lvl2").Size())
			})
		})
		assert.False(t, a.scoped)
		assert.Empty(t, tb.failures)
	})

	t.Run("RestoresAfterNestedFailure", func(t *testing.T) {
		t.Parallel()
		tb := &recordingTB{abort: true}
		a := NewFromBody(tb, body)
		tb.run(func() {
			a.SelectJQuery(Shape{}, func(htmlsel.Selection) {
				a.Within(a.Select("#lvl2"), func() {
					a.Within(a.Select("#lvl3"), func() {
						// Three levels deep; this one fails and unwinds.
						a.Select("#missing")
					})
				})
			})
		})
		require.Len(t, tb.failures, 1)
		assert.Contains(t, tb.failures[0], "#missing")
		assert.False(t, a.scoped, "outer scope must be restored after a failing nested assertion")
	})
}

func TestSelect(t *testing.T) {
	t.Parallel()

	const doc = `
		<html><body>
			<div id="cart"><span class="total">$12.00</span></div>
			<p class="note">a</p><p class="note">b</p>
		</body></html>`

	t.Run("AgainstDocumentWhenUnscoped", func(t *testing.T) {
		t.Parallel()
		tb := &recordingTB{}
		a := NewFromBody(tb, doc)
		sel := a.Select("p.note", Count(2))
		assert.Equal(t, 2, sel.Size())
		a.Select("span.total", TextEquals("$12.00"))
		a.Select("#cart span", TextContains("12"))
		assert.Empty(t, tb.failures)
	})

	t.Run("ChecksFail", func(t *testing.T) {
		t.Parallel()
		tb := &recordingTB{}
		a := NewFromBody(tb, doc)
		a.Select("p.note", Count(3))
		a.Select("table")
		a.Select("span.total", TextEquals("$13.00"))
		a.Select("span.total", AttrEquals("class", "grand-total"))
		require.Len(t, tb.failures, 4)
		assert.Contains(t, tb.failures[0], "exactly 3")
		assert.Contains(t, tb.failures[1], "at least 1")
	})
}

func TestShapeExported(t *testing.T) {
	t.Parallel()
	// The root package re-exports scriptcall.Shape; options set there narrow
	// assertions here.
	tb := &recordingTB{}
	a := NewFromBody(tb, `$("#badge").effect("highlight", "<em>new</em>");`)
	a.SelectJQuery(Shape{
		Method: null.StringFrom("effect"),
		Option: null.StringFrom("highlight"),
	}, func(scope htmlsel.Selection) {
		assert.Equal(t, "em", scope.NodeName())
	})
	assert.Empty(t, tb.failures)
}
