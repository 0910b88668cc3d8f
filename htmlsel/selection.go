// Package htmlsel wraps goquery with a small, value-typed selection API used
// as the search root for structural assertions.
package htmlsel

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	gohtml "golang.org/x/net/html"
)

// Selection is an ordered set of nodes in a parsed document, addressable with
// CSS selectors.
type Selection struct {
	sel *goquery.Selection
}

// ParseHTML parses src as a complete document and returns a selection rooted
// at it.
func ParseHTML(src string) (Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return Selection{}, err
	}
	return Selection{doc.Selection}, nil
}

// ParseFragments parses each payload as markup and returns one selection over
// the top-level element nodes of every payload, preserving input order. Text
// and other non-element nodes at the top level are discarded.
func ParseFragments(payloads ...string) (Selection, error) {
	holder, err := goquery.NewDocumentFromReader(strings.NewReader(""))
	if err != nil {
		return Selection{}, err
	}
	// Goquery cannot build a Selection from arbitrary nodes, so collect them
	// into an out-of-range (empty) selection of a holder document.
	sel := holder.Selection.Eq(holder.Selection.Length())
	for _, payload := range payloads {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload))
		if err != nil {
			return Selection{}, err
		}
		sel.Nodes = append(sel.Nodes, doc.Find("body").Children().Nodes...)
	}
	return Selection{sel}, nil
}

// IsZero reports whether the selection was never initialized from a parse.
func (s Selection) IsZero() bool { return s.sel == nil }

func (s Selection) adjacent(unfiltered func() *goquery.Selection,
	filtered func(string) *goquery.Selection, def ...string,
) Selection {
	if len(def) > 0 {
		return Selection{filtered(def[0])}
	}
	return Selection{unfiltered()}
}

// Find returns the descendants of each node that match the selector.
func (s Selection) Find(selector string) Selection {
	return Selection{s.sel.Find(selector)}
}

// Closest returns the first ancestor (or self) of each node matching the
// selector.
func (s Selection) Closest(selector string) Selection {
	return Selection{s.sel.Closest(selector)}
}

// Children returns the element children of each node, optionally filtered by
// a selector.
func (s Selection) Children(def ...string) Selection {
	return s.adjacent(s.sel.Children, s.sel.ChildrenFiltered, def...)
}

func (s Selection) Next(def ...string) Selection {
	return s.adjacent(s.sel.Next, s.sel.NextFiltered, def...)
}

func (s Selection) NextAll(def ...string) Selection {
	return s.adjacent(s.sel.NextAll, s.sel.NextAllFiltered, def...)
}

func (s Selection) Prev(def ...string) Selection {
	return s.adjacent(s.sel.Prev, s.sel.PrevFiltered, def...)
}

func (s Selection) PrevAll(def ...string) Selection {
	return s.adjacent(s.sel.PrevAll, s.sel.PrevAllFiltered, def...)
}

func (s Selection) Parent(def ...string) Selection {
	return s.adjacent(s.sel.Parent, s.sel.ParentFiltered, def...)
}

func (s Selection) Parents(def ...string) Selection {
	return s.adjacent(s.sel.Parents, s.sel.ParentsFiltered, def...)
}

func (s Selection) Siblings(def ...string) Selection {
	return s.adjacent(s.sel.Siblings, s.sel.SiblingsFiltered, def...)
}

// Contents returns all children of each node, including text and comment
// nodes.
func (s Selection) Contents() Selection {
	return Selection{s.sel.Contents()}
}

// Filter reduces the selection to nodes matching the selector.
func (s Selection) Filter(selector string) Selection {
	return Selection{s.sel.Filter(selector)}
}

// Is reports whether any node in the selection matches the selector.
func (s Selection) Is(selector string) bool {
	return s.sel.Is(selector)
}

// Eq returns the node at the given index as a one-node selection; an
// out-of-range index yields an empty selection.
func (s Selection) Eq(idx int) Selection {
	return Selection{s.sel.Eq(idx)}
}

func (s Selection) First() Selection {
	return Selection{s.sel.First()}
}

func (s Selection) Last() Selection {
	return Selection{s.sel.Last()}
}

// Size returns the number of nodes in the selection.
func (s Selection) Size() int {
	return s.sel.Length()
}

// Each calls fn with every node of the selection, in order.
func (s Selection) Each(fn func(int, Selection)) Selection {
	s.sel.Each(func(idx int, sub *goquery.Selection) {
		fn(idx, Selection{sub})
	})
	return s
}

// Text returns the combined text contents of all nodes.
func (s Selection) Text() string {
	return s.sel.Text()
}

// Attr returns the named attribute of the first node.
func (s Selection) Attr(name string) (string, bool) {
	return s.sel.Attr(name)
}

// AttrOr returns the named attribute of the first node, or def when absent.
func (s Selection) AttrOr(name, def string) string {
	return s.sel.AttrOr(name, def)
}

// Html returns the inner markup of the first node.
func (s Selection) Html() (string, error) {
	return s.sel.Html()
}

// NodeName returns the tag name of the first node.
func (s Selection) NodeName() string {
	return goquery.NodeName(s.sel)
}

// Nodes exposes the underlying parse-tree nodes, in selection order.
func (s Selection) Nodes() []*gohtml.Node {
	return s.sel.Nodes
}
