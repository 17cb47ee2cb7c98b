package model_test

import (
	"testing"

	. "github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/test/builder"
	"github.com/stretchr/testify/assert"
)

func TestNodeReplace(t *testing.T) {
	rpl := func(doc, insert, expect builder.NodeWithTag) {
		expected := expect.Node
		content := EmptyFragment
		if insert.Node != nil {
			var err error
			content, err = insert.Slice(insert.Tag["a"], insert.Tag["b"])
			assert.NoError(t, err)
		}
		actual, err := doc.Replace(doc.Tag["a"], doc.Tag["b"], content)
		if assert.NoError(t, err) {
			assert.True(t, actual.Eq(expected), "%s != %s\n", actual.String(), expected.String())
		}
	}

	// deletes text
	rpl(doc(p("on<a>e t<b>wo")), builder.NodeWithTag{}, doc(p("onwo")))

	// can insert text
	rpl(doc(p("before"), p("on<a><b>e"), p("after")),
		doc(p("<a>H<b>")),
		doc(p("before"), p("onHe"), p("after")))

	// can replace within a nested block
	rpl(doc(blockquote(p("a<a>bc<b>d"))),
		doc(p("x<a>y<b>z")),
		doc(blockquote(p("ayd"))))

	// joins inserted text with the same marks
	rpl(doc(p(em("fo<a><b>o"))),
		doc(p(em("<a>x<b>"))),
		doc(p(em("foxo"))))

	// keeps differently marked text apart
	rpl(doc(p("fo<a><b>o")),
		doc(p(strong("<a>x<b>"))),
		doc(p("fo", strong("x"), "o")))

	// replaces whole blocks
	rpl(doc(p("a"), "<a>", p("b"), "<b>", p("c")),
		doc("<a>", h1("x"), hr(), "<b>"),
		doc(p("a"), h1("x"), hr(), p("c")))

	// inserts into a list
	rpl(doc(ul(li(p("a")), "<a><b>")),
		doc(ul("<a>", li(p("b")), "<b>")),
		doc(ul(li(p("a")), li(p("b")))))

	// counts runes, not bytes
	rpl(doc(p("héllo<a> wö<b>rld")),
		builder.NodeWithTag{},
		doc(p("héllorld")))
}

func TestNodeReplaceError(t *testing.T) {
	bad := func(doc builder.NodeWithTag, content *Fragment, pattern string) {
		_, err := doc.Replace(doc.Tag["a"], doc.Tag["b"], content)
		if assert.Error(t, err) {
			assert.IsType(t, &ReplaceError{}, err)
			assert.Contains(t, err.Error(), pattern)
		}
	}

	// doesn't allow replacing across parents
	bad(doc(p("on<a>e"), p("t<b>wo")), EmptyFragment, "do not share a parent")

	// rejects a bad fit
	bad(doc("<a><b>"), NewFragment([]*Node{schema.Text("foo")}), "Invalid content")

	// rejects block content in a textblock
	bad(doc(p("a<a><b>b")), NewFragment([]*Node{p("x").Node}), "Invalid content")

	// rejects emptying a list
	bad(doc(ul("<a>", li(p("a")), "<b>")), EmptyFragment, "Invalid content")

	// rejects marks that the parent doesn't allow
	bad(doc(pre("fo<a><b>o")), NewFragment([]*Node{schema.Text("x", []*Mark{em2})}), "Invalid content")
}

func TestNodeSlice(t *testing.T) {
	test := func(doc builder.NodeWithTag, expect *Fragment) {
		slice, err := doc.Slice(doc.Tag["a"], doc.Tag["b"])
		if assert.NoError(t, err) {
			assert.True(t, slice.Eq(expect), "%s != %s", slice.String(), expect.String())
		}
	}

	// can cut part of a text node
	test(doc(p("hell<a>o wo<b>rld")), p("o wo").Content)

	// can cut part of marked text
	test(doc(p("here's noth<a>ing and ", em("here's e<b>m"))),
		p("ing and ", em("here's e")).Content)

	// can cut whole blocks
	test(doc(p("a"), "<a>", p("b"), p("c"), "<b>"), doc(p("b"), p("c")).Content)

	// fails across parents
	_, err := doc(p("a<a>"), p("<b>b")).Slice(2, 5)
	assert.Error(t, err)
}
