package model_test

import (
	"testing"

	. "github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	serializer = DOMSerializerFromSchema(schema)
	parser     = DOMParserFromSchema(schema)
)

// test checks that doc renders to the expected HTML and that parsing that
// HTML gives the document back.
func test(t *testing.T, doc builder.NodeWithTag, htmlExpected string, msg string) {
	out, err := serializer.RenderHTML(doc.Node)
	require.NoError(t, err, msg)
	assert.Equal(t, htmlExpected, out, msg)

	parsed, err := parser.Parse(out)
	if assert.NoError(t, err, msg) {
		assert.True(t, parsed.Eq(doc.Node), "%s: %s != %s", msg, parsed.String(), doc.String())
	}
}

func TestDOMSerializer(t *testing.T) {
	test(t,
		doc(p("hello")),
		"<p>hello</p>",
		"Should represent simple node")

	test(t,
		doc(p("hi", br(), "there")),
		"<p>hi<br/>there</p>",
		"Should represent a line break")

	test(t,
		doc(p("hi", img(Attrs{"alt": "x"}), "there")),
		`<p>hi<img src="img.png" alt="x"/>there</p>`,
		"Should represent an image")

	test(t,
		doc(p(em("emphasis"))),
		"<p><em>emphasis</em></p>",
		"Should represent simple marks")

	test(t,
		doc(p("one", strong("two", em("three")), em("four"), "five")),
		"<p>one<strong>two<em>three</em></strong><em>four</em>five</p>",
		"Should join styles")

	test(t,
		doc(p("a ", a("big link"), " after")),
		`<p>a <a href="foo">big link</a> after</p>`,
		"Can represent links")

	test(t,
		doc(ul(li(p("one")), li(p("two")), li(p("three", strong("!")))), p("after")),
		"<ul><li><p>one</p></li><li><p>two</p></li><li><p>three<strong>!</strong></p></li></ul><p>after</p>",
		"Should represent an unordered list")

	test(t,
		doc(ol(li(p("one")), li(p("two")), li(p("three", strong("!")))), p("after")),
		"<ol><li><p>one</p></li><li><p>two</p></li><li><p>three<strong>!</strong></p></li></ol><p>after</p>",
		"Should represent an ordered list")

	test(t,
		doc(blockquote(p("hello"), p("bye"))),
		"<blockquote><p>hello</p><p>bye</p></blockquote>",
		"Should represent a blockquote")

	test(t,
		doc(blockquote(blockquote(blockquote(p("he said"))), p("i said"))),
		"<blockquote><blockquote><blockquote><p>he said</p></blockquote></blockquote><p>i said</p></blockquote>",
		"Should represent a nested blockquote")

	test(t,
		doc(h1("one"), h2("two"), p("text")),
		"<h1>one</h1><h2>two</h2><p>text</p>",
		"Should represent headings")

	test(t,
		doc(p("text and ", code("code that is ", em("emphasized"), "..."))),
		"<p>text and <code>code that is </code><em><code>emphasized</code></em><code>...</code></p>",
		"Should represent inline code")

	test(t,
		doc(pre("foo\nbar")),
		"<pre><code>foo\nbar</code></pre>",
		"Should represent a code block")

	test(t,
		doc(p("one"), hr(), p("two")),
		"<p>one</p><hr/><p>two</p>",
		"Should represent a horizontal rule")

	test(t,
		doc(p(checked(), label("Buy milk")), p(box(), label("Sell milk"))),
		`<p><input type="checkbox" contenteditable="false" checked=""/><span class="checkbox-label">Buy milk</span></p>`+
			`<p><input type="checkbox" contenteditable="false"/><span class="checkbox-label">Sell milk</span></p>`,
		"Should represent checkboxes")

	test(t,
		doc(table(tr(th("a"), th("b")), tr(td("c"), td(strong("d"))))),
		"<table><tr><th>a</th><th>b</th></tr><tr><td>c</td><td><strong>d</strong></td></tr></table>",
		"Should represent a table")

	test(t,
		doc(p(Attrs{"align": "center"}, "x")),
		`<p class="text-center" style="text-align: center">x</p>`,
		"Should represent alignment as a class and a style")

	test(t,
		doc(h2(Attrs{"align": "justify", "class": "note", "style": "color: red"}, "x")),
		`<h2 class="note text-justify" style="color: red; text-align: justify">x</h2>`,
		"Should keep other classes and styles")

	test(t,
		doc(p(builder.U("under"), builder.S("struck"), hl("marked"))),
		`<p><u>under</u><s>struck</s><mark class="highlight" style="background-color: #fef08a; border-radius: 2px">marked</mark></p>`,
		"Should represent the extra marks")

	test(t,
		doc(ol(li(Attrs{"index": 1}, p("one")), li(Attrs{"index": 2}, p("two")))),
		`<ol><li data-index="1"><p>one</p></li><li data-index="2"><p>two</p></li></ol>`,
		"Should represent item indexes")
}

func TestDOMParser(t *testing.T) {
	parse := func(src string, expect builder.NodeWithTag) {
		actual, err := parser.Parse(src)
		if assert.NoError(t, err, src) {
			assert.True(t, actual.Eq(expect.Node), "%s: %s != %s", src, actual.String(), expect.String())
		}
	}

	// creates an empty paragraph for empty input
	parse("", doc(p()))

	// wraps stray text in a paragraph
	parse("hello", doc(p("hello")))

	// reads bold and italic alternatives
	parse("<p>hello <b>world</b> and <i>you</i></p>", doc(p("hello ", strong("world"), " and ", em("you"))))

	// reads styled spans
	parse(`<p><span style="font-weight: bold">b</span><span style="text-decoration: underline">u</span></p>`,
		doc(p(strong("b"), builder.U("u"))))

	// collapses whitespace
	parse("<p>  a \n   b  </p>", doc(p("a b")))

	// keeps whitespace in code blocks
	parse("<pre>  x\n  y</pre>", doc(pre("  x\n  y")))

	// turns divs into paragraphs
	parse("<div>one</div><div>two</div>", doc(p("one"), p("two")))

	// unwraps divs holding blocks
	parse("<div><p>one</p><p>two</p></div>", doc(p("one"), p("two")))

	// drops scripts and styles
	parse("<script>alert(1)</script><style>p {}</style><p>x</p>", doc(p("x")))

	// reads nested lists
	parse("<ul><li>one</li><li>two<ul><li>inner</li></ul></li></ul>",
		doc(ul(li(p("one")), li(p("two"), ul(li(p("inner")))))))

	// wraps list items outside of a list
	parse("<li>x</li>", doc(ul(li(p("x")))))

	// adds a paragraph before a nested list
	parse("<ul><li><ul><li>x</li></ul></li></ul>", doc(ul(li(p(), ul(li(p("x")))))))

	// reads tables through tbody
	parse("<table><thead><tr><th>h</th></tr></thead><tbody><tr><td>c</td></tr></tbody></table>",
		doc(table(tr(th("h")), tr(td("c")))))

	// flattens blocks in cells
	parse("<table><tr><td><p>a</p></td></tr></table>", doc(table(tr(td("a")))))

	// fills an empty table cell
	parse("<table><tr><td></td></tr></table>", doc(table(tr(td()))))

	// reads alignment from the style and drops the class
	parse(`<p style="text-align: right; color: red" class="text-right" onclick="x()">x</p>`,
		doc(p(Attrs{"align": "right", "style": "color: red"}, "x")))

	// reads alignment from the class
	parse(`<h2 class="text-center foo">T</h2>`, doc(h2(Attrs{"align": "center", "class": "foo"}, "T")))

	// reads checkboxes
	parse(`<p><input type="checkbox" checked=""/><span class="checkbox-label">Buy milk</span></p>`,
		doc(p(checked(), label("Buy milk"))))

	// ignores images without source
	parse(`<p>a<img alt="x">b</p>`, doc(p("ab")))

	// drops marks in code blocks
	parse("<pre><code>a<b>b</b></code></pre>", doc(pre("ab")))

	// reads links
	parse(`<p><a href="foo">x</a></p>`, doc(p(a("x"))))
}

func TestDOMParserFragments(t *testing.T) {
	blocks, err := parser.ParseBlocks("<ul><li>a</li></ul>")
	require.NoError(t, err)
	assert.True(t, blocks.Eq(doc(ul(li(p("a")))).Content), blocks.String())

	blocks, err = parser.ParseBlocks("")
	require.NoError(t, err)
	assert.Equal(t, 0, blocks.Size)

	inline, err := parser.ParseInline("<p>one <b>two</b></p><p>three</p>", nil)
	require.NoError(t, err)
	assert.True(t, inline.Eq(p("one ", strong("two"), "three").Content), inline.String())
}
