package transform_test

import (
	"testing"

	"github.com/shodgson/notedoc/model"
	. "github.com/shodgson/notedoc/transform"
	"github.com/shodgson/notedoc/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMarkStep(t *testing.T) {
	add := func(d builder.NodeWithTag, mark *model.Mark, expect builder.NodeWithTag) {
		result := NewAddMarkStep(d.Tag["a"], d.Tag["b"], mark).Apply(d.Node)
		require.Empty(t, result.Failed)
		assert.True(t, result.Doc.Eq(expect.Node), "%s != %s", result.Doc.String(), expect.String())
	}

	// splits a text run
	add(doc(p("he<a>ll<b>o")), schema.Mark("em"),
		doc(p("he", em("ll"), "o")))

	// joins with an existing run
	add(doc(p(em("he"), "<a>ll<b>o")), schema.Mark("em"),
		doc(p(em("hell"), "o")))

	// spans several blocks
	add(doc(p("o<a>ne"), ul(li(p("two"))), p("thr<b>ee")), schema.Mark("strong"),
		doc(p("o", strong("ne")), ul(li(p(strong("two")))), p(strong("thr"), "ee")))

	// goes into table cells
	add(doc(table(tr(td("<a>a"), td("b<b>")))), schema.Mark("em"),
		doc(table(tr(td(em("a")), td(em("b"))))))

	// skips code blocks
	add(doc(p("<a>a"), pre("code"), p("b<b>")), schema.Mark("em"),
		doc(p(em("a")), pre("code"), p(em("b"))))

	// replaces a link with other attributes
	add(doc(p(a("<a>link<b>"))), schema.Mark("link", model.Attrs{"href": "bar"}),
		doc(p(a(model.Attrs{"href": "bar"}, "link"))))

	// marks inline leaves
	add(doc(p("<a>x", img(), "<b>")), schema.Mark("em"),
		doc(p(em("x", img()))))
}

func TestRemoveMarkStep(t *testing.T) {
	remove := func(d builder.NodeWithTag, mark *model.Mark, expect builder.NodeWithTag) {
		result := NewRemoveMarkStep(d.Tag["a"], d.Tag["b"], mark).Apply(d.Node)
		require.Empty(t, result.Failed)
		assert.True(t, result.Doc.Eq(expect.Node), "%s != %s", result.Doc.String(), expect.String())
	}

	// cuts a gap
	remove(doc(p(em("he<a>ll<b>o"))), schema.Mark("em"),
		doc(p(em("he"), "ll", em("o"))))

	// leaves other marks
	remove(doc(p(em("<a>a", strong("b<b>")))), schema.Mark("em"),
		doc(p("a", strong("b"))))

	// works across blocks
	remove(doc(p(em("o<a>ne")), p(em("tw<b>o"))), schema.Mark("em"),
		doc(p(em("o"), "ne"), p("tw", em("o"))))

	// fails on invalid ranges
	result := NewRemoveMarkStep(0, 100, schema.Mark("em")).Apply(doc(p("x")).Node)
	assert.NotEmpty(t, result.Failed)
}
