package command_test

import (
	"testing"

	"github.com/shodgson/notedoc/command"
	"github.com/shodgson/notedoc/format"
	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/normalize"
	"github.com/shodgson/notedoc/test/builder"
	"github.com/shodgson/notedoc/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	schema = builder.Schema
	doc    = builder.Doc
	p      = builder.P
	h2     = builder.H2
	ul     = builder.Ul
	ol     = builder.Ol
	li     = builder.Li
	hr     = builder.Hr
	img    = builder.Img
	table  = builder.Table
	tr     = builder.Tr
	td     = builder.Td
	box    = builder.Box
	label  = builder.Label
	strong = builder.Strong
	em     = builder.Em
	s      = builder.S
	a      = builder.A
	hl     = builder.Hl
)

const (
	bulletStyle  = "list-style-type: disc; padding-left: 1.5em; margin: 0.5em 0"
	orderedStyle = "list-style-type: decimal; counter-reset: item; padding-left: 1.5em; margin: 0.5em 0"
	h2Style      = "font-size: 1.5em; font-weight: bold; margin: 0.83em 0"
)

func newDispatcher(t *testing.T) *command.Dispatcher {
	return command.NewDispatcher(schema, normalize.New(normalize.DefaultConfig()),
		command.WithLogger(zaptest.NewLogger(t)))
}

func sel(d builder.NodeWithTag) format.Selection {
	from := d.Tag["a"]
	to, ok := d.Tag["b"]
	if !ok {
		to = from
	}
	return format.Selection{From: from, To: to}
}

func TestExecute(t *testing.T) {
	dispatcher := newDispatcher(t)
	check := func(d builder.NodeWithTag, name, value string, expected builder.NodeWithTag) format.Selection {
		t.Helper()
		tr, out, err := dispatcher.Execute(d.Node, sel(d), name, value)
		require.NoError(t, err)
		assert.True(t, tr.Doc.Eq(expected.Node), "%s: %s != %s", name, tr.Doc.String(), expected.String())
		return out
	}

	check(doc(p("<a>one<b> two")), "bold", "", doc(p(strong("one"), " two")))
	check(doc(p(em("<a>one<b>"))), "italic", "", doc(p("one")))
	check(doc(p("<a>one<b>")), "strikeThrough", "", doc(p(s("one"))))
	check(doc(p("<a>x")), "formatBlock", "<h2>", doc(h2(model.Attrs{"style": h2Style}, "x")))
	check(doc(h2(model.Attrs{"style": h2Style}, "<a>x")), "formatBlock", "p", doc(p("x")))
	check(doc(p("<a>x")), "insertUnorderedList", "", doc(ul(model.Attrs{"style": bulletStyle}, li(p("x")))))
	check(doc(p("<a>x")), "insertOrderedList", "", doc(ol(model.Attrs{"style": orderedStyle}, li(p("x")))))
	check(doc(p("<a>x")), "justifyFull", "", doc(p(model.Attrs{"align": "justify"}, "x")))
	check(doc(p("<a>x<b>")), "hiliteColor", "#ff0", doc(p(hl("x"))))
	check(doc(p("<a>x<b>")), "highlight", "", doc(p(hl("x"))))
	check(doc(p("a<a>b")), "insertHorizontalRule", "", doc(p("a"), hr(), p("b")))
	check(doc(p("a<a>b")), "insertImage", "cat.png", doc(p("a", img(model.Attrs{"src": "cat.png"}), "b")))
	check(doc(p("<a>")), "insertTable", "1x2", doc(table(tr(td(), td())), p()))
	check(doc(p("a<a>b<b>c")), "insertText", "X", doc(p("aXc")))
	check(doc(p("ab<a>c")), "delete", "", doc(p("ac")))
	check(doc(p("<a>one<b>")), "createLink", "http://x", doc(p(a(model.Attrs{"href": "http://x"}, "one"))))
	check(doc(p(a("o<a>ne"))), "unlink", "", doc(p("one")))
	check(doc(p(box(), label(strong("<a>buy"), em("milk<b>")))), "removeFormat", "", doc(p(box(), label("buymilk"))))

	out := check(doc(p("a<a>b")), "insertHTML", "<b>bold</b> text", doc(p("a", strong("bold"), " textb")))
	assert.Equal(t, format.Cursor(11), out)

	out = check(doc(p("<a>")), "insertTable", "", doc(table(
		tr(td(), td(), td()),
		tr(td(), td(), td()),
		tr(td(), td(), td()),
	), p()))
	assert.Equal(t, format.Cursor(27), out)
}

func TestExecutePastedList(t *testing.T) {
	d := doc(p("a<a>b"))
	tr, _, err := newDispatcher(t).Execute(d.Node, sel(d), "insertHTML", "<ul><li>x</li><li>y</li></ul>")
	require.NoError(t, err)
	require.Equal(t, 3, tr.Doc.ChildCount())
	list := tr.Doc.MaybeChild(1)
	assert.Equal(t, "bullet_list", list.Type.Name)
	assert.Equal(t, bulletStyle, list.AttrString("style"))
	assert.Equal(t, 2, list.ChildCount())
	assert.Equal(t, "margin: 0.25em 0; display: list-item", list.FirstChild().AttrString("style"))
}

func TestExecuteClampsSelection(t *testing.T) {
	d := doc(p("one"), p("two"))
	tr, out, err := newDispatcher(t).Execute(d.Node, format.Selection{From: -3, To: 100}, "bold", "")
	require.NoError(t, err)
	assert.True(t, tr.Doc.Eq(doc(p(strong("one")), p(strong("two"))).Node), tr.Doc.String())
	assert.Equal(t, format.Selection{From: 0, To: 10}, out)
}

func TestExecuteErrors(t *testing.T) {
	dispatcher := newDispatcher(t)
	d := doc(p("<a>x"))

	tr, out, err := dispatcher.Execute(d.Node, sel(d), "blink", "")
	assert.ErrorIs(t, err, command.ErrUnknownCommand)
	assert.Contains(t, err.Error(), "blink")
	assert.Nil(t, tr)
	assert.Equal(t, sel(d), out)

	for _, c := range []struct{ name, value string }{
		{"formatBlock", "h7"},
		{"formatBlock", "div"},
		{"insertImage", ""},
		{"insertTable", "0x3"},
		{"createLink", ""},
	} {
		tr, _, err := dispatcher.Execute(d.Node, sel(d), c.name, c.value)
		assert.Error(t, err, c.name)
		assert.Nil(t, tr, c.name)
	}
}

func TestEmptyTransforms(t *testing.T) {
	dispatcher := newDispatcher(t)
	d := doc(p("o<a>ne"))
	for _, name := range []string{"bold", "highlight", "unlink", "removeFormat"} {
		tr, out, err := dispatcher.Execute(d.Node, sel(d), name, "")
		require.NoError(t, err, name)
		assert.Empty(t, tr.Steps, name)
		assert.Equal(t, sel(d), out, name)
	}
}

func TestRegister(t *testing.T) {
	dispatcher := newDispatcher(t)
	assert.True(t, dispatcher.Has("bold"))
	assert.False(t, dispatcher.Has("blink"))
	assert.Contains(t, dispatcher.Names(), "insertTable")

	dispatcher.Register("upper", func(tr *transform.Transform, sel format.Selection, value string) (format.Selection, error) {
		return format.InsertText(tr, sel, "UP")
	})
	d := doc(p("<a>x"))
	tr, _, err := dispatcher.Execute(d.Node, sel(d), "upper", "")
	require.NoError(t, err)
	assert.True(t, tr.Doc.Eq(doc(p("UPx")).Node))
}

func TestBlockLevel(t *testing.T) {
	for value, level := range map[string]int{"p": 0, "P": 0, "h1": 1, "<h2>": 2, "H6": 6, " <h3> ": 3} {
		got, err := command.BlockLevel(value)
		require.NoError(t, err, value)
		assert.Equal(t, level, got, value)
	}
	for _, value := range []string{"", "h0", "h7", "h1x", "div", "<>"} {
		_, err := command.BlockLevel(value)
		assert.Error(t, err, value)
	}
}

func TestTableSize(t *testing.T) {
	rows, cols, err := command.TableSize("")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3}, []int{rows, cols})

	rows, cols, err = command.TableSize("2X5")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5}, []int{rows, cols})

	for _, value := range []string{"x", "3", "0x1", "-1x2", "axb"} {
		_, _, err := command.TableSize(value)
		assert.Error(t, err, value)
	}
}
