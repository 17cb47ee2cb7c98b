package notion_test

import (
	"testing"

	gonotion "github.com/dstotijn/go-notion"
	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/notion"
	"github.com/shodgson/notedoc/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	doc    = builder.Doc
	p      = builder.P
	h1     = builder.H1
	h3     = builder.H3
	ul     = builder.Ul
	ol     = builder.Ol
	li     = builder.Li
	br     = builder.Br
	pre    = builder.Pre
	em     = builder.Em
	strong = builder.Strong
	a      = builder.A
	hl     = builder.Hl
	table  = builder.Table
	tr     = builder.Tr
	td     = builder.Td
)

func texts(rts []gonotion.RichText) []string {
	result := []string{}
	for _, rt := range rts {
		result = append(result, rt.PlainText)
	}
	return result
}

func TestExportParagraphs(t *testing.T) {
	blocks := notion.Export(doc(p("hello"), p("hi", br(), "there")).Node)
	require.Len(t, blocks, 2)
	assert.Equal(t, gonotion.BlockTypeParagraph, blocks[0].Type)
	assert.Equal(t, []string{"hello"}, texts(blocks[0].Paragraph.Text))
	assert.Equal(t, []string{"hi", "\n", "there"}, texts(blocks[1].Paragraph.Text))
}

func TestExportAnnotations(t *testing.T) {
	blocks := notion.Export(doc(p("one ", strong("two"), em("three"), hl("four"), a("five"))).Node)
	require.Len(t, blocks, 1)
	text := blocks[0].Paragraph.Text
	require.Len(t, text, 5)
	assert.Nil(t, text[0].Annotations)
	assert.True(t, text[1].Annotations.Bold)
	assert.True(t, text[2].Annotations.Italic)
	assert.Equal(t, gonotion.Color("yellow_background"), text[3].Annotations.Color)
	require.NotNil(t, text[4].Text.Link)
	assert.Equal(t, "foo", text[4].Text.Link.URL)
}

func TestExportHeadings(t *testing.T) {
	blocks := notion.Export(doc(h1("Title"), h3("Small"), builder.H2(model.Attrs{"level": 6}, "Tiny")).Node)
	require.Len(t, blocks, 3)
	assert.Equal(t, gonotion.BlockTypeHeading1, blocks[0].Type)
	assert.Equal(t, []string{"Title"}, texts(blocks[0].Heading1.Text))
	assert.Equal(t, gonotion.BlockTypeHeading3, blocks[1].Type)
	assert.Equal(t, gonotion.BlockTypeHeading3, blocks[2].Type)
}

func TestExportLists(t *testing.T) {
	blocks := notion.Export(doc(
		ul(li(p("one"), ol(li(p("inner")))), li(p("two"))),
	).Node)
	require.Len(t, blocks, 2)
	assert.Equal(t, gonotion.BlockTypeBulletedListItem, blocks[0].Type)
	assert.Equal(t, []string{"one"}, texts(blocks[0].BulletedListItem.Text))
	require.Len(t, blocks[0].BulletedListItem.Children, 1)
	inner := blocks[0].BulletedListItem.Children[0]
	assert.Equal(t, gonotion.BlockTypeNumberedListItem, inner.Type)
	assert.Equal(t, []string{"inner"}, texts(inner.NumberedListItem.Text))
}

func TestExportTasks(t *testing.T) {
	blocks := notion.Export(doc(
		p(builder.Checked(), builder.Label("done")),
		p(builder.Box(), builder.Label("todo")),
	).Node)
	require.Len(t, blocks, 2)
	assert.Equal(t, gonotion.BlockTypeToDo, blocks[0].Type)
	assert.True(t, *blocks[0].ToDo.Checked)
	assert.Equal(t, []string{"done"}, texts(blocks[0].ToDo.Text))
	assert.False(t, *blocks[1].ToDo.Checked)
}

func TestExportOther(t *testing.T) {
	blocks := notion.Export(doc(
		pre("x := 1"),
		builder.Hr(),
		table(tr(td("a"), td("b"))),
	).Node)
	require.Len(t, blocks, 2)
	assert.True(t, blocks[0].Paragraph.Text[0].Annotations.Code)
	assert.Equal(t, []string{"a | b"}, texts(blocks[1].Paragraph.Text))
}
