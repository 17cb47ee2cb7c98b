package transform_test

import (
	"testing"

	"github.com/shodgson/notedoc/model"
	. "github.com/shodgson/notedoc/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform(t *testing.T) {
	start := doc(p("hello"), p("world"))
	tr := New(start.Node)
	assert.False(t, tr.DocChanged())

	require.NoError(t, tr.InsertText(6, "!", nil))
	require.NoError(t, tr.AddMark(1, 3, schema.Mark("strong")))
	require.NoError(t, tr.Delete(9, 10))
	assert.True(t, tr.DocChanged())
	assert.Len(t, tr.Steps, 3)
	assert.True(t, tr.Doc.Eq(doc(p(strong("he"), "llo!"), p("orld")).Node), tr.Doc.String())
	assert.Same(t, start.Node, tr.Before())

	// positions after the insertion move
	assert.Equal(t, 10, tr.Mapping.Map(10))
	assert.Equal(t, 3, tr.Mapping.Map(3))

	// a failing step leaves the document alone
	before := tr.Doc
	err := tr.Replace(2, 9, nil)
	require.Error(t, err)
	assert.IsType(t, &StepError{}, err)
	assert.Same(t, before, tr.Doc)
	assert.Len(t, tr.Steps, 3)
}

func TestTransformNoops(t *testing.T) {
	tr := New(doc(p(em("x"))).Node)
	require.NoError(t, tr.Replace(1, 1, nil))
	require.NoError(t, tr.InsertText(1, "", nil))
	require.NoError(t, tr.AddMark(1, 2, schema.Mark("em")))
	require.NoError(t, tr.AddMark(1, 1, schema.Mark("strong")))
	require.NoError(t, tr.RemoveMark(1, 2, schema.Mark("strong")))
	assert.False(t, tr.DocChanged())
}

func TestTransformRemoveMarkType(t *testing.T) {
	tr := New(doc(p(a("one"), " ", a(model.Attrs{"href": "bar"}, "two"))).Node)
	linkType, err := schema.MarkType("link")
	require.NoError(t, err)
	require.NoError(t, tr.RemoveMarkType(1, 8, linkType))
	assert.Len(t, tr.Steps, 2)
	assert.True(t, tr.Doc.Eq(doc(p("one two")).Node), tr.Doc.String())
}

func TestTransformNodes(t *testing.T) {
	tr := New(doc(p(model.Attrs{"align": "center"}, "title"), p("body")).Node)
	heading, err := schema.NodeType("heading")
	require.NoError(t, err)

	require.NoError(t, tr.SetNodeType(0, heading, model.Attrs{"level": 2}))
	assert.True(t, tr.Doc.Eq(doc(h2(model.Attrs{"align": "center"}, "title"), p("body")).Node), tr.Doc.String())

	require.NoError(t, tr.SetNodeAttrs(0, model.Attrs{"align": nil}))
	assert.True(t, tr.Doc.Eq(doc(h2("title"), p("body")).Node), tr.Doc.String())

	// attributes that are required can not be removed
	withImage := New(doc(p(img())).Node)
	assert.Error(t, withImage.SetNodeAttrs(1, model.Attrs{"src": nil}))

	// text nodes have no attributes
	assert.Error(t, tr.SetNodeAttrs(1, model.Attrs{"a": "b"}))
	assert.Error(t, tr.SetNodeType(2, heading, nil))

	require.NoError(t, tr.Insert(7, ul(li(p("item"))).Node))
	assert.True(t, tr.Doc.Eq(doc(h2("title"), ul(li(p("item"))), p("body")).Node), tr.Doc.String())
}
