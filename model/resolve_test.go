package model_test

import (
	"testing"

	. "github.com/shodgson/notedoc/model"
	"github.com/stretchr/testify/assert"
)

type res struct {
	node  *Node
	start int
	end   int
}

func TestNodeResolve(t *testing.T) {
	testDoc := doc(p("ab"), blockquote(p(em("cd"), "ef")))
	rdoc := res{node: testDoc.Node, start: 0, end: 12}
	child, err := testDoc.Child(0)
	assert.NoError(t, err)
	p1 := res{node: child, start: 1, end: 3}
	child, err = testDoc.Child(1)
	assert.NoError(t, err)
	blk := res{node: child, start: 5, end: 11}
	child, err = blk.node.Child(0)
	assert.NoError(t, err)
	p2 := res{node: child, start: 6, end: 10}

	// It should reflect the document structure
	expected := [][]interface{}{
		{rdoc, 0, nil, p1.node},
		{rdoc, p1, 0, nil, "ab"},
		{rdoc, p1, 1, "a", "b"},
		{rdoc, p1, 2, "ab", nil},
		{rdoc, 4, p1.node, blk.node},
		{rdoc, blk, 0, nil, p2.node},
		{rdoc, blk, p2, 0, nil, "cd"},
		{rdoc, blk, p2, 1, "c", "d"},
		{rdoc, blk, p2, 2, "cd", "ef"},
		{rdoc, blk, p2, 3, "e", "f"},
		{rdoc, blk, p2, 4, "ef", nil},
		{rdoc, blk, 6, p2.node, nil},
		{rdoc, 12, blk.node, nil},
	}

	for pos := 0; pos <= testDoc.Content.Size; pos++ {
		dpos, err := testDoc.Resolve(pos)
		assert.NoError(t, err)
		exp := expected[pos]
		assert.Equal(t, dpos.Depth, len(exp)-4)
		for i := 0; i < len(exp)-3; i++ {
			ex := exp[i].(res)
			assert.True(t, dpos.Node(i).Eq(ex.node))
			assert.Equal(t, dpos.Start(i), ex.start)
			assert.Equal(t, dpos.End(i), ex.end)
			if i > 0 {
				b, err := dpos.Before(i)
				assert.NoError(t, err)
				assert.Equal(t, b, ex.start-1)
				a, err := dpos.After(i)
				assert.NoError(t, err)
				assert.Equal(t, a, ex.end+1)
			}
		}
		assert.Equal(t, dpos.ParentOffset, exp[len(exp)-3])
		before := dpos.NodeBefore()
		eBefore := exp[len(exp)-2]
		if str, ok := eBefore.(string); ok {
			assert.Equal(t, before.TextContent(), str)
		} else if eBefore == nil {
			assert.Nil(t, before)
		} else {
			assert.Equal(t, before, eBefore)
		}
		after := dpos.NodeAfter()
		eAfter := exp[len(exp)-1]
		if str, ok := eAfter.(string); ok {
			assert.Equal(t, after.TextContent(), str)
		} else if eAfter == nil {
			assert.Nil(t, after)
		} else {
			assert.Equal(t, after, eAfter)
		}
	}
}

func TestResolveErrors(t *testing.T) {
	d := doc(p("ab"))

	_, err := d.Resolve(-1)
	assert.Error(t, err)

	_, err = d.Resolve(5)
	assert.Error(t, err)

	pos, err := d.Resolve(2)
	assert.NoError(t, err)
	_, err = pos.Before(0)
	assert.Error(t, err, "there is no position before the top level")
}

func TestResolvedPosAncestors(t *testing.T) {
	d := doc(blockquote(ul(li(p("a<a>b")))), p("<b>c"))
	pos, err := d.Resolve(d.Tag["a"])
	assert.NoError(t, err)
	assert.Equal(t, 4, pos.Depth)

	depth := pos.FindAncestor(pos.Depth, func(n *Node) bool { return n.Type.Name == "bullet_list" })
	assert.Equal(t, 2, depth)
	assert.Equal(t, -1, pos.FindAncestor(pos.Depth, func(n *Node) bool { return n.Type.Name == "table" }))

	other, err := d.Resolve(d.Tag["b"])
	assert.NoError(t, err)
	assert.False(t, pos.SameParent(other))
	assert.Equal(t, 0, pos.SharedDepth(d.Tag["b"]))

	same, err := d.Resolve(d.Tag["a"] - 1)
	assert.NoError(t, err)
	assert.True(t, pos.SameParent(same))
}
