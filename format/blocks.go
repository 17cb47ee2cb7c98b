package format

import (
	"github.com/shodgson/notedoc/model"
)

// block is a node found in a document, with its position and its place in
// its parent.
type block struct {
	pos    int
	node   *model.Node
	parent *model.Node
	index  int
}

// textblocks returns the textblocks touched by the selection, in document
// order. An empty selection touches the textblock holding it.
func textblocks(doc *model.Node, sel Selection) ([]block, error) {
	sel = sel.Ordered()
	if sel.Empty() {
		r, err := doc.Resolve(nearText(doc, sel.From))
		if err != nil {
			return nil, err
		}
		if r.Depth == 0 || !r.Parent().IsTextblock() {
			return nil, nil
		}
		pos, err := r.Before()
		if err != nil {
			return nil, err
		}
		return []block{{pos: pos, node: r.Parent(), parent: r.Node(r.Depth - 1), index: r.Index(r.Depth - 1)}}, nil
	}
	if sel.From < 0 || sel.To > doc.Content.Size {
		return nil, outOfRange(sel)
	}
	var result []block
	doc.NodesBetween(sel.From, sel.To, func(node *model.Node, pos int, parent *model.Node, index int) bool {
		if node.IsTextblock() {
			result = append(result, block{pos: pos, node: node, parent: parent, index: index})
			return false
		}
		return !node.IsInline()
	})
	return result, nil
}

func isList(node *model.Node) bool {
	return node.Type.Is("bullet_list", "ordered_list")
}

// childOffset returns the offset of the child at index in the content of
// node.
func childOffset(node *model.Node, index int) int {
	offset := 0
	for i := 0; i < index && i < node.ChildCount(); i++ {
		offset += node.Content.Content[i].NodeSize()
	}
	return offset
}

// shift moves the positions between from and to by the given amount.
type shift struct {
	from, to, by int
}

// remap maps pos through the first shift covering it, or returns def.
func remap(shifts []shift, pos, def int) int {
	for _, s := range shifts {
		if pos >= s.from && pos <= s.to {
			return pos + s.by
		}
	}
	return def
}
