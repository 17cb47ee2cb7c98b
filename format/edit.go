package format

import (
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/transform"
)

// Delete removes the selected content and returns the collapsed selection.
// Two textblocks of the same parent touched by the selection are joined.
// Across table cells, only the text of the cells is removed.
func Delete(tr *transform.Transform, sel Selection) (Selection, error) {
	sel = sel.Ordered()
	pos, err := deleteRange(tr, sel.From, sel.To)
	if err != nil {
		return sel, err
	}
	return Cursor(nearText(tr.Doc, pos)), nil
}

func deleteRange(tr *transform.Transform, from, to int) (int, error) {
	if from == to {
		return from, nil
	}
	doc := tr.Doc
	rf, err := doc.Resolve(from)
	if err != nil {
		return from, err
	}
	rt, err := doc.Resolve(to)
	if err != nil {
		return from, err
	}
	if rf.SameParent(rt) {
		err := tr.Delete(from, to)
		if err == nil || rf.Parent().IsTextblock() {
			return from, err
		}
		// Whole blocks removed from a container that can not be empty.
		empty, perr := doc.Type.Schema.Node("paragraph", nil, nil, nil)
		if perr != nil {
			return from, err
		}
		if err := tr.ReplaceWith(from, to, empty); err != nil {
			return from, err
		}
		return from + 1, nil
	}

	d := rf.SharedDepth(to)
	if rf.Depth <= d || rt.Depth <= d || rf.Node(d).Type.Is("table", "table_row") {
		blocks, err := textblocks(doc, Selection{From: from, To: to})
		if err != nil {
			return from, err
		}
		// Last first, so that the positions of the earlier blocks hold.
		for i := len(blocks) - 1; i >= 0; i-- {
			start := blocks[i].pos + 1
			end := start + blocks[i].node.Content.Size
			if err := tr.Delete(maxInt(from, start), minInt(to, end)); err != nil {
				return from, err
			}
		}
		return from, nil
	}

	start, err := rf.Before(d + 1)
	if err != nil {
		return from, err
	}
	lastStart, err := rt.Before(d + 1)
	if err != nil {
		return from, err
	}
	end, err := rt.After(d + 1)
	if err != nil {
		return from, err
	}
	cutLeft := rf.Node(d+1).Cut(0, from-start-1)
	left := repairCut(cutLeft)
	right := repairCut(rt.Node(d+1).Cut(to - lastStart - 1))
	var nodes []*model.Node
	switch {
	case left != nil && right != nil && left.IsTextblock() && right.IsTextblock() &&
		left.Type.ValidContent(left.Content.Append(right.Content)):
		nodes = []*model.Node{left.Copy(left.Content.Append(right.Content))}
	default:
		for _, n := range []*model.Node{left, right} {
			if n != nil {
				nodes = append(nodes, n)
			}
		}
	}

	parent, index := rf.Node(d), rf.Index(d)
	content := parent.Content.CutByIndex(0, index).
		Append(model.FragmentFromArray(nodes)).
		Append(parent.Content.CutByIndex(rt.IndexAfter(d), parent.ChildCount()))
	if !parent.Type.ValidContent(content) {
		// The range was all the content of a container that can not be empty.
		fill, err := doc.Type.Schema.Node("paragraph", nil, nil, nil)
		if err != nil {
			return from, err
		}
		nodes = append(nodes, fill)
	}
	if err := tr.ReplaceWith(start, end, nodes...); err != nil {
		return from, err
	}
	if left != cutLeft {
		return start, nil
	}
	return from, nil
}

// repairCut fixes a block cut at a selection boundary. Containers left
// empty are dropped, and nil is returned when nothing is left. A container
// that lost its required leading block gets an empty one of the default
// type.
func repairCut(node *model.Node) *model.Node {
	if node.IsTextblock() || node.IsLeaf() {
		return node
	}
	children := make([]*model.Node, 0, node.ChildCount())
	changed := false
	node.ForEach(func(child *model.Node, _, _ int) {
		fixed := repairCut(child)
		changed = changed || fixed != child
		if fixed != nil {
			children = append(children, fixed)
		}
	})
	if len(children) == 0 {
		return nil
	}
	content := node.Content
	if changed {
		content = model.FragmentFromArray(children)
	}
	if node.Type.ValidContent(content) {
		if !changed {
			return node
		}
		return node.Copy(content)
	}
	if def := node.Type.ContentMatch.DefaultType(); def != nil {
		if filler, err := def.Create(nil, nil, nil); err == nil {
			if filled := model.FragmentFromArray([]*model.Node{filler}).Append(content); node.Type.ValidContent(filled) {
				return node.Copy(filled)
			}
		}
	}
	return node.Copy(content)
}

// DeleteBackward deletes the selection, or the grapheme cluster before the
// cursor. At the start of a textblock, the textblock is joined to a
// preceding textblock, or a preceding leaf block is removed. The first
// textblock of a blockquote or a list item is lifted out of it instead.
func DeleteBackward(tr *transform.Transform, sel Selection) (Selection, error) {
	sel = sel.Ordered()
	if !sel.Empty() {
		return Delete(tr, sel)
	}
	r, err := tr.Doc.Resolve(sel.From)
	if err != nil {
		return sel, err
	}
	if r.Depth == 0 || !r.Parent().IsTextblock() {
		return sel, nil
	}
	if prev := prevBoundary(r); prev >= 0 {
		return Cursor(prev), tr.Delete(prev, sel.From)
	}

	container, index := r.Node(r.Depth-1), r.Index(r.Depth-1)
	if index == 0 {
		return lift(tr, sel, r)
	}
	current := r.Parent()
	pos, err := r.Before()
	if err != nil {
		return sel, err
	}
	prev := container.Content.Content[index-1]
	prevPos := pos - prev.NodeSize()
	switch {
	case prev.IsTextblock():
		joined := prev.Content.Append(current.Content)
		if !prev.Type.ValidContent(joined) {
			return sel, nil
		}
		cursor := prevPos + 1 + prev.Content.Size
		return Cursor(cursor), tr.ReplaceWith(prevPos, pos+current.NodeSize(), prev.Copy(joined))
	case prev.IsLeaf():
		return Cursor(sel.From - prev.NodeSize()), tr.Delete(prevPos, pos)
	}
	return sel, nil
}

// lift moves the textblock at r, the first child of a blockquote or of a
// list item, out of its container. What follows it in the blockquote stays
// quoted; the rest of the list item follows it at the level of the list, and
// the list is split around it.
func lift(tr *transform.Transform, sel Selection, r *model.ResolvedPos) (Selection, error) {
	depth := r.Depth - 1
	container, current := r.Node(depth), r.Parent()
	rest := container.Content.CutByIndex(1, container.ChildCount())

	var target int
	var nodes []*model.Node
	switch {
	case container.Type.Name == "blockquote":
		target = depth
		nodes = append(nodes, current)
		if rest.Size > 0 {
			nodes = append(nodes, container.Copy(rest))
		}
	case container.Type.Name == "list_item" && depth >= 2:
		target = depth - 1
		list, item := r.Node(target), r.Index(target)
		if item > 0 {
			nodes = append(nodes, list.Copy(list.Content.CutByIndex(0, item)))
		}
		nodes = append(nodes, current)
		nodes = append(nodes, rest.Content...)
		if item+1 < list.ChildCount() {
			nodes = append(nodes, list.Copy(list.Content.CutByIndex(item+1, list.ChildCount())))
		}
	default:
		return sel, nil
	}
	if target < 1 {
		return sel, nil
	}

	parent, index := r.Node(target-1), r.Index(target-1)
	content := parent.Content.CutByIndex(0, index).
		Append(model.FragmentFromArray(nodes)).
		Append(parent.Content.CutByIndex(index+1, parent.ChildCount()))
	if !parent.Type.ValidContent(content) {
		return sel, nil
	}
	start, err := r.Before(target)
	if err != nil {
		return sel, err
	}
	end, err := r.After(target)
	if err != nil {
		return sel, err
	}
	cursor := start + 1
	if nodes[0] != current {
		cursor += nodes[0].NodeSize()
	}
	return Cursor(cursor), tr.ReplaceWith(start, end, nodes...)
}

// InsertText replaces the selection with text carrying the marks active at
// the insertion point.
func InsertText(tr *transform.Transform, sel Selection, text string) (Selection, error) {
	sel = sel.Ordered()
	pos, err := deleteRange(tr, sel.From, sel.To)
	if err != nil {
		return sel, err
	}
	pos = nearText(tr.Doc, pos)
	if text == "" {
		return Cursor(pos), nil
	}
	r, err := textblockAt(tr.Doc, pos)
	if err != nil {
		return sel, err
	}
	marks := r.Parent().Type.AllowedMarks(r.Marks())
	if err := tr.InsertText(pos, text, marks); err != nil {
		return sel, err
	}
	return Cursor(pos + utf8.RuneCountInString(text)), nil
}

// InsertInline replaces the selection with an inline node, an image for
// example.
func InsertInline(tr *transform.Transform, sel Selection, node *model.Node) (Selection, error) {
	if !node.IsInline() {
		return sel, errors.Errorf("%s is not an inline node", node.Type.Name)
	}
	return InsertInlineContent(tr, sel, model.FragmentFromArray([]*model.Node{node}))
}

// InsertInlineContent replaces the selection with inline content, keeping
// the marks the content carries.
func InsertInlineContent(tr *transform.Transform, sel Selection, content *model.Fragment) (Selection, error) {
	sel = sel.Ordered()
	pos, err := deleteRange(tr, sel.From, sel.To)
	if err != nil {
		return sel, err
	}
	pos = nearText(tr.Doc, pos)
	if content.Size == 0 {
		return Cursor(pos), nil
	}
	if _, err := textblockAt(tr.Doc, pos); err != nil {
		return sel, err
	}
	if err := tr.Replace(pos, pos, content); err != nil {
		return sel, err
	}
	return Cursor(pos + content.Size), nil
}

// InsertBlocks replaces the selection with block content. The textblock
// holding the cursor is split around the blocks, and the cursor placed at the
// start of its second half. Where the blocks can not stand, they are inserted
// after the top-level block holding the cursor.
func InsertBlocks(tr *transform.Transform, sel Selection, content *model.Fragment) (Selection, error) {
	sel = sel.Ordered()
	if content.Size == 0 {
		return sel, nil
	}
	pos, err := deleteRange(tr, sel.From, sel.To)
	if err != nil {
		return sel, err
	}
	r, err := tr.Doc.Resolve(pos)
	if err != nil {
		return sel, err
	}
	if r.Depth == 0 || !r.Parent().IsTextblock() {
		return Cursor(pos + content.Size), tr.Replace(pos, pos, content)
	}

	current := r.Parent()
	blockPos, err := r.Before()
	if err != nil {
		return sel, err
	}
	before := current.Cut(0, r.ParentOffset)
	after := current.Cut(r.ParentOffset)
	container, index := r.Node(r.Depth-1), r.Index(r.Depth-1)
	head := container.Content.CutByIndex(0, index)
	tail := container.Content.CutByIndex(index+1, container.ChildCount())

	var candidates [][]*model.Node
	if before.Content.Size == 0 {
		candidates = append(candidates, append(append([]*model.Node{}, content.Content...), after))
	}
	candidates = append(candidates, append(append([]*model.Node{before}, content.Content...), after))
	for _, nodes := range candidates {
		if !container.Type.ValidContent(head.Append(model.FragmentFromArray(nodes)).Append(tail)) {
			continue
		}
		if err := tr.ReplaceWith(blockPos, blockPos+current.NodeSize(), nodes...); err != nil {
			return sel, err
		}
		cursor := blockPos + content.Size + 1
		if nodes[0] == before {
			cursor += before.NodeSize()
		}
		return Cursor(cursor), nil
	}

	top, err := r.After(1)
	if err != nil {
		return sel, err
	}
	return Cursor(pos), tr.Replace(top, top, content)
}

// ToggleCheckbox flips the checked state of the checkbox at pos.
func ToggleCheckbox(tr *transform.Transform, pos int) error {
	node := tr.Doc.NodeAt(pos)
	if node == nil || node.Type.Name != "checkbox" {
		return errors.Errorf("no checkbox at position %d", pos)
	}
	return tr.SetNodeAttrs(pos, model.Attrs{"checked": !node.AttrBool("checked")})
}

// NewTable creates an empty table of rows by cols data cells.
func NewTable(schema *model.Schema, rows, cols int) (*model.Node, error) {
	if rows < 1 || cols < 1 {
		return nil, errors.Errorf("invalid table size %dx%d", rows, cols)
	}
	tableType, err := schema.NodeType("table")
	if err != nil {
		return nil, err
	}
	rowType, err := schema.NodeType("table_row")
	if err != nil {
		return nil, err
	}
	cellType, err := schema.NodeType("table_cell")
	if err != nil {
		return nil, err
	}
	cell, err := cellType.Create(nil, nil, nil)
	if err != nil {
		return nil, err
	}
	cells := make([]*model.Node, cols)
	for i := range cells {
		cells[i] = cell
	}
	row, err := rowType.CreateChecked(nil, cells, nil)
	if err != nil {
		return nil, err
	}
	rowNodes := make([]*model.Node, rows)
	for i := range rowNodes {
		rowNodes[i] = row
	}
	return tableType.CreateChecked(nil, rowNodes, nil)
}

func textblockAt(doc *model.Node, pos int) (*model.ResolvedPos, error) {
	r, err := doc.Resolve(pos)
	if err != nil {
		return nil, err
	}
	if r.Depth == 0 || !r.Parent().IsTextblock() {
		return nil, errors.Errorf("no textblock at position %d", pos)
	}
	return r, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
