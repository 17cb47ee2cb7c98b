package format

import (
	"github.com/pkg/errors"
	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/normalize"
	"github.com/shodgson/notedoc/transform"
)

// Heading turns the paragraphs and headings touched by the selection into
// headings of the given level, or into paragraphs for level 0. The canonical
// heading style of the level replaces the one of the previous level.
// Blocks that can not change type where they stand are skipped.
func Heading(tr *transform.Transform, sel Selection, level int) (Selection, error) {
	if level < 0 || level > 6 {
		return sel, errors.Errorf("invalid heading level %d", level)
	}
	schema := tr.Doc.Type.Schema
	name, attrs := "paragraph", model.Attrs{}
	if level > 0 {
		name, attrs = "heading", model.Attrs{"level": level}
	}
	typ, err := schema.NodeType(name)
	if err != nil {
		return sel, err
	}
	blocks, err := textblocks(tr.Doc, sel)
	if err != nil {
		return sel, err
	}
	for _, b := range blocks {
		if !b.node.Type.Is("paragraph", "heading") {
			continue
		}
		replacement, err := b.node.WithType(typ, attrs)
		if err != nil {
			continue
		}
		style := normalize.StripHeadingStyle(model.ParseStyle(b.node.AttrString("style")))
		replacement = normalize.SetStyle(replacement, style.Merge(normalize.HeadingStyle(level)))
		if replacement.Eq(b.node) || !b.parent.Type.ValidContent(b.parent.Content.ReplaceChild(b.index, replacement)) {
			continue
		}
		// Same size: the positions of the next blocks hold.
		if err := tr.ReplaceWith(b.pos, b.pos+b.node.NodeSize(), replacement); err != nil {
			return sel, err
		}
	}
	return sel, nil
}

// List toggles a list around the selection. Inside a list of the same kind,
// the list is unwrapped and its items become blocks of the list's parent.
// Inside a list of the other kind, the list changes kind. Otherwise the
// sibling blocks touched by the selection are wrapped in a new list, one item
// per block.
func List(tr *transform.Transform, sel Selection, ordered bool) (Selection, error) {
	sel = sel.Ordered()
	name := "bullet_list"
	if ordered {
		name = "ordered_list"
	}
	listType, err := tr.Doc.Type.Schema.NodeType(name)
	if err != nil {
		return sel, err
	}
	r, err := tr.Doc.Resolve(sel.From)
	if err != nil {
		return sel, err
	}
	if sel.To > tr.Doc.Content.Size {
		return sel, outOfRange(sel)
	}
	depth := r.SharedDepth(sel.To)
	if ld := r.FindAncestor(depth, isList); ld > 0 {
		list := r.Node(ld)
		pos, err := r.Before(ld)
		if err != nil {
			return sel, err
		}
		if list.Type == listType {
			return unwrapList(tr, sel, list, pos)
		}
		return sel, switchList(tr, list, pos, listType, ordered)
	}
	return wrapList(tr, sel, r, depth, listType, ordered)
}

func listStyle(node *model.Node, ordered bool) model.Style {
	style := model.ParseStyle(node.AttrString("style"))
	if !ordered {
		style = style.Remove("counter-reset")
	}
	return style.Merge(normalize.ListStyle(ordered))
}

func switchList(tr *transform.Transform, list *model.Node, pos int, listType *model.NodeType, ordered bool) error {
	replacement, err := list.WithType(listType, nil)
	if err != nil {
		return err
	}
	replacement = normalize.SetStyle(replacement, listStyle(list, ordered))
	return tr.ReplaceWith(pos, pos+list.NodeSize(), replacement)
}

func unwrapList(tr *transform.Transform, sel Selection, list *model.Node, pos int) (Selection, error) {
	var blocks []*model.Node
	var shifts []shift
	newOffset := 0
	list.ForEach(func(item *model.Node, offset, _ int) {
		oldStart := pos + 1 + offset + 1
		shifts = append(shifts, shift{from: oldStart, to: oldStart + item.Content.Size, by: pos + newOffset - oldStart})
		newOffset += item.Content.Size
		blocks = append(blocks, item.Content.Content...)
	})
	if err := tr.ReplaceWith(pos, pos+list.NodeSize(), blocks...); err != nil {
		return sel, err
	}
	return Selection{
		From: remap(shifts, sel.From, pos),
		To:   remap(shifts, sel.To, pos+newOffset),
	}, nil
}

func wrapList(tr *transform.Transform, sel Selection, r *model.ResolvedPos, depth int, listType *model.NodeType, ordered bool) (Selection, error) {
	schema := tr.Doc.Type.Schema
	paragraph, err := schema.NodeType("paragraph")
	if err != nil {
		return sel, err
	}
	itemType, err := schema.NodeType("list_item")
	if err != nil {
		return sel, err
	}
	rTo, err := tr.Doc.Resolve(sel.To)
	if err != nil {
		return sel, err
	}

	cd := depth
	if r.Node(cd).IsTextblock() {
		cd--
	}
	container := r.Node(cd)
	startIndex, endIndex := r.Index(cd), rTo.IndexAfter(cd)
	if endIndex <= startIndex {
		endIndex = startIndex + 1
	}
	if startIndex >= container.ChildCount() {
		return sel, nil
	}
	if endIndex > container.ChildCount() {
		endIndex = container.ChildCount()
	}

	start := r.Start(cd) + childOffset(container, startIndex)
	oldPos, newPos := start, start+1
	var items []*model.Node
	var shifts []shift
	for _, child := range container.Content.Content[startIndex:endIndex] {
		switch {
		case isList(child):
			shifts = append(shifts, shift{from: oldPos + 1, to: oldPos + child.NodeSize() - 1, by: newPos - oldPos - 1})
			items = append(items, child.Content.Content...)
			newPos += child.Content.Size
		case child.IsTextblock():
			p := child
			if child.Type != paragraph {
				if p, err = paragraph.Create(nil, child.Content, nil); err != nil {
					return sel, err
				}
				p = p.SetAttrs(model.Attrs{"align": child.Attrs["align"], "class": child.Attrs["class"]})
			}
			item, err := itemType.Create(nil, []*model.Node{p}, nil)
			if err != nil {
				return sel, err
			}
			shifts = append(shifts, shift{from: oldPos, to: oldPos + child.NodeSize(), by: newPos + 1 - oldPos})
			items = append(items, item)
			newPos += item.NodeSize()
		default:
			empty, err := paragraph.Create(nil, nil, nil)
			if err != nil {
				return sel, err
			}
			item, err := itemType.Create(nil, []*model.Node{empty, child}, nil)
			if err != nil {
				return sel, err
			}
			shifts = append(shifts, shift{from: oldPos, to: oldPos + child.NodeSize(), by: newPos + 1 + empty.NodeSize() - oldPos})
			items = append(items, item)
			newPos += item.NodeSize()
		}
		oldPos += child.NodeSize()
	}

	list, err := listType.CreateChecked(model.Attrs{"style": normalize.ListStyle(ordered).String()}, items, nil)
	if err != nil {
		return sel, err
	}
	if err := tr.ReplaceWith(start, oldPos, list); err != nil {
		return sel, err
	}
	return Selection{
		From: remap(shifts, sel.From, start+1),
		To:   remap(shifts, sel.To, start+list.NodeSize()-1),
	}, nil
}
