package format

import (
	"github.com/pkg/errors"
	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/transform"
)

// Highlight adds the highlight mark to the selected content. It does nothing
// for an empty selection.
func Highlight(tr *transform.Transform, sel Selection) (Selection, error) {
	sel = sel.Ordered()
	if sel.Empty() {
		return sel, nil
	}
	mark := tr.Doc.Type.Schema.Mark("highlight")
	if mark == nil {
		return sel, errors.New("schema has no highlight mark")
	}
	return sel, tr.AddMark(sel.From, sel.To, mark)
}

// ToggleMark removes the named mark from the selection when every text in it
// carries the mark, and adds it otherwise. It does nothing for an empty
// selection.
func ToggleMark(tr *transform.Transform, sel Selection, name string) (Selection, error) {
	sel = sel.Ordered()
	markType, err := tr.Doc.Type.Schema.MarkType(name)
	if err != nil {
		return sel, err
	}
	if sel.Empty() {
		return sel, nil
	}
	if hasMark(tr.Doc, sel, markType) {
		return sel, tr.RemoveMarkType(sel.From, sel.To, markType)
	}
	return sel, tr.AddMark(sel.From, sel.To, markType.Create(nil))
}

// hasMark tells whether every text in the selection that may carry the mark
// does.
func hasMark(doc *model.Node, sel Selection, markType *model.MarkType) bool {
	found, all := false, true
	doc.NodesBetween(sel.From, sel.To, func(node *model.Node, _ int, parent *model.Node, _ int) bool {
		if node.IsText() && parent.Type.AllowsMarkType(markType) {
			found = true
			all = all && markType.IsInSet(node.Marks) != nil
		}
		return !node.IsInline()
	})
	return found && all
}

// SetLink links the selected content to href, replacing other links.
func SetLink(tr *transform.Transform, sel Selection, href string) (Selection, error) {
	sel = sel.Ordered()
	if href == "" {
		return sel, errors.New("empty link target")
	}
	if sel.Empty() {
		return sel, nil
	}
	linkType, err := tr.Doc.Type.Schema.MarkType("link")
	if err != nil {
		return sel, err
	}
	if err := tr.RemoveMarkType(sel.From, sel.To, linkType); err != nil {
		return sel, err
	}
	return sel, tr.AddMark(sel.From, sel.To, linkType.Create(model.Attrs{"href": href}))
}

// Unlink removes the links of the selection. With an empty selection, the
// whole link around the cursor is removed.
func Unlink(tr *transform.Transform, sel Selection) (Selection, error) {
	sel = sel.Ordered()
	linkType, err := tr.Doc.Type.Schema.MarkType("link")
	if err != nil {
		return sel, err
	}
	from, to := sel.From, sel.To
	if sel.Empty() {
		if from, to, err = markExtent(tr.Doc, sel.From, linkType); err != nil {
			return sel, err
		}
	}
	return sel, tr.RemoveMarkType(from, to, linkType)
}

// markExtent returns the range of the run of inline nodes around pos that
// carry the same mark of the given type. The range is empty when there is
// none.
func markExtent(doc *model.Node, pos int, markType *model.MarkType) (int, int, error) {
	r, err := doc.Resolve(pos)
	if err != nil {
		return 0, 0, err
	}
	parent := r.Parent()
	if !parent.IsTextblock() {
		return pos, pos, nil
	}
	start := r.Start()
	type run struct {
		mark     *model.Mark
		from, to int
	}
	var runs []run
	parent.ForEach(func(child *model.Node, offset, _ int) {
		m := markType.IsInSet(child.Marks)
		if m == nil {
			return
		}
		from := start + offset
		if n := len(runs); n > 0 && runs[n-1].to == from && runs[n-1].mark.Eq(m) {
			runs[n-1].to = from + child.NodeSize()
			return
		}
		runs = append(runs, run{mark: m, from: from, to: from + child.NodeSize()})
	})
	for _, rn := range runs {
		if rn.from <= pos && pos <= rn.to {
			return rn.from, rn.to, nil
		}
	}
	return pos, pos, nil
}

// ClearMarks removes every mark from the selection, except the ones named in
// keep.
func ClearMarks(tr *transform.Transform, sel Selection, keep ...string) (Selection, error) {
	sel = sel.Ordered()
	if sel.Empty() {
		return sel, nil
	}
outer:
	for _, markType := range tr.Doc.Type.Schema.MarkTypes() {
		for _, k := range keep {
			if markType.Name == k {
				continue outer
			}
		}
		if err := tr.RemoveMarkType(sel.From, sel.To, markType); err != nil {
			return sel, err
		}
	}
	return sel, nil
}
