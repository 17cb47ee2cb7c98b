package format

import (
	"github.com/pkg/errors"
	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/schema/table"
	"github.com/shodgson/notedoc/transform"
)

// Align sets the alignment of the structure holding the selection. From the
// common ancestor of the selection upward: inside a single cell only that
// cell is aligned; a selection spanning rows or cells aligns every cell of
// the table; inside a list the list node itself is aligned. Otherwise every
// touched textblock is. An empty direction removes the alignment.
func Align(tr *transform.Transform, sel Selection, direction string) (Selection, error) {
	if direction != "" && !validAlignment(direction) {
		return sel, errors.Errorf("unknown alignment %q", direction)
	}
	targets, err := alignTargets(tr.Doc, sel.Ordered())
	if err != nil {
		return sel, err
	}
	var value interface{}
	if direction != "" {
		value = direction
	}
	for _, pos := range targets {
		if err := tr.SetNodeAttrs(pos, model.Attrs{"align": value}); err != nil {
			return sel, err
		}
	}
	return sel, nil
}

func validAlignment(direction string) bool {
	for _, a := range model.Alignments {
		if a == direction {
			return true
		}
	}
	return false
}

func alignTargets(doc *model.Node, sel Selection) ([]int, error) {
	r, err := doc.Resolve(sel.From)
	if err != nil {
		return nil, err
	}
	if sel.To > doc.Content.Size {
		return nil, outOfRange(sel)
	}
	for d := r.SharedDepth(sel.To); d > 0; d-- {
		node := r.Node(d)
		switch {
		case table.IsCell(node):
			pos, err := r.Before(d)
			if err != nil {
				return nil, err
			}
			return []int{pos}, nil
		case node.Type.Is("table_row", "table"):
			td := r.FindAncestor(d, func(n *model.Node) bool { return n.Type.Name == "table" })
			if td <= 0 {
				continue
			}
			pos, err := r.Before(td)
			if err != nil {
				return nil, err
			}
			var cells []int
			r.Node(td).Descendants(func(n *model.Node, p int, _ *model.Node, _ int) bool {
				if table.IsCell(n) {
					cells = append(cells, pos+1+p)
					return false
				}
				return true
			})
			return cells, nil
		case node.Type.Is("list_item", "bullet_list", "ordered_list"):
			ld := r.FindAncestor(d, isList)
			if ld <= 0 {
				continue
			}
			pos, err := r.Before(ld)
			if err != nil {
				return nil, err
			}
			return []int{pos}, nil
		}
	}

	blocks, err := textblocks(doc, sel)
	if err != nil {
		return nil, err
	}
	result := make([]int, len(blocks))
	for i, b := range blocks {
		result[i] = b.pos
	}
	return result, nil
}

func outOfRange(sel Selection) error {
	return errors.Errorf("selection %s out of range", sel)
}
