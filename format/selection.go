// Package format holds the selection-aware formatters of the editor. A
// formatter adds steps to a transform for the given selection, and returns
// the selection to use on the transformed document.
package format

import (
	"fmt"

	"github.com/rivo/uniseg"
	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/transform"
)

// Selection is a range of positions in a document. It is empty when From
// equals To.
type Selection struct {
	From int
	To   int
}

// Cursor returns an empty selection at pos.
func Cursor(pos int) Selection {
	return Selection{From: pos, To: pos}
}

func (s Selection) Empty() bool {
	return s.From == s.To
}

// Ordered returns the selection with From <= To.
func (s Selection) Ordered() Selection {
	if s.From > s.To {
		return Selection{From: s.To, To: s.From}
	}
	return s
}

// Clamp keeps the selection inside the content of doc.
func (s Selection) Clamp(doc *model.Node) Selection {
	clamp := func(pos int) int {
		if pos < 0 {
			return 0
		}
		if pos > doc.Content.Size {
			return doc.Content.Size
		}
		return pos
	}
	return Selection{From: clamp(s.From), To: clamp(s.To)}.Ordered()
}

// Map maps the selection through the changes of a mapping. An empty
// selection stays empty.
func (s Selection) Map(mapping transform.Mappable) Selection {
	if s.Empty() {
		return Cursor(mapping.Map(s.From, 1))
	}
	return Selection{From: mapping.Map(s.From, 1), To: mapping.Map(s.To, -1)}.Ordered()
}

// Snap moves the boundaries of the selection out of grapheme clusters: From
// backward and To forward, so that no user-perceived character is split. A
// cursor between blocks is moved into the nearest textblock, preferring the
// one after it. The ends of a range may stay between blocks.
func (s Selection) Snap(doc *model.Node) Selection {
	s = s.Clamp(doc)
	if s.Empty() {
		return Cursor(snapPos(doc, nearText(doc, s.From), false))
	}
	return Selection{From: snapPos(doc, s.From, false), To: snapPos(doc, s.To, true)}
}

func (s Selection) String() string {
	return fmt.Sprintf("%d-%d", s.From, s.To)
}

// inlineText returns the inline content of a textblock with one rune per
// position: non-text inline nodes are rendered as U+FFFC.
func inlineText(block *model.Node) string {
	text := ""
	block.ForEach(func(child *model.Node, _, _ int) {
		if child.IsText() {
			text += *child.Text
		} else {
			text += "\ufffc"
		}
	})
	return text
}

// boundaries returns the offsets, in runes, of the grapheme cluster
// boundaries of text, 0 and the length of text included.
func boundaries(text string) []int {
	result := []int{0}
	offset := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		offset += len(g.Runes())
		result = append(result, offset)
	}
	return result
}

// nearText returns pos when it lies in a textblock. Otherwise it returns the
// start of the next textblock, or the end of the previous one after the last
// textblock. Without any textblock in doc, pos is returned.
func nearText(doc *model.Node, pos int) int {
	if r, err := doc.Resolve(pos); err == nil && r.Parent().IsTextblock() {
		return pos
	}
	before, after := -1, -1
	doc.Descendants(func(node *model.Node, at int, _ *model.Node, _ int) bool {
		if after >= 0 || node.IsInline() {
			return false
		}
		if !node.IsTextblock() {
			return true
		}
		if start := at + 1; start >= pos {
			after = start
		} else {
			before = start + node.Content.Size
		}
		return false
	})
	switch {
	case after >= 0:
		return after
	case before >= 0:
		return before
	}
	return pos
}

func snapPos(doc *model.Node, pos int, forward bool) int {
	r, err := doc.Resolve(pos)
	if err != nil || !r.Parent().IsTextblock() {
		return pos
	}
	offset := r.ParentOffset
	prev := 0
	for _, b := range boundaries(inlineText(r.Parent())) {
		if b == offset {
			return pos
		}
		if b > offset {
			if forward {
				return pos - offset + b
			}
			return pos - offset + prev
		}
		prev = b
	}
	return pos
}

// prevBoundary returns the position of the grapheme boundary before pos in
// its textblock, or -1 at the start of the textblock.
func prevBoundary(r *model.ResolvedPos) int {
	offset := r.ParentOffset
	prev := -1
	for _, b := range boundaries(inlineText(r.Parent())) {
		if b >= offset {
			break
		}
		prev = b
	}
	if prev < 0 {
		return -1
	}
	return r.Pos - offset + prev
}
