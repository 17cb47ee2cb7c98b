// Package markdown converts note documents to and from GitHub flavored
// Markdown.
package markdown

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shodgson/notedoc/model"
)

// NodeSerializerFunc writes a node of a given type to the state.
type NodeSerializerFunc func(state *SerializerState, node, parent *model.Node, index int)

// MarkStringFunc returns the syntax opening or closing a mark. parent and
// index locate the node the mark applies to.
type MarkStringFunc func(state *SerializerState, mark *model.Mark, parent *model.Node, index int) string

// Delim returns a MarkStringFunc always giving s.
func Delim(s string) MarkStringFunc {
	return func(*SerializerState, *model.Mark, *model.Node, int) string { return s }
}

// MarkSerializerSpec tells how a mark is written.
type MarkSerializerSpec struct {
	Open  MarkStringFunc
	Close MarkStringFunc
	// Mixable marks may be opened and closed in any order relative to other
	// mixable marks: **a *b*** and *a **b*** are both valid.
	Mixable bool
	// ExpelEnclosingWhitespace moves whitespace at the edges of the marked
	// text outside of the mark, as CommonMark does not allow it inside
	// emphasis.
	ExpelEnclosingWhitespace bool
	// NoEscape marks have their text written as is. They must be the
	// innermost mark.
	NoEscape bool
}

// Serializer writes documents as Markdown.
type Serializer struct {
	Nodes map[string]NodeSerializerFunc
	Marks map[string]MarkSerializerSpec
	// TightLists writes list items without blank lines between them.
	TightLists bool
}

// Serialize returns the Markdown for the content of doc.
func (s *Serializer) Serialize(doc *model.Node) string {
	state := &SerializerState{serializer: s, tightLists: s.TightLists}
	state.RenderContent(doc)
	return state.out
}

var (
	backticksRe = regexp.MustCompile("`{3,}")
	linkTextRe  = regexp.MustCompile(`(^|[^\\])!$`)
)

// DefaultSerializer writes the nodes and marks of the note schema. Checkboxes
// become task markers, tables become pipe tables, underline and highlight
// are kept as inline HTML.
var DefaultSerializer = &Serializer{
	TightLists: true,
	Nodes: map[string]NodeSerializerFunc{
		"blockquote": func(state *SerializerState, node, _ *model.Node, _ int) {
			state.WrapBlock("> ", "", node, func() { state.RenderContent(node) })
		},
		"code_block": func(state *SerializerState, node, _ *model.Node, _ int) {
			fence := "```"
			content := node.TextContent()
			for _, ticks := range backticksRe.FindAllString(content, -1) {
				if len(ticks) >= len(fence) {
					fence = ticks + "`"
				}
			}
			state.Write(fence + "\n")
			state.Text(content, false)
			state.EnsureNewLine()
			state.Write(fence)
			state.CloseBlock(node)
		},
		"heading": func(state *SerializerState, node, _ *model.Node, _ int) {
			state.Write(strings.Repeat("#", node.AttrInt("level", 1)) + " ")
			state.RenderInline(node)
			state.CloseBlock(node)
		},
		"horizontal_rule": func(state *SerializerState, node, _ *model.Node, _ int) {
			state.Write("---")
			state.CloseBlock(node)
		},
		"bullet_list": func(state *SerializerState, node, _ *model.Node, _ int) {
			state.RenderList(node, "  ", func(int) string { return "* " })
		},
		"ordered_list": func(state *SerializerState, node, _ *model.Node, _ int) {
			start := node.AttrInt("order", 1)
			width := len(strconv.Itoa(start + node.ChildCount() - 1))
			state.RenderList(node, strings.Repeat(" ", width+2), func(i int) string {
				n := strconv.Itoa(start + i)
				return strings.Repeat(" ", width-len(n)) + n + ". "
			})
		},
		"list_item": func(state *SerializerState, node, _ *model.Node, _ int) {
			state.RenderContent(node)
		},
		"paragraph": func(state *SerializerState, node, _ *model.Node, _ int) {
			state.RenderInline(node)
			state.CloseBlock(node)
		},
		"table": func(state *SerializerState, node, _ *model.Node, _ int) {
			state.RenderTable(node)
		},
		"image": func(state *SerializerState, node, _ *model.Node, _ int) {
			title := ""
			if t := node.AttrString("title"); t != "" {
				title = " " + state.Quote(t)
			}
			state.Write(fmt.Sprintf("![%s](%s%s)", state.Esc(node.AttrString("alt"), false), escapeParens(node.AttrString("src")), title))
		},
		"checkbox": func(state *SerializerState, node, _ *model.Node, _ int) {
			if node.AttrBool("checked") {
				state.Write("[x] ")
			} else {
				state.Write("[ ] ")
			}
		},
		"hard_break": func(state *SerializerState, node, parent *model.Node, index int) {
			// Trailing breaks have no Markdown form.
			for i := index + 1; i < parent.ChildCount(); i++ {
				if parent.MaybeChild(i).Type != node.Type {
					state.Write("\\\n")
					return
				}
			}
		},
		"text": func(state *SerializerState, node, _ *model.Node, _ int) {
			state.Text(*node.Text, !state.inAutoLink)
		},
	},
	Marks: map[string]MarkSerializerSpec{
		"label":     {Open: Delim(""), Close: Delim(""), Mixable: true},
		"em":        {Open: Delim("*"), Close: Delim("*"), Mixable: true, ExpelEnclosingWhitespace: true},
		"strong":    {Open: Delim("**"), Close: Delim("**"), Mixable: true, ExpelEnclosingWhitespace: true},
		"strike":    {Open: Delim("~~"), Close: Delim("~~"), Mixable: true, ExpelEnclosingWhitespace: true},
		"underline": {Open: Delim("<u>"), Close: Delim("</u>")},
		"highlight": {Open: Delim("<mark>"), Close: Delim("</mark>")},
		"link": {
			Open: func(state *SerializerState, mark *model.Mark, parent *model.Node, index int) string {
				state.inAutoLink = isPlainURL(mark, parent, index)
				if state.inAutoLink {
					return "<"
				}
				return "["
			},
			Close: func(state *SerializerState, mark *model.Mark, _ *model.Node, _ int) string {
				if state.inAutoLink {
					state.inAutoLink = false
					return ">"
				}
				href, _ := mark.Attrs["href"].(string)
				title := ""
				if t, _ := mark.Attrs["title"].(string); t != "" {
					title = " " + state.Quote(t)
				}
				return "](" + escapeParens(href) + title + ")"
			},
			Mixable: true,
		},
		"code": {
			Open: func(_ *SerializerState, _ *model.Mark, parent *model.Node, index int) string {
				return backticksFor(parent.MaybeChild(index), -1)
			},
			Close: func(_ *SerializerState, _ *model.Mark, parent *model.Node, index int) string {
				return backticksFor(parent.MaybeChild(index-1), 1)
			},
			NoEscape: true,
		},
	},
}

func escapeParens(s string) string {
	return strings.NewReplacer("(", "\\(", ")", "\\)").Replace(s)
}

// backticksFor returns a code span delimiter long enough for the backticks
// inside node.
func backticksFor(node *model.Node, side int) string {
	longest := 0
	if node != nil && node.IsText() {
		for _, run := range strings.FieldsFunc(*node.Text, func(r rune) bool { return r != '`' }) {
			if len(run) > longest {
				longest = len(run)
			}
		}
	}
	if longest == 0 {
		return "`"
	}
	ticks := strings.Repeat("`", longest+1)
	if side > 0 {
		return " " + ticks
	}
	return ticks + " "
}

// isPlainURL tells whether a link can be written as an autolink: its text is
// its href and nothing else carries it.
func isPlainURL(link *model.Mark, parent *model.Node, index int) bool {
	if title, _ := link.Attrs["title"].(string); title != "" {
		return false
	}
	href, _ := link.Attrs["href"].(string)
	if !strings.Contains(href, ":") {
		return false
	}
	content := parent.MaybeChild(index)
	if content == nil || !content.IsText() || *content.Text != href || content.Marks[len(content.Marks)-1] != link {
		return false
	}
	next := parent.MaybeChild(index + 1)
	return next == nil || !link.IsInSet(next.Marks)
}

// SerializerState tracks the output while a document is written. Node and
// mark functions use its methods.
type SerializerState struct {
	serializer *Serializer
	out        string
	delim      string
	closed     *model.Node
	inAutoLink bool
	// atBlockStart is set while the first text of a textblock is written.
	atBlockStart bool
	inTightList  bool
	tightLists   bool
}

// String returns the output written so far.
func (s *SerializerState) String() string {
	return s.out
}

// flushClose writes the blank lines separating the closed block from what
// follows. size is the number of line breaks, 2 by default.
func (s *SerializerState) flushClose(size int) {
	if s.closed == nil {
		return
	}
	s.EnsureNewLine()
	if size > 1 {
		trimmed := strings.TrimRightFunc(s.delim, unicode.IsSpace)
		for i := 1; i < size; i++ {
			s.out += trimmed + "\n"
		}
	}
	s.closed = nil
}

// WrapBlock renders a block whose lines are all prefixed by delim, except the
// first one which gets firstDelim when it is not empty. node is closed at
// the end.
func (s *SerializerState) WrapBlock(delim, firstDelim string, node *model.Node, render func()) {
	old := s.delim
	if firstDelim == "" {
		firstDelim = delim
	}
	s.Write(firstDelim)
	s.delim += delim
	render()
	s.delim = old
	s.CloseBlock(node)
}

func (s *SerializerState) atBlank() bool {
	return s.out == "" || strings.HasSuffix(s.out, "\n")
}

// EnsureNewLine ends the output with a newline.
func (s *SerializerState) EnsureNewLine() {
	if !s.atBlank() {
		s.out += "\n"
	}
}

// Write closes pending blocks, adds the line prefix when at the start of a
// line, then writes content unescaped.
func (s *SerializerState) Write(content ...string) {
	s.flushClose(2)
	if s.delim != "" && s.atBlank() {
		s.out += s.delim
	}
	for _, c := range content {
		s.out += c
	}
}

// CloseBlock marks node as closed. The separator is written lazily, by the
// next Write.
func (s *SerializerState) CloseBlock(node *model.Node) {
	s.closed = node
}

// Text writes text, escaped unless escape is false.
func (s *SerializerState) Text(text string, escape bool) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		s.Write()
		// An exclamation mark before a link would make it an image.
		if !escape && strings.HasPrefix(line, "[") && linkTextRe.MatchString(s.out) {
			s.out = s.out[:len(s.out)-1] + "\\!"
		}
		if escape {
			s.out += s.Esc(line, s.atBlockStart)
		} else {
			s.out += line
		}
		if line != "" {
			s.atBlockStart = false
		}
		if i != len(lines)-1 {
			s.out += "\n"
		}
	}
}

// Render writes node with the function registered for its type. Nodes of
// unknown types are skipped.
func (s *SerializerState) Render(node, parent *model.Node, index int) {
	if fn, ok := s.serializer.Nodes[node.Type.Name]; ok {
		fn(s, node, parent, index)
	}
}

// RenderContent writes the children of parent as blocks.
func (s *SerializerState) RenderContent(parent *model.Node) {
	parent.ForEach(func(node *model.Node, _, i int) {
		s.Render(node, parent, i)
	})
}

var edgeSpaceRe = regexp.MustCompile(`^(\s*)(.*?)(\s*)$`)

// RenderInline writes the inline content of parent, opening and closing
// mark syntax as the marks change from one node to the next.
func (s *SerializerState) RenderInline(parent *model.Node) {
	s.atBlockStart = true
	var active []*model.Mark
	trailing := ""

	progress := func(node *model.Node, index int) {
		var marks []*model.Mark
		if node != nil {
			marks = node.Marks
		}

		// A break closing a mark would put the closing syntax on the next
		// line: keep only the marks that go on after it.
		if node != nil && node.Type.Name == "hard_break" {
			next := parent.MaybeChild(index + 1)
			var kept []*model.Mark
			for _, m := range marks {
				if next != nil && m.IsInSet(next.Marks) && (!next.IsText() || strings.TrimSpace(*next.Text) != "") {
					kept = append(kept, m)
				}
			}
			marks = kept
		}

		leading := trailing
		trailing = ""
		if node != nil && node.IsText() {
			opens, closes := s.expels(marks, active, parent, index)
			parts := edgeSpaceRe.FindStringSubmatch(*node.Text)
			if len(parts) == 4 {
				text := *node.Text
				if opens && parts[1] != "" {
					leading += parts[1]
					text = strings.TrimLeftFunc(text, unicode.IsSpace)
				}
				if closes && parts[3] != "" && text != "" {
					trailing = parts[3]
					text = strings.TrimRightFunc(text, unicode.IsSpace)
				}
				switch {
				case text == "":
					node = nil
					marks = active
				case text != *node.Text:
					node = node.WithText(text)
				}
			}
		}

		var inner *model.Mark
		if len(marks) > 0 {
			inner = marks[len(marks)-1]
		}
		noEsc := inner != nil && s.serializer.Marks[inner.Type.Name].NoEscape
		length := len(marks)
		if noEsc {
			length--
		}

		marks = s.reorderMixable(marks, active)

		// Close the marks that end here.
		keep := 0
		for keep < len(marks) && keep < len(active) && marks[keep].Eq(active[keep]) {
			keep++
		}
		for keep < len(active) {
			s.Text(s.MarkString(active[len(active)-1], false, parent, index), false)
			active = active[:len(active)-1]
		}

		if leading != "" {
			s.Text(leading, true)
		}

		if node == nil {
			return
		}
		for len(active) < length {
			add := marks[len(active)]
			active = append(active, add)
			s.Text(s.MarkString(add, true, parent, index), false)
		}
		if noEsc && node.IsText() {
			s.Text(s.MarkString(inner, true, parent, index)+*node.Text+s.MarkString(inner, false, parent, index+1), false)
		} else {
			s.Render(node, parent, index)
		}
	}

	parent.ForEach(func(node *model.Node, _, index int) { progress(node, index) })
	progress(nil, parent.ChildCount())
	s.atBlockStart = false
}

// expels tells whether the text at index opens and whether it closes a mark
// that does not allow whitespace at its edges.
func (s *SerializerState) expels(marks, active []*model.Mark, parent *model.Node, index int) (opens, closes bool) {
	next := parent.MaybeChild(index + 1)
	for _, mark := range marks {
		if !s.serializer.Marks[mark.Type.Name].ExpelEnclosingWhitespace {
			continue
		}
		if !mark.IsInSet(active) {
			opens = true
		}
		if next == nil || !mark.IsInSet(next.Marks) {
			closes = true
		}
	}
	return opens, closes
}

// reorderMixable moves the mixable marks of marks that are already active
// to the position they have in active, so that they do not need to be closed
// and opened again.
func (s *SerializerState) reorderMixable(marks, active []*model.Mark) []*model.Mark {
	for i, mark := range marks {
		if !s.serializer.Marks[mark.Type.Name].Mixable {
			break
		}
		for j, other := range active {
			if !s.serializer.Marks[other.Type.Name].Mixable {
				break
			}
			if !mark.Eq(other) {
				continue
			}
			if i == j || j > len(marks) {
				break
			}
			mixed := make([]*model.Mark, 0, len(marks))
			if i > j {
				mixed = append(mixed, marks[:j]...)
				mixed = append(mixed, mark)
				mixed = append(mixed, marks[j:i]...)
				mixed = append(mixed, marks[i+1:]...)
			} else {
				mixed = append(mixed, marks[:i]...)
				mixed = append(mixed, marks[i+1:j]...)
				mixed = append(mixed, mark)
				mixed = append(mixed, marks[j:]...)
			}
			marks = mixed
			break
		}
	}
	return marks
}

// RenderList writes the items of a list. delim indents the lines of an item
// after its first one; firstDelim gives the marker of item i.
func (s *SerializerState) RenderList(node *model.Node, delim string, firstDelim func(i int) string) {
	if s.closed != nil && s.closed.Type == node.Type {
		// Two lists of the same type in a row need a wider gap to stay
		// apart.
		s.flushClose(3)
	} else if s.inTightList {
		s.flushClose(1)
	}

	tight := s.tightLists
	if t, ok := node.Attrs["tight"].(bool); ok {
		tight = t
	}
	prevTight := s.inTightList
	s.inTightList = tight
	node.ForEach(func(child *model.Node, _, i int) {
		if i > 0 && tight {
			s.flushClose(1)
		}
		s.WrapBlock(delim, firstDelim(i), node, func() { s.Render(child, node, i) })
	})
	s.inTightList = prevTight
}

// RenderTable writes a pipe table. The first row is the header row; short
// rows are padded with empty cells.
func (s *SerializerState) RenderTable(node *model.Node) {
	var rows [][]string
	width := 0
	node.ForEach(func(row *model.Node, _, _ int) {
		var cells []string
		row.ForEach(func(cell *model.Node, _, _ int) {
			cells = append(cells, s.renderCell(cell))
		})
		if len(cells) > width {
			width = len(cells)
		}
		rows = append(rows, cells)
	})
	if width == 0 {
		return
	}

	lines := make([]string, 0, len(rows)+1)
	for i, cells := range rows {
		for len(cells) < width {
			cells = append(cells, "")
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if i == 0 {
			lines = append(lines, "|"+strings.Repeat(" --- |", width))
		}
	}
	for i, line := range lines {
		if i > 0 {
			s.EnsureNewLine()
		}
		s.Write(line)
	}
	s.CloseBlock(node)
}

var cellReplacer = strings.NewReplacer("\\\n", "<br>", "\n", " ", "|", "\\|")

func (s *SerializerState) renderCell(cell *model.Node) string {
	sub := &SerializerState{serializer: s.serializer, tightLists: s.tightLists}
	sub.RenderInline(cell)
	return strings.TrimSpace(cellReplacer.Replace(sub.out))
}

var (
	escapeRe        = regexp.MustCompile("([`*\\\\~\\[\\]<])")
	escapeUnderRe   = regexp.MustCompile(`(\b_)|(_\b)`)
	escapeLineRe    = regexp.MustCompile(`^([#\-*+>])`)
	escapeOrderedRe = regexp.MustCompile(`^(\s*\d+)\.`)
)

// Esc escapes str so that it reads as plain text. With startOfLine, the
// characters that only matter at the start of a line are escaped too.
func (s *SerializerState) Esc(str string, startOfLine bool) string {
	str = escapeRe.ReplaceAllString(str, "\\$1")
	str = escapeUnderRe.ReplaceAllString(str, "\\_")
	if startOfLine {
		str = escapeLineRe.ReplaceAllString(str, "\\$1")
		str = escapeOrderedRe.ReplaceAllString(str, "$1\\.")
	}
	return str
}

// Quote wraps str in double quotes, single quotes or parentheses, whichever
// it does not contain.
func (s *SerializerState) Quote(str string) string {
	switch {
	case !strings.Contains(str, `"`):
		return `"` + str + `"`
	case !strings.Contains(str, "'"):
		return "'" + str + "'"
	}
	return "(" + str + ")"
}

// MarkString returns the opening or closing syntax of mark.
func (s *SerializerState) MarkString(mark *model.Mark, open bool, parent *model.Node, index int) string {
	info := s.serializer.Marks[mark.Type.Name]
	fn := info.Close
	if open {
		fn = info.Open
	}
	if fn == nil {
		return ""
	}
	return fn(s, mark, parent, index)
}
