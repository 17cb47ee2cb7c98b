// Package note defines the schema of note documents: the basic nodes plus
// lists, tables, checkboxes and the extra inline formatting marks.
package note

import (
	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/schema/basic"
	"github.com/shodgson/notedoc/schema/list"
	"github.com/shodgson/notedoc/schema/table"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// CheckboxLabelClass is the class of the span holding a checkbox label.
	CheckboxLabelClass = "checkbox-label"
	// HighlightStyle is the inline style of highlighted text.
	HighlightStyle = "background-color: #fef08a; border-radius: 2px"
)

func hasClass(class string) func(n *html.Node) bool {
	return func(n *html.Node) bool {
		return model.HasClass(model.DOMAttr(n, "class"), class)
	}
}

func textDecoration(value string) func(n *html.Node) bool {
	return func(n *html.Node) bool {
		style := model.ParseStyle(model.DOMAttr(n, "style"))
		for _, prop := range []string{"text-decoration", "text-decoration-line"} {
			if v, ok := style.Get(prop); ok && model.HasClass(v, value) {
				return true
			}
		}
		return false
	}
}

// Checkbox is an inline, non-editable checkbox input.
var Checkbox = &model.NodeSpec{
	Key:    "checkbox",
	Group:  "inline",
	Inline: true,
	Attrs:  map[string]*model.AttributeSpec{"checked": {Default: false}},
	ParseDOM: []model.ParseRule{{
		Tag:   "input",
		Match: func(n *html.Node) bool { return model.DOMAttr(n, "type") == "checkbox" },
		GetAttrs: func(n *html.Node) model.Attrs {
			return model.Attrs{"checked": model.HasDOMAttr(n, "checked")}
		},
	}},
	ToDOM: func(n model.NodeOrMark) *html.Node {
		node := n.(*model.Node)
		attrs := []html.Attribute{
			{Key: "type", Val: "checkbox"},
			{Key: "contenteditable", Val: "false"},
		}
		if node.AttrBool("checked") {
			attrs = append(attrs, html.Attribute{Key: "checked", Val: ""})
		}
		return model.Element(atom.Input, attrs...)
	},
	LeafText: func(n *model.Node) string {
		if n.AttrBool("checked") {
			return "[x] "
		}
		return "[ ] "
	},
}

// Label marks the text following a checkbox.
var Label = &model.MarkSpec{
	Key:      "label",
	ParseDOM: []model.ParseRule{{Tag: "span", Match: hasClass(CheckboxLabelClass)}},
	ToDOM: func(model.NodeOrMark) *html.Node {
		return model.Element(atom.Span, html.Attribute{Key: "class", Val: CheckboxLabelClass})
	},
}

// Underline is rendered as <u>.
var Underline = &model.MarkSpec{
	Key: "underline",
	ParseDOM: []model.ParseRule{
		{Tag: "u"},
		{Tag: "ins"},
		{Tag: "span", Match: textDecoration("underline")},
	},
	ToDOM: model.DOMGenerator(atom.U),
}

// Strike is rendered as <s>.
var Strike = &model.MarkSpec{
	Key: "strike",
	ParseDOM: []model.ParseRule{
		{Tag: "s"},
		{Tag: "strike"},
		{Tag: "del"},
		{Tag: "span", Match: textDecoration("line-through")},
	},
	ToDOM: model.DOMGenerator(atom.S),
}

// Highlight is rendered as a <mark> element with a fixed background.
var Highlight = &model.MarkSpec{
	Key: "highlight",
	ParseDOM: []model.ParseRule{
		{Tag: "mark"},
		{Tag: "span", Match: hasClass("highlight")},
	},
	ToDOM: func(model.NodeOrMark) *html.Node {
		return model.Element(atom.Mark,
			html.Attribute{Key: "class", Val: "highlight"},
			html.Attribute{Key: "style", Val: HighlightStyle},
		)
	},
}

// Nodes are the node specs of note documents.
var Nodes = table.AddTableNodes(
	list.AddListNodes(append(append([]*model.NodeSpec{}, basic.Nodes...), Checkbox), "paragraph block*", "block"),
	"inline*", "block",
)

// Marks are the mark specs of note documents, in rank order.
var Marks = []*model.MarkSpec{
	Label, basic.Link, basic.Strong, basic.Em, Underline, Strike, basic.Code, Highlight,
}

// Schema is the note document schema.
var Schema, _ = model.NewSchema(&model.SchemaSpec{
	Nodes: Nodes,
	Marks: Marks,
})
