// Package basic defines a basic document schema, whose elements can be reused
// in other schemas.
package basic

import (
	"strconv"

	"github.com/shodgson/notedoc/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	empty = ""
	falsy = false
)

// BlockAttrs returns the presentation attributes carried by block nodes
// (align, class and style), merged with the given extra attributes.
func BlockAttrs(extra map[string]*model.AttributeSpec) map[string]*model.AttributeSpec {
	attrs := map[string]*model.AttributeSpec{
		"align": {Optional: true},
		"class": {Optional: true},
		"style": {Optional: true},
	}
	for k, v := range extra {
		attrs[k] = v
	}
	return attrs
}

// BlockRule returns a parse rule for a block element that only reads the
// presentation attributes.
func BlockRule(tag string) model.ParseRule {
	return model.ParseRule{Tag: tag, GetAttrs: model.BlockAttrsFromDOM}
}

var blockTags = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Ul: true, atom.Ol: true, atom.Li: true,
	atom.Table: true, atom.Blockquote: true, atom.Pre: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true,
	atom.H6: true,
}

// hasBlockChild tells whether a div holds block elements, in which case it is
// unwrapped instead of becoming a paragraph.
func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && blockTags[c.DataAtom] {
			return true
		}
	}
	return false
}

func styleMatches(prop string, values ...string) func(n *html.Node) bool {
	return func(n *html.Node) bool {
		v, ok := model.ParseStyle(model.DOMAttr(n, "style")).Get(prop)
		if !ok {
			return false
		}
		for _, value := range values {
			if v == value {
				return true
			}
		}
		return false
	}
}

func headingRule(level int) model.ParseRule {
	return model.ParseRule{
		Tag: "h" + strconv.Itoa(level),
		GetAttrs: func(n *html.Node) model.Attrs {
			attrs := model.BlockAttrsFromDOM(n)
			attrs["level"] = level
			return attrs
		},
	}
}

func headingToDOM(n model.NodeOrMark) *html.Node {
	node := n.(*model.Node)
	level := node.AttrInt("level", 1)
	if level < 1 || level > 6 {
		level = 1
	}
	return model.Element(atom.Lookup([]byte("h"+strconv.Itoa(level))), model.BlockDOMAttrs(node)...)
}

func codeBlockToDOM(n model.NodeOrMark) *html.Node {
	pre := model.Element(atom.Pre)
	pre.AppendChild(model.Element(atom.Code))
	return pre
}

// Doc is the top level document node.
var Doc = &model.NodeSpec{Key: "doc", Content: "block+"}

// Paragraph is a plain paragraph textblock. Represented in the DOM as a <p>
// element.
var Paragraph = &model.NodeSpec{
	Key:     "paragraph",
	Content: "inline*",
	Group:   "block",
	Attrs:   BlockAttrs(nil),
	ParseDOM: []model.ParseRule{
		BlockRule("p"),
		{
			Tag:      "div",
			Match:    func(n *html.Node) bool { return !hasBlockChild(n) },
			GetAttrs: model.BlockAttrsFromDOM,
			Priority: -1,
		},
	},
	ToDOM: model.BlockDOMGenerator(atom.P),
}

// Blockquote is a blockquote (<blockquote>) wrapping one or more blocks.
var Blockquote = &model.NodeSpec{
	Key:      "blockquote",
	Content:  "block+",
	Group:    "block",
	Attrs:    BlockAttrs(nil),
	ParseDOM: []model.ParseRule{BlockRule("blockquote")},
	ToDOM:    model.BlockDOMGenerator(atom.Blockquote),
}

// HorizontalRule is a horizontal rule (<hr>).
var HorizontalRule = &model.NodeSpec{
	Key:      "horizontal_rule",
	Group:    "block",
	Attrs:    BlockAttrs(nil),
	ParseDOM: []model.ParseRule{BlockRule("hr")},
	ToDOM:    model.BlockDOMGenerator(atom.Hr),
}

// Heading is a heading textblock, with a level attribute that should hold the
// number 1 to 6. Parsed and serialized as <h1> to <h6> elements.
var Heading = &model.NodeSpec{
	Key:     "heading",
	Content: "inline*",
	Group:   "block",
	Attrs:   BlockAttrs(map[string]*model.AttributeSpec{"level": {Default: 1}}),
	ParseDOM: []model.ParseRule{
		headingRule(1), headingRule(2), headingRule(3),
		headingRule(4), headingRule(5), headingRule(6),
	},
	ToDOM: headingToDOM,
}

// CodeBlock is a code listing. Disallows marks or non-text inline nodes.
// Represented as a <pre> element with a <code> element inside of it.
var CodeBlock = &model.NodeSpec{
	Key:      "code_block",
	Content:  "text*",
	Marks:    &empty,
	Group:    "block",
	ParseDOM: []model.ParseRule{{Tag: "pre", PreserveWhitespace: true}},
	ToDOM:    codeBlockToDOM,
}

// Text is the text node.
var Text = &model.NodeSpec{Key: "text", Group: "inline"}

// Image is an inline image (<img>) node. Supports src, alt, and title
// attributes.
var Image = &model.NodeSpec{
	Key:    "image",
	Group:  "inline",
	Inline: true,
	Attrs: map[string]*model.AttributeSpec{
		"src":   {},
		"alt":   {Optional: true},
		"title": {Optional: true},
	},
	ParseDOM: []model.ParseRule{{
		Tag:   "img",
		Match: func(n *html.Node) bool { return model.DOMAttr(n, "src") != "" },
		GetAttrs: func(n *html.Node) model.Attrs {
			attrs := model.Attrs{"src": model.DOMAttr(n, "src")}
			if alt := model.DOMAttr(n, "alt"); alt != "" {
				attrs["alt"] = alt
			}
			if title := model.DOMAttr(n, "title"); title != "" {
				attrs["title"] = title
			}
			return attrs
		},
	}},
	ToDOM: model.DOMGenerator(atom.Img, "src", "alt", "title"),
}

// HardBreak is a hard line break, represented in the DOM as <br>.
var HardBreak = &model.NodeSpec{
	Key:      "hard_break",
	Group:    "inline",
	Inline:   true,
	ParseDOM: []model.ParseRule{{Tag: "br"}},
	ToDOM:    model.DOMGenerator(atom.Br),
	LeafText: func(*model.Node) string { return "\n" },
}

// Link is a link mark. Has href and title attributes. Rendered and parsed as
// an <a> element.
var Link = &model.MarkSpec{
	Key: "link",
	Attrs: map[string]*model.AttributeSpec{
		"href":  {},
		"title": {Optional: true},
	},
	Inclusive: &falsy,
	ParseDOM: []model.ParseRule{{
		Tag:   "a",
		Match: func(n *html.Node) bool { return model.DOMAttr(n, "href") != "" },
		GetAttrs: func(n *html.Node) model.Attrs {
			attrs := model.Attrs{"href": model.DOMAttr(n, "href")}
			if title := model.DOMAttr(n, "title"); title != "" {
				attrs["title"] = title
			}
			return attrs
		},
	}},
	ToDOM: model.DOMGenerator(atom.A, "href", "title"),
}

// Em is an emphasis mark. Rendered as an <em> element. Has parse rules that
// also match <i> and font-style: italic.
var Em = &model.MarkSpec{
	Key: "em",
	ParseDOM: []model.ParseRule{
		{Tag: "em"},
		{Tag: "i"},
		{Tag: "span", Match: styleMatches("font-style", "italic")},
	},
	ToDOM: model.DOMGenerator(atom.Em),
}

// Strong is a strong mark. Rendered as <strong>, parse rules also match <b>
// and font-weight: bold.
var Strong = &model.MarkSpec{
	Key: "strong",
	ParseDOM: []model.ParseRule{
		{Tag: "strong"},
		{Tag: "b", Match: func(n *html.Node) bool { return !styleMatches("font-weight", "normal")(n) }},
		{Tag: "span", Match: styleMatches("font-weight", "bold", "bolder", "600", "700", "800", "900")},
	},
	ToDOM: model.DOMGenerator(atom.Strong),
}

// Code is a code font mark. Represented as a <code> element.
var Code = &model.MarkSpec{
	Key:      "code",
	ParseDOM: []model.ParseRule{{Tag: "code"}},
	ToDOM:    model.DOMGenerator(atom.Code),
}

// Nodes are the specs for the nodes defined in this schema.
var Nodes = []*model.NodeSpec{
	Doc, Paragraph, Blockquote, HorizontalRule, Heading, CodeBlock, Text, Image, HardBreak,
}

// Marks are the specs for the marks in the schema.
var Marks = []*model.MarkSpec{Link, Em, Strong, Code}

// Schema roughly corresponds to the document schema used by CommonMark, minus
// the list elements, which are defined in the list package.
//
// To reuse elements from this schema, extend or read from its Nodes and Marks.
var Schema, _ = model.NewSchema(&model.SchemaSpec{
	Nodes: Nodes,
	Marks: Marks,
})
