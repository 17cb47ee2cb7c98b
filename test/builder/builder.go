// Package builder provides helpers to build note documents in tests. Strings
// given to the builders may contain tags like <a> or <b>: they are removed
// from the text and their positions are recorded in the Tag map of the
// result.
package builder

import (
	"regexp"
	"unicode/utf8"

	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/schema/note"
)

// NodeWithTag is a node built by a NodeBuilder, with the positions of its
// tags, relative to the start of its content.
type NodeWithTag struct {
	*model.Node
	Tag map[string]int
}

// Flat is a run of nodes built by a MarkBuilder, with the positions of its
// tags relative to the start of the run.
type Flat struct {
	Nodes []*model.Node
	Tag   map[string]int
}

// NodeBuilder builds a node from attributes (model.Attrs), strings, nodes and
// flat runs.
type NodeBuilder func(args ...interface{}) NodeWithTag

// MarkBuilder builds a run of nodes carrying a mark.
type MarkBuilder func(args ...interface{}) Flat

// Spec describes a builder: the node or mark type it creates and the
// attributes it gives by default.
type Spec struct {
	NodeType string
	MarkType string
	Attrs    model.Attrs
}

var tagRe = regexp.MustCompile(`<(\w+)>`)

func takeAttrs(attrs model.Attrs, args []interface{}) (model.Attrs, []interface{}) {
	if len(args) == 0 {
		return attrs, args
	}
	given, ok := args[0].(model.Attrs)
	if !ok {
		return attrs, args
	}
	result := model.Attrs{}
	for k, v := range attrs {
		result[k] = v
	}
	for k, v := range given {
		result[k] = v
	}
	return result, args[1:]
}

func flatten(schema *model.Schema, args []interface{}, f func(*model.Node) *model.Node) ([]*model.Node, map[string]int) {
	var result []*model.Node
	pos := 0
	tag := map[string]int{}
	for _, arg := range args {
		switch child := arg.(type) {
		case string:
			at := 0
			out := ""
			for _, m := range tagRe.FindAllStringSubmatchIndex(child, -1) {
				out += child[at:m[0]]
				tag[child[m[2]:m[3]]] = pos + utf8.RuneCountInString(out)
				at = m[1]
			}
			out += child[at:]
			if out == "" {
				continue
			}
			node := f(schema.Text(out))
			pos += node.NodeSize()
			result = append(result, node)
		case NodeWithTag:
			offset := 1
			if child.IsText() {
				offset = 0
			}
			for id, p := range child.Tag {
				tag[id] = p + offset + pos
			}
			node := f(child.Node)
			pos += node.NodeSize()
			result = append(result, node)
		case Flat:
			for id, p := range child.Tag {
				tag[id] = p + pos
			}
			for _, n := range child.Nodes {
				node := f(n)
				pos += node.NodeSize()
				result = append(result, node)
			}
		default:
			panic("builder: unexpected argument")
		}
	}
	return result, tag
}

func block(typ *model.NodeType, attrs model.Attrs) NodeBuilder {
	return func(args ...interface{}) NodeWithTag {
		myAttrs, rest := takeAttrs(attrs, args)
		nodes, tag := flatten(typ.Schema, rest, func(n *model.Node) *model.Node { return n })
		node, err := typ.Create(myAttrs, nodes, nil)
		if err != nil {
			panic(err)
		}
		return NodeWithTag{Node: node, Tag: tag}
	}
}

// Create a builder function for marks.
func mark(typ *model.MarkType, attrs model.Attrs) MarkBuilder {
	return func(args ...interface{}) Flat {
		myAttrs, rest := takeAttrs(attrs, args)
		m := typ.Create(myAttrs)
		nodes, tag := flatten(typ.Schema, rest, func(n *model.Node) *model.Node {
			if n.IsInline() {
				return n.Mark(m.AddToSet(n.Marks))
			}
			return n
		})
		return Flat{Nodes: nodes, Tag: tag}
	}
}

// Builders returns a builder for every node and mark type of the schema, plus
// the ones described by names.
func Builders(schema *model.Schema, names map[string]Spec) map[string]interface{} {
	result := map[string]interface{}{"schema": schema}
	for name, typ := range schema.Nodes {
		result[name] = block(typ, nil)
	}
	for name, typ := range schema.Marks {
		result[name] = mark(typ, nil)
	}
	for name, spec := range names {
		if spec.NodeType != "" {
			result[name] = block(schema.Nodes[spec.NodeType], spec.Attrs)
		} else {
			result[name] = mark(schema.Marks[spec.MarkType], spec.Attrs)
		}
	}
	return result
}

var out = Builders(note.Schema, map[string]Spec{
	"p":       {NodeType: "paragraph"},
	"pre":     {NodeType: "code_block"},
	"h1":      {NodeType: "heading", Attrs: model.Attrs{"level": 1}},
	"h2":      {NodeType: "heading", Attrs: model.Attrs{"level": 2}},
	"h3":      {NodeType: "heading", Attrs: model.Attrs{"level": 3}},
	"li":      {NodeType: "list_item"},
	"ul":      {NodeType: "bullet_list"},
	"ol":      {NodeType: "ordered_list"},
	"br":      {NodeType: "hard_break"},
	"img":     {NodeType: "image", Attrs: model.Attrs{"src": "img.png"}},
	"hr":      {NodeType: "horizontal_rule"},
	"tr":      {NodeType: "table_row"},
	"td":      {NodeType: "table_cell"},
	"th":      {NodeType: "table_header"},
	"box":     {NodeType: "checkbox"},
	"checked": {NodeType: "checkbox", Attrs: model.Attrs{"checked": true}},
	"a":       {MarkType: "link", Attrs: model.Attrs{"href": "foo"}},
})

// The builders of the note schema.
var (
	Schema     = out["schema"].(*model.Schema)
	Doc        = out["doc"].(NodeBuilder)
	P          = out["p"].(NodeBuilder)
	Blockquote = out["blockquote"].(NodeBuilder)
	Pre        = out["pre"].(NodeBuilder)
	H1         = out["h1"].(NodeBuilder)
	H2         = out["h2"].(NodeBuilder)
	H3         = out["h3"].(NodeBuilder)
	Li         = out["li"].(NodeBuilder)
	Ul         = out["ul"].(NodeBuilder)
	Ol         = out["ol"].(NodeBuilder)
	Br         = out["br"].(NodeBuilder)
	Img        = out["img"].(NodeBuilder)
	Hr         = out["hr"].(NodeBuilder)
	Table      = out["table"].(NodeBuilder)
	Tr         = out["tr"].(NodeBuilder)
	Td         = out["td"].(NodeBuilder)
	Th         = out["th"].(NodeBuilder)
	Box        = out["box"].(NodeBuilder)
	Checked    = out["checked"].(NodeBuilder)
	A          = out["a"].(MarkBuilder)
	Em         = out["em"].(MarkBuilder)
	Strong     = out["strong"].(MarkBuilder)
	Code       = out["code"].(MarkBuilder)
	U          = out["underline"].(MarkBuilder)
	S          = out["strike"].(MarkBuilder)
	Hl         = out["highlight"].(MarkBuilder)
	Label      = out["label"].(MarkBuilder)
)
