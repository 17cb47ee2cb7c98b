// Package list exports list-related schema elements. Lists are nestable, with
// the restriction that the first child of a list item is a plain paragraph.
package list

import (
	"strconv"

	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/schema/basic"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// An ordered list node spec. Has a single attribute, order, which
	// determines the number at which the list starts counting, and defaults to
	// 1. Represented as an <ol> element.
	orderedList = model.NodeSpec{
		Key:   "ordered_list",
		Attrs: basic.BlockAttrs(map[string]*model.AttributeSpec{"order": {Default: 1}}),
		ParseDOM: []model.ParseRule{{
			Tag: "ol",
			GetAttrs: func(n *html.Node) model.Attrs {
				attrs := model.BlockAttrsFromDOM(n)
				if start, err := strconv.Atoi(model.DOMAttr(n, "start")); err == nil {
					attrs["order"] = start
				}
				return attrs
			},
		}},
		ToDOM: func(n model.NodeOrMark) *html.Node {
			node := n.(*model.Node)
			var extra []html.Attribute
			if order := node.AttrInt("order", 1); order != 1 {
				extra = append(extra, html.Attribute{Key: "start", Val: strconv.Itoa(order)})
			}
			return model.Element(atom.Ol, model.BlockDOMAttrs(node, extra...)...)
		},
	}

	// A bullet list node spec, represented in the DOM as <ul>.
	bulletList = model.NodeSpec{
		Key:      "bullet_list",
		Attrs:    basic.BlockAttrs(nil),
		ParseDOM: []model.ParseRule{basic.BlockRule("ul")},
		ToDOM:    model.BlockDOMGenerator(atom.Ul),
	}

	// A list item (<li>) spec. The index attribute is the 1-based position of
	// the item in an ordered list, rendered as data-index.
	listItem = model.NodeSpec{
		Key:   "list_item",
		Attrs: basic.BlockAttrs(map[string]*model.AttributeSpec{"index": {Optional: true}}),
		ParseDOM: []model.ParseRule{{
			Tag: "li",
			GetAttrs: func(n *html.Node) model.Attrs {
				attrs := model.BlockAttrsFromDOM(n)
				if index, err := strconv.Atoi(model.DOMAttr(n, "data-index")); err == nil {
					attrs["index"] = index
				}
				return attrs
			},
		}},
		ToDOM: func(n model.NodeOrMark) *html.Node {
			node := n.(*model.Node)
			var extra []html.Attribute
			if _, ok := node.Attrs["index"]; ok {
				extra = append(extra, html.Attribute{Key: "data-index", Val: node.AttrString("index")})
			}
			return model.Element(atom.Li, model.BlockDOMAttrs(node, extra...)...)
		},
	}
)

func add(obj, props model.NodeSpec) *model.NodeSpec {
	if props.Content != "" {
		obj.Content = props.Content
	}
	if props.Group != "" {
		obj.Group = props.Group
	}
	return &obj
}

// AddListNodes is a convenience function for adding list-related node types
// to a slice specifying the nodes for a schema. Adds bulletList as
// "bullet_list", orderedList as "ordered_list", and listItem as "list_item".
// Bullet lists come first, so stray list items end up in one.
//
// itemContent determines the content expression for the list items. It should
// have a shape like "paragraph block*" or "paragraph (ordered_list |
// bullet_list)*". listGroup can be given to assign a group name to the list
// node types, for example "block".
func AddListNodes(nodes []*model.NodeSpec, itemContent, listGroup string) []*model.NodeSpec {
	result := make([]*model.NodeSpec, 0, len(nodes)+3)
	result = append(result, nodes...)
	return append(
		result,
		add(bulletList, model.NodeSpec{Content: "list_item+", Group: listGroup}),
		add(orderedList, model.NodeSpec{Content: "list_item+", Group: listGroup}),
		add(listItem, model.NodeSpec{Content: itemContent}),
	)
}
