package model

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToDOM function type
type ToDOM = func(NodeOrMark) *html.Node

// NodeOrMark is what a ToDOM function receives: a *Node or a *Mark.
type NodeOrMark interface {
	GetAttrs([]string) []html.Attribute
}

// GetAttrs returns the given attributes of the node as HTML attributes, in
// the given order. Missing and empty attributes are skipped.
func (n *Node) GetAttrs(keys []string) []html.Attribute {
	return selectAttrs(n.Attrs, keys)
}

// GetAttrs returns the given attributes of the mark as HTML attributes, in
// the given order.
func (m *Mark) GetAttrs(keys []string) []html.Attribute {
	return selectAttrs(m.Attrs, keys)
}

func selectAttrs(attrs Attrs, keys []string) []html.Attribute {
	result := []html.Attribute{}
	for _, key := range keys {
		result = addAttr(key, attrs[key], result)
	}
	return result
}

func addAttr(key string, value interface{}, attrs []html.Attribute) []html.Attribute {
	newAttr := html.Attribute{
		Key: key,
	}
	switch v := value.(type) {
	case int:
		newAttr.Val = strconv.Itoa(v)
	case string:
		if v == "" {
			return attrs
		}
		newAttr.Val = v
	default:
		return attrs
	}
	return append(attrs, newAttr)
}

// Element creates an HTML element node.
func Element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

// DOMGenerator returns a ToDOM rendering an element with the given
// attributes of the node or mark.
func DOMGenerator(a atom.Atom, attrs ...string) ToDOM {
	return func(n NodeOrMark) *html.Node {
		return Element(a, n.GetAttrs(attrs)...)
	}
}

// BlockDOMGenerator returns a ToDOM rendering an element carrying the block
// presentation attributes (align, class, style) of the node.
func BlockDOMGenerator(a atom.Atom) ToDOM {
	return func(n NodeOrMark) *html.Node {
		node, _ := n.(*Node)
		if node == nil {
			return Element(a)
		}
		return Element(a, BlockDOMAttrs(node)...)
	}
}

// A DOM serializer knows how to convert nodes and marks of various types to
// HTML nodes.
type DOMSerializer struct {
	// The node serialization functions.
	Nodes map[string]ToDOM

	// The mark serialization functions. A mark type without a function is
	// not rendered.
	Marks map[string]ToDOM
}

// DOMSerializerFromSchema builds a serializer using the properties in a
// schema's node and mark specs.
func DOMSerializerFromSchema(schema *Schema) *DOMSerializer {
	return &DOMSerializer{
		Nodes: nodesFromSchema(schema),
		Marks: marksFromSchema(schema),
	}
}

func (d *DOMSerializer) hasMark(markName string) bool {
	return d.Marks[markName] != nil
}

// SerializeFragment serializes the content of this fragment to HTML nodes,
// appended to target (a new document node when nil).
func (d *DOMSerializer) SerializeFragment(fragment *Fragment, target *html.Node) *html.Node {
	if target == nil {
		target = &html.Node{
			Type: html.DocumentNode,
		}
	}
	type activeMark struct {
		mark *Mark
		top  *html.Node
	}
	var active []activeMark
	top := target
	fragment.ForEach(func(node *Node, offset, index int) {
		if len(active) > 0 || len(node.Marks) > 0 {
			keep, rendered := 0, 0
			for keep < len(active) && rendered < len(node.Marks) {
				next := node.Marks[rendered]
				if !d.hasMark(next.Type.Name) {
					rendered++
					continue
				}
				if !next.Eq(active[keep].mark) || (next.Type.Spec.Spanning != nil && !*next.Type.Spec.Spanning) {
					break
				}
				keep++
				rendered++
			}
			for keep < len(active) {
				n := len(active)
				top, active = active[n-1].top, active[:n-1]
			}
			for rendered < len(node.Marks) {
				add := node.Marks[rendered]
				rendered++
				if !d.hasMark(add.Type.Name) {
					continue
				}
				markDOM := d.Marks[add.Type.Name](add)
				if markDOM != nil {
					active = append(active, activeMark{mark: add, top: top})
					top.AppendChild(markDOM)
					top = markDOM
				}
			}
		}
		child := d.SerializeNode(node)
		if child != nil {
			top.AppendChild(child)
		}
	})
	return target
}

// SerializeNode serializes this node to an HTML node. This can be useful when
// you need to serialize a part of a document, as opposed to the whole
// document. The first descendant without children of the rendered element
// receives the node's content.
func (d *DOMSerializer) SerializeNode(node *Node) *html.Node {
	domFn := d.Nodes[node.Type.Name]
	if domFn == nil {
		return nil
	}
	topNode := domFn(node)
	if topNode == nil || node.Content.Size == 0 {
		return topNode
	}
	contentNode := topNode
	for contentNode.FirstChild != nil {
		contentNode = contentNode.FirstChild
	}
	d.SerializeFragment(node.Content, contentNode)
	return topNode
}

// RenderFragment serializes the fragment and renders it as an HTML string.
func (d *DOMSerializer) RenderFragment(fragment *Fragment) (string, error) {
	root := d.SerializeFragment(fragment, nil)
	var sb strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", errors.Wrap(err, "cannot render HTML")
		}
	}
	return sb.String(), nil
}

// RenderHTML renders the content of a document node as an HTML string.
func (d *DOMSerializer) RenderHTML(doc *Node) (string, error) {
	return d.RenderFragment(doc.Content)
}

// Gather the serializers in a schema's node specs into an object.
// This can be useful as a base to build a custom serializer from.
func nodesFromSchema(schema *Schema) (result map[string]ToDOM) {
	result = make(map[string]ToDOM)
	for _, n := range schema.Nodes {
		result[n.Name] = n.Spec.ToDOM
	}
	if textToDOM, ok := result["text"]; ok && textToDOM == nil {
		result["text"] = func(n NodeOrMark) *html.Node {
			node, _ := n.(*Node)
			return &html.Node{
				Type: html.TextNode,
				Data: *node.Text,
			}
		}
	}
	return result
}

// Gather the serializers in a schema's mark specs into an object.
func marksFromSchema(schema *Schema) (result map[string]ToDOM) {
	result = make(map[string]ToDOM)
	for _, m := range schema.Marks {
		if m.Spec.ToDOM != nil {
			result[m.Name] = m.Spec.ToDOM
		}
	}
	return result
}
