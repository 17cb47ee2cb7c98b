package model

import (
	"strings"

	"golang.org/x/net/html"
)

// Declaration is a single CSS property: value pair.
type Declaration struct {
	Property string
	Value    string
}

// Style is an ordered list of CSS declarations, as found in a style
// attribute. Properties are unique and lower-cased.
type Style []Declaration

// ParseStyle parses the content of a style attribute. Malformed declarations
// are dropped.
func ParseStyle(css string) Style {
	var style Style
	for _, part := range strings.Split(css, ";") {
		idx := strings.Index(part, ":")
		if idx < 0 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(part[:idx]))
		value := strings.Join(strings.Fields(part[idx+1:]), " ")
		if prop == "" || value == "" {
			continue
		}
		style = style.Set(prop, value)
	}
	return style
}

// Get returns the value of a property.
func (s Style) Get(prop string) (string, bool) {
	for _, d := range s {
		if d.Property == prop {
			return d.Value, true
		}
	}
	return "", false
}

// Set returns a style where prop has the given value. An existing
// declaration keeps its place.
func (s Style) Set(prop, value string) Style {
	result := make(Style, len(s), len(s)+1)
	copy(result, s)
	for i, d := range result {
		if d.Property == prop {
			result[i].Value = value
			return result
		}
	}
	return append(result, Declaration{Property: prop, Value: value})
}

// Remove returns a style without the given property.
func (s Style) Remove(prop string) Style {
	result := make(Style, 0, len(s))
	for _, d := range s {
		if d.Property != prop {
			result = append(result, d)
		}
	}
	return result
}

// Merge returns a style where every declaration of other has been set.
func (s Style) Merge(other Style) Style {
	result := s
	for _, d := range other {
		result = result.Set(d.Property, d.Value)
	}
	return result
}

// Contains tells whether every declaration of other is present in s with the
// same value.
func (s Style) Contains(other Style) bool {
	for _, d := range other {
		if v, ok := s.Get(d.Property); !ok || v != d.Value {
			return false
		}
	}
	return true
}

// String renders the style in its canonical form: "a: b; c: d".
func (s Style) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = d.Property + ": " + d.Value
	}
	return strings.Join(parts, "; ")
}

// HasClass tells whether the space-separated class list contains name.
func HasClass(classes, name string) bool {
	for _, c := range strings.Fields(classes) {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends name to the class list if it is not already present.
func AddClass(classes, name string) string {
	if HasClass(classes, name) {
		return strings.Join(strings.Fields(classes), " ")
	}
	return strings.Join(append(strings.Fields(classes), name), " ")
}

// RemoveClass removes every occurrence of name from the class list.
func RemoveClass(classes, name string) string {
	var kept []string
	for _, c := range strings.Fields(classes) {
		if c != name {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, " ")
}

// Alignments are the values of the align attribute of block nodes.
var Alignments = []string{"left", "center", "right", "justify"}

// AlignClass returns the class that mirrors an alignment.
func AlignClass(align string) string {
	return "text-" + align
}

func isAlignment(value string) bool {
	for _, a := range Alignments {
		if a == value {
			return true
		}
	}
	return false
}

// BlockAttrsFromDOM reads the presentation attributes shared by block nodes
// (align, class, style) from an HTML element. The alignment is taken out of
// the text-align declaration or the text-* class, so that both are rendered
// again from the align attribute only.
func BlockAttrsFromDOM(n *html.Node) Attrs {
	attrs := Attrs{}
	style := ParseStyle(DOMAttr(n, "style"))
	classes := DOMAttr(n, "class")
	align := ""
	if v, ok := style.Get("text-align"); ok && isAlignment(v) {
		align = v
	}
	if v := DOMAttr(n, "align"); align == "" && isAlignment(v) {
		align = v
	}
	for _, a := range Alignments {
		if HasClass(classes, AlignClass(a)) {
			if align == "" {
				align = a
			}
			classes = RemoveClass(classes, AlignClass(a))
		}
	}
	style = style.Remove("text-align")
	if align != "" {
		attrs["align"] = align
	}
	if c := strings.Join(strings.Fields(classes), " "); c != "" {
		attrs["class"] = c
	}
	if len(style) > 0 {
		attrs["style"] = style.String()
	}
	return attrs
}

// BlockDOMAttrs renders the presentation attributes of a block node, followed
// by the given extra attributes. The class attribute comes first, then
// style.
func BlockDOMAttrs(node *Node, extra ...html.Attribute) []html.Attribute {
	classes := node.AttrString("class")
	style := ParseStyle(node.AttrString("style"))
	if align := node.AttrString("align"); isAlignment(align) {
		classes = AddClass(classes, AlignClass(align))
		style = style.Set("text-align", align)
	}
	var result []html.Attribute
	if classes != "" {
		result = append(result, html.Attribute{Key: "class", Val: classes})
	}
	if len(style) > 0 {
		result = append(result, html.Attribute{Key: "style", Val: style.String()})
	}
	return append(result, extra...)
}

// DOMAttr returns the value of an attribute of an HTML element.
func DOMAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasDOMAttr tells whether an HTML element carries the attribute.
func HasDOMAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
