package normalize

import (
	"strings"

	"github.com/shodgson/notedoc/model"
)

var (
	bulletListStyle  = model.ParseStyle("list-style-type: disc; padding-left: 1.5em; margin: 0.5em 0")
	orderedListStyle = model.ParseStyle("list-style-type: decimal; counter-reset: item; padding-left: 1.5em; margin: 0.5em 0")
	listItemStyle    = model.ParseStyle("margin: 0.25em 0; display: list-item")
	tableStyle       = model.ParseStyle("border-collapse: collapse; width: 100%")
	cellStyle        = model.ParseStyle("border: 1px solid #d1d5db; padding: 6px 8px")
	headerCellStyle  = cellStyle.Set("font-weight", "bold")

	headingStyles = map[int]model.Style{
		1: model.ParseStyle("font-size: 2em; font-weight: bold; margin: 0.67em 0"),
		2: model.ParseStyle("font-size: 1.5em; font-weight: bold; margin: 0.83em 0"),
		3: model.ParseStyle("font-size: 1.17em; font-weight: bold; margin: 1em 0"),
	}
)

// ListStyle returns the canonical style of a bullet or ordered list.
func ListStyle(ordered bool) model.Style {
	if ordered {
		return orderedListStyle
	}
	return bulletListStyle
}

// ListItemStyle returns the canonical style of a list item.
func ListItemStyle() model.Style {
	return listItemStyle
}

// HeadingStyle returns the canonical style of a heading level, or nil for
// levels without one.
func HeadingStyle(level int) model.Style {
	return headingStyles[level]
}

// StripHeadingStyle removes the properties set by heading styles.
func StripHeadingStyle(style model.Style) model.Style {
	for _, prop := range []string{"font-size", "font-weight", "margin"} {
		style = style.Remove(prop)
	}
	return style
}

// WithStyle returns node with its style attribute merged with canonical,
// after removing the drop properties.
func WithStyle(node *model.Node, canonical model.Style, drop ...string) *model.Node {
	style := model.ParseStyle(node.AttrString("style"))
	for _, prop := range drop {
		style = style.Remove(prop)
	}
	return SetStyle(node, style.Merge(canonical))
}

// SetStyle replaces the style attribute of node. An empty style removes the
// attribute.
func SetStyle(node *model.Node, style model.Style) *model.Node {
	if len(style) == 0 {
		return node.SetAttrs(model.Attrs{"style": nil})
	}
	return node.SetAttrs(model.Attrs{"style": style.String()})
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
