package normalize

import (
	"github.com/shodgson/notedoc/model"
)

// lists applies the canonical list styles. Items of ordered lists get their
// 1-based index, items of bullet lists lose it.
func lists(node *model.Node) (*model.Node, error) {
	if !node.Type.Is("bullet_list", "ordered_list") {
		return node, nil
	}
	ordered := node.Type.Name == "ordered_list"
	node = mapChildren(node, func(item *model.Node, index int) *model.Node {
		attrs := model.Attrs{"index": nil}
		if ordered {
			attrs["index"] = index + 1
		}
		return WithStyle(item.SetAttrs(attrs), listItemStyle)
	})
	if ordered {
		return WithStyle(node, orderedListStyle), nil
	}
	return WithStyle(node, bulletListStyle, "counter-reset"), nil
}

// tables applies the canonical table and cell styles.
func tables(node *model.Node) (*model.Node, error) {
	switch node.Type.Name {
	case "table":
		return WithStyle(node, tableStyle), nil
	case "table_cell":
		return WithStyle(node, cellStyle), nil
	case "table_header":
		return WithStyle(node, headerCellStyle), nil
	}
	return node, nil
}
