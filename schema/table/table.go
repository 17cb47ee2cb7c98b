// Package table exports the table node specs: a table holds rows, a row holds
// data and header cells.
package table

import (
	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/schema/basic"
	"golang.org/x/net/html/atom"
)

// AddTableNodes appends the table, table_row, table_cell and table_header
// node specs to nodes. cellContent is the content expression of cells and
// tableGroup the group of the table node.
func AddTableNodes(nodes []*model.NodeSpec, cellContent, tableGroup string) []*model.NodeSpec {
	result := make([]*model.NodeSpec, 0, len(nodes)+4)
	result = append(result, nodes...)
	return append(result,
		&model.NodeSpec{
			Key:      "table",
			Content:  "table_row+",
			Group:    tableGroup,
			Attrs:    basic.BlockAttrs(nil),
			ParseDOM: []model.ParseRule{basic.BlockRule("table")},
			ToDOM:    model.BlockDOMGenerator(atom.Table),
		},
		&model.NodeSpec{
			Key:      "table_row",
			Content:  "(table_cell | table_header)+",
			Attrs:    basic.BlockAttrs(nil),
			ParseDOM: []model.ParseRule{basic.BlockRule("tr")},
			ToDOM:    model.BlockDOMGenerator(atom.Tr),
		},
		&model.NodeSpec{
			Key:      "table_cell",
			Content:  cellContent,
			Attrs:    basic.BlockAttrs(nil),
			ParseDOM: []model.ParseRule{basic.BlockRule("td")},
			ToDOM:    model.BlockDOMGenerator(atom.Td),
		},
		&model.NodeSpec{
			Key:      "table_header",
			Content:  cellContent,
			Attrs:    basic.BlockAttrs(nil),
			ParseDOM: []model.ParseRule{basic.BlockRule("th")},
			ToDOM:    model.BlockDOMGenerator(atom.Th),
		},
	)
}

// IsCell tells whether the node is a data or header cell.
func IsCell(n *model.Node) bool {
	return n.Type.Is("table_cell", "table_header")
}
