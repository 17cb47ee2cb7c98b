// Package notion converts note documents to Notion API blocks.
package notion

import (
	"strings"

	gonotion "github.com/dstotijn/go-notion"
	"github.com/shodgson/notedoc/model"
)

// ToBlocks serializes a block node. It returns nil for nodes that have no
// Notion counterpart.
type ToBlocks = func(s *Serializer, node *model.Node) []gonotion.Block

// Serializer turns a document into a list of Notion blocks.
type Serializer struct {
	// The node serialization functions, keyed by node type name.
	Nodes map[string]ToBlocks
}

// DefaultSerializer handles the node types of the note schema.
var DefaultSerializer = &Serializer{Nodes: map[string]ToBlocks{
	"paragraph": func(s *Serializer, node *model.Node) []gonotion.Block {
		if first := node.FirstChild(); first != nil && first.Type.Name == "checkbox" {
			checked := first.AttrBool("checked")
			return []gonotion.Block{{
				Type: gonotion.BlockTypeToDo,
				ToDo: &gonotion.ToDo{
					RichTextBlock: gonotion.RichTextBlock{Text: RichText(node)},
					Checked:       &checked,
				},
			}}
		}
		return []gonotion.Block{paragraph(RichText(node))}
	},
	"heading": func(s *Serializer, node *model.Node) []gonotion.Block {
		heading := &gonotion.Heading{Text: RichText(node)}
		switch node.AttrInt("level", 1) {
		case 1:
			return []gonotion.Block{{Type: gonotion.BlockTypeHeading1, Heading1: heading}}
		case 2:
			return []gonotion.Block{{Type: gonotion.BlockTypeHeading2, Heading2: heading}}
		default:
			return []gonotion.Block{{Type: gonotion.BlockTypeHeading3, Heading3: heading}}
		}
	},
	"code_block": func(s *Serializer, node *model.Node) []gonotion.Block {
		text := node.TextContent()
		return []gonotion.Block{paragraph([]gonotion.RichText{{
			Type:        gonotion.RichTextTypeText,
			PlainText:   text,
			Text:        &gonotion.Text{Content: text},
			Annotations: &gonotion.Annotations{Code: true},
		}})}
	},
	"blockquote": func(s *Serializer, node *model.Node) []gonotion.Block {
		return s.SerializeFragment(node.Content)
	},
	"bullet_list": func(s *Serializer, node *model.Node) []gonotion.Block {
		return s.listItems(node, gonotion.BlockTypeBulletedListItem)
	},
	"ordered_list": func(s *Serializer, node *model.Node) []gonotion.Block {
		return s.listItems(node, gonotion.BlockTypeNumberedListItem)
	},
	"table": func(s *Serializer, node *model.Node) []gonotion.Block {
		var result []gonotion.Block
		node.ForEach(func(row *model.Node, _, _ int) {
			var text []gonotion.RichText
			row.ForEach(func(cell *model.Node, _, index int) {
				if index > 0 {
					text = append(text, plain(" | "))
				}
				text = append(text, RichText(cell)...)
			})
			result = append(result, paragraph(text))
		})
		return result
	},
}}

// Export serializes a document with the default serializer.
func Export(doc *model.Node) []gonotion.Block {
	return DefaultSerializer.SerializeFragment(doc.Content)
}

// SerializeFragment serializes the block nodes of a fragment.
func (s *Serializer) SerializeFragment(fragment *model.Fragment) []gonotion.Block {
	result := []gonotion.Block{}
	fragment.ForEach(func(node *model.Node, _, _ int) {
		result = append(result, s.SerializeNode(node)...)
	})
	return result
}

// SerializeNode serializes a single block node.
func (s *Serializer) SerializeNode(node *model.Node) []gonotion.Block {
	if fn, ok := s.Nodes[node.Type.Name]; ok {
		return fn(s, node)
	}
	return nil
}

func (s *Serializer) listItems(list *model.Node, typ gonotion.BlockType) []gonotion.Block {
	var result []gonotion.Block
	list.ForEach(func(item *model.Node, _, _ int) {
		block := &gonotion.RichTextBlock{Text: []gonotion.RichText{}}
		item.ForEach(func(child *model.Node, _, index int) {
			if index == 0 && child.IsTextblock() {
				block.Text = RichText(child)
				return
			}
			block.Children = append(block.Children, s.SerializeNode(child)...)
		})
		b := gonotion.Block{Type: typ}
		if typ == gonotion.BlockTypeNumberedListItem {
			b.NumberedListItem = block
		} else {
			b.BulletedListItem = block
		}
		result = append(result, b)
	})
	return result
}

func paragraph(text []gonotion.RichText) gonotion.Block {
	return gonotion.Block{
		Type:      gonotion.BlockTypeParagraph,
		Paragraph: &gonotion.RichTextBlock{Text: text},
	}
}

func plain(text string) gonotion.RichText {
	return gonotion.RichText{
		Type:      gonotion.RichTextTypeText,
		PlainText: text,
		Text:      &gonotion.Text{Content: text},
	}
}

// RichText converts the inline content of a textblock. Checkboxes are left
// out; line breaks become newlines and images their alt text, linked to the
// image.
func RichText(node *model.Node) []gonotion.RichText {
	result := []gonotion.RichText{}
	node.ForEach(func(child *model.Node, _, _ int) {
		var rt gonotion.RichText
		switch {
		case child.IsText():
			rt = plain(*child.Text)
		case child.Type.Name == "hard_break":
			rt = plain("\n")
		case child.Type.Name == "image":
			alt := child.AttrString("alt")
			if alt == "" {
				alt = child.AttrString("src")
			}
			rt = plain(alt)
			rt.Text.Link = &gonotion.Link{URL: child.AttrString("src")}
		default:
			return
		}
		annotate(&rt, child.Marks)
		if n := len(result); n > 0 && sameStyle(result[n-1], rt) {
			result[n-1].PlainText += rt.PlainText
			result[n-1].Text.Content += rt.Text.Content
			return
		}
		result = append(result, rt)
	})
	return result
}

func annotate(rt *gonotion.RichText, marks []*model.Mark) {
	annotations := &gonotion.Annotations{}
	has := false
	for _, m := range marks {
		switch m.Type.Name {
		case "strong":
			annotations.Bold, has = true, true
		case "em":
			annotations.Italic, has = true, true
		case "underline":
			annotations.Underline, has = true, true
		case "strike":
			annotations.Strikethrough, has = true, true
		case "code":
			annotations.Code, has = true, true
		case "highlight":
			annotations.Color, has = gonotion.Color("yellow_background"), true
		case "link":
			href := m.AttrString("href")
			rt.HRef = &href
			rt.Text.Link = &gonotion.Link{URL: href}
		}
	}
	if has {
		rt.Annotations = annotations
	}
}

func sameStyle(a, b gonotion.RichText) bool {
	if (a.Annotations == nil) != (b.Annotations == nil) {
		return false
	}
	if a.Annotations != nil && *a.Annotations != *b.Annotations {
		return false
	}
	return linkURL(a) == linkURL(b) && !strings.HasSuffix(a.PlainText, "\n") && b.PlainText != "\n"
}

func linkURL(rt gonotion.RichText) string {
	if rt.Text == nil || rt.Text.Link == nil {
		return ""
	}
	return rt.Text.Link.URL
}
