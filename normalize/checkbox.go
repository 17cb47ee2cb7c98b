package normalize

import (
	"regexp"
	"unicode/utf8"

	"github.com/shodgson/notedoc/model"
)

// markerRe matches a task marker at the start of a paragraph: "[ ]", "[x]"
// or "[]".
var markerRe = regexp.MustCompile(`^\s*\[\s*(x?)\s*\]\s*`)

// checkbox turns a paragraph starting with a task marker into a checkbox
// followed by the label-marked rest of the paragraph. Paragraphs that
// already hold a checkbox are left alone.
func (n *Normalizer) checkbox(node *model.Node) (*model.Node, error) {
	if node.Type.Name != "paragraph" || hasCheckbox(node) {
		return node, nil
	}
	schema := node.Type.Schema
	boxType, ok := schema.Nodes["checkbox"]
	if !ok {
		return node, nil
	}
	lead := leadingText(node)
	m := markerRe.FindStringSubmatchIndex(lead)
	if m == nil {
		return node, nil
	}

	box, err := boxType.Create(model.Attrs{"checked": m[3] > m[2]}, nil, nil)
	if err != nil {
		return nil, err
	}
	nodes := []*model.Node{box}
	label := schema.Mark("label")
	node.Content.Cut(utf8.RuneCountInString(lead[:m[1]])).ForEach(func(child *model.Node, _, _ int) {
		if label != nil {
			child = child.Mark(label.AddToSet(child.Marks))
		}
		nodes = append(nodes, child)
	})
	return node.Copy(model.FragmentFromArray(nodes)), nil
}

func hasCheckbox(node *model.Node) bool {
	found := false
	node.ForEach(func(child *model.Node, _, _ int) {
		found = found || child.Type.Name == "checkbox"
	})
	return found
}

// leadingText returns the text of the run of text nodes starting the node.
func leadingText(node *model.Node) string {
	text := ""
	for _, child := range node.Content.Content {
		if !child.IsText() {
			break
		}
		text += *child.Text
	}
	return text
}
