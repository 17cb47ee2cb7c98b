package normalize

import (
	"strings"

	"github.com/shodgson/notedoc/model"
)

// Classes managed by section tagging.
const (
	CalloutClass           = "section-callout"
	ConclusionHeadingClass = "conclusion-heading"
	ConclusionContentClass = "conclusion-content"
)

var managedClasses = []string{CalloutClass, ConclusionHeadingClass, ConclusionContentClass}

// headings styles h1 to h3 and tags the sections among the children of
// node.
func (n *Normalizer) headings(node *model.Node) (*model.Node, error) {
	if node.Type.Name == "heading" && n.cfg.HeadingStyles {
		if style := HeadingStyle(node.AttrInt("level", 1)); style != nil {
			node = WithStyle(node, style)
		}
	}
	if node.IsTextblock() || node.IsLeaf() {
		return node, nil
	}

	inConclusion := false
	return mapChildren(node, func(child *model.Node, _ int) *model.Node {
		var classes []string
		if child.Type.Name == "heading" {
			inConclusion = false
			if child.AttrInt("level", 1) <= 3 {
				text := fold(child.TextContent())
				if n.isCallout(text) {
					classes = append(classes, CalloutClass)
				}
				if n.conclusion != "" && text == n.conclusion {
					classes = append(classes, ConclusionHeadingClass)
					inConclusion = true
				}
			}
		} else if inConclusion {
			classes = append(classes, ConclusionContentClass)
		}
		return setManagedClasses(child, classes)
	}), nil
}

func (n *Normalizer) isCallout(text string) bool {
	if text == "" {
		return false
	}
	for _, l := range n.labels {
		if text == l {
			return true
		}
	}
	for _, p := range n.phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// setManagedClasses replaces the managed classes of node by classes.
func setManagedClasses(node *model.Node, classes []string) *model.Node {
	if !hasAttr(node, "class") {
		return node
	}
	current := node.AttrString("class")
	next := current
	for _, c := range managedClasses {
		next = model.RemoveClass(next, c)
	}
	for _, c := range classes {
		next = model.AddClass(next, c)
	}
	if next == current {
		return node
	}
	if next == "" {
		return node.SetAttrs(model.Attrs{"class": nil})
	}
	return node.SetAttrs(model.Attrs{"class": next})
}
