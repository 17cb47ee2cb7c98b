package normalize

import (
	"github.com/pkg/errors"
	"github.com/shodgson/notedoc/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sanitize parses pasted HTML into block content of the normalizer's schema.
// Unknown elements are unwrapped, scripts, styles and foreign attributes
// dropped. hasStructure reports a table or a list in the input; the list and
// table passes are then applied to the result.
func (n *Normalizer) Sanitize(src string) (frag *model.Fragment, hasStructure bool, err error) {
	dom, err := model.ParseHTMLFragment(src)
	if err != nil {
		return nil, false, errors.Wrap(err, "parse pasted html")
	}
	for _, d := range dom {
		hasStructure = hasStructure || containsStructure(d)
	}
	frag, err = n.parser.ParseBlocks(src)
	if err != nil {
		return nil, false, errors.Wrap(err, "parse pasted html")
	}
	if !hasStructure {
		return frag, false, nil
	}

	nodes := make([]*model.Node, 0, frag.ChildCount())
	for _, node := range frag.Content {
		for _, fn := range []func(*model.Node) (*model.Node, error){lists, tables} {
			if node, err = rewrite(node, fn); err != nil {
				return nil, false, err
			}
		}
		nodes = append(nodes, node)
	}
	return model.FragmentFromArray(nodes), true, nil
}

func containsStructure(n *html.Node) bool {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Table, atom.Ul, atom.Ol, atom.Li:
			return true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if containsStructure(c) {
			return true
		}
	}
	return false
}
