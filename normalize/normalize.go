// Package normalize holds the content normalizers run after every edit of a
// note: checkbox conversion, canonical list, table and heading styling, and
// section tagging. Every pass is a pure function of the document and the
// pipeline is idempotent.
package normalize

import (
	"github.com/pkg/errors"
	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/schema/note"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// Config drives the heading pass.
type Config struct {
	// SectionLabels are heading texts that mark a callout section. They are
	// compared case-folded against the whole heading text.
	SectionLabels []string
	// SectionPhrases mark a callout section when the heading text contains
	// one of them.
	SectionPhrases []string
	// ConclusionLabel is the heading text that starts the conclusion section.
	ConclusionLabel string
	// HeadingStyles enables the canonical styling of h1 to h3.
	HeadingStyles bool
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		SectionLabels:   []string{"conclusion"},
		SectionPhrases:  []string{"implementation checklist", "restart conditions"},
		ConclusionLabel: "conclusion",
		HeadingStyles:   true,
	}
}

type pass struct {
	name string
	fn   func(*model.Node) (*model.Node, error)
}

// Normalizer runs the normalization pipeline.
type Normalizer struct {
	cfg    Config
	schema *model.Schema
	parser *model.DOMParser
	logger *zap.Logger

	labels     []string
	phrases    []string
	conclusion string

	passes []pass
}

type Option func(*Normalizer)

func WithLogger(logger *zap.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// WithSchema sets the schema used to parse pasted HTML. It defaults to the
// note schema.
func WithSchema(schema *model.Schema) Option {
	return func(n *Normalizer) {
		n.schema = schema
	}
}

func New(cfg Config, opts ...Option) *Normalizer {
	n := &Normalizer{cfg: cfg}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = zap.NewNop()
	}
	if n.schema == nil {
		n.schema = note.Schema
	}
	n.parser = model.DOMParserFromSchema(n.schema)

	for _, l := range cfg.SectionLabels {
		if l = fold(l); l != "" {
			n.labels = append(n.labels, l)
		}
	}
	for _, p := range cfg.SectionPhrases {
		if p = fold(p); p != "" {
			n.phrases = append(n.phrases, p)
		}
	}
	n.conclusion = fold(cfg.ConclusionLabel)

	n.passes = []pass{
		{name: "checkbox", fn: n.checkbox},
		{name: "lists", fn: lists},
		{name: "tables", fn: tables},
		{name: "headings", fn: n.headings},
	}
	return n
}

// Normalize runs every pass over doc, in order: checkbox, lists, tables,
// headings. The document is returned as is when nothing needed a change.
func (n *Normalizer) Normalize(doc *model.Node) (*model.Node, error) {
	for _, p := range n.passes {
		next, err := rewrite(doc, p.fn)
		if err != nil {
			return nil, errors.Wrapf(err, "normalize %s", p.name)
		}
		if next != doc {
			n.logger.Debug("normalization pass changed the document", zap.String("pass", p.name))
		}
		doc = next
	}
	if err := doc.Check(); err != nil {
		return nil, errors.Wrap(err, "normalized document is invalid")
	}
	return doc, nil
}

// Checkbox runs the checkbox pass alone.
func (n *Normalizer) Checkbox(doc *model.Node) (*model.Node, error) {
	return rewrite(doc, n.checkbox)
}

// Lists runs the list pass alone.
func (n *Normalizer) Lists(doc *model.Node) (*model.Node, error) {
	return rewrite(doc, lists)
}

// Tables runs the table pass alone.
func (n *Normalizer) Tables(doc *model.Node) (*model.Node, error) {
	return rewrite(doc, tables)
}

// Headings runs the heading pass alone.
func (n *Normalizer) Headings(doc *model.Node) (*model.Node, error) {
	return rewrite(doc, n.headings)
}

// rewrite rebuilds the block structure of node bottom-up: the children of a
// node are rewritten first, then fn gets the node holding the new children.
// Inline content is not descended into. Unchanged subtrees are shared.
func rewrite(node *model.Node, fn func(*model.Node) (*model.Node, error)) (*model.Node, error) {
	if node.IsInline() {
		return node, nil
	}
	if !node.IsTextblock() && node.ChildCount() > 0 {
		children := make([]*model.Node, 0, node.ChildCount())
		changed := false
		for _, child := range node.Content.Content {
			c, err := rewrite(child, fn)
			if err != nil {
				return nil, err
			}
			changed = changed || c != child
			children = append(children, c)
		}
		if changed {
			node = node.Copy(model.FragmentFromArray(children))
		}
	}
	return fn(node)
}

// mapChildren applies fn to every child of node, and returns node itself when
// no child changed.
func mapChildren(node *model.Node, fn func(child *model.Node, index int) *model.Node) *model.Node {
	children := make([]*model.Node, 0, node.ChildCount())
	changed := false
	node.ForEach(func(child *model.Node, _, index int) {
		c := fn(child, index)
		changed = changed || c != child
		children = append(children, c)
	})
	if !changed {
		return node
	}
	return node.Copy(model.FragmentFromArray(children))
}

func hasAttr(node *model.Node, name string) bool {
	_, ok := node.Type.Spec.Attrs[name]
	return ok
}

// fold prepares a text for caseless comparison.
func fold(s string) string {
	return cases.Fold().String(collapse(s))
}
