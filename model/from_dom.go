package model

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements whose content is never parsed.
var ignoredTags = map[string]bool{
	"script": true, "style": true, "head": true, "meta": true, "title": true,
	"template": true, "noscript": true, "link": true, "object": true,
	"iframe": true, "svg": true,
}

type nodeRule struct {
	ParseRule
	nodeType *NodeType
	order    int
}

type markRule struct {
	ParseRule
	markType *MarkType
	order    int
}

// A DOMParser is responsible for parsing HTML into documents of a schema,
// using the ParseDOM rules of the node and mark specs. Content that does not
// fit the schema is wrapped or unwrapped until it does; unknown elements are
// replaced by their children.
type DOMParser struct {
	Schema *Schema
	// The textblock used to wrap stray inline content.
	DefaultTextblock *NodeType

	nodeRules []nodeRule
	markRules []markRule
}

// DOMParserFromSchema builds a parser from the parse rules of a schema.
func DOMParserFromSchema(schema *Schema) *DOMParser {
	p := &DOMParser{Schema: schema}
	order := 0
	for _, nt := range schema.nodeOrder {
		for _, rule := range nt.Spec.ParseDOM {
			p.nodeRules = append(p.nodeRules, nodeRule{ParseRule: rule, nodeType: nt, order: order})
			order++
		}
		if p.DefaultTextblock == nil && nt.IsTextblock() && nt.DefaultAttrs != nil && nt.MarkSet == nil {
			p.DefaultTextblock = nt
		}
	}
	if nt, ok := schema.Nodes["paragraph"]; ok {
		p.DefaultTextblock = nt
	}
	for _, mt := range schema.markOrder {
		for _, rule := range mt.Spec.ParseDOM {
			p.markRules = append(p.markRules, markRule{ParseRule: rule, markType: mt, order: order})
			order++
		}
	}
	sort.SliceStable(p.nodeRules, func(i, j int) bool {
		return p.nodeRules[i].Priority > p.nodeRules[j].Priority
	})
	sort.SliceStable(p.markRules, func(i, j int) bool {
		return p.markRules[i].Priority > p.markRules[j].Priority
	})
	return p
}

// ParseHTMLFragment parses an HTML string as the content of a body element.
func ParseHTMLFragment(src string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), context)
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse HTML")
	}
	return nodes, nil
}

// Parse parses an HTML string into a top node of the schema. Empty input
// gives the smallest valid document.
func (p *DOMParser) Parse(src string) (*Node, error) {
	children, err := p.parseSource(src)
	if err != nil {
		return nil, err
	}
	top := p.Schema.TopNodeType
	doc, err := top.Create(nil, p.fitBlocks(top, children, true), nil)
	if err != nil {
		return nil, err
	}
	if err := doc.Check(); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseBlocks parses an HTML string into block content fitting the top node.
// The result may be empty.
func (p *DOMParser) ParseBlocks(src string) (*Fragment, error) {
	children, err := p.parseSource(src)
	if err != nil {
		return nil, err
	}
	return p.fitBlocks(p.Schema.TopNodeType, children, false), nil
}

// ParseInline parses an HTML string into inline content fitting the given
// textblock type. Block structure is flattened.
func (p *DOMParser) ParseInline(src string, parent *NodeType) (*Fragment, error) {
	children, err := p.parseSource(src)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		parent = p.DefaultTextblock
	}
	return p.fitInline(parent, children, false), nil
}

func (p *DOMParser) parseSource(src string) ([]*Node, error) {
	nodes, err := ParseHTMLFragment(src)
	if err != nil {
		return nil, err
	}
	var result []*Node
	for _, n := range nodes {
		result = append(result, p.parseDOM(n, parseContext{marks: NoMarks})...)
	}
	return result, nil
}

type parseContext struct {
	marks    []*Mark
	preserve bool
}

func (p *DOMParser) parseChildren(parent *html.Node, ctx parseContext) []*Node {
	var result []*Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		result = append(result, p.parseDOM(c, ctx)...)
	}
	return result
}

func (p *DOMParser) parseDOM(dom *html.Node, ctx parseContext) []*Node {
	switch dom.Type {
	case html.TextNode:
		text := dom.Data
		if !ctx.preserve {
			text = collapseSpace(text)
		}
		if text == "" {
			return nil
		}
		return []*Node{p.Schema.Text(text, ctx.marks)}
	case html.ElementNode, html.DocumentNode:
	default:
		return nil
	}
	if ignoredTags[strings.ToLower(dom.Data)] {
		return nil
	}
	if rule := p.matchNode(dom); rule != nil {
		return p.parseNodeRule(dom, rule, ctx)
	}
	marks := ctx.marks
	for _, rule := range p.matchMarks(dom) {
		var attrs Attrs
		if rule.GetAttrs != nil {
			attrs = rule.GetAttrs(dom)
		}
		marks = rule.markType.Create(attrs).AddToSet(marks)
	}
	inner := ctx
	inner.marks = marks
	return p.parseChildren(dom, inner)
}

func (p *DOMParser) matchNode(dom *html.Node) *nodeRule {
	tag := strings.ToLower(dom.Data)
	for i := range p.nodeRules {
		rule := &p.nodeRules[i]
		if rule.Tag == tag && (rule.Match == nil || rule.Match(dom)) {
			return rule
		}
	}
	return nil
}

func (p *DOMParser) matchMarks(dom *html.Node) []*markRule {
	tag := strings.ToLower(dom.Data)
	var result []*markRule
	seen := map[*MarkType]bool{}
	for i := range p.markRules {
		rule := &p.markRules[i]
		if seen[rule.markType] {
			continue
		}
		if rule.Tag == tag && (rule.Match == nil || rule.Match(dom)) {
			result = append(result, rule)
			seen[rule.markType] = true
		}
	}
	return result
}

func (p *DOMParser) parseNodeRule(dom *html.Node, rule *nodeRule, ctx parseContext) []*Node {
	nt := rule.nodeType
	var attrs Attrs
	if rule.GetAttrs != nil {
		attrs = rule.GetAttrs(dom)
	}
	var marks []*Mark
	if nt.IsInline() {
		marks = ctx.marks
	}
	if nt.IsLeaf() {
		node, err := nt.Create(attrs, nil, marks)
		if err != nil {
			return nil
		}
		return []*Node{node}
	}
	inner := parseContext{marks: ctx.marks, preserve: ctx.preserve || rule.PreserveWhitespace}
	children := p.parseChildren(dom, inner)
	var content *Fragment
	if nt.IsTextblock() {
		content = p.fitInline(nt, children, inner.preserve)
	} else {
		content = p.fitBlocks(nt, children, true)
	}
	node, err := nt.Create(attrs, content, marks)
	if err != nil {
		// The element's children take its place.
		return children
	}
	return []*Node{node}
}

// fitInline flattens nodes into inline content valid for the textblock type.
func (p *DOMParser) fitInline(nt *NodeType, children []*Node, preserve bool) *Fragment {
	var out []*Node
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if !n.IsInline() {
				walk(n.Content.Content)
				continue
			}
			marks := nt.AllowedMarks(n.Marks)
			if nt.ContentMatch.Allows(n.Type) {
				out = append(out, n.Mark(marks))
			} else if text := leafText(n); text != "" {
				out = append(out, p.Schema.Text(text, marks))
			}
		}
	}
	walk(children)
	if !preserve {
		out = trimInline(out)
	}
	return FragmentFromArray(out)
}

func leafText(n *Node) string {
	if n.IsText() {
		return *n.Text
	}
	if n.Type.Spec.LeafText != nil {
		return n.Type.Spec.LeafText(n)
	}
	return ""
}

// trimInline drops the whitespace at the edges of a textblock and the double
// spaces created by joining text from different elements.
func trimInline(nodes []*Node) []*Node {
	result := make([]*Node, 0, len(nodes))
	prevSpace := true
	for _, n := range nodes {
		if !n.IsText() {
			result = append(result, n)
			prevSpace = false
			continue
		}
		text := *n.Text
		if prevSpace {
			text = strings.TrimLeft(text, " ")
		}
		if text == "" {
			continue
		}
		prevSpace = strings.HasSuffix(text, " ")
		result = append(result, n.WithText(text))
	}
	for i := len(result) - 1; i >= 0; i-- {
		n := result[i]
		if !n.IsText() {
			break
		}
		text := strings.TrimRight(*n.Text, " ")
		if text != "" {
			result[i] = n.WithText(text)
			break
		}
		result = result[:i]
	}
	return result
}

// fitBlocks arranges nodes into content valid for a node type with block
// content. Inline runs are wrapped in textblocks, nodes that are not allowed
// are wrapped or unwrapped. With fill, required content is created when
// nothing fits.
func (p *DOMParser) fitBlocks(nt *NodeType, children []*Node, fill bool) *Fragment {
	var out []*Node
	wrapped := map[*Node]bool{}
	var run []*Node
	flush := func() {
		if len(run) == 0 {
			return
		}
		if textblock := p.wrapInline(nt, run); textblock != nil {
			out = append(out, textblock)
			if textblock.Type != p.DefaultTextblock && !nt.ContentMatch.Allows(p.DefaultTextblock) {
				wrapped[textblock] = true
			}
		}
		run = nil
	}
	for _, child := range children {
		if child.IsInline() {
			run = append(run, child)
			continue
		}
		flush()
		for _, placed := range p.placeBlock(nt, child) {
			if placed.Type != child.Type && !placed.Type.IsTextblock() && !placed.Type.ContentMatch.Allows(p.DefaultTextblock) {
				wrapped[placed] = true
			}
			out = append(out, placed)
		}
	}
	flush()
	out = mergeWrapped(out, wrapped)

	if nt.ContentMatch.Matches(NewFragment(out)) {
		return FragmentFromArray(out)
	}
	if p.DefaultTextblock != nil && (len(out) > 0 || fill) {
		if empty, err := p.DefaultTextblock.Create(nil, nil, nil); err == nil {
			withFirst := append([]*Node{empty}, out...)
			if nt.ContentMatch.Matches(NewFragment(withFirst)) {
				return NewFragment(withFirst)
			}
		}
	}
	if len(out) == 0 && fill {
		if node := p.createFilled(nt); node != nil {
			return node.Content
		}
	}
	return FragmentFromArray(out)
}

// mergeWrapped joins adjacent wrappers of the same type created while
// fitting, so that consecutive stray cells end up in one row.
func mergeWrapped(nodes []*Node, wrapped map[*Node]bool) []*Node {
	var result []*Node
	for _, n := range nodes {
		last := len(result) - 1
		if last >= 0 && wrapped[n] && wrapped[result[last]] && result[last].Type == n.Type {
			merged := result[last].Copy(result[last].Content.Append(n.Content))
			wrapped[merged] = true
			result[last] = merged
			continue
		}
		result = append(result, n)
	}
	return result
}

// placeBlock puts a block node into a parent of type nt, wrapping it in an
// allowed container or replacing it by its content.
func (p *DOMParser) placeBlock(nt *NodeType, child *Node) []*Node {
	if nt.ContentMatch.Allows(child.Type) {
		return []*Node{child}
	}
	for _, w := range p.Schema.nodeOrder {
		if w.IsLeaf() || w.IsTextblock() || !nt.ContentMatch.Allows(w) || !w.ContentMatch.Allows(child.Type) {
			continue
		}
		node, err := w.Create(nil, p.fitBlocks(w, []*Node{child}, true), nil)
		if err == nil {
			return []*Node{node}
		}
	}
	if child.IsTextblock() {
		if node := p.wrapInline(nt, child.Content.Content); node != nil {
			return []*Node{node}
		}
		return nil
	}
	var result []*Node
	var run []*Node
	for _, grandChild := range child.Content.Content {
		if grandChild.IsInline() {
			run = append(run, grandChild)
			continue
		}
		if len(run) > 0 {
			if node := p.wrapInline(nt, run); node != nil {
				result = append(result, node)
			}
			run = nil
		}
		result = append(result, p.placeBlock(nt, grandChild)...)
	}
	if len(run) > 0 {
		if node := p.wrapInline(nt, run); node != nil {
			result = append(result, node)
		}
	}
	return result
}

// wrapInline builds a node allowed in nt that holds the inline nodes, going
// through as many wrapper levels as needed (list item, table row).
func (p *DOMParser) wrapInline(nt *NodeType, inline []*Node) *Node {
	if isBlank(inline) {
		return nil
	}
	path := p.textblockPath(nt, 3)
	if path == nil {
		return nil
	}
	textblock := path[len(path)-1]
	node, err := textblock.Create(nil, p.fitInline(textblock, inline, false), nil)
	if err != nil {
		return nil
	}
	for i := len(path) - 2; i >= 0; i-- {
		node, err = path[i].Create(nil, p.fitBlocks(path[i], []*Node{node}, true), nil)
		if err != nil {
			return nil
		}
	}
	return node
}

// textblockPath finds the shortest chain of types, starting with a type
// allowed in nt and ending with a textblock.
func (p *DOMParser) textblockPath(nt *NodeType, depth int) []*NodeType {
	if depth == 0 {
		return nil
	}
	if p.DefaultTextblock != nil && nt.ContentMatch.Allows(p.DefaultTextblock) {
		return []*NodeType{p.DefaultTextblock}
	}
	for _, t := range p.Schema.nodeOrder {
		if t.IsTextblock() && nt.ContentMatch.Allows(t) && t.DefaultAttrs != nil && t.MarkSet == nil {
			return []*NodeType{t}
		}
	}
	for _, t := range p.Schema.nodeOrder {
		if t.IsLeaf() || t.IsTextblock() || t.IsInline() || !nt.ContentMatch.Allows(t) || t.DefaultAttrs == nil {
			continue
		}
		if rest := p.textblockPath(t, depth-1); rest != nil {
			return append([]*NodeType{t}, rest...)
		}
	}
	return nil
}

// createFilled creates the smallest valid node of the given type.
func (p *DOMParser) createFilled(nt *NodeType) *Node {
	if nt.ContentMatch.MatchTypes(nil) {
		node, err := nt.Create(nil, nil, nil)
		if err != nil {
			return nil
		}
		return node
	}
	candidates := []*NodeType{}
	if p.DefaultTextblock != nil {
		candidates = append(candidates, p.DefaultTextblock)
	}
	candidates = append(candidates, p.Schema.nodeOrder...)
	for _, t := range candidates {
		if t.IsText() || t.DefaultAttrs == nil || !nt.ContentMatch.MatchTypes([]*NodeType{t}) {
			continue
		}
		child := p.createFilled(t)
		if child == nil {
			continue
		}
		node, err := nt.Create(nil, child, nil)
		if err == nil {
			return node
		}
	}
	return nil
}

func isBlank(nodes []*Node) bool {
	for _, n := range nodes {
		if !n.IsText() || strings.TrimSpace(*n.Text) != "" {
			return false
		}
	}
	return true
}

func collapseSpace(text string) string {
	var sb strings.Builder
	space := false
	for _, r := range text {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
		default:
			sb.WriteRune(r)
			space = false
		}
	}
	return sb.String()
}
