package model

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// Attrs is the attribute map of a node or a mark. Values are strings, ints or
// bools.
type Attrs = map[string]interface{}

// AttributeSpec is used to define attributes on nodes or marks.
type AttributeSpec struct {
	// The default value for this attribute, to use when no explicit value is
	// provided. Attributes that have no default must be provided whenever a
	// node or mark of a type that has them is created.
	Default interface{}
	// Optional tells that the attribute may be omitted, in which case it
	// takes its Default (possibly nil).
	Optional bool
}

func (as *AttributeSpec) hasDefault() bool {
	return as.Default != nil || as.Optional
}

// ParseRule describes how an HTML element maps to a node or a mark.
type ParseRule struct {
	// Tag is the lowercase element name this rule applies to.
	Tag string
	// Match, when given, must return true for the rule to apply.
	Match func(n *html.Node) bool
	// GetAttrs computes the attributes of the node or mark.
	GetAttrs func(n *html.Node) Attrs
	// Priority orders rules that share a tag; higher first.
	Priority int
	// PreserveWhitespace keeps whitespace inside the element as is.
	PreserveWhitespace bool
}

// NodeSpec is an object describing a node type.
type NodeSpec struct {
	// The name of the node type.
	Key string
	// The content expression for this node. When not given, the node does
	// not allow any content.
	Content string
	// The marks that are allowed inside of this node. May be a space-separated
	// string referring to mark names or groups, "_" to explicitly allow all
	// marks, or "" to disallow marks. When nil, nodes with inline content
	// allow all marks, other nodes allow no marks.
	Marks *string
	// The group or space-separated groups to which this node belongs.
	Group string
	// Should be set to true for inline nodes. (Implied for text nodes.)
	Inline bool
	// The attributes that nodes of this type get.
	Attrs map[string]*AttributeSpec
	// ToDOM renders a node of this type as an HTML element. The first
	// descendant without children receives the node's content.
	ToDOM ToDOM
	// ParseDOM associates this node type with HTML elements.
	ParseDOM []ParseRule
	// ToDebugString overrides the default debugging representation.
	ToDebugString func(*Node) string
	// LeafText gives the text that stands for a non-text leaf node when it
	// is flattened into text.
	LeafText func(*Node) string
}

// MarkSpec is an object describing a mark type.
type MarkSpec struct {
	Key   string
	Attrs map[string]*AttributeSpec
	// Whether this mark should be active when the cursor is positioned at its
	// end (or at its start when that is also the start of the parent node).
	// Defaults to true.
	Inclusive *bool
	// Determines which other marks this mark can coexist with. Should be a
	// space-separated strings naming other marks or groups of marks. When a
	// mark is added to a set, all marks that it excludes are removed in the
	// process. "_" excludes all marks, "" excludes none. Defaults to the mark
	// type itself only.
	Excludes *string
	// The group or space-separated groups to which this mark belongs.
	Group string
	// Determines whether marks of this type can span multiple adjacent nodes
	// when serialized to HTML. Defaults to true.
	Spanning *bool
	ToDOM    ToDOM
	ParseDOM []ParseRule
}

// SchemaSpec is an object describing a schema, as passed to the Schema
// constructor.
type SchemaSpec struct {
	// The node types in this schema. The first one is the top node unless
	// TopNode says otherwise. Order determines parse rule precedence.
	Nodes []*NodeSpec
	// The mark types that exist in this schema. The order in which they are
	// provided determines the order in which mark sets are sorted and in
	// which parse rules are tried.
	Marks []*MarkSpec
	// The name of the default top-level node for the schema. Defaults to
	// "doc".
	TopNode string
}

// NodeType are objects allocated once per Schema and used to tag Node
// instances. They contain information about the node type, such as its name
// and what kind of node it represents.
type NodeType struct {
	// The name the node type has in this schema.
	Name string
	// A link back to the Schema the node type belongs to.
	Schema *Schema
	// The spec that this type is based on
	Spec *NodeSpec
	// The groups this type belongs to.
	Groups []string
	// The starting match of the node type's content expression.
	ContentMatch *ContentMatch
	// The set of marks allowed in this node. nil means all marks are
	// allowed.
	MarkSet []*MarkType
	// The attributes a node of this type gets when none are given, or nil
	// when some attribute is required.
	DefaultAttrs Attrs

	inlineContent bool
}

func newNodeType(name string, schema *Schema, spec *NodeSpec) *NodeType {
	nt := &NodeType{
		Name:   name,
		Schema: schema,
		Spec:   spec,
		Groups: strings.Fields(spec.Group),
	}
	nt.DefaultAttrs = defaultAttrs(spec.Attrs)
	return nt
}

// IsInline returns true if this is an inline type.
func (nt *NodeType) IsInline() bool {
	return !nt.IsBlock()
}

// IsBlock returns true if this is a block type.
func (nt *NodeType) IsBlock() bool {
	return !(nt.Spec.Inline || nt.Name == "text")
}

// IsText returns true if this is the text node type.
func (nt *NodeType) IsText() bool {
	return nt.Name == "text"
}

// IsTextblock returns true if this is a block type with inline content.
func (nt *NodeType) IsTextblock() bool {
	return nt.IsBlock() && nt.inlineContent
}

// IsLeaf returns true for node types that allow no content.
func (nt *NodeType) IsLeaf() bool {
	return nt.ContentMatch == EmptyContentMatch
}

// InGroup tells whether this type belongs to the given group.
func (nt *NodeType) InGroup(group string) bool {
	for _, g := range nt.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Is reports whether the type has one of the given names.
func (nt *NodeType) Is(names ...string) bool {
	for _, name := range names {
		if nt.Name == name {
			return true
		}
	}
	return false
}

// ComputeAttrs fills in default values and checks that required attributes
// are present.
func (nt *NodeType) ComputeAttrs(attrs Attrs) (Attrs, error) {
	return computeAttrs(nt.Spec.Attrs, attrs)
}

// Create a Node of this type. The given attributes are checked and defaulted
// (you can pass nil to use the type's defaults entirely, if no required
// attributes exist). content may be a Fragment, a node, an array of nodes, or
// nil. Similarly marks may be nil to default to the empty set of marks.
func (nt *NodeType) Create(attrs Attrs, content interface{}, marks []*Mark) (*Node, error) {
	if nt.IsText() {
		return nil, errors.New("NodeType.create can't construct text nodes")
	}
	computed, err := nt.ComputeAttrs(attrs)
	if err != nil {
		return nil, err
	}
	frag, err := FragmentFrom(content)
	if err != nil {
		return nil, err
	}
	return NewNode(nt, computed, frag, MarkSetFrom(marks)), nil
}

// CreateChecked is like Create, but check the given content against the node
// type's content restrictions, and returns an error if it doesn't match.
func (nt *NodeType) CreateChecked(attrs Attrs, content interface{}, marks []*Mark) (*Node, error) {
	node, err := nt.Create(attrs, content, marks)
	if err != nil {
		return nil, err
	}
	if !nt.ValidContent(node.Content) {
		return nil, errors.Errorf("Invalid content for node %s: %s", nt.Name, node.Content.String())
	}
	return node, nil
}

// ValidContent returns true if the given fragment is valid content for this
// node type with the given attributes.
func (nt *NodeType) ValidContent(content *Fragment) bool {
	if !nt.ContentMatch.Matches(content) {
		return false
	}
	for _, child := range content.Content {
		for _, m := range child.Marks {
			if !nt.AllowsMarkType(m.Type) {
				return false
			}
		}
	}
	return true
}

// AllowsMarkType checks whether the given mark type is allowed in this node.
func (nt *NodeType) AllowsMarkType(markType *MarkType) bool {
	if nt.MarkSet == nil {
		return true
	}
	for _, mt := range nt.MarkSet {
		if mt == markType {
			return true
		}
	}
	return false
}

// AllowedMarks removes the marks that are not allowed in this node from the
// given set.
func (nt *NodeType) AllowedMarks(marks []*Mark) []*Mark {
	if nt.MarkSet == nil {
		return marks
	}
	var copied []*Mark
	for i, m := range marks {
		if !nt.AllowsMarkType(m.Type) {
			if copied == nil {
				copied = append([]*Mark{}, marks[:i]...)
			}
		} else if copied != nil {
			copied = append(copied, m)
		}
	}
	if copied == nil {
		return marks
	}
	if len(copied) == 0 {
		return NoMarks
	}
	return copied
}

// MarkType are objects allocated once per Schema and used to tag Mark
// instances.
type MarkType struct {
	Name     string
	Rank     int
	Schema   *Schema
	Spec     *MarkSpec
	Groups   []string
	excluded []*MarkType
	instance *Mark
}

func newMarkType(name string, rank int, schema *Schema, spec *MarkSpec) *MarkType {
	mt := &MarkType{
		Name:   name,
		Rank:   rank,
		Schema: schema,
		Spec:   spec,
		Groups: strings.Fields(spec.Group),
	}
	defaults := defaultAttrs(spec.Attrs)
	if defaults != nil {
		mt.instance = &Mark{Type: mt, Attrs: defaults}
	}
	return mt
}

// Create a mark of this type. attrs may be nil or an object containing only
// some of the mark's attributes. The others, if they have defaults, will be
// added.
func (mt *MarkType) Create(attrs Attrs) *Mark {
	if attrs == nil && mt.instance != nil {
		return mt.instance
	}
	computed, err := computeAttrs(mt.Spec.Attrs, attrs)
	if err != nil {
		computed = attrs
	}
	return &Mark{Type: mt, Attrs: computed}
}

// RemoveFromSet returns a set of marks with the marks of this type removed.
func (mt *MarkType) RemoveFromSet(set []*Mark) []*Mark {
	var result []*Mark
	for _, m := range set {
		if m.Type != mt {
			result = append(result, m)
		}
	}
	if len(result) == 0 {
		return NoMarks
	}
	return result
}

// IsInSet tests whether there is a mark of this type in the given set.
func (mt *MarkType) IsInSet(set []*Mark) *Mark {
	for _, m := range set {
		if m.Type == mt {
			return m
		}
	}
	return nil
}

// Excludes queries whether a given mark type is excluded by this one.
func (mt *MarkType) Excludes(other *MarkType) bool {
	for _, ex := range mt.excluded {
		if ex == other {
			return true
		}
	}
	return false
}

// Schema holds the node and mark types of a document model, and provides
// functionality for creating and deserializing such documents.
type Schema struct {
	// The spec on which the schema is based.
	Spec *SchemaSpec
	// An object mapping the schema's node names to node type objects.
	Nodes map[string]*NodeType
	// A map from mark names to mark type objects.
	Marks map[string]*MarkType
	// The type of the default top node for this schema.
	TopNodeType *NodeType

	nodeOrder []*NodeType
	markOrder []*MarkType
}

// NewSchema constructs a schema from a schema specification.
func NewSchema(spec *SchemaSpec) (*Schema, error) {
	schema := &Schema{
		Spec:  spec,
		Nodes: map[string]*NodeType{},
		Marks: map[string]*MarkType{},
	}
	for _, ns := range spec.Nodes {
		if _, ok := schema.Nodes[ns.Key]; ok {
			return nil, errors.Errorf("Duplicate node type %q", ns.Key)
		}
		nt := newNodeType(ns.Key, schema, ns)
		schema.Nodes[ns.Key] = nt
		schema.nodeOrder = append(schema.nodeOrder, nt)
	}
	for i, ms := range spec.Marks {
		if _, ok := schema.Marks[ms.Key]; ok {
			return nil, errors.Errorf("Duplicate mark type %q", ms.Key)
		}
		mt := newMarkType(ms.Key, i, schema, ms)
		schema.Marks[ms.Key] = mt
		schema.markOrder = append(schema.markOrder, mt)
	}

	top := spec.TopNode
	if top == "" {
		top = "doc"
	}
	topType, ok := schema.Nodes[top]
	if !ok {
		return nil, errors.Errorf("Schema is missing its top node type (%q)", top)
	}
	schema.TopNodeType = topType
	if _, ok := schema.Nodes["text"]; !ok {
		return nil, errors.New("Every schema needs a 'text' type")
	}
	if len(schema.Nodes["text"].DefaultAttrs) > 0 {
		return nil, errors.New("The text node type should not have attributes")
	}

	for _, nt := range schema.nodeOrder {
		cm, err := ParseContentMatch(nt.Spec.Content, schema.Nodes)
		if err != nil {
			return nil, errors.Wrapf(err, "node type %s", nt.Name)
		}
		nt.ContentMatch = cm
		nt.inlineContent = cm.inlineContent()

		markExpr := nt.Spec.Marks
		switch {
		case markExpr != nil && *markExpr == "_":
			nt.MarkSet = nil
		case markExpr != nil:
			set, err := schema.gatherMarks(strings.Fields(*markExpr))
			if err != nil {
				return nil, err
			}
			nt.MarkSet = set
		case nt.inlineContent:
			nt.MarkSet = nil
		default:
			nt.MarkSet = []*MarkType{}
		}
	}
	for _, mt := range schema.markOrder {
		excl := mt.Spec.Excludes
		if excl == nil {
			mt.excluded = []*MarkType{mt}
			continue
		}
		if *excl == "" {
			continue
		}
		set, err := schema.gatherMarks(strings.Fields(*excl))
		if err != nil {
			return nil, err
		}
		mt.excluded = set
	}
	return schema, nil
}

func (s *Schema) gatherMarks(names []string) ([]*MarkType, error) {
	found := []*MarkType{}
	for _, name := range names {
		if mt, ok := s.Marks[name]; ok {
			found = append(found, mt)
			continue
		}
		ok := false
		for _, mt := range s.markOrder {
			if name == "_" || mt.hasGroup(name) {
				found = append(found, mt)
				ok = true
			}
		}
		if !ok {
			return nil, errors.Errorf("Unknown mark type: %q", name)
		}
	}
	return found, nil
}

func (mt *MarkType) hasGroup(group string) bool {
	for _, g := range mt.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// NodeTypes returns the node types in the order they were declared.
func (s *Schema) NodeTypes() []*NodeType {
	return s.nodeOrder
}

// MarkTypes returns the mark types in rank order.
func (s *Schema) MarkTypes() []*MarkType {
	return s.markOrder
}

// NodeType returns the node type with the given name.
func (s *Schema) NodeType(name string) (*NodeType, error) {
	if nt, ok := s.Nodes[name]; ok {
		return nt, nil
	}
	return nil, errors.Errorf("Unknown node type: %s", name)
}

// MarkType returns the mark type with the given name.
func (s *Schema) MarkType(name string) (*MarkType, error) {
	if mt, ok := s.Marks[name]; ok {
		return mt, nil
	}
	return nil, errors.Errorf("Unknown mark type: %s", name)
}

// Node creates a node in this schema. The type may be a string or a NodeType
// instance. Attributes will be extended with defaults, content may be a
// Fragment, nil, a Node, or an array of nodes.
func (s *Schema) Node(typ interface{}, attrs Attrs, content interface{}, marks []*Mark) (*Node, error) {
	var nt *NodeType
	switch t := typ.(type) {
	case *NodeType:
		nt = t
	case string:
		var err error
		if nt, err = s.NodeType(t); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("Invalid node type: %v", typ)
	}
	if nt.Schema != s {
		return nil, errors.Errorf("Node type from different schema used (%s)", nt.Name)
	}
	return nt.CreateChecked(attrs, content, marks)
}

// Text creates a text node in the schema. Empty text nodes are not allowed.
func (s *Schema) Text(text string, marks ...[]*Mark) *Node {
	var set []*Mark
	if len(marks) > 0 {
		set = marks[0]
	}
	return NewTextNode(s.Nodes["text"], nil, text, MarkSetFrom(set))
}

// Mark creates a mark with the given type and attributes.
func (s *Schema) Mark(name string, attrs ...Attrs) *Mark {
	mt, ok := s.Marks[name]
	if !ok {
		return nil
	}
	var a Attrs
	if len(attrs) > 0 {
		a = attrs[0]
	}
	return mt.Create(a)
}

func defaultAttrs(specs map[string]*AttributeSpec) Attrs {
	defaults := Attrs{}
	for name, spec := range specs {
		if !spec.hasDefault() {
			return nil
		}
		if spec.Default != nil {
			defaults[name] = spec.Default
		}
	}
	return defaults
}

func computeAttrs(specs map[string]*AttributeSpec, value Attrs) (Attrs, error) {
	built := Attrs{}
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		spec := specs[name]
		given, ok := value[name]
		if !ok || given == nil {
			if !spec.hasDefault() {
				return nil, errors.Errorf("No value supplied for attribute %s", name)
			}
			if spec.Default == nil {
				continue
			}
			given = spec.Default
		}
		built[name] = given
	}
	return built, nil
}
