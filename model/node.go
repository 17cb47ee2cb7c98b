package model

import (
	"fmt"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// This class represents a node in the tree that makes up a note document. So
// a document is an instance of Node, with children that are also instances
// of Node.
//
// Nodes are persistent data structures. Instead of changing them, you create
// new ones with the content you want. Old ones keep pointing at the old
// document shape. This is made cheaper by sharing structure between the old
// and new data as much as possible, which a tree shape like this (without back
// pointers) makes easy.
//
// Do not directly mutate the properties of a Node object.
type Node struct {
	// The type of node that this is.
	Type *NodeType
	// An object mapping attribute names to values. The kind of attributes
	// allowed and required are determined by the node type.
	Attrs Attrs
	// A container holding the node's children.
	Content *Fragment
	// For text nodes, this contains the node's text content.
	Text *string
	// The marks (things like whether it is emphasized or part of a link)
	// applied to this node.
	Marks []*Mark
}

// NewNode is the constructor for Node.
func NewNode(typ *NodeType, attrs Attrs, content *Fragment, marks []*Mark) *Node {
	if content == nil {
		content = EmptyFragment
	}
	if marks == nil {
		marks = NoMarks
	}
	return &Node{Type: typ, Attrs: attrs, Content: content, Marks: marks}
}

// NewTextNode is the constructor for text nodes.
func NewTextNode(typ *NodeType, attrs Attrs, text string, marks []*Mark) *Node {
	if marks == nil {
		marks = NoMarks
	}
	return &Node{Type: typ, Attrs: attrs, Text: &text, Content: EmptyFragment, Marks: marks}
}

// NodeSize is the size of this node, as defined by the integer-based indexing
// scheme. For text nodes, this is the amount of characters. For other leaf
// nodes, it is one. For non-leaf nodes, it is the size of the content plus
// two (the start and end token).
func (n *Node) NodeSize() int {
	if n.IsText() {
		return runeLen(*n.Text)
	}
	if n.IsLeaf() {
		return 1
	}
	return 2 + n.Content.Size
}

// ChildCount is the number of children that the node has.
func (n *Node) ChildCount() int {
	return n.Content.ChildCount()
}

// Child gets the child node at the given index. Returns an error when the
// index is out of range.
func (n *Node) Child(index int) (*Node, error) {
	return n.Content.Child(index)
}

// MaybeChild gets the child node at the given index, if it exists.
func (n *Node) MaybeChild(index int) *Node {
	return n.Content.MaybeChild(index)
}

// FirstChild returns this node's first child, or nil if there are no
// children.
func (n *Node) FirstChild() *Node {
	return n.Content.FirstChild()
}

// LastChild returns this node's last child, or nil if there are no children.
func (n *Node) LastChild() *Node {
	return n.Content.LastChild()
}

// ForEach calls fn for every child node, passing the node, its offset into
// this parent node, and its index.
func (n *Node) ForEach(fn func(node *Node, offset, index int)) {
	n.Content.ForEach(fn)
}

// NodesBetween invokes a callback for all descendant nodes recursively between
// the given two positions that are relative to start of this node's content.
// The callback is invoked with the node, its parent-relative position, its
// parent node, and its child index. When the callback returns false for a
// given node, that node's children will not be recursed over. The last
// parameter can be used to specify a starting position to count from.
func (n *Node) NodesBetween(from, to int, fn NBCallback, startPos ...int) {
	s := 0
	if len(startPos) > 0 {
		s = startPos[0]
	}
	n.Content.NodesBetween(from, to, fn, s, n)
}

// Descendants calls the given callback for every descendant node.
func (n *Node) Descendants(fn NBCallback) {
	n.NodesBetween(0, n.Content.Size, fn)
}

// TextContent concatenates all the text nodes found in this node and its
// children.
func (n *Node) TextContent() string {
	if n.IsText() {
		return *n.Text
	}
	return n.TextBetween(0, n.Content.Size, "")
}

// TextBetween gets all text between positions from and to. When
// blockSeparator is given, it will be inserted whenever a new block node is
// started. When leafText is given, it'll be inserted for every non-text leaf
// node encountered.
func (n *Node) TextBetween(from, to int, args ...string) string {
	if n.IsText() {
		return sliceRunes(*n.Text, from, to)
	}
	return n.Content.TextBetween(from, to, args...)
}

// Eq tests whether two nodes represent the same piece of document.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if n.IsText() != other.IsText() {
		return false
	}
	if n.IsText() && *n.Text != *other.Text {
		return false
	}
	return n.SameMarkup(other) && n.Content.Eq(other.Content)
}

// SameMarkup compares the markup (type, attributes, and marks) of this node
// to those of another. Returns true if both have the same markup.
func (n *Node) SameMarkup(other *Node) bool {
	return n.HasMarkup(other.Type, other.Attrs, other.Marks)
}

// HasMarkup checks whether this node's markup correspond to the given type,
// attributes, and marks.
func (n *Node) HasMarkup(typ *NodeType, attrs Attrs, marks ...[]*Mark) bool {
	if n.Type != typ {
		return false
	}
	if attrs == nil {
		attrs = typ.DefaultAttrs
	}
	if !sameAttrs(n.Attrs, attrs) {
		return false
	}
	set := NoMarks
	if len(marks) > 0 {
		set = marks[0]
	}
	return SameMarkSet(n.Marks, set)
}

func sameAttrs(a, b Attrs) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// Copy creates a new node with the same markup as this node, containing the
// given content (or empty, if no content is given).
func (n *Node) Copy(content ...*Fragment) *Node {
	c := EmptyFragment
	if len(content) > 0 && content[0] != nil {
		c = content[0]
	}
	if c == n.Content {
		return n
	}
	return NewNode(n.Type, n.Attrs, c, n.Marks)
}

// Mark creates a copy of this node, with the given set of marks instead of
// the node's own marks.
func (n *Node) Mark(marks []*Mark) *Node {
	if SameMarkSet(n.Marks, marks) {
		return n
	}
	if n.IsText() {
		return NewTextNode(n.Type, n.Attrs, *n.Text, marks)
	}
	return NewNode(n.Type, n.Attrs, n.Content, marks)
}

// WithAttrs creates a copy of this node with the given attributes. The
// attributes are used as is; use SetAttrs to merge.
func (n *Node) WithAttrs(attrs Attrs) *Node {
	if sameAttrs(n.Attrs, attrs) {
		return n
	}
	if n.IsText() {
		return NewTextNode(n.Type, attrs, *n.Text, n.Marks)
	}
	return NewNode(n.Type, attrs, n.Content, n.Marks)
}

// SetAttrs creates a copy of this node with the given attributes merged over
// its own. A nil value removes the attribute.
func (n *Node) SetAttrs(changes Attrs) *Node {
	merged := Attrs{}
	for k, v := range n.Attrs {
		merged[k] = v
	}
	for k, v := range changes {
		if v == nil {
			delete(merged, k)
		} else {
			merged[k] = v
		}
	}
	return n.WithAttrs(merged)
}

// WithType creates a node of another type carrying the same content, marks
// and the attributes the new type declares.
func (n *Node) WithType(typ *NodeType, attrs Attrs) (*Node, error) {
	merged := Attrs{}
	for k, v := range n.Attrs {
		if _, ok := typ.Spec.Attrs[k]; ok {
			merged[k] = v
		}
	}
	for k, v := range attrs {
		merged[k] = v
	}
	return typ.CreateChecked(merged, n.Content, n.Marks)
}

// Cut creates a copy of this node with only the content between the given
// positions. If `to` is not given, it defaults to the end of the node.
func (n *Node) Cut(from int, to ...int) *Node {
	if n.IsText() {
		t := runeLen(*n.Text)
		if len(to) > 0 {
			t = to[0]
		}
		if from == 0 && t == runeLen(*n.Text) {
			return n
		}
		return n.WithText(sliceRunes(*n.Text, from, t))
	}
	t := n.Content.Size
	if len(to) > 0 {
		t = to[0]
	}
	if from == 0 && t == n.Content.Size {
		return n
	}
	return n.Copy(n.Content.Cut(from, t))
}

// NodeAt finds the node directly after the given position.
func (n *Node) NodeAt(pos int) *Node {
	node := n
	for {
		index, offset, err := node.Content.findIndex(pos)
		if err != nil {
			return nil
		}
		node = node.MaybeChild(index)
		if node == nil {
			return nil
		}
		if offset == pos || node.IsText() {
			return node
		}
		pos -= offset + 1
	}
}

// Resolve resolves the given position in the document, returning an object
// with information about its context.
func (n *Node) Resolve(pos int) (*ResolvedPos, error) {
	return resolvePosCached(n, pos)
}

// Check validates the content of this node and its descendants against the
// schema.
func (n *Node) Check() error {
	if !n.Type.ValidContent(n.Content) {
		return errors.Errorf("Invalid content for node %s: %s", n.Type.Name, n.Content.String())
	}
	for _, child := range n.Content.Content {
		if err := child.Check(); err != nil {
			return err
		}
	}
	return nil
}

// IsBlock is true when this is a block (non-inline node).
func (n *Node) IsBlock() bool {
	return n.Type.IsBlock()
}

// IsTextblock is true when this is a textblock node, a block node with inline
// content.
func (n *Node) IsTextblock() bool {
	return n.Type.IsTextblock()
}

// IsInline is true when this is an inline node (a text node or a node that
// can appear among text).
func (n *Node) IsInline() bool {
	return n.Type.IsInline()
}

// IsLeaf is true when this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.Type.IsLeaf()
}

// IsText is true when this is a text node.
func (n *Node) IsText() bool {
	return n.Text != nil
}

// WithText creates a copy of this text node with another text.
func (n *Node) WithText(text string) *Node {
	if text == *n.Text {
		return n
	}
	return NewTextNode(n.Type, n.Attrs, text, n.Marks)
}

// AttrString returns the named attribute as a string.
func (n *Node) AttrString(name string) string {
	switch v := n.Attrs[name].(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.Itoa(int(v))
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// AttrInt returns the named attribute as an int, or def when absent.
func (n *Node) AttrInt(name string, def int) int {
	switch v := n.Attrs[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// AttrBool returns the named attribute as a bool.
func (n *Node) AttrBool(name string) bool {
	switch v := n.Attrs[name].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// String returns a string representation of this node for debugging
// purposes.
func (n *Node) String() string {
	if n.Type.Spec.ToDebugString != nil {
		return n.Type.Spec.ToDebugString(n)
	}
	name := n.Type.Name
	if n.IsText() {
		name = fmt.Sprintf("%q", *n.Text)
	} else if n.Content.Size > 0 {
		name += fmt.Sprintf("(%s)", n.Content.toStringInner())
	}
	return wrapMarks(n.Marks, name)
}

func wrapMarks(marks []*Mark, str string) string {
	for i := len(marks) - 1; i >= 0; i-- {
		str = fmt.Sprintf("%s(%s)", marks[i].Type.Name, str)
	}
	return str
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// sliceRunes returns the substring between the rune offsets from and to.
func sliceRunes(s string, from, to int) string {
	if from <= 0 && to >= len(s) {
		return s
	}
	start, end := len(s), len(s)
	i := 0
	for idx := range s {
		if i == from {
			start = idx
		}
		if i == to {
			end = idx
			break
		}
		i++
	}
	if from <= 0 {
		start = 0
	}
	if start > end {
		return ""
	}
	return s[start:end]
}
