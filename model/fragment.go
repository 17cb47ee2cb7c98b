package model

import (
	"strings"

	"github.com/pkg/errors"
)

// A fragment represents a node's collection of child nodes.
//
// Like nodes, fragments are persistent data structures, and you should not
// mutate them or their content. Rather, you create new instances whenever
// needed. The API tries to make this easy.
type Fragment struct {
	Content []*Node
	// The size of the fragment, which is the total of the size of its
	// content nodes.
	Size int
}

// NewFragment is the constructor for Fragment. The size is computed when not
// given.
func NewFragment(content []*Node, size ...int) *Fragment {
	if len(size) > 0 {
		return &Fragment{Content: content, Size: size[0]}
	}
	s := 0
	for _, child := range content {
		s += child.NodeSize()
	}
	return &Fragment{Content: content, Size: s}
}

// EmptyFragment is an empty fragment.
var EmptyFragment = &Fragment{Content: []*Node{}, Size: 0}

// FragmentFromArray builds a fragment from an array of nodes. Adjacent text
// nodes with the same marks are joined together, and empty text nodes are
// dropped.
func FragmentFromArray(nodes []*Node) *Fragment {
	if len(nodes) == 0 {
		return EmptyFragment
	}
	joined := make([]*Node, 0, len(nodes))
	size := 0
	for _, node := range nodes {
		if node == nil {
			continue
		}
		if node.IsText() && *node.Text == "" {
			continue
		}
		size += node.NodeSize()
		if n := len(joined); n > 0 && node.IsText() && joined[n-1].IsText() && node.SameMarkup(joined[n-1]) {
			joined[n-1] = joined[n-1].WithText(*joined[n-1].Text + *node.Text)
			continue
		}
		joined = append(joined, node)
	}
	if len(joined) == 0 {
		return EmptyFragment
	}
	return &Fragment{Content: joined, Size: size}
}

// FragmentFrom creates a fragment from something that can be interpreted as a
// set of nodes. For nil, it returns the empty fragment. For a fragment, the
// fragment itself. For a node or array of nodes, a fragment containing those
// nodes.
func FragmentFrom(nodes interface{}) (*Fragment, error) {
	switch nodes := nodes.(type) {
	case nil:
		return EmptyFragment, nil
	case *Fragment:
		if nodes == nil {
			return EmptyFragment, nil
		}
		return nodes, nil
	case *Node:
		if nodes == nil {
			return EmptyFragment, nil
		}
		return NewFragment([]*Node{nodes}), nil
	case []*Node:
		return FragmentFromArray(nodes), nil
	}
	return nil, errors.Errorf("Can not convert %v to a Fragment", nodes)
}

// NBCallback is the callback of NodesBetween. It receives the node, its
// absolute position, its parent, and its index in the parent. Returning false
// skips the node's children.
type NBCallback func(node *Node, pos int, parent *Node, index int) bool

// NodesBetween invokes a callback for all descendant nodes between the given
// two positions (relative to start of this fragment). Doesn't descend into a
// node when the callback returns false.
func (f *Fragment) NodesBetween(from, to int, fn NBCallback, nodeStart int, parent *Node) {
	pos := 0
	for i := 0; pos < to && i < len(f.Content); i++ {
		child := f.Content[i]
		end := pos + child.NodeSize()
		if end > from && fn(child, nodeStart+pos, parent, i) && child.Content.Size > 0 {
			start := pos + 1
			child.NodesBetween(maxInt(0, from-start), minInt(child.Content.Size, to-start), fn, nodeStart+start)
		}
		pos = end
	}
}

// Descendants calls the given callback for every descendant node. The
// callback may return false to prevent traversal of a given node's children.
func (f *Fragment) Descendants(fn NBCallback) {
	f.NodesBetween(0, f.Size, fn, 0, nil)
}

// TextBetween extracts the text between from and to. When blockSeparator is
// given, it will be inserted to separate text from different block nodes.
// When leafText is given, it'll be inserted for every non-text leaf node
// encountered.
func (f *Fragment) TextBetween(from, to int, args ...string) string {
	var blockSeparator, leafText string
	hasSeparator := len(args) > 0
	if hasSeparator {
		blockSeparator = args[0]
	}
	if len(args) > 1 {
		leafText = args[1]
	}
	var sb strings.Builder
	separated := true
	f.NodesBetween(from, to, func(node *Node, pos int, _ *Node, _ int) bool {
		if node.IsText() {
			text := *node.Text
			start := maxInt(from, pos) - pos
			end := minInt(runeLen(text), to-pos)
			sb.WriteString(sliceRunes(text, start, end))
			separated = !hasSeparator
		} else if node.IsLeaf() && leafText != "" {
			sb.WriteString(leafText)
			separated = !hasSeparator
		} else if !separated && node.IsBlock() {
			sb.WriteString(blockSeparator)
			separated = true
		}
		return true
	}, 0, nil)
	return sb.String()
}

// Append creates a new fragment containing the combined content of this
// fragment and the other.
func (f *Fragment) Append(other *Fragment) *Fragment {
	if other.Size == 0 {
		return f
	}
	if f.Size == 0 {
		return other
	}
	content := make([]*Node, 0, len(f.Content)+len(other.Content))
	content = append(content, f.Content...)
	return FragmentFromArray(append(content, other.Content...))
}

// Cut out the sub-fragment between the two given positions.
func (f *Fragment) Cut(from int, to ...int) *Fragment {
	t := f.Size
	if len(to) > 0 {
		t = to[0]
	}
	if from == 0 && t == f.Size {
		return f
	}
	var result []*Node
	size := 0
	if t > from {
		pos := 0
		for i := 0; pos < t && i < len(f.Content); i++ {
			child := f.Content[i]
			end := pos + child.NodeSize()
			if end > from {
				if pos < from || end > t {
					if child.IsText() {
						child = child.Cut(maxInt(0, from-pos), minInt(runeLen(*child.Text), t-pos))
					} else {
						child = child.Cut(maxInt(0, from-pos-1), minInt(child.Content.Size, t-pos-1))
					}
				}
				result = append(result, child)
				size += child.NodeSize()
			}
			pos = end
		}
	}
	if len(result) == 0 {
		return EmptyFragment
	}
	return &Fragment{Content: result, Size: size}
}

// CutByIndex cuts out the children between the two given indexes.
func (f *Fragment) CutByIndex(from, to int) *Fragment {
	if from == to {
		return EmptyFragment
	}
	if from == 0 && to == len(f.Content) {
		return f
	}
	return NewFragment(f.Content[from:to])
}

// ReplaceChild creates a new fragment in which the node at the given index is
// replaced by the given node.
func (f *Fragment) ReplaceChild(index int, node *Node) *Fragment {
	current := f.Content[index]
	if current == node {
		return f
	}
	cpy := make([]*Node, len(f.Content))
	copy(cpy, f.Content)
	cpy[index] = node
	return &Fragment{Content: cpy, Size: f.Size + node.NodeSize() - current.NodeSize()}
}

// AddToStart creates a new fragment by prepending the given node to this
// fragment.
func (f *Fragment) AddToStart(node *Node) *Fragment {
	return FragmentFromArray(append([]*Node{node}, f.Content...))
}

// AddToEnd creates a new fragment by appending the given node to this
// fragment.
func (f *Fragment) AddToEnd(node *Node) *Fragment {
	content := make([]*Node, 0, len(f.Content)+1)
	content = append(content, f.Content...)
	return FragmentFromArray(append(content, node))
}

// Eq compares this fragment to another one.
func (f *Fragment) Eq(other *Fragment) bool {
	if len(f.Content) != len(other.Content) {
		return false
	}
	for i := range f.Content {
		if !f.Content[i].Eq(other.Content[i]) {
			return false
		}
	}
	return true
}

// FirstChild returns the first child of the fragment, or nil if it is empty.
func (f *Fragment) FirstChild() *Node {
	if len(f.Content) > 0 {
		return f.Content[0]
	}
	return nil
}

// LastChild returns the last child of the fragment, or nil if it is empty.
func (f *Fragment) LastChild() *Node {
	if n := len(f.Content); n > 0 {
		return f.Content[n-1]
	}
	return nil
}

// ChildCount is the number of child nodes in this fragment.
func (f *Fragment) ChildCount() int {
	return len(f.Content)
}

// Child gets the child node at the given index. Returns an error when the
// index is out of range.
func (f *Fragment) Child(index int) (*Node, error) {
	if index < 0 || index >= len(f.Content) {
		return nil, errors.Errorf("Index %d out of range for %s", index, f.String())
	}
	return f.Content[index], nil
}

// MaybeChild gets the child node at the given index, if it exists.
func (f *Fragment) MaybeChild(index int) *Node {
	if index < 0 || index >= len(f.Content) {
		return nil
	}
	return f.Content[index]
}

// ForEach calls fn for every child node, passing the node, its offset into
// this parent node, and its index.
func (f *Fragment) ForEach(fn func(node *Node, offset, index int)) {
	p := 0
	for i, child := range f.Content {
		fn(child, p, i)
		p += child.NodeSize()
	}
}

// FindDiffStart finds the first position at which this fragment and another
// fragment differ, or nil if they are the same.
func (f *Fragment) FindDiffStart(other *Fragment, pos ...int) *int {
	p := 0
	if len(pos) > 0 {
		p = pos[0]
	}
	return findDiffStart(f, other, p)
}

// FindDiffEnd finds the first position, searching from the end, at which this
// fragment and the given fragment differ, or nil if they are the same. Since
// this position will not be the same in both nodes, an object with two
// separate positions is returned.
func (f *Fragment) FindDiffEnd(other *Fragment, pos ...int) *DiffEnd {
	posA, posB := f.Size, other.Size
	if len(pos) > 0 {
		posA = pos[0]
	}
	if len(pos) > 1 {
		posB = pos[1]
	}
	return findDiffEnd(f, other, posA, posB)
}

// findIndex returns the index of the child that contains pos and the offset
// at which that child starts. When pos falls on a boundary, the index after
// the boundary is returned unless round is negative.
func (f *Fragment) findIndex(pos int, round ...int) (int, int, error) {
	r := -1
	if len(round) > 0 {
		r = round[0]
	}
	if pos == 0 {
		return 0, pos, nil
	}
	if pos == f.Size {
		return len(f.Content), pos, nil
	}
	if pos > f.Size || pos < 0 {
		return 0, 0, errors.Errorf("Position %d outside of fragment (%s)", pos, f.String())
	}
	curPos := 0
	for i, cur := range f.Content {
		end := curPos + cur.NodeSize()
		if end >= pos {
			if end == pos || r > 0 {
				return i + 1, end, nil
			}
			return i, curPos, nil
		}
		curPos = end
	}
	return len(f.Content), f.Size, nil
}

// String returns a debugging string that describes this fragment.
func (f *Fragment) String() string {
	return "<" + f.toStringInner() + ">"
}

func (f *Fragment) toStringInner() string {
	parts := make([]string, len(f.Content))
	for i, child := range f.Content {
		parts[i] = child.String()
	}
	return strings.Join(parts, ", ")
}

// ToJSON creates a JSON-serializeable representation of this fragment.
func (f *Fragment) ToJSON() []interface{} {
	if len(f.Content) == 0 {
		return nil
	}
	result := make([]interface{}, len(f.Content))
	for i, child := range f.Content {
		result[i] = child.ToJSON()
	}
	return result
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
