package model

import (
	"fmt"
)

// ReplaceError is the error type raised by Node.Replace when given an invalid
// replacement.
type ReplaceError struct {
	Message string
}

// NewReplaceError is the constructor for ReplaceError.
func NewReplaceError(message string, args ...interface{}) *ReplaceError {
	return &ReplaceError{Message: fmt.Sprintf(message, args...)}
}

// Error returns the error message.
func (e *ReplaceError) Error() string {
	return e.Message
}

// Replace the part of the document between the given positions with the given
// fragment. Both positions must point into the same parent node, and the
// resulting content must be valid for that parent.
func (n *Node) Replace(from, to int, content *Fragment) (*Node, error) {
	if from > to {
		return nil, NewReplaceError("Invalid range %d-%d", from, to)
	}
	if content == nil {
		content = EmptyFragment
	}
	rFrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	if !rFrom.SameParent(rTo) {
		return nil, NewReplaceError("Positions %d and %d do not share a parent", from, to)
	}
	depth := rFrom.Depth
	parent := rFrom.Parent()
	start := rFrom.Start()
	inner := parent.Content.Cut(0, from-start).
		Append(content).
		Append(parent.Content.Cut(to - start))
	if !parent.Type.ValidContent(inner) {
		return nil, NewReplaceError("Invalid content for node %s: %s", parent.Type.Name, inner.String())
	}
	node := parent.Copy(inner)
	for d := depth - 1; d >= 0; d-- {
		ancestor := rFrom.Node(d)
		node = ancestor.Copy(ancestor.Content.ReplaceChild(rFrom.Index(d), node))
	}
	return node, nil
}

// Slice returns the content between the two positions, which must share a
// parent node.
func (n *Node) Slice(from, to int) (*Fragment, error) {
	rFrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	if !rFrom.SameParent(rTo) {
		return nil, NewReplaceError("Positions %d and %d do not share a parent", from, to)
	}
	start := rFrom.Start()
	return rFrom.Parent().Content.Cut(from-start, to-start), nil
}
