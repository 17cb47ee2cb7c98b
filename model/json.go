package model

import (
	"math"

	"github.com/pkg/errors"
)

// ToJSON returns a JSON-serializeable representation of this node.
func (n *Node) ToJSON() map[string]interface{} {
	obj := map[string]interface{}{"type": n.Type.Name}
	if len(n.Attrs) > 0 {
		obj["attrs"] = n.Attrs
	}
	if content := n.Content.ToJSON(); content != nil {
		obj["content"] = content
	}
	if len(n.Marks) > 0 {
		marks := make([]interface{}, len(n.Marks))
		for i, m := range n.Marks {
			marks[i] = m.ToJSON()
		}
		obj["marks"] = marks
	}
	if n.IsText() {
		obj["text"] = *n.Text
	}
	return obj
}

// NodeFromJSON deserializes a node from its JSON representation, as decoded
// by encoding/json.
func NodeFromJSON(schema *Schema, raw interface{}) (*Node, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.New("Invalid input for Node.fromJSON")
	}
	var marks []*Mark
	if list, ok := obj["marks"].([]interface{}); ok {
		for _, item := range list {
			m, err := MarkFromJSON(schema, item)
			if err != nil {
				return nil, err
			}
			marks = append(marks, m)
		}
	}
	typeName, _ := obj["type"].(string)
	if typeName == "text" {
		text, ok := obj["text"].(string)
		if !ok {
			return nil, errors.New("Invalid text node in JSON")
		}
		return schema.Text(text, marks), nil
	}
	content, err := FragmentFromJSON(schema, obj["content"])
	if err != nil {
		return nil, err
	}
	attrs, _ := obj["attrs"].(map[string]interface{})
	return schema.Node(typeName, fromJSONAttrs(attrs), content, marks)
}

// FragmentFromJSON deserializes a fragment from its JSON representation.
func FragmentFromJSON(schema *Schema, raw interface{}) (*Fragment, error) {
	if raw == nil {
		return EmptyFragment, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, errors.New("Invalid input for Fragment.fromJSON")
	}
	nodes := make([]*Node, 0, len(list))
	for _, item := range list {
		node, err := NodeFromJSON(schema, item)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return FragmentFromArray(nodes), nil
}

// MarkFromJSON deserializes a mark from its JSON representation.
func MarkFromJSON(schema *Schema, raw interface{}) (*Mark, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.New("Invalid input for Mark.fromJSON")
	}
	name, _ := obj["type"].(string)
	typ, err := schema.MarkType(name)
	if err != nil {
		return nil, errors.Wrap(err, "There is no mark type in this schema")
	}
	attrs, _ := obj["attrs"].(map[string]interface{})
	return typ.Create(fromJSONAttrs(attrs)), nil
}

// fromJSONAttrs turns the float64 numbers produced by encoding/json back into
// ints when they are whole.
func fromJSONAttrs(attrs map[string]interface{}) Attrs {
	if attrs == nil {
		return nil
	}
	result := Attrs{}
	for k, v := range attrs {
		if f, ok := v.(float64); ok && f == math.Trunc(f) {
			v = int(f)
		}
		result[k] = v
	}
	return result
}
