package transform

import (
	"github.com/pkg/errors"
	"github.com/shodgson/notedoc/model"
)

// SetAttrsStep can be used to change the attributes of a node. The
// attributes are merged over the node's own ones; a nil value removes an
// attribute.
type SetAttrsStep struct {
	Pos   int
	Attrs map[string]interface{}
}

// NewSetAttrsStep is a constructor for SetAttrsStep
func NewSetAttrsStep(pos int, attrs map[string]interface{}) *SetAttrsStep {
	return &SetAttrsStep{Pos: pos, Attrs: attrs}
}

// Apply is a method of the Step interface.
func (s *SetAttrsStep) Apply(doc *model.Node) StepResult {
	target := doc.NodeAt(s.Pos)
	if target == nil || target.IsText() {
		return Fail("No node at given position")
	}
	updated := target.SetAttrs(s.Attrs)
	if _, err := target.Type.ComputeAttrs(updated.Attrs); err != nil {
		return Fail(err.Error())
	}
	return FromReplace(doc, s.Pos, s.Pos+target.NodeSize(), model.NewFragment([]*model.Node{updated}))
}

// GetMap is a method of the Step interface.
func (s *SetAttrsStep) GetMap() *StepMap {
	return EmptyStepMap
}

// Invert is a method of the Step interface.
func (s *SetAttrsStep) Invert(doc *model.Node) Step {
	attrs := map[string]interface{}{}
	target := doc.NodeAt(s.Pos)
	for k := range s.Attrs {
		if target != nil {
			attrs[k] = target.Attrs[k]
		} else {
			attrs[k] = nil
		}
	}
	return NewSetAttrsStep(s.Pos, attrs)
}

// Map is a method of the Step interface.
func (s *SetAttrsStep) Map(mapping Mappable) Step {
	result := mapping.MapResult(s.Pos, 1)
	if result.Deleted {
		return nil
	}
	return NewSetAttrsStep(result.Pos, s.Attrs)
}

// Merge is a method of the Step interface. Two changes to the same node are
// merged, the later values winning.
func (s *SetAttrsStep) Merge(other Step) (Step, bool) {
	set, ok := other.(*SetAttrsStep)
	if !ok || set.Pos != s.Pos {
		return nil, false
	}
	attrs := map[string]interface{}{}
	for k, v := range s.Attrs {
		attrs[k] = v
	}
	for k, v := range set.Attrs {
		attrs[k] = v
	}
	return NewSetAttrsStep(s.Pos, attrs), true
}

// ToJSON is a method of the Step interface.
func (s *SetAttrsStep) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"stepType": "setAttrs",
		"pos":      s.Pos,
		"attrs":    s.Attrs,
	}
}

// SetAttrsStepFromJSON builds an SetAttrsStep from a JSON representation.
func SetAttrsStepFromJSON(schema *model.Schema, obj map[string]interface{}) (Step, error) {
	attrs, ok := obj["attrs"].(map[string]interface{})
	if !ok {
		return nil, errors.New("Invalid input for SetAttrsStep.fromJSON")
	}
	pos, err := intField(obj, "pos")
	if err != nil {
		return nil, err
	}
	for k, v := range attrs {
		if f, ok := v.(float64); ok && f == float64(int(f)) {
			attrs[k] = int(f)
		}
	}
	return NewSetAttrsStep(pos, attrs), nil
}

var _ Step = &SetAttrsStep{}
