package transform

import (
	"github.com/shodgson/notedoc/model"
)

// ReplaceStep replaces a part of the document with a fragment of new content.
// Both ends of the replaced range must point into the same parent node, and
// the content must be valid there.
type ReplaceStep struct {
	From    int
	To      int
	Content *model.Fragment
}

// NewReplaceStep is the constructor of ReplaceStep. A nil content deletes the
// range.
func NewReplaceStep(from, to int, content *model.Fragment) *ReplaceStep {
	if content == nil {
		content = model.EmptyFragment
	}
	return &ReplaceStep{From: from, To: to, Content: content}
}

// Apply is a method of the Step interface.
func (s *ReplaceStep) Apply(doc *model.Node) StepResult {
	return FromReplace(doc, s.From, s.To, s.Content)
}

// GetMap is a method of the Step interface.
func (s *ReplaceStep) GetMap() *StepMap {
	return NewStepMap([]int{s.From, s.To - s.From, s.Content.Size})
}

// Invert is a method of the Step interface.
func (s *ReplaceStep) Invert(doc *model.Node) Step {
	removed, err := doc.Slice(s.From, s.To)
	if err != nil {
		return nil
	}
	return NewReplaceStep(s.From, s.From+s.Content.Size, removed)
}

// Map is a method of the Step interface.
func (s *ReplaceStep) Map(mapping Mappable) Step {
	from := mapping.MapResult(s.From, 1)
	to := mapping.MapResult(s.To, -1)
	if from.Deleted && to.Deleted {
		return nil
	}
	max := from.Pos
	if to.Pos > max {
		max = to.Pos
	}
	return NewReplaceStep(from.Pos, max, s.Content)
}

// Merge is a method of the Step interface. Typing and deleting next to a
// previous replacement are merged into a single step.
func (s *ReplaceStep) Merge(other Step) (Step, bool) {
	repl, ok := other.(*ReplaceStep)
	if !ok {
		return nil, false
	}
	if s.From+s.Content.Size == repl.From {
		content := s.Content.Append(repl.Content)
		return NewReplaceStep(s.From, s.To+repl.To-repl.From, content), true
	}
	if repl.To == s.From {
		content := repl.Content.Append(s.Content)
		return NewReplaceStep(repl.From, s.To, content), true
	}
	return nil, false
}

// ToJSON is a method of the Step interface.
func (s *ReplaceStep) ToJSON() map[string]interface{} {
	obj := map[string]interface{}{
		"stepType": "replace",
		"from":     s.From,
		"to":       s.To,
	}
	if content := s.Content.ToJSON(); content != nil {
		obj["content"] = content
	}
	return obj
}

// ReplaceStepFromJSON builds a ReplaceStep from a JSON representation.
func ReplaceStepFromJSON(schema *model.Schema, obj map[string]interface{}) (Step, error) {
	from, err := intField(obj, "from")
	if err != nil {
		return nil, err
	}
	to, err := intField(obj, "to")
	if err != nil {
		return nil, err
	}
	content, err := model.FragmentFromJSON(schema, obj["content"])
	if err != nil {
		return nil, err
	}
	return NewReplaceStep(from, to, content), nil
}

var _ Step = &ReplaceStep{}
