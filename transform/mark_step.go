package transform

import (
	"fmt"

	"github.com/shodgson/notedoc/model"
)

type mapFn func(node, parent *model.Node) *model.Node

// mapInline calls f on the inline content between from and to, one
// textblock at a time. Text runs are split at the range boundaries, so f only
// sees nodes fully inside the range.
func mapInline(doc *model.Node, from, to int, f mapFn) StepResult {
	if from < 0 || to > doc.Content.Size || from > to {
		return Fail(fmt.Sprintf("Invalid range %d-%d", from, to))
	}
	type span struct {
		from, to int
		parent   *model.Node
		start    int
	}
	var spans []span
	doc.NodesBetween(from, to, func(node *model.Node, pos int, _ *model.Node, _ int) bool {
		if node.IsInline() {
			return false
		}
		if !node.IsTextblock() {
			return true
		}
		start := pos + 1
		a, b := from, to
		if a < start {
			a = start
		}
		if end := start + node.Content.Size; b > end {
			b = end
		}
		if a < b {
			spans = append(spans, span{from: a, to: b, parent: node, start: start})
		}
		return false
	})
	for _, sp := range spans {
		content := sp.parent.Content.Cut(sp.from-sp.start, sp.to-sp.start)
		mapped := make([]*model.Node, len(content.Content))
		for i, child := range content.Content {
			mapped[i] = f(child, sp.parent)
		}
		replaced, err := doc.Replace(sp.from, sp.to, model.FragmentFromArray(mapped))
		if err != nil {
			return Fail(err.Error())
		}
		doc = replaced
	}
	return OK(doc)
}

func mergeRanges(from1, to1, from2, to2 int) (int, int, bool) {
	if to1 < from2 || to2 < from1 {
		return 0, 0, false
	}
	from, to := from1, to1
	if from2 < from {
		from = from2
	}
	if to2 > to {
		to = to2
	}
	return from, to, true
}

// AddMarkStep adds a mark to all inline content between two positions.
type AddMarkStep struct {
	From int
	To   int
	Mark *model.Mark
}

// NewAddMarkStep is the constructor for AddMarkStep.
func NewAddMarkStep(from, to int, mark *model.Mark) *AddMarkStep {
	return &AddMarkStep{From: from, To: to, Mark: mark}
}

// Apply is a method of the Step interface.
func (s *AddMarkStep) Apply(doc *model.Node) StepResult {
	return mapInline(doc, s.From, s.To, func(node, parent *model.Node) *model.Node {
		if !parent.Type.AllowsMarkType(s.Mark.Type) {
			return node
		}
		return node.Mark(s.Mark.AddToSet(node.Marks))
	})
}

// GetMap is a method of the Step interface.
func (s *AddMarkStep) GetMap() *StepMap {
	return EmptyStepMap
}

// Invert is a method of the Step interface.
func (s *AddMarkStep) Invert(doc *model.Node) Step {
	return NewRemoveMarkStep(s.From, s.To, s.Mark)
}

// Map is a method of the Step interface.
func (s *AddMarkStep) Map(mapping Mappable) Step {
	from := mapping.MapResult(s.From, 1)
	to := mapping.MapResult(s.To, -1)
	if from.Deleted && to.Deleted || from.Pos >= to.Pos {
		return nil
	}
	return NewAddMarkStep(from.Pos, to.Pos, s.Mark)
}

// Merge is a method of the Step interface.
func (s *AddMarkStep) Merge(other Step) (Step, bool) {
	add, ok := other.(*AddMarkStep)
	if !ok || !add.Mark.Eq(s.Mark) {
		return nil, false
	}
	from, to, ok := mergeRanges(s.From, s.To, add.From, add.To)
	if !ok {
		return nil, false
	}
	return NewAddMarkStep(from, to, s.Mark), true
}

// ToJSON is a method of the Step interface.
func (s *AddMarkStep) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"stepType": "addMark",
		"mark":     s.Mark.ToJSON(),
		"from":     s.From,
		"to":       s.To,
	}
}

// AddMarkStepFromJSON builds an AddMarkStep from a JSON representation.
func AddMarkStepFromJSON(schema *model.Schema, obj map[string]interface{}) (Step, error) {
	from, to, mark, err := markStepFields(schema, obj)
	if err != nil {
		return nil, err
	}
	return NewAddMarkStep(from, to, mark), nil
}

var _ Step = &AddMarkStep{}

// RemoveMarkStep removes a mark from all inline content between two
// positions.
type RemoveMarkStep struct {
	From int
	To   int
	Mark *model.Mark
}

// NewRemoveMarkStep is the constructor for RemoveMarkStep.
func NewRemoveMarkStep(from, to int, mark *model.Mark) *RemoveMarkStep {
	return &RemoveMarkStep{From: from, To: to, Mark: mark}
}

// Apply is a method of the Step interface.
func (s *RemoveMarkStep) Apply(doc *model.Node) StepResult {
	return mapInline(doc, s.From, s.To, func(node, _ *model.Node) *model.Node {
		return node.Mark(s.Mark.RemoveFromSet(node.Marks))
	})
}

// GetMap is a method of the Step interface.
func (s *RemoveMarkStep) GetMap() *StepMap {
	return EmptyStepMap
}

// Invert is a method of the Step interface.
func (s *RemoveMarkStep) Invert(doc *model.Node) Step {
	return NewAddMarkStep(s.From, s.To, s.Mark)
}

// Map is a method of the Step interface.
func (s *RemoveMarkStep) Map(mapping Mappable) Step {
	from := mapping.MapResult(s.From, 1)
	to := mapping.MapResult(s.To, -1)
	if from.Deleted && to.Deleted || from.Pos >= to.Pos {
		return nil
	}
	return NewRemoveMarkStep(from.Pos, to.Pos, s.Mark)
}

// Merge is a method of the Step interface.
func (s *RemoveMarkStep) Merge(other Step) (Step, bool) {
	rm, ok := other.(*RemoveMarkStep)
	if !ok || !rm.Mark.Eq(s.Mark) {
		return nil, false
	}
	from, to, ok := mergeRanges(s.From, s.To, rm.From, rm.To)
	if !ok {
		return nil, false
	}
	return NewRemoveMarkStep(from, to, s.Mark), true
}

// ToJSON is a method of the Step interface.
func (s *RemoveMarkStep) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"stepType": "removeMark",
		"mark":     s.Mark.ToJSON(),
		"from":     s.From,
		"to":       s.To,
	}
}

// RemoveMarkStepFromJSON builds a RemoveMarkStep from a JSON representation.
func RemoveMarkStepFromJSON(schema *model.Schema, obj map[string]interface{}) (Step, error) {
	from, to, mark, err := markStepFields(schema, obj)
	if err != nil {
		return nil, err
	}
	return NewRemoveMarkStep(from, to, mark), nil
}

var _ Step = &RemoveMarkStep{}

func markStepFields(schema *model.Schema, obj map[string]interface{}) (int, int, *model.Mark, error) {
	from, err := intField(obj, "from")
	if err != nil {
		return 0, 0, nil, err
	}
	to, err := intField(obj, "to")
	if err != nil {
		return 0, 0, nil, err
	}
	mark, err := model.MarkFromJSON(schema, obj["mark"])
	if err != nil {
		return 0, 0, nil, err
	}
	return from, to, mark, nil
}
