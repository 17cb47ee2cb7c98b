package transform

import (
	"github.com/pkg/errors"
	"github.com/shodgson/notedoc/model"
)

// StepError is returned when a step can not be applied to the current
// document of a transform.
type StepError struct {
	Message string
}

func (e *StepError) Error() string {
	return e.Message
}

// Transform is an abstraction for building up and tracking an array of steps
// representing a document transformation. Failed steps are not added: the
// document stays as it was before the failing call.
type Transform struct {
	// The current document (the result of applying the steps in the
	// transform).
	Doc *model.Node
	// The steps in this transform.
	Steps []Step
	// The documents before each of the steps.
	Docs []*model.Node
	// A mapping with the maps for each of the steps in this transform.
	Mapping *Mapping
}

// New creates a transform that starts with the given document.
func New(doc *model.Node) *Transform {
	return &Transform{Doc: doc, Mapping: NewMapping()}
}

// Before returns the starting document.
func (tr *Transform) Before() *model.Node {
	if len(tr.Docs) > 0 {
		return tr.Docs[0]
	}
	return tr.Doc
}

// Step applies a new step in this transform, saving the result. Returns a
// *StepError when the step fails.
func (tr *Transform) Step(step Step) error {
	result := tr.MaybeStep(step)
	if result.Failed != "" {
		return &StepError{Message: result.Failed}
	}
	return nil
}

// MaybeStep tries to apply a step in this transform, ignoring it if it fails.
func (tr *Transform) MaybeStep(step Step) StepResult {
	result := step.Apply(tr.Doc)
	if result.Failed == "" {
		tr.addStep(step, result.Doc)
	}
	return result
}

// DocChanged is true when the document has been changed (when there are any
// steps).
func (tr *Transform) DocChanged() bool {
	return len(tr.Steps) > 0
}

func (tr *Transform) addStep(step Step, doc *model.Node) {
	tr.Docs = append(tr.Docs, tr.Doc)
	tr.Steps = append(tr.Steps, step)
	tr.Mapping.AppendMap(step.GetMap())
	tr.Doc = doc
}

// stepIfChanged applies the step, but only records it when it changes the
// document.
func (tr *Transform) stepIfChanged(step Step) error {
	result := step.Apply(tr.Doc)
	if result.Failed != "" {
		return &StepError{Message: result.Failed}
	}
	if !result.Doc.Eq(tr.Doc) {
		tr.addStep(step, result.Doc)
	}
	return nil
}

// Replace the part of the document between from and to with the given
// content. Both positions must share a parent node.
func (tr *Transform) Replace(from, to int, content *model.Fragment) error {
	if content == nil {
		content = model.EmptyFragment
	}
	if from == to && content.Size == 0 {
		return nil
	}
	return tr.Step(NewReplaceStep(from, to, content))
}

// ReplaceWith replaces the given range with the given nodes.
func (tr *Transform) ReplaceWith(from, to int, nodes ...*model.Node) error {
	return tr.Replace(from, to, model.FragmentFromArray(nodes))
}

// Delete the content between the given positions.
func (tr *Transform) Delete(from, to int) error {
	return tr.Replace(from, to, model.EmptyFragment)
}

// Insert the given nodes at a given position.
func (tr *Transform) Insert(pos int, nodes ...*model.Node) error {
	return tr.ReplaceWith(pos, pos, nodes...)
}

// InsertText inserts text at the given position, carrying the given marks.
func (tr *Transform) InsertText(pos int, text string, marks []*model.Mark) error {
	if text == "" {
		return nil
	}
	return tr.Insert(pos, tr.Doc.Type.Schema.Text(text, marks))
}

// AddMark adds the given mark to the inline content between from and to.
func (tr *Transform) AddMark(from, to int, mark *model.Mark) error {
	if from >= to {
		return nil
	}
	return tr.stepIfChanged(NewAddMarkStep(from, to, mark))
}

// RemoveMark removes the given mark from the inline content between from and
// to.
func (tr *Transform) RemoveMark(from, to int, mark *model.Mark) error {
	if from >= to {
		return nil
	}
	return tr.stepIfChanged(NewRemoveMarkStep(from, to, mark))
}

// RemoveMarkType removes every mark of the given type from the inline content
// between from and to, whatever its attributes.
func (tr *Transform) RemoveMarkType(from, to int, markType *model.MarkType) error {
	var found []*model.Mark
	tr.Doc.NodesBetween(from, to, func(node *model.Node, _ int, _ *model.Node, _ int) bool {
		if !node.IsInline() {
			return true
		}
		if m := markType.IsInSet(node.Marks); m != nil && !m.IsInSet(found) {
			found = append(found, m)
		}
		return false
	})
	for _, m := range found {
		if err := tr.RemoveMark(from, to, m); err != nil {
			return err
		}
	}
	return nil
}

// SetNodeAttrs changes the attributes of the node at pos. A nil value
// removes an attribute.
func (tr *Transform) SetNodeAttrs(pos int, attrs model.Attrs) error {
	return tr.stepIfChanged(NewSetAttrsStep(pos, attrs))
}

// SetNodeType replaces the node at pos by a node of another type carrying
// the same content and the attributes both types declare, plus the given
// ones.
func (tr *Transform) SetNodeType(pos int, typ *model.NodeType, attrs model.Attrs) error {
	node := tr.Doc.NodeAt(pos)
	if node == nil || node.IsText() {
		return errors.Errorf("No node at position %d", pos)
	}
	if node.Type == typ {
		return tr.SetNodeAttrs(pos, attrs)
	}
	replacement, err := node.WithType(typ, attrs)
	if err != nil {
		return errors.Wrapf(err, "cannot convert %s to %s", node.Type.Name, typ.Name)
	}
	return tr.ReplaceWith(pos, pos+node.NodeSize(), replacement)
}
