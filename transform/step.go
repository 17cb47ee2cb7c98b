// Package transform implements document transforms, which are used by the
// editor to treat changes as first-class values, which can be saved, shared,
// and reasoned about.
package transform

import (
	"github.com/pkg/errors"
	"github.com/shodgson/notedoc/model"
)

// Step objects represent an atomic change. It generally applies only to the
// document it was created for, since the positions stored in it will only make
// sense for that document.
type Step interface {
	// Applies this step to the given document, returning a result
	// object that either indicates failure, if the step can not be
	// applied to this document, or indicates success by containing a
	// transformed document.
	Apply(doc *model.Node) StepResult

	// GetMap gets the step map that represents the changes made by this step,
	// and which can be used to transform between positions in the old and the
	// new document.
	GetMap() *StepMap

	// Invert creates an inverted version of this step. Needs the document as
	// it was before the step as argument.
	Invert(doc *model.Node) Step

	// Map this step through a mappable thing, returning either a version of
	// that step with its positions adjusted, or nil if the step was entirely
	// deleted by the mapping.
	Map(mapping Mappable) Step

	// Merge tries to merge this step with another one, to be applied directly
	// after it. Returns the merged step when possible.
	Merge(other Step) (Step, bool)

	// ToJSON creates a JSON-serializeable representation of this step.
	ToJSON() map[string]interface{}
}

// StepResult is the result of applying a step. Contains either a new document
// or a failure value.
type StepResult struct {
	// The transformed document.
	Doc *model.Node
	// Text providing information about a failed step.
	Failed string
}

// OK creates a successful step result.
func OK(doc *model.Node) StepResult {
	return StepResult{Doc: doc}
}

// Fail creates a failed step result.
func Fail(message string) StepResult {
	return StepResult{Failed: message}
}

// FromReplace calls Node.Replace with the given arguments. Create a successful
// result if it succeeds, and a failed one if it returns an error.
func FromReplace(doc *model.Node, from, to int, content *model.Fragment) StepResult {
	replaced, err := doc.Replace(from, to, content)
	if err != nil {
		return Fail(err.Error())
	}
	return OK(replaced)
}

// StepFromJSONFn builds a step from its JSON representation.
type StepFromJSONFn func(schema *model.Schema, obj map[string]interface{}) (Step, error)

var stepsByID = map[string]StepFromJSONFn{
	"replace":    ReplaceStepFromJSON,
	"addMark":    AddMarkStepFromJSON,
	"removeMark": RemoveMarkStepFromJSON,
	"setAttrs":   SetAttrsStepFromJSON,
}

// StepFromJSON deserializes a step from its JSON representation, using the
// stepType field to pick the kind of step.
func StepFromJSON(schema *model.Schema, obj map[string]interface{}) (Step, error) {
	id, _ := obj["stepType"].(string)
	fn, ok := stepsByID[id]
	if !ok {
		return nil, errors.Errorf("No step type %q defined", id)
	}
	return fn(schema, obj)
}

func intField(obj map[string]interface{}, name string) (int, error) {
	switch v := obj[name].(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	}
	return 0, errors.Errorf("Invalid %s in step JSON", name)
}
