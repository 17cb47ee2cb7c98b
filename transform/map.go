package transform

import "fmt"

// Mappable is an interface. There are several things that positions can be
// mapped through. Such objects conform to this interface.
type Mappable interface {
	// Map a position through this object. When given, assoc (should be -1 or
	// 1, defaults to 1) determines with which side the position is associated,
	// which determines in which direction to move when a chunk of content is
	// inserted at the mapped position.
	Map(pos int, assoc ...int) int

	// MapResult maps a position, and returns an object containing additional
	// information about the mapping. The result's deleted field tells you
	// whether the position was deleted (completely enclosed in a replaced
	// range) during the mapping. When content on only one side is deleted, the
	// position itself is only considered deleted when assoc points in the
	// direction of the deleted content.
	MapResult(pos int, assoc ...int) *MapResult
}

// MapResult is an object representing a mapped position with extra
// information.
type MapResult struct {
	// The mapped version of the position.
	Pos int
	// Tells you whether the position was deleted, that is, whether the step
	// removed its surroundings from the document.
	Deleted bool
}

// NewMapResult is the constructor for MapResult
func NewMapResult(pos int, deleted ...bool) *MapResult {
	d := false
	if len(deleted) > 0 {
		d = deleted[0]
	}
	return &MapResult{Pos: pos, Deleted: d}
}

// StepMap is a map describing the deletions and insertions made by a step,
// which can be used to find the correspondence between positions in the
// pre-step version of a document and the same position in the post-step
// version.
type StepMap struct {
	Ranges   []int
	Inverted bool
}

// NewStepMap creates a position map. The modifications to the document are
// represented as an array of numbers, in which each group of three represents
// a modified chunk as [start, oldSize, newSize].
func NewStepMap(ranges []int, inverted ...bool) *StepMap {
	inv := false
	if len(inverted) > 0 {
		inv = inverted[0]
	}
	return &StepMap{Ranges: ranges, Inverted: inv}
}

func assocOf(assoc []int) int {
	if len(assoc) > 0 {
		return assoc[0]
	}
	return 1
}

// MapResult is part of the Mappable interface.
func (sm *StepMap) MapResult(pos int, assoc ...int) *MapResult {
	result, deleted := sm.mapPos(pos, assocOf(assoc))
	return NewMapResult(result, deleted)
}

// Map is part of the Mappable interface.
func (sm *StepMap) Map(pos int, assoc ...int) int {
	result, _ := sm.mapPos(pos, assocOf(assoc))
	return result
}

func (sm *StepMap) mapPos(pos, assoc int) (int, bool) {
	diff := 0
	oldIndex, newIndex := 1, 2
	if sm.Inverted {
		oldIndex, newIndex = 2, 1
	}
	for i := 0; i < len(sm.Ranges); i += 3 {
		start := sm.Ranges[i]
		if sm.Inverted {
			start -= diff
		}
		if start > pos {
			break
		}
		oldSize := sm.Ranges[i+oldIndex]
		newSize := sm.Ranges[i+newIndex]
		end := start + oldSize
		if pos <= end {
			var side int
			if oldSize == 0 {
				side = assoc
			} else if pos == start {
				side = -1
			} else if pos == end {
				side = 1
			} else {
				side = assoc
			}
			result := start + diff
			if side >= 0 {
				result += newSize
			}
			deleted := pos != end
			if assoc < 0 {
				deleted = pos != start
			}
			return result, deleted
		}
		diff += newSize - oldSize
	}
	return pos + diff, false
}

// ForEach calls fn for every changed range in the map, with its old and new
// boundaries.
func (sm *StepMap) ForEach(fn func(oldStart, oldEnd, newStart, newEnd int)) {
	oldIndex, newIndex := 1, 2
	if sm.Inverted {
		oldIndex, newIndex = 2, 1
	}
	diff := 0
	for i := 0; i < len(sm.Ranges); i += 3 {
		start := sm.Ranges[i]
		oldStart := start
		if sm.Inverted {
			oldStart = start - diff
		}
		newStart := oldStart + diff
		oldSize := sm.Ranges[i+oldIndex]
		newSize := sm.Ranges[i+newIndex]
		fn(oldStart, oldStart+oldSize, newStart, newStart+newSize)
		diff += newSize - oldSize
	}
}

// Invert creates an inverted version of this map. The result can be used to
// map positions in the post-step document to the pre-step document.
func (sm *StepMap) Invert() *StepMap {
	return NewStepMap(sm.Ranges, !sm.Inverted)
}

// String returns a string representation of this StepMap.
func (sm *StepMap) String() string {
	prefix := ""
	if sm.Inverted {
		prefix = "-"
	}
	return fmt.Sprintf("%s%v", prefix, sm.Ranges)
}

// EmptyStepMap is an empty StepMap.
var EmptyStepMap = NewStepMap(nil)

var _ Mappable = &StepMap{}

// Mapping represents a pipeline of zero or more step maps, used to map
// positions through a series of steps.
type Mapping struct {
	Maps []*StepMap
}

// NewMapping creates a mapping from the given maps.
func NewMapping(maps ...*StepMap) *Mapping {
	return &Mapping{Maps: maps}
}

// AppendMap adds a step map to the end of this mapping.
func (m *Mapping) AppendMap(sm *StepMap) {
	m.Maps = append(m.Maps, sm)
}

// AppendMapping adds all the step maps of another mapping to this one.
func (m *Mapping) AppendMapping(other *Mapping) {
	m.Maps = append(m.Maps, other.Maps...)
}

// Invert creates a mapping that maps positions back through the maps of this
// one, in reverse order.
func (m *Mapping) Invert() *Mapping {
	inverted := make([]*StepMap, len(m.Maps))
	for i, sm := range m.Maps {
		inverted[len(m.Maps)-1-i] = sm.Invert()
	}
	return NewMapping(inverted...)
}

// Map is part of the Mappable interface.
func (m *Mapping) Map(pos int, assoc ...int) int {
	a := assocOf(assoc)
	for _, sm := range m.Maps {
		pos = sm.Map(pos, a)
	}
	return pos
}

// MapResult is part of the Mappable interface.
func (m *Mapping) MapResult(pos int, assoc ...int) *MapResult {
	a := assocOf(assoc)
	deleted := false
	for _, sm := range m.Maps {
		result := sm.MapResult(pos, a)
		pos = result.Pos
		deleted = deleted || result.Deleted
	}
	return NewMapResult(pos, deleted)
}

var _ Mappable = &Mapping{}
