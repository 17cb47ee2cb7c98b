package transform_test

import (
	"testing"

	. "github.com/shodgson/notedoc/transform"
	"github.com/stretchr/testify/assert"
)

func TestStepMap(t *testing.T) {
	// an insertion of 2 at 4
	insert := NewStepMap([]int{4, 0, 2})
	assert.Equal(t, 3, insert.Map(3))
	assert.Equal(t, 6, insert.Map(4))
	assert.Equal(t, 4, insert.Map(4, -1))
	assert.Equal(t, 7, insert.Map(5))

	// a deletion of 3 at 2
	del := NewStepMap([]int{2, 3, 0})
	assert.Equal(t, 2, del.Map(3))
	assert.Equal(t, 2, del.Map(5))
	assert.Equal(t, 3, del.Map(6))
	assert.True(t, del.MapResult(3).Deleted)
	assert.False(t, del.MapResult(6).Deleted)

	// inverting maps back
	inv := insert.Invert()
	assert.Equal(t, 4, inv.Map(6, -1))
	assert.Equal(t, 5, inv.Map(7))
	assert.Equal(t, "-[4 0 2]", inv.String())

	var ranges [][4]int
	NewStepMap([]int{2, 1, 3, 10, 2, 0}).ForEach(func(oldStart, oldEnd, newStart, newEnd int) {
		ranges = append(ranges, [4]int{oldStart, oldEnd, newStart, newEnd})
	})
	assert.Equal(t, [][4]int{{2, 3, 2, 5}, {10, 12, 12, 12}}, ranges)
}

func TestMapping(t *testing.T) {
	mapping := NewMapping(NewStepMap([]int{0, 0, 2}), NewStepMap([]int{5, 2, 0}))
	assert.Equal(t, 3, mapping.Map(1))
	assert.Equal(t, 5, mapping.Map(4))
	assert.True(t, mapping.MapResult(4).Deleted)

	back := mapping.Invert()
	assert.Equal(t, 1, back.Map(3))

	other := NewMapping()
	other.AppendMapping(mapping)
	other.AppendMap(EmptyStepMap)
	assert.Len(t, other.Maps, 3)
	assert.Equal(t, 3, other.Map(1))
}
