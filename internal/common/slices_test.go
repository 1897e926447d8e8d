package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceHelpers(t *testing.T) {
	items := []string{"a", "b", "c"}

	assert.False(t, IsEmpty(items))
	assert.True(t, IsEmpty([]string{}))
	assert.True(t, IsSingle([]int{1}))
	assert.True(t, IsMultiple(items))

	first, ok := First(items)
	assert.True(t, ok)
	assert.Equal(t, "a", first)

	last, ok := Last(items)
	assert.True(t, ok)
	assert.Equal(t, "c", last)

	_, ok = Last([]int(nil))
	assert.False(t, ok)
}

func TestLimit(t *testing.T) {
	items := []int{1, 2, 3, 4}

	assert.Equal(t, []int{1, 2}, Limit(items, 2))
	assert.Equal(t, items, Limit(items, 10))
	assert.Equal(t, items, Limit(items, -1))
	assert.Empty(t, Limit(items, 0))
}
