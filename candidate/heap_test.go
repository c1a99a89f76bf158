package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopReturnsDescendingLengthOrder(t *testing.T) {
	lengths := []int32{0, 10, 50, 30, 5}
	h := Build([]int32{1, 2, 3, 4}, lengths)

	var order []int32
	for {
		id, ok := h.Pop()
		if !ok {
			break
		}
		order = append(order, id)
	}
	require.Len(t, order, 4)
	assert.Equal(t, []int32{2, 3, 1, 4}, order)
}

func TestPopOnEmptyHeap(t *testing.T) {
	h := Build(nil, []int32{0})
	_, ok := h.Pop()
	assert.False(t, ok)
}

func TestPopUsesNormForSignedIds(t *testing.T) {
	lengths := []int32{0, 10, 50}
	h := Build([]int32{-1, 2}, lengths)
	id, ok := h.Pop()
	require.True(t, ok)
	assert.Equal(t, int32(2), id)
	id, ok = h.Pop()
	require.True(t, ok)
	assert.Equal(t, int32(-1), id)
}
