package assembly

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMatrixSentinel(t *testing.T) {
	m := NewMatrix(10)
	assert.Equal(t, 1, m.Len)
	assert.Equal(t, 11, len(m.Nodes))
}

func TestAllocGrowsLen(t *testing.T) {
	m := NewMatrix(2)
	first := m.Alloc(3)
	assert.Equal(t, 1, first)
	assert.Equal(t, 4, m.Len)
	assert.True(t, len(m.Nodes) >= m.Len)
}

func TestEnsureCapacityPreservesContents(t *testing.T) {
	m := NewMatrix(1)
	m.Nodes[1].Counts[0] = 7
	m.EnsureCapacity(20)
	assert.Equal(t, uint16(7), m.Nodes[1].Counts[0])
	assert.True(t, len(m.Nodes) > 20)
}

func TestNodeBestTiesLowestIndex(t *testing.T) {
	n := Node{Counts: [6]uint16{3, 3, 1, 0, 0, 0}}
	base, count := n.Best()
	assert.Equal(t, 0, base)
	assert.Equal(t, uint16(3), count)
}

func TestNodeTotal(t *testing.T) {
	n := Node{Counts: [6]uint16{1, 2, 3, 4, 0, 0}}
	assert.Equal(t, 10, n.Total())
}

func TestMatrixReset(t *testing.T) {
	m := NewMatrix(4)
	m.Alloc(2)
	m.Nodes[2].Counts[1] = 5
	m.Reset()
	assert.Equal(t, 1, m.Len)
	for _, n := range m.Nodes {
		assert.Equal(t, Node{}, n)
	}
}
