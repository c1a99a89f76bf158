package kmerindex

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupPointerIdentity(t *testing.T) {
	idx := New(Header{DBSize: 4}, make([]int32, 4))
	vv := idx.Insert(0x1234, []uint32{2, 3})
	got := idx.Lookup(0x1234)
	require.NotNil(t, got)
	assert.True(t, got == vv, "Lookup must return the same pointer for the same k-mer")
	assert.Nil(t, idx.Lookup(0xdead))
}

func TestBuildSeqOffsets(t *testing.T) {
	// Template 1 has length 40 (2 words), template 2 has length 70 (3 words).
	idx := New(Header{DBSize: 4}, []int32{0, 40, 70, 12})
	idx.BuildSeqOffsets(0)
	assert.Equal(t, int64(0), idx.SeqOffsets[1])
	assert.Equal(t, int64(2*8), idx.SeqOffsets[2])
	assert.Equal(t, int64(2*8+3*8), idx.SeqOffsets[3])
}

func TestBuildNameOffsets(t *testing.T) {
	idx := New(Header{DBSize: 5}, make([]int32, 5))
	data := []byte("first\nsecond\nthird\n")
	r := bytes.NewReader(data)
	// Simulate a caller who already advanced the cursor; BuildNameOffsets
	// must restore it afterwards.
	_, err := r.Seek(3, 0)
	require.NoError(t, err)

	require.NoError(t, idx.BuildNameOffsets(r))
	assert.Equal(t, int64(0), idx.NameOffsets[2])
	assert.Equal(t, int64(6), idx.NameOffsets[3])
	assert.Equal(t, int64(13), idx.NameOffsets[4])

	cur, err := r.Seek(0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cur, "cursor must be restored")
}
