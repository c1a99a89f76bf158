package packedseq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"A",
		"ACGTACGTACGT",
		"ACGTACGTACGTACGTACGTACGTACGTACGTACGT",
		"NNNNACGT",
		"ACGNNNGT",
	}
	for _, s := range tests {
		seq := Encode([]byte(s))
		assert.Equal(t, s, string(seq.Decode()), "round trip for %q", s)
	}
}

func TestReverseComplementRoundTrip(t *testing.T) {
	tests := []string{
		"ACGTACGTACGT",
		"ACGTACGTACGTACGTACGTACGTACGTACGTACGT",
		"ACGNNNGT",
	}
	for _, s := range tests {
		seq := Encode([]byte(s))
		rc := seq.ReverseComplement()
		rcrc := rc.ReverseComplement()
		assert.Equal(t, s, string(rcrc.Decode()), "rc(rc(s)) == s for %q", s)
	}
}

func TestReverseComplementValues(t *testing.T) {
	seq := Encode([]byte("ACGT"))
	rc := seq.ReverseComplement()
	assert.Equal(t, "ACGT", string(rc.Decode()))
}

func TestReverseComplementNPositions(t *testing.T) {
	seq := Encode([]byte("ANCGT"))
	rc := seq.ReverseComplement()
	assert.Equal(t, "ACGNT", string(rc.Decode()))
	assert.Equal(t, int32(1), rc.N[0])
	assert.Equal(t, int32(3), rc.N[1])
}

func TestGetKmerSpansWordBoundary(t *testing.T) {
	bases := make([]byte, 40)
	for i := range bases {
		bases[i] = "ACGT"[i%4]
	}
	seq := Encode(bases)
	kmersize := 10
	shifter := uint(64 - 2*kmersize)
	for pos := 0; pos+kmersize <= len(bases); pos++ {
		kmer := seq.GetKmer(pos, shifter)
		want := uint64(0)
		for j := 0; j < kmersize; j++ {
			want = (want << 2) | uint64(base2bitTable[bases[pos+j]])
		}
		assert.Equal(t, want, kmer, "kmer at pos %d", pos)
	}
}

func TestWithSentinelRestoresN(t *testing.T) {
	seq := Encode([]byte("ANCGT"))
	before := append([]int32(nil), seq.N...)
	seq.WithSentinel(func() {
		assert.Equal(t, int32(2), seq.N[0])
		assert.Equal(t, int32(5), seq.N[2])
	})
	assert.Equal(t, before, seq.N)
}

func TestStretchesCoversWholeSequenceWithoutN(t *testing.T) {
	seq := Encode([]byte("ACGTACGT"))
	var got [][2]int
	seq.Stretches(func(start, end int) {
		got = append(got, [2]int{start, end})
	})
	assert.Equal(t, [][2]int{{0, 8}}, got)
	assert.Equal(t, int32(0), seq.N[0], "N must be restored after Stretches")
}

func TestStretchesSkipsAmbiguousPositions(t *testing.T) {
	seq := Encode([]byte("ACGNACGTNAC"))
	var got [][2]int
	seq.Stretches(func(start, end int) {
		got = append(got, [2]int{start, end})
	})
	assert.Equal(t, [][2]int{{0, 3}, {4, 8}, {9, 11}}, got)
}

func TestStretchesOmitsEmptyRuns(t *testing.T) {
	seq := Encode([]byte("ANNCGT"))
	var got [][2]int
	seq.Stretches(func(start, end int) {
		got = append(got, [2]int{start, end})
	})
	assert.Equal(t, [][2]int{{0, 1}, {3, 6}}, got)
}
