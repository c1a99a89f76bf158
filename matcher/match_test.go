package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/kmareassign/packedseq"
)

func TestGetOffsetFindsFirstWordMatch(t *testing.T) {
	target := packedseq.Encode([]byte("ACGTACGTACGTACGTACGTACGTACGTACGTACGT"))
	kmer := target.GetKmer(5, 0)
	offset := GetOffset(&target, kmer, 0)
	// The target repeats every 4 bases and is zero-padded past its end,
	// so the 32-base word read at 5 already occurs at 1.
	assert.Equal(t, 1, offset)
}

func TestGetOffsetNoMatch(t *testing.T) {
	target := packedseq.Encode([]byte("ACGTACGTACGTACGTACGTACGTACGTACGTACGT"))
	offset := GetOffset(&target, ^uint64(0), 0)
	assert.Equal(t, -1, offset)
}

func TestCmpSeqsExactMatch(t *testing.T) {
	bases := []byte("ACGTACGTACGTACGTACGTACGTACGTACGTACGTACGT")
	consensus := packedseq.Encode(bases)
	query := packedseq.Encode(bases[3:20])
	assert.Equal(t, 0, CmpSeqs(&consensus, &query, len(bases[3:20]), 3))
}

func TestCmpSeqsNegativeOffset(t *testing.T) {
	bases := []byte("ACGTACGT")
	consensus := packedseq.Encode(bases)
	query := packedseq.Encode(bases)
	assert.Equal(t, -1, CmpSeqs(&consensus, &query, len(bases), -1))
}

func TestTestNsFindsPositionWithinRange(t *testing.T) {
	nlist := []int32{3, 5, 10, 20}
	assert.Equal(t, int32(10), TestNs(nlist, 6, 15))
}

func TestTestNsNoPositionInRange(t *testing.T) {
	nlist := []int32{2, 1, 50}
	assert.Equal(t, int32(0), TestNs(nlist, 10, 20))
}

func TestMatchFindsExactPlacement(t *testing.T) {
	consensus := packedseq.Encode([]byte("ACGTACGTACGTACGTACGTACGTACGTACGTACGT"))
	candidate := packedseq.Encode([]byte("ACGTACGTACGT"))
	offset := Match(&consensus, &candidate)
	assert.GreaterOrEqual(t, offset, 0)
}

func TestMatchReturnsMinusOneWhenTooLong(t *testing.T) {
	consensus := packedseq.Encode([]byte("ACGT"))
	candidate := packedseq.Encode([]byte("ACGTACGTACGTACGT"))
	assert.Equal(t, -1, Match(&consensus, &candidate))
}

func TestMatchBothStrandsPrefersForwardMatch(t *testing.T) {
	consensus := packedseq.Encode([]byte("ACGTACGTACGTACGTACGTACGTACGTACGTACGT"))
	consensusRC := consensus.ReverseComplement()
	candidate := packedseq.Encode([]byte("ACGTACGTACGT"))

	offset := MatchBothStrands(&consensus, &consensusRC, &candidate)
	assert.Equal(t, Match(&consensus, &candidate), offset)
}

func TestMatchBothStrandsFallsBackToReverse(t *testing.T) {
	consensus := packedseq.Encode([]byte("GGGGGGGGTTTTTTTT"))
	consensusRC := consensus.ReverseComplement()
	// Candidate matches only the reverse complement of consensus.
	candidate := packedseq.Encode([]byte("AAAAAAAACCCCCCCC"))
	candidateRC := candidate.ReverseComplement()
	_ = candidateRC

	offset := MatchBothStrands(&consensus, &consensusRC, &candidate)
	assert.Equal(t, Match(&consensusRC, &candidate), offset)
}
