package reassign

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/kmareassign/assembly"
	"github.com/grailbio/kmareassign/kmerindex"
	"github.com/grailbio/kmareassign/packedseq"
)

// fakeFiles is an in-memory Files implementation keyed by the byte
// offset/nameOffset convention the tests below set up directly on the
// Index (SeqOffsets[i] == i, NameOffsets[i] == i), so LoadSeq/LoadName
// can look a template up without any real encoding on disk.
type fakeFiles struct {
	seqs  map[int64]string
	names map[int64]string
}

func (f *fakeFiles) LoadSeq(ctx context.Context, seqOffset int64, nLen int) (*packedseq.Seq, error) {
	s := packedseq.Encode([]byte(f.seqs[seqOffset]))
	return &s, nil
}

func (f *fakeFiles) LoadName(ctx context.Context, nameOffset int64) (string, error) {
	return f.names[nameOffset], nil
}

func buildIndex(kmersize, dbSize int, templateLengths []int32) *kmerindex.Index {
	return kmerindex.New(kmerindex.Header{KmerSize: int32(kmersize), DBSize: int32(dbSize)}, templateLengths)
}

func consensusFromQuery(q string) *assembly.Consensus {
	return &assembly.Consensus{
		T:   []byte(q),
		S:   []byte(q),
		Q:   []byte(q),
		Len: len(q),
	}
}

// insertAllKmers registers every k-mer of bases against id so that a
// Scan over bases's packed encoding finds id as a full-length candidate
// (mirrors scanner_test.go's buildIndex usage).
func insertAllKmers(idx *kmerindex.Index, seq *packedseq.Seq, kmersize int, id uint32) {
	shifter := uint(64 - 2*kmersize)
	for pos := 0; pos+kmersize <= seq.SeqLen; pos++ {
		idx.Insert(seq.GetKmer(pos, shifter), []uint32{id})
	}
}

func TestReassignS1LongerExactMatch(t *testing.T) {
	const kmersize = 6
	t2Bases := "ACGTACGTACGTACGT" // len 16
	idx := buildIndex(kmersize, 3, []int32{0, 12, 16})
	idx.SeqOffsets = []int64{0, 1, 2}
	idx.NameOffsets = []int64{0, 1, 2}

	t2Seq := packedseq.Encode([]byte(t2Bases))
	insertAllKmers(idx, &t2Seq, kmersize, 2)

	files := &fakeFiles{
		seqs:  map[int64]string{2: t2Bases},
		names: map[int64]string{2: "template-2"},
	}
	core := NewCore(idx, files, Opts{ThreadNum: 1})

	consensus := consensusFromQuery(t2Bases)
	matrix := assembly.NewMatrix(12)
	matrix.Alloc(12)
	for i := 0; i < 12; i++ {
		n := matrix.At(assembly.Root + i)
		n.Counts[0] = 1
		if i < 11 {
			n.Next = uint32(assembly.Root + i + 1)
		} else {
			n.Next = assembly.NilNext
		}
	}

	newTemplate, name, err := core.Reassign(context.Background(), consensus, matrix)
	require.NoError(t, err)
	assert.Equal(t, int32(2), newTemplate)
	assert.Equal(t, "template-2", name)
	assert.Equal(t, 16, consensus.AlnLen)
	assert.Equal(t, float64(16), consensus.Cover)
}

func TestReassignS2AmbiguousBaseBlocksMatch(t *testing.T) {
	const kmersize = 6
	t2Bases := "ACGTACGTACGTACGT"
	idx := buildIndex(kmersize, 3, []int32{0, 12, 16})
	idx.SeqOffsets = []int64{0, 1, 2}
	idx.NameOffsets = []int64{0, 1, 2}

	t2Seq := packedseq.Encode([]byte(t2Bases))
	insertAllKmers(idx, &t2Seq, kmersize, 2)

	files := &fakeFiles{seqs: map[int64]string{2: t2Bases}}
	core := NewCore(idx, files, Opts{ThreadNum: 1})

	withN := []byte(t2Bases)
	withN[5] = 'N'
	consensus := consensusFromQuery(string(withN))
	matrix := assembly.NewMatrix(16)

	newTemplate, _, err := core.Reassign(context.Background(), consensus, matrix)
	require.NoError(t, err)
	assert.Equal(t, int32(0), newTemplate)
}

func TestReassignS3ReverseStrandMatch(t *testing.T) {
	const kmersize = 6
	// Deliberately not a revcomp palindrome (unlike the ACGT-repeat
	// fixture above), so a forward-strand scan genuinely misses it and
	// only the scanner's rc pass (and hence a sign-negated candidate id)
	// can find it.
	t2Bases := "AAAAAAAACCCCCCCC"
	idx := buildIndex(kmersize, 3, []int32{0, 12, 16})
	idx.SeqOffsets = []int64{0, 1, 2}
	idx.NameOffsets = []int64{0, 1, 2}

	t2Seq := packedseq.Encode([]byte(t2Bases))
	rcSeq := t2Seq.ReverseComplement()
	insertAllKmers(idx, &t2Seq, kmersize, 2)

	files := &fakeFiles{seqs: map[int64]string{2: t2Bases}}
	core := NewCore(idx, files, Opts{ThreadNum: 1})

	// The query is the reverse complement of the template: only
	// matchOffset's rc branch can find it, so Reassign must reverse-
	// complement the matrix/consensus before reanchoring. Give every
	// column non-zero, distinguishable counts (not the all-zero default
	// a bare assembly.NewMatrix would leave behind) so a chain that is
	// merely left untouched, rather than correctly reversed, would
	// produce detectably wrong output.
	queryStr := string(rcSeq.Decode())
	consensus := consensusFromQuery(queryStr)
	matrix := assembly.NewMatrix(len(queryStr))
	matrix.Alloc(len(queryStr))
	for i := range queryStr {
		n := matrix.At(assembly.Root + i)
		n.Counts[0] = uint16(i + 1)
		if i < len(queryStr)-1 {
			n.Next = uint32(assembly.Root + i + 1)
		} else {
			n.Next = assembly.NilNext
		}
	}

	newTemplate, _, err := core.Reassign(context.Background(), consensus, matrix)
	require.NoError(t, err)
	assert.Equal(t, int32(2), newTemplate)

	// Only a correctly reverse-complemented query lines up 1:1,
	// gaplessly, with the template: consensus.Q must come back exactly
	// as t2Bases, not as the still-reverse-complemented queryBases an
	// RC-less reanchor would leave in place untransformed.
	require.Equal(t, len(t2Bases), consensus.Len)
	assert.Equal(t, t2Bases, string(consensus.Q[:consensus.Len]))
}

func TestReassignReturnsZeroWhenNoCandidates(t *testing.T) {
	idx := buildIndex(6, 2, []int32{0, 10})
	idx.SeqOffsets = []int64{0, 1}
	idx.NameOffsets = []int64{0, 1}
	core := NewCore(idx, &fakeFiles{}, DefaultOpts)

	consensus := consensusFromQuery("ACGTACGTAC")
	matrix := assembly.NewMatrix(10)

	newTemplate, _, err := core.Reassign(context.Background(), consensus, matrix)
	require.NoError(t, err)
	assert.Equal(t, int32(0), newTemplate)
}
