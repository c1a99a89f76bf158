package rewriter

import (
	"github.com/pkg/errors"

	"github.com/grailbio/kmareassign/assembly"
	"github.com/grailbio/kmareassign/packedseq"
)

// GrowBias grows matrix's arena by at least bias extra trailing slots
// and shifts its current tail forward by bias positions (fixing up
// their Next pointers), returning the bias actually applied. It returns
// 0 without touching the matrix when bias is non-positive and no growth
// is needed, mirroring reassign_matrix_bias.
func GrowBias(matrix *assembly.Matrix, bias int) int {
	if matrix.Len+bias >= len(matrix.Nodes) {
		matrix.EnsureCapacity(matrix.Len + bias)
	} else if bias <= 0 {
		return 0
	}
	oldLen := matrix.Len
	matrix.Len += bias
	if bias != 0 {
		for i := oldLen - 1; i >= 0; i-- {
			dst := i + bias
			matrix.Nodes[dst] = matrix.Nodes[i]
			matrix.Nodes[dst].Next += uint32(bias)
		}
	}
	return bias
}

// TakeInsertionSlot grows matrix by 1024 columns if its arena is full
// and returns the index of a fresh zero-valued column with Next cleared,
// mirroring reassign_matrix_insertions.
func TakeInsertionSlot(matrix *assembly.Matrix) int {
	if matrix.Len == len(matrix.Nodes) {
		matrix.EnsureCapacity(matrix.Len + 1024)
	}
	idx := matrix.Len
	matrix.Len++
	matrix.Nodes[idx] = assembly.Node{}
	return idx
}

// ReverseComplement reverse-complements matrix's single entry chain
// rooted at assembly.Root — the un-reanchored, one-node-per-alignment-
// column list the primary assembler produced, still a straight list
// with no live/insertion split at this point — together with aligned's
// T/S/Q streams, in place. This is assemble_rc(matrix,
// assem_rc(aligned_assem, complement)) from the source: when a
// candidate only matched on the reverse strand (matchOffset's offset
// was computed against the reverse-complement query), the matrix and
// the consensus it was derived from must be flipped into that same
// reverse-strand coordinate frame before Reanchor splices them onto the
// forward-strand template the database always stores sequences in;
// skipping this step leaves Reanchor reading a query walked in the
// wrong direction against a template it was never aligned to.
//
// Each node's base counts are complemented by swapping index 0<->3
// (A<->T) and 1<->2 (C<->G) and leaving N (4) and gap (5) counts in
// place, mirroring the source's complement lookup table; aligned.T and
// aligned.Q get the same per-byte base complement plus a full reversal;
// aligned.S is only reversed, since a match marker carries no base
// identity to complement.
func ReverseComplement(matrix *assembly.Matrix, aligned *assembly.Consensus) {
	n := aligned.Len
	if n == 0 {
		return
	}

	idxs := make([]int, 0, n)
	pos := assembly.Root
	for i := 0; i < n; i++ {
		idxs = append(idxs, pos)
		next := matrix.At(pos).Next
		if next == assembly.NilNext {
			break
		}
		pos = int(next)
	}

	counts := make([][6]uint16, len(idxs))
	for i, idx := range idxs {
		c := matrix.At(idx).Counts
		counts[i] = [6]uint16{c[3], c[2], c[1], c[0], c[4], c[5]}
	}
	for k, idx := range idxs {
		matrix.Nodes[idx].Counts = counts[len(counts)-1-k]
		if k == len(idxs)-1 {
			matrix.Nodes[idx].Next = assembly.NilNext
		} else {
			matrix.Nodes[idx].Next = uint32(idxs[k+1])
		}
	}

	reverseComplementBases(aligned.T)
	reverseComplementBases(aligned.Q)
	reverseBytes(aligned.S)
}

// complementBase swaps A<->T and C<->G; any other byte (N, '-') passes
// through unchanged.
func complementBase(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	default:
		return b
	}
}

func reverseComplementBases(b []byte) {
	for i, j := 0, len(b)-1; i <= j; i, j = i+1, j-1 {
		b[i], b[j] = complementBase(b[j]), complementBase(b[i])
	}
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// maxReanchorSteps bounds Reanchor's splice loop; genuine inputs
// terminate in at most len(q)+tLen steps (every existing column is
// visited at most once, plus one '-' padding step per template column
// past the query's end), so this is generous headroom, not a tuned limit.
func maxReanchorSteps(qLen, tLen int) int {
	return 4*(qLen+tLen) + 64
}

// Reanchor rewrites matrix and aligned so that aligned's new consensus
// frame is tseq (a template of length tLen), starting from the existing
// consensus at offset. On return aligned.T/.S/.Q hold exactly tLen
// columns: aligned.T carries tseq's own bases (this is what "reanchor
// onto a new template" means — the template row becomes the new
// candidate's sequence), aligned.S is all match markers, and aligned.Q
// carries whatever the previous consensus query stream held at the
// corresponding column, or '-' past its end. aligned.Depth/.DepthVar
// accumulate the per-column total read depth the way
// stats.Update later consumes. Columns that were insertions
// relative to the old frame and still are not part of the new template
// remain in the matrix (findable via their old chain) but are not
// written to the output streams, matching reassign_matrix_offset.
func Reanchor(matrix *assembly.Matrix, aligned *assembly.Consensus, offset int, tseq *packedseq.Seq, tLen int) error {
	t, s, q := aligned.T, aligned.S, aligned.Q
	_ = s

	// 1. walk to `offset` non-gap query bases into the existing chain.
	ti := 0
	pos := assembly.Root
	bias := -offset
	remaining := offset
	for remaining > 0 {
		if ti < len(q) && q[ti] != '-' {
			remaining--
		}
		ti++
		pos = int(matrix.At(pos).Next)
	}

	// 2. count how many more insertion columns the splice will need.
	alnLen := tLen
	for scan := ti; scan < len(t) && alnLen > 0; scan++ {
		if t[scan] == '-' && q[scan] != '-' {
			bias++
		}
		alnLen--
	}
	bias = GrowBias(matrix, bias)
	pos += bias
	matrix.EnsureCapacity(assembly.Root + tLen)

	newT := make([]byte, 0, tLen)
	newS := make([]byte, 0, tLen)
	newQ := make([]byte, 0, tLen)

	insertions := assembly.NilNext
	newPos := 0
	var newPtr *assembly.Node
	alnLen = 0
	asmLen := 0
	aligned.Depth = 0
	aligned.DepthVar = 0

	guard := maxReanchorSteps(len(q), tLen)
	for alnLen != tLen {
		guard--
		if guard < 0 {
			return errors.Errorf("rewriter: Reanchor did not converge after %d steps (t_len=%d)", maxReanchorSteps(len(q), tLen), tLen)
		}

		asmPtr := matrix.At(pos)
		gapInQuery := ti < len(q) && q[ti] == '-'

		if !gapInQuery {
			total := uint64(asmPtr.Total())
			aligned.Depth += total
			aligned.DepthVar += total * total

			newT = append(newT, assembly.Bases[tseq.GetNuc(alnLen)])
			newS = append(newS, '|')
			if ti < len(q) {
				newQ = append(newQ, q[ti])
			} else {
				newQ = append(newQ, '-')
			}

			// dst is offset by assembly.Root so that template column 0
			// never lands on index 0, which assembly.NilNext reserves as
			// "no next" — colliding the two would make a genuine link to
			// column 0 indistinguishable from a terminated chain.
			dst := assembly.Root + alnLen
			if newPtr != nil {
				newPtr.Next = uint32(dst)
			}
			node := *asmPtr
			matrix.Nodes[dst] = node
			newPos = dst
			newPtr = matrix.At(dst)
			alnLen++

			if ti < len(t) && t[ti] == '-' {
				asmPtr.Next = uint32(insertions)
				insertions = pos
				asmPtr = newPtr
			}
		} else {
			if pos < tLen && ti < len(t) && t[ti] != '-' {
				if insertions == assembly.NilNext {
					insertions = TakeInsertionSlot(matrix)
					asmPtr = matrix.At(pos)
					newPtr = matrix.At(newPos)
				}
				tmp := matrix.At(insertions).Next
				matrix.Nodes[insertions] = *asmPtr
				pos = insertions
				asmPtr = matrix.At(pos)
				insertions = int(tmp)
			}
			if newPtr != nil {
				newPtr.Next = uint32(pos)
			}
			newPos = pos
			newPtr = asmPtr
		}

		asmLen++
		ti++
		pos = int(asmPtr.Next)
	}

	if newPtr != nil {
		newPtr.Next = assembly.NilNext
	}
	if needed := asmLen + assembly.Root; matrix.Len < needed {
		matrix.Len = needed
	}

	aligned.T = newT
	aligned.S = newS
	aligned.Q = newQ
	aligned.Len = tLen
	aligned.AlnLen = tLen
	aligned.Cover = float64(tLen)
	return nil
}
