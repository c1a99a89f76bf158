package stats

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/grailbio/base/traverse"

	"github.com/grailbio/kmareassign/assembly"
	"github.com/grailbio/kmareassign/packedseq"
)

// ChunkSize is the number of template positions each worker claims per
// round, mirroring reassign.c's fixed 8112-position chunk.
const ChunkSize = 8112

// rescaleDepthVariance is the fixVarOverflow equivalent: it derives the
// population variance of per-position depth from the accumulated
// sum-of-squares (DepthVar) and the mean (Depth/t_len) using float64
// arithmetic rather than a fixed-point integer rescale, which sidesteps
// overflow at the cost of losing the original's exact bit-for-bit
// behavior; see DESIGN.md for this resolution.
func rescaleDepthVariance(c *assembly.Consensus, tLen int) {
	if tLen == 0 {
		c.Var = 0
		return
	}
	mean := float64(c.Depth) / float64(tLen)
	meanSq := float64(c.DepthVar) / float64(tLen)
	v := meanSq - mean*mean
	if v < 0 {
		v = 0
	}
	c.Var = v
}

// aggregate holds the running totals every worker folds into under agg's
// mutex, matching the shared state the source's spinlock-guarded globals
// hold.
type aggregate struct {
	mu          sync.Mutex
	snpSum      uint64
	insertSum   uint64
	deletionSum uint64
	maxDepth    uint32
	nucHighVar  uint32
}

func (a *aggregate) fold(snp, ins, del uint64, maxDepth, highVar uint32) {
	a.mu.Lock()
	a.snpSum += snp
	a.insertSum += ins
	a.deletionSum += del
	if maxDepth > a.maxDepth {
		a.maxDepth = maxDepth
	}
	a.nucHighVar += highVar
	a.mu.Unlock()
}

// Update recomputes consensus's extended statistics against matrix and
// tseq (the tLen-base template rewriter.Reanchor just spliced the
// assembly onto), using threadNum workers. Chunks of ChunkSize positions
// are claimed from an atomic counter with an explicit compare against
// tLen, never relying on signed-overflow wraparound as a sentinel; each
// worker accumulates local sums, and traverse.Each's own join is the
// barrier that replaces a spinlock-based wait: every worker's fold()
// happens before traverse.Each returns control to Update, so the final
// read of consensus's fields below always observes every worker's
// contribution.
//
// The first-entering worker's initialization (seeding FragmentCountAln
// from ReadCountAln) happens here, single-threaded, before any worker
// starts claiming chunks — a stronger guarantee than a spinlocked
// first-entry check, and equivalent under the same "observed by all
// later workers" ordering.
func Update(consensus *assembly.Consensus, matrix *assembly.Matrix, tseq *packedseq.Seq, tLen, threadNum int) error {
	rescaleDepthVariance(consensus, tLen)

	if fc := uint32((consensus.ReadCountAln + 1) / 2); fc > consensus.FragmentCountAln {
		consensus.FragmentCountAln = fc
	}

	if tLen == 0 || threadNum <= 0 {
		return nil
	}

	highVarThreshold := float64(consensus.Depth)/float64(tLen) + 3*math.Sqrt(consensus.Var)

	var next int64
	agg := &aggregate{}

	err := traverse.Each(threadNum, func(int) error {
		var snpSum, insertSum, deletionSum uint64
		var maxDepth uint32
		var nucHighVar uint32

		for {
			start := atomic.AddInt64(&next, ChunkSize) - ChunkSize
			if start >= int64(tLen) {
				break
			}
			end := start + ChunkSize
			if end > int64(tLen) {
				end = int64(tLen)
			}

			// Walk the single live+insertion chain covering this chunk,
			// exactly as getExtendedFeatures does: pos starts at the
			// chunk's first live column and follows Next (visiting any
			// insertion columns spliced in along the way) until it
			// reaches chunkEnd, the next chunk's first live column (or,
			// for the last chunk, NilNext: the walk ends only at the
			// chain's trailing NilNext, since an insertion column may sit
			// at index Root+tLen). Every node visited,
			// live or insertion, folds into maxDepth/nucHighVar; only
			// live columns contribute to deletionSum/snpSum, and only
			// insertion columns contribute to insertSum.
			pos := assembly.Root + int(start)
			chunkEnd := assembly.Root + int(end)
			if end == int64(tLen) {
				chunkEnd = assembly.NilNext
			}
			for pos != chunkEnd {
				node := matrix.At(pos)
				d := uint64(node.Counts[0]) + uint64(node.Counts[1]) + uint64(node.Counts[2]) + uint64(node.Counts[3]) + uint64(node.Counts[4])
				gap := uint64(node.Counts[5])

				if pos < assembly.Root+tLen {
					deletionSum += gap
					ref := int(tseq.GetNuc(pos - assembly.Root))
					snpSum += d - uint64(node.Counts[ref])
				} else {
					insertSum += d
				}

				total := uint32(d + gap)
				if total > maxDepth {
					maxDepth = total
				}
				if float64(total) > highVarThreshold {
					nucHighVar++
				}

				if node.Next == assembly.NilNext {
					pos = chunkEnd
				} else {
					pos = int(node.Next)
				}
			}
		}

		agg.fold(snpSum, insertSum, deletionSum, maxDepth, nucHighVar)
		return nil
	})
	if err != nil {
		return err
	}

	// traverse.Each has already joined every worker by the time it
	// returns, so these reads happen-after every agg.fold call above.
	consensus.SNPSum = agg.snpSum
	consensus.InsertSum = agg.insertSum
	consensus.DeletionSum = agg.deletionSum
	consensus.MaxDepth = agg.maxDepth
	consensus.NucHighVar = agg.nucHighVar
	return nil
}
