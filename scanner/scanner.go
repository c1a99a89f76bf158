package scanner

import (
	"github.com/grailbio/kmareassign/kmerindex"
	"github.com/grailbio/kmareassign/packedseq"
)

// Scan resolves every k-mer of fwd and rc (the forward and reverse-
// complement packed encodings of one query) against idx and returns the
// surviving candidate template ids: unsigned when idx is prefix-
// anchored (both strands reported through one shared table), sign-
// encoded (reverse-strand ids negated) when it is not. Ids are not
// deduplicated; candidate.Build expects (and heapifies) the raw list.
//
// Like the source's reassign_kmers, Scan only ever forms a k-mer (or,
// in prefix mode, a prefix-mer plus k-mer pair) from a window that falls
// entirely within one maximal run between recorded ambiguous ("N")
// positions — packedseq.Seq.Stretches drives this segment bounding.
// Windows that would straddle an N are never looked up at all: an N
// position still occupies a word slot in Words (encoded as the 'A'
// placeholder, per packedseq.Encode), so a blind per-position scan would
// silently feed that placeholder into otherwise-real k-mers and corrupt
// candidate scores. This differs from an earlier version of this
// package, which scanned every position unconditionally and claimed
// that to be behaviorally equivalent to the source's segment loop; it
// was not.
func Scan(idx *kmerindex.Index, fwd, rc *packedseq.Seq) []int32 {
	kmersize := int(idx.KmerSize)
	shifter := uint(64 - 2*kmersize)

	if idx.PrefixLen != 0 {
		scores := make(map[int32]int)
		var bests []int32
		prefixShifter := uint(64 - 2*int(idx.PrefixLen))
		scanPrefixed(idx, fwd, kmersize, int(idx.PrefixLen), prefixShifter, shifter, scores, &bests)
		scanPrefixed(idx, rc, kmersize, int(idx.PrefixLen), prefixShifter, shifter, scores, &bests)
		return filterThreshold(bests, scores, func(id int32) int {
			return int(idx.TemplateLengths[id])
		})
	}

	threshold := func(id int32) int {
		return int(idx.TemplateLengths[id]) - kmersize + 1
	}

	scoresFwd := make(map[int32]int)
	var bestsFwd []int32
	scanAnchored(idx, fwd, kmersize, shifter, scoresFwd, &bestsFwd)
	bestsFwd = filterThreshold(bestsFwd, scoresFwd, threshold)

	scoresRC := make(map[int32]int)
	var bestsRC []int32
	scanAnchored(idx, rc, kmersize, shifter, scoresRC, &bestsRC)
	bestsRC = filterThreshold(bestsRC, scoresRC, threshold)

	merged := make([]int32, 0, len(bestsFwd)+len(bestsRC))
	merged = append(merged, bestsFwd...)
	for _, id := range bestsRC {
		merged = append(merged, -id)
	}
	return merged
}

// group is the shared "reps" run-length compression state: consecutive
// k-mers resolving to the identical *kmerindex.ValueVector are folded
// into one weighted score update, mirroring the source's `values ==
// last` pointer comparison.
type group struct {
	last   *kmerindex.ValueVector
	reps   int
	scores map[int32]int
	bests  *[]int32
}

func (g *group) observe(vv *kmerindex.ValueVector) {
	if vv == nil {
		return
	}
	if vv == g.last {
		g.reps++
		return
	}
	g.flush()
	g.last = vv
	g.reps = 1
}

func (g *group) flush() {
	if g.last == nil {
		return
	}
	for _, id := range g.last.IDs {
		id := int32(id)
		g.scores[id] += g.reps
		if g.scores[id] == g.reps {
			*g.bests = append(*g.bests, id)
		}
	}
}

// scanAnchored implements the non-prefix path: every position whose
// k-mer window falls inside a single N-free stretch gets a direct k-mer
// (optionally minimizer-reduced) lookup.
func scanAnchored(idx *kmerindex.Index, seq *packedseq.Seq, kmersize int, shifter uint, scores map[int32]int, bests *[]int32) {
	g := &group{scores: scores, bests: bests}
	seq.Stretches(func(start, end int) {
		limit := end - kmersize
		for pos := start; pos <= limit; pos++ {
			kmer := seq.GetKmer(pos, shifter)
			cmer := reduce(idx, kmer, kmersize)
			g.observe(idx.Lookup(cmer))
		}
	})
	g.flush()
}

// scanPrefixed implements the prefix-anchored path: a k-mer is only
// ever formed, reduced and looked up once the prefixLen bases starting
// at pos match idx.Prefix, and the looked-up k-mer begins at pos+1, one
// base after the start of the matched prefix window, per reassign_kmers.
// Both the prefix-mer
// window [pos, pos+prefixLen) and the k-mer window [pos+1, pos+1+
// kmersize) must stay inside the current stretch; kmersize is normally
// the larger span, but the prefix-length bound is checked too so an
// unusually long prefix can never be the one that slips an N through.
func scanPrefixed(idx *kmerindex.Index, seq *packedseq.Seq, kmersize, prefixLen int, prefixShifter, shifter uint, scores map[int32]int, bests *[]int32) {
	g := &group{scores: scores, bests: bests}
	seq.Stretches(func(start, end int) {
		limit := end - kmersize - 1
		if pLimit := end - prefixLen; pLimit < limit {
			limit = pLimit
		}
		for pos := start; pos <= limit; pos++ {
			pmer := seq.GetKmer(pos, prefixShifter)
			if pmer != idx.Prefix {
				continue
			}
			kmer := seq.GetKmer(pos+1, shifter)
			cmer := reduce(idx, kmer, kmersize)
			g.observe(idx.Lookup(cmer))
		}
	})
	g.flush()
}

// reduce maps kmer down to its minimizer ("cmer") when idx enables it,
// by taking the numerically smallest mlen-length window the kmersize-
// length k-mer contains. The source's actual minimizer update
// (getCmer/initCmer/updateCmer) is not part of the retrieval pack this
// core was built from; this is a from-scratch approximation with the
// same external contract (same cmer for the same kmer, every time) —
// see DESIGN.md.
func reduce(idx *kmerindex.Index, kmer uint64, kmersize int) uint64 {
	if !idx.MinimizerEnabled() {
		return kmer
	}
	mlen := int(idx.MLen)
	if mlen <= 0 || mlen >= kmersize {
		return kmer
	}
	mmask := uint64(1)<<(2*mlen) - 1
	best := kmer & mmask
	for i := 1; i+mlen <= kmersize; i++ {
		window := (kmer >> uint(2*i)) & mmask
		if window < best {
			best = window
		}
	}
	return best
}

// filterThreshold keeps only the ids whose accumulated score meets
// threshold(id), matching reassign_kmers's "evaluate scores" pass,
// which also zeroes each visited id's score so the next strand/call
// starts clean; that reset is implicit here since scores is a
// call-local map.
func filterThreshold(ids []int32, scores map[int32]int, threshold func(int32) int) []int32 {
	survivors := ids[:0]
	for _, id := range ids {
		if scores[id] >= threshold(id) {
			survivors = append(survivors, id)
		}
	}
	return survivors
}
