// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package packedseq

import (
	"github.com/grailbio/base/simd"

	"github.com/grailbio/kmareassign/biosimd"
)

// BasesPerWord is the number of 2-bit bases packed into each 64-bit word.
const BasesPerWord = 32

// base2bitTable maps ASCII bases to their 2-bit code; anything not in
// {A,C,G,T} (case-insensitively) maps to 4, the ambiguous-base sentinel.
var base2bitTable = [256]byte{}

// enumToASCIITable is the inverse of base2bitTable, used by Decode.
var enumToASCIITable = [4]byte{'A', 'C', 'G', 'T'}

func init() {
	for i := range base2bitTable {
		base2bitTable[i] = 4
	}
	base2bitTable['A'], base2bitTable['a'] = 0, 0
	base2bitTable['C'], base2bitTable['c'] = 1, 1
	base2bitTable['G'], base2bitTable['g'] = 2, 2
	base2bitTable['T'], base2bitTable['t'] = 3, 3
}

// Seq is a two-bit packed DNA sequence. Words[] holds SeqLen bases, 32
// per word, high-order base first; N
// records positions (in original-string coordinates) that were not
// {A,C,G,T}. N[0] is the count of recorded positions, matching the
// length-prefixed convention the k-mer index's value vectors also use
// (see kmerindex.ValueVector) and the convention the original C source
// uses throughout (qseq->N[0]).
//
// Ambiguous-base positions still occupy a word slot (encoded as 'A', i.e.
// 0) so that position indices stay aligned between Seq, the assembly
// matrix, and the consensus streams; callers that care must bridge around
// N via the N list, the same way ExactMatcher and MatrixRewriter do.
type Seq struct {
	Words  []uint64
	SeqLen int
	N      []int32
}

// complen returns the number of words needed for n bases, matching the
// source's "(len>>5)+1" convention: ceil(n/32) words, plus one spare
// word when n is an exact multiple of 32. GetKmer treats any word past
// the end of Words as zero padding.
func complen(n int) int {
	return (n / BasesPerWord) + 1
}

// Encode packs bases (raw ASCII, upper or lower case) into a new Seq.
//
// biosimd.IsNonACGTPresent gives a cheap upfront answer for the common
// case where bases is already clean, capital-only ACGT (e.g. the output
// of assembly.Consensus.Trim): when it reports false, every base maps
// through the table with v != 4, so the per-base N bookkeeping below can
// be skipped outright. A true answer (which also fires on lowercase
// input, since the check is capital-only) just falls through to the
// general loop; it never produces a wrong encoding.
func Encode(bases []byte) Seq {
	n := len(bases)
	words := make([]uint64, complen(n))
	if !biosimd.IsNonACGTPresent(bases) {
		for i, b := range bases {
			wordIdx := i / BasesPerWord
			shift := uint(62 - 2*(i%BasesPerWord))
			words[wordIdx] |= uint64(base2bitTable[b]) << shift
		}
		return Seq{Words: words, SeqLen: n, N: []int32{0}}
	}
	nlist := []int32{0}
	for i, b := range bases {
		v := base2bitTable[b]
		if v == 4 {
			nlist[0]++
			nlist = append(nlist, int32(i))
			v = 0
		}
		wordIdx := i / BasesPerWord
		shift := uint(62 - 2*(i%BasesPerWord))
		words[wordIdx] |= uint64(v) << shift
	}
	return Seq{Words: words, SeqLen: n, N: nlist}
}

// Decode returns the ASCII representation of s, with 'N' written at every
// recorded ambiguous position.
func (s *Seq) Decode() []byte {
	out := make([]byte, s.SeqLen)
	for i := 0; i < s.SeqLen; i++ {
		out[i] = enumToASCIITable[s.GetNuc(i)]
	}
	nCount := int(s.N[0])
	for k := 1; k <= nCount; k++ {
		out[s.N[k]] = 'N'
	}
	return out
}

// GetNuc returns the raw 2-bit value (0..3, meaningless at N positions) of
// the base at pos.
func (s *Seq) GetNuc(pos int) byte {
	wordIdx := pos / BasesPerWord
	shift := uint(62 - 2*(pos%BasesPerWord))
	return byte((s.Words[wordIdx] >> shift) & 3)
}

// GetKmer returns the 64-bit integer whose low-order bits, after shifting
// right by shifter (= 64 - 2*kmersize for a full k-mer read), hold the
// 2-bit-packed bases starting at pos. It transparently combines the two
// words pos may straddle, mirroring the source's getKmer_macro.
func (s *Seq) GetKmer(pos int, shifter uint) uint64 {
	cPos := pos / BasesPerWord
	iPos := uint(pos%BasesPerWord) << 1
	kmer := s.Words[cPos] << iPos
	if iPos != 0 && cPos+1 < len(s.Words) {
		kmer |= s.Words[cPos+1] >> (64 - iPos)
	}
	return kmer >> shifter
}

// ReverseComplement returns the reverse complement of s. The one-byte-
// per-base 2-bit codes are reversed and XORed with 3 (A<->T, C<->G) via
// simd.Reverse8Inplace/simd.XorConst8Inplace, exactly as
// biosimd.ReverseComp2Inplace does for its ACGT=0123 byte encoding; the
// packed Seq is unpacked to that one-byte-per-base form and repacked
// around the call since Words[] itself is 32-bases-per-word, not
// one-byte-per-base. N positions are transformed to SeqLen-1-N[k] and the
// list is reversed to stay ascending.
func (s *Seq) ReverseComplement() Seq {
	n := s.SeqLen
	acgt8 := make([]byte, n)
	for i := 0; i < n; i++ {
		acgt8[i] = s.GetNuc(i)
	}
	simd.Reverse8Inplace(acgt8)
	simd.XorConst8Inplace(acgt8, 3)

	words := make([]uint64, complen(n))
	for i, v := range acgt8 {
		wordIdx := i / BasesPerWord
		shift := uint(62 - 2*(i%BasesPerWord))
		words[wordIdx] |= uint64(v) << shift
	}
	nCount := int(s.N[0])
	nlist := make([]int32, nCount+1)
	nlist[0] = int32(nCount)
	for k := 1; k <= nCount; k++ {
		nlist[k] = int32(n-1) - s.N[nCount+1-k]
	}
	return Seq{Words: words, SeqLen: n, N: nlist}
}

// pushSentinel temporarily appends SeqLen as an extra "N" entry, so a
// scanner can treat the tail of the sequence as the final stretch between
// ambiguous positions without special-casing the end of the loop. It must
// be paired with popSentinel once the scan completes; see scanner.Scan.
func (s *Seq) pushSentinel() {
	s.N[0]++
	if int(s.N[0]) >= len(s.N) {
		s.N = append(s.N, int32(s.SeqLen))
	} else {
		s.N[s.N[0]] = int32(s.SeqLen)
	}
}

// popSentinel undoes pushSentinel.
func (s *Seq) popSentinel() {
	s.N[0]--
	s.N = s.N[:s.N[0]+1]
}

// WithSentinel runs fn with a temporary trailing sentinel appended to N,
// and guarantees it is removed afterwards even if fn panics.
func (s *Seq) WithSentinel(fn func()) {
	s.pushSentinel()
	defer s.popSentinel()
	fn()
}

// NCount returns the number of recorded ambiguous-base positions.
func (s *Seq) NCount() int {
	return int(s.N[0])
}

// Stretches calls fn once for every maximal run of positions in [0,
// SeqLen) containing no recorded ambiguous base, in ascending order.
// The trailing stretch after the last recorded N (or the whole sequence,
// if there are none) is visited via WithSentinel's temporary sentinel,
// so fn never has to special-case the tail itself. This is the
// segment-bounded iteration reassign_kmers performs via its qseq->N[i]
// loop bounds; scanner.Scan drives its per-stretch k-mer windows through
// it instead of scanning blindly across N positions.
func (s *Seq) Stretches(fn func(start, end int)) {
	s.WithSentinel(func() {
		start := 0
		count := s.NCount()
		for i := 1; i <= count; i++ {
			end := int(s.N[i])
			if end > start {
				fn(start, end)
			}
			start = end + 1
		}
	})
}
