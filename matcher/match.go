package matcher

import "github.com/grailbio/kmareassign/packedseq"

// GetOffset scans target starting at startOffset for the first position
// whose full 32-base word equals kmer, mirroring reassign_getoffset. It
// returns -1 if target runs out before a match is found.
func GetOffset(target *packedseq.Seq, kmer uint64, startOffset int) int {
	offset := startOffset - 1
	qmer := kmer + 1
	for qmer != kmer {
		offset++
		if offset >= target.SeqLen {
			return -1
		}
		qmer = target.GetKmer(offset, 0)
	}
	return offset
}

// CmpSeqs lexicographically compares length bases of query (from its
// start) against consensus starting at offset, word by word, mirroring
// reassign_cmpseqs. It returns -1 if offset is negative or query sorts
// first, 1 if consensus sorts first, 0 on an exact match.
func CmpSeqs(consensus, query *packedseq.Seq, length, offset int) int {
	if offset < 0 {
		return -1
	}
	wordIdx := 0
	remaining := length
	for remaining > packedseq.BasesPerWord {
		kmer := consensus.GetKmer(offset, 0)
		qword := uint64(0)
		if wordIdx < len(query.Words) {
			qword = query.Words[wordIdx]
		}
		if qword != kmer {
			if qword < kmer {
				return -1
			}
			return 1
		}
		wordIdx++
		offset += packedseq.BasesPerWord
		remaining -= packedseq.BasesPerWord
	}
	if remaining > 0 && remaining < packedseq.BasesPerWord {
		shift := uint(64 - remaining*2)
		kmer := consensus.GetKmer(offset, shift) << shift
		qword := uint64(0)
		if wordIdx < len(query.Words) {
			qword = query.Words[wordIdx]
		}
		if qword != kmer {
			if qword < kmer {
				return -1
			}
			return 1
		}
	}
	return 0
}

// TestNs reports the first recorded ambiguous position of consensusN
// strictly between start and end, or 0 if none exists (mirroring
// reassign_testNs, including its early exit once a recorded position
// reaches end).
func TestNs(consensusN []int32, start, end int) int32 {
	count := int(consensusN[0])
	for i := 1; i <= count; i++ {
		if int(consensusN[i]) >= end {
			break
		}
		if start < int(consensusN[i]) && int(consensusN[i]) < end {
			return consensusN[i]
		}
	}
	return 0
}

// Match finds the offset into consensus where candidate matches
// exactly, honoring consensus's ambiguous-position list, mirroring
// reassign_matchseqs. It returns -1 if no placement exists.
func Match(consensus, candidate *packedseq.Seq) int {
	start := 0
	nCount := int(consensus.N[0])
	for i := 1; i <= nCount; i++ {
		gap := int(consensus.N[i]) - start
		if candidate.SeqLen <= gap {
			break
		} else if consensus.SeqLen-int(consensus.N[i]) < candidate.SeqLen {
			return -1
		}
		start = int(consensus.N[i]) + 1
	}

	start--
	match := 1
	for match != 0 {
		start++
		if candidate.SeqLen > consensus.SeqLen-start {
			break
		}
		firstWord := uint64(0)
		if len(candidate.Words) > 0 {
			firstWord = candidate.Words[0]
		}
		if off := GetOffset(consensus, firstWord, start); off >= 0 {
			start = off
		} else {
			break
		}
		match = CmpSeqs(consensus, candidate, candidate.SeqLen, start)
		if match == 0 {
			if n := TestNs(consensus.N, start, start+candidate.SeqLen); n != 0 {
				start = int(n)
				match = 1
			}
		}
	}
	if match != 0 {
		return -1
	}
	return start
}

// MatchBothStrands tries consensus first and only falls back to
// consensusRC when the forward strand found no placement at all. See
// the package doc for why this differs from the source's literal (and
// buggy) short-circuit.
func MatchBothStrands(consensus, consensusRC, candidate *packedseq.Seq) int {
	if offset := Match(consensus, candidate); offset != -1 {
		return offset
	}
	return Match(consensusRC, candidate)
}
