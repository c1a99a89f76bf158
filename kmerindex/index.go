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
package kmerindex

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ValueVector is the value a k-mer or minimizer looks up to: the set of
// template ids whose signature contains it. Two lookups that return the
// same *ValueVector pointer are guaranteed to be the literal same bucket
// entry; scanner.Scan relies on this pointer identity to implement its
// run-length "reps" compression, in place of the source's raw pointer
// comparison on the mmapped value vector.
type ValueVector struct {
	IDs []uint32
}

// Header is the fixed-size on-disk header of a <base>.comp.b file.
type Header struct {
	KmerSize  int32
	Prefix    uint64
	PrefixLen int32
	Flag      int32
	MLen      int32
	DBSize    int32
	ShmFlag   int32
}

// Index is an immutable, read-only compressed k-mer index plus its
// per-template metadata. Template ids are 1-indexed (id 0 is "none", id
// 1 is reserved); callers must route indexing through Norm.
type Index struct {
	Header
	// TemplateLengths[i] is the nucleotide length of template i, for
	// i in [1, DBSize).
	TemplateLengths []int32
	// SeqOffsets[i] is the byte offset of template i's packed sequence in
	// the <base>.seq.b file.
	SeqOffsets []int64
	// NameOffsets[i] is the byte offset of template i's name in the
	// <base>.name file.
	NameOffsets []int64

	buckets map[uint64]*ValueVector
}

// Norm strips the strand sign a candidate template id may carry.
func Norm(id int32) int32 {
	if id < 0 {
		return -id
	}
	return id
}

// New creates an empty Index ready for Insert calls, typically used by
// tests and by in-memory database construction; production loading goes
// through Load.
func New(h Header, templateLengths []int32) *Index {
	return &Index{
		Header:          h,
		TemplateLengths: templateLengths,
		buckets:         make(map[uint64]*ValueVector),
	}
}

// Insert records that cmer resolves to ids, returning the stable
// *ValueVector scanner.Scan will later observe via Lookup.
func (idx *Index) Insert(cmer uint64, ids []uint32) *ValueVector {
	vv := &ValueVector{IDs: ids}
	idx.buckets[cmer] = vv
	return vv
}

// Lookup returns the value vector for cmer, or nil if cmer is absent.
// Deterministic, and does not allocate.
func (idx *Index) Lookup(cmer uint64) *ValueVector {
	return idx.buckets[cmer]
}

// MinimizerEnabled reports whether k-mers should be reduced to a
// minimizer ("cmer") over MLen bases before lookup.
func (idx *Index) MinimizerEnabled() bool {
	return idx.Flag != 0
}

// Load reads a <base>.comp.b header from r and returns an Index with its
// bucket table ready to be populated by Insert (or, in a real deployment,
// memory-mapped in by a lower layer not modeled by this core). A
// malformed header is a format error, not a recoverable one: callers
// that need a human-readable diagnostic should wrap the returned error
// themselves.
func Load(r io.Reader, templateLengths []int32) (*Index, error) {
	br := bufio.NewReader(r)
	var h Header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "kmerindex: wrong format of DB")
	}
	if int(h.DBSize) != len(templateLengths) {
		return nil, errors.Errorf("kmerindex: header DB_size %d does not match %d template lengths", h.DBSize, len(templateLengths))
	}
	return &Index{
		Header:          h,
		TemplateLengths: templateLengths,
		buckets:         make(map[uint64]*ValueVector),
	}, nil
}

// BuildSeqOffsets computes SeqOffsets the way reassign_template's lazy
// init does: template i's packed sequence begins immediately after
// template i-1's, each occupying ((len>>5)+1) 64-bit words. seqBase is
// the byte offset of template 1 (normally 0, immediately following the
// file's own header, if any).
func (idx *Index) BuildSeqOffsets(seqBase int64) {
	n := int(idx.DBSize)
	offsets := make([]int64, n)
	offsets[1] = seqBase
	for i := 2; i < n; i++ {
		words := int64(idx.TemplateLengths[i-1]/32) + 1
		offsets[i] = offsets[i-1] + words*8
	}
	idx.SeqOffsets = offsets
}

// BuildNameOffsets scans nameFile for newline-terminated names (ids
// start at 2) and records each name's starting byte offset, restoring
// the file's original cursor position before returning.
func (idx *Index) BuildNameOffsets(nameFile io.ReadSeeker) error {
	saved, err := nameFile.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "kmerindex: save name file offset")
	}
	if _, err := nameFile.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "kmerindex: seek name file")
	}
	n := int(idx.DBSize)
	offsets := make([]int64, n)
	br := bufio.NewReader(nameFile)
	var pos int64
	i := 2
	for i < n {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "kmerindex: read name file")
		}
		pos++
		if b == '\n' {
			i++
			if i < n {
				offsets[i] = pos
			}
		}
	}
	idx.NameOffsets = offsets
	if _, err := nameFile.Seek(saved, io.SeekStart); err != nil {
		return errors.Wrap(err, "kmerindex: restore name file offset")
	}
	return nil
}
