package reassign

import (
	"context"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/grailbio/kmareassign/assembly"
	"github.com/grailbio/kmareassign/candidate"
	"github.com/grailbio/kmareassign/kmerindex"
	"github.com/grailbio/kmareassign/matcher"
	"github.com/grailbio/kmareassign/packedseq"
	"github.com/grailbio/kmareassign/rewriter"
	"github.com/grailbio/kmareassign/scanner"
	"github.com/grailbio/kmareassign/stats"
)

// Opts are the tunables that belong to the reassignment core itself,
// following the Opts/DefaultOpts pattern the rest of this codebase uses
// for its own per-package knobs. CLI/argument parsing is out of scope
// here, so nothing in Opts is ever bound to a flag directly — the
// caller's own flag layer, if any, is responsible for populating an
// Opts value.
type Opts struct {
	// ThreadNum is the worker count stats.Update fans its chunked
	// reduction out across.
	ThreadNum int
	// ScratchTemplates is a capacity hint for the candidate scratch
	// slice. Core does not read it: scanner.Scan allocates its own
	// candidate slices on every call.
	ScratchTemplates int
}

// DefaultOpts is one worker (stats.Update degrades to a sequential
// reduction when ThreadNum==1, which is also how every
// non-parallelized caller of this core should run it) and a
// ScratchTemplates hint of 64, which Core does not read.
var DefaultOpts = Opts{
	ThreadNum:        1,
	ScratchTemplates: 64,
}

// Core holds the database handle and file accessor a reassignment
// decision needs. It is cheap to construct and explicitly torn down by
// Close.
type Core struct {
	db    *kmerindex.Index
	files Files
	opts  Opts
}

// NewCore constructs a Core bound to db and files. db is assumed
// read-only for the lifetime of the Core.
func NewCore(db *kmerindex.Index, files Files, opts Opts) *Core {
	return &Core{db: db, files: files, opts: opts}
}

// Close releases Core's resources. This simply drops Core's
// references; Files' own Close (if any) is the caller's responsibility,
// since Core never opened it.
func (c *Core) Close() {
	c.db = nil
	c.files = nil
}

// queryBases extracts the ungapped ASCII query sequence from consensus:
// the reassignment core scans the query the primary assembler actually
// produced, not the template-aligned frame with its '-' padding.
func queryBases(consensus *assembly.Consensus) []byte {
	out := make([]byte, 0, consensus.Len)
	for _, b := range consensus.Q[:consensus.Len] {
		if b != '-' {
			out = append(out, b)
		}
	}
	return out
}

// Reassign runs the full reassignment decision end to end. It returns
// the id of the template the consensus was reassigned to (0 if no
// reassignment occurred) and, on success, that template's name loaded
// from the names file (the nameLoad equivalent spec.md §6 calls for);
// consensus and matrix are mutated in place only once an exact match has
// been confirmed — a failed match leaves them unchanged.
func (c *Core) Reassign(ctx context.Context, consensus *assembly.Consensus, matrix *assembly.Matrix) (int32, string, error) {
	fwd := packedseq.Encode(queryBases(consensus))
	rc := fwd.ReverseComplement()

	candidates := scanner.Scan(c.db, &fwd, &rc)
	if len(candidates) == 0 {
		return 0, "", nil
	}
	heap := candidate.Build(candidates, c.db.TemplateLengths)

	for {
		id, ok := heap.Pop()
		if !ok {
			return 0, "", nil
		}
		norm := kmerindex.Norm(id)
		if int(norm) <= 0 || int(norm) >= len(c.db.TemplateLengths) {
			continue
		}
		tLen := int(c.db.TemplateLengths[norm])

		candSeq, err := c.files.LoadSeq(ctx, seqOffsetFor(c.db, norm), tLen)
		if err != nil {
			// An I/O short read or seek failure on *.seq.b means the
			// database file itself is corrupted; that is fatal, not
			// recoverable.
			log.Panicf("reassign: loading template %d sequence: %v", norm, err)
		}

		offset, rcMatched := c.matchOffset(id, &fwd, &rc, candSeq)
		if offset < 0 {
			continue
		}
		if rcMatched {
			// The winning match only exists against the reverse-
			// complement query, so the matrix and consensus this
			// offset was measured against must be flipped into that
			// same coordinate frame before Reanchor splices them onto
			// candSeq, which the database always stores forward-strand.
			rewriter.ReverseComplement(matrix, consensus)
		}

		if err := rewriter.Reanchor(matrix, consensus, offset, candSeq, tLen); err != nil {
			return 0, "", errors.Wrapf(err, "reassign: reanchoring onto template %d", norm)
		}
		threadNum := c.opts.ThreadNum
		if threadNum <= 0 {
			threadNum = 1
		}
		if err := stats.Update(consensus, matrix, candSeq, tLen, threadNum); err != nil {
			return 0, "", errors.Wrapf(err, "reassign: recomputing stats for template %d", norm)
		}

		name, err := c.files.LoadName(ctx, nameOffsetFor(c.db, norm))
		if err != nil {
			log.Panicf("reassign: loading template %d name: %v", norm, err)
		}
		return norm, name, nil
	}
}

// matchOffset applies the strand policy: prefix-anchored databases try
// forward then reverse regardless of the candidate's sign (both strands
// feed the same bucket, so the sign carries no strand information
// there, and the source never reverse-complements the matrix in this
// mode even when the reverse strand is the one that actually matched);
// sign-aware (non-prefix) databases use the candidate's sign to pick a
// single strand outright, and report rcMatched so Reassign knows to
// flip the matrix/consensus into that strand's coordinate frame before
// reanchoring.
func (c *Core) matchOffset(id int32, fwd, rc, candSeq *packedseq.Seq) (offset int, rcMatched bool) {
	if c.db.PrefixLen != 0 {
		return matcher.MatchBothStrands(fwd, rc, candSeq), false
	}
	if id < 0 {
		offset = matcher.Match(rc, candSeq)
		return offset, offset >= 0
	}
	return matcher.Match(fwd, candSeq), false
}
