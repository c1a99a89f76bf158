// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package biosimd provides ASCII nucleotide byte-classification helpers.
//
// The original package backed a much wider surface (2-bit/4-bit packing,
// nibble-lookup cleanup of non-ACGT bases, FASTQ/BAM quality handling,
// all with amd64 SSE-assembly fast paths alongside pure-Go fallbacks).
// packedseq.Encode only ever called into one corner of that: the
// upfront "does this byte slice contain anything other than capital
// A/C/G/T" check it uses to skip its own per-base ambiguous-position
// bookkeeping when a sequence is clean. Everything else — the packing
// routines, the other table-driven cleanups, and the amd64 assembly
// kernels behind them (which require a matching .s file this package
// does not carry) — has no caller in this module and is not carried
// here dead; IsNonACGTPresent is reimplemented here as pure Go, matching
// the original's generic (non-amd64) fallback.
package biosimd
