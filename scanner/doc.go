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

// Package scanner walks a packed query sequence k-mer by k-mer,
// resolving each against a kmerindex.Index to build the initial
// per-template candidate score table. It implements the two index
// layouts the source supports:
//
//   - prefix-anchored: every candidate k-mer must begin with a fixed
//     prefix, checked with its own rolling prefix-mer before the real
//     k-mer (or its minimizer) is ever computed or looked up. Forward
//     and reverse-complement hits accumulate into one shared score
//     table and are reported as unsigned template ids.
//   - sign-encoded (no prefix): both strands are scanned independently,
//     each into its own score table, and reverse-strand survivors are
//     reported as negated ids so downstream candidate/matcher code can
//     recover which strand produced them via kmerindex.Norm.
//
// Both paths share the same "reps" run-length compression: consecutive
// k-mers that resolve to the identical *kmerindex.ValueVector (compared
// by pointer, exactly as the source compares its raw value-vector
// pointers) are folded into a single weighted score update instead of
// one per k-mer.
package scanner
