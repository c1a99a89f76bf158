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

// Package matcher finds where a candidate template's packed sequence
// exactly matches into the consensus built so far, respecting ambiguous
// ("N") breakpoints on both sides. Match returns the offset to reanchor
// the candidate onto (rewriter.Reanchor's input), or -1 if no exact
// placement exists.
//
// MatchBothStrands corrects a short-circuit bug in the source's
// reassign_matchseqs_rc: literally ported, `if(reassign_matchseqs(...))`
// is truthy both for "no match" (-1) and for "match at a nonzero
// offset", so only a match at offset 0 skips the reverse-strand lookup —
// any other genuine forward match gets silently discarded in favor of
// whatever the reverse strand returns. MatchBothStrands instead falls
// back to the reverse strand only when the forward strand explicitly
// reports no match.
package matcher
