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

// Package packedseq implements the two-bit-per-base DNA encoding used by
// the template reassignment core: 32 bases per 64-bit word, high-order
// base first, with a side list of ambiguous-base ("N") positions.
//
// See base/simd/doc.go-style packages for the general design philosophy:
// keep the per-base hot path (GetKmer/GetNuc) allocation-free and
// table-driven, and leave safety checks to callers who already know
// their buffers are sized correctly. Encode and ReverseComplement
// allocate the Seq they return.
package packedseq
