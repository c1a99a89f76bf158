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

// Package kmerindex models the read-only, (optionally memory-mapped)
// compressed k-mer index that maps a k-mer (or minimizer) to the set of
// template ids whose signature contains it, plus the per-template
// metadata (reference length, and on-disk byte offsets into the
// sequence/name files) needed to re-load a candidate template.
//
// The on-disk chained/quotient-filter hashing scheme used by the actual
// *.comp.b format is a large subsystem of its own and is not part of the
// retrieval pack this core was built from; kmerindex models only the
// external contract the reassignment core depends on: Lookup by k-mer,
// and the three parallel per-template metadata arrays. See DESIGN.md
// for the rationale.
package kmerindex
