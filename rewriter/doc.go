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

// Package rewriter reanchors an assembly.Matrix (and the
// assembly.Consensus streams built on top of it) from whatever template
// frame produced the current consensus onto a new, longer candidate
// template, splicing insertion columns in and out of the matrix's
// intrusive free list as needed. This is the most structurally delicate
// part of the reassignment core: it walks two linked structures (the
// byte-stream consensus and the index-chained matrix) in lock-step while
// rewriting both.
//
// Reanchor differs from the source's reassign_matrix_offset in one
// respect: the source's main splice loop (`while(aln_len != t_len)`) has
// no iteration bound, so a corrupted matrix (a Next cycle that never
// reaches t_len columns) spins forever. Reanchor carries an explicit
// iteration guard and returns an error instead.
package rewriter
