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

// Package reassign orchestrates the whole reassignment decision: given a
// consensus already anchored to one template, it walks the k-mer
// scanner, candidate heap, exact matcher, matrix rewriter and extended
// stats components to decide whether a longer template matches exactly
// and, if so, re-anchors the assembly onto it.
package reassign
