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

// Package candidate orders the template ids scanner.Scan surfaces by
// reference length, so the reassignment core tries the longest (and so
// generally most informative) candidate templates first. It is a plain
// binary max-heap keyed by each candidate's (sign-stripped) template
// length, popped one at a time until matcher.Match succeeds.
package candidate
