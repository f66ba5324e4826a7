// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package source models addressable text: files, in-memory buffers and
// sources derived from a transformation of another source (variable
// expansion, script output, imports).
package source

import "fmt"

// Span represents a contiguous, half-open byte range within some source's
// content.  Kept as physical indices (rather than a string slice) so that
// enclosing-line lookups and original-range resolution stay cheap.
type Span struct {
	start int
	end   int
}

// NewSpan constructs a new span, panicking if the invariant start<=end is
// violated.
func NewSpan(start, end int) Span {
	if start > end {
		panic("invalid span: start > end")
	}

	return Span{start, end}
}

// Start returns the first byte offset covered by this span.
func (s Span) Start() int { return s.start }

// End returns one past the last byte offset covered by this span.
func (s Span) End() int { return s.end }

// Length returns the number of bytes covered by this span.
func (s Span) Length() int { return s.end - s.start }

// Empty returns true when this span covers no bytes.
func (s Span) Empty() bool { return s.start == s.end }

// Contains checks whether offset lies within [start,end).
func (s Span) Contains(offset int) bool { return offset >= s.start && offset < s.end }

// Union returns the smallest span enclosing both s and o.
func (s Span) Union(o Span) Span {
	start, end := s.start, s.end
	if o.start < start {
		start = o.start
	}

	if o.end > end {
		end = o.end
	}

	return Span{start, end}
}

// String renders the span as "start:end" for diagnostics.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.start, s.end)
}

// Token is a span anchored to a specific Source, so it can be resolved back
// into an original range even when that source is itself derived.
type Token struct {
	src  Source
	span Span
}

// NewToken constructs a token for the given source and span.
func NewToken(src Source, span Span) Token {
	return Token{src, span}
}

// Source returns the source this token was recorded against.
func (t Token) Source() Source { return t.src }

// Span returns the byte span of this token within its source.
func (t Token) Span() Span { return t.span }

// OriginalRange resolves this token into a range within the nearest
// ancestor file source, walking derived sources' parent tokens.  Used by
// diagnostics and LSP so an error inside an expanded variable still points
// at the authored text.
//
// Each hop in the derivation chain carries the parent token covering the
// entire derived source (its Location()).  A derived source is typically
// small (an expanded variable, a script's injected content), so the
// reported range is the parent token in full rather than a proportionally
// remapped sub-span; this is precise enough to locate the offending
// construct in the authoring file.
func (t Token) OriginalRange() Token {
	cur := t

	for {
		parent, ok := cur.src.Location()
		if !ok {
			return cur
		}

		cur = parent
	}
}
