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

// Package lspdata holds the per-source side-data produced eagerly during
// parsing that a language-server mode surfaces: semantic tokens, inlay
// hints, hovers, go-to-definition edges, conceals, and embedded
// code-ranges. Semantic token coordinates are converted from byte spans to
// (line, UTF-16 character) pairs at record time, via a LineCursor walked
// once over the owning source's content, so the transport layer (package
// lspserver) never re-derives them itself. Other buckets still carry raw
// source.Span values: their targets may live in another unit's source
// (Definition) or are looked up by byte offset rather than delta-encoded
// (Hover, Conceal, CodeRange, InlayHint), so there is no single content
// buffer record time could convert against.
package lspdata

import (
	"sort"

	"github.com/nml-lang/nmlc/internal/source"
)

// Position is a zero-indexed (line, character) pair, with character
// measured in UTF-16 code units (source.EncodingUTF16).
type Position struct {
	Line      int
	Character int
}

// TokenKind names a semantic token class, loosely mirroring the LSP
// standard token types (keyword, string, comment, …).
type TokenKind string

// Recognised semantic token kinds.
const (
	TokenKeyword  TokenKind = "keyword"
	TokenString   TokenKind = "string"
	TokenComment  TokenKind = "comment"
	TokenFunction TokenKind = "function"
	TokenVariable TokenKind = "variable"
	TokenOperator TokenKind = "operator"
)

// SemanticToken is one recorded span with its classification and its
// (line, character) start/end, computed once at AddSemanticToken time.
type SemanticToken struct {
	Span  source.Span
	Start Position
	End   Position
	Kind  TokenKind
}

// InlayHint annotates a position with auxiliary display text (e.g. a
// resolved reference's target path).
type InlayHint struct {
	Offset int
	Label  string
}

// Hover maps a span to hover text shown when a client's cursor rests
// there.
type Hover struct {
	Span source.Span
	Text string
}

// Definition records a go-to-definition edge from a span in this source to
// a location (possibly in another source, identified by name).
type Definition struct {
	From       source.Span
	TargetName string
	TargetSpan source.Span
}

// Conceal replaces a span's displayed text with a shorter form while
// editing (e.g. collapsing `&{ref}` to its resolved display text).
type Conceal struct {
	Span        source.Span
	Replacement string
}

// CodeRange marks a span as containing another embedded language, so
// clients can apply that language's own highlighting/formatting.
type CodeRange struct {
	Span     source.Span
	Language string
}

// SourceData is the side-data bag for a single source file.  Buckets are
// initialized empty by NewSourceData ("on_new_source") and appended to
// eagerly by rules/elements during parsing; FlushDeferred
// ("on_source_end") runs any deferred semantic work (e.g. sorting tokens
// for delta-encoding).
type SourceData struct {
	Name           string
	SemanticTokens []SemanticToken
	InlayHints     []InlayHint
	Hovers         []Hover
	Definitions    []Definition
	Conceals       []Conceal
	CodeRanges     []CodeRange

	content []rune
}

// NewSourceData allocates an empty side-data bag for the named source.
// content is the source's full text, kept only to convert semantic token
// spans to (line, character) positions as they're recorded.
func NewSourceData(name string, content []rune) *SourceData {
	return &SourceData{Name: name, content: content}
}

// AddSemanticToken records a classified span, converting its start and end
// to (line, UTF-16 character) positions by walking a LineCursor from the
// start of the source. Call sites run roughly in source order during
// parsing, but nothing requires it: each call walks its own fresh cursor.
func (d *SourceData) AddSemanticToken(span source.Span, kind TokenKind) {
	lc := source.NewLineCursor(d.content, source.EncodingUTF16)

	lc.MoveTo(span.Start())
	start := Position{Line: lc.Line(), Character: lc.LinePos()}

	lc.MoveTo(span.End())
	end := Position{Line: lc.Line(), Character: lc.LinePos()}

	d.SemanticTokens = append(d.SemanticTokens, SemanticToken{Span: span, Start: start, End: end, Kind: kind})
}

// AddInlayHint records an inlay hint at offset.
func (d *SourceData) AddInlayHint(offset int, label string) {
	d.InlayHints = append(d.InlayHints, InlayHint{offset, label})
}

// AddHover records hover text for span.
func (d *SourceData) AddHover(span source.Span, text string) {
	d.Hovers = append(d.Hovers, Hover{span, text})
}

// AddDefinition records a go-to-definition edge.
func (d *SourceData) AddDefinition(from source.Span, targetName string, targetSpan source.Span) {
	d.Definitions = append(d.Definitions, Definition{from, targetName, targetSpan})
}

// AddConceal records a conceal replacement for span.
func (d *SourceData) AddConceal(span source.Span, replacement string) {
	d.Conceals = append(d.Conceals, Conceal{span, replacement})
}

// AddCodeRange records an embedded-language range.
func (d *SourceData) AddCodeRange(span source.Span, language string) {
	d.CodeRanges = append(d.CodeRanges, CodeRange{span, language})
}

// FlushDeferred performs end-of-source bookkeeping: semantic tokens must
// be sorted by start offset before delta-encoding for the LSP wire format.
func (d *SourceData) FlushDeferred() {
	sort.Slice(d.SemanticTokens, func(i, j int) bool {
		return d.SemanticTokens[i].Span.Start() < d.SemanticTokens[j].Span.Start()
	})
}

// HoverAt returns the most specific (shortest) hover whose span contains
// offset, if any.
func (d *SourceData) HoverAt(offset int) (Hover, bool) {
	var (
		best    Hover
		bestLen = -1
	)

	for _, h := range d.Hovers {
		if h.Span.Contains(offset) && (bestLen == -1 || h.Span.Length() < bestLen) {
			best, bestLen = h, h.Span.Length()
		}
	}

	return best, bestLen != -1
}

// DefinitionAt returns the go-to-definition edge whose From span contains
// offset, if any.
func (d *SourceData) DefinitionAt(offset int) (Definition, bool) {
	for _, def := range d.Definitions {
		if def.From.Contains(offset) {
			return def, true
		}
	}

	return Definition{}, false
}
