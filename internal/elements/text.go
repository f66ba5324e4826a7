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

package elements

import (
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
)

// Text is sanitized literal content; the Text rule never matches on its
// own, it is the fallback used to emit the gap between two real matches.
type Text struct {
	base
	Content string
}

// NewText constructs a Text element over loc with the given raw content.
func NewText(loc source.Token, content string) *Text {
	return &Text{base{loc}, content}
}

// Kind implements scope.Element.
func (t *Text) Kind() scope.Kind { return scope.Inline }

// ElementName implements scope.Element.
func (t *Text) ElementName() string { return "text" }

// Compile implements scope.Element.
func (t *Text) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	out.WriteString(cc.Sanitize(t.Content))
	return nil
}

// Comment is an Invisible element; it contributes nothing to compiled
// output but is retained in the tree so LSP folding/hover can see it.
type Comment struct {
	base
	Content string
}

// NewComment constructs a Comment element.
func NewComment(loc source.Token, content string) *Comment {
	return &Comment{base{loc}, content}
}

// Kind implements scope.Element.
func (c *Comment) Kind() scope.Kind { return scope.Invisible }

// ElementName implements scope.Element.
func (c *Comment) ElementName() string { return "comment" }

// Compile implements scope.Element; comments never emit output.
func (c *Comment) Compile(scope.CompileContext, scope.Output) report.Reports { return nil }

// LineBreak is an Invisible element that terminates the current paragraph.
type LineBreak struct {
	base
}

// NewLineBreak constructs a LineBreak element.
func NewLineBreak(loc source.Token) *LineBreak { return &LineBreak{base{loc}} }

// Kind implements scope.Element.  LineBreak reports Invisible for
// paragraph-joining purposes (it never joins a paragraph as Inline
// content would), so Scope.AddContent ends the paragraph before it.
func (b *LineBreak) Kind() scope.Kind { return scope.Invisible }

// ElementName implements scope.Element.
func (b *LineBreak) ElementName() string { return "linebreak" }

// Compile implements scope.Element: emits a hard break.  Because
// LineBreak is Invisible, Scope.AddContent never extends a trailing
// paragraph across it, so the next Inline element starts a fresh
// paragraph — this is how a break "terminates paragraphs".
func (b *LineBreak) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	out.WriteString("<br/>")
	return nil
}

// EOF is a sentinel Invisible element appended at the end of every scope,
// used by LSP to anchor end-of-document hover/completion requests.
type EOF struct {
	base
}

// NewEOF constructs an EOF sentinel at loc.
func NewEOF(loc source.Token) *EOF { return &EOF{base{loc}} }

// Kind implements scope.Element.
func (e *EOF) Kind() scope.Kind { return scope.Invisible }

// ElementName implements scope.Element.
func (e *EOF) ElementName() string { return "eof" }

// Compile implements scope.Element; EOF never emits output.
func (e *EOF) Compile(scope.CompileContext, scope.Output) report.Reports { return nil }
