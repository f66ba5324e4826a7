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
	"fmt"

	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
)

// StyleKind names a style marker. Custom styles carry their marker text
// in Custom rather than adding new Kind values.
type StyleKind int

// Recognised style kinds.
const (
	StyleBold StyleKind = iota
	StyleItalic
	StyleUnderline
	StyleCustom
)

var styleTags = map[StyleKind][2]string{
	StyleBold:      {"<b>", "</b>"},
	StyleItalic:    {"<i>", "</i>"},
	StyleUnderline: {"<u>", "</u>"},
}

// Style is a paired enable/disable marker.  Each occurrence
// of a style marker in the source produces one Style element, toggling
// between open and close; the StyleState custom state (below) tracks which
// styles are currently open within a scope so an unterminated style at
// scope/document end can be reported.
type Style struct {
	base
	StyleKind  StyleKind
	CustomName string // set when StyleKind==StyleCustom
	Closing    bool
}

// NewStyle constructs a Style toggle element.
func NewStyle(loc source.Token, kind StyleKind, customName string, closing bool) *Style {
	return &Style{base{loc}, kind, customName, closing}
}

// Kind implements scope.Element.
func (s *Style) Kind() scope.Kind { return scope.Inline }

// ElementName implements scope.Element.
func (s *Style) ElementName() string { return "style" }

// tagName returns a built-in style's HTML tag name ("b", "i", "u", or
// "span"), or a custom style's own name. Compile does not call it.
func (s *Style) tagName() string {
	if s.StyleKind == StyleCustom {
		return s.CustomName
	}

	switch s.StyleKind {
	case StyleBold:
		return "b"
	case StyleItalic:
		return "i"
	case StyleUnderline:
		return "u"
	default:
		return "span"
	}
}

// Compile implements scope.Element.
func (s *Style) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	if s.StyleKind == StyleCustom {
		if s.Closing {
			out.WriteString("</span>")
		} else {
			out.WriteString(fmt.Sprintf("<span class=\"%s\">", cc.Sanitize(s.CustomName)))
		}

		return nil
	}

	tags, ok := styleTags[s.StyleKind]
	if !ok {
		return nil
	}

	if s.Closing {
		out.WriteString(tags[1])
	} else {
		out.WriteString(tags[0])
	}

	return nil
}

// styleKey identifies a style marker for the open-tracking map: built-in
// kinds key on themselves; custom styles key on their name.
type styleKey struct {
	kind StyleKind
	name string
}

// StyleState is the per-scope CustomState tracking which style markers are
// currently open, so teardown can report unterminated ones.
type StyleState struct {
	open map[styleKey]source.Token
}

// NewStyleState constructs an empty StyleState.
func NewStyleState() *StyleState {
	return &StyleState{open: map[styleKey]source.Token{}}
}

// IsOpen reports whether the given style is currently open in this scope.
func (s *StyleState) IsOpen(kind StyleKind, name string) bool {
	_, ok := s.open[styleKey{kind, name}]
	return ok
}

// Toggle records loc as the opening location of kind/name if not open, or
// clears it if it was open.  Returns whether this call represents a close.
func (s *StyleState) Toggle(kind StyleKind, name string, loc source.Token) bool {
	key := styleKey{kind, name}

	if _, ok := s.open[key]; ok {
		delete(s.open, key)
		return true
	}

	s.open[key] = loc

	return false
}

// EndOfScope implements scope.CustomState: any style still open when the
// scope ends is unterminated.
func (s *StyleState) EndOfScope(sc *scope.Scope) report.Reports {
	var reports report.Reports

	for key, loc := range s.open {
		name := key.name
		if name == "" {
			name = fmt.Sprintf("%d", key.kind)
		}

		reports = reports.Append(report.Newf(report.KindUnterminatedConstruct, loc,
			"unterminated style %q", name))
	}

	s.open = map[styleKey]source.Token{}

	return reports
}

// EndOfDocument implements scope.CustomState identically to EndOfScope.
func (s *StyleState) EndOfDocument(sc *scope.Scope) report.Reports { return s.EndOfScope(sc) }
