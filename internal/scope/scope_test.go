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

package scope_test

import (
	"testing"

	// Imported for its init() side effect registering
	// scope.ParagraphFactory; AddContent panics without it.
	_ "github.com/nml-lang/nmlc/internal/elements"

	"github.com/nml-lang/nmlc/internal/elements"
	"github.com/nml-lang/nmlc/internal/refs"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
)

func tok(src source.Source, start, end int) source.Token {
	return source.NewToken(src, source.NewSpan(start, end))
}

func TestAddContentGroupsInlineIntoOneParagraph(t *testing.T) {
	src := source.NewFileFromBytes("a.nml", []byte("ab"))
	s := scope.NewScope(src)

	s.AddContent(elements.NewText(tok(src, 0, 1), "a"))
	s.AddContent(elements.NewText(tok(src, 1, 2), "b"))

	if len(s.Elements()) != 1 {
		t.Fatalf("expected both inline elements folded into one paragraph, got %d top-level elements", len(s.Elements()))
	}

	para, ok := s.Elements()[0].(scope.Paragraph)
	if !ok {
		t.Fatalf("expected the single element to be a Paragraph, got %T", s.Elements()[0])
	}

	if len(para.InnerScope().Elements()) != 2 {
		t.Fatalf("expected 2 elements inside the paragraph, got %d", len(para.InnerScope().Elements()))
	}
}

func TestAddContentBlockClosesParagraph(t *testing.T) {
	src := source.NewFileFromBytes("a.nml", []byte("a\n"))
	s := scope.NewScope(src)

	s.AddContent(elements.NewText(tok(src, 0, 1), "a"))
	s.AddContent(elements.NewLineBreak(tok(src, 1, 2)))
	s.AddContent(elements.NewText(tok(src, 2, 3), "b"))

	if len(s.Elements()) != 3 {
		t.Fatalf("expected paragraph, linebreak, new paragraph as 3 top-level elements, got %d", len(s.Elements()))
	}

	if _, ok := s.Elements()[0].(scope.Paragraph); !ok {
		t.Fatalf("expected first element to be a Paragraph, got %T", s.Elements()[0])
	}

	if _, ok := s.Elements()[2].(scope.Paragraph); !ok {
		t.Fatalf("expected a fresh Paragraph after the break, got %T", s.Elements()[2])
	}
}

func TestGetVariableWalksParents(t *testing.T) {
	src := source.NewFileFromBytes("a.nml", []byte(""))
	parent := scope.NewScope(src)
	child := parent.Nested()

	v := scope.NewTextVariable("x", refs.VisibilityInternal, refs.Immutable,
		tok(src, 0, 1), tok(src, 0, 1), "V", func(loc source.Token, text string) scope.Element {
			return elements.NewText(loc, text)
		})

	if !parent.DefineVariable(v) {
		t.Fatalf("expected DefineVariable to succeed on a fresh scope")
	}

	got, definedIn, ok := child.GetVariable("x")
	if !ok {
		t.Fatalf("expected child scope to see parent's variable")
	}

	if definedIn != parent || got != v {
		t.Fatalf("expected variable and defining scope to be parent's")
	}

	if _, _, ok := child.GetVariable("missing"); ok {
		t.Fatalf("expected lookup of undefined variable to fail")
	}
}

func TestDefineVariableRespectsImmutability(t *testing.T) {
	src := source.NewFileFromBytes("a.nml", []byte(""))
	s := scope.NewScope(src)

	v1 := scope.NewTextVariable("x", refs.VisibilityInternal, refs.Immutable,
		tok(src, 0, 1), tok(src, 0, 1), "V1", func(loc source.Token, text string) scope.Element {
			return elements.NewText(loc, text)
		})
	v2 := scope.NewTextVariable("x", refs.VisibilityInternal, refs.Immutable,
		tok(src, 1, 2), tok(src, 1, 2), "V2", func(loc source.Token, text string) scope.Element {
			return elements.NewText(loc, text)
		})

	if !s.DefineVariable(v1) {
		t.Fatalf("expected first definition to succeed")
	}

	if s.DefineVariable(v2) {
		t.Fatalf("expected redefining an Immutable variable to fail")
	}

	got, _, _ := s.GetVariable("x")
	if got != v1 {
		t.Fatalf("expected the original immutable variable to remain bound")
	}
}

func TestContentIterRecurseVisitsEveryElementOnce(t *testing.T) {
	src := source.NewFileFromBytes("a.nml", []byte("a\n# A\nb"))
	root := scope.NewScope(src)
	root.AddContent(elements.NewText(tok(src, 0, 1), "a"))

	child := root.Nested()
	child.AddContent(elements.NewText(tok(src, 6, 7), "b"))
	section := elements.NewSection(tok(src, 1, 6), 1, "A", false, false, refs.Refname{}, false, child)
	root.AddContent(section)

	count := 0
	for range root.ContentIter(true) {
		count++
	}

	// paragraph(a), section, paragraph(b inside section), text(a), text(b)
	if count != 5 {
		t.Fatalf("expected 5 (scope,element) pairs visiting every node once, got %d", count)
	}
}
