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

// Package scope holds the element tree: ordered elements nested in
// scopes, each scope carrying its own variables and custom per-rule state.
package scope

import (
	"github.com/nml-lang/nmlc/internal/refs"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/source"
)

// Kind classifies an Element for paragraph-framing and LSP purposes.
type Kind int

// Recognised element kinds.
const (
	Invisible Kind = iota
	Special
	Inline
	Block
	Compound
)

// CompileContext is the minimal view of the compiler an Element needs to
// render itself: target-specific sanitization and the ability to defer
// expensive work to an async task.  Concrete implementation lives in
// package compile; this interface exists purely to let elements depend on
// scope (not compile), breaking the natural cycle between "elements render
// via the compiler" and "the compiler walks elements".
type CompileContext interface {
	// Sanitize escapes s for the compile target's textual output.
	Sanitize(s string) string
	// SanitizeFormat escapes s like Sanitize but passes through content
	// inside matched '{...}' pairs (format placeholders).
	SanitizeFormat(s string) string
	// UniqueFragment derives a collision-free HTML id from a human name.
	UniqueFragment(name string) string
}

// Output is the buffer an Element's Compile method writes into, plus the
// ability to register an async task whose result will be spliced back in
// at the current position once resolved.
type Output interface {
	// WriteString appends s to the output buffer.
	WriteString(s string)
	// Len returns the current length of the output buffer.
	Len() int
	// AddTask registers fn to run asynchronously; its result is spliced
	// into the buffer at the offset Len() had when AddTask was called.
	AddTask(fn func() (string, report.Reports))
}

// Element is the common interface of every node in the document tree.
type Element interface {
	// Location returns the token where this element was recorded.
	Location() source.Token
	// Kind classifies this element for paragraph framing and LSP tokens.
	Kind() Kind
	// ElementName returns the element's rule-facing name (e.g. "section").
	ElementName() string
	// Compile renders this element into out under cc, recursing into any
	// child scopes it owns.
	Compile(cc CompileContext, out Output) report.Reports
}

// Container is implemented by elements exposing child scopes (Section,
// List, Block, Import, ScopeElement, …).
type Container interface {
	Element
	// Scopes returns this element's child scopes, in document order.
	Scopes() []*Scope
}

// Paragraph is implemented by the Paragraph container element (package
// elements).  Declared here, rather than imported from package elements,
// so Scope.AddContent can recognise and extend the trailing paragraph
// without this package depending on elements (which itself depends on
// scope) — see ParagraphFactory below for the matching construction side
// of this trick.
type Paragraph interface {
	Container
	// InnerScope returns the scope holding this paragraph's inline run.
	InnerScope() *Scope
}

// ParagraphFactory constructs a new, empty Paragraph element located at
// loc, wrapping child. Set once by package elements' init() so this
// package can materialize paragraphs without importing the concrete type.
var ParagraphFactory func(loc source.Token, child *Scope) Paragraph

// Referenceable is implemented by elements that can be the target of a
// cross-reference: anchors, sections, figures, ...
type Referenceable interface {
	Element
	// Refname returns the name this element registers under.
	Refname() refs.Refname
	// RefcountKey names the category used for numbering/grouping (e.g.
	// "section", "anchor").
	RefcountKey() string
	// FragmentID returns this element's stable identity for fragment
	// uniquification (distinct instances never collide).
	FragmentID() uint64
	// FragmentSeed returns the human-readable name UniqueFragment should
	// slugify to produce this element's fragment (a section's title or
	// refname, an anchor's declared name).
	FragmentSeed() string
	// Link returns the resolved in-unit fragment string, set exactly once
	// by a pre-compile fragment-assignment pass run over every
	// Referenceable in the unit (so forward references see a final value
	// regardless of document order).
	Link() (string, bool)
	// SetLink sets the in-unit fragment string.  Panics if already set.
	SetLink(fragment string)
}

// Linkable is implemented by elements that originate a cross-reference:
// internal links.
type Linkable interface {
	Element
	// WantsRefname returns the refname this element wishes to link to.
	WantsRefname() refs.Refname
	// WantsLink reports whether this element still needs binding.
	WantsLink() bool
	// Bind sets the resolved reference.  May only be called once.
	Bind(ref refs.Reference)
	// Bound returns the bound reference, if any.
	Bound() (refs.Reference, bool)
}

// CustomState is per-scope state attached by a rule (e.g. open-style
// tracking, list nesting).  EndOfScope is invoked once the scope's content
// is exhausted; EndOfDocument once at the outermost level after every
// scope has closed.
type CustomState interface {
	// EndOfScope flushes any pending state for a single scope, returning
	// reports for anything left unterminated (e.g. an unclosed style).
	EndOfScope(sc *Scope) report.Reports
	// EndOfDocument flushes state at the top of the document.
	EndOfDocument(sc *Scope) report.Reports
}

// Scope is an ordered sequence of elements, with local variables and
// attached custom state, optionally shadowing a parent scope.
type Scope struct {
	parent    *Scope
	source    source.Source
	elements  []Element
	variables map[string]*Variable
	states    map[string]CustomState
	inline    bool
}

// NewScope constructs a root scope over src.
func NewScope(src source.Source) *Scope {
	return &Scope{source: src, variables: map[string]*Variable{}, states: map[string]CustomState{}}
}

// Shadow constructs a child scope importing a new source (e.g. @import),
// whose parent-lookup chain still reaches the outer scope's variables.
func (s *Scope) Shadow(src source.Source) *Scope {
	return &Scope{parent: s, source: src, variables: map[string]*Variable{}, states: map[string]CustomState{}}
}

// Nested constructs a plain child scope sharing this scope's source
// (section bodies, block bodies, script sub-documents).
func (s *Scope) Nested() *Scope {
	return &Scope{parent: s, source: s.source, variables: map[string]*Variable{}, states: map[string]CustomState{}}
}

// NestedInline constructs a child scope for a bare inline run (a link's
// display text, a list item's text): elements are appended directly, with
// no paragraph framing.
func (s *Scope) NestedInline() *Scope {
	sc := s.Nested()
	sc.inline = true

	return sc
}

// Parent returns the enclosing scope, or nil at the root.
func (s *Scope) Parent() *Scope { return s.parent }

// Source returns the source this scope parses content from.
func (s *Scope) Source() source.Source { return s.source }

// Elements returns this scope's elements in document order.  Callers must
// not mutate the returned slice.
func (s *Scope) Elements() []Element { return s.elements }

// AddContent appends elem to this scope.  If the scope currently holds an
// open paragraph (its trailing element) and elem's kind is Inline, elem
// joins that paragraph's inner scope instead; otherwise any open
// paragraph is implicitly closed, since it is no longer the trailing
// element.  Inline scopes (NestedInline) skip paragraph framing entirely.
func (s *Scope) AddContent(elem Element) {
	if elem.Kind() == Inline && !s.inline {
		if para, ok := s.CurrentParagraph(); ok {
			para.InnerScope().AddContent(elem)
			return
		}

		if ParagraphFactory == nil {
			panic("scope: ParagraphFactory not registered (import package elements)")
		}

		para := ParagraphFactory(elem.Location(), s.NestedInline())
		para.InnerScope().AddContent(elem)
		s.elements = append(s.elements, para)

		return
	}

	s.elements = append(s.elements, elem)
}

// CurrentParagraph returns the trailing paragraph element, if the scope's
// last element is an open (still-extendable) Paragraph.
func (s *Scope) CurrentParagraph() (Paragraph, bool) {
	if len(s.elements) == 0 {
		return nil, false
	}

	para, ok := s.elements[len(s.elements)-1].(Paragraph)

	return para, ok
}

// DefineVariable attaches v to this scope under its name.  Returns false
// (and leaves the scope unchanged) if a variable of that name already
// exists and is Immutable.
func (s *Scope) DefineVariable(v *Variable) bool {
	if existing, ok := s.variables[v.Name]; ok && existing.Mutability == refs.Immutable {
		return false
	}

	s.variables[v.Name] = v

	return true
}

// GetVariable looks up name locally, then walks parent scopes, returning
// the variable and the scope that defines it.
func (s *Scope) GetVariable(name string) (*Variable, *Scope, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.variables[name]; ok {
			return v, sc, true
		}
	}

	return nil, nil, false
}

// LocalVariables returns the variables defined directly in this scope
// (not inherited), for import-export propagation.
func (s *Scope) LocalVariables() map[string]*Variable { return s.variables }

// SetState attaches custom state under name, replacing any previous value.
func (s *Scope) SetState(name string, st CustomState) { s.states[name] = st }

// GetState retrieves custom state attached under name.
func (s *Scope) GetState(name string) (CustomState, bool) {
	st, ok := s.states[name]
	return st, ok
}

// States returns all custom state attached to this scope, for teardown.
func (s *Scope) States() map[string]CustomState { return s.states }

// EndOfScope runs every attached custom state's EndOfScope callback,
// collecting their reports.
func (s *Scope) EndOfScope() report.Reports {
	var reports report.Reports
	for _, st := range s.states {
		reports = reports.Append(st.EndOfScope(s)...)
	}

	return reports
}

// EndOfDocument runs every attached custom state's EndOfDocument callback.
func (s *Scope) EndOfDocument() report.Reports {
	var reports report.Reports
	for _, st := range s.states {
		reports = reports.Append(st.EndOfDocument(s)...)
	}

	return reports
}

// ContentPair is a (scope, element) pair yielded by ContentIter.
type ContentPair struct {
	Scope   *Scope
	Element Element
}

// ContentIter lazily iterates this scope's elements.  With recurse=false,
// it yields only this scope's direct elements in order.  With
// recurse=true, it performs a depth-first walk descending into every
// Container element's child scopes, in document order, so that every
// element in the tree is visited exactly once.
func (s *Scope) ContentIter(recurse bool) func(yield func(ContentPair) bool) {
	return func(yield func(ContentPair) bool) {
		s.walk(recurse, yield)
	}
}

func (s *Scope) walk(recurse bool, yield func(ContentPair) bool) bool {
	for _, elem := range s.elements {
		if !yield(ContentPair{s, elem}) {
			return false
		}

		if recurse {
			if container, ok := elem.(Container); ok {
				for _, child := range container.Scopes() {
					if !child.walk(recurse, yield) {
						return false
					}
				}
			}
		}
	}

	return true
}
