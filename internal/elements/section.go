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

	"github.com/nml-lang/nmlc/internal/refs"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
)

// Section is a block-kind container for a heading of depth [1..6], with
// flags controlling numbering/TOC participation.
type Section struct {
	base
	referenceable
	Depth    int
	Title    string
	NoNumber bool
	NoToc    bool
	refname  refs.Refname
	hasRef   bool
	inner    *scope.Scope
}

// NewSection constructs a Section heading.  If refname is the zero value
// (Internal("")), the section registers no reference.
func NewSection(loc source.Token, depth int, title string, noNumber, noToc bool, refname refs.Refname, hasRefname bool, child *scope.Scope) *Section {
	return &Section{
		base:          base{loc},
		referenceable: newReferenceable(),
		Depth:         depth,
		Title:         title,
		NoNumber:      noNumber,
		NoToc:         noToc,
		refname:       refname,
		hasRef:        hasRefname,
		inner:         child,
	}
}

// Kind implements scope.Element.
func (s *Section) Kind() scope.Kind { return scope.Block }

// ElementName implements scope.Element.
func (s *Section) ElementName() string { return "section" }

// Scopes implements scope.Container.
func (s *Section) Scopes() []*scope.Scope { return []*scope.Scope{s.inner} }

// Refname implements scope.Referenceable.
func (s *Section) Refname() refs.Refname { return s.refname }

// RefcountKey implements scope.Referenceable.
func (s *Section) RefcountKey() string { return "section" }

// FragmentSeed implements scope.Referenceable: sections with an explicit
// refname slugify that; otherwise they slugify their title.
func (s *Section) FragmentSeed() string {
	if s.hasRef {
		return s.refname.String()
	}

	return s.Title
}

// HasRefname reports whether this section declared an explicit refname.
func (s *Section) HasRefname() bool { return s.hasRef }

// Compile implements scope.Element.  The fragment id is assigned by a
// pre-compile pass over every Referenceable (resolve.Index.AssignFragments), so forward
// internal links see a final value regardless of document order; Compile
// only reads it back.
func (s *Section) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	var reports report.Reports

	tag := fmt.Sprintf("h%d", clampDepth(s.Depth))

	id, _ := s.Link()

	out.WriteString(fmt.Sprintf(`<%s id="%s">`, tag, id))
	out.WriteString(cc.Sanitize(s.Title))
	out.WriteString(fmt.Sprintf("</%s>", tag))

	for _, elem := range s.inner.Elements() {
		reports = reports.Append(elem.Compile(cc, out)...)
	}

	return reports
}

func clampDepth(d int) int {
	if d < 1 {
		return 1
	}

	if d > 6 {
		return 6
	}

	return d
}

// TableOfContents is a meta element rendering a nested `<ol>` of every
// Section recorded in the enclosing unit, honoring NoToc/NoNumber. The
// directive that constructs it (package langrules) doesn't yet know every
// Section in the document, so Sections is filled in later by package
// compile, which hoists this element's rendering to the front of the
// document regardless of where the directive appears in source order.
type TableOfContents struct {
	base
	Title    string
	Sections []*Section
	rendered bool
}

// NewTableOfContents constructs a TOC element; sections is typically nil at
// construction time and set later via the Sections field once the whole
// document's headings are known.
func NewTableOfContents(loc source.Token, title string, sections []*Section) *TableOfContents {
	return &TableOfContents{base: base{loc}, Title: title, Sections: sections}
}

// Kind implements scope.Element.
func (t *TableOfContents) Kind() scope.Kind { return scope.Special }

// ElementName implements scope.Element.
func (t *TableOfContents) ElementName() string { return "table_of_content" }

// Compile implements scope.Element. Renders a nested <ol> honoring each
// section's depth, skipping NoToc sections. A TOC only ever renders once:
// package compile calls this directly to hoist its output to the front of
// the document before the normal tree walk reaches this element's actual
// position, so the in-place call is a no-op.
func (t *TableOfContents) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	if t.rendered {
		return nil
	}

	t.rendered = true

	out.WriteString(`<div class="toc"><span>`)
	out.WriteString(cc.Sanitize(t.Title))
	out.WriteString(`</span>`)

	var (
		stack  []int // depths of currently open <ol> levels
		counts []int // sibling counters per open level
	)

	for _, sec := range t.Sections {
		if sec.NoToc {
			continue
		}

		for len(stack) > 0 && stack[len(stack)-1] >= sec.Depth {
			out.WriteString("</ol>")
			stack = stack[:len(stack)-1]
			counts = counts[:len(counts)-1]
		}

		if len(stack) == 0 || stack[len(stack)-1] < sec.Depth {
			out.WriteString("<ol>")
			stack = append(stack, sec.Depth)
			counts = append(counts, 0)
		}

		counts[len(counts)-1]++

		link, _ := sec.Link()

		value := ""
		if !sec.NoNumber {
			value = fmt.Sprintf(` value="%d"`, counts[len(counts)-1])
		}

		out.WriteString(fmt.Sprintf(`<li%s><a href="#%s">%s</a></li>`, value, link, cc.Sanitize(sec.Title)))
	}

	for range stack {
		out.WriteString("</ol>")
	}

	out.WriteString(`</div>`)

	return nil
}
