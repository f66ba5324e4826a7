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

// Link is an external link element: `[display](url)`.
// The display run is a child scope so the bracketed text can itself carry
// inline styles.
type Link struct {
	base
	URL     string
	display *scope.Scope
}

// NewLink constructs an external Link wrapping display.
func NewLink(loc source.Token, url string, display *scope.Scope) *Link {
	return &Link{base{loc}, url, display}
}

// Kind implements scope.Element.
func (l *Link) Kind() scope.Kind { return scope.Inline }

// ElementName implements scope.Element.
func (l *Link) ElementName() string { return "link" }

// Scopes implements scope.Container.
func (l *Link) Scopes() []*scope.Scope { return []*scope.Scope{l.display} }

// Compile implements scope.Element.
func (l *Link) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	var reports report.Reports

	out.WriteString(fmt.Sprintf(`<a href="%s">`, cc.Sanitize(l.URL)))

	for _, elem := range l.display.Elements() {
		reports = reports.Append(elem.Compile(cc, out)...)
	}

	out.WriteString("</a>")

	return reports
}

// InternalLink is the Linkable element for `&{refname}`. It carries its own display child scope, defaulting to the raw
// refname text if the author supplied no explicit display run. Until bound
// by the resolver it renders as literal display text.
type InternalLink struct {
	base
	linkable
	DisplayStyle DisplayStyle
	display      *scope.Scope
}

// DisplayStyle controls how a resolved InternalLink renders its display
// text when the author didn't supply an explicit display run.
type DisplayStyle int

// Recognised display styles.
const (
	// DisplayRaw shows the bare refname.
	DisplayRaw DisplayStyle = iota
	// DisplayTitle shows the bound target's refname identifier; the
	// target's heading title is not available to the link and is not shown.
	DisplayTitle
	// DisplayNumbered shows the target's refcount-assigned number.
	DisplayNumbered
)

// NewInternalLink constructs an InternalLink wanting want, with an optional
// explicit display child scope (nil uses the refname as display text).
func NewInternalLink(loc source.Token, want refs.Refname, style DisplayStyle, display *scope.Scope) *InternalLink {
	return &InternalLink{base: base{loc}, linkable: newLinkable(want), DisplayStyle: style, display: display}
}

// Kind implements scope.Element.
func (l *InternalLink) Kind() scope.Kind { return scope.Inline }

// ElementName implements scope.Element.
func (l *InternalLink) ElementName() string { return "internal_link" }

// Scopes implements scope.Container; an InternalLink with no explicit
// display run has no child scopes.
func (l *InternalLink) Scopes() []*scope.Scope {
	if l.display == nil {
		return nil
	}

	return []*scope.Scope{l.display}
}

// Compile implements scope.Element.  An unresolved link degrades
// gracefully to its literal refname, with a best-effort "#" href, rather
// than aborting compilation.
func (l *InternalLink) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	if l.display != nil {
		ref, bound := l.Bound()

		href := "#"
		if bound {
			href = "#" + ref.Link
		}

		var reports report.Reports

		out.WriteString(fmt.Sprintf(`<a href="%s">`, cc.Sanitize(href)))

		for _, elem := range l.display.Elements() {
			reports = reports.Append(elem.Compile(cc, out)...)
		}

		out.WriteString("</a>")

		return reports
	}

	ref, bound := l.Bound()
	if !bound {
		out.WriteString(fmt.Sprintf(`<a href="#">%s</a>`, cc.Sanitize(l.wants.String())))
		return nil
	}

	out.WriteString(fmt.Sprintf(`<a href="#%s">%s</a>`, cc.Sanitize(ref.Link), cc.Sanitize(l.displayFor(ref))))

	return nil
}

// displayFor computes the fallback display text for a resolved reference
// per l.DisplayStyle when no explicit display run was authored.
func (l *InternalLink) displayFor(ref refs.Reference) string {
	switch l.DisplayStyle {
	case DisplayNumbered:
		return fmt.Sprintf("%d", ref.Token.Start)
	case DisplayTitle:
		return ref.Refname.ID()
	default:
		return l.wants.String()
	}
}

// Anchor is a Referenceable element for `:anchor NAME:`:
// an invisible marker that registers a target under an internal refname but
// renders nothing itself.
type Anchor struct {
	base
	referenceable
	refname refs.Refname
	Name    string
}

// NewAnchor constructs an Anchor registering under refname.
func NewAnchor(loc source.Token, refname refs.Refname, name string) *Anchor {
	return &Anchor{base: base{loc}, referenceable: newReferenceable(), refname: refname, Name: name}
}

// Kind implements scope.Element.
func (a *Anchor) Kind() scope.Kind { return scope.Invisible }

// ElementName implements scope.Element.
func (a *Anchor) ElementName() string { return "anchor" }

// Refname implements scope.Referenceable.
func (a *Anchor) Refname() refs.Refname { return a.refname }

// RefcountKey implements scope.Referenceable.
func (a *Anchor) RefcountKey() string { return "anchor" }

// FragmentSeed implements scope.Referenceable.
func (a *Anchor) FragmentSeed() string { return a.Name }

// Compile implements scope.Element: emits an anchor span at the fragment id
// a pre-compile pass already assigned (resolve.Index.AssignFragments).
func (a *Anchor) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	id, _ := a.Link()
	out.WriteString(fmt.Sprintf(`<span id="%s"></span>`, id))

	return nil
}
