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

// Import is a container element whose children are the scope produced by
// parsing an imported source. Exported
// variables of the child scope are merged into the importing scope at the
// import point by the rule that constructs this element (package
// langrules); Import itself only owns the already-merged child scope.
//
// Import semantics are parse-only: Compile just walks the child scope
// that was fully resolved at
// parse time. Non-exported variables of the imported unit were already
// dropped when the importing rule built this element.
type Import struct {
	base
	Path  string
	child *scope.Scope
}

// NewImport constructs an Import wrapping the imported source's scope.
func NewImport(loc source.Token, path string, child *scope.Scope) *Import {
	return &Import{base{loc}, path, child}
}

// Kind implements scope.Element.
func (i *Import) Kind() scope.Kind { return scope.Compound }

// ElementName implements scope.Element.
func (i *Import) ElementName() string { return "import" }

// Scopes implements scope.Container.
func (i *Import) Scopes() []*scope.Scope { return []*scope.Scope{i.child} }

// Compile implements scope.Element: walks the already-merged child scope in
// document order.
func (i *Import) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	var reports report.Reports

	for _, elem := range i.child.Elements() {
		reports = reports.Append(elem.Compile(cc, out)...)
	}

	return reports
}

// ScopeElement is a Compound element wrapping exactly one child scope, used
// for script-produced sub-documents: a kernel's `nml.scope(fn)` call runs fn
// with a fresh child scope active, then hands back one of these as a
// pushable handle carrying whatever fn pushed into it.
type ScopeElement struct {
	base
	child *scope.Scope
}

// NewScopeElement constructs a ScopeElement wrapping child.
func NewScopeElement(loc source.Token, child *scope.Scope) *ScopeElement {
	return &ScopeElement{base{loc}, child}
}

// Kind implements scope.Element.
func (s *ScopeElement) Kind() scope.Kind { return scope.Compound }

// ElementName implements scope.Element.
func (s *ScopeElement) ElementName() string { return "scope" }

// Scopes implements scope.Container.
func (s *ScopeElement) Scopes() []*scope.Scope { return []*scope.Scope{s.child} }

// Compile implements scope.Element.
func (s *ScopeElement) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	var reports report.Reports

	for _, elem := range s.child.Elements() {
		reports = reports.Append(elem.Compile(cc, out)...)
	}

	return reports
}
