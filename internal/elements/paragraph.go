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

func init() {
	scope.ParagraphFactory = func(loc source.Token, child *scope.Scope) scope.Paragraph {
		return &Paragraph{base: base{loc}, inner: child}
	}
}

// Paragraph is a Special-kind container whose compile wraps its child
// scope's content in paragraph tags, but only if that scope ends up
// non-empty. It is materialized on demand by
// Scope.AddContent via scope.ParagraphFactory.
type Paragraph struct {
	base
	inner *scope.Scope
}

// Kind implements scope.Element.
func (p *Paragraph) Kind() scope.Kind { return scope.Special }

// ElementName implements scope.Element.
func (p *Paragraph) ElementName() string { return "paragraph" }

// Scopes implements scope.Container.
func (p *Paragraph) Scopes() []*scope.Scope { return []*scope.Scope{p.inner} }

// InnerScope implements scope.Paragraph.
func (p *Paragraph) InnerScope() *scope.Scope { return p.inner }

// Compile implements scope.Element.
func (p *Paragraph) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	if len(p.inner.Elements()) == 0 {
		return nil
	}

	var reports report.Reports

	out.WriteString("<p>")

	for _, elem := range p.inner.Elements() {
		reports = reports.Append(elem.Compile(cc, out)...)
	}

	out.WriteString("</p>")

	return reports
}
