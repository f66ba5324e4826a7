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

// List is a block-kind container whose items are scopes, rendered as
// nested <ol>/<ul>.
type List struct {
	base
	Ordered bool
	Offset  int // numbering offset property, only meaningful when Ordered
	items   []*scope.Scope
}

// NewList constructs a List with the given items (each item a scope).
func NewList(loc source.Token, ordered bool, offset int, items []*scope.Scope) *List {
	return &List{base{loc}, ordered, offset, items}
}

// Kind implements scope.Element.
func (l *List) Kind() scope.Kind { return scope.Block }

// ElementName implements scope.Element.
func (l *List) ElementName() string { return "list" }

// Scopes implements scope.Container.
func (l *List) Scopes() []*scope.Scope { return l.items }

// Compile implements scope.Element.
func (l *List) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	var reports report.Reports

	tag := "ul"
	if l.Ordered {
		tag = "ol"
	}

	if l.Ordered && l.Offset != 0 {
		out.WriteString(fmt.Sprintf(`<%s start="%d">`, tag, l.Offset+1))
	} else {
		out.WriteString(fmt.Sprintf("<%s>", tag))
	}

	for _, item := range l.items {
		out.WriteString("<li>")

		for _, elem := range item.Elements() {
			reports = reports.Append(elem.Compile(cc, out)...)
		}

		out.WriteString("</li>")
	}

	out.WriteString(fmt.Sprintf("</%s>", tag))

	return reports
}
