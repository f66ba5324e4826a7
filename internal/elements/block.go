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

// Block is a typed admonition/quote block: `>[!Type][...]`.
// Properties are free-form key/value pairs parsed by a per-type routine in
// package langrules; Block itself just stores and renders them.
type Block struct {
	base
	BlockType  string
	Properties map[string]string
	inner      *scope.Scope
}

// NewBlock constructs a typed Block wrapping child.
func NewBlock(loc source.Token, blockType string, properties map[string]string, child *scope.Scope) *Block {
	return &Block{base{loc}, blockType, properties, child}
}

// Kind implements scope.Element.
func (b *Block) Kind() scope.Kind { return scope.Block }

// ElementName implements scope.Element.
func (b *Block) ElementName() string { return "block" }

// Scopes implements scope.Container.
func (b *Block) Scopes() []*scope.Scope { return []*scope.Scope{b.inner} }

// Compile implements scope.Element.
func (b *Block) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	var reports report.Reports

	class := cc.Sanitize(b.BlockType)
	out.WriteString(fmt.Sprintf(`<div class="admonition %s">`, class))

	if title, ok := b.Properties["title"]; ok && title != "" {
		out.WriteString(fmt.Sprintf(`<p class="admonition-title">%s</p>`, cc.Sanitize(title)))
	}

	for _, elem := range b.inner.Elements() {
		reports = reports.Append(elem.Compile(cc, out)...)
	}

	out.WriteString("</div>")

	return reports
}
