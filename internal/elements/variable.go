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

// VariableDefinition marks where `:set`/`:export` bound a variable
//. It is visible only at parse time — retained in the tree
// for LSP hover/go-to-definition — and never emits output at compile.
type VariableDefinition struct {
	base
	Name string
}

// NewVariableDefinition constructs a VariableDefinition marker.
func NewVariableDefinition(loc source.Token, name string) *VariableDefinition {
	return &VariableDefinition{base{loc}, name}
}

// Kind implements scope.Element.
func (v *VariableDefinition) Kind() scope.Kind { return scope.Invisible }

// ElementName implements scope.Element.
func (v *VariableDefinition) ElementName() string { return "variable_definition" }

// Compile implements scope.Element; definitions never emit output.
func (v *VariableDefinition) Compile(scope.CompileContext, scope.Output) report.Reports { return nil }

// VariableSubstitution is the use-site of a variable (`%name%`). It
// materializes the variable's expansion at
// compile time rather than parse time, so a variable redefined between its
// first substitution and a later one reflects the value current at each
// use.
type VariableSubstitution struct {
	base
	Name   string
	expand func(site source.Token) scope.Element
}

// NewVariableSubstitution constructs a substitution site; expand is the
// resolved variable's Expand procedure, captured at parse time (the
// variable itself cannot be mutated concurrently, so capturing its
// procedure here is safe).
func NewVariableSubstitution(loc source.Token, name string, expand func(site source.Token) scope.Element) *VariableSubstitution {
	return &VariableSubstitution{base{loc}, name, expand}
}

// Kind implements scope.Element.
func (v *VariableSubstitution) Kind() scope.Kind { return scope.Inline }

// ElementName implements scope.Element.
func (v *VariableSubstitution) ElementName() string { return "variable_substitution" }

// Compile implements scope.Element: expands the variable now and compiles
// the resulting element in place.
func (v *VariableSubstitution) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	expanded := v.expand(v.loc)
	return expanded.Compile(cc, out)
}
