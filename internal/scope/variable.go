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

package scope

import (
	"github.com/nml-lang/nmlc/internal/refs"
	"github.com/nml-lang/nmlc/internal/source"
)

// Variable is a named value bound in a scope. Its Expand
// procedure is invoked at each substitution site and returns the Element to
// splice in there (typically Text, or a sub-scope wrapped in a
// ScopeElement for structured values).
type Variable struct {
	Name       string
	Visibility refs.Visibility
	Mutability refs.Mutability
	Definition source.Token
	ValueToken source.Token
	Type       string
	// Value is the variable's current value rendered as a string, for
	// readers that need the text without expanding (document framing,
	// hovers, kernel lookups). ValueToken locates where it was authored.
	Value  string
	Expand func(site source.Token) Element
}

// NewTextVariable constructs a Variable whose value is a plain string,
// expanding to sanitized Text at every substitution site.
func NewTextVariable(name string, vis refs.Visibility, mut refs.Mutability, def, value source.Token, text string, newText func(loc source.Token, text string) Element) *Variable {
	return &Variable{
		Name:       name,
		Visibility: vis,
		Mutability: mut,
		Definition: def,
		ValueToken: value,
		Type:       "text",
		Value:      text,
		Expand: func(site source.Token) Element {
			return newText(site, text)
		},
	}
}
