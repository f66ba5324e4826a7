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

package refs

import "github.com/nml-lang/nmlc/internal/source"

// Reference is a resolved cross-reference, binding a refname to a concrete
// target: the unit that declares it, its refcount-key category, the
// in-unit link fragment, and the declaring token's range.
type Reference struct {
	Refname    Refname
	Refkey     string
	SourceUnit string
	Link       string
	Token      Token
}

// Token is a serializable (start,end) byte range, decoupled from a live
// source.Source so it can be persisted to the cache and rehydrated in a
// future process.
type Token struct {
	Start int
	End   int
}

// FromSourceToken converts a live source.Token into a persistable Token.
func FromSourceToken(t source.Token) Token {
	return Token{t.Span().Start(), t.Span().End()}
}

// Visibility controls whether a Variable propagates across an @import.
type Visibility int

// Recognised visibilities, named VisibilityX so they don't collide with
// the refname constructors (Internal, External, Bibliography).
const (
	// VisibilityInternal variables are not visible to importing units.
	VisibilityInternal Visibility = iota
	// VisibilityExported variables are merged into the importer's scope at
	// the import point.
	VisibilityExported
)

// Mutability controls whether a Variable may be redefined.
type Mutability int

// Recognised mutabilities.
const (
	Immutable Mutability = iota
	Mutable
)
