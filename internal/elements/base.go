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

// Package elements implements the concrete element variants of the
// markup language: text, style, list, section, link, reference, block, code,
// graphviz, latex, raw, variable, comment, break, scope and EOF elements.
package elements

import (
	"sync/atomic"

	"github.com/nml-lang/nmlc/internal/refs"
	"github.com/nml-lang/nmlc/internal/source"
)

var nextID uint64

// newID hands out a process-wide unique fragment identity, used by
// referenceable elements in place of a pointer address.
func newID() uint64 {
	return atomic.AddUint64(&nextID, 1)
}

// base is embedded by every element, supplying Location and a default
// Kind override point.
type base struct {
	loc source.Token
}

// Location implements scope.Element.
func (b base) Location() source.Token { return b.loc }

// referenceable is embedded by elements that can be linked to: it
// implements the bookkeeping half of scope.Referenceable, leaving
// Refname/RefcountKey/ElementName/Kind/Compile to the embedder.
type referenceable struct {
	id   uint64
	link string
	set  bool
}

func newReferenceable() referenceable { return referenceable{id: newID()} }

// FragmentID implements scope.Referenceable.
func (r *referenceable) FragmentID() uint64 { return r.id }

// Link implements scope.Referenceable.
func (r *referenceable) Link() (string, bool) { return r.link, r.set }

// SetLink implements scope.Referenceable.
func (r *referenceable) SetLink(fragment string) {
	if r.set {
		panic("fragment link set twice")
	}

	r.link = fragment
	r.set = true
}

// linkable is embedded by elements that originate a cross-reference.
type linkable struct {
	wants refs.Refname
	bound refs.Reference
	isSet bool
}

func newLinkable(want refs.Refname) linkable { return linkable{wants: want} }

// WantsRefname implements scope.Linkable.
func (l *linkable) WantsRefname() refs.Refname { return l.wants }

// WantsLink implements scope.Linkable.
func (l *linkable) WantsLink() bool { return !l.isSet }

// Bind implements scope.Linkable.
func (l *linkable) Bind(ref refs.Reference) {
	l.bound = ref
	l.isSet = true
}

// Bound implements scope.Linkable.
func (l *linkable) Bound() (refs.Reference, bool) { return l.bound, l.isSet }
