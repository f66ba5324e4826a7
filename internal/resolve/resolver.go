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

// Package resolve implements the reference resolver: it
// indexes every Referenceable element encountered while parsing a unit,
// assigns each one its final in-unit fragment, and binds every pending
// Linkable to its target — locally, or via a cross-unit cache lookup.
package resolve

import (
	"github.com/nml-lang/nmlc/internal/refs"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/scope"
)

// FragmentAllocator mints a collision-free in-unit fragment id from a
// human-readable seed. Concrete implementation lives in package compile
// (the HTML target's sanitizer), kept as an interface here so this
// package doesn't depend on compile.
type FragmentAllocator interface {
	UniqueFragment(seed string) string
}

// CacheReader is the subset of the persistent cache the resolver needs to
// bind references that cross translation units.
// Concrete implementation lives in package cache.
type CacheReader interface {
	// LookupReference finds a non-bibliography reference in unitPath's
	// cached rows.
	LookupReference(unitPath string, refname refs.Refname) (refs.Reference, bool)
	// LookupBibliography finds a bibliography entry in unitPath's cached
	// rows.
	LookupBibliography(unitPath, id string) (refs.Reference, bool)
}

// Index is the in-memory reference index for a single unit: every
// Referenceable encountered during parsing, keyed by its refname, plus
// every Linkable still waiting to be bound.
type Index struct {
	UnitPath  string
	byRefname map[string]scope.Referenceable
	all       []scope.Referenceable
	pending   []scope.Linkable
}

// NewIndex constructs an empty index for the unit at unitPath.
func NewIndex(unitPath string) *Index {
	return &Index{UnitPath: unitPath, byRefname: map[string]scope.Referenceable{}}
}

// IndexScope walks sc recursively, collecting every Referenceable under
// its refname and every still-unbound
// Linkable into the pending queue. Call once per unit after parsing
// completes, and again after each `@import` merges its exports.
func (ix *Index) IndexScope(sc *scope.Scope) report.Reports {
	var reports report.Reports

	for pair := range sc.ContentIter(true) {
		if ref, ok := pair.Element.(scope.Referenceable); ok {
			ix.all = append(ix.all, ref)

			key := ref.Refname().String()
			if key != "" {
				if existing, dup := ix.byRefname[key]; dup && existing != ref {
					reports = reports.Append(report.Newf(report.KindDuplicateReference, ref.Location(),
						"duplicate reference %q", key).
						WithNote(existing.Location(), "previous declaration was here"))
				} else {
					ix.byRefname[key] = ref
				}
			}
		}

		if link, ok := pair.Element.(scope.Linkable); ok && link.WantsLink() {
			ix.pending = append(ix.pending, link)
		}
	}

	return reports
}

// Lookup finds a Referenceable registered locally under refname.
func (ix *Index) Lookup(refname refs.Refname) (scope.Referenceable, bool) {
	r, ok := ix.byRefname[refname.String()]
	return r, ok
}

// Pending returns every Linkable this index collected during IndexScope,
// whether or not Pass has since bound it. Read-only: callers that want to
// record LSP side-data for resolved links (package project) walk this after
// calling Pass rather than widening Pass's own signature.
func (ix *Index) Pending() []scope.Linkable {
	return ix.pending
}

// AssignFragments stamps every collected Referenceable's in-unit fragment,
// if not already set, via alloc — including unnamed ones (a section with no
// explicit refname still needs a heading id for the table of contents).
// Must run before Pass, so that any reference a Linkable binds to already
// carries its final fragment regardless of document order. Fragments are
// assigned in document order, keeping the collision suffixes deterministic.
func (ix *Index) AssignFragments(alloc FragmentAllocator) {
	for _, ref := range ix.all {
		if _, ok := ref.Link(); !ok {
			ref.SetLink(alloc.UniqueFragment(ref.FragmentSeed()))
		}
	}
}

// References returns a Reference value for every Referenceable this index
// holds, fragments already assigned by AssignFragments. Used to build the
// cache rows a unit upserts after compile.
func (ix *Index) References() []refs.Reference {
	out := make([]refs.Reference, 0, len(ix.byRefname))
	for _, ref := range ix.byRefname {
		out = append(out, referenceFrom(ix.UnitPath, ref))
	}

	return out
}

// Registry looks up a loaded unit's Index by its input path, used to
// resolve External() refnames against units still resident in memory
// before falling back to the cache.
type Registry interface {
	IndexFor(unitPath string) (*Index, bool)
}

// Pass binds every pending Linkable in ix to a concrete Reference,
// consulting other loaded units via reg and the persistent cache via
// cacheReader for cross-unit and bibliography refnames.
// cacheReader may be nil when the project has no cache configured; External
// and Bibliography refnames to unloaded units then always fail to resolve.
func Pass(ix *Index, reg Registry, cacheReader CacheReader) report.Reports {
	var reports report.Reports

	for _, link := range ix.pending {
		want := link.WantsRefname()

		ref, ok := resolveOne(ix, reg, cacheReader, want)
		if !ok {
			reports = reports.Append(report.Newf(report.KindUnresolvedReference, link.Location(),
				"unresolved reference %q", want.String()))

			continue
		}

		link.Bind(ref)
	}

	return reports
}

// resolveOne implements the three resolution rules for a single refname:
// same-unit, cross-unit via the registry, and the persistent cache.
func resolveOne(ix *Index, reg Registry, cacheReader CacheReader, want refs.Refname) (refs.Reference, bool) {
	switch want.Kind() {
	case refs.RefnameInternal:
		target, ok := ix.Lookup(want)
		if !ok {
			return refs.Reference{}, false
		}

		return referenceFrom(ix.UnitPath, target), true

	case refs.RefnameExternal:
		if reg != nil {
			if otherIx, ok := reg.IndexFor(want.UnitPath()); ok {
				if target, ok := otherIx.Lookup(refs.Internal(want.ID())); ok {
					return referenceFrom(otherIx.UnitPath, target), true
				}

				return refs.Reference{}, false
			}
		}

		if cacheReader != nil {
			return cacheReader.LookupReference(want.UnitPath(), refs.Internal(want.ID()))
		}

		return refs.Reference{}, false

	case refs.RefnameBibliography:
		if cacheReader != nil {
			return cacheReader.LookupBibliography(want.UnitPath(), want.ID())
		}

		return refs.Reference{}, false

	default:
		return refs.Reference{}, false
	}
}

// referenceFrom builds a Reference value from a locally-indexed
// Referenceable, whose fragment AssignFragments has already stamped.
func referenceFrom(unitPath string, target scope.Referenceable) refs.Reference {
	link, _ := target.Link()

	return refs.Reference{
		Refname:    target.Refname(),
		Refkey:     target.RefcountKey(),
		SourceUnit: unitPath,
		Link:       link,
		Token:      refs.FromSourceToken(target.Location()),
	}
}
