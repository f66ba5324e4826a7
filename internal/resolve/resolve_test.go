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

package resolve_test

import (
	"testing"

	_ "github.com/nml-lang/nmlc/internal/elements"

	"github.com/nml-lang/nmlc/internal/elements"
	"github.com/nml-lang/nmlc/internal/refs"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/resolve"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
)

func tok(src source.Source, start, end int) source.Token {
	return source.NewToken(src, source.NewSpan(start, end))
}

// fakeAlloc returns each seed unchanged as its fragment (counting calls),
// enough to exercise AssignFragments without depending on package compile.
type fakeAlloc struct{ n int }

func (a *fakeAlloc) UniqueFragment(seed string) string {
	a.n++
	return seed
}

type fakeRegistry map[string]*resolve.Index

func (r fakeRegistry) IndexFor(unitPath string) (*resolve.Index, bool) {
	ix, ok := r[unitPath]
	return ix, ok
}

type fakeCache struct {
	refs map[string]refs.Reference
	bibs map[string]refs.Reference
}

func (c *fakeCache) LookupReference(unitPath string, refname refs.Refname) (refs.Reference, bool) {
	r, ok := c.refs[unitPath+"#"+refname.ID()]
	return r, ok
}

func (c *fakeCache) LookupBibliography(unitPath, id string) (refs.Reference, bool) {
	r, ok := c.bibs[unitPath+"@"+id]
	return r, ok
}

func TestIndexScopeFlagsDuplicateReferences(t *testing.T) {
	src := source.NewFileFromBytes("a.nml", []byte(""))
	root := scope.NewScope(src)

	rn, _ := refs.ParseRefname("intro")
	root.AddContent(elements.NewAnchor(tok(src, 0, 1), rn, "intro"))
	root.AddContent(elements.NewAnchor(tok(src, 2, 3), rn, "intro"))

	ix := resolve.NewIndex("a.nml")
	reports := ix.IndexScope(root)

	if !reports.HasErrors() {
		t.Fatalf("expected a duplicate-reference report")
	}

	if reports[0].Kind != report.KindDuplicateReference {
		t.Fatalf("expected KindDuplicateReference, got %v", reports[0].Kind)
	}
}

func TestPassResolvesSameUnitReference(t *testing.T) {
	src := source.NewFileFromBytes("a.nml", []byte(""))
	root := scope.NewScope(src)

	rn, _ := refs.ParseRefname("intro")
	anchor := elements.NewAnchor(tok(src, 0, 1), rn, "intro")
	root.AddContent(anchor)

	link := elements.NewInternalLink(tok(src, 2, 3), rn, elements.DisplayRaw, nil)
	root.AddContent(link)

	ix := resolve.NewIndex("a.nml")
	if reports := ix.IndexScope(root); reports.HasErrors() {
		t.Fatalf("unexpected index errors: %v", reports)
	}

	ix.AssignFragments(&fakeAlloc{})

	reports := resolve.Pass(ix, nil, nil)
	if reports.HasErrors() {
		t.Fatalf("unexpected resolve errors: %v", reports)
	}

	ref, bound := link.Bound()
	if !bound {
		t.Fatalf("expected the internal link to be bound")
	}

	if ref.Refname.ID() != "intro" {
		t.Fatalf("expected bound reference to target %q, got %q", "intro", ref.Refname.ID())
	}
}

func TestPassReportsUnresolvedReference(t *testing.T) {
	src := source.NewFileFromBytes("a.nml", []byte(""))
	root := scope.NewScope(src)

	rn, _ := refs.ParseRefname("missing")
	link := elements.NewInternalLink(tok(src, 0, 1), rn, elements.DisplayRaw, nil)
	root.AddContent(link)

	ix := resolve.NewIndex("a.nml")
	ix.IndexScope(root)
	ix.AssignFragments(&fakeAlloc{})

	reports := resolve.Pass(ix, nil, nil)
	if !reports.HasErrors() {
		t.Fatalf("expected an unresolved-reference report")
	}

	if reports[0].Kind != report.KindUnresolvedReference {
		t.Fatalf("expected KindUnresolvedReference, got %v", reports[0].Kind)
	}

	if _, bound := link.Bound(); bound {
		t.Fatalf("expected the link to remain unbound")
	}
}

func TestPassResolvesCrossUnitReferenceViaRegistry(t *testing.T) {
	otherSrc := source.NewFileFromBytes("other.nml", []byte(""))
	otherRoot := scope.NewScope(otherSrc)

	rn, _ := refs.ParseRefname("intro")
	otherRoot.AddContent(elements.NewAnchor(tok(otherSrc, 0, 1), rn, "intro"))

	otherIx := resolve.NewIndex("other.nml")
	otherIx.IndexScope(otherRoot)
	otherIx.AssignFragments(&fakeAlloc{})

	reg := fakeRegistry{"other.nml": otherIx}

	src := source.NewFileFromBytes("a.nml", []byte(""))
	root := scope.NewScope(src)

	want, _ := refs.ParseRefname("other.nml#intro")
	link := elements.NewInternalLink(tok(src, 0, 1), want, elements.DisplayRaw, nil)
	root.AddContent(link)

	ix := resolve.NewIndex("a.nml")
	ix.IndexScope(root)
	ix.AssignFragments(&fakeAlloc{})

	reports := resolve.Pass(ix, reg, nil)
	if reports.HasErrors() {
		t.Fatalf("unexpected resolve errors: %v", reports)
	}

	ref, bound := link.Bound()
	if !bound || ref.SourceUnit != "other.nml" {
		t.Fatalf("expected the link bound against other.nml, got bound=%v ref=%+v", bound, ref)
	}
}

func TestPassFallsBackToCacheForBibliography(t *testing.T) {
	src := source.NewFileFromBytes("a.nml", []byte(""))
	root := scope.NewScope(src)

	want, _ := refs.ParseRefname("refs.nml@doe2020")
	link := elements.NewInternalLink(tok(src, 0, 1), want, elements.DisplayRaw, nil)
	root.AddContent(link)

	ix := resolve.NewIndex("a.nml")
	ix.IndexScope(root)
	ix.AssignFragments(&fakeAlloc{})

	cache := &fakeCache{bibs: map[string]refs.Reference{
		"refs.nml@doe2020": {Refname: want, SourceUnit: "refs.nml", Link: "doe2020"},
	}}

	reports := resolve.Pass(ix, nil, cache)
	if reports.HasErrors() {
		t.Fatalf("unexpected resolve errors: %v", reports)
	}

	ref, bound := link.Bound()
	if !bound || ref.Link != "doe2020" {
		t.Fatalf("expected the bibliography link bound via the cache, got bound=%v ref=%+v", bound, ref)
	}
}
