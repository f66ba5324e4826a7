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

// Package project ties the per-unit pieces (source, rules, resolver,
// cache, compile) into the whole-project pipeline: discover every source
// under a project root, parse each into its own translation unit, resolve
// references across all units loaded in the same run (falling back to the
// persistent cache for units compiled in an earlier run), then compile
// and, if a cache is configured, upsert each unit's resolved references
// into it.
//
// Nothing here is named by a translation-core type directly — it is the
// command-line entrypoint's own wiring, kept thin enough that cmd/nmlc is
// a Cobra skeleton over this package rather than duplicating the
// orchestration itself.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/nml-lang/nmlc/internal/cache"
	"github.com/nml-lang/nmlc/internal/compile"
	"github.com/nml-lang/nmlc/internal/langrules"
	"github.com/nml-lang/nmlc/internal/refs"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/resolve"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
	"github.com/nml-lang/nmlc/internal/unit"
)

// SourceExtension is the file extension project discovery recognises.
const SourceExtension = ".nml"

// Unit bundles a parsed translation unit with the reference index built
// from it, the one-per-run pair every later pipeline stage (resolve,
// compile, cache) needs.
type Unit struct {
	TU    *unit.TranslationUnit
	Index *resolve.Index
}

// registry adapts a map of per-run indexes to resolve.Registry.
type registry map[string]*resolve.Index

func (r registry) IndexFor(unitPath string) (*resolve.Index, bool) {
	ix, ok := r[unitPath]
	return ix, ok
}

// ParseUnit parses src in its entirety into a fresh translation unit, then
// runs end-of-scope and end-of-document teardown on the entry scope
//. inputPath and referenceKey identify the unit for
// cross-unit references and the cache; callers normally
// pass them through cache.NormalizeUnitPath and ReferenceKeyFor.
func ParseUnit(src source.Source, inputPath, referenceKey string) (*unit.TranslationUnit, report.Reports) {
	tu := unit.New(src, inputPath, referenceKey, langrules.New())

	cur := source.NewCursor(src, 0)

	_, reports := rules.Run(tu.Rules(), tu, rules.NewParseMode(), cur, langrules.EmitText)

	reports = reports.Append(tu.EntryScope().EndOfScope()...)
	reports = reports.Append(tu.EntryScope().EndOfDocument()...)
	tu.AddReports(reports)

	return tu, reports
}

// ReferenceKeyFor derives a unit's default bibliography/external reference
// key from its input path: the base name with SourceExtension stripped.
func ReferenceKeyFor(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, SourceExtension)
}

// OutputPathFor derives the compiled HTML artifact's path alongside the
// source, mirroring its base name with SourceExtension replaced by .html.
func OutputPathFor(inputPath string) string {
	base := strings.TrimSuffix(inputPath, SourceExtension)
	return base + ".html"
}

// Discover walks root for every *.nml file, returning normalized, sorted
// absolute paths so a project's compile order is deterministic.
func Discover(root string) ([]string, error) {
	var paths []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		if strings.EqualFold(filepath.Ext(path), SourceExtension) {
			abs, err := cache.NormalizeUnitPath(path)
			if err != nil {
				return err
			}

			paths = append(paths, abs)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering project sources under %q: %w", root, err)
	}

	sort.Strings(paths)

	return paths, nil
}

// Result is one compiled unit's outcome.
type Result struct {
	InputPath  string
	OutputPath string
	Output     compile.Output
}

// Load parses every *.nml file under root into a Unit, builds each one's
// reference index, then resolves every unit against the others loaded in
// this same run and, if c is non-nil, against the cache.
// Parse errors on individual units are collected into the returned
// reports rather than aborting the whole project; only a failure to read
// the entry source of a unit that could not even be opened is reported
// and that unit is skipped.
func Load(root string, c *cache.Cache) (map[string]*Unit, report.Reports) {
	paths, err := Discover(root)
	if err != nil {
		return nil, report.Reports{report.New(report.KindSourceIO, source.Token{}, err.Error())}
	}

	units := map[string]*Unit{}
	reg := registry{}

	var reports report.Reports

	for _, path := range paths {
		src, err := source.NewFile(path)
		if err != nil {
			reports = reports.Append(report.Newf(report.KindSourceIO, source.Token{}, "reading %q: %s", path, err))
			continue
		}

		refKey := ReferenceKeyFor(path)

		tu, parseReports := ParseUnit(src, path, refKey)
		reports = reports.Append(parseReports...)

		log.Debugf("parsed %q (%d reports)", path, len(parseReports))

		ix := resolve.NewIndex(path)
		reports = reports.Append(ix.IndexScope(tu.EntryScope())...)

		units[path] = &Unit{TU: tu, Index: ix}
		reg[path] = ix
	}

	var cacheReader resolve.CacheReader
	if c != nil {
		cacheReader = c
	}

	for _, path := range paths {
		u, ok := units[path]
		if !ok {
			continue
		}

		alloc := compile.New(compile.TargetHTML, cacheReader)
		u.Index.AssignFragments(alloc)
		reports = reports.Append(resolve.Pass(u.Index, reg, cacheReader)...)

		log.Debugf("resolved references for %q (%d pending links)", path, len(u.Index.Pending()))

		recordDefinitions(u)
	}

	return units, reports
}

// recordDefinitions populates each resolved Linkable's go-to-definition edge
// and editor conceal in u's LSP side-data. The target span is whatever the
// declaring unit's Referenceable recorded its own token as (refs.Token, a
// bare byte range with no live Source) — accurate for a same-unit target,
// and still useful as a coarse byte-range hint for a cross-unit one, since
// the client resolves TargetName to a document of its own and only this
// process's LineCursor conversion (package lspdata) requires that
// document's content, which isn't available here.
func recordDefinitions(u *Unit) {
	for _, link := range u.Index.Pending() {
		ref, ok := boundReference(link)
		if !ok {
			continue
		}

		span := link.Location().Span()

		u.TU.LSP.AddDefinition(span, ref.SourceUnit, source.NewSpan(ref.Token.Start, ref.Token.End))
		u.TU.LSP.AddConceal(span, "→ "+ref.Refname.String())
	}
}

// boundReference reads back a Linkable's resolved Reference, if Pass bound
// one. scope.Linkable doesn't expose Bound() itself (only WantsLink/Bind),
// so this narrows to the concrete interface every linkable element
// embeds (package elements).
func boundReference(link scope.Linkable) (refs.Reference, bool) {
	bounder, ok := link.(interface{ Bound() (refs.Reference, bool) })
	if !ok {
		return refs.Reference{}, false
	}

	return bounder.Bound()
}

// Compile compiles every loaded unit to its HTML artifact and, when c is
// non-nil, upserts each unit's resolved references into the cache before
// returning.
func Compile(units map[string]*Unit, c *cache.Cache) ([]Result, report.Reports) {
	var (
		results []Result
		reports report.Reports
	)

	paths := make([]string, 0, len(units))
	for path := range units {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	for _, path := range paths {
		u := units[path]

		var cacheReader resolve.CacheReader
		if c != nil {
			cacheReader = c
		}

		compiler := compile.New(compile.TargetHTML, cacheReader)
		out := compiler.Run(u.TU)
		reports = reports.Append(out.Reports...)

		outputPath := OutputPathFor(path)
		results = append(results, Result{InputPath: path, OutputPath: outputPath, Output: out})

		log.Debugf("compiled %q -> %q", path, outputPath)

		if c != nil {
			rows := cache.ReferenceRowsFromIndex(u.Index.References())
			if err := c.UpsertUnit(path, u.TU.ReferenceKey(), outputPath, rows); err != nil {
				reports = reports.Append(report.Newf(report.KindCacheError, source.Token{}, "caching %q: %s", path, err))
			}
		}
	}

	return results, reports
}
