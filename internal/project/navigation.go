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

package project

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nml-lang/nmlc/internal/compile"
	"github.com/nml-lang/nmlc/internal/scope"
)

// navEntry is one unit's navbar placement, read from its `nav.category`,
// `nav.subcategory` and `nav.title` document variables.
type navEntry struct {
	category    string
	subcategory string
	title       string
	outputPath  string
}

// Navigation renders a `<ul id="navbar">` tree from every loaded unit's
// nav.category/nav.subcategory/nav.title document variables, grouping units
// first by category then by subcategory, each level sorted for a
// deterministic fragment. Units declaring no nav.category are omitted: the
// navbar is opt-in per unit, not a listing of the whole project.
//
// This is a project-wide aggregation over already-compiled units rather
// than a second output of an individual unit's compile.Compiler.Run: a
// navbar spans units, and compile.Compiler only ever sees one.
func Navigation(units map[string]*Unit) string {
	entries := collectNavEntries(units)
	if len(entries) == 0 {
		return ""
	}

	categories := map[string][]navEntry{}

	for _, e := range entries {
		categories[e.category] = append(categories[e.category], e)
	}

	catNames := sortedKeys(categories)

	var b strings.Builder

	b.WriteString(`<ul id="navbar">`)

	for _, cat := range catNames {
		b.WriteString("<li>")
		b.WriteString(compile.Sanitize(cat))
		writeSubcategories(&b, categories[cat])
		b.WriteString("</li>")
	}

	b.WriteString(`</ul>`)

	return b.String()
}

func writeSubcategories(b *strings.Builder, entries []navEntry) {
	bySub := map[string][]navEntry{}

	for _, e := range entries {
		bySub[e.subcategory] = append(bySub[e.subcategory], e)
	}

	subNames := sortedKeys(bySub)

	b.WriteString("<ul>")

	for _, sub := range subNames {
		items := bySub[sub]

		sort.Slice(items, func(i, j int) bool { return items[i].title < items[j].title })

		if sub == "" {
			writeNavItems(b, items)
			continue
		}

		b.WriteString("<li>")
		b.WriteString(compile.Sanitize(sub))
		b.WriteString("<ul>")
		writeNavItems(b, items)
		b.WriteString("</ul></li>")
	}

	b.WriteString("</ul>")
}

func writeNavItems(b *strings.Builder, entries []navEntry) {
	for _, e := range entries {
		fmt.Fprintf(b, `<li><a href="%s">%s</a></li>`, compile.Sanitize(e.outputPath), compile.Sanitize(e.title))
	}
}

func sortedKeys(m map[string][]navEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func collectNavEntries(units map[string]*Unit) []navEntry {
	var entries []navEntry

	paths := make([]string, 0, len(units))
	for path := range units {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	for _, path := range paths {
		u := units[path]
		entry := u.TU.EntryScope()

		category, ok := navVariable(entry, "nav.category")
		if !ok {
			continue
		}

		subcategory, _ := navVariable(entry, "nav.subcategory")

		title, ok := navVariable(entry, "nav.title")
		if !ok {
			title, ok = navVariable(entry, "title")
		}

		if !ok {
			title = u.TU.ReferenceKey()
		}

		entries = append(entries, navEntry{
			category:    category,
			subcategory: subcategory,
			title:       title,
			outputPath:  OutputPathFor(path),
		})
	}

	return entries
}

func navVariable(sc *scope.Scope, name string) (string, bool) {
	v, _, ok := sc.GetVariable(name)
	if !ok {
		return "", false
	}

	return v.Value, true
}
