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

package compile

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/nml-lang/nmlc/internal/elements"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/resolve"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/unit"
)

// Target names a compile target. Only HTML is implemented; the type exists
// so a future target doesn't require touching every call site.
type Target int

// Recognised targets.
const (
	TargetHTML Target = iota
)

// DefaultWorkers is the compile pipeline's default async task concurrency.
const DefaultWorkers = 8

// Compiler carries the compile target, the HTML sanitizer, and an optional
// cache handle. It also implements scope.CompileContext and
// resolve.FragmentAllocator, since both are just views onto the same
// per-run fragment bookkeeping.
type Compiler struct {
	Target  Target
	Cache   resolve.CacheReader
	Workers int

	mu        sync.Mutex
	fragments map[string]int // set of fragments already handed out (values unused)
}

// New constructs a Compiler for target, with an optional cache handle
// (nil disables cross-unit reference resolution).
func New(target Target, cache resolve.CacheReader) *Compiler {
	return &Compiler{Target: target, Cache: cache, Workers: DefaultWorkers, fragments: map[string]int{}}
}

// Sanitize implements scope.CompileContext.
func (c *Compiler) Sanitize(s string) string { return Sanitize(s) }

// SanitizeFormat implements scope.CompileContext.
func (c *Compiler) SanitizeFormat(s string) string { return SanitizeFormat(s) }

var fragmentRe = regexp.MustCompile(`[A-Za-z0-9_.\-]`)

// UniqueFragment implements scope.CompileContext and resolve.
// FragmentAllocator: ASCII alphanumerics, '_', '-', '.' pass
// through; space becomes '-'; anything else becomes '_'. Collisions append
// '_' until the result is injective across this Compiler's lifetime (one
// compile run).
func (c *Compiler) UniqueFragment(name string) string {
	var b strings.Builder

	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case fragmentRe.MatchString(string(r)):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	base := b.String()
	if base == "" {
		base = "_"
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	candidate := base
	for {
		if _, seen := c.fragments[candidate]; !seen {
			c.fragments[candidate] = 0
			return candidate
		}

		candidate += "_"
	}
}

// taskEntry pairs an async compile task with the buffer offset it must be
// spliced back in at.
type taskEntry struct {
	offset int
	fn     func() (string, report.Reports)
}

// output is the concrete scope.Output a Compiler walks elements with.
type output struct {
	buf   strings.Builder
	tasks []taskEntry
}

// WriteString implements scope.Output.
func (o *output) WriteString(s string) { o.buf.WriteString(s) }

// Len implements scope.Output.
func (o *output) Len() int { return o.buf.Len() }

// AddTask implements scope.Output.
func (o *output) AddTask(fn func() (string, report.Reports)) {
	o.tasks = append(o.tasks, taskEntry{o.buf.Len(), fn})
}

// Output is the result of compiling one unit: the final byte content, after async splicing, plus
// every diagnostic collected along the way.
type Output struct {
	Content string
	Reports report.Reports
}

// Run compiles u, walking its entry scope depth-first (container elements
// recurse into their own child scopes from within their own Compile),
// registering async tasks at fixed offsets, then awaiting and splicing
// them back in reverse-offset order.
func (c *Compiler) Run(u *unit.TranslationUnit) Output {
	out := &output{}

	var reports report.Reports

	reports = reports.Append(c.hoistTableOfContents(u, out)...)

	for _, elem := range u.EntryScope().Elements() {
		reports = reports.Append(elem.Compile(c, out)...)
	}

	body, taskReports := c.resolveTasks(out)
	reports = reports.Append(taskReports...)

	return Output{Content: c.frame(u, body), Reports: reports}
}

// hoistTableOfContents scans u's entire element tree for every Section and
// the first table-of-contents directive, then renders that directive's
// output to the very front of out, before the normal per-element walk
// begins: the directive itself may appear anywhere in the source (even
// after the headings it lists, as in a trailing "#+TABLE_OF_CONTENT"
// summary line), but its rendering always leads the compiled document.
// TableOfContents.Compile is idempotent once called here, so the walk's
// later visit to the directive's actual tree position is a no-op.
func (c *Compiler) hoistTableOfContents(u *unit.TranslationUnit, out *output) report.Reports {
	var (
		sections []*elements.Section
		toc      *elements.TableOfContents
	)

	for pair := range u.EntryScope().ContentIter(true) {
		switch elem := pair.Element.(type) {
		case *elements.Section:
			sections = append(sections, elem)
		case *elements.TableOfContents:
			if toc == nil {
				toc = elem
			}
		}
	}

	if toc == nil {
		return nil
	}

	toc.Sections = sections

	return toc.Compile(c, out)
}

// resolveTasks awaits every task registered during the walk on a bounded
// worker pool, then splices successful
// results into the buffer in descending offset order so earlier splices
// never shift the offset of a later one.
func (c *Compiler) resolveTasks(out *output) (string, report.Reports) {
	content := out.buf.String()
	if len(out.tasks) == 0 {
		return content, nil
	}

	type result struct {
		offset  int
		text    string
		ok      bool
		reports report.Reports
	}

	results := make([]result, len(out.tasks))

	workers := c.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, task := range out.tasks {
		wg.Add(1)

		sem <- struct{}{}

		go func(i int, task taskEntry) {
			defer wg.Done()
			defer func() { <-sem }()

			text, reports := task.fn()
			results[i] = result{offset: task.offset, text: text, ok: !reports.HasErrors(), reports: reports}
		}(i, task)
	}

	wg.Wait()

	// Sort descending by offset. Len() is non-decreasing, so two tasks may
	// share an offset; ties put the later-registered task first, so it is
	// spliced first and the earlier one lands ahead of it, keeping parse
	// order.
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j-1].offset <= results[j].offset; j-- {
			results[j-1], results[j] = results[j], results[j-1]
		}
	}

	var reports report.Reports

	for _, r := range results {
		reports = reports.Append(r.reports...)

		if !r.ok {
			continue
		}

		content = content[:r.offset] + r.text + content[r.offset:]
	}

	return content, reports
}

// frame wraps body in the HTML document shell, reading page title,
// stylesheet, language and icon from document-level variables on the
// unit's entry scope.
func (c *Compiler) frame(u *unit.TranslationUnit, body string) string {
	entry := u.EntryScope()

	lang := docVariable(entry, "lang", "en")

	var head strings.Builder

	if title, ok := lookupDocVariable(entry, "title"); ok {
		head.WriteString(fmt.Sprintf("<title>%s</title>", c.Sanitize(title)))
	}

	if css, ok := lookupDocVariable(entry, "stylesheet"); ok {
		head.WriteString(fmt.Sprintf(`<link rel="stylesheet" href="%s">`, c.Sanitize(css)))
	}

	if icon, ok := lookupDocVariable(entry, "icon"); ok {
		head.WriteString(fmt.Sprintf(`<link rel="icon" href="%s">`, c.Sanitize(icon)))
	}

	return fmt.Sprintf(`<!DOCTYPE html><html lang="%s"><head>%s</head><body>%s</body></html>`,
		c.Sanitize(lang), head.String(), body)
}

func docVariable(sc *scope.Scope, name, fallback string) string {
	if v, ok := lookupDocVariable(sc, name); ok {
		return v
	}

	return fallback
}

func lookupDocVariable(sc *scope.Scope, name string) (string, bool) {
	v, _, ok := sc.GetVariable(name)
	if !ok {
		return "", false
	}

	return v.Value, true
}
