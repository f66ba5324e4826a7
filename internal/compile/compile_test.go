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

package compile_test

import (
	"strings"
	"testing"
	"time"

	"github.com/nml-lang/nmlc/internal/compile"
	"github.com/nml-lang/nmlc/internal/elements"
	"github.com/nml-lang/nmlc/internal/refs"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
	"github.com/nml-lang/nmlc/internal/unit"
)

func tok(src source.Source, start, end int) source.Token {
	return source.NewToken(src, source.NewSpan(start, end))
}

func TestSanitizeEscapesReservedCharacters(t *testing.T) {
	got := compile.Sanitize(`<a href="x">A & B</a>`)
	want := `&lt;a href=&quot;x&quot;&gt;A &amp; B&lt;/a&gt;`

	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSanitizeFormatPassesPlaceholdersThrough(t *testing.T) {
	got := compile.SanitizeFormat(`<b>{name}</b> & friends`)
	want := `&lt;b&gt;{name}&lt;/b&gt; &amp; friends`

	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSanitizeFormatTreatsUnterminatedBraceAsPlainText(t *testing.T) {
	got := compile.SanitizeFormat(`a < {b`)
	want := `a &lt; {b`

	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestUniqueFragmentSlugifiesAndDisambiguates(t *testing.T) {
	c := compile.New(compile.TargetHTML, nil)

	if got := c.UniqueFragment("Hello World!"); got != "Hello-World_" {
		t.Fatalf("got %q, want %q", got, "Hello-World_")
	}

	first := c.UniqueFragment("intro")
	second := c.UniqueFragment("intro")

	if first != "intro" {
		t.Fatalf("expected first allocation to pass through unchanged, got %q", first)
	}

	if second != "intro_" {
		t.Fatalf("expected collision to append a disambiguating suffix, got %q", second)
	}

	third := c.UniqueFragment("intro")
	if third != "intro__" {
		t.Fatalf("expected a second collision to append another suffix, got %q", third)
	}
}

func TestUniqueFragmentIsInjectiveAcrossConcurrentCallers(t *testing.T) {
	c := compile.New(compile.TargetHTML, nil)

	results := make(chan string, 32)
	for i := 0; i < 32; i++ {
		go func() { results <- c.UniqueFragment("dup") }()
	}

	seen := map[string]bool{}
	for i := 0; i < 32; i++ {
		got := <-results
		if seen[got] {
			t.Fatalf("fragment %q allocated more than once", got)
		}
		seen[got] = true
	}
}

// slowGraph returns a Graphviz render function that blocks until ready is
// closed, then writes tag, proving that the splice order depends only on
// registration offset and never on completion order.
func slowGraph(ready <-chan struct{}, tag string) func(engine, source string) (string, error) {
	return func(engine, source string) (string, error) {
		<-ready
		return tag, nil
	}
}

func TestRunSplicesAsyncTasksByDescendingOffsetRegardlessOfCompletionOrder(t *testing.T) {
	src := source.NewFileFromBytes("a.nml", []byte(""))

	u := unit.New(src, "a.nml", "a", rules.NewRuleSet(nil))
	entry := u.EntryScope()

	// Three tasks registered at increasing offsets; the LAST-registered
	// task (third) is made to finish FIRST, and the FIRST-registered task
	// finishes LAST, so a naive in-completion-order splice would corrupt
	// the offsets of tasks that haven't spliced yet.
	readyA := make(chan struct{})
	readyB := make(chan struct{})
	readyC := make(chan struct{})

	entry.AddContent(elements.NewGraphviz(tok(src, 0, 1), "dot", "", "", slowGraph(readyA, "[A]")))
	entry.AddContent(elements.NewLineBreak(tok(src, 1, 2))) // fixed "<br/>" spacer, advances offset deterministically
	entry.AddContent(elements.NewGraphviz(tok(src, 2, 3), "dot", "", "", slowGraph(readyB, "[B]")))
	entry.AddContent(elements.NewLineBreak(tok(src, 3, 4)))
	entry.AddContent(elements.NewGraphviz(tok(src, 4, 5), "dot", "", "", slowGraph(readyC, "[C]")))

	c := compile.New(compile.TargetHTML, nil)

	done := make(chan compile.Output, 1)
	go func() { done <- c.Run(u) }()

	// Release in reverse-registration order: C first, then B, then A.
	close(readyC)
	time.Sleep(10 * time.Millisecond)
	close(readyB)
	time.Sleep(10 * time.Millisecond)
	close(readyA)

	out := <-done

	if out.Reports.HasErrors() {
		t.Fatalf("unexpected compile errors: %v", out.Reports)
	}

	div := func(tag string) string { return `<div class="graphviz">` + tag + `</div>` }
	want := div("[A]") + "<br/>" + div("[B]") + "<br/>" + div("[C]")

	if idx := indexOf(out.Content, want); idx < 0 {
		t.Fatalf("expected body to contain %q in registration order, got %q", want, out.Content)
	}
}

func TestRunFramesDocumentVariables(t *testing.T) {
	src := source.NewFileFromBytes("a.nml", []byte("My Page"))

	u := unit.New(src, "a.nml", "a", rules.NewRuleSet(nil))
	entry := u.EntryScope()

	titleTok := tok(src, 0, 7)
	newText := func(loc source.Token, text string) scope.Element { return elements.NewText(loc, text) }
	entry.DefineVariable(scope.NewTextVariable("title", refs.VisibilityInternal, refs.Immutable, titleTok, titleTok, "My Page", newText))

	c := compile.New(compile.TargetHTML, nil)
	out := c.Run(u)

	if out.Reports.HasErrors() {
		t.Fatalf("unexpected compile errors: %v", out.Reports)
	}

	if idx := indexOf(out.Content, "<title>My Page</title>"); idx < 0 {
		t.Fatalf("expected framed output to contain the title element, got %q", out.Content)
	}

	if idx := indexOf(out.Content, `lang="en"`); idx < 0 {
		t.Fatalf("expected framed output to default lang to en, got %q", out.Content)
	}
}

func TestRunHoistsTableOfContentsBeforeSectionsRegardlessOfSourceOrder(t *testing.T) {
	src := source.NewFileFromBytes("a.nml", []byte(""))

	u := unit.New(src, "a.nml", "a", rules.NewRuleSet(nil))
	entry := u.EntryScope()

	// The directive is nested inside section A's body, after section B, so
	// it comes after every heading it lists in tree order.
	bInner := entry.Nested()
	sectionB := elements.NewSection(tok(src, 0, 1), 2, "B", false, false, refs.Refname{}, false, bInner)

	aInner := entry.Nested()
	aInner.AddContent(sectionB)
	aInner.AddContent(elements.NewTableOfContents(tok(src, 1, 2), "Contents", nil))

	sectionA := elements.NewSection(tok(src, 2, 3), 1, "A", false, false, refs.Refname{}, false, aInner)
	entry.AddContent(sectionA)

	c := compile.New(compile.TargetHTML, nil)
	out := c.Run(u)

	if out.Reports.HasErrors() {
		t.Fatalf("unexpected compile errors: %v", out.Reports)
	}

	tocIdx := indexOf(out.Content, `<div class="toc">`)
	sectionIdx := indexOf(out.Content, "<h1")

	if tocIdx < 0 {
		t.Fatalf("expected a rendered toc, got %q", out.Content)
	}

	if sectionIdx < 0 || tocIdx > sectionIdx {
		t.Fatalf("expected toc to render before the first section heading, got %q", out.Content)
	}

	if count := strings.Count(out.Content, `<div class="toc">`); count != 1 {
		t.Fatalf("expected the toc to render exactly once, got %d times in %q", count, out.Content)
	}
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}

	return -1
}
