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

package langrules_test

import (
	"strings"
	"testing"

	"github.com/nml-lang/nmlc/internal/compile"
	"github.com/nml-lang/nmlc/internal/elements"
	"github.com/nml-lang/nmlc/internal/langrules"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/resolve"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
	"github.com/nml-lang/nmlc/internal/unit"
)

// parseSource runs the full rule set over content exactly the way package
// project drives a unit, including end-of-scope/document teardown.
func parseSource(t *testing.T, content string) (*unit.TranslationUnit, report.Reports) {
	t.Helper()

	src := source.NewFileFromBytes("t.nml", []byte(content))
	tu := unit.New(src, "t.nml", "t", langrules.New())

	_, reports := rules.Run(tu.Rules(), tu, rules.NewParseMode(), source.NewCursor(src, 0), langrules.EmitText)
	reports = reports.Append(tu.EntryScope().EndOfScope()...)
	reports = reports.Append(tu.EntryScope().EndOfDocument()...)

	return tu, reports
}

// compileUnit resolves fragments/references and compiles tu to HTML, the
// same sequence project.Load/Compile runs, with one compiler playing both
// the allocator and the walker.
func compileUnit(t *testing.T, tu *unit.TranslationUnit) string {
	t.Helper()

	c := compile.New(compile.TargetHTML, nil)

	ix := resolve.NewIndex(tu.InputPath())
	if reports := ix.IndexScope(tu.EntryScope()); reports.HasErrors() {
		t.Fatalf("unexpected index errors: %v", reports)
	}

	ix.AssignFragments(c)
	resolve.Pass(ix, nil, nil)

	out := c.Run(tu)

	return out.Content
}

func TestCommentFormsKeepLooseDoubleColonLiteral(t *testing.T) {
	tu, reports := parseSource(t, "NOT :: cmp\n:: c\nT ::c2\n")
	if reports.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", reports)
	}

	elems := tu.EntryScope().Elements()
	if len(elems) != 4 {
		t.Fatalf("expected [paragraph comment paragraph comment], got %d elements", len(elems))
	}

	first, ok := elems[0].(scope.Paragraph)
	if !ok {
		t.Fatalf("expected a leading paragraph, got %T", elems[0])
	}

	text, ok := first.InnerScope().Elements()[0].(*elements.Text)
	if !ok || !strings.Contains(text.Content, "NOT :: cmp") {
		t.Fatalf("expected the loose ':: ' run to stay literal, got %+v", first.InnerScope().Elements()[0])
	}

	c1, ok := elems[1].(*elements.Comment)
	if !ok || c1.Content != "c" {
		t.Fatalf("expected a line comment %q, got %+v", "c", elems[1])
	}

	if _, ok := elems[2].(scope.Paragraph); !ok {
		t.Fatalf("expected the text before the attached comment in its own paragraph, got %T", elems[2])
	}

	c2, ok := elems[3].(*elements.Comment)
	if !ok || c2.Content != "c2" {
		t.Fatalf("expected an attached comment %q, got %+v", "c2", elems[3])
	}
}

func TestStyledLinkDisplayCompilesWithoutParagraphFraming(t *testing.T) {
	tu, reports := parseSource(t, "[**BOLD**](u)")
	if reports.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", reports)
	}

	got := compileUnit(t, tu)

	if !strings.Contains(got, `<a href="u"><b>BOLD</b></a>`) {
		t.Fatalf("expected the styled display inline inside the anchor, got %q", got)
	}
}

func TestSectionsRenderHoistedTableOfContents(t *testing.T) {
	tu, reports := parseSource(t, "# A\n## B\n#+TABLE_OF_CONTENT T\n")
	if reports.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", reports)
	}

	got := compileUnit(t, tu)

	wantTOC := `<div class="toc"><span>T</span><ol><li value="1"><a href="#A">A</a></li>` +
		`<ol><li value="1"><a href="#B">B</a></li></ol></ol></div>`

	tocIdx := strings.Index(got, wantTOC)
	if tocIdx < 0 {
		t.Fatalf("expected toc %q, got %q", wantTOC, got)
	}

	h1Idx := strings.Index(got, `<h1 id="A">A</h1>`)
	if h1Idx < 0 || h1Idx < tocIdx {
		t.Fatalf("expected the depth-1 heading after the toc, got %q", got)
	}

	if !strings.Contains(got, `<h2 id="B">B</h2>`) {
		t.Fatalf("expected the depth-2 heading, got %q", got)
	}
}

func TestUnorderedAndOrderedListsRender(t *testing.T) {
	tu, reports := parseSource(t, "* a\n* b\n")
	if reports.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", reports)
	}

	if got := compileUnit(t, tu); !strings.Contains(got, "<ul><li>a</li><li>b</li></ul>") {
		t.Fatalf("expected an unordered list, got %q", got)
	}

	tu, reports = parseSource(t, "-[start=3] first\n- second\n")
	if reports.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", reports)
	}

	if got := compileUnit(t, tu); !strings.Contains(got, `<ol start="3"><li>first</li><li>second</li></ol>`) {
		t.Fatalf("expected an ordered list honoring its numbering offset, got %q", got)
	}
}

func TestScriptEvalInjectsResultAsText(t *testing.T) {
	tu, reports := parseSource(t, "%<\" 1+1>%\n")
	if reports.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", reports)
	}

	if got := compileUnit(t, tu); !strings.Contains(got, "2") {
		t.Fatalf("expected the evaluated result in the output, got %q", got)
	}
}

func TestScriptDefinitionPersistsAcrossInvocations(t *testing.T) {
	content := "@<\nfunction shout()\n\treturn \"HI\"\nend\n>@\n%<\" shout()>%\n"

	tu, reports := parseSource(t, content)
	if reports.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", reports)
	}

	if got := compileUnit(t, tu); !strings.Contains(got, "HI") {
		t.Fatalf("expected the definition block's function visible to the later eval, got %q", got)
	}
}

func TestScriptMarkupModifierReentersParser(t *testing.T) {
	tu, reports := parseSource(t, "%<! \"**B**\">%\n")
	if reports.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", reports)
	}

	if got := compileUnit(t, tu); !strings.Contains(got, "<b>B</b>") {
		t.Fatalf("expected the script result parsed as markup, got %q", got)
	}
}

func TestScriptLongFormRunsStatements(t *testing.T) {
	tu, reports := parseSource(t, "{:lua nml.push(nml.text(\"hi\")) :}\n")
	if reports.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", reports)
	}

	if got := compileUnit(t, tu); !strings.Contains(got, "hi") {
		t.Fatalf("expected the pushed text in the output, got %q", got)
	}
}

func TestScriptTrapBecomesScriptErrorReport(t *testing.T) {
	_, reports := parseSource(t, "%< error('boom') >%\n")
	if !reports.HasErrors() {
		t.Fatalf("expected a script error report")
	}

	if reports[0].Kind != report.KindScriptError {
		t.Fatalf("expected KindScriptError, got %v", reports[0].Kind)
	}

	if !strings.Contains(reports[0].Message, "boom") {
		t.Fatalf("expected the guest message in the report, got %q", reports[0].Message)
	}
}

func TestSetVariableRecordsValueSpan(t *testing.T) {
	tu, reports := parseSource(t, ":set title = \"My Page\"\n")
	if reports.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", reports)
	}

	v, _, ok := tu.EntryScope().GetVariable("title")
	if !ok {
		t.Fatalf("expected the variable to be defined")
	}

	if v.Value != "My Page" {
		t.Fatalf("expected value %q, got %q", "My Page", v.Value)
	}

	span := v.ValueToken.Span()
	content := v.ValueToken.Source().Content()

	if got := string(content[span.Start():span.End()]); got != "My Page" {
		t.Fatalf("expected the value token to cover exactly the value, got %q", got)
	}
}

func TestUnterminatedStyleReportsAtDocumentEnd(t *testing.T) {
	_, reports := parseSource(t, "**dangling\n")
	if !reports.HasErrors() {
		t.Fatalf("expected an unterminated-construct report")
	}

	if reports[0].Kind != report.KindUnterminatedConstruct {
		t.Fatalf("expected KindUnterminatedConstruct, got %v", reports[0].Kind)
	}
}
