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

package kernel_test

import (
	"strings"
	"testing"

	"github.com/nml-lang/nmlc/internal/elements"
	"github.com/nml-lang/nmlc/internal/kernel"
	"github.com/nml-lang/nmlc/internal/refs"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
	"github.com/nml-lang/nmlc/internal/unit"
)

func newContext(t *testing.T) (*kernel.Kernel, *unit.KernelContext, *unit.TranslationUnit) {
	t.Helper()

	src := source.NewFileFromBytes("t.nml", []byte("%< guest >%"))
	tu := unit.New(src, "t.nml", "t", rules.NewRuleSet(nil))

	k := kernel.New("main", nil)
	t.Cleanup(k.Close)

	ctx := &unit.KernelContext{
		Unit:     tu,
		Scope:    tu.EntryScope(),
		Location: source.NewToken(src, source.NewSpan(0, 11)),
	}

	return k, ctx, tu
}

func TestRunPushesTextIntoInvokingScope(t *testing.T) {
	k, ctx, tu := newContext(t)

	if reports := k.Run(ctx, `nml.push(nml.text("hello"))`); reports.HasErrors() {
		t.Fatalf("unexpected guest errors: %v", reports)
	}

	elems := tu.EntryScope().Elements()
	if len(elems) != 1 {
		t.Fatalf("expected one pushed element, got %d", len(elems))
	}

	para, ok := elems[0].(scope.Paragraph)
	if !ok {
		t.Fatalf("expected the pushed text wrapped in a paragraph, got %T", elems[0])
	}

	text, ok := para.InnerScope().Elements()[0].(*elements.Text)
	if !ok || text.Content != "hello" {
		t.Fatalf("expected pushed text %q, got %+v", "hello", para.InnerScope().Elements()[0])
	}
}

func TestRunVariableRoundTrip(t *testing.T) {
	k, ctx, tu := newContext(t)

	if reports := k.Run(ctx, `nml.set_variable("x", "V", true)`); reports.HasErrors() {
		t.Fatalf("unexpected guest errors: %v", reports)
	}

	v, _, ok := tu.EntryScope().GetVariable("x")
	if !ok {
		t.Fatalf("expected the guest-set variable to be defined")
	}

	if v.Value != "V" || v.Visibility != refs.VisibilityExported {
		t.Fatalf("expected exported value %q, got %+v", "V", v)
	}

	if reports := k.Run(ctx, `nml.push(nml.text(nml.variable("x")))`); reports.HasErrors() {
		t.Fatalf("unexpected guest errors: %v", reports)
	}

	para, ok := tu.EntryScope().CurrentParagraph()
	if !ok {
		t.Fatalf("expected the read-back value pushed as text")
	}

	text := para.InnerScope().Elements()[0].(*elements.Text)
	if text.Content != "V" {
		t.Fatalf("expected read-back value %q, got %q", "V", text.Content)
	}
}

func TestRunScopeBuildsSubDocument(t *testing.T) {
	k, ctx, tu := newContext(t)

	guest := `nml.push(nml.scope(function()
		nml.push(nml.text("inner"))
	end))`

	if reports := k.Run(ctx, guest); reports.HasErrors() {
		t.Fatalf("unexpected guest errors: %v", reports)
	}

	elems := tu.EntryScope().Elements()
	if len(elems) != 1 {
		t.Fatalf("expected one scope element, got %d", len(elems))
	}

	se, ok := elems[0].(*elements.ScopeElement)
	if !ok {
		t.Fatalf("expected a ScopeElement, got %T", elems[0])
	}

	if len(se.Scopes()) != 1 || len(se.Scopes()[0].Elements()) == 0 {
		t.Fatalf("expected the sub-document to hold the inner push")
	}
}

func TestRunTrapIsConvertedToScriptError(t *testing.T) {
	k, ctx, _ := newContext(t)

	reports := k.Run(ctx, `error("boom")`)
	if !reports.HasErrors() {
		t.Fatalf("expected a script error report")
	}

	if reports[0].Kind != report.KindScriptError {
		t.Fatalf("expected KindScriptError, got %v", reports[0].Kind)
	}

	if !strings.Contains(reports[0].Message, "boom") {
		t.Fatalf("expected the guest message, got %q", reports[0].Message)
	}
}

func TestEvalReturnsExpressionResult(t *testing.T) {
	k, ctx, _ := newContext(t)

	got, reports := k.Eval(ctx, `1+1`)
	if reports.HasErrors() {
		t.Fatalf("unexpected guest errors: %v", reports)
	}

	if got != "2" {
		t.Fatalf("expected %q, got %q", "2", got)
	}
}
