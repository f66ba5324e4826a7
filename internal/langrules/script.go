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

package langrules

import (
	"fmt"
	"regexp"

	"github.com/nml-lang/nmlc/internal/elements"
	"github.com/nml-lang/nmlc/internal/kernel"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/source"
	"github.com/nml-lang/nmlc/internal/unit"
)

// scriptPattern matches the three embedded-script forms:
//
//	%<[kernel]MOD code >%   eval form; MOD '"' injects the result as text,
//	                        MOD '!' parses the result as markup
//	@<kernel                definition form; executes statements with no
//	  code                  output (the kernel name is optional)
//	>@
//	{:lua[kernel] code :}   long form, statements like the definition form
//
// The kernel defaults to "main" everywhere.
var scriptPattern = regexp.MustCompile(
	`(?s)%<(?:\[([A-Za-z_][A-Za-z0-9_-]*)\])?([!"])?(.*?)>%` +
		`|@<([A-Za-z_][A-Za-z0-9_-]*)?\n(.*?)>@` +
		`|\{:lua(?:\[([A-Za-z_][A-Za-z0-9_-]*)\])?[ \t\n](.*?):\}`)

// ScriptRule recognises embedded script kernel invocations.
type ScriptRule struct{ rules.RegexRule }

// NewScriptRule constructs the script rule.
func NewScriptRule() *ScriptRule { return &ScriptRule{rules.RegexRule{Pattern: scriptPattern}} }

// Name implements rules.Rule.
func (r *ScriptRule) Name() string { return "script" }

// Previous implements rules.Rule.
func (r *ScriptRule) Previous() string { return "" }

// Target implements rules.Rule.
func (r *ScriptRule) Target() rules.Target { return rules.TargetCommand }

// Enabled implements rules.Rule: disabled inside a script-injected fragment
// that has itself disallowed further scripting.
func (r *ScriptRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return !mode.NoScripts() }

// NextMatch implements rules.Rule.
func (r *ScriptRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule: identifies (or lazily creates) the named
// kernel, installs a KernelContext bracketing the invoking scope and parse
// location, and runs the guest source. The '"' modifier injects the guest's
// result as a text element; the '!' modifier feeds it back into the parser
// as a derived source, so script output can carry arbitrary markup.
func (r *ScriptRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	remaining, loc := matchAt(scriptPattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	loc0 := cur.Token(cur.Offset() + runeLen(whole))

	var (
		name, mod, guestSource string
		eval                   bool
	)

	switch {
	case groupSet(loc, 3):
		name, mod, guestSource = group(remaining, loc, 1), group(remaining, loc, 2), group(remaining, loc, 3)
		eval = true
	case groupSet(loc, 5):
		name, guestSource = group(remaining, loc, 4), group(remaining, loc, 5)
	default:
		name, guestSource = group(remaining, loc, 6), group(remaining, loc, 7)
	}

	if name == "" {
		name = "main"
	}

	tu := asUnit(u)

	handle, ok := tu.Kernel(name)
	if !ok {
		k := kernel.New(name, nil)
		tu.RegisterKernel(k)
		handle = k
	}

	ctx := &unit.KernelContext{Unit: tu, Scope: tu.CurrentScope(), Location: loc0}

	if !eval {
		return cur.Advance(runeLen(whole)), handle.Run(ctx, guestSource)
	}

	result, reports := handle.Eval(ctx, guestSource)
	if reports.HasErrors() || mod == "" {
		return cur.Advance(runeLen(whole)), reports
	}

	if mod == `"` || result == "" {
		if result != "" {
			tu.CurrentScope().AddContent(elements.NewText(loc0, result))
		}

		return cur.Advance(runeLen(whole)), reports
	}

	// '!' re-enters the parser with the result as a derived source, so
	// diagnostics inside it still resolve back to the invoking span.
	derived := source.NewVirtual(fmt.Sprintf("%s!script", cur.Source().Name()),
		[]rune(result), loc0, source.TransformScriptOutput)

	_, parseReports := rules.Run(tu.Rules(), tu,
		rules.NewParseMode().WithNoImports(true), source.NewCursor(derived, 0), emitText)
	reports = reports.Append(parseReports...)

	return cur.Advance(runeLen(whole)), reports
}
