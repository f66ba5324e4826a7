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
	"regexp"

	"github.com/nml-lang/nmlc/internal/elements"
	"github.com/nml-lang/nmlc/internal/lspdata"
	"github.com/nml-lang/nmlc/internal/refs"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
)

// setVariablePattern matches `:set name = value` / `:export name = value`
//, with value forms: a triple-quoted multi-line
// string, a double- or single-quoted string, a `{{ ... }}` raw block, or a
// bare unquoted remainder of the line.
var setVariablePattern = regexp.MustCompile(`(?m)^:(set|export)[ \t]+([A-Za-z_][A-Za-z0-9_.]*)[ \t]*=[ \t]*(?:'''([\s\S]*?)'''|"([^"\n]*)"|'([^'\n]*)'|\{\{([\s\S]*?)\}\}|([^\n]*))[ \t]*\n?`)

// SetVariableRule recognises :set/:export directives.
type SetVariableRule struct{ rules.RegexRule }

// NewSetVariableRule constructs the variable-definition rule.
func NewSetVariableRule() *SetVariableRule {
	return &SetVariableRule{rules.RegexRule{Pattern: setVariablePattern}}
}

// Name implements rules.Rule.
func (r *SetVariableRule) Name() string { return "set_variable" }

// Previous implements rules.Rule.
func (r *SetVariableRule) Previous() string { return "" }

// Target implements rules.Rule.
func (r *SetVariableRule) Target() rules.Target { return rules.TargetCommand }

// Enabled implements rules.Rule.
func (r *SetVariableRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return true }

// NextMatch implements rules.Rule.
func (r *SetVariableRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule.
func (r *SetVariableRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	remaining, loc := matchAt(setVariablePattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	directive := group(remaining, loc, 1)
	name := group(remaining, loc, 2)

	end := cur.Offset() + runeLen(whole)
	loc0 := cur.Token(end)

	value := ""
	valueTok := loc0

	for _, gi := range []int{3, 4, 5, 6, 7} {
		if groupSet(loc, gi) {
			value = group(remaining, loc, gi)
			valueTok = source.NewToken(cur.Source(), source.NewSpan(
				cur.Offset()+byteToRune(remaining, loc[2*gi]),
				cur.Offset()+byteToRune(remaining, loc[2*gi+1])))

			break
		}
	}

	vis := refs.VisibilityInternal
	if directive == "export" {
		vis = refs.VisibilityExported
	}

	newText := func(loc source.Token, text string) scope.Element { return elements.NewText(loc, text) }
	v := scope.NewTextVariable(name, vis, refs.Mutable, loc0, valueTok, value, newText)

	tu := asUnit(u)
	sc := tu.CurrentScope()

	var reports report.Reports

	if !sc.DefineVariable(v) {
		reports = reports.Append(report.Newf(report.KindVariableError, loc0, "%q is immutable in this scope", name))
	} else {
		sc.AddContent(elements.NewVariableDefinition(loc0, name))
	}

	nameStart := cur.Offset() + byteToRune(remaining, loc[4])
	nameEnd := cur.Offset() + byteToRune(remaining, loc[5])
	tu.LSP.AddSemanticToken(source.NewSpan(nameStart, nameEnd), lspdata.TokenVariable)

	return cur.Advance(runeLen(whole)), reports
}

// substitutionPattern matches a variable use site: `%name%`.
var substitutionPattern = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)

// SubstitutionRule recognises variable substitution sites.
type SubstitutionRule struct{ rules.RegexRule }

// NewSubstitutionRule constructs the substitution rule.
func NewSubstitutionRule() *SubstitutionRule {
	return &SubstitutionRule{rules.RegexRule{Pattern: substitutionPattern}}
}

// Name implements rules.Rule.
func (r *SubstitutionRule) Name() string { return "variable_substitution" }

// Previous implements rules.Rule.
func (r *SubstitutionRule) Previous() string { return "" }

// Target implements rules.Rule.
func (r *SubstitutionRule) Target() rules.Target { return rules.TargetInline }

// Enabled implements rules.Rule.
func (r *SubstitutionRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return true }

// NextMatch implements rules.Rule.
func (r *SubstitutionRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule: resolves name against the current scope
// chain at parse time, but defers expansion to compile time (the variable
// may be redefined again before the unit finishes compiling) by capturing
// its Expand procedure.
func (r *SubstitutionRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	remaining, loc := matchAt(substitutionPattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	name := group(remaining, loc, 1)
	loc0 := cur.Token(cur.Offset() + runeLen(whole))

	tu := asUnit(u)
	sc := tu.CurrentScope()

	span := source.NewSpan(cur.Offset(), cur.Offset()+runeLen(whole))
	tu.LSP.AddSemanticToken(span, lspdata.TokenVariable)

	v, _, ok := sc.GetVariable(name)
	if !ok {
		sc.AddContent(elements.NewText(loc0, whole))

		return cur.Advance(runeLen(whole)), report.Reports{
			report.Newf(report.KindVariableError, loc0, "undefined variable %q", name),
		}
	}

	tu.LSP.AddHover(span, v.Value)

	sc.AddContent(elements.NewVariableSubstitution(loc0, name, v.Expand))

	return cur.Advance(runeLen(whole)), nil
}
