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
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/source"
)

// styleStateKey names the CustomState slot StyleRule attaches to a scope.
const styleStateKey = "style"

// stylePattern matches any style toggle marker: '**' bold, '*' italic,
// '__' underline, or '~name~' a custom style.
var stylePattern = regexp.MustCompile(`(\*\*)|(\*)|(__)|~([A-Za-z0-9_-]+)~`)

// StyleRule recognises inline style toggle markers.
type StyleRule struct{ rules.RegexRule }

// NewStyleRule constructs the style rule.
func NewStyleRule() *StyleRule { return &StyleRule{rules.RegexRule{Pattern: stylePattern}} }

// Name implements rules.Rule.
func (r *StyleRule) Name() string { return "style" }

// Previous implements rules.Rule.
func (r *StyleRule) Previous() string { return "" }

// Target implements rules.Rule.
func (r *StyleRule) Target() rules.Target { return rules.TargetInline }

// Enabled implements rules.Rule.
func (r *StyleRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return true }

// NextMatch implements rules.Rule.
func (r *StyleRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule: toggles the matched style in the current
// scope's StyleState, open or close depending on whether it was already
// open.
func (r *StyleRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	remaining, loc := matchAt(stylePattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	end := cur.Offset() + runeLen(whole)
	loc0 := cur.Token(end)

	kind := elements.StyleBold
	name := ""

	switch {
	case groupSet(loc, 1):
		kind = elements.StyleBold
	case groupSet(loc, 2):
		kind = elements.StyleItalic
	case groupSet(loc, 3):
		kind = elements.StyleUnderline
	default:
		kind = elements.StyleCustom
		name = group(remaining, loc, 4)
	}

	sc := asUnit(u).CurrentScope()

	state, ok := sc.GetState(styleStateKey)

	styleState, ok2 := state.(*elements.StyleState)
	if !ok || !ok2 {
		styleState = elements.NewStyleState()
		sc.SetState(styleStateKey, styleState)
	}

	closing := styleState.Toggle(kind, name, loc0)

	sc.AddContent(elements.NewStyle(loc0, kind, name, closing))

	return cur.Advance(runeLen(whole)), nil
}
