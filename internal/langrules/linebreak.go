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

// lineBreakPattern matches an explicit hard break: a backslash immediately
// before the line's newline.
var lineBreakPattern = regexp.MustCompile(`\\\n`)

// LineBreakRule recognises explicit hard breaks.
type LineBreakRule struct{ rules.RegexRule }

// NewLineBreakRule constructs the line-break rule.
func NewLineBreakRule() *LineBreakRule { return &LineBreakRule{rules.RegexRule{Pattern: lineBreakPattern}} }

// Name implements rules.Rule.
func (r *LineBreakRule) Name() string { return "linebreak" }

// Previous implements rules.Rule.
func (r *LineBreakRule) Previous() string { return "" }

// Target implements rules.Rule.
func (r *LineBreakRule) Target() rules.Target { return rules.TargetInline }

// Enabled implements rules.Rule.
func (r *LineBreakRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return true }

// NextMatch implements rules.Rule.
func (r *LineBreakRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule.
func (r *LineBreakRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	remaining, loc := matchAt(lineBreakPattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	loc0 := cur.Token(cur.Offset() + runeLen(whole))

	asUnit(u).CurrentScope().AddContent(elements.NewLineBreak(loc0))

	return cur.Advance(runeLen(whole)), nil
}
