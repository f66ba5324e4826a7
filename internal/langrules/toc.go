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
	"strings"

	"github.com/nml-lang/nmlc/internal/elements"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/source"
)

// tocPattern matches the `#+TABLE_OF_CONTENT title` meta-directive.
var tocPattern = regexp.MustCompile(`(?m)^#\+TABLE_OF_CONTENT[ \t]+([^\n]*)\n?`)

// TableOfContentsRule recognises the table-of-contents directive. Its
// Sections field is left nil here: package compile fills it in from every
// Section recorded anywhere in the unit once parsing finishes, since the
// directive may appear before headings it should still list.
type TableOfContentsRule struct{ rules.RegexRule }

// NewTableOfContentsRule constructs the table-of-contents rule.
func NewTableOfContentsRule() *TableOfContentsRule {
	return &TableOfContentsRule{rules.RegexRule{Pattern: tocPattern}}
}

// Name implements rules.Rule.
func (r *TableOfContentsRule) Name() string { return "table_of_contents" }

// Previous implements rules.Rule.
func (r *TableOfContentsRule) Previous() string { return "section" }

// Target implements rules.Rule.
func (r *TableOfContentsRule) Target() rules.Target { return rules.TargetBlock }

// Enabled implements rules.Rule.
func (r *TableOfContentsRule) Enabled(u rules.Unit, mode rules.ParseMode) bool {
	return !mode.ParagraphOnly()
}

// NextMatch implements rules.Rule.
func (r *TableOfContentsRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule.
func (r *TableOfContentsRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	remaining, loc := matchAt(tocPattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	title := strings.TrimSpace(group(remaining, loc, 1))
	end := cur.Offset() + runeLen(whole)
	loc0 := cur.Token(end)

	toc := elements.NewTableOfContents(loc0, title, nil)
	asUnit(u).CurrentScope().AddContent(toc)

	return cur.Advance(runeLen(whole)), nil
}
