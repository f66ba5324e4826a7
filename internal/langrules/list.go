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
	"strconv"

	"github.com/nml-lang/nmlc/internal/elements"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
)

// listItemPattern matches a single list item line: '*' for an unordered
// item, '-' for an ordered one, an optional `[key=val,...]` property block
// (meaningful on the first item only), and the item's inline text.
var listItemPattern = regexp.MustCompile(`(?m)^[ \t]*([*-])(\[([^\]]*)\])?[ \t]+([^\n]*)\n?`)

// ListRule recognises a run of consecutive list item lines sharing the same
// marker as a single List element.
type ListRule struct{ rules.RegexRule }

// NewListRule constructs the list rule.
func NewListRule() *ListRule { return &ListRule{rules.RegexRule{Pattern: listItemPattern}} }

// Name implements rules.Rule.
func (r *ListRule) Name() string { return "list" }

// Previous implements rules.Rule.
func (r *ListRule) Previous() string { return "section" }

// Target implements rules.Rule.
func (r *ListRule) Target() rules.Target { return rules.TargetBlock }

// Enabled implements rules.Rule.
func (r *ListRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return !mode.ParagraphOnly() }

// NextMatch implements rules.Rule.
func (r *ListRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule: consumes every consecutive item line
// sharing the first line's marker, parsing each item's text as its own
// bounded sub-scope so inline constructs (styles, links) work inside items.
func (r *ListRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	tu := asUnit(u)
	parent := tu.CurrentScope()
	src := cur.Source()

	var (
		reports report.Reports
		items   []*scope.Scope
		ordered bool
		offset  int
		first   = true
	)

	walker := cur

	for {
		remaining, loc := matchAt(listItemPattern, walker)
		if loc == nil {
			break
		}

		marker := group(remaining, loc, 1)
		isOrdered := marker == "-"

		if first {
			ordered = isOrdered

			if groupSet(loc, 2) {
				props := parseProperties(group(remaining, loc, 3))
				if v, ok := props["start"]; ok {
					if n, err := strconv.Atoi(v); err == nil {
						offset = n - 1
					}
				}
			}
		} else if isOrdered != ordered {
			break
		}

		whole := group(remaining, loc, 0)
		itemTextStart := walker.Offset() + byteToRune(remaining, loc[8])
		itemTextEnd := walker.Offset() + byteToRune(remaining, loc[9])

		item := parent.NestedInline()
		tu.PushScope(item)

		_, itemReports := rules.RunTo(tu.Rules(), tu, rules.NewParseMode().WithParagraphOnly(true),
			source.NewCursor(src, itemTextStart), itemTextEnd, emitText)
		reports = reports.Append(itemReports...)
		reports = reports.Append(item.EndOfScope()...)

		tu.PopScope()

		items = append(items, item)

		walker = walker.Advance(runeLen(whole))
		first = false
	}

	list := elements.NewList(cur.Token(walker.Offset()), ordered, offset, items)
	parent.AddContent(list)

	return walker, reports
}
