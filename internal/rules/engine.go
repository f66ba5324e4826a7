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

package rules

import (
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/source"
)

// match pairs a candidate rule with where and how it matched.
type match struct {
	rule   Rule
	offset int
	data   MatchData
}

// EmitText is invoked by the dispatch loop to materialize the gap between
// two real matches (or the tail of the source) as a Text element; the
// engine itself never constructs elements directly, keeping this package free of a
// dependency on the element library.
type EmitText func(u Unit, span source.Token) report.Reports

// Run drives the dispatch loop over a single scope's remaining input,
// starting at cur, until EOF.  It does not run end-of-scope/end-of-document
// callbacks; callers invoke those on the scope once Run returns.
func Run(rs *RuleSet, u Unit, mode ParseMode, cur source.Cursor, emit EmitText) (source.Cursor, report.Reports) {
	return RunTo(rs, u, mode, cur, -1, emit)
}

// RunTo drives the dispatch loop like Run, but stops at the earlier of EOF
// or the byte offset end (a nested scope's body boundary: a section's next
// same-or-shallower heading, a list item's next marker, a block's closing
// fence). end<0 means "no bound", equivalent to Run. A rule match starting
// at or after end is treated as not found, so the bounding construct's own
// marker is left for the caller (typically the enclosing rule's own
// NextMatch) to match next.
func RunTo(rs *RuleSet, u Unit, mode ParseMode, cur source.Cursor, end int, emit EmitText) (source.Cursor, report.Reports) {
	var reports report.Reports

	limit := len(cur.Source().Content())
	if end >= 0 && end < limit {
		limit = end
	}

	for cur.Offset() < limit {
		best, found := selectMatch(rs, u, mode, cur)
		if !found || best.offset >= limit {
			reports = reports.Append(emit(u, cur.Token(limit))...)

			return source.NewCursor(cur.Source(), limit), reports
		}

		if best.offset > cur.Offset() {
			reports = reports.Append(emit(u, cur.Token(best.offset))...)
		}

		matchCur := source.NewCursor(cur.Source(), best.offset)

		next, ruleReports := best.rule.OnMatch(u, matchCur, best.data)
		reports = reports.Append(ruleReports...)
		cur = next
	}

	return cur, reports
}

// selectMatch queries every enabled rule for its next match and returns
// the one with the smallest start offset, breaking ties by the RuleSet's
// priority order (earlier in rs.Rules() wins).
func selectMatch(rs *RuleSet, u Unit, mode ParseMode, cur source.Cursor) (match, bool) {
	var (
		best  match
		found bool
	)

	for _, r := range rs.Rules() {
		if !r.Enabled(u, mode) {
			continue
		}

		offset, data, ok := r.NextMatch(u, mode, cur)
		if !ok {
			continue
		}

		if !found || offset < best.offset {
			best = match{r, offset, data}
			found = true
		}
		// Equal offset: earlier rule in priority order already selected,
		// since we only replace best on a strictly smaller offset.
	}

	return best, found
}
