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
	"strings"

	"github.com/nml-lang/nmlc/internal/elements"
	"github.com/nml-lang/nmlc/internal/lspdata"
	"github.com/nml-lang/nmlc/internal/refs"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/source"
)

// sectionPattern matches a heading line: 1-6 '#', optional '!' (NoNumber)
// and '~' (NoToc) flags, a title, and an optional trailing `{refname}`.
var sectionPattern = regexp.MustCompile(`(?m)^(#{1,6})(!)?(~)?[ \t]+([^\n{]*?)[ \t]*(\{([^}]*)\})?[ \t]*\n?`)

// SectionRule recognises headings and recursively parses their body up to
// the next heading of equal or shallower depth.
type SectionRule struct{ rules.RegexRule }

// NewSectionRule constructs the heading rule.
func NewSectionRule() *SectionRule { return &SectionRule{rules.RegexRule{Pattern: sectionPattern}} }

// Name implements rules.Rule.
func (r *SectionRule) Name() string { return "section" }

// Previous implements rules.Rule.
func (r *SectionRule) Previous() string { return "" }

// Target implements rules.Rule.
func (r *SectionRule) Target() rules.Target { return rules.TargetBlock }

// Enabled implements rules.Rule.
func (r *SectionRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return !mode.ParagraphOnly() }

// NextMatch implements rules.Rule.
func (r *SectionRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule: captures the heading, then recursively
// parses the section body bounded by the next same-or-shallower heading.
func (r *SectionRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	tu := asUnit(u)

	remaining, loc := matchAt(sectionPattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	headingEnd := cur.Offset() + runeLen(whole)

	depth := loc[3] - loc[2]
	noNumber := groupSet(loc, 2)
	noToc := groupSet(loc, 3)
	title := strings.TrimSpace(group(remaining, loc, 4))

	var (
		refname    refs.Refname
		hasRefname bool
		reports    report.Reports
	)

	headingTok := cur.Token(headingEnd)

	markerEndByte := loc[3]
	if groupSet(loc, 2) {
		markerEndByte = loc[5]
	}

	if groupSet(loc, 3) {
		markerEndByte = loc[7]
	}

	markerEnd := cur.Offset() + byteToRune(remaining, markerEndByte)
	tu.LSP.AddSemanticToken(source.NewSpan(cur.Offset(), markerEnd), lspdata.TokenKeyword)

	if groupSet(loc, 5) {
		raw := group(remaining, loc, 6)

		parsed, err := refs.ParseRefname(raw)
		if err != nil {
			reports = reports.Append(report.Newf(report.KindInvalidRefname, headingTok, "invalid section refname: %s", err))
		} else {
			refname, hasRefname = parsed, true
		}
	}

	src := cur.Source()
	content := src.Content()

	bodyEnd := len(content)
	if idx, ok := findNextHeadingAtOrAbove(content[headingEnd:], depth); ok {
		bodyEnd = headingEnd + idx
	}

	parent := tu.CurrentScope()
	child := parent.Nested()
	tu.PushScope(child)

	_, bodyReports := rules.RunTo(tu.Rules(), tu, rules.NewParseMode(), source.NewCursor(src, headingEnd), bodyEnd, emitText)
	reports = reports.Append(bodyReports...)
	reports = reports.Append(child.EndOfScope()...)

	tu.PopScope()

	section := elements.NewSection(headingTok, depth, title, noNumber, noToc, refname, hasRefname, child)
	parent.AddContent(section)

	return source.NewCursor(src, bodyEnd), reports
}

// findNextHeadingAtOrAbove searches text for the next heading line whose
// depth is <= maxDepth, returning its rune offset within text.
func findNextHeadingAtOrAbove(text []rune, maxDepth int) (int, bool) {
	s := string(text)

	pattern := regexp.MustCompile(fmt.Sprintf(`(?m)^#{1,%d}[ \t!~]`, maxDepth))

	loc := pattern.FindStringIndex(s)
	if loc == nil {
		return 0, false
	}

	return byteToRune(s, loc[0]), true
}
