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

// blockOpenPattern matches a typed admonition block's opening marker:
// `>[!Type][key=val,...]`.
var blockOpenPattern = regexp.MustCompile(`(?m)^>\[!([A-Za-z0-9_-]+)\](\[([^\]]*)\])?[ \t]*\n?`)

// blockClosePattern matches the closing marker `>[/]`.
var blockClosePattern = regexp.MustCompile(`(?m)^>\[/\][ \t]*\n?`)

// BlockRule recognises typed admonition/quote blocks.
type BlockRule struct{ rules.RegexRule }

// NewBlockRule constructs the block rule.
func NewBlockRule() *BlockRule { return &BlockRule{rules.RegexRule{Pattern: blockOpenPattern}} }

// Name implements rules.Rule.
func (r *BlockRule) Name() string { return "block" }

// Previous implements rules.Rule.
func (r *BlockRule) Previous() string { return "section" }

// Target implements rules.Rule.
func (r *BlockRule) Target() rules.Target { return rules.TargetBlock }

// Enabled implements rules.Rule.
func (r *BlockRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return !mode.ParagraphOnly() }

// NextMatch implements rules.Rule.
func (r *BlockRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule: parses the body up to the matching `>[/]`
// marker (or end of source, if unterminated), recursively.
func (r *BlockRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	tu := asUnit(u)

	remaining, loc := matchAt(blockOpenPattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	blockType := group(remaining, loc, 1)
	props := parseProperties(group(remaining, loc, 3))

	bodyStart := cur.Offset() + runeLen(whole)
	src := cur.Source()
	content := src.Content()

	var reports report.Reports

	bodyEnd := len(content)
	afterClose := bodyEnd

	tail := string(content[bodyStart:])
	if closeLoc := blockClosePattern.FindStringIndex(tail); closeLoc != nil {
		bodyEnd = bodyStart + byteToRune(tail, closeLoc[0])
		afterClose = bodyStart + byteToRune(tail, closeLoc[1])
	} else {
		reports = reports.Append(report.Newf(report.KindUnterminatedConstruct, cur.Token(bodyStart),
			"unterminated block %q", blockType))
	}

	parent := tu.CurrentScope()
	child := parent.Nested()
	tu.PushScope(child)

	_, bodyReports := rules.RunTo(tu.Rules(), tu, rules.NewParseMode(), source.NewCursor(src, bodyStart), bodyEnd, emitText)
	reports = reports.Append(bodyReports...)
	reports = reports.Append(child.EndOfScope()...)

	tu.PopScope()

	block := elements.NewBlock(cur.Token(bodyStart), blockType, props, child)
	parent.AddContent(block)

	return source.NewCursor(src, afterClose), reports
}
