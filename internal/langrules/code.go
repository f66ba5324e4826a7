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
	"github.com/nml-lang/nmlc/internal/lspdata"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/source"
)

// codeFenceOpenPattern matches a fenced code block's opening line:
// "```LANG, TITLE". Both LANG and TITLE are optional.
var codeFenceOpenPattern = regexp.MustCompile("(?m)^```([A-Za-z0-9_+-]*)(,[ \\t]*([^\\n]*))?[ \\t]*\\n")

// codeFenceClosePattern matches the closing fence line.
var codeFenceClosePattern = regexp.MustCompile("(?m)^```[ \\t]*\\n?")

// CodeFenceRule recognises fenced block code.
type CodeFenceRule struct{ rules.RegexRule }

// NewCodeFenceRule constructs the fenced code rule.
func NewCodeFenceRule() *CodeFenceRule {
	return &CodeFenceRule{rules.RegexRule{Pattern: codeFenceOpenPattern}}
}

// Name implements rules.Rule.
func (r *CodeFenceRule) Name() string { return "code_fence" }

// Previous implements rules.Rule.
func (r *CodeFenceRule) Previous() string { return "section" }

// Target implements rules.Rule.
func (r *CodeFenceRule) Target() rules.Target { return rules.TargetBlock }

// Enabled implements rules.Rule.
func (r *CodeFenceRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return !mode.ParagraphOnly() }

// NextMatch implements rules.Rule.
func (r *CodeFenceRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule: captures raw content verbatim between the
// fences, with no recursive parsing (fenced code is never inline content).
func (r *CodeFenceRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	remaining, loc := matchAt(codeFenceOpenPattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	lang := group(remaining, loc, 1)
	title := strings.TrimSpace(group(remaining, loc, 3))

	bodyStart := cur.Offset() + runeLen(whole)
	src := cur.Source()
	content := src.Content()

	var reports report.Reports

	bodyEnd := len(content)
	afterClose := bodyEnd

	tail := string(content[bodyStart:])
	if closeLoc := codeFenceClosePattern.FindStringIndex(tail); closeLoc != nil {
		bodyEnd = bodyStart + byteToRune(tail, closeLoc[0])
		afterClose = bodyStart + byteToRune(tail, closeLoc[1])
	} else {
		reports = reports.Append(report.Newf(report.KindUnterminatedConstruct, cur.Token(bodyStart),
			"unterminated code fence"))
	}

	text := strings.TrimSuffix(string(content[bodyStart:bodyEnd]), "\n")

	code := elements.NewCode(cur.Token(afterClose), false, lang, title, 0, text)
	asUnit(u).CurrentScope().AddContent(code)

	if lang != "" {
		asUnit(u).LSP.AddCodeRange(source.NewSpan(bodyStart, bodyEnd), lang)
	}

	return source.NewCursor(src, afterClose), reports
}

// inlineCodePattern matches single-backtick inline code: `` `code` ``.
var inlineCodePattern = regexp.MustCompile("`([^`\\n]+)`")

// InlineCodeRule recognises inline code spans.
type InlineCodeRule struct{ rules.RegexRule }

// NewInlineCodeRule constructs the inline code rule.
func NewInlineCodeRule() *InlineCodeRule {
	return &InlineCodeRule{rules.RegexRule{Pattern: inlineCodePattern}}
}

// Name implements rules.Rule.
func (r *InlineCodeRule) Name() string { return "inline_code" }

// Previous implements rules.Rule.
func (r *InlineCodeRule) Previous() string { return "" }

// Target implements rules.Rule.
func (r *InlineCodeRule) Target() rules.Target { return rules.TargetInline }

// Enabled implements rules.Rule.
func (r *InlineCodeRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return true }

// NextMatch implements rules.Rule.
func (r *InlineCodeRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule.
func (r *InlineCodeRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	remaining, loc := matchAt(inlineCodePattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	text := group(remaining, loc, 1)

	end := cur.Offset() + runeLen(whole)

	code := elements.NewCode(cur.Token(end), true, "", "", 0, text)
	asUnit(u).CurrentScope().AddContent(code)
	asUnit(u).LSP.AddSemanticToken(source.NewSpan(cur.Offset(), end), lspdata.TokenString)

	return cur.Advance(runeLen(whole)), nil
}
