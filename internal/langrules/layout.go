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

// graphOpenPattern matches the opening tag of a graph layout:
// `[graph][engine=dot,width=100%]`; both properties are
// optional.
var graphOpenPattern = regexp.MustCompile(`(?m)^\[graph\](\[([^\]]*)\])?[ \t]*\n?`)

// graphClosePattern matches the closing tag.
var graphClosePattern = regexp.MustCompile(`(?m)^\[/graph\][ \t]*\n?`)

// GraphvizRule recognises graph layout blocks, whose rendering is deferred
// to an async compile task.
type GraphvizRule struct{ rules.RegexRule }

// NewGraphvizRule constructs the graph layout rule.
func NewGraphvizRule() *GraphvizRule { return &GraphvizRule{rules.RegexRule{Pattern: graphOpenPattern}} }

// Name implements rules.Rule.
func (r *GraphvizRule) Name() string { return "graphviz" }

// Previous implements rules.Rule.
func (r *GraphvizRule) Previous() string { return "section" }

// Target implements rules.Rule.
func (r *GraphvizRule) Target() rules.Target { return rules.TargetBlock }

// Enabled implements rules.Rule.
func (r *GraphvizRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return !mode.ParagraphOnly() }

// NextMatch implements rules.Rule.
func (r *GraphvizRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule.
func (r *GraphvizRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	remaining, loc := matchAt(graphOpenPattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	props := parseProperties(group(remaining, loc, 2))

	bodyStart := cur.Offset() + runeLen(whole)
	src := cur.Source()
	content := src.Content()

	var reports report.Reports

	bodyEnd := len(content)
	afterClose := bodyEnd

	tail := string(content[bodyStart:])
	if closeLoc := graphClosePattern.FindStringIndex(tail); closeLoc != nil {
		bodyEnd = bodyStart + byteToRune(tail, closeLoc[0])
		afterClose = bodyStart + byteToRune(tail, closeLoc[1])
	} else {
		reports = reports.Append(report.Newf(report.KindUnterminatedConstruct, cur.Token(bodyStart), "unterminated graph layout"))
	}

	graphSrc := string(content[bodyStart:bodyEnd])

	graph := elements.NewGraphviz(cur.Token(afterClose), props["engine"], props["width"], graphSrc, nil)
	asUnit(u).CurrentScope().AddContent(graph)

	return source.NewCursor(src, afterClose), reports
}

// latexOpenPattern matches the opening tag of a LaTeX environment block:
// `[latex][env=NAME]`.
var latexOpenPattern = regexp.MustCompile(`(?m)^\[latex\](\[([^\]]*)\])?[ \t]*\n?`)

// latexClosePattern matches the closing tag.
var latexClosePattern = regexp.MustCompile(`(?m)^\[/latex\][ \t]*\n?`)

// LatexRule recognises block LaTeX environments.
type LatexRule struct{ rules.RegexRule }

// NewLatexRule constructs the LaTeX block rule.
func NewLatexRule() *LatexRule { return &LatexRule{rules.RegexRule{Pattern: latexOpenPattern}} }

// Name implements rules.Rule.
func (r *LatexRule) Name() string { return "latex" }

// Previous implements rules.Rule.
func (r *LatexRule) Previous() string { return "section" }

// Target implements rules.Rule.
func (r *LatexRule) Target() rules.Target { return rules.TargetBlock }

// Enabled implements rules.Rule.
func (r *LatexRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return !mode.ParagraphOnly() }

// NextMatch implements rules.Rule.
func (r *LatexRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule.
func (r *LatexRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	remaining, loc := matchAt(latexOpenPattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	props := parseProperties(group(remaining, loc, 2))

	bodyStart := cur.Offset() + runeLen(whole)
	src := cur.Source()
	content := src.Content()

	var reports report.Reports

	bodyEnd := len(content)
	afterClose := bodyEnd

	tail := string(content[bodyStart:])
	if closeLoc := latexClosePattern.FindStringIndex(tail); closeLoc != nil {
		bodyEnd = bodyStart + byteToRune(tail, closeLoc[0])
		afterClose = bodyStart + byteToRune(tail, closeLoc[1])
	} else {
		reports = reports.Append(report.Newf(report.KindUnterminatedConstruct, cur.Token(bodyStart), "unterminated latex layout"))
	}

	latexSrc := string(content[bodyStart:bodyEnd])

	latex := elements.NewLatex(cur.Token(afterClose), false, props["env"], latexSrc, nil)
	asUnit(u).CurrentScope().AddContent(latex)

	return source.NewCursor(src, afterClose), reports
}

// latexInlinePattern matches inline math: `$...$`.
var latexInlinePattern = regexp.MustCompile(`\$([^$\n]+)\$`)

// LatexInlineRule recognises inline math spans.
type LatexInlineRule struct{ rules.RegexRule }

// NewLatexInlineRule constructs the inline math rule.
func NewLatexInlineRule() *LatexInlineRule {
	return &LatexInlineRule{rules.RegexRule{Pattern: latexInlinePattern}}
}

// Name implements rules.Rule.
func (r *LatexInlineRule) Name() string { return "latex_inline" }

// Previous implements rules.Rule.
func (r *LatexInlineRule) Previous() string { return "" }

// Target implements rules.Rule.
func (r *LatexInlineRule) Target() rules.Target { return rules.TargetInline }

// Enabled implements rules.Rule.
func (r *LatexInlineRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return true }

// NextMatch implements rules.Rule.
func (r *LatexInlineRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule.
func (r *LatexInlineRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	remaining, loc := matchAt(latexInlinePattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	math := group(remaining, loc, 1)

	latex := elements.NewLatex(cur.Token(cur.Offset()+runeLen(whole)), true, "", math, nil)
	asUnit(u).CurrentScope().AddContent(latex)

	return cur.Advance(runeLen(whole)), nil
}
