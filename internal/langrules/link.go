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
	"github.com/nml-lang/nmlc/internal/refs"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
)

// linkPattern matches an external link: `[display](url)`. The display run may itself carry inline styles, so it is parsed
// recursively rather than captured as plain text.
var linkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)\n]*)\)`)

// LinkRule recognises external links.
type LinkRule struct{ rules.RegexRule }

// NewLinkRule constructs the external link rule.
func NewLinkRule() *LinkRule { return &LinkRule{rules.RegexRule{Pattern: linkPattern}} }

// Name implements rules.Rule.
func (r *LinkRule) Name() string { return "link" }

// Previous implements rules.Rule.
func (r *LinkRule) Previous() string { return "internal_link" }

// Target implements rules.Rule.
func (r *LinkRule) Target() rules.Target { return rules.TargetInline }

// Enabled implements rules.Rule.
func (r *LinkRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return true }

// NextMatch implements rules.Rule.
func (r *LinkRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule.
func (r *LinkRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	tu := asUnit(u)

	remaining, loc := matchAt(linkPattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	url := group(remaining, loc, 2)

	displayStart := cur.Offset() + byteToRune(remaining, loc[2])
	displayEnd := cur.Offset() + byteToRune(remaining, loc[3])

	parent := tu.CurrentScope()
	display := parent.NestedInline()
	tu.PushScope(display)

	src := cur.Source()
	_, reports := rules.RunTo(tu.Rules(), tu, rules.NewParseMode().WithParagraphOnly(true),
		source.NewCursor(src, displayStart), displayEnd, emitText)
	reports = reports.Append(display.EndOfScope()...)

	tu.PopScope()

	link := elements.NewLink(cur.Token(cur.Offset()+runeLen(whole)), url, display)
	parent.AddContent(link)

	return cur.Advance(runeLen(whole)), reports
}

// internalLinkPattern matches an internal reference: `&{refname}` or
// `&{refname|Display text}`.
var internalLinkPattern = regexp.MustCompile(`&\{([^}|]+)(\|([^}]*))?\}`)

// InternalLinkRule recognises internal cross-references.
type InternalLinkRule struct{ rules.RegexRule }

// NewInternalLinkRule constructs the internal-link rule.
func NewInternalLinkRule() *InternalLinkRule {
	return &InternalLinkRule{rules.RegexRule{Pattern: internalLinkPattern}}
}

// Name implements rules.Rule.
func (r *InternalLinkRule) Name() string { return "internal_link" }

// Previous implements rules.Rule.
func (r *InternalLinkRule) Previous() string { return "" }

// Target implements rules.Rule.
func (r *InternalLinkRule) Target() rules.Target { return rules.TargetInline }

// Enabled implements rules.Rule.
func (r *InternalLinkRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return true }

// NextMatch implements rules.Rule.
func (r *InternalLinkRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule.
func (r *InternalLinkRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	tu := asUnit(u)

	remaining, loc := matchAt(internalLinkPattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	raw := group(remaining, loc, 1)
	end := cur.Offset() + runeLen(whole)
	loc0 := cur.Token(end)

	var reports report.Reports

	want, err := refs.ParseRefname(raw)
	if err != nil {
		reports = reports.Append(report.Newf(report.KindInvalidRefname, loc0, "invalid reference %q: %s", raw, err))
	}

	parent := tu.CurrentScope()

	var display *scope.Scope

	if groupSet(loc, 2) {
		displayStart := cur.Offset() + byteToRune(remaining, loc[6])
		displayEnd := cur.Offset() + byteToRune(remaining, loc[7])

		child := parent.NestedInline()
		tu.PushScope(child)

		src := cur.Source()
		_, dispReports := rules.RunTo(tu.Rules(), tu, rules.NewParseMode().WithParagraphOnly(true),
			source.NewCursor(src, displayStart), displayEnd, emitText)
		reports = reports.Append(dispReports...)
		reports = reports.Append(child.EndOfScope()...)

		tu.PopScope()

		display = child
	}

	link := elements.NewInternalLink(loc0, want, referenceDisplayStyle(parent), display)
	parent.AddContent(link)

	return cur.Advance(runeLen(whole)), reports
}

// referenceDisplayStyle reads the document-wide `reference_display`
// variable ("raw", "title" or "numbered") that controls how a resolved
// InternalLink falls back to its display text when the author supplied no
// explicit display run. Unset or unrecognised values fall back to
// DisplayRaw.
func referenceDisplayStyle(sc *scope.Scope) elements.DisplayStyle {
	v, _, ok := sc.GetVariable("reference_display")
	if !ok {
		return elements.DisplayRaw
	}

	switch v.Value {
	case "title":
		return elements.DisplayTitle
	case "numbered":
		return elements.DisplayNumbered
	default:
		return elements.DisplayRaw
	}
}

// anchorPattern matches `:anchor name:`.
var anchorPattern = regexp.MustCompile(`:anchor[ \t]+([A-Za-z0-9_.-]+):`)

// AnchorRule recognises anchor markers.
type AnchorRule struct{ rules.RegexRule }

// NewAnchorRule constructs the anchor rule.
func NewAnchorRule() *AnchorRule { return &AnchorRule{rules.RegexRule{Pattern: anchorPattern}} }

// Name implements rules.Rule.
func (r *AnchorRule) Name() string { return "anchor" }

// Previous implements rules.Rule.
func (r *AnchorRule) Previous() string { return "" }

// Target implements rules.Rule.
func (r *AnchorRule) Target() rules.Target { return rules.TargetInline }

// Enabled implements rules.Rule.
func (r *AnchorRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return true }

// NextMatch implements rules.Rule.
func (r *AnchorRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule.
func (r *AnchorRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	remaining, loc := matchAt(anchorPattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	name := group(remaining, loc, 1)
	loc0 := cur.Token(cur.Offset() + runeLen(whole))

	var reports report.Reports

	refname, err := refs.ParseRefname(name)
	if err != nil {
		reports = reports.Append(report.Newf(report.KindInvalidRefname, loc0, "invalid anchor name %q: %s", name, err))
	}

	anchor := elements.NewAnchor(loc0, refname, name)
	asUnit(u).CurrentScope().AddContent(anchor)

	return cur.Advance(runeLen(whole)), reports
}
