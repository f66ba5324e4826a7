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

// commentPattern matches a comment: `::` at the start of a line consumes
// the whole line, while a mid-line `::` after whitespace is a comment only
// when text follows it immediately (`T ::note`) — `NOT :: cmp` stays
// literal paragraph text.
var commentPattern = regexp.MustCompile(`(?m)(?:^[ \t]*::[^\n]*|[ \t]::[^ \t\n][^\n]*)\n?`)

// CommentRule recognises line comments.
type CommentRule struct{ rules.RegexRule }

// NewCommentRule constructs the comment rule.
func NewCommentRule() *CommentRule { return &CommentRule{rules.RegexRule{Pattern: commentPattern}} }

// Name implements rules.Rule.
func (r *CommentRule) Name() string { return "comment" }

// Previous implements rules.Rule.
func (r *CommentRule) Previous() string { return "" }

// Target implements rules.Rule.
func (r *CommentRule) Target() rules.Target { return rules.TargetMeta }

// Enabled implements rules.Rule.
func (r *CommentRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return true }

// NextMatch implements rules.Rule.
func (r *CommentRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule.
func (r *CommentRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	remaining, loc := matchAt(commentPattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimLeft(whole, " \t"), "::"))
	end := cur.Offset() + runeLen(whole)
	loc0 := cur.Token(end)

	asUnit(u).CurrentScope().AddContent(elements.NewComment(loc0, text))
	asUnit(u).LSP.AddSemanticToken(source.NewSpan(cur.Offset(), end), lspdata.TokenComment)

	return cur.Advance(runeLen(whole)), nil
}
