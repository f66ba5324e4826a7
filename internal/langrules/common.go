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

// Package langrules implements the concrete NML grammar as
// rules.Rule registrations: section headings, lists, admonition blocks,
// fenced code, inline styles, links, anchors, imports, variables and script
// kernel invocations. The dispatch engine (package rules) stays free of
// grammar knowledge; every concrete production lives in its own small
// Rule type here.
package langrules

import (
	"regexp"
	"strings"

	"github.com/nml-lang/nmlc/internal/elements"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/source"
	"github.com/nml-lang/nmlc/internal/unit"
)

// asUnit recovers the concrete translation unit a Rule needs beyond the
// minimal rules.Unit view the engine passes around: variable lookup, scope
// nesting, kernels and imports (rules/rule.go's Unit doc comment describes
// this as the expected pattern).
func asUnit(u rules.Unit) *unit.TranslationUnit { return u.(*unit.TranslationUnit) }

// EmitText is the package's rules.EmitText, exported so package project's
// top-level parse driver can feed it to rules.Run directly rather than
// duplicating the text-interception logic.
var EmitText rules.EmitText = emitText

// emitText implements rules.EmitText: the gap between two matches becomes a
// Text element in the current scope.
func emitText(u rules.Unit, span source.Token) report.Reports {
	text := tokenText(span)
	if text == "" {
		return nil
	}

	u.CurrentScope().AddContent(elements.NewText(span, text))

	return nil
}

// tokenText returns the raw text covered by tok.
func tokenText(tok source.Token) string {
	span := tok.Span()
	return string(tok.Source().Content()[span.Start():span.End()])
}

// runeLen counts s's runes (regexp byte offsets must be converted to rune
// offsets before being applied to a Cursor, which addresses runes).
func runeLen(s string) int { return len([]rune(s)) }

// byteToRune converts a byte offset within s into the equivalent rune
// offset, mirroring rules.RegexRule's own offset translation.
func byteToRune(s string, byteIdx int) int {
	return runeLen(s[:byteIdx])
}

// matchAt re-runs pattern against cur's remaining input, which the engine
// has already established matches starting exactly at cur (via the rule's
// NextMatch). Returns the remaining text (so callers can slice submatches)
// and the submatch index pairs, or a nil loc if pattern unexpectedly failed
// to match at offset zero.
func matchAt(pattern *regexp.Regexp, cur source.Cursor) (string, []int) {
	remaining := string(cur.Remaining())

	loc := pattern.FindStringSubmatchIndex(remaining)
	if loc == nil || loc[0] != 0 {
		return remaining, nil
	}

	return remaining, loc
}

// group returns submatch i's text from remaining/loc, or "" if that group
// didn't participate in the match.
func group(remaining string, loc []int, i int) string {
	if loc == nil || 2*i+1 >= len(loc) || loc[2*i] < 0 {
		return ""
	}

	return remaining[loc[2*i]:loc[2*i+1]]
}

// groupSet reports whether submatch i participated in the match.
func groupSet(loc []int, i int) bool {
	return loc != nil && 2*i+1 < len(loc) && loc[2*i] >= 0
}

// parseProperties parses a minimal `key=val,key2=val2` property list, as
// used by list offset/ordering and block admonition titles.
// Values may be bare words or single/double-quoted.
func parseProperties(raw string) map[string]string {
	props := map[string]string{}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		kv := strings.SplitN(part, "=", 2)
		key := strings.TrimSpace(kv[0])

		if key == "" {
			continue
		}

		if len(kv) == 1 {
			props[key] = "true"
			continue
		}

		val := strings.TrimSpace(kv[1])
		val = strings.Trim(val, `"'`)
		props[key] = val
	}

	return props
}
