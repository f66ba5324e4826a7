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

// Package compile implements the tree-walk compile pipeline: it walks a translation unit's entry scope, produces an HTML
// buffer with async task placeholders, then awaits and splices those tasks
// back in reverse-offset order using a content buffer plus a list of
// pending (offset, task) pairs, dispatched over goroutines and channels.
package compile

import "strings"

// Sanitize escapes s for HTML textual output: & < > " map to
// their named entities, in that order so an already-escaped "&amp;" is not
// double-escaped by a later rule matching its own output.
func Sanitize(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)

	return r.Replace(s)
}

// SanitizeFormat sanitizes s like Sanitize but passes the content of
// matched `{...}` pairs through unescaped, so format placeholders embedded
// in otherwise-sanitized text survive.
func SanitizeFormat(s string) string {
	var out strings.Builder

	depth := 0
	start := 0

	flushPlain := func(end int) {
		out.WriteString(Sanitize(s[start:end]))
	}

	for i, r := range s {
		switch r {
		case '{':
			if depth == 0 {
				flushPlain(i)
				start = i
			}

			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					out.WriteString(s[start : i+1])
					start = i + 1
				}
			}
		}
	}

	if depth == 0 {
		flushPlain(len(s))
	} else {
		// Unterminated '{': treat the dangling run as plain text rather
		// than silently dropping it.
		out.WriteString(Sanitize(s[start:]))
	}

	return out.String()
}
