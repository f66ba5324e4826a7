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

// Package refs implements the typed reference-name model:
// scheme-tagged refnames, resolved references, and the visibility and
// mutability attributes carried by scope.Variable.
package refs

import (
	"fmt"
	"strings"
	"unicode"
)

// RefnameKind distinguishes the three refname variants.
type RefnameKind int

// Recognised refname variants.
const (
	// RefnameInternal names a target within the same translation unit.
	RefnameInternal RefnameKind = iota
	// RefnameExternal names a target ("unit-path#id") in another unit.
	RefnameExternal
	// RefnameBibliography names a bibliography entry ("unit-path@id").
	RefnameBibliography
)

// Refname is a parsed, scheme-tagged reference name.
type Refname struct {
	kind     RefnameKind
	unitPath string
	id       string
}

// Internal constructs an internal refname.
func Internal(id string) Refname { return Refname{RefnameInternal, "", id} }

// External constructs an external refname targeting unitPath.
func External(unitPath, id string) Refname { return Refname{RefnameExternal, unitPath, id} }

// Bibliography constructs a bibliography refname targeting unitPath.
func Bibliography(unitPath, id string) Refname { return Refname{RefnameBibliography, unitPath, id} }

// Kind returns which refname variant this is.
func (r Refname) Kind() RefnameKind { return r.kind }

// UnitPath returns the unit-path component (empty for Internal).
func (r Refname) UnitPath() string { return r.unitPath }

// ID returns the bare identifier component.
func (r Refname) ID() string { return r.id }

// String renders the refname the way it would be re-parsed.
func (r Refname) String() string {
	switch r.kind {
	case RefnameExternal:
		return r.unitPath + "#" + r.id
	case RefnameBibliography:
		return r.unitPath + "@" + r.id
	default:
		return r.id
	}
}

// ParseRefname validates and parses a raw refname string:
// non-empty after trimming whitespace; no ASCII punctuation except '.' and
// '_'; no whitespace or control codepoints; at most one scheme delimiter
// ('#' or '@').
func ParseRefname(raw string) (Refname, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Refname{}, fmt.Errorf("refname cannot be empty")
	}

	var (
		delim rune
		path  string
		word  = s
	)

	if idx := strings.IndexByte(s, '#'); idx >= 0 {
		delim = '#'
		path, word = s[:idx], s[idx+1:]
	} else if idx := strings.IndexByte(s, '@'); idx >= 0 {
		delim = '@'
		path, word = s[:idx], s[idx+1:]
	}

	for _, c := range word {
		switch {
		case c == '#' || c == '@':
			return Refname{}, fmt.Errorf("refname %q cannot contain %q after previous specifier", raw, c)
		case isASCIIPunct(c) && c != '.' && c != '_':
			return Refname{}, fmt.Errorf("refname %q cannot contain punctuation codepoint %q", raw, c)
		case unicode.IsSpace(c):
			return Refname{}, fmt.Errorf("refname %q cannot contain whitespace", raw)
		case unicode.IsControl(c):
			return Refname{}, fmt.Errorf("refname %q cannot contain control codepoint", raw)
		}
	}

	if word == "" {
		return Refname{}, fmt.Errorf("refname %q has an empty identifier", raw)
	}

	switch delim {
	case '#':
		return External(path, word), nil
	case '@':
		return Bibliography(path, word), nil
	default:
		return Internal(word), nil
	}
}

// isASCIIPunct reports whether c is ASCII punctuation: any printable ASCII
// character that is neither alphanumeric nor a space. Includes the symbol
// characters ('$', '+', '<', '=', '>', '^', '`', '|', '~') that
// unicode.IsPunct classifies under Sm/Sc/Sk rather than P.
func isASCIIPunct(c rune) bool {
	return c < 0x80 && (unicode.IsPunct(c) || unicode.IsSymbol(c))
}
