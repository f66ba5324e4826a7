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

package refs

import "testing"

func TestParseRefnameAcceptsSimpleIdentifier(t *testing.T) {
	r, err := ParseRefname("abc")
	if err != nil {
		t.Fatalf("ParseRefname(%q): unexpected error: %v", "abc", err)
	}

	if r.Kind() != RefnameInternal || r.ID() != "abc" {
		t.Fatalf("expected internal refname %q, got kind=%d id=%q", "abc", r.Kind(), r.ID())
	}
}

func TestParseRefnameTrimsSurroundingWhitespace(t *testing.T) {
	r, err := ParseRefname(" \t Some_reference \t ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.ID() != "Some_reference" {
		t.Fatalf("expected trimmed id %q, got %q", "Some_reference", r.ID())
	}
}

func TestParseRefnameRejectsInvalidInput(t *testing.T) {
	// The last group are ASCII symbol characters (Sm/Sc/Sk), rejected the
	// same as class-P punctuation.
	cases := []string{"", "   ", "\t\t", "'", "]", "a~b", "a+b", "a`b", "a|b", "a$b", "a=b"}

	for _, raw := range cases {
		if _, err := ParseRefname(raw); err == nil {
			t.Errorf("ParseRefname(%q): expected error, got none", raw)
		}
	}
}

func TestParseRefnameSchemeDelimiters(t *testing.T) {
	ext, err := ParseRefname("other.nml#intro")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.Kind() != RefnameExternal || ext.UnitPath() != "other.nml" || ext.ID() != "intro" {
		t.Fatalf("unexpected external refname: %+v", ext)
	}

	bib, err := ParseRefname("refs.nml@doe2020")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bib.Kind() != RefnameBibliography || bib.ID() != "doe2020" {
		t.Fatalf("unexpected bibliography refname: %+v", bib)
	}

	if _, err := ParseRefname("a#b@c"); err == nil {
		t.Fatalf("expected error for more than one scheme delimiter")
	}
}

func TestRefnameStringRoundTrips(t *testing.T) {
	cases := []Refname{
		Internal("intro"),
		External("other.nml", "intro"),
		Bibliography("refs.nml", "doe2020"),
	}

	for _, r := range cases {
		reparsed, err := ParseRefname(r.String())
		if err != nil {
			t.Fatalf("ParseRefname(%q): %v", r.String(), err)
		}

		if reparsed.Kind() != r.Kind() || reparsed.ID() != r.ID() || reparsed.UnitPath() != r.UnitPath() {
			t.Fatalf("round trip mismatch for %q: got %+v", r.String(), reparsed)
		}
	}
}
