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

package cache

import (
	"path/filepath"
	"testing"

	"github.com/nml-lang/nmlc/internal/refs"
)

func TestUpsertAndLookupRoundTrip(t *testing.T) {
	dir := t.TempDir()

	c, err := Open(filepath.Join(dir, "cache.db"), false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	ref := refs.Reference{
		Refname:    refs.Internal("intro"),
		Refkey:     "section",
		SourceUnit: "/proj/a.nml",
		Link:       "intro",
		Token:      refs.Token{Start: 10, End: 20},
	}

	rows := ReferenceRowsFromIndex([]refs.Reference{ref})
	if err := c.UpsertUnit("/proj/a.nml", "a", "a.html", rows); err != nil {
		t.Fatalf("UpsertUnit: %v", err)
	}

	got, ok := c.LookupReference("/proj/a.nml", refs.Internal("intro"))
	if !ok {
		t.Fatalf("expected reference to round-trip")
	}

	if got.Link != "intro" || got.Token.Start != 10 || got.Token.End != 20 {
		t.Fatalf("round-tripped reference mismatch: %+v", got)
	}

	meta, ok := c.UnitMeta("/proj/a.nml")
	if !ok || meta.OutputFile != "a.html" {
		t.Fatalf("expected unit metadata row, got %+v ok=%v", meta, ok)
	}
}

func TestUpsertUnitReplacesPriorRows(t *testing.T) {
	dir := t.TempDir()

	c, err := Open(filepath.Join(dir, "cache.db"), false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	first := []refs.Reference{{Refname: refs.Internal("old"), Refkey: "section", Link: "old"}}
	if err := c.UpsertUnit("/proj/a.nml", "a", "a.html", ReferenceRowsFromIndex(first)); err != nil {
		t.Fatalf("first UpsertUnit: %v", err)
	}

	second := []refs.Reference{{Refname: refs.Internal("new"), Refkey: "section", Link: "new"}}
	if err := c.UpsertUnit("/proj/a.nml", "a", "a.html", ReferenceRowsFromIndex(second)); err != nil {
		t.Fatalf("second UpsertUnit: %v", err)
	}

	if _, ok := c.LookupReference("/proj/a.nml", refs.Internal("old")); ok {
		t.Fatalf("expected stale row to be deleted by second upsert")
	}

	if _, ok := c.LookupReference("/proj/a.nml", refs.Internal("new")); !ok {
		t.Fatalf("expected new row to be present")
	}
}

func TestNormalizeUnitPathIsIdempotentAndRelative(t *testing.T) {
	n1, err := NormalizeUnitPath("a.nml")
	if err != nil {
		t.Fatalf("NormalizeUnitPath: %v", err)
	}

	n2, err := NormalizeUnitPath("./a.nml")
	if err != nil {
		t.Fatalf("NormalizeUnitPath: %v", err)
	}

	if n1 != n2 {
		t.Fatalf("expected equivalent paths to normalize identically, got %q vs %q", n1, n2)
	}

	if !filepath.IsAbs(n1) {
		t.Fatalf("expected normalized path to be absolute, got %q", n1)
	}
}
