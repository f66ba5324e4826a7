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

package lspdata_test

import (
	"testing"

	"github.com/nml-lang/nmlc/internal/lspdata"
	"github.com/nml-lang/nmlc/internal/source"
)

func TestAddSemanticTokenConvertsToLineAndCharacterAtRecordTime(t *testing.T) {
	content := []rune("first\nsecond line\n")

	d := lspdata.NewSourceData("a.nml", content)

	// "line" spans bytes [13,17): line 1 (0-indexed), starting 7 characters
	// into "second line".
	d.AddSemanticToken(source.NewSpan(13, 17), lspdata.TokenKeyword)

	if len(d.SemanticTokens) != 1 {
		t.Fatalf("expected one recorded token, got %d", len(d.SemanticTokens))
	}

	got := d.SemanticTokens[0]

	if got.Start.Line != 1 || got.Start.Character != 7 {
		t.Fatalf("expected start (1,7), got (%d,%d)", got.Start.Line, got.Start.Character)
	}

	if got.End.Line != 1 || got.End.Character != 11 {
		t.Fatalf("expected end (1,11), got (%d,%d)", got.End.Line, got.End.Character)
	}
}

func TestAddSemanticTokenHandlesMultipleLines(t *testing.T) {
	content := []rune("a\nb\nc\n")

	d := lspdata.NewSourceData("a.nml", content)
	d.AddSemanticToken(source.NewSpan(0, 1), lspdata.TokenVariable)
	d.AddSemanticToken(source.NewSpan(4, 5), lspdata.TokenVariable)

	if d.SemanticTokens[0].Start.Line != 0 {
		t.Fatalf("expected first token on line 0, got %d", d.SemanticTokens[0].Start.Line)
	}

	if d.SemanticTokens[1].Start.Line != 2 {
		t.Fatalf("expected second token on line 2, got %d", d.SemanticTokens[1].Start.Line)
	}
}

func TestHoverAtReturnsShortestEnclosingHover(t *testing.T) {
	d := lspdata.NewSourceData("a.nml", []rune("abcdef"))

	d.AddHover(source.NewSpan(0, 6), "outer")
	d.AddHover(source.NewSpan(2, 4), "inner")

	h, ok := d.HoverAt(3)
	if !ok {
		t.Fatal("expected a hover at offset 3")
	}

	if h.Text != "inner" {
		t.Fatalf("expected the shorter enclosing hover to win, got %q", h.Text)
	}
}
