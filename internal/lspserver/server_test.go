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

package lspserver

import (
	"testing"

	"github.com/nml-lang/nmlc/internal/lspdata"
)

func TestEncodeDeltaUsesRecordedLineAndCharacterNotByteOffset(t *testing.T) {
	tokens := []lspdata.SemanticToken{
		{Start: lspdata.Position{Line: 0, Character: 5}, End: lspdata.Position{Line: 0, Character: 9}, Kind: lspdata.TokenKeyword},
		{Start: lspdata.Position{Line: 1, Character: 2}, End: lspdata.Position{Line: 1, Character: 8}, Kind: lspdata.TokenVariable},
	}

	data := encodeDelta(tokens)

	// First quintuple is absolute: deltaLine 0, deltaChar 5, length 4.
	if data[0] != 0 || data[1] != 5 || data[2] != 4 {
		t.Fatalf("unexpected first quintuple: %v", data[:5])
	}

	// Second token is on a new line, so its deltaChar is its own absolute
	// character, not relative to the first token's start character.
	if data[5] != 1 || data[6] != 2 || data[7] != 6 {
		t.Fatalf("unexpected second quintuple: %v", data[5:10])
	}
}

func TestEncodeDeltaTracksPreviousStartOnSameLine(t *testing.T) {
	tokens := []lspdata.SemanticToken{
		{Start: lspdata.Position{Line: 2, Character: 1}, End: lspdata.Position{Line: 2, Character: 3}, Kind: lspdata.TokenString},
		{Start: lspdata.Position{Line: 2, Character: 10}, End: lspdata.Position{Line: 2, Character: 14}, Kind: lspdata.TokenString},
	}

	data := encodeDelta(tokens)

	if data[5] != 0 || data[6] != 9 {
		t.Fatalf("expected same-line deltaChar 9, got line=%d char=%d", data[5], data[6])
	}
}
