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

package report_test

import (
	"testing"

	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/source"
)

func TestToJSONProjectsSeverityFileAndNotes(t *testing.T) {
	src := source.NewFileFromBytes("a.nml", []byte("undefined variable used here\n"))

	main := report.Newf(report.KindVariableError, source.NewToken(src, source.NewSpan(0, 9)), "undefined variable %q", "foo")
	main = main.WithNote(source.NewToken(src, source.NewSpan(10, 15)), "did you mean this?")

	reports := report.Reports{main}

	out := reports.ToJSON()
	if len(out) != 1 {
		t.Fatalf("expected one projected report, got %d", len(out))
	}

	got := out[0]

	if got.Kind != "VariableError" {
		t.Fatalf("got kind %q, want VariableError", got.Kind)
	}

	if got.Severity != "error" {
		t.Fatalf("got severity %q, want error", got.Severity)
	}

	if got.File != "a.nml" {
		t.Fatalf("got file %q, want a.nml", got.File)
	}

	if got.Start != 0 || got.End != 9 {
		t.Fatalf("got span [%d,%d), want [0,9)", got.Start, got.End)
	}

	if len(got.Notes) != 1 {
		t.Fatalf("expected one note, got %d", len(got.Notes))
	}

	if got.Notes[0].File != "a.nml" || got.Notes[0].Message != "did you mean this?" {
		t.Fatalf("unexpected note: %+v", got.Notes[0])
	}
}

func TestToJSONEmptyForNoReports(t *testing.T) {
	var reports report.Reports

	out := reports.ToJSON()
	if len(out) != 0 {
		t.Fatalf("expected no projected reports, got %d", len(out))
	}
}
