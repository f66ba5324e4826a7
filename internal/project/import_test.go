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

package project_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/nml-lang/nmlc/internal/project"
	"github.com/nml-lang/nmlc/internal/report"
)

func TestImportPropagatesExportedVariablesOnly(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "a.nml", ":export x = \"V\"\n:set y = \"W\"\n")
	writeFile(t, dir, "b.nml", "@import \"a.nml\"\n%x%\n%y%\n")

	units, reports := project.Load(dir, nil)
	if len(units) != 2 {
		t.Fatalf("expected 2 loaded units, got %d", len(units))
	}

	// %y% must not see a.nml's internal variable.
	if !hasKind(reports, report.KindVariableError) {
		t.Fatalf("expected a variable error for the non-exported %%y%%, got %v", reports)
	}

	results, compileReports := project.Compile(units, nil)
	if compileReports.HasErrors() {
		t.Fatalf("unexpected compile errors: %v", compileReports)
	}

	var b project.Result

	for _, r := range results {
		if filepath.Base(r.InputPath) == "b.nml" {
			b = r
		}
	}

	if !strings.Contains(b.Output.Content, "V") {
		t.Fatalf("expected the exported variable's value in the importer's output, got %q", b.Output.Content)
	}

	if !strings.Contains(b.Output.Content, "%y%") {
		t.Fatalf("expected the unresolved substitution left literal, got %q", b.Output.Content)
	}
}
