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
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/nml-lang/nmlc/internal/elements"
	"github.com/nml-lang/nmlc/internal/refs"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/source"
)

// importPattern matches `@import "path"`.
var importPattern = regexp.MustCompile(`(?m)^@import[ \t]+"([^"]+)"[ \t]*\n?`)

// ImportRule recognises @import directives.
type ImportRule struct{ rules.RegexRule }

// NewImportRule constructs the import rule.
func NewImportRule() *ImportRule { return &ImportRule{rules.RegexRule{Pattern: importPattern}} }

// Name implements rules.Rule.
func (r *ImportRule) Name() string { return "import" }

// Previous implements rules.Rule.
func (r *ImportRule) Previous() string { return "" }

// Target implements rules.Rule.
func (r *ImportRule) Target() rules.Target { return rules.TargetCommand }

// Enabled implements rules.Rule: disabled in contexts that forbid nested
// imports, e.g. a script-injected fragment.
func (r *ImportRule) Enabled(u rules.Unit, mode rules.ParseMode) bool { return !mode.NoImports() }

// NextMatch implements rules.Rule.
func (r *ImportRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	return r.FindNextMatch(cur)
}

// OnMatch implements rules.Rule: parses the imported file into its own
// scope, shadowed over the importing scope so imported content can still
// see the importer's variables, then merges the imported scope's exported
// variables back into the importer.
func (r *ImportRule) OnMatch(u rules.Unit, cur source.Cursor, _ rules.MatchData) (source.Cursor, report.Reports) {
	tu := asUnit(u)

	remaining, loc := matchAt(importPattern, cur)
	if loc == nil {
		return cur, nil
	}

	whole := group(remaining, loc, 0)
	path := group(remaining, loc, 1)
	loc0 := cur.Token(cur.Offset() + runeLen(whole))

	// A relative import path is relative to the importing unit's own file,
	// not the process working directory.
	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(tu.InputPath()), resolved)
	}

	parent := tu.CurrentScope()

	var reports report.Reports

	importedSrc, err := source.NewFile(resolved)
	if err != nil {
		reports = reports.Append(report.Newf(report.KindSourceIO, loc0, "importing %q: %s", path, err))
		tu.LSP.AddHover(cur.Token(cur.Offset()+runeLen(whole)).Span(), fmt.Sprintf("import failed: %s", err))

		imp := elements.NewImport(loc0, path, parent.Nested())
		parent.AddContent(imp)

		return cur.Advance(runeLen(whole)), reports
	}

	child := parent.Shadow(importedSrc)
	tu.PushScope(child)

	content := importedSrc.Content()

	_, bodyReports := rules.RunTo(tu.Rules(), tu, rules.NewParseMode().WithNoImports(true),
		source.NewCursor(importedSrc, 0), len(content), emitText)
	reports = reports.Append(bodyReports...)
	reports = reports.Append(child.EndOfScope()...)

	tu.PopScope()

	exported := 0

	for _, v := range child.LocalVariables() {
		if v.Visibility == refs.VisibilityExported {
			parent.DefineVariable(v)
			exported++
		}
	}

	imp := elements.NewImport(loc0, path, child)
	parent.AddContent(imp)

	tu.LSP.AddInlayHint(cur.Offset()+runeLen(whole), fmt.Sprintf("%d exported", exported))

	return cur.Advance(runeLen(whole)), reports
}
