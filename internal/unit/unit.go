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

// Package unit implements the per-input-file translation unit: the
// compilation state that owns a source's scope tree, rule set, kernel
// registry and LSP side-data bag.
package unit

import (
	"github.com/nml-lang/nmlc/internal/lspdata"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
)

// KernelHandle is the minimal surface a script kernel exposes to a
// translation unit.  Defined here (rather than imported from package
// kernel) so package kernel can depend on package unit without a cycle.
type KernelHandle interface {
	// Name returns this kernel's registered name.
	Name() string
	// Run executes guestSource under ctx, returning any ScriptError
	// reports the guest raised.
	Run(ctx *KernelContext, guestSource string) report.Reports
	// Eval evaluates guestSource as an expression under ctx, returning its
	// result converted to a string.
	Eval(ctx *KernelContext, guestSource string) (string, report.Reports)
}

// KernelContext is the explicit handle passed to a kernel invocation,
// replacing a thread-local slot with an explicit value: the current unit,
// the parse-time location of the
// invoking script block, and the scope active when it was invoked.
type KernelContext struct {
	Unit     *TranslationUnit
	Scope    *scope.Scope
	Location source.Token
}

// TranslationUnit is the per-input-file compilation state.
type TranslationUnit struct {
	src         source.Source
	inputPath   string
	referenceKey string
	entry       *scope.Scope
	current     *scope.Scope
	rules       *rules.RuleSet
	kernels     map[string]KernelHandle
	custom      map[string]any
	LSP         *lspdata.SourceData
	reports     report.Reports
}

// New constructs a translation unit rooted at src, with an empty entry
// scope and the given rule set.  inputPath/referenceKey identify this unit
// for cross-unit references and the cache.
func New(src source.Source, inputPath, referenceKey string, rs *rules.RuleSet) *TranslationUnit {
	entry := scope.NewScope(src)

	return &TranslationUnit{
		src:          src,
		inputPath:    inputPath,
		referenceKey: referenceKey,
		entry:        entry,
		current:      entry,
		rules:        rs,
		kernels:      map[string]KernelHandle{},
		custom:       map[string]any{},
		LSP:          lspdata.NewSourceData(src.Name(), src.Content()),
	}
}

// Source returns this unit's root source.
func (u *TranslationUnit) Source() source.Source { return u.src }

// InputPath returns the path used to key this unit in the cache and in
// cross-unit External() refnames. It is used verbatim by the resolver;
// New stores it as given (project discovery normalizes it beforehand
// with cache.NormalizeUnitPath).
func (u *TranslationUnit) InputPath() string { return u.inputPath }

// ReferenceKey returns the identifier used by other units/bibliographies
// to refer to this unit.
func (u *TranslationUnit) ReferenceKey() string { return u.referenceKey }

// EntryScope returns the unit's top-level scope.
func (u *TranslationUnit) EntryScope() *scope.Scope { return u.entry }

// CurrentScope implements rules.Unit: the scope rules currently append
// into.
func (u *TranslationUnit) CurrentScope() *scope.Scope { return u.current }

// PushScope descends into a freshly created child scope (list item,
// section body, script sub-document, …); the caller returns to the
// parent later with PopScope.
func (u *TranslationUnit) PushScope(child *scope.Scope) { u.current = child }

// PopScope returns to the parent of the current scope.  No-op at the
// entry scope.
func (u *TranslationUnit) PopScope() {
	if p := u.current.Parent(); p != nil {
		u.current = p
	}
}

// Report implements rules.Unit: records a diagnostic produced during
// parsing.
func (u *TranslationUnit) Report(r report.Report) { u.reports = u.reports.Append(r) }

// Reports returns every diagnostic recorded so far.
func (u *TranslationUnit) Reports() report.Reports { return u.reports }

// AddReports appends a batch of diagnostics at once.
func (u *TranslationUnit) AddReports(rs report.Reports) { u.reports = u.reports.Append(rs...) }

// Rules returns this unit's rule set.
func (u *TranslationUnit) Rules() *rules.RuleSet { return u.rules }

// RegisterKernel installs a named kernel, usually "main".
func (u *TranslationUnit) RegisterKernel(k KernelHandle) { u.kernels[k.Name()] = k }

// Kernel looks up a registered kernel by name.
func (u *TranslationUnit) Kernel(name string) (KernelHandle, bool) {
	k, ok := u.kernels[name]
	return k, ok
}

// SetCustomData attaches unit-wide (not scope-local) data under name, e.g.
// a rule's running counters.
func (u *TranslationUnit) SetCustomData(name string, v any) { u.custom[name] = v }

// CustomData retrieves unit-wide data attached under name.
func (u *TranslationUnit) CustomData(name string) (any, bool) {
	v, ok := u.custom[name]
	return v, ok
}
