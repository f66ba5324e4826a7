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

// Package rules implements the rule registry and cursor-advancing dispatch
// loop: rules compete for the next match, the
// earliest offset wins (ties broken by priority order derived from a
// "previous" DAG), and the gap between matches is emitted as plain text.
package rules

import "github.com/bits-and-blooms/bitset"

// flag indices within a ParseMode's bitset, using bits-and-blooms/bitset
// for compact flag sets.
const (
	flagParagraphOnly uint = iota
	flagNoImports
	flagNoScripts
	flagCount
)

// ParseMode carries flags that gate which rules may fire in a given
// context, e.g. disabling block-level rules inside a list item or
// preventing recursive imports inside a script-injected fragment.
type ParseMode struct {
	flags *bitset.BitSet
}

// NewParseMode constructs a ParseMode with all flags clear.
func NewParseMode() ParseMode {
	return ParseMode{bitset.New(flagCount)}
}

func (m ParseMode) with(flag uint, value bool) ParseMode {
	next := m.flags.Clone()
	if value {
		next.Set(flag)
	} else {
		next.Clear(flag)
	}

	return ParseMode{next}
}

// ParagraphOnly reports whether only inline/command rules may fire.
func (m ParseMode) ParagraphOnly() bool { return m.flags.Test(flagParagraphOnly) }

// WithParagraphOnly returns a copy of m with ParagraphOnly set to v.
func (m ParseMode) WithParagraphOnly(v bool) ParseMode { return m.with(flagParagraphOnly, v) }

// NoImports reports whether @import directives are disabled in this mode.
func (m ParseMode) NoImports() bool { return m.flags.Test(flagNoImports) }

// WithNoImports returns a copy of m with NoImports set to v.
func (m ParseMode) WithNoImports(v bool) ParseMode { return m.with(flagNoImports, v) }

// NoScripts reports whether script blocks are disabled in this mode.
func (m ParseMode) NoScripts() bool { return m.flags.Test(flagNoScripts) }

// WithNoScripts returns a copy of m with NoScripts set to v.
func (m ParseMode) WithNoScripts(v bool) ParseMode { return m.with(flagNoScripts, v) }
