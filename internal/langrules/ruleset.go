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

import "github.com/nml-lang/nmlc/internal/rules"

// New assembles the full NML rule set in priority order.  Block-level
// constructs (section, list, block, code fence, graph, latex) declare
// Previous()=="section" so that a heading always wins a tie at the start
// of a line over a more loosely anchored block rule; internal_link is
// ordered before the more permissive link pattern so `&{...}` is never
// swallowed by `[...](...)`.
func New() *rules.RuleSet {
	return rules.NewRuleSet([]rules.Rule{
		NewCommentRule(),
		NewLineBreakRule(),
		NewScriptRule(),
		NewImportRule(),
		NewSetVariableRule(),
		NewSubstitutionRule(),
		NewAnchorRule(),
		NewSectionRule(),
		NewTableOfContentsRule(),
		NewListRule(),
		NewBlockRule(),
		NewCodeFenceRule(),
		NewGraphvizRule(),
		NewLatexRule(),
		NewLatexInlineRule(),
		NewInlineCodeRule(),
		NewStyleRule(),
		NewInternalLinkRule(),
		NewLinkRule(),
	})
}
