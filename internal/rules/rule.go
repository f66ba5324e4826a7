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

package rules

import (
	"regexp"
	"sort"

	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
)

// Target coarsely classifies a Rule, informing LSP semantic tokens and
// paragraph framing decisions.
type Target int

// Recognised rule targets.
const (
	TargetInline Target = iota
	TargetCommand
	TargetBlock
	TargetMeta
)

// Unit is the minimal view of a translation unit a Rule needs: the scope
// it is currently appending into, and a sink for diagnostics.  Concrete
// rules (package langrules) type-assert this back to *unit.TranslationUnit
// for the rest of their needs (variables, kernels, imports); keeping the
// interface minimal here is what lets this package avoid importing unit.
type Unit interface {
	CurrentScope() *scope.Scope
	Report(r report.Report)
}

// MatchData is rule-private state produced by NextMatch and consumed by
// OnMatch.  Opaque to the engine.
type MatchData any

// Rule is a single parsing rule.
type Rule interface {
	// Name identifies this rule, used for the "previous" DAG and for
	// kernel bindings (nml.<name>).
	Name() string
	// Previous names a rule that must be considered first when both
	// match at the same offset (empty string if none).
	Previous() string
	// Target classifies this rule.
	Target() Target
	// Enabled reports whether this rule may fire at all in the given mode.
	Enabled(u Unit, mode ParseMode) bool
	// NextMatch searches for the earliest match at or after cur, returning
	// its start offset and opaque match data.
	NextMatch(u Unit, mode ParseMode, cur source.Cursor) (int, MatchData, bool)
	// OnMatch consumes bytes starting at the match, appending elements
	// and/or opening/closing scopes, and returns the cursor past what it
	// consumed.
	OnMatch(u Unit, cur source.Cursor, m MatchData) (source.Cursor, report.Reports)
}

// RegexRule is a convenience base for rules whose NextMatch reduces to
// finding the earliest regex match at or after the cursor.  Embedders
// implement OnMatch/Enabled/etc and set Pattern; NextMatch is provided.
type RegexRule struct {
	Pattern *regexp.Regexp
}

// FindNextMatch implements the common regex-search half of NextMatch; rule
// types embedding RegexRule call this from their NextMatch method.
func (r RegexRule) FindNextMatch(cur source.Cursor) (int, MatchData, bool) {
	remaining := cur.Remaining()
	if remaining == nil {
		return 0, nil, false
	}

	loc := r.Pattern.FindStringSubmatchIndex(string(remaining))
	if loc == nil {
		return 0, nil, false
	}

	return cur.Offset() + runeOffset(remaining, loc[0]), loc, true
}

// runeOffset converts a byte index produced by regexp (which operates on
// the UTF-8 encoding of the string built from `remaining`) back into a
// rune count, since Cursor/Span address runes.
func runeOffset(remaining []rune, byteIdx int) int {
	s := string(remaining)
	count := 0

	for i := range s {
		if i >= byteIdx {
			break
		}

		count++
	}

	return count
}

// RuleSet is an ordered, topologically-sorted registry of rules.
type RuleSet struct {
	rules  []Rule
	byName map[string]int
}

// NewRuleSet constructs a RuleSet from an unordered list of rules, sorting
// them into priority order derived from each rule's Previous() edge: if
// rule B declares Previous()=="A", then A is ordered before B.  Ties (no
// edge between two rules) keep their original relative order, giving a
// deterministic, stable topological sort.
func NewRuleSet(rs []Rule) *RuleSet {
	byName := make(map[string]int, len(rs))
	for i, r := range rs {
		byName[r.Name()] = i
	}

	order := topoSort(rs, byName)

	sorted := make([]Rule, len(order))
	sortedIdx := make(map[string]int, len(rs))

	for pos, i := range order {
		sorted[pos] = rs[i]
		sortedIdx[rs[i].Name()] = pos
	}

	return &RuleSet{sorted, sortedIdx}
}

// topoSort performs a stable topological sort of rs, honoring each rule's
// Previous() predecessor edge, breaking ties by original index.
func topoSort(rs []Rule, byName map[string]int) []int {
	n := len(rs)
	indeg := make([]int, n)
	adj := make([][]int, n)

	for i, r := range rs {
		if p := r.Previous(); p != "" {
			if pi, ok := byName[p]; ok {
				adj[pi] = append(adj[pi], i)
				indeg[i]++
			}
		}
	}

	var ready []int
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	sort.Ints(ready)

	var order []int

	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		order = append(order, i)

		for _, j := range adj[i] {
			indeg[j]--
			if indeg[j] == 0 {
				ready = insertSorted(ready, j)
			}
		}
	}
	// Any remaining rules form a cycle in "previous" edges; append them in
	// original order rather than dropping them silently.
	seen := make([]bool, n)
	for _, i := range order {
		seen[i] = true
	}

	for i := 0; i < n; i++ {
		if !seen[i] {
			order = append(order, i)
		}
	}

	return order
}

func insertSorted(xs []int, v int) []int {
	i := sort.SearchInts(xs, v)
	xs = append(xs, 0)
	copy(xs[i+1:], xs[i:])
	xs[i] = v

	return xs
}

// Rules returns the rules in priority order.
func (rs *RuleSet) Rules() []Rule { return rs.rules }

// ByName looks up a rule by name.
func (rs *RuleSet) ByName(name string) (Rule, bool) {
	i, ok := rs.byName[name]
	if !ok {
		return nil, false
	}

	return rs.rules[i], true
}
