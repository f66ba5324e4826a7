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

package rules_test

import (
	"testing"

	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/rules"
	"github.com/nml-lang/nmlc/internal/source"
)

// literalRule matches a fixed literal string exactly once per offset,
// consuming it and recording that it fired.
type literalRule struct {
	name     string
	previous string
	literal  string
	fired    *[]string
}

func (r *literalRule) Name() string                             { return r.name }
func (r *literalRule) Previous() string                         { return r.previous }
func (r *literalRule) Target() rules.Target                     { return rules.TargetInline }
func (r *literalRule) Enabled(rules.Unit, rules.ParseMode) bool { return true }

func (r *literalRule) NextMatch(u rules.Unit, mode rules.ParseMode, cur source.Cursor) (int, rules.MatchData, bool) {
	content := string(cur.Remaining())
	idx := indexOf(content, r.literal)
	if idx < 0 {
		return 0, nil, false
	}

	return cur.Offset() + idx, nil, true
}

func (r *literalRule) OnMatch(u rules.Unit, cur source.Cursor, m rules.MatchData) (source.Cursor, report.Reports) {
	*r.fired = append(*r.fired, r.name)
	return cur.Advance(len(r.literal)), nil
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}

	return -1
}

func emitCollecting(gaps *[]string) rules.EmitText {
	return func(u rules.Unit, span source.Token) report.Reports {
		content := span.Source().Content()
		*gaps = append(*gaps, string(content[span.Span().Start():span.Span().End()]))
		return nil
	}
}

func TestRunPicksEarliestOffsetAndEmitsGaps(t *testing.T) {
	src := source.NewBuffer("t.nml", "xxAxxBxx")

	var fired []string
	a := &literalRule{name: "a", literal: "A", fired: &fired}
	b := &literalRule{name: "b", literal: "B", fired: &fired}
	rs := rules.NewRuleSet([]rules.Rule{a, b})

	var gaps []string
	_, reports := rules.Run(rs, nil, rules.NewParseMode(), source.NewCursor(src, 0), emitCollecting(&gaps))

	if reports.HasErrors() {
		t.Fatalf("unexpected errors: %v", reports)
	}

	if len(fired) != 2 || fired[0] != "a" || fired[1] != "b" {
		t.Fatalf("expected a then b to fire in offset order, got %v", fired)
	}

	if len(gaps) != 3 || gaps[0] != "xx" || gaps[1] != "xx" || gaps[2] != "xx" {
		t.Fatalf("expected three 2-byte gaps around the matches, got %v", gaps)
	}
}

func TestSelectMatchBreaksTiesByPriorityOrder(t *testing.T) {
	src := source.NewBuffer("t.nml", "Z")

	var fired []string
	// Both rules match at offset 0; "first" has no Previous edge and is
	// registered before "second", so it must win the tie.
	first := &literalRule{name: "first", literal: "Z", fired: &fired}
	second := &literalRule{name: "second", literal: "Z", fired: &fired}
	rs := rules.NewRuleSet([]rules.Rule{first, second})

	var gaps []string
	rules.Run(rs, nil, rules.NewParseMode(), source.NewCursor(src, 0), emitCollecting(&gaps))

	if len(fired) != 1 || fired[0] != "first" {
		t.Fatalf("expected only the higher-priority rule to fire, got %v", fired)
	}
}

func TestRuleSetOrdersByPreviousEdge(t *testing.T) {
	var fired []string
	// "late" is registered first but declares "early" as its Previous, so
	// the sorted rule set must place "early" ahead of it regardless.
	late := &literalRule{name: "late", previous: "early", literal: "x", fired: &fired}
	early := &literalRule{name: "early", literal: "x", fired: &fired}

	rs := rules.NewRuleSet([]rules.Rule{late, early})

	names := make([]string, 0, 2)
	for _, r := range rs.Rules() {
		names = append(names, r.Name())
	}

	if names[0] != "early" || names[1] != "late" {
		t.Fatalf("expected [early late], got %v", names)
	}
}

func TestRunToStopsAtBoundAndLeavesMarkerUnconsumed(t *testing.T) {
	src := source.NewBuffer("t.nml", "aaBbb")

	var fired []string
	b := &literalRule{name: "b", literal: "B", fired: &fired}
	rs := rules.NewRuleSet([]rules.Rule{b})

	var gaps []string
	cur, _ := rules.RunTo(rs, nil, rules.NewParseMode(), source.NewCursor(src, 0), 2, emitCollecting(&gaps))

	if len(fired) != 0 {
		t.Fatalf("expected the match past the bound to be left for the caller, fired=%v", fired)
	}

	if cur.Offset() != 2 {
		t.Fatalf("expected cursor parked at the bound (2), got %d", cur.Offset())
	}

	if len(gaps) != 1 || gaps[0] != "aa" {
		t.Fatalf("expected the bounded region emitted as one text gap, got %v", gaps)
	}
}
