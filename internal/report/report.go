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

// Package report implements the structured diagnostic values produced by
// rules, end-of-scope/document teardown, the resolver, script kernels and
// the compile pipeline.  The core never aborts parsing on a reportable
// error; only SourceIO on the entry source and CacheError
// when persistence is required are fatal, and those are returned as plain
// Go errors rather than Reports.
package report

import (
	"fmt"

	"github.com/nml-lang/nmlc/internal/source"
)

// Kind classifies a Report by the stage that raised it.
type Kind int

// Recognised report kinds.
const (
	KindSourceIO Kind = iota
	KindSyntax
	KindUnterminatedConstruct
	KindInvalidRefname
	KindDuplicateReference
	KindUnresolvedReference
	KindVariableError
	KindScriptError
	KindCompileError
	KindCacheError
)

// String renders the kind's name for logging and JSON export.
func (k Kind) String() string {
	switch k {
	case KindSourceIO:
		return "SourceIO"
	case KindSyntax:
		return "Syntax"
	case KindUnterminatedConstruct:
		return "UnterminatedConstruct"
	case KindInvalidRefname:
		return "InvalidRefname"
	case KindDuplicateReference:
		return "DuplicateReference"
	case KindUnresolvedReference:
		return "UnresolvedReference"
	case KindVariableError:
		return "VariableError"
	case KindScriptError:
		return "ScriptError"
	case KindCompileError:
		return "CompileError"
	case KindCacheError:
		return "CacheError"
	default:
		return "Unknown"
	}
}

// Severity of a report.
type Severity int

// Recognised severities.
const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

// Report is a structured diagnostic anchored to a span of some source,
// carrying a severity, a message, and optional notes (secondary spans with
// their own message, e.g. "previous declaration was here").
type Report struct {
	Kind     Kind
	Severity Severity
	Span     source.Token
	Message  string
	Notes    []Note
	// Stack carries a guest-language stack trace for ScriptError reports.
	Stack string
}

// Note is a secondary annotation attached to a Report.
type Note struct {
	Span    source.Token
	Message string
}

// New constructs a Report at SeverityError.
func New(kind Kind, span source.Token, message string) Report {
	return Report{Kind: kind, Severity: SeverityError, Span: span, Message: message}
}

// Newf constructs a Report at SeverityError with a formatted message.
func Newf(kind Kind, span source.Token, format string, args ...any) Report {
	return New(kind, span, fmt.Sprintf(format, args...))
}

// WithNote returns a copy of r with an additional note appended.
func (r Report) WithNote(span source.Token, message string) Report {
	r.Notes = append(append([]Note{}, r.Notes...), Note{span, message})
	return r
}

// Error implements the error interface so a Report can be used wherever a
// plain error is expected (e.g. wrapping a single report as a fatal error).
func (r Report) Error() string {
	file, span := resolveSpan(r.Span)
	if file == "" {
		return fmt.Sprintf("%s: %s", r.Kind, r.Message)
	}

	return fmt.Sprintf("%s: %s:%s: %s", r.Kind, file, span, r.Message)
}

// resolveSpan projects a token to its originating file and span.  Reports
// with no source location (e.g. a failure to read the entry source) carry a
// zero Token; those resolve to an empty file name.
func resolveSpan(t source.Token) (string, source.Span) {
	if t.Source() == nil {
		return "", t.Span()
	}

	orig := t.OriginalRange()

	return orig.Source().Name(), orig.Span()
}

// jsonString renders a Severity for JSON export.
func (sv Severity) jsonString() string {
	switch sv {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// JSONNote is Note projected into plain, Source-free fields for
// segmentio/encoding/json marshaling (package cli's `--json-reports`).
type JSONNote struct {
	File    string `json:"file"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Message string `json:"message"`
}

// JSONReport is Report projected the same way, resolving every span to its
// originating source before the token's live Source handle is discarded.
type JSONReport struct {
	Kind     string     `json:"kind"`
	Severity string     `json:"severity"`
	File     string     `json:"file"`
	Start    int        `json:"start"`
	End      int        `json:"end"`
	Message  string     `json:"message"`
	Notes    []JSONNote `json:"notes,omitempty"`
}

// ToJSON projects rs into JSONReport values.
func (rs Reports) ToJSON() []JSONReport {
	out := make([]JSONReport, 0, len(rs))

	for _, r := range rs {
		file, span := resolveSpan(r.Span)

		notes := make([]JSONNote, 0, len(r.Notes))
		for _, n := range r.Notes {
			nfile, nspan := resolveSpan(n.Span)
			notes = append(notes, JSONNote{
				File:    nfile,
				Start:   nspan.Start(),
				End:     nspan.End(),
				Message: n.Message,
			})
		}

		out = append(out, JSONReport{
			Kind:     r.Kind.String(),
			Severity: r.Severity.jsonString(),
			File:     file,
			Start:    span.Start(),
			End:      span.End(),
			Message:  r.Message,
			Notes:    notes,
		})
	}

	return out
}

// Reports is a vector of diagnostics, as produced by rules, element
// compile, end-of-scope/document teardown and the resolver.
type Reports []Report

// HasErrors reports whether any entry in rs is at SeverityError.
func (rs Reports) HasErrors() bool {
	for _, r := range rs {
		if r.Severity == SeverityError {
			return true
		}
	}

	return false
}

// Append adds one or more reports and returns the resulting slice,
// mirroring the append-only pattern used throughout the core.
func (rs Reports) Append(more ...Report) Reports {
	return append(rs, more...)
}
