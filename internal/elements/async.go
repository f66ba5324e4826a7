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

package elements

import (
	"fmt"

	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
)

// Graphviz is a typed block whose compile emits an async task that renders
// the graph: `[graph]...[/graph]`.
type Graphviz struct {
	base
	Engine string // layout engine, e.g. "dot", "neato"
	Width  string // CSS width property
	Source string // raw graph description
	Render func(engine, source string) (string, error)
}

// NewGraphviz constructs a Graphviz block.  render performs the actual
// rendering is delegated to an external collaborator; nil uses a stub
// that echoes the source as a <pre> fallback, useful for tests.
func NewGraphviz(loc source.Token, engine, width, src string, render func(engine, source string) (string, error)) *Graphviz {
	return &Graphviz{base{loc}, engine, width, src, render}
}

// Kind implements scope.Element.
func (g *Graphviz) Kind() scope.Kind { return scope.Block }

// ElementName implements scope.Element.
func (g *Graphviz) ElementName() string { return "graphviz" }

// Compile implements scope.Element: registers an async rendering task at
// the current output position.
func (g *Graphviz) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	loc := g.loc
	engine, width, src, render := g.Engine, g.Width, g.Source, g.Render

	out.AddTask(func() (string, report.Reports) {
		if render == nil {
			return fmt.Sprintf(`<pre class="graphviz-fallback">%s</pre>`, cc.Sanitize(src)), nil
		}

		svg, err := render(engine, src)
		if err != nil {
			return "", report.Reports{report.Newf(report.KindCompileError, loc, "graphviz render failed: %s", err)}
		}

		style := ""
		if width != "" {
			style = fmt.Sprintf(` style="width:%s"`, cc.Sanitize(width))
		}

		return fmt.Sprintf(`<div class="graphviz"%s>%s</div>`, style, svg), nil
	})

	return nil
}

// Latex is a block/inline math or environment element whose compile emits
// an async task.
type Latex struct {
	base
	InlineMath bool
	Env        string // environment name, empty for plain math mode
	Source     string
	Render     func(env, source string, inline bool) (string, error)
}

// NewLatex constructs a Latex element.
func NewLatex(loc source.Token, inlineMath bool, env, src string, render func(env, source string, inline bool) (string, error)) *Latex {
	return &Latex{base{loc}, inlineMath, env, src, render}
}

// Kind implements scope.Element.
func (l *Latex) Kind() scope.Kind {
	if l.InlineMath {
		return scope.Inline
	}

	return scope.Block
}

// ElementName implements scope.Element.
func (l *Latex) ElementName() string { return "latex" }

// Compile implements scope.Element: registers an async rendering task.
func (l *Latex) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	loc := l.loc
	env, src, inline, render := l.Env, l.Source, l.InlineMath, l.Render

	out.AddTask(func() (string, report.Reports) {
		if render == nil {
			return fmt.Sprintf(`<code class="latex-fallback">%s</code>`, cc.Sanitize(src)), nil
		}

		rendered, err := render(env, src, inline)
		if err != nil {
			return "", report.Reports{report.Newf(report.KindCompileError, loc, "latex render failed: %s", err)}
		}

		return rendered, nil
	})

	return nil
}

// Raw is an opaque pass-through string of a declared kind, emitted
// verbatim without sanitization — e.g. raw HTML fragments
// authored directly by the user.
type Raw struct {
	base
	RawKind string
	Content string
}

// NewRaw constructs a Raw element.
func NewRaw(loc source.Token, rawKind, content string) *Raw {
	return &Raw{base{loc}, rawKind, content}
}

// Kind implements scope.Element.
func (r *Raw) Kind() scope.Kind { return scope.Inline }

// ElementName implements scope.Element.
func (r *Raw) ElementName() string { return "raw" }

// Compile implements scope.Element: emits Content verbatim, bypassing
// sanitization.
func (r *Raw) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	out.WriteString(r.Content)
	return nil
}
