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
	"strings"

	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
)

// Code is an inline or block fenced code element with a language tag, an
// optional title, and an optional line-offset for rendering.
type Code struct {
	base
	Inline     bool
	Language   string
	Title      string
	LineOffset int
	Content    string
}

// NewCode constructs a Code element.
func NewCode(loc source.Token, inline bool, language, title string, lineOffset int, content string) *Code {
	return &Code{base{loc}, inline, language, title, lineOffset, content}
}

// Kind implements scope.Element.
func (c *Code) Kind() scope.Kind {
	if c.Inline {
		return scope.Inline
	}

	return scope.Block
}

// ElementName implements scope.Element.
func (c *Code) ElementName() string { return "code" }

// Compile implements scope.Element.  Block code's embedded language was
// already registered as an LSP code-range at parse time (package
// langrules' CodeFenceRule); compile itself only needs to render the
// fenced output.
func (c *Code) Compile(cc scope.CompileContext, out scope.Output) report.Reports {
	if c.Inline {
		out.WriteString(fmt.Sprintf(`<code class="language-%s">%s</code>`,
			cc.Sanitize(c.Language), cc.Sanitize(c.Content)))

		return nil
	}

	if c.Title != "" {
		out.WriteString(fmt.Sprintf(`<figcaption>%s</figcaption>`, cc.Sanitize(c.Title)))
	}

	lines := strings.Split(c.Content, "\n")
	out.WriteString(fmt.Sprintf(`<pre><code class="language-%s" data-line-offset="%d">`,
		cc.Sanitize(c.Language), c.LineOffset))

	for i, line := range lines {
		if i > 0 {
			out.WriteString("\n")
		}

		out.WriteString(cc.Sanitize(line))
	}

	out.WriteString("</code></pre>")

	return nil
}
