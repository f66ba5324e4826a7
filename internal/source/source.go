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

package source

import (
	"fmt"
	"os"
)

// Source is the common interface implemented by every addressable text
// container: on-disk files, in-memory buffers, and sources virtually
// derived from another source by some transformation.
//
// A Source is immutable once constructed; content is shared freely between
// scopes, LSP views and async compile tasks without copying.
type Source interface {
	// Name identifies this source for diagnostics and URIs.
	Name() string
	// URL returns the addressable location of this source, if any.
	URL() string
	// Content returns the full text of this source.
	Content() []rune
	// Location returns the token in an ancestor source that this source
	// was derived from, along with true, or (zero,false) for a root file
	// or buffer source that was not derived from anything.
	Location() (Token, bool)
}

// File is a Source backed by a file read from disk.
type File struct {
	name     string
	path     string
	contents []rune
}

// NewFile reads filename from disk and wraps it as a root Source.
func NewFile(filename string) (*File, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading source file %q: %w", filename, err)
	}

	return &File{filename, filename, []rune(string(bytes))}, nil
}

// NewFileFromBytes constructs a File source from bytes already in memory,
// without touching disk — used by tests and by project loaders that have
// already read the bytes.
func NewFileFromBytes(filename string, bytes []byte) *File {
	return &File{filename, filename, []rune(string(bytes))}
}

// Name implements Source.
func (f *File) Name() string { return f.name }

// URL implements Source.  File sources use a "file://" URL of their path.
func (f *File) URL() string { return "file://" + f.path }

// Content implements Source.
func (f *File) Content() []rune { return f.contents }

// Location implements Source; file sources are roots.
func (f *File) Location() (Token, bool) { return Token{}, false }

// Buffer is a Source backed by in-memory text with no disk backing,
// typically used for LSP unsaved documents or tests.
type Buffer struct {
	name     string
	contents []rune
}

// NewBuffer constructs an in-memory Source from a name and its text.
func NewBuffer(name, text string) *Buffer {
	return &Buffer{name, []rune(text)}
}

// Name implements Source.
func (b *Buffer) Name() string { return b.name }

// URL implements Source.
func (b *Buffer) URL() string { return "buffer://" + b.name }

// Content implements Source.
func (b *Buffer) Content() []rune { return b.contents }

// Location implements Source; buffers are roots.
func (b *Buffer) Location() (Token, bool) { return Token{}, false }

// Transformation names the kind of derivation that produced a Virtual
// source, recorded for diagnostics (e.g. "variable-expansion",
// "script-output", "import").
type Transformation string

// Recognised transformations producing Virtual sources.
const (
	TransformVariableExpansion Transformation = "variable-expansion"
	TransformScriptOutput      Transformation = "script-output"
	TransformImport            Transformation = "import"
)

// Virtual is a Source whose content was produced by transforming a region
// of a parent source (variable expansion, script output, etc). It always
// carries the parent token so OriginalRange can resolve back to authored
// text.
type Virtual struct {
	name      string
	contents  []rune
	parent    Token
	transform Transformation
}

// NewVirtual constructs a derived source.  parent is the token (in some
// ancestor source) whose expansion produced contents.
func NewVirtual(name string, contents []rune, parent Token, transform Transformation) *Virtual {
	return &Virtual{name, contents, parent, transform}
}

// Name implements Source.
func (v *Virtual) Name() string { return v.name }

// URL implements Source.  Virtual sources have no addressable URL of their
// own; they report their parent's.
func (v *Virtual) URL() string { return v.parent.Source().URL() }

// Content implements Source.
func (v *Virtual) Content() []rune { return v.contents }

// Location implements Source.
func (v *Virtual) Location() (Token, bool) { return v.parent, true }

// Transform returns the kind of derivation that produced this source.
func (v *Virtual) Transform() Transformation { return v.transform }
