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

// Package lspserver is the stdio JSON-RPC transport for the language-server
// mode (`nmlc lsp`), and the one place in this module go.lsp.dev/jsonrpc2,
// go.lsp.dev/protocol and go.lsp.dev/uri are exercised: it is a trivial
// serializer over the semantic tokens, hovers, definitions and conceals
// package lspdata already recorded during parsing. Semantic token
// (line, character) coordinates were already converted to the chosen
// offset encoding at record time (package lspdata), so encodeDelta only
// has to take differences; other positions are still resolved here via
// lineCursorOffset/spanToRange.
package lspserver

import (
	"context"
	"encoding/json"
	"io"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/nml-lang/nmlc/internal/cache"
	"github.com/nml-lang/nmlc/internal/lspdata"
	"github.com/nml-lang/nmlc/internal/project"
	"github.com/nml-lang/nmlc/internal/source"
	"github.com/nml-lang/nmlc/internal/unit"
)

// Server holds every open document's translation unit, keyed by its LSP
// URI, plus the optional cache a compile-on-save would also use.
type Server struct {
	conn  jsonrpc2.Conn
	cache *cache.Cache

	docs map[uri.URI]*unit.TranslationUnit
}

// New constructs a Server; cache may be nil to disable cross-unit
// reference resolution while editing.
func New(cache *cache.Cache) *Server {
	return &Server{cache: cache, docs: map[uri.URI]*unit.TranslationUnit{}}
}

// Serve runs the JSON-RPC message loop over rwc (typically stdin/stdout)
// until the connection closes.
// Grounded on go.lsp.dev/jsonrpc2's Handler/Replier pattern: each inbound
// request is dispatched by method name and answered through reply, rather
// than through a generated server interface, since the LSP transport
// itself is kept separate from the core (only the side-data it serializes is
// specified).
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewStream(rwc)
	conn := jsonrpc2.NewConn(stream)
	s.conn = conn

	conn.Go(ctx, s.handle)

	<-conn.Done()

	return conn.Err()
}

func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case protocol.MethodInitialize:
		return reply(ctx, s.initialize(), nil)
	case protocol.MethodTextDocumentDidOpen:
		var params protocol.DidOpenTextDocumentParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}

		s.didOpen(params)

		return reply(ctx, nil, nil)
	case protocol.MethodTextDocumentDidChange:
		var params protocol.DidChangeTextDocumentParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}

		s.didChange(params)

		return reply(ctx, nil, nil)
	case protocol.MethodTextDocumentHover:
		var params protocol.HoverParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}

		return reply(ctx, s.hover(params), nil)
	case protocol.MethodTextDocumentDefinition:
		var params protocol.DefinitionParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}

		return reply(ctx, s.definition(params), nil)
	case protocol.MethodSemanticTokensFull:
		var params protocol.SemanticTokensParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}

		return reply(ctx, s.semanticTokens(params), nil)
	default:
		return reply(ctx, nil, jsonrpc2.ErrMethodNotFound)
	}
}

func (s *Server) initialize() *protocol.InitializeResult {
	full := protocol.TextDocumentSyncKindFull

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync:   full,
			HoverProvider:      true,
			DefinitionProvider: true,
			SemanticTokensProvider: &struct {
				Legend protocol.SemanticTokensLegend `json:"legend"`
				Full   bool                          `json:"full"`
			}{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes: []protocol.SemanticTokenTypes{"keyword", "string", "comment", "function", "variable", "operator"},
				},
				Full: true,
			},
		},
	}
}

func (s *Server) didOpen(params protocol.DidOpenTextDocumentParams) {
	u := params.TextDocument.URI
	src := source.NewBuffer(string(u), params.TextDocument.Text)

	tu, _ := project.ParseUnit(src, string(u), project.ReferenceKeyFor(string(u)))
	s.docs[u] = tu
}

func (s *Server) didChange(params protocol.DidChangeTextDocumentParams) {
	if len(params.ContentChanges) == 0 {
		return
	}
	// Full-document sync only: the last change event carries the
	// document's complete new text.
	u := params.TextDocument.URI
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	src := source.NewBuffer(string(u), text)

	tu, _ := project.ParseUnit(src, string(u), project.ReferenceKeyFor(string(u)))
	s.docs[u] = tu
}

func (s *Server) hover(params protocol.HoverParams) *protocol.Hover {
	tu, ok := s.docs[params.TextDocument.URI]
	if !ok {
		return nil
	}

	offset := lineCursorOffset(tu, params.Position)

	h, ok := tu.LSP.HoverAt(offset)
	if !ok {
		return nil
	}

	return &protocol.Hover{Contents: protocol.MarkupContent{Kind: protocol.PlainText, Value: h.Text}}
}

func (s *Server) definition(params protocol.DefinitionParams) []protocol.Location {
	tu, ok := s.docs[params.TextDocument.URI]
	if !ok {
		return nil
	}

	offset := lineCursorOffset(tu, params.Position)

	def, ok := tu.LSP.DefinitionAt(offset)
	if !ok {
		return nil
	}

	return []protocol.Location{{
		URI:   uri.New(def.TargetName),
		Range: spanToRange(def.TargetSpan),
	}}
}

func (s *Server) semanticTokens(params protocol.SemanticTokensParams) *protocol.SemanticTokens {
	tu, ok := s.docs[params.TextDocument.URI]
	if !ok {
		return &protocol.SemanticTokens{}
	}

	tu.LSP.FlushDeferred()

	return &protocol.SemanticTokens{Data: encodeDelta(tu.LSP.SemanticTokens)}
}

// encodeDelta produces the LSP wire format's delta-encoded
// (deltaLine, deltaStartChar, length, tokenType, tokenModifiers) quintuples
// from the sorted absolute (line, character) positions package lspdata
// recorded at AddSemanticToken time.
func encodeDelta(tokens []lspdata.SemanticToken) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)

	prevLine, prevChar := 0, 0

	for _, t := range tokens {
		line, char := t.Start.Line, t.Start.Character

		deltaChar := char
		if line == prevLine {
			deltaChar = char - prevChar
		}

		length := t.End.Character - t.Start.Character
		if t.End.Line != t.Start.Line {
			length = t.Span.Length()
		}

		data = append(data, uint32(line-prevLine), uint32(deltaChar), uint32(length), tokenTypeIndex(t.Kind), 0)
		prevLine, prevChar = line, char
	}

	return data
}

func tokenTypeIndex(kind lspdata.TokenKind) uint32 {
	switch kind {
	case lspdata.TokenKeyword:
		return 0
	case lspdata.TokenString:
		return 1
	case lspdata.TokenComment:
		return 2
	case lspdata.TokenFunction:
		return 3
	case lspdata.TokenVariable:
		return 4
	case lspdata.TokenOperator:
		return 5
	default:
		return 0
	}
}

func spanToRange(span source.Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: 0, Character: uint32(span.Start())},
		End:   protocol.Position{Line: 0, Character: uint32(span.End())},
	}
}

// lineCursorOffset converts an LSP (line, UTF-16 character) position back
// to a byte offset in tu's root source, by re-walking a fresh LineCursor.
func lineCursorOffset(tu *unit.TranslationUnit, pos protocol.Position) int {
	content := tu.Source().Content()
	lc := source.NewLineCursor(content, source.EncodingUTF16)

	for lc.Line() < int(pos.Line) && lc.Byte() < len(content) {
		lc.MoveTo(lc.Byte() + 1)
	}

	target := lc.Byte()

	for lc.Line() == int(pos.Line) && lc.LinePos() < int(pos.Character) && lc.Byte() < len(content) {
		lc.MoveTo(lc.Byte() + 1)
		target = lc.Byte()
	}

	return target
}
