package server

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"kitenav/internal/analysis"
	"kitenav/internal/document"
	"kitenav/internal/scanner"
	"kitenav/internal/workspace"
)

const lsName = "kitenav"

// Server wires the analysis engine into the LSP protocol. Handlers snapshot
// the document, run the core synchronously, and translate offsets to
// protocol positions. The only deferred work is the post-rename diagnostics
// revalidation, a fire-and-forget notification decoupled from the rename
// response.
type Server struct {
	handler    *protocol.Handler
	engine     *analysis.Engine
	store      *DocumentStore
	cache      *workspace.DeclCache
	scan       *scanner.DocumentScanner
	log        zerolog.Logger
	version    string
	revalidate chan *glsp.Context
}

func New(engine *analysis.Engine, cache *workspace.DeclCache, version string, log zerolog.Logger) *Server {
	s := &Server{
		engine:     engine,
		store:      NewDocumentStore(),
		cache:      cache,
		scan:       scanner.New(log),
		log:        log,
		version:    version,
		revalidate: make(chan *glsp.Context, 16),
	}

	s.handler = &protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.didOpen,
		TextDocumentDidChange:  s.didChange,
		TextDocumentDidClose:   s.didClose,
		TextDocumentReferences: s.references,
		TextDocumentDefinition: s.definition,
		TextDocumentRename:     s.rename,
	}

	go s.revalidateLoop()
	return s
}

// Run serves LSP over stdio until the client disconnects.
func (s *Server) Run() error {
	srv := glspserver.NewServer(s.handler, lsName, false)
	return srv.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindFull

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	s.log.Info().Msg("client initialized")
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	s.log.Info().Interface("cache", s.cache.Stats()).Msg("shutting down")
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	doc := s.store.Open(uri, params.TextDocument.Text)
	s.cache.Put(uri, s.scan.Scan(uri, doc.Text))
	return nil
}

func (s *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	doc, ok := s.store.Get(uri)
	if !ok {
		return nil
	}

	text := doc.Text
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				text = c.Text
				continue
			}
			snapshot := document.New(uri, text)
			start := snapshot.PositionToOffset(c.Range.Start)
			end := snapshot.PositionToOffset(c.Range.End)
			text = text[:start] + c.Text + text[end:]
		}
	}

	doc = s.store.Open(uri, text)
	s.cache.Put(uri, s.scan.Scan(uri, doc.Text))
	return nil
}

func (s *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	s.store.Close(uri)
	// Force a disk rescan next time the file is consulted.
	s.cache.Invalidate(uri)
	return nil
}

func (s *Server) references(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	doc, ok := s.snapshot(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}

	cursor := doc.PositionToOffset(params.Position)
	word, _, _ := doc.WordAt(cursor)
	if word == "" {
		return nil, nil
	}
	return s.engine.FindReferences(doc, word, cursor), nil
}

func (s *Server) definition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc, ok := s.snapshot(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}

	loc := s.engine.Definition(doc, doc.PositionToOffset(params.Position))
	if loc == nil {
		return nil, nil
	}
	return *loc, nil
}

func (s *Server) rename(ctx *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	doc, ok := s.snapshot(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}

	edit := s.engine.Rename(doc, doc.PositionToOffset(params.Position), params.NewName)
	if edit == nil {
		return nil, nil
	}

	// Queue revalidation off the request path. The republish is harmless
	// whenever it lands: with no validation rules the diagnostic set is
	// empty both before and after the edits.
	select {
	case s.revalidate <- ctx:
	default:
	}
	return edit, nil
}

// snapshot returns the open document, falling back to a disk read for files
// the editor hasn't opened.
func (s *Server) snapshot(uri string) (*document.Document, bool) {
	if doc, ok := s.store.Get(uri); ok {
		return doc, true
	}
	data, err := os.ReadFile(workspace.URIToPath(uri))
	if err != nil {
		return nil, false
	}
	return document.New(uri, string(data)), true
}

// revalidateLoop rescans and re-publishes diagnostics for the open documents
// after a rename. A rename can change cross-file resolvability, so the
// server's cached view must be rebuilt; with no validation rules configured
// the published set is always empty.
func (s *Server) revalidateLoop() {
	for ctx := range s.revalidate {
		for _, uri := range s.store.List() {
			if doc, ok := s.store.Get(uri); ok {
				s.cache.Put(uri, s.scan.Scan(uri, doc.Text))
			}
			ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
				URI:         protocol.DocumentUri(uri),
				Diagnostics: []protocol.Diagnostic{},
			})
		}
	}
}
