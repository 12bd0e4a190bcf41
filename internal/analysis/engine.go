package analysis

import (
	"github.com/rs/zerolog"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"kitenav/internal/document"
	"kitenav/internal/scanner"
	"kitenav/internal/workspace"
)

// DeclarationSource is the host-owned declaration cache. A miss degrades the
// engine to best-effort textual scanning of the document.
type DeclarationSource interface {
	Get(uri string) ([]*scanner.Declaration, bool)
}

// Engine answers find-references, rename and go-to-definition queries for
// Kite documents. Every operation is a synchronous pure function of the
// document snapshot, the cached declarations and the workspace callbacks.
type Engine struct {
	ws    workspace.Workspace
	decls DeclarationSource
	scan  *scanner.DocumentScanner
	log   zerolog.Logger
}

func NewEngine(ws workspace.Workspace, decls DeclarationSource, log zerolog.Logger) *Engine {
	return &Engine{
		ws:    ws,
		decls: decls,
		scan:  scanner.New(log),
		log:   log,
	}
}

// declarationsFor returns the cached declarations for the document, or scans
// the snapshot directly when the cache has nothing.
func (e *Engine) declarationsFor(doc *document.Document) []*scanner.Declaration {
	if e.decls != nil {
		if decls, ok := e.decls.Get(doc.URI); ok {
			return decls
		}
	}
	return e.scan.Scan(doc.URI, doc.Text)
}

// sourceFile is one searchable workspace file alongside the snapshot of the
// document the query originated from.
type sourceFile struct {
	uri  string
	text string
}

// searchFiles enumerates the current document snapshot first, then every
// other workspace file. Unreadable files are skipped so one bad file never
// poisons the rest of the results.
func (e *Engine) searchFiles(doc *document.Document) []sourceFile {
	files := []sourceFile{{uri: doc.URI, text: doc.Text}}
	if e.ws == nil {
		return files
	}

	self := workspace.URIToPath(doc.URI)
	for _, path := range e.ws.ListFiles() {
		if path == self {
			continue
		}
		text, _, ok := e.ws.ReadFile(path, doc.URI)
		if !ok {
			continue
		}
		files = append(files, sourceFile{uri: workspace.PathToURI(path), text: text})
	}
	return files
}

// locationSet accumulates locations while deduplicating by document and
// start offset, so a declaration site found both explicitly and by the
// textual scan appears exactly once.
type locationSet struct {
	seen      map[string]map[int]bool
	locations []protocol.Location
}

func newLocationSet() *locationSet {
	return &locationSet{seen: make(map[string]map[int]bool)}
}

func (s *locationSet) add(d *document.Document, start, end int) {
	if s.seen[d.URI] == nil {
		s.seen[d.URI] = make(map[int]bool)
	}
	if s.seen[d.URI][start] {
		return
	}
	s.seen[d.URI][start] = true
	s.locations = append(s.locations, protocol.Location{
		URI:   protocol.DocumentUri(d.URI),
		Range: d.RangeBetween(start, end),
	})
}

func (s *locationSet) result() []protocol.Location {
	return s.locations
}
