package analysis

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"kitenav/internal/document"
	"kitenav/internal/workspace"
)

// fakeWorkspace serves files from a map, keyed by absolute path.
type fakeWorkspace struct {
	files map[string]string
}

func (w *fakeWorkspace) ListFiles() []string {
	paths := make([]string, 0, len(w.files))
	for path := range w.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func (w *fakeWorkspace) ReadFile(path, fromURI string) (string, string, bool) {
	if text, ok := w.files[path]; ok {
		return text, path, true
	}
	if !filepath.IsAbs(path) && fromURI != "" {
		joined := filepath.Clean(filepath.Join(filepath.Dir(workspace.URIToPath(fromURI)), path))
		if text, ok := w.files[joined]; ok {
			return text, joined, true
		}
	}
	return "", "", false
}

func newTestEngine(files map[string]string) *Engine {
	return NewEngine(&fakeWorkspace{files: files}, nil, zerolog.Nop())
}

// singleFileEngine builds an engine and document for one standalone file.
func singleFileEngine(text string) (*Engine, *document.Document) {
	path := "/ws/main.kite"
	engine := newTestEngine(map[string]string{path: text})
	return engine, document.New(workspace.PathToURI(path), text)
}

func openDoc(files map[string]string, path string) *document.Document {
	return document.New(workspace.PathToURI(path), files[path])
}

// offsetsIn maps locations belonging to one document back to byte offsets,
// sorted ascending.
func offsetsIn(doc *document.Document, locations []protocol.Location) []int {
	var offsets []int
	for _, loc := range locations {
		if string(loc.URI) != doc.URI {
			continue
		}
		offsets = append(offsets, doc.PositionToOffset(loc.Range.Start))
	}
	sort.Ints(offsets)
	return offsets
}

// applyEdits replays a WorkspaceEdit's changes for one document, back to
// front so earlier offsets stay valid.
func applyEdits(doc *document.Document, edits []protocol.TextEdit) string {
	sorted := make([]protocol.TextEdit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return doc.PositionToOffset(sorted[i].Range.Start) > doc.PositionToOffset(sorted[j].Range.Start)
	})

	text := doc.Text
	for _, edit := range sorted {
		start := doc.PositionToOffset(edit.Range.Start)
		end := doc.PositionToOffset(edit.Range.End)
		text = text[:start] + edit.NewText + text[end:]
	}
	return text
}

// nthIndex returns the byte offset of the n-th (zero-based) occurrence of
// sub in text.
func nthIndex(text, sub string, n int) int {
	at := -1
	for i := 0; i <= n; i++ {
		next := strings.Index(text[at+1:], sub)
		if next < 0 {
			return -1
		}
		at += 1 + next
	}
	return at
}
