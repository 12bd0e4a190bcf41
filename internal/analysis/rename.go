package analysis

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"kitenav/internal/document"
	"kitenav/internal/lang"
)

// Rename renames the symbol at the cursor to newName across the workspace.
// The result is one atomic multi-document edit batch; partial per-file edits
// are never produced. Invalid names (bad identifier grammar, keywords,
// built-in type names) and symbols with no references both yield nil and no
// edits. Diagnostics revalidation is the caller's concern; the core never
// performs the side effect.
func (e *Engine) Rename(doc *document.Document, cursor int, newName string) *protocol.WorkspaceEdit {
	newName = strings.TrimSpace(newName)
	if !lang.IsValidIdentifier(newName) {
		e.log.Debug().Str("name", newName).Msg("rename rejected: invalid identifier")
		return nil
	}

	word, _, _ := doc.WordAt(cursor)
	if word == "" {
		return nil
	}

	locations := e.FindReferences(doc, word, cursor)
	if len(locations) == 0 {
		return nil
	}

	changes := make(map[protocol.DocumentUri][]protocol.TextEdit)
	for _, loc := range locations {
		changes[loc.URI] = append(changes[loc.URI], protocol.TextEdit{
			Range:   loc.Range,
			NewText: newName,
		})
	}

	e.log.Debug().
		Str("from", word).
		Str("to", newName).
		Int("edits", len(locations)).
		Int("documents", len(changes)).
		Msg("rename computed")

	return &protocol.WorkspaceEdit{Changes: changes}
}
