package analysis

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"kitenav/internal/document"
	"kitenav/internal/scanner"
	"kitenav/internal/workspace"
)

// Definition resolves the symbol at the cursor to its declaration site.
// Local declarations win; a cursor on an import path or an imported symbol
// re-runs the lookup against the imported file; property-access chains
// resolve segment by segment. Nil means nothing was found.
func (e *Engine) Definition(doc *document.Document, cursor int) *protocol.Location {
	// On the path string of an import: jump to the file itself.
	for _, imp := range scanner.FindImports(doc.Text) {
		if cursor >= imp.PathStart && cursor <= imp.PathEnd {
			return e.importTarget(doc, imp.Path, "")
		}
	}

	word, wordStart, _ := doc.WordAt(cursor)
	if word == "" {
		return nil
	}

	if wordStart > 0 && doc.Text[wordStart-1] == '.' {
		return e.chainDefinition(doc, cursor)
	}

	decls := e.declarationsFor(doc)
	var candidates []*scanner.Declaration
	for _, d := range decls {
		if d.Name == word && d.VisibleAt(cursor) {
			candidates = append(candidates, d)
		}
	}
	if winner := selectDeclaration(candidates, cursor); winner != nil {
		// An import declaration is itself just a pointer; follow it.
		if winner.Kind == scanner.KindImport {
			return e.importTarget(doc, winner.Import.Path, "")
		}
		loc := doc.LocationBetween(winner.NameStart, winner.NameEnd)
		return &loc
	}

	// Not declared here: maybe it comes in through an import.
	for _, imp := range scanner.FindImports(doc.Text) {
		if !imp.ContainsSymbol(word) {
			continue
		}
		if loc := e.importTarget(doc, imp.Path, word); loc != nil {
			return loc
		}
	}
	return nil
}

// importTarget resolves an import path and optionally looks a symbol up in
// the target file. With an empty symbol the location is the top of the file.
func (e *Engine) importTarget(doc *document.Document, path, symbol string) *protocol.Location {
	resolved, text, ok := workspace.ResolveImport(e.ws, path, doc.URI)
	if !ok {
		return nil
	}
	target := document.New(workspace.PathToURI(resolved), text)

	if symbol == "" {
		loc := target.LocationBetween(0, 0)
		return &loc
	}

	for _, d := range e.scan.Scan(target.URI, text) {
		if d.Name != symbol {
			continue
		}
		switch d.Kind {
		case scanner.KindSchema, scanner.KindFunction, scanner.KindComponent,
			scanner.KindResource, scanner.KindTypeAlias, scanner.KindVariable:
			loc := target.LocationBetween(d.NameStart, d.NameEnd)
			return &loc
		}
	}
	return nil
}

// chainSegment is one identifier of a dotted access chain.
type chainSegment struct {
	name  string
	start int
	end   int
}

// chainDefinition resolves `a.b.c` left to right, re-deriving the current
// schema/component context from each resolved segment. Two chains rooted at
// different instances therefore resolve identically named nested blocks to
// distinct definitions.
func (e *Engine) chainDefinition(doc *document.Document, cursor int) *protocol.Location {
	segments, idx := chainAt(doc.Text, cursor)
	if idx <= 0 {
		return nil
	}

	base := segments[0]
	typeName := e.instanceType(doc, base)
	if typeName == "" {
		return nil
	}

	for i := 1; i <= idx; i++ {
		f, def := e.findTypeDefinition(doc, typeName)
		if def == nil {
			return nil
		}

		var start, end int
		var next string
		var ok bool
		if def.Keyword == "schema" {
			start, end, next, ok = scanner.SchemaProperty(f.text, def, segments[i].name)
		} else {
			start, end, next, ok = scanner.IOProperty(f.text, def, segments[i].name)
		}
		if !ok {
			return nil
		}

		if i == idx {
			d := e.documentFor(doc, f)
			loc := d.LocationBetween(start, end)
			return &loc
		}
		typeName = next
	}
	return nil
}

// instanceType maps a chain's base identifier to the schema or component
// type it is an instance of.
func (e *Engine) instanceType(doc *document.Document, base chainSegment) string {
	for _, d := range e.declarationsFor(doc) {
		if d.Name != base.name || !d.VisibleAt(base.start) {
			continue
		}
		switch d.Kind {
		case scanner.KindResource:
			return d.Type
		case scanner.KindComponent:
			return d.ComponentType
		case scanner.KindVariable, scanner.KindInput, scanner.KindOutput, scanner.KindParameter:
			if d.Type != "" {
				return d.Type
			}
		}
	}
	return ""
}

// findTypeDefinition locates the schema or component definition for a type
// name, current file first, then the rest of the workspace.
func (e *Engine) findTypeDefinition(origin *document.Document, name string) (sourceFile, *scanner.BlockRef) {
	for _, f := range e.searchFiles(origin) {
		if def, ok := scanner.FindSchemaDefinition(f.text, name); ok {
			return f, def
		}
		if def, ok := scanner.FindComponentDefinition(f.text, name); ok {
			return f, def
		}
	}
	return sourceFile{}, nil
}

// chainAt extracts the dotted identifier chain containing the cursor and the
// index of the segment the cursor sits on.
func chainAt(text string, cursor int) ([]chainSegment, int) {
	isChainChar := func(b byte) bool {
		return b == '.' || b == '_' ||
			b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
	}

	start := cursor
	for start > 0 && isChainChar(text[start-1]) {
		start--
	}
	end := cursor
	for end < len(text) && isChainChar(text[end]) {
		end++
	}
	if start >= end {
		return nil, -1
	}

	var segments []chainSegment
	idx := -1
	segStart := start
	for i := start; i <= end; i++ {
		if i == end || text[i] == '.' {
			if i > segStart {
				seg := chainSegment{name: text[segStart:i], start: segStart, end: i}
				if cursor >= seg.start && cursor <= seg.end {
					idx = len(segments)
				}
				segments = append(segments, seg)
			}
			segStart = i + 1
		}
	}
	return segments, idx
}
