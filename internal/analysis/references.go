package analysis

import (
	"sort"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"kitenav/internal/document"
	"kitenav/internal/lang"
	"kitenav/internal/scanner"
)

// FindReferences produces every location referring to the same logical
// symbol as the word at the cursor. Resolution order, first match wins:
// loop-comprehension variables, schema property definitions, dot access on a
// component instance, then general declaration-based resolution.
func (e *Engine) FindReferences(doc *document.Document, word string, cursor int) []protocol.Location {
	if word == "" {
		return nil
	}

	out := newLocationSet()

	// Loop variables are the narrowest scope there is: stay inside it and
	// never look at other files.
	if scope, ok := loopVariableScope(doc.Text, word, cursor); ok {
		e.scanInto(out, doc, word, scope.start, scope.end)
		return out.result()
	}

	if e.schemaPropertyReferences(doc, word, cursor, out) {
		return out.result()
	}

	if e.instanceDotReferences(doc, word, cursor, out) {
		return out.result()
	}

	if e.instancePropertyReferences(doc, word, cursor, out) {
		return out.result()
	}

	return e.declarationReferences(doc, word, cursor, out)
}

// schemaPropertyReferences handles a cursor sitting on a property name inside
// a schema body: the property's own location plus every instantiation match
// for that schema across the workspace.
func (e *Engine) schemaPropertyReferences(doc *document.Document, word string, cursor int, out *locationSet) bool {
	for _, decl := range e.declarationsFor(doc) {
		if decl.Kind != scanner.KindSchema {
			continue
		}
		def, ok := scanner.FindSchemaDefinition(doc.Text, decl.Name)
		if !ok || !def.Contains(cursor) {
			continue
		}
		start, end, _, ok := scanner.SchemaProperty(doc.Text, def, word)
		if !ok || cursor < start || cursor > end {
			continue
		}

		out.add(doc, start, end)
		e.findPropertyReferences(doc, decl.Name, word, out)
		return true
	}
	return false
}

// instanceDotReferences handles `instance.word` where instance is a declared
// component instance: the component type's input/output declaration, usages
// inside the component definition body, and every instantiation's property
// matches.
func (e *Engine) instanceDotReferences(doc *document.Document, word string, cursor int, out *locationSet) bool {
	_, wordStart, _ := doc.WordAt(cursor)
	if wordStart <= 0 || doc.Text[wordStart-1] != '.' {
		return false
	}
	instance, _, _ := doc.WordAt(wordStart - 1)
	if instance == "" {
		return false
	}

	var typeName string
	for _, decl := range e.declarationsFor(doc) {
		if decl.Kind == scanner.KindComponent && decl.ComponentType != "" && decl.Name == instance {
			typeName = decl.ComponentType
			break
		}
	}
	if typeName == "" {
		return false
	}

	// The definition body may live in another file.
	for _, f := range e.searchFiles(doc) {
		def, ok := scanner.FindComponentDefinition(f.text, typeName)
		if !ok {
			continue
		}
		d := e.documentFor(doc, f)
		if start, end, _, ok := scanner.IOProperty(f.text, def, word); ok {
			out.add(d, start, end)
		}
		e.scanInto(out, d, word, def.BodyStart, def.BodyEnd)
		break
	}

	e.findPropertyReferences(doc, typeName, word, out)
	return true
}

// instancePropertyReferences handles a cursor on a property assignment
// inside one instantiation's body. Results are anchored to that single
// instance — its own assignments plus `instance.word` accesses — so
// same-named properties on two instances of the same type never conflate.
func (e *Engine) instancePropertyReferences(doc *document.Document, word string, cursor int, out *locationSet) bool {
	for _, decl := range e.declarationsFor(doc) {
		var typeName string
		switch {
		case decl.Kind == scanner.KindResource:
			typeName = decl.Type
		case decl.Kind == scanner.KindComponent && decl.ComponentType != "":
			typeName = decl.ComponentType
		default:
			continue
		}

		for _, inst := range scanner.FindInstantiations(doc.Text, typeName) {
			if inst.Name != decl.Name || !inst.Contains(cursor) {
				continue
			}
			if !propertyAssignmentAt(doc.Text, inst, word, cursor) {
				continue
			}
			instanceMatches(doc, inst, word, out)
			return true
		}
	}
	return false
}

// declarationReferences is the general path: select the declaration the
// cursor means, then scan the scope it governs.
func (e *Engine) declarationReferences(doc *document.Document, word string, cursor int, out *locationSet) []protocol.Location {
	decls := e.declarationsFor(doc)

	var candidates []*scanner.Declaration
	for _, d := range decls {
		if d.Name == word && d.VisibleAt(cursor) {
			candidates = append(candidates, d)
		}
	}

	winner := selectDeclaration(candidates, cursor)
	if winner == nil {
		// No declaration anywhere: degrade to a best-effort scan of the
		// current file.
		e.scanInto(out, doc, word, 0, len(doc.Text))
		return out.result()
	}

	// The declaration's own site is part of its reference set, exactly once;
	// the location set deduplicates it against the textual scan.
	out.add(doc, winner.NameStart, winner.NameEnd)

	// Inputs and outputs are scoped to their component definition body, but
	// also surface as properties on every instantiation of the component.
	if winner.Kind == scanner.KindInput || winner.Kind == scanner.KindOutput {
		if typeName := e.enclosingComponentType(decls, winner); typeName != "" {
			if winner.Scope != nil {
				e.scanInto(out, doc, word, winner.Scope.Start, winner.Scope.End)
			}
			e.findPropertyReferences(doc, typeName, word, out)
			return out.result()
		}
	}

	if winner.Scope != nil {
		e.scanInto(out, doc, word, winner.Scope.Start, winner.Scope.End)
		return out.result()
	}

	if winner.FileScoped() {
		e.scanInto(out, doc, word, 0, len(doc.Text))
		return out.result()
	}

	// Workspace-visible kind: schemas, components, functions, resources,
	// type aliases.
	for _, f := range e.searchFiles(doc) {
		d := e.documentFor(doc, f)
		e.scanInto(out, d, word, 0, len(f.text))
	}
	return out.result()
}

// selectDeclaration applies the visibility tie-breaks: an exact hit on a
// declaration's name wins outright; otherwise the innermost (smallest) scope
// wins, and any scoped declaration beats an unscoped one.
func selectDeclaration(candidates []*scanner.Declaration, cursor int) *scanner.Declaration {
	if len(candidates) == 0 {
		return nil
	}

	for _, d := range candidates {
		if d.OnName(cursor) {
			return d
		}
	}

	sorted := make([]*scanner.Declaration, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.Scope != nil && b.Scope != nil:
			return a.Scope.Span() < b.Scope.Span()
		case a.Scope != nil:
			return true
		default:
			return false
		}
	})
	return sorted[0]
}

// enclosingComponentType maps an input/output declaration to the component
// definition whose body scopes it.
func (e *Engine) enclosingComponentType(decls []*scanner.Declaration, io *scanner.Declaration) string {
	if io.Scope == nil {
		return ""
	}
	for _, d := range decls {
		if !d.IsComponentDefinition() {
			continue
		}
		if io.Scope.Start >= d.Start && io.Scope.End <= d.End {
			return d.Name
		}
	}
	return ""
}

// scanInto runs the whole-word scope scan and adds each hit.
func (e *Engine) scanInto(out *locationSet, d *document.Document, word string, start, end int) {
	for _, at := range lang.ScanScopeForWord(d.Text, word, start, end) {
		out.add(d, at, at+len(word))
	}
}

// documentFor avoids rebuilding the line index for the originating snapshot.
func (e *Engine) documentFor(origin *document.Document, f sourceFile) *document.Document {
	if f.uri == origin.URI {
		return origin
	}
	return document.New(f.uri, f.text)
}
