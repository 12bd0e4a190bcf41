package scanner

import (
	"regexp"
	"strings"

	"kitenav/internal/lang"
)

// BlockRef locates a named block declaration in raw text: the name token and
// the body bounds (offsets of the braces, half-open past the closing one).
type BlockRef struct {
	Name      string
	Type      string // instantiations: the instantiated type
	Keyword   string // "schema", "component" or "resource"
	NameStart int
	NameEnd   int
	BodyStart int // offset of the opening brace
	BodyEnd   int // offset just past the closing brace
}

// Contains reports whether the offset lies inside the block's body.
func (b *BlockRef) Contains(offset int) bool {
	return offset > b.BodyStart && offset < b.BodyEnd
}

// FindComponentDefinition locates the component *definition* (single
// identifier before the brace) with the given name.
func FindComponentDefinition(text, name string) (*BlockRef, bool) {
	cl := lang.Classify(text)
	for _, m := range componentPattern.FindAllStringSubmatchIndex(text, -1) {
		if cl.At(m[2]) != lang.ClassCode || m[4] >= 0 {
			continue
		}
		if text[m[2]:m[3]] != name {
			continue
		}
		block, ok := blockBounds(text, cl, m)
		if !ok {
			continue
		}
		block.Name = name
		block.Keyword = "component"
		block.NameStart, block.NameEnd = m[2], m[3]
		return block, true
	}
	return nil, false
}

// FindSchemaDefinition locates the schema declaration with the given name.
func FindSchemaDefinition(text, name string) (*BlockRef, bool) {
	cl := lang.Classify(text)
	for _, m := range schemaPattern.FindAllStringSubmatchIndex(text, -1) {
		if cl.At(m[2]) != lang.ClassCode || text[m[2]:m[3]] != name {
			continue
		}
		block, ok := blockBounds(text, cl, m)
		if !ok {
			continue
		}
		block.Name = name
		block.Keyword = "schema"
		block.NameStart, block.NameEnd = m[2], m[3]
		return block, true
	}
	return nil, false
}

// FindInstantiations enumerates every resource or component instantiation of
// the exact type across the text: two identifiers before the brace, the first
// being the type, the second the instance name. Type definitions never match.
func FindInstantiations(text, typeName string) []*BlockRef {
	cl := lang.Classify(text)
	var out []*BlockRef

	collect := func(pattern *regexp.Regexp, keyword string) {
		for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
			if cl.At(m[2]) != lang.ClassCode {
				continue
			}
			if m[4] < 0 || text[m[2]:m[3]] != typeName {
				continue
			}
			block, ok := blockBounds(text, cl, m)
			if !ok {
				continue
			}
			block.Name = text[m[4]:m[5]]
			block.Type = typeName
			block.Keyword = keyword
			block.NameStart, block.NameEnd = m[4], m[5]
			out = append(out, block)
		}
	}

	collect(resourcePattern, "resource")
	collect(componentPattern, "component")
	return out
}

// IOProperty locates the name token of an input or output declaration inside
// a component definition body, returning the name span and declared type.
func IOProperty(text string, def *BlockRef, ioName string) (int, int, string, bool) {
	cl := lang.Classify(text)
	body := text[def.BodyStart:def.BodyEnd]
	for _, pattern := range []*regexp.Regexp{inputPattern, outputPattern} {
		for _, m := range pattern.FindAllStringSubmatchIndex(body, -1) {
			at := def.BodyStart + m[0]
			if cl.At(at) != lang.ClassCode {
				continue
			}
			if body[m[4]:m[5]] == ioName {
				return def.BodyStart + m[4], def.BodyStart + m[5], body[m[2]:m[3]], true
			}
		}
	}
	return 0, 0, "", false
}

// SchemaProperty locates a property declared inside a schema body — a line
// of the form `name type` or `name: type` — returning the name span and the
// property's declared type.
func SchemaProperty(text string, def *BlockRef, propName string) (int, int, string, bool) {
	cl := lang.Classify(text)
	pattern := regexp.MustCompile(`(?m)^\s*(` + regexp.QuoteMeta(propName) + `)\s*:?\s+([A-Za-z_]\w*)`)
	body := text[def.BodyStart:def.BodyEnd]
	for _, m := range pattern.FindAllStringSubmatchIndex(body, -1) {
		at := def.BodyStart + m[2]
		if cl.At(at) != lang.ClassCode {
			continue
		}
		return at, def.BodyStart + m[3], body[m[4]:m[5]], true
	}
	return 0, 0, "", false
}

// ImportRef is one import statement located in raw text.
type ImportRef struct {
	Path       string
	Symbols    []string // empty means wildcard
	Start, End int      // whole statement
	PathStart  int      // inside the quotes
	PathEnd    int
}

// ContainsSymbol reports whether the import names the symbol explicitly or
// imports everything.
func (r *ImportRef) ContainsSymbol(name string) bool {
	if len(r.Symbols) == 0 {
		return true
	}
	for _, s := range r.Symbols {
		if s == name {
			return true
		}
	}
	return false
}

// FindImports enumerates the import statements of a document in order.
func FindImports(text string) []*ImportRef {
	cl := lang.Classify(text)
	var out []*ImportRef
	for _, m := range importPattern.FindAllStringSubmatchIndex(text, -1) {
		if cl.At(m[0]) != lang.ClassCode {
			continue
		}
		out = append(out, &ImportRef{
			Path:      text[m[4]:m[5]],
			Symbols:   parseImportSymbols(text[m[2]:m[3]]),
			Start:     m[0],
			End:       m[1],
			PathStart: m[4],
			PathEnd:   m[5],
		})
	}
	return out
}

// FindLastImport returns the final import statement of a document.
func FindLastImport(text string) (*ImportRef, bool) {
	imports := FindImports(text)
	if len(imports) == 0 {
		return nil, false
	}
	return imports[len(imports)-1], true
}

// FindImportByPath returns the import statement with the exact path.
func FindImportByPath(text, path string) (*ImportRef, bool) {
	for _, imp := range FindImports(text) {
		if imp.Path == path {
			return imp, true
		}
	}
	return nil, false
}

func blockBounds(text string, cl *lang.Classification, m []int) (*BlockRef, bool) {
	open := strings.IndexByte(text[m[0]:m[1]], '{')
	if open < 0 {
		return nil, false
	}
	open += m[0]
	close := lang.MatchDelimiterClassified(text, open, cl)
	if close < 0 {
		return nil, false
	}
	return &BlockRef{BodyStart: open, BodyEnd: close + 1}, true
}
