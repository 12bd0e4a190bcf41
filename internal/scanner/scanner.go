package scanner

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"kitenav/internal/lang"
)

// Declaration-introducing line patterns. Lines are matched unanchored and
// validated against their prefix so a `[for v in xs]` loop header may precede
// a resource or component on the same line.
var (
	varPattern       = regexp.MustCompile(`\bvar\s+(?:([A-Za-z_]\w*)\s+)?([A-Za-z_]\w*)\s*=`)
	inputPattern     = regexp.MustCompile(`\binput\s+([A-Za-z_]\w*)\s+([A-Za-z_]\w*)`)
	outputPattern    = regexp.MustCompile(`\boutput\s+([A-Za-z_]\w*)\s+([A-Za-z_]\w*)`)
	resourcePattern  = regexp.MustCompile(`\bresource\s+([A-Za-z_]\w*)\s+([A-Za-z_]\w*)\s*\{`)
	componentPattern = regexp.MustCompile(`\bcomponent\s+([A-Za-z_]\w*)(?:\s+([A-Za-z_]\w*))?\s*\{`)
	schemaPattern    = regexp.MustCompile(`\bschema\s+([A-Za-z_]\w*)\s*\{`)
	funPattern       = regexp.MustCompile(`\bfun\s+([A-Za-z_]\w*)\s*\(([^)]*)\)(?:\s*->\s*([A-Za-z_]\w*))?`)
	typePattern      = regexp.MustCompile(`\btype\s+([A-Za-z_]\w*)\s*=`)
	forPattern       = regexp.MustCompile(`\bfor\s+([A-Za-z_]\w*)\s+in\b`)
	importPattern    = regexp.MustCompile(`\bimport\s+(\*|[A-Za-z_]\w*(?:\s*,\s*[A-Za-z_]\w*)*)\s+from\s+["']([^"']+)["']`)
	paramPattern     = regexp.MustCompile(`([A-Za-z_]\w*)\s+([A-Za-z_]\w*)`)
)

// scopeBlock is a region that bounds the visibility of declarations made
// inside it: a function body or a component-definition body. The interval
// covers the braces themselves.
type scopeBlock struct {
	name  string
	start int // offset of the opening brace
	end   int // offset just past the closing brace
}

func (b *scopeBlock) contains(offset int) bool {
	return offset >= b.start && offset < b.end
}

// DocumentScanner produces the ordered Declaration list for one document.
// It never fails: malformed lines simply yield no declarations.
type DocumentScanner struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *DocumentScanner {
	return &DocumentScanner{log: log}
}

// Scan runs both passes over the document text: scope-block discovery, then
// line-oriented declaration matching with doc back-fill.
func (s *DocumentScanner) Scan(uri, text string) []*Declaration {
	cl := lang.Classify(text)
	blocks := s.findScopeBlocks(text, cl)

	var decls []*Declaration

	lines := strings.Split(text, "\n")
	offset := 0
	for i, line := range lines {
		lineStart := offset
		offset += len(line) + 1

		if strings.TrimSpace(line) == "" {
			continue
		}
		decls = append(decls, s.scanLine(text, cl, blocks, lines, i, line, lineStart)...)
	}

	s.log.Debug().Str("uri", uri).Int("declarations", len(decls)).Msg("scanned document")
	return decls
}

// findScopeBlocks locates every function body and component-definition body.
// Component instantiations (two identifiers before the brace) are not scope
// blocks; declarations inside them attach to the enclosing definition body,
// if any.
func (s *DocumentScanner) findScopeBlocks(text string, cl *lang.Classification) []*scopeBlock {
	var blocks []*scopeBlock

	for _, m := range funPattern.FindAllStringSubmatchIndex(text, -1) {
		if !isCodeAt(cl, m[2]) {
			continue
		}
		open := nextOpenBrace(text, cl, m[1])
		if open < 0 {
			continue
		}
		close := lang.MatchDelimiterClassified(text, open, cl)
		if close < 0 {
			continue
		}
		blocks = append(blocks, &scopeBlock{
			name:  text[m[2]:m[3]],
			start: open,
			end:   close + 1,
		})
	}

	for _, m := range componentPattern.FindAllStringSubmatchIndex(text, -1) {
		if !isCodeAt(cl, m[2]) {
			continue
		}
		if m[4] >= 0 {
			// Two identifiers: an instantiation, not a scope block.
			continue
		}
		open := strings.IndexByte(text[m[0]:m[1]], '{')
		if open < 0 {
			continue
		}
		open += m[0]
		close := lang.MatchDelimiterClassified(text, open, cl)
		if close < 0 {
			continue
		}
		blocks = append(blocks, &scopeBlock{
			name:  text[m[2]:m[3]],
			start: open,
			end:   close + 1,
		})
	}

	return blocks
}

func (s *DocumentScanner) scanLine(text string, cl *lang.Classification, blocks []*scopeBlock, lines []string, lineIdx int, line string, lineStart int) []*Declaration {
	var decls []*Declaration

	add := func(d *Declaration) {
		if !isCodeAt(cl, d.NameStart) {
			return
		}
		d.Doc = docComment(lines, lineIdx)
		decls = append(decls, d)
	}

	// For-loop variables can share a line with the statement they prefix, so
	// they match independently of the other patterns.
	for _, m := range forPattern.FindAllStringSubmatchIndex(line, -1) {
		d := &Declaration{
			Name:      line[m[2]:m[3]],
			Kind:      KindForVariable,
			Start:     lineStart + m[0],
			End:       lineStart + m[1],
			NameStart: lineStart + m[2],
			NameEnd:   lineStart + m[3],
		}
		d.Scope = comprehensionScope(text, cl, d.Start)
		if d.Scope == nil {
			d.Scope = enclosingScope(blocks, d.NameStart)
		}
		add(d)
	}

	if m := matchDeclLine(importPattern, line); m != nil {
		symbols := parseImportSymbols(line[m[2]:m[3]])
		add(&Declaration{
			Name:      line[m[4]:m[5]],
			Kind:      KindImport,
			Start:     lineStart + m[0],
			End:       lineStart + m[1],
			NameStart: lineStart + m[4],
			NameEnd:   lineStart + m[5],
			Import:    &ImportSpec{Path: line[m[4]:m[5]], Symbols: symbols},
		})
		return decls
	}

	if m := matchDeclLine(varPattern, line); m != nil {
		d := &Declaration{
			Kind:  KindVariable,
			Start: lineStart + m[0],
			End:   lineStart + len(line),
		}
		if m[2] >= 0 {
			d.Type = line[m[2]:m[3]]
		}
		d.Name = line[m[4]:m[5]]
		d.NameStart = lineStart + m[4]
		d.NameEnd = lineStart + m[5]
		d.Scope = enclosingScope(blocks, d.NameStart)
		add(d)
		return decls
	}

	if m := matchDeclLine(inputPattern, line); m != nil {
		d := ioDeclaration(KindInput, line, lineStart, m)
		d.Scope = enclosingScope(blocks, d.NameStart)
		add(d)
		return decls
	}
	if m := matchDeclLine(outputPattern, line); m != nil {
		d := ioDeclaration(KindOutput, line, lineStart, m)
		d.Scope = enclosingScope(blocks, d.NameStart)
		add(d)
		return decls
	}

	if m := matchDeclLine(resourcePattern, line); m != nil {
		d := &Declaration{
			Name:      line[m[4]:m[5]],
			Kind:      KindResource,
			Type:      line[m[2]:m[3]],
			Start:     lineStart + m[0],
			End:       blockEnd(text, cl, lineStart, line, m),
			NameStart: lineStart + m[4],
			NameEnd:   lineStart + m[5],
		}
		d.Scope = enclosingScope(blocks, d.NameStart)
		add(d)
		return decls
	}

	if m := matchDeclLine(componentPattern, line); m != nil {
		d := &Declaration{
			Kind:  KindComponent,
			Start: lineStart + m[0],
			End:   blockEnd(text, cl, lineStart, line, m),
		}
		if m[4] >= 0 {
			// Instantiation: the declared name is the instance identifier.
			d.ComponentType = line[m[2]:m[3]]
			d.Name = line[m[4]:m[5]]
			d.NameStart = lineStart + m[4]
			d.NameEnd = lineStart + m[5]
			d.Scope = enclosingScope(blocks, d.NameStart)
		} else {
			d.Name = line[m[2]:m[3]]
			d.NameStart = lineStart + m[2]
			d.NameEnd = lineStart + m[3]
		}
		add(d)
		return decls
	}

	if m := matchDeclLine(schemaPattern, line); m != nil {
		add(&Declaration{
			Name:      line[m[2]:m[3]],
			Kind:      KindSchema,
			Start:     lineStart + m[0],
			End:       blockEnd(text, cl, lineStart, line, m),
			NameStart: lineStart + m[2],
			NameEnd:   lineStart + m[3],
		})
		return decls
	}

	if m := matchDeclLine(funPattern, line); m != nil {
		decls = append(decls, s.scanFunction(text, cl, lines, lineIdx, line, lineStart, m)...)
		return decls
	}

	if m := matchDeclLine(typePattern, line); m != nil {
		add(&Declaration{
			Name:      line[m[2]:m[3]],
			Kind:      KindTypeAlias,
			Start:     lineStart + m[0],
			End:       lineStart + len(line),
			NameStart: lineStart + m[2],
			NameEnd:   lineStart + m[3],
		})
		return decls
	}

	return decls
}

// scanFunction emits the function declaration plus one synthetic Parameter
// declaration per `type name` pair, each scoped to the function body.
func (s *DocumentScanner) scanFunction(text string, cl *lang.Classification, lines []string, lineIdx int, line string, lineStart int, m []int) []*Declaration {
	if !isCodeAt(cl, lineStart+m[2]) {
		return nil
	}

	sig := &FunctionSig{}
	if m[6] >= 0 {
		sig.ReturnType = line[m[6]:m[7]]
	}

	fn := &Declaration{
		Name:      line[m[2]:m[3]],
		Kind:      KindFunction,
		Start:     lineStart + m[0],
		End:       lineStart + len(line),
		NameStart: lineStart + m[2],
		NameEnd:   lineStart + m[3],
		Func:      sig,
		Doc:       docComment(lines, lineIdx),
	}

	var body *Scope
	if open := nextOpenBrace(text, cl, lineStart+m[1]); open >= 0 {
		if close := lang.MatchDelimiterClassified(text, open, cl); close >= 0 {
			body = &Scope{Start: open, End: close + 1}
			fn.End = close + 1
		}
	}

	decls := []*Declaration{fn}

	if m[4] >= 0 && m[5] > m[4] {
		params := line[m[4]:m[5]]
		for _, pm := range paramPattern.FindAllStringSubmatchIndex(params, -1) {
			p := Param{Type: params[pm[2]:pm[3]], Name: params[pm[4]:pm[5]]}
			sig.Params = append(sig.Params, p)

			pd := &Declaration{
				Name:      p.Name,
				Kind:      KindParameter,
				Type:      p.Type,
				Start:     lineStart + m[4] + pm[0],
				End:       lineStart + m[4] + pm[1],
				NameStart: lineStart + m[4] + pm[4],
				NameEnd:   lineStart + m[4] + pm[5],
			}
			if body != nil {
				pd.Scope = &Scope{Start: body.Start, End: body.End}
			}
			decls = append(decls, pd)
		}
	}

	return decls
}

// matchDeclLine matches a declaration pattern against one line, requiring
// that nothing except whitespace or a closing `]` (a for-loop prefix)
// precedes the match. Returns submatch indices or nil.
func matchDeclLine(pattern *regexp.Regexp, line string) []int {
	m := pattern.FindStringSubmatchIndex(line)
	if m == nil {
		return nil
	}
	prefix := strings.TrimSpace(line[:m[0]])
	if prefix != "" && !strings.HasSuffix(prefix, "]") {
		return nil
	}
	return m
}

func ioDeclaration(kind Kind, line string, lineStart int, m []int) *Declaration {
	return &Declaration{
		Name:      line[m[4]:m[5]],
		Kind:      kind,
		Type:      line[m[2]:m[3]],
		Start:     lineStart + m[0],
		End:       lineStart + m[1],
		NameStart: lineStart + m[4],
		NameEnd:   lineStart + m[5],
	}
}

// blockEnd extends a block declaration's defining range through its matching
// closing brace, falling back to the end of the line.
func blockEnd(text string, cl *lang.Classification, lineStart int, line string, m []int) int {
	open := strings.IndexByte(line[m[0]:m[1]], '{')
	if open < 0 {
		return lineStart + len(line)
	}
	if close := lang.MatchDelimiterClassified(text, lineStart+m[0]+open, cl); close >= 0 {
		return close + 1
	}
	return lineStart + len(line)
}

// forTailPattern recognizes the statement following a `[for v in xs]`
// prefix, whose block extends the loop variable's scope.
var forTailPattern = regexp.MustCompile(`^\s*(?:resource|component)\s+[A-Za-z_]\w*(?:\s+[A-Za-z_]\w*)?\s*\{`)

// comprehensionScope is the bracket extent of the comprehension whose header
// contains the `for` keyword at forStart: the bracketed expression itself,
// extended through the trailing statement's block for the
// `[for v in xs] resource|component T N { ... }` form. Nil when the `for` is
// not bracket-prefixed.
func comprehensionScope(text string, cl *lang.Classification, forStart int) *Scope {
	i := forStart - 1
	for i >= 0 && (text[i] == ' ' || text[i] == '\t' || text[i] == '\r' || text[i] == '\n') {
		i--
	}
	if i < 0 || text[i] != '[' || !isCodeAt(cl, i) {
		return nil
	}

	close := lang.MatchDelimiterClassified(text, i, cl)
	if close < 0 {
		return nil
	}
	end := close + 1

	if m := forTailPattern.FindStringIndex(text[end:]); m != nil {
		if brace := strings.IndexByte(text[end:end+m[1]], '{'); brace >= 0 {
			if blockClose := lang.MatchDelimiterClassified(text, end+brace, cl); blockClose >= 0 {
				end = blockClose + 1
			}
		}
	}
	return &Scope{Start: i, End: end}
}

// enclosingScope picks the innermost scope block containing the offset.
func enclosingScope(blocks []*scopeBlock, offset int) *Scope {
	var best *scopeBlock
	for _, b := range blocks {
		if !b.contains(offset) {
			continue
		}
		if best == nil || b.end-b.start < best.end-best.start {
			best = b
		}
	}
	if best == nil {
		return nil
	}
	return &Scope{Start: best.start, End: best.end}
}

func nextOpenBrace(text string, cl *lang.Classification, from int) int {
	for i := from; i < len(text); i++ {
		c := text[i]
		if c == '{' && cl.At(i) == lang.ClassCode {
			return i
		}
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			continue
		}
		// Anything else before the brace means there is no body here.
		if cl.At(i) == lang.ClassCode {
			return -1
		}
	}
	return -1
}

func isCodeAt(cl *lang.Classification, offset int) bool {
	return cl.At(offset) == lang.ClassCode
}

func parseImportSymbols(list string) []string {
	if strings.TrimSpace(list) == "*" {
		return nil
	}
	var symbols []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// docComment back-fills documentation from the line(s) immediately above a
// declaration: contiguous `//` lines, or the nearest preceding `/* ... */`
// block that ends on the previous line.
func docComment(lines []string, declLine int) string {
	if declLine == 0 {
		return ""
	}

	prev := strings.TrimSpace(lines[declLine-1])

	if strings.HasPrefix(prev, "//") {
		var parts []string
		for i := declLine - 1; i >= 0; i-- {
			t := strings.TrimSpace(lines[i])
			if !strings.HasPrefix(t, "//") {
				break
			}
			parts = append([]string{strings.TrimSpace(strings.TrimPrefix(t, "//"))}, parts...)
		}
		return strings.Join(parts, "\n")
	}

	if strings.HasSuffix(prev, "*/") {
		var parts []string
		for i := declLine - 1; i >= 0; i-- {
			t := strings.TrimSpace(lines[i])
			parts = append([]string{t}, parts...)
			if strings.HasPrefix(t, "/*") {
				return cleanBlockComment(strings.Join(parts, "\n"))
			}
		}
	}

	return ""
}

func cleanBlockComment(block string) string {
	block = strings.TrimPrefix(block, "/*")
	block = strings.TrimSuffix(block, "*/")
	var parts []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "\n")
}
