package scanner

// Kind classifies a Declaration.
type Kind int

const (
	KindVariable Kind = iota
	KindInput
	KindOutput
	KindResource
	KindComponent // definition when ComponentType is empty, instance otherwise
	KindSchema
	KindFunction
	KindTypeAlias
	KindForVariable
	KindParameter
	KindImport
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindInput:
		return "input"
	case KindOutput:
		return "output"
	case KindResource:
		return "resource"
	case KindComponent:
		return "component"
	case KindSchema:
		return "schema"
	case KindFunction:
		return "function"
	case KindTypeAlias:
		return "type"
	case KindForVariable:
		return "for"
	case KindParameter:
		return "parameter"
	case KindImport:
		return "import"
	default:
		return "unknown"
	}
}

// Scope is a half-open byte-offset interval [Start, End) bounding where a
// declaration is legally referenced. Scopes nest but never partially overlap.
type Scope struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether the offset lies in the scope. The end is treated
// inclusively so a cursor sitting on the closing brace still sees the scope.
func (s *Scope) Contains(offset int) bool {
	return offset >= s.Start && offset <= s.End
}

// Span is the scope's width, used for innermost-scope selection.
func (s *Scope) Span() int {
	return s.End - s.Start
}

// Param is one function parameter: a `type name` pair.
type Param struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// FunctionSig carries the parts of a declaration that only functions have.
type FunctionSig struct {
	Params     []Param `json:"params"`
	ReturnType string  `json:"returnType,omitempty"`
}

// ImportSpec carries the parts of a declaration that only imports have. An
// empty Symbols list means a wildcard import.
type ImportSpec struct {
	Path    string   `json:"path"`
	Symbols []string `json:"symbols,omitempty"`
}

// Declaration is a named entity discovered by the scanner: name, kind, the
// full defining range, the precise name-only range, and the kind-specific
// optional fields. A nil Scope means the declaration is visible throughout
// the document (for variable-like kinds) or the workspace (for the rest).
type Declaration struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`

	Start int `json:"start"` // defining range, half-open
	End   int `json:"end"`

	NameStart int `json:"nameStart"` // exact range of the name token
	NameEnd   int `json:"nameEnd"`

	Type          string       `json:"type,omitempty"`          // var/input/output/resource type annotation
	ComponentType string       `json:"componentType,omitempty"` // instantiations: the instantiated type
	Func          *FunctionSig `json:"func,omitempty"`
	Import        *ImportSpec  `json:"import,omitempty"`
	Doc           string       `json:"doc,omitempty"`

	Scope *Scope `json:"scope,omitempty"`
}

// VisibleAt reports whether the declaration can be referenced at the offset.
// Unscoped declarations are visible everywhere.
func (d *Declaration) VisibleAt(offset int) bool {
	return d.Scope == nil || d.Scope.Contains(offset)
}

// OnName reports whether the offset sits on the declaration's name token.
func (d *Declaration) OnName(offset int) bool {
	return offset >= d.NameStart && offset <= d.NameEnd
}

// IsComponentDefinition reports whether this is a component *definition*
// (one identifier before the brace) as opposed to an instantiation.
func (d *Declaration) IsComponentDefinition() bool {
	return d.Kind == KindComponent && d.ComponentType == ""
}

// FileScoped reports whether an unscoped declaration of this kind is still
// private to its document. Schemas, components, functions, resources and
// type aliases are workspace-visible; everything else stays file-local.
func (d *Declaration) FileScoped() bool {
	switch d.Kind {
	case KindVariable, KindInput, KindOutput, KindForVariable, KindParameter, KindImport:
		return true
	default:
		return false
	}
}
