package lang

import "regexp"

// Extension is the Kite source file extension, dot included.
const Extension = ".kite"

var keywords = map[string]bool{
	"var":       true,
	"input":     true,
	"output":    true,
	"resource":  true,
	"component": true,
	"schema":    true,
	"fun":       true,
	"type":      true,
	"for":       true,
	"in":        true,
	"if":        true,
	"else":      true,
	"import":    true,
	"from":      true,
	"true":      true,
	"false":     true,
	"null":      true,
}

var builtinTypes = map[string]bool{
	"string": true,
	"number": true,
	"int":    true,
	"bool":   true,
	"list":   true,
	"map":    true,
	"object": true,
	"any":    true,
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsKeyword reports whether the word is a reserved Kite keyword.
func IsKeyword(word string) bool {
	return keywords[word]
}

// IsBuiltinType reports whether the word names a built-in Kite type.
func IsBuiltinType(word string) bool {
	return builtinTypes[word]
}

// IsValidIdentifier reports whether the word is usable as a declared name:
// identifier grammar, not a keyword, not a built-in type.
func IsValidIdentifier(word string) bool {
	if !identifierPattern.MatchString(word) {
		return false
	}
	return !IsKeyword(word) && !IsBuiltinType(word)
}
