package lang

import (
	"regexp"
)

// WordPattern compiles a whole-word pattern for an identifier.
func WordPattern(word string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
}

// ScanScopeForWord finds every whole-word occurrence of word inside the
// half-open interval [scopeStart, scopeEnd) of text, returning absolute
// start offsets. Matches inside comments are always dropped; matches inside
// string literals are dropped unless the match sits in an active ${...}
// interpolation.
func ScanScopeForWord(text, word string, scopeStart, scopeEnd int) []int {
	cl := Classify(text)
	return ScanScopeForWordClassified(text, word, scopeStart, scopeEnd, cl)
}

// ScanScopeForWordClassified is ScanScopeForWord against a prebuilt
// classification.
func ScanScopeForWordClassified(text, word string, scopeStart, scopeEnd int, cl *Classification) []int {
	if word == "" {
		return nil
	}
	if scopeStart < 0 {
		scopeStart = 0
	}
	if scopeEnd > len(text) {
		scopeEnd = len(text)
	}
	if scopeStart >= scopeEnd {
		return nil
	}

	pattern := WordPattern(word)
	var offsets []int
	for _, m := range pattern.FindAllStringIndex(text[scopeStart:scopeEnd], -1) {
		at := scopeStart + m[0]
		if !cl.IsReferencePosition(at) {
			continue
		}
		offsets = append(offsets, at)
	}
	return offsets
}
