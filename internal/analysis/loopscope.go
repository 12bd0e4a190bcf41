package analysis

import (
	"regexp"
	"strings"

	"kitenav/internal/lang"
)

var loopHeaderPattern = regexp.MustCompile(`\[\s*for\s+([A-Za-z_]\w*)\s+in\b`)

var loopStatementPattern = regexp.MustCompile(`^\s*(?:resource|component)\s+[A-Za-z_]\w*(?:\s+[A-Za-z_]\w*)?\s*\{`)

// loopScope is the text interval a comprehension variable is visible in.
type loopScope struct {
	start int
	end   int // exclusive
}

func (s *loopScope) contains(offset int) bool {
	return offset >= s.start && offset <= s.end
}

// loopVariableScope finds the scope of a comprehension-style loop variable.
// Two forms exist: a list comprehension `[for v in xs: body]`, whose scope is
// the bracketed expression, and a for-prefixed statement
// `[for v in xs] resource|component T N { ... }`, whose scope runs from the
// opening bracket through the statement's closing brace. Only the unique
// header whose scope contains the cursor is returned; same-named variables in
// distinct headers never merge.
func loopVariableScope(text, word string, cursor int) (*loopScope, bool) {
	cl := lang.Classify(text)

	var best *loopScope
	for _, m := range loopHeaderPattern.FindAllStringSubmatchIndex(text, -1) {
		if cl.At(m[0]) != lang.ClassCode {
			continue
		}
		if text[m[2]:m[3]] != word {
			continue
		}

		open := m[0] + strings.IndexByte(text[m[0]:m[1]], '[')
		close := lang.MatchDelimiterClassified(text, open, cl)
		if close < 0 {
			continue
		}

		scope := &loopScope{start: open, end: close + 1}

		// A statement following the bracket extends the scope through its
		// block.
		rest := text[close+1:]
		if sm := loopStatementPattern.FindStringIndex(rest); sm != nil {
			braceRel := strings.IndexByte(rest[:sm[1]], '{')
			if braceRel >= 0 {
				if blockClose := lang.MatchDelimiterClassified(text, close+1+braceRel, cl); blockClose >= 0 {
					scope.end = blockClose + 1
				}
			}
		}

		if !scope.contains(cursor) {
			continue
		}
		if best == nil || scope.end-scope.start < best.end-best.start {
			best = scope
		}
	}

	return best, best != nil
}
