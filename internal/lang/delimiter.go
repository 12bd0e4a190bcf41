package lang

// MatchDelimiter finds the closing bracket or brace matching the opener at
// openOffset, tracking nesting depth. Openers and closers inside strings and
// comments are inert; braces belonging to ${...} interpolation syntax are
// counted as string bytes by the classifier, so they can't corrupt the depth
// either. Returns -1 when the text has no matching closer.
func MatchDelimiter(text string, openOffset int) int {
	cl := Classify(text)
	return MatchDelimiterClassified(text, openOffset, cl)
}

// MatchDelimiterClassified is MatchDelimiter against a prebuilt
// classification, for callers that already paid for the forward pass.
func MatchDelimiterClassified(text string, openOffset int, cl *Classification) int {
	if openOffset < 0 || openOffset >= len(text) {
		return -1
	}

	open := text[openOffset]
	var close byte
	switch open {
	case '{':
		close = '}'
	case '[':
		close = ']'
	case '(':
		close = ')'
	default:
		return -1
	}

	depth := 0
	for i := openOffset; i < len(text); i++ {
		if cl.At(i) != ClassCode {
			continue
		}
		switch text[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
