package lang

// Class is the lexical class of a single byte offset in a Kite document.
type Class uint8

const (
	ClassCode Class = iota
	ClassLineComment
	ClassBlockComment
	ClassStringSingle // inside '...' (never interpolates)
	ClassStringDouble // inside "..." but outside any ${...}
	ClassInterpolation
)

func (c Class) String() string {
	switch c {
	case ClassCode:
		return "code"
	case ClassLineComment:
		return "line-comment"
	case ClassBlockComment:
		return "block-comment"
	case ClassStringSingle:
		return "string"
	case ClassStringDouble:
		return "string"
	case ClassInterpolation:
		return "interpolation"
	default:
		return "unknown"
	}
}

// Classification is the result of one forward pass over a document: a
// per-offset lexical class, answering string/comment/interpolation queries
// in O(1) instead of replaying quote transitions per query.
type Classification struct {
	classes []Class
}

// Classify scans the text once and records the lexical class of every byte.
// Quote characters and comment markers take the class of the region they
// delimit; the `${` and `}` of an interpolation stay part of the enclosing
// double-quoted string so interpolated code is exactly the bytes between them.
func Classify(text string) *Classification {
	classes := make([]Class, len(text))

	const (
		stCode = iota
		stLineComment
		stBlockComment
		stSingle
		stDouble
		stInterp
	)

	state := stCode
	interpDepth := 0

	for i := 0; i < len(text); i++ {
		c := text[i]

		switch state {
		case stCode:
			switch {
			case c == '/' && i+1 < len(text) && text[i+1] == '/':
				classes[i] = ClassLineComment
				state = stLineComment
			case c == '/' && i+1 < len(text) && text[i+1] == '*':
				classes[i] = ClassBlockComment
				state = stBlockComment
			case c == '\'':
				classes[i] = ClassStringSingle
				state = stSingle
			case c == '"':
				classes[i] = ClassStringDouble
				state = stDouble
			default:
				classes[i] = ClassCode
			}

		case stLineComment:
			if c == '\n' {
				classes[i] = ClassCode
				state = stCode
			} else {
				classes[i] = ClassLineComment
			}

		case stBlockComment:
			classes[i] = ClassBlockComment
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				classes[i+1] = ClassBlockComment
				i++
				state = stCode
			}

		case stSingle:
			classes[i] = ClassStringSingle
			switch {
			case c == '\\' && i+1 < len(text):
				classes[i+1] = ClassStringSingle
				i++
			case c == '\'':
				state = stCode
			}

		case stDouble:
			classes[i] = ClassStringDouble
			switch {
			case c == '\\' && i+1 < len(text):
				classes[i+1] = ClassStringDouble
				i++
			case c == '$' && i+1 < len(text) && text[i+1] == '{':
				classes[i+1] = ClassStringDouble
				i++
				state = stInterp
				interpDepth = 1
			case c == '"':
				state = stCode
			}

		case stInterp:
			switch c {
			case '{':
				interpDepth++
				classes[i] = ClassInterpolation
			case '}':
				interpDepth--
				if interpDepth == 0 {
					// Closing brace belongs to the string, like the `${`.
					classes[i] = ClassStringDouble
					state = stDouble
				} else {
					classes[i] = ClassInterpolation
				}
			default:
				classes[i] = ClassInterpolation
			}
		}
	}

	return &Classification{classes: classes}
}

// At returns the class of the byte at offset. Offsets outside the text are
// plain code.
func (cl *Classification) At(offset int) Class {
	if offset < 0 || offset >= len(cl.classes) {
		return ClassCode
	}
	return cl.classes[offset]
}

// InComment reports whether the offset is inside a line or block comment.
func (cl *Classification) InComment(offset int) bool {
	c := cl.At(offset)
	return c == ClassLineComment || c == ClassBlockComment
}

// InString reports whether the offset is inside a string literal, excluding
// interpolated code regions.
func (cl *Classification) InString(offset int) bool {
	c := cl.At(offset)
	return c == ClassStringSingle || c == ClassStringDouble
}

// InInterpolation reports whether the offset is inside an active ${...}
// region of a double-quoted string.
func (cl *Classification) InInterpolation(offset int) bool {
	return cl.At(offset) == ClassInterpolation
}

// IsReferencePosition reports whether an identifier starting at offset can be
// a reference: plain code always, string contents only when interpolated,
// comments never.
func (cl *Classification) IsReferencePosition(offset int) bool {
	c := cl.At(offset)
	return c == ClassCode || c == ClassInterpolation
}
