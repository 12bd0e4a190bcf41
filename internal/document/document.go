package document

import (
	"sort"
	"strings"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Document is an immutable snapshot of one Kite source file. All core
// operations run against a snapshot; the server owns mutation.
type Document struct {
	URI  string
	Text string

	lineStarts []int // byte offset of the first character of each line
}

func New(uri, text string) *Document {
	return &Document{
		URI:        uri,
		Text:       text,
		lineStarts: buildLineIndex(text),
	}
}

func buildLineIndex(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// OffsetToPosition converts a byte offset into a zero-based line/character
// position. Characters count UTF-16 code units, per the protocol's default
// encoding. Offsets past the end of the text clamp to the last position.
func (d *Document) OffsetToPosition(offset int) protocol.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.Text) {
		offset = len(d.Text)
	}

	// Find the last line start <= offset.
	line := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1

	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(utf16Len(d.Text[d.lineStarts[line]:offset])),
	}
}

// PositionToOffset converts a line/character position back into a byte
// offset, decoding the character count as UTF-16 code units. Out-of-range
// positions clamp to the nearest valid offset.
func (d *Document) PositionToOffset(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(d.lineStarts) {
		return len(d.Text)
	}

	// Don't run past the end of the line.
	lineEnd := len(d.Text)
	if line+1 < len(d.lineStarts) {
		lineEnd = d.lineStarts[line+1] - 1
	}

	offset := d.lineStarts[line]
	for units := int(pos.Character); offset < lineEnd && units > 0; {
		r, size := utf8.DecodeRuneInString(d.Text[offset:])
		if r > 0xFFFF {
			units -= 2
		} else {
			units--
		}
		offset += size
	}
	return offset
}

// utf16Len is the number of UTF-16 code units encoding s.
func utf16Len(s string) int {
	units := 0
	for _, r := range s {
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return units
}

// RangeBetween builds a protocol range from a half-open byte-offset interval.
func (d *Document) RangeBetween(start, end int) protocol.Range {
	return protocol.Range{
		Start: d.OffsetToPosition(start),
		End:   d.OffsetToPosition(end),
	}
}

// LocationBetween builds a protocol location in this document from a
// half-open byte-offset interval.
func (d *Document) LocationBetween(start, end int) protocol.Location {
	return protocol.Location{
		URI:   protocol.DocumentUri(d.URI),
		Range: d.RangeBetween(start, end),
	}
}

// WordAt returns the identifier containing or immediately preceding the
// offset, plus its byte range. Returns "" when the offset doesn't touch an
// identifier character.
func (d *Document) WordAt(offset int) (string, int, int) {
	if offset < 0 || offset > len(d.Text) {
		return "", 0, 0
	}

	isWord := func(b byte) bool {
		return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
	}

	// A cursor sits between characters; prefer the identifier it touches on
	// either side.
	start := offset
	if start > 0 && (start == len(d.Text) || !isWord(d.Text[start])) && isWord(d.Text[start-1]) {
		start--
	}
	if start == len(d.Text) || !isWord(d.Text[start]) {
		return "", 0, 0
	}

	for start > 0 && isWord(d.Text[start-1]) {
		start--
	}
	end := start
	for end < len(d.Text) && isWord(d.Text[end]) {
		end++
	}

	word := d.Text[start:end]
	// Identifiers never start with a digit.
	if word[0] >= '0' && word[0] <= '9' {
		return "", 0, 0
	}
	return word, start, end
}

// LineAt returns the full text of the line containing the offset, plus the
// offset of the line's first character.
func (d *Document) LineAt(offset int) (string, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.Text) {
		offset = len(d.Text)
	}
	line := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1

	start := d.lineStarts[line]
	end := strings.IndexByte(d.Text[start:], '\n')
	if end < 0 {
		return d.Text[start:], start
	}
	return d.Text[start : start+end], start
}
