package lang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyComments(t *testing.T) {
	text := "var x = 1 // trailing comment\nvar y = 2"
	cl := Classify(text)

	assert.False(t, cl.InComment(strings.Index(text, "var x")))
	assert.True(t, cl.InComment(strings.Index(text, "trailing")))
	// The newline ends the comment.
	assert.False(t, cl.InComment(strings.Index(text, "var y")))
}

func TestClassifyBlockComment(t *testing.T) {
	text := "var a = 1 /* var b = 2 */ var c = 3"
	cl := Classify(text)

	assert.False(t, cl.InComment(strings.Index(text, "var a")))
	assert.True(t, cl.InComment(strings.Index(text, "var b")))
	assert.False(t, cl.InComment(strings.Index(text, "var c")))
}

func TestClassifyStrings(t *testing.T) {
	text := `var s = "hello name" + name`
	cl := Classify(text)

	assert.True(t, cl.InString(strings.Index(text, "hello")))
	assert.False(t, cl.InString(strings.LastIndex(text, "name")))
}

func TestClassifyEscapedQuote(t *testing.T) {
	text := `var s = "he said \"hi\"" + tail`
	cl := Classify(text)

	assert.True(t, cl.InString(strings.Index(text, "hi")))
	assert.False(t, cl.InString(strings.Index(text, "tail")))
}

func TestClassifyInterpolation(t *testing.T) {
	text := `var s = "prefix ${name} suffix"`
	cl := Classify(text)

	nameAt := strings.Index(text, "name")
	assert.True(t, cl.InInterpolation(nameAt))
	assert.False(t, cl.InString(nameAt))
	assert.True(t, cl.InString(strings.Index(text, "prefix")))
	assert.True(t, cl.InString(strings.Index(text, "suffix")))
}

func TestClassifySingleQuoteNeverInterpolates(t *testing.T) {
	text := `var s = 'prefix ${name} suffix'`
	cl := Classify(text)

	nameAt := strings.Index(text, "name")
	assert.False(t, cl.InInterpolation(nameAt))
	assert.True(t, cl.InString(nameAt))
}

func TestClassifyNestedInterpolationBraces(t *testing.T) {
	text := `var s = "v: ${fn({a: 1})} done" + tail`
	cl := Classify(text)

	assert.True(t, cl.InInterpolation(strings.Index(text, "fn")))
	assert.True(t, cl.InString(strings.Index(text, "done")))
	assert.False(t, cl.InString(strings.Index(text, "tail")))
}

func TestMatchDelimiter(t *testing.T) {
	tests := []struct {
		name string
		text string
		open int
		want int
	}{
		{
			name: "simple braces",
			text: "{ a b c }",
			open: 0,
			want: 8,
		},
		{
			name: "nested braces",
			text: "{ a { b } c }",
			open: 0,
			want: 12,
		},
		{
			name: "brace inside string is inert",
			text: `{ var s = "}" }`,
			open: 0,
			want: 14,
		},
		{
			name: "brace inside comment is inert",
			text: "{ // }\n}",
			open: 0,
			want: 7,
		},
		{
			name: "brace inside block comment is inert",
			text: "{ /* } */ }",
			open: 0,
			want: 10,
		},
		{
			name: "escaped quote does not end the string",
			text: `{ var s = "\"}" }`,
			open: 0,
			want: 16,
		},
		{
			name: "unclosed",
			text: "{ a b",
			open: 0,
			want: -1,
		},
		{
			name: "brackets",
			text: "[for x in xs: x]",
			open: 0,
			want: 15,
		},
		{
			name: "not a delimiter",
			text: "abc",
			open: 0,
			want: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchDelimiter(tt.text, tt.open))
		})
	}
}

func TestScanScopeForWord(t *testing.T) {
	text := "var name = \"test\" // name is used here /* name in multi-line */\nvar x = name"
	offsets := ScanScopeForWord(text, "name", 0, len(text))

	// Declaration and the one code usage; comment mentions excluded.
	require.Len(t, offsets, 2)
	assert.Equal(t, strings.Index(text, "name"), offsets[0])
	assert.Equal(t, strings.LastIndex(text, "name"), offsets[1])
}

func TestScanScopeForWordWholeWordOnly(t *testing.T) {
	text := "var count = 1\nvar counter = count + 1"
	offsets := ScanScopeForWord(text, "count", 0, len(text))

	require.Len(t, offsets, 2)
	for _, at := range offsets {
		assert.Equal(t, "count", text[at:at+5])
	}
}

func TestScanScopeForWordInterpolation(t *testing.T) {
	text := `var host = "h"` + "\n" + `var url = "http://${host}/api"` + "\n" + `var plain = 'no ${host} here'`
	offsets := ScanScopeForWord(text, "host", 0, len(text))

	// Declaration, plus the interpolated usage; the single-quoted one is inert.
	require.Len(t, offsets, 2)
}

func TestScanScopeForWordRespectsBounds(t *testing.T) {
	text := "name name name"
	offsets := ScanScopeForWord(text, "name", 5, 9)
	require.Len(t, offsets, 1)
	assert.Equal(t, 5, offsets[0])
}

func TestIdentifierValidation(t *testing.T) {
	assert.True(t, IsValidIdentifier("serverName"))
	assert.True(t, IsValidIdentifier("_private"))
	assert.True(t, IsValidIdentifier("x2"))

	assert.False(t, IsValidIdentifier("123invalid"))
	assert.False(t, IsValidIdentifier(""))
	assert.False(t, IsValidIdentifier("has space"))
	assert.False(t, IsValidIdentifier("has-dash"))

	// Reserved words and built-in types are not usable as names.
	assert.False(t, IsValidIdentifier("resource"))
	assert.False(t, IsValidIdentifier("for"))
	assert.False(t, IsValidIdentifier("string"))
	assert.False(t, IsValidIdentifier("bool"))
}
