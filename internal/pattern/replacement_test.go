package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandAllInLineFastRegexReplaceAll(t *testing.T) {
	p, err := Compile(`\d+`, Options{})
	require.NoError(t, err)
	tmpl := Template{Raw: "#"}
	got := tmpl.ExpandAllInLine(p, []byte("a1 b22 c333"))
	assert.Equal(t, "a# b# c#", string(got))
}

func TestExpandAllInLineCaptureGroups(t *testing.T) {
	p, err := Compile(`(\w+)@(\w+)`, Options{})
	require.NoError(t, err)
	tmpl := Template{Raw: "$2@$1"}
	got := tmpl.ExpandAllInLine(p, []byte("user@host"))
	assert.Equal(t, "host@user", string(got))
}

func TestExpandAllInLineFancyRegexCaptureGroups(t *testing.T) {
	p, err := Compile(`(?<word>\w+)@(\w+)`, Options{AdvancedRegex: true})
	require.NoError(t, err)
	tmpl := Template{Raw: "${word}/$2"}
	got := tmpl.ExpandAllInLine(p, []byte("user@host"))
	assert.Equal(t, "user/host", string(got))
}

func TestExpandFirstByteRangeReplaceFirstOnly(t *testing.T) {
	p, err := Compile(`\d+`, Options{})
	require.NoError(t, err)
	// ExpandFirst is applied to exactly one match's expected_content, so
	// there is only ever one occurrence to replace.
	got := p.FindIndex([]byte("42"))
	require.NotNil(t, got)
	tmpl := Template{Raw: "[$0]"}
	out := tmpl.ExpandFirst(p, []byte("42"))
	assert.Equal(t, "[42]", string(out))
}

func TestExpandFixedStringsIgnoresCaptureSyntax(t *testing.T) {
	p, err := Compile("foo", Options{FixedStrings: true})
	require.NoError(t, err)
	tmpl := Template{Raw: "$1 literal"}
	got := tmpl.ExpandAllInLine(p, []byte("foo bar"))
	assert.Equal(t, "$1 literal bar", string(got))
}

func TestInterpretEscapesAppliedBeforeCaptureExpansion(t *testing.T) {
	p, err := Compile(`(\w+)`, Options{})
	require.NoError(t, err)
	tmpl := Template{Raw: `$1\n`, InterpretEscapes: true}
	got := tmpl.ExpandAllInLine(p, []byte("word"))
	assert.Equal(t, "word\n", string(got))
}

func TestEscapeDollarLiteral(t *testing.T) {
	p, err := Compile(`(?<x>\w+)`, Options{AdvancedRegex: true})
	require.NoError(t, err)
	tmpl := Template{Raw: "$$${x}"}
	got := tmpl.ExpandAllInLine(p, []byte("word"))
	assert.Equal(t, "$word", string(got))
}
