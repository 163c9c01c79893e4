package search

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/scatter/internal/pattern"
	"github.com/bethropolis/scatter/internal/types"
)

func mustPattern(t *testing.T, raw string, opts pattern.Options) *pattern.Pattern {
	t.Helper()
	p, err := pattern.Compile(raw, opts)
	require.NoError(t, err)
	return p
}

func TestSearchLineModeOneResultPerLine(t *testing.T) {
	p := mustPattern(t, "foo", pattern.Options{FixedStrings: true})
	cfg := Config{Pattern: p}

	results, err := SearchReader(bytes.NewReader([]byte("foo bar foo\nbaz\nfoo\n")), "x", true, cfg, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Content.LineNumber)
	assert.Equal(t, "foo bar foo", results[0].Content.Content)
	assert.Equal(t, 3, results[1].Content.LineNumber)
}

func TestSearchLineModePreservesLineEndingPerLine(t *testing.T) {
	p := mustPattern(t, "x", pattern.Options{FixedStrings: true})
	cfg := Config{Pattern: p}

	results, err := SearchReader(bytes.NewReader([]byte("x\r\nx\nx")), "", false, cfg, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, types.LineEndingCRLF, results[0].Content.LineEnding)
	assert.Equal(t, types.LineEndingLF, results[1].Content.LineEnding)
	assert.Equal(t, types.LineEndingNone, results[2].Content.LineEnding)
}

func TestSearchLineModeSkipsInvalidUTF8NonFatally(t *testing.T) {
	p := mustPattern(t, "x", pattern.Options{FixedStrings: true})
	cfg := Config{Pattern: p}

	buf := append([]byte("x\n"), 0xff, 0xfe, '\n')
	buf = append(buf, []byte("x\n")...)
	results, err := SearchReader(bytes.NewReader(buf), "", false, cfg, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchByteModeMatchesAcrossLineBoundaries(t *testing.T) {
	p := mustPattern(t, `foo\nbar`, pattern.Options{})
	cfg := Config{Pattern: p, Multiline: true}

	results, err := SearchReader(bytes.NewReader([]byte("x\nfoo\nbar\ny\n")), "", false, cfg, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	r := results[0].Content
	assert.Equal(t, types.MatchContentByteRange, r.Kind)
	assert.Equal(t, 2, r.StartLine)
	assert.Equal(t, 3, r.EndLine)
	assert.Equal(t, "foo\nbar", string(r.ExpectedContent))
}

func TestSearchByteModeEnforcesSizeCap(t *testing.T) {
	p := mustPattern(t, "x", pattern.Options{FixedStrings: true})
	cfg := Config{Pattern: p, Multiline: true, MaxFileSizeBytes: 4}

	_, err := SearchReader(bytes.NewReader([]byte("xxxxxxxxxx")), "", false, cfg, nil)
	assert.Error(t, err)
}

func TestSearchFileSkipsBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(path, []byte("foo\x00bar"), 0o644))

	p := mustPattern(t, "foo", pattern.Options{FixedStrings: true})
	cfg := Config{Pattern: p}

	results, err := SearchFile(path, cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRunProducesOneFileResultPerPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("foo\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("nope\n"), 0o644))

	p := mustPattern(t, "foo", pattern.Options{FixedStrings: true})
	cfg := Config{Pattern: p, Workers: 2}

	paths := make(chan string, 2)
	paths <- filepath.Join(dir, "a.txt")
	paths <- filepath.Join(dir, "b.txt")
	close(paths)

	var total int
	for fr := range Run(paths, cfg, nil) {
		require.NoError(t, fr.Err)
		total += len(fr.Results)
	}
	assert.Equal(t, 1, total)
}
