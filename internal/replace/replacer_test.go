package replace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/scatter/internal/types"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func lineItem(path string, included bool, lineNo int, content string, le types.LineEnding, replacement string) *types.SearchResultWithReplacement {
	return &types.SearchResultWithReplacement{
		Result: types.SearchResult{
			Path:     path,
			HasPath:  true,
			Included: included,
			Content: types.MatchContent{
				Kind:       types.MatchContentLines,
				LineNumber: lineNo,
				Content:    content,
				LineEnding: le,
			},
		},
		Replacement: []byte(replacement),
	}
}

func TestRunLineModeReplacesMatchingLines(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.txt", "foo\nbar\nfoo\n")

	items := []*types.SearchResultWithReplacement{
		lineItem(path, true, 1, "foo", types.LineEndingLF, "baz"),
		lineItem(path, true, 3, "foo", types.LineEndingLF, "baz"),
	}
	flat := make([]types.SearchResultWithReplacement, len(items))
	for i, it := range items {
		flat[i] = *it
	}

	Run(flat, Options{Workers: 1}, nil)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "baz\nbar\nbaz\n", string(got))
}

func TestRunLineModePreservesMixedLineEndings(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "mixed.txt", "foo\r\nbar\nfoo\r")

	flat := []types.SearchResultWithReplacement{
		*lineItem(path, true, 1, "foo", types.LineEndingCRLF, "X"),
		*lineItem(path, true, 3, "foo", types.LineEndingCR, "Y"),
	}

	Run(flat, Options{Workers: 1}, nil)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "X\r\nbar\nY\r", string(got))
	assert.Equal(t, types.ReplaceSuccess, flat[0].ReplaceResult.Kind)
	assert.Equal(t, types.ReplaceSuccess, flat[1].ReplaceResult.Kind)
}

func TestRunSkipsUnincludedResultsAsIgnored(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.txt", "foo\n")

	flat := []types.SearchResultWithReplacement{
		*lineItem(path, false, 1, "foo", types.LineEndingLF, "bar"),
	}

	Run(flat, Options{Workers: 1}, nil)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "foo\n", string(got))
	assert.Equal(t, types.ReplaceIgnored, flat[0].ReplaceResult.Kind)
}

func TestRunDetectsFileChangedSinceSearch(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.txt", "changed\n")

	flat := []types.SearchResultWithReplacement{
		*lineItem(path, true, 1, "foo", types.LineEndingLF, "bar"),
	}

	Run(flat, Options{Workers: 1}, nil)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "changed\n", string(got))
	assert.Equal(t, types.ReplaceError, flat[0].ReplaceResult.Kind)
	assert.Equal(t, types.ErrorKindFileChanged, flat[0].ReplaceResult.Err)
}

func TestRunDetectsDuplicateLineConflict(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.txt", "foo\n")

	flat := []types.SearchResultWithReplacement{
		*lineItem(path, true, 1, "foo", types.LineEndingLF, "bar"),
		*lineItem(path, true, 1, "foo", types.LineEndingLF, "baz"),
	}

	Run(flat, Options{Workers: 1}, nil)

	conflicts := 0
	for _, it := range flat {
		if it.ReplaceResult.Kind == types.ReplaceError && it.ReplaceResult.Err == types.ErrorKindConflict {
			conflicts++
		}
	}
	assert.Equal(t, 1, conflicts)
}

func TestRunDryRunLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.txt", "foo\n")

	flat := []types.SearchResultWithReplacement{
		*lineItem(path, true, 1, "foo", types.LineEndingLF, "bar"),
	}

	Run(flat, Options{Workers: 1, DryRun: true}, nil)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "foo\n", string(got))
	assert.Equal(t, types.ReplaceError, flat[0].ReplaceResult.Kind)
	assert.Equal(t, types.ErrorKindNotProcessed, flat[0].ReplaceResult.Err)
}

func byteItem(path string, lineNo int, start, end int64, expected, replacement string) *types.SearchResultWithReplacement {
	return &types.SearchResultWithReplacement{
		Result: types.SearchResult{
			Path:     path,
			HasPath:  true,
			Included: true,
			Content: types.MatchContent{
				Kind:            types.MatchContentByteRange,
				StartLine:       lineNo,
				EndLine:         lineNo,
				ByteStart:       start,
				ByteEnd:         end,
				ExpectedContent: []byte(expected),
			},
		},
		Replacement: []byte(replacement),
	}
}

func TestRunByteModeReplacesRangesInOrder(t *testing.T) {
	dir := t.TempDir()
	content := "aaa bbb ccc"
	path := writeTemp(t, dir, "b.txt", content)

	flat := []types.SearchResultWithReplacement{
		*byteItem(path, 1, 0, 3, "aaa", "X"),
		*byteItem(path, 1, 8, 11, "ccc", "ZZZZ"),
	}

	Run(flat, Options{Workers: 1}, nil)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "X bbb ZZZZ", string(got))
}

func TestRunByteModeDetectsOverlapConflict(t *testing.T) {
	dir := t.TempDir()
	content := "aaaaaaaaaa"
	path := writeTemp(t, dir, "c.txt", content)

	flat := []types.SearchResultWithReplacement{
		*byteItem(path, 1, 0, 5, "aaaaa", "X"),
		*byteItem(path, 1, 3, 8, "aaaaa", "Y"),
	}

	Run(flat, Options{Workers: 1}, nil)

	assert.Equal(t, types.ReplaceSuccess, flat[0].ReplaceResult.Kind)
	assert.Equal(t, types.ReplaceError, flat[1].ReplaceResult.Kind)
	assert.Equal(t, types.ErrorKindConflict, flat[1].ReplaceResult.Err)
}

func TestRunStdinGroupHasNoFileRewrite(t *testing.T) {
	flat := []types.SearchResultWithReplacement{
		{
			Result: types.SearchResult{
				HasPath:  false,
				Included: true,
				Content: types.MatchContent{
					Kind:       types.MatchContentLines,
					LineNumber: 1,
					Content:    "foo",
				},
			},
			Replacement: []byte("bar"),
		},
	}

	Run(flat, Options{Workers: 1}, nil)

	assert.Equal(t, types.ReplaceError, flat[0].ReplaceResult.Kind)
	assert.Equal(t, types.ErrorKindNotProcessed, flat[0].ReplaceResult.Err)
}

func TestRunProgressReportsCompletedCounts(t *testing.T) {
	dir := t.TempDir()
	p1 := writeTemp(t, dir, "a.txt", "foo\n")
	p2 := writeTemp(t, dir, "b.txt", "foo\n")

	flat := []types.SearchResultWithReplacement{
		*lineItem(p1, true, 1, "foo", types.LineEndingLF, "x"),
		*lineItem(p2, true, 1, "foo", types.LineEndingLF, "y"),
	}

	var calls []int
	Run(flat, Options{Workers: 1}, func(completed, total int) {
		calls = append(calls, completed)
		assert.Equal(t, 2, total)
	})

	require.Len(t, calls, 2)
	assert.Equal(t, 1, calls[0])
	assert.Equal(t, 2, calls[1])
}
