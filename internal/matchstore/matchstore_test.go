package matchstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/scatter/internal/types"
)

func result(path string) types.SearchResult {
	return types.SearchResult{
		Path:     path,
		HasPath:  true,
		Included: true,
		Content:  types.MatchContent{Kind: types.MatchContentLines, LineNumber: 1, Content: "x"},
	}
}

func TestAppendPreservesArrivalOrderAndSelectsFirst(t *testing.T) {
	s := New()
	assert.Equal(t, -1, s.Selected())

	i0 := s.Append(result("a"))
	i1 := s.Append(result("b"))
	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
	assert.Equal(t, 0, s.Selected())
	assert.Equal(t, 2, s.Len())

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Path)
	assert.Equal(t, "b", all[1].Path)
}

func TestToggleInclusionFlipsOnlyTargetIndex(t *testing.T) {
	s := New()
	s.Append(result("a"))
	s.Append(result("b"))

	s.ToggleInclusion(0)
	r0, _ := s.Get(0)
	r1, _ := s.Get(1)
	assert.False(t, r0.Included)
	assert.True(t, r1.Included)
}

func TestToggleRangeFlipsInclusiveRangeRegardlessOfOrder(t *testing.T) {
	s := New()
	for _, p := range []string{"a", "b", "c", "d"} {
		s.Append(result(p))
	}

	s.ToggleRange(2, 1)
	for i := 0; i < 4; i++ {
		r, _ := s.Get(i)
		if i == 1 || i == 2 {
			assert.False(t, r.Included, "index %d should be toggled off", i)
		} else {
			assert.True(t, r.Included, "index %d should remain included", i)
		}
	}
}

func TestToggleAllFlipsEveryResult(t *testing.T) {
	s := New()
	s.Append(result("a"))
	s.Append(result("b"))
	s.ToggleAll()

	r0, _ := s.Get(0)
	r1, _ := s.Get(1)
	assert.False(t, r0.Included)
	assert.False(t, r1.Included)
}

func TestSetSelectedClampsToBounds(t *testing.T) {
	s := New()
	s.Append(result("a"))
	s.Append(result("b"))

	s.SetSelected(-5)
	assert.Equal(t, 0, s.Selected())

	s.SetSelected(99)
	assert.Equal(t, 1, s.Selected())
}

func TestAnchorRangeNormalizesOrder(t *testing.T) {
	s := New()
	for _, p := range []string{"a", "b", "c"} {
		s.Append(result(p))
	}
	s.SetSelected(2)
	s.SetAnchor()
	s.SetSelected(0)

	start, end, ok := s.Anchor()
	require.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 2, end)

	s.ClearAnchor()
	_, _, ok = s.Anchor()
	assert.False(t, ok)
}

func TestResetClearsResultsAndCursors(t *testing.T) {
	s := New()
	s.Append(result("a"))
	s.SetAnchor()
	s.Reset()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, -1, s.Selected())
	_, _, ok := s.Anchor()
	assert.False(t, ok)
}

func TestForReplacerSnapshotsWithEmptyReplacements(t *testing.T) {
	s := New()
	s.Append(result("a"))
	s.Append(result("b"))

	items := s.ForReplacer()
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Nil(t, it.Replacement)
		assert.Equal(t, types.ReplaceNone, it.ReplaceResult.Kind)
	}
}
