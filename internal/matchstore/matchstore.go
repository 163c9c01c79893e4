// Package matchstore implements the single ordered sequence of
// SearchResults described in spec §4.4: append, iterate, per-index and
// range inclusion toggles, toggle-all, and the primary-selected/anchor
// cursors used by the UI.
package matchstore

import (
	"sync"

	"github.com/bethropolis/scatter/internal/types"
)

// Store is the MatchStore. Results are appended in arrival order and are
// never reordered (spec §4.4).
type Store struct {
	mu      sync.RWMutex
	results []types.SearchResult

	selected int  // primary-selected index; -1 if empty
	anchor   int  // range anchor for multi-select; -1 if no anchor set
	hasAnchor bool
}

// New creates an empty MatchStore.
func New() *Store {
	return &Store{selected: -1, anchor: -1}
}

// Append adds a result and returns its index.
func (s *Store) Append(r types.SearchResult) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	if s.selected == -1 {
		s.selected = 0
	}
	return len(s.results) - 1
}

// Reset clears all results and cursors (used on debounced re-search,
// spec §4.6).
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
	s.selected = -1
	s.anchor = -1
	s.hasAnchor = false
}

// Len returns the number of results.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Get returns a copy of the result at index i.
func (s *Store) Get(i int) (types.SearchResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.results) {
		return types.SearchResult{}, false
	}
	return s.results[i], true
}

// All returns a snapshot copy of every result, in arrival order.
func (s *Store) All() []types.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.SearchResult, len(s.results))
	copy(out, s.results)
	return out
}

// ToggleInclusion flips the included flag at index i.
func (s *Store) ToggleInclusion(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.results) {
		return
	}
	s.results[i].Included = !s.results[i].Included
}

// ToggleRange flips the included flag for every result in [from, to]
// inclusive, used for multi-select via the anchor cursor.
func (s *Store) ToggleRange(from, to int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from > to {
		from, to = to, from
	}
	if from < 0 {
		from = 0
	}
	if to >= len(s.results) {
		to = len(s.results) - 1
	}
	for i := from; i <= to; i++ {
		s.results[i].Included = !s.results[i].Included
	}
}

// ToggleAll flips the included flag for every result.
func (s *Store) ToggleAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.results {
		s.results[i].Included = !s.results[i].Included
	}
}

// Selected returns the primary-selected index, or -1 if the store is
// empty.
func (s *Store) Selected() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SetSelected sets the primary-selected index, clamped to valid bounds.
func (s *Store) SetSelected(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) == 0 {
		s.selected = -1
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.selected = i
}

// SetAnchor marks the current selected index as the start of a
// multi-select range.
func (s *Store) SetAnchor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchor = s.selected
	s.hasAnchor = s.selected >= 0
}

// ClearAnchor drops the multi-select anchor.
func (s *Store) ClearAnchor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasAnchor = false
	s.anchor = -1
}

// Anchor returns the anchor range [start, end] normalized so start <= end,
// and whether an anchor is currently set.
func (s *Store) Anchor() (start, end int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasAnchor {
		return 0, 0, false
	}
	start, end = s.anchor, s.selected
	if start > end {
		start, end = end, start
	}
	return start, end, true
}

// ForReplacer snapshots every result into the mutable slice the Replacer
// consumes (spec §4.5), pairing each with an empty replacement to be
// filled in by the caller (the Engine, which computes replacement text
// per spec §4.5's "Replacement string computation").
func (s *Store) ForReplacer() []types.SearchResultWithReplacement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.SearchResultWithReplacement, len(s.results))
	for i, r := range s.results {
		out[i] = types.SearchResultWithReplacement{Result: r}
	}
	return out
}
