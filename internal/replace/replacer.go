// Package replace implements the Replacer component (spec §4.5):
// groups SearchResultWithReplacement by file, detects conflicts,
// and applies edits via a streaming rewrite + atomic rename.
package replace

import (
	"runtime"
	"sort"
	"sync"

	"github.com/bethropolis/scatter/internal/logger"
	"github.com/bethropolis/scatter/internal/types"
)

// Options configures one replace run.
type Options struct {
	Workers int // <=0 means runtime.NumCPU()
	DryRun  bool // skip the rewrite+rename step; conflict detection still runs, file-changed validation does not
}

// Progress reports a running (completed, total) pair as each file group
// finishes (spec §4.6).
type Progress func(completed, total int)

// Run groups items by path, detects conflicts, and rewrites each group's
// file in place. Items is mutated: every ReplaceResult is populated
// (spec invariant I4) by the time Run returns.
func Run(items []types.SearchResultWithReplacement, opts Options, progress Progress) {
	groups := groupByPath(items)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
	}

	total := len(groups)
	var completed int32
	var mu sync.Mutex

	jobs := make(chan *group, len(groups))
	for _, g := range groups {
		jobs <- g
	}
	close(jobs)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for g := range jobs {
				processGroup(g, opts)
				mu.Lock()
				completed++
				c := completed
				mu.Unlock()
				if progress != nil {
					progress(int(c), total)
				}
			}
		}()
	}
	wg.Wait()
}

// group is one file's slice of pointers into the caller's items slice,
// owned exclusively by one worker from open to rename (spec §4.5/§5).
type group struct {
	path    string
	hasPath bool
	items   []*types.SearchResultWithReplacement
}

func groupByPath(items []types.SearchResultWithReplacement) []*group {
	order := []string{}
	byPath := map[string]*group{}
	var noPath *group

	for i := range items {
		it := &items[i]
		if !it.Result.HasPath {
			if noPath == nil {
				noPath = &group{hasPath: false}
			}
			noPath.items = append(noPath.items, it)
			continue
		}
		g, ok := byPath[it.Result.Path]
		if !ok {
			g = &group{path: it.Result.Path, hasPath: true}
			byPath[it.Result.Path] = g
			order = append(order, it.Result.Path)
		}
		g.items = append(g.items, it)
	}

	groups := make([]*group, 0, len(order)+1)
	for _, p := range order {
		groups = append(groups, byPath[p])
	}
	if noPath != nil {
		groups = append(groups, noPath)
	}
	return groups
}

// processGroup runs the per-file pipeline described in spec §4.5.
func processGroup(g *group, opts Options) {
	if !consistentVariant(g.items) {
		for _, it := range g.items {
			it.ReplaceResult = types.Error(types.ErrorKindIO, "mixed MatchContent variants in one file group")
		}
		logger.Errorf("replace: file %s has mixed MatchContent variants; aborting group", g.path)
		return
	}

	markIgnored(g.items)

	if len(g.items) == 0 {
		return
	}
	kind := g.items[0].Result.Content.Kind

	switch kind {
	case types.MatchContentLines:
		detectLineConflicts(g.items)
	case types.MatchContentByteRange:
		detectByteRangeConflicts(g.items)
	}

	if !g.hasPath {
		// Standard-input input has no file to rewrite in place; the
		// caller (headless CLI) performs the stdin transform separately
		// using the same replacement values. Mark anything still
		// unresolved as processed so invariant I4 holds.
		promoteNotProcessed(g.items)
		return
	}

	if opts.DryRun {
		promoteNotProcessed(g.items)
		return
	}

	switch kind {
	case types.MatchContentLines:
		rewriteLines(g.path, g.items)
	case types.MatchContentByteRange:
		rewriteBytes(g.path, g.items)
	}

	promoteNotProcessed(g.items)
}

func consistentVariant(items []*types.SearchResultWithReplacement) bool {
	if len(items) == 0 {
		return true
	}
	kind := items[0].Result.Content.Kind
	for _, it := range items[1:] {
		if it.Result.Content.Kind != kind {
			return false
		}
	}
	return true
}

func markIgnored(items []*types.SearchResultWithReplacement) {
	for _, it := range items {
		if !it.Result.Included {
			it.ReplaceResult = types.Ignored()
		}
	}
}

// detectLineConflicts marks same-line duplicates as conflicts (spec
// §4.5 step 3; this should never fire given Searcher's one-result-per-line
// guarantee, but is implemented defensively).
func detectLineConflicts(items []*types.SearchResultWithReplacement) {
	pending := pendingOf(items)
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Result.Content.LineNumber < pending[j].Result.Content.LineNumber
	})
	for i := 1; i < len(pending); i++ {
		if pending[i].Result.Content.LineNumber == pending[i-1].Result.Content.LineNumber {
			pending[i].ReplaceResult = types.Error(types.ErrorKindConflict, "duplicate line")
		}
	}
}

// detectByteRangeConflicts marks overlapping ranges as conflicts, earlier
// (by byte_start, ties by commit order) winning (spec §4.5 step 3).
func detectByteRangeConflicts(items []*types.SearchResultWithReplacement) {
	pending := pendingOf(items)
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Result.Content.ByteStart < pending[j].Result.Content.ByteStart
	})

	prevEnd := int64(-1)
	for _, it := range pending {
		if it.Result.Content.ByteStart < prevEnd {
			it.ReplaceResult = types.Error(types.ErrorKindConflict, "overlapping byte range")
			continue
		}
		prevEnd = it.Result.Content.ByteEnd
	}
}

// pendingOf returns the subset of items not already resolved (e.g. by
// markIgnored or a prior invalid-group abort).
func pendingOf(items []*types.SearchResultWithReplacement) []*types.SearchResultWithReplacement {
	out := make([]*types.SearchResultWithReplacement, 0, len(items))
	for _, it := range items {
		if it.ReplaceResult.Kind == types.ReplaceNone {
			out = append(out, it)
		}
	}
	return out
}

// promoteNotProcessed implements spec §4.5 step 6: anything still
// unresolved after the rewrite phase becomes Error("not processed").
func promoteNotProcessed(items []*types.SearchResultWithReplacement) {
	for _, it := range items {
		if it.ReplaceResult.Kind == types.ReplaceNone {
			it.ReplaceResult = types.Error(types.ErrorKindNotProcessed, "")
		}
	}
}
