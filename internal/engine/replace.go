package engine

import (
	"github.com/bethropolis/scatter/internal/event"
	"github.com/bethropolis/scatter/internal/pattern"
	"github.com/bethropolis/scatter/internal/replace"
	"github.com/bethropolis/scatter/internal/types"
)

// ReplaceSummary is the terminal summary carried into the Results state
// (spec §4.6: "transition to Results carrying { num_successes, num_ignored,
// errors: [...] }").
type ReplaceSummary struct {
	NumSuccesses int
	NumIgnored   int
	NumErrors    int
	Errors       []types.SearchResultWithReplacement
}

// PerformReplacement implements the "Triggering replacement" transition
// (spec §4.6): freezes the MatchStore, computes every result's
// replacement bytes (spec §4.5 "Replacement string computation"), and
// runs the Replacer in the background, reporting progress via
// TypeReplaceProgress and a terminal TypeReplaceCompleted.
func (e *Engine) PerformReplacement(dryRun bool) Action {
	e.mu.Lock()
	if e.state != StateSelectingResults {
		e.mu.Unlock()
		return ActionNone
	}
	fields := e.fields
	workers := e.replaceWorkers
	stdinMode := e.isStdinMode
	stdinBuf := e.stdin
	e.mu.Unlock()

	pat, err := pattern.Compile(fields.SearchText, pattern.Options{
		FixedStrings:    fields.FixedStrings,
		MatchWholeWord:  fields.MatchWholeWord,
		CaseInsensitive: fields.CaseInsensitive,
		AdvancedRegex:   fields.AdvancedRegex,
		Multiline:       fields.Multiline,
	})
	if err != nil {
		e.mu.Lock()
		e.lastCompileErr = err
		e.mu.Unlock()
		return ActionRerender
	}
	tmpl := pattern.Template{Raw: fields.ReplaceText, InterpretEscapes: fields.InterpretEscapes}

	items := e.store.ForReplacer()
	for i := range items {
		computeReplacement(&items[i], pat, tmpl)
	}

	e.mu.Lock()
	e.state = StatePerformingReplacement
	e.replaceCompleted, e.replaceTotal = 0, len(items)
	e.mu.Unlock()

	go e.runReplacePipeline(items, workers, dryRun, stdinMode, stdinBuf, fields.Multiline)

	return ActionRerender
}

// computeReplacement fills in item.Replacement per spec §4.5's
// "Replacement string computation": replace-all over the whole line for
// Lines, replace-first over expected_content for ByteRange.
func computeReplacement(item *types.SearchResultWithReplacement, pat *pattern.Pattern, tmpl pattern.Template) {
	switch item.Result.Content.Kind {
	case types.MatchContentLines:
		item.Replacement = tmpl.ExpandAllInLine(pat, []byte(item.Result.Content.Content))
	case types.MatchContentByteRange:
		item.Replacement = tmpl.ExpandFirst(pat, item.Result.Content.ExpectedContent)
	}
}

func (e *Engine) runReplacePipeline(items []types.SearchResultWithReplacement, workers int, dryRun, stdinMode bool, stdinBuf []byte, multiline bool) {
	var stdinOut []byte

	if stdinMode {
		ptrs := make([]*types.SearchResultWithReplacement, len(items))
		for i := range items {
			ptrs[i] = &items[i]
		}
		if !dryRun {
			stdinOut = applyStdinTransform(stdinBuf, ptrs, multiline)
		} else {
			for _, it := range ptrs {
				it.ReplaceResult = types.Error(types.ErrorKindNotProcessed, "")
			}
		}
		e.mu.Lock()
		e.replaceCompleted, e.replaceTotal = 1, 1
		e.mu.Unlock()
		e.events.Dispatch(event.TypeReplaceProgress, event.ReplaceProgressData{Completed: 1, Total: 1})
	} else {
		replace.Run(items, replace.Options{Workers: workers, DryRun: dryRun}, func(completed, total int) {
			e.mu.Lock()
			e.replaceCompleted, e.replaceTotal = completed, total
			e.mu.Unlock()
			e.events.Dispatch(event.TypeReplaceProgress, event.ReplaceProgressData{Completed: completed, Total: total})
		})
	}

	var summary ReplaceSummary
	for _, it := range items {
		switch it.ReplaceResult.Kind {
		case types.ReplaceSuccess:
			summary.NumSuccesses++
		case types.ReplaceIgnored:
			summary.NumIgnored++
		case types.ReplaceError:
			summary.NumErrors++
			summary.Errors = append(summary.Errors, it)
		}
	}

	e.mu.Lock()
	e.summary = summary
	e.state = StateResults
	if stdinMode {
		e.stdinResult = stdinOut
	}
	e.mu.Unlock()

	e.events.Dispatch(event.TypeReplaceCompleted, event.ReplaceCompletedData{
		NumSuccesses: summary.NumSuccesses,
		NumIgnored:   summary.NumIgnored,
		NumErrors:    summary.NumErrors,
	})
}

// StdinResult returns the transformed stdin bytes after a stdin-mode
// replacement run completes (spec §6's ExitAndReplace payload).
func (e *Engine) StdinResult() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stdinResult
}

// Summary returns the terminal replace summary once in the Results
// state.
func (e *Engine) Summary() ReplaceSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summary
}
