// Package engine implements the state machine described in spec §4.6:
// SearchFields → PerformingSearch → SelectingResults → PerformingReplacement
// → Results, plus debounced re-search and cooperative cancellation. It owns
// the MatchStore and drives the Walker/Searcher/Replacer pipelines, and
// publishes a read-only ViewSnapshot for external renderers.
package engine

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/bethropolis/scatter/internal/event"
	"github.com/bethropolis/scatter/internal/logger"
	"github.com/bethropolis/scatter/internal/matchstore"
	"github.com/bethropolis/scatter/internal/pattern"
	"github.com/bethropolis/scatter/internal/search"
	"github.com/bethropolis/scatter/internal/utils"
	"github.com/bethropolis/scatter/internal/walker"
)

// State is one of the five engine states (spec §4.6).
type State int

const (
	StateSearchFields State = iota
	StatePerformingSearch
	StateSelectingResults
	StatePerformingReplacement
	StateResults
)

func (s State) String() string {
	switch s {
	case StateSearchFields:
		return "SearchFields"
	case StatePerformingSearch:
		return "PerformingSearch"
	case StateSelectingResults:
		return "SelectingResults"
	case StatePerformingReplacement:
		return "PerformingReplacement"
	case StateResults:
		return "Results"
	default:
		return "Unknown"
	}
}

// DebounceDelay is the spec's suggested re-search debounce (§4.6: "e.g.
// 150ms").
const DebounceDelay = 150 * time.Millisecond

// Fields is the user-editable SearchFields screen state. Changing any of
// these via EditField schedules a debounced re-search.
type Fields struct {
	Root             string
	SearchText       string
	ReplaceText      string
	FixedStrings     bool
	MatchWholeWord   bool
	CaseInsensitive  bool
	AdvancedRegex    bool
	Multiline        bool
	InterpretEscapes bool
	IncludeHidden    bool
	IncludeGlobs     []string
	ExcludeGlobs     []string
}

// Action is the discriminant returned by key-event and background-event
// handlers (spec §4.7).
type Action int

const (
	ActionNone Action = iota
	ActionRerender
	ActionExit
)

// Engine coordinates the search/replace pipeline and owns the MatchStore.
// Unlike the spec's single-task actor model, this port serializes access
// to its own fields with a mutex: Go's goroutine-per-worker model means
// search/replace completions and UI-driven setters both call into the
// Engine from different goroutines, and no Engine method blocks on I/O, so
// a mutex costs nothing the actor model would have saved.
type Engine struct {
	mu sync.Mutex

	events *event.Manager
	store  *matchstore.Store

	state  State
	fields Fields
	lastCompileErr error

	searching  bool
	generation uint64

	cancelSearch  context.CancelFunc
	debouncer     utils.Debouncer

	walkErrors []event.WalkErrorData

	replaceCompleted int
	replaceTotal     int
	summary          ReplaceSummary

	stdin       []byte
	stdinResult []byte
	isStdinMode bool

	searchWorkers  int
	replaceWorkers int
	maxFileSize    int64
}

// New creates an Engine with an empty MatchStore in the SearchFields
// state.
func New(events *event.Manager) *Engine {
	return &Engine{
		events: events,
		store:  matchstore.New(),
		state:  StateSearchFields,
	}
}

// Store returns the underlying MatchStore (read access for renderers;
// mutation only through Engine methods, per spec §5's "MatchStore is
// mutated only by Engine actions" guarantee).
func (e *Engine) Store() *matchstore.Store { return e.store }

// SetWorkerCounts configures the Searcher/Replacer pool sizes. Zero means
// "let the component pick a default" (runtime.NumCPU()).
func (e *Engine) SetWorkerCounts(searchWorkers, replaceWorkers int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.searchWorkers = searchWorkers
	e.replaceWorkers = replaceWorkers
}

// SetMaxFileSize configures the multiline in-memory cap (spec §9 Open
// Question, resolved in DESIGN.md).
func (e *Engine) SetMaxFileSize(n int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxFileSize = n
}

// UseStdin switches the Engine into stdin mode: the Walker is bypassed
// and the Searcher runs once against buf (spec §6 "Stdin mode").
func (e *Engine) UseStdin(buf []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.isStdinMode = true
	e.stdin = buf
}

// SetFields replaces every editable field at once (used by CLI flag
// prepopulation, spec §6) without scheduling a re-search; the caller is
// expected to invoke PerformSearch explicitly afterward (e.g.
// --immediate-search).
func (e *Engine) SetFields(f Fields) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fields = f
}

// IsStdinMode reports whether UseStdin was called for this run.
func (e *Engine) IsStdinMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isStdinMode
}

// Fields returns a copy of the current editable fields.
func (e *Engine) Fields() Fields {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fields
}

// EditField mutates the fields via fn and schedules a debounced
// re-search (spec §4.6: "Editing any search field schedules a debounced
// re-search").
func (e *Engine) EditField(fn func(*Fields)) {
	e.mu.Lock()
	fn(&e.fields)
	e.mu.Unlock()

	e.debouncer.Debounce(DebounceDelay, func() {
		e.PerformSearch()
	})
}

// Reset implements the Reset action (spec §4.6): returns to SearchFields
// from any state, aborting in-flight work.
func (e *Engine) Reset() {
	e.mu.Lock()
	if e.cancelSearch != nil {
		e.cancelSearch()
		e.cancelSearch = nil
	}
	e.generation++
	e.state = StateSearchFields
	e.searching = false
	e.walkErrors = nil
	e.replaceCompleted, e.replaceTotal = 0, 0
	e.summary = ReplaceSummary{}
	e.mu.Unlock()

	e.store.Reset()
}

// PerformSearch implements the internal PerformSearch event (spec §4.6):
// cancel any in-flight search, clear the MatchStore, transition through
// PerformingSearch into SelectingResults, and spawn the search pipeline.
// A pattern-compile failure (invalid regex) keeps the Engine in
// SearchFields and records the error for the ViewSnapshot instead of
// spawning anything.
func (e *Engine) PerformSearch() Action {
	e.mu.Lock()
	fields := e.fields
	if e.cancelSearch != nil {
		e.cancelSearch()
	}
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	pat, err := pattern.Compile(fields.SearchText, pattern.Options{
		FixedStrings:    fields.FixedStrings,
		MatchWholeWord:  fields.MatchWholeWord,
		CaseInsensitive: fields.CaseInsensitive,
		AdvancedRegex:   fields.AdvancedRegex,
		Multiline:       fields.Multiline,
	})

	e.mu.Lock()
	if err != nil {
		e.lastCompileErr = err
		e.state = StateSearchFields
		e.mu.Unlock()
		return ActionRerender
	}
	e.lastCompileErr = nil
	e.state = StatePerformingSearch
	workers := e.searchWorkers
	maxSize := e.maxFileSize
	stdinBuf := e.stdin
	stdinMode := e.isStdinMode
	e.mu.Unlock()

	e.store.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.cancelSearch = cancel
	e.state = StateSelectingResults
	e.searching = true
	e.mu.Unlock()

	cfg := search.Config{
		Pattern:          pat,
		Replacement:      pattern.Template{Raw: fields.ReplaceText, InterpretEscapes: fields.InterpretEscapes},
		IncludeGlobs:     fields.IncludeGlobs,
		ExcludeGlobs:     fields.ExcludeGlobs,
		IncludeHidden:    fields.IncludeHidden,
		Multiline:        fields.Multiline,
		InterpretEscapes: fields.InterpretEscapes,
		MaxFileSizeBytes: maxSize,
		Workers:          workers,
	}

	go e.runSearchPipeline(ctx, gen, fields, cfg, stdinMode, stdinBuf)

	return ActionRerender
}

func (e *Engine) cancelled(gen uint64, ctx context.Context) func() bool {
	return func() bool {
		if ctx.Err() != nil {
			return true
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		return gen != e.generation
	}
}

func (e *Engine) runSearchPipeline(ctx context.Context, gen uint64, fields Fields, cfg search.Config, stdinMode bool, stdinBuf []byte) {
	isCancelled := e.cancelled(gen, ctx)

	if stdinMode {
		results, err := search.SearchReader(bytes.NewReader(stdinBuf), "", false, cfg, isCancelled)
		if !isCancelled() {
			for _, r := range results {
				idx := e.store.Append(r)
				e.events.Dispatch(event.TypeSearchResultAppended, event.SearchResultAppendedData{Index: idx})
			}
		}
		e.finishSearch(gen, ctx, err)
		return
	}

	w := walker.New(walker.Config{
		Root:          fields.Root,
		IncludeGlobs:  fields.IncludeGlobs,
		ExcludeGlobs:  fields.ExcludeGlobs,
		IncludeHidden: fields.IncludeHidden,
	}, func(path string, err error) {
		e.mu.Lock()
		e.walkErrors = append(e.walkErrors, event.WalkErrorData{Path: path, Err: err})
		e.mu.Unlock()
		e.events.Dispatch(event.TypeWalkError, event.WalkErrorData{Path: path, Err: err})
		logger.WarnTagf("walk", "%s: %v", path, err)
	}, isCancelled)

	paths := w.Walk()
	fileResults := search.Run(paths, cfg, isCancelled)

	for fr := range fileResults {
		if isCancelled() {
			continue
		}
		if fr.Err != nil {
			e.mu.Lock()
			e.walkErrors = append(e.walkErrors, event.WalkErrorData{Path: fr.Path, Err: fr.Err})
			e.mu.Unlock()
			e.events.Dispatch(event.TypeWalkError, event.WalkErrorData{Path: fr.Path, Err: fr.Err})
			continue
		}
		for _, r := range fr.Results {
			idx := e.store.Append(r)
			e.events.Dispatch(event.TypeSearchResultAppended, event.SearchResultAppendedData{Index: idx})
		}
	}

	e.finishSearch(gen, ctx, nil)
}

func (e *Engine) finishSearch(gen uint64, ctx context.Context, err error) {
	cancelled := ctx.Err() != nil

	e.mu.Lock()
	if gen == e.generation {
		e.searching = false
	}
	e.mu.Unlock()

	e.events.Dispatch(event.TypeSearchCompleted, event.SearchCompletedData{Cancelled: cancelled, Err: err})
}

// State returns the current engine state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
