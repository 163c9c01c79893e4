package engine

import "github.com/bethropolis/scatter/internal/event"

// Snapshot is the ViewSnapshot of spec §2/§9: an immutable read-only
// projection of engine state for external renderers (internal/tui,
// headless CLI summary printing). Callers must not mutate its slices.
type Snapshot struct {
	State  State
	Fields Fields

	CompileErr error // non-nil while fields.SearchText fails to compile

	Searching   bool
	ResultCount int
	Selected    int
	AnchorStart int
	AnchorEnd   int
	HasAnchor   bool

	ReplaceCompleted int
	ReplaceTotal     int
	Summary          ReplaceSummary

	RecentWalkErrors []event.WalkErrorData // most recent errors, capped
}

// maxRecentWalkErrors bounds how many walk errors Snapshot surfaces, so a
// pathological tree with thousands of permission errors doesn't blow up
// the view.
const maxRecentWalkErrors = 50

// Snapshot takes a consistent, read-only copy of the current engine
// state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		State:            e.state,
		Fields:           e.fields,
		CompileErr:       e.lastCompileErr,
		Searching:        e.searching,
		ResultCount:      e.store.Len(),
		ReplaceCompleted: e.replaceCompleted,
		ReplaceTotal:     e.replaceTotal,
		Summary:          e.summary,
	}
	s.Selected = e.store.Selected()
	s.AnchorStart, s.AnchorEnd, s.HasAnchor = e.store.Anchor()

	if n := len(e.walkErrors); n > 0 {
		start := 0
		if n > maxRecentWalkErrors {
			start = n - maxRecentWalkErrors
		}
		s.RecentWalkErrors = append([]event.WalkErrorData(nil), e.walkErrors[start:]...)
	}

	return s
}
