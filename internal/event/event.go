// internal/event/event.go
package event

import (
	"github.com/gdamore/tcell/v2"
)

// Type identifies the kind of event flowing through the event bus.
type Type int

// Define specific event types.
const (
	TypeUnknown Type = iota

	// Worker-pool lifecycle events.
	TypeSearchResultAppended // A SearchResult was appended to the MatchStore
	TypeSearchCompleted      // The Searcher pool finished (or was cancelled)
	TypeWalkError            // Non-fatal enumeration error (permission, broken link)
	TypeReplaceProgress      // (completed, total) replace progress tick
	TypeReplaceCompleted     // The Replacer pool finished

	// Application lifecycle events.
	TypeAppReady // Fired when the application is fully initialized
	TypeAppQuit  // Fired just before application termination begins

	// Input events forwarded for collaborators that want raw keys.
	TypeKeyPressed

	TypeThemeChanged // Fired when the TUI theme is changed
)

// Event is the structure passed through the event bus.
type Event struct {
	Type Type        // The kind of event
	Data interface{} // Payload carrying event-specific data
}

// --- Specific Event Data Structures ---

// SearchResultAppendedData carries the index of the newly appended result.
type SearchResultAppendedData struct {
	Index int
}

// SearchCompletedData carries the terminal status of a search run.
type SearchCompletedData struct {
	Cancelled bool
	Err       error
}

// WalkErrorData carries a single non-fatal enumeration error.
type WalkErrorData struct {
	Path string
	Err  error
}

// ReplaceProgressData carries a running (completed, total) pair.
type ReplaceProgressData struct {
	Completed int
	Total     int
}

// ReplaceCompletedData carries the terminal summary of a replace run.
type ReplaceCompletedData struct {
	NumSuccesses int
	NumIgnored   int
	NumErrors    int
}

// KeyPressedData contains the raw tcell key event.
type KeyPressedData struct {
	KeyEvent *tcell.EventKey
}

// AppQuitData could contain exit code or reason later.
type AppQuitData struct{}

// AppReadyData could contain initial config or state later.
type AppReadyData struct{}
