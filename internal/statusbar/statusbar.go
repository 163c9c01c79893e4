// internal/statusbar/statusbar.go
package statusbar

import (
	"fmt"
	"sync"
	"time"

	"github.com/bethropolis/scatter/internal/config"
	"github.com/bethropolis/scatter/internal/theme"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// Config defines the appearance and behavior of the status bar.
type Config struct {
	StyleDefault   tcell.Style
	StyleMessage   tcell.Style
	StyleError     tcell.Style
	StyleOk        tcell.Style
	MessageTimeout time.Duration
}

// DefaultConfig provides sensible defaults; callers normally override
// these from the active theme (spec §6 preview/style sections) via
// NewFromTheme instead.
func DefaultConfig() Config {
	return Config{
		StyleDefault:   tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorBlue),
		StyleMessage:   tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlue).Bold(true),
		StyleError:     tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorBlue).Bold(true),
		StyleOk:        tcell.StyleDefault.Foreground(tcell.ColorGreen).Background(tcell.ColorBlue).Bold(true),
		MessageTimeout: 4 * time.Second,
	}
}

// StatusBar is the single bottom line shown across all five screens
// (spec §4.6/§6): search root, current engine state, result/selection
// counts, and replace progress, plus a transient message channel for
// one-off feedback ("copied path", "no matches", error text).
type StatusBar struct {
	config Config
	mu     sync.RWMutex

	root          string
	state         string
	resultCount   int
	includedCount int
	searching     bool

	replaceCompleted int
	replaceTotal      int

	tempMessage     string
	tempIsError     bool
	tempMessageTime time.Time
}

// New creates a new StatusBar with the given configuration.
func New(cfg Config) *StatusBar {
	return &StatusBar{config: cfg}
}

// NewFromTheme builds a StatusBar styled from t's StatusBar/
// StatusBarMessage/StatusBarError/StatusBarOk keys (spec §6 preview.theme).
func NewFromTheme(t *theme.Theme) *StatusBar {
	return New(Config{
		StyleDefault:   t.GetStyle("StatusBar"),
		StyleMessage:   t.GetStyle("StatusBarMessage"),
		StyleError:     t.GetStyle("StatusBarError"),
		StyleOk:        t.GetStyle("StatusBarOk"),
		MessageTimeout: config.MessageTimeout,
	})
}

// SetSearchInfo updates the root path and current engine state name
// shown at the left of the bar.
func (sb *StatusBar) SetSearchInfo(root, state string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.root = root
	sb.state = state
}

// SetCounts updates the total and included-for-replacement result
// counts.
func (sb *StatusBar) SetCounts(resultCount, includedCount int) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.resultCount = resultCount
	sb.includedCount = includedCount
}

// SetSearching toggles the in-progress indicator shown while the
// Searcher is still walking the tree.
func (sb *StatusBar) SetSearching(searching bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.searching = searching
}

// SetReplaceProgress updates the completed/total counters shown during
// PerformingReplacement.
func (sb *StatusBar) SetReplaceProgress(completed, total int) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.replaceCompleted = completed
	sb.replaceTotal = total
}

// SetTemporaryMessage displays a message for the configured duration,
// overriding the default line until it expires.
func (sb *StatusBar) SetTemporaryMessage(format string, args ...interface{}) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.tempMessage = fmt.Sprintf(format, args...)
	sb.tempIsError = false
	sb.tempMessageTime = time.Now()
}

// SetTemporaryError is SetTemporaryMessage styled as an error.
func (sb *StatusBar) SetTemporaryError(format string, args ...interface{}) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.tempMessage = fmt.Sprintf(format, args...)
	sb.tempIsError = true
	sb.tempMessageTime = time.Now()
}

// getDefaultDisplayText builds the default status line text from the
// current search/result/replace state.
func (sb *StatusBar) getDefaultDisplayText() string {
	root := sb.root
	if root == "" {
		root = "."
	}

	switch {
	case sb.replaceTotal > 0 && sb.replaceCompleted < sb.replaceTotal:
		return fmt.Sprintf("%s [%s] -- replacing %d/%d", root, sb.state, sb.replaceCompleted, sb.replaceTotal)
	case sb.searching:
		return fmt.Sprintf("%s [%s] -- searching... %d matches so far", root, sb.state, sb.resultCount)
	default:
		return fmt.Sprintf("%s [%s] -- %d matches, %d selected", root, sb.state, sb.resultCount, sb.includedCount)
	}
}

// Draw renders the status bar onto the screen using visual widths.
func (sb *StatusBar) Draw(screen tcell.Screen, width, height int) {
	if height <= 0 || width <= 0 {
		return
	}
	y := height - 1

	sb.mu.Lock()
	isTempMsgActive := !sb.tempMessageTime.IsZero() && time.Since(sb.tempMessageTime) <= sb.config.MessageTimeout
	if !sb.tempMessageTime.IsZero() && !isTempMsgActive {
		sb.tempMessage = ""
		sb.tempMessageTime = time.Time{}
	}

	var style tcell.Style
	var text string
	if isTempMsgActive {
		text = sb.tempMessage
		if sb.tempIsError {
			style = sb.config.StyleError
		} else {
			style = sb.config.StyleMessage
		}
	} else {
		text = sb.getDefaultDisplayText()
		style = sb.config.StyleDefault
	}
	sb.mu.Unlock()

	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, style)
	}

	gr := uniseg.NewGraphemes(text)
	currentX := 0
	for gr.Next() {
		clusterWidth := gr.Width()
		if currentX+clusterWidth > width {
			break
		}
		runes := gr.Runes()
		if len(runes) > 0 {
			var combiningRunes []rune
			if len(runes) > 1 {
				combiningRunes = runes[1:]
			}
			screen.SetContent(currentX, y, runes[0], combiningRunes, style)
		}
		currentX += clusterWidth
	}
}
