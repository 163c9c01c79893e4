// internal/tui/keymap.go
package tui

import (
	"github.com/bethropolis/scatter/internal/config"
	"github.com/gdamore/tcell/v2"
)

// keyName renders a key event into the string vocabulary used by the
// keys config section (spec §6 "keys (keymap overrides by screen)"):
// a bare rune for printable keys, or a short name for control keys.
func keyName(ev *tcell.EventKey) string {
	switch ev.Key() {
	case tcell.KeyRune:
		return string(ev.Rune())
	case tcell.KeyEnter:
		return "Enter"
	case tcell.KeyTab:
		return "Tab"
	case tcell.KeyBacktab:
		return "Backtab"
	case tcell.KeyEsc:
		return "Esc"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "Backspace"
	case tcell.KeyUp:
		return "Up"
	case tcell.KeyDown:
		return "Down"
	case tcell.KeyLeft:
		return "Left"
	case tcell.KeyRight:
		return "Right"
	case tcell.KeyCtrlC:
		return "Ctrl+C"
	default:
		return ev.Name()
	}
}

// defaultSelectingKeymap is the default binding for the
// SelectingResults/PerformingSearch screens (browsing and acting on
// results while a search runs or after it finishes).
var defaultSelectingKeymap = map[string]string{
	"Down":      "move_down",
	"j":         "move_down",
	"Up":        "move_up",
	"k":         "move_up",
	" ":         "toggle_inclusion",
	"a":         "toggle_all",
	"v":         "toggle_anchor",
	"c":         "copy_path",
	"Enter":     "open_editor",
	"o":         "open_editor",
	"r":         "replace",
	"d":         "replace_dry_run",
	"Esc":       "back",
	"Backspace": "back",
	"q":         "quit",
	"Ctrl+C":    "quit",
}

// defaultResultsKeymap is the binding for the terminal Results screen.
var defaultResultsKeymap = map[string]string{
	"Esc":       "back",
	"n":         "back",
	"Backspace": "back",
	"q":         "quit",
	"Ctrl+C":    "quit",
}

// defaultReplacingKeymap is the binding while PerformingReplacement is
// in flight; everything but quit is ignored since the MatchStore is
// frozen (spec §4.6).
var defaultReplacingKeymap = map[string]string{
	"Ctrl+C": "quit",
}

// resolveAction looks up the action bound to name on screen, applying
// any per-screen override from the keys config section over the
// built-in default for that screen.
func resolveAction(screen, name string, overrides config.KeysConfig) string {
	if overrides != nil {
		if m, ok := overrides[screen]; ok {
			if action, ok := m[name]; ok {
				return action
			}
		}
	}

	var defaults map[string]string
	switch screen {
	case "SelectingResults", "PerformingSearch":
		defaults = defaultSelectingKeymap
	case "Results":
		defaults = defaultResultsKeymap
	case "PerformingReplacement":
		defaults = defaultReplacingKeymap
	default:
		return ""
	}
	return defaults[name]
}
