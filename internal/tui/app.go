// internal/tui/app.go
package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/bethropolis/scatter/internal/config"
	"github.com/bethropolis/scatter/internal/engine"
	"github.com/bethropolis/scatter/internal/event"
	"github.com/bethropolis/scatter/internal/logger"
	"github.com/bethropolis/scatter/internal/plugin"
	"github.com/bethropolis/scatter/internal/statusbar"
	"github.com/bethropolis/scatter/internal/theme"
	"github.com/bethropolis/scatter/internal/types"
	"github.com/gdamore/tcell/v2"
)

// searchFieldOrder is the focus order of the SearchFields screen (spec
// §6's search/preview fields plus the core Fields struct). Tab/Backtab
// cycle through it; Enter anywhere triggers PerformSearch.
var searchFieldOrder = []string{
	"root", "search", "replace",
	"fixed_strings", "whole_word", "case_insensitive", "advanced_regex",
	"multiline", "interpret_escapes", "include_hidden",
	"include_globs", "exclude_globs",
}

func isTextFocus(name string) bool {
	switch name {
	case "root", "search", "replace", "include_globs", "exclude_globs":
		return true
	default:
		return false
	}
}

// App wires the Engine to a tcell screen: it owns the draw loop, the
// keyboard dispatch, and the narrow set of external collaborators
// (editor launcher, clipboard, status bar) the Engine itself never
// touches (spec §6).
type App struct {
	tui       *TUI
	engine    *engine.Engine
	events    *event.Manager
	statusBar *statusbar.StatusBar
	launcher  *plugin.Launcher
	theme     *theme.Theme
	keys      config.KeysConfig

	quit   chan struct{}
	redraw chan struct{}

	focusIndex       int
	includeGlobsText string
	excludeGlobsText string
}

// NewApp builds an App around an already-configured Engine.
func NewApp(e *engine.Engine, events *event.Manager, launcher *plugin.Launcher, t *theme.Theme, keys config.KeysConfig) (*App, error) {
	tm, err := New()
	if err != nil {
		return nil, err
	}

	fields := e.Fields()

	a := &App{
		tui:              tm,
		engine:           e,
		events:           events,
		statusBar:        statusbar.NewFromTheme(t),
		launcher:         launcher,
		theme:            t,
		keys:             keys,
		quit:             make(chan struct{}),
		redraw:           make(chan struct{}, 1),
		includeGlobsText: strings.Join(fields.IncludeGlobs, ", "),
		excludeGlobsText: strings.Join(fields.ExcludeGlobs, ", "),
	}
	a.subscribeEvents()
	return a, nil
}

func (a *App) subscribeEvents() {
	redrawOn := func(t event.Type) {
		a.events.Subscribe(t, func(event.Event) bool {
			a.requestRedraw()
			return false
		})
	}
	redrawOn(event.TypeSearchResultAppended)
	redrawOn(event.TypeSearchCompleted)
	redrawOn(event.TypeWalkError)
	redrawOn(event.TypeReplaceProgress)
	redrawOn(event.TypeReplaceCompleted)
}

func (a *App) requestRedraw() {
	select {
	case a.redraw <- struct{}{}:
	default:
	}
}

// Run starts the draw loop and blocks until the user quits.
func (a *App) Run() error {
	defer a.tui.Close()

	go a.pollEvents()

	a.events.Dispatch(event.TypeAppReady, event.AppReadyData{})
	a.statusBar.SetTemporaryMessage("scatter -- Tab: next field, Enter: search, Esc: quit")
	a.requestRedraw()

	for {
		select {
		case <-a.quit:
			a.events.Dispatch(event.TypeAppQuit, event.AppQuitData{})
			return nil
		case <-a.redraw:
			a.render()
		}
	}
}

func (a *App) pollEvents() {
	for {
		ev := a.tui.PollEvent()
		if ev == nil {
			return
		}

		switch tev := ev.(type) {
		case *tcell.EventResize:
			a.tui.GetScreen().Sync()
			a.requestRedraw()
		case *tcell.EventKey:
			if a.handleKey(tev) == engine.ActionExit {
				close(a.quit)
				return
			}
			a.requestRedraw()
		}
	}
}

// handleKey dispatches a key event according to the Engine's current
// state, following the teacher's delegate-everything-to-one-place
// idiom rather than a generic mode stack.
func (a *App) handleKey(ev *tcell.EventKey) engine.Action {
	snap := a.engine.Snapshot()

	if snap.State == engine.StateSearchFields {
		return a.handleSearchFieldsKey(ev)
	}

	action := resolveAction(snap.State.String(), keyName(ev), a.keys)
	switch action {
	case "move_down":
		a.engine.MoveSelection(1)
	case "move_up":
		a.engine.MoveSelection(-1)
	case "toggle_inclusion":
		if _, _, ok := a.engine.Store().Anchor(); ok {
			a.engine.ToggleSelectedRange()
			a.engine.ClearAnchor()
		} else {
			a.engine.ToggleInclusion(a.engine.Store().Selected())
		}
	case "toggle_all":
		a.engine.ToggleAll()
	case "toggle_anchor":
		if _, _, ok := a.engine.Store().Anchor(); ok {
			a.engine.ClearAnchor()
		} else {
			a.engine.SetAnchor()
		}
	case "copy_path":
		a.copySelectedPath()
	case "open_editor":
		a.openSelectedInEditor()
	case "replace":
		a.engine.PerformReplacement(false)
	case "replace_dry_run":
		a.engine.PerformReplacement(true)
	case "back":
		a.engine.Reset()
	case "quit":
		return engine.ActionExit
	}
	return engine.ActionRerender
}

func (a *App) handleSearchFieldsKey(ev *tcell.EventKey) engine.Action {
	switch ev.Key() {
	case tcell.KeyTab:
		a.focusIndex = (a.focusIndex + 1) % len(searchFieldOrder)
	case tcell.KeyBacktab:
		a.focusIndex = (a.focusIndex - 1 + len(searchFieldOrder)) % len(searchFieldOrder)
	case tcell.KeyEnter:
		a.engine.PerformSearch()
	case tcell.KeyEsc, tcell.KeyCtrlC:
		return engine.ActionExit
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.backspaceFocused()
	case tcell.KeyRune:
		name := searchFieldOrder[a.focusIndex]
		if ev.Rune() == ' ' && !isTextFocus(name) {
			a.toggleFocused()
		} else if isTextFocus(name) {
			a.appendRuneFocused(ev.Rune())
		}
	default:
		return engine.ActionNone
	}
	return engine.ActionRerender
}

func (a *App) appendRuneFocused(r rune) {
	switch searchFieldOrder[a.focusIndex] {
	case "root":
		a.engine.EditField(func(f *engine.Fields) { f.Root += string(r) })
	case "search":
		a.engine.EditField(func(f *engine.Fields) { f.SearchText += string(r) })
	case "replace":
		a.engine.EditField(func(f *engine.Fields) { f.ReplaceText += string(r) })
	case "include_globs":
		a.includeGlobsText += string(r)
		a.syncGlobs()
	case "exclude_globs":
		a.excludeGlobsText += string(r)
		a.syncGlobs()
	}
}

func trimLastRune(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return string(runes[:len(runes)-1])
}

func (a *App) backspaceFocused() {
	switch searchFieldOrder[a.focusIndex] {
	case "root":
		a.engine.EditField(func(f *engine.Fields) { f.Root = trimLastRune(f.Root) })
	case "search":
		a.engine.EditField(func(f *engine.Fields) { f.SearchText = trimLastRune(f.SearchText) })
	case "replace":
		a.engine.EditField(func(f *engine.Fields) { f.ReplaceText = trimLastRune(f.ReplaceText) })
	case "include_globs":
		a.includeGlobsText = trimLastRune(a.includeGlobsText)
		a.syncGlobs()
	case "exclude_globs":
		a.excludeGlobsText = trimLastRune(a.excludeGlobsText)
		a.syncGlobs()
	}
}

func (a *App) syncGlobs() {
	a.engine.EditField(func(f *engine.Fields) {
		f.IncludeGlobs = splitGlobs(a.includeGlobsText)
		f.ExcludeGlobs = splitGlobs(a.excludeGlobsText)
	})
}

func splitGlobs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (a *App) toggleFocused() {
	switch searchFieldOrder[a.focusIndex] {
	case "fixed_strings":
		a.engine.EditField(func(f *engine.Fields) { f.FixedStrings = !f.FixedStrings })
	case "whole_word":
		a.engine.EditField(func(f *engine.Fields) { f.MatchWholeWord = !f.MatchWholeWord })
	case "case_insensitive":
		a.engine.EditField(func(f *engine.Fields) { f.CaseInsensitive = !f.CaseInsensitive })
	case "advanced_regex":
		a.engine.EditField(func(f *engine.Fields) { f.AdvancedRegex = !f.AdvancedRegex })
	case "multiline":
		a.engine.EditField(func(f *engine.Fields) { f.Multiline = !f.Multiline })
	case "interpret_escapes":
		a.engine.EditField(func(f *engine.Fields) { f.InterpretEscapes = !f.InterpretEscapes })
	case "include_hidden":
		a.engine.EditField(func(f *engine.Fields) { f.IncludeHidden = !f.IncludeHidden })
	}
}

func (a *App) copySelectedPath() {
	idx := a.engine.Store().Selected()
	r, ok := a.engine.Store().Get(idx)
	if !ok || !r.HasPath {
		a.statusBar.SetTemporaryError("nothing to copy")
		return
	}
	if err := clipboard.WriteAll(r.Path); err != nil {
		a.statusBar.SetTemporaryError("clipboard: %v", err)
		return
	}
	a.statusBar.SetTemporaryMessage("copied %s", r.Path)
}

func (a *App) openSelectedInEditor() {
	if a.launcher == nil {
		a.statusBar.SetTemporaryError("no editor_open command configured")
		return
	}
	idx := a.engine.Store().Selected()
	r, ok := a.engine.Store().Get(idx)
	if !ok || !r.HasPath {
		a.statusBar.SetTemporaryError("nothing to open")
		return
	}

	line := 1
	switch r.Content.Kind {
	case types.MatchContentLines:
		line = r.Content.LineNumber
	case types.MatchContentByteRange:
		line = r.Content.StartLine
	}

	screen := a.tui.GetScreen()
	if err := screen.Suspend(); err != nil {
		logger.WarnTagf("tui", "failed to suspend screen for editor launch: %v", err)
	}
	err := a.launcher.Open(r.Path, line)
	if rerr := screen.Resume(); rerr != nil {
		logger.WarnTagf("tui", "failed to resume screen after editor launch: %v", rerr)
	}

	if err != nil {
		a.statusBar.SetTemporaryError("editor: %v", err)
		return
	}
	if a.launcher.ExitAfterOpen {
		close(a.quit)
	}
}

func (a *App) render() {
	a.tui.Clear()
	screen := a.tui.GetScreen()
	width, height := a.tui.Size()
	snap := a.engine.Snapshot()

	drawHeight := height - 1
	if drawHeight < 0 {
		drawHeight = 0
	}

	switch snap.State {
	case engine.StateSearchFields:
		drawSearchFields(screen, a.theme, snap, a.focusIndex, a.includeGlobsText, a.excludeGlobsText, width, drawHeight)
	case engine.StatePerformingSearch, engine.StateSelectingResults:
		drawResultsList(screen, a.theme, a.engine.Store(), snap, width, drawHeight)
	case engine.StatePerformingReplacement:
		drawReplaceProgress(screen, a.theme, snap, width, drawHeight)
	case engine.StateResults:
		drawSummary(screen, a.theme, snap, width, drawHeight)
	}

	includedCount := 0
	for _, r := range a.engine.Store().All() {
		if r.Included {
			includedCount++
		}
	}
	a.statusBar.SetSearchInfo(snap.Fields.Root, snap.State.String())
	a.statusBar.SetCounts(snap.ResultCount, includedCount)
	a.statusBar.SetSearching(snap.Searching)
	a.statusBar.SetReplaceProgress(snap.ReplaceCompleted, snap.ReplaceTotal)
	a.statusBar.Draw(screen, width, height)

	a.tui.Show()
}
