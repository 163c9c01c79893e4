package engine

// Selection-related methods, valid while in StateSelectingResults (spec
// §4.6: "SelectingResults accepts inclusion toggles and cursor
// movement"). They delegate straight to the MatchStore, which is the
// sole owner of the selected/anchor cursors (spec §4.4).

// ToggleInclusion flips the included flag at index i.
func (e *Engine) ToggleInclusion(i int) {
	e.store.ToggleInclusion(i)
}

// ToggleSelectedRange flips inclusion across the current anchor range,
// if one is set.
func (e *Engine) ToggleSelectedRange() {
	start, end, ok := e.store.Anchor()
	if !ok {
		return
	}
	e.store.ToggleRange(start, end)
}

// ToggleAll flips the included flag for every result.
func (e *Engine) ToggleAll() {
	e.store.ToggleAll()
}

// MoveSelection moves the primary-selected cursor by delta.
func (e *Engine) MoveSelection(delta int) {
	e.store.SetSelected(e.store.Selected() + delta)
}

// SetAnchor marks the current selection as a multi-select range start.
func (e *Engine) SetAnchor() {
	e.store.SetAnchor()
}

// ClearAnchor drops the multi-select anchor.
func (e *Engine) ClearAnchor() {
	e.store.ClearAnchor()
}
