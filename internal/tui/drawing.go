// internal/tui/drawing.go
package tui

import (
	"fmt"
	"strings"

	"github.com/bethropolis/scatter/internal/engine"
	"github.com/bethropolis/scatter/internal/matchstore"
	"github.com/bethropolis/scatter/internal/render"
	"github.com/bethropolis/scatter/internal/theme"
	"github.com/bethropolis/scatter/internal/types"
	"github.com/gdamore/tcell/v2"
)

// literalMatchSpan does a best-effort, fixed-string locate of
// fields.SearchText within a displayed line for visual highlighting
// only; it does not attempt to reproduce the Searcher's actual
// regex/case/whole-word semantics, which are not preserved on
// MatchContent (spec §3 deliberately doesn't carry match offsets).
func literalMatchSpan(content string, fields engine.Fields) (start, end int, ok bool) {
	if fields.SearchText == "" || fields.AdvancedRegex {
		return 0, 0, false
	}
	needle := fields.SearchText
	haystack := content
	if fields.CaseInsensitive {
		needle = strings.ToLower(needle)
		haystack = strings.ToLower(haystack)
	}
	idx := strings.Index(haystack, needle)
	if idx < 0 {
		return 0, 0, false
	}
	return idx, idx + len(needle), true
}

// searchFieldLabels mirrors searchFieldOrder (app.go) with display text.
var searchFieldLabels = map[string]string{
	"root":              "Root",
	"search":            "Search",
	"replace":           "Replace",
	"fixed_strings":     "Fixed strings",
	"whole_word":        "Whole word",
	"case_insensitive":  "Case insensitive",
	"advanced_regex":    "Advanced regex",
	"multiline":         "Multiline",
	"interpret_escapes": "Interpret escapes",
	"include_hidden":    "Include hidden",
	"include_globs":     "Include globs",
	"exclude_globs":     "Exclude globs",
}

func fieldValue(f engine.Fields, name, includeGlobsText, excludeGlobsText string) string {
	switch name {
	case "root":
		return f.Root
	case "search":
		return f.SearchText
	case "replace":
		return f.ReplaceText
	case "fixed_strings":
		return checkbox(f.FixedStrings)
	case "whole_word":
		return checkbox(f.MatchWholeWord)
	case "case_insensitive":
		return checkbox(f.CaseInsensitive)
	case "advanced_regex":
		return checkbox(f.AdvancedRegex)
	case "multiline":
		return checkbox(f.Multiline)
	case "interpret_escapes":
		return checkbox(f.InterpretEscapes)
	case "include_hidden":
		return checkbox(f.IncludeHidden)
	case "include_globs":
		return includeGlobsText
	case "exclude_globs":
		return excludeGlobsText
	default:
		return ""
	}
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// drawSearchFields renders the SearchFields screen: a label/value pair
// per line, the focused field highlighted, and the pattern compile
// error (if any) on the line below the fields (spec §4.6: a
// pattern-compile failure keeps the engine in SearchFields with the
// error recorded for the view).
func drawSearchFields(screen tcell.Screen, t *theme.Theme, snap engine.Snapshot, focusIndex int, includeGlobsText, excludeGlobsText string, width, height int) {
	labelStyle := t.GetStyle("Field.label")
	activeStyle := t.GetStyle("Field.active")
	defaultStyle := t.GetStyle("Default")
	errStyle := t.GetStyle("Error")

	render.FillRect(screen, 0, 0, width, height, defaultStyle)

	const labelWidth = 20
	y := 0
	for i, name := range searchFieldOrder {
		if y >= height {
			break
		}
		style := labelStyle
		if i == focusIndex {
			style = activeStyle
		}
		render.Text(screen, 0, y, searchFieldLabels[name]+":", style, labelWidth)
		render.Text(screen, labelWidth+1, y, fieldValue(snap.Fields, name, includeGlobsText, excludeGlobsText), style, width-labelWidth-1)
		y++
	}

	y++
	if snap.CompileErr != nil && y < height {
		render.Text(screen, 0, y, "pattern error: "+snap.CompileErr.Error(), errStyle, width)
	}
}

// drawResultsList renders the SelectingResults/PerformingSearch screen:
// one row per MatchStore result, the primary-selected row reversed and
// rows outside the current anchor range shown normally. A result
// excluded from replacement is struck through (spec §4.4).
func drawResultsList(screen tcell.Screen, t *theme.Theme, store *matchstore.Store, snap engine.Snapshot, width, height int) {
	defaultStyle := t.GetStyle("Default")
	pathStyle := t.GetStyle("Path")
	selectionStyle := t.GetStyle("Selection")
	ignoredStyle := t.GetStyle("Ignored")
	anchorStyle := t.GetStyle("Anchor")

	render.FillRect(screen, 0, 0, width, height, defaultStyle)

	results := store.All()
	if len(results) == 0 {
		msg := "searching..."
		if !snap.Searching {
			msg = "no matches"
		}
		render.Text(screen, 0, 0, msg, defaultStyle, width)
		return
	}

	// Keep the selected row within the visible window.
	top := 0
	if snap.Selected >= height {
		top = snap.Selected - height + 1
	}

	for row := 0; row < height; row++ {
		idx := top + row
		if idx >= len(results) {
			break
		}
		r := results[idx]

		style := defaultStyle
		inAnchorRange := snap.HasAnchor && idx >= snap.AnchorStart && idx <= snap.AnchorEnd
		switch {
		case idx == snap.Selected:
			style = selectionStyle
		case inAnchorRange:
			style = anchorStyle
		case !r.Included:
			style = ignoredStyle
		}

		render.FillRect(screen, 0, row, width, 1, style)

		mark := " "
		if r.Included {
			mark = "*"
		}
		x := render.Text(screen, 0, row, mark, style, 1)

		loc := locationText(r)
		x += render.Text(screen, x+1, row, loc, pickOrDefault(idx == snap.Selected, style, pathStyle), width-x-1)

		content := contentPreview(r.Content)
		if x+2 < width {
			contentStyle := pickOrDefault(idx == snap.Selected, style, defaultStyle)
			if hiStart, hiEnd, ok := literalMatchSpan(content, snap.Fields); ok && idx != snap.Selected {
				matchStyle := t.GetStyle("Match")
				if !r.Included {
					matchStyle = t.GetStyle("Match.conflict")
				}
				render.TextWithHighlight(screen, x+2, row, content, contentStyle, matchStyle, hiStart, hiEnd, width-x-2)
			} else {
				render.Text(screen, x+2, row, content, contentStyle, width-x-2)
			}
		}
	}
}

func pickOrDefault(cond bool, a, b tcell.Style) tcell.Style {
	if cond {
		return a
	}
	return b
}

func locationText(r types.SearchResult) string {
	path := r.Path
	if !r.HasPath {
		path = "(stdin)"
	}
	switch r.Content.Kind {
	case types.MatchContentLines:
		return fmt.Sprintf("%s:%d", path, r.Content.LineNumber)
	case types.MatchContentByteRange:
		return fmt.Sprintf("%s:%d-%d", path, r.Content.StartLine, r.Content.EndLine)
	default:
		return path
	}
}

func contentPreview(c types.MatchContent) string {
	switch c.Kind {
	case types.MatchContentLines:
		return c.Content
	case types.MatchContentByteRange:
		return string(c.ExpectedContent)
	default:
		return ""
	}
}

// drawReplaceProgress renders the PerformingReplacement screen: a
// single progress line, since the MatchStore is frozen and nothing
// else is interactive while a replace run is in flight (spec §4.6).
func drawReplaceProgress(screen tcell.Screen, t *theme.Theme, snap engine.Snapshot, width, height int) {
	defaultStyle := t.GetStyle("Default")
	render.FillRect(screen, 0, 0, width, height, defaultStyle)
	if height == 0 {
		return
	}
	text := fmt.Sprintf("replacing %d/%d...", snap.ReplaceCompleted, snap.ReplaceTotal)
	render.Text(screen, 0, 0, text, defaultStyle, width)
}

// drawSummary renders the terminal Results screen: success/ignored/error
// counts and, for the errors, their path, location, and reason (spec §7
// "All are surfaced in the Results screen with the file path, line
// range, and reason").
func drawSummary(screen tcell.Screen, t *theme.Theme, snap engine.Snapshot, width, height int) {
	defaultStyle := t.GetStyle("Default")
	okStyle := t.GetStyle("StatusBarOk")
	errStyle := t.GetStyle("Error")

	render.FillRect(screen, 0, 0, width, height, defaultStyle)

	y := 0
	if y < height {
		summary := fmt.Sprintf("%d replaced, %d ignored, %d errors", snap.Summary.NumSuccesses, snap.Summary.NumIgnored, snap.Summary.NumErrors)
		style := okStyle
		if snap.Summary.NumErrors > 0 {
			style = errStyle
		}
		render.Text(screen, 0, y, summary, style, width)
		y += 2
	}

	for _, item := range snap.Summary.Errors {
		if y >= height {
			break
		}
		loc := locationText(item.Result)
		reason := item.ReplaceResult.Err.String()
		if item.ReplaceResult.Detail != "" {
			reason = reason + ": " + item.ReplaceResult.Detail
		}
		render.Text(screen, 0, y, loc+" -- "+reason, errStyle, width)
		y++
	}
}
