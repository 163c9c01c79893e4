// internal/theme/theme.go
package theme

import (
	"strings"

	"github.com/bethropolis/scatter/internal/logger"
	"github.com/gdamore/tcell/v2"
)

// Theme is a named set of styles keyed by UI element (spec §6 preview/
// style sections render through these names).
type Theme struct {
	Name   string
	IsDark bool
	Styles map[string]tcell.Style
}

// GetStyle resolves a style by name, falling back to a dotted base name
// (the part before the first dot, e.g. "diff.added.bold" -> "diff") and
// finally "Default".
func (t *Theme) GetStyle(name string) tcell.Style {
	if style, ok := t.Styles[name]; ok {
		return style
	}

	baseName := name
	if dotIndex := strings.Index(name, "."); dotIndex != -1 {
		baseName = name[:dotIndex]
		if style, ok := t.Styles[baseName]; ok {
			if baseName != name {
				logger.Debugf("Theme '%s': Style '%s' not found, using base '%s'", t.Name, name, baseName)
			}
			return style
		}
	}

	if defStyle, ok := t.Styles["Default"]; ok {
		if name != "Default" {
			logger.Debugf("Theme '%s': Style '%s' not found, falling back to 'Default'", t.Name, name)
		}
		return defStyle
	}

	logger.Warnf("Theme '%s': Style '%s' and 'Default' style not found, using tcell default.", t.Name, name)
	return tcell.StyleDefault
}

// ScatterDark is the built-in default theme. Its style set covers the
// renderer's needs: field/result chrome, match/replacement diff
// highlighting, and status bar variants (spec §6 style/preview).
var ScatterDark Theme

func init() {
	background := tcell.NewHexColor(0x2a2f38)
	foreground := tcell.NewHexColor(0xc5cdd9)
	muted := tcell.NewHexColor(0x5c6370)
	orange := tcell.NewHexColor(0xd19a66)
	yellow := tcell.NewHexColor(0xe5c07b)
	green := tcell.NewHexColor(0x98c379)
	red := tcell.NewHexColor(0xe06c75)
	cyan := tcell.NewHexColor(0x56b6c2)
	blue := tcell.NewHexColor(0x61afef)

	base := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(foreground)

	ScatterDark = Theme{
		Name:   "scatter dark",
		IsDark: true,
		Styles: map[string]tcell.Style{
			"Default":    base,
			"LineNumber": base.Foreground(muted),
			"Path":       base.Foreground(cyan).Bold(true),
			"Selection":  base.Reverse(true),
			"Ignored":    base.Foreground(muted).StrikeThrough(true),
			"Anchor":     base.Foreground(yellow),

			"Match":            tcell.StyleDefault.Background(tcell.ColorOrange).Foreground(tcell.ColorBlack),
			"Match.conflict":   tcell.StyleDefault.Background(red).Foreground(tcell.ColorBlack),
			"Diff.removed":     base.Foreground(red),
			"Diff.added":       base.Foreground(green),
			"Diff.unchanged":   base.Foreground(muted),

			"StatusBar":        tcell.StyleDefault.Background(background).Foreground(foreground),
			"StatusBarMessage": tcell.StyleDefault.Background(background).Foreground(foreground).Bold(true),
			"StatusBarError":   tcell.StyleDefault.Background(background).Foreground(red).Bold(true),
			"StatusBarOk":      tcell.StyleDefault.Background(background).Foreground(green).Bold(true),

			"Field.label":    base.Foreground(muted),
			"Field.active":   base.Foreground(blue).Bold(true),
			"Field.disabled": base.Foreground(muted).Italic(true),

			"Error": base.Foreground(red).Bold(true),
			"Dim":   base.Foreground(muted),
		},
	}

	CurrentTheme = &ScatterDark
}

// CurrentTheme is the process-wide active theme, set at startup from the
// preview.theme config value and never mutated afterward; scatter has no
// interactive theme-switch command.
var CurrentTheme *Theme

func GetCurrentTheme() *Theme {
	if CurrentTheme == nil {
		CurrentTheme = &ScatterDark
	}
	return CurrentTheme
}

func SetCurrentTheme(theme *Theme) {
	if theme != nil {
		CurrentTheme = theme
		logger.Infof("Theme switched to: %s", theme.Name)
	}
}
