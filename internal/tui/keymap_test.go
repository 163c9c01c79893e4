package tui

import (
	"testing"

	"github.com/bethropolis/scatter/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestResolveActionUsesDefaultForSelectingResults(t *testing.T) {
	assert.Equal(t, "move_down", resolveAction("SelectingResults", "Down", nil))
	assert.Equal(t, "toggle_inclusion", resolveAction("SelectingResults", " ", nil))
	assert.Equal(t, "quit", resolveAction("SelectingResults", "Ctrl+C", nil))
}

func TestResolveActionAppliesConfigOverride(t *testing.T) {
	overrides := config.KeysConfig{
		"SelectingResults": {"Down": "replace"},
	}
	assert.Equal(t, "replace", resolveAction("SelectingResults", "Down", overrides))
	// Unrelated bindings on the same screen still fall back to defaults.
	assert.Equal(t, "move_up", resolveAction("SelectingResults", "Up", overrides))
}

func TestResolveActionUnknownScreenReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", resolveAction("SearchFields", "a", nil))
}

func TestResolveActionResultsScreenDefaults(t *testing.T) {
	assert.Equal(t, "back", resolveAction("Results", "Esc", nil))
	assert.Equal(t, "back", resolveAction("Results", "n", nil))
}
