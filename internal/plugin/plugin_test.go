package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandTemplateSubstitutesFileAndLine(t *testing.T) {
	got := expandTemplate("nano +%line %file", "/tmp/a.go", 42)
	assert.Equal(t, "nano +42 /tmp/a.go", got)
}

func TestExpandTemplateResolvesEditorEnvVar(t *testing.T) {
	t.Setenv("EDITOR", "nvim")
	got := expandTemplate("$EDITOR %file:%line", "/tmp/a.go", 7)
	assert.Equal(t, "nvim /tmp/a.go:7", got)
}

func TestExpandTemplateFallsBackToViWhenEditorUnset(t *testing.T) {
	t.Setenv("EDITOR", "")
	got := expandTemplate("$EDITOR %file", "/tmp/a.go", 1)
	assert.Equal(t, "vi /tmp/a.go", got)
}

func TestOpenRejectsEmptyCommand(t *testing.T) {
	l := NewLauncher("", false)
	err := l.Open("/tmp/a.go", 1)
	assert.Error(t, err)
}
