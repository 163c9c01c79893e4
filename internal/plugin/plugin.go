// internal/plugin/plugin.go
package plugin

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/bethropolis/scatter/internal/logger"
)

// Launcher opens a matched file in an external editor (spec §6
// editor_open). The configured command template's "%file" and "%line"
// placeholders are substituted with the match's path and 1-based line
// number, the result is split into argv, and the editor is exec'd with
// the current process's stdio so a terminal editor can take the screen.
type Launcher struct {
	Command       string
	ExitAfterOpen bool
}

// NewLauncher builds a Launcher from the editor_open config section.
func NewLauncher(command string, exitAfterOpen bool) *Launcher {
	return &Launcher{Command: command, ExitAfterOpen: exitAfterOpen}
}

// Open substitutes path and line into the command template and runs it.
func (l *Launcher) Open(path string, line int) error {
	if l.Command == "" {
		return fmt.Errorf("plugin: no editor_open command configured")
	}

	rendered := expandTemplate(l.Command, path, line)
	argv := strings.Fields(rendered)
	if len(argv) == 0 {
		return fmt.Errorf("plugin: editor_open command expanded to an empty argument list")
	}

	logger.DebugTagf("plugin", "opening editor: %v", argv)

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("plugin: failed to launch editor: %w", err)
	}
	return nil
}

// expandTemplate replaces %file and %line, and resolves a literal $EDITOR
// reference from the process environment (falling back to vi).
func expandTemplate(template, path string, line int) string {
	out := strings.ReplaceAll(template, "%file", path)
	out = strings.ReplaceAll(out, "%line", strconv.Itoa(line))
	if strings.Contains(out, "$EDITOR") {
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}
		out = strings.ReplaceAll(out, "$EDITOR", editor)
	}
	return out
}
