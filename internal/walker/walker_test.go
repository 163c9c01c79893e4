package walker

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkfile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func collect(t *testing.T, cfg Config) []string {
	t.Helper()
	w := New(cfg, func(path string, err error) {
		t.Logf("walk error at %s: %v", path, err)
	}, nil)
	var out []string
	for p := range w.Walk() {
		rel, err := filepath.Rel(cfg.Root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func TestWalkBasicEnumeration(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "a.txt"), "a")
	mkfile(t, filepath.Join(dir, "sub/b.txt"), "b")

	got := collect(t, Config{Root: dir})
	assert.Equal(t, []string{"a.txt", "sub/b.txt"}, got)
}

func TestWalkSkipsHiddenUnlessRequested(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "visible.txt"), "v")
	mkfile(t, filepath.Join(dir, ".hidden.txt"), "h")

	got := collect(t, Config{Root: dir})
	assert.Equal(t, []string{"visible.txt"}, got)

	got = collect(t, Config{Root: dir, IncludeHidden: true})
	assert.Equal(t, []string{".hidden.txt", "visible.txt"}, got)
}

func TestWalkHonorsGitignore(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, ".gitignore"), "ignored.txt\nbuild/\n")
	mkfile(t, filepath.Join(dir, "keep.txt"), "k")
	mkfile(t, filepath.Join(dir, "ignored.txt"), "i")
	mkfile(t, filepath.Join(dir, "build/out.txt"), "o")

	got := collect(t, Config{Root: dir})
	assert.Equal(t, []string{"keep.txt"}, got)
}

func TestWalkNestedGitignoreAddsExclusions(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, ".gitignore"), "*.log\n")
	mkfile(t, filepath.Join(dir, "sub/.gitignore"), "*.tmp\n")
	mkfile(t, filepath.Join(dir, "keep.txt"), "k")
	mkfile(t, filepath.Join(dir, "app.log"), "a")
	mkfile(t, filepath.Join(dir, "sub/build.tmp"), "b")
	mkfile(t, filepath.Join(dir, "sub/note.txt"), "n")

	got := collect(t, Config{Root: dir})
	assert.Equal(t, []string{"keep.txt", "sub/note.txt"}, got)
}

func TestWalkGitignoreSameFileNegationReincludes(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, ".gitignore"), "*.log\n!keep.log\n")
	mkfile(t, filepath.Join(dir, "app.log"), "a")
	mkfile(t, filepath.Join(dir, "keep.log"), "k")

	got := collect(t, Config{Root: dir})
	assert.Equal(t, []string{"keep.log"}, got)
}

func TestWalkIncludeExcludeGlobs(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "a.go"), "a")
	mkfile(t, filepath.Join(dir, "b.txt"), "b")
	mkfile(t, filepath.Join(dir, "vendor/c.go"), "c")

	got := collect(t, Config{
		Root:         dir,
		IncludeGlobs: []string{"*.go"},
		ExcludeGlobs: []string{"vendor/**"},
	})
	assert.Equal(t, []string{"a.go"}, got)
}

func TestWalkExcludeTakesPrecedenceOverInclude(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "a.go"), "a")
	mkfile(t, filepath.Join(dir, "gen.go"), "g")

	got := collect(t, Config{
		Root:         dir,
		IncludeGlobs: []string{"*.go"},
		ExcludeGlobs: []string{"gen.go"},
	})
	assert.Equal(t, []string{"a.go"}, got)
}

func TestWalkBreaksSymlinkLoop(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	mkfile(t, filepath.Join(sub, "f.txt"), "f")

	loop := filepath.Join(sub, "loop")
	if err := os.Symlink(sub, loop); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	done := make(chan []string, 1)
	go func() {
		done <- collect(t, Config{Root: dir})
	}()

	select {
	case got := <-done:
		assert.Contains(t, got, "sub/f.txt")
	case <-time.After(5 * time.Second):
		t.Fatal("walk did not terminate; symlink loop not broken")
	}
}
