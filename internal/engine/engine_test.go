package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/scatter/internal/event"
)

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for engine event")
	}
}

func newTestEngine() (*Engine, *event.Manager) {
	events := event.NewManager()
	return New(events), events
}

func TestPerformSearchFindsMatchesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello world\nfoo\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("hello again\n"), 0o644))

	e, events := newTestEngine()
	done := make(chan struct{}, 1)
	events.Subscribe(event.TypeSearchCompleted, func(ev event.Event) bool {
		done <- struct{}{}
		return true
	})

	e.SetFields(Fields{Root: dir, SearchText: "hello"})
	e.PerformSearch()
	waitFor(t, done)

	assert.Equal(t, StateSelectingResults, e.State())
	assert.Equal(t, 2, e.Store().Len())
}

func TestPerformSearchInvalidRegexStaysInSearchFields(t *testing.T) {
	dir := t.TempDir()
	e, _ := newTestEngine()
	e.SetFields(Fields{Root: dir, SearchText: "(unclosed", AdvancedRegex: true})
	e.PerformSearch()

	assert.Equal(t, StateSearchFields, e.State())
	assert.Error(t, e.Snapshot().CompileErr)
}

func TestPerformReplacementEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world\n"), 0o644))

	e, events := newTestEngine()
	searchDone := make(chan struct{}, 1)
	replaceDone := make(chan struct{}, 1)
	events.Subscribe(event.TypeSearchCompleted, func(ev event.Event) bool {
		searchDone <- struct{}{}
		return true
	})
	events.Subscribe(event.TypeReplaceCompleted, func(ev event.Event) bool {
		replaceDone <- struct{}{}
		return true
	})

	e.SetFields(Fields{Root: dir, SearchText: "hello", ReplaceText: "goodbye"})
	e.PerformSearch()
	waitFor(t, searchDone)
	require.Equal(t, 1, e.Store().Len())

	e.PerformReplacement(false)
	waitFor(t, replaceDone)

	assert.Equal(t, StateResults, e.State())
	summary := e.Summary()
	assert.Equal(t, 1, summary.NumSuccesses)
	assert.Equal(t, 0, summary.NumErrors)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "goodbye world\n", string(got))
}

func TestPerformReplacementHonorsExclusion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\nhello\n"), 0o644))

	e, events := newTestEngine()
	searchDone := make(chan struct{}, 1)
	replaceDone := make(chan struct{}, 1)
	events.Subscribe(event.TypeSearchCompleted, func(ev event.Event) bool {
		searchDone <- struct{}{}
		return true
	})
	events.Subscribe(event.TypeReplaceCompleted, func(ev event.Event) bool {
		replaceDone <- struct{}{}
		return true
	})

	e.SetFields(Fields{Root: dir, SearchText: "hello", ReplaceText: "bye"})
	e.PerformSearch()
	waitFor(t, searchDone)
	require.Equal(t, 2, e.Store().Len())

	e.ToggleInclusion(0)
	e.PerformReplacement(false)
	waitFor(t, replaceDone)

	summary := e.Summary()
	assert.Equal(t, 1, summary.NumSuccesses)
	assert.Equal(t, 1, summary.NumIgnored)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\nbye\n", string(got))
}

func TestStdinModeReplacementProducesTransformedBytes(t *testing.T) {
	e, events := newTestEngine()
	searchDone := make(chan struct{}, 1)
	replaceDone := make(chan struct{}, 1)
	events.Subscribe(event.TypeSearchCompleted, func(ev event.Event) bool {
		searchDone <- struct{}{}
		return true
	})
	events.Subscribe(event.TypeReplaceCompleted, func(ev event.Event) bool {
		replaceDone <- struct{}{}
		return true
	})

	e.UseStdin([]byte("foo\nbar\nfoo\n"))
	e.SetFields(Fields{SearchText: "foo", ReplaceText: "baz"})
	e.PerformSearch()
	waitFor(t, searchDone)
	require.Equal(t, 2, e.Store().Len())

	e.PerformReplacement(false)
	waitFor(t, replaceDone)

	assert.Equal(t, "baz\nbar\nbaz\n", string(e.StdinResult()))
}

func TestResetReturnsToSearchFields(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello\n"), 0o644))

	e, events := newTestEngine()
	done := make(chan struct{}, 1)
	events.Subscribe(event.TypeSearchCompleted, func(ev event.Event) bool {
		done <- struct{}{}
		return true
	})

	e.SetFields(Fields{Root: dir, SearchText: "hello"})
	e.PerformSearch()
	waitFor(t, done)

	e.Reset()
	assert.Equal(t, StateSearchFields, e.State())
	assert.Equal(t, 0, e.Store().Len())
}
