package statusbar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetDefaultDisplayTextShowsCounts(t *testing.T) {
	sb := New(DefaultConfig())
	sb.SetSearchInfo("/tmp/proj", "SelectingResults")
	sb.SetCounts(12, 5)
	text := sb.getDefaultDisplayText()
	assert.Contains(t, text, "/tmp/proj")
	assert.Contains(t, text, "SelectingResults")
	assert.Contains(t, text, "12 matches")
	assert.Contains(t, text, "5 selected")
}

func TestGetDefaultDisplayTextShowsSearchingProgress(t *testing.T) {
	sb := New(DefaultConfig())
	sb.SetSearchInfo("/tmp/proj", "PerformingSearch")
	sb.SetCounts(3, 0)
	sb.SetSearching(true)
	text := sb.getDefaultDisplayText()
	assert.Contains(t, text, "searching")
	assert.Contains(t, text, "3 matches")
}

func TestGetDefaultDisplayTextShowsReplaceProgress(t *testing.T) {
	sb := New(DefaultConfig())
	sb.SetSearchInfo("/tmp/proj", "PerformingReplacement")
	sb.SetReplaceProgress(4, 10)
	text := sb.getDefaultDisplayText()
	assert.Contains(t, text, "replacing 4/10")
}

func TestGetDefaultDisplayTextDefaultsRootToDot(t *testing.T) {
	sb := New(DefaultConfig())
	text := sb.getDefaultDisplayText()
	assert.Contains(t, text, ".")
}

func TestTemporaryMessageExpiresAfterTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MessageTimeout = 10 * time.Millisecond
	sb := New(cfg)
	sb.SetTemporaryMessage("copied path")

	sb.mu.RLock()
	msg := sb.tempMessage
	sb.mu.RUnlock()
	assert.Equal(t, "copied path", msg)

	time.Sleep(20 * time.Millisecond)
	sb.mu.Lock()
	isActive := !sb.tempMessageTime.IsZero() && time.Since(sb.tempMessageTime) <= sb.config.MessageTimeout
	sb.mu.Unlock()
	assert.False(t, isActive)
}

func TestSetTemporaryErrorMarksStyleAsError(t *testing.T) {
	sb := New(DefaultConfig())
	sb.SetTemporaryError("boom: %v", assertError{})
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	assert.True(t, sb.tempIsError)
	assert.Contains(t, sb.tempMessage, "boom")
}

type assertError struct{}

func (assertError) Error() string { return "failed" }
