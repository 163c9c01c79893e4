package binarydetect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBinaryDetectsNULByte(t *testing.T) {
	assert.False(t, IsBinary([]byte("hello world")))
	assert.True(t, IsBinary([]byte("hello\x00world")))
	assert.False(t, IsBinary(nil))
}

func TestClassifyFileText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("just text\n"), 0o644))

	binary, err := ClassifyFile(path)
	require.NoError(t, err)
	assert.False(t, binary)
}

func TestClassifyFileBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	content := append([]byte("PNG"), 0x00, 0x01, 0x02)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	binary, err := ClassifyFile(path)
	require.NoError(t, err)
	assert.True(t, binary)
}

func TestClassifyFileOnlyInspectsPrefix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	content := make([]byte, PrefixSize+10)
	for i := range content {
		content[i] = 'x'
	}
	content[PrefixSize+5] = 0x00 // NUL well past the inspected prefix
	require.NoError(t, os.WriteFile(path, content, 0o644))

	binary, err := ClassifyFile(path)
	require.NoError(t, err)
	assert.False(t, binary)
}
