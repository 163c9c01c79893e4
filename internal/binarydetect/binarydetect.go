// Package binarydetect classifies files as text or binary by sniffing a
// bounded byte prefix for NUL bytes (spec §4.2).
package binarydetect

import (
	"bytes"
	"io"
	"os"
)

// PrefixSize is the maximum number of bytes inspected.
const PrefixSize = 8 * 1024

// IsBinary reports whether the given prefix bytes indicate binary content:
// any NUL byte present makes the classification binary.
func IsBinary(prefix []byte) bool {
	return bytes.IndexByte(prefix, 0) != -1
}

// ClassifyFile reads at most PrefixSize bytes from path and classifies it.
func ClassifyFile(path string) (binary bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, PrefixSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return IsBinary(buf[:n]), nil
}
