package replace

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/bethropolis/scatter/internal/types"
)

// rewriteBytes implements spec §4.5 step 4 (byte-mode rewrite): copy the
// file through byte-for-byte, substituting replacement bytes only at
// ranges whose stored expected content still matches the file's actual
// bytes, then copy whatever remains after the last range.
func rewriteBytes(path string, items []*types.SearchResultWithReplacement) {
	ordered := make([]*types.SearchResultWithReplacement, len(items))
	copy(ordered, items)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Result.Content.ByteStart < ordered[j].Result.Content.ByteStart
	})

	err := withTempRewrite(path, func(src *bufio.Reader, dst *bufio.Writer) error {
		var pos int64
		for _, it := range ordered {
			c := it.Result.Content
			if c.ByteStart < pos {
				// Overlapped a prior range already applied; this one was
				// supposed to have been flagged by conflict detection, but
				// guard against it anyway rather than corrupt the stream.
				it.ReplaceResult = types.Error(types.ErrorKindConflict, "overlapping byte range")
				continue
			}

			if err := copyN(dst, src, c.ByteStart-pos); err != nil {
				return err
			}
			pos = c.ByteStart

			actual := make([]byte, c.ByteEnd-c.ByteStart)
			if _, err := io.ReadFull(src, actual); err != nil {
				return err
			}
			pos = c.ByteEnd

			if it.ReplaceResult.Kind != types.ReplaceNone {
				// Already resolved (ignored/conflict) upstream; pass the
				// original bytes through unchanged.
				if _, err := dst.Write(actual); err != nil {
					return err
				}
				continue
			}

			if string(actual) != string(c.ExpectedContent) {
				it.ReplaceResult = types.Error(types.ErrorKindFileChanged, "")
				if _, err := dst.Write(actual); err != nil {
					return err
				}
				continue
			}

			if _, err := dst.Write(it.Replacement); err != nil {
				return err
			}
			it.ReplaceResult = types.Success()
		}

		_, err := io.Copy(dst, src)
		return err
	})

	if err != nil {
		for _, it := range items {
			if it.ReplaceResult.Kind == types.ReplaceNone {
				it.ReplaceResult = types.Error(types.ErrorKindIO, fmt.Sprintf("%v", err))
			}
		}
	}
}

// copyN copies exactly n bytes from src to dst. n of 0 is a no-op.
func copyN(dst *bufio.Writer, src *bufio.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	_, err := io.CopyN(dst, src, n)
	return err
}
