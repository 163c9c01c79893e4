package search

import (
	"bufio"
	"io"

	"github.com/bethropolis/scatter/internal/types"
)

// ScannedLine is one line read from a stream, terminator classified and
// stripped from Content (spec "Line" type).
type ScannedLine struct {
	Number     int // 1-based
	Content    []byte
	LineEnding types.LineEnding
}

// lineScanner reads raw bytes and splits them into lines, preserving
// mixed line endings byte-exactly (spec §3 LineEnding: never inferred or
// normalized across lines).
type lineScanner struct {
	r      *bufio.Reader
	number int
	done   bool
}

func newLineScanner(r io.Reader) *lineScanner {
	return &lineScanner{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next line, or ok=false at EOF.
func (s *lineScanner) Next() (ScannedLine, bool, error) {
	if s.done {
		return ScannedLine{}, false, nil
	}

	var content []byte
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			s.done = true
			if err == io.EOF {
				if len(content) == 0 {
					return ScannedLine{}, false, nil
				}
				s.number++
				return ScannedLine{Number: s.number, Content: content, LineEnding: types.LineEndingNone}, true, nil
			}
			return ScannedLine{}, false, err
		}

		switch b {
		case '\n':
			s.number++
			return ScannedLine{Number: s.number, Content: content, LineEnding: types.LineEndingLF}, true, nil
		case '\r':
			next, err := s.r.Peek(1)
			if err == nil && len(next) == 1 && next[0] == '\n' {
				s.r.ReadByte() // consume the \n
				s.number++
				return ScannedLine{Number: s.number, Content: content, LineEnding: types.LineEndingCRLF}, true, nil
			}
			s.number++
			return ScannedLine{Number: s.number, Content: content, LineEnding: types.LineEndingCR}, true, nil
		default:
			content = append(content, b)
		}
	}
}

// newlineIndex builds a prefix-sum table mapping byte offsets to 1-based
// line numbers for byte-mode matching (spec §4.3). lineOf(offset) returns
// the 1-based line number containing that byte offset.
type newlineIndex struct {
	offsets []int // byte offset of each '\n' in the buffer, ascending
}

func buildNewlineIndex(buf []byte) *newlineIndex {
	idx := &newlineIndex{}
	for i, b := range buf {
		if b == '\n' {
			idx.offsets = append(idx.offsets, i)
		}
	}
	return idx
}

// lineOf returns the 1-based line number containing byte offset pos.
func (idx *newlineIndex) lineOf(pos int) int {
	// Binary search for the first newline offset >= pos; the number of
	// newlines strictly before pos is the 0-based line index.
	lo, hi := 0, len(idx.offsets)
	for lo < hi {
		mid := (lo + hi) / 2
		if idx.offsets[mid] < pos {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo + 1
}
