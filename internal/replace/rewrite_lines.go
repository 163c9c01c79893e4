package replace

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/bethropolis/scatter/internal/types"
)

// rewriteLines implements spec §4.5 step 4 (line-mode rewrite): stream
// lines with their terminators, substituting replacement text only for
// lines whose stored content still matches the file's actual bytes.
func rewriteLines(path string, items []*types.SearchResultWithReplacement) {
	byLine := make(map[int]*types.SearchResultWithReplacement, len(items))
	for _, it := range items {
		if it.ReplaceResult.Kind == types.ReplaceNone {
			byLine[it.Result.Content.LineNumber] = it
		}
	}

	err := withTempRewrite(path, func(src *bufio.Reader, dst *bufio.Writer) error {
		scanner := newRewriteLineScanner(src)
		for {
			line, le, ok, err := scanner.next()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}

			it, pending := byLine[line.n]
			if !pending {
				if _, err := dst.Write(line.content); err != nil {
					return err
				}
				if _, err := dst.Write(le.Bytes()); err != nil {
					return err
				}
				continue
			}

			if string(line.content) != it.Result.Content.Content {
				it.ReplaceResult = types.Error(types.ErrorKindFileChanged, "")
				if _, err := dst.Write(line.content); err != nil {
					return err
				}
				if _, err := dst.Write(le.Bytes()); err != nil {
					return err
				}
				continue
			}

			if _, err := dst.Write(it.Replacement); err != nil {
				return err
			}
			if _, err := dst.Write(le.Bytes()); err != nil {
				return err
			}
			it.ReplaceResult = types.Success()
		}
	})

	if err != nil {
		for _, it := range items {
			if it.ReplaceResult.Kind == types.ReplaceNone {
				it.ReplaceResult = types.Error(types.ErrorKindIO, fmt.Sprintf("%v", err))
			}
		}
	}
}

// numberedLine is one line's content (terminator stripped) with its
// 1-based line number.
type numberedLine struct {
	n       int
	content []byte
}

// rewriteLineScanner re-reads a file being rewritten, classifying
// terminators the same way the Searcher's line scanner does; kept local
// to avoid an import cycle between search and replace.
type rewriteLineScanner struct {
	r      *bufio.Reader
	number int
}

func newRewriteLineScanner(r *bufio.Reader) *rewriteLineScanner {
	return &rewriteLineScanner{r: r}
}

func (s *rewriteLineScanner) next() (numberedLine, types.LineEnding, bool, error) {
	var content []byte
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(content) == 0 {
					return numberedLine{}, types.LineEndingNone, false, nil
				}
				s.number++
				return numberedLine{n: s.number, content: content}, types.LineEndingNone, true, nil
			}
			return numberedLine{}, types.LineEndingNone, false, err
		}
		switch b {
		case '\n':
			s.number++
			return numberedLine{n: s.number, content: content}, types.LineEndingLF, true, nil
		case '\r':
			next, err := s.r.Peek(1)
			if err == nil && len(next) == 1 && next[0] == '\n' {
				s.r.ReadByte()
				s.number++
				return numberedLine{n: s.number, content: content}, types.LineEndingCRLF, true, nil
			}
			s.number++
			return numberedLine{n: s.number, content: content}, types.LineEndingCR, true, nil
		default:
			content = append(content, b)
		}
	}
}
