package search

import (
	"bytes"
	"io"
	"os"
	"runtime"
	"sync"
	"unicode/utf8"

	"github.com/bethropolis/scatter/internal/binarydetect"
	"github.com/bethropolis/scatter/internal/logger"
	"github.com/bethropolis/scatter/internal/types"
)

// FileResult carries every SearchResult found in one file, kept together
// so the single consumer appends them to the MatchStore as one atomic
// per-file batch (spec §4.3 ordering guarantee).
type FileResult struct {
	Path    string
	HasPath bool
	Results []types.SearchResult
	Err     error // non-nil for a surfaced, non-fatal search error
}

// Run drains file paths from paths, searches each with up to cfg.Workers
// concurrent goroutines, and sends one FileResult per file on the
// returned channel. The channel closes once paths is drained (or
// cancelled returns true).
func Run(paths <-chan string, cfg Config, cancelled func() bool) <-chan FileResult {
	if cancelled == nil {
		cancelled = func() bool { return false }
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
	}

	out := make(chan FileResult, workers*2)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for path := range paths {
				if cancelled() {
					continue
				}
				results, err := SearchFile(path, cfg, cancelled)
				out <- FileResult{Path: path, HasPath: true, Results: results, Err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// SearchFile classifies and searches one file, returning its
// SearchResults in Searcher-emission order (spec §4.3).
func SearchFile(path string, cfg Config, cancelled func() bool) ([]types.SearchResult, error) {
	binary, err := binarydetect.ClassifyFile(path)
	if err != nil {
		logger.DebugTagf("search", "classify failed for %s: %v", path, err)
		return nil, err
	}
	if binary {
		logger.DebugTagf("search", "skipping binary file %s", path)
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if cfg.Multiline {
		return searchByteMode(f, path, true, cfg)
	}
	return searchLineMode(f, path, true, cfg, cancelled)
}

// SearchReader runs the Searcher against an arbitrary stream (used for
// standard input, spec §4.3/§6). path/hasPath are threaded onto each
// result (hasPath is false for stdin, per spec SearchResult.path=None).
func SearchReader(r io.Reader, path string, hasPath bool, cfg Config, cancelled func() bool) ([]types.SearchResult, error) {
	if cfg.Multiline {
		return searchByteMode(r, path, hasPath, cfg)
	}
	return searchLineMode(r, path, hasPath, cfg, cancelled)
}

// searchLineMode implements spec §4.3 line-mode: one SearchResult per
// matching line, replace-all-on-line semantics, invalid-UTF-8 lines
// skipped non-fatally.
func searchLineMode(r io.Reader, path string, hasPath bool, cfg Config, cancelled func() bool) ([]types.SearchResult, error) {
	scanner := newLineScanner(r)
	var results []types.SearchResult

	for {
		if cancelled != nil && cancelled() {
			break
		}
		line, ok, err := scanner.Next()
		if err != nil {
			return results, err
		}
		if !ok {
			break
		}
		if !utf8.Valid(line.Content) {
			continue
		}
		if cfg.Pattern.FindIndex(line.Content) == nil {
			continue
		}
		results = append(results, types.SearchResult{
			Path:    path,
			HasPath: hasPath,
			Included: true,
			Content: types.MatchContent{
				Kind:       types.MatchContentLines,
				LineNumber: line.Number,
				Content:    string(line.Content),
				LineEnding: line.LineEnding,
			},
		})
	}
	return results, nil
}

// searchByteMode implements spec §4.3 byte-mode: the whole file/stream is
// read into memory (subject to cfg.MaxFileSizeBytes) and matched as one
// buffer; matches may span line boundaries.
func searchByteMode(r io.Reader, path string, hasPath bool, cfg Config) ([]types.SearchResult, error) {
	maxSize := cfg.MaxFileSizeBytes
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	buf, err := readWithCap(r, maxSize)
	if err != nil {
		return nil, err
	}

	idx := buildNewlineIndex(buf)
	matches := cfg.Pattern.FindAllIndex(buf, -1)
	results := make([]types.SearchResult, 0, len(matches))
	for _, m := range matches {
		start, end := m[0], m[1]
		expected := make([]byte, end-start)
		copy(expected, buf[start:end])
		results = append(results, types.SearchResult{
			Path:     path,
			HasPath:  hasPath,
			Included: true,
			Content: types.MatchContent{
				Kind:            types.MatchContentByteRange,
				StartLine:       idx.lineOf(start),
				EndLine:         idx.lineOf(maxInt(end-1, start)),
				ByteStart:       int64(start),
				ByteEnd:         int64(end),
				ExpectedContent: expected,
			},
		})
	}
	return results, nil
}

// readWithCap reads at most maxSize+1 bytes; if the stream exceeds
// maxSize, it reports a capacity error so the caller can surface a
// non-fatal "skip with warning" per spec §9's Open Question.
func readWithCap(r io.Reader, maxSize int64) ([]byte, error) {
	limited := io.LimitReader(r, maxSize+1)
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, limited); err != nil {
		return nil, err
	}
	if int64(buf.Len()) > maxSize {
		return nil, errFileTooLarge{size: int64(buf.Len()), max: maxSize}
	}
	return buf.Bytes(), nil
}

type errFileTooLarge struct {
	size, max int64
}

func (e errFileTooLarge) Error() string {
	return "file exceeds multiline size cap"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
