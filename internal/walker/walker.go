// Package walker enumerates candidate files under a root directory,
// honoring hierarchical ignore files, include/exclude globs, a hidden-file
// toggle, and symlink-loop protection (spec §4.1).
package walker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/bethropolis/scatter/internal/logger"
)

// Config configures one walk.
type Config struct {
	Root          string
	IncludeGlobs  []string
	ExcludeGlobs  []string
	IncludeHidden bool
}

// ErrorFunc is invoked for a per-entry error (permission, broken link).
// The walk does not terminate on these (spec §4.1 Failure).
type ErrorFunc func(path string, err error)

// Walker enumerates a lazy sequence of regular-file paths.
type Walker struct {
	cfg       Config
	onError   ErrorFunc
	cancelled func() bool

	ignoreStack []ignoreLayer
	seenInodes  map[inodeKey]struct{}
}

// New creates a Walker. onError is invoked for non-fatal per-entry errors;
// cancelled, if non-nil, is polled between directory entries to support
// cooperative cancellation (spec §5).
func New(cfg Config, onError ErrorFunc, cancelled func() bool) *Walker {
	if onError == nil {
		onError = func(string, error) {}
	}
	if cancelled == nil {
		cancelled = func() bool { return false }
	}
	return &Walker{
		cfg:        cfg,
		onError:    onError,
		cancelled:  cancelled,
		seenInodes: make(map[inodeKey]struct{}),
	}
}

type ignoreLayer struct {
	dir     string // absolute directory this layer's rules were loaded from
	matcher gitignore.IgnoreMatcher
}

// Walk enumerates every regular file under cfg.Root, sending each
// absolute path on the returned channel. The channel is closed
// when the walk completes or is cancelled.
func (w *Walker) Walk() <-chan string {
	out := make(chan string, 64)
	go func() {
		defer close(out)
		root, err := filepath.Abs(w.cfg.Root)
		if err != nil {
			w.onError(w.cfg.Root, err)
			return
		}
		w.walkDir(root, out)
	}()
	return out
}

func (w *Walker) walkDir(dir string, out chan<- string) {
	if w.cancelled() {
		return
	}

	layer := w.loadIgnoreLayer(dir)
	if layer != nil {
		w.ignoreStack = append(w.ignoreStack, *layer)
		defer func() { w.ignoreStack = w.ignoreStack[:len(w.ignoreStack)-1] }()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.onError(dir, err)
		return
	}

	for _, entry := range entries {
		if w.cancelled() {
			return
		}

		name := entry.Name()
		full := filepath.Join(dir, name)

		if !w.cfg.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			w.onError(full, err)
			continue
		}

		if info.Mode()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(full)
			if err != nil {
				w.onError(full, err)
				continue
			}
			st, err := os.Stat(resolved)
			if err != nil {
				w.onError(full, err)
				continue
			}
			if st.IsDir() {
				if w.markSeen(resolved) {
					w.walkDir(full, out)
				} else {
					logger.DebugTagf("walk", "breaking symlink loop at %s", full)
				}
				continue
			}
			info = st // dereferenced info; emitted path stays the logical (non-resolved) path
		}

		if info.IsDir() {
			if w.ignored(full, true) {
				continue
			}
			w.walkDir(full, out)
			continue
		}

		if !info.Mode().IsRegular() {
			continue
		}
		if w.ignored(full, false) {
			continue
		}

		rel, err := filepath.Rel(w.cfg.Root, full)
		if err != nil {
			rel = full
		}
		if !w.globMatch(rel) {
			continue
		}

		select {
		case out <- full:
		default:
			// Backpressure: the bounded semantics live on the Searcher side
			// of this channel; here we always block rather than drop.
			out <- full
		}
	}
}

// ignored evaluates the ignore-file stack, innermost (deepest) directory
// first: any layer whose own patterns match the path makes it ignored.
// A directory's own file can re-include a path one of its own earlier
// patterns excluded (gitignore's usual same-file negation), and a
// deeper directory's patterns are layered on top of, and can add to, an
// ancestor's exclusions. Cross-file negation — a child .gitignore
// un-ignoring a path an ancestor's .gitignore excluded outright — is not
// attempted; see DESIGN.md's Open Question decisions.
func (w *Walker) ignored(path string, isDir bool) bool {
	for i := len(w.ignoreStack) - 1; i >= 0; i-- {
		layer := w.ignoreStack[i]
		if layer.matcher.Match(path, isDir) {
			return true
		}
	}
	return false
}

func (w *Walker) loadIgnoreLayer(dir string) *ignoreLayer {
	for _, name := range []string{".gitignore", ".ignore"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		m, err := gitignore.NewGitIgnore(p)
		if err != nil {
			w.onError(p, err)
			continue
		}
		return &ignoreLayer{dir: dir, matcher: m}
	}
	return nil
}

// globMatch applies exclude-then-include glob semantics: exclude-globs
// take precedence over include-globs (spec §4.1). ripgrep-style semantics
// are honored via doublestar ("dir1/**" matches descendants; "dir1" alone
// does not).
func (w *Walker) globMatch(relPath string) bool {
	relPath = filepath.ToSlash(relPath)

	for _, g := range w.cfg.ExcludeGlobs {
		if globMatches(g, relPath) {
			return false
		}
	}
	if len(w.cfg.IncludeGlobs) == 0 {
		return true
	}
	for _, g := range w.cfg.IncludeGlobs {
		if globMatches(g, relPath) {
			return true
		}
	}
	return false
}

func globMatches(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	if err != nil {
		return false
	}
	if ok {
		return true
	}
	// A base filename pattern like "*.go" should also match nested paths,
	// mirroring ripgrep's --glob behavior.
	if !strings.Contains(pattern, "/") {
		ok, _ = doublestar.Match(pattern, filepath.Base(path))
		return ok
	}
	return false
}

type inodeKey struct {
	dev, ino uint64
}

// markSeen records a resolved symlink target and reports whether it was
// newly seen (false means a loop was detected and the caller should not
// descend again).
func (w *Walker) markSeen(resolved string) bool {
	key, ok := inodeKeyOf(resolved)
	if !ok {
		// Platform without inode info (not expected on POSIX/NTFS targets):
		// fall back to path-based dedup, which is weaker but safe.
		key = inodeKey{dev: 0, ino: uint64(len(resolved))}
	}
	if _, seen := w.seenInodes[key]; seen {
		return false
	}
	w.seenInodes[key] = struct{}{}
	return true
}
