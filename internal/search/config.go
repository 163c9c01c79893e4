// Package search implements the Searcher component (spec §4.3): for each
// file it produces SearchResults in line-mode or multiline byte-mode, via
// a worker pool that drains paths from the Walker.
package search

import (
	"github.com/bethropolis/scatter/internal/pattern"
)

// Config is the frozen SearchConfig bundle consumed by the Searcher
// (spec §3).
type Config struct {
	Pattern            *pattern.Pattern
	Replacement        pattern.Template
	IncludeGlobs       []string
	ExcludeGlobs       []string
	IncludeHidden      bool
	Multiline          bool
	InterpretEscapes   bool
	MaxFileSizeBytes   int64 // multiline in-memory cap, spec §9
	Workers            int   // worker pool size; <=0 means runtime.NumCPU()
}

const DefaultMaxFileSize = 100 * 1024 * 1024
