// Package pattern implements the SearchPattern and ReplacementTemplate
// tagged sums from spec §3: literal/fixed-strings, fast regex, and fancy
// regex, plus replacement-template expansion with capture references and
// optional escape-sequence interpretation.
package pattern

import (
	"fmt"
	"regexp"
	"strings"

	fast "github.com/grafana/regexp"
	fancy "github.com/dlclark/regexp2"
)

// Kind discriminates the SearchPattern variants.
type Kind int

const (
	KindFixedStrings Kind = iota
	KindFastRegex
	KindFancyRegex
)

// Options configures how a pattern string is compiled.
type Options struct {
	FixedStrings     bool // literal byte-string match
	MatchWholeWord   bool // anchor literal to word boundaries
	CaseInsensitive  bool
	AdvancedRegex    bool // lookaround/backreferences -> fancy engine
	Multiline        bool // embedded newlines allowed in fixed-strings patterns
}

// Pattern is a compiled SearchPattern (spec §3 tagged sum).
type Pattern struct {
	Kind  Kind
	Raw   string
	fast  *fast.Regexp
	fancy *fancy.Regexp
}

// Compile builds a Pattern from a raw search string and Options.
//
// A whole-word literal is lowered to a regex with word-boundary anchors
// (spec §3). A fixed-strings pattern containing embedded newlines is
// rejected unless Multiline is enabled.
func Compile(raw string, opts Options) (*Pattern, error) {
	if opts.FixedStrings && strings.Contains(raw, "\n") && !opts.Multiline {
		return nil, fmt.Errorf("fixed-strings pattern contains newline but multiline mode is disabled")
	}
	if opts.FixedStrings && !opts.MatchWholeWord {
		if opts.AdvancedRegex {
			// Fixed strings never need the fancy engine; fall through to literal path.
		}
		p := &Pattern{Kind: KindFixedStrings, Raw: raw}
		quoted := regexp.QuoteMeta(raw)
		if opts.CaseInsensitive {
			quoted = "(?i)" + quoted
		}
		re, err := fast.Compile(quoted)
		if err != nil {
			return nil, fmt.Errorf("Failed to parse search text: %w", err)
		}
		p.fast = re
		return p, nil
	}

	exprRaw := raw
	if opts.FixedStrings {
		exprRaw = regexp.QuoteMeta(raw)
	}
	if opts.MatchWholeWord {
		exprRaw = `\b(?:` + exprRaw + `)\b`
	}

	if opts.AdvancedRegex {
		expr := exprRaw
		fancyOpts := fancy.None
		if opts.CaseInsensitive {
			fancyOpts |= fancy.IgnoreCase
		}
		if opts.Multiline {
			fancyOpts |= fancy.Multiline | fancy.Singleline
		}
		re, err := fancy.Compile(expr, fancyOpts)
		if err != nil {
			return nil, fmt.Errorf("Failed to parse search text: %w", err)
		}
		return &Pattern{Kind: KindFancyRegex, Raw: raw, fancy: re}, nil
	}

	expr := exprRaw
	if opts.CaseInsensitive {
		expr = "(?i)" + expr
	}
	if opts.Multiline {
		expr = "(?s)" + expr
	}
	re, err := fast.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("Failed to parse search text: %w", err)
	}
	return &Pattern{Kind: KindFastRegex, Raw: raw, fast: re}, nil
}

// FindIndex returns the leftmost match's [start, end) byte offsets in b,
// or nil if there is no match.
func (p *Pattern) FindIndex(b []byte) []int {
	switch p.Kind {
	case KindFancyRegex:
		all := fancyFindAllIndex(p.fancy, b, 1)
		if len(all) == 0 {
			return nil
		}
		return all[0]
	default:
		return p.re().FindIndex(b)
	}
}

// FindAllIndex returns non-overlapping match [start, end) byte offsets,
// matching stdlib regexp.FindAllIndex semantics (n < 0 means "all").
func (p *Pattern) FindAllIndex(b []byte, n int) [][]int {
	switch p.Kind {
	case KindFancyRegex:
		return fancyFindAllIndex(p.fancy, b, n)
	default:
		return p.re().FindAllIndex(b, n)
	}
}

// MatchString reports whether the pattern matches anywhere in s.
func (p *Pattern) MatchString(s string) bool {
	switch p.Kind {
	case KindFancyRegex:
		ok, _ := p.fancy.MatchString(s)
		return ok
	default:
		return p.re().MatchString(s)
	}
}

func (p *Pattern) re() *fast.Regexp {
	if p.fast != nil {
		return p.fast
	}
	return nil
}

// fancyFindAllIndex adapts dlclark/regexp2's iterator-based FindNextMatch
// (which reports rune offsets) into the stdlib-shaped FindAllIndex (which
// reports byte offsets), matching stdlib regexp.FindAllIndex semantics.
func fancyFindAllIndex(re *fancy.Regexp, b []byte, n int) [][]int {
	s := string(b)
	runes := []rune(s)
	// byteOffsetOf[i] is the byte offset of rune i; byteOffsetOf[len(runes)]
	// is len(s).
	byteOffsetOf := make([]int, len(runes)+1)
	off := 0
	for i, r := range runes {
		byteOffsetOf[i] = off
		off += len(string(r))
	}
	byteOffsetOf[len(runes)] = len(s)

	var out [][]int
	m, err := re.FindStringMatch(s)
	for err == nil && m != nil {
		if n >= 0 && len(out) >= n {
			break
		}
		start := byteOffsetOf[clampRuneIndex(m.Index, len(runes))]
		end := byteOffsetOf[clampRuneIndex(m.Index+m.Length, len(runes))]
		out = append(out, []int{start, end})
		m, err = re.FindNextMatch(m)
	}
	return out
}

func clampRuneIndex(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}
