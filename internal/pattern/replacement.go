package pattern

import (
	"bytes"
	"strconv"

	fancy "github.com/dlclark/regexp2"
)

// Template is a ReplacementTemplate (spec §3): a byte string that, when the
// pattern is a regex, has capture-group references ($1, $name, $$) expanded
// at application time, and may optionally have escape sequences (\n \r \t
// \\) interpreted before use.
type Template struct {
	Raw              string
	InterpretEscapes bool
}

// interpretEscapes expands \n \r \t \\ into their literal byte values. Any
// other backslash escape is passed through unchanged.
func interpretEscapes(s string) string {
	var out bytes.Buffer
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				out.WriteByte('\n')
				i++
				continue
			case 'r':
				out.WriteByte('\r')
				i++
				continue
			case 't':
				out.WriteByte('\t')
				i++
				continue
			case '\\':
				out.WriteByte('\\')
				i++
				continue
			}
		}
		out.WriteByte(s[i])
	}
	return out.String()
}

// rawTemplate applies escape interpretation (if enabled) and returns the
// template text ready for capture expansion.
func (t Template) rawTemplate() string {
	if t.InterpretEscapes {
		return interpretEscapes(t.Raw)
	}
	return t.Raw
}

// ExpandAllInLine computes the replacement for MatchContent::Lines (spec
// §4.5): the pattern is applied to the whole line content with
// replace-all semantics.
func (t Template) ExpandAllInLine(p *Pattern, line []byte) []byte {
	template := []byte(t.rawTemplate())

	if p.Kind == KindFixedStrings {
		// A literal pattern has no capture groups, so the template is
		// used verbatim: a literal "$1" in the replace text must stay
		// "$1", not collapse to an empty unmatched-group expansion the
		// way regexp.Expand would treat it.
		var out bytes.Buffer
		pos := 0
		for _, m := range p.fast.FindAllIndex(line, -1) {
			out.Write(line[pos:m[0]])
			out.Write(template)
			pos = m[1]
		}
		out.Write(line[pos:])
		return out.Bytes()
	}
	if p.Kind == KindFastRegex {
		return p.fast.ReplaceAll(line, template)
	}

	// Fancy (regexp2) engine: no ReplaceAll helper, so expand manually
	// over each non-overlapping match.
	var out bytes.Buffer
	pos := 0
	m, err := p.fancy.FindStringMatch(string(line))
	for err == nil && m != nil {
		start, end := matchByteRange(line, m)
		out.Write(line[pos:start])
		out.Write(expandFancyTemplate(m, template))
		pos = end
		m, err = p.fancy.FindNextMatch(m)
	}
	out.Write(line[pos:])
	return out.Bytes()
}

// ExpandFirst computes the replacement for MatchContent::ByteRange (spec
// §4.5): the pattern is applied to exactly expectedContent (which is
// already one match) with replace-first semantics, honoring capture-group
// expansion.
func (t Template) ExpandFirst(p *Pattern, expectedContent []byte) []byte {
	template := []byte(t.rawTemplate())

	if p.Kind == KindFixedStrings {
		return template
	}
	if p.Kind == KindFastRegex {
		loc := p.fast.FindSubmatchIndex(expectedContent)
		if loc == nil {
			return template
		}
		return p.fast.Expand(nil, template, expectedContent, loc)
	}

	m, err := p.fancy.FindStringMatch(string(expectedContent))
	if err != nil || m == nil {
		return template
	}
	return expandFancyTemplate(m, template)
}

func matchByteRange(line []byte, m *fancy.Match) (int, int) {
	s := string(line)
	runes := []rune(s)
	byteOffsetOf := make([]int, len(runes)+1)
	off := 0
	for i, r := range runes {
		byteOffsetOf[i] = off
		off += len(string(r))
	}
	byteOffsetOf[len(runes)] = len(s)
	start := byteOffsetOf[clampRuneIndex(m.Index, len(runes))]
	end := byteOffsetOf[clampRuneIndex(m.Index+m.Length, len(runes))]
	return start, end
}

// expandFancyTemplate substitutes $1 / ${name} / $$ references in template
// against the groups of a regexp2 match.
func expandFancyTemplate(m *fancy.Match, template []byte) []byte {
	var out bytes.Buffer
	for i := 0; i < len(template); i++ {
		if template[i] != '$' || i+1 >= len(template) {
			out.WriteByte(template[i])
			continue
		}
		if template[i+1] == '$' {
			out.WriteByte('$')
			i++
			continue
		}
		if template[i+1] == '{' {
			if end := bytes.IndexByte(template[i+2:], '}'); end >= 0 {
				name := string(template[i+2 : i+2+end])
				out.WriteString(groupText(m, name))
				i += 2 + end
				continue
			}
		}
		j := i + 1
		for j < len(template) && (isDigit(template[j]) || isWordByte(template[j])) {
			j++
		}
		if j > i+1 {
			out.WriteString(groupText(m, string(template[i+1:j])))
			i = j - 1
			continue
		}
		out.WriteByte(template[i])
	}
	return out.Bytes()
}

// groupText resolves a $1 / $name capture reference against a regexp2
// match. Numeric references are resolved by group number; anything else
// by name. An unknown group expands to an empty string, matching stdlib
// regexp's behavior for unmatched optional groups.
func groupText(m *fancy.Match, ref string) string {
	if n, err := strconv.Atoi(ref); err == nil {
		if g := m.GroupByNumber(n); g != nil {
			return g.String()
		}
		return ""
	}
	if g := m.GroupByName(ref); g != nil {
		return g.String()
	}
	return ""
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
