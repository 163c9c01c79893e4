package engine

import (
	"bytes"
	"sort"

	"github.com/bethropolis/scatter/internal/types"
)

// applyStdinTransform produces the transformed bytes described in spec §6
// ("For stdin input, the transformed bytes are written to standard
// output"). There is no file to open a sibling temp file against, so the
// Replacer's streaming-rewrite+rename path (internal/replace) does not
// apply here; this walks the same line/byte semantics directly over the
// buffer captured at search time and mutates each item's ReplaceResult
// the same way the Replacer would.
func applyStdinTransform(original []byte, items []*types.SearchResultWithReplacement, multiline bool) []byte {
	if multiline {
		return applyStdinByteTransform(original, items)
	}
	return applyStdinLineTransform(original, items)
}

func applyStdinLineTransform(original []byte, items []*types.SearchResultWithReplacement) []byte {
	byLine := make(map[int]*types.SearchResultWithReplacement, len(items))
	for _, it := range items {
		if !it.Result.Included {
			it.ReplaceResult = types.Ignored()
			continue
		}
		byLine[it.Result.Content.LineNumber] = it
	}

	var out bytes.Buffer
	lineNo := 0
	i := 0
	for i < len(original) {
		start := i
		for i < len(original) && original[i] != '\n' && original[i] != '\r' {
			i++
		}
		content := original[start:i]

		var le types.LineEnding
		switch {
		case i >= len(original):
			le = types.LineEndingNone
		case original[i] == '\n':
			le = types.LineEndingLF
			i++
		case original[i] == '\r' && i+1 < len(original) && original[i+1] == '\n':
			le = types.LineEndingCRLF
			i += 2
		default:
			le = types.LineEndingCR
			i++
		}
		lineNo++

		if it, ok := byLine[lineNo]; ok {
			if string(content) != it.Result.Content.Content {
				it.ReplaceResult = types.Error(types.ErrorKindFileChanged, "")
				out.Write(content)
			} else {
				out.Write(it.Replacement)
				it.ReplaceResult = types.Success()
			}
		} else {
			out.Write(content)
		}
		out.Write(le.Bytes())
	}

	promoteStdinNotProcessed(items)
	return out.Bytes()
}

func applyStdinByteTransform(original []byte, items []*types.SearchResultWithReplacement) []byte {
	ordered := make([]*types.SearchResultWithReplacement, 0, len(items))
	for _, it := range items {
		if !it.Result.Included {
			it.ReplaceResult = types.Ignored()
			continue
		}
		ordered = append(ordered, it)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Result.Content.ByteStart < ordered[j].Result.Content.ByteStart
	})

	var out bytes.Buffer
	var pos int64
	for _, it := range ordered {
		c := it.Result.Content
		if c.ByteStart < pos {
			it.ReplaceResult = types.Error(types.ErrorKindConflict, "overlapping byte range")
			continue
		}
		out.Write(original[pos:c.ByteStart])
		actual := original[c.ByteStart:c.ByteEnd]
		pos = c.ByteEnd
		if string(actual) != string(c.ExpectedContent) {
			it.ReplaceResult = types.Error(types.ErrorKindFileChanged, "")
			out.Write(actual)
			continue
		}
		out.Write(it.Replacement)
		it.ReplaceResult = types.Success()
	}
	out.Write(original[pos:])

	promoteStdinNotProcessed(items)
	return out.Bytes()
}

func promoteStdinNotProcessed(items []*types.SearchResultWithReplacement) {
	for _, it := range items {
		if it.ReplaceResult.Kind == types.ReplaceNone {
			it.ReplaceResult = types.Error(types.ErrorKindNotProcessed, "")
		}
	}
}
