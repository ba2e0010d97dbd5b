// Package coverage parses free-text block ranges and derives coverage metrics
// for a condominium from them.
package coverage

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"
)

// MaxBlockCount is the largest block count a condominium may declare. It
// matches the INTEGER columns that persist counts.
const MaxBlockCount = math.MaxInt32

// Span is an inclusive run of blocks.
type Span struct {
	Start int
	End   int
}

// BlockSet is a set of block numbers kept as sorted, disjoint, non-adjacent
// spans. Its size never depends on how many blocks it covers.
type BlockSet struct {
	spans []Span
}

// Len returns the number of blocks in the set.
func (s BlockSet) Len() int {
	n := 0
	for _, sp := range s.spans {
		n += sp.End - sp.Start + 1
	}
	return n
}

// Contains reports whether block is in the set.
func (s BlockSet) Contains(block int) bool {
	i, _ := slices.BinarySearchFunc(s.spans, block, func(sp Span, b int) int {
		if sp.End < b {
			return -1
		}
		if sp.Start > b {
			return 1
		}
		return 0
	})
	return i < len(s.spans) && s.spans[i].Start <= block && block <= s.spans[i].End
}

// Add inserts [start, end]. Reversed bounds are ignored.
func (s *BlockSet) Add(start, end int) {
	if start > end {
		return
	}
	s.spans = normalize(append(slices.Clip(s.spans), Span{Start: start, End: end}))
}

// Union returns the blocks present in s or other.
func (s BlockSet) Union(other BlockSet) BlockSet {
	merged := make([]Span, 0, len(s.spans)+len(other.spans))
	merged = append(merged, s.spans...)
	merged = append(merged, other.spans...)
	return BlockSet{spans: normalize(merged)}
}

// Spans returns a copy of the normalized spans.
func (s BlockSet) Spans() []Span {
	return slices.Clone(s.spans)
}

// Sorted expands the set into ascending block numbers. Intended for small
// sets; callers counting coverage use Len.
func (s BlockSet) Sorted() []int {
	out := make([]int, 0, s.Len())
	for _, sp := range s.spans {
		for block := sp.Start; block <= sp.End; block++ {
			out = append(out, block)
		}
	}
	return out
}

// normalize sorts spans and merges overlapping or touching runs in place.
func normalize(spans []Span) []Span {
	if len(spans) < 2 {
		return spans
	}
	slices.SortFunc(spans, func(a, b Span) int {
		return cmp.Compare(a.Start, b.Start)
	})
	out := spans[:1]
	for _, next := range spans[1:] {
		last := &out[len(out)-1]
		if next.Start-1 <= last.End {
			last.End = max(last.End, next.End)
			continue
		}
		out = append(out, next)
	}
	return out
}

func isSeparator(r rune) bool {
	return r == ',' || r == ';'
}

// ParseBlockRange turns text such as "1-5, 8; 10-12" into the set of blocks it
// names, clipped to [1, blockCount]. Malformed tokens contribute nothing: a
// non-numeric token, a reversed range or an out-of-range number is dropped
// without failing the rest of the text. Cost follows the length of text, not
// blockCount.
func ParseBlockRange(text string, blockCount int) BlockSet {
	if blockCount <= 0 || strings.TrimSpace(text) == "" {
		return BlockSet{}
	}

	var spans []Span
	for _, token := range strings.FieldsFunc(text, isSeparator) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if startText, endText, isRange := strings.Cut(token, "-"); isRange {
			start, errStart := strconv.Atoi(strings.TrimSpace(startText))
			end, errEnd := strconv.Atoi(strings.TrimSpace(endText))
			if errStart != nil || errEnd != nil || start > end {
				continue
			}
			spans = appendClipped(spans, start, end, blockCount)
			continue
		}

		block, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		spans = appendClipped(spans, block, block, blockCount)
	}
	return BlockSet{spans: normalize(spans)}
}

// appendClipped appends [start, end] ∩ [1, blockCount] when non-empty.
func appendClipped(spans []Span, start, end, blockCount int) []Span {
	start = max(start, 1)
	end = min(end, blockCount)
	if start > end {
		return spans
	}
	return append(spans, Span{Start: start, End: end})
}
