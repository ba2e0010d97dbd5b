package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBlockRange(t *testing.T) {
	cases := []struct {
		name       string
		text       string
		blockCount int
		want       []int
	}{
		{name: "union of range and single", text: "1-3,5", blockCount: 10, want: []int{1, 2, 3, 5}},
		{name: "malformed tokens dropped", text: "abc, 2-1, 4", blockCount: 5, want: []int{4}},
		{name: "semicolons and whitespace", text: " 1 - 2 ; 4 ;; , 6", blockCount: 6, want: []int{1, 2, 4, 6}},
		{name: "range clipped to block count", text: "3-100", blockCount: 5, want: []int{3, 4, 5}},
		{name: "range clipped below one", text: "-2-2, 0-1", blockCount: 5, want: []int{1}},
		{name: "single out of range ignored", text: "0, 11, 10", blockCount: 10, want: []int{10}},
		{name: "overlaps collapse", text: "1-4, 3-6, 4", blockCount: 10, want: []int{1, 2, 3, 4, 5, 6}},
		{name: "degenerate range", text: "7-7", blockCount: 10, want: []int{7}},
		{name: "splits on first dash only", text: "1-2-3, 5", blockCount: 10, want: []int{5}},
		{name: "huge range does not overflow", text: "1-99999999999999999999, 2-999999999", blockCount: 4, want: []int{2, 3, 4}},
		{name: "empty text", text: "", blockCount: 10, want: []int{}},
		{name: "whitespace only", text: "   ", blockCount: 10, want: []int{}},
		{name: "zero block count", text: "1-5", blockCount: 0, want: []int{}},
		{name: "negative block count", text: "1-5", blockCount: -3, want: []int{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseBlockRange(tc.text, tc.blockCount)
			assert.Equal(t, tc.want, got.Sorted())
		})
	}
}

func TestParseBlockRangeIsDeterministic(t *testing.T) {
	inputs := []string{"1-3,5", "abc, 2-1, 4", "10-1", "5;6;7", "x-y", ""}
	for _, text := range inputs {
		for n := -1; n <= 12; n++ {
			first := ParseBlockRange(text, n)
			second := ParseBlockRange(text, n)
			assert.Equal(t, first.Sorted(), second.Sorted(), "text=%q n=%d", text, n)
		}
	}
}

func TestParseBlockRangeNeverLeavesWindow(t *testing.T) {
	inputs := []string{"0-20", "-5-5", "3, 15, -1", "1-1,2-2,99", "8-12; 1"}
	for _, text := range inputs {
		for n := 0; n <= 10; n++ {
			for _, block := range ParseBlockRange(text, n).Sorted() {
				assert.GreaterOrEqual(t, block, 1, "text=%q n=%d", text, n)
				assert.LessOrEqual(t, block, n, "text=%q n=%d", text, n)
			}
		}
	}
}

func TestBlockSetUnion(t *testing.T) {
	var set BlockSet
	set = set.Union(ParseBlockRange("1-2", 5))
	set = set.Union(ParseBlockRange("2-3", 5))
	assert.Equal(t, []int{1, 2, 3}, set.Sorted())
	assert.True(t, set.Contains(3))
	assert.False(t, set.Contains(4))
	assert.Equal(t, 3, set.Len())
}

func TestParseBlockRangeKeepsSpansForLargeWindows(t *testing.T) {
	set := ParseBlockRange("1-1000000000; 999999990-2000000000, 5", 2000000000)
	assert.Equal(t, 2000000000, set.Len())
	assert.Equal(t, []Span{{Start: 1, End: 2000000000}}, set.Spans())

	set = ParseBlockRange("10-20, 1-3, 4, 30-40", MaxBlockCount)
	assert.Equal(t, []Span{{Start: 1, End: 4}, {Start: 10, End: 20}, {Start: 30, End: 40}}, set.Spans())
	assert.Equal(t, 26, set.Len())
	assert.True(t, set.Contains(4))
	assert.True(t, set.Contains(30))
	assert.False(t, set.Contains(25))
	assert.False(t, set.Contains(41))
}

func TestBlockSetAddCopiesShareNothing(t *testing.T) {
	var base BlockSet
	base.Add(5, 6)
	base.Add(1, 2)
	copied := base
	copied.Add(3, 4)

	assert.Equal(t, []int{1, 2, 5, 6}, base.Sorted())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, copied.Sorted())
	base.Add(9, 8)
	assert.Equal(t, 4, base.Len())
}
