package coverage

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/usf-territorio/territorio-backend/pkg/enums"
)

func blocks(values ...int) BlockSet {
	var set BlockSet
	for _, v := range values {
		set.Add(v, v)
	}
	return set
}

func rangeOf(n int) BlockSet {
	var set BlockSet
	set.Add(1, n)
	return set
}

func TestComputeBoundaries(t *testing.T) {
	assert.Equal(t, Result{Covered: 0, Uncovered: 10, Percent: 0, Status: enums.CoverageStatusUncovered}, Compute(BlockSet{}, 10))
	assert.Equal(t, Result{Covered: 10, Uncovered: 0, Percent: 100, Status: enums.CoverageStatusComplete}, Compute(rangeOf(10), 10))
	assert.Equal(t, Result{Covered: 3, Uncovered: 7, Percent: 30, Status: enums.CoverageStatusPartial}, Compute(blocks(1, 2, 3), 10))
}

func TestComputeRoundsHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		covered, total, percent int
		status                  enums.CoverageStatus
	}{
		{covered: 1, total: 2, percent: 50, status: enums.CoverageStatusPartial},
		{covered: 1, total: 8, percent: 13, status: enums.CoverageStatusPartial},
		{covered: 3, total: 8, percent: 38, status: enums.CoverageStatusPartial},
		{covered: 5, total: 8, percent: 63, status: enums.CoverageStatusPartial},
		{covered: 1, total: 3, percent: 33, status: enums.CoverageStatusPartial},
		{covered: 2, total: 3, percent: 67, status: enums.CoverageStatusPartial},
		{covered: 1, total: 200, percent: 1, status: enums.CoverageStatusPartial},
		{covered: 1, total: 201, percent: 0, status: enums.CoverageStatusUncovered},
		{covered: 199, total: 200, percent: 100, status: enums.CoverageStatusComplete},
		{covered: 200, total: 201, percent: 100, status: enums.CoverageStatusComplete},
	}
	for _, tc := range cases {
		got := Compute(rangeOf(tc.covered), tc.total)
		assert.Equal(t, tc.percent, got.Percent, "%d/%d", tc.covered, tc.total)
		assert.Equal(t, tc.status, got.Status, "%d/%d", tc.covered, tc.total)
		assert.Equal(t, tc.total-tc.covered, got.Uncovered)
	}
}

func TestComputeClampsOversizedSet(t *testing.T) {
	got := Compute(rangeOf(12), 10)
	assert.Equal(t, 10, got.Covered)
	assert.Equal(t, 0, got.Uncovered)
	assert.Equal(t, enums.CoverageStatusComplete, got.Status)
}

func TestComputeNonPositiveBlockCount(t *testing.T) {
	want := Result{Status: enums.CoverageStatusUncovered}
	assert.Equal(t, want, Compute(blocks(1, 2), 0))
	assert.Equal(t, want, Compute(blocks(1, 2), -4))
}

func TestForAssignments(t *testing.T) {
	got := ForAssignments([]string{"1-5", "6-10"}, 10)
	assert.Equal(t, Result{Covered: 10, Uncovered: 0, Percent: 100, Status: enums.CoverageStatusComplete}, got)

	got = ForAssignments([]string{"1-5", "3-7"}, 10)
	assert.Equal(t, 7, got.Covered)
	assert.Equal(t, 70, got.Percent)

	got = ForAssignments([]string{"", "garbage"}, 10)
	assert.Equal(t, enums.CoverageStatusUncovered, got.Status)
}

func TestForAssignmentsLargeBlockCount(t *testing.T) {
	got := ForAssignments([]string{"1-1000000000", "1000000001-" + strconv.Itoa(MaxBlockCount)}, MaxBlockCount)
	assert.Equal(t, Result{Covered: MaxBlockCount, Uncovered: 0, Percent: 100, Status: enums.CoverageStatusComplete}, got)

	got = ForAssignments([]string{"1-1000000000"}, 2000000000)
	assert.Equal(t, 1000000000, got.Covered)
	assert.Equal(t, 50, got.Percent)
}

func TestForAssignmentsWithoutAssignmentsIsUncovered(t *testing.T) {
	got := ForAssignments(nil, 10)
	assert.Equal(t, Result{Covered: 0, Uncovered: 10, Percent: 0, Status: enums.CoverageStatusUncovered}, got)
}
