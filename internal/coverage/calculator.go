package coverage

import "github.com/usf-territorio/territorio-backend/pkg/enums"

// Result holds the derived coverage fields of a condominium.
type Result struct {
	Covered   int
	Uncovered int
	Percent   int
	Status    enums.CoverageStatus
}

// Compute derives coverage from a parsed set. The percentage is rounded half
// away from zero in integer arithmetic, so 1 of 8 blocks yields 13.
func Compute(set BlockSet, blockCount int) Result {
	if blockCount <= 0 {
		return Result{Status: enums.CoverageStatusUncovered}
	}

	covered := min(set.Len(), blockCount)
	percent := roundPercent(covered, blockCount)
	return Result{
		Covered:   covered,
		Uncovered: blockCount - covered,
		Percent:   percent,
		Status:    enums.CoverageStatusForPercent(percent),
	}
}

// ForAssignments unions every range and computes coverage. An empty list is
// always uncovered, whatever stale range text the caller still holds.
func ForAssignments(ranges []string, blockCount int) Result {
	if len(ranges) == 0 {
		return Compute(BlockSet{}, blockCount)
	}
	var union BlockSet
	for _, text := range ranges {
		union = union.Union(ParseBlockRange(text, blockCount))
	}
	return Compute(union, blockCount)
}

// roundPercent computes round(covered*100/total) with halves rounded up.
// Both operands are non-negative so "up" and "away from zero" coincide.
func roundPercent(covered, total int) int {
	return (covered*200 + total) / (2 * total)
}
