// Package ranges merges offset ranges of highlighted text.
package ranges

import (
	"cmp"
	"slices"
)

// Range is an interval of text offsets with Start <= End.
type Range struct {
	Start int
	End   int
}

// Merge returns the sorted, disjoint ranges covering rs. A range is folded into the
// running one when its start lies within it or exactly on its end. rs is not modified.
func Merge(rs []Range) []Range {
	if len(rs) == 0 {
		return nil
	}

	sorted := slices.Clone(rs)
	slices.SortFunc(sorted, func(a, b Range) int {
		if a.Start != b.Start {
			return cmp.Compare(a.Start, b.Start)
		}
		return cmp.Compare(a.End, b.End)
	})

	merged := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start >= last.Start && r.Start <= last.End {
			last.End = max(last.End, r.End)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
