package ranges

import (
	"math/rand"
	"slices"
	"testing"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		in   []Range
		want []Range
	}{
		{name: "empty", in: nil, want: nil},
		{name: "single", in: []Range{{1, 3}}, want: []Range{{1, 3}}},
		{name: "touching", in: []Range{{5, 10}, {10, 15}, {20, 25}}, want: []Range{{5, 15}, {20, 25}}},
		{name: "nested", in: []Range{{2, 4}, {0, 10}, {3, 3}}, want: []Range{{0, 10}}},
		{name: "unsorted overlap", in: []Range{{8, 12}, {1, 2}, {6, 9}}, want: []Range{{1, 2}, {6, 12}}},
		{name: "gap of one", in: []Range{{0, 1}, {2, 3}}, want: []Range{{0, 1}, {2, 3}}},
		{name: "empty ranges", in: []Range{{4, 4}, {4, 4}}, want: []Range{{4, 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.in)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Merge(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMergeDoesNotModifyInput(t *testing.T) {
	in := []Range{{10, 12}, {0, 5}}
	Merge(in)
	if !slices.Equal(in, []Range{{10, 12}, {0, 5}}) {
		t.Errorf("input was modified: %v", in)
	}
}

func TestMergeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		n := rng.Intn(8)
		in := make([]Range, n)
		for j := range in {
			start := rng.Intn(40)
			in[j] = Range{Start: start, End: start + rng.Intn(6)}
		}

		got := Merge(in)
		for j := 1; j < len(got); j++ {
			if got[j].Start <= got[j-1].End {
				t.Fatalf("Merge(%v) = %v: ranges %d and %d overlap or touch", in, got, j-1, j)
			}
		}
		if !slices.Equal(Merge(got), got) {
			t.Fatalf("Merge is not idempotent for %v", in)
		}
		if !slices.Equal(points(got), points(in)) {
			t.Fatalf("Merge(%v) = %v changes the covered points", in, got)
		}
	}
}

func points(rs []Range) []int {
	seen := map[int]bool{}
	for _, r := range rs {
		for p := r.Start; p <= r.End; p++ {
			seen[p] = true
		}
	}
	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
