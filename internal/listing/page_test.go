package listing

import (
	"testing"

	"github.com/me/pricedesk/pkg/model"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{23, 10, 3},
		{30, 10, 3},
		{31, 10, 4},
		{5, 0, 1},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.n, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}

func TestWindow_StaysInBounds(t *testing.T) {
	for l := 0; l <= 35; l++ {
		items := make([]int, l)
		for i := range items {
			items[i] = i
		}
		total := TotalPages(l, 10)
		seen := 0
		for page := 0; page <= total+1; page++ {
			w := Window(items, page, 10)
			for _, v := range w {
				if v < 0 || v >= l {
					t.Fatalf("L=%d page=%d: item %d out of range", l, page, v)
				}
			}
			if page >= 1 && page <= total {
				seen += len(w)
				if len(w) > 0 && w[0] != (page-1)*10 {
					t.Errorf("L=%d page=%d starts at %d", l, page, w[0])
				}
			} else if len(w) != 0 {
				t.Errorf("L=%d page=%d: out-of-range page returned %d items", l, page, len(w))
			}
		}
		if seen != l {
			t.Errorf("L=%d: pages cover %d items", l, seen)
		}
	}
}

func TestWindow_DoesNotAlias(t *testing.T) {
	items := []int{1, 2, 3, 4}
	w := Window(items, 1, 2)
	w = append(w, 99)
	if items[2] != 3 {
		t.Errorf("append through window overwrote source: %v", items)
	}
}

func TestPageState(t *testing.T) {
	p := PageState{Page: 7, PageSize: 10, Computed: 3}
	p = p.Clamp()
	if p.Page != 3 || p.HasNext() || !p.HasPrev() {
		t.Errorf("clamped = %+v", p)
	}

	p = PageState{Page: 0, PageSize: 10}
	if p.TotalPages() != 1 || p.Clamp().Page != 1 {
		t.Errorf("zero state = %+v total %d", p.Clamp(), p.TotalPages())
	}

	p = PageState{Page: 2, PageSize: 10, Computed: 1, ServerTotal: 4}
	if p.TotalPages() != 4 || !p.HasNext() {
		t.Errorf("server total should win: %+v", p)
	}
}

func TestFilter(t *testing.T) {
	items := []model.PricingItem{
		model.ItemFromMap(map[string]any{"id": "a", "network": "MTN"}),
		model.ItemFromMap(map[string]any{"id": "b", "network": "glo"}),
		model.ItemFromMap(map[string]any{"id": "c", "network": " mtn "}),
		model.ItemFromMap(map[string]any{"id": "d"}),
	}

	got := Filter(items, FilterState{Field: "network", Value: "mtn"})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("filtered = %v", ids(got))
	}
	for _, it := range got {
		found := false
		for _, src := range items {
			if src.ID == it.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("filtered item %s not in source", it.ID)
		}
	}

	if got := Filter(items, FilterState{Field: "network"}); len(got) != 4 {
		t.Errorf("empty value should be identity, got %d", len(got))
	}
	if got := Filter(items, FilterState{Value: "mtn"}); len(got) != 4 {
		t.Errorf("no field should be identity, got %d", len(got))
	}
	if got := Filter(items, FilterState{Field: "id", Value: "B"}); len(got) != 1 {
		t.Errorf("id filter = %v", ids(got))
	}
	if got := Filter(items, FilterState{Field: "network", Value: "airtel"}); len(got) != 0 {
		t.Errorf("no match should be empty, got %v", ids(got))
	}
}
