package listing

import (
	"strings"

	"github.com/me/pricedesk/pkg/model"
)

// FilterState is a single equality criterion on one item field.
// An empty Value matches everything.
type FilterState struct {
	Field string
	Value string
}

// Active reports whether the filter narrows the collection.
func (f FilterState) Active() bool {
	return f.Field != "" && strings.TrimSpace(f.Value) != ""
}

// Match reports whether item satisfies the filter. Values are compared as
// text, trimmed and case-insensitively.
func (f FilterState) Match(item model.PricingItem) bool {
	if !f.Active() {
		return true
	}
	got := strings.TrimSpace(item.String(f.Field))
	if f.Field == "id" {
		got = item.ID
	}
	return strings.EqualFold(got, strings.TrimSpace(f.Value))
}

// Filter returns the items matching f, preserving order. The input slice is
// never modified.
func Filter(items []model.PricingItem, f FilterState) []model.PricingItem {
	if !f.Active() {
		return items
	}
	out := make([]model.PricingItem, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}
