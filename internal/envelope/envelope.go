// Package envelope normalizes the inconsistently wrapped collection
// responses of the pricing API into a flat item list.
//
// The backend wraps collections in several shapes depending on the endpoint
// (results.Data, results.data.data, a bare array, ...). Parse walks a fixed,
// ordered list of candidate paths and returns the first array it finds. If
// no candidate holds an array it scans the envelope's own top-level members
// in sorted key order, and if that fails too the collection is empty. The
// result depends only on the document, never on map iteration order.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/me/pricedesk/pkg/model"
)

// Version identifies a set of candidate paths.
type Version int

// Version1 is the only envelope layout set the backend currently produces.
const Version1 Version = 1

// Path is a sequence of object keys leading to a value.
type Path []string

func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	return strings.Join(p, ".")
}

// Source labels returned in Result.Source for the non-path cases.
const (
	SourceRoot = "$"
	SourceScan = "scan"
	SourceNone = "none"
)

// Layout is the ordered candidate list for one envelope version.
type Layout struct {
	Version    Version
	Collection []Path
	TotalPages []Path
	TotalItems []Path
}

// V1 is the Version1 layout.
var V1 = Layout{
	Version: Version1,
	Collection: []Path{
		{"results", "Data"},
		{"results", "data", "data"},
		{"results", "data"},
		{"results"},
		{"data", "data"},
		{"data"},
		{"items"},
	},
	TotalPages: []Path{
		{"results", "last_page"},
		{"results", "data", "last_page"},
		{"results", "total_pages"},
		{"data", "last_page"},
		{"data", "total_pages"},
		{"meta", "last_page"},
		{"meta", "total_pages"},
		{"pagination", "total_pages"},
		{"last_page"},
		{"total_pages"},
	},
	TotalItems: []Path{
		{"results", "total"},
		{"results", "data", "total"},
		{"data", "total"},
		{"meta", "total"},
		{"pagination", "total"},
		{"total"},
	},
}

// Result is a normalized collection response.
type Result struct {
	Items []model.PricingItem
	// TotalPages is the server-supplied page count, 0 when absent.
	TotalPages int
	// TotalItems is the server-supplied item count, 0 when absent.
	TotalItems int
	// Source names the path the collection was found at.
	Source string
}

// Parse decodes body and normalizes it using the V1 layout.
func Parse(body []byte) (Result, error) {
	return V1.Parse(body)
}

// Parse decodes body and normalizes it using the layout.
// An error is returned only when body is not valid JSON.
func (l Layout) Parse(body []byte) (Result, error) {
	doc, err := Decode(body)
	if err != nil {
		return Result{}, err
	}
	return l.Normalize(doc), nil
}

// Decode parses JSON keeping numbers as json.Number.
func Decode(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return doc, nil
}

// Normalize extracts the collection and page counts from a decoded document.
func (l Layout) Normalize(doc any) Result {
	raw, source := l.Collect(doc)
	res := Result{
		Items:      toItems(raw),
		TotalPages: firstPositive(doc, l.TotalPages),
		TotalItems: firstPositive(doc, l.TotalItems),
		Source:     source,
	}
	return res
}

// Collect returns the raw collection array and where it was found.
func (l Layout) Collect(doc any) ([]any, string) {
	if arr, ok := doc.([]any); ok {
		return arr, SourceRoot
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, SourceNone
	}
	for _, p := range l.Collection {
		if arr, ok := Lookup(obj, p).([]any); ok {
			return arr, p.String()
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if arr, ok := obj[k].([]any); ok {
			return arr, SourceScan
		}
	}
	return nil, SourceNone
}

// Lookup walks p through nested objects, returning nil when any step is missing.
func Lookup(doc any, p Path) any {
	cur := doc
	for _, key := range p {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = obj[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// FirstString returns the first non-empty string found at the given paths.
func FirstString(doc any, paths ...Path) string {
	for _, p := range paths {
		if s, ok := Lookup(doc, p).(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstPositive(doc any, paths []Path) int {
	for _, p := range paths {
		if n, ok := toInt(Lookup(doc, p)); ok && n > 0 {
			return n
		}
	}
	return 0
}

// toInt accepts JSON numbers and numeric strings.
func toInt(v any) (int, bool) {
	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
	case float64:
		return int(x), x == math.Trunc(x)
	default:
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// toItems keeps object elements only; scalars inside a collection carry no
// identity and cannot be edited.
func toItems(raw []any) []model.PricingItem {
	items := make([]model.PricingItem, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			items = append(items, model.ItemFromMap(m))
		}
	}
	return items
}
