package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// idKeys lists the members tried, in order, for an item's identity.
var idKeys = []string{"id", "_id", "uuid"}

// PricingItem is one record of a pricing collection. Its field set varies by
// resource type; identity is the opaque ID.
type PricingItem struct {
	ID     string
	Fields map[string]any
}

// ItemFromMap builds an item from a decoded JSON object.
func ItemFromMap(m map[string]any) PricingItem {
	it := PricingItem{Fields: m}
	if it.Fields == nil {
		it.Fields = map[string]any{}
	}
	for _, k := range idKeys {
		if v, ok := m[k]; ok && v != nil {
			it.ID = Stringify(v)
			break
		}
	}
	return it
}

// UnmarshalJSON decodes an object, keeping numbers as json.Number so prices
// survive without float rounding.
func (it *PricingItem) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	*it = ItemFromMap(m)
	return nil
}

// MarshalJSON encodes the item's fields.
func (it PricingItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(it.Fields)
}

// Has reports whether the field is present and non-null.
func (it PricingItem) Has(name string) bool {
	v, ok := it.Fields[name]
	return ok && v != nil
}

// String returns the field rendered as text, or "" when absent.
func (it PricingItem) String(name string) string {
	return Stringify(it.Fields[name])
}

// Decimal returns the field as an exact decimal.
func (it PricingItem) Decimal(name string) (decimal.Decimal, bool) {
	s := it.String(name)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Bool returns the field as a boolean flag. Numeric 1 and the strings
// "active", "enabled", "yes" count as true.
func (it PricingItem) Bool(name string) bool {
	switch v := it.Fields[name].(type) {
	case bool:
		return v
	case nil:
		return false
	}
	b, _ := ParseBool(it.String(name))
	return b
}

// Time returns the field parsed as an RFC 3339 or "2006-01-02 15:04:05" timestamp.
func (it PricingItem) Time(name string) (time.Time, bool) {
	s := it.String(name)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Stringify renders a decoded JSON value as text. Nested objects render as
// their "name" member, falling back to "id", so references like
// {"network": {"id": 1, "name": "MTN"}} display naturally.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case decimal.Decimal:
		return x.String()
	case map[string]any:
		for _, k := range []string{"name", "title", "id"} {
			if inner, ok := x[k]; ok && inner != nil {
				return Stringify(inner)
			}
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "{" + strings.Join(keys, ",") + "}"
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Stringify(e)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(x)
	}
}

// ParseBool accepts the flag spellings used by HTML forms and the backend.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on", "active", "enabled":
		return true, nil
	case "0", "false", "no", "off", "inactive", "disabled", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
