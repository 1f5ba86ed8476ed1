// Package resource describes each pricing resource type: where it lives on
// the API, which fields its forms carry and which columns its table shows.
package resource

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/me/pricedesk/pkg/model"
	"github.com/shopspring/decimal"
)

// Kind is the value type of a form field.
type Kind string

const (
	KindString  Kind = "string"
	KindDecimal Kind = "decimal"
	KindInt     Kind = "int"
	KindBool    Kind = "bool"
)

// Field is one input of a create/edit form.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Options  []string // fixed choices; empty for free input
}

// Column is one table column.
type Column struct {
	Field  string
	Header string
	Width  int
}

// Schema parameterizes a list controller for one resource type.
type Schema struct {
	Name        string // "airtime"
	Title       string // "Airtime pricing"
	Path        string // "/admin/pricings/airtime"
	Fields      []Field
	Columns     []Column
	FilterField string // field compared by the list filter; "" disables filtering
	FilterLabel string
	Paging      model.Paging
	PageSize    int
}

// ItemPath returns the path of a single item. The id is escaped as one
// path segment.
func (s Schema) ItemPath(id string) string {
	return s.Path + "/" + url.PathEscape(id)
}

// Field returns the named field.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks values against the field schema. Every required field
// must be non-empty and every non-empty value must parse as its kind.
// It returns nil when values are acceptable.
func (s Schema) Validate(values map[string]string) *model.ValidationError {
	verr := model.NewFieldValidationError(fmt.Sprintf("%s form is incomplete", s.Title))
	for _, f := range s.Fields {
		v := strings.TrimSpace(values[f.Name])
		if v == "" {
			if f.Required && f.Kind != KindBool {
				verr.Add(f.Name, fmt.Sprintf("%s is required", f.Label))
			}
			continue
		}
		if _, err := parseValue(f, v); err != nil {
			verr.Add(f.Name, err.Error())
		}
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

// Payload converts validated form values to the JSON request body. Unknown
// keys are dropped; blank optional fields are omitted.
func (s Schema) Payload(values map[string]string) (map[string]any, error) {
	if verr := s.Validate(values); verr != nil {
		return nil, verr
	}
	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		v := strings.TrimSpace(values[f.Name])
		if v == "" && f.Kind != KindBool {
			continue
		}
		pv, err := parseValue(f, v)
		if err != nil {
			return nil, err
		}
		out[f.Name] = pv
	}
	return out, nil
}

// FormValues renders an item's fields as form input values.
func (s Schema) FormValues(item model.PricingItem) map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		if f.Kind == KindBool {
			out[f.Name] = strconv.FormatBool(item.Bool(f.Name))
			continue
		}
		out[f.Name] = item.String(f.Name)
	}
	return out
}

// Cell renders an item's value for a column.
func (s Schema) Cell(item model.PricingItem, field string) string {
	if field == "id" {
		return item.ID
	}
	f, ok := s.Field(field)
	switch {
	case ok && f.Kind == KindDecimal:
		if d, ok := item.Decimal(field); ok {
			return d.StringFixed(2)
		}
	case ok && f.Kind == KindBool:
		if item.Bool(field) {
			return "Active"
		}
		return "Inactive"
	}
	return item.String(field)
}

func parseValue(f Field, v string) (any, error) {
	if len(f.Options) > 0 && v != "" {
		found := false
		for _, o := range f.Options {
			if strings.EqualFold(o, v) {
				v, found = o, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%s must be one of %s", f.Label, strings.Join(f.Options, ", "))
		}
	}
	switch f.Kind {
	case KindDecimal:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", f.Label)
		}
		if d.IsNegative() {
			return nil, fmt.Errorf("%s cannot be negative", f.Label)
		}
		return json.Number(d.String()), nil
	case KindInt:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a whole number", f.Label)
		}
		return n, nil
	case KindBool:
		b, err := model.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", f.Label)
		}
		return b, nil
	default:
		return v, nil
	}
}
