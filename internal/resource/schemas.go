package resource

import (
	"fmt"
	"sort"

	"github.com/me/pricedesk/pkg/model"
)

// DefaultPageSize is the fixed number of rows per page.
const DefaultPageSize = 10

var networks = []string{"MTN", "GLO", "AIRTEL", "9MOBILE"}

// Airtime is the airtime pricing schema.
var Airtime = Schema{
	Name:  "airtime",
	Title: "Airtime pricing",
	Path:  "/admin/pricings/airtime",
	Fields: []Field{
		{Name: "network_id", Label: "Network", Kind: KindInt, Required: true},
		{Name: "buy_price", Label: "Buy price", Kind: KindDecimal, Required: true},
		{Name: "percentage", Label: "Percentage", Kind: KindDecimal, Required: true},
		{Name: "is_active", Label: "Active", Kind: KindBool},
	},
	Columns: []Column{
		{Field: "id", Header: "ID", Width: 6},
		{Field: "network_id", Header: "NETWORK", Width: 10},
		{Field: "buy_price", Header: "BUY PRICE", Width: 12},
		{Field: "percentage", Header: "PERCENTAGE", Width: 12},
		{Field: "is_active", Header: "STATUS", Width: 10},
		{Field: "updated_at", Header: "UPDATED", Width: 20},
	},
	FilterField: "network_id",
	FilterLabel: "Network",
	Paging:      model.PagingClient,
	PageSize:    DefaultPageSize,
}

// Cable is the cable TV plan schema.
var Cable = Schema{
	Name:  "cable",
	Title: "Cable plans",
	Path:  "/admin/pricings/cable",
	Fields: []Field{
		{Name: "cable_id", Label: "Cable provider", Kind: KindInt, Required: true},
		{Name: "name", Label: "Plan name", Kind: KindString, Required: true},
		{Name: "code", Label: "Plan code", Kind: KindString, Required: true},
		{Name: "buy_price", Label: "Buy price", Kind: KindDecimal, Required: true},
		{Name: "sell_price", Label: "Sell price", Kind: KindDecimal, Required: true},
		{Name: "is_active", Label: "Active", Kind: KindBool},
	},
	Columns: []Column{
		{Field: "id", Header: "ID", Width: 6},
		{Field: "cable_id", Header: "PROVIDER", Width: 10},
		{Field: "name", Header: "NAME", Width: 28},
		{Field: "code", Header: "CODE", Width: 16},
		{Field: "buy_price", Header: "BUY", Width: 10},
		{Field: "sell_price", Header: "SELL", Width: 10},
		{Field: "is_active", Header: "STATUS", Width: 10},
	},
	FilterField: "cable_id",
	FilterLabel: "Provider",
	Paging:      model.PagingClient,
	PageSize:    DefaultPageSize,
}

// Crypto is the crypto rate schema.
var Crypto = Schema{
	Name:  "crypto",
	Title: "Crypto rates",
	Path:  "/admin/pricings/crypto",
	Fields: []Field{
		{Name: "symbol", Label: "Coin", Kind: KindString, Required: true},
		{Name: "buy_rate", Label: "Buy rate", Kind: KindDecimal, Required: true},
		{Name: "sell_rate", Label: "Sell rate", Kind: KindDecimal, Required: true},
		{Name: "is_active", Label: "Active", Kind: KindBool},
	},
	Columns: []Column{
		{Field: "id", Header: "ID", Width: 6},
		{Field: "symbol", Header: "COIN", Width: 8},
		{Field: "buy_rate", Header: "BUY RATE", Width: 12},
		{Field: "sell_rate", Header: "SELL RATE", Width: 12},
		{Field: "is_active", Header: "STATUS", Width: 10},
		{Field: "updated_at", Header: "UPDATED", Width: 20},
	},
	FilterField: "symbol",
	FilterLabel: "Coin",
	Paging:      model.PagingClient,
	PageSize:    DefaultPageSize,
}

// Data is the data bundle plan schema.
var Data = Schema{
	Name:  "data",
	Title: "Data plans",
	Path:  "/admin/pricings/data",
	Fields: []Field{
		{Name: "network", Label: "Network", Kind: KindString, Required: true, Options: networks},
		{Name: "name", Label: "Plan name", Kind: KindString, Required: true},
		{Name: "code", Label: "Plan code", Kind: KindString, Required: true},
		{Name: "validity", Label: "Validity", Kind: KindString, Required: true},
		{Name: "buy_price", Label: "Buy price", Kind: KindDecimal, Required: true},
		{Name: "sell_price", Label: "Sell price", Kind: KindDecimal, Required: true},
		{Name: "is_active", Label: "Active", Kind: KindBool},
	},
	Columns: []Column{
		{Field: "id", Header: "ID", Width: 6},
		{Field: "network", Header: "NETWORK", Width: 9},
		{Field: "name", Header: "PLAN", Width: 24},
		{Field: "validity", Header: "VALIDITY", Width: 10},
		{Field: "buy_price", Header: "BUY", Width: 10},
		{Field: "sell_price", Header: "SELL", Width: 10},
		{Field: "is_active", Header: "STATUS", Width: 10},
	},
	FilterField: "network",
	FilterLabel: "Network",
	Paging:      model.PagingServer,
	PageSize:    DefaultPageSize,
}

// Giftcard is the giftcard rate schema.
var Giftcard = Schema{
	Name:  "giftcard",
	Title: "Giftcard rates",
	Path:  "/admin/pricings/giftcard",
	Fields: []Field{
		{Name: "brand", Label: "Brand", Kind: KindString, Required: true},
		{Name: "country", Label: "Country", Kind: KindString, Required: true},
		{Name: "card_type", Label: "Card type", Kind: KindString, Required: true, Options: []string{"physical", "ecode"}},
		{Name: "rate", Label: "Rate", Kind: KindDecimal, Required: true},
		{Name: "min_amount", Label: "Minimum amount", Kind: KindDecimal},
		{Name: "max_amount", Label: "Maximum amount", Kind: KindDecimal},
		{Name: "is_active", Label: "Active", Kind: KindBool},
	},
	Columns: []Column{
		{Field: "id", Header: "ID", Width: 6},
		{Field: "brand", Header: "BRAND", Width: 16},
		{Field: "country", Header: "COUNTRY", Width: 8},
		{Field: "card_type", Header: "TYPE", Width: 9},
		{Field: "rate", Header: "RATE", Width: 10},
		{Field: "min_amount", Header: "MIN", Width: 10},
		{Field: "max_amount", Header: "MAX", Width: 10},
		{Field: "is_active", Header: "STATUS", Width: 10},
	},
	FilterField: "brand",
	FilterLabel: "Brand",
	Paging:      model.PagingServer,
	PageSize:    DefaultPageSize,
}

// Settings is the generic key/value settings schema.
var Settings = Schema{
	Name:  "settings",
	Title: "Settings",
	Path:  "/admin/settings",
	Fields: []Field{
		{Name: "key", Label: "Key", Kind: KindString, Required: true},
		{Name: "value", Label: "Value", Kind: KindString, Required: true},
	},
	Columns: []Column{
		{Field: "id", Header: "ID", Width: 6},
		{Field: "key", Header: "KEY", Width: 32},
		{Field: "value", Header: "VALUE", Width: 40},
	},
	Paging:   model.PagingClient,
	PageSize: DefaultPageSize,
}

// Registry holds the schemas known to a running front-end.
type Registry struct {
	byName map[string]Schema
	order  []string
}

// NewRegistry returns the built-in schemas with optional paging overrides
// keyed by schema name ("server" or "client").
func NewRegistry(paging map[string]string) (*Registry, error) {
	r := &Registry{byName: map[string]Schema{}}
	for _, s := range []Schema{Airtime, Cable, Crypto, Data, Giftcard, Settings} {
		r.byName[s.Name] = s
		r.order = append(r.order, s.Name)
	}
	names := make([]string, 0, len(paging))
	for name := range paging {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s, ok := r.byName[name]
		if !ok {
			return nil, fmt.Errorf("paging override for unknown resource %q", name)
		}
		p, ok := model.ParsePaging(paging[name])
		if !ok {
			return nil, fmt.Errorf("resource %s: invalid paging mode %q (want server or client)", name, paging[name])
		}
		s.Paging = p
		r.byName[name] = s
	}
	return r, nil
}

// Lookup returns the named schema.
func (r *Registry) Lookup(name string) (Schema, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Pricings returns the pricing schemas in display order, excluding settings.
func (r *Registry) Pricings() []Schema {
	var out []Schema
	for _, name := range r.order {
		if name == Settings.Name {
			continue
		}
		out = append(out, r.byName[name])
	}
	return out
}

// Names returns every schema name in display order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
