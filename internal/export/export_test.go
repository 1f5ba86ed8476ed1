package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/me/pricedesk/internal/resource"
	"github.com/me/pricedesk/pkg/model"
	"github.com/xuri/excelize/v2"
)

func sampleItems() []model.PricingItem {
	return []model.PricingItem{
		model.ItemFromMap(map[string]any{
			"id": json.Number("1"), "symbol": "BTC", "buy_rate": json.Number("1520.5"),
			"sell_rate": "1490", "is_active": true, "updated_at": "2024-05-01 10:00:00",
		}),
		model.ItemFromMap(map[string]any{
			"id": json.Number("2"), "symbol": "USDT, TRC20", "buy_rate": "1480",
			"sell_rate": "1460.25", "is_active": false,
		}),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{" xlsx ", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, NewTable(resource.Crypto, sampleItems())); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "ID,COIN,BUY RATE,SELL RATE,STATUS,UPDATED" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "1,BTC,1520.50,1490.00,Active,2024-05-01 10:00:00" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != `2,"USDT, TRC20",1480.00,1460.25,Inactive,` {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatXLSX, NewTable(resource.Crypto, sampleItems())); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != "Crypto rates" {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows("Crypto rates")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][1] != "COIN" || rows[2][1] != "USDT, TRC20" {
		t.Errorf("rows = %v", rows)
	}
	v, err := f.GetCellValue("Crypto rates", "C2")
	if err != nil || v != "1520.5" {
		t.Errorf("C2 = %q, %v (want numeric 1520.5)", v, err)
	}
}

func TestSheetName(t *testing.T) {
	if got := sheetName("Rates: buy/sell"); got != "Rates- buy-sell" {
		t.Errorf("sheetName = %q", got)
	}
	if got := sheetName(""); got != "Sheet1" {
		t.Errorf("empty = %q", got)
	}
	if got := sheetName(strings.Repeat("x", 40)); len(got) != 31 {
		t.Errorf("long name length = %d", len(got))
	}
}
