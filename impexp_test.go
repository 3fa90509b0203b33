package ledger

import (
	"strings"
	"testing"
)

func TestParseCSVStatement(t *testing.T) {
	export := "data;valor;descricao\n" +
		"2024-01-10;-39,90;NETFLIX.COM 8412\n" +
		"2024-01-15;1.234,56;salario\n"

	rows, err := ParseCSVStatement(strings.NewReader(export), DefaultCSVLayout())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Date.String() != "2024-01-10" || !rows[0].Amount.Equal(BRL(-39.90)) || rows[0].Description != "NETFLIX.COM 8412" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	// thousands dot with a comma decimal
	if !rows[1].Amount.Equal(BRL(1234.56)) {
		t.Errorf("row 1 amount = %s, want 1234.56", rows[1].Amount)
	}
}

func TestParseCSVStatementCustomLayout(t *testing.T) {
	export := "coffee,-12.50,2024-02-01\n"
	layout := CSVLayout{DateCol: 2, AmountCol: 1, DescriptionCol: 0, Comma: ',', Currency: "USD"}

	rows, err := ParseCSVStatement(strings.NewReader(export), layout)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].Description != "coffee" || rows[0].Date.String() != "2024-02-01" {
		t.Errorf("row = %+v", rows[0])
	}
	if rows[0].Amount.Currency() != "USD" {
		t.Errorf("currency = %s, want the layout's USD", rows[0].Amount.Currency())
	}
}

func TestParseCSVStatementErrors(t *testing.T) {
	layout := DefaultCSVLayout()
	tests := []struct {
		name   string
		export string
	}{
		{"too few fields", "h;h;h\n2024-01-10;-10\n"},
		{"bad date", "h;h;h\nyesterday;-10;x\n"},
		{"bad amount", "h;h;h\n2024-01-10;ten;x\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseCSVStatement(strings.NewReader(tc.export), layout); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseJSONStatement(t *testing.T) {
	export := `{"transactions": [
		{"date": "2024-01-10", "amount": -39.9, "description": "NETFLIX.COM"},
		{"date": "2024-01-12", "amount": "89,90", "description": " farmacia "}
	]}`

	rows, err := ParseJSONStatement(strings.NewReader(export), DefaultJSONLayout())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Date.String() != "2024-01-10" || !rows[0].Amount.Equal(BRL(-39.90)) {
		t.Errorf("row 0 = %+v", rows[0])
	}
	// quoted comma-decimal amounts and padded descriptions are cleaned up
	if !rows[1].Amount.Equal(BRL(89.90)) || rows[1].Description != "farmacia" {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func TestParseJSONStatementSingleObject(t *testing.T) {
	export := `{"transaction": {"date": "2024-01-10", "amount": -10, "description": "x"}}`
	layout := DefaultJSONLayout()
	layout.Rows = "$.transaction"

	rows, err := ParseJSONStatement(strings.NewReader(export), layout)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
}

func TestParseJSONStatementErrors(t *testing.T) {
	layout := DefaultJSONLayout()
	tests := []struct {
		name   string
		export string
	}{
		{"not json", "data;valor\n"},
		{"missing date", `{"transactions": [{"amount": -10, "description": "x"}]}`},
		{"amount is an object", `{"transactions": [{"date": "2024-01-10", "amount": {}, "description": "x"}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseJSONStatement(strings.NewReader(tc.export), layout); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
