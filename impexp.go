package ledger

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// this file parses bank statement exports into StatementRow slices.
// Two formats are covered: delimited text (CSV as most Brazilian banks
// export it) and JSON (the shape Open Finance aggregators return).
// Parsing is strictly separated from the import state machine: a parse
// error is a file problem, a duplicate is a ledger decision.

// CSVLayout describes where the row fields live in a delimited export.
type CSVLayout struct {
	// DateCol, AmountCol and DescriptionCol are zero-based column indexes.
	DateCol        int
	AmountCol      int
	DescriptionCol int
	// Comma is the field delimiter; zero means ','.
	Comma rune
	// SkipHeader drops the first record.
	SkipHeader bool
	// Currency stamps every parsed amount; empty means DefaultCurrency.
	Currency string
}

// DefaultCSVLayout is date;amount;description with a header line, the
// common Brazilian bank export shape.
func DefaultCSVLayout() CSVLayout {
	return CSVLayout{DateCol: 0, AmountCol: 1, DescriptionCol: 2, Comma: ';', SkipHeader: true}
}

// ParseCSVStatement reads a delimited export into statement rows.
// Amounts accept both "1234.56" and the comma-decimal "1.234,56".
func ParseCSVStatement(r io.Reader, layout CSVLayout) ([]StatementRow, error) {
	cr := csv.NewReader(r)
	if layout.Comma != 0 {
		cr.Comma = layout.Comma
	}
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read statement: %w", err)
	}
	if layout.SkipHeader && len(records) > 0 {
		records = records[1:]
	}

	width := max(layout.DateCol, layout.AmountCol, layout.DescriptionCol)
	rows := make([]StatementRow, 0, len(records))
	for i, record := range records {
		if len(record) <= width {
			return nil, fmt.Errorf("statement line %d has %d fields, need %d", i+1, len(record), width+1)
		}
		d, err := ParseDate(strings.TrimSpace(record[layout.DateCol]))
		if err != nil {
			return nil, fmt.Errorf("statement line %d: %w", i+1, err)
		}
		amount, err := ParseMoney(record[layout.AmountCol])
		if err != nil {
			return nil, fmt.Errorf("statement line %d: %w", i+1, err)
		}
		if amount.Currency() == DefaultCurrency && layout.Currency != "" {
			amount = M(amount.Decimal(), layout.Currency)
		}
		rows = append(rows, StatementRow{
			Date:        d,
			Amount:      amount,
			Description: strings.TrimSpace(record[layout.DescriptionCol]),
		})
	}
	return rows, nil
}

// JSONLayout locates statement rows inside a JSON export with jsonpath
// expressions: Rows selects the array of row objects, the field paths
// are evaluated relative to each row.
type JSONLayout struct {
	Rows        string
	Date        string
	Amount      string
	Description string
	// Currency stamps every parsed amount; empty means DefaultCurrency.
	Currency string
}

// DefaultJSONLayout matches {"transactions": [{"date", "amount", "description"}]}.
func DefaultJSONLayout() JSONLayout {
	return JSONLayout{
		Rows:        "$.transactions[*]",
		Date:        "$.date",
		Amount:      "$.amount",
		Description: "$.description",
	}
}

// ParseJSONStatement reads a JSON export into statement rows.
func ParseJSONStatement(r io.Reader, layout JSONLayout) ([]StatementRow, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("cannot parse statement json: %w", err)
	}
	jrows, err := jsonpath.Get(layout.Rows, jobj)
	if err != nil {
		return nil, fmt.Errorf("cannot select rows with %q: %w", layout.Rows, err)
	}
	jlist, ok := jrows.([]any)
	if !ok {
		// a path selecting a single object still yields one row
		jlist = []any{jrows}
	}

	rows := make([]StatementRow, 0, len(jlist))
	for i, jrow := range jlist {
		rawDate, err := jsonString(layout.Date, jrow)
		if err != nil {
			return nil, fmt.Errorf("statement row %d: %w", i, err)
		}
		d, err := ParseDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("statement row %d: %w", i, err)
		}
		amount, err := jsonAmount(layout.Amount, jrow, layout.Currency)
		if err != nil {
			return nil, fmt.Errorf("statement row %d: %w", i, err)
		}
		desc, err := jsonString(layout.Description, jrow)
		if err != nil {
			return nil, fmt.Errorf("statement row %d: %w", i, err)
		}
		rows = append(rows, StatementRow{Date: d, Amount: amount, Description: strings.TrimSpace(desc)})
	}
	return rows, nil
}

// unwrap keeps the first element when jsonpath returns a list of one
// instead of a single answer.
func unwrap(jval any) any {
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		return jlist[0]
	}
	return jval
}

func jsonString(path string, jrow any) (string, error) {
	jval, err := jsonpath.Get(path, jrow)
	if err != nil {
		return "", fmt.Errorf("cannot evaluate %q: %w", path, err)
	}
	s, ok := unwrap(jval).(string)
	if !ok {
		return "", fmt.Errorf("%q is not a string: %v", path, jval)
	}
	return s, nil
}

// jsonAmount accepts a number or a string; some exports quote amounts
// and use a comma decimal separator.
func jsonAmount(path string, jrow any, currency string) (Money, error) {
	jval, err := jsonpath.Get(path, jrow)
	if err != nil {
		return Money{}, fmt.Errorf("cannot evaluate %q: %w", path, err)
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	switch v := unwrap(jval).(type) {
	case float64:
		return M(v, currency), nil
	case string:
		amount, err := ParseMoney(v)
		if err != nil {
			return Money{}, err
		}
		return M(amount.Decimal(), currency), nil
	default:
		return Money{}, fmt.Errorf("%q is neither a number nor a string: %v", path, jval)
	}
}
